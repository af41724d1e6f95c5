package library

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	cacheDirName       = "m4mc"
	defaultTimeout     = 30 * time.Second
	defaultAttempts    = 3
	defaultBackoffBase = 500 * time.Millisecond
)

// Settings control where remote files are cached and how they are fetched.
type Settings struct {
	CacheDir      string        `env:"M4MC_CACHE_DIR"`
	FetchTimeout  time.Duration `env:"M4MC_FETCH_TIMEOUT"  envDefault:"30s"`
	FetchAttempts int           `env:"M4MC_FETCH_ATTEMPTS" envDefault:"3"`
	BackoffBase   time.Duration `env:"M4MC_FETCH_BACKOFF"  envDefault:"500ms"`
}

// DefaultSettings returns settings with the default cache root.
func DefaultSettings() Settings {
	return Settings{
		CacheDir:      DefaultCacheDir(),
		FetchTimeout:  defaultTimeout,
		FetchAttempts: defaultAttempts,
		BackoffBase:   defaultBackoffBase,
	}
}

// SettingsFromEnv loads settings from M4MC_* environment variables.
func SettingsFromEnv() (Settings, error) {
	var s Settings
	if err := env.Parse(&s); err != nil {
		return Settings{}, fmt.Errorf("parse env: %w", err)
	}
	return s.withDefaults(), nil
}

func (s Settings) withDefaults() Settings {
	if s.CacheDir == "" {
		s.CacheDir = DefaultCacheDir()
	}
	if s.FetchTimeout <= 0 {
		s.FetchTimeout = defaultTimeout
	}
	if s.FetchAttempts < 1 {
		s.FetchAttempts = defaultAttempts
	}
	if s.BackoffBase <= 0 {
		s.BackoffBase = defaultBackoffBase
	}
	return s
}

// DefaultCacheDir returns the per-user cache root for downloaded data.
func DefaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		home, herr := os.UserHomeDir()
		if herr != nil {
			home = "."
		}
		dir = filepath.Join(home, ".cache")
	}
	return filepath.Join(dir, cacheDirName)
}

// CachePath returns the lookaside location of a library file.
func (s Settings) CachePath(library, nuclide string) string {
	return filepath.Join(s.CacheDir, library, nuclide+".json")
}
