package source

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/m4mc/m4mc/xs/xserr"
)

// Config is the on-disk source configuration (sources.yaml).
// All top-level keys must be listed here; unknown keys are rejected.
type Config struct {
	Default     string            `yaml:"default"`
	Nuclides    map[string]string `yaml:"nuclides"`
	Boundary    string            `yaml:"boundary"`
	Temperature string            `yaml:"temperature"`

	// dir is the directory of the file the config was read from.
	dir string
}

// LoadConfig parses a sources YAML file with strict field checking.
// Relative data paths are resolved against the file's directory.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, xserr.Wrap(xserr.ErrConfig, "source.LoadConfig", fmt.Errorf("read %s: %w", path, err))
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, err
	}
	cfg.dir = filepath.Dir(path)
	return cfg, nil
}

// ParseConfig parses sources YAML from memory.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, xserr.Wrap(xserr.ErrConfig, "source.ParseConfig", fmt.Errorf("parse sources YAML: %w", err))
	}
	if cfg.Default != "" && !IsKeyword(cfg.Default) {
		return nil, xserr.New(xserr.ErrConfig, "source.ParseConfig",
			"default source %q is not a library keyword (known: %v)", cfg.Default, Keywords())
	}
	return &cfg, nil
}

// descriptor returns the parsed source for a configured value, resolving
// relative paths against the config file's directory.
func (c *Config) descriptor(value string) Descriptor {
	d := Parse(value)
	if d.Kind() == KindPath && c.dir != "" && !filepath.IsAbs(value) {
		return Path(filepath.Join(c.dir, value))
	}
	return d
}

// Apply writes the configuration into r. Existing overrides for nuclides not
// named in the file are kept.
func (c *Config) Apply(r *Resolver) {
	if c.Default != "" {
		r.SetDefault(Library(c.Default))
	}
	ov := make(map[string]Descriptor, len(c.Nuclides))
	for n, v := range c.Nuclides {
		ov[n] = c.descriptor(v)
	}
	r.SetOverrides(ov)
	logrus.Debugf("applied source config: %s", r.Describe())
}
