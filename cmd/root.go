// cmd/root.go
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/m4mc/m4mc/xs"
	"github.com/m4mc/m4mc/xs/library"
	"github.com/m4mc/m4mc/xs/source"
	"github.com/m4mc/m4mc/xs/table"
)

var (
	// CLI flags shared by every subcommand
	logLevel     string   // Log verbosity level
	sourcesPath  string   // Path to sources YAML
	defaultSrc   string   // Global default source (library keyword)
	overrides    []string // Per-nuclide source overrides (nuclide=source)
	cacheDir     string   // Lookaside cache root for downloaded files
	boundaryName string   // Out-of-grid policy: clamp or strict
	temperature  string   // Evaluation temperature in K
	reactionName string   // Reaction name or MT number
	plot         bool     // Render an ASCII plot instead of a table
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:           "m4mc",
	Short:         "Neutron cross-section lookup and collision sampling",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", logLevel, err)
		}
		logrus.SetLevel(level)
		return nil
	},
}

// options collects the resolved session configuration of one invocation.
type options struct {
	temperature string
	boundary    table.Boundary
}

// newSession builds a session from the persistent flags. Explicit flags win
// over values from the sources file, which win over defaults.
func newSession() (*xs.Session, options, error) {
	opts := options{temperature: temperature}
	resolver := source.NewResolver()
	bname := boundaryName

	if sourcesPath != "" {
		cfg, err := source.LoadConfig(sourcesPath)
		if err != nil {
			return nil, opts, err
		}
		cfg.Apply(resolver)
		if opts.temperature == "" {
			opts.temperature = cfg.Temperature
		}
		if bname == "" {
			bname = cfg.Boundary
		}
		logrus.Infof("loaded sources from %s", sourcesPath)
	}
	if defaultSrc != "" {
		if !source.IsKeyword(defaultSrc) {
			return nil, opts, fmt.Errorf("--source %q is not a library keyword (known: %s)",
				defaultSrc, strings.Join(source.Keywords(), ", "))
		}
		resolver.SetDefault(source.Library(defaultSrc))
	}
	for _, o := range overrides {
		nuclide, value, ok := strings.Cut(o, "=")
		if !ok || nuclide == "" || value == "" {
			return nil, opts, fmt.Errorf("invalid --override %q (want nuclide=source)", o)
		}
		resolver.SetOverride(nuclide, source.Parse(value))
	}

	b, err := table.ParseBoundary(bname)
	if err != nil {
		return nil, opts, err
	}
	opts.boundary = b
	if opts.temperature == "" {
		opts.temperature = xs.DefaultTemperature
	}

	settings, err := library.SettingsFromEnv()
	if err != nil {
		return nil, opts, err
	}
	if cacheDir != "" {
		settings.CacheDir = cacheDir
	}
	logrus.Debugf("sources: %s; cache: %s; boundary: %s; T=%s",
		resolver.Describe(), settings.CacheDir, b, opts.temperature)

	store := library.NewStore(resolver, library.WithSettings(settings))
	return xs.NewSession(store, xs.WithBoundary(b)), opts, nil
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	pf.StringVar(&sourcesPath, "sources", "", "Path to sources YAML (default library, per-nuclide overrides)")
	pf.StringVar(&defaultSrc, "source", "", "Default data library keyword ("+strings.Join(source.Keywords(), ", ")+")")
	pf.StringArrayVar(&overrides, "override", nil, "Per-nuclide source override as nuclide=source (repeatable)")
	pf.StringVar(&cacheDir, "cache-dir", "", "Cache directory for downloaded library files (default $M4MC_CACHE_DIR or user cache)")
	pf.StringVar(&boundaryName, "boundary", "", "Out-of-grid policy: clamp or strict (default clamp)")
	pf.StringVar(&temperature, "temperature", "", "Temperature in K (default "+xs.DefaultTemperature+")")

	rootCmd.AddCommand(microCmd)
	rootCmd.AddCommand(macroCmd)
	rootCmd.AddCommand(mfpCmd)
	rootCmd.AddCommand(sampleCmd)
}
