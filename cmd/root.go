package cmd

import (
	"errors"
	"fmt"
	"os"

	cfgpkg "github.com/KaramelBytes/datalens-cli/internal/config"
	"github.com/KaramelBytes/datalens-cli/internal/library"
	"github.com/KaramelBytes/datalens-cli/internal/logging"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	debug   bool

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "datalens",
	Short: "DataLens CLI: profile tabular datasets, filter outliers and compare series",
	Long: `DataLens loads CSV/TSV/XLSX datasets, infers attribute types, computes
descriptive statistics and histograms, removes outliers (IQR or mean±kσ),
and aligns columns across datasets for comparison charts. The same
operations are served over HTTP by "datalens serve".`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.datalens/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands fall back to defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		return
	}
	if debug {
		c.LogLevel = "debug"
	}
	cfg = c
}

// currentConfig returns the loaded configuration, loading it on first use.
func currentConfig() (*cfgpkg.Global, error) {
	if cfg != nil {
		return cfg, nil
	}
	loadConfig()
	if cfg == nil {
		return nil, errors.New("configuration unavailable")
	}
	return cfg, nil
}

// newLogger honours --debug first, then LOG_LEVEL, then the configured log_level.
func newLogger(c *cfgpkg.Global) *logging.Logger {
	if !debug && os.Getenv("LOG_LEVEL") != "" {
		return logging.NewDefault()
	}
	return logging.New(os.Stderr, logging.ParseLevel(c.LogLevel))
}

func openLibrary() (*library.Library, error) {
	c, err := currentConfig()
	if err != nil {
		return nil, err
	}
	return library.Open(c.DataDir)
}

// resolveDataset maps an argument to a file: an existing path wins, then a
// dataset name from the library.
func resolveDataset(arg string) (string, error) {
	if _, err := os.Stat(arg); err == nil {
		return arg, nil
	}
	lib, err := openLibrary()
	if err != nil {
		return "", err
	}
	return lib.Path(arg)
}
