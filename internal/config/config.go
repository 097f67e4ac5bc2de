package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/KaramelBytes/datalens-cli/internal/utils"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	DataDir    string `mapstructure:"data_dir" yaml:"data_dir"`
	ConfigsDir string `mapstructure:"configs_dir" yaml:"configs_dir"`
	ListenAddr string `mapstructure:"listen_addr" yaml:"listen_addr"`
	LogLevel   string `mapstructure:"log_level" yaml:"log_level"`

	// Analysis parameters
	HistogramBins int     `mapstructure:"histogram_bins" yaml:"histogram_bins"`
	BoundsSigma   float64 `mapstructure:"bounds_sigma" yaml:"bounds_sigma"`
	IQRFactor     float64 `mapstructure:"iqr_factor" yaml:"iqr_factor"`

	// Server limits
	MaxUploadMB    int `mapstructure:"max_upload_mb" yaml:"max_upload_mb"`
	CompareWorkers int `mapstructure:"compare_workers" yaml:"compare_workers"`
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.datalens/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".datalens")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env (.env included) > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	// optional; real environment variables win over .env entries
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("DATALENS")
	v.AutomaticEnv()

	v.SetDefault("data_dir", "~/.datalens/uploads")
	v.SetDefault("configs_dir", "~/.datalens/configs")
	v.SetDefault("listen_addr", ":5000")
	v.SetDefault("log_level", "info")
	v.SetDefault("histogram_bins", 10)
	v.SetDefault("bounds_sigma", 3.0)
	v.SetDefault("iqr_factor", 1.5)
	v.SetDefault("max_upload_mb", 32)
	v.SetDefault("compare_workers", 4)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".datalens")
		_ = os.MkdirAll(dir, 0o755)
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	var err error
	if c.DataDir, err = utils.ExpandHome(c.DataDir); err != nil {
		return nil, err
	}
	if c.ConfigsDir, err = utils.ExpandHome(c.ConfigsDir); err != nil {
		return nil, err
	}
	return &c, nil
}
