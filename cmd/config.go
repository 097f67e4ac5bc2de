package cmd

import (
	"fmt"
	"strconv"

	cfgpkg "github.com/KaramelBytes/datalens-cli/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set DataLens configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := currentConfig()
		if err != nil {
			fmt.Println("No config loaded")
			return nil
		}
		fmt.Printf("data_dir: %s\n", c.DataDir)
		fmt.Printf("configs_dir: %s\n", c.ConfigsDir)
		fmt.Printf("listen_addr: %s\n", c.ListenAddr)
		fmt.Printf("log_level: %s\n", c.LogLevel)
		fmt.Printf("histogram_bins: %d\n", c.HistogramBins)
		fmt.Printf("bounds_sigma: %.3f\n", c.BoundsSigma)
		fmt.Printf("iqr_factor: %.3f\n", c.IQRFactor)
		fmt.Printf("max_upload_mb: %d\n", c.MaxUploadMB)
		fmt.Printf("compare_workers: %d\n", c.CompareWorkers)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		c, err := currentConfig()
		if err != nil {
			return err
		}
		if err := applySetting(c, key, val); err != nil {
			return err
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		fmt.Println("Saved config")
		return nil
	},
}

func applySetting(c *cfgpkg.Global, key, val string) error {
	switch key {
	case "data_dir":
		c.DataDir = val
	case "configs_dir":
		c.ConfigsDir = val
	case "listen_addr":
		c.ListenAddr = val
	case "log_level":
		switch val {
		case "error", "warn", "info", "debug":
			c.LogLevel = val
		default:
			return fmt.Errorf("invalid log_level: %s (use error|warn|info|debug)", val)
		}
	case "histogram_bins":
		i, err := strconv.Atoi(val)
		if err != nil || i <= 0 {
			return fmt.Errorf("invalid int for histogram_bins: %v", val)
		}
		c.HistogramBins = i
	case "bounds_sigma":
		f, err := strconv.ParseFloat(val, 64)
		if err != nil || f <= 0 {
			return fmt.Errorf("invalid float for bounds_sigma: %v", val)
		}
		c.BoundsSigma = f
	case "iqr_factor":
		f, err := strconv.ParseFloat(val, 64)
		if err != nil || f <= 0 {
			return fmt.Errorf("invalid float for iqr_factor: %v", val)
		}
		c.IQRFactor = f
	case "max_upload_mb":
		i, err := strconv.Atoi(val)
		if err != nil || i <= 0 {
			return fmt.Errorf("invalid int for max_upload_mb: %v", val)
		}
		c.MaxUploadMB = i
	case "compare_workers":
		i, err := strconv.Atoi(val)
		if err != nil || i <= 0 {
			return fmt.Errorf("invalid int for compare_workers: %v", val)
		}
		c.CompareWorkers = i
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
