package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/datalens-cli/internal/library"
	"github.com/KaramelBytes/datalens-cli/internal/outlier"
	"github.com/KaramelBytes/datalens-cli/internal/parser"
	"github.com/KaramelBytes/datalens-cli/internal/store"
	"github.com/KaramelBytes/datalens-cli/internal/table"
	"github.com/spf13/cobra"
)

var (
	outMethod     string
	outAttribute  string
	outColumns    []string
	outSigma      float64
	outFactor     float64
	outOutputPath string
)

var outliersCmd = &cobra.Command{
	Use:   "outliers <file|dataset>",
	Short: "Remove outlier rows using IQR fences or mean±kσ bounds",
	Long: `Remove outlier rows from a dataset.

  --method iqr     drop rows outside [Q1-f·IQR, Q3+f·IQR] on any numeric column
  --method bounds  keep rows whose --attribute lies within mean±kσ

Without --method, bounds is used when --attribute is set and iqr otherwise.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := currentConfig()
		if err != nil {
			return err
		}
		method := strings.ToLower(strings.TrimSpace(outMethod))
		if method == "" {
			method = "iqr"
			if outAttribute != "" {
				method = "bounds"
			}
		}
		sigma, factor := c.BoundsSigma, c.IQRFactor
		if cmd.Flags().Changed("sigma") {
			sigma = outSigma
		}
		if cmd.Flags().Changed("factor") {
			factor = outFactor
		}

		path, err := resolveDataset(args[0])
		if err != nil {
			return err
		}
		st := store.New(parser.ParseFile)
		if err := st.LoadFile(path); err != nil {
			return err
		}
		before, err := st.Snapshot()
		if err != nil {
			return err
		}

		var filtered *table.Table
		switch method {
		case "iqr":
			var fences []outlier.Fence
			filtered, fences = outlier.IQR(before, outColumns, factor)
			if len(fences) == 0 {
				fmt.Fprintln(os.Stderr, "⚠ Warning: no numeric attributes to filter")
			}
			for _, f := range fences {
				fmt.Printf("- %s: [%g, %g]\n", f.Column, f.Lower, f.Upper)
			}
		case "bounds":
			if outAttribute == "" {
				return fmt.Errorf("--attribute is required for --method bounds")
			}
			var f outlier.Fence
			filtered, f, err = outlier.Bounds(before, outAttribute, sigma)
			if err != nil {
				return err
			}
			fmt.Printf("- %s: [%g, %g]\n", f.Column, f.Lower, f.Upper)
		default:
			return fmt.Errorf("unsupported --method: %s (use iqr|bounds)", outMethod)
		}
		if err := st.Commit(filtered); err != nil {
			return err
		}
		sum, err := st.Summary()
		if err != nil {
			return err
		}
		fmt.Printf("✓ Kept %d of %d rows (%s)\n", sum.NumInstances, before.NumRows(), method)

		if outOutputPath == "" {
			return nil
		}
		return writeStoreTable(st, outOutputPath)
	},
}

// writeStoreTable saves the store's current table as CSV at path.
func writeStoreTable(st *store.Store, path string) error {
	t, err := st.Snapshot()
	if err != nil {
		return err
	}
	written, err := library.SaveTable(filepath.Dir(path), filepath.Base(path), t)
	if err != nil {
		return err
	}
	fmt.Printf("✓ Wrote %d rows to %s\n", t.NumRows(), written)
	return nil
}

func init() {
	rootCmd.AddCommand(outliersCmd)
	outliersCmd.Flags().StringVarP(&outMethod, "method", "m", "", "outlier method: iqr | bounds")
	outliersCmd.Flags().StringVarP(&outAttribute, "attribute", "a", "", "attribute for --method bounds")
	outliersCmd.Flags().StringSliceVar(&outColumns, "columns", nil, "restrict iqr to these columns (default: all numeric)")
	outliersCmd.Flags().Float64Var(&outSigma, "sigma", outlier.DefaultSigma, "k for mean±kσ bounds (overrides config)")
	outliersCmd.Flags().Float64Var(&outFactor, "factor", outlier.DefaultIQRFactor, "IQR fence factor (overrides config)")
	outliersCmd.Flags().StringVarP(&outOutputPath, "output", "o", "", "write the filtered dataset as CSV")
}
