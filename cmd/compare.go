package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/KaramelBytes/datalens-cli/internal/compare"
	"github.com/KaramelBytes/datalens-cli/internal/library"
	"github.com/KaramelBytes/datalens-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	cmpX          string
	cmpY          string
	cmpReference  string
	cmpSave       string
	cmpLoad       string
	cmpOutputPath string
)

var compareCmd = &cobra.Command{
	Use:   "compare [datasets...]",
	Short: "Align an x and y attribute across library datasets for charting",
	Long: `Pair the x and y attribute of each dataset row by row and emit the
series as JSON. Datasets are library names (see "datalens list").

Use --save to store the comparison under a name and --load to replay one.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := currentConfig()
		if err != nil {
			return err
		}
		lib, err := openLibrary()
		if err != nil {
			return err
		}

		req := compare.Request{Datasets: args, XAxis: cmpX, YAxis: cmpY, Reference: cmpReference}
		if cmpLoad != "" {
			saved, err := library.LoadComparison(c.ConfigsDir, cmpLoad, lib)
			if err != nil {
				return err
			}
			req = compare.Request{Datasets: saved.Datasets, XAxis: saved.XAxis, YAxis: saved.YAxis, Reference: saved.Reference}
		}
		if len(req.Datasets) == 0 {
			return fmt.Errorf("at least one dataset is required (or --load)")
		}
		if req.XAxis == "" || req.YAxis == "" {
			return fmt.Errorf("--x and --y are required")
		}

		chart, err := compare.Align(context.Background(), lib, req, c.CompareWorkers)
		if err != nil {
			return err
		}
		if cmpSave != "" {
			saved := library.Comparison{Datasets: req.Datasets, XAxis: req.XAxis, YAxis: req.YAxis, Reference: req.Reference}
			if err := library.SaveComparison(c.ConfigsDir, cmpSave, saved); err != nil {
				return err
			}
			fmt.Printf("✓ Comparison saved: %s\n", cmpSave)
		}

		b, err := utils.PrettyJSON(chart)
		if err != nil {
			return err
		}
		if cmpOutputPath != "" {
			if err := os.WriteFile(cmpOutputPath, b, 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Printf("✓ Wrote chart data to %s\n", cmpOutputPath)
			return nil
		}
		fmt.Println(string(b))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(compareCmd)
	compareCmd.Flags().StringVar(&cmpX, "x", "", "x-axis attribute")
	compareCmd.Flags().StringVar(&cmpY, "y", "", "y-axis attribute")
	compareCmd.Flags().StringVar(&cmpReference, "reference", "", "reference dataset (carried through for display)")
	compareCmd.Flags().StringVar(&cmpSave, "save", "", "save this comparison under a name")
	compareCmd.Flags().StringVar(&cmpLoad, "load", "", "load a saved comparison by name")
	compareCmd.Flags().StringVarP(&cmpOutputPath, "output", "o", "", "write chart JSON to a file")
	compareCmd.MarkFlagsMutuallyExclusive("save", "load")
}
