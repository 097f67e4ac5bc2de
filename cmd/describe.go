package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/KaramelBytes/datalens-cli/internal/analysis"
	"github.com/KaramelBytes/datalens-cli/internal/parser"
	"github.com/KaramelBytes/datalens-cli/internal/utils"
	"github.com/gomarkdown/markdown"
	"github.com/spf13/cobra"
)

var (
	descAttribute  string
	descOutputPath string
	descHTML       bool
	descJSON       bool
	descBins       int
	descSheet      string
)

var describeCmd = &cobra.Command{
	Use:   "describe <file|dataset>",
	Short: "Profile a dataset: types, missing values, statistics and histograms",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if descHTML && descJSON {
			return fmt.Errorf("--html and --json are mutually exclusive")
		}
		c, err := currentConfig()
		if err != nil {
			return err
		}
		bins := c.HistogramBins
		if descBins > 0 {
			bins = descBins
		}
		path, err := resolveDataset(args[0])
		if err != nil {
			return err
		}
		t, err := parser.ParseSheet(path, descSheet)
		if err != nil {
			return err
		}
		newLogger(c).Debug("parsed %s: %d rows, %d columns", path, t.NumRows(), t.NumCols())

		var out []byte
		if descAttribute != "" {
			a, err := analysis.DescribeColumn(t, descAttribute, bins)
			if err != nil {
				return err
			}
			switch {
			case descJSON:
				out, err = utils.PrettyJSON(a)
				if err != nil {
					return err
				}
			case descHTML:
				out = markdown.ToHTML([]byte(analysis.AttributeMarkdown(a)), nil, nil)
			default:
				out = []byte(analysis.AttributeMarkdown(a))
			}
		} else {
			rep := analysis.Profile(filepath.Base(path), t, bins)
			switch {
			case descJSON:
				out, err = utils.PrettyJSON(rep)
				if err != nil {
					return err
				}
			case descHTML:
				out = []byte(rep.HTML())
			default:
				out = []byte(rep.Markdown())
			}
		}

		if descOutputPath != "" {
			if err := os.WriteFile(descOutputPath, out, 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Printf("✓ Wrote profile to %s\n", descOutputPath)
			return nil
		}
		fmt.Println(string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
	describeCmd.Flags().StringVarP(&descAttribute, "attribute", "a", "", "describe a single attribute with its full histogram")
	describeCmd.Flags().StringVarP(&descOutputPath, "output", "o", "", "optional path to write the profile")
	describeCmd.Flags().BoolVar(&descHTML, "html", false, "render the profile as HTML")
	describeCmd.Flags().BoolVar(&descJSON, "json", false, "render the profile as JSON")
	describeCmd.Flags().IntVar(&descBins, "bins", 0, "histogram bins for numeric attributes (overrides config)")
	describeCmd.Flags().StringVar(&descSheet, "sheet-name", "", "XLSX: sheet name to describe (default: first sheet)")
}
