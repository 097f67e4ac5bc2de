package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/datalens-cli/internal/parser"
	"github.com/KaramelBytes/datalens-cli/internal/store"
	"github.com/spf13/cobra"
)

var (
	dropAttributes []string
	dropOutputPath string
)

var dropCmd = &cobra.Command{
	Use:   "drop <file|dataset>",
	Short: "Remove attributes from a dataset and write the result as CSV",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(dropAttributes) == 0 {
			return fmt.Errorf("--attributes is required")
		}
		path, err := resolveDataset(args[0])
		if err != nil {
			return err
		}
		st := store.New(parser.ParseFile)
		if err := st.LoadFile(path); err != nil {
			return err
		}
		removed := st.RemoveAttributes(dropAttributes...)
		if len(removed) < len(dropAttributes) {
			have := make(map[string]bool, len(removed))
			for _, r := range removed {
				have[r] = true
			}
			for _, a := range dropAttributes {
				if !have[a] {
					fmt.Fprintf(os.Stderr, "⚠ Warning: attribute not found: %s\n", a)
				}
			}
		}
		if len(removed) > 0 {
			fmt.Printf("✓ Removed attributes: %s\n", strings.Join(removed, ", "))
		}

		out := dropOutputPath
		if out == "" {
			base := filepath.Base(path)
			out = filepath.Join(filepath.Dir(path), strings.TrimSuffix(base, filepath.Ext(base))+".trimmed.csv")
		}
		return writeStoreTable(st, out)
	},
}

func init() {
	rootCmd.AddCommand(dropCmd)
	dropCmd.Flags().StringSliceVar(&dropAttributes, "attributes", nil, "comma-separated attribute names to remove")
	dropCmd.Flags().StringVarP(&dropOutputPath, "output", "o", "", "output CSV path (default: <name>.trimmed.csv next to the source)")
}
