package cmd

import (
	"fmt"

	"github.com/KaramelBytes/datalens-cli/internal/library"
	"github.com/spf13/cobra"
)

var listConfigs bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List library datasets or saved comparisons",
	RunE: func(cmd *cobra.Command, args []string) error {
		if listConfigs {
			return listComparisons()
		}
		lib, err := openLibrary()
		if err != nil {
			return err
		}
		entries := lib.List()
		if len(entries) == 0 {
			fmt.Println("(no datasets)")
			return nil
		}
		for _, e := range entries {
			fmt.Printf("- %s: %d rows, %d columns (added %s)\n", e.Name, e.Rows, e.Columns, e.AddedAt.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

func listComparisons() error {
	c, err := currentConfig()
	if err != nil {
		return err
	}
	names, err := library.ListComparisons(c.ConfigsDir)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Println("(no saved comparisons)")
		return nil
	}
	for _, n := range names {
		fmt.Printf("- %s\n", n)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listConfigs, "configs", false, "list saved comparisons instead of datasets")
}
