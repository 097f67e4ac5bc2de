package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add <file...>",
	Short: "Add datasets to the library",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, err := openLibrary()
		if err != nil {
			return err
		}
		for _, file := range args {
			e, err := lib.Add(file)
			if err != nil {
				return fmt.Errorf("add %s: %w", file, err)
			}
			fmt.Printf("✓ Dataset added: %s (%d rows, %d columns)\n", e.Name, e.Rows, e.Columns)
		}
		return nil
	},
}

var removeCmd = &cobra.Command{
	Use:     "remove <name>",
	Aliases: []string{"rm"},
	Short:   "Delete a dataset from the library",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, err := openLibrary()
		if err != nil {
			return err
		}
		if err := lib.Delete(args[0]); err != nil {
			return err
		}
		fmt.Printf("✓ Dataset removed: %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(removeCmd)
}
