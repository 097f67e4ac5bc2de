package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/KaramelBytes/datalens-cli/internal/analysis"
	"github.com/KaramelBytes/datalens-cli/internal/parser"
	"github.com/KaramelBytes/datalens-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	dbOutDir string
	dbHTML   bool
	dbBins   int
	dbQuiet  bool
	dbSheet  string
)

var describeBatchCmd = &cobra.Command{
	Use:   "describe-batch <files...>",
	Short: "Profile multiple CSV/TSV/XLSX files with progress, writing one summary per file",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files := expandInputs(args)
		if len(files) == 0 {
			return fmt.Errorf("no input files matched")
		}
		c, err := currentConfig()
		if err != nil {
			return err
		}
		bins := c.HistogramBins
		if dbBins > 0 {
			bins = dbBins
		}
		if dbOutDir != "" {
			if err := utils.EnsureDir(dbOutDir); err != nil {
				return err
			}
		}
		log := newLogger(c)

		total := len(files)
		for i, path := range files {
			if !dbQuiet {
				fmt.Printf("[%d/%d] Processing %s...\n", i+1, total, filepath.Base(path))
			}
			t, err := parser.ParseSheet(path, dbSheet)
			if err != nil {
				return err
			}
			rep := analysis.Profile(filepath.Base(path), t, bins)
			body, ext := rep.Markdown(), ".summary.md"
			if dbHTML {
				body, ext = rep.HTML(), ".summary.html"
			}
			if dbOutDir == "" {
				if !dbQuiet {
					fmt.Println(body)
				}
				continue
			}
			outFile := uniqueSummaryPath(dbOutDir, path, ext)
			if err := os.WriteFile(outFile, []byte(body), 0o644); err != nil {
				return fmt.Errorf("write summary: %w", err)
			}
			log.Debug("wrote %s", outFile)
			if !dbQuiet {
				fmt.Printf("✓ Wrote summary to %s\n", filepath.Base(outFile))
			}
		}
		return nil
	},
}

// expandInputs resolves globs, keeps literal paths that exist, and drops
// duplicates. The result is sorted.
func expandInputs(args []string) []string {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files
}

// uniqueSummaryPath returns dir/<base><ext>, or dir/<base>__N<ext> when that
// file already exists.
func uniqueSummaryPath(dir, src, ext string) string {
	base := filepath.Base(src)
	safe := strings.TrimSuffix(base, filepath.Ext(base))
	outFile := filepath.Join(dir, safe+ext)
	if _, err := os.Stat(outFile); err != nil {
		return outFile
	}
	for idx := 2; ; idx++ {
		cand := filepath.Join(dir, fmt.Sprintf("%s__%d%s", safe, idx, ext))
		if _, err := os.Stat(cand); os.IsNotExist(err) {
			if !dbQuiet {
				fmt.Printf("⚠ Detected existing summary, writing to %s to avoid overwrite.\n", filepath.Base(cand))
			}
			return cand
		}
	}
}

func init() {
	rootCmd.AddCommand(describeBatchCmd)
	describeBatchCmd.Flags().StringVar(&dbOutDir, "out-dir", "", "directory for per-file summaries (stdout if omitted)")
	describeBatchCmd.Flags().BoolVar(&dbHTML, "html", false, "write HTML summaries instead of Markdown")
	describeBatchCmd.Flags().IntVar(&dbBins, "bins", 0, "histogram bins for numeric attributes (overrides config)")
	describeBatchCmd.Flags().StringVar(&dbSheet, "sheet-name", "", "XLSX: sheet name to describe in every workbook (default: first sheet)")
	describeBatchCmd.Flags().BoolVar(&dbQuiet, "quiet", false, "suppress progress and non-essential output")
}
