package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDescribeBatch_WritesSummariesWithoutOverwrite(t *testing.T) {
	home := useTempHome(t)

	// Two CSV files with the same basename in different directories
	csv := "col1,col2\nA,1\nB,2\nC,3\n"
	writeFile(t, filepath.Join(home, "d1", "metrics.csv"), csv)
	writeFile(t, filepath.Join(home, "d2", "metrics.csv"), csv)

	outDir := filepath.Join(home, "summaries")
	runCmd(t, "describe-batch", filepath.Join(home, "d*", "metrics.csv"), "--out-dir", outDir, "--quiet")

	b1 := filepath.Join(outDir, "metrics.summary.md")
	b2 := filepath.Join(outDir, "metrics__2.summary.md")
	if _, err := os.Stat(b1); err != nil {
		t.Fatalf("missing first summary: %v", err)
	}
	if _, err := os.Stat(b2); err != nil {
		t.Fatalf("missing second summary: %v", err)
	}
	body := readFile(t, b1)
	if !strings.Contains(body, "- col1: Nominal") || !strings.Contains(body, "- col2: Numeric") {
		t.Fatalf("unexpected summary:\n%s", body)
	}

	runCmd(t, "describe-batch", filepath.Join(home, "d1", "metrics.csv"), "--out-dir", outDir, "--html", "--quiet")
	html := readFile(t, filepath.Join(outDir, "metrics.summary.html"))
	if !strings.Contains(html, "<p>") && !strings.Contains(html, "<li>") {
		t.Fatalf("expected HTML output, got:\n%s", html)
	}

	if err := tryCmd("describe-batch", filepath.Join(home, "nothing", "*.csv")); err == nil {
		t.Fatalf("expected error when no files match")
	}
}
