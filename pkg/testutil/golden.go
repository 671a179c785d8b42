// Package testutil holds golden file helpers shared by package tests.
package testutil

import (
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var update = flag.Bool("update", false, "rewrite golden files with current output")

// CompareGolden fails the test when actual differs from the golden file.
// Run tests with -update to rewrite the file instead.
func CompareGolden(t *testing.T, goldenPath string, actual string) {
	t.Helper()

	if *update {
		writeGolden(t, goldenPath, actual)
		return
	}

	content, err := os.ReadFile(goldenPath)
	if err != nil {
		t.Fatalf("Failed to read golden file %s: %v", goldenPath, err)
	}

	expected := string(content)
	if actual != expected {
		t.Errorf("Golden file mismatch for %s (first difference at line %d)\nExpected:\n%s\nActual:\n%s",
			goldenPath, firstDiffLine(expected, actual), expected, actual)
	}
}

func writeGolden(t *testing.T, goldenPath, actual string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(goldenPath), 0o755); err != nil {
		t.Fatalf("Failed to create directory for %s: %v", goldenPath, err)
	}
	if err := os.WriteFile(goldenPath, []byte(actual), 0o644); err != nil {
		t.Fatalf("Failed to update golden file %s: %v", goldenPath, err)
	}
	t.Logf("Updated golden file: %s", goldenPath)
}

// firstDiffLine returns the 1-based line number where a and b first differ
func firstDiffLine(a, b string) int {
	al := strings.Split(a, "\n")
	bl := strings.Split(b, "\n")
	for i := 0; i < len(al) && i < len(bl); i++ {
		if al[i] != bl[i] {
			return i + 1
		}
	}
	return min(len(al), len(bl)) + 1
}
