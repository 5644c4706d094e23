package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunPrintsTable(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"--stock", "6", "--cuts", "2.5, 3.1, 1.2, 3.0, 2.8, 1.5"}, &stdout, &stderr)

	require.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stdout.String(), "Pipe 1")
	assert.Contains(t, stdout.String(), "Total pipes used: 3")
	assert.Contains(t, stdout.String(), "total waste 3.9")
}

func TestRunReadsFileAndWritesReports(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "cuts.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("length,qty\n4,2\n2,2\n"), 0o600))
	xlsxPath := filepath.Join(dir, "plan.xlsx")
	pdfPath := filepath.Join(dir, "plan.pdf")

	var stdout, stderr bytes.Buffer
	code := run([]string{"--file", csvPath, "--policy", "first-fit", "--xlsx", xlsxPath, "--pdf", pdfPath}, &stdout, &stderr)

	require.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stdout.String(), "Total pipes used: 2")

	for _, path := range []string{xlsxPath, pdfPath} {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}
}

func TestRunCombinesCutsAndFile(t *testing.T) {
	dir := t.TempDir()
	txtPath := filepath.Join(dir, "cuts.txt")
	require.NoError(t, os.WriteFile(txtPath, []byte("3 3"), 0o600))

	var stdout, stderr bytes.Buffer
	code := run([]string{"--cuts", "6", "--file", txtPath}, &stdout, &stderr)

	require.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stdout.String(), "Total pipes used: 2")
	assert.Contains(t, stdout.String(), "total waste 0")
}

func TestRunFailures(t *testing.T) {
	cases := []struct {
		name string
		args []string
		code int
		msg  string
	}{
		{"no cuts", []string{"--stock", "6"}, 1, "no cut lengths"},
		{"invalid cut", []string{"--cuts", "2,-1"}, 1, "cut length must be a positive number"},
		{"invalid stock", []string{"--stock", "0", "--cuts", "1"}, 1, "stock length must be"},
		{"unknown policy", []string{"--cuts", "1", "--policy", "worst-fit"}, 1, "unknown placement policy"},
		{"unknown flag", []string{"--bogus"}, 2, "bogus"},
		{"split beyond limit", []string{"--stock", "1", "--cuts", "1e12"}, 1, "too many cuts"},
		{"split beyond countable range", []string{"--stock", "1", "--cuts", "1e20"}, 1, "too many stock-length segments"},
		{"list beyond limit", []string{"--max-cuts", "2", "--cuts", "1 2 3"}, 1, "too many lengths"},
		{"non-positive limit", []string{"--max-cuts", "0", "--cuts", "1"}, 2, "--max-cuts"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := run(tc.args, &stdout, &stderr)
			assert.Equal(t, tc.code, code)
			assert.Contains(t, stderr.String(), tc.msg)
		})
	}
}
