// Package export renders cutting plans as spreadsheets, PDF reports, and
// plain-text tables.
package export

import (
	"strconv"
	"strings"

	"github.com/eugenenazirov/pipe-cutter/internal/cutting"
)

// FormatLength prints a length with at most two decimals and no trailing zeros.
func FormatLength(v float64) string {
	return strconv.FormatFloat(cutting.Round(v), 'f', -1, 64)
}

// FormatCuts joins the cuts of a bar as "a, b, c".
func FormatCuts(cuts []float64) string {
	parts := make([]string, len(cuts))
	for i, c := range cuts {
		parts[i] = FormatLength(c)
	}
	return strings.Join(parts, ", ")
}

func barLabel(b cutting.Bar) string {
	return "Pipe " + strconv.Itoa(b.Index)
}
