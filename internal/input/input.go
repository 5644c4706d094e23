// Package input turns operator-supplied cut lists into lengths for the planner.
// It accepts free text, CSV files, and Excel workbooks. Every entry must be a
// positive finite number; anything else is rejected with an error wrapping
// cutting.ErrInvalidCutRequest that names the offending entry.
package input

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/eugenenazirov/pipe-cutter/internal/cutting"
)

// maxQuantity bounds the repeat count of a single row.
const maxQuantity = 10_000

var (
	// ErrNoCuts is returned when the input contains no lengths at all.
	ErrNoCuts = errors.New("no cut lengths provided")
	// ErrUnsupportedFormat is returned for file types other than CSV, text, and xlsx.
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrMalformedFile is returned when a CSV or workbook cannot be decoded.
	ErrMalformedFile = errors.New("malformed input file")
	// ErrInvalidQuantity is returned when a row quantity is not a positive integer.
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
	// ErrTooManyLengths is returned as soon as the input expands past the caller's limit.
	ErrTooManyLengths = errors.New("input lists too many lengths")
)

var (
	lengthAliases   = []string{"length", "len", "cut", "cuts", "size", "pipe", "piece", "lengths"}
	quantityAliases = []string{"quantity", "qty", "count", "num", "pcs", "pieces", "amount"}
)

// ParseList parses numbers separated by commas, semicolons, or whitespace.
// A positive limit caps the number of lengths; zero means no cap.
func ParseList(text string, limit int) ([]float64, error) {
	tokens := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	if len(tokens) == 0 {
		return nil, ErrNoCuts
	}
	if err := checkLimit(len(tokens), limit); err != nil {
		return nil, err
	}

	lengths := make([]float64, 0, len(tokens))
	for i, tok := range tokens {
		v, err := parseLength(tok)
		if err != nil {
			return nil, &cutting.CutError{Index: i, Token: tok, Err: err}
		}
		lengths = append(lengths, v)
	}
	return lengths, nil
}

// Parse dispatches on the file extension of name. limit is passed through to
// the format-specific parser.
func Parse(name string, r io.Reader, limit int) ([]float64, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".tsv":
		return ParseCSV(r, limit)
	case ".txt", "":
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("read input: %w", err)
		}
		return ParseList(string(data), limit)
	case ".xlsx", ".xlsm":
		return ParseExcel(r, limit)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(name))
	}
}

// ParseCSV reads lengths from a CSV document. The delimiter is detected
// automatically. A header row is recognised by column names; without one the
// first column holds the length and an optional second column the quantity.
// A positive limit caps the expanded number of lengths.
func ParseCSV(r io.Reader, limit int) ([]float64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrNoCuts
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = detectDelimiter(data)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFile, err)
	}
	return fromRows(records, limit)
}

// ParseExcel reads lengths from the first sheet of an xlsx workbook using the
// same row rules as ParseCSV.
func ParseExcel(r io.Reader, limit int) ([]float64, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFile, err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoCuts
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return fromRows(rows, limit)
}

type columns struct {
	length   int
	quantity int
}

func fromRows(rows [][]string, limit int) ([]float64, error) {
	start := 0
	cols := columns{length: 0, quantity: 1}
	if len(rows) > 0 {
		if detected, ok := detectHeader(rows[0]); ok {
			cols = detected
			start = 1
		}
	}

	var lengths []float64
	index := 0
	for i := start; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}

		tok := cell(row, cols.length)
		v, err := parseLength(tok)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, &cutting.CutError{Index: index, Token: tok, Err: err})
		}

		qty := 1
		if raw := cell(row, cols.quantity); raw != "" {
			qty, err = strconv.Atoi(raw)
			if err != nil || qty <= 0 || qty > maxQuantity {
				return nil, fmt.Errorf("row %d: %w: %q", i+1, ErrInvalidQuantity, raw)
			}
		}

		if err := checkLimit(len(lengths)+qty, limit); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		for j := 0; j < qty; j++ {
			lengths = append(lengths, v)
		}
		index++
	}

	if len(lengths) == 0 {
		return nil, ErrNoCuts
	}
	return lengths, nil
}

func checkLimit(n, limit int) error {
	if limit > 0 && n > limit {
		return fmt.Errorf("%w: more than %d", ErrTooManyLengths, limit)
	}
	return nil
}

func detectHeader(row []string) (columns, bool) {
	cols := columns{length: -1, quantity: -1}
	for i, c := range row {
		name := strings.ToLower(strings.TrimSpace(c))
		switch {
		case cols.length < 0 && slices.Contains(lengthAliases, name):
			cols.length = i
		case cols.quantity < 0 && slices.Contains(quantityAliases, name):
			cols.quantity = i
		}
	}
	if cols.length < 0 {
		return columns{}, false
	}
	return cols, true
}

// detectDelimiter picks the candidate that splits the first line into the most fields.
func detectDelimiter(data []byte) rune {
	line := data
	if idx := bytes.IndexByte(data, '\n'); idx >= 0 {
		line = data[:idx]
	}

	best := ','
	bestCount := 0
	for _, d := range []rune{',', ';', '\t', '|'} {
		if n := bytes.Count(line, []byte(string(d))); n > bestCount {
			best = d
			bestCount = n
		}
	}
	return best
}

func parseLength(tok string) (float64, error) {
	tok = strings.TrimSpace(tok)
	if tok == "" {
		return 0, cutting.ErrInvalidCutRequest
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, cutting.ErrInvalidCutRequest
	}
	return v, nil
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isEmptyRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
