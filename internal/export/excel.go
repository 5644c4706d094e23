package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/eugenenazirov/pipe-cutter/internal/cutting"
)

// SummarySheet is the name of the worksheet written by WriteExcel.
const SummarySheet = "Pipe Summary"

// WriteExcel writes an xlsx workbook with one row per bar followed by a totals row.
func WriteExcel(w io.Writer, plan cutting.Plan) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), SummarySheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := []any{"Pipe #", "Cut pieces", "Used", "Waste"}
	if err := f.SetSheetRow(SummarySheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	row := 2
	for _, b := range plan.Bars {
		values := []any{barLabel(b), FormatCuts(b.Cuts), b.Used, b.Waste}
		if err := setRow(f, row, values); err != nil {
			return err
		}
		row++
	}

	totals := []any{
		fmt.Sprintf("Total: %d", plan.BarCount()),
		fmt.Sprintf("Stock length %s, %s", FormatLength(plan.StockLength), plan.Policy),
		plan.TotalCutLength(),
		plan.TotalWaste,
	}
	if err := setRow(f, row, totals); err != nil {
		return err
	}

	if err := f.SetColWidth(SummarySheet, "A", "A", 12); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}
	if err := f.SetColWidth(SummarySheet, "B", "B", 40); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("cell reference: %w", err)
	}
	if err := f.SetSheetRow(SummarySheet, cell, &values); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}
