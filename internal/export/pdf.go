package export

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"

	"github.com/eugenenazirov/pipe-cutter/internal/cutting"
)

type rgb struct {
	R, G, B int
}

var cutColors = []rgb{
	{R: 76, G: 175, B: 80},
	{R: 33, G: 150, B: 243},
	{R: 255, G: 152, B: 0},
	{R: 156, G: 39, B: 176},
	{R: 0, G: 188, B: 212},
	{R: 121, G: 85, B: 72},
}

// A4 landscape, millimetres.
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	margin       = 15.0
	labelWidth   = 22.0
	statsWidth   = 40.0
	rowHeight    = 9.0
	rowGap       = 3.0
	headerHeight = 24.0
)

// WritePDF renders a cutting diagram with one horizontal bar per stock bar.
// Cuts are drawn to scale; the unused tail of each bar is hatched.
func WritePDF(w io.Writer, plan cutting.Plan) error {
	pdf, err := renderPDF(plan)
	if err != nil {
		return err
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func renderPDF(plan cutting.Plan) (*fpdf.Fpdf, error) {
	if err := cutting.ValidateStockLength(plan.StockLength); err != nil {
		return nil, err
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, margin)
	pdf.SetTitle("Cutting plan", false)

	drawWidth := pageWidth - 2*margin - labelWidth - statsWidth
	scale := drawWidth / plan.StockLength

	y := newPage(pdf, plan)
	for _, b := range plan.Bars {
		if y+rowHeight > pageHeight-margin {
			y = newPage(pdf, plan)
		}
		drawBar(pdf, b, plan.StockLength, scale, y)
		y += rowHeight + rowGap
	}
	return pdf, pdf.Error()
}

func newPage(pdf *fpdf.Fpdf, plan cutting.Plan) float64 {
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(margin, margin)
	pdf.CellFormat(pageWidth-2*margin, 8, "Cutting plan", "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(margin, margin+9)
	stats := fmt.Sprintf("Stock length: %s | Policy: %s | Bars: %d | Total cut: %s | Total waste: %s | Utilization: %.1f%%",
		FormatLength(plan.StockLength), plan.Policy, plan.BarCount(),
		FormatLength(plan.TotalCutLength()), FormatLength(plan.TotalWaste), plan.Utilization()*100)
	pdf.CellFormat(pageWidth-2*margin, 5, stats, "", 0, "L", false, 0, "")

	return margin + headerHeight
}

func drawBar(pdf *fpdf.Fpdf, b cutting.Bar, stockLength, scale, y float64) {
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(margin, y)
	pdf.CellFormat(labelWidth, rowHeight, barLabel(b), "", 0, "L", false, 0, "")

	x := margin + labelWidth
	pdf.SetFont("Helvetica", "", 7)
	for i, c := range b.Cuts {
		col := cutColors[i%len(cutColors)]
		width := c * scale

		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.SetDrawColor(30, 30, 30)
		pdf.SetLineWidth(0.3)
		pdf.Rect(x, y, width, rowHeight, "FD")

		label := FormatLength(c)
		if pdf.GetStringWidth(label) < width-1 {
			pdf.SetTextColor(255, 255, 255)
			pdf.SetXY(x, y)
			pdf.CellFormat(width, rowHeight, label, "", 0, "C", false, 0, "")
		}
		x += width
	}

	wasteWidth := (stockLength - b.Used) * scale
	if wasteWidth > 0.1 {
		pdf.SetFillColor(235, 235, 235)
		pdf.SetDrawColor(150, 150, 150)
		pdf.Rect(x, y, wasteWidth, rowHeight, "FD")
		drawHatch(pdf, x, y, wasteWidth, rowHeight)
	}

	pdf.SetTextColor(60, 60, 60)
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetXY(pageWidth-margin-statsWidth+2, y)
	info := fmt.Sprintf("used %s / waste %s", FormatLength(b.Used), FormatLength(b.Waste))
	pdf.CellFormat(statsWidth-2, rowHeight, info, "", 0, "L", false, 0, "")
}

func drawHatch(pdf *fpdf.Fpdf, x, y, w, h float64) {
	pdf.SetDrawColor(180, 180, 180)
	pdf.SetLineWidth(0.2)
	const step = 2.5
	for offset := 0.0; offset < w+h; offset += step {
		x1 := x + offset
		y1 := y
		x2 := x + offset - h
		y2 := y + h
		if x1 > x+w {
			y1 = y + (x1 - (x + w))
			x1 = x + w
		}
		if x2 < x {
			y2 = y + h - (x - x2)
			x2 = x
		}
		if y1 < y2 {
			pdf.Line(x1, y1, x2, y2)
		}
	}
}
