package export

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/eugenenazirov/pipe-cutter/internal/cutting"
)

// WriteTable prints the plan as an aligned text table.
func WriteTable(w io.Writer, plan cutting.Plan) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PIPE\tCUT PIECES\tUSED\tWASTE")
	for _, b := range plan.Bars {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", barLabel(b), FormatCuts(b.Cuts), FormatLength(b.Used), FormatLength(b.Waste))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "\nTotal pipes used: %d (stock %s, %s), total waste %s\n",
		plan.BarCount(), FormatLength(plan.StockLength), plan.Policy, FormatLength(plan.TotalWaste))
	return err
}
