package pipeline

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
)

// RenderRetention writes the per-stage retention ledger as a table. The last
// column is the share of the extracted records still present after the stage.
func RenderRetention(w io.Writer, r Report) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Stage", "Subset", "In", "Out", "Excluded", "Retained"})

	for _, st := range r.Retention {
		t.AppendRow(table.Row{st.Stage, string(st.Subset), st.In, st.Out, st.Excluded, percent(st.Out, r.Extracted)})
	}

	t.AppendFooter(table.Row{"extracted", "", r.Extracted, r.Loaded, r.Extracted - r.Loaded, percent(r.Loaded, r.Extracted)})
	t.Render()
}

func percent(part, whole int) string {
	if whole == 0 {
		return "-"
	}
	return fmt.Sprintf("%.2f%%", float64(part)*100/float64(whole))
}
