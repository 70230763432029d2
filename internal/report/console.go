package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// TCC interpretation bands.
const (
	tccHigh   = 0.5
	tccMedium = 0.3
)

var consoleHeader = table.Row{
	"Class", "LOC", "Meth", "LCOM", "TCC", "CBO", "Chg",
	"+Lines", "-Lines", "NLC", "Auth", "In", "Out", "Filename",
}

// Console prints the report as an aligned table.
type Console struct {
	// Color highlights TCC by cohesion band.
	Color bool
}

// Render writes one table row per class, in report order, plus a footer.
func (c Console) Render(w io.Writer, r *Report) error {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.DrawBorder = false
	tbl.Style().Options.SeparateColumns = false
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Format.Header = text.FormatDefault
	tbl.Style().Format.Footer = text.FormatDefault

	numeric := make([]table.ColumnConfig, 0, len(consoleHeader)-2)
	for i := 2; i < len(consoleHeader); i++ {
		numeric = append(numeric, table.ColumnConfig{Number: i, Align: text.AlignRight, AlignHeader: text.AlignRight})
	}
	tbl.SetColumnConfigs(numeric)

	tbl.AppendHeader(consoleHeader)

	files := make(map[string]struct{})
	for _, row := range r.Rows {
		files[row.Filename] = struct{}{}
		tbl.AppendRow(table.Row{
			row.Class,
			row.LOC,
			row.Methods,
			row.LCOM,
			c.tcc(row.TCC),
			row.CBO,
			row.Changes,
			row.LinesAdded,
			row.LinesDeleted,
			fmt.Sprintf("%.2f", row.NLC),
			row.Authors,
			row.FanIn,
			row.FanOut,
			row.Filename,
		})
	}

	tbl.AppendFooter(table.Row{
		"Classes: " + humanize.Comma(int64(len(r.Rows))),
		"", "", "", "", "", "", "", "", "", "", "", "",
		"Files: " + humanize.Comma(int64(len(files))),
	})

	_, err := io.WriteString(w, tbl.Render()+"\n")
	return err
}

func (c Console) tcc(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	if !c.Color {
		return s
	}
	col := color.New(tccBand(v))
	col.EnableColor()
	return col.Sprint(s)
}

func tccBand(v float64) color.Attribute {
	switch {
	case v >= tccHigh:
		return color.FgGreen
	case v >= tccMedium:
		return color.FgYellow
	default:
		return color.FgRed
	}
}
