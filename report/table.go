package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/aquasecurity/vuln-type-trends/trend"
)

// PrintTop writes the per-year counts of the matrix types, one row per type.
func PrintTop(w io.Writer, m trend.Matrix) {
	if len(m.Types) == 0 {
		fmt.Fprint(w, color.GreenString("\nNo vulnerabilities found for the target products.\n"))
		return
	}

	fmt.Fprintf(w, "\n%s\n", color.HiMagentaString("Top %d vulnerability types:", len(m.Types)))

	table := tablewriter.NewTable(w,
		tablewriter.WithRenderer(renderer.NewBlueprint(tw.Rendition{
			Settings: tw.Settings{Separators: tw.Separators{BetweenRows: tw.Off}},
		})),
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting:   tw.CellFormatting{AutoWrap: tw.WrapNormal},
				Alignment:    tw.CellAlignment{Global: tw.AlignRight},
				ColMaxWidths: tw.CellWidth{Global: 50},
			},
		}),
	)

	header := append([]string{"Vulnerability Type"}, m.Years...)
	table.Header(append(header, "Total"))

	for c, vulnType := range m.Types {
		row := []string{vulnType}
		for r := range m.Years {
			row = append(row, strconv.Itoa(m.Counts[r][c]))
		}
		table.Append(append(row, strconv.Itoa(m.Total(vulnType))))
	}

	table.Render()
}
