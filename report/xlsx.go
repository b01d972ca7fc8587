package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"
	"golang.org/x/xerrors"

	"github.com/aquasecurity/vuln-type-trends/trend"
)

const (
	countsSheet = "Counts"
	topSheet    = "Top"
)

var countsHeader = []interface{}{"Year", "Vulnerability Type", "Count"}

// WriteXLSX saves every ranked entry on one sheet and the top types, with a
// stacked column chart, on another.
func WriteXLSX(path string, entries []trend.Entry, m trend.Matrix) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", countsSheet); err != nil {
		return xerrors.Errorf("unable to rename the sheet: %w", err)
	}
	if err := f.SetSheetRow(countsSheet, "A1", &countsHeader); err != nil {
		return xerrors.Errorf("unable to write the header: %w", err)
	}
	for i, e := range entries {
		row := []interface{}{e.Year, e.VulnType, e.Count}
		if err := f.SetSheetRow(countsSheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return xerrors.Errorf("unable to write row %d: %w", i+2, err)
		}
	}

	if len(m.Types) > 0 {
		if err := writeTop(f, m); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return xerrors.Errorf("failed to save excel to %s: %w", path, err)
	}
	return nil
}

func writeTop(f *excelize.File, m trend.Matrix) error {
	if _, err := f.NewSheet(topSheet); err != nil {
		return xerrors.Errorf("unable to create the %s sheet: %w", topSheet, err)
	}

	header := []interface{}{"Vulnerability Type"}
	for _, y := range m.Years {
		header = append(header, y)
	}
	if err := f.SetSheetRow(topSheet, "A1", &header); err != nil {
		return xerrors.Errorf("unable to write the header: %w", err)
	}

	for c, vulnType := range m.Types {
		row := []interface{}{vulnType}
		for r := range m.Years {
			row = append(row, m.Counts[r][c])
		}
		if err := f.SetSheetRow(topSheet, fmt.Sprintf("A%d", c+2), &row); err != nil {
			return xerrors.Errorf("unable to write row %d: %w", c+2, err)
		}
	}

	lastRow := len(m.Types) + 1
	var series []excelize.ChartSeries
	for r := range m.Years {
		col, err := excelize.ColumnNumberToName(r + 2)
		if err != nil {
			return xerrors.Errorf("invalid column: %w", err)
		}
		series = append(series, excelize.ChartSeries{
			Name:       fmt.Sprintf("%s!$%s$1", topSheet, col),
			Categories: fmt.Sprintf("%s!$A$2:$A$%d", topSheet, lastRow),
			Values:     fmt.Sprintf("%s!$%s$2:$%s$%d", topSheet, col, col, lastRow),
		})
	}

	anchor, err := excelize.CoordinatesToCellName(len(m.Years)+3, 1)
	if err != nil {
		return xerrors.Errorf("invalid chart anchor: %w", err)
	}
	err = f.AddChart(topSheet, anchor, &excelize.Chart{
		Type:   excelize.ColStacked,
		Series: series,
		Title:  []excelize.RichTextRun{{Text: "Top Vulnerabilities by Type Across Years"}},
		Legend: excelize.ChartLegend{Position: "right"},
	})
	if err != nil {
		return xerrors.Errorf("unable to add the chart: %w", err)
	}
	return nil
}
