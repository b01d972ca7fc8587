package chart

import (
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"golang.org/x/xerrors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/aquasecurity/vuln-type-trends/trend"
)

const (
	title = "Top 10 Vulnerabilities by Type Across Years"

	barWidth = 20
)

type Options struct {
	// Product names the output files.
	Product   string
	FromYear  int
	ToYear    int
	Top       int
	ShowTitle bool
	DPI       int
	OutputDir string
}

func (o Options) StackBarPath() string {
	return filepath.Join(o.OutputDir, fmt.Sprintf("%s-top10-stackbar-%d-%d.png", o.Product, o.FromYear, o.ToYear))
}

func (o Options) HeatmapPath() string {
	return filepath.Join(o.OutputDir, fmt.Sprintf("%s-top10-heatmap-%d-%d.png", o.Product, o.FromYear, o.ToYear))
}

// Render draws the stacked bar chart and the heatmap of the top types and
// returns the written file paths. Nothing is written when entries is empty.
func Render(entries []trend.Entry, opts Options) ([]string, error) {
	if len(entries) == 0 {
		log.Println("No vulnerability data to plot.")
		return nil, nil
	}

	m := trend.Pivot(entries, trend.Top(entries, opts.Top))

	if opts.OutputDir != "" {
		if err := os.MkdirAll(opts.OutputDir, os.ModePerm); err != nil {
			return nil, xerrors.Errorf("unable to create the output directory: %w", err)
		}
	}

	log.Printf("Saving stack bar for %s from %d to %d", opts.Product, opts.FromYear, opts.ToYear)
	bar, err := StackBar(m, opts.ShowTitle)
	if err != nil {
		return nil, xerrors.Errorf("unable to draw the stack bar: %w", err)
	}
	if err = save(bar, 15*vg.Inch, 15*vg.Inch, opts.DPI, opts.StackBarPath()); err != nil {
		return nil, err
	}

	log.Printf("Saving heatmap for %s from %d to %d", opts.Product, opts.FromYear, opts.ToYear)
	heat, err := Heatmap(m, opts.ShowTitle)
	if err != nil {
		return nil, xerrors.Errorf("unable to draw the heatmap: %w", err)
	}
	if err = save(heat, 15*vg.Inch, 10*vg.Inch, opts.DPI, opts.HeatmapPath()); err != nil {
		return nil, err
	}

	return []string{opts.StackBarPath(), opts.HeatmapPath()}, nil
}

// StackBar plots one bar per type, stacked by year.
func StackBar(m trend.Matrix, showTitle bool) (*plot.Plot, error) {
	p := plot.New()
	if showTitle {
		p.Title.Text = title
	}
	p.X.Label.Text = "Vulnerability Type"
	p.Y.Label.Text = "Count"
	p.Legend.Top = true

	var below *plotter.BarChart
	for i, year := range m.Years {
		values := make(plotter.Values, len(m.Types))
		for j := range m.Types {
			values[j] = float64(m.Counts[i][j])
		}

		bars, err := plotter.NewBarChart(values, vg.Points(barWidth))
		if err != nil {
			return nil, xerrors.Errorf("bar chart error (%s): %w", year, err)
		}
		bars.LineStyle.Width = 0
		bars.Color = plotutil.Color(i)
		if below != nil {
			bars.StackOn(below)
		}
		p.Add(bars)
		p.Legend.Add(year, bars)
		below = bars
	}

	p.NominalX(m.Types...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
	return p, nil
}

// Heatmap plots years against types, annotating each cell with its count.
func Heatmap(m trend.Matrix, showTitle bool) (*plot.Plot, error) {
	p := plot.New()
	if showTitle {
		p.Title.Text = title
	}
	p.X.Label.Text = "Vulnerability Type"
	p.Y.Label.Text = "Year"

	hm := plotter.NewHeatMap(grid{m: m}, palette.Heat(12, 1))
	hm.Min = 0
	hm.Max = float64(m.Max())
	if hm.Max <= hm.Min {
		hm.Max = hm.Min + 1
	}
	p.Add(hm)

	var xys plotter.XYs
	var labels []string
	for r := range m.Years {
		for c := range m.Types {
			xys = append(xys, plotter.XY{X: float64(c), Y: float64(r)})
			labels = append(labels, strconv.Itoa(m.Counts[r][c]))
		}
	}
	l, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: labels})
	if err != nil {
		return nil, xerrors.Errorf("label error: %w", err)
	}
	for i := range l.TextStyle {
		l.TextStyle[i].XAlign = draw.XCenter
		l.TextStyle[i].YAlign = draw.YCenter
	}
	p.Add(l)

	p.X.Tick.Marker = plot.ConstantTicks(ticks(m.Types))
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
	p.Y.Tick.Marker = plot.ConstantTicks(ticks(m.Years))
	return p, nil
}

// grid adapts a Matrix to plotter.GridXYZ: columns are types, rows are years.
type grid struct {
	m trend.Matrix
}

func (g grid) Dims() (c, r int) {
	return len(g.m.Types), len(g.m.Years)
}

func (g grid) Z(c, r int) float64 {
	return float64(g.m.Counts[r][c])
}

func (g grid) X(c int) float64 {
	return float64(c)
}

func (g grid) Y(r int) float64 {
	return float64(r)
}

func ticks(names []string) []plot.Tick {
	t := make([]plot.Tick, len(names))
	for i, name := range names {
		t[i] = plot.Tick{Value: float64(i), Label: name}
	}
	return t
}

func save(p *plot.Plot, w, h vg.Length, dpi int, path string) error {
	c := vgimg.PngCanvas{Canvas: vgimg.NewWith(vgimg.UseWH(w, h), vgimg.UseDPI(dpi))}
	p.Draw(draw.New(c))

	f, err := os.Create(path)
	if err != nil {
		return xerrors.Errorf("unable to create %s: %w", path, err)
	}
	defer f.Close()

	if _, err = c.WriteTo(f); err != nil {
		return xerrors.Errorf("unable to write %s: %w", path, err)
	}
	log.Println("Done.")
	return nil
}
