package config

import (
	"os"
	"strings"

	"golang.org/x/xerrors"
	"gopkg.in/yaml.v2"
)

const (
	DefaultFile = "targets.yaml"

	defaultTop       = 10
	defaultDPI       = 300
	defaultOutputDir = "."
)

// Targets is the run-wide configuration. It is loaded once and not modified
// after Validate succeeds.
type Targets struct {
	FromYear      int      `yaml:"from_year"`
	ToYear        int      `yaml:"to_year"`
	Products      []string `yaml:"products"`
	ShowPlotTitle bool     `yaml:"show_plot_title"`

	Top       int    `yaml:"top"`
	DPI       int    `yaml:"dpi"`
	OutputDir string `yaml:"output_dir"`

	// DedupeMatches counts a record's problem types once even when several
	// affected entries name a target product.
	DedupeMatches bool `yaml:"dedupe_matches"`
}

func Default() Targets {
	return Targets{
		ShowPlotTitle: true,
		Top:           defaultTop,
		DPI:           defaultDPI,
		OutputDir:     defaultOutputDir,
	}
}

// Load reads a YAML targets file on top of Default.
func Load(path string) (Targets, error) {
	t := Default()

	f, err := os.Open(path)
	if err != nil {
		return Targets{}, xerrors.Errorf("unable to open targets file: %w", err)
	}
	defer f.Close()

	if err = yaml.NewDecoder(f).Decode(&t); err != nil {
		return Targets{}, xerrors.Errorf("unable to decode YAML (%s): %w", path, err)
	}
	return t, nil
}

func (t Targets) Validate() error {
	if !validYear(t.FromYear) || !validYear(t.ToYear) {
		return xerrors.Errorf("years must be four digits: from_year=%d, to_year=%d", t.FromYear, t.ToYear)
	}
	if t.FromYear > t.ToYear {
		return xerrors.Errorf("from_year (%d) is after to_year (%d)", t.FromYear, t.ToYear)
	}
	if len(t.ProductSet()) == 0 {
		return xerrors.New("at least one product must be specified")
	}
	if t.Top <= 0 {
		return xerrors.Errorf("top must be positive: %d", t.Top)
	}
	if t.DPI <= 0 {
		return xerrors.Errorf("dpi must be positive: %d", t.DPI)
	}
	return nil
}

// ProductSet returns the lower-cased product names. Blank names are dropped.
func (t Targets) ProductSet() map[string]struct{} {
	set := make(map[string]struct{}, len(t.Products))
	for _, p := range t.Products {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		set[p] = struct{}{}
	}
	return set
}

// PrimaryProduct is the lower-cased first product, used to name output files.
func (t Targets) PrimaryProduct() string {
	for _, p := range t.Products {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			return p
		}
	}
	return ""
}

func validYear(y int) bool {
	return y >= 1000 && y <= 9999
}
