package main

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"golang.org/x/xerrors"

	"github.com/aquasecurity/vuln-type-trends/chart"
	"github.com/aquasecurity/vuln-type-trends/config"
	"github.com/aquasecurity/vuln-type-trends/cvelist"
	"github.com/aquasecurity/vuln-type-trends/report"
	"github.com/aquasecurity/vuln-type-trends/trend"
	"github.com/aquasecurity/vuln-type-trends/utils"
)

const configEnv = "VULN_TYPE_TRENDS_CONFIG"

type flags struct {
	configFile string
	fromYear   int
	toYear     int
	products   []string
	outputDir  string
	parallel   int
	jsonFile   string
	xlsxFile   string
	noProgress bool
}

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		log.Fatal(err)
	}
}

func newRootCommand() *cobra.Command {
	f := &flags{}
	cmd := &cobra.Command{
		Use:   "vuln-type-trends [flags] BASE_DIRECTORY",
		Short: "Plot the top vulnerability types of target products across years",
		Long: `Process CVE List v5 JSON files.

BASE_DIRECTORY is the cves folder of a cvelistV5 checkout (cves/<year>/<bucket>/*.json)
or a go-getter source such as an archive URL with a "//cves" suffix.`,
		Example: `  # Use targets.yaml in the current directory
  vuln-type-trends ./cvelistV5/cves

  # Override the targets
  vuln-type-trends --from 2019 --to 2024 --product linux --product linux_kernel ./cvelistV5/cves`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			targets, err := loadTargets(cmd, f)
			if err != nil {
				return err
			}
			return run(cmd.Context(), args[0], targets, f)
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&f.configFile, "config", "", "targets file (default $"+configEnv+" or ./"+config.DefaultFile+")")
	fs.IntVar(&f.fromYear, "from", 0, "first year to scan (overrides from_year)")
	fs.IntVar(&f.toYear, "to", 0, "last year to scan (overrides to_year)")
	fs.StringArrayVar(&f.products, "product", nil, "target product, repeatable (overrides products)")
	fs.StringVarP(&f.outputDir, "output-dir", "o", "", "directory for the generated files (overrides output_dir)")
	fs.IntVar(&f.parallel, "parallel", 1, "number of files decoded concurrently")
	fs.StringVar(&f.jsonFile, "json", "", "also write the sorted table to this JSON file")
	fs.StringVar(&f.xlsxFile, "xlsx", "", "also write the counts to this Excel workbook")
	fs.BoolVar(&f.noProgress, "no-progress", false, "hide the progress bar")

	return cmd
}

// loadTargets reads the targets file, if any, and applies flag overrides.
func loadTargets(cmd *cobra.Command, f *flags) (config.Targets, error) {
	path := f.configFile
	if path == "" {
		path = utils.LookupEnv(configEnv, "")
	}
	if path == "" {
		if ok, _ := utils.Exists(config.DefaultFile); ok {
			path = config.DefaultFile
		}
	}

	targets := config.Default()
	if path != "" {
		var err error
		if targets, err = config.Load(path); err != nil {
			return config.Targets{}, xerrors.Errorf("config error: %w", err)
		}
	}

	if cmd.Flags().Changed("from") {
		targets.FromYear = f.fromYear
	}
	if cmd.Flags().Changed("to") {
		targets.ToYear = f.toYear
	}
	if cmd.Flags().Changed("product") {
		targets.Products = f.products
	}
	if cmd.Flags().Changed("output-dir") {
		targets.OutputDir = f.outputDir
	}

	if err := targets.Validate(); err != nil {
		return config.Targets{}, xerrors.Errorf("invalid targets: %w", err)
	}
	return targets, nil
}

func run(ctx context.Context, src string, targets config.Targets, f *flags) error {
	baseDir := src
	if utils.IsRemote(src) {
		log.Printf("Downloading %s", src)
		dir, err := utils.DownloadToTempDir(ctx, src)
		if err != nil {
			return xerrors.Errorf("download error: %w", err)
		}
		defer os.RemoveAll(dir)
		baseDir = dir
	}

	var years []string
	for y := targets.FromYear; y <= targets.ToYear; y++ {
		years = append(years, strconv.Itoa(y))
	}
	log.Printf("Target Years = %v", years)
	log.Printf("Target Products = %v", targets.Products)
	log.Println("Processing CVE List JSON files...")

	c := cvelist.NewCollector(
		cvelist.WithWorkers(f.parallel),
		cvelist.WithProgress(!f.noProgress),
		cvelist.WithDedupeMatches(targets.DedupeMatches),
	)
	res, err := c.Collect(baseDir, targets.ProductSet(), targets.FromYear, targets.ToYear)
	if err != nil {
		return xerrors.Errorf("collect error: %w", err)
	}
	log.Printf("Vulnerabilities in target product(s) = %d", res.Matches)
	if res.Malformed > 0 {
		log.Printf("Skipped %d malformed JSON file(s)", res.Malformed)
	}

	log.Println("Sorting by instances.")
	sorted := trend.Sort(res.Table)
	entries := trend.Flatten(sorted)

	if f.jsonFile != "" {
		if err = utils.NewFs(afero.NewOsFs()).WriteJSON(f.jsonFile, sorted); err != nil {
			return xerrors.Errorf("unable to write %s: %w", f.jsonFile, err)
		}
	}

	m := trend.Pivot(entries, trend.Top(entries, targets.Top))
	report.PrintTop(os.Stdout, m)

	if f.xlsxFile != "" {
		if err = os.MkdirAll(filepath.Dir(f.xlsxFile), os.ModePerm); err != nil {
			return xerrors.Errorf("unable to create a directory: %w", err)
		}
		if err = report.WriteXLSX(f.xlsxFile, entries, m); err != nil {
			return xerrors.Errorf("xlsx error: %w", err)
		}
	}

	_, err = chart.Render(entries, chart.Options{
		Product:   targets.PrimaryProduct(),
		FromYear:  targets.FromYear,
		ToYear:    targets.ToYear,
		Top:       targets.Top,
		ShowTitle: targets.ShowPlotTitle,
		DPI:       targets.DPI,
		OutputDir: targets.OutputDir,
	})
	if err != nil {
		return xerrors.Errorf("render error: %w", err)
	}
	return nil
}
