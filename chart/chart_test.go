package chart_test

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aquasecurity/vuln-type-trends/chart"
	"github.com/aquasecurity/vuln-type-trends/trend"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name      string
		entries   []trend.Entry
		wantFiles []string
	}{
		{
			name: "happy path",
			entries: []trend.Entry{
				{Year: "2021", VulnType: "use after free", Count: 7},
				{Year: "2021", VulnType: "xss", Count: 3},
				{Year: "2022", VulnType: "sql injection", Count: 4},
				{Year: "2022", VulnType: "use after free", Count: 4},
			},
			wantFiles: []string{
				"linux-top10-stackbar-2020-2022.png",
				"linux-top10-heatmap-2020-2022.png",
			},
		},
		{
			name: "single cell",
			entries: []trend.Entry{
				{Year: "2021", VulnType: "improper input validation", Count: 1},
			},
			wantFiles: []string{
				"linux-top10-stackbar-2020-2022.png",
				"linux-top10-heatmap-2020-2022.png",
			},
		},
		{
			name: "no data",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "out")
			opts := chart.Options{
				Product:   "linux",
				FromYear:  2020,
				ToYear:    2022,
				Top:       10,
				ShowTitle: true,
				DPI:       20,
				OutputDir: dir,
			}

			got, err := chart.Render(tt.entries, opts)
			require.NoError(t, err)

			if len(tt.wantFiles) == 0 {
				assert.Empty(t, got)
				_, err = os.Stat(dir)
				assert.True(t, os.IsNotExist(err), "no output should be created")
				return
			}

			var want []string
			for _, f := range tt.wantFiles {
				want = append(want, filepath.Join(dir, f))
			}
			assert.Equal(t, want, got)

			for _, path := range got {
				f, err := os.Open(path)
				require.NoError(t, err)
				cfg, err := png.DecodeConfig(f)
				f.Close()
				require.NoError(t, err, path)
				assert.Greater(t, cfg.Width, 0)
				assert.Greater(t, cfg.Height, 0)
			}
		})
	}
}

func TestOptions_Paths(t *testing.T) {
	opts := chart.Options{Product: "openssl", FromYear: 2015, ToYear: 2024, OutputDir: "plots"}
	assert.Equal(t, filepath.Join("plots", "openssl-top10-stackbar-2015-2024.png"), opts.StackBarPath())
	assert.Equal(t, filepath.Join("plots", "openssl-top10-heatmap-2015-2024.png"), opts.HeatmapPath())
}
