package trend_test

import (
	"testing"

	"github.com/kylelemons/godebug/pretty"
	"github.com/stretchr/testify/assert"

	"github.com/aquasecurity/vuln-type-trends/cvelist"
	"github.com/aquasecurity/vuln-type-trends/trend"
)

func testTable() cvelist.Table {
	return cvelist.Table{
		"2022": {
			"improper input validation": 1,
			"sql injection":             4,
			"use after free":            4,
		},
		"2020": {},
		"2021": {
			"sql injection":  2,
			"use after free": 7,
			"xss":            3,
		},
	}
}

func TestSort(t *testing.T) {
	table := testTable()
	want := []trend.Year{
		{Year: "2020", Counts: []trend.Count{}},
		{
			Year: "2021",
			Counts: []trend.Count{
				{VulnType: "use after free", Count: 7},
				{VulnType: "xss", Count: 3},
				{VulnType: "sql injection", Count: 2},
			},
		},
		{
			Year: "2022",
			Counts: []trend.Count{
				{VulnType: "sql injection", Count: 4},
				{VulnType: "use after free", Count: 4},
				{VulnType: "improper input validation", Count: 1},
			},
		},
	}

	got := trend.Sort(table)
	if diff := pretty.Compare(got, want); diff != "" {
		t.Errorf("Sort() diff: %s", diff)
	}
	assert.Equal(t, testTable(), table, "the table must not be modified")
}

func TestRankAndFlatten(t *testing.T) {
	table := testTable()
	want := []trend.Entry{
		{Year: "2021", VulnType: "use after free", Count: 7},
		{Year: "2021", VulnType: "xss", Count: 3},
		{Year: "2021", VulnType: "sql injection", Count: 2},
		{Year: "2022", VulnType: "sql injection", Count: 4},
		{Year: "2022", VulnType: "use after free", Count: 4},
		{Year: "2022", VulnType: "improper input validation", Count: 1},
	}

	first := trend.RankAndFlatten(table)
	second := trend.RankAndFlatten(table)
	assert.Equal(t, want, first)
	assert.Equal(t, first, second)
}

func TestRankAndFlatten_empty(t *testing.T) {
	assert.Empty(t, trend.RankAndFlatten(cvelist.Table{"2020": {}, "2021": {}}))
}

func TestTop(t *testing.T) {
	entries := trend.RankAndFlatten(testTable())

	tests := []struct {
		name string
		n    int
		want []string
	}{
		{
			name: "top 2",
			n:    2,
			want: []string{"use after free", "sql injection"},
		},
		{
			name: "n larger than the number of types",
			n:    10,
			want: []string{"use after free", "sql injection", "xss", "improper input validation"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, trend.Top(entries, tt.n))
		})
	}
}

func TestTop_ties(t *testing.T) {
	entries := []trend.Entry{
		{Year: "2021", VulnType: "b", Count: 1},
		{Year: "2021", VulnType: "a", Count: 1},
		{Year: "2022", VulnType: "c", Count: 1},
	}
	assert.Equal(t, []string{"a", "b"}, trend.Top(entries, 2))
}

func TestPivot(t *testing.T) {
	entries := trend.RankAndFlatten(testTable())
	m := trend.Pivot(entries, []string{"use after free", "xss"})

	want := trend.Matrix{
		Years: []string{"2021", "2022"},
		Types: []string{"use after free", "xss"},
		Counts: [][]int{
			{7, 3},
			{4, 0},
		},
	}
	if diff := pretty.Compare(m, want); diff != "" {
		t.Errorf("Pivot() diff: %s", diff)
	}
	assert.Equal(t, 11, m.Total("use after free"))
	assert.Equal(t, 3, m.Total("xss"))
	assert.Equal(t, 0, m.Total("csrf"))
	assert.Equal(t, 7, m.Max())
}

func TestFilter(t *testing.T) {
	entries := trend.RankAndFlatten(testTable())
	got := trend.Filter(entries, []string{"xss"})
	assert.Equal(t, []trend.Entry{{Year: "2021", VulnType: "xss", Count: 3}}, got)
}
