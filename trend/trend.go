package trend

import (
	"strings"

	"github.com/samber/lo"
	"golang.org/x/exp/slices"

	"github.com/aquasecurity/vuln-type-trends/cvelist"
)

type Count struct {
	VulnType string `json:"vulnerability_type"`
	Count    int    `json:"count"`
}

// Year holds one year's counts, largest first.
type Year struct {
	Year   string  `json:"year"`
	Counts []Count `json:"counts"`
}

type Entry struct {
	Year     string
	VulnType string
	Count    int
}

// Sort orders the table by year and each year's counts by descending count.
// Equal counts are ordered by type. The table is not modified.
func Sort(t cvelist.Table) []Year {
	years := make([]Year, 0, len(t))
	for _, y := range t.Years() {
		counts := make([]Count, 0, len(t[y]))
		for vulnType, n := range t[y] {
			counts = append(counts, Count{VulnType: vulnType, Count: n})
		}
		slices.SortFunc(counts, compareCounts)
		years = append(years, Year{Year: y, Counts: counts})
	}
	return years
}

func Flatten(years []Year) []Entry {
	var entries []Entry
	for _, y := range years {
		for _, c := range y.Counts {
			entries = append(entries, Entry{Year: y.Year, VulnType: c.VulnType, Count: c.Count})
		}
	}
	return entries
}

func RankAndFlatten(t cvelist.Table) []Entry {
	return Flatten(Sort(t))
}

// Top returns the n types with the largest count summed over all years.
func Top(entries []Entry, n int) []string {
	totals := Totals(entries)

	counts := make([]Count, 0, len(totals))
	for vulnType, total := range totals {
		counts = append(counts, Count{VulnType: vulnType, Count: total})
	}
	slices.SortFunc(counts, compareCounts)

	if n < len(counts) {
		counts = counts[:n]
	}
	return lo.Map(counts, func(c Count, _ int) string {
		return c.VulnType
	})
}

// Totals sums the counts of every type over all years.
func Totals(entries []Entry) map[string]int {
	totals := map[string]int{}
	for _, e := range entries {
		totals[e.VulnType] += e.Count
	}
	return totals
}

// Filter keeps the entries whose type is one of types.
func Filter(entries []Entry, types []string) []Entry {
	return lo.Filter(entries, func(e Entry, _ int) bool {
		return slices.Contains(types, e.VulnType)
	})
}

// Matrix is a year by type grid of counts. Missing cells are zero.
type Matrix struct {
	Years  []string
	Types  []string
	Counts [][]int
}

// Pivot lays out the entries of types as a Matrix. Types keep the given order;
// years are ascending.
func Pivot(entries []Entry, types []string) Matrix {
	filtered := Filter(entries, types)

	years := lo.Uniq(lo.Map(filtered, func(e Entry, _ int) string {
		return e.Year
	}))
	slices.Sort(years)

	yearIdx := indexOf(years)
	typeIdx := indexOf(types)

	counts := make([][]int, len(years))
	for i := range counts {
		counts[i] = make([]int, len(types))
	}
	for _, e := range filtered {
		counts[yearIdx[e.Year]][typeIdx[e.VulnType]] += e.Count
	}

	return Matrix{
		Years:  years,
		Types:  slices.Clone(types),
		Counts: counts,
	}
}

// Total is the sum of the column of vulnType.
func (m Matrix) Total(vulnType string) int {
	i := slices.Index(m.Types, vulnType)
	if i < 0 {
		return 0
	}
	return lo.SumBy(m.Counts, func(row []int) int {
		return row[i]
	})
}

// Max is the largest cell value.
func (m Matrix) Max() int {
	return lo.Max(lo.Map(m.Counts, func(row []int, _ int) int {
		return lo.Max(row)
	}))
}

func compareCounts(a, b Count) int {
	if a.Count != b.Count {
		return b.Count - a.Count
	}
	return strings.Compare(a.VulnType, b.VulnType)
}

func indexOf(s []string) map[string]int {
	idx := make(map[string]int, len(s))
	for i, v := range s {
		idx[v] = i
	}
	return idx
}
