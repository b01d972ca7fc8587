package cvelist

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Table counts lower-cased vulnerability types per year.
type Table map[string]map[string]int

func (t Table) add(year, vulnType string) {
	counts, ok := t[year]
	if !ok {
		counts = map[string]int{}
		t[year] = counts
	}
	counts[vulnType]++
}

func (t Table) ensure(year string) {
	if _, ok := t[year]; !ok {
		t[year] = map[string]int{}
	}
}

// Merge adds every count of other into t.
func (t Table) Merge(other Table) {
	for year, counts := range other {
		t.ensure(year)
		for vulnType, n := range counts {
			t[year][vulnType] += n
		}
	}
}

// Years returns the table's years in ascending order.
func (t Table) Years() []string {
	years := maps.Keys(t)
	slices.Sort(years)
	return years
}

// Empty reports whether no year has any count.
func (t Table) Empty() bool {
	for _, counts := range t {
		if len(counts) > 0 {
			return false
		}
	}
	return true
}

type Result struct {
	Table Table

	// Files is the number of discovered JSON files, parsed or not.
	Files int
	// Matches is the number of affected entries naming a target product.
	Matches int
	// Malformed is the number of files that failed to decode.
	Malformed int
}
