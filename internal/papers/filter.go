package papers

import (
	"math"
	"sort"
	"strings"
)

// Filter selects records by an inclusive year range and a journal set.
// A nil Journals map selects every journal; a non-nil empty map selects none.
type Filter struct {
	MinYear  int
	MaxYear  int
	Journals map[string]bool
}

// Apply returns the matching records in their original order.
func (f Filter) Apply(records []Record) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if r.Year < f.MinYear || r.Year > f.MaxYear {
			continue
		}
		if f.Journals != nil && !f.Journals[r.Journal] {
			continue
		}
		out = append(out, r)
	}
	return out
}

// YearBounds returns the smallest and largest year; ok is false when records is empty.
func YearBounds(records []Record) (lo, hi int, ok bool) {
	if len(records) == 0 {
		return 0, 0, false
	}
	lo, hi = math.MaxInt, math.MinInt
	for _, r := range records {
		lo = min(lo, r.Year)
		hi = max(hi, r.Year)
	}
	return lo, hi, true
}

// Journals returns the distinct journal names sorted ascending.
func Journals(records []Record) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, r := range records {
		if _, ok := seen[r.Journal]; ok {
			continue
		}
		seen[r.Journal] = struct{}{}
		out = append(out, r.Journal)
	}
	sort.Strings(out)
	return out
}

// Search returns records whose title or abstract contains term, ignoring case.
// An empty term matches nothing.
func Search(records []Record, term string) []Record {
	needle := strings.ToLower(strings.TrimSpace(term))
	if needle == "" {
		return nil
	}
	var out []Record
	for _, r := range records {
		if r.Title.Valid && strings.Contains(strings.ToLower(r.Title.String), needle) {
			out = append(out, r)
			continue
		}
		if r.Abstract.Valid && strings.Contains(strings.ToLower(r.Abstract.String), needle) {
			out = append(out, r)
		}
	}
	return out
}
