// Package aggregate computes frequency summaries over cleaned paper records.
// Every function is pure and degrades to an empty result on empty input.
package aggregate

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/KaramelBytes/cord19-explorer/internal/papers"
)

// Default limits for the batch report and the dashboard.
const (
	DefaultTopJournals    = 10
	DefaultTopSources     = 10
	DefaultTopWords       = 15
	InteractiveTopSources = 8
	InteractiveTopWords   = 20
	DefaultHistogramBins  = 50
	minWordLen            = 4
)

// YearCount is the number of records published in Year.
type YearCount struct {
	Year  int `yaml:"year" json:"year"`
	Count int `yaml:"count" json:"count"`
}

// Count pairs a grouping key with its frequency.
type Count struct {
	Key   string `yaml:"key" json:"key"`
	Count int    `yaml:"count" json:"count"`
}

// YearCounts counts records per year, ascending by year.
func YearCounts(records []papers.Record) []YearCount {
	byYear := map[int]int{}
	for _, r := range records {
		byYear[r.Year]++
	}
	out := make([]YearCount, 0, len(byYear))
	for y, n := range byYear {
		out = append(out, YearCount{Year: y, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

// TopJournals returns the n most frequent journals.
func TopJournals(records []papers.Record, n int) []Count {
	c := newCounter()
	for _, r := range records {
		c.add(r.Journal)
	}
	return c.top(n)
}

// TopSources returns the n most frequent sources; absent sources are ignored.
func TopSources(records []papers.Record, n int) []Count {
	c := newCounter()
	for _, r := range records {
		if r.Source.Valid {
			c.add(r.Source.String)
		}
	}
	return c.top(n)
}

// TopTitleWords returns the k most frequent qualifying title tokens.
// Titles are lower-cased and split on whitespace; each token keeps only its
// letters and digits and is discarded when empty, shorter than four runes or
// a member of stop.
func TopTitleWords(records []papers.Record, k int, stop StopWords) []Count {
	c := newCounter()
	for _, r := range records {
		if !r.Title.Valid {
			continue
		}
		for _, w := range TitleTokens(r.Title.String, stop) {
			c.add(w)
		}
	}
	return c.top(k)
}

// TitleTokens returns the qualifying tokens of one title in order.
func TitleTokens(title string, stop StopWords) []string {
	var out []string
	for _, raw := range strings.Fields(strings.ToLower(title)) {
		w := strings.Map(func(r rune) rune {
			if unicode.IsLetter(r) || unicode.IsNumber(r) {
				return r
			}
			return -1
		}, raw)
		if w == "" || utf8.RuneCountInString(w) < minWordLen || stop.Contains(w) {
			continue
		}
		out = append(out, w)
	}
	return out
}

// counter tallies keys and remembers first appearance for tie-breaking.
type counter struct {
	counts map[string]int
	order  []string
}

func newCounter() *counter { return &counter{counts: map[string]int{}} }

func (c *counter) add(key string) {
	if _, ok := c.counts[key]; !ok {
		c.order = append(c.order, key)
	}
	c.counts[key]++
}

// top returns up to n entries by descending count; equal counts keep first-appearance order.
func (c *counter) top(n int) []Count {
	out := make([]Count, len(c.order))
	for i, k := range c.order {
		out[i] = Count{Key: k, Count: c.counts[k]}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if n >= 0 && n < len(out) {
		out = out[:n]
	}
	return out
}
