package aggregate

import (
	"math"

	"github.com/KaramelBytes/cord19-explorer/internal/papers"
)

// Limits sizes the top-N summaries.
type Limits struct {
	Journals int
	Sources  int
	Words    int
	Stop     StopWords
}

// BatchLimits are used by the analyze command.
func BatchLimits() Limits {
	return Limits{Journals: DefaultTopJournals, Sources: DefaultTopSources, Words: DefaultTopWords, Stop: BaseStopWords}
}

// InteractiveLimits are used by the dashboard.
func InteractiveLimits() Limits {
	return Limits{Journals: DefaultTopJournals, Sources: InteractiveTopSources, Words: InteractiveTopWords, Stop: InteractiveStopWords}
}

// Summary bundles the four frequency summaries of one selection.
type Summary struct {
	Records     int         `yaml:"records" json:"records"`
	ByYear      []YearCount `yaml:"by_year" json:"by_year"`
	TopJournals []Count     `yaml:"top_journals" json:"top_journals"`
	TopSources  []Count     `yaml:"top_sources" json:"top_sources"`
	TopWords    []Count     `yaml:"top_words" json:"top_words"`
}

// Summarize computes every summary for records.
func Summarize(records []papers.Record, lim Limits) Summary {
	return Summary{
		Records:     len(records),
		ByYear:      YearCounts(records),
		TopJournals: TopJournals(records, lim.Journals),
		TopSources:  TopSources(records, lim.Sources),
		TopWords:    TopTitleWords(records, lim.Words, lim.Stop),
	}
}

// Bin is one histogram bucket covering [Lo, Hi); the last bin includes Hi.
type Bin struct {
	Lo    float64 `yaml:"lo" json:"lo"`
	Hi    float64 `yaml:"hi" json:"hi"`
	Count int     `yaml:"count" json:"count"`
}

// AbstractHistogram buckets abstract word counts into equal-width bins.
func AbstractHistogram(records []papers.Record, bins int) []Bin {
	if len(records) == 0 || bins <= 0 {
		return nil
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, r := range records {
		x := float64(r.AbstractWordCount)
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	if lo == hi {
		lo -= 0.5
		hi += 0.5
	}
	width := (hi - lo) / float64(bins)
	out := make([]Bin, bins)
	for i := range out {
		out[i] = Bin{Lo: lo + float64(i)*width, Hi: lo + float64(i+1)*width}
	}
	for _, r := range records {
		i := int((float64(r.AbstractWordCount) - lo) / width)
		if i >= bins {
			i = bins - 1
		}
		out[i].Count++
	}
	return out
}
