package dashboard

import (
	"net/url"
	"strconv"

	"github.com/KaramelBytes/cord19-explorer/internal/papers"
)

// Sample view bounds.
const (
	MinSampleRows     = 5
	MaxSampleRows     = 50
	DefaultSampleRows = 10
)

// Selection is the user's filter state decoded from the query string.
type Selection struct {
	MinYear  int
	MaxYear  int
	Journals []string
	// Explicit is true when the journal set came from the request rather
	// than the default.
	Explicit bool
}

// Filter converts the selection into a record filter.
func (s Selection) Filter() papers.Filter {
	js := make(map[string]bool, len(s.Journals))
	for _, j := range s.Journals {
		js[j] = true
	}
	return papers.Filter{MinYear: s.MinYear, MaxYear: s.MaxYear, Journals: js}
}

// Query encodes the selection back into query parameters.
func (s Selection) Query() url.Values {
	q := url.Values{}
	q.Set("ymin", strconv.Itoa(s.MinYear))
	q.Set("ymax", strconv.Itoa(s.MaxYear))
	q.Set("filtered", "1")
	for _, j := range s.Journals {
		q.Add("journal", j)
	}
	return q
}

// ParseSelection reads ymin, ymax, journal and filtered from q. Years default
// to the data bounds and are clamped to them. Without journal parameters or
// filtered=1 the first defaultJournals sorted journals are selected.
func ParseSelection(q url.Values, snap *Snapshot, defaultJournals int) Selection {
	sel := Selection{
		MinYear: intParam(q, "ymin", snap.MinYear),
		MaxYear: intParam(q, "ymax", snap.MaxYear),
	}
	sel.MinYear = clamp(sel.MinYear, snap.MinYear, snap.MaxYear)
	sel.MaxYear = clamp(sel.MaxYear, snap.MinYear, snap.MaxYear)

	if js, ok := q["journal"]; ok || q.Get("filtered") == "1" {
		sel.Explicit = true
		sel.Journals = append([]string{}, js...)
		return sel
	}
	n := min(defaultJournals, len(snap.Journals))
	sel.Journals = append([]string{}, snap.Journals[:max(n, 0)]...)
	return sel
}

// SampleRows reads rows, clamped to [MinSampleRows, MaxSampleRows].
func SampleRows(q url.Values) int {
	return clamp(intParam(q, "rows", DefaultSampleRows), MinSampleRows, MaxSampleRows)
}

// SortKey reads sort, falling back to publish_time.
func SortKey(q url.Values) string {
	k := q.Get("sort")
	for _, s := range papers.SortKeys {
		if k == s {
			return k
		}
	}
	return papers.SortPublishTime
}

func intParam(q url.Values, name string, def int) int {
	v, err := strconv.Atoi(q.Get(name))
	if err != nil {
		return def
	}
	return v
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
