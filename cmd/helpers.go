package cmd

import (
	"errors"
	"fmt"

	"github.com/KaramelBytes/cord19-explorer/internal/dashboard"
	"github.com/KaramelBytes/cord19-explorer/internal/papers"
	"github.com/KaramelBytes/cord19-explorer/internal/table"
)

// tableOptions builds load options from the --delimiter flag, falling back to config.
func tableOptions(delim string, maxRows int) (table.Options, error) {
	opt := table.DefaultOptions()
	opt.MaxRows = maxRows
	if delim == "" {
		opt.Delimiter = cfg.DelimiterRune()
		return opt, nil
	}
	switch delim {
	case ",":
		opt.Delimiter = ','
	case "\t", "tab":
		opt.Delimiter = '\t'
	case ";":
		opt.Delimiter = ';'
	case "auto":
		opt.Delimiter = 0
	default:
		return opt, fmt.Errorf("unsupported --delimiter: %s", delim)
	}
	return opt, nil
}

// loadCleaned reads the cleaned file written by analyze.
func loadCleaned(path string) (*dashboard.Snapshot, error) {
	if path == "" {
		path = cfg.CleanedPath
	}
	opt, err := tableOptions("", 0)
	if err != nil {
		return nil, err
	}
	snap, err := dashboard.NewCache(path, opt).Get()
	if errors.Is(err, dashboard.ErrNoData) {
		return nil, fmt.Errorf("%w; run 'cord19 analyze' first", err)
	}
	return snap, err
}

// recordFilter builds a filter from CLI flags. Zero years mean the data bounds
// and an empty journal list selects every journal.
func recordFilter(snap *dashboard.Snapshot, ymin, ymax int, journals []string) papers.Filter {
	f := papers.Filter{MinYear: snap.MinYear, MaxYear: snap.MaxYear}
	if ymin != 0 {
		f.MinYear = ymin
	}
	if ymax != 0 {
		f.MaxYear = ymax
	}
	if len(journals) > 0 {
		f.Journals = make(map[string]bool, len(journals))
		for _, j := range journals {
			f.Journals[j] = true
		}
	}
	return f
}
