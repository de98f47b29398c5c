package papers

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/KaramelBytes/cord19-explorer/internal/cleaning"
)

// Sort keys accepted by Sample.
const (
	SortPublishTime       = "publish_time"
	SortAbstractWordCount = "abstract_word_count"
	SortJournal           = "journal"
)

// SortKeys lists the keys in display order.
var SortKeys = []string{SortPublishTime, SortAbstractWordCount, SortJournal}

// Columns written by WriteCSV for the sample view and the search view.
var (
	SampleColumns = []string{"title", "authors", "journal", "year", "abstract_word_count"}
	SearchColumns = []string{"title", "authors", "journal", "year"}
)

// Sample returns the first n records after a stable descending sort by key.
// Unknown keys fall back to publish_time.
func Sample(records []Record, n int, key string) []Record {
	sorted := slices.Clone(records)
	var cmp func(a, b Record) int
	switch key {
	case SortAbstractWordCount:
		cmp = func(a, b Record) int { return b.AbstractWordCount - a.AbstractWordCount }
	case SortJournal:
		cmp = func(a, b Record) int {
			switch {
			case a.Journal > b.Journal:
				return -1
			case a.Journal < b.Journal:
				return 1
			}
			return 0
		}
	default:
		cmp = func(a, b Record) int { return b.PublishTime.Compare(a.PublishTime) }
	}
	slices.SortStableFunc(sorted, cmp)
	if n >= 0 && n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}

// WriteCSV writes the named columns of records as CSV with a header row.
// Absent values are written as empty fields.
func WriteCSV(w io.Writer, records []Record, columns []string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	rec := make([]string, len(columns))
	for _, r := range records {
		for i, c := range columns {
			v, err := r.Field(c)
			if err != nil {
				return err
			}
			rec[i] = v
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Field returns the text form of a named field.
func (r Record) Field(name string) (string, error) {
	switch name {
	case "title":
		return r.Title.String, nil
	case "abstract":
		return r.Abstract.String, nil
	case "authors":
		return r.Authors.String, nil
	case "journal":
		return r.Journal, nil
	case "source":
		return r.Source.String, nil
	case "year":
		return strconv.Itoa(r.Year), nil
	case "abstract_word_count":
		return strconv.Itoa(r.AbstractWordCount), nil
	case "publish_time":
		if r.PublishTime.IsZero() {
			return "", nil
		}
		return cleaning.FormatDate(r.PublishTime), nil
	}
	return "", fmt.Errorf("unknown column %q", name)
}
