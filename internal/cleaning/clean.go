// Package cleaning derives and normalizes the paper metadata columns.
package cleaning

import (
	"github.com/KaramelBytes/cord19-explorer/internal/table"
	"github.com/KaramelBytes/cord19-explorer/internal/utils"
)

// Column names read and written by Clean.
const (
	ColTitle             = "title"
	ColAbstract          = "abstract"
	ColAuthors           = "authors"
	ColJournal           = "journal"
	ColSource            = "source"
	ColPublishTime       = "publish_time"
	ColYear              = "year"
	ColAbstractWordCount = "abstract_word_count"
)

// UnknownJournal replaces absent journal names.
const UnknownJournal = "Unknown"

// RequiredColumns are the input columns the batch pipeline insists on.
var RequiredColumns = []string{ColTitle, ColAbstract, ColAuthors, ColJournal, ColSource, ColPublishTime}

// Stats summarizes one cleaning pass.
type Stats struct {
	RowsIn         int
	RowsOut        int
	DroppedNoYear  int
	JournalsFilled int
}

// Clean returns a new table with publish_time parsed, year and
// abstract_word_count derived, rows without a year dropped and absent
// journals set to UnknownJournal. The input table is not modified and the
// surviving rows keep their relative order. Clean never fails: bad values
// degrade to absent.
func Clean(in *table.Table) (*table.Table, Stats) {
	t := in.Clone()
	st := Stats{RowsIn: t.Len()}

	n := t.Len()
	published := make([]table.Cell, n)
	years := make([]table.Cell, n)
	for i := 0; i < n; i++ {
		c := t.Cell(i, ColPublishTime)
		if !c.Valid {
			continue
		}
		ts, ok := ParseDate(c.Raw)
		if !ok {
			continue
		}
		published[i] = table.Text(FormatDate(ts))
		years[i] = table.Int(ts.Year())
	}
	t.SetColumn(ColPublishTime, table.KindText, published)
	t.SetColumn(ColYear, table.KindNumeric, years)

	dated := t
	yearIdx := dated.Index(ColYear)
	t = dated.Filter(func(i int) bool { return dated.Rows[i][yearIdx].Valid })
	st.DroppedNoYear = st.RowsIn - t.Len()

	n = t.Len()
	wordCounts := make([]table.Cell, n)
	journals := make([]table.Cell, n)
	for i := 0; i < n; i++ {
		abstract := t.Cell(i, ColAbstract)
		words := 0
		if abstract.Valid {
			words = utils.CountWords(abstract.Raw)
		}
		wordCounts[i] = table.Int(words)

		j := t.Cell(i, ColJournal)
		if !j.Valid {
			j = table.Text(UnknownJournal)
			st.JournalsFilled++
		}
		journals[i] = j
	}
	t.SetColumn(ColAbstractWordCount, table.KindNumeric, wordCounts)
	t.SetColumn(ColJournal, table.KindText, journals)

	st.RowsOut = t.Len()
	return t, st
}
