// Package papers provides a typed view of the cleaned metadata table along
// with the filtering, search and sampling used by the dashboard.
package papers

import (
	"database/sql"
	"time"

	"github.com/KaramelBytes/cord19-explorer/internal/cleaning"
	"github.com/KaramelBytes/cord19-explorer/internal/table"
)

// Record is one paper's metadata row after cleaning.
type Record struct {
	Position          int
	Title             sql.NullString
	Abstract          sql.NullString
	Authors           sql.NullString
	Journal           string
	Source            sql.NullString
	PublishTime       time.Time
	Year              int
	AbstractWordCount int
}

// FromTable builds records from a cleaned table. Rows without a valid year
// are skipped so every returned record satisfies the cleaning invariants.
func FromTable(t *table.Table) []Record {
	out := make([]Record, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		year := t.Cell(i, cleaning.ColYear)
		if !year.Valid {
			continue
		}
		r := Record{
			Position:          i,
			Title:             nullString(t.Cell(i, cleaning.ColTitle)),
			Abstract:          nullString(t.Cell(i, cleaning.ColAbstract)),
			Authors:           nullString(t.Cell(i, cleaning.ColAuthors)),
			Source:            nullString(t.Cell(i, cleaning.ColSource)),
			Journal:           cleaning.UnknownJournal,
			Year:              int(year.Num),
			AbstractWordCount: int(t.Cell(i, cleaning.ColAbstractWordCount).Num),
		}
		if j := t.Cell(i, cleaning.ColJournal); j.Valid {
			r.Journal = j.Raw
		}
		if p := t.Cell(i, cleaning.ColPublishTime); p.Valid {
			if ts, ok := cleaning.ParseDate(p.Raw); ok {
				r.PublishTime = ts
			}
		}
		out = append(out, r)
	}
	return out
}

func nullString(c table.Cell) sql.NullString {
	return sql.NullString{String: c.Raw, Valid: c.Valid}
}
