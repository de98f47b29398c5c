package papers

// Stats are the headline numbers shown for a filtered selection.
type Stats struct {
	Total            int     `json:"total"`
	UniqueJournals   int     `json:"unique_journals"`
	WithAuthors      int     `json:"with_authors"`
	MinYear          int     `json:"min_year"`
	MaxYear          int     `json:"max_year"`
	AvgAbstractWords float64 `json:"avg_abstract_words"`
	MinAbstractWords int     `json:"min_abstract_words"`
	MaxAbstractWords int     `json:"max_abstract_words"`
}

// Summarize computes Stats; all fields are zero for an empty selection.
func Summarize(records []Record) Stats {
	s := Stats{Total: len(records)}
	if len(records) == 0 {
		return s
	}
	journals := map[string]struct{}{}
	sum := 0
	s.MinAbstractWords = records[0].AbstractWordCount
	s.MaxAbstractWords = records[0].AbstractWordCount
	for _, r := range records {
		journals[r.Journal] = struct{}{}
		if r.Authors.Valid {
			s.WithAuthors++
		}
		sum += r.AbstractWordCount
		s.MinAbstractWords = min(s.MinAbstractWords, r.AbstractWordCount)
		s.MaxAbstractWords = max(s.MaxAbstractWords, r.AbstractWordCount)
	}
	s.UniqueJournals = len(journals)
	s.MinYear, s.MaxYear, _ = YearBounds(records)
	s.AvgAbstractWords = float64(sum) / float64(len(records))
	return s
}
