package aggregate

import (
	"database/sql"
	"reflect"
	"testing"

	"github.com/KaramelBytes/cord19-explorer/internal/papers"
)

func rec(title, journal, source string, year, words int) papers.Record {
	r := papers.Record{Journal: journal, Year: year, AbstractWordCount: words}
	if title != "" {
		r.Title = sql.NullString{String: title, Valid: true}
	}
	if source != "" {
		r.Source = sql.NullString{String: source, Valid: true}
	}
	return r
}

func fixture() []papers.Record {
	return []papers.Record{
		rec("COVID-19 Disease Spread", "Lancet", "PMC", 2021, 120),
		rec("Disease spread patterns", "BMJ", "Medline", 2020, 80),
		rec("", "Nature", "PMC", 2020, 0),
		rec("Vaccine spread, vaccine uptake!", "BMJ", "", 2019, 200),
		rec("The role of masks", "Lancet", "WHO", 2020, 50),
	}
}

func TestYearCountsAscendingAndComplete(t *testing.T) {
	recs := fixture()
	got := YearCounts(recs)
	want := []YearCount{{2019, 1}, {2020, 3}, {2021, 1}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("year counts = %v, want %v", got, want)
	}
	sum := 0
	for _, yc := range got {
		sum += yc.Count
	}
	if sum != len(recs) {
		t.Fatalf("sum = %d, want %d", sum, len(recs))
	}
}

func TestTopJournalsStableTies(t *testing.T) {
	got := TopJournals(fixture(), 10)
	want := []Count{{"Lancet", 2}, {"BMJ", 2}, {"Nature", 1}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("top journals = %v, want %v", got, want)
	}
	if got := TopJournals(fixture(), 1); len(got) != 1 || got[0].Key != "Lancet" {
		t.Fatalf("truncated = %v", got)
	}
}

func TestTopSourcesSkipsAbsent(t *testing.T) {
	got := TopSources(fixture(), InteractiveTopSources)
	want := []Count{{"PMC", 2}, {"Medline", 1}, {"WHO", 1}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("top sources = %v, want %v", got, want)
	}
}

func TestTopNExcludesNothingLarger(t *testing.T) {
	var recs []papers.Record
	for i, j := range []string{"a", "b", "b", "c", "c", "c", "d", "d", "d", "d"} {
		recs = append(recs, rec("", j, "", 2020+i%2, 0))
	}
	top := TopJournals(recs, 2)
	if len(top) != 2 {
		t.Fatalf("len = %d", len(top))
	}
	for i := 1; i < len(top); i++ {
		if top[i].Count > top[i-1].Count {
			t.Fatalf("not descending: %v", top)
		}
	}
	all := TopJournals(recs, -1)
	for _, c := range all[2:] {
		if c.Count > top[len(top)-1].Count {
			t.Fatalf("excluded %v larger than included %v", c, top)
		}
	}
}

func TestTopTitleWords(t *testing.T) {
	recs := []papers.Record{
		rec("COVID-19 Disease Spread", "J", "", 2020, 0),
		rec("Disease spread patterns", "J", "", 2020, 0),
	}
	got := TopTitleWords(recs, InteractiveTopWords, InteractiveStopWords)
	want := []Count{{"spread", 2}, {"patterns", 1}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("interactive words = %v, want %v", got, want)
	}

	// The batch stop set keeps corpus terms; punctuation is stripped inside tokens.
	got = TopTitleWords(recs, DefaultTopWords, BaseStopWords)
	want = []Count{{"disease", 2}, {"spread", 2}, {"covid19", 1}, {"patterns", 1}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("batch words = %v, want %v", got, want)
	}
}

func TestTitleTokensFiltering(t *testing.T) {
	got := TitleTokens("The role of masks: vaccine, vaccine uptake! ...  ab-c ÉTUDE", BaseStopWords)
	want := []string{"role", "masks", "vaccine", "vaccine", "uptake", "étude"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("tokens = %v, want %v", got, want)
	}
}

func TestEmptyInputsDegrade(t *testing.T) {
	if got := YearCounts(nil); len(got) != 0 {
		t.Fatalf("year counts = %v", got)
	}
	if got := TopJournals(nil, 10); len(got) != 0 {
		t.Fatalf("journals = %v", got)
	}
	if got := TopSources([]papers.Record{rec("x", "J", "", 2020, 0)}, 10); len(got) != 0 {
		t.Fatalf("all-absent sources = %v", got)
	}
	if got := TopTitleWords(nil, 10, nil); len(got) != 0 {
		t.Fatalf("words = %v", got)
	}
	if got := AbstractHistogram(nil, 50); got != nil {
		t.Fatalf("histogram = %v", got)
	}
	s := Summarize(nil, BatchLimits())
	if s.Records != 0 || len(s.ByYear) != 0 {
		t.Fatalf("summary = %+v", s)
	}
}

func TestAbstractHistogram(t *testing.T) {
	bins := AbstractHistogram(fixture(), 4)
	if len(bins) != 4 {
		t.Fatalf("bins = %d", len(bins))
	}
	total := 0
	for _, b := range bins {
		total += b.Count
	}
	if total != 5 {
		t.Fatalf("total = %d", total)
	}
	if bins[0].Lo != 0 || bins[3].Hi != 200 || bins[3].Count != 1 {
		t.Fatalf("bins = %+v", bins)
	}
	same := AbstractHistogram([]papers.Record{rec("", "J", "", 2020, 7)}, 3)
	if same[1].Count != 1 {
		t.Fatalf("single value bins = %+v", same)
	}
}

func TestSummarizeUsesLimits(t *testing.T) {
	s := Summarize(fixture(), Limits{Journals: 1, Sources: 1, Words: 2, Stop: BaseStopWords})
	if s.Records != 5 || len(s.TopJournals) != 1 || len(s.TopSources) != 1 || len(s.TopWords) != 2 {
		t.Fatalf("summary = %+v", s)
	}
}
