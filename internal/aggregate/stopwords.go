package aggregate

// StopWords is a set of tokens excluded from title word counts.
type StopWords map[string]struct{}

// Contains reports whether w is a stop word. A nil set contains nothing.
func (s StopWords) Contains(w string) bool {
	_, ok := s[w]
	return ok
}

// With returns a new set holding s plus extra.
func (s StopWords) With(extra ...string) StopWords {
	out := make(StopWords, len(s)+len(extra))
	for w := range s {
		out[w] = struct{}{}
	}
	for _, w := range extra {
		out[w] = struct{}{}
	}
	return out
}

// NewStopWords builds a set from words.
func NewStopWords(words ...string) StopWords {
	return StopWords(nil).With(words...)
}

// BaseStopWords are English function words dropped from the batch report.
var BaseStopWords = NewStopWords(
	"a", "the", "and", "or", "of", "in", "to", "for", "with",
	"is", "on", "at", "by", "from", "as", "an", "be", "this",
	"that", "are", "have", "has", "was", "were", "been",
)

// corpusTerms name the pathogen and disease the corpus is about; they appear in
// most titles and crowd out more informative vocabulary.
var corpusTerms = []string{
	"covid", "coronavirus", "virus", "sars", "cov", "19", "disease",
	"covid19", "sarscov2", "ncov", "2019ncov",
}

// InteractiveStopWords are used by the dashboard.
var InteractiveStopWords = BaseStopWords.With(corpusTerms...)
