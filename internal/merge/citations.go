package merge

import "github.com/sells-group/teaser-cli/internal/model"

// CitationStore accumulates citations in insertion order. It is not safe for
// concurrent use; profile assembly appends from a single goroutine.
type CitationStore struct {
	citations []model.Citation
}

// NewCitationStore creates an empty store.
func NewCitationStore() *CitationStore {
	return &CitationStore{}
}

// Add records one citation.
func (s *CitationStore) Add(claim string, source model.SourceType, ref, details string) {
	s.citations = append(s.citations, model.Citation{
		Claim:      claim,
		SourceType: source,
		Ref:        ref,
		Details:    details,
	})
}

// List returns the recorded citations in insertion order.
func (s *CitationStore) List() []model.Citation {
	return s.citations
}
