package search

import (
	"github.com/quillsearch/quill/internal/domain/search/query"
	"github.com/quillsearch/quill/internal/index"
)

// browseScore is the uniform score of placeholder-query candidates.
const browseScore = 1.0

// retrieve produces the unordered candidate set for a query. The
// placeholder query yields every document with a uniform score; a text
// query yields term-matched documents with relevance scores.
func retrieve(ix Index, q query.Query) ([]index.Candidate, error) {
	if q.IsPlaceholder() {
		docs := ix.Documents()
		candidates := make([]index.Candidate, 0, len(docs))
		for _, d := range docs {
			candidates = append(candidates, index.Candidate{DocID: d.ID(), Score: browseScore})
		}
		return candidates, nil
	}
	return ix.MatchTerms(q.Text())
}
