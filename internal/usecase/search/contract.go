package search

import (
	"github.com/quillsearch/quill/internal/domain/document"
	"github.com/quillsearch/quill/internal/index"
)

// Index is the read contract the query engine runs against. Implementations
// must tolerate arbitrary concurrent readers.
type Index interface {
	// Document returns an indexed document by id.
	Document(id string) (document.Document, bool)

	// Documents returns every document in insertion order.
	Documents() []document.Document

	// InsertionRank returns the stable tie-break ordinal of a document.
	InsertionRank(id string) int

	// MatchTerms scores documents against query text. Candidates are
	// unordered; each call returns a fresh sequence.
	MatchTerms(text string) ([]index.Candidate, error)
}

// Catalog resolves index uids.
type Catalog interface {
	Lookup(uid string) (Index, error)
}

// CatalogFunc adapts a lookup function to the Catalog contract.
type CatalogFunc func(uid string) (Index, error)

// Lookup resolves an index uid.
func (f CatalogFunc) Lookup(uid string) (Index, error) { return f(uid) }
