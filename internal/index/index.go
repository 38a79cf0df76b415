// Package index provides the in-memory inverted index the query engine
// runs against: tokenization, positional postings, term-match scoring,
// and a registry of named indexes.
package index

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"sync"

	"github.com/quillsearch/quill/internal/domain"
	"github.com/quillsearch/quill/internal/domain/document"
)

// attributeStride separates token positions of different attributes so
// proximity boosts never cross attribute boundaries.
const attributeStride = 1 << 16

var uidRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Candidate is a document that potentially matches a query, with its
// relevance score. Produced by term matching, consumed by ranking.
type Candidate struct {
	DocID string
	Score float64
}

// occurrence records where a term appears inside one document.
type occurrence struct {
	frequency int
	positions []int // sorted, attribute-strided
	bestAttr  int   // lowest searchable-attribute rank containing the term
}

type posting struct {
	entries map[string]*occurrence // docID -> occurrence
}

// Index is a named document collection with an inverted search structure.
// Reads are safe for arbitrary concurrency; additions take the write lock.
type Index struct {
	uid        string
	primaryKey string
	searchable []string // attribute priority order; empty means all, equal weight

	mu       sync.RWMutex
	docs     map[string]document.Document
	order    []string       // insertion order of document ids
	ordinal  map[string]int // docID -> insertion ordinal
	terms    map[string]*posting
	docTerms map[string][]string // docID -> terms it contributed, for replacement
}

// Option configures an Index.
type Option func(*Index)

// WithPrimaryKey sets the attribute documents are identified by (default "id").
func WithPrimaryKey(key string) Option {
	return func(ix *Index) { ix.primaryKey = key }
}

// WithSearchableAttributes restricts indexing to the given attributes, in
// decreasing order of ranking weight. Unset means every string attribute
// is searchable with equal weight.
func WithSearchableAttributes(attrs ...string) Option {
	return func(ix *Index) { ix.searchable = append([]string(nil), attrs...) }
}

// New creates an empty index. The uid must match ^[a-zA-Z0-9_-]+$.
func New(uid string, opts ...Option) (*Index, error) {
	if uid == "" {
		return nil, fmt.Errorf("index uid is required")
	}
	if !uidRegex.MatchString(uid) {
		return nil, fmt.Errorf("index uid %q must be alphanumeric with underscores and hyphens", uid)
	}
	ix := &Index{
		uid:        uid,
		primaryKey: "id",
		docs:       map[string]document.Document{},
		ordinal:    map[string]int{},
		terms:      map[string]*posting{},
		docTerms:   map[string][]string{},
	}
	for _, o := range opts {
		o(ix)
	}
	return ix, nil
}

// UID returns the index identifier.
func (ix *Index) UID() string { return ix.uid }

// PrimaryKey returns the identifying attribute name.
func (ix *Index) PrimaryKey() string { return ix.primaryKey }

// SearchableAttributes returns the configured attribute priority order.
func (ix *Index) SearchableAttributes() []string { return ix.searchable }

// Size returns the number of indexed documents.
func (ix *Index) Size() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.docs)
}

// Add indexes documents. A document whose id is already present replaces
// the previous version in place, keeping its original insertion ordinal.
func (ix *Index) Add(docs ...document.Document) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	for _, doc := range docs {
		if doc.ID() == "" {
			return fmt.Errorf("%w: missing %q attribute", domain.ErrInvalidDocument, ix.primaryKey)
		}
		ix.add(doc)
	}
	return nil
}

func (ix *Index) add(doc document.Document) {
	id := doc.ID()
	if _, exists := ix.docs[id]; exists {
		ix.removePostings(id)
	} else {
		ix.ordinal[id] = len(ix.order)
		ix.order = append(ix.order, id)
	}
	ix.docs[id] = doc

	var contributed []string
	for rank, attr := range ix.searchableAttrs(&doc) {
		text, ok := attributeText(&doc, attr)
		if !ok {
			continue
		}
		for _, tok := range Analyze(text) {
			p := ix.terms[tok.Term]
			if p == nil {
				p = &posting{entries: map[string]*occurrence{}}
				ix.terms[tok.Term] = p
			}
			occ := p.entries[id]
			if occ == nil {
				occ = &occurrence{bestAttr: rank}
				p.entries[id] = occ
				contributed = append(contributed, tok.Term)
			}
			occ.frequency++
			occ.positions = append(occ.positions, rank*attributeStride+tok.Position)
			if rank < occ.bestAttr {
				occ.bestAttr = rank
			}
		}
	}
	ix.docTerms[id] = contributed
}

func (ix *Index) removePostings(id string) {
	for _, term := range ix.docTerms[id] {
		p := ix.terms[term]
		if p == nil {
			continue
		}
		delete(p.entries, id)
		if len(p.entries) == 0 {
			delete(ix.terms, term)
		}
	}
	delete(ix.docTerms, id)
}

// searchableAttrs returns the attributes to index for doc, in rank order.
func (ix *Index) searchableAttrs(doc *document.Document) []string {
	if len(ix.searchable) > 0 {
		return ix.searchable
	}
	attrs := make([]string, 0, len(doc.Attributes()))
	for name := range doc.Attributes() {
		attrs = append(attrs, name)
	}
	sort.Strings(attrs)
	return attrs
}

// attributeText flattens an attribute value into searchable text.
// Only strings (and string lists) contribute terms.
func attributeText(doc *document.Document, attr string) (string, bool) {
	v, ok := doc.Attribute(attr)
	if !ok {
		return "", false
	}
	switch s := v.(type) {
	case string:
		return s, true
	case []any:
		var joined string
		for _, el := range s {
			if str, isStr := el.(string); isStr {
				if joined != "" {
					joined += " "
				}
				joined += str
			}
		}
		return joined, joined != ""
	default:
		return "", false
	}
}

// Document returns the indexed document with the given id.
func (ix *Index) Document(id string) (document.Document, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	doc, ok := ix.docs[id]
	return doc, ok
}

// Documents returns every indexed document in insertion order.
func (ix *Index) Documents() []document.Document {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	out := make([]document.Document, 0, len(ix.order))
	for _, id := range ix.order {
		out = append(out, ix.docs[id])
	}
	return out
}

// InsertionRank returns the stable tie-break ordinal of a document.
// Unknown ids sort after every known document.
func (ix *Index) InsertionRank(id string) int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	if rank, ok := ix.ordinal[id]; ok {
		return rank
	}
	return math.MaxInt
}

// MatchTerms scores documents against the query text. The returned
// candidates are unordered; each call produces a fresh, independent slice.
func (ix *Index) MatchTerms(text string) ([]Candidate, error) {
	queryTokens := Analyze(text)
	if len(queryTokens) == 0 {
		return nil, nil
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	totalDocs := float64(len(ix.docs))
	scores := map[string]float64{}
	matched := map[string]int{}

	for _, tok := range queryTokens {
		p := ix.terms[tok.Term]
		if p == nil {
			continue
		}
		idf := math.Log(1 + totalDocs/float64(1+len(p.entries)))
		for docID, occ := range p.entries {
			tf := 1 + math.Log(float64(occ.frequency))
			attrBoost := 1 + 0.5/float64(1+occ.bestAttr)
			scores[docID] += tf * idf * attrBoost
			matched[docID]++
		}
	}

	candidates := make([]Candidate, 0, len(scores))
	for docID, score := range scores {
		// Coverage bonus: matching more of the query never scores below
		// matching less of it, and a full match strictly dominates any
		// partial match of the same document.
		coverage := float64(matched[docID]) / float64(len(queryTokens))
		score *= 1 + coverage

		if matched[docID] > 1 {
			score *= ix.proximityBoost(queryTokens, docID)
		}
		candidates = append(candidates, Candidate{DocID: docID, Score: score})
	}
	return candidates, nil
}

// proximityBoost rewards adjacent query terms appearing adjacently in the
// document, within a single attribute.
func (ix *Index) proximityBoost(queryTokens []Token, docID string) float64 {
	boost := 1.0
	for i := 0; i+1 < len(queryTokens); i++ {
		first := ix.termPositions(queryTokens[i].Term, docID)
		second := ix.termPositions(queryTokens[i+1].Term, docID)
		if adjacent(first, second, queryTokens[i+1].Position-queryTokens[i].Position) {
			boost *= 1.15
		}
	}
	return boost
}

func (ix *Index) termPositions(term, docID string) []int {
	p := ix.terms[term]
	if p == nil {
		return nil
	}
	occ := p.entries[docID]
	if occ == nil {
		return nil
	}
	return occ.positions
}

// adjacent reports whether some position in second equals a position in
// first plus gap (both slices are sorted).
func adjacent(first, second []int, gap int) bool {
	j := 0
	for _, pos := range first {
		want := pos + gap
		for j < len(second) && second[j] < want {
			j++
		}
		if j < len(second) && second[j] == want {
			return true
		}
	}
	return false
}
