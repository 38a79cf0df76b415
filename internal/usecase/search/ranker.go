package search

import (
	"sort"
	"strings"

	"github.com/quillsearch/quill/internal/domain/document"
	"github.com/quillsearch/quill/internal/domain/search/filter"
	"github.com/quillsearch/quill/internal/domain/search/request"
	"github.com/quillsearch/quill/internal/index"
)

type ranked struct {
	doc   document.Document
	score float64
	rank  int // insertion ordinal, final tie-break
}

// rank filters candidates through the request's filter expression and
// produces a deterministic total order: explicit sort criteria first (when
// given), then relevance score descending, then insertion order.
func rank(
	ix Index, candidates []index.Candidate,
	expr filter.Expression, sortSpec []request.SortField,
) []string {
	passed := make([]ranked, 0, len(candidates))
	for _, c := range candidates {
		doc, ok := ix.Document(c.DocID)
		if !ok {
			continue
		}
		if !expr.Matches(&doc) {
			continue
		}
		passed = append(passed, ranked{doc: doc, score: c.Score, rank: ix.InsertionRank(c.DocID)})
	}

	sort.Slice(passed, func(i, j int) bool {
		a, b := &passed[i], &passed[j]
		for _, field := range sortSpec {
			av, aok := a.doc.Attribute(field.Attribute)
			bv, bok := b.doc.Attribute(field.Attribute)
			if aok != bok {
				// Documents missing the attribute sort last, in either direction.
				return aok
			}
			if !aok {
				continue
			}
			if cmp := compareValues(av, bv); cmp != 0 {
				if field.Descending {
					return cmp > 0
				}
				return cmp < 0
			}
		}
		if a.score != b.score {
			return a.score > b.score
		}
		return a.rank < b.rank
	})

	ids := make([]string, len(passed))
	for i, r := range passed {
		ids[i] = r.doc.ID()
	}
	return ids
}

// compareValues orders two attribute values. Values are tiered by type so a
// mixed-type attribute still yields one consistent order: numerics first,
// then text, then everything else. Within a tier, numerics compare
// numerically and text compares case-insensitively.
func compareValues(av, bv any) int {
	an, aNum := document.Number(av)
	bn, bNum := document.Number(bv)
	if aNum != bNum {
		if aNum {
			return -1
		}
		return 1
	}
	if aNum {
		switch {
		case an < bn:
			return -1
		case an > bn:
			return 1
		default:
			return 0
		}
	}

	at, aText := document.Text(av)
	bt, bText := document.Text(bv)
	if aText != bText {
		if aText {
			return -1
		}
		return 1
	}
	if !aText {
		return 0
	}
	return strings.Compare(strings.ToLower(at), strings.ToLower(bt))
}
