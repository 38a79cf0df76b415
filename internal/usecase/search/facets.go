package search

import "github.com/quillsearch/quill/internal/domain/document"

// facetDistribution counts attribute values across the filtered match set.
// List-valued attributes contribute one count per element. Requested facet
// attributes always appear in the result, even with no values counted.
func facetDistribution(ix Index, ids []string, facets []string) map[string]map[string]int {
	dist := make(map[string]map[string]int, len(facets))
	for _, attr := range facets {
		dist[attr] = map[string]int{}
	}
	for _, id := range ids {
		doc, ok := ix.Document(id)
		if !ok {
			continue
		}
		for _, attr := range facets {
			v, ok := doc.Attribute(attr)
			if !ok {
				continue
			}
			for _, scalar := range document.Scalars(v) {
				if text, ok := document.Text(scalar); ok {
					dist[attr][text]++
				}
			}
		}
	}
	return dist
}
