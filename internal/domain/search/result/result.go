// Package result holds search response types: formatted hits, the two
// mutually exclusive pagination metadata shapes, and facet distributions.
package result

import "time"

// Span is one query-term match inside an attribute value (byte offsets).
type Span struct {
	Start  int
	Length int
}

// Hit is a single formatted search result.
type Hit struct {
	fields    map[string]any
	formatted map[string]any
	matches   map[string][]Span
}

// NewHit creates a hit. formatted and matches may be nil when the request
// asked for neither cropping/highlighting nor match positions.
func NewHit(fields, formatted map[string]any, matches map[string][]Span) Hit {
	return Hit{fields: fields, formatted: formatted, matches: matches}
}

// Fields returns the projected attribute values.
func (h *Hit) Fields() map[string]any { return h.fields }

// Formatted returns the cropped/highlighted attribute values, nil if none.
func (h *Hit) Formatted() map[string]any { return h.formatted }

// Matches returns per-attribute match positions, nil unless requested.
func (h *Hit) Matches() map[string][]Span { return h.matches }

// OffsetMeta is pagination metadata for offset/limit mode.
type OffsetMeta struct {
	Offset     int
	Limit      int
	NbHits     int
	Exhaustive bool
}

// PageMeta is pagination metadata for page/hitsPerPage mode.
type PageMeta struct {
	Page        int
	HitsPerPage int
	TotalHits   int
	TotalPages  int
}

// Response is the outcome of one executed search. Exactly one of the two
// pagination metadata shapes is set, mirroring the request's mode.
type Response struct {
	hits           []Hit
	query          string
	processingTime time.Duration
	offsetMeta     *OffsetMeta
	pageMeta       *PageMeta
	facets         map[string]map[string]int
}

// NewOffset creates a response for an offset/limit request.
func NewOffset(
	hits []Hit, query string, took time.Duration,
	meta OffsetMeta, facets map[string]map[string]int,
) *Response {
	return &Response{
		hits: hits, query: query, processingTime: took,
		offsetMeta: &meta, facets: facets,
	}
}

// NewPaged creates a response for a page/hitsPerPage request.
func NewPaged(
	hits []Hit, query string, took time.Duration,
	meta PageMeta, facets map[string]map[string]int,
) *Response {
	return &Response{
		hits: hits, query: query, processingTime: took,
		pageMeta: &meta, facets: facets,
	}
}

// Hits returns the ordered page of formatted hits.
func (r *Response) Hits() []Hit { return r.hits }

// Query returns the echoed query text.
func (r *Response) Query() string { return r.query }

// ProcessingTime returns the measured execution time.
func (r *Response) ProcessingTime() time.Duration { return r.processingTime }

// OffsetMeta returns offset-mode metadata, nil in page mode.
func (r *Response) OffsetMeta() *OffsetMeta { return r.offsetMeta }

// PageMeta returns page-mode metadata, nil in offset mode.
func (r *Response) PageMeta() *PageMeta { return r.pageMeta }

// Facets returns the facet distribution, nil when no facets were requested.
func (r *Response) Facets() map[string]map[string]int { return r.facets }
