package quill

import (
	"context"
	"fmt"
	"time"

	"github.com/quillsearch/quill/internal/domain/search/request"
	"github.com/quillsearch/quill/internal/domain/search/result"
)

// SearchOptions configures one search. Zero values mean "not provided";
// the engine applies its defaults.
type SearchOptions struct {
	Filter string

	Offset *int
	Limit  *int

	Page        *int
	HitsPerPage *int

	AttributesToRetrieve  []string
	AttributesToCrop      []string
	CropLength            *int
	AttributesToHighlight []string
	HighlightPreTag       string
	HighlightPostTag      string
	ShowMatchesPosition   bool
	Sort                  []string
	Facets                []string
}

// MatchSpan is a byte-offset range of one query-term match.
type MatchSpan struct {
	Start  int
	Length int
}

// Hit is one matched document.
type Hit struct {
	Fields          map[string]any
	Formatted       map[string]any
	MatchesPosition map[string][]MatchSpan
}

// OffsetStats is offset-mode pagination metadata.
type OffsetStats struct {
	Offset     int
	Limit      int
	NbHits     int
	Exhaustive bool
}

// PageStats is page-mode pagination metadata.
type PageStats struct {
	Page        int
	HitsPerPage int
	TotalHits   int
	TotalPages  int
}

// SearchResult is the outcome of one search. Exactly one of Offset and
// Pages is set, matching the pagination mode of the request.
type SearchResult struct {
	Hits           []Hit
	Query          string
	ProcessingTime time.Duration
	Offset         *OffsetStats
	Pages          *PageStats
	Facets         map[string]map[string]int
}

// Search runs one query against an index. A nil opts runs a placeholder
// or text search with engine defaults.
func (c *Client) Search(ctx context.Context, indexUID, query string, opts *SearchOptions) (*SearchResult, error) {
	req, err := buildRequest(indexUID, query, opts)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	resp, err := c.searchSvc.Execute(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return fromResponse(resp), nil
}

// Query is one entry of a multi-search batch.
type Query struct {
	IndexUID string
	Text     string
	Options  *SearchOptions
}

// Outcome is the per-position result of a multi-search: either a result
// or an error, never both.
type Outcome struct {
	Result *SearchResult
	Err    error
}

// MultiSearch runs independent queries, possibly concurrently, and returns
// one outcome per query in input order. A failing query never disturbs
// its siblings.
func (c *Client) MultiSearch(ctx context.Context, queries []Query) []Outcome {
	outcomes := make([]Outcome, len(queries))
	reqs := make([]*request.Request, 0, len(queries))
	positions := make([]int, 0, len(queries))
	for i, q := range queries {
		req, err := buildRequest(q.IndexUID, q.Text, q.Options)
		if err != nil {
			outcomes[i] = Outcome{Err: fmt.Errorf("multi-search query %d: %w", i, err)}
			continue
		}
		reqs = append(reqs, req)
		positions = append(positions, i)
	}

	for j, out := range c.searchSvc.ExecuteAll(ctx, reqs) {
		i := positions[j]
		if err := out.Err(); err != nil {
			outcomes[i] = Outcome{Err: err}
			continue
		}
		outcomes[i] = Outcome{Result: fromResponse(out.Response())}
	}
	return outcomes
}

func buildRequest(indexUID, query string, opts *SearchOptions) (*request.Request, error) {
	if opts == nil {
		opts = &SearchOptions{}
	}

	params := request.Params{
		Offset:                opts.Offset,
		Limit:                 opts.Limit,
		Page:                  opts.Page,
		HitsPerPage:           opts.HitsPerPage,
		AttributesToRetrieve:  opts.AttributesToRetrieve,
		AttributesToCrop:      opts.AttributesToCrop,
		CropLength:            opts.CropLength,
		AttributesToHighlight: opts.AttributesToHighlight,
		Sort:                  opts.Sort,
		Facets:                opts.Facets,
	}
	if query != "" {
		params.Query = &query
	}
	if opts.Filter != "" {
		params.Filter = &opts.Filter
	}
	if opts.HighlightPreTag != "" {
		params.HighlightPreTag = &opts.HighlightPreTag
	}
	if opts.HighlightPostTag != "" {
		params.HighlightPostTag = &opts.HighlightPostTag
	}
	if opts.ShowMatchesPosition {
		v := true
		params.ShowMatchesPosition = &v
	}

	return request.New(indexUID, params)
}

func fromResponse(resp *result.Response) *SearchResult {
	hits := make([]Hit, 0, len(resp.Hits()))
	for _, h := range resp.Hits() {
		hits = append(hits, fromHit(h))
	}

	out := &SearchResult{
		Hits:           hits,
		Query:          resp.Query(),
		ProcessingTime: resp.ProcessingTime(),
		Facets:         resp.Facets(),
	}

	if meta := resp.PageMeta(); meta != nil {
		out.Pages = &PageStats{
			Page:        meta.Page,
			HitsPerPage: meta.HitsPerPage,
			TotalHits:   meta.TotalHits,
			TotalPages:  meta.TotalPages,
		}
		return out
	}

	meta := resp.OffsetMeta()
	out.Offset = &OffsetStats{
		Offset:     meta.Offset,
		Limit:      meta.Limit,
		NbHits:     meta.NbHits,
		Exhaustive: meta.Exhaustive,
	}
	return out
}

func fromHit(h result.Hit) Hit {
	out := Hit{
		Fields:    h.Fields(),
		Formatted: h.Formatted(),
	}
	if matches := h.Matches(); matches != nil {
		out.MatchesPosition = make(map[string][]MatchSpan, len(matches))
		for attr, spans := range matches {
			converted := make([]MatchSpan, 0, len(spans))
			for _, span := range spans {
				converted = append(converted, MatchSpan{Start: span.Start, Length: span.Length})
			}
			out.MatchesPosition[attr] = converted
		}
	}
	return out
}
