package chi

import (
	"github.com/quillsearch/quill/internal/domain/search/request"
	"github.com/quillsearch/quill/internal/domain/search/result"
)

// errorCode identifies an error class on the wire.
type errorCode string

const (
	codeBadRequest         errorCode = "bad_request"
	codeInvalidParameter   errorCode = "invalid_search_parameter"
	codeInvalidFilter      errorCode = "invalid_search_filter"
	codeInvalidDocument    errorCode = "invalid_document"
	codeIndexNotFound      errorCode = "index_not_found"
	codeIndexAlreadyExists errorCode = "index_already_exists"
	codeInternalError      errorCode = "internal_error"
)

type errorResponse struct {
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
}

// createIndexRequest is the body of POST /indexes.
type createIndexRequest struct {
	UID                  string   `json:"uid"`
	PrimaryKey           string   `json:"primaryKey,omitempty"`
	SearchableAttributes []string `json:"searchableAttributes,omitempty"`
}

type indexResponse struct {
	UID                  string   `json:"uid"`
	PrimaryKey           string   `json:"primaryKey"`
	SearchableAttributes []string `json:"searchableAttributes,omitempty"`
	NumberOfDocuments    int      `json:"numberOfDocuments"`
}

type indexListResponse struct {
	Results []indexResponse `json:"results"`
}

type addDocumentsResponse struct {
	IndexUID          string `json:"indexUid"`
	IndexedDocuments  int    `json:"indexedDocuments"`
	NumberOfDocuments int    `json:"numberOfDocuments"`
}

// searchParams is the body of POST /indexes/{indexUid}/search and one entry
// of a multi-search batch. Null and absent are both "not provided".
type searchParams struct {
	Query                 *string  `json:"q"`
	Filter                *string  `json:"filter"`
	Offset                *int     `json:"offset"`
	Limit                 *int     `json:"limit"`
	Page                  *int     `json:"page"`
	HitsPerPage           *int     `json:"hitsPerPage"`
	AttributesToRetrieve  []string `json:"attributesToRetrieve"`
	AttributesToCrop      []string `json:"attributesToCrop"`
	CropLength            *int     `json:"cropLength"`
	AttributesToHighlight []string `json:"attributesToHighlight"`
	HighlightPreTag       *string  `json:"highlightPreTag"`
	HighlightPostTag      *string  `json:"highlightPostTag"`
	ShowMatchesPosition   *bool    `json:"showMatchesPosition"`
	Sort                  []string `json:"sort"`
	Facets                []string `json:"facets"`
}

func (p searchParams) toParams() request.Params {
	return request.Params{
		Query:                 p.Query,
		Filter:                p.Filter,
		Offset:                p.Offset,
		Limit:                 p.Limit,
		Page:                  p.Page,
		HitsPerPage:           p.HitsPerPage,
		AttributesToRetrieve:  p.AttributesToRetrieve,
		AttributesToCrop:      p.AttributesToCrop,
		CropLength:            p.CropLength,
		AttributesToHighlight: p.AttributesToHighlight,
		HighlightPreTag:       p.HighlightPreTag,
		HighlightPostTag:      p.HighlightPostTag,
		ShowMatchesPosition:   p.ShowMatchesPosition,
		Sort:                  p.Sort,
		Facets:                p.Facets,
	}
}

// multiSearchRequest is the body of POST /multi-search.
type multiSearchRequest struct {
	Queries []multiSearchQuery `json:"queries"`
}

type multiSearchQuery struct {
	IndexUID string `json:"indexUid"`
	searchParams
}

type multiSearchResponse struct {
	Results []any `json:"results"`
}

// multiSearchError is one failed entry of a multi-search response.
type multiSearchError struct {
	IndexUID string    `json:"indexUid"`
	Code     errorCode `json:"code"`
	Message  string    `json:"message"`
}

type searchResponse struct {
	IndexUID string           `json:"indexUid,omitempty"`
	Hits     []map[string]any `json:"hits"`
	Query    string           `json:"query"`
	TookMs   int64            `json:"processingTimeMs"`

	// Offset pagination.
	Offset     *int  `json:"offset,omitempty"`
	Limit      *int  `json:"limit,omitempty"`
	NbHits     *int  `json:"nbHits,omitempty"`
	Exhaustive *bool `json:"exhaustiveNbHits,omitempty"`

	// Page pagination.
	Page        *int `json:"page,omitempty"`
	HitsPerPage *int `json:"hitsPerPage,omitempty"`
	TotalHits   *int `json:"totalHits,omitempty"`
	TotalPages  *int `json:"totalPages,omitempty"`

	Facets map[string]map[string]int `json:"facetDistribution,omitempty"`
}

func searchResponseFromResult(indexUID string, r *result.Response) searchResponse {
	hits := make([]map[string]any, 0, len(r.Hits()))
	for _, hit := range r.Hits() {
		hits = append(hits, hitToWire(hit))
	}

	resp := searchResponse{
		IndexUID: indexUID,
		Hits:     hits,
		Query:    r.Query(),
		TookMs:   r.ProcessingTime().Milliseconds(),
		Facets:   r.Facets(),
	}

	if meta := r.PageMeta(); meta != nil {
		resp.Page = &meta.Page
		resp.HitsPerPage = &meta.HitsPerPage
		resp.TotalHits = &meta.TotalHits
		resp.TotalPages = &meta.TotalPages
		return resp
	}

	meta := r.OffsetMeta()
	resp.Offset = &meta.Offset
	resp.Limit = &meta.Limit
	resp.NbHits = &meta.NbHits
	resp.Exhaustive = &meta.Exhaustive
	return resp
}

func hitToWire(hit result.Hit) map[string]any {
	out := make(map[string]any, len(hit.Fields())+2)
	for name, v := range hit.Fields() {
		out[name] = v
	}
	if formatted := hit.Formatted(); formatted != nil {
		out["_formatted"] = formatted
	}
	if matches := hit.Matches(); matches != nil {
		positions := make(map[string][]map[string]int, len(matches))
		for attr, spans := range matches {
			ps := make([]map[string]int, 0, len(spans))
			for _, span := range spans {
				ps = append(ps, map[string]int{"start": span.Start, "length": span.Length})
			}
			positions[attr] = ps
		}
		out["_matchesPosition"] = positions
	}
	return out
}
