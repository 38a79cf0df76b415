// Package request builds validated search requests. Every recognized
// parameter and its default is enumerated here; validation happens eagerly
// at construction so the executor never sees a malformed request.
package request

import (
	"fmt"
	"strings"

	"github.com/quillsearch/quill/internal/domain"
	"github.com/quillsearch/quill/internal/domain/search/filter"
	"github.com/quillsearch/quill/internal/domain/search/query"
)

// Search parameter defaults and limits.
const (
	MaxQueryLength    = 4096
	DefaultLimit      = 20
	DefaultPage       = 1
	DefaultCropLength = 200

	DefaultHighlightPreTag  = "<em>"
	DefaultHighlightPostTag = "</em>"
)

// Wildcard is the attribute selector meaning "all attributes".
const Wildcard = "*"

// PaginationMode selects how results are sliced.
type PaginationMode string

// Pagination mode constants.
const (
	// ModeOffset slices with offset/limit (the default).
	ModeOffset PaginationMode = "offset"
	// ModePage slices with 1-indexed page/hitsPerPage.
	ModePage PaginationMode = "page"
)

// SortField is one sort criterion.
type SortField struct {
	Attribute  string
	Descending bool
}

// Params carries the raw optional parameters of one search as parsed from
// the wire. Nil means "not provided"; defaults apply at construction.
type Params struct {
	Query                 *string
	Filter                *string
	Offset                *int
	Limit                 *int
	Page                  *int
	HitsPerPage           *int
	AttributesToRetrieve  []string
	AttributesToCrop      []string
	CropLength            *int
	AttributesToHighlight []string
	HighlightPreTag       *string
	HighlightPostTag      *string
	ShowMatchesPosition   *bool
	Sort                  []string
	Facets                []string
}

// Request is a validated, immutable search request.
type Request struct {
	indexUID string
	q        query.Query
	rawQuery string
	filter   filter.Expression

	mode        PaginationMode
	offset      int
	limit       int
	page        int
	hitsPerPage int

	attributesToRetrieve  []string
	retrieveAll           bool
	attributesToCrop      []string
	cropLength            int
	attributesToHighlight []string
	highlightPreTag       string
	highlightPostTag      string
	showMatchesPosition   bool
	sort                  []SortField
	facets                []string
}

// New validates parameters, compiles the filter, and creates a Request.
// Pagination modes are mutually exclusive: providing offset/limit together
// with page/hitsPerPage is an error.
func New(indexUID string, p Params) (*Request, error) {
	if indexUID == "" {
		return nil, fmt.Errorf("%w: index uid is required", domain.ErrInvalidParameter)
	}

	r := &Request{
		indexUID:         indexUID,
		q:                query.Placeholder(),
		mode:             ModeOffset,
		limit:            DefaultLimit,
		page:             DefaultPage,
		hitsPerPage:      DefaultLimit,
		retrieveAll:      true,
		cropLength:       DefaultCropLength,
		highlightPreTag:  DefaultHighlightPreTag,
		highlightPostTag: DefaultHighlightPostTag,
	}

	if p.Query != nil {
		if len(*p.Query) > MaxQueryLength {
			return nil, fmt.Errorf("%w: query too long (max %d chars)", domain.ErrInvalidParameter, MaxQueryLength)
		}
		r.rawQuery = *p.Query
		r.q = query.Text(*p.Query)
	}

	if err := r.applyPagination(p); err != nil {
		return nil, err
	}

	if p.Filter != nil {
		expr, err := filter.Compile(*p.Filter)
		if err != nil {
			return nil, err
		}
		r.filter = expr
	} else {
		r.filter = filter.MatchAll()
	}

	if len(p.AttributesToRetrieve) > 0 {
		r.attributesToRetrieve = append([]string(nil), p.AttributesToRetrieve...)
		r.retrieveAll = containsWildcard(p.AttributesToRetrieve)
	}
	r.attributesToCrop = append([]string(nil), p.AttributesToCrop...)
	r.attributesToHighlight = append([]string(nil), p.AttributesToHighlight...)
	r.facets = append([]string(nil), p.Facets...)

	if p.CropLength != nil {
		if *p.CropLength < 0 {
			return nil, fmt.Errorf("%w: cropLength must not be negative", domain.ErrInvalidParameter)
		}
		r.cropLength = *p.CropLength
	}
	if p.HighlightPreTag != nil {
		r.highlightPreTag = *p.HighlightPreTag
	}
	if p.HighlightPostTag != nil {
		r.highlightPostTag = *p.HighlightPostTag
	}
	if p.ShowMatchesPosition != nil {
		r.showMatchesPosition = *p.ShowMatchesPosition
	}

	sort, err := parseSort(p.Sort)
	if err != nil {
		return nil, err
	}
	r.sort = sort

	return r, nil
}

func (r *Request) applyPagination(p Params) error {
	for name, v := range map[string]*int{
		"offset": p.Offset, "limit": p.Limit, "page": p.Page, "hitsPerPage": p.HitsPerPage,
	} {
		if v != nil && *v < 0 {
			return fmt.Errorf("%w: %s must not be negative", domain.ErrInvalidParameter, name)
		}
	}

	offsetMode := p.Offset != nil || p.Limit != nil
	pageMode := p.Page != nil || p.HitsPerPage != nil
	if offsetMode && pageMode {
		return fmt.Errorf(
			"%w: offset/limit and page/hitsPerPage pagination are mutually exclusive",
			domain.ErrInvalidParameter,
		)
	}

	if pageMode {
		r.mode = ModePage
		if p.Page != nil {
			r.page = *p.Page
			if r.page == 0 {
				r.page = DefaultPage
			}
		}
		if p.HitsPerPage != nil {
			r.hitsPerPage = *p.HitsPerPage
		}
		return nil
	}

	if p.Offset != nil {
		r.offset = *p.Offset
	}
	if p.Limit != nil {
		r.limit = *p.Limit
	}
	return nil
}

// parseSort parses "attribute:direction" sort criteria.
func parseSort(raw []string) ([]SortField, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make([]SortField, 0, len(raw))
	for _, s := range raw {
		attr, dir, found := strings.Cut(s, ":")
		if !found || attr == "" {
			return nil, fmt.Errorf("%w: sort criterion %q must be attribute:asc or attribute:desc",
				domain.ErrInvalidParameter, s)
		}
		switch dir {
		case "asc":
			out = append(out, SortField{Attribute: attr})
		case "desc":
			out = append(out, SortField{Attribute: attr, Descending: true})
		default:
			return nil, fmt.Errorf("%w: sort direction %q must be asc or desc", domain.ErrInvalidParameter, dir)
		}
	}
	return out, nil
}

func containsWildcard(attrs []string) bool {
	for _, a := range attrs {
		if a == Wildcard {
			return true
		}
	}
	return false
}

// IndexUID returns the target index uid.
func (r *Request) IndexUID() string { return r.indexUID }

// Query returns the query variant (text or placeholder).
func (r *Request) Query() query.Query { return r.q }

// RawQuery returns the query text as received, echoed in responses.
func (r *Request) RawQuery() string { return r.rawQuery }

// Filter returns the compiled filter expression (match-all when absent).
func (r *Request) Filter() filter.Expression { return r.filter }

// Mode returns the active pagination mode.
func (r *Request) Mode() PaginationMode { return r.mode }

// Offset returns the offset (offset mode).
func (r *Request) Offset() int { return r.offset }

// Limit returns the limit (offset mode).
func (r *Request) Limit() int { return r.limit }

// Page returns the 1-indexed page number (page mode).
func (r *Request) Page() int { return r.page }

// HitsPerPage returns the page size (page mode).
func (r *Request) HitsPerPage() int { return r.hitsPerPage }

// RetrieveAll reports whether every attribute should be returned.
func (r *Request) RetrieveAll() bool { return r.retrieveAll }

// AttributesToRetrieve returns the projection set (empty means all).
func (r *Request) AttributesToRetrieve() []string { return r.attributesToRetrieve }

// AttributesToCrop returns the attributes to truncate.
func (r *Request) AttributesToCrop() []string { return r.attributesToCrop }

// CropLength returns the crop length in characters.
func (r *Request) CropLength() int { return r.cropLength }

// AttributesToHighlight returns the attributes to annotate with highlight tags.
func (r *Request) AttributesToHighlight() []string { return r.attributesToHighlight }

// HighlightPreTag returns the marker inserted before a highlighted match.
func (r *Request) HighlightPreTag() string { return r.highlightPreTag }

// HighlightPostTag returns the marker inserted after a highlighted match.
func (r *Request) HighlightPostTag() string { return r.highlightPostTag }

// ShowMatchesPosition reports whether match position metadata is requested.
func (r *Request) ShowMatchesPosition() bool { return r.showMatchesPosition }

// Sort returns the explicit sort criteria (empty means relevance order).
func (r *Request) Sort() []SortField { return r.sort }

// Facets returns the attributes whose value distribution is requested.
func (r *Request) Facets() []string { return r.facets }
