package search

import (
	"github.com/quillsearch/quill/internal/domain/search/request"
	"github.com/quillsearch/quill/internal/domain/search/result"
)

// paginate slices the ordered match set according to the request's
// pagination mode and computes the matching metadata shape. Exactly one
// of the returned metadata pointers is non-nil.
func paginate(ids []string, req *request.Request) ([]string, *result.OffsetMeta, *result.PageMeta) {
	total := len(ids)

	if req.Mode() == request.ModePage {
		hitsPerPage := req.HitsPerPage()
		totalPages := 0
		if hitsPerPage > 0 {
			totalPages = (total + hitsPerPage - 1) / hitsPerPage
		}
		meta := &result.PageMeta{
			Page:        req.Page(),
			HitsPerPage: hitsPerPage,
			TotalHits:   total,
			TotalPages:  totalPages,
		}
		// A page past the end is an empty page, not an error.
		start := (req.Page() - 1) * hitsPerPage
		return slicePage(ids, start, hitsPerPage), nil, meta
	}

	meta := &result.OffsetMeta{
		Offset:     req.Offset(),
		Limit:      req.Limit(),
		NbHits:     total,
		Exhaustive: true,
	}
	return slicePage(ids, req.Offset(), req.Limit()), meta, nil
}

func slicePage(ids []string, start, count int) []string {
	if start >= len(ids) || count <= 0 {
		return nil
	}
	end := start + count
	if end > len(ids) {
		end = len(ids)
	}
	return ids[start:end]
}
