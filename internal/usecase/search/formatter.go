package search

import (
	"strings"
	"unicode"

	"github.com/quillsearch/quill/internal/domain/document"
	"github.com/quillsearch/quill/internal/domain/search/request"
	"github.com/quillsearch/quill/internal/domain/search/result"
	"github.com/quillsearch/quill/internal/index"
)

// cropMarker marks a truncated attribute value.
const cropMarker = "…"

// formatter turns ranked documents into response hits: attribute
// projection, cropping, highlight annotation, and match positions.
// One formatter serves all hits of a single request.
type formatter struct {
	req       *request.Request
	terms     map[string]bool // normalized query terms, empty for placeholder
	crop      map[string]bool
	highlight map[string]bool
}

func newFormatter(req *request.Request) *formatter {
	f := &formatter{
		req:       req,
		terms:     map[string]bool{},
		crop:      map[string]bool{},
		highlight: map[string]bool{},
	}
	if !req.Query().IsPlaceholder() {
		for _, tok := range index.Analyze(req.Query().Text()) {
			f.terms[tok.Term] = true
		}
	}
	for _, attr := range req.AttributesToCrop() {
		f.crop[attr] = true
	}
	for _, attr := range req.AttributesToHighlight() {
		f.highlight[attr] = true
	}
	return f
}

func (f *formatter) format(doc *document.Document) result.Hit {
	fields := f.project(doc)

	var formatted map[string]any
	if len(f.crop) > 0 || len(f.highlight) > 0 {
		formatted = f.formatAttributes(doc)
	}

	var matches map[string][]result.Span
	if f.req.ShowMatchesPosition() {
		matches = f.matchPositions(fields)
	}

	return result.NewHit(fields, formatted, matches)
}

// project keeps only the requested attributes. Requested attributes the
// document does not have are omitted, never an error.
func (f *formatter) project(doc *document.Document) map[string]any {
	if f.req.RetrieveAll() {
		out := make(map[string]any, len(doc.Attributes()))
		for name, v := range doc.Attributes() {
			out[name] = v
		}
		return out
	}
	out := make(map[string]any, len(f.req.AttributesToRetrieve()))
	for _, name := range f.req.AttributesToRetrieve() {
		if v, ok := doc.Attribute(name); ok {
			out[name] = v
		}
	}
	return out
}

// formatAttributes builds the _formatted view: cropped and/or highlighted
// copies of the requested attributes. Non-string values pass through.
func (f *formatter) formatAttributes(doc *document.Document) map[string]any {
	out := map[string]any{}
	for attr := range f.crop {
		if v, ok := doc.Attribute(attr); ok {
			out[attr] = v
		}
	}
	for attr := range f.highlight {
		if v, ok := doc.Attribute(attr); ok {
			out[attr] = v
		}
	}
	for attr, v := range out {
		text, ok := v.(string)
		if !ok {
			continue
		}
		if f.crop[attr] {
			text = cropText(text, f.req.CropLength())
		}
		if f.highlight[attr] && len(f.terms) > 0 {
			text = f.highlightText(text)
		}
		out[attr] = text
	}
	return out
}

// cropText truncates to length characters, cutting at the last word
// boundary that fits and appending the crop marker.
func cropText(text string, length int) string {
	runes := []rune(text)
	if len(runes) <= length {
		return text
	}
	if length == 0 {
		return cropMarker
	}
	cut := length
	if !unicode.IsSpace(runes[length]) {
		// The cut lands mid-word; back up to the last boundary that fits.
		for i := length; i > 0; i-- {
			if unicode.IsSpace(runes[i-1]) {
				cut = i - 1
				break
			}
		}
	}
	return strings.TrimRight(string(runes[:cut]), " \t\n") + cropMarker
}

// highlightText wraps every word matching a query term in the request's
// highlight tags. Matching is case-insensitive and stem-aware, the same
// normalization the index applies.
func (f *formatter) highlightText(text string) string {
	var b strings.Builder
	last := 0
	for _, span := range f.matchSpans(text) {
		b.WriteString(text[last:span.Start])
		b.WriteString(f.req.HighlightPreTag())
		b.WriteString(text[span.Start : span.Start+span.Length])
		b.WriteString(f.req.HighlightPostTag())
		last = span.Start + span.Length
	}
	if last == 0 {
		return text
	}
	b.WriteString(text[last:])
	return b.String()
}

// matchPositions records byte-offset spans of query-term matches per
// projected string attribute.
func (f *formatter) matchPositions(fields map[string]any) map[string][]result.Span {
	matches := map[string][]result.Span{}
	if len(f.terms) == 0 {
		return matches
	}
	for attr, v := range fields {
		text, ok := v.(string)
		if !ok {
			continue
		}
		if spans := f.matchSpans(text); len(spans) > 0 {
			matches[attr] = spans
		}
	}
	return matches
}

// matchSpans finds the byte spans of words whose normalized form is a
// query term, in text order.
func (f *formatter) matchSpans(text string) []result.Span {
	var spans []result.Span
	start := -1
	flush := func(end int) {
		if start < 0 {
			return
		}
		word := text[start:end]
		if f.terms[index.Normalize(word)] {
			spans = append(spans, result.Span{Start: start, Length: end - start})
		}
		start = -1
	}
	for i, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		flush(i)
	}
	flush(len(text))
	return spans
}
