// Package query models the two query variants: a text query and the
// placeholder (browse) query that matches every document.
package query

import "strings"

// Query is either a text query or the placeholder query.
type Query struct {
	text        string
	placeholder bool
}

// Placeholder returns the browse query matching the whole index.
func Placeholder() Query {
	return Query{placeholder: true}
}

// Text creates a text query. Whitespace-only text is the placeholder query.
func Text(text string) Query {
	if strings.TrimSpace(text) == "" {
		return Placeholder()
	}
	return Query{text: text}
}

// IsPlaceholder reports whether this is the browse query.
func (q Query) IsPlaceholder() bool { return q.placeholder }

// Text returns the query text (empty for the placeholder query).
func (q Query) Text() string { return q.text }
