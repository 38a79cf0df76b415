package filter

import (
	"strings"

	"github.com/quillsearch/quill/internal/domain/document"
)

// literal is a parsed comparison value.
type literal struct {
	raw      string
	num      float64
	isNumber bool
	boolean  bool
	isBool   bool
}

type matchAll struct{}

func (matchAll) Matches(*document.Document) bool { return true }

type andExpr struct{ left, right Expression }

func (e andExpr) Matches(doc *document.Document) bool {
	return e.left.Matches(doc) && e.right.Matches(doc)
}

type orExpr struct{ left, right Expression }

func (e orExpr) Matches(doc *document.Document) bool {
	return e.left.Matches(doc) || e.right.Matches(doc)
}

type notExpr struct{ inner Expression }

func (e notExpr) Matches(doc *document.Document) bool {
	return !e.inner.Matches(doc)
}

type comparison struct {
	attr  string
	op    string
	value literal
}

func (e comparison) Matches(doc *document.Document) bool {
	v, ok := doc.Attribute(e.attr)
	if !ok {
		return false
	}
	switch e.op {
	case "=":
		return equalsAny(v, e.value)
	case "!=":
		return !equalsAny(v, e.value)
	default:
		return orderedAny(v, e.op, e.value)
	}
}

type inExpr struct {
	attr   string
	values []literal
}

func (e inExpr) Matches(doc *document.Document) bool {
	v, ok := doc.Attribute(e.attr)
	if !ok {
		return false
	}
	for _, lit := range e.values {
		if equalsAny(v, lit) {
			return true
		}
	}
	return false
}

// equalsAny reports whether any scalar element of v equals the literal.
// Numbers compare numerically, everything else compares as
// case-insensitive text.
func equalsAny(v any, lit literal) bool {
	for _, s := range document.Scalars(v) {
		if lit.isNumber {
			if n, ok := document.Number(s); ok && n == lit.num {
				return true
			}
			continue
		}
		if lit.isBool {
			if b, ok := s.(bool); ok {
				if b == lit.boolean {
					return true
				}
				continue
			}
		}
		if t, ok := document.Text(s); ok && strings.EqualFold(t, lit.raw) {
			return true
		}
	}
	return false
}

// orderedAny evaluates <, <=, >, >= numerically. Non-numeric operands
// never satisfy a range comparison.
func orderedAny(v any, op string, lit literal) bool {
	if !lit.isNumber {
		return false
	}
	for _, s := range document.Scalars(v) {
		n, ok := document.Number(s)
		if !ok {
			continue
		}
		switch op {
		case ">":
			if n > lit.num {
				return true
			}
		case ">=":
			if n >= lit.num {
				return true
			}
		case "<":
			if n < lit.num {
				return true
			}
		case "<=":
			if n <= lit.num {
				return true
			}
		}
	}
	return false
}
