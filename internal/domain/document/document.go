package document

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxIDLength is the maximum document identifier length.
const MaxIDLength = 512

// Document is an identified set of named attribute values (immutable value object).
// Attribute values are scalars (string, number, bool) or lists of scalars.
type Document struct {
	id         string
	attributes map[string]any
}

// New validates and creates a Document.
func New(id string, attributes map[string]any) (Document, error) {
	if id == "" {
		return Document{}, fmt.Errorf("document ID is required")
	}
	if len(id) > MaxIDLength {
		return Document{}, fmt.Errorf("document ID too long (max %d)", MaxIDLength)
	}
	return Document{id: id, attributes: cloneAttributes(attributes)}, nil
}

// Reconstruct creates a Document without validation (storage hydration).
func Reconstruct(id string, attributes map[string]any) Document {
	return Document{id: id, attributes: attributes}
}

// ID returns the document identifier.
func (d *Document) ID() string { return d.id }

// Attributes returns the attribute map. The map is shared, not copied;
// callers must not mutate it.
func (d *Document) Attributes() map[string]any { return d.attributes }

// Attribute returns a named attribute value and whether it exists.
func (d *Document) Attribute(name string) (any, bool) {
	v, ok := d.attributes[name]
	return v, ok
}

func cloneAttributes(attrs map[string]any) map[string]any {
	if attrs == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(attrs))
	for k, v := range attrs {
		out[k] = v
	}
	return out
}

// Number coerces an attribute value to float64.
// Numeric strings coerce too, so "7.5" compares equal to 7.5.
func Number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Text returns the string form of a scalar attribute value.
// List values have no single text form and report false.
func Text(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case bool:
		return strconv.FormatBool(s), true
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(s), 'f', -1, 32), true
	case int:
		return strconv.Itoa(s), true
	case int64:
		return strconv.FormatInt(s, 10), true
	default:
		return "", false
	}
}

// Scalars flattens an attribute value into its scalar elements.
// A scalar yields itself; a list yields its elements.
func Scalars(v any) []any {
	if list, ok := v.([]any); ok {
		return list
	}
	return []any{v}
}
