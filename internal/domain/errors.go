package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrIndexNotFound signals an unknown index uid.
	ErrIndexNotFound = errors.New("index not found")
	// ErrIndexAlreadyExists signals a duplicate index uid.
	ErrIndexAlreadyExists = errors.New("index already exists")
	// ErrInvalidParameter signals a malformed search parameter.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrInvalidFilter signals malformed filter syntax.
	ErrInvalidFilter = errors.New("invalid filter expression")
	// ErrInvalidDocument signals a document that cannot be indexed.
	ErrInvalidDocument = errors.New("invalid document")
	// ErrInternal signals an unexpected index-read failure.
	ErrInternal = errors.New("internal error")
)

// FilterParseError wraps ErrInvalidFilter with the offset where parsing failed.
type FilterParseError struct {
	Offset  int
	Message string
}

func (e *FilterParseError) Error() string {
	return fmt.Sprintf("%s at offset %d: %s", ErrInvalidFilter.Error(), e.Offset, e.Message)
}

func (e *FilterParseError) Unwrap() error { return ErrInvalidFilter }

// NewFilterParseError creates a filter parse error at the given offset.
func NewFilterParseError(offset int, format string, args ...any) error {
	return &FilterParseError{Offset: offset, Message: fmt.Sprintf(format, args...)}
}
