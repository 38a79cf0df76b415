// Package store persists index definitions and documents so in-memory
// indexes can be rebuilt at startup. The query engine itself never reads
// from a store; it runs entirely against hydrated indexes.
package store

import (
	"context"
	"errors"

	"github.com/quillsearch/quill/internal/domain/document"
)

// ErrUnavailable signals that the backing store cannot be reached.
var ErrUnavailable = errors.New("store unavailable")

// IndexMeta describes one persisted index.
type IndexMeta struct {
	UID                  string
	PrimaryKey           string
	SearchableAttributes []string
}

// Store is the persistence contract. Implementations must be safe for
// concurrent use.
type Store interface {
	// SaveIndex persists an index definition. Saving an existing uid
	// overwrites its definition.
	SaveIndex(ctx context.Context, meta IndexMeta) error

	// ListIndexes returns every persisted index definition, in the order
	// the indexes were first saved.
	ListIndexes(ctx context.Context) ([]IndexMeta, error)

	// SaveDocuments persists documents under an index uid, keeping first-write
	// order per document id.
	SaveDocuments(ctx context.Context, indexUID string, docs []document.Document) error

	// LoadDocuments returns an index's documents in first-write order.
	LoadDocuments(ctx context.Context, indexUID string) ([]document.Document, error)

	// Close releases the store's resources.
	Close()
}
