// Package indexes manages index lifecycle and document ingestion: creating
// indexes, adding documents, and rebuilding the in-memory registry from the
// persistent store at startup.
package indexes

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/quillsearch/quill/internal/domain"
	"github.com/quillsearch/quill/internal/domain/document"
	"github.com/quillsearch/quill/internal/index"
	"github.com/quillsearch/quill/internal/logger"
	"github.com/quillsearch/quill/internal/store"
)

// DefaultPrimaryKey is the document attribute used as the identifier when
// an index does not name one.
const DefaultPrimaryKey = "id"

// Service manages indexes and their documents.
type Service struct {
	registry *index.Registry
	store    store.Store
}

// New creates an index management service.
func New(registry *index.Registry, st store.Store) *Service {
	return &Service{registry: registry, store: st}
}

// Create registers a new index and persists its definition.
func (s *Service) Create(ctx context.Context, uid, primaryKey string, searchable []string) (*index.Index, error) {
	if primaryKey == "" {
		primaryKey = DefaultPrimaryKey
	}

	opts := []index.Option{index.WithPrimaryKey(primaryKey)}
	if len(searchable) > 0 {
		opts = append(opts, index.WithSearchableAttributes(searchable...))
	}

	ix, err := s.registry.Create(uid, opts...)
	if err != nil {
		return nil, err
	}

	meta := store.IndexMeta{
		UID:                  uid,
		PrimaryKey:           primaryKey,
		SearchableAttributes: searchable,
	}
	if err := s.store.SaveIndex(ctx, meta); err != nil {
		return nil, fmt.Errorf("persist index %q: %w", uid, err)
	}

	logger.FromContext(ctx).Info("index created",
		zap.String("index", uid),
		zap.String("primary_key", primaryKey),
	)
	return ix, nil
}

// AddDocuments ingests raw documents into an index and persists them. The
// whole batch is validated before anything is indexed, so a malformed
// document rejects the batch.
func (s *Service) AddDocuments(ctx context.Context, uid string, raw []map[string]any) (int, error) {
	ix, err := s.registry.Lookup(uid)
	if err != nil {
		return 0, err
	}

	docs := make([]document.Document, 0, len(raw))
	for i, attrs := range raw {
		id, ok := primaryKeyValue(attrs, ix.PrimaryKey())
		if !ok {
			return 0, fmt.Errorf("%w: document %d is missing %q", domain.ErrInvalidDocument, i, ix.PrimaryKey())
		}
		doc, err := document.New(id, attrs)
		if err != nil {
			return 0, fmt.Errorf("%w: document %d: %w", domain.ErrInvalidDocument, i, err)
		}
		docs = append(docs, doc)
	}

	if err := ix.Add(docs...); err != nil {
		return 0, err
	}
	if err := s.store.SaveDocuments(ctx, uid, docs); err != nil {
		return 0, fmt.Errorf("persist documents for %q: %w", uid, err)
	}

	logger.FromContext(ctx).Info("documents indexed",
		zap.String("index", uid),
		zap.Int("count", len(docs)),
	)
	return len(docs), nil
}

// List returns every live index in creation order.
func (s *Service) List() []*index.Index {
	return s.registry.List()
}

// Lookup returns a live index by uid.
func (s *Service) Lookup(uid string) (*index.Index, error) {
	return s.registry.Lookup(uid)
}

// Hydrate rebuilds the registry from the store: every persisted index is
// recreated and its documents re-indexed. Meant for startup, before the
// service accepts traffic.
func (s *Service) Hydrate(ctx context.Context) error {
	metas, err := s.store.ListIndexes(ctx)
	if err != nil {
		return fmt.Errorf("list persisted indexes: %w", err)
	}

	for _, meta := range metas {
		opts := []index.Option{index.WithPrimaryKey(meta.PrimaryKey)}
		if len(meta.SearchableAttributes) > 0 {
			opts = append(opts, index.WithSearchableAttributes(meta.SearchableAttributes...))
		}
		ix, err := s.registry.Create(meta.UID, opts...)
		if err != nil {
			return fmt.Errorf("recreate index %q: %w", meta.UID, err)
		}

		docs, err := s.store.LoadDocuments(ctx, meta.UID)
		if err != nil {
			return fmt.Errorf("load documents for %q: %w", meta.UID, err)
		}
		if err := ix.Add(docs...); err != nil {
			return fmt.Errorf("reindex documents for %q: %w", meta.UID, err)
		}

		logger.FromContext(ctx).Info("index hydrated",
			zap.String("index", meta.UID),
			zap.Int("documents", len(docs)),
		)
	}
	return nil
}

// primaryKeyValue extracts the document identifier from raw attributes.
func primaryKeyValue(attrs map[string]any, key string) (string, bool) {
	v, ok := attrs[key]
	if !ok {
		return "", false
	}
	id, ok := document.Text(v)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}
