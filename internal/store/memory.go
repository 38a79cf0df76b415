package store

import (
	"context"
	"sync"

	"github.com/quillsearch/quill/internal/domain/document"
)

// Compile-time check: Memory implements Store.
var _ Store = (*Memory)(nil)

// Memory is a volatile in-process store, the default backend.
type Memory struct {
	mu        sync.RWMutex
	metas     map[string]IndexMeta
	metaOrder []string
	docs      map[string]map[string]document.Document // indexUID -> docID -> doc
	docOrder  map[string][]string
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		metas:    map[string]IndexMeta{},
		docs:     map[string]map[string]document.Document{},
		docOrder: map[string][]string{},
	}
}

// SaveIndex persists an index definition.
func (m *Memory) SaveIndex(_ context.Context, meta IndexMeta) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.metas[meta.UID]; !exists {
		m.metaOrder = append(m.metaOrder, meta.UID)
	}
	m.metas[meta.UID] = meta
	return nil
}

// ListIndexes returns persisted index definitions in first-save order.
func (m *Memory) ListIndexes(_ context.Context) ([]IndexMeta, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]IndexMeta, 0, len(m.metaOrder))
	for _, uid := range m.metaOrder {
		out = append(out, m.metas[uid])
	}
	return out, nil
}

// SaveDocuments persists documents under an index uid.
func (m *Memory) SaveDocuments(_ context.Context, indexUID string, docs []document.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	byID := m.docs[indexUID]
	if byID == nil {
		byID = map[string]document.Document{}
		m.docs[indexUID] = byID
	}
	for _, doc := range docs {
		if _, exists := byID[doc.ID()]; !exists {
			m.docOrder[indexUID] = append(m.docOrder[indexUID], doc.ID())
		}
		byID[doc.ID()] = doc
	}
	return nil
}

// LoadDocuments returns an index's documents in first-write order.
func (m *Memory) LoadDocuments(_ context.Context, indexUID string) ([]document.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	order := m.docOrder[indexUID]
	out := make([]document.Document, 0, len(order))
	for _, id := range order {
		out = append(out, m.docs[indexUID][id])
	}
	return out, nil
}

// Close is a no-op for the in-memory store.
func (m *Memory) Close() {}
