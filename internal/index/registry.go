package index

import (
	"fmt"
	"sync"

	"github.com/quillsearch/quill/internal/domain"
)

// Registry is the set of live indexes, keyed by uid.
type Registry struct {
	mu      sync.RWMutex
	indexes map[string]*Index
	order   []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{indexes: map[string]*Index{}}
}

// Create adds a new index.
func (r *Registry) Create(uid string, opts ...Option) (*Index, error) {
	ix, err := New(uid, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidParameter, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.indexes[uid]; exists {
		return nil, fmt.Errorf("%w: %q", domain.ErrIndexAlreadyExists, uid)
	}
	r.indexes[uid] = ix
	r.order = append(r.order, uid)
	return ix, nil
}

// Lookup returns the index with the given uid.
func (r *Registry) Lookup(uid string) (*Index, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ix, ok := r.indexes[uid]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrIndexNotFound, uid)
	}
	return ix, nil
}

// List returns every index in creation order.
func (r *Registry) List() []*Index {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Index, 0, len(r.order))
	for _, uid := range r.order {
		out = append(out, r.indexes[uid])
	}
	return out
}
