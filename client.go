// Package quill embeds the search engine in a Go program: create indexes,
// add documents, and run searches without an HTTP server in between.
package quill

import (
	"context"
	"fmt"
	"time"

	"github.com/quillsearch/quill/internal/index"
	"github.com/quillsearch/quill/internal/store"
	storeRedis "github.com/quillsearch/quill/internal/store/redis"
	indexesuc "github.com/quillsearch/quill/internal/usecase/indexes"
	searchuc "github.com/quillsearch/quill/internal/usecase/search"
)

const defaultReadinessTimeout = 10 * time.Second

// Client is the quill SDK entry point.
type Client struct {
	store     store.Store
	registry  *index.Registry
	indexSvc  *indexesuc.Service
	searchSvc *searchuc.Service
}

// New creates a quill Client. Without options the engine runs fully
// in memory; WithRedis attaches persistence and rebuilds indexes from it.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o(cfg)
	}

	st, err := createStore(cfg)
	if err != nil {
		return nil, err
	}

	registry := index.NewRegistry()
	indexSvc := indexesuc.New(registry, st)

	if err := indexSvc.Hydrate(context.Background()); err != nil {
		st.Close()
		return nil, fmt.Errorf("quill: hydrate indexes: %w", err)
	}

	var searchOpts []searchuc.Option
	if cfg.concurrency > 0 {
		searchOpts = append(searchOpts, searchuc.WithConcurrency(cfg.concurrency))
	}
	searchSvc, err := searchuc.New(searchuc.CatalogFunc(func(uid string) (searchuc.Index, error) {
		ix, err := registry.Lookup(uid)
		if err != nil {
			return nil, err
		}
		return ix, nil
	}), searchOpts...)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("quill: create search service: %w", err)
	}

	return &Client{
		store:     st,
		registry:  registry,
		indexSvc:  indexSvc,
		searchSvc: searchSvc,
	}, nil
}

func createStore(cfg *clientConfig) (store.Store, error) {
	if len(cfg.addrs) == 0 {
		return store.NewMemory(), nil
	}

	s, err := storeRedis.NewStore(storeRedis.Config{
		Addrs:     cfg.addrs,
		Username:  cfg.username,
		Password:  cfg.password,
		DB:        cfg.db,
		KeyPrefix: cfg.keyPrefix,
	})
	if err != nil {
		return nil, fmt.Errorf("quill: create redis store: %w", err)
	}
	if err := s.WaitForReady(context.Background(), defaultReadinessTimeout); err != nil {
		s.Close()
		return nil, fmt.Errorf("quill: redis not ready: %w", err)
	}
	return s, nil
}

// Close releases the client's resources.
func (c *Client) Close() {
	c.searchSvc.Close()
	c.store.Close()
}

// CreateIndex registers a new index.
func (c *Client) CreateIndex(ctx context.Context, uid string, opts ...IndexOption) error {
	cfg := &indexConfig{}
	for _, o := range opts {
		o(cfg)
	}
	if _, err := c.indexSvc.Create(ctx, uid, cfg.primaryKey, cfg.searchable); err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	return nil
}

// AddDocuments indexes raw documents. Returns the number indexed.
func (c *Client) AddDocuments(ctx context.Context, indexUID string, docs []map[string]any) (int, error) {
	count, err := c.indexSvc.AddDocuments(ctx, indexUID, docs)
	if err != nil {
		return 0, fmt.Errorf("add documents: %w", err)
	}
	return count, nil
}

// Document returns an indexed document by id.
func (c *Client) Document(indexUID, id string) (map[string]any, error) {
	ix, err := c.registry.Lookup(indexUID)
	if err != nil {
		return nil, err
	}
	doc, ok := ix.Document(id)
	if !ok {
		return nil, fmt.Errorf("document %q not found in %q", id, indexUID)
	}
	attrs := doc.Attributes()
	out := make(map[string]any, len(attrs))
	for k, v := range attrs {
		out[k] = v
	}
	return out, nil
}
