// Package search executes validated search requests against the index
// catalog: candidate retrieval, filtering, ranking, facet counting,
// formatting, and pagination, plus the multi-search fan-out.
package search

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/quillsearch/quill/internal/domain"
	"github.com/quillsearch/quill/internal/domain/search/request"
	"github.com/quillsearch/quill/internal/domain/search/result"
	"github.com/quillsearch/quill/internal/logger"
	"github.com/quillsearch/quill/internal/metrics"
)

// Service is the query executor.
type Service struct {
	catalog Catalog
	pool    *ants.Pool
}

// Option configures a Service.
type Option func(*serviceConfig)

type serviceConfig struct {
	concurrency int
}

// WithConcurrency sets the multi-search worker pool size.
// Default is runtime.NumCPU().
func WithConcurrency(n int) Option {
	return func(c *serviceConfig) { c.concurrency = n }
}

// New creates a search service.
func New(catalog Catalog, opts ...Option) (*Service, error) {
	cfg := &serviceConfig{concurrency: runtime.NumCPU()}
	for _, o := range opts {
		o(cfg)
	}
	if cfg.concurrency < 1 {
		cfg.concurrency = 1
	}

	pool, err := ants.NewPool(cfg.concurrency)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	return &Service{catalog: catalog, pool: pool}, nil
}

// Close releases the multi-search worker pool.
func (s *Service) Close() {
	s.pool.Release()
}

// Execute runs one search request: retrieve candidates, filter and rank,
// count facets, format the requested page, and assemble the response.
// Fails fast with the first error; no partial response is produced.
func (s *Service) Execute(ctx context.Context, req *request.Request) (*result.Response, error) {
	start := time.Now()
	queryType := "text"
	if req.Query().IsPlaceholder() {
		queryType = "placeholder"
	}

	ix, err := s.catalog.Lookup(req.IndexUID())
	if err != nil {
		metrics.ObserveSearchError(queryType)
		return nil, err
	}

	candidates, err := retrieve(ix, req.Query())
	if err != nil {
		metrics.ObserveSearchError(queryType)
		return nil, fmt.Errorf("%w: retrieve candidates: %w", domain.ErrInternal, err)
	}

	ordered := rank(ix, candidates, req.Filter(), req.Sort())

	var facets map[string]map[string]int
	if len(req.Facets()) > 0 {
		facets = facetDistribution(ix, ordered, req.Facets())
	}

	pageIDs, offsetMeta, pageMeta := paginate(ordered, req)

	f := newFormatter(req)
	hits := make([]result.Hit, 0, len(pageIDs))
	for _, id := range pageIDs {
		doc, ok := ix.Document(id)
		if !ok {
			continue
		}
		hits = append(hits, f.format(&doc))
	}

	took := time.Since(start)
	metrics.ObserveSearch(queryType, took, len(hits))
	logger.FromContext(ctx).Debug("search executed",
		zap.String("index", req.IndexUID()),
		zap.String("query_type", queryType),
		zap.Int("matches", len(ordered)),
		zap.Int("hits", len(hits)),
		zap.Duration("took", took),
	)

	if pageMeta != nil {
		return result.NewPaged(hits, req.RawQuery(), took, *pageMeta, facets), nil
	}
	return result.NewOffset(hits, req.RawQuery(), took, *offsetMeta, facets), nil
}
