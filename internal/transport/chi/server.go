// Package chi exposes the search engine over HTTP: index management,
// document ingestion, search, and multi-search.
package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/quillsearch/quill/internal/domain"
	"github.com/quillsearch/quill/internal/domain/search/request"
	indexesuc "github.com/quillsearch/quill/internal/usecase/indexes"
	searchuc "github.com/quillsearch/quill/internal/usecase/search"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server is the HTTP API handler set.
type Server struct {
	indexes       *indexesuc.Service
	search        *searchuc.Service
	logger        *zap.Logger
	maxBatchSize  int
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. maxBatchSize caps the number of
// queries in one multi-search request.
func NewServer(indexes *indexesuc.Service, search *searchuc.Service, logger *zap.Logger, maxBatchSize int) *Server {
	s := &Server{
		indexes:      indexes,
		search:       search,
		logger:       logger,
		maxBatchSize: maxBatchSize,
	}
	s.errorHandlers = []errorHandler{
		filterErrorHandler,
		sentinelHandler(domain.ErrIndexNotFound, http.StatusNotFound, codeIndexNotFound),
		sentinelHandler(domain.ErrIndexAlreadyExists, http.StatusConflict, codeIndexAlreadyExists),
		sentinelHandler(domain.ErrInvalidParameter, http.StatusBadRequest, codeInvalidParameter),
		sentinelHandler(domain.ErrInvalidDocument, http.StatusBadRequest, codeInvalidDocument),
	}
	return s
}

// Routes mounts every API route on a router.
func (s *Server) Routes(r chi.Router) {
	r.Post("/indexes", s.CreateIndex)
	r.Get("/indexes", s.ListIndexes)
	r.Post("/indexes/{indexUid}/documents", s.AddDocuments)
	r.Post("/indexes/{indexUid}/search", s.Search)
	r.Post("/multi-search", s.MultiSearch)
	r.Get("/health", s.Health)
}

// CreateIndex handles POST /indexes.
func (s *Server) CreateIndex(w http.ResponseWriter, r *http.Request) {
	var req createIndexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.UID == "" {
		writeError(w, http.StatusBadRequest, codeInvalidParameter, "Index uid is required")
		return
	}

	ix, err := s.indexes.Create(r.Context(), req.UID, req.PrimaryKey, req.SearchableAttributes)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, indexResponse{
		UID:                  ix.UID(),
		PrimaryKey:           ix.PrimaryKey(),
		SearchableAttributes: req.SearchableAttributes,
		NumberOfDocuments:    ix.Size(),
	})
}

// ListIndexes handles GET /indexes.
func (s *Server) ListIndexes(w http.ResponseWriter, _ *http.Request) {
	live := s.indexes.List()
	results := make([]indexResponse, 0, len(live))
	for _, ix := range live {
		results = append(results, indexResponse{
			UID:               ix.UID(),
			PrimaryKey:        ix.PrimaryKey(),
			NumberOfDocuments: ix.Size(),
		})
	}
	writeJSON(w, http.StatusOK, indexListResponse{Results: results})
}

// AddDocuments handles POST /indexes/{indexUid}/documents.
func (s *Server) AddDocuments(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "indexUid")

	var raw []map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	count, err := s.indexes.AddDocuments(r.Context(), uid, raw)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	ix, err := s.indexes.Lookup(uid)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, addDocumentsResponse{
		IndexUID:          uid,
		IndexedDocuments:  count,
		NumberOfDocuments: ix.Size(),
	})
}

// Search handles POST /indexes/{indexUid}/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "indexUid")

	var params searchParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	req, err := request.New(uid, params.toParams())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	resp, err := s.search.Execute(r.Context(), req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	wire := searchResponseFromResult("", resp)
	writeJSON(w, http.StatusOK, wire)
}

// MultiSearch handles POST /multi-search. Queries run independently:
// one failed query yields an error entry at its position and never
// disturbs its siblings.
func (s *Server) MultiSearch(w http.ResponseWriter, r *http.Request) {
	var body multiSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if len(body.Queries) > s.maxBatchSize {
		writeError(w, http.StatusBadRequest, codeInvalidParameter,
			fmt.Sprintf("Too many queries: %d (max %d)", len(body.Queries), s.maxBatchSize))
		return
	}

	// Build requests first; a query that fails validation takes an error
	// slot and the rest still execute.
	reqs := make([]*request.Request, 0, len(body.Queries))
	buildErrs := make([]error, len(body.Queries))
	positions := make([]int, 0, len(body.Queries))
	for i, q := range body.Queries {
		req, err := request.New(q.IndexUID, q.toParams())
		if err != nil {
			buildErrs[i] = err
			continue
		}
		reqs = append(reqs, req)
		positions = append(positions, i)
	}

	outcomes := s.search.ExecuteAll(r.Context(), reqs)

	results := make([]any, len(body.Queries))
	for i, err := range buildErrs {
		if err != nil {
			results[i] = s.multiSearchErrorEntry(body.Queries[i].IndexUID, err)
		}
	}
	for j, outcome := range outcomes {
		i := positions[j]
		if err := outcome.Err(); err != nil {
			results[i] = s.multiSearchErrorEntry(body.Queries[i].IndexUID, err)
			continue
		}
		results[i] = searchResponseFromResult(body.Queries[i].IndexUID, outcome.Response())
	}

	writeJSON(w, http.StatusOK, multiSearchResponse{Results: results})
}

// Health handles GET /health.
func (s *Server) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "available"})
}

func (s *Server) multiSearchErrorEntry(uid string, err error) multiSearchError {
	s.logger.Warn("multi-search query failed", zap.String("index", uid), zap.Error(err))
	return multiSearchError{
		IndexUID: uid,
		Code:     domainErrorCode(err),
		Message:  safeDomainMessage(err),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errorCode, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a client-facing message without exposing internals.
func safeDomainMessage(err error) string {
	var parseErr *domain.FilterParseError
	if errors.As(err, &parseErr) {
		return parseErr.Error()
	}
	sentinels := []error{
		domain.ErrIndexNotFound,
		domain.ErrIndexAlreadyExists,
		domain.ErrInvalidParameter,
		domain.ErrInvalidFilter,
		domain.ErrInvalidDocument,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return err.Error()
		}
	}
	return "internal error"
}

func domainErrorCode(err error) errorCode {
	switch {
	case errors.Is(err, domain.ErrInvalidFilter):
		return codeInvalidFilter
	case errors.Is(err, domain.ErrIndexNotFound):
		return codeIndexNotFound
	case errors.Is(err, domain.ErrIndexAlreadyExists):
		return codeIndexAlreadyExists
	case errors.Is(err, domain.ErrInvalidParameter):
		return codeInvalidParameter
	case errors.Is(err, domain.ErrInvalidDocument):
		return codeInvalidDocument
	default:
		return codeInternalError
	}
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code errorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// filterErrorHandler handles filter syntax errors with their offset detail.
func filterErrorHandler(w http.ResponseWriter, err error, msg string) bool {
	if !errors.Is(err, domain.ErrInvalidFilter) {
		return false
	}
	writeError(w, http.StatusBadRequest, codeInvalidFilter, msg)
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
