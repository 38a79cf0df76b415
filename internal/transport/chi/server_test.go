package chi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/quillsearch/quill/internal/index"
	"github.com/quillsearch/quill/internal/store"
	indexesuc "github.com/quillsearch/quill/internal/usecase/indexes"
	searchuc "github.com/quillsearch/quill/internal/usecase/search"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	registry := index.NewRegistry()
	st := store.NewMemory()
	t.Cleanup(st.Close)

	indexesSvc := indexesuc.New(registry, st)
	searchSvc, err := searchuc.New(searchuc.CatalogFunc(func(uid string) (searchuc.Index, error) {
		ix, err := registry.Lookup(uid)
		if err != nil {
			return nil, err
		}
		return ix, nil
	}))
	if err != nil {
		t.Fatalf("search service: %v", err)
	}
	t.Cleanup(searchSvc.Close)

	server := NewServer(indexesSvc, searchSvc, zap.NewNop(), 10)
	r := chi.NewRouter()
	server.Routes(r)

	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, ts *httptest.Server, method, path string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, ts.URL+path, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })

	var decoded map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp, decoded
}

func seedMovies(t *testing.T, ts *httptest.Server) {
	t.Helper()
	resp, _ := doJSON(t, ts, http.MethodPost, "/indexes", map[string]any{"uid": "movies"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create index status = %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, ts, http.MethodPost, "/indexes/movies/documents", []map[string]any{
		{"id": 2, "title": "O' Brother Where Art Thou", "year": 2000},
		{"id": 5, "title": "Brother Bear", "year": 2003},
	})
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("add documents status = %d", resp.StatusCode)
	}
}

func TestSearchEndpoint(t *testing.T) {
	ts := newTestServer(t)
	seedMovies(t, ts)

	resp, body := doJSON(t, ts, http.MethodPost, "/indexes/movies/search",
		map[string]any{"q": "where art thou"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body = %v", resp.StatusCode, body)
	}

	hits, _ := body["hits"].([]any)
	if len(hits) != 1 {
		t.Fatalf("hits = %v", hits)
	}
	hit, _ := hits[0].(map[string]any)
	if hit["title"] != "O' Brother Where Art Thou" {
		t.Errorf("title = %v", hit["title"])
	}
	if body["nbHits"] != 1.0 || body["exhaustiveNbHits"] != true {
		t.Errorf("pagination metadata = %v", body)
	}
	if _, ok := body["page"]; ok {
		t.Error("page metadata present in offset mode")
	}
}

func TestSearchEndpoint_PageMode(t *testing.T) {
	ts := newTestServer(t)
	seedMovies(t, ts)

	resp, body := doJSON(t, ts, http.MethodPost, "/indexes/movies/search",
		map[string]any{"q": "brother", "page": 1, "hitsPerPage": 1})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if body["page"] != 1.0 || body["hitsPerPage"] != 1.0 || body["totalHits"] != 2.0 || body["totalPages"] != 2.0 {
		t.Errorf("pagination metadata = %v", body)
	}
	if _, ok := body["nbHits"]; ok {
		t.Error("offset metadata present in page mode")
	}
}

func TestSearchEndpoint_InvalidFilter(t *testing.T) {
	ts := newTestServer(t)
	seedMovies(t, ts)

	resp, body := doJSON(t, ts, http.MethodPost, "/indexes/movies/search",
		map[string]any{"filter": "year >"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if body["code"] != string(codeInvalidFilter) {
		t.Errorf("code = %v", body["code"])
	}
}

func TestSearchEndpoint_UnknownIndex(t *testing.T) {
	ts := newTestServer(t)

	resp, body := doJSON(t, ts, http.MethodPost, "/indexes/nothere/search", map[string]any{})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	if body["code"] != string(codeIndexNotFound) {
		t.Errorf("code = %v", body["code"])
	}
}

func TestSearchEndpoint_ConflictingPagination(t *testing.T) {
	ts := newTestServer(t)
	seedMovies(t, ts)

	resp, body := doJSON(t, ts, http.MethodPost, "/indexes/movies/search",
		map[string]any{"offset": 0, "page": 1})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if body["code"] != string(codeInvalidParameter) {
		t.Errorf("code = %v", body["code"])
	}
}

func TestCreateIndex_Duplicate(t *testing.T) {
	ts := newTestServer(t)
	seedMovies(t, ts)

	resp, body := doJSON(t, ts, http.MethodPost, "/indexes", map[string]any{"uid": "movies"})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("status = %d, want 409", resp.StatusCode)
	}
	if body["code"] != string(codeIndexAlreadyExists) {
		t.Errorf("code = %v", body["code"])
	}
}

func TestAddDocuments_MissingPrimaryKey(t *testing.T) {
	ts := newTestServer(t)
	seedMovies(t, ts)

	resp, body := doJSON(t, ts, http.MethodPost, "/indexes/movies/documents",
		[]map[string]any{{"title": "no id"}})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if body["code"] != string(codeInvalidDocument) {
		t.Errorf("code = %v", body["code"])
	}
}

func TestMultiSearchEndpoint(t *testing.T) {
	ts := newTestServer(t)
	seedMovies(t, ts)

	resp, body := doJSON(t, ts, http.MethodPost, "/multi-search", map[string]any{
		"queries": []map[string]any{
			{"indexUid": "movies", "q": "bear"},
			{"indexUid": "missing", "q": "bear"},
			{"indexUid": "movies", "filter": "year ="},
			{"indexUid": "movies"},
		},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	results, _ := body["results"].([]any)
	if len(results) != 4 {
		t.Fatalf("results = %d entries, want 4", len(results))
	}

	first, _ := results[0].(map[string]any)
	if first["indexUid"] != "movies" {
		t.Errorf("first indexUid = %v", first["indexUid"])
	}
	hits, _ := first["hits"].([]any)
	if len(hits) != 1 {
		t.Errorf("first hits = %v", hits)
	}

	second, _ := results[1].(map[string]any)
	if second["code"] != string(codeIndexNotFound) {
		t.Errorf("second code = %v", second["code"])
	}

	third, _ := results[2].(map[string]any)
	if third["code"] != string(codeInvalidFilter) {
		t.Errorf("third code = %v", third["code"])
	}

	fourth, _ := results[3].(map[string]any)
	if hits, _ := fourth["hits"].([]any); len(hits) != 2 {
		t.Errorf("fourth hits = %v, want the whole index", hits)
	}
}

func TestMultiSearch_TooManyQueries(t *testing.T) {
	ts := newTestServer(t)

	queries := make([]map[string]any, 11)
	for i := range queries {
		queries[i] = map[string]any{"indexUid": "movies"}
	}
	resp, _ := doJSON(t, ts, http.MethodPost, "/multi-search", map[string]any{"queries": queries})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp, body := doJSON(t, ts, http.MethodGet, "/health", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if body["status"] != "available" {
		t.Errorf("body = %v", body)
	}
}
