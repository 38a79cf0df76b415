package search

import (
	"reflect"
	"testing"

	"github.com/quillsearch/quill/internal/domain/search/filter"
	"github.com/quillsearch/quill/internal/domain/search/request"
	"github.com/quillsearch/quill/internal/index"
)

func rankIndex(t *testing.T) *index.Index {
	t.Helper()
	ix, err := index.New("books")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	err = ix.Add(
		newDoc(t, "a", map[string]any{"title": "Alpha", "price": 30.0}),
		newDoc(t, "b", map[string]any{"title": "beta", "price": 10.0}),
		newDoc(t, "c", map[string]any{"title": "Gamma"}),
		newDoc(t, "d", map[string]any{"title": "delta", "price": 10.0}),
	)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	return ix
}

func uniform(ix *index.Index) []index.Candidate {
	docs := ix.Documents()
	out := make([]index.Candidate, 0, len(docs))
	for _, d := range docs {
		out = append(out, index.Candidate{DocID: d.ID(), Score: 1.0})
	}
	return out
}

func mustCompile(t *testing.T, input string) filter.Expression {
	t.Helper()
	expr, err := filter.Compile(input)
	if err != nil {
		t.Fatalf("Compile(%q): %v", input, err)
	}
	return expr
}

func TestRank_FilterExcludes(t *testing.T) {
	ix := rankIndex(t)
	got := rank(ix, uniform(ix), mustCompile(t, "price <= 10"), nil)
	if !reflect.DeepEqual(got, []string{"b", "d"}) {
		t.Errorf("rank = %v", got)
	}
}

func TestRank_ScoreDescendingThenInsertion(t *testing.T) {
	ix := rankIndex(t)
	candidates := []index.Candidate{
		{DocID: "a", Score: 0.5},
		{DocID: "b", Score: 2.0},
		{DocID: "c", Score: 0.5},
	}
	got := rank(ix, candidates, filter.MatchAll(), nil)
	if !reflect.DeepEqual(got, []string{"b", "a", "c"}) {
		t.Errorf("rank = %v", got)
	}
}

func TestRank_SortAscendingMissingLast(t *testing.T) {
	ix := rankIndex(t)
	sortSpec := []request.SortField{{Attribute: "price"}}
	got := rank(ix, uniform(ix), filter.MatchAll(), sortSpec)
	// b and d tie on price and break on insertion order; c has no price
	// and sorts last.
	if !reflect.DeepEqual(got, []string{"b", "d", "a", "c"}) {
		t.Errorf("rank = %v", got)
	}
}

func TestRank_SortDescendingMissingStillLast(t *testing.T) {
	ix := rankIndex(t)
	sortSpec := []request.SortField{{Attribute: "price", Descending: true}}
	got := rank(ix, uniform(ix), filter.MatchAll(), sortSpec)
	if !reflect.DeepEqual(got, []string{"a", "b", "d", "c"}) {
		t.Errorf("rank = %v", got)
	}
}

func TestRank_SortTextCaseInsensitive(t *testing.T) {
	ix := rankIndex(t)
	sortSpec := []request.SortField{{Attribute: "title"}}
	got := rank(ix, uniform(ix), filter.MatchAll(), sortSpec)
	if !reflect.DeepEqual(got, []string{"a", "b", "d", "c"}) {
		t.Errorf("rank = %v", got)
	}
}

func TestRank_SortMixedTypesDeterministic(t *testing.T) {
	ix, err := index.New("mixed")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	err = ix.Add(
		newDoc(t, "a", map[string]any{"v": 2}),
		newDoc(t, "b", map[string]any{"v": 10}),
		newDoc(t, "c", map[string]any{"v": "1a"}),
	)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	sortSpec := []request.SortField{{Attribute: "v"}}

	// Numeric values order among themselves and before text, regardless of
	// the order candidates arrive in.
	for _, order := range [][]string{
		{"a", "b", "c"},
		{"b", "c", "a"},
		{"c", "a", "b"},
	} {
		candidates := make([]index.Candidate, len(order))
		for i, id := range order {
			candidates[i] = index.Candidate{DocID: id, Score: 1.0}
		}
		got := rank(ix, candidates, filter.MatchAll(), sortSpec)
		if !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
			t.Errorf("rank(%v) = %v", order, got)
		}
	}
}

func TestRank_Deterministic(t *testing.T) {
	ix := rankIndex(t)
	first := rank(ix, uniform(ix), filter.MatchAll(), nil)
	for i := 0; i < 10; i++ {
		if got := rank(ix, uniform(ix), filter.MatchAll(), nil); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d = %v, first = %v", i, got, first)
		}
	}
}

func TestRank_SkipsUnknownCandidates(t *testing.T) {
	ix := rankIndex(t)
	candidates := append(uniform(ix), index.Candidate{DocID: "ghost", Score: 9.0})
	got := rank(ix, candidates, filter.MatchAll(), nil)
	if len(got) != 4 {
		t.Errorf("rank = %v, want the four real documents", got)
	}
}
