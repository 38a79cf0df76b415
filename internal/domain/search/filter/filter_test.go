package filter

import (
	"errors"
	"testing"

	"github.com/quillsearch/quill/internal/domain"
	"github.com/quillsearch/quill/internal/domain/document"
)

func doc(t *testing.T, attrs map[string]any) *document.Document {
	t.Helper()
	d, err := document.New("1", attrs)
	if err != nil {
		t.Fatalf("document.New: %v", err)
	}
	return &d
}

func mustCompile(t *testing.T, input string) Expression {
	t.Helper()
	expr, err := Compile(input)
	if err != nil {
		t.Fatalf("Compile(%q): %v", input, err)
	}
	return expr
}

func TestCompile_EmptyIsMatchAll(t *testing.T) {
	for _, input := range []string{"", "   "} {
		expr := mustCompile(t, input)
		if !expr.Matches(doc(t, nil)) {
			t.Errorf("Compile(%q) should match everything", input)
		}
	}
}

func TestMatches_Equality(t *testing.T) {
	movie := doc(t, map[string]any{
		"id":      2.0,
		"title":   "O' Brother Where Art Thou",
		"tagline": "They have a plan but not a clue",
	})

	cases := []struct {
		filter string
		want   bool
	}{
		{"id = 2", true},
		{"id = 3", false},
		{"id != 3", true},
		{"id != 2", false},
		{"title = \"O' Brother Where Art Thou\"", true},
		{"title = 'o\\' brother where art thou'", true}, // case-insensitive
		{"missing = 1", false},
		{"missing != 1", false}, // unknown attribute is a runtime false
	}
	for _, c := range cases {
		if got := mustCompile(t, c.filter).Matches(movie); got != c.want {
			t.Errorf("Matches(%q) = %v, want %v", c.filter, got, c.want)
		}
	}
}

func TestMatches_NumericCoercion(t *testing.T) {
	d := doc(t, map[string]any{"id": "2", "rating": 7.5})
	if !mustCompile(t, "id = 2").Matches(d) {
		t.Error("string \"2\" should equal numeric literal 2")
	}
	if !mustCompile(t, "rating = 7.5").Matches(d) {
		t.Error("rating = 7.5 should match")
	}
}

func TestMatches_Ranges(t *testing.T) {
	d := doc(t, map[string]any{"rating": 7.5, "title": "abc"})

	cases := []struct {
		filter string
		want   bool
	}{
		{"rating > 7", true},
		{"rating >= 7.5", true},
		{"rating < 7.5", false},
		{"rating <= 7.5", true},
		{"rating > 8", false},
		{"title > 1", false}, // non-numeric never satisfies a range
	}
	for _, c := range cases {
		if got := mustCompile(t, c.filter).Matches(d); got != c.want {
			t.Errorf("Matches(%q) = %v, want %v", c.filter, got, c.want)
		}
	}
}

func TestMatches_In(t *testing.T) {
	d := doc(t, map[string]any{"genre": []any{"drama", "comedy"}, "id": 2.0})

	cases := []struct {
		filter string
		want   bool
	}{
		{"genre IN [drama, horror]", true},
		{"genre IN ['Comedy']", true},
		{"genre IN [horror, thriller]", false},
		{"genre NOT IN [horror]", true},
		{"genre NOT IN [drama]", false},
		{"id IN [1, 2, 3]", true},
		{"id in [1, 2, 3,]", true}, // lowercase keyword, trailing comma
	}
	for _, c := range cases {
		if got := mustCompile(t, c.filter).Matches(d); got != c.want {
			t.Errorf("Matches(%q) = %v, want %v", c.filter, got, c.want)
		}
	}
}

func TestMatches_Boolean(t *testing.T) {
	d := doc(t, map[string]any{"archived": true, "id": 2.0, "genre": "drama"})

	cases := []struct {
		filter string
		want   bool
	}{
		{"archived = true", true},
		{"archived = false", false},
		{"NOT archived = true", false},
		{"id = 2 AND genre = drama", true},
		{"id = 2 AND genre = horror", false},
		{"id = 3 OR genre = drama", true},
		{"id = 3 OR genre = horror", false},
		{"(id = 3 OR genre = drama) AND archived = true", true},
		// AND binds tighter than OR.
		{"id = 3 OR genre = drama AND archived = false", false},
	}
	for _, c := range cases {
		if got := mustCompile(t, c.filter).Matches(d); got != c.want {
			t.Errorf("Matches(%q) = %v, want %v", c.filter, got, c.want)
		}
	}
}

func TestCompile_SyntaxErrors(t *testing.T) {
	inputs := []string{
		"id =",
		"= 2",
		"id = 2 AND",
		"(id = 2",
		"id ! 2",
		"genre IN [drama",
		"genre IN drama]",
		"id = 'unterminated",
		"id = 2 extra",
		"id NOT 2",
		"AND id = 2",
	}
	for _, input := range inputs {
		_, err := Compile(input)
		if err == nil {
			t.Errorf("Compile(%q) should fail", input)
			continue
		}
		if !errors.Is(err, domain.ErrInvalidFilter) {
			t.Errorf("Compile(%q) error = %v, want ErrInvalidFilter", input, err)
		}
	}
}

func TestMatches_Pure(t *testing.T) {
	d := doc(t, map[string]any{"id": 2.0})
	expr := mustCompile(t, "id = 2 AND NOT (id > 5)")
	first := expr.Matches(d)
	for i := 0; i < 100; i++ {
		if expr.Matches(d) != first {
			t.Fatal("Matches is not deterministic")
		}
	}
}
