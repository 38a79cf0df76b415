package search

import (
	"context"
	"strings"
	"testing"

	"github.com/quillsearch/quill/internal/domain/search/request"
)

func TestFormat_ProjectionSubset(t *testing.T) {
	svc := newService(t)
	req := mustRequest(t, "movies", request.Params{
		Query:                strp("where art thou"),
		AttributesToRetrieve: []string{"title", "director"},
	})

	resp, err := svc.Execute(context.Background(), req)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	fields := resp.Hits()[0].Fields()
	if len(fields) != 1 {
		t.Errorf("fields = %v, want only title", fields)
	}
	if fields["title"] != "O' Brother Where Art Thou" {
		t.Errorf("title = %v", fields["title"])
	}
}

func TestFormat_ProjectionWildcard(t *testing.T) {
	svc := newService(t)
	req := mustRequest(t, "movies", request.Params{
		Query:                strp("where art thou"),
		AttributesToRetrieve: []string{"*"},
	})

	resp, err := svc.Execute(context.Background(), req)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	fields := resp.Hits()[0].Fields()
	for _, name := range []string{"id", "title", "tagline", "genres", "year"} {
		if _, ok := fields[name]; !ok {
			t.Errorf("attribute %q missing under wildcard", name)
		}
	}
}

func TestFormat_Highlight(t *testing.T) {
	svc := newService(t)
	req := mustRequest(t, "movies", request.Params{
		Query:                 strp("brother"),
		Filter:                strp("id = 2"),
		AttributesToHighlight: []string{"title"},
	})

	resp, err := svc.Execute(context.Background(), req)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	hit := resp.Hits()[0]
	got, _ := hit.Formatted()["title"].(string)
	if got != "O' <em>Brother</em> Where Art Thou" {
		t.Errorf("formatted title = %q", got)
	}
	// The plain fields stay untouched.
	if hit.Fields()["title"] != "O' Brother Where Art Thou" {
		t.Errorf("fields title = %v", hit.Fields()["title"])
	}
}

func TestFormat_HighlightCustomTags(t *testing.T) {
	svc := newService(t)
	req := mustRequest(t, "movies", request.Params{
		Query:                 strp("bear"),
		AttributesToHighlight: []string{"title"},
		HighlightPreTag:       strp("<mark>"),
		HighlightPostTag:      strp("</mark>"),
	})

	resp, err := svc.Execute(context.Background(), req)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	got, _ := resp.Hits()[0].Formatted()["title"].(string)
	if got != "Brother <mark>Bear</mark>" {
		t.Errorf("formatted title = %q", got)
	}
}

func TestFormat_HighlightStemAware(t *testing.T) {
	svc := newService(t)
	req := mustRequest(t, "movies", request.Params{
		Query:                 strp("plans"),
		AttributesToHighlight: []string{"tagline"},
	})

	resp, err := svc.Execute(context.Background(), req)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(resp.Hits()) != 1 {
		t.Fatalf("hits = %d, want 1", len(resp.Hits()))
	}
	got, _ := resp.Hits()[0].Formatted()["tagline"].(string)
	if !strings.Contains(got, "<em>plan</em>") {
		t.Errorf("formatted tagline = %q, want stem match highlighted", got)
	}
}

func TestFormat_Crop(t *testing.T) {
	svc := newService(t)
	req := mustRequest(t, "movies", request.Params{
		Query:            strp("where art thou"),
		AttributesToCrop: []string{"tagline"},
		CropLength:       intp(12),
	})

	resp, err := svc.Execute(context.Background(), req)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	got, _ := resp.Hits()[0].Formatted()["tagline"].(string)
	if !strings.HasSuffix(got, "…") {
		t.Errorf("cropped value %q lacks marker", got)
	}
	// The cut lands on a word boundary, never mid-word.
	if got != "They have a…" {
		t.Errorf("cropped value = %q", got)
	}
}

func TestFormat_MatchesPosition(t *testing.T) {
	svc := newService(t)
	req := mustRequest(t, "movies", request.Params{
		Query:               strp("brother bear"),
		Filter:              strp("id = 5"),
		ShowMatchesPosition: boolp(true),
	})

	resp, err := svc.Execute(context.Background(), req)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	spans := resp.Hits()[0].Matches()["title"]
	if len(spans) != 2 {
		t.Fatalf("spans = %v, want two matches in title", spans)
	}
	if spans[0].Start != 0 || spans[0].Length != len("Brother") {
		t.Errorf("first span = %+v", spans[0])
	}
	if spans[1].Start != len("Brother ") || spans[1].Length != len("Bear") {
		t.Errorf("second span = %+v", spans[1])
	}
}

func TestCropText_ShortValueUntouched(t *testing.T) {
	if got := cropText("tiny", 10); got != "tiny" {
		t.Errorf("cropText = %q", got)
	}
}

func TestCropText_Unicode(t *testing.T) {
	got := cropText("héllo wörld wide", 12)
	if got != "héllo wörld…" {
		t.Errorf("cropText = %q", got)
	}
}

func TestCropText_LengthEndsExactlyOnWord(t *testing.T) {
	// "hello world" is 11 runes; the next rune is a space, so the whole
	// second word fits and must not be dropped.
	if got := cropText("hello world foo", 11); got != "hello world…" {
		t.Errorf("cropText = %q", got)
	}
}
