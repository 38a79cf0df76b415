package store

import (
	"context"
	"testing"

	"github.com/quillsearch/quill/internal/domain/document"
)

func TestMemory_Indexes(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	err := m.SaveIndex(ctx, IndexMeta{UID: "movies", PrimaryKey: "id"})
	if err != nil {
		t.Fatalf("SaveIndex: %v", err)
	}
	err = m.SaveIndex(ctx, IndexMeta{UID: "books", PrimaryKey: "isbn"})
	if err != nil {
		t.Fatalf("SaveIndex: %v", err)
	}
	// Overwrite keeps first-save order.
	err = m.SaveIndex(ctx, IndexMeta{UID: "movies", PrimaryKey: "id", SearchableAttributes: []string{"title"}})
	if err != nil {
		t.Fatalf("SaveIndex: %v", err)
	}

	metas, err := m.ListIndexes(ctx)
	if err != nil {
		t.Fatalf("ListIndexes: %v", err)
	}
	if len(metas) != 2 {
		t.Fatalf("ListIndexes len = %d", len(metas))
	}
	if metas[0].UID != "movies" || metas[1].UID != "books" {
		t.Errorf("order = %q, %q", metas[0].UID, metas[1].UID)
	}
	if len(metas[0].SearchableAttributes) != 1 {
		t.Errorf("overwrite not applied: %+v", metas[0])
	}
}

func TestMemory_Documents(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	first := document.Reconstruct("2", map[string]any{"title": "first"})
	second := document.Reconstruct("5", map[string]any{"title": "second"})
	if err := m.SaveDocuments(ctx, "movies", []document.Document{first, second}); err != nil {
		t.Fatalf("SaveDocuments: %v", err)
	}

	// Re-saving an id keeps its original position.
	updated := document.Reconstruct("2", map[string]any{"title": "updated"})
	if err := m.SaveDocuments(ctx, "movies", []document.Document{updated}); err != nil {
		t.Fatalf("SaveDocuments: %v", err)
	}

	docs, err := m.LoadDocuments(ctx, "movies")
	if err != nil {
		t.Fatalf("LoadDocuments: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("LoadDocuments len = %d", len(docs))
	}
	if docs[0].ID() != "2" || docs[1].ID() != "5" {
		t.Errorf("order = %q, %q", docs[0].ID(), docs[1].ID())
	}
	if v, _ := docs[0].Attribute("title"); v != "updated" {
		t.Errorf("title = %v", v)
	}

	empty, err := m.LoadDocuments(ctx, "unknown")
	if err != nil || len(empty) != 0 {
		t.Errorf("LoadDocuments(unknown) = %v, %v", empty, err)
	}
}
