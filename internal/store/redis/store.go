// Package redis implements the store contract on Redis via rueidis.
// Layout: one hash per index definition, one JSON string per document,
// and lists preserving first-write order.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/rueidis"

	"github.com/quillsearch/quill/internal/domain/document"
	"github.com/quillsearch/quill/internal/store"
)

// Compile-time check: Store implements store.Store.
var _ store.Store = (*Store)(nil)

// DefaultKeyPrefix namespaces all keys written by this store.
const DefaultKeyPrefix = "quill:"

// Config holds connection parameters for a Redis store.
type Config struct {
	Addrs     []string
	Username  string
	Password  string
	DB        int
	KeyPrefix string
}

// Store persists indexes and documents in Redis.
type Store struct {
	client rueidis.Client
	prefix string
}

// NewStore creates a Redis store via rueidis.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &Store{client: client, prefix: prefix}, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	cmd := s.client.B().Ping().Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrUnavailable, err)
	}
	return nil
}

// WaitForReady polls Ping until the store responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for redis: %w", ctx.Err())
		case <-ticker.C:
			if err := s.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

// Close shuts down the client.
func (s *Store) Close() {
	s.client.Close()
}

func (s *Store) indexListKey() string         { return s.prefix + "indexes" }
func (s *Store) indexKey(uid string) string   { return s.prefix + "index:" + uid }
func (s *Store) docListKey(uid string) string { return s.prefix + "docs:" + uid }
func (s *Store) docKey(uid, id string) string { return s.prefix + "doc:" + uid + ":" + id }

// SaveIndex persists an index definition.
func (s *Store) SaveIndex(ctx context.Context, meta store.IndexMeta) error {
	known, err := s.exists(ctx, s.indexKey(meta.UID))
	if err != nil {
		return err
	}

	searchable, err := json.Marshal(meta.SearchableAttributes)
	if err != nil {
		return fmt.Errorf("marshal searchable attributes: %w", err)
	}
	cmd := s.client.B().Hset().Key(s.indexKey(meta.UID)).FieldValue().
		FieldValue("primary_key", meta.PrimaryKey).
		FieldValue("searchable", string(searchable)).
		Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("save index %q: %w", meta.UID, err)
	}

	if !known {
		push := s.client.B().Rpush().Key(s.indexListKey()).Element(meta.UID).Build()
		if err := s.client.Do(ctx, push).Error(); err != nil {
			return fmt.Errorf("register index %q: %w", meta.UID, err)
		}
	}
	return nil
}

// ListIndexes returns persisted index definitions in first-save order.
func (s *Store) ListIndexes(ctx context.Context) ([]store.IndexMeta, error) {
	cmd := s.client.B().Lrange().Key(s.indexListKey()).Start(0).Stop(-1).Build()
	uids, err := s.client.Do(ctx, cmd).AsStrSlice()
	if err != nil {
		return nil, fmt.Errorf("list indexes: %w", err)
	}

	out := make([]store.IndexMeta, 0, len(uids))
	for _, uid := range uids {
		get := s.client.B().Hgetall().Key(s.indexKey(uid)).Build()
		fields, err := s.client.Do(ctx, get).AsStrMap()
		if err != nil {
			return nil, fmt.Errorf("load index %q: %w", uid, err)
		}
		meta := store.IndexMeta{UID: uid, PrimaryKey: fields["primary_key"]}
		if raw := fields["searchable"]; raw != "" {
			if err := json.Unmarshal([]byte(raw), &meta.SearchableAttributes); err != nil {
				return nil, fmt.Errorf("decode searchable attributes of %q: %w", uid, err)
			}
		}
		out = append(out, meta)
	}
	return out, nil
}

// SaveDocuments persists documents under an index uid.
func (s *Store) SaveDocuments(ctx context.Context, indexUID string, docs []document.Document) error {
	for _, doc := range docs {
		known, err := s.exists(ctx, s.docKey(indexUID, doc.ID()))
		if err != nil {
			return err
		}

		payload, err := json.Marshal(doc.Attributes())
		if err != nil {
			return fmt.Errorf("marshal document %q: %w", doc.ID(), err)
		}
		set := s.client.B().Set().Key(s.docKey(indexUID, doc.ID())).Value(string(payload)).Build()
		if err := s.client.Do(ctx, set).Error(); err != nil {
			return fmt.Errorf("save document %q: %w", doc.ID(), err)
		}

		if !known {
			push := s.client.B().Rpush().Key(s.docListKey(indexUID)).Element(doc.ID()).Build()
			if err := s.client.Do(ctx, push).Error(); err != nil {
				return fmt.Errorf("register document %q: %w", doc.ID(), err)
			}
		}
	}
	return nil
}

// LoadDocuments returns an index's documents in first-write order.
func (s *Store) LoadDocuments(ctx context.Context, indexUID string) ([]document.Document, error) {
	cmd := s.client.B().Lrange().Key(s.docListKey(indexUID)).Start(0).Stop(-1).Build()
	ids, err := s.client.Do(ctx, cmd).AsStrSlice()
	if err != nil {
		return nil, fmt.Errorf("list documents of %q: %w", indexUID, err)
	}

	out := make([]document.Document, 0, len(ids))
	for _, id := range ids {
		get := s.client.B().Get().Key(s.docKey(indexUID, id)).Build()
		payload, err := s.client.Do(ctx, get).ToString()
		if err != nil {
			if rueidis.IsRedisNil(err) {
				continue
			}
			return nil, fmt.Errorf("load document %q: %w", id, err)
		}
		var attrs map[string]any
		if err := json.Unmarshal([]byte(payload), &attrs); err != nil {
			return nil, fmt.Errorf("decode document %q: %w", id, err)
		}
		out = append(out, document.Reconstruct(id, attrs))
	}
	return out, nil
}

func (s *Store) exists(ctx context.Context, key string) (bool, error) {
	cmd := s.client.B().Exists().Key(key).Build()
	n, err := s.client.Do(ctx, cmd).AsInt64()
	if err != nil {
		return false, fmt.Errorf("exists %q: %w", key, err)
	}
	return n > 0, nil
}
