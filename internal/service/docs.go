package service

import (
	"context"
	"encoding/json"
	"fmt"

	"momentum/internal/storage"
)

// DocStore persists one auxiliary entity type as JSON documents in a named
// collection. It covers the plain-CRUD entities (saved filters, custom field
// definitions, sticky boards and notes, quick links) without a table each.
type DocStore[T any] struct {
	repo       storage.Repository
	collection string
}

func NewDocStore[T any](repo storage.Repository, collection string) *DocStore[T] {
	return &DocStore[T]{repo: repo, collection: collection}
}

func (s *DocStore[T]) Save(ctx context.Context, id string, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s document: %w", s.collection, err)
	}
	if err := s.repo.PutDocument(ctx, s.collection, id, data); err != nil {
		return fmt.Errorf("put %s document: %w", s.collection, err)
	}
	return nil
}

func (s *DocStore[T]) Get(ctx context.Context, id string) (T, error) {
	var out T
	data, err := s.repo.GetDocument(ctx, s.collection, id)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("unmarshal %s document: %w", s.collection, err)
	}
	return out, nil
}

func (s *DocStore[T]) List(ctx context.Context) ([]T, error) {
	raw, err := s.repo.ListDocuments(ctx, s.collection)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(raw))
	for _, data := range raw {
		var v T
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("unmarshal %s document: %w", s.collection, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *DocStore[T]) Delete(ctx context.Context, id string) error {
	return s.repo.DeleteDocument(ctx, s.collection, id)
}
