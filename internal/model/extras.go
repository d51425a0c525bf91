package model

import (
	"errors"
	"strings"
	"time"
)

// Auxiliary entities with plain CRUD lifecycles and no cross-entity
// invariants. Persisted through the generic document store.

type SavedFilter struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Query     string    `json:"query"`
	CreatedAt time.Time `json:"createdAt"`
}

func (f SavedFilter) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return errors.New("model: saved filter name is required")
	}
	return nil
}

type FieldKind string

const (
	FieldText   FieldKind = "text"
	FieldNumber FieldKind = "number"
	FieldDate   FieldKind = "date"
	FieldSelect FieldKind = "select"
)

func (k FieldKind) IsValid() bool {
	switch k {
	case FieldText, FieldNumber, FieldDate, FieldSelect:
		return true
	default:
		return false
	}
}

type CustomFieldDefinition struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Kind      FieldKind `json:"kind"`
	Options   []string  `json:"options,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func (d CustomFieldDefinition) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return errors.New("model: custom field name is required")
	}
	if !d.Kind.IsValid() {
		return errors.New("model: invalid custom field kind")
	}
	return nil
}

type StickyBoard struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

func (b StickyBoard) Validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return errors.New("model: sticky board name is required")
	}
	return nil
}

type StickyNote struct {
	ID        string    `json:"id"`
	BoardID   string    `json:"boardId"`
	Text      string    `json:"text"`
	Color     string    `json:"color,omitempty"`
	X         int       `json:"x"`
	Y         int       `json:"y"`
	CreatedAt time.Time `json:"createdAt"`
}

func (n StickyNote) Validate() error {
	if strings.TrimSpace(n.BoardID) == "" {
		return errors.New("model: sticky note board_id is required")
	}
	return nil
}

type QuickLink struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"createdAt"`
}

func (l QuickLink) Validate() error {
	if strings.TrimSpace(l.URL) == "" {
		return errors.New("model: quick link url is required")
	}
	return nil
}
