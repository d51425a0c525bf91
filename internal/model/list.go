package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidListType = errors.New("model: invalid list type")

type ListType string

const (
	ListTypeTask ListType = "task"
	ListTypeNote ListType = "note"
)

func (t ListType) IsValid() bool {
	switch t {
	case ListTypeTask, ListTypeNote:
		return true
	default:
		return false
	}
}

type List struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Color string   `json:"color"`
	Type  ListType `json:"type"`
	// Statuses, when non-empty, replaces the default workflow for tasks
	// in this list. Order is the board column order.
	Statuses    []Status  `json:"statuses,omitempty"`
	DefaultView string    `json:"defaultView,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (l List) Validate() error {
	if strings.TrimSpace(l.ID) == "" {
		return errors.New("model: list id is required")
	}
	if strings.TrimSpace(l.Name) == "" {
		return errors.New("model: list name is required")
	}
	if !l.Type.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidListType, l.Type)
	}
	for _, s := range l.Statuses {
		if !s.IsValid() {
			return fmt.Errorf("%w: %q", ErrInvalidStatus, s)
		}
	}
	return nil
}

// AllowsStatus reports whether a task in this list may carry the status.
// Lists without a custom mapping accept the default workflow.
func (l List) AllowsStatus(s Status) bool {
	if len(l.Statuses) == 0 {
		return s.IsValid()
	}
	for _, allowed := range l.Statuses {
		if allowed == s {
			return true
		}
	}
	return false
}
