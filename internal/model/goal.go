package model

import (
	"errors"
	"strings"
	"time"
)

// Goal links one or more task lists; its progress is always derived from
// the Done ratio of tasks in those lists, never stored.
type Goal struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Vision        string     `json:"vision,omitempty"`
	TargetDate    *time.Time `json:"targetDate,omitempty"`
	LinkedListIDs []string   `json:"linkedListIds,omitempty"`
	ImageRef      string     `json:"imageRef,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

func (g Goal) Validate() error {
	if strings.TrimSpace(g.ID) == "" {
		return errors.New("model: goal id is required")
	}
	if strings.TrimSpace(g.Title) == "" {
		return errors.New("model: goal title is required")
	}
	return nil
}
