package model

import (
	"errors"
	"strings"
	"time"
)

type Note struct {
	ID     string `json:"id"`
	ListID string `json:"listId"`
	Title  string `json:"title"`
	// Content is a rich-text HTML fragment.
	Content     string       `json:"content"`
	Tags        []string     `json:"tags,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

func (n Note) Validate() error {
	if strings.TrimSpace(n.ID) == "" {
		return errors.New("model: note id is required")
	}
	if strings.TrimSpace(n.Title) == "" {
		return errors.New("model: note title is required")
	}
	if n.CreatedAt.IsZero() {
		return errors.New("model: note created_at is required")
	}
	return nil
}
