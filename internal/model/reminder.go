package model

import (
	"errors"
	"strings"
	"time"
)

// CustomReminder is a standalone timed reminder, unattached to any task.
type CustomReminder struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	RemindAt  time.Time `json:"remindAt"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"createdAt"`
}

func (r CustomReminder) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return errors.New("model: reminder id is required")
	}
	if strings.TrimSpace(r.Title) == "" {
		return errors.New("model: reminder title is required")
	}
	if r.RemindAt.IsZero() {
		return errors.New("model: reminder remind_at is required")
	}
	return nil
}
