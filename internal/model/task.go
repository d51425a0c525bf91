package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidStatus   = errors.New("model: invalid task status")
	ErrInvalidPriority = errors.New("model: invalid task priority")
)

type Status string

const (
	StatusBacklog    Status = "Backlog"
	StatusTodo       Status = "ToDo"
	StatusInProgress Status = "InProgress"
	StatusReview     Status = "Review"
	StatusWaiting    Status = "Waiting"
	StatusDone       Status = "Done"
)

// DefaultStatuses is the workflow used by lists without a custom mapping.
func DefaultStatuses() []Status {
	return []Status{StatusBacklog, StatusTodo, StatusInProgress, StatusReview, StatusWaiting, StatusDone}
}

func (s Status) IsValid() bool {
	switch s {
	case StatusBacklog, StatusTodo, StatusInProgress, StatusReview, StatusWaiting, StatusDone:
		return true
	default:
		return false
	}
}

type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	default:
		return false
	}
}

// ParsePriority maps a free-form token to a Priority. Used to validate
// model output before it reaches callers.
func ParsePriority(raw string) (Priority, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "high":
		return PriorityHigh, true
	case "medium":
		return PriorityMedium, true
	case "low":
		return PriorityLow, true
	default:
		return "", false
	}
}

type ChecklistItem struct {
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

type Comment struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

type ActivityEntry struct {
	At      time.Time `json:"at"`
	Message string    `json:"message"`
}

type Attachment struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
	// Ref is either a data URL (inline storage) or a file path (file storage).
	Ref  string `json:"ref"`
	Size int64  `json:"size"`
}

type Task struct {
	ID           string            `json:"id"`
	ListID       string            `json:"listId"`
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	Status       Status            `json:"status"`
	Priority     Priority          `json:"priority"`
	DueDate      *time.Time        `json:"dueDate,omitempty"`
	Reminder     *time.Time        `json:"reminder,omitempty"`
	Tags         []string          `json:"tags,omitempty"`
	Checklist    []ChecklistItem   `json:"checklist,omitempty"`
	Attachments  []Attachment      `json:"attachments,omitempty"`
	Comments     []Comment         `json:"comments,omitempty"`
	Activity     []ActivityEntry   `json:"activity,omitempty"`
	CustomFields map[string]string `json:"customFields,omitempty"`
	DependsOn    []string          `json:"dependsOn,omitempty"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
	CompletedAt  *time.Time        `json:"completedAt,omitempty"`
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return errors.New("model: task id is required")
	}
	if strings.TrimSpace(t.Title) == "" {
		return errors.New("model: task title is required")
	}
	if !t.Status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, t.Status)
	}
	if !t.Priority.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidPriority, t.Priority)
	}
	if t.CreatedAt.IsZero() {
		return errors.New("model: task created_at is required")
	}
	if t.Status == StatusDone && t.CompletedAt == nil {
		return errors.New("model: completed_at is required when task status is Done")
	}
	return nil
}

func (t Task) IsDone() bool {
	return t.Status == StatusDone
}

// DueToday reports whether the task's due date falls on the same calendar
// day as now, in now's location.
func (t Task) DueToday(now time.Time) bool {
	if t.DueDate == nil {
		return false
	}
	return SameDay(*t.DueDate, now)
}

// Overdue reports whether the task's due date lies on an earlier calendar day.
func (t Task) Overdue(now time.Time) bool {
	if t.DueDate == nil || t.IsDone() {
		return false
	}
	due := t.DueDate.In(now.Location())
	y, m, d := now.Date()
	startOfToday := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	return due.Before(startOfToday)
}

// SameDay reports whether a and b fall on the same calendar day in b's location.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.In(b.Location()).Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
