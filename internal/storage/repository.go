package storage

import (
	"context"
	"errors"

	"momentum/internal/model"
)

var ErrNotFound = errors.New("storage: not found")

// Collections persisted through the generic document store.
const (
	CollectionSavedFilters = "saved_filters"
	CollectionCustomFields = "custom_fields"
	CollectionStickyBoards = "sticky_boards"
	CollectionStickyNotes  = "sticky_notes"
	CollectionQuickLinks   = "quick_links"
)

type TaskFilter struct {
	ListID string
	Status model.Status
	Limit  int
	Offset int
}

type NoteFilter struct {
	ListID string
	Limit  int
	Offset int
}

type HabitLogFilter struct {
	HabitID string
	Date    string
}

// Repository is the uniform persistence boundary. Two implementations exist:
// SQLite (durable) and in-memory (ephemeral mode and tests); the backend is
// selected once at startup. Updates are full-record replaces and no
// referential integrity is enforced here; cascades are the caller's job.
type Repository interface {
	CreateList(ctx context.Context, in model.List) error
	GetList(ctx context.Context, id string) (model.List, error)
	UpdateList(ctx context.Context, in model.List) error
	DeleteList(ctx context.Context, id string) error
	ListLists(ctx context.Context) ([]model.List, error)

	CreateTask(ctx context.Context, in model.Task) error
	GetTask(ctx context.Context, id string) (model.Task, error)
	UpdateTask(ctx context.Context, in model.Task) error
	DeleteTask(ctx context.Context, id string) error
	ListTasks(ctx context.Context, filter TaskFilter) ([]model.Task, error)

	CreateNote(ctx context.Context, in model.Note) error
	GetNote(ctx context.Context, id string) (model.Note, error)
	UpdateNote(ctx context.Context, in model.Note) error
	DeleteNote(ctx context.Context, id string) error
	ListNotes(ctx context.Context, filter NoteFilter) ([]model.Note, error)

	CreateGoal(ctx context.Context, in model.Goal) error
	GetGoal(ctx context.Context, id string) (model.Goal, error)
	UpdateGoal(ctx context.Context, in model.Goal) error
	DeleteGoal(ctx context.Context, id string) error
	ListGoals(ctx context.Context) ([]model.Goal, error)

	CreateHabit(ctx context.Context, in model.Habit) error
	GetHabit(ctx context.Context, id string) (model.Habit, error)
	UpdateHabit(ctx context.Context, in model.Habit) error
	DeleteHabit(ctx context.Context, id string) error
	ListHabits(ctx context.Context, includeArchived bool) ([]model.Habit, error)

	// UpsertHabitLog enforces the one-log-per-(habit, date) invariant:
	// the later write is authoritative for that day.
	UpsertHabitLog(ctx context.Context, in model.HabitLog) error
	ListHabitLogs(ctx context.Context, filter HabitLogFilter) ([]model.HabitLog, error)
	DeleteHabitLog(ctx context.Context, habitID, date string) error

	CreateReminder(ctx context.Context, in model.CustomReminder) error
	GetReminder(ctx context.Context, id string) (model.CustomReminder, error)
	UpdateReminder(ctx context.Context, in model.CustomReminder) error
	DeleteReminder(ctx context.Context, id string) error
	ListReminders(ctx context.Context) ([]model.CustomReminder, error)

	CreateSession(ctx context.Context, in model.ChatSession) error
	GetSession(ctx context.Context, id string) (model.ChatSession, error)
	UpdateSession(ctx context.Context, in model.ChatSession) error
	DeleteSession(ctx context.Context, id string) error
	ListSessions(ctx context.Context) ([]model.ChatSession, error)

	GetUserStats(ctx context.Context) (model.UserStats, error)
	PutUserStats(ctx context.Context, in model.UserStats) error

	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error

	PutDocument(ctx context.Context, collection, id string, data []byte) error
	GetDocument(ctx context.Context, collection, id string) ([]byte, error)
	ListDocuments(ctx context.Context, collection string) ([][]byte, error)
	DeleteDocument(ctx context.Context, collection, id string) error

	Close() error
}
