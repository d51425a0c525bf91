package storage

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"momentum/internal/model"
)

func TestMemoryTaskIsolation(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	task := model.Task{
		ID:        "task-1",
		Title:     "Water plants",
		Status:    model.StatusTodo,
		Priority:  model.PriorityLow,
		Tags:      []string{"home"},
		CreatedAt: created,
		UpdatedAt: created,
	}
	if err := repo.CreateTask(ctx, task); err != nil {
		t.Fatalf("create task: %v", err)
	}

	// Mutating the caller's slice after the write must not leak into the store.
	task.Tags[0] = "mutated"

	got, err := repo.GetTask(ctx, "task-1")
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if got.Tags[0] != "home" {
		t.Fatalf("stored record aliased caller memory: %#v", got.Tags)
	}
}

func TestMemoryRoundTripMatchesSQLiteSemantics(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	task := model.Task{
		ID:        "task-1",
		Title:     "Original",
		Status:    model.StatusTodo,
		Priority:  model.PriorityMedium,
		CreatedAt: created,
		UpdatedAt: created,
	}
	if err := repo.CreateTask(ctx, task); err != nil {
		t.Fatalf("create: %v", err)
	}
	task.Title = "Replaced"
	task.Checklist = []model.ChecklistItem{{Text: "one"}}
	if err := repo.UpdateTask(ctx, task); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := repo.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !reflect.DeepEqual(got, task) {
		t.Fatalf("round trip mismatch:\n got: %#v\nwant: %#v", got, task)
	}

	if err := repo.UpdateTask(ctx, model.Task{ID: "ghost"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("update of missing record should be ErrNotFound, got: %v", err)
	}
}

func TestMemoryHabitLogUpsert(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	if err := repo.UpsertHabitLog(ctx, model.HabitLog{ID: "a", HabitID: "h1", Date: "2026-03-01", Value: 1}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := repo.UpsertHabitLog(ctx, model.HabitLog{ID: "b", HabitID: "h1", Date: "2026-03-01", Value: 3}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	logs, err := repo.ListHabitLogs(ctx, HabitLogFilter{HabitID: "h1"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(logs) != 1 || logs[0].Value != 3 {
		t.Fatalf("expected single authoritative log, got %#v", logs)
	}
}
