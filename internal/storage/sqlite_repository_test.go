package storage

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"momentum/internal/model"
)

func setupRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "momentum-test.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	repo, err := NewSQLiteRepository(db)
	if err != nil {
		t.Fatalf("new repo: %v", err)
	}
	return repo
}

func parseRFC3339(t *testing.T, value string) time.Time {
	t.Helper()
	out, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("parse time: %v", err)
	}
	return out
}

func TestTaskRoundTrip(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	created := parseRFC3339(t, "2026-03-01T12:00:00Z")
	due := parseRFC3339(t, "2026-03-05T17:00:00Z")

	task := model.Task{
		ID:          "task-1",
		ListID:      "list-1",
		Title:       "Write quarterly report",
		Description: "Draft, review, send",
		Status:      model.StatusTodo,
		Priority:    model.PriorityHigh,
		DueDate:     &due,
		Tags:        []string{"work", "writing"},
		Checklist: []model.ChecklistItem{
			{Text: "Draft outline", Completed: true},
			{Text: "Fill in numbers"},
		},
		CustomFields: map[string]string{"quarter": "Q1"},
		DependsOn:    []string{"task-0"},
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	if err := repo.CreateTask(ctx, task); err != nil {
		t.Fatalf("create task: %v", err)
	}

	// Full-record replace, then re-read: the stored record must match
	// exactly what was written.
	task.Title = "Write quarterly report v2"
	task.Status = model.StatusInProgress
	task.UpdatedAt = created.Add(time.Hour)
	task.Checklist[1].Completed = true
	if err := repo.UpdateTask(ctx, task); err != nil {
		t.Fatalf("update task: %v", err)
	}

	got, err := repo.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if !reflect.DeepEqual(got, task) {
		t.Fatalf("round trip mismatch:\n got: %#v\nwant: %#v", got, task)
	}

	inProgress, err := repo.ListTasks(ctx, TaskFilter{Status: model.StatusInProgress})
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(inProgress) != 1 || inProgress[0].ID != task.ID {
		t.Fatalf("unexpected filtered list: %#v", inProgress)
	}

	if err := repo.DeleteTask(ctx, task.ID); err != nil {
		t.Fatalf("delete task: %v", err)
	}
	if _, err := repo.GetTask(ctx, task.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got: %v", err)
	}
}

func TestHabitLogUpsert(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	created := parseRFC3339(t, "2026-03-01T08:00:00Z")

	first := model.HabitLog{ID: "log-1", HabitID: "habit-1", Date: "2026-03-01", Value: 1, CreatedAt: created}
	if err := repo.UpsertHabitLog(ctx, first); err != nil {
		t.Fatalf("upsert first: %v", err)
	}

	second := first
	second.ID = "log-2"
	second.Value = 3
	if err := repo.UpsertHabitLog(ctx, second); err != nil {
		t.Fatalf("upsert second: %v", err)
	}

	logs, err := repo.ListHabitLogs(ctx, HabitLogFilter{HabitID: "habit-1", Date: "2026-03-01"})
	if err != nil {
		t.Fatalf("list logs: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("expected exactly one log row, got %d", len(logs))
	}
	if logs[0].Value != 3 {
		t.Fatalf("later write must win, got value %v", logs[0].Value)
	}
}

func TestListCustomStatuses(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	list := model.List{
		ID:        "list-kanban",
		Name:      "Kanban",
		Color:     "#4287f5",
		Type:      model.ListTypeTask,
		Statuses:  []model.Status{model.StatusTodo, model.StatusInProgress, model.StatusDone},
		CreatedAt: parseRFC3339(t, "2026-03-01T09:00:00Z"),
	}
	if err := repo.CreateList(ctx, list); err != nil {
		t.Fatalf("create list: %v", err)
	}
	got, err := repo.GetList(ctx, list.ID)
	if err != nil {
		t.Fatalf("get list: %v", err)
	}
	if !reflect.DeepEqual(got.Statuses, list.Statuses) {
		t.Fatalf("statuses mismatch: %#v", got.Statuses)
	}
}

func TestChatSessionMessages(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	created := parseRFC3339(t, "2026-03-01T10:00:00Z")

	session := model.ChatSession{
		ID:    "session-1",
		Title: "Planning",
		Messages: []model.ChatMessage{
			{ID: "m1", Role: model.RoleUser, Text: "add a task to call the bank", CreatedAt: created},
			{ID: "m2", Role: model.RoleModel, ToolCall: &model.ToolCall{
				Name: "createTask",
				Args: map[string]any{"title": "Call the bank"},
			}, CreatedAt: created.Add(time.Second)},
		},
		CreatedAt: created,
		UpdatedAt: created.Add(time.Second),
	}
	if err := repo.CreateSession(ctx, session); err != nil {
		t.Fatalf("create session: %v", err)
	}
	got, err := repo.GetSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if len(got.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(got.Messages))
	}
	if got.Messages[1].ToolCall == nil || got.Messages[1].ToolCall.Name != "createTask" {
		t.Fatalf("tool call not preserved: %#v", got.Messages[1])
	}
}

func TestSettingsAndStats(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	if _, err := repo.GetSetting(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing setting, got: %v", err)
	}
	if err := repo.SetSetting(ctx, "ai.api_key", "secret"); err != nil {
		t.Fatalf("set setting: %v", err)
	}
	if err := repo.SetSetting(ctx, "ai.api_key", "rotated"); err != nil {
		t.Fatalf("overwrite setting: %v", err)
	}
	value, err := repo.GetSetting(ctx, "ai.api_key")
	if err != nil {
		t.Fatalf("get setting: %v", err)
	}
	if value != "rotated" {
		t.Fatalf("expected overwritten value, got %q", value)
	}

	if _, err := repo.GetUserStats(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing stats, got: %v", err)
	}
	stats := model.UserStats{Points: 25, Streak: 3, LastCompletionDay: "2026-03-01"}
	if err := repo.PutUserStats(ctx, stats); err != nil {
		t.Fatalf("put stats: %v", err)
	}
	got, err := repo.GetUserStats(ctx)
	if err != nil {
		t.Fatalf("get stats: %v", err)
	}
	if got.Points != 25 || got.Streak != 3 || got.ID != model.UserStatsID {
		t.Fatalf("unexpected stats: %#v", got)
	}
}

func TestDocumentStore(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	if err := repo.PutDocument(ctx, CollectionQuickLinks, "link-1", []byte(`{"url":"https://example.com"}`)); err != nil {
		t.Fatalf("put document: %v", err)
	}
	if err := repo.PutDocument(ctx, CollectionQuickLinks, "link-1", []byte(`{"url":"https://example.org"}`)); err != nil {
		t.Fatalf("overwrite document: %v", err)
	}
	docs, err := repo.ListDocuments(ctx, CollectionQuickLinks)
	if err != nil {
		t.Fatalf("list documents: %v", err)
	}
	if len(docs) != 1 || string(docs[0]) != `{"url":"https://example.org"}` {
		t.Fatalf("unexpected documents: %v", docs)
	}
	if err := repo.DeleteDocument(ctx, CollectionQuickLinks, "link-1"); err != nil {
		t.Fatalf("delete document: %v", err)
	}
	if _, err := repo.GetDocument(ctx, CollectionQuickLinks, "link-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got: %v", err)
	}
}
