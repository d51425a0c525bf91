package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"momentum/internal/gamify"
	"momentum/internal/model"
	"momentum/internal/storage"
)

var testTime = time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

type fixture struct {
	repo   *storage.MemoryRepository
	stats  *Stats
	lists  *Lists
	tasks  *Tasks
	notes  *Notes
	habits *Habits
	goals  *Goals
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := storage.NewMemoryRepository()
	stats := NewStats(repo)
	lists := NewLists(repo)
	lists.now = func() time.Time { return testTime }
	attachments := storage.NewInlineAttachmentStore()
	tasks := NewTasks(repo, stats, attachments)
	tasks.now = func() time.Time { return testTime }
	notes := NewNotes(repo, attachments)
	notes.now = func() time.Time { return testTime }
	habits := NewHabits(repo, stats)
	habits.now = func() time.Time { return testTime }
	goals := NewGoals(repo, lists, tasks)
	goals.now = func() time.Time { return testTime }
	return &fixture{repo: repo, stats: stats, lists: lists, tasks: tasks, notes: notes, habits: habits, goals: goals}
}

func (f *fixture) taskList(t *testing.T, statuses ...model.Status) model.List {
	t.Helper()
	list, err := f.lists.Create(context.Background(), ListInput{
		Name:     "Work",
		Type:     model.ListTypeTask,
		Statuses: statuses,
	})
	require.NoError(t, err)
	return list
}

func TestCreateTaskDefaults(t *testing.T) {
	f := newFixture(t)
	list := f.taskList(t)

	task, err := f.tasks.Create(context.Background(), TaskInput{ListID: list.ID, Title: "Write report"})
	require.NoError(t, err)
	assert.Equal(t, model.StatusTodo, task.Status)
	assert.Equal(t, model.PriorityMedium, task.Priority)
	require.Len(t, task.Activity, 1)
	assert.Equal(t, "created", task.Activity[0].Message)
}

func TestCreateTaskRejectsStatusOutsideWorkflow(t *testing.T) {
	f := newFixture(t)
	list := f.taskList(t, model.StatusTodo, model.StatusDone)

	_, err := f.tasks.Create(context.Background(), TaskInput{
		ListID: list.ID,
		Title:  "Sneaky",
		Status: model.StatusReview,
	})
	assert.ErrorIs(t, err, ErrStatusNotAllowed)
}

func TestSetStatusValidatesAgainstList(t *testing.T) {
	f := newFixture(t)
	list := f.taskList(t, model.StatusTodo, model.StatusInProgress, model.StatusDone)
	task, err := f.tasks.Create(context.Background(), TaskInput{ListID: list.ID, Title: "x"})
	require.NoError(t, err)

	_, err = f.tasks.SetStatus(context.Background(), task.ID, model.StatusWaiting)
	assert.ErrorIs(t, err, ErrStatusNotAllowed)

	got, err := f.tasks.SetStatus(context.Background(), task.ID, model.StatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, model.StatusInProgress, got.Status)
}

func TestCompleteAwardsPointsAndStampsTask(t *testing.T) {
	f := newFixture(t)
	list := f.taskList(t)
	task, err := f.tasks.Create(context.Background(), TaskInput{ListID: list.ID, Title: "x"})
	require.NoError(t, err)

	done, err := f.tasks.Complete(context.Background(), task.ID)
	require.NoError(t, err)
	require.NotNil(t, done.CompletedAt)
	assert.True(t, done.IsDone())

	stats, err := f.stats.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, gamify.TaskPoints, stats.Points)
	assert.Equal(t, 1, stats.Streak)
}

func TestCompleteTwiceIsIdempotent(t *testing.T) {
	f := newFixture(t)
	list := f.taskList(t)
	task, err := f.tasks.Create(context.Background(), TaskInput{ListID: list.ID, Title: "x"})
	require.NoError(t, err)

	_, err = f.tasks.Complete(context.Background(), task.ID)
	require.NoError(t, err)
	_, err = f.tasks.Complete(context.Background(), task.ID)
	require.NoError(t, err)

	stats, err := f.stats.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, gamify.TaskPoints, stats.Points, "second completion of a done task awards nothing")
}

func TestUncompleteReversesPointsAndStreak(t *testing.T) {
	f := newFixture(t)
	list := f.taskList(t)
	task, err := f.tasks.Create(context.Background(), TaskInput{ListID: list.ID, Title: "x"})
	require.NoError(t, err)

	_, err = f.tasks.Complete(context.Background(), task.ID)
	require.NoError(t, err)
	got, err := f.tasks.Uncomplete(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusTodo, got.Status)
	assert.Nil(t, got.CompletedAt)

	stats, err := f.stats.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Points)
	assert.Equal(t, 0, stats.Streak)
}

func TestUncompleteKeepsStreakWhenOtherCompletionExists(t *testing.T) {
	f := newFixture(t)
	list := f.taskList(t)
	first, err := f.tasks.Create(context.Background(), TaskInput{ListID: list.ID, Title: "first"})
	require.NoError(t, err)
	second, err := f.tasks.Create(context.Background(), TaskInput{ListID: list.ID, Title: "second"})
	require.NoError(t, err)

	_, err = f.tasks.Complete(context.Background(), first.ID)
	require.NoError(t, err)
	_, err = f.tasks.Complete(context.Background(), second.ID)
	require.NoError(t, err)
	_, err = f.tasks.Uncomplete(context.Background(), second.ID)
	require.NoError(t, err)

	stats, err := f.stats.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, gamify.TaskPoints, stats.Points)
	assert.Equal(t, 1, stats.Streak, "the other completion keeps today's streak")
}

func TestUpdateRejectsDoneTransition(t *testing.T) {
	f := newFixture(t)
	list := f.taskList(t)
	task, err := f.tasks.Create(context.Background(), TaskInput{ListID: list.ID, Title: "x"})
	require.NoError(t, err)

	task.Status = model.StatusDone
	_, err = f.tasks.Update(context.Background(), task)
	assert.ErrorIs(t, err, ErrStatusNotAllowed)
}

func TestDeleteListCascades(t *testing.T) {
	f := newFixture(t)
	list := f.taskList(t)
	task, err := f.tasks.Create(context.Background(), TaskInput{ListID: list.ID, Title: "x"})
	require.NoError(t, err)
	note, err := f.notes.Create(context.Background(), NoteInput{ListID: list.ID, Title: "n"})
	require.NoError(t, err)

	require.NoError(t, f.lists.Delete(context.Background(), list.ID))

	_, err = f.tasks.Get(context.Background(), task.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = f.notes.Get(context.Background(), note.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestAddCommentAppendsActivity(t *testing.T) {
	f := newFixture(t)
	list := f.taskList(t)
	task, err := f.tasks.Create(context.Background(), TaskInput{ListID: list.ID, Title: "x"})
	require.NoError(t, err)

	got, err := f.tasks.AddComment(context.Background(), task.ID, "looks good")
	require.NoError(t, err)
	require.Len(t, got.Comments, 1)
	assert.Equal(t, "looks good", got.Comments[0].Text)
	assert.Equal(t, "comment added", got.Activity[len(got.Activity)-1].Message)
}

func TestAttachStoresInline(t *testing.T) {
	f := newFixture(t)
	list := f.taskList(t)
	task, err := f.tasks.Create(context.Background(), TaskInput{ListID: list.ID, Title: "x"})
	require.NoError(t, err)

	got, err := f.tasks.Attach(context.Background(), task.ID, "notes.txt", "text/plain", []byte("hello"))
	require.NoError(t, err)
	require.Len(t, got.Attachments, 1)
	assert.Equal(t, "notes.txt", got.Attachments[0].Name)
	assert.Contains(t, got.Attachments[0].Ref, "data:text/plain;base64,")
}
