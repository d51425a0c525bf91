package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"momentum/internal/ai"
	"momentum/internal/model"
	"momentum/internal/storage"
)

func TestGoalProgressIsDerived(t *testing.T) {
	f := newFixture(t)
	list := f.taskList(t)
	var ids []string
	for _, title := range []string{"a", "b", "c", "d"} {
		task, err := f.tasks.Create(context.Background(), TaskInput{ListID: list.ID, Title: title})
		require.NoError(t, err)
		ids = append(ids, task.ID)
	}
	goal, err := f.goals.Create(context.Background(), GoalInput{
		Title:         "Ship the release",
		LinkedListIDs: []string{list.ID},
	})
	require.NoError(t, err)

	p, err := f.goals.Progress(context.Background(), goal.ID)
	require.NoError(t, err)
	assert.Equal(t, Progress{Done: 0, Total: 4, Ratio: 0}, p)

	_, err = f.tasks.Complete(context.Background(), ids[0])
	require.NoError(t, err)
	p, err = f.goals.Progress(context.Background(), goal.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Done)
	assert.InDelta(t, 0.25, p.Ratio, 1e-9)

	_, err = f.tasks.Complete(context.Background(), ids[1])
	require.NoError(t, err)
	p, err = f.goals.Progress(context.Background(), goal.ID)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, p.Ratio, 1e-9)
}

func TestGoalProgressEmptyListsIsZero(t *testing.T) {
	f := newFixture(t)
	goal, err := f.goals.Create(context.Background(), GoalInput{Title: "Empty"})
	require.NoError(t, err)

	p, err := f.goals.Progress(context.Background(), goal.ID)
	require.NoError(t, err)
	assert.Equal(t, Progress{}, p)
}

func TestGoalDeleteKeepsLinkedLists(t *testing.T) {
	f := newFixture(t)
	list := f.taskList(t)
	goal, err := f.goals.Create(context.Background(), GoalInput{
		Title:         "Temporary",
		LinkedListIDs: []string{list.ID},
	})
	require.NoError(t, err)

	require.NoError(t, f.goals.Delete(context.Background(), goal.ID))
	_, err = f.lists.Get(context.Background(), list.ID)
	assert.NoError(t, err, "linked lists survive goal deletion")
}

func TestApplyPlanMaterializesListTasksAndGoal(t *testing.T) {
	f := newFixture(t)
	plan := ai.GoalPlan{
		Title:      "Run a marathon",
		Motivation: "Health and discipline.",
		ListName:   "Marathon training",
		TargetDate: "2026-09-01",
		Tasks: []ai.PlannedTask{
			{Title: "Buy running shoes", DurationDays: 1},
			{Title: "Run 5k", Checklist: []string{"warm up", "stretch"}, DurationDays: 7},
		},
	}

	goal, err := f.goals.ApplyPlan(context.Background(), plan)
	require.NoError(t, err)
	assert.Equal(t, "Run a marathon", goal.Title)
	require.Len(t, goal.LinkedListIDs, 1)
	require.NotNil(t, goal.TargetDate)
	assert.Equal(t, "2026-09-01", goal.TargetDate.Format(model.DateLayout))

	lists, err := f.lists.List(context.Background())
	require.NoError(t, err)
	require.Len(t, lists, 1)
	assert.Equal(t, "Marathon training", lists[0].Name)

	tasks, err := f.tasks.List(context.Background(), storage.TaskFilter{ListID: goal.LinkedListIDs[0]})
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	// Due dates are spaced sequentially by duration: +1 day, then +7 more.
	byTitle := map[string]model.Task{}
	for _, task := range tasks {
		byTitle[task.Title] = task
	}
	shoes := byTitle["Buy running shoes"]
	run := byTitle["Run 5k"]
	require.NotNil(t, shoes.DueDate)
	require.NotNil(t, run.DueDate)
	assert.Equal(t, "2026-03-03", shoes.DueDate.Format(model.DateLayout))
	assert.Equal(t, "2026-03-10", run.DueDate.Format(model.DateLayout))
	require.Len(t, run.Checklist, 2)
	assert.False(t, run.Checklist[0].Completed)
}

func TestApplyPlanRejectsEmptyPlan(t *testing.T) {
	f := newFixture(t)
	_, err := f.goals.ApplyPlan(context.Background(), ai.GoalPlan{Title: "No tasks"})
	assert.Error(t, err)
}
