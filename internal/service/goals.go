package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"momentum/internal/ai"
	"momentum/internal/model"
	"momentum/internal/storage"
)

type Goals struct {
	repo  storage.Repository
	lists *Lists
	tasks *Tasks
	now   clock
}

func NewGoals(repo storage.Repository, lists *Lists, tasks *Tasks) *Goals {
	return &Goals{repo: repo, lists: lists, tasks: tasks, now: time.Now}
}

type GoalInput struct {
	Title         string
	Vision        string
	TargetDate    *time.Time
	LinkedListIDs []string
	ImageRef      string
}

func (s *Goals) Create(ctx context.Context, in GoalInput) (model.Goal, error) {
	goal := model.Goal{
		ID:            uuid.NewString(),
		Title:         in.Title,
		Vision:        in.Vision,
		TargetDate:    in.TargetDate,
		LinkedListIDs: in.LinkedListIDs,
		ImageRef:      in.ImageRef,
		CreatedAt:     s.now(),
	}
	if err := goal.Validate(); err != nil {
		return model.Goal{}, err
	}
	if err := s.repo.CreateGoal(ctx, goal); err != nil {
		return model.Goal{}, fmt.Errorf("create goal: %w", err)
	}
	return goal, nil
}

func (s *Goals) Get(ctx context.Context, id string) (model.Goal, error) {
	return s.repo.GetGoal(ctx, id)
}

func (s *Goals) List(ctx context.Context) ([]model.Goal, error) {
	return s.repo.ListGoals(ctx)
}

func (s *Goals) Update(ctx context.Context, goal model.Goal) (model.Goal, error) {
	current, err := s.repo.GetGoal(ctx, goal.ID)
	if err != nil {
		return model.Goal{}, err
	}
	goal.CreatedAt = current.CreatedAt
	if err := goal.Validate(); err != nil {
		return model.Goal{}, err
	}
	if err := s.repo.UpdateGoal(ctx, goal); err != nil {
		return model.Goal{}, fmt.Errorf("update goal: %w", err)
	}
	return goal, nil
}

// Delete removes the goal only. Linked lists and their tasks survive.
func (s *Goals) Delete(ctx context.Context, id string) error {
	return s.repo.DeleteGoal(ctx, id)
}

// Progress derives the goal's completion ratio from the Done ratio of tasks
// in its linked lists. It is never stored.
type Progress struct {
	Done  int     `json:"done"`
	Total int     `json:"total"`
	Ratio float64 `json:"ratio"`
}

func (s *Goals) Progress(ctx context.Context, goalID string) (Progress, error) {
	goal, err := s.repo.GetGoal(ctx, goalID)
	if err != nil {
		return Progress{}, err
	}
	var p Progress
	for _, listID := range goal.LinkedListIDs {
		tasks, err := s.repo.ListTasks(ctx, storage.TaskFilter{ListID: listID})
		if err != nil {
			return Progress{}, fmt.Errorf("list tasks: %w", err)
		}
		for _, t := range tasks {
			p.Total++
			if t.IsDone() {
				p.Done++
			}
		}
	}
	if p.Total > 0 {
		p.Ratio = float64(p.Done) / float64(p.Total)
	}
	return p, nil
}

// LinkedTasks returns all tasks across the goal's linked lists, for the
// insight prompt and the goal detail view.
func (s *Goals) LinkedTasks(ctx context.Context, goalID string) ([]model.Task, error) {
	goal, err := s.repo.GetGoal(ctx, goalID)
	if err != nil {
		return nil, err
	}
	var out []model.Task
	for _, listID := range goal.LinkedListIDs {
		tasks, err := s.repo.ListTasks(ctx, storage.TaskFilter{ListID: listID})
		if err != nil {
			return nil, fmt.Errorf("list tasks: %w", err)
		}
		out = append(out, tasks...)
	}
	return out, nil
}

// ApplyPlan materializes a generated plan: a new task list, the planned
// tasks with due dates spaced by their durations, and a goal linked to the
// list. Creation is not transactional; a partial failure leaves the created
// list and tasks in place and returns the error.
func (s *Goals) ApplyPlan(ctx context.Context, plan ai.GoalPlan) (model.Goal, error) {
	if plan.Title == "" || len(plan.Tasks) == 0 {
		return model.Goal{}, fmt.Errorf("plan is incomplete")
	}
	listName := plan.ListName
	if listName == "" {
		listName = plan.Title
	}
	list, err := s.lists.Create(ctx, ListInput{Name: listName, Type: model.ListTypeTask})
	if err != nil {
		return model.Goal{}, fmt.Errorf("create plan list: %w", err)
	}

	due := s.now()
	for _, pt := range plan.Tasks {
		days := pt.DurationDays
		if days <= 0 {
			days = 1
		}
		due = due.AddDate(0, 0, days)
		dueCopy := due
		checklist := make([]model.ChecklistItem, 0, len(pt.Checklist))
		for _, item := range pt.Checklist {
			checklist = append(checklist, model.ChecklistItem{Text: item})
		}
		if _, err := s.tasks.Create(ctx, TaskInput{
			ListID:      list.ID,
			Title:       pt.Title,
			Description: pt.Description,
			DueDate:     &dueCopy,
			Checklist:   checklist,
		}); err != nil {
			return model.Goal{}, fmt.Errorf("create planned task %q: %w", pt.Title, err)
		}
	}

	var target *time.Time
	if plan.TargetDate != "" {
		if parsed, err := time.ParseInLocation(model.DateLayout, plan.TargetDate, s.now().Location()); err == nil {
			target = &parsed
		}
	}
	return s.Create(ctx, GoalInput{
		Title:         plan.Title,
		Vision:        plan.Motivation,
		TargetDate:    target,
		LinkedListIDs: []string{list.ID},
	})
}
