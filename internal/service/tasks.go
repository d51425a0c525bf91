package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"momentum/internal/gamify"
	"momentum/internal/model"
	"momentum/internal/storage"
)

type Tasks struct {
	repo        storage.Repository
	stats       *Stats
	attachments storage.AttachmentStore
	now         clock
}

func NewTasks(repo storage.Repository, stats *Stats, attachments storage.AttachmentStore) *Tasks {
	return &Tasks{repo: repo, stats: stats, attachments: attachments, now: time.Now}
}

type TaskInput struct {
	ListID      string
	Title       string
	Description string
	Status      model.Status
	Priority    model.Priority
	DueDate     *time.Time
	Reminder    *time.Time
	Tags        []string
	Checklist   []model.ChecklistItem
	DependsOn   []string
}

func (s *Tasks) Create(ctx context.Context, in TaskInput) (model.Task, error) {
	list, err := s.repo.GetList(ctx, in.ListID)
	if err != nil {
		return model.Task{}, fmt.Errorf("resolve list: %w", err)
	}
	if in.Status == "" {
		in.Status = model.StatusTodo
	}
	if !list.AllowsStatus(in.Status) {
		return model.Task{}, fmt.Errorf("%w: %q", ErrStatusNotAllowed, in.Status)
	}
	if in.Priority == "" {
		in.Priority = model.PriorityMedium
	}

	now := s.now()
	task := model.Task{
		ID:          uuid.NewString(),
		ListID:      list.ID,
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
		DueDate:     in.DueDate,
		Reminder:    in.Reminder,
		Tags:        in.Tags,
		Checklist:   in.Checklist,
		DependsOn:   in.DependsOn,
		Activity:    []model.ActivityEntry{{At: now, Message: "created"}},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := task.Validate(); err != nil {
		return model.Task{}, err
	}
	if err := s.repo.CreateTask(ctx, task); err != nil {
		return model.Task{}, fmt.Errorf("create task: %w", err)
	}
	return task, nil
}

func (s *Tasks) Get(ctx context.Context, id string) (model.Task, error) {
	return s.repo.GetTask(ctx, id)
}

func (s *Tasks) List(ctx context.Context, filter storage.TaskFilter) ([]model.Task, error) {
	return s.repo.ListTasks(ctx, filter)
}

// Update replaces the task record. Status transitions in or out of Done must
// go through SetStatus so points stay consistent; Update rejects them.
func (s *Tasks) Update(ctx context.Context, task model.Task) (model.Task, error) {
	current, err := s.repo.GetTask(ctx, task.ID)
	if err != nil {
		return model.Task{}, err
	}
	if current.IsDone() != (task.Status == model.StatusDone) {
		return model.Task{}, fmt.Errorf("%w: use the status operation to complete or reopen", ErrStatusNotAllowed)
	}
	list, err := s.repo.GetList(ctx, task.ListID)
	if err != nil {
		return model.Task{}, fmt.Errorf("resolve list: %w", err)
	}
	if !list.AllowsStatus(task.Status) {
		return model.Task{}, fmt.Errorf("%w: %q", ErrStatusNotAllowed, task.Status)
	}
	task.CreatedAt = current.CreatedAt
	task.CompletedAt = current.CompletedAt
	task.UpdatedAt = s.now()
	if err := task.Validate(); err != nil {
		return model.Task{}, err
	}
	if err := s.repo.UpdateTask(ctx, task); err != nil {
		return model.Task{}, fmt.Errorf("update task: %w", err)
	}
	return task, nil
}

func (s *Tasks) Delete(ctx context.Context, id string) error {
	return s.repo.DeleteTask(ctx, id)
}

// SetStatus moves a task through its list's workflow. Moving to Done awards
// points; moving out of Done reverses them.
func (s *Tasks) SetStatus(ctx context.Context, id string, status model.Status) (model.Task, error) {
	task, err := s.repo.GetTask(ctx, id)
	if err != nil {
		return model.Task{}, err
	}
	list, err := s.repo.GetList(ctx, task.ListID)
	if err != nil {
		return model.Task{}, fmt.Errorf("resolve list: %w", err)
	}
	if !list.AllowsStatus(status) {
		return model.Task{}, fmt.Errorf("%w: %q", ErrStatusNotAllowed, status)
	}
	if task.Status == status {
		return task, nil
	}

	now := s.now()
	wasDone := task.IsDone()
	task.Status = status
	task.UpdatedAt = now
	task.Activity = append(task.Activity, model.ActivityEntry{
		At:      now,
		Message: fmt.Sprintf("status changed to %s", status),
	})

	switch {
	case !wasDone && status == model.StatusDone:
		task.CompletedAt = &now
		if err := s.repo.UpdateTask(ctx, task); err != nil {
			return model.Task{}, fmt.Errorf("update task: %w", err)
		}
		if _, err := s.stats.Award(ctx, gamify.TaskPoints, now); err != nil {
			return model.Task{}, err
		}
	case wasDone && status != model.StatusDone:
		task.CompletedAt = nil
		if err := s.repo.UpdateTask(ctx, task); err != nil {
			return model.Task{}, fmt.Errorf("update task: %w", err)
		}
		other, err := s.stats.OtherCompletionsToday(ctx, now, task.ID, "")
		if err != nil {
			return model.Task{}, err
		}
		if _, err := s.stats.Reverse(ctx, gamify.TaskPoints, other, now); err != nil {
			return model.Task{}, err
		}
	default:
		if err := s.repo.UpdateTask(ctx, task); err != nil {
			return model.Task{}, fmt.Errorf("update task: %w", err)
		}
	}
	return task, nil
}

// Complete is SetStatus(Done).
func (s *Tasks) Complete(ctx context.Context, id string) (model.Task, error) {
	return s.SetStatus(ctx, id, model.StatusDone)
}

// Uncomplete reopens a done task into ToDo.
func (s *Tasks) Uncomplete(ctx context.Context, id string) (model.Task, error) {
	return s.SetStatus(ctx, id, model.StatusTodo)
}

// AddComment appends a comment and an activity entry.
func (s *Tasks) AddComment(ctx context.Context, id, text string) (model.Task, error) {
	task, err := s.repo.GetTask(ctx, id)
	if err != nil {
		return model.Task{}, err
	}
	now := s.now()
	task.Comments = append(task.Comments, model.Comment{
		ID:        uuid.NewString(),
		Text:      text,
		CreatedAt: now,
	})
	task.Activity = append(task.Activity, model.ActivityEntry{At: now, Message: "comment added"})
	task.UpdatedAt = now
	if err := s.repo.UpdateTask(ctx, task); err != nil {
		return model.Task{}, fmt.Errorf("update task: %w", err)
	}
	return task, nil
}

// Attach stores the file through the attachment store and records it on the
// task.
func (s *Tasks) Attach(ctx context.Context, id, name, mimeType string, data []byte) (model.Task, error) {
	task, err := s.repo.GetTask(ctx, id)
	if err != nil {
		return model.Task{}, err
	}
	att, err := s.attachments.Save(name, mimeType, data)
	if err != nil {
		return model.Task{}, fmt.Errorf("save attachment: %w", err)
	}
	now := s.now()
	task.Attachments = append(task.Attachments, att)
	task.Activity = append(task.Activity, model.ActivityEntry{At: now, Message: "attachment added"})
	task.UpdatedAt = now
	if err := s.repo.UpdateTask(ctx, task); err != nil {
		return model.Task{}, fmt.Errorf("update task: %w", err)
	}
	return task, nil
}
