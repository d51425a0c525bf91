package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"momentum/internal/model"
	"momentum/internal/storage"
)

type Lists struct {
	repo storage.Repository
	now  clock
}

func NewLists(repo storage.Repository) *Lists {
	return &Lists{repo: repo, now: time.Now}
}

type ListInput struct {
	Name        string
	Color       string
	Type        model.ListType
	Statuses    []model.Status
	DefaultView string
}

func (s *Lists) Create(ctx context.Context, in ListInput) (model.List, error) {
	if in.Type == "" {
		in.Type = model.ListTypeTask
	}
	list := model.List{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Color:       in.Color,
		Type:        in.Type,
		Statuses:    in.Statuses,
		DefaultView: in.DefaultView,
		CreatedAt:   s.now(),
	}
	if err := list.Validate(); err != nil {
		return model.List{}, err
	}
	if err := s.repo.CreateList(ctx, list); err != nil {
		return model.List{}, fmt.Errorf("create list: %w", err)
	}
	return list, nil
}

func (s *Lists) Get(ctx context.Context, id string) (model.List, error) {
	return s.repo.GetList(ctx, id)
}

func (s *Lists) List(ctx context.Context) ([]model.List, error) {
	return s.repo.ListLists(ctx)
}

// Update replaces the list. Shrinking the status set does not touch tasks
// already carrying a removed status; they keep it until their next move.
func (s *Lists) Update(ctx context.Context, list model.List) (model.List, error) {
	if err := list.Validate(); err != nil {
		return model.List{}, err
	}
	if err := s.repo.UpdateList(ctx, list); err != nil {
		return model.List{}, fmt.Errorf("update list: %w", err)
	}
	return list, nil
}

// Delete removes the list and cascades to its tasks and notes. The
// repository enforces no referential integrity, so the cascade runs here.
func (s *Lists) Delete(ctx context.Context, id string) error {
	tasks, err := s.repo.ListTasks(ctx, storage.TaskFilter{ListID: id})
	if err != nil {
		return fmt.Errorf("list tasks for cascade: %w", err)
	}
	for _, t := range tasks {
		if err := s.repo.DeleteTask(ctx, t.ID); err != nil {
			return fmt.Errorf("cascade delete task %s: %w", t.ID, err)
		}
	}
	notes, err := s.repo.ListNotes(ctx, storage.NoteFilter{ListID: id})
	if err != nil {
		return fmt.Errorf("list notes for cascade: %w", err)
	}
	for _, n := range notes {
		if err := s.repo.DeleteNote(ctx, n.ID); err != nil {
			return fmt.Errorf("cascade delete note %s: %w", n.ID, err)
		}
	}
	if err := s.repo.DeleteList(ctx, id); err != nil {
		return fmt.Errorf("delete list: %w", err)
	}
	return nil
}
