package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"momentum/internal/model"
	"momentum/internal/storage"
)

type Reminders struct {
	repo storage.Repository
	now  clock
}

func NewReminders(repo storage.Repository) *Reminders {
	return &Reminders{repo: repo, now: time.Now}
}

func (s *Reminders) Create(ctx context.Context, title string, remindAt time.Time) (model.CustomReminder, error) {
	r := model.CustomReminder{
		ID:        uuid.NewString(),
		Title:     title,
		RemindAt:  remindAt,
		CreatedAt: s.now(),
	}
	if err := r.Validate(); err != nil {
		return model.CustomReminder{}, err
	}
	if err := s.repo.CreateReminder(ctx, r); err != nil {
		return model.CustomReminder{}, fmt.Errorf("create reminder: %w", err)
	}
	return r, nil
}

func (s *Reminders) Get(ctx context.Context, id string) (model.CustomReminder, error) {
	return s.repo.GetReminder(ctx, id)
}

func (s *Reminders) List(ctx context.Context) ([]model.CustomReminder, error) {
	return s.repo.ListReminders(ctx)
}

func (s *Reminders) Update(ctx context.Context, r model.CustomReminder) (model.CustomReminder, error) {
	current, err := s.repo.GetReminder(ctx, r.ID)
	if err != nil {
		return model.CustomReminder{}, err
	}
	r.CreatedAt = current.CreatedAt
	if err := r.Validate(); err != nil {
		return model.CustomReminder{}, err
	}
	if err := s.repo.UpdateReminder(ctx, r); err != nil {
		return model.CustomReminder{}, fmt.Errorf("update reminder: %w", err)
	}
	return r, nil
}

// SetCompleted marks the reminder done (or reopens it); completed reminders
// never fire again.
func (s *Reminders) SetCompleted(ctx context.Context, id string, completed bool) (model.CustomReminder, error) {
	r, err := s.repo.GetReminder(ctx, id)
	if err != nil {
		return model.CustomReminder{}, err
	}
	r.Completed = completed
	if err := s.repo.UpdateReminder(ctx, r); err != nil {
		return model.CustomReminder{}, fmt.Errorf("update reminder: %w", err)
	}
	return r, nil
}

func (s *Reminders) Delete(ctx context.Context, id string) error {
	return s.repo.DeleteReminder(ctx, id)
}
