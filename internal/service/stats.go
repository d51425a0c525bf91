package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"momentum/internal/gamify"
	"momentum/internal/model"
	"momentum/internal/storage"
)

// Stats owns the single user-stats record. Completion and reversal always go
// through here so points and streak stay consistent across tasks and habits.
type Stats struct {
	repo storage.Repository
}

func NewStats(repo storage.Repository) *Stats {
	return &Stats{repo: repo}
}

// Get returns the stats record, or the zero record if none exists yet.
func (s *Stats) Get(ctx context.Context) (model.UserStats, error) {
	stats, err := s.repo.GetUserStats(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return model.NewUserStats(), nil
	}
	if err != nil {
		return model.UserStats{}, fmt.Errorf("get stats: %w", err)
	}
	return stats, nil
}

// Award applies one completion's points and streak advance.
func (s *Stats) Award(ctx context.Context, points int, now time.Time) (model.UserStats, error) {
	stats, err := s.Get(ctx)
	if err != nil {
		return model.UserStats{}, err
	}
	stats = gamify.ProcessCompletion(stats, points, now)
	if err := s.repo.PutUserStats(ctx, stats); err != nil {
		return model.UserStats{}, fmt.Errorf("put stats: %w", err)
	}
	return stats, nil
}

// Reverse undoes one completion. otherCompletionsToday tells the streak
// logic whether today still has a qualifying completion.
func (s *Stats) Reverse(ctx context.Context, points int, otherCompletionsToday bool, now time.Time) (model.UserStats, error) {
	stats, err := s.Get(ctx)
	if err != nil {
		return model.UserStats{}, err
	}
	stats = gamify.ReverseCompletion(stats, points, otherCompletionsToday, now)
	if err := s.repo.PutUserStats(ctx, stats); err != nil {
		return model.UserStats{}, fmt.Errorf("put stats: %w", err)
	}
	return stats, nil
}

// OtherCompletionsToday reports whether any completion besides the excluded
// ones happened on now's calendar day: a task completed today or a habit log
// dated today.
func (s *Stats) OtherCompletionsToday(ctx context.Context, now time.Time, excludeTaskID, excludeHabitID string) (bool, error) {
	tasks, err := s.repo.ListTasks(ctx, storage.TaskFilter{Status: model.StatusDone})
	if err != nil {
		return false, fmt.Errorf("list done tasks: %w", err)
	}
	for _, t := range tasks {
		if t.ID == excludeTaskID || t.CompletedAt == nil {
			continue
		}
		if model.SameDay(*t.CompletedAt, now) {
			return true, nil
		}
	}

	logs, err := s.repo.ListHabitLogs(ctx, storage.HabitLogFilter{Date: now.Format(model.DateLayout)})
	if err != nil {
		return false, fmt.Errorf("list habit logs: %w", err)
	}
	for _, l := range logs {
		if l.HabitID != excludeHabitID {
			return true, nil
		}
	}
	return false, nil
}
