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

type Habits struct {
	repo  storage.Repository
	stats *Stats
	now   clock
}

func NewHabits(repo storage.Repository, stats *Stats) *Habits {
	return &Habits{repo: repo, stats: stats, now: time.Now}
}

type HabitInput struct {
	Name         string
	Frequency    model.Frequency
	Kind         model.HabitKind
	GoalValue    float64
	Unit         string
	ReminderTime string
	GoalID       string
}

func (s *Habits) Create(ctx context.Context, in HabitInput) (model.Habit, error) {
	if in.Kind == "" {
		in.Kind = model.HabitBinary
	}
	if in.Frequency.Kind == "" {
		in.Frequency.Kind = model.FrequencyDaily
	}
	habit := model.Habit{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Frequency:    in.Frequency,
		Kind:         in.Kind,
		GoalValue:    in.GoalValue,
		Unit:         in.Unit,
		ReminderTime: in.ReminderTime,
		GoalID:       in.GoalID,
		CreatedAt:    s.now(),
	}
	if err := habit.Validate(); err != nil {
		return model.Habit{}, err
	}
	if err := s.repo.CreateHabit(ctx, habit); err != nil {
		return model.Habit{}, fmt.Errorf("create habit: %w", err)
	}
	return habit, nil
}

func (s *Habits) Get(ctx context.Context, id string) (model.Habit, error) {
	return s.repo.GetHabit(ctx, id)
}

func (s *Habits) List(ctx context.Context, includeArchived bool) ([]model.Habit, error) {
	return s.repo.ListHabits(ctx, includeArchived)
}

func (s *Habits) Update(ctx context.Context, habit model.Habit) (model.Habit, error) {
	current, err := s.repo.GetHabit(ctx, habit.ID)
	if err != nil {
		return model.Habit{}, err
	}
	habit.CreatedAt = current.CreatedAt
	if err := habit.Validate(); err != nil {
		return model.Habit{}, err
	}
	if err := s.repo.UpdateHabit(ctx, habit); err != nil {
		return model.Habit{}, fmt.Errorf("update habit: %w", err)
	}
	return habit, nil
}

// Archive hides the habit from active views and reminders; history stays.
func (s *Habits) Archive(ctx context.Context, id string, archived bool) (model.Habit, error) {
	habit, err := s.repo.GetHabit(ctx, id)
	if err != nil {
		return model.Habit{}, err
	}
	habit.Archived = archived
	if err := s.repo.UpdateHabit(ctx, habit); err != nil {
		return model.Habit{}, fmt.Errorf("update habit: %w", err)
	}
	return habit, nil
}

func (s *Habits) Delete(ctx context.Context, id string) error {
	logs, err := s.repo.ListHabitLogs(ctx, storage.HabitLogFilter{HabitID: id})
	if err != nil {
		return fmt.Errorf("list logs for cascade: %w", err)
	}
	for _, l := range logs {
		if err := s.repo.DeleteHabitLog(ctx, l.HabitID, l.Date); err != nil {
			return fmt.Errorf("cascade delete log: %w", err)
		}
	}
	return s.repo.DeleteHabit(ctx, id)
}

// Log records the habit's value for a calendar day. The first log of a day
// awards points; re-logging the same day only replaces the value. A zero
// value on a binary habit still counts as done.
func (s *Habits) Log(ctx context.Context, habitID, date string, value float64) (model.HabitLog, error) {
	if _, err := s.repo.GetHabit(ctx, habitID); err != nil {
		return model.HabitLog{}, err
	}
	now := s.now()
	if date == "" {
		date = now.Format(model.DateLayout)
	}
	entry := model.HabitLog{
		ID:        uuid.NewString(),
		HabitID:   habitID,
		Date:      date,
		Value:     value,
		CreatedAt: now,
	}
	if err := entry.Validate(); err != nil {
		return model.HabitLog{}, err
	}

	existing, err := s.repo.ListHabitLogs(ctx, storage.HabitLogFilter{HabitID: habitID, Date: date})
	if err != nil {
		return model.HabitLog{}, fmt.Errorf("check existing log: %w", err)
	}
	if err := s.repo.UpsertHabitLog(ctx, entry); err != nil {
		return model.HabitLog{}, fmt.Errorf("upsert log: %w", err)
	}
	if len(existing) == 0 {
		if _, err := s.stats.Award(ctx, gamify.HabitPoints, now); err != nil {
			return model.HabitLog{}, err
		}
	}
	return entry, nil
}

// Unlog removes a day's log and reverses its points.
func (s *Habits) Unlog(ctx context.Context, habitID, date string) error {
	existing, err := s.repo.ListHabitLogs(ctx, storage.HabitLogFilter{HabitID: habitID, Date: date})
	if err != nil {
		return fmt.Errorf("check existing log: %w", err)
	}
	if len(existing) == 0 {
		return storage.ErrNotFound
	}
	if err := s.repo.DeleteHabitLog(ctx, habitID, date); err != nil {
		return fmt.Errorf("delete log: %w", err)
	}
	now := s.now()
	other, err := s.stats.OtherCompletionsToday(ctx, now, "", habitID)
	if err != nil {
		return err
	}
	_, err = s.stats.Reverse(ctx, gamify.HabitPoints, other, now)
	return err
}

// History returns the habit's logs ordered by date.
func (s *Habits) History(ctx context.Context, habitID string) ([]model.HabitLog, error) {
	return s.repo.ListHabitLogs(ctx, storage.HabitLogFilter{HabitID: habitID})
}

// Streak counts consecutive calendar days with a log, ending today or
// yesterday. Weekday and times-per-week habits count only scheduled days.
func (s *Habits) Streak(ctx context.Context, habitID string) (int, error) {
	habit, err := s.repo.GetHabit(ctx, habitID)
	if err != nil {
		return 0, err
	}
	logs, err := s.repo.ListHabitLogs(ctx, storage.HabitLogFilter{HabitID: habitID})
	if err != nil {
		return 0, err
	}
	logged := make(map[string]bool, len(logs))
	for _, l := range logs {
		logged[l.Date] = true
	}

	now := s.now()
	day := now
	// An unlogged today does not break the streak yet.
	if !logged[day.Format(model.DateLayout)] {
		day = day.AddDate(0, 0, -1)
	}
	streak := 0
	for i := 0; i < 3650; i++ {
		key := day.Format(model.DateLayout)
		if scheduledOn(habit, day) {
			if !logged[key] {
				break
			}
			streak++
		}
		day = day.AddDate(0, 0, -1)
	}
	return streak, nil
}

// scheduledOn reports whether the habit expects activity on the given day.
// Times-per-week habits have no fixed days, so every day counts.
func scheduledOn(habit model.Habit, day time.Time) bool {
	switch habit.Frequency.Kind {
	case model.FrequencyWeekdays:
		for _, wd := range habit.Frequency.Weekdays {
			if wd == day.Weekday() {
				return true
			}
		}
		return false
	default:
		return true
	}
}
