package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidFrequency = errors.New("model: invalid habit frequency")
	ErrInvalidHabitKind = errors.New("model: invalid habit kind")
)

// DateLayout is the calendar-day key used by habit logs and streak state.
const DateLayout = "2006-01-02"

type FrequencyKind string

const (
	FrequencyDaily        FrequencyKind = "daily"
	FrequencyWeekdays     FrequencyKind = "weekdays"
	FrequencyTimesPerWeek FrequencyKind = "timesPerWeek"
)

func (k FrequencyKind) IsValid() bool {
	switch k {
	case FrequencyDaily, FrequencyWeekdays, FrequencyTimesPerWeek:
		return true
	default:
		return false
	}
}

type Frequency struct {
	Kind FrequencyKind `json:"kind"`
	// Weekdays applies when Kind is weekdays.
	Weekdays []time.Weekday `json:"weekdays,omitempty"`
	// TimesPerWeek applies when Kind is timesPerWeek.
	TimesPerWeek int `json:"timesPerWeek,omitempty"`
}

func (f Frequency) Validate() error {
	if !f.Kind.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidFrequency, f.Kind)
	}
	if f.Kind == FrequencyWeekdays && len(f.Weekdays) == 0 {
		return fmt.Errorf("%w: weekday set is empty", ErrInvalidFrequency)
	}
	if f.Kind == FrequencyTimesPerWeek && f.TimesPerWeek <= 0 {
		return fmt.Errorf("%w: times per week must be positive", ErrInvalidFrequency)
	}
	return nil
}

type HabitKind string

const (
	HabitBinary       HabitKind = "binary"
	HabitQuantitative HabitKind = "quantity"
)

func (k HabitKind) IsValid() bool {
	switch k {
	case HabitBinary, HabitQuantitative:
		return true
	default:
		return false
	}
}

type Habit struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Frequency Frequency `json:"frequency"`
	Kind      HabitKind `json:"kind"`
	// GoalValue and Unit apply to quantitative habits.
	GoalValue float64 `json:"goalValue,omitempty"`
	Unit      string  `json:"unit,omitempty"`
	// ReminderTime is a wall-clock HH:MM string, no date component.
	ReminderTime string    `json:"reminderTime,omitempty"`
	GoalID       string    `json:"goalId,omitempty"`
	Archived     bool      `json:"archived"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (h Habit) Validate() error {
	if strings.TrimSpace(h.ID) == "" {
		return errors.New("model: habit id is required")
	}
	if strings.TrimSpace(h.Name) == "" {
		return errors.New("model: habit name is required")
	}
	if err := h.Frequency.Validate(); err != nil {
		return err
	}
	if !h.Kind.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidHabitKind, h.Kind)
	}
	if h.Kind == HabitQuantitative && h.GoalValue <= 0 {
		return errors.New("model: quantitative habit goal value must be positive")
	}
	if h.ReminderTime != "" {
		if _, err := ParseClock(h.ReminderTime); err != nil {
			return err
		}
	}
	return nil
}

// ParseClock parses an HH:MM wall-clock string into hour and minute.
func ParseClock(raw string) (Clock, error) {
	var c Clock
	if _, err := fmt.Sscanf(strings.TrimSpace(raw), "%d:%d", &c.Hour, &c.Minute); err != nil {
		return Clock{}, fmt.Errorf("model: parse clock %q: %w", raw, err)
	}
	if c.Hour < 0 || c.Hour > 23 || c.Minute < 0 || c.Minute > 59 {
		return Clock{}, fmt.Errorf("model: clock %q out of range", raw)
	}
	return c, nil
}

type Clock struct {
	Hour   int
	Minute int
}

// At anchors the wall-clock time to now's calendar day and location.
func (c Clock) At(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, c.Hour, c.Minute, 0, 0, now.Location())
}

// HabitLog records one day's value for a habit. At most one log exists per
// (habit, date) pair; writes are upserts.
type HabitLog struct {
	ID      string `json:"id"`
	HabitID string `json:"habitId"`
	// Date is a YYYY-MM-DD calendar day.
	Date      string    `json:"date"`
	Value     float64   `json:"value"`
	CreatedAt time.Time `json:"createdAt"`
}

func (l HabitLog) Validate() error {
	if strings.TrimSpace(l.HabitID) == "" {
		return errors.New("model: habit log habit_id is required")
	}
	if _, err := time.Parse(DateLayout, l.Date); err != nil {
		return fmt.Errorf("model: habit log date %q: %w", l.Date, err)
	}
	return nil
}
