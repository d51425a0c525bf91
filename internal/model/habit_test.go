package model

import (
	"testing"
	"time"
)

func TestHabitValidate(t *testing.T) {
	base := Habit{
		ID:        "habit-1",
		Name:      "Read",
		Frequency: Frequency{Kind: FrequencyDaily},
		Kind:      HabitBinary,
		CreatedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := base.Validate(); err != nil {
		t.Fatalf("valid habit rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Habit)
	}{
		{"empty name", func(h *Habit) { h.Name = "" }},
		{"bad frequency kind", func(h *Habit) { h.Frequency.Kind = "hourly" }},
		{"weekdays without days", func(h *Habit) { h.Frequency = Frequency{Kind: FrequencyWeekdays} }},
		{"times per week zero", func(h *Habit) { h.Frequency = Frequency{Kind: FrequencyTimesPerWeek} }},
		{"bad habit kind", func(h *Habit) { h.Kind = "streak" }},
		{"quantitative without goal", func(h *Habit) { h.Kind = HabitQuantitative }},
		{"bad reminder time", func(h *Habit) { h.ReminderTime = "25:99" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := base
			tc.mutate(&h)
			if err := h.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}

	quant := base
	quant.Kind = HabitQuantitative
	quant.GoalValue = 8
	quant.Unit = "glasses"
	quant.ReminderTime = "07:30"
	if err := quant.Validate(); err != nil {
		t.Fatalf("valid quantitative habit rejected: %v", err)
	}
}

func TestParseClock(t *testing.T) {
	c, err := ParseClock("07:30")
	if err != nil {
		t.Fatalf("parse clock: %v", err)
	}
	if c.Hour != 7 || c.Minute != 30 {
		t.Fatalf("unexpected clock: %+v", c)
	}

	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	at := c.At(now)
	want := time.Date(2026, 3, 2, 7, 30, 0, 0, time.UTC)
	if !at.Equal(want) {
		t.Fatalf("Clock.At = %v, want %v", at, want)
	}

	for _, bad := range []string{"", "7", "24:00", "12:60", "noon"} {
		if _, err := ParseClock(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestHabitLogValidate(t *testing.T) {
	log := HabitLog{HabitID: "habit-1", Date: "2026-03-02", Value: 1}
	if err := log.Validate(); err != nil {
		t.Fatalf("valid log rejected: %v", err)
	}
	log.Date = "03/02/2026"
	if err := log.Validate(); err == nil {
		t.Fatalf("expected date format error")
	}
}
