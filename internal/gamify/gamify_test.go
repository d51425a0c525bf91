package gamify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"momentum/internal/model"
)

var noon = time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

func TestProcessCompletionFirstOfDay(t *testing.T) {
	stats := model.NewUserStats()

	got := ProcessCompletion(stats, TaskPoints, noon)
	assert.Equal(t, 10, got.Points)
	assert.Equal(t, 1, got.Streak)
	assert.Equal(t, "2026-03-02", got.LastCompletionDay)
}

func TestProcessCompletionTwiceSameDay(t *testing.T) {
	stats := model.NewUserStats()

	once := ProcessCompletion(stats, TaskPoints, noon)
	twice := ProcessCompletion(once, TaskPoints, noon.Add(2*time.Hour))

	// Points accumulate per action; streak advances at most once per day.
	assert.Equal(t, 2*TaskPoints, twice.Points)
	assert.Equal(t, once.Streak, twice.Streak)
}

func TestProcessCompletionContinuesFromYesterday(t *testing.T) {
	stats := model.UserStats{ID: model.UserStatsID, Points: 50, Streak: 4, LastCompletionDay: "2026-03-01"}

	got := ProcessCompletion(stats, HabitPoints, noon)
	assert.Equal(t, 5, got.Streak)
	assert.Equal(t, 55, got.Points)
}

func TestProcessCompletionResetsAfterGap(t *testing.T) {
	stats := model.UserStats{ID: model.UserStatsID, Points: 50, Streak: 9, LastCompletionDay: "2026-02-20"}

	got := ProcessCompletion(stats, TaskPoints, noon)
	assert.Equal(t, 1, got.Streak)
}

func TestReverseCompletionFloorsPoints(t *testing.T) {
	for _, tc := range []struct {
		points   int
		subtract int
		want     int
	}{
		{0, 10, 0},
		{3, 10, 0},
		{10, 10, 0},
		{25, 10, 15},
	} {
		stats := model.UserStats{ID: model.UserStatsID, Points: tc.points}
		got := ReverseCompletion(stats, tc.subtract, true, noon)
		assert.Equal(t, tc.want, got.Points, "points=%d subtract=%d", tc.points, tc.subtract)
	}
}

func TestReverseCompletionClearsStreakWhenLastOfDay(t *testing.T) {
	stats := ProcessCompletion(model.NewUserStats(), TaskPoints, noon)

	got := ReverseCompletion(stats, TaskPoints, false, noon)
	assert.Equal(t, 0, got.Points)
	assert.Equal(t, 0, got.Streak)
	assert.Empty(t, got.LastCompletionDay)
}

func TestReverseCompletionKeepsStreakWithOtherCompletions(t *testing.T) {
	stats := ProcessCompletion(model.NewUserStats(), TaskPoints, noon)
	stats = ProcessCompletion(stats, HabitPoints, noon)

	got := ReverseCompletion(stats, HabitPoints, true, noon)
	assert.Equal(t, TaskPoints, got.Points)
	assert.Equal(t, 1, got.Streak)
	assert.Equal(t, "2026-03-02", got.LastCompletionDay)
}

func TestReverseCompletionOnOldDayLeavesStreak(t *testing.T) {
	stats := model.UserStats{ID: model.UserStatsID, Points: 40, Streak: 6, LastCompletionDay: "2026-03-01"}

	got := ReverseCompletion(stats, TaskPoints, false, noon)
	assert.Equal(t, 30, got.Points)
	assert.Equal(t, 6, got.Streak)
	assert.Equal(t, "2026-03-01", got.LastCompletionDay)
}
