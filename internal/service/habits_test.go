package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"momentum/internal/gamify"
	"momentum/internal/model"
	"momentum/internal/storage"
)

func (f *fixture) habit(t *testing.T) model.Habit {
	t.Helper()
	h, err := f.habits.Create(context.Background(), HabitInput{Name: "Meditate"})
	require.NoError(t, err)
	return h
}

func TestHabitCreateDefaults(t *testing.T) {
	f := newFixture(t)
	h := f.habit(t)
	assert.Equal(t, model.HabitBinary, h.Kind)
	assert.Equal(t, model.FrequencyDaily, h.Frequency.Kind)
}

func TestHabitLogAwardsOncePerDay(t *testing.T) {
	f := newFixture(t)
	h := f.habit(t)
	day := testTime.Format(model.DateLayout)

	_, err := f.habits.Log(context.Background(), h.ID, day, 1)
	require.NoError(t, err)
	// Re-logging the same day replaces the value without new points.
	_, err = f.habits.Log(context.Background(), h.ID, day, 3)
	require.NoError(t, err)

	stats, err := f.stats.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, gamify.HabitPoints, stats.Points)

	logs, err := f.habits.History(context.Background(), h.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, 3.0, logs[0].Value)
}

func TestHabitUnlogReversesPoints(t *testing.T) {
	f := newFixture(t)
	h := f.habit(t)
	day := testTime.Format(model.DateLayout)

	_, err := f.habits.Log(context.Background(), h.ID, day, 1)
	require.NoError(t, err)
	require.NoError(t, f.habits.Unlog(context.Background(), h.ID, day))

	stats, err := f.stats.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Points)
	assert.Equal(t, 0, stats.Streak)

	logs, err := f.habits.History(context.Background(), h.ID)
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestHabitUnlogMissingLog(t *testing.T) {
	f := newFixture(t)
	h := f.habit(t)

	err := f.habits.Unlog(context.Background(), h.ID, "2026-01-01")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestHabitQuantityValidation(t *testing.T) {
	f := newFixture(t)
	_, err := f.habits.Create(context.Background(), HabitInput{
		Name: "Read",
		Kind: model.HabitQuantitative,
	})
	assert.Error(t, err, "quantitative habit needs a positive goal value")

	h, err := f.habits.Create(context.Background(), HabitInput{
		Name:      "Read",
		Kind:      model.HabitQuantitative,
		GoalValue: 20,
		Unit:      "pages",
	})
	require.NoError(t, err)
	assert.Equal(t, 20.0, h.GoalValue)
}

func TestHabitStreakCountsConsecutiveDays(t *testing.T) {
	f := newFixture(t)
	h := f.habit(t)

	for _, day := range []string{"2026-02-28", "2026-03-01", "2026-03-02"} {
		_, err := f.habits.Log(context.Background(), h.ID, day, 1)
		require.NoError(t, err)
	}
	streak, err := f.habits.Streak(context.Background(), h.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, streak)
}

func TestHabitStreakToleratesUnloggedToday(t *testing.T) {
	f := newFixture(t)
	h := f.habit(t)

	for _, day := range []string{"2026-02-28", "2026-03-01"} {
		_, err := f.habits.Log(context.Background(), h.ID, day, 1)
		require.NoError(t, err)
	}
	streak, err := f.habits.Streak(context.Background(), h.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, streak, "today not logged yet does not break the run")
}

func TestWeekdayHabitStreakSkipsOffDays(t *testing.T) {
	f := newFixture(t)
	h, err := f.habits.Create(context.Background(), HabitInput{
		Name: "Gym",
		Frequency: model.Frequency{
			Kind:     model.FrequencyWeekdays,
			Weekdays: []time.Weekday{time.Friday, time.Monday},
		},
	})
	require.NoError(t, err)

	// testTime is Monday 2026-03-02; previous scheduled day is Friday 02-27.
	for _, day := range []string{"2026-02-27", "2026-03-02"} {
		_, err := f.habits.Log(context.Background(), h.ID, day, 1)
		require.NoError(t, err)
	}
	streak, err := f.habits.Streak(context.Background(), h.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, streak)
}

func TestHabitDeleteCascadesLogs(t *testing.T) {
	f := newFixture(t)
	h := f.habit(t)
	_, err := f.habits.Log(context.Background(), h.ID, "2026-03-02", 1)
	require.NoError(t, err)

	require.NoError(t, f.habits.Delete(context.Background(), h.ID))
	logs, err := f.repo.ListHabitLogs(context.Background(), storage.HabitLogFilter{HabitID: h.ID})
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestHabitArchiveHidesFromActiveList(t *testing.T) {
	f := newFixture(t)
	h := f.habit(t)

	_, err := f.habits.Archive(context.Background(), h.ID, true)
	require.NoError(t, err)

	active, err := f.habits.List(context.Background(), false)
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := f.habits.List(context.Background(), true)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
