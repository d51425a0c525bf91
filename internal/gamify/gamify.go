// Package gamify computes point and streak deltas for completions.
// All functions are pure over a UserStats value; the caller persists the
// result.
package gamify

import (
	"time"

	"momentum/internal/model"
)

// Fixed point values per completed item.
const (
	TaskPoints  = 10
	HabitPoints = 5
)

// ProcessCompletion awards points and advances the streak. Points are added
// unconditionally; the streak advances at most once per calendar day: it
// continues when the previous completion day was exactly yesterday and
// resets to 1 otherwise.
func ProcessCompletion(stats model.UserStats, points int, now time.Time) model.UserStats {
	stats.Points += points

	today := now.Format(model.DateLayout)
	if stats.LastCompletionDay == today {
		return stats
	}

	yesterday := now.AddDate(0, 0, -1).Format(model.DateLayout)
	if stats.LastCompletionDay == yesterday {
		stats.Streak++
	} else {
		stats.Streak = 1
	}
	stats.LastCompletionDay = today
	return stats
}

// ReverseCompletion undoes a completion. Points are subtracted and floored
// at zero. When the undone completion was the one that advanced today's
// streak and no other completion remains today, the streak is cleared.
//
// This is a best-effort approximation: the true streak before today is not
// reconstructable from a single last-completion day, and that limitation is
// deliberate.
func ReverseCompletion(stats model.UserStats, points int, otherCompletionsToday bool, now time.Time) model.UserStats {
	stats.Points -= points
	if stats.Points < 0 {
		stats.Points = 0
	}

	today := now.Format(model.DateLayout)
	if stats.LastCompletionDay == today && !otherCompletionsToday {
		stats.Streak = 0
		stats.LastCompletionDay = ""
	}
	return stats
}
