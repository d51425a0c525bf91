// Package scheduler runs the periodic notification pass: task and habit
// reminders, standalone reminders, the daily task digest, and the AI nudge.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"momentum/internal/ai"
	"momentum/internal/model"
	"momentum/internal/notify"
	"momentum/internal/storage"
)

// Settings keys used for delivery bookkeeping. Per-entity keys hold the
// calendar day of the last delivery; digest and nudge keys hold an RFC 3339
// timestamp.
const (
	taskStampPrefix   = "notify:task:"
	habitStampPrefix  = "notify:habit:"
	customStampPrefix = "notify:custom:"
	digestStampKey    = "notify:last-task-digest"
	nudgeStampKey     = "notify:last-ai-nudge"
)

const (
	// DefaultDigestCooldown spaces out the due/overdue digest.
	DefaultDigestCooldown = 24 * time.Hour
	// DefaultNudgeCooldown spaces out the motivational nudge.
	DefaultNudgeCooldown = 4 * time.Hour
)

// Checker performs one notification pass per invocation. All state lives in
// the repository's settings table, so restarts never re-deliver.
type Checker struct {
	repo     storage.Repository
	notifier notify.Notifier
	gateway  *ai.Gateway
	log      *slog.Logger

	DigestCooldown time.Duration
	NudgeCooldown  time.Duration

	// now is swappable in tests.
	now func() time.Time
}

func NewChecker(repo storage.Repository, notifier notify.Notifier, gateway *ai.Gateway, log *slog.Logger) *Checker {
	return &Checker{
		repo:           repo,
		notifier:       notifier,
		gateway:        gateway,
		log:            log,
		DigestCooldown: DefaultDigestCooldown,
		NudgeCooldown:  DefaultNudgeCooldown,
		now:            time.Now,
	}
}

// RunOnce executes a full pass. Each step isolates its failures: a broken
// record is logged and skipped, never aborting the rest of the pass.
func (c *Checker) RunOnce(ctx context.Context) {
	now := c.now()
	c.taskReminders(ctx, now)
	c.habitReminders(ctx, now)
	c.customReminders(ctx, now)
	c.taskDigest(ctx, now)
	c.aiNudge(ctx, now)
}

func (c *Checker) taskReminders(ctx context.Context, now time.Time) {
	tasks, err := c.repo.ListTasks(ctx, storage.TaskFilter{})
	if err != nil {
		c.log.Error("scheduler: list tasks", slog.String("error", err.Error()))
		return
	}
	for _, t := range tasks {
		if t.Reminder == nil || t.IsDone() || t.Reminder.After(now) {
			continue
		}
		// Only reminders scheduled for today fire; older ones stay silent
		// instead of nagging every day.
		if !model.SameDay(*t.Reminder, now) {
			continue
		}
		key := taskStampPrefix + t.ID
		if c.deliveredToday(ctx, key, now) {
			continue
		}
		body := t.Title
		if t.DueDate != nil {
			body = fmt.Sprintf("%s (due %s)", t.Title, t.DueDate.Format(model.DateLayout))
		}
		c.deliver(ctx, key, now, "Task reminder", body)
	}
}

func (c *Checker) habitReminders(ctx context.Context, now time.Time) {
	habits, err := c.repo.ListHabits(ctx, false)
	if err != nil {
		c.log.Error("scheduler: list habits", slog.String("error", err.Error()))
		return
	}
	for _, h := range habits {
		if h.ReminderTime == "" {
			continue
		}
		clock, err := model.ParseClock(h.ReminderTime)
		if err != nil {
			c.log.Warn("scheduler: bad habit reminder time",
				slog.String("habit", h.ID), slog.String("error", err.Error()))
			continue
		}
		if clock.At(now).After(now) {
			continue
		}
		due, err := c.habitDue(ctx, h, now)
		if err != nil {
			c.log.Warn("scheduler: habit due check",
				slog.String("habit", h.ID), slog.String("error", err.Error()))
			continue
		}
		if !due {
			continue
		}
		key := habitStampPrefix + h.ID
		if c.deliveredToday(ctx, key, now) {
			continue
		}
		c.deliver(ctx, key, now, "Habit reminder", h.Name)
	}
}

// habitDue reports whether the habit still needs attention today: its
// frequency includes today and no log exists for today. A timesPerWeek
// habit stops nagging once the weekly target is met.
func (c *Checker) habitDue(ctx context.Context, h model.Habit, now time.Time) (bool, error) {
	today := now.Format(model.DateLayout)
	logs, err := c.repo.ListHabitLogs(ctx, storage.HabitLogFilter{HabitID: h.ID, Date: today})
	if err != nil {
		return false, err
	}
	if len(logs) > 0 {
		return false, nil
	}

	switch h.Frequency.Kind {
	case model.FrequencyDaily:
		return true, nil
	case model.FrequencyWeekdays:
		for _, wd := range h.Frequency.Weekdays {
			if wd == now.Weekday() {
				return true, nil
			}
		}
		return false, nil
	case model.FrequencyTimesPerWeek:
		all, err := c.repo.ListHabitLogs(ctx, storage.HabitLogFilter{HabitID: h.ID})
		if err != nil {
			return false, err
		}
		count := 0
		weekStart := startOfWeek(now)
		for _, l := range all {
			day, err := time.ParseInLocation(model.DateLayout, l.Date, now.Location())
			if err != nil {
				continue
			}
			if !day.Before(weekStart) {
				count++
			}
		}
		return count < h.Frequency.TimesPerWeek, nil
	default:
		return false, fmt.Errorf("unknown frequency %q", h.Frequency.Kind)
	}
}

func (c *Checker) customReminders(ctx context.Context, now time.Time) {
	reminders, err := c.repo.ListReminders(ctx)
	if err != nil {
		c.log.Error("scheduler: list reminders", slog.String("error", err.Error()))
		return
	}
	for _, r := range reminders {
		if r.Completed || r.RemindAt.After(now) || !model.SameDay(r.RemindAt, now) {
			continue
		}
		key := customStampPrefix + r.ID
		if c.deliveredToday(ctx, key, now) {
			continue
		}
		c.deliver(ctx, key, now, "Reminder", r.Title)
	}
}

// taskDigest sends at most one summary per cooldown window. Overdue work
// wins over due-today work when both exist.
func (c *Checker) taskDigest(ctx context.Context, now time.Time) {
	if !c.cooldownElapsed(ctx, digestStampKey, c.DigestCooldown, now) {
		return
	}
	tasks, err := c.repo.ListTasks(ctx, storage.TaskFilter{})
	if err != nil {
		c.log.Error("scheduler: list tasks for digest", slog.String("error", err.Error()))
		return
	}
	var overdue, dueToday int
	var overdueTitle string
	for _, t := range tasks {
		switch {
		case t.Overdue(now):
			overdue++
			if overdueTitle == "" {
				overdueTitle = t.Title
			}
		case !t.IsDone() && t.DueToday(now):
			dueToday++
		}
	}

	var body string
	switch {
	case overdue > 0:
		body = fmt.Sprintf("You have %d overdue %s, e.g. %q.", overdue, pluralTask(overdue), overdueTitle)
	case dueToday > 0:
		body = fmt.Sprintf("You have %d %s due today.", dueToday, pluralTask(dueToday))
	default:
		return
	}
	if err := c.notifier.Notify("Task digest", body); err != nil {
		c.log.Warn("scheduler: digest delivery failed", slog.String("error", err.Error()))
		return
	}
	if err := c.repo.SetSetting(ctx, digestStampKey, now.Format(time.RFC3339)); err != nil {
		c.log.Error("scheduler: stamp digest", slog.String("error", err.Error()))
	}
}

func (c *Checker) aiNudge(ctx context.Context, now time.Time) {
	if c.gateway == nil || !c.gateway.Configured() {
		return
	}
	if !c.cooldownElapsed(ctx, nudgeStampKey, c.NudgeCooldown, now) {
		return
	}
	tasks, err := c.repo.ListTasks(ctx, storage.TaskFilter{})
	if err != nil {
		c.log.Error("scheduler: list tasks for nudge", slog.String("error", err.Error()))
		return
	}
	goals, err := c.repo.ListGoals(ctx)
	if err != nil {
		c.log.Error("scheduler: list goals for nudge", slog.String("error", err.Error()))
		return
	}
	text := c.gateway.MotivationalNudge(ctx, tasks, goals)
	if text == nil {
		return
	}
	if err := c.notifier.Notify("momentum", *text); err != nil {
		c.log.Warn("scheduler: nudge delivery failed", slog.String("error", err.Error()))
		return
	}
	if err := c.repo.SetSetting(ctx, nudgeStampKey, now.Format(time.RFC3339)); err != nil {
		c.log.Error("scheduler: stamp nudge", slog.String("error", err.Error()))
	}
}

// deliver sends the notification and records today's day stamp. The stamp is
// written only after successful delivery, so a failed send retries on the
// next pass.
func (c *Checker) deliver(ctx context.Context, key string, now time.Time, title, body string) {
	if err := c.notifier.Notify(title, body); err != nil {
		c.log.Warn("scheduler: delivery failed",
			slog.String("key", key), slog.String("error", err.Error()))
		return
	}
	if err := c.repo.SetSetting(ctx, key, now.Format(model.DateLayout)); err != nil {
		c.log.Error("scheduler: stamp delivery",
			slog.String("key", key), slog.String("error", err.Error()))
	}
}

func (c *Checker) deliveredToday(ctx context.Context, key string, now time.Time) bool {
	stamp, err := c.repo.GetSetting(ctx, key)
	if err != nil {
		return false
	}
	return stamp == now.Format(model.DateLayout)
}

// cooldownElapsed treats a missing or unreadable stamp as elapsed.
func (c *Checker) cooldownElapsed(ctx context.Context, key string, cooldown time.Duration, now time.Time) bool {
	stamp, err := c.repo.GetSetting(ctx, key)
	if err != nil {
		return true
	}
	last, err := time.Parse(time.RFC3339, stamp)
	if err != nil {
		c.log.Warn("scheduler: unreadable stamp", slog.String("key", key))
		return true
	}
	return now.Sub(last) >= cooldown
}

func startOfWeek(now time.Time) time.Time {
	y, m, d := now.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	// Weeks start on Monday.
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

func pluralTask(n int) string {
	if n == 1 {
		return "task"
	}
	return "tasks"
}
