package storage

import (
	"context"
	"database/sql"
	"errors"

	"momentum/internal/model"
)

func (r *SQLiteRepository) CreateGoal(ctx context.Context, in model.Goal) error {
	linked, err := marshalColumn(in.LinkedListIDs)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO goals (id, title, vision, target_at, image_ref, linked_lists, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		in.ID, in.Title, in.Vision, nullTime(in.TargetDate), in.ImageRef, linked, mustTime(in.CreatedAt),
	)
	return err
}

func (r *SQLiteRepository) GetGoal(ctx context.Context, id string) (model.Goal, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, title, vision, target_at, image_ref, linked_lists, created_at
		FROM goals WHERE id = ?`, id)
	goal, err := scanGoal(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Goal{}, ErrNotFound
		}
		return model.Goal{}, err
	}
	return goal, nil
}

func (r *SQLiteRepository) UpdateGoal(ctx context.Context, in model.Goal) error {
	linked, err := marshalColumn(in.LinkedListIDs)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE goals SET title = ?, vision = ?, target_at = ?, image_ref = ?, linked_lists = ?
		WHERE id = ?`,
		in.Title, in.Vision, nullTime(in.TargetDate), in.ImageRef, linked, in.ID,
	)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) DeleteGoal(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM goals WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) ListGoals(ctx context.Context) ([]model.Goal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, vision, target_at, image_ref, linked_lists, created_at
		FROM goals ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Goal, 0)
	for rows.Next() {
		goal, scanErr := scanGoal(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, goal)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) CreateHabit(ctx context.Context, in model.Habit) error {
	freq, err := marshalColumn(in.Frequency)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO habits (id, name, kind, goal_value, unit, reminder_time, goal_id, archived, frequency, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.ID, in.Name, in.Kind, in.GoalValue, in.Unit, in.ReminderTime, in.GoalID,
		boolInt(in.Archived), freq, mustTime(in.CreatedAt),
	)
	return err
}

func (r *SQLiteRepository) GetHabit(ctx context.Context, id string) (model.Habit, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, kind, goal_value, unit, reminder_time, goal_id, archived, frequency, created_at
		FROM habits WHERE id = ?`, id)
	habit, err := scanHabit(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Habit{}, ErrNotFound
		}
		return model.Habit{}, err
	}
	return habit, nil
}

func (r *SQLiteRepository) UpdateHabit(ctx context.Context, in model.Habit) error {
	freq, err := marshalColumn(in.Frequency)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE habits
		SET name = ?, kind = ?, goal_value = ?, unit = ?, reminder_time = ?, goal_id = ?, archived = ?, frequency = ?
		WHERE id = ?`,
		in.Name, in.Kind, in.GoalValue, in.Unit, in.ReminderTime, in.GoalID,
		boolInt(in.Archived), freq, in.ID,
	)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) DeleteHabit(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM habits WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) ListHabits(ctx context.Context, includeArchived bool) ([]model.Habit, error) {
	query := `SELECT id, name, kind, goal_value, unit, reminder_time, goal_id, archived, frequency, created_at FROM habits`
	if !includeArchived {
		query += ` WHERE archived = 0`
	}
	query += ` ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Habit, 0)
	for rows.Next() {
		habit, scanErr := scanHabit(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, habit)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpsertHabitLog(ctx context.Context, in model.HabitLog) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO habit_logs (id, habit_id, date, value, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(habit_id, date) DO UPDATE SET value = excluded.value`,
		in.ID, in.HabitID, in.Date, in.Value, mustTime(in.CreatedAt),
	)
	return err
}

func (r *SQLiteRepository) ListHabitLogs(ctx context.Context, filter HabitLogFilter) ([]model.HabitLog, error) {
	query := `SELECT id, habit_id, date, value, created_at FROM habit_logs`
	where := ""
	args := make([]any, 0, 2)
	if filter.HabitID != "" {
		where = ` WHERE habit_id = ?`
		args = append(args, filter.HabitID)
	}
	if filter.Date != "" {
		if where == "" {
			where = ` WHERE date = ?`
		} else {
			where += ` AND date = ?`
		}
		args = append(args, filter.Date)
	}
	query += where + ` ORDER BY date`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.HabitLog, 0)
	for rows.Next() {
		var (
			log       model.HabitLog
			createdAt string
		)
		if err := rows.Scan(&log.ID, &log.HabitID, &log.Date, &log.Value, &createdAt); err != nil {
			return nil, err
		}
		created, parseErr := parseTime(createdAt)
		if parseErr != nil {
			return nil, parseErr
		}
		log.CreatedAt = created
		out = append(out, log)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) DeleteHabitLog(ctx context.Context, habitID, date string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM habit_logs WHERE habit_id = ? AND date = ?`, habitID, date)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) CreateReminder(ctx context.Context, in model.CustomReminder) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO custom_reminders (id, title, remind_at, completed, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		in.ID, in.Title, mustTime(in.RemindAt), boolInt(in.Completed), mustTime(in.CreatedAt),
	)
	return err
}

func (r *SQLiteRepository) GetReminder(ctx context.Context, id string) (model.CustomReminder, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, title, remind_at, completed, created_at
		FROM custom_reminders WHERE id = ?`, id)
	item, err := scanReminder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.CustomReminder{}, ErrNotFound
		}
		return model.CustomReminder{}, err
	}
	return item, nil
}

func (r *SQLiteRepository) UpdateReminder(ctx context.Context, in model.CustomReminder) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE custom_reminders SET title = ?, remind_at = ?, completed = ?
		WHERE id = ?`,
		in.Title, mustTime(in.RemindAt), boolInt(in.Completed), in.ID,
	)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) DeleteReminder(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM custom_reminders WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) ListReminders(ctx context.Context) ([]model.CustomReminder, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, remind_at, completed, created_at
		FROM custom_reminders ORDER BY remind_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.CustomReminder, 0)
	for rows.Next() {
		item, scanErr := scanReminder(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) CreateSession(ctx context.Context, in model.ChatSession) error {
	messages, err := marshalColumn(in.Messages)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO chat_sessions (id, title, messages, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		in.ID, in.Title, messages, mustTime(in.CreatedAt), mustTime(in.UpdatedAt),
	)
	return err
}

func (r *SQLiteRepository) GetSession(ctx context.Context, id string) (model.ChatSession, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, title, messages, created_at, updated_at
		FROM chat_sessions WHERE id = ?`, id)
	session, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.ChatSession{}, ErrNotFound
		}
		return model.ChatSession{}, err
	}
	return session, nil
}

func (r *SQLiteRepository) UpdateSession(ctx context.Context, in model.ChatSession) error {
	messages, err := marshalColumn(in.Messages)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE chat_sessions SET title = ?, messages = ?, updated_at = ?
		WHERE id = ?`,
		in.Title, messages, mustTime(in.UpdatedAt), in.ID,
	)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) DeleteSession(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM chat_sessions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) ListSessions(ctx context.Context) ([]model.ChatSession, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, messages, created_at, updated_at
		FROM chat_sessions ORDER BY updated_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.ChatSession, 0)
	for rows.Next() {
		session, scanErr := scanSession(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, session)
	}
	return out, rows.Err()
}

func scanGoal(row rowScanner) (model.Goal, error) {
	var (
		goal      model.Goal
		targetAt  sql.NullString
		linked    string
		createdAt string
	)
	if err := row.Scan(&goal.ID, &goal.Title, &goal.Vision, &targetAt, &goal.ImageRef, &linked, &createdAt); err != nil {
		return model.Goal{}, err
	}
	if err := unmarshalColumn(linked, &goal.LinkedListIDs); err != nil {
		return model.Goal{}, err
	}
	var err error
	if goal.TargetDate, err = parseNullTime(targetAt); err != nil {
		return model.Goal{}, err
	}
	if goal.CreatedAt, err = parseTime(createdAt); err != nil {
		return model.Goal{}, err
	}
	return goal, nil
}

func scanHabit(row rowScanner) (model.Habit, error) {
	var (
		habit     model.Habit
		archived  int
		freq      string
		createdAt string
	)
	if err := row.Scan(&habit.ID, &habit.Name, &habit.Kind, &habit.GoalValue, &habit.Unit,
		&habit.ReminderTime, &habit.GoalID, &archived, &freq, &createdAt); err != nil {
		return model.Habit{}, err
	}
	if err := unmarshalColumn(freq, &habit.Frequency); err != nil {
		return model.Habit{}, err
	}
	habit.Archived = archived != 0
	created, err := parseTime(createdAt)
	if err != nil {
		return model.Habit{}, err
	}
	habit.CreatedAt = created
	return habit, nil
}

func scanReminder(row rowScanner) (model.CustomReminder, error) {
	var (
		item      model.CustomReminder
		remindAt  string
		completed int
		createdAt string
	)
	if err := row.Scan(&item.ID, &item.Title, &remindAt, &completed, &createdAt); err != nil {
		return model.CustomReminder{}, err
	}
	item.Completed = completed != 0
	var err error
	if item.RemindAt, err = parseTime(remindAt); err != nil {
		return model.CustomReminder{}, err
	}
	if item.CreatedAt, err = parseTime(createdAt); err != nil {
		return model.CustomReminder{}, err
	}
	return item, nil
}

func scanSession(row rowScanner) (model.ChatSession, error) {
	var (
		session   model.ChatSession
		messages  string
		createdAt string
		updatedAt string
	)
	if err := row.Scan(&session.ID, &session.Title, &messages, &createdAt, &updatedAt); err != nil {
		return model.ChatSession{}, err
	}
	if err := unmarshalColumn(messages, &session.Messages); err != nil {
		return model.ChatSession{}, err
	}
	var err error
	if session.CreatedAt, err = parseTime(createdAt); err != nil {
		return model.ChatSession{}, err
	}
	if session.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return model.ChatSession{}, err
	}
	return session, nil
}
