package storage

import (
	"context"
	"database/sql"
	"errors"

	"momentum/internal/model"
)

// taskPayload bundles the nested task structures into one JSON column so the
// scalar columns stay queryable.
type taskPayload struct {
	Tags         []string              `json:"tags,omitempty"`
	Checklist    []model.ChecklistItem `json:"checklist,omitempty"`
	Attachments  []model.Attachment    `json:"attachments,omitempty"`
	Comments     []model.Comment       `json:"comments,omitempty"`
	Activity     []model.ActivityEntry `json:"activity,omitempty"`
	CustomFields map[string]string     `json:"customFields,omitempty"`
	DependsOn    []string              `json:"dependsOn,omitempty"`
}

type notePayload struct {
	Tags        []string           `json:"tags,omitempty"`
	Attachments []model.Attachment `json:"attachments,omitempty"`
}

func (r *SQLiteRepository) CreateList(ctx context.Context, in model.List) error {
	statuses, err := marshalColumn(in.Statuses)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO lists (id, name, color, type, statuses, default_view, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		in.ID, in.Name, in.Color, in.Type, statuses, in.DefaultView, mustTime(in.CreatedAt),
	)
	return err
}

func (r *SQLiteRepository) GetList(ctx context.Context, id string) (model.List, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, color, type, statuses, default_view, created_at
		FROM lists WHERE id = ?`, id)
	list, err := scanList(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.List{}, ErrNotFound
		}
		return model.List{}, err
	}
	return list, nil
}

func (r *SQLiteRepository) UpdateList(ctx context.Context, in model.List) error {
	statuses, err := marshalColumn(in.Statuses)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE lists SET name = ?, color = ?, type = ?, statuses = ?, default_view = ?
		WHERE id = ?`,
		in.Name, in.Color, in.Type, statuses, in.DefaultView, in.ID,
	)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) DeleteList(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM lists WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) ListLists(ctx context.Context) ([]model.List, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, color, type, statuses, default_view, created_at
		FROM lists ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.List, 0)
	for rows.Next() {
		list, scanErr := scanList(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, list)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) CreateTask(ctx context.Context, in model.Task) error {
	payload, err := marshalColumn(taskPayload{
		Tags:         in.Tags,
		Checklist:    in.Checklist,
		Attachments:  in.Attachments,
		Comments:     in.Comments,
		Activity:     in.Activity,
		CustomFields: in.CustomFields,
		DependsOn:    in.DependsOn,
	})
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO tasks (id, list_id, title, description, status, priority, due_at, reminder_at, created_at, updated_at, completed_at, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.ID, in.ListID, in.Title, in.Description, in.Status, in.Priority,
		nullTime(in.DueDate), nullTime(in.Reminder), mustTime(in.CreatedAt), mustTime(in.UpdatedAt),
		nullTime(in.CompletedAt), payload,
	)
	return err
}

func (r *SQLiteRepository) GetTask(ctx context.Context, id string) (model.Task, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, list_id, title, description, status, priority, due_at, reminder_at, created_at, updated_at, completed_at, payload
		FROM tasks WHERE id = ?`, id)
	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Task{}, ErrNotFound
		}
		return model.Task{}, err
	}
	return task, nil
}

func (r *SQLiteRepository) UpdateTask(ctx context.Context, in model.Task) error {
	payload, err := marshalColumn(taskPayload{
		Tags:         in.Tags,
		Checklist:    in.Checklist,
		Attachments:  in.Attachments,
		Comments:     in.Comments,
		Activity:     in.Activity,
		CustomFields: in.CustomFields,
		DependsOn:    in.DependsOn,
	})
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE tasks
		SET list_id = ?, title = ?, description = ?, status = ?, priority = ?, due_at = ?, reminder_at = ?, updated_at = ?, completed_at = ?, payload = ?
		WHERE id = ?`,
		in.ListID, in.Title, in.Description, in.Status, in.Priority,
		nullTime(in.DueDate), nullTime(in.Reminder), mustTime(in.UpdatedAt), nullTime(in.CompletedAt), payload, in.ID,
	)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) DeleteTask(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) ListTasks(ctx context.Context, filter TaskFilter) ([]model.Task, error) {
	query := `SELECT id, list_id, title, description, status, priority, due_at, reminder_at, created_at, updated_at, completed_at, payload FROM tasks`
	where := ""
	args := make([]any, 0, 4)
	if filter.ListID != "" {
		where = ` WHERE list_id = ?`
		args = append(args, filter.ListID)
	}
	if filter.Status != "" {
		if where == "" {
			where = ` WHERE status = ?`
		} else {
			where += ` AND status = ?`
		}
		args = append(args, filter.Status)
	}
	query += where + ` ORDER BY created_at DESC`
	query += applyPagination(&args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Task, 0)
	for rows.Next() {
		task, scanErr := scanTask(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, task)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) CreateNote(ctx context.Context, in model.Note) error {
	payload, err := marshalColumn(notePayload{Tags: in.Tags, Attachments: in.Attachments})
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO notes (id, list_id, title, content, created_at, updated_at, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		in.ID, in.ListID, in.Title, in.Content, mustTime(in.CreatedAt), mustTime(in.UpdatedAt), payload,
	)
	return err
}

func (r *SQLiteRepository) GetNote(ctx context.Context, id string) (model.Note, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, list_id, title, content, created_at, updated_at, payload
		FROM notes WHERE id = ?`, id)
	note, err := scanNote(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Note{}, ErrNotFound
		}
		return model.Note{}, err
	}
	return note, nil
}

func (r *SQLiteRepository) UpdateNote(ctx context.Context, in model.Note) error {
	payload, err := marshalColumn(notePayload{Tags: in.Tags, Attachments: in.Attachments})
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE notes SET list_id = ?, title = ?, content = ?, updated_at = ?, payload = ?
		WHERE id = ?`,
		in.ListID, in.Title, in.Content, mustTime(in.UpdatedAt), payload, in.ID,
	)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) DeleteNote(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) ListNotes(ctx context.Context, filter NoteFilter) ([]model.Note, error) {
	query := `SELECT id, list_id, title, content, created_at, updated_at, payload FROM notes`
	args := make([]any, 0, 3)
	if filter.ListID != "" {
		query += ` WHERE list_id = ?`
		args = append(args, filter.ListID)
	}
	query += ` ORDER BY updated_at DESC`
	query += applyPagination(&args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Note, 0)
	for rows.Next() {
		note, scanErr := scanNote(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, note)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanList(row rowScanner) (model.List, error) {
	var (
		list      model.List
		statuses  string
		createdAt string
	)
	if err := row.Scan(&list.ID, &list.Name, &list.Color, &list.Type, &statuses, &list.DefaultView, &createdAt); err != nil {
		return model.List{}, err
	}
	if err := unmarshalColumn(statuses, &list.Statuses); err != nil {
		return model.List{}, err
	}
	created, err := parseTime(createdAt)
	if err != nil {
		return model.List{}, err
	}
	list.CreatedAt = created
	return list, nil
}

func scanTask(row rowScanner) (model.Task, error) {
	var (
		task        model.Task
		dueAt       sql.NullString
		reminderAt  sql.NullString
		createdAt   string
		updatedAt   string
		completedAt sql.NullString
		payloadRaw  string
	)
	if err := row.Scan(&task.ID, &task.ListID, &task.Title, &task.Description, &task.Status, &task.Priority,
		&dueAt, &reminderAt, &createdAt, &updatedAt, &completedAt, &payloadRaw); err != nil {
		return model.Task{}, err
	}

	var payload taskPayload
	if err := unmarshalColumn(payloadRaw, &payload); err != nil {
		return model.Task{}, err
	}
	task.Tags = payload.Tags
	task.Checklist = payload.Checklist
	task.Attachments = payload.Attachments
	task.Comments = payload.Comments
	task.Activity = payload.Activity
	task.CustomFields = payload.CustomFields
	task.DependsOn = payload.DependsOn

	var err error
	if task.DueDate, err = parseNullTime(dueAt); err != nil {
		return model.Task{}, err
	}
	if task.Reminder, err = parseNullTime(reminderAt); err != nil {
		return model.Task{}, err
	}
	if task.CreatedAt, err = parseTime(createdAt); err != nil {
		return model.Task{}, err
	}
	if task.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return model.Task{}, err
	}
	if task.CompletedAt, err = parseNullTime(completedAt); err != nil {
		return model.Task{}, err
	}
	return task, nil
}

func scanNote(row rowScanner) (model.Note, error) {
	var (
		note       model.Note
		createdAt  string
		updatedAt  string
		payloadRaw string
	)
	if err := row.Scan(&note.ID, &note.ListID, &note.Title, &note.Content, &createdAt, &updatedAt, &payloadRaw); err != nil {
		return model.Note{}, err
	}

	var payload notePayload
	if err := unmarshalColumn(payloadRaw, &payload); err != nil {
		return model.Note{}, err
	}
	note.Tags = payload.Tags
	note.Attachments = payload.Attachments

	var err error
	if note.CreatedAt, err = parseTime(createdAt); err != nil {
		return model.Note{}, err
	}
	if note.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return model.Note{}, err
	}
	return note, nil
}

func applyPagination(args *[]any, limit, offset int) string {
	clause := ""
	if limit > 0 {
		clause += ` LIMIT ?`
		*args = append(*args, limit)
		if offset > 0 {
			clause += ` OFFSET ?`
			*args = append(*args, offset)
		}
	}
	return clause
}
