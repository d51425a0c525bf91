package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"momentum/internal/model"
)

const sqliteTimeLayout = time.RFC3339Nano

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) (*SQLiteRepository, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

// OpenSQLite opens (or creates) the database file, applies pending
// migrations, and returns a ready repository.
func OpenSQLite(path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	repo, err := NewSQLiteRepository(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) GetUserStats(ctx context.Context) (model.UserStats, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, points, streak, last_completion_day
		FROM user_stats WHERE id = ?`, model.UserStatsID)
	var stats model.UserStats
	if err := row.Scan(&stats.ID, &stats.Points, &stats.Streak, &stats.LastCompletionDay); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.UserStats{}, ErrNotFound
		}
		return model.UserStats{}, err
	}
	return stats, nil
}

func (r *SQLiteRepository) PutUserStats(ctx context.Context, in model.UserStats) error {
	in.ID = model.UserStatsID
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_stats (id, points, streak, last_completion_day)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			points = excluded.points,
			streak = excluded.streak,
			last_completion_day = excluded.last_completion_day`,
		in.ID, in.Points, in.Streak, in.LastCompletionDay,
	)
	return err
}

func (r *SQLiteRepository) GetSetting(ctx context.Context, key string) (string, error) {
	row := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key)
	var value string
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return value, nil
}

func (r *SQLiteRepository) SetSetting(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

func (r *SQLiteRepository) PutDocument(ctx context.Context, collection, id string, data []byte) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO documents (collection, id, data) VALUES (?, ?, ?)
		ON CONFLICT(collection, id) DO UPDATE SET data = excluded.data`,
		collection, id, string(data),
	)
	return err
}

func (r *SQLiteRepository) GetDocument(ctx context.Context, collection, id string) ([]byte, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT data FROM documents WHERE collection = ? AND id = ?`, collection, id)
	var data string
	if err := row.Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return []byte(data), nil
}

func (r *SQLiteRepository) ListDocuments(ctx context.Context, collection string) ([][]byte, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT data FROM documents WHERE collection = ? ORDER BY id`, collection)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([][]byte, 0)
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		out = append(out, []byte(data))
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) DeleteDocument(ctx context.Context, collection, id string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM documents WHERE collection = ? AND id = ?`, collection, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func checkRowsAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func mustTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(sqliteTimeLayout)
}

func parseTime(raw string) (time.Time, error) {
	return time.Parse(sqliteTimeLayout, raw)
}

func parseNullTime(raw sql.NullString) (*time.Time, error) {
	if !raw.Valid {
		return nil, nil
	}
	t, err := parseTime(raw.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func marshalColumn(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal column: %w", err)
	}
	return string(data), nil
}

func unmarshalColumn(raw string, v any) error {
	if raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("unmarshal column: %w", err)
	}
	return nil
}
