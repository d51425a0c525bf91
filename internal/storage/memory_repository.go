package storage

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"momentum/internal/model"
)

// MemoryRepository keeps everything in mutex-guarded maps. It backs the
// ephemeral database driver and doubles as the test repository. Records are
// cloned on the way in and out so callers never alias stored state.
type MemoryRepository struct {
	mu        sync.RWMutex
	lists     map[string]model.List
	tasks     map[string]model.Task
	notes     map[string]model.Note
	goals     map[string]model.Goal
	habits    map[string]model.Habit
	habitLogs map[string]model.HabitLog // keyed habitID + "\x00" + date
	reminders map[string]model.CustomReminder
	sessions  map[string]model.ChatSession
	stats     *model.UserStats
	settings  map[string]string
	documents map[string]map[string][]byte
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		lists:     make(map[string]model.List),
		tasks:     make(map[string]model.Task),
		notes:     make(map[string]model.Note),
		goals:     make(map[string]model.Goal),
		habits:    make(map[string]model.Habit),
		habitLogs: make(map[string]model.HabitLog),
		reminders: make(map[string]model.CustomReminder),
		sessions:  make(map[string]model.ChatSession),
		settings:  make(map[string]string),
		documents: make(map[string]map[string][]byte),
	}
}

func (r *MemoryRepository) Close() error { return nil }

func clone[T any](in T) T {
	data, err := json.Marshal(in)
	if err != nil {
		return in
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return in
	}
	return out
}

func createIn[T any](r *MemoryRepository, m map[string]T, id string, in T) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m[id] = clone(in)
	return nil
}

func getFrom[T any](r *MemoryRepository, m map[string]T, id string) (T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := m[id]
	if !ok {
		var zero T
		return zero, ErrNotFound
	}
	return clone(item), nil
}

func updateIn[T any](r *MemoryRepository, m map[string]T, id string, in T) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := m[id]; !ok {
		return ErrNotFound
	}
	m[id] = clone(in)
	return nil
}

func deleteFrom[T any](r *MemoryRepository, m map[string]T, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := m[id]; !ok {
		return ErrNotFound
	}
	delete(m, id)
	return nil
}

func (r *MemoryRepository) CreateList(_ context.Context, in model.List) error {
	return createIn(r, r.lists, in.ID, in)
}

func (r *MemoryRepository) GetList(_ context.Context, id string) (model.List, error) {
	return getFrom(r, r.lists, id)
}

func (r *MemoryRepository) UpdateList(_ context.Context, in model.List) error {
	return updateIn(r, r.lists, in.ID, in)
}

func (r *MemoryRepository) DeleteList(_ context.Context, id string) error {
	return deleteFrom(r, r.lists, id)
}

func (r *MemoryRepository) ListLists(_ context.Context) ([]model.List, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.List, 0, len(r.lists))
	for _, list := range r.lists {
		out = append(out, clone(list))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *MemoryRepository) CreateTask(_ context.Context, in model.Task) error {
	return createIn(r, r.tasks, in.ID, in)
}

func (r *MemoryRepository) GetTask(_ context.Context, id string) (model.Task, error) {
	return getFrom(r, r.tasks, id)
}

func (r *MemoryRepository) UpdateTask(_ context.Context, in model.Task) error {
	return updateIn(r, r.tasks, in.ID, in)
}

func (r *MemoryRepository) DeleteTask(_ context.Context, id string) error {
	return deleteFrom(r, r.tasks, id)
}

func (r *MemoryRepository) ListTasks(_ context.Context, filter TaskFilter) ([]model.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Task, 0, len(r.tasks))
	for _, task := range r.tasks {
		if filter.ListID != "" && task.ListID != filter.ListID {
			continue
		}
		if filter.Status != "" && task.Status != filter.Status {
			continue
		}
		out = append(out, clone(task))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, filter.Limit, filter.Offset), nil
}

func (r *MemoryRepository) CreateNote(_ context.Context, in model.Note) error {
	return createIn(r, r.notes, in.ID, in)
}

func (r *MemoryRepository) GetNote(_ context.Context, id string) (model.Note, error) {
	return getFrom(r, r.notes, id)
}

func (r *MemoryRepository) UpdateNote(_ context.Context, in model.Note) error {
	return updateIn(r, r.notes, in.ID, in)
}

func (r *MemoryRepository) DeleteNote(_ context.Context, id string) error {
	return deleteFrom(r, r.notes, id)
}

func (r *MemoryRepository) ListNotes(_ context.Context, filter NoteFilter) ([]model.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Note, 0, len(r.notes))
	for _, note := range r.notes {
		if filter.ListID != "" && note.ListID != filter.ListID {
			continue
		}
		out = append(out, clone(note))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return page(out, filter.Limit, filter.Offset), nil
}

func (r *MemoryRepository) CreateGoal(_ context.Context, in model.Goal) error {
	return createIn(r, r.goals, in.ID, in)
}

func (r *MemoryRepository) GetGoal(_ context.Context, id string) (model.Goal, error) {
	return getFrom(r, r.goals, id)
}

func (r *MemoryRepository) UpdateGoal(_ context.Context, in model.Goal) error {
	return updateIn(r, r.goals, in.ID, in)
}

func (r *MemoryRepository) DeleteGoal(_ context.Context, id string) error {
	return deleteFrom(r, r.goals, id)
}

func (r *MemoryRepository) ListGoals(_ context.Context) ([]model.Goal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Goal, 0, len(r.goals))
	for _, goal := range r.goals {
		out = append(out, clone(goal))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *MemoryRepository) CreateHabit(_ context.Context, in model.Habit) error {
	return createIn(r, r.habits, in.ID, in)
}

func (r *MemoryRepository) GetHabit(_ context.Context, id string) (model.Habit, error) {
	return getFrom(r, r.habits, id)
}

func (r *MemoryRepository) UpdateHabit(_ context.Context, in model.Habit) error {
	return updateIn(r, r.habits, in.ID, in)
}

func (r *MemoryRepository) DeleteHabit(_ context.Context, id string) error {
	return deleteFrom(r, r.habits, id)
}

func (r *MemoryRepository) ListHabits(_ context.Context, includeArchived bool) ([]model.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Habit, 0, len(r.habits))
	for _, habit := range r.habits {
		if habit.Archived && !includeArchived {
			continue
		}
		out = append(out, clone(habit))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func habitLogKey(habitID, date string) string {
	return habitID + "\x00" + date
}

func (r *MemoryRepository) UpsertHabitLog(_ context.Context, in model.HabitLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := habitLogKey(in.HabitID, in.Date)
	if existing, ok := r.habitLogs[key]; ok {
		existing.Value = in.Value
		r.habitLogs[key] = existing
		return nil
	}
	r.habitLogs[key] = clone(in)
	return nil
}

func (r *MemoryRepository) ListHabitLogs(_ context.Context, filter HabitLogFilter) ([]model.HabitLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.HabitLog, 0)
	for _, log := range r.habitLogs {
		if filter.HabitID != "" && log.HabitID != filter.HabitID {
			continue
		}
		if filter.Date != "" && log.Date != filter.Date {
			continue
		}
		out = append(out, clone(log))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (r *MemoryRepository) DeleteHabitLog(_ context.Context, habitID, date string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := habitLogKey(habitID, date)
	if _, ok := r.habitLogs[key]; !ok {
		return ErrNotFound
	}
	delete(r.habitLogs, key)
	return nil
}

func (r *MemoryRepository) CreateReminder(_ context.Context, in model.CustomReminder) error {
	return createIn(r, r.reminders, in.ID, in)
}

func (r *MemoryRepository) GetReminder(_ context.Context, id string) (model.CustomReminder, error) {
	return getFrom(r, r.reminders, id)
}

func (r *MemoryRepository) UpdateReminder(_ context.Context, in model.CustomReminder) error {
	return updateIn(r, r.reminders, in.ID, in)
}

func (r *MemoryRepository) DeleteReminder(_ context.Context, id string) error {
	return deleteFrom(r, r.reminders, id)
}

func (r *MemoryRepository) ListReminders(_ context.Context) ([]model.CustomReminder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.CustomReminder, 0, len(r.reminders))
	for _, item := range r.reminders {
		out = append(out, clone(item))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RemindAt.Before(out[j].RemindAt) })
	return out, nil
}

func (r *MemoryRepository) CreateSession(_ context.Context, in model.ChatSession) error {
	return createIn(r, r.sessions, in.ID, in)
}

func (r *MemoryRepository) GetSession(_ context.Context, id string) (model.ChatSession, error) {
	return getFrom(r, r.sessions, id)
}

func (r *MemoryRepository) UpdateSession(_ context.Context, in model.ChatSession) error {
	return updateIn(r, r.sessions, in.ID, in)
}

func (r *MemoryRepository) DeleteSession(_ context.Context, id string) error {
	return deleteFrom(r, r.sessions, id)
}

func (r *MemoryRepository) ListSessions(_ context.Context) ([]model.ChatSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.ChatSession, 0, len(r.sessions))
	for _, session := range r.sessions {
		out = append(out, clone(session))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (r *MemoryRepository) GetUserStats(_ context.Context) (model.UserStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.stats == nil {
		return model.UserStats{}, ErrNotFound
	}
	return *r.stats, nil
}

func (r *MemoryRepository) PutUserStats(_ context.Context, in model.UserStats) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	in.ID = model.UserStatsID
	r.stats = &in
	return nil
}

func (r *MemoryRepository) GetSetting(_ context.Context, key string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	value, ok := r.settings[key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

func (r *MemoryRepository) SetSetting(_ context.Context, key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settings[key] = value
	return nil
}

func (r *MemoryRepository) PutDocument(_ context.Context, collection, id string, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	col, ok := r.documents[collection]
	if !ok {
		col = make(map[string][]byte)
		r.documents[collection] = col
	}
	col[id] = append([]byte(nil), data...)
	return nil
}

func (r *MemoryRepository) GetDocument(_ context.Context, collection, id string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	data, ok := r.documents[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

func (r *MemoryRepository) ListDocuments(_ context.Context, collection string) ([][]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	col := r.documents[collection]
	ids := make([]string, 0, len(col))
	for id := range col {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([][]byte, 0, len(ids))
	for _, id := range ids {
		out = append(out, append([]byte(nil), col[id]...))
	}
	return out, nil
}

func (r *MemoryRepository) DeleteDocument(_ context.Context, collection, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.documents[collection][id]; !ok {
		return ErrNotFound
	}
	delete(r.documents[collection], id)
	return nil
}

func page[T any](in []T, limit, offset int) []T {
	if limit <= 0 {
		return in
	}
	if offset >= len(in) {
		return []T{}
	}
	end := offset + limit
	if end > len(in) {
		end = len(in)
	}
	return in[offset:end]
}
