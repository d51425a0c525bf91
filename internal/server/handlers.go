package server

import (
	"encoding/base64"
	"errors"
	"net/http"
	"time"

	"momentum/internal/ai"
	"momentum/internal/model"
	"momentum/internal/service"
	"momentum/internal/storage"
)

// ---- lists ----

func (s *Server) handleListLists(w http.ResponseWriter, r *http.Request) {
	lists, err := s.lists.List(r.Context())
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respond(w, http.StatusOK, lists)
}

func (s *Server) handleCreateList(w http.ResponseWriter, r *http.Request) {
	var in service.ListInput
	if !s.decode(w, r, &in) {
		return
	}
	list, err := s.lists.Create(r.Context(), in)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respond(w, http.StatusCreated, list)
}

func (s *Server) handleGetList(w http.ResponseWriter, r *http.Request) {
	list, err := s.lists.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respond(w, http.StatusOK, list)
}

func (s *Server) handleUpdateList(w http.ResponseWriter, r *http.Request) {
	var list model.List
	if !s.decode(w, r, &list) {
		return
	}
	list.ID = r.PathValue("id")
	updated, err := s.lists.Update(r.Context(), list)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respond(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteList(w http.ResponseWriter, r *http.Request) {
	if err := s.lists.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.respondErr(w, err)
		return
	}
	s.respond(w, http.StatusNoContent, nil)
}

// ---- tasks ----

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	filter := storage.TaskFilter{
		ListID: r.URL.Query().Get("listId"),
		Status: model.Status(r.URL.Query().Get("status")),
		Limit:  queryInt(r, "limit"),
		Offset: queryInt(r, "offset"),
	}
	tasks, err := s.tasks.List(r.Context(), filter)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respond(w, http.StatusOK, tasks)
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var in service.TaskInput
	if !s.decode(w, r, &in) {
		return
	}
	task, err := s.tasks.Create(r.Context(), in)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respond(w, http.StatusCreated, task)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	task, err := s.tasks.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respond(w, http.StatusOK, task)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	var task model.Task
	if !s.decode(w, r, &task) {
		return
	}
	task.ID = r.PathValue("id")
	updated, err := s.tasks.Update(r.Context(), task)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respond(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := s.tasks.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.respondErr(w, err)
		return
	}
	s.respond(w, http.StatusNoContent, nil)
}

func (s *Server) handleSetTaskStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status model.Status `json:"status"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	task, err := s.tasks.SetStatus(r.Context(), r.PathValue("id"), body.Status)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respond(w, http.StatusOK, task)
}

func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Text string `json:"text"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	task, err := s.tasks.AddComment(r.Context(), r.PathValue("id"), body.Text)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respond(w, http.StatusOK, task)
}

type attachmentBody struct {
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
	// Data is the base64-encoded file content.
	Data string `json:"data"`
}

func (s *Server) handleAttachToTask(w http.ResponseWriter, r *http.Request) {
	var body attachmentBody
	if !s.decode(w, r, &body) {
		return
	}
	data, err := base64.StdEncoding.DecodeString(body.Data)
	if err != nil {
		s.respond(w, http.StatusBadRequest, errorBody{Error: "invalid base64 data"})
		return
	}
	task, err := s.tasks.Attach(r.Context(), r.PathValue("id"), body.Name, body.MimeType, data)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respond(w, http.StatusOK, task)
}

func (s *Server) handleAnalyzeTask(w http.ResponseWriter, r *http.Request) {
	task, err := s.tasks.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.respondErr(w, err)
		return
	}
	analysis := s.gateway.AnalyzeTask(r.Context(), task)
	if analysis == nil {
		s.respond(w, http.StatusServiceUnavailable, errorBody{Error: "analysis unavailable"})
		return
	}
	s.respond(w, http.StatusOK, analysis)
}

// ---- notes ----

func (s *Server) handleListNotes(w http.ResponseWriter, r *http.Request) {
	filter := storage.NoteFilter{
		ListID: r.URL.Query().Get("listId"),
		Limit:  queryInt(r, "limit"),
		Offset: queryInt(r, "offset"),
	}
	notes, err := s.notes.List(r.Context(), filter)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respond(w, http.StatusOK, notes)
}

func (s *Server) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	var in service.NoteInput
	if !s.decode(w, r, &in) {
		return
	}
	note, err := s.notes.Create(r.Context(), in)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respond(w, http.StatusCreated, note)
}

func (s *Server) handleGetNote(w http.ResponseWriter, r *http.Request) {
	note, err := s.notes.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respond(w, http.StatusOK, note)
}

func (s *Server) handleUpdateNote(w http.ResponseWriter, r *http.Request) {
	var note model.Note
	if !s.decode(w, r, &note) {
		return
	}
	note.ID = r.PathValue("id")
	updated, err := s.notes.Update(r.Context(), note)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respond(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	if err := s.notes.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.respondErr(w, err)
		return
	}
	s.respond(w, http.StatusNoContent, nil)
}

func (s *Server) handleAttachToNote(w http.ResponseWriter, r *http.Request) {
	var body attachmentBody
	if !s.decode(w, r, &body) {
		return
	}
	data, err := base64.StdEncoding.DecodeString(body.Data)
	if err != nil {
		s.respond(w, http.StatusBadRequest, errorBody{Error: "invalid base64 data"})
		return
	}
	note, err := s.notes.Attach(r.Context(), r.PathValue("id"), body.Name, body.MimeType, data)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respond(w, http.StatusOK, note)
}

func (s *Server) handleAnalyzeNote(w http.ResponseWriter, r *http.Request) {
	note, err := s.notes.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.respondErr(w, err)
		return
	}
	analysis := s.gateway.SummarizeAndTagNote(r.Context(), note)
	if analysis == nil {
		s.respond(w, http.StatusServiceUnavailable, errorBody{Error: "analysis unavailable"})
		return
	}
	s.respond(w, http.StatusOK, analysis)
}

// ---- goals ----

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := s.goals.List(r.Context())
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respond(w, http.StatusOK, goals)
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var in service.GoalInput
	if !s.decode(w, r, &in) {
		return
	}
	goal, err := s.goals.Create(r.Context(), in)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respond(w, http.StatusCreated, goal)
}

func (s *Server) handleGetGoal(w http.ResponseWriter, r *http.Request) {
	goal, err := s.goals.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respond(w, http.StatusOK, goal)
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	var goal model.Goal
	if !s.decode(w, r, &goal) {
		return
	}
	goal.ID = r.PathValue("id")
	updated, err := s.goals.Update(r.Context(), goal)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respond(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	if err := s.goals.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.respondErr(w, err)
		return
	}
	s.respond(w, http.StatusNoContent, nil)
}

func (s *Server) handleGoalProgress(w http.ResponseWriter, r *http.Request) {
	p, err := s.goals.Progress(r.Context(), r.PathValue("id"))
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respond(w, http.StatusOK, p)
}

func (s *Server) handleGoalInsights(w http.ResponseWriter, r *http.Request) {
	goal, err := s.goals.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.respondErr(w, err)
		return
	}
	tasks, err := s.goals.LinkedTasks(r.Context(), goal.ID)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	insights := s.gateway.GoalInsights(r.Context(), goal, tasks)
	if insights == nil {
		s.respond(w, http.StatusServiceUnavailable, errorBody{Error: "insights unavailable"})
		return
	}
	s.respond(w, http.StatusOK, insights)
}

func (s *Server) handlePlanGoal(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Goal   string `json:"goal"`
		Prompt string `json:"prompt"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	plan := s.gateway.RefineAndPlanGoal(r.Context(), body.Goal, body.Prompt)
	if plan == nil {
		s.respond(w, http.StatusServiceUnavailable, errorBody{Error: "planning unavailable"})
		return
	}
	s.respond(w, http.StatusOK, plan)
}

func (s *Server) handleApplyGoalPlan(w http.ResponseWriter, r *http.Request) {
	var plan ai.GoalPlan
	if !s.decode(w, r, &plan) {
		return
	}
	goal, err := s.goals.ApplyPlan(r.Context(), plan)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respond(w, http.StatusCreated, goal)
}

// ---- habits ----

func (s *Server) handleListHabits(w http.ResponseWriter, r *http.Request) {
	includeArchived := r.URL.Query().Get("archived") == "true"
	habits, err := s.habits.List(r.Context(), includeArchived)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respond(w, http.StatusOK, habits)
}

func (s *Server) handleCreateHabit(w http.ResponseWriter, r *http.Request) {
	var in service.HabitInput
	if !s.decode(w, r, &in) {
		return
	}
	habit, err := s.habits.Create(r.Context(), in)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respond(w, http.StatusCreated, habit)
}

func (s *Server) handleGetHabit(w http.ResponseWriter, r *http.Request) {
	habit, err := s.habits.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respond(w, http.StatusOK, habit)
}

func (s *Server) handleUpdateHabit(w http.ResponseWriter, r *http.Request) {
	var habit model.Habit
	if !s.decode(w, r, &habit) {
		return
	}
	habit.ID = r.PathValue("id")
	updated, err := s.habits.Update(r.Context(), habit)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respond(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteHabit(w http.ResponseWriter, r *http.Request) {
	if err := s.habits.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.respondErr(w, err)
		return
	}
	s.respond(w, http.StatusNoContent, nil)
}

func (s *Server) handleArchiveHabit(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Archived bool `json:"archived"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	habit, err := s.habits.Archive(r.Context(), r.PathValue("id"), body.Archived)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respond(w, http.StatusOK, habit)
}

func (s *Server) handleHabitLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := s.habits.History(r.Context(), r.PathValue("id"))
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respond(w, http.StatusOK, logs)
}

func (s *Server) handleLogHabit(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Date  string  `json:"date"`
		Value float64 `json:"value"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	entry, err := s.habits.Log(r.Context(), r.PathValue("id"), body.Date, body.Value)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respond(w, http.StatusCreated, entry)
}

func (s *Server) handleUnlogHabit(w http.ResponseWriter, r *http.Request) {
	if err := s.habits.Unlog(r.Context(), r.PathValue("id"), r.PathValue("date")); err != nil {
		s.respondErr(w, err)
		return
	}
	s.respond(w, http.StatusNoContent, nil)
}

func (s *Server) handleHabitStreak(w http.ResponseWriter, r *http.Request) {
	streak, err := s.habits.Streak(r.Context(), r.PathValue("id"))
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respond(w, http.StatusOK, map[string]int{"streak": streak})
}

// ---- reminders ----

func (s *Server) handleListReminders(w http.ResponseWriter, r *http.Request) {
	reminders, err := s.reminders.List(r.Context())
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respond(w, http.StatusOK, reminders)
}

func (s *Server) handleCreateReminder(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Title    string    `json:"title"`
		RemindAt time.Time `json:"remindAt"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	reminder, err := s.reminders.Create(r.Context(), body.Title, body.RemindAt)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respond(w, http.StatusCreated, reminder)
}

func (s *Server) handleUpdateReminder(w http.ResponseWriter, r *http.Request) {
	var reminder model.CustomReminder
	if !s.decode(w, r, &reminder) {
		return
	}
	reminder.ID = r.PathValue("id")
	updated, err := s.reminders.Update(r.Context(), reminder)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respond(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteReminder(w http.ResponseWriter, r *http.Request) {
	if err := s.reminders.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.respondErr(w, err)
		return
	}
	s.respond(w, http.StatusNoContent, nil)
}

func (s *Server) handleCompleteReminder(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Completed bool `json:"completed"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	reminder, err := s.reminders.SetCompleted(r.Context(), r.PathValue("id"), body.Completed)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respond(w, http.StatusOK, reminder)
}

// ---- stats ----

func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.stats.Get(r.Context())
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respond(w, http.StatusOK, stats)
}

// ---- chat ----

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.chat.List(r.Context())
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respond(w, http.StatusOK, sessions)
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Title string `json:"title"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	session, err := s.chat.NewSession(r.Context(), body.Title)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respond(w, http.StatusCreated, session)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.chat.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respond(w, http.StatusOK, session)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.chat.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.respondErr(w, err)
		return
	}
	s.respond(w, http.StatusNoContent, nil)
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Text string `json:"text"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	session, err := s.chat.Send(r.Context(), r.PathValue("id"), body.Text)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respond(w, http.StatusOK, session)
}

// ---- AI utilities and settings ----

func (s *Server) handleParseTasks(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Text string `json:"text"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	parsed := s.gateway.ParseTasksFromText(r.Context(), body.Text)
	s.respond(w, http.StatusOK, parsed)
}

func (s *Server) handleSuggestPriority(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	priority := s.gateway.SuggestTaskPriority(r.Context(), body.Title, body.Description)
	s.respond(w, http.StatusOK, map[string]*model.Priority{"priority": priority})
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.tasks.List(r.Context(), storage.TaskFilter{})
	if err != nil {
		s.respondErr(w, err)
		return
	}
	goals, err := s.goals.List(r.Context())
	if err != nil {
		s.respondErr(w, err)
		return
	}
	suggestions := s.gateway.SmartSuggestions(r.Context(), tasks, goals)
	s.respond(w, http.StatusOK, suggestions)
}

const aiKeySetting = "ai:api-key"

func (s *Server) handleGetAISettings(w http.ResponseWriter, r *http.Request) {
	key, err := s.repo.GetSetting(r.Context(), aiKeySetting)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		s.respondErr(w, err)
		return
	}
	s.respond(w, http.StatusOK, map[string]any{
		"configured": s.gateway.Configured(),
		"hasKey":     key != "",
	})
}

// handlePutAISettings persists the key and reconfigures the gateway in
// place, so the new key takes effect without a restart.
func (s *Server) handlePutAISettings(w http.ResponseWriter, r *http.Request) {
	var body struct {
		APIKey string `json:"apiKey"`
		Model  string `json:"model"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	if err := s.repo.SetSetting(r.Context(), aiKeySetting, body.APIKey); err != nil {
		s.respondErr(w, err)
		return
	}
	if err := s.gateway.Reconfigure(r.Context(), ai.Config{APIKey: body.APIKey, Model: body.Model}); err != nil {
		s.respond(w, http.StatusBadRequest, errorBody{Error: "key rejected: " + err.Error()})
		return
	}
	s.respond(w, http.StatusOK, map[string]any{"configured": s.gateway.Configured()})
}
