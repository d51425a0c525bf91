// Package server exposes the application over a local HTTP API.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"momentum/internal/ai"
	"momentum/internal/model"
	"momentum/internal/service"
	"momentum/internal/storage"
)

type Server struct {
	log     *slog.Logger
	repo    storage.Repository
	gateway *ai.Gateway

	lists     *service.Lists
	tasks     *service.Tasks
	notes     *service.Notes
	goals     *service.Goals
	habits    *service.Habits
	reminders *service.Reminders
	stats     *service.Stats
	chat      *service.Chat

	filters *service.DocStore[model.SavedFilter]
	fields  *service.DocStore[model.CustomFieldDefinition]
	boards  *service.DocStore[model.StickyBoard]
	sticky  *service.DocStore[model.StickyNote]
	links   *service.DocStore[model.QuickLink]

	mux *http.ServeMux
}

// Deps bundles everything the server serves.
type Deps struct {
	Repo      storage.Repository
	Gateway   *ai.Gateway
	Lists     *service.Lists
	Tasks     *service.Tasks
	Notes     *service.Notes
	Goals     *service.Goals
	Habits    *service.Habits
	Reminders *service.Reminders
	Stats     *service.Stats
	Chat      *service.Chat
}

func New(deps Deps, log *slog.Logger) *Server {
	s := &Server{
		log:       log,
		repo:      deps.Repo,
		gateway:   deps.Gateway,
		lists:     deps.Lists,
		tasks:     deps.Tasks,
		notes:     deps.Notes,
		goals:     deps.Goals,
		habits:    deps.Habits,
		reminders: deps.Reminders,
		stats:     deps.Stats,
		chat:      deps.Chat,
		filters:   service.NewDocStore[model.SavedFilter](deps.Repo, storage.CollectionSavedFilters),
		fields:    service.NewDocStore[model.CustomFieldDefinition](deps.Repo, storage.CollectionCustomFields),
		boards:    service.NewDocStore[model.StickyBoard](deps.Repo, storage.CollectionStickyBoards),
		sticky:    service.NewDocStore[model.StickyNote](deps.Repo, storage.CollectionStickyNotes),
		links:     service.NewDocStore[model.QuickLink](deps.Repo, storage.CollectionQuickLinks),
		mux:       http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	s.mux.ServeHTTP(w, r)
	s.log.Debug("http request",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Duration("took", time.Since(start)))
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /api/lists", s.handleListLists)
	s.mux.HandleFunc("POST /api/lists", s.handleCreateList)
	s.mux.HandleFunc("GET /api/lists/{id}", s.handleGetList)
	s.mux.HandleFunc("PUT /api/lists/{id}", s.handleUpdateList)
	s.mux.HandleFunc("DELETE /api/lists/{id}", s.handleDeleteList)

	s.mux.HandleFunc("GET /api/tasks", s.handleListTasks)
	s.mux.HandleFunc("POST /api/tasks", s.handleCreateTask)
	s.mux.HandleFunc("GET /api/tasks/{id}", s.handleGetTask)
	s.mux.HandleFunc("PUT /api/tasks/{id}", s.handleUpdateTask)
	s.mux.HandleFunc("DELETE /api/tasks/{id}", s.handleDeleteTask)
	s.mux.HandleFunc("POST /api/tasks/{id}/status", s.handleSetTaskStatus)
	s.mux.HandleFunc("POST /api/tasks/{id}/comments", s.handleAddComment)
	s.mux.HandleFunc("POST /api/tasks/{id}/attachments", s.handleAttachToTask)
	s.mux.HandleFunc("POST /api/tasks/{id}/analyze", s.handleAnalyzeTask)

	s.mux.HandleFunc("GET /api/notes", s.handleListNotes)
	s.mux.HandleFunc("POST /api/notes", s.handleCreateNote)
	s.mux.HandleFunc("GET /api/notes/{id}", s.handleGetNote)
	s.mux.HandleFunc("PUT /api/notes/{id}", s.handleUpdateNote)
	s.mux.HandleFunc("DELETE /api/notes/{id}", s.handleDeleteNote)
	s.mux.HandleFunc("POST /api/notes/{id}/attachments", s.handleAttachToNote)
	s.mux.HandleFunc("POST /api/notes/{id}/analyze", s.handleAnalyzeNote)

	s.mux.HandleFunc("GET /api/goals", s.handleListGoals)
	s.mux.HandleFunc("POST /api/goals", s.handleCreateGoal)
	s.mux.HandleFunc("POST /api/goals/plan", s.handlePlanGoal)
	s.mux.HandleFunc("POST /api/goals/plan/apply", s.handleApplyGoalPlan)
	s.mux.HandleFunc("GET /api/goals/{id}", s.handleGetGoal)
	s.mux.HandleFunc("PUT /api/goals/{id}", s.handleUpdateGoal)
	s.mux.HandleFunc("DELETE /api/goals/{id}", s.handleDeleteGoal)
	s.mux.HandleFunc("GET /api/goals/{id}/progress", s.handleGoalProgress)
	s.mux.HandleFunc("GET /api/goals/{id}/insights", s.handleGoalInsights)

	s.mux.HandleFunc("GET /api/habits", s.handleListHabits)
	s.mux.HandleFunc("POST /api/habits", s.handleCreateHabit)
	s.mux.HandleFunc("GET /api/habits/{id}", s.handleGetHabit)
	s.mux.HandleFunc("PUT /api/habits/{id}", s.handleUpdateHabit)
	s.mux.HandleFunc("DELETE /api/habits/{id}", s.handleDeleteHabit)
	s.mux.HandleFunc("POST /api/habits/{id}/archive", s.handleArchiveHabit)
	s.mux.HandleFunc("GET /api/habits/{id}/logs", s.handleHabitLogs)
	s.mux.HandleFunc("POST /api/habits/{id}/logs", s.handleLogHabit)
	s.mux.HandleFunc("DELETE /api/habits/{id}/logs/{date}", s.handleUnlogHabit)
	s.mux.HandleFunc("GET /api/habits/{id}/streak", s.handleHabitStreak)

	s.mux.HandleFunc("GET /api/reminders", s.handleListReminders)
	s.mux.HandleFunc("POST /api/reminders", s.handleCreateReminder)
	s.mux.HandleFunc("PUT /api/reminders/{id}", s.handleUpdateReminder)
	s.mux.HandleFunc("DELETE /api/reminders/{id}", s.handleDeleteReminder)
	s.mux.HandleFunc("POST /api/reminders/{id}/complete", s.handleCompleteReminder)

	s.mux.HandleFunc("GET /api/stats", s.handleGetStats)

	s.mux.HandleFunc("GET /api/chat/sessions", s.handleListSessions)
	s.mux.HandleFunc("POST /api/chat/sessions", s.handleCreateSession)
	s.mux.HandleFunc("GET /api/chat/sessions/{id}", s.handleGetSession)
	s.mux.HandleFunc("DELETE /api/chat/sessions/{id}", s.handleDeleteSession)
	s.mux.HandleFunc("POST /api/chat/sessions/{id}/messages", s.handleSendMessage)

	s.mux.HandleFunc("POST /api/ai/parse-tasks", s.handleParseTasks)
	s.mux.HandleFunc("POST /api/ai/suggest-priority", s.handleSuggestPriority)
	s.mux.HandleFunc("GET /api/ai/suggestions", s.handleSuggestions)
	s.mux.HandleFunc("GET /api/settings/ai", s.handleGetAISettings)
	s.mux.HandleFunc("PUT /api/settings/ai", s.handlePutAISettings)

	s.docRoutes()
}

func (s *Server) respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("encode response", slog.String("error", err.Error()))
	}
}

type errorBody struct {
	Error string `json:"error"`
}

func (s *Server) respondErr(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, storage.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrSessionBusy):
		status = http.StatusConflict
	case errors.Is(err, service.ErrStatusNotAllowed):
		status = http.StatusUnprocessableEntity
	case isValidation(err):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", slog.String("error", err.Error()))
	}
	s.respond(w, status, errorBody{Error: err.Error()})
}

// isValidation treats model validation failures as client errors. Most are
// sentinel-wrapped; the required-field checks are plain errors with the
// model prefix.
func isValidation(err error) bool {
	for _, sentinel := range []error{
		model.ErrInvalidStatus,
		model.ErrInvalidPriority,
		model.ErrInvalidListType,
		model.ErrInvalidFrequency,
		model.ErrInvalidHabitKind,
		model.ErrInvalidRole,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return strings.Contains(err.Error(), "model: ")
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.respond(w, http.StatusBadRequest, errorBody{Error: "invalid JSON body: " + err.Error()})
		return false
	}
	return true
}

func queryInt(r *http.Request, key string) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return 0
	}
	return v
}
