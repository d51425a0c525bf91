package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"momentum/internal/ai"
	"momentum/internal/model"
	"momentum/internal/storage"
)

// maxToolRounds bounds the model's tool-call loop within one send.
const maxToolRounds = 4

// assistant is the slice of the AI gateway the chat service needs.
type assistant interface {
	RunChat(ctx context.Context, history []model.ChatMessage, newMessage string, tasks []model.Task, lists []model.List, now time.Time) *ai.ChatTurn
}

// Chat drives assistant sessions: it persists the conversation, forwards it
// to the AI gateway, and executes the tool calls the model issues.
type Chat struct {
	repo    storage.Repository
	gateway assistant
	tasks   *Tasks
	notes   *Notes
	log     *slog.Logger
	now     clock

	mu       sync.Mutex
	inflight map[string]bool
}

func NewChat(repo storage.Repository, gateway assistant, tasks *Tasks, notes *Notes, log *slog.Logger) *Chat {
	return &Chat{
		repo:     repo,
		gateway:  gateway,
		tasks:    tasks,
		notes:    notes,
		log:      log,
		now:      time.Now,
		inflight: make(map[string]bool),
	}
}

func (s *Chat) NewSession(ctx context.Context, title string) (model.ChatSession, error) {
	now := s.now()
	if title == "" {
		title = "New chat"
	}
	session := model.ChatSession{
		ID:        uuid.NewString(),
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		return model.ChatSession{}, fmt.Errorf("create session: %w", err)
	}
	return session, nil
}

func (s *Chat) Get(ctx context.Context, id string) (model.ChatSession, error) {
	return s.repo.GetSession(ctx, id)
}

func (s *Chat) List(ctx context.Context) ([]model.ChatSession, error) {
	return s.repo.ListSessions(ctx)
}

func (s *Chat) Delete(ctx context.Context, id string) error {
	return s.repo.DeleteSession(ctx, id)
}

// Send appends the user's message, runs the model (executing any tool calls
// it issues), and returns the updated session. Concurrent sends to the same
// session are rejected with ErrSessionBusy; the session is persisted after
// each phase, so an interrupted send keeps what already happened.
func (s *Chat) Send(ctx context.Context, sessionID, text string) (model.ChatSession, error) {
	if strings.TrimSpace(text) == "" {
		return model.ChatSession{}, fmt.Errorf("chat: empty message")
	}
	if !s.acquire(sessionID) {
		return model.ChatSession{}, ErrSessionBusy
	}
	defer s.release(sessionID)

	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return model.ChatSession{}, err
	}

	now := s.now()
	session.Messages = append(session.Messages, model.ChatMessage{
		ID:        uuid.NewString(),
		Role:      model.RoleUser,
		Text:      text,
		CreatedAt: now,
	})
	if session.Title == "New chat" || session.Title == "" {
		session.Title = titleFrom(text)
	}
	if err := s.persist(ctx, &session); err != nil {
		return model.ChatSession{}, err
	}

	tasks, err := s.repo.ListTasks(ctx, storage.TaskFilter{})
	if err != nil {
		return model.ChatSession{}, fmt.Errorf("list tasks for context: %w", err)
	}
	lists, err := s.repo.ListLists(ctx)
	if err != nil {
		return model.ChatSession{}, fmt.Errorf("list lists for context: %w", err)
	}

	for round := 0; ; round++ {
		turn := s.gateway.RunChat(ctx, session.Messages, "", tasks, lists, s.now())
		if turn == nil {
			break
		}
		if len(turn.ToolCalls) == 0 || round >= maxToolRounds {
			if turn.Text != "" {
				session.Messages = append(session.Messages, model.ChatMessage{
					ID:        uuid.NewString(),
					Role:      model.RoleModel,
					Text:      turn.Text,
					CreatedAt: s.now(),
				})
			}
			break
		}

		for _, call := range turn.ToolCalls {
			call := call
			session.Messages = append(session.Messages, model.ChatMessage{
				ID:        uuid.NewString(),
				Role:      model.RoleModel,
				ToolCall:  &call,
				CreatedAt: s.now(),
			})
			payload := s.executeTool(ctx, call)
			session.Messages = append(session.Messages, model.ChatMessage{
				ID:         uuid.NewString(),
				Role:       model.RoleUser,
				ToolResult: &model.ToolResult{Name: call.Name, Payload: payload},
				CreatedAt:  s.now(),
			})
		}
		if err := s.persist(ctx, &session); err != nil {
			return model.ChatSession{}, err
		}
	}

	if err := s.persist(ctx, &session); err != nil {
		return model.ChatSession{}, err
	}
	return session, nil
}

func (s *Chat) persist(ctx context.Context, session *model.ChatSession) error {
	session.UpdatedAt = s.now()
	if err := s.repo.UpdateSession(ctx, *session); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

func (s *Chat) acquire(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inflight[sessionID] {
		return false
	}
	s.inflight[sessionID] = true
	return true
}

func (s *Chat) release(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, sessionID)
}

// executeTool runs one model-issued function call. Failures become error
// payloads for the model to react to, never Go errors.
func (s *Chat) executeTool(ctx context.Context, call model.ToolCall) map[string]any {
	switch call.Name {
	case "createTask":
		return s.execCreateTask(ctx, call.Args)
	case "createNote":
		return s.execCreateNote(ctx, call.Args)
	default:
		s.log.Warn("chat: unknown tool", slog.String("name", call.Name))
		return map[string]any{"ok": false, "error": fmt.Sprintf("unknown tool %q", call.Name)}
	}
}

func (s *Chat) execCreateTask(ctx context.Context, args map[string]any) map[string]any {
	in := TaskInput{
		Title:       argString(args, "title"),
		Description: argString(args, "description"),
		ListID:      argString(args, "listId"),
	}
	if p, ok := model.ParsePriority(argString(args, "priority")); ok {
		in.Priority = p
	}
	if raw := argString(args, "dueDate"); raw != "" {
		if due, err := time.ParseInLocation(model.DateLayout, raw, s.now().Location()); err == nil {
			in.DueDate = &due
		}
	}
	if in.ListID == "" {
		id, err := s.defaultListID(ctx, model.ListTypeTask)
		if err != nil {
			return map[string]any{"ok": false, "error": err.Error()}
		}
		in.ListID = id
	}
	task, err := s.tasks.Create(ctx, in)
	if err != nil {
		return map[string]any{"ok": false, "error": err.Error()}
	}
	return map[string]any{"ok": true, "id": task.ID, "title": task.Title}
}

func (s *Chat) execCreateNote(ctx context.Context, args map[string]any) map[string]any {
	in := NoteInput{
		Title:   argString(args, "title"),
		Content: argString(args, "content"),
		ListID:  argString(args, "listId"),
	}
	note, err := s.notes.Create(ctx, in)
	if err != nil {
		return map[string]any{"ok": false, "error": err.Error()}
	}
	return map[string]any{"ok": true, "id": note.ID, "title": note.Title}
}

// defaultListID picks the first list of the wanted type, creating an Inbox
// when none exists. The assistant should pass listId, but the model does not
// always comply.
func (s *Chat) defaultListID(ctx context.Context, typ model.ListType) (string, error) {
	lists, err := s.repo.ListLists(ctx)
	if err != nil {
		return "", fmt.Errorf("list lists: %w", err)
	}
	for _, l := range lists {
		if l.Type == typ {
			return l.ID, nil
		}
	}
	now := s.now()
	inbox := model.List{
		ID:        uuid.NewString(),
		Name:      "Inbox",
		Type:      typ,
		CreatedAt: now,
	}
	if err := s.repo.CreateList(ctx, inbox); err != nil {
		return "", fmt.Errorf("create inbox: %w", err)
	}
	return inbox.ID, nil
}

func argString(args map[string]any, key string) string {
	v, _ := args[key].(string)
	return v
}

// titleFrom derives a session title from the first message.
func titleFrom(text string) string {
	text = strings.TrimSpace(text)
	const max = 48
	if len(text) <= max {
		return text
	}
	cut := strings.LastIndex(text[:max], " ")
	if cut <= 0 {
		cut = max
	}
	return text[:cut] + "…"
}
