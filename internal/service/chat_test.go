package service

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"momentum/internal/ai"
	"momentum/internal/model"
	"momentum/internal/storage"
)

// scriptedAssistant returns its turns in order, then repeats the last one.
type scriptedAssistant struct {
	mu    sync.Mutex
	turns []*ai.ChatTurn
	calls int
	block chan struct{}
}

func (s *scriptedAssistant) RunChat(_ context.Context, _ []model.ChatMessage, _ string, _ []model.Task, _ []model.List, _ time.Time) *ai.ChatTurn {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.calls
	s.calls++
	if i >= len(s.turns) {
		i = len(s.turns) - 1
	}
	return s.turns[i]
}

func newChatFixture(t *testing.T, assistant assistant) (*Chat, *fixture) {
	t.Helper()
	f := newFixture(t)
	chat := NewChat(f.repo, assistant, f.tasks, f.notes, slog.New(slog.DiscardHandler))
	chat.now = func() time.Time { return testTime }
	return chat, f
}

func TestSendPlainTextTurn(t *testing.T) {
	chat, _ := newChatFixture(t, &scriptedAssistant{
		turns: []*ai.ChatTurn{{Text: "You have nothing due today."}},
	})
	session, err := chat.NewSession(context.Background(), "")
	require.NoError(t, err)

	got, err := chat.Send(context.Background(), session.ID, "what's due today?")
	require.NoError(t, err)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, model.RoleUser, got.Messages[0].Role)
	assert.Equal(t, "You have nothing due today.", got.Messages[1].Text)
	assert.Equal(t, "what's due today?", got.Title, "first message names the session")
}

func TestSendExecutesToolCallsThenContinues(t *testing.T) {
	assistant := &scriptedAssistant{turns: []*ai.ChatTurn{
		{ToolCalls: []model.ToolCall{{
			Name: "createTask",
			Args: map[string]any{"title": "Buy milk", "priority": "High", "dueDate": "2026-03-03"},
		}}},
		{Text: "Done, I added it."},
	}}
	chat, f := newChatFixture(t, assistant)
	session, err := chat.NewSession(context.Background(), "")
	require.NoError(t, err)

	got, err := chat.Send(context.Background(), session.ID, "add buy milk for tomorrow")
	require.NoError(t, err)

	// user, tool call, tool result, final text
	require.Len(t, got.Messages, 4)
	assert.NotNil(t, got.Messages[1].ToolCall)
	require.NotNil(t, got.Messages[2].ToolResult)
	assert.Equal(t, true, got.Messages[2].ToolResult.Payload["ok"])
	assert.Equal(t, "Done, I added it.", got.Messages[3].Text)

	tasks, err := f.tasks.List(context.Background(), storage.TaskFilter{})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Buy milk", tasks[0].Title)
	assert.Equal(t, model.PriorityHigh, tasks[0].Priority)
	require.NotNil(t, tasks[0].DueDate)
	assert.Equal(t, "2026-03-03", tasks[0].DueDate.Format(model.DateLayout))
}

func TestSendCreatesInboxWhenNoListExists(t *testing.T) {
	assistant := &scriptedAssistant{turns: []*ai.ChatTurn{
		{ToolCalls: []model.ToolCall{{Name: "createTask", Args: map[string]any{"title": "Orphan"}}}},
		{Text: "ok"},
	}}
	chat, f := newChatFixture(t, assistant)
	session, err := chat.NewSession(context.Background(), "")
	require.NoError(t, err)

	_, err = chat.Send(context.Background(), session.ID, "add orphan")
	require.NoError(t, err)

	lists, err := f.lists.List(context.Background())
	require.NoError(t, err)
	require.Len(t, lists, 1)
	assert.Equal(t, "Inbox", lists[0].Name)
}

func TestSendUnknownToolReportsErrorPayload(t *testing.T) {
	assistant := &scriptedAssistant{turns: []*ai.ChatTurn{
		{ToolCalls: []model.ToolCall{{Name: "deleteEverything"}}},
		{Text: "sorry"},
	}}
	chat, _ := newChatFixture(t, assistant)
	session, err := chat.NewSession(context.Background(), "")
	require.NoError(t, err)

	got, err := chat.Send(context.Background(), session.ID, "do something weird")
	require.NoError(t, err)
	require.Len(t, got.Messages, 4)
	assert.Equal(t, false, got.Messages[2].ToolResult.Payload["ok"])
}

func TestSendRejectsConcurrentSends(t *testing.T) {
	assistant := &scriptedAssistant{
		turns: []*ai.ChatTurn{{Text: "slow reply"}},
		block: make(chan struct{}),
	}
	chat, _ := newChatFixture(t, assistant)
	session, err := chat.NewSession(context.Background(), "")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := chat.Send(context.Background(), session.ID, "first")
		done <- err
	}()
	// Wait until the first send holds the session.
	require.Eventually(t, func() bool {
		chat.mu.Lock()
		defer chat.mu.Unlock()
		return chat.inflight[session.ID]
	}, time.Second, 5*time.Millisecond)
	_, err = chat.Send(context.Background(), session.ID, "second")
	assert.ErrorIs(t, err, ErrSessionBusy)

	close(assistant.block)
	require.NoError(t, <-done)
}

func TestSendEmptyMessageRejected(t *testing.T) {
	chat, _ := newChatFixture(t, &scriptedAssistant{turns: []*ai.ChatTurn{{Text: "x"}}})
	session, err := chat.NewSession(context.Background(), "")
	require.NoError(t, err)

	_, err = chat.Send(context.Background(), session.ID, "   ")
	assert.Error(t, err)
}

func TestSessionLifecycle(t *testing.T) {
	chat, _ := newChatFixture(t, &scriptedAssistant{turns: []*ai.ChatTurn{{Text: "x"}}})

	s1, err := chat.NewSession(context.Background(), "Planning")
	require.NoError(t, err)
	_, err = chat.NewSession(context.Background(), "")
	require.NoError(t, err)

	sessions, err := chat.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, sessions, 2)

	require.NoError(t, chat.Delete(context.Background(), s1.ID))
	_, err = chat.Get(context.Background(), s1.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
