package ai

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"momentum/internal/model"
)

// stubCaller records the last request and returns a canned reply.
type stubCaller struct {
	last  request
	reply reply
	err   error
}

func (s *stubCaller) generate(_ context.Context, req request) (reply, error) {
	s.last = req
	return s.reply, s.err
}

func newTestGateway(stub *stubCaller) *Gateway {
	g := &Gateway{log: slog.New(slog.DiscardHandler)}
	g.caller = stub
	return g
}

func TestUnconfiguredGatewayReturnsNil(t *testing.T) {
	g := NewGateway(context.Background(), Config{}, slog.New(slog.DiscardHandler))

	assert.False(t, g.Configured())
	assert.Nil(t, g.ParseTasksFromText(context.Background(), "buy milk"))
	assert.Nil(t, g.SuggestTaskPriority(context.Background(), "x", ""))
	assert.Nil(t, g.AnalyzeTask(context.Background(), model.Task{Title: "x"}))
	assert.Nil(t, g.SmartSuggestions(context.Background(), nil, nil))
	assert.Nil(t, g.MotivationalNudge(context.Background(), nil, nil))
}

func TestRunChatFallsBackWhenUnconfigured(t *testing.T) {
	g := NewGateway(context.Background(), Config{}, slog.New(slog.DiscardHandler))

	turn := g.RunChat(context.Background(), nil, "hello", nil, nil, time.Now())
	require.NotNil(t, turn)
	assert.Equal(t, FallbackReply, turn.Text)
	assert.Empty(t, turn.ToolCalls)
}

func TestParseTasksEmptyInputSkipsModel(t *testing.T) {
	stub := &stubCaller{reply: reply{text: `[{"title":"should not be reached"}]`}}
	g := newTestGateway(stub)

	got := g.ParseTasksFromText(context.Background(), "   \n\t")
	assert.Nil(t, got)
	assert.Empty(t, stub.last.messages, "model must not be invoked for empty input")
}

func TestParseTasksDropsUntitledEntries(t *testing.T) {
	stub := &stubCaller{reply: reply{text: `[{"title":"Buy milk","description":"2%"},{"title":"  "}]`}}
	g := newTestGateway(stub)

	got := g.ParseTasksFromText(context.Background(), "buy milk at the store")
	require.Len(t, got, 1)
	assert.Equal(t, "Buy milk", got[0].Title)
	assert.Equal(t, "2%", got[0].Description)
}

func TestSuggestTaskPriorityValidatesEnum(t *testing.T) {
	tests := []struct {
		raw  string
		want *model.Priority
	}{
		{"High", ptr(model.PriorityHigh)},
		{" medium \n", ptr(model.PriorityMedium)},
		{"LOW", ptr(model.PriorityLow)},
		{"Urgent", nil},
		{"", nil},
	}
	for _, tc := range tests {
		g := newTestGateway(&stubCaller{reply: reply{text: tc.raw}})
		got := g.SuggestTaskPriority(context.Background(), "fix bug", "")
		assert.Equal(t, tc.want, got, "raw=%q", tc.raw)
	}
}

func TestSuggestTaskPriorityNilOnCallError(t *testing.T) {
	g := newTestGateway(&stubCaller{err: errors.New("quota exceeded")})

	assert.Nil(t, g.SuggestTaskPriority(context.Background(), "fix bug", ""))
}

func TestAnalyzeTaskDecodesResult(t *testing.T) {
	stub := &stubCaller{reply: reply{text: `{
		"summary": "Refactor the importer",
		"complexity": "moderate",
		"requiredSkills": ["go"],
		"potentialBlockers": [],
		"subtasks": [{"title": "Write tests", "hours": 2}]
	}`}}
	g := newTestGateway(stub)

	got := g.AnalyzeTask(context.Background(), model.Task{Title: "Refactor importer"})
	require.NotNil(t, got)
	assert.Equal(t, "moderate", got.Complexity)
	require.Len(t, got.Subtasks, 1)
	assert.Equal(t, 2.0, got.Subtasks[0].Hours)
	assert.NotNil(t, stub.last.schema, "analysis requests constrain the response schema")
}

func TestGoalInsightsRejectsUnknownRiskLevel(t *testing.T) {
	g := newTestGateway(&stubCaller{reply: reply{text: `{"riskLevel":"catastrophic"}`}})

	assert.Nil(t, g.GoalInsights(context.Background(), model.Goal{Title: "Run a marathon"}, nil))
}

func TestRefineGoalRejectsPlanWithoutTasks(t *testing.T) {
	g := newTestGateway(&stubCaller{reply: reply{text: `{"title":"Run a marathon","tasks":[]}`}})

	assert.Nil(t, g.RefineAndPlanGoal(context.Background(), "run marathon someday", ""))
}

func TestRunChatPassesThroughToolCalls(t *testing.T) {
	stub := &stubCaller{reply: reply{
		calls: []model.ToolCall{{Name: toolCreateTask, Args: map[string]any{"title": "Buy milk"}}},
	}}
	g := newTestGateway(stub)

	history := []model.ChatMessage{{Role: model.RoleUser, Text: "earlier"}}
	turn := g.RunChat(context.Background(), history, "add buy milk", nil, nil, time.Now())

	require.NotNil(t, turn)
	require.Len(t, turn.ToolCalls, 1)
	assert.Equal(t, toolCreateTask, turn.ToolCalls[0].Name)
	require.Len(t, stub.last.messages, 2)
	assert.Equal(t, "add buy milk", stub.last.messages[1].Text)
	assert.NotEmpty(t, stub.last.tools, "chat requests declare the tool set")
	assert.NotEmpty(t, stub.last.system)
}

func TestChatSystemIncludesDateAndLists(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	due := time.Date(2026, 3, 1, 17, 0, 0, 0, time.UTC)
	tasks := []model.Task{{Title: "File taxes", Status: model.StatusTodo, DueDate: &due}}
	lists := []model.List{{ID: "l1", Name: "Work", Type: model.ListTypeTask}}

	sys := buildChatSystem(now, tasks, lists)
	assert.Contains(t, sys, "Monday, 2 March 2026")
	assert.Contains(t, sys, "Overdue tasks: File taxes")
	assert.Contains(t, sys, "Work (id l1")
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{"bare object", `{"a":1}`, `{"a":1}`, false},
		{"fenced", "```json\n[1,2]\n```", "[1,2]", false},
		{"prose wrapped", `Here you go: {"a":1}. Enjoy!`, `{"a":1}`, false},
		{"no json", "sorry, I cannot do that", "", true},
		{"truncated", `{"a":`, "", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := extractJSON(tc.raw)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func ptr[T any](v T) *T { return &v }
