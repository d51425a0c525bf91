// Package ai wraps the Gemini API behind typed operations. Every operation
// degrades to a nil result when the gateway is unconfigured or the call or
// parse fails: AI enrichment is optional and must never block core CRUD.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"momentum/internal/model"
)

// Config is the explicit gateway configuration. The API key can change at
// runtime through Reconfigure; there is no hidden client singleton.
type Config struct {
	APIKey string
	Model  string
}

const DefaultModel = "gemini-2.0-flash"

type Gateway struct {
	mu     sync.RWMutex
	caller caller
	log    *slog.Logger
}

// NewGateway builds a gateway. An empty API key yields a valid but
// unconfigured gateway whose operations all return nil.
func NewGateway(ctx context.Context, cfg Config, log *slog.Logger) *Gateway {
	g := &Gateway{log: log}
	if err := g.Reconfigure(ctx, cfg); err != nil {
		log.Warn("ai gateway not configured", slog.String("error", err.Error()))
	}
	return g
}

// Reconfigure swaps the underlying client, e.g. after the user changes
// their API key. An empty key disables the gateway.
func (g *Gateway) Reconfigure(ctx context.Context, cfg Config) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if strings.TrimSpace(cfg.APIKey) == "" {
		g.caller = nil
		return nil
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	c, err := newGenaiCaller(ctx, cfg.APIKey, cfg.Model)
	if err != nil {
		g.caller = nil
		return err
	}
	g.caller = c
	return nil
}

// Configured reports whether a client is available.
func (g *Gateway) Configured() bool {
	return g.currentCaller() != nil
}

func (g *Gateway) currentCaller() caller {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.caller
}

type ParsedTask struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type SubtaskSuggestion struct {
	Title string  `json:"title"`
	Hours float64 `json:"hours"`
}

type TaskAnalysis struct {
	Summary           string              `json:"summary"`
	Complexity        string              `json:"complexity"`
	RequiredSkills    []string            `json:"requiredSkills"`
	PotentialBlockers []string            `json:"potentialBlockers"`
	Subtasks          []SubtaskSuggestion `json:"subtasks"`
}

type NoteAnalysis struct {
	Summary string   `json:"summary"`
	Tags    []string `json:"tags"`
}

type PlannedTask struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Checklist    []string `json:"checklist"`
	DurationDays int      `json:"durationDays"`
}

type GoalPlan struct {
	Title      string        `json:"title"`
	Motivation string        `json:"motivation"`
	ListName   string        `json:"listName"`
	TargetDate string        `json:"targetDate"`
	Tasks      []PlannedTask `json:"tasks"`
}

type GoalInsights struct {
	RiskLevel            string `json:"riskLevel"`
	RiskReasoning        string `json:"riskReasoning"`
	NextActionSuggestion string `json:"nextActionSuggestion"`
}

// ChatTurn is one model response: either plain text or one or more tool
// calls the caller must execute. The gateway never executes tool calls.
type ChatTurn struct {
	Text      string
	ToolCalls []model.ToolCall
}

// FallbackReply is returned by RunChat when no AI client is configured.
const FallbackReply = "AI is not configured. Add your Gemini API key in settings to enable the assistant."

// ParseTasksFromText extracts structured tasks from free text. Empty input
// returns nil without invoking the model.
func (g *Gateway) ParseTasksFromText(ctx context.Context, text string) []ParsedTask {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	c := g.currentCaller()
	if c == nil {
		return nil
	}
	rep, err := c.generate(ctx, request{
		messages: []model.ChatMessage{{Role: model.RoleUser, Text: parseTasksPrompt(text)}},
		schema:   parsedTasksSchema,
	})
	if err != nil {
		g.log.Warn("parse tasks failed", slog.String("error", err.Error()))
		return nil
	}
	var parsed []ParsedTask
	if err := decodeJSON(rep.text, &parsed); err != nil {
		g.log.Warn("parse tasks: bad model output", slog.String("error", err.Error()))
		return nil
	}
	out := parsed[:0]
	for _, p := range parsed {
		if strings.TrimSpace(p.Title) != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// SuggestTaskPriority returns one of the Priority values or nil. A token
// outside the enum is discarded, never surfaced.
func (g *Gateway) SuggestTaskPriority(ctx context.Context, title, description string) *model.Priority {
	c := g.currentCaller()
	if c == nil {
		return nil
	}
	rep, err := c.generate(ctx, request{
		messages: []model.ChatMessage{{Role: model.RoleUser, Text: suggestPriorityPrompt(title, description)}},
	})
	if err != nil {
		g.log.Warn("suggest priority failed", slog.String("error", err.Error()))
		return nil
	}
	p, ok := model.ParsePriority(rep.text)
	if !ok {
		g.log.Warn("suggest priority: token outside enum", slog.String("token", rep.text))
		return nil
	}
	return &p
}

func (g *Gateway) AnalyzeTask(ctx context.Context, task model.Task) *TaskAnalysis {
	c := g.currentCaller()
	if c == nil {
		return nil
	}
	rep, err := c.generate(ctx, request{
		messages: []model.ChatMessage{{Role: model.RoleUser, Text: analyzeTaskPrompt(task)}},
		schema:   taskAnalysisSchema,
	})
	if err != nil {
		g.log.Warn("analyze task failed", slog.String("error", err.Error()))
		return nil
	}
	var out TaskAnalysis
	if err := decodeJSON(rep.text, &out); err != nil || out.Summary == "" {
		g.log.Warn("analyze task: bad model output")
		return nil
	}
	return &out
}

func (g *Gateway) SummarizeAndTagNote(ctx context.Context, note model.Note) *NoteAnalysis {
	c := g.currentCaller()
	if c == nil {
		return nil
	}
	rep, err := c.generate(ctx, request{
		messages: []model.ChatMessage{{Role: model.RoleUser, Text: summarizeNotePrompt(note)}},
		schema:   noteAnalysisSchema,
	})
	if err != nil {
		g.log.Warn("summarize note failed", slog.String("error", err.Error()))
		return nil
	}
	var out NoteAnalysis
	if err := decodeJSON(rep.text, &out); err != nil || out.Summary == "" {
		g.log.Warn("summarize note: bad model output")
		return nil
	}
	return &out
}

func (g *Gateway) RefineAndPlanGoal(ctx context.Context, freeform, promptTemplate string) *GoalPlan {
	if strings.TrimSpace(freeform) == "" {
		return nil
	}
	c := g.currentCaller()
	if c == nil {
		return nil
	}
	rep, err := c.generate(ctx, request{
		messages: []model.ChatMessage{{Role: model.RoleUser, Text: refineGoalPrompt(freeform, promptTemplate)}},
		schema:   goalPlanSchema,
	})
	if err != nil {
		g.log.Warn("refine goal failed", slog.String("error", err.Error()))
		return nil
	}
	var out GoalPlan
	if err := decodeJSON(rep.text, &out); err != nil || out.Title == "" || len(out.Tasks) == 0 {
		g.log.Warn("refine goal: bad model output")
		return nil
	}
	return &out
}

func (g *Gateway) GoalInsights(ctx context.Context, goal model.Goal, tasks []model.Task) *GoalInsights {
	c := g.currentCaller()
	if c == nil {
		return nil
	}
	rep, err := c.generate(ctx, request{
		messages: []model.ChatMessage{{Role: model.RoleUser, Text: goalInsightsPrompt(goal, tasks)}},
		schema:   goalInsightsSchema,
	})
	if err != nil {
		g.log.Warn("goal insights failed", slog.String("error", err.Error()))
		return nil
	}
	var out GoalInsights
	if err := decodeJSON(rep.text, &out); err != nil {
		g.log.Warn("goal insights: bad model output")
		return nil
	}
	switch out.RiskLevel {
	case "low", "medium", "high":
	default:
		g.log.Warn("goal insights: risk level outside enum", slog.String("value", out.RiskLevel))
		return nil
	}
	return &out
}

func (g *Gateway) SmartSuggestions(ctx context.Context, tasks []model.Task, goals []model.Goal) []string {
	c := g.currentCaller()
	if c == nil {
		return nil
	}
	rep, err := c.generate(ctx, request{
		messages: []model.ChatMessage{{Role: model.RoleUser, Text: smartSuggestionsPrompt(tasks, goals)}},
		schema:   stringListSchema,
	})
	if err != nil {
		g.log.Warn("smart suggestions failed", slog.String("error", err.Error()))
		return nil
	}
	var out []string
	if err := decodeJSON(rep.text, &out); err != nil || len(out) == 0 {
		return nil
	}
	return out
}

func (g *Gateway) MotivationalNudge(ctx context.Context, tasks []model.Task, goals []model.Goal) *string {
	c := g.currentCaller()
	if c == nil {
		return nil
	}
	rep, err := c.generate(ctx, request{
		messages: []model.ChatMessage{{Role: model.RoleUser, Text: nudgePrompt(tasks, goals)}},
	})
	if err != nil {
		g.log.Warn("motivational nudge failed", slog.String("error", err.Error()))
		return nil
	}
	text := strings.TrimSpace(rep.text)
	if text == "" {
		return nil
	}
	return &text
}

// RunChat submits the session history plus the new user message and returns
// the model's turn: plain text, or tool calls the caller must execute and
// answer with tool-result messages before requesting the next turn.
func (g *Gateway) RunChat(ctx context.Context, history []model.ChatMessage, newMessage string, tasks []model.Task, lists []model.List, now time.Time) *ChatTurn {
	c := g.currentCaller()
	if c == nil {
		return &ChatTurn{Text: FallbackReply}
	}

	messages := make([]model.ChatMessage, 0, len(history)+1)
	messages = append(messages, history...)
	if newMessage != "" {
		messages = append(messages, model.ChatMessage{Role: model.RoleUser, Text: newMessage})
	}

	rep, err := c.generate(ctx, request{
		system:   buildChatSystem(now, tasks, lists),
		messages: messages,
		tools:    chatTools(),
	})
	if err != nil {
		g.log.Warn("chat turn failed", slog.String("error", err.Error()))
		return &ChatTurn{Text: "Something went wrong talking to the assistant. Check your API key and try again."}
	}
	return &ChatTurn{Text: strings.TrimSpace(rep.text), ToolCalls: rep.calls}
}

// decodeJSON parses model output that should be JSON. Some models wrap the
// payload in prose or code fences, so the first balanced JSON value is
// extracted before unmarshalling.
func decodeJSON(raw string, v any) error {
	trimmed, err := extractJSON(raw)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(trimmed), v); err != nil {
		return fmt.Errorf("unmarshal model output: %w", err)
	}
	return nil
}

func extractJSON(raw string) (string, error) {
	start := strings.IndexAny(raw, "{[")
	if start < 0 {
		return "", fmt.Errorf("no JSON in model output")
	}
	var end int
	if raw[start] == '{' {
		end = strings.LastIndex(raw, "}")
	} else {
		end = strings.LastIndex(raw, "]")
	}
	if end <= start {
		return "", fmt.Errorf("unterminated JSON in model output")
	}
	candidate := raw[start : end+1]
	if !json.Valid([]byte(candidate)) {
		return "", fmt.Errorf("invalid JSON in model output")
	}
	return candidate, nil
}
