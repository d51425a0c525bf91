package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidRole = errors.New("model: invalid chat role")

type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleModel:
		return true
	default:
		return false
	}
}

// ToolCall is a model-issued request to invoke a named function. The host
// application executes it, never the model.
type ToolCall struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

// ToolResult is the host-side outcome of a tool call, appended to history
// before the conversation continues.
type ToolResult struct {
	Name    string         `json:"name"`
	Payload map[string]any `json:"payload"`
}

type ChatMessage struct {
	ID         string      `json:"id"`
	Role       Role        `json:"role"`
	Text       string      `json:"text,omitempty"`
	ToolCall   *ToolCall   `json:"toolCall,omitempty"`
	ToolResult *ToolResult `json:"toolResult,omitempty"`
	CreatedAt  time.Time   `json:"createdAt"`
}

func (m ChatMessage) Validate() error {
	if !m.Role.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidRole, m.Role)
	}
	if m.Text == "" && m.ToolCall == nil && m.ToolResult == nil {
		return errors.New("model: chat message is empty")
	}
	return nil
}

type ChatSession struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	Messages  []ChatMessage `json:"messages"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

func (s ChatSession) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return errors.New("model: chat session id is required")
	}
	for i, msg := range s.Messages {
		if err := msg.Validate(); err != nil {
			return fmt.Errorf("message %d: %w", i, err)
		}
	}
	return nil
}
