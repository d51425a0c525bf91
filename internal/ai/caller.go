package ai

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"momentum/internal/model"
)

// request is one model invocation. A non-nil schema constrains the response
// to JSON matching it; tool declarations enable function calling.
type request struct {
	system   string
	messages []model.ChatMessage
	schema   *genai.Schema
	tools    []*genai.FunctionDeclaration
}

type reply struct {
	text  string
	calls []model.ToolCall
}

// caller is the seam between the gateway and the Gemini SDK. Tests install
// a stub; production uses genaiCaller.
type caller interface {
	generate(ctx context.Context, req request) (reply, error)
}

type genaiCaller struct {
	client    *genai.Client
	modelName string
}

func newGenaiCaller(ctx context.Context, apiKey, modelName string) (*genaiCaller, error) {
	if apiKey == "" {
		return nil, errors.New("ai: empty api key")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("ai: new client: %w", err)
	}
	return &genaiCaller{client: client, modelName: modelName}, nil
}

func (c *genaiCaller) generate(ctx context.Context, req request) (reply, error) {
	cfg := &genai.GenerateContentConfig{}
	if req.system != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.system}}}
	}
	if req.schema != nil {
		cfg.ResponseMIMEType = "application/json"
		cfg.ResponseSchema = req.schema
	}
	if len(req.tools) > 0 {
		cfg.Tools = []*genai.Tool{{FunctionDeclarations: req.tools}}
	}

	contents := make([]*genai.Content, 0, len(req.messages))
	for _, msg := range req.messages {
		contents = append(contents, toContent(msg))
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.modelName, contents, cfg)
	if err != nil {
		return reply{}, fmt.Errorf("ai: generate: %w", err)
	}

	out := reply{text: resp.Text()}
	for _, fc := range resp.FunctionCalls() {
		out.calls = append(out.calls, model.ToolCall{Name: fc.Name, Args: fc.Args})
	}
	return out, nil
}

func toContent(msg model.ChatMessage) *genai.Content {
	switch {
	case msg.ToolCall != nil:
		return &genai.Content{
			Role: genai.RoleModel,
			Parts: []*genai.Part{{FunctionCall: &genai.FunctionCall{
				Name: msg.ToolCall.Name,
				Args: msg.ToolCall.Args,
			}}},
		}
	case msg.ToolResult != nil:
		return &genai.Content{
			Role: genai.RoleUser,
			Parts: []*genai.Part{{FunctionResponse: &genai.FunctionResponse{
				Name:     msg.ToolResult.Name,
				Response: msg.ToolResult.Payload,
			}}},
		}
	default:
		role := genai.RoleUser
		if msg.Role == model.RoleModel {
			role = genai.RoleModel
		}
		return &genai.Content{Role: role, Parts: []*genai.Part{{Text: msg.Text}}}
	}
}
