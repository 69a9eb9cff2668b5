// Package llm talks to the external reasoning engine. The engine receives the
// conversation plus the tool list and answers with text or tool calls.
package llm

import (
	"context"
	"errors"

	"github.com/example/ec-shop-assistant/internal/tools"
)

// ErrEngineUnavailable covers every engine failure: missing credentials,
// transport errors, non-2xx answers, malformed replies and timeouts.
var ErrEngineUnavailable = errors.New("reasoning engine unavailable")

type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

type ToolCall struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

type ToolResult struct {
	Name     string `json:"name"`
	Response any    `json:"response"`
}

// Message is one conversation entry. A model message may carry tool calls;
// the user message that follows carries their results.
type Message struct {
	Role        Role
	Text        string
	ToolCalls   []ToolCall
	ToolResults []ToolResult
}

type Request struct {
	Instructions string
	Messages     []Message
	Tools        []tools.Definition
}

// Response is either plain text or a non-empty list of tool calls.
type Response struct {
	Text      string
	ToolCalls []ToolCall
}

type Engine interface {
	Generate(ctx context.Context, req Request) (*Response, error)
}
