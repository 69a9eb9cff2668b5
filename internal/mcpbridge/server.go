// Package mcpbridge exposes the shop tools over the Model Context Protocol so
// external agents can drive the same carts and orders as the chat assistant.
package mcpbridge

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/example/ec-shop-assistant/internal/tools"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"
)

const (
	ServerName    = "ec-shop-assistant"
	ServerVersion = "1.0.0"

	// DefaultUserID is used when a call carries no user_id argument.
	DefaultUserID = "anon"
)

type Dispatcher interface {
	Dispatch(ctx context.Context, userID, name string, args tools.Args) tools.Result
}

type Server struct {
	mcp        *server.MCPServer
	dispatcher Dispatcher
	log        logrus.FieldLogger
}

func NewServer(dispatcher Dispatcher, log logrus.FieldLogger) *Server {
	s := &Server{
		mcp:        server.NewMCPServer(ServerName, ServerVersion),
		dispatcher: dispatcher,
		log:        log.WithField("component", "mcp"),
	}
	for _, def := range tools.Definitions() {
		s.mcp.AddTool(toolFor(def), s.handler(def.Name))
	}
	return s
}

// Serve speaks MCP over the given streams until ctx is cancelled or in closes.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	return server.NewStdioServer(s.mcp).Listen(ctx, in, out)
}

// toolFor translates a tool definition into an MCP tool. Every tool also takes
// an optional user_id naming the shopper the call acts for.
func toolFor(def tools.Definition) mcp.Tool {
	props := map[string]interface{}{
		"user_id": map[string]interface{}{
			"type":        "string",
			"description": fmt.Sprintf("Shopper the call acts for (default %q)", DefaultUserID),
		},
	}
	var required []string
	for _, p := range def.Params {
		prop := map[string]interface{}{"type": string(p.Type)}
		if p.Description != "" {
			prop["description"] = p.Description
		}
		props[p.Name] = prop
		if p.Required {
			required = append(required, p.Name)
		}
	}
	return mcp.Tool{
		Name:        def.Name,
		Description: def.Description,
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: props,
			Required:   required,
		},
	}
}

func (s *Server) handler(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		raw, _ := request.Params.Arguments.(map[string]interface{})

		userID := DefaultUserID
		args := make(tools.Args, len(raw))
		for k, v := range raw {
			if k == "user_id" {
				if id, ok := v.(string); ok && strings.TrimSpace(id) != "" {
					userID = strings.TrimSpace(id)
				}
				continue
			}
			args[k] = v
		}

		res := s.dispatcher.Dispatch(ctx, userID, name, args)
		s.log.WithFields(logrus.Fields{"tool": name, "user_id": userID, "ok": res.OK()}).Info("tool call")

		body, err := json.Marshal(res)
		if err != nil {
			return nil, fmt.Errorf("encode %s result: %w", name, err)
		}
		if !res.OK() {
			return mcp.NewToolResultError(string(body)), nil
		}
		return mcp.NewToolResultText(string(body)), nil
	}
}
