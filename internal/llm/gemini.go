package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/example/ec-shop-assistant/internal/tools"
	"github.com/pkg/errors"
)

const (
	DefaultGeminiModel   = "gemini-2.0-flash"
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com"

	maxErrorBody = 512
)

// GeminiClient calls the generateContent REST endpoint.
type GeminiClient struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewGeminiClient creates a client. An empty apiKey is accepted; every call
// then fails with ErrEngineUnavailable so callers fall back.
func NewGeminiClient(apiKey, model, baseURL string, timeout time.Duration) *GeminiClient {
	if model == "" {
		model = DefaultGeminiModel
	}
	if baseURL == "" {
		baseURL = DefaultGeminiBaseURL
	}
	return &GeminiClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func unavailable(format string, args ...any) error {
	return errors.Wrapf(ErrEngineUnavailable, format, args...)
}

// Wire format

type geminiPart struct {
	Text             string                  `json:"text,omitempty"`
	FunctionCall     *geminiFunctionCall     `json:"functionCall,omitempty"`
	FunctionResponse *geminiFunctionResponse `json:"functionResponse,omitempty"`
}

type geminiFunctionCall struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args,omitempty"`
}

type geminiFunctionResponse struct {
	Name     string `json:"name"`
	Response any    `json:"response"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiSchema struct {
	Type        string                  `json:"type"`
	Description string                  `json:"description,omitempty"`
	Properties  map[string]geminiSchema `json:"properties,omitempty"`
	Required    []string                `json:"required,omitempty"`
}

type geminiFunctionDeclaration struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Parameters  *geminiSchema `json:"parameters,omitempty"`
}

type geminiTool struct {
	FunctionDeclarations []geminiFunctionDeclaration `json:"functionDeclarations"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
	Tools             []geminiTool    `json:"tools,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
}

func schemaType(t tools.ParamType) string {
	switch t {
	case tools.TypeNumber:
		return "NUMBER"
	case tools.TypeInteger:
		return "INTEGER"
	default:
		return "STRING"
	}
}

func declarations(defs []tools.Definition) []geminiTool {
	if len(defs) == 0 {
		return nil
	}
	decls := make([]geminiFunctionDeclaration, 0, len(defs))
	for _, d := range defs {
		decl := geminiFunctionDeclaration{Name: d.Name, Description: d.Description}
		if len(d.Params) > 0 {
			schema := &geminiSchema{Type: "OBJECT", Properties: make(map[string]geminiSchema, len(d.Params))}
			for _, p := range d.Params {
				schema.Properties[p.Name] = geminiSchema{Type: schemaType(p.Type), Description: p.Description}
				if p.Required {
					schema.Required = append(schema.Required, p.Name)
				}
			}
			decl.Parameters = schema
		}
		decls = append(decls, decl)
	}
	return []geminiTool{{FunctionDeclarations: decls}}
}

func contents(msgs []Message) []geminiContent {
	out := make([]geminiContent, 0, len(msgs))
	for _, m := range msgs {
		c := geminiContent{Role: string(m.Role)}
		if m.Text != "" {
			c.Parts = append(c.Parts, geminiPart{Text: m.Text})
		}
		for _, call := range m.ToolCalls {
			c.Parts = append(c.Parts, geminiPart{FunctionCall: &geminiFunctionCall{Name: call.Name, Args: call.Args}})
		}
		for _, res := range m.ToolResults {
			c.Parts = append(c.Parts, geminiPart{FunctionResponse: &geminiFunctionResponse{Name: res.Name, Response: res.Response}})
		}
		if len(c.Parts) > 0 {
			out = append(out, c)
		}
	}
	return out
}

func (g *GeminiClient) Generate(ctx context.Context, req Request) (*Response, error) {
	if g.apiKey == "" {
		return nil, unavailable("no API key configured")
	}

	body := geminiRequest{
		Contents: contents(req.Messages),
		Tools:    declarations(req.Tools),
	}
	if req.Instructions != "" {
		body.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: req.Instructions}}}
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", g.baseURL, g.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, unavailable("api call: %v", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, unavailable("api error %d: %s", resp.StatusCode, strings.TrimSpace(string(bodyBytes)))
	}

	var apiResp geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, unavailable("decode response: %v", err)
	}
	if len(apiResp.Candidates) == 0 {
		return nil, unavailable("no candidates returned")
	}

	out := &Response{}
	var text []string
	for _, part := range apiResp.Candidates[0].Content.Parts {
		switch {
		case part.FunctionCall != nil:
			args := part.FunctionCall.Args
			if args == nil {
				args = map[string]any{}
			}
			out.ToolCalls = append(out.ToolCalls, ToolCall{Name: part.FunctionCall.Name, Args: args})
		case part.Text != "":
			text = append(text, part.Text)
		}
	}
	out.Text = strings.TrimSpace(strings.Join(text, ""))
	return out, nil
}
