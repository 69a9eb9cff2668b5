// Package chat runs one conversational turn: it asks the reasoning engine
// what to do, executes the tool calls it requests and returns the final reply.
package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/example/ec-shop-assistant/internal/llm"
	"github.com/example/ec-shop-assistant/internal/session"
	"github.com/example/ec-shop-assistant/internal/tools"
	"github.com/sirupsen/logrus"
)

const (
	DefaultEngineTimeout = 20 * time.Second
	DefaultMaxToolRounds = 5
	DefaultUserID        = "anon"

	// Recent search results quoted in the instructions.
	searchExcerptSize = 5

	capReply   = "I've made the requested changes. Is there anything else I can help you with?"
	emptyReply = "Sorry, I didn't catch that. Could you rephrase?"
)

// Dispatcher executes a single tool call for a user.
type Dispatcher interface {
	Dispatch(ctx context.Context, userID, name string, args tools.Args) tools.Result
}

type Options struct {
	EngineTimeout time.Duration
	MaxToolRounds int
}

type Reply struct {
	Response string `json:"response"`
}

type Driver struct {
	engine     llm.Engine
	dispatcher Dispatcher
	sessions   *session.Store
	fallback   *Fallback
	log        logrus.FieldLogger

	timeout   time.Duration
	maxRounds int
}

func NewDriver(engine llm.Engine, dispatcher Dispatcher, sessions *session.Store, fallback *Fallback, opts Options, log logrus.FieldLogger) *Driver {
	if opts.EngineTimeout <= 0 {
		opts.EngineTimeout = DefaultEngineTimeout
	}
	if opts.MaxToolRounds <= 0 {
		opts.MaxToolRounds = DefaultMaxToolRounds
	}
	return &Driver{
		engine:     engine,
		dispatcher: dispatcher,
		sessions:   sessions,
		fallback:   fallback,
		log:        log.WithField("component", "chat"),
		timeout:    opts.EngineTimeout,
		maxRounds:  opts.MaxToolRounds,
	}
}

// HandleTurn answers one user message. It always returns a non-empty reply;
// engine failures are answered by the fallback responder.
func (d *Driver) HandleTurn(ctx context.Context, message, userID string) Reply {
	if strings.TrimSpace(userID) == "" {
		userID = DefaultUserID
	}
	log := d.log.WithField("user_id", userID)

	if _, err := d.sessions.AdoptExistingCart(ctx, userID); err != nil {
		log.WithError(err).Warn("cart adoption failed")
	}
	sc, err := d.sessions.GetOrCreate(ctx, userID)
	if err != nil {
		log.WithError(err).Error("failed to load session")
		return d.fallbackReply(ctx, log, userID, message)
	}

	msgs := make([]llm.Message, 0, len(sc.History)+1)
	for _, turn := range sc.History {
		role := llm.RoleUser
		if turn.Role == session.RoleAssistant {
			role = llm.RoleModel
		}
		msgs = append(msgs, llm.Message{Role: role, Text: turn.Content})
	}
	msgs = append(msgs, llm.Message{Role: llm.RoleUser, Text: message})

	reply, err := d.converse(ctx, log, userID, sc, msgs)
	if err != nil {
		log.WithError(err).Error("reasoning engine failed, using fallback")
		return d.fallbackReply(ctx, log, userID, message)
	}

	if err := d.sessions.AppendTurns(ctx, userID,
		session.Turn{Role: session.RoleUser, Content: message},
		session.Turn{Role: session.RoleAssistant, Content: reply},
	); err != nil {
		log.WithError(err).Warn("failed to record turn")
	}
	return Reply{Response: reply}
}

// converse runs the engine/tool loop for at most maxRounds engine calls.
func (d *Driver) converse(ctx context.Context, log logrus.FieldLogger, userID string, sc session.Context, msgs []llm.Message) (string, error) {
	defs := tools.Definitions()

	for round := 1; round <= d.maxRounds; round++ {
		resp, err := d.generate(ctx, llm.Request{
			Instructions: buildInstructions(sc),
			Messages:     msgs,
			Tools:        defs,
		})
		if err != nil {
			return "", err
		}

		if len(resp.ToolCalls) == 0 {
			if resp.Text == "" {
				return emptyReply, nil
			}
			return resp.Text, nil
		}

		results := make([]llm.ToolResult, 0, len(resp.ToolCalls))
		for _, call := range resp.ToolCalls {
			res := d.dispatcher.Dispatch(ctx, userID, call.Name, tools.Args(call.Args))
			results = append(results, llm.ToolResult{Name: call.Name, Response: res})
		}
		msgs = append(msgs,
			llm.Message{Role: llm.RoleModel, Text: resp.Text, ToolCalls: resp.ToolCalls},
			llm.Message{Role: llm.RoleUser, ToolResults: results},
		)

		// Tools may have bound a cart or recorded a search.
		if fresh, err := d.sessions.GetOrCreate(ctx, userID); err == nil {
			sc = fresh
		}
	}

	log.WithField("rounds", d.maxRounds).Warn("tool round limit reached")
	return capReply, nil
}

func (d *Driver) generate(ctx context.Context, req llm.Request) (*llm.Response, error) {
	if d.engine == nil {
		return nil, fmt.Errorf("%w: no engine configured", llm.ErrEngineUnavailable)
	}
	callCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	resp, err := d.engine.Generate(callCtx, req)
	if err != nil {
		return nil, err
	}
	if callCtx.Err() != nil {
		return nil, fmt.Errorf("%w: %v", llm.ErrEngineUnavailable, callCtx.Err())
	}
	return resp, nil
}

func (d *Driver) fallbackReply(ctx context.Context, log logrus.FieldLogger, userID, message string) Reply {
	reply := d.fallback.Reply(ctx, message)
	if err := d.sessions.AppendTurns(ctx, userID,
		session.Turn{Role: session.RoleUser, Content: message},
		session.Turn{Role: session.RoleAssistant, Content: reply},
	); err != nil {
		log.WithError(err).Warn("failed to record fallback turn")
	}
	return Reply{Response: reply}
}

func buildInstructions(sc session.Context) string {
	var b strings.Builder
	b.WriteString("You are a helpful shopping assistant. ")
	b.WriteString("Your goal is to help users find products, manage their cart, and place orders.\n")

	if sc.CartID != "" {
		fmt.Fprintf(&b, "Current Cart ID: %s\n", sc.CartID)
	} else {
		b.WriteString("Current Cart ID: none. Create one if needed.\n")
	}

	if len(sc.LastSearch) > 0 {
		b.WriteString("\nRECENT SEARCH RESULTS (the user may refer to these as 'the first one', 'that t-shirt', etc):\n")
		for i, p := range sc.LastSearch {
			if i == searchExcerptSize {
				break
			}
			fmt.Fprintf(&b, "%d. ID: %s, Name: %s, Price: %d\n", i+1, p.ID, p.Name, p.Price)
		}
	}

	b.WriteString("\nRULES:\n")
	b.WriteString("- If the user asks to add to cart and you have a Cart ID, use it. Otherwise add_to_cart creates one.\n")
	b.WriteString("- If the user refers to a product vaguely ('add it', 'the first one'), resolve it against the recent search results.\n")
	b.WriteString("- Always confirm actions politely.\n")
	return b.String()
}
