package app

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/example/ec-shop-assistant/internal/command"
	"github.com/example/ec-shop-assistant/internal/config"
	"github.com/example/ec-shop-assistant/internal/infrastructure/storage"
	"github.com/example/ec-shop-assistant/internal/infrastructure/store/mocks"
	"github.com/example/ec-shop-assistant/internal/llm"
	"github.com/example/ec-shop-assistant/internal/tools"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stepEngine struct {
	responses []*llm.Response
	err       error
}

func (e *stepEngine) Generate(ctx context.Context, req llm.Request) (*llm.Response, error) {
	if e.err != nil {
		return nil, e.err
	}
	resp := e.responses[0]
	e.responses = e.responses[1:]
	return resp, nil
}

func newTestApp(t *testing.T, engine llm.Engine) (*App, *mocks.MockOrderMirror) {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	port := storage.Open(context.Background(), config.Config{StoreBackend: config.BackendMemory}, log)
	mirror := mocks.NewMockOrderMirror()
	port.Mirror = mirror
	t.Cleanup(func() { _ = port.Close() })
	return New(port, engine, config.Config{}, log), mirror
}

func TestApp_ChatTurnDrivesTools(t *testing.T) {
	engine := &stepEngine{responses: []*llm.Response{
		{ToolCalls: []llm.ToolCall{{Name: tools.AddToCart, Args: map[string]any{"product_id": "p3", "quantity": float64(2)}}}},
		{ToolCalls: []llm.ToolCall{{Name: tools.PlaceOrder}}},
		{Text: "Ordered two white t-shirts."},
	}}
	a, mirror := newTestApp(t, engine)
	ctx := context.Background()

	reply := a.Driver.HandleTurn(ctx, "buy two white shirts and check out", "shopper@example.com")
	a.Wait()

	assert.Equal(t, "Ordered two white t-shirts.", reply.Response)
	orders := a.Queries.ListOrdersByUser(ctx, "shopper@example.com")
	require.Len(t, orders, 1)
	assert.Equal(t, 798, orders[0].TotalPrice)
	assert.Equal(t, "Standard", orders[0].DeliverySlot)
	assert.Len(t, mirror.Saved(), 1)

	sc, err := a.Sessions.GetOrCreate(ctx, "shopper@example.com")
	require.NoError(t, err)
	assert.Empty(t, sc.CartID)
	assert.Len(t, sc.History, 2)
}

func TestApp_EngineFailureUsesLocalCatalog(t *testing.T) {
	a, _ := newTestApp(t, &stepEngine{err: llm.ErrEngineUnavailable})

	reply := a.Driver.HandleTurn(context.Background(), "search hoodie", "anon")

	assert.Contains(t, reply.Response, "Red Hoodie")
}

func TestApp_CartCreatedOverHTTPIsAdoptedInChat(t *testing.T) {
	engine := &stepEngine{responses: []*llm.Response{
		{ToolCalls: []llm.ToolCall{{Name: tools.GetMyCart}}},
		{Text: "Your cart is empty."},
	}}
	a, _ := newTestApp(t, engine)
	ctx := context.Background()

	c, err := a.Commands.CreateCart(ctx, command.CreateCart{UserID: "u1"})
	require.NoError(t, err)

	reply := a.Driver.HandleTurn(ctx, "what's in my cart?", "u1")

	assert.Equal(t, "Your cart is empty.", reply.Response)
	sc, err := a.Sessions.GetOrCreate(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, c.ID, sc.CartID)
}

func TestApp_DefaultEngineWithoutKeyFallsBack(t *testing.T) {
	a, _ := newTestApp(t, nil)

	reply := a.Driver.HandleTurn(context.Background(), "hello", "anon")

	assert.True(t, strings.HasPrefix(reply.Response, "Hello!"))
}
