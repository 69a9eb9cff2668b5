package chat

import (
	"context"
	"io"
	"testing"

	"github.com/example/ec-shop-assistant/internal/domain/product"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestFallback_Reply(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	fallback := NewFallback(product.NewService(nil, product.NewMemoryCatalog(product.Seed()), log))

	tests := []struct {
		name    string
		message string
		want    string
	}{
		{"greeting", "Hello!", greetingReply},
		{"short greeting", "hi there", greetingReply},
		{"greeting wins over search", "hey, search products", greetingReply},
		{"hi inside a word is not a greeting", "this is nothing", offlineReply},
		{"search with matches", "search shirt", "I found some products for you: Black T-Shirt, Black T-Shirt, White T-Shirt. Would you like to add any to your cart?"},
		{"buy with one match", "buy hoodie", "I found some products for you: Red Hoodie. Would you like to add any to your cart?"},
		{"products keyword", "JEANS products", "I found some products for you: Blue Jeans. Would you like to add any to your cart?"},
		{"no matches", "search for a tuxedo", noMatchReply},
		{"offline", "what time is it", offlineReply},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fallback.Reply(context.Background(), tt.message))
		})
	}
}

func TestFallback_Deterministic(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	fallback := NewFallback(product.NewService(nil, product.NewMemoryCatalog(product.Seed()), log))

	assert.Equal(t,
		fallback.Reply(context.Background(), "Search Shirt"),
		fallback.Reply(context.Background(), "  search shirt "),
	)
}
