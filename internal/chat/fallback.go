package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/ec-shop-assistant/internal/domain/product"
)

const (
	greetingReply = "Hello! I am your shopping assistant. You can ask me to search for products!"
	noMatchReply  = "I couldn't find any products matching that description."
	offlineReply  = "I am currently in offline mode. Please ask about products!"

	fallbackTopN = 3
)

var (
	greetingWords  = []string{"hello", "hi", "hey"}
	searchTriggers = []string{"product", "buy", "search"}
	// Longest first so "products" is not left as "s".
	strippedWords = []string{"products", "product", "search", "buy"}
)

// ProductSearcher is the catalog capability the fallback needs.
type ProductSearcher interface {
	Search(ctx context.Context, f product.Filter) []product.Product
}

// Fallback produces deterministic keyword-driven replies when the reasoning
// engine cannot be used.
type Fallback struct {
	catalog ProductSearcher
}

func NewFallback(catalog ProductSearcher) *Fallback {
	return &Fallback{catalog: catalog}
}

// Reply answers message without the reasoning engine.
func (f *Fallback) Reply(ctx context.Context, message string) string {
	msg := strings.ToLower(strings.TrimSpace(message))

	if hasWord(msg, greetingWords) {
		return greetingReply
	}

	if containsAny(msg, searchTriggers) {
		q := msg
		for _, w := range strippedWords {
			q = strings.ReplaceAll(q, w, "")
		}
		q = strings.Join(strings.Fields(q), " ")

		results := f.catalog.Search(ctx, product.Filter{Query: q})
		if len(results) == 0 {
			return noMatchReply
		}
		if len(results) > fallbackTopN {
			results = results[:fallbackTopN]
		}
		names := make([]string, len(results))
		for i, p := range results {
			names[i] = p.Name
		}
		return fmt.Sprintf("I found some products for you: %s. Would you like to add any to your cart?", strings.Join(names, ", "))
	}

	return offlineReply
}

// hasWord reports whether msg contains one of words as a whole word.
func hasWord(msg string, words []string) bool {
	for _, field := range strings.FieldsFunc(msg, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	}) {
		for _, w := range words {
			if field == w {
				return true
			}
		}
	}
	return false
}

func containsAny(msg string, subs []string) bool {
	for _, s := range subs {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
