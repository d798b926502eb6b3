package ai

import "context"

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Options are the decoding parameters sent with every request.
type Options struct {
	MaxTokens   int
	Temperature float64
}

type Provider interface {
	Chat(ctx context.Context, messages []Message) (string, error)
}
