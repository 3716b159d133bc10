// Package llm wraps the text-generation backends behind a single chat
// completion interface. The agent treats any backend failure as a reported
// condition, never a crash, so the rest of the system keeps working without
// a model configured.
package llm

import (
	"context"
	"fmt"
	"time"
)

const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Message is one turn of a chat completion request.
type Message struct {
	Role    string
	Content string
}

// Completer is the single operation the agents need from a backend.
type Completer interface {
	Complete(ctx context.Context, messages []Message) (string, error)
	Close() error
}

// Config holds backend settings. Temperature near zero keeps condition
// synthesis deterministic.
type Config struct {
	Backend        string
	Model          string
	BaseURL        string
	APIKey         string
	Temperature    float32
	MaxTokens      int
	RequestTimeout time.Duration
}

// NewCompleter constructs the configured backend client.
func NewCompleter(ctx context.Context, cfg Config) (Completer, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("cannot create completion client: model is not configured")
	}
	switch cfg.Backend {
	case "", "openai", "ollama":
		return newOpenAIClient(cfg), nil
	case "gemini":
		return newGeminiClient(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported completion backend: %s", cfg.Backend)
	}
}
