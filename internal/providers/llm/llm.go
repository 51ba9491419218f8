package llm

import "context"

// Provider is the one opaque text-generation capability the optimizer
// drives. Complete blocks until the provider answers or ctx is cancelled.
type Provider interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Close() error
}

// DefaultModel is used when a request does not name one.
const DefaultModel = "gemini-1.5-flash"
