package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"nutrifases-backend/internal/config"
	"nutrifases-backend/internal/types"
)

// Completer turns a conversation history into a single reply text.
// Implementations must be safe for concurrent use.
type Completer interface {
	Complete(ctx context.Context, history []types.Turn) (string, error)
}

var (
	// ErrTimeout is returned when the provider does not answer within the
	// configured deadline.
	ErrTimeout = errors.New("completion timed out")
	// ErrEmptyReply means the provider answered without any text.
	ErrEmptyReply = errors.New("completion returned no text")
	// ErrNoCredential means the selected provider has nothing to authenticate with.
	ErrNoCredential = errors.New("no credential configured")
	// ErrUnsupportedHistory means the provider cannot send the history as given.
	ErrUnsupportedHistory = errors.New("history is not supported by the provider")
)

// ProviderError is a failure reported by the upstream service itself:
// bad credential, quota, blocked content, transient fault.
type ProviderError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// New builds the completer selected by cfg. It returns ErrNoCredential when
// the provider has no credential; callers keep running without a completer.
func New(ctx context.Context, cfg config.Config, persona Persona, logger zerolog.Logger) (Completer, error) {
	if !cfg.HasCredential() {
		return nil, ErrNoCredential
	}
	switch cfg.Provider {
	case config.ProviderGemini:
		g, err := NewGeminiCompleter(ctx, GeminiOptions{
			APIKey:      cfg.GeminiAPIKey,
			AccessToken: cfg.GeminiAccessToken,
			Model:       cfg.GeminiModel,
			Timeout:     cfg.LLMTimeout,
		}, persona, logger)
		if err != nil {
			return nil, err
		}
		return g, nil
	case config.ProviderOpenAI:
		return NewOpenAICompleter(OpenAIOptions{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.OpenAIModel,
			Timeout: cfg.LLMTimeout,
		}, persona, logger), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = 30 * time.Second
	}
	return context.WithTimeout(ctx, d)
}

// timeoutError reports whether the call's own deadline fired, independent of
// how the transport wrapped the failure.
func timeoutError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return nil
}
