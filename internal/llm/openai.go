package llm

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"nutrifases-backend/internal/types"
)

const providerOpenAI = "openai"

type OpenAIOptions struct {
	APIKey string
	// BaseURL points at any OpenAI-compatible endpoint; empty means api.openai.com.
	BaseURL string
	Model   string
	Timeout time.Duration
}

type OpenAICompleter struct {
	client  *openai.Client
	model   string
	persona Persona
	timeout time.Duration
	log     zerolog.Logger
}

func NewOpenAICompleter(opts OpenAIOptions, persona Persona, logger zerolog.Logger) *OpenAICompleter {
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	}
	model := opts.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAICompleter{
		client:  openai.NewClientWithConfig(cfg),
		model:   model,
		persona: persona,
		timeout: opts.Timeout,
		log:     logger.With().Str("provider", providerOpenAI).Str("model", model).Logger(),
	}
}

func (o *OpenAICompleter) Complete(ctx context.Context, history []types.Turn) (string, error) {
	ctx, cancel := withTimeout(ctx, o.timeout)
	defer cancel()

	start := time.Now()
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.model,
		Temperature: o.persona.Generation.Temperature,
		TopP:        o.persona.Generation.TopP,
		MaxTokens:   int(o.persona.Generation.MaxOutputTokens),
		Messages:    o.convertMessages(history),
	})
	if err != nil {
		return "", classifyOpenAIError(ctx, err)
	}
	o.log.Debug().Dur("dur_ms", time.Since(start)).Int("turns", len(history)).Msg("completion")

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", ErrEmptyReply
	}
	return resp.Choices[0].Message.Content, nil
}

func (o *OpenAICompleter) convertMessages(history []types.Turn) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	out = append(out, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: o.persona.Instruction(),
	})
	for _, t := range history {
		out = append(out, openai.ChatCompletionMessage{Role: openAIRole(t.Role), Content: t.Text()})
	}
	return out
}

func openAIRole(role string) string {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case "model", "assistant", "bot":
		return openai.ChatMessageRoleAssistant
	case "system":
		return openai.ChatMessageRoleSystem
	default:
		return openai.ChatMessageRoleUser
	}
}

func classifyOpenAIError(ctx context.Context, err error) error {
	if terr := timeoutError(ctx, err); terr != nil {
		return terr
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &ProviderError{Provider: providerOpenAI, StatusCode: apiErr.HTTPStatusCode, Err: err}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &ProviderError{Provider: providerOpenAI, StatusCode: reqErr.HTTPStatusCode, Err: err}
	}
	return err
}
