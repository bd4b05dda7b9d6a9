package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/googleapis/gax-go/v2/apierror"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"nutrifases-backend/internal/types"
)

const providerGemini = "gemini"

type GeminiOptions struct {
	APIKey string
	// AccessToken authenticates with an OAuth bearer token instead of an API key.
	AccessToken string
	Model       string
	Timeout     time.Duration
}

type GeminiCompleter struct {
	client  *genai.Client
	model   *genai.GenerativeModel
	timeout time.Duration
	log     zerolog.Logger
}

func NewGeminiCompleter(ctx context.Context, opts GeminiOptions, persona Persona, logger zerolog.Logger) (*GeminiCompleter, error) {
	var clientOpt option.ClientOption
	switch {
	case opts.APIKey != "":
		clientOpt = option.WithAPIKey(opts.APIKey)
	case opts.AccessToken != "":
		clientOpt = option.WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: opts.AccessToken,
			TokenType:   "Bearer",
		}))
	default:
		return nil, ErrNoCredential
	}

	client, err := genai.NewClient(ctx, clientOpt)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	name := opts.Model
	if name == "" {
		name = "gemini-2.5-flash"
	}
	model := client.GenerativeModel(name)
	configureModel(model, persona)

	return &GeminiCompleter{
		client:  client,
		model:   model,
		timeout: opts.Timeout,
		log:     logger.With().Str("provider", providerGemini).Str("model", name).Logger(),
	}, nil
}

func configureModel(model *genai.GenerativeModel, persona Persona) {
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(persona.Instruction())}}
	model.SetTemperature(persona.Generation.Temperature)
	if persona.Generation.TopP > 0 {
		model.SetTopP(persona.Generation.TopP)
	}
	if persona.Generation.TopK > 0 {
		model.SetTopK(persona.Generation.TopK)
	}
	model.SetMaxOutputTokens(persona.Generation.MaxOutputTokens)

	for _, s := range persona.Safety {
		category, ok := harmCategories[s.Category]
		if !ok {
			continue
		}
		threshold, ok := harmThresholds[s.Threshold]
		if !ok {
			continue
		}
		model.SafetySettings = append(model.SafetySettings, &genai.SafetySetting{
			Category:  category,
			Threshold: threshold,
		})
	}
}

var harmCategories = map[string]genai.HarmCategory{
	"HARM_CATEGORY_HARASSMENT":        genai.HarmCategoryHarassment,
	"HARM_CATEGORY_HATE_SPEECH":       genai.HarmCategoryHateSpeech,
	"HARM_CATEGORY_SEXUALLY_EXPLICIT": genai.HarmCategorySexuallyExplicit,
	"HARM_CATEGORY_DANGEROUS_CONTENT": genai.HarmCategoryDangerousContent,
}

var harmThresholds = map[string]genai.HarmBlockThreshold{
	"BLOCK_LOW_AND_ABOVE":    genai.HarmBlockLowAndAbove,
	"BLOCK_MEDIUM_AND_ABOVE": genai.HarmBlockMediumAndAbove,
	"BLOCK_ONLY_HIGH":        genai.HarmBlockOnlyHigh,
	"BLOCK_NONE":             genai.HarmBlockNone,
}

func (g *GeminiCompleter) Close() error {
	return g.client.Close()
}

// Complete replays the history into a fresh chat session and sends the last
// turn. Each call gets its own session so the model handle stays read-only.
func (g *GeminiCompleter) Complete(ctx context.Context, history []types.Turn) (string, error) {
	past, last, err := splitHistory(toGeminiContents(history))
	if err != nil {
		return "", err
	}

	ctx, cancel := withTimeout(ctx, g.timeout)
	defer cancel()

	cs := g.model.StartChat()
	cs.History = past

	start := time.Now()
	resp, err := cs.SendMessage(ctx, last.Parts...)
	if err != nil {
		return "", classifyGeminiError(ctx, err)
	}
	g.log.Debug().Dur("dur_ms", time.Since(start)).Int("turns", len(history)).Msg("completion")

	text := extractText(resp)
	if text == "" {
		return "", ErrEmptyReply
	}
	return text, nil
}

// splitHistory separates the turn to send from the replayed history.
// SendMessage always sends as the user, so a trailing model turn is refused
// rather than silently re-labelled.
func splitHistory(contents []*genai.Content) ([]*genai.Content, *genai.Content, error) {
	if len(contents) == 0 {
		return nil, nil, fmt.Errorf("gemini: empty history")
	}
	last := contents[len(contents)-1]
	if last.Role != "user" {
		return nil, nil, fmt.Errorf("%w: gemini: history must end with a user turn", ErrUnsupportedHistory)
	}
	return contents[:len(contents)-1], last, nil
}

func toGeminiContents(history []types.Turn) []*genai.Content {
	out := make([]*genai.Content, 0, len(history))
	for _, t := range history {
		out = append(out, &genai.Content{
			Role:  geminiRole(t.Role),
			Parts: []genai.Part{genai.Text(t.Text())},
		})
	}
	return out
}

func geminiRole(role string) string {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case "model", "assistant", "bot":
		return "model"
	default:
		return "user"
	}
}

// extractText reads the first candidate only; extra candidates are not requested.
func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}
	return text.String()
}

func classifyGeminiError(ctx context.Context, err error) error {
	if terr := timeoutError(ctx, err); terr != nil {
		return terr
	}

	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		return &ProviderError{Provider: providerGemini, StatusCode: apiErr.HTTPCode(), Err: err}
	}
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return &ProviderError{Provider: providerGemini, StatusCode: gErr.Code, Err: err}
	}
	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		return &ProviderError{Provider: providerGemini, Err: err}
	}
	return err
}
