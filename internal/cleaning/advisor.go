// internal/cleaning/advisor.go
package cleaning

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/sync/errgroup"

	"github.com/stylefeed/inventory-importer/internal/config"
	"github.com/stylefeed/inventory-importer/pkg/logger"
)

// ColorSuggestion is the advisor's verdict on one color code.
type ColorSuggestion struct {
	Bad        string  `json:"bad"`
	Good       string  `json:"good"`
	Confidence float64 `json:"confidence"`
}

// ColorAdvisor suggests expansions for abbreviation-looking color codes. It
// is advisory only: failures and timeouts must surface as empty results,
// never as pipeline errors.
type ColorAdvisor interface {
	SuggestColors(ctx context.Context, codes []string) ([]ColorSuggestion, error)
}

// OpenAIAdvisor implements ColorAdvisor over the chat-completions API with
// batched, concurrent requests and a hard per-batch timeout.
type OpenAIAdvisor struct {
	client    *openai.Client
	model     string
	timeout   time.Duration
	batchSize int
}

func NewOpenAIAdvisor(cfg config.AdvisorConfig) *OpenAIAdvisor {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	batch := cfg.BatchSize
	if batch <= 0 {
		batch = 25
	}
	return &OpenAIAdvisor{
		client:    openai.NewClient(cfg.APIKey),
		model:     cfg.Model,
		timeout:   timeout,
		batchSize: batch,
	}
}

const advisorSystemPrompt = `You expand apparel color abbreviation codes into full English color names.
Reply with a JSON object {"suggestions":[{"bad":"...","good":"...","confidence":0.0}]}.
Confidence is your certainty from 0 to 1. Use ordinary fashion color vocabulary.`

type advisorReply struct {
	Suggestions []ColorSuggestion `json:"suggestions"`
}

// SuggestColors fans the codes out in batches. A batch that errors or times
// out contributes nothing; the remaining batches still count.
func (a *OpenAIAdvisor) SuggestColors(ctx context.Context, codes []string) ([]ColorSuggestion, error) {
	if len(codes) == 0 {
		return nil, nil
	}

	var mu sync.Mutex
	var all []ColorSuggestion

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for start := 0; start < len(codes); start += a.batchSize {
		end := start + a.batchSize
		if end > len(codes) {
			end = len(codes)
		}
		batch := codes[start:end]

		g.Go(func() error {
			suggestions, err := a.suggestBatch(gctx, batch)
			if err != nil {
				// Advisory only: log and move on.
				logger.Log.Warn().Err(err).Int("batch_size", len(batch)).Msg("color advisor batch failed")
				return nil
			}
			mu.Lock()
			all = append(all, suggestions...)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return all, err
	}
	return all, nil
}

func (a *OpenAIAdvisor) suggestBatch(ctx context.Context, codes []string) ([]ColorSuggestion, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	prompt := fmt.Sprintf("Codes: %s", strings.Join(codes, ", "))
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: advisorSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion returned no choices")
	}

	var reply advisorReply
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &reply); err != nil {
		return nil, fmt.Errorf("decode advisor reply: %w", err)
	}
	return reply.Suggestions, nil
}

// NopAdvisor returns no suggestions; used when the advisor is disabled.
type NopAdvisor struct{}

func (NopAdvisor) SuggestColors(context.Context, []string) ([]ColorSuggestion, error) {
	return nil, nil
}
