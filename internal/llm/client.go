// Package llm wraps the Anthropic messages API behind the one-method
// completion interface the generator consumes.
package llm

import (
	"context"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/octavebahoun/docscrap/internal/apperrors"
	"github.com/octavebahoun/docscrap/internal/config"
	"github.com/octavebahoun/docscrap/internal/logger"
)

// Generation latency is multi-second for long pages, so the request
// timeout is deliberately generous.
const requestTimeout = 2 * time.Minute

// Client invokes the hosted model's completion endpoint.
type Client struct {
	client    anthropic.Client
	model     anthropic.Model
	maxTokens int64
	log       logger.Logger
}

// New builds a Client from the pipeline configuration.
func New(cfg config.PipelineConfig, log logger.Logger) *Client {
	return &Client{
		client: anthropic.NewClient(
			option.WithAPIKey(cfg.APIKey),
			option.WithRequestTimeout(requestTimeout),
		),
		model:     anthropic.Model(cfg.ModelName),
		maxTokens: int64(cfg.MaxTokens),
		log:       log,
	}
}

// Complete sends the prompt as a single user message and returns the
// concatenated text of the response.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	start := time.Now()

	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", apperrors.Wrap(apperrors.KindGeneration, err, "model completion call")
	}

	var sb strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	c.log.Debug("model completion finished",
		logger.String("model", string(c.model)),
		logger.Int("response_chars", sb.Len()),
		logger.Duration("duration", time.Since(start)),
	)

	return sb.String(), nil
}
