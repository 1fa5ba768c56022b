package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"go.uber.org/zap"

	"github.com/fastygo/learnpath/internal/config"
	"github.com/fastygo/learnpath/usecase"
)

// Client adapts a langchaingo model to usecase.Generator.
type Client struct {
	model       llms.Model
	temperature float64
	timeout     time.Duration
	logger      *zap.Logger
}

var _ usecase.Generator = (*Client)(nil)

// NewGoogleAI builds a Gemini-backed client from configuration.
func NewGoogleAI(ctx context.Context, cfg config.GenerationConfig, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("generation api key is not configured")
	}
	model, err := googleai.New(ctx,
		googleai.WithAPIKey(cfg.APIKey),
		googleai.WithDefaultModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("googleai client: %w", err)
	}
	return New(model, cfg.Temperature, cfg.Timeout, logger), nil
}

func New(model llms.Model, temperature float64, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		model:       model,
		temperature: temperature,
		timeout:     timeout,
		logger:      logger,
	}
}

// Generate sends prompt as a single human message and returns the text of the first choice.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := llms.GenerateFromSinglePrompt(ctx, c.model, prompt, llms.WithTemperature(c.temperature))
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	c.logger.Debug("model responded",
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("length", len(text)))
	return text, nil
}
