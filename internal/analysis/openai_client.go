package analysis

import (
	"context"
	"errors"
	"time"

	"github.com/aleister1102/changewatch/internal/config"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

// OpenAIClient talks to an OpenAI-compatible chat completion endpoint. It is built
// once from explicit configuration and passed to every stage.
type OpenAIClient struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
	timeout     time.Duration
	limiter     *rate.Limiter
	logger      zerolog.Logger
}

// NewOpenAIClient creates a client from the analysis configuration.
func NewOpenAIClient(cfg config.AnalysisConfig, logger zerolog.Logger) (*OpenAIClient, error) {
	logger = logger.With().Str("component", "OpenAIClient").Logger()
	if cfg.Model == "" {
		return nil, errors.New("analysis model is not configured")
	}
	if cfg.APIKey == "" {
		logger.Warn().Str("base_url", cfg.BaseURL).Msg("No API key configured, requests will be sent unauthenticated")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = config.DefaultAnalysisRequestsPerMinute
	}

	logger.Debug().Str("model", cfg.Model).Int("requests_per_minute", rpm).Msg("Analysis client initialized")
	return &OpenAIClient{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout(),
		limiter:     rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 1),
		logger:      logger,
	}, nil
}

// Complete sends instructions as the system message and payload as the user message.
func (c *OpenAIClient) Complete(ctx context.Context, instructions, payload string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", &TransportError{Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: instructions},
			{Role: openai.ChatMessageRoleUser, Content: payload},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		c.logger.Error().Err(err).Str("model", c.model).Msg("Chat completion failed")
		return "", &TransportError{Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoResult
	}

	c.logger.Debug().
		Str("model", c.model).
		Str("finish_reason", string(resp.Choices[0].FinishReason)).
		Int("prompt_tokens", resp.Usage.PromptTokens).
		Int("completion_tokens", resp.Usage.CompletionTokens).
		Dur("elapsed", time.Since(start)).
		Msg("Chat completion received")
	return resp.Choices[0].Message.Content, nil
}
