// Package ai is the text-generation collaborator: a single chat-completion
// call against an OpenAI-compatible endpoint.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// SystemPrompt is the fixed system instruction of every request.
const SystemPrompt = "You are a helpful legal assistant that drafts professional legal documents."

// ErrGenerationFailed is the single failure every generation error maps to.
// Users see it as the "ai_failed" message.
var ErrGenerationFailed = errors.New("failed to generate document")

// Generator produces text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Config configures a Client.
type Config struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
	// Temperature is sent as given; nil takes the default.
	Temperature *float64
}

const defaultTemperature = 0.2

// DefaultConfig returns the fixed request parameters. No client timeout is
// set; a request lives as long as its context.
func DefaultConfig(apiKey string) Config {
	t := defaultTemperature
	return Config{
		APIKey:      apiKey,
		BaseURL:     "https://api.openai.com/v1",
		Model:       "gpt-3.5-turbo",
		MaxTokens:   1024,
		Temperature: &t,
	}
}

// Client calls the chat-completions endpoint.
type Client struct {
	cfg        Config
	httpClient *http.Client
	log        *zap.Logger
}

// NewClient returns a Client. Zero fields of cfg take DefaultConfig values.
func NewClient(cfg Config, log *zap.Logger) *Client {
	def := DefaultConfig(cfg.APIKey)
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.Model == "" {
		cfg.Model = def.Model
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = def.MaxTokens
	}
	if cfg.Temperature == nil {
		cfg.Temperature = def.Temperature
	}
	if log == nil {
		log = zap.NewNop()
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{cfg: cfg, httpClient: &http.Client{}, log: log.Named("ai")}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
}

// Generate sends prompt once. Any transport error, non-2xx status or
// unreadable body is reported as ErrGenerationFailed; there is no retry.
// A response without choices yields an empty string.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	text, err := c.generate(ctx, prompt)
	if err != nil {
		c.log.Warn("generation failed", zap.Duration("took", time.Since(start)), zap.Error(err))
		return "", fmt.Errorf("%w (%v)", ErrGenerationFailed, err)
	}
	c.log.Debug("generation done", zap.Duration("took", time.Since(start)), zap.Int("prompt_len", len(prompt)), zap.Int("response_len", len(text)))
	return text, nil
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []message{
			{Role: "system", Content: SystemPrompt},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: *c.cfg.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}
	var out chatResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", nil
	}
	return out.Choices[0].Message.Content, nil
}
