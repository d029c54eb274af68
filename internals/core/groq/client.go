// Package groq talks to Groq's OpenAI-compatible chat completions endpoint.
package groq

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

var ErrNotConfigured = errors.New("groq api key not configured")

type Client struct {
	model string
	api   *openai.Client
}

func NewClient(apiKey, model, baseURL string) *Client {
	if apiKey == "" {
		return &Client{model: model}
	}

	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = strings.TrimRight(baseURL, "/")
	cfg.HTTPClient = &http.Client{Timeout: 20 * time.Second}

	return &Client{model: model, api: openai.NewClientWithConfig(cfg)}
}

func (c *Client) Enabled() bool {
	return c != nil && c.api != nil
}

const captionSystemPrompt = "Eres un experto en marketing para pequeños negocios locales. " +
	"Escribe publicaciones breves, cálidas y en español para Facebook, con máximo tres emojis y dos hashtags."

// Complete sends a system+user prompt and returns the first choice's content.
func (c *Client) Complete(ctx context.Context, system, prompt string) (string, error) {
	if !c.Enabled() {
		return "", ErrNotConfigured
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.7,
		MaxTokens:   300,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("groq returned %d: %s", apiErr.HTTPStatusCode, apiErr.Message)
		}
		return "", fmt.Errorf("groq request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("groq returned an empty completion")
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", errors.New("groq returned an empty completion")
	}
	return content, nil
}

// ProductCaption asks the model for a Facebook caption for a product.
func (c *Client) ProductCaption(ctx context.Context, vendorName, productName, description string, price float64) (string, error) {
	prompt := fmt.Sprintf(
		"Negocio: %s\nProducto: %s\nPrecio: $%.2f\nDescripción: %s\nEscribe la publicación.",
		vendorName, productName, price, description,
	)
	return c.Complete(ctx, captionSystemPrompt, prompt)
}
