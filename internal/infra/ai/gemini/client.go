package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"

	"github.com/bryanwahyu/ai-detector/internal/domain/ai"
	"github.com/bryanwahyu/ai-detector/internal/infra/ai/prompt"
)

const defaultModel = "gemini-2.5-flash"

// Client generates replies with Google's Gemini API.
type Client struct {
	client    *genai.Client
	model     string
	maxTokens int32
}

// NewClient creates a Gemini client. The API key is required.
func NewClient(ctx context.Context, apiKey, model string, maxTokens int) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if model == "" {
		model = defaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &Client{client: client, model: model, maxTokens: int32(maxTokens)}, nil
}

// Generate sends the prompt with inline media parts and asks for JSON back.
func (c *Client) Generate(ctx context.Context, userPrompt string, parts []ai.Part) (string, error) {
	gparts := make([]*genai.Part, 0, len(parts)+1)
	gparts = append(gparts, genai.NewPartFromText(userPrompt))
	for _, p := range parts {
		gparts = append(gparts, genai.NewPartFromBytes(p.Data, p.MIMEType))
	}
	contents := []*genai.Content{genai.NewContentFromParts(gparts, genai.RoleUser)}

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(prompt.System(), genai.RoleUser),
		ResponseMIMEType:  "application/json",
	}
	if c.maxTokens > 0 {
		cfg.MaxOutputTokens = c.maxTokens
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
			return "", fmt.Errorf("%w: %v", ai.ErrQuotaExceeded, err)
		}
		return "", fmt.Errorf("gemini generate failed: %w", err)
	}

	out := resp.Text()
	if out == "" {
		return "", ai.ErrEmptyReply
	}
	return out, nil
}
