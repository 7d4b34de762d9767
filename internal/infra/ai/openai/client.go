package openai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/bryanwahyu/ai-detector/internal/domain/ai"
	"github.com/bryanwahyu/ai-detector/internal/infra/ai/prompt"
)

const (
	defaultModel     = "gpt-4o-mini"
	defaultMaxTokens = 2048
)

type Client struct {
	*openai.Client
	Model     string
	MaxTokens int
}

func NewClient(apiKey, model string, maxTokens int) *Client {
	return &Client{Client: openai.NewClient(apiKey), Model: model, MaxTokens: maxTokens}
}

// Generate sends the prompt plus any image parts as data URLs.
// Non-image media is rejected; chat completions only accept images inline.
func (c *Client) Generate(ctx context.Context, userPrompt string, parts []ai.Part) (string, error) {
	model := c.Model
	if model == "" {
		model = defaultModel
	}
	maxTokens := c.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	user := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser}
	if len(parts) == 0 {
		user.Content = userPrompt
	} else {
		user.MultiContent = []openai.ChatMessagePart{{Type: openai.ChatMessagePartTypeText, Text: userPrompt}}
		for _, p := range parts {
			if !strings.HasPrefix(p.MIMEType, "image/") {
				return "", fmt.Errorf("%w: %s", ai.ErrUnsupportedMedia, p.MIMEType)
			}
			user.MultiContent = append(user.MultiContent, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{
					URL:    "data:" + p.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(p.Data),
					Detail: openai.ImageURLDetailAuto,
				},
			})
		}
	}

	req := openai.ChatCompletionRequest{
		Model: model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.System()},
			user,
		},
	}
	// For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens
	if isReasoningModel(model) {
		req.MaxCompletionTokens = maxTokens
	} else {
		req.MaxTokens = maxTokens
	}

	resp, err := c.CreateChatCompletion(ctx, req)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
			return "", fmt.Errorf("%w: %v", ai.ErrQuotaExceeded, err)
		}
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ai.ErrEmptyReply
	}
	return resp.Choices[0].Message.Content, nil
}

func isReasoningModel(model string) bool {
	for _, p := range []string{"o1", "o3", "o4", "gpt-5"} {
		if strings.HasPrefix(model, p) {
			return true
		}
	}
	return false
}
