package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	domai "github.com/jholscan/jholscan/internal/domain/ai"
	"github.com/jholscan/jholscan/internal/infra/ai/prompt"
)

const maxTokens = 4096

type Client struct {
	*openai.Client
	Model string
}

func NewClient(apiKey, model string) *Client {
	return &Client{Client: openai.NewClient(apiKey), Model: model}
}

// Analyze sends one analysis request and returns the raw response text.
func (c *Client) Analyze(ctx context.Context, req domai.Request) (string, error) {
	model := c.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	user, err := userMessage(req)
	if err != nil {
		return "", err
	}

	chatReq := openai.ChatCompletionRequest{
		Model: model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.System()},
			user,
		},
		Temperature: temperatureFor(req.Mode),
	}
	// For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens
	if strings.HasPrefix(model, "o1") || strings.HasPrefix(model, "o3") || strings.HasPrefix(model, "o4") || strings.HasPrefix(model, "gpt-5") {
		chatReq.MaxCompletionTokens = maxTokens
	} else {
		chatReq.MaxTokens = maxTokens
	}

	resp, err := c.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == 429 {
			return "", domai.ErrQuotaExceeded
		}
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", domai.ErrEmptyResponse
	}

	return resp.Choices[0].Message.Content, nil
}

// userMessage builds the user turn. Text goes inline; image payloads travel
// as vision parts (data URL); other uploads are referenced by their archive
// URL since the chat API cannot carry arbitrary documents inline.
func userMessage(req domai.Request) (openai.ChatCompletionMessage, error) {
	if !req.IsBinary() {
		return openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleUser,
			Content: prompt.UserWithText(req.Mode, req.Text),
		}, nil
	}

	if strings.HasPrefix(req.MIMEType, "image/") {
		dataURL := fmt.Sprintf("data:%s;base64,%s", req.MIMEType, req.Data)
		return openai.ChatCompletionMessage{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{Type: openai.ChatMessagePartTypeText, Text: prompt.User(req.Mode)},
				{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{
					URL:    dataURL,
					Detail: openai.ImageURLDetailAuto,
				}},
			},
		}, nil
	}

	if req.FileURL == "" {
		return openai.ChatCompletionMessage{}, fmt.Errorf("document analysis requires an archived upload URL")
	}
	return openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt.UserWithFileURL(req.Mode, req.FileURL),
	}, nil
}

// temperatureFor keeps detection analytical and humanization creative.
func temperatureFor(mode domai.RequestMode) float32 {
	if mode == domai.RequestHumanize {
		return 0.7
	}
	return 0.4
}
