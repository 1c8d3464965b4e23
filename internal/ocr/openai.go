package ocr

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/receiptly/receipt-ocr-service/internal/config"
)

// OpenAIEngine is an alternate cloud text-detection provider backed by an
// OpenAI vision-capable chat model.
type OpenAIEngine struct {
	apiKey   string
	model    string
	endpoint string
}

func NewOpenAIEngine(cfg config.CloudConfig) *OpenAIEngine {
	model := cfg.Model
	if model == "" {
		model = openai.GPT4o
	}
	return &OpenAIEngine{apiKey: cfg.APIKey, model: model, endpoint: cfg.Endpoint}
}

func (o *OpenAIEngine) Name() string { return "openai" }

func (o *OpenAIEngine) RecognizeRemote(ctx context.Context, buf []byte) (string, error) {
	if o.apiKey == "" {
		return "", ErrCloudAuthMissing
	}

	clientCfg := openai.DefaultConfig(o.apiKey)
	if o.endpoint != "" {
		clientCfg.BaseURL = o.endpoint
	}
	client := openai.NewClientWithConfig(clientCfg)

	imageURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf)
	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{Type: openai.ChatMessagePartTypeText, Text: transcribePrompt},
				{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{URL: imageURL}},
			},
		}},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCloudRequest, err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrCloudResponseParse
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", ErrCloudResponseParse
	}
	return text, nil
}
