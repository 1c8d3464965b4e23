package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/receiptly/receipt-ocr-service/internal/config"
)

// transcribePrompt asks vision-capable models for a plain transcription so
// their output feeds the same field extractor as the other engines.
const transcribePrompt = "Transcribe all text visible in this receipt image. " +
	"Return only the raw text exactly as printed, preserving line breaks. " +
	"Do not translate, summarize, or add commentary."

// GeminiEngine is an alternate cloud text-detection provider backed by the
// Gemini vision API. Like the Vision engine it returns raw text only; the
// orchestrator treats all cloud providers identically.
type GeminiEngine struct {
	apiKey string
	model  string
}

func NewGeminiEngine(cfg config.CloudConfig) *GeminiEngine {
	model := cfg.Model
	if model == "" {
		model = "gemini-1.5-flash"
	}
	return &GeminiEngine{apiKey: cfg.APIKey, model: model}
}

func (g *GeminiEngine) Name() string { return "gemini" }

func (g *GeminiEngine) RecognizeRemote(ctx context.Context, buf []byte) (string, error) {
	if g.apiKey == "" {
		return "", ErrCloudAuthMissing
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(g.apiKey))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCloudRequest, err)
	}
	defer client.Close()

	model := client.GenerativeModel(g.model)
	resp, err := model.GenerateContent(ctx,
		genai.ImageData("png", buf),
		genai.Text(transcribePrompt),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCloudRequest, err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrCloudResponseParse
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", ErrCloudResponseParse
	}
	return text, nil
}
