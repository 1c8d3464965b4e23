package ocr

import (
	"context"
	"encoding/base64"
	"fmt"

	"google.golang.org/api/option"
	vision "google.golang.org/api/vision/v1"

	"github.com/receiptly/receipt-ocr-service/internal/config"
)

// CloudConfidence is the fixed confidence reported for cloud results. The
// document-text-detection service exposes no native document-level score, so
// cloud output is treated as high-confidence by convention.
const CloudConfidence = 0.9

// VisionEngine calls the Google Vision document-text-detection endpoint.
// One HTTP round trip per image; no retry or backoff.
type VisionEngine struct {
	apiKey   string
	endpoint string
}

// NewVisionEngine builds the engine from explicit configuration; credential
// absence is checked per call rather than via lazily-initialized globals.
func NewVisionEngine(cfg config.CloudConfig) *VisionEngine {
	return &VisionEngine{
		apiKey:   cfg.APIKey,
		endpoint: cfg.Endpoint,
	}
}

func (v *VisionEngine) Name() string { return "vision" }

// RecognizeRemote base64-encodes the buffer, issues a single annotate request
// with the DOCUMENT_TEXT_DETECTION feature, and returns the full-text
// annotation.
func (v *VisionEngine) RecognizeRemote(ctx context.Context, buf []byte) (string, error) {
	if v.apiKey == "" {
		return "", ErrCloudAuthMissing
	}

	opts := []option.ClientOption{option.WithAPIKey(v.apiKey)}
	if v.endpoint != "" {
		opts = append(opts, option.WithEndpoint(v.endpoint))
	}
	svc, err := vision.NewService(ctx, opts...)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCloudRequest, err)
	}

	req := &vision.BatchAnnotateImagesRequest{
		Requests: []*vision.AnnotateImageRequest{{
			Image: &vision.Image{
				Content: base64.StdEncoding.EncodeToString(buf),
			},
			Features: []*vision.Feature{{
				Type: "DOCUMENT_TEXT_DETECTION",
			}},
		}},
	}

	resp, err := svc.Images.Annotate(req).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCloudRequest, err)
	}
	if len(resp.Responses) == 0 {
		return "", ErrCloudResponseParse
	}
	annotated := resp.Responses[0]
	if annotated.Error != nil {
		return "", fmt.Errorf("%w: %s", ErrCloudRequest, annotated.Error.Message)
	}
	if annotated.FullTextAnnotation == nil || annotated.FullTextAnnotation.Text == "" {
		return "", ErrCloudResponseParse
	}

	return annotated.FullTextAnnotation.Text, nil
}
