package ocr

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/receiptly/receipt-ocr-service/internal/config"
	"github.com/receiptly/receipt-ocr-service/internal/extract"
	"github.com/receiptly/receipt-ocr-service/internal/models"
)

// LocalEngine recognizes text on-device from a preprocessed image.
type LocalEngine interface {
	Recognize(ctx context.Context, image []byte, mode PageMode) (string, float64, error)
}

// CloudEngine recognizes text through a remote provider. It receives the
// original image bytes, never the preprocessed variants.
type CloudEngine interface {
	Name() string
	RecognizeRemote(ctx context.Context, image []byte) (string, error)
}

// Processor runs the two-tier recognition pipeline: preprocess, local
// OCR on the full image plus the cropped regions, and a cloud escalation
// when the local result is too weak to trust.
type Processor struct {
	pre          *Preprocessor
	local        LocalEngine
	cloud        CloudEngine
	cloudEnabled bool
	threshold    float64
	sem          *semaphore.Weighted
	logger       *zap.Logger
}

// NewProcessor wires the pipeline from configuration. The cloud engine is
// selected by provider name; an unknown provider is an error.
func NewProcessor(cfg *config.Config, logger *zap.Logger) (*Processor, error) {
	var cloud CloudEngine
	switch cfg.Cloud.Provider {
	case "vision", "":
		cloud = NewVisionEngine(cfg.Cloud)
	case "gemini":
		cloud = NewGeminiEngine(cfg.Cloud)
	case "openai":
		cloud = NewOpenAIEngine(cfg.Cloud)
	default:
		return nil, fmt.Errorf("unknown cloud OCR provider: %s", cfg.Cloud.Provider)
	}

	if cfg.Cloud.Enabled() {
		logger.Info("cloud OCR fallback enabled", zap.String("provider", cloud.Name()))
	} else {
		logger.Info("cloud OCR fallback disabled, no API key configured")
	}

	return &Processor{
		pre:          NewPreprocessor(),
		local:        NewTesseractEngine(cfg.OCR.Languages),
		cloud:        cloud,
		cloudEnabled: cfg.Cloud.Enabled(),
		threshold:    cfg.OCR.ConfidenceThreshold,
		sem:          semaphore.NewWeighted(int64(cfg.OCR.Workers)),
		logger:       logger,
	}, nil
}

// ProcessImage recognizes a receipt image and extracts its fields. The
// engine selector is "hybrid" (default), "local" or "cloud"; hybrid runs
// the local engine first and escalates to the cloud when confidence is at
// or below the threshold or the total or merchant is missing.
func (p *Processor) ProcessImage(ctx context.Context, imageData []byte, engine string) (*models.OcrResult, error) {
	if engine == "" {
		engine = models.EngineHybrid
	}
	start := time.Now()

	var (
		text string
		data models.ExtractedData
		conf float64
		err  error
	)

	switch engine {
	case models.EngineLocal:
		text, data, conf, err = p.runLocal(ctx, imageData)
		if err != nil {
			return nil, err
		}
	case models.EngineCloud:
		text, data, conf, err = p.runCloud(ctx, imageData)
		if err != nil {
			return nil, err
		}
	case models.EngineHybrid:
		text, data, conf, err = p.runLocal(ctx, imageData)
		if err != nil {
			return nil, err
		}
		if !p.accept(data, conf) {
			p.logger.Info("escalating to cloud OCR",
				zap.Float64("localConfidence", conf),
				zap.Bool("totalFound", data.Total != nil),
				zap.Bool("merchantFound", data.Merchant != nil))
			text, data, conf, err = p.runCloud(ctx, imageData)
			if err != nil {
				return nil, err
			}
		}
	default:
		return nil, fmt.Errorf("unknown engine selector: %s", engine)
	}

	data.Confidence = conf

	return &models.OcrResult{
		Text:           text,
		ExtractedData:  data,
		Confidence:     conf,
		ProcessingTime: time.Since(start).Seconds(),
		Source:         data.Source,
		Engine:         engine,
	}, nil
}

// accept reports whether a local result is strong enough to skip the
// cloud: confidence above the threshold and both total and merchant found.
func (p *Processor) accept(data models.ExtractedData, conf float64) bool {
	return conf > p.threshold && data.Total != nil && data.Merchant != nil
}

// runLocal preprocesses the image and recognizes the full frame and both
// crops with Tesseract. Field extraction prefers the targeted crops, with
// the full-frame result as fallback.
func (p *Processor) runLocal(ctx context.Context, imageData []byte) (string, models.ExtractedData, float64, error) {
	processed, err := p.pre.Process(imageData)
	if err != nil {
		return "", models.ExtractedData{}, 0, err
	}

	if err := p.sem.Acquire(ctx, 1); err != nil {
		return "", models.ExtractedData{}, 0, err
	}
	defer p.sem.Release(1)

	fullText, conf, err := p.local.Recognize(ctx, processed.Full, PageModeSingleBlock)
	if err != nil {
		return "", models.ExtractedData{}, 0, err
	}
	bottomText, _, err := p.local.Recognize(ctx, processed.Bottom, PageModeAuto)
	if err != nil {
		return "", models.ExtractedData{}, 0, err
	}
	topText, _, err := p.local.Recognize(ctx, processed.Top, PageModeAuto)
	if err != nil {
		return "", models.ExtractedData{}, 0, err
	}

	data := extract.Extract(fullText)
	if total := extract.Total(bottomText); total != nil {
		data.Total = total
	}
	if date := extract.Date(topText); date != nil {
		data.Date = date
	}
	if merchant := extract.Merchant(topText); merchant != nil {
		data.Merchant = merchant
	}
	data.Source = models.SourceLocal

	p.logger.Debug("local recognition complete",
		zap.Float64("confidence", conf),
		zap.Int("textLength", len(fullText)))

	return fullText, data, conf, nil
}

// runCloud sends the original image to the configured provider. Cloud
// results carry a fixed confidence; a cloud failure fails the request.
func (p *Processor) runCloud(ctx context.Context, imageData []byte) (string, models.ExtractedData, float64, error) {
	if !p.cloudEnabled {
		return "", models.ExtractedData{}, 0, ErrCloudAuthMissing
	}

	text, err := p.cloud.RecognizeRemote(ctx, imageData)
	if err != nil {
		return "", models.ExtractedData{}, 0, err
	}

	data := extract.Extract(text)
	data.Source = models.SourceCloud

	p.logger.Debug("cloud recognition complete",
		zap.String("provider", p.cloud.Name()),
		zap.Int("textLength", len(text)))

	return text, data, CloudConfidence, nil
}

// CloudAvailable reports whether the cloud fallback can be used.
func (p *Processor) CloudAvailable() bool {
	return p.cloudEnabled
}
