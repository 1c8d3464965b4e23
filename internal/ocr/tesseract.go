package ocr

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

// PageMode selects the Tesseract page segmentation strategy.
type PageMode int

const (
	// PageModeAuto uses the engine's default segmentation; better for narrow
	// crops where block-mode performs worse.
	PageModeAuto PageMode = iota
	// PageModeSingleBlock treats the image as a single uniform block of text;
	// used for the full receipt image.
	PageModeSingleBlock
)

// TesseractEngine wraps the on-process Tesseract OCR library. A fresh client
// is constructed per recognition call: engine state is not reusable across
// distinct image buffers within a request.
type TesseractEngine struct {
	languages     []string
	clientFactory func() *gosseract.Client
}

// NewTesseractEngine builds a local engine loading the given tessdata
// languages together, so a single receipt may mix scripts.
func NewTesseractEngine(languages []string) *TesseractEngine {
	if len(languages) == 0 {
		languages = []string{"eng"}
	}
	return &TesseractEngine{
		languages:     languages,
		clientFactory: gosseract.NewClient,
	}
}

// Recognize runs OCR over one image buffer and returns the raw text together
// with the engine's mean per-word confidence normalized to [0,1]. Errors
// propagate to the caller; there is no in-component retry.
func (e *TesseractEngine) Recognize(ctx context.Context, buf []byte, mode PageMode) (string, float64, error) {
	select {
	case <-ctx.Done():
		return "", 0, ctx.Err()
	default:
	}

	client := e.clientFactory()
	defer client.Close()

	if err := client.SetLanguage(e.languages...); err != nil {
		return "", 0, fmt.Errorf("%w: %v", ErrLocalEngineInit, err)
	}

	psm := gosseract.PSM_AUTO
	if mode == PageModeSingleBlock {
		psm = gosseract.PSM_SINGLE_BLOCK
	}
	if err := client.SetPageSegMode(psm); err != nil {
		return "", 0, fmt.Errorf("%w: %v", ErrLocalEngineInit, err)
	}

	if err := client.SetImageFromBytes(buf); err != nil {
		return "", 0, fmt.Errorf("%w: %v", ErrLocalRecognition, err)
	}

	text, err := client.Text()
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", ErrLocalRecognition, err)
	}

	return text, meanWordConfidence(client), nil
}

// meanWordConfidence averages Tesseract's per-word confidences (0-100 scale)
// and normalizes into [0,1]. No recognized words yields 0.
func meanWordConfidence(client *gosseract.Client) float64 {
	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil || len(boxes) == 0 {
		return 0
	}
	var sum float64
	for _, b := range boxes {
		sum += b.Confidence
	}
	conf := sum / float64(len(boxes)) / 100.0
	if conf < 0 {
		return 0
	}
	if conf > 1 {
		return 1
	}
	return conf
}
