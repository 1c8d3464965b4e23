package ocr

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Receipts have a semi-fixed vertical layout: totals sit near the bottom,
// merchant name and date near the top. Restricting recognition to those
// regions cuts noise and improves per-region accuracy.
const (
	bottomCropRatio = 0.20
	topCropRatio    = 0.30

	// Target luminance range for the linear contrast stretch.
	contrastLow  = 50
	contrastHigh = 200
)

// ProcessedImage holds the OCR-ready buffers produced from one raw image.
// All three are PNG-encoded grayscale.
type ProcessedImage struct {
	Full   []byte // whole image, contrast-stretched
	Bottom []byte // lowest 20% of image height (totals)
	Top    []byte // highest 30% of image height (merchant, date)
}

// Preprocessor normalizes raw receipt photos into OCR-friendly buffers and
// produces targeted sub-region crops. It is a stateless transform.
type Preprocessor struct{}

func NewPreprocessor() *Preprocessor {
	return &Preprocessor{}
}

// Process decodes the raw image, converts it to grayscale, stretches contrast
// into [contrastLow, contrastHigh], and re-encodes the full image plus the
// bottom and top crops.
func (p *Preprocessor) Process(imageData []byte) (*ProcessedImage, error) {
	img, err := imaging.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageDecode, err)
	}

	gray := imaging.Grayscale(img)
	stretchContrast(gray, contrastLow, contrastHigh)

	bounds := gray.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	bottom := imaging.Crop(gray, image.Rect(0, h-int(float64(h)*bottomCropRatio), w, h))
	top := imaging.Crop(gray, image.Rect(0, 0, w, int(float64(h)*topCropRatio)))

	full, err := encodePNG(gray)
	if err != nil {
		return nil, err
	}
	bottomBuf, err := encodePNG(bottom)
	if err != nil {
		return nil, err
	}
	topBuf, err := encodePNG(top)
	if err != nil {
		return nil, err
	}

	return &ProcessedImage{Full: full, Bottom: bottomBuf, Top: topBuf}, nil
}

// stretchContrast linearly remaps the observed luminance range of a grayscale
// image into [lo, hi]. A flat image (single luminance value) is left as-is.
func stretchContrast(img *image.NRGBA, lo, hi uint8) {
	minV, maxV := uint8(255), uint8(0)
	for i := 0; i < len(img.Pix); i += 4 {
		v := img.Pix[i] // grayscale: R == G == B
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}
	if maxV <= minV {
		return
	}

	span := float64(maxV - minV)
	target := float64(hi - lo)
	for i := 0; i < len(img.Pix); i += 4 {
		v := uint8(float64(lo) + float64(img.Pix[i]-minV)/span*target)
		img.Pix[i] = v
		img.Pix[i+1] = v
		img.Pix[i+2] = v
	}
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageEncode, err)
	}
	return buf.Bytes(), nil
}
