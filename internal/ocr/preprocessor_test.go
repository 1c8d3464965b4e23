package ocr

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testReceiptPNG renders a width x height PNG split into a darker left half
// and a lighter right half, so the contrast stretch has a range to work on.
func testReceiptPNG(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := uint8(100)
			if x >= width/2 {
				v = 150
			}
			img.Set(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestPreprocessor_CropDimensions(t *testing.T) {
	pre := NewPreprocessor()

	processed, err := pre.Process(testReceiptPNG(t, 100, 200))
	require.NoError(t, err)

	full, err := imaging.Decode(bytes.NewReader(processed.Full))
	require.NoError(t, err)
	assert.Equal(t, 100, full.Bounds().Dx())
	assert.Equal(t, 200, full.Bounds().Dy())

	bottom, err := imaging.Decode(bytes.NewReader(processed.Bottom))
	require.NoError(t, err)
	assert.Equal(t, 100, bottom.Bounds().Dx())
	assert.Equal(t, 40, bottom.Bounds().Dy()) // lowest 20%

	top, err := imaging.Decode(bytes.NewReader(processed.Top))
	require.NoError(t, err)
	assert.Equal(t, 100, top.Bounds().Dx())
	assert.Equal(t, 60, top.Bounds().Dy()) // highest 30%
}

func TestPreprocessor_ContrastStretch(t *testing.T) {
	pre := NewPreprocessor()

	processed, err := pre.Process(testReceiptPNG(t, 100, 200))
	require.NoError(t, err)

	full, err := imaging.Decode(bytes.NewReader(processed.Full))
	require.NoError(t, err)

	// The observed min and max luminance map exactly onto the target range.
	r, _, _, _ := full.At(0, 0).RGBA()
	assert.Equal(t, uint32(contrastLow), r>>8)

	r, _, _, _ = full.At(99, 0).RGBA()
	assert.Equal(t, uint32(contrastHigh), r>>8)
}

func TestPreprocessor_FlatImageUntouched(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = 128
		img.Pix[i+1] = 128
		img.Pix[i+2] = 128
		img.Pix[i+3] = 255
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	pre := NewPreprocessor()
	processed, err := pre.Process(buf.Bytes())
	require.NoError(t, err)

	full, err := imaging.Decode(bytes.NewReader(processed.Full))
	require.NoError(t, err)

	r, _, _, _ := full.At(5, 5).RGBA()
	assert.Equal(t, uint32(128), r>>8)
}

func TestPreprocessor_DecodeError(t *testing.T) {
	pre := NewPreprocessor()

	_, err := pre.Process([]byte("not an image"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrImageDecode))
}
