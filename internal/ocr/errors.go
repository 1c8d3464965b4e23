package ocr

import "errors"

// Stage errors are terminal for the current request; none are retried
// internally. Callers match them with errors.Is to report which stage failed.
var (
	// ErrImageDecode means the input could not be decoded as an image.
	// Non-retryable; the caller must supply a different image.
	ErrImageDecode = errors.New("image decode failed")

	// ErrImageEncode means a processed buffer could not be re-serialized.
	ErrImageEncode = errors.New("image encode failed")

	// ErrLocalEngineInit means the Tesseract model or language data could not
	// be loaded.
	ErrLocalEngineInit = errors.New("local OCR engine initialization failed")

	// ErrLocalRecognition means local recognition itself failed.
	ErrLocalRecognition = errors.New("local OCR recognition failed")

	// ErrCloudAuthMissing means no cloud credential is configured. The cloud
	// selector and the hybrid escalation path fail fast with this error
	// before any call is attempted.
	ErrCloudAuthMissing = errors.New("cloud OCR credentials not configured")

	// ErrCloudRequest covers transport failures talking to the cloud service.
	ErrCloudRequest = errors.New("cloud OCR request failed")

	// ErrCloudResponseParse means the cloud response lacked the expected
	// text annotation.
	ErrCloudResponseParse = errors.New("cloud OCR response missing text annotation")
)
