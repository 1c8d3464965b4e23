package ocr

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/receiptly/receipt-ocr-service/internal/config"
)

func visionTestServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestVisionEngine_RecognizeRemote(t *testing.T) {
	srv := visionTestServer(t,
		`{"responses":[{"fullTextAnnotation":{"text":"Coffee Shop\nTOTAL 42.99"}}]}`)

	engine := NewVisionEngine(config.CloudConfig{APIKey: "test-key", Endpoint: srv.URL})

	text, err := engine.RecognizeRemote(context.Background(), []byte("fake image"))
	require.NoError(t, err)
	assert.Equal(t, "Coffee Shop\nTOTAL 42.99", text)
}

func TestVisionEngine_MissingAPIKey(t *testing.T) {
	engine := NewVisionEngine(config.CloudConfig{})

	_, err := engine.RecognizeRemote(context.Background(), []byte("fake image"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCloudAuthMissing))
}

func TestVisionEngine_EmptyResponses(t *testing.T) {
	srv := visionTestServer(t, `{"responses":[]}`)

	engine := NewVisionEngine(config.CloudConfig{APIKey: "test-key", Endpoint: srv.URL})

	_, err := engine.RecognizeRemote(context.Background(), []byte("fake image"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCloudResponseParse))
}

func TestVisionEngine_AnnotationError(t *testing.T) {
	srv := visionTestServer(t,
		`{"responses":[{"error":{"code":3,"message":"bad image"}}]}`)

	engine := NewVisionEngine(config.CloudConfig{APIKey: "test-key", Endpoint: srv.URL})

	_, err := engine.RecognizeRemote(context.Background(), []byte("fake image"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCloudRequest))
	assert.Contains(t, err.Error(), "bad image")
}

func TestVisionEngine_MissingAnnotation(t *testing.T) {
	srv := visionTestServer(t, `{"responses":[{}]}`)

	engine := NewVisionEngine(config.CloudConfig{APIKey: "test-key", Endpoint: srv.URL})

	_, err := engine.RecognizeRemote(context.Background(), []byte("fake image"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCloudResponseParse))
}

func TestVisionEngine_Name(t *testing.T) {
	assert.Equal(t, "vision", NewVisionEngine(config.CloudConfig{}).Name())
}
