package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/receiptly/receipt-ocr-service/internal/auth"
	"github.com/receiptly/receipt-ocr-service/internal/config"
	"github.com/receiptly/receipt-ocr-service/internal/db"
	"github.com/receiptly/receipt-ocr-service/internal/models"
	"github.com/receiptly/receipt-ocr-service/internal/ocr"
	"github.com/receiptly/receipt-ocr-service/internal/storage"
)

const (
	MaxUploadSize = 10 * 1024 * 1024 // 10MB
	Version       = "1.2.0"
)

// ReceiptProcessor is the recognition pipeline the handler drives.
type ReceiptProcessor interface {
	ProcessImage(ctx context.Context, imageData []byte, engine string) (*models.OcrResult, error)
	CloudAvailable() bool
}

// Handler handles HTTP requests for receipt processing
type Handler struct {
	config    *config.Config
	processor ReceiptProcessor
	logger    *zap.Logger
}

// NewHandler creates a new API handler
func NewHandler(cfg *config.Config, processor ReceiptProcessor, logger *zap.Logger) *Handler {
	return &Handler{
		config:    cfg,
		processor: processor,
		logger:    logger,
	}
}

// SetupRoutes configures the HTTP routes
func (h *Handler) SetupRoutes() *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/api/process-receipt", h.ProcessReceipt).Methods("POST")
	router.HandleFunc("/api/transactions", h.GetTransactions).Methods("GET")

	// Health check
	router.HandleFunc("/health", h.Health).Methods("GET")

	return router
}

// HealthResponse represents the health check response structure
type HealthResponse struct {
	Status    string        `json:"status"`
	Version   string        `json:"version"`
	Timestamp string        `json:"timestamp"`
	Uptime    string        `json:"uptime"`
	Memory    MemoryStats   `json:"memory"`
	Tesseract ServiceStatus `json:"tesseract"`
	Database  ServiceStatus `json:"database"`
	Storage   ServiceStatus `json:"storage"`
	Cloud     ServiceStatus `json:"cloud"`
}

// MemoryStats represents memory usage statistics
type MemoryStats struct {
	Allocated string `json:"allocated"`
	Total     string `json:"total"`
	System    string `json:"system"`
}

// ServiceStatus represents the status of a service dependency
type ServiceStatus struct {
	Available bool   `json:"available"`
	Version   string `json:"version,omitempty"`
	Error     string `json:"error,omitempty"`
}

var startTime = time.Now()

// Health endpoint - enhanced for monitoring
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	tesseractStatus := h.checkTesseract()

	response := HealthResponse{
		Status:    "healthy",
		Version:   Version,
		Timestamp: time.Now().Format(time.RFC3339),
		Uptime:    time.Since(startTime).String(),
		Memory: MemoryStats{
			Allocated: fmt.Sprintf("%.2f MB", float64(m.Alloc)/1024/1024),
			Total:     fmt.Sprintf("%.2f MB", float64(m.TotalAlloc)/1024/1024),
			System:    fmt.Sprintf("%.2f MB", float64(m.Sys)/1024/1024),
		},
		Tesseract: tesseractStatus,
		Database:  h.checkDatabase(),
		Storage:   h.checkStorage(),
		Cloud:     h.checkCloud(),
	}

	// The local engine is the only hard dependency
	if !tesseractStatus.Available {
		response.Status = "degraded"
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	json.NewEncoder(w).Encode(response)
}

// checkTesseract verifies Tesseract OCR is available
func (h *Handler) checkTesseract() ServiceStatus {
	cmd := exec.Command("tesseract", "--version")
	output, err := cmd.CombinedOutput()

	if err != nil {
		return ServiceStatus{
			Available: false,
			Error:     "tesseract not found or not executable",
		}
	}

	version := "unknown"
	lines := strings.Split(string(output), "\n")
	if len(lines) > 0 {
		version = strings.TrimSpace(lines[0])
	}

	return ServiceStatus{
		Available: true,
		Version:   version,
	}
}

// checkDatabase verifies PostgreSQL connection
func (h *Handler) checkDatabase() ServiceStatus {
	if db.Pool == nil {
		return ServiceStatus{
			Available: false,
			Error:     "database pool not initialized",
		}
	}

	return ServiceStatus{
		Available: true,
		Version:   "PostgreSQL",
	}
}

// checkStorage verifies MinIO connection
func (h *Handler) checkStorage() ServiceStatus {
	if storage.Client == nil {
		return ServiceStatus{
			Available: false,
			Error:     "storage client not initialized",
		}
	}

	return ServiceStatus{
		Available: true,
		Version:   "MinIO S3",
	}
}

// checkCloud reports whether the cloud fallback is configured
func (h *Handler) checkCloud() ServiceStatus {
	if !h.processor.CloudAvailable() {
		return ServiceStatus{
			Available: false,
			Error:     "no API key configured",
		}
	}

	return ServiceStatus{
		Available: true,
		Version:   h.config.Cloud.Provider,
	}
}

// ProcessReceipt recognizes an uploaded receipt image and returns the
// extracted fields. The optional "engine" form value selects hybrid
// (default), local or cloud recognition.
func (h *Handler) ProcessReceipt(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	ctx := r.Context()

	// Parse multipart form
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)
	if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
		h.sendError(w, http.StatusBadRequest, "File too large or invalid form data")
		return
	}

	// Get file - accept both "file" and "image" field names
	file, header, err := r.FormFile("file")
	if err != nil {
		file, header, err = r.FormFile("image")
		if err != nil {
			h.sendError(w, http.StatusBadRequest, "No file provided (use 'file' or 'image' field)")
			return
		}
	}
	defer file.Close()

	imageData, err := io.ReadAll(file)
	if err != nil {
		h.sendError(w, http.StatusInternalServerError, "Failed to read file")
		return
	}

	engine := r.FormValue("engine")
	if engine == "" {
		engine = models.EngineHybrid
	}

	result, err := h.processor.ProcessImage(ctx, imageData, engine)
	if err != nil {
		h.sendProcessingError(w, err)
		return
	}

	// Generate unique filename
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}
	filename := fmt.Sprintf("%s_%s%s",
		time.Now().Format("20060102_150405"),
		uuid.New().String()[:8],
		storage.GetFileExtension(contentType),
	)

	// Upload to MinIO (if configured)
	var imageURL string
	if storage.Client != nil {
		imageURL, err = storage.UploadReceiptImage(
			ctx,
			filename,
			bytes.NewReader(imageData),
			int64(len(imageData)),
			contentType,
		)
		if err != nil {
			// Storage is optional, recognition already succeeded
			h.logger.Warn("failed to upload image", zap.Error(err))
			imageURL = ""
		}
	}

	h.saveTransaction(ctx, result, imageURL)

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(result)
}

// saveTransaction persists the result when a database is configured.
// Failures are logged, never surfaced to the caller.
func (h *Handler) saveTransaction(ctx context.Context, result *models.OcrResult, imageURL string) {
	if db.Pool == nil {
		return
	}

	tx := &db.Transaction{
		Date:       result.ExtractedData.Date,
		Confidence: result.Confidence,
		Source:     string(result.Source),
		ImageURL:   imageURL,
		OCRRaw:     result.Text,
	}
	if result.ExtractedData.Merchant != nil {
		tx.Merchant = *result.ExtractedData.Merchant
	}
	if result.ExtractedData.Total != nil {
		tx.Total, _ = result.ExtractedData.Total.Float64()
	}
	if dataJSON, err := json.Marshal(result.ExtractedData); err == nil {
		tx.OCRJSON = string(dataJSON)
	}
	if claims, err := auth.GetClaimsFromContext(ctx); err == nil {
		if id, err := uuid.Parse(claims.UserID); err == nil {
			tx.UserID = id
		}
	}

	if err := db.SaveTransaction(ctx, tx); err != nil {
		h.logger.Warn("failed to save transaction", zap.Error(err))
	}
}

// GetTransactions returns recently processed receipts
func (h *Handler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	ctx := r.Context()

	if db.Pool == nil {
		h.sendError(w, http.StatusServiceUnavailable, "database not available")
		return
	}

	transactions, err := db.GetTransactions(ctx, 100)
	if err != nil {
		h.sendError(w, http.StatusInternalServerError, fmt.Sprintf("failed to get transactions: %v", err))
		return
	}

	// Generate presigned URLs for images
	for i := range transactions {
		if transactions[i].ImageURL != "" && storage.Client != nil {
			if presignedURL, err := storage.GetPresignedURL(ctx, transactions[i].ImageURL); err == nil {
				transactions[i].ImageURL = presignedURL
			}
		}
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":      true,
		"transactions": transactions,
		"count":        len(transactions),
	})
}

// sendProcessingError maps pipeline errors to HTTP status codes.
func (h *Handler) sendProcessingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ocr.ErrImageDecode):
		h.sendError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ocr.ErrCloudAuthMissing):
		h.sendError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, ocr.ErrCloudRequest), errors.Is(err, ocr.ErrCloudResponseParse):
		h.sendError(w, http.StatusBadGateway, err.Error())
	default:
		h.sendError(w, http.StatusInternalServerError, err.Error())
	}
}

// sendError sends an error response
func (h *Handler) sendError(w http.ResponseWriter, statusCode int, message string) {
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}
