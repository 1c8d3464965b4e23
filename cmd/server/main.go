package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/receiptly/receipt-ocr-service/api"
	"github.com/receiptly/receipt-ocr-service/internal/auth"
	"github.com/receiptly/receipt-ocr-service/internal/config"
	"github.com/receiptly/receipt-ocr-service/internal/db"
	"github.com/receiptly/receipt-ocr-service/internal/logger"
	"github.com/receiptly/receipt-ocr-service/internal/ocr"
	"github.com/receiptly/receipt-ocr-service/internal/storage"
)

func main() {
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zlog, err := logger.New(cfg.Log.Level)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	// Initialize JWT
	auth.Init(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenHours)*time.Hour)

	// Initialize database connection pool
	if err := db.Init(cfg.Database.URL); err != nil {
		zlog.Warn("database not available, running in OCR-only mode", zap.Error(err))
	} else {
		defer db.Close()
		zlog.Info("database connection pool initialized")
	}

	// Initialize MinIO storage
	if err := storage.Init(cfg.Storage); err != nil {
		zlog.Warn("object storage not available, images will not be stored", zap.Error(err))
	} else {
		zlog.Info("object storage initialized")
	}

	processor, err := ocr.NewProcessor(cfg, zlog)
	if err != nil {
		zlog.Fatal("failed to initialize OCR pipeline", zap.Error(err))
	}

	handler := api.NewHandler(cfg, processor, zlog)
	router := handler.SetupRoutes()

	// Add login endpoint
	router.HandleFunc("/api/login", auth.LoginHandler).Methods("POST")

	// Wrap router with JWT middleware (skips /health and /api/login)
	protectedRouter := auth.JWTMiddleware(router)

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	zlog.Info("starting receipt OCR service",
		zap.String("version", api.Version),
		zap.String("addr", addr),
		zap.Strings("languages", cfg.OCR.Languages),
		zap.String("cloudProvider", cfg.Cloud.Provider),
		zap.Bool("cloudEnabled", cfg.Cloud.Enabled()),
		zap.Bool("database", db.Pool != nil),
		zap.Bool("storage", storage.Client != nil))

	if err := http.ListenAndServe(addr, protectedRouter); err != nil {
		zlog.Fatal("server failed", zap.Error(err))
	}
}
