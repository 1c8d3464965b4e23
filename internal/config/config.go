package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the service configuration, loaded once at startup and passed by
// reference into the components that need it.
type Config struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`

	Log      LogConfig      `yaml:"log"`
	OCR      OCRConfig      `yaml:"ocr"`
	Cloud    CloudConfig    `yaml:"cloud"`
	Database DatabaseConfig `yaml:"database"`
	Storage  StorageConfig  `yaml:"storage"`
	Auth     AuthConfig     `yaml:"auth"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// OCRConfig configures the local Tesseract engine.
type OCRConfig struct {
	// Languages are tessdata language codes loaded together; receipts may mix
	// scripts on a single page, so "eng" and "tha" are both on by default.
	Languages []string `yaml:"languages"`
	// ConfidenceThreshold gates the hybrid escalation to the cloud engine.
	ConfidenceThreshold float64 `yaml:"confidence_threshold"`
	// Workers bounds concurrent Tesseract recognitions (CPU-bound).
	Workers int `yaml:"workers"`
}

// CloudConfig configures the cloud document-text-detection provider.
type CloudConfig struct {
	Provider string `yaml:"provider"` // vision, gemini, openai
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	// Endpoint overrides the provider base URL; used by tests.
	Endpoint string `yaml:"endpoint,omitempty"`
}

// Enabled reports whether cloud credentials are configured. When false, the
// cloud selector and the hybrid escalation path fail fast instead of
// attempting a call.
func (c CloudConfig) Enabled() bool {
	return c.APIKey != ""
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type StorageConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

type AuthConfig struct {
	JWTSecret  string `yaml:"jwt_secret"`
	TokenHours int    `yaml:"token_hours"`
}

// Load reads the YAML config file and applies environment overrides.
// A .env file is loaded first when present so local development matches the
// containerized deployment.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if host := os.Getenv("HOST"); host != "" {
		cfg.Host = host
	}
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Port = p
		}
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if provider := os.Getenv("CLOUD_OCR_PROVIDER"); provider != "" {
		cfg.Cloud.Provider = provider
	}
	provider := cfg.Cloud.Provider
	if provider == "" {
		provider = "vision"
	}
	if key := os.Getenv("GOOGLE_VISION_API_KEY"); key != "" && provider == "vision" {
		cfg.Cloud.APIKey = key
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" && provider == "gemini" {
		cfg.Cloud.APIKey = key
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" && provider == "openai" {
		cfg.Cloud.APIKey = key
	}
	if url := os.Getenv("DATABASE_URL"); url != "" {
		cfg.Database.URL = url
	}
	if endpoint := os.Getenv("MINIO_ENDPOINT"); endpoint != "" {
		cfg.Storage.Endpoint = endpoint
	}
	if key := os.Getenv("MINIO_ACCESS_KEY"); key != "" {
		cfg.Storage.AccessKey = key
	}
	if key := os.Getenv("MINIO_SECRET_KEY"); key != "" {
		cfg.Storage.SecretKey = key
	}
	if bucket := os.Getenv("MINIO_BUCKET"); bucket != "" {
		cfg.Storage.Bucket = bucket
	}
	if ssl := os.Getenv("MINIO_USE_SSL"); ssl != "" {
		cfg.Storage.UseSSL = ssl == "true"
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg.Auth.JWTSecret = secret
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Host == "" {
		cfg.Host = "0.0.0.0"
	}
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if len(cfg.OCR.Languages) == 0 {
		cfg.OCR.Languages = []string{"eng", "tha"}
	}
	if cfg.OCR.ConfidenceThreshold == 0 {
		cfg.OCR.ConfidenceThreshold = 0.7
	}
	if cfg.OCR.Workers <= 0 {
		cfg.OCR.Workers = runtime.NumCPU()
	}
	if cfg.Cloud.Provider == "" {
		cfg.Cloud.Provider = "vision"
	}
	if cfg.Auth.TokenHours <= 0 {
		cfg.Auth.TokenHours = 24
	}
}
