package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"ocrtool/internal/engine"
	"ocrtool/internal/logger"
)

type Config struct {
	// OCR Engine Configuration
	PaddleURL         string
	EasyOCRURL        string
	SuryaURL          string
	Language          string
	TesseractLanguage string
	RequestTimeoutSec int
	ProbeTimeoutSec   int

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Config, error) {
	config := &Config{
		PaddleURL:         getEnv("OCR_PADDLE_URL", "http://127.0.0.1:8868"),
		EasyOCRURL:        getEnv("OCR_EASYOCR_URL", "http://127.0.0.1:8869"),
		SuryaURL:          getEnv("OCR_SURYA_URL", "http://127.0.0.1:8870"),
		Language:          getEnv("OCR_LANGUAGE", "en"),
		TesseractLanguage: getEnv("OCR_TESSERACT_LANGUAGE", "eng"),
		RequestTimeoutSec: getEnvInt("OCR_REQUEST_TIMEOUT", 120),
		ProbeTimeoutSec:   getEnvInt("OCR_PROBE_TIMEOUT", 2),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:     getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:         getEnv("LOG_OUTPUT", "stderr"),
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	if c.RequestTimeoutSec <= 0 {
		return fmt.Errorf("OCR_REQUEST_TIMEOUT must be positive")
	}
	if c.ProbeTimeoutSec <= 0 {
		return fmt.Errorf("OCR_PROBE_TIMEOUT must be positive")
	}
	return nil
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

// GetEngineConfig returns the engine construction parameters from the main config
func (c *Config) GetEngineConfig() engine.Config {
	return engine.Config{
		Language:          c.Language,
		TesseractLanguage: c.TesseractLanguage,
		PaddleURL:         c.PaddleURL,
		EasyOCRURL:        c.EasyOCRURL,
		SuryaURL:          c.SuryaURL,
		RequestTimeout:    time.Duration(c.RequestTimeoutSec) * time.Second,
		ProbeTimeout:      time.Duration(c.ProbeTimeoutSec) * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
