package config

import (
	"strings"
	"testing"
	"time"
)

func productionConfig() *Config {
	return &Config{
		Environment:           EnvProduction,
		LogLevel:              "info",
		SessionAuthKey:        strings.Repeat("a", 32),
		SessionEncryptionKey:  strings.Repeat("b", 16),
		RatapayMerchantID:     "101",
		RatapayMerchantSecret: "abc",
		RatapayAPIKey:         "def",
		RatapayAPISecret:      "ghi",
		RatapayTokenBuffer:    600 * time.Second,
		OperatorAPIKey:        strings.Repeat("o", 32),
	}
}

func TestValidateForProduction(t *testing.T) {
	t.Run("non-production is not checked", func(t *testing.T) {
		if err := ValidateForProduction(&Config{Environment: EnvDevelopment}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("valid production config", func(t *testing.T) {
		if err := ValidateForProduction(productionConfig()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("sandbox without explicit base url", func(t *testing.T) {
		cfg := productionConfig()
		cfg.RatapaySandbox = true
		err := ValidateForProduction(cfg)
		if err == nil || !strings.Contains(err.Error(), "RATAPAY_SANDBOX") {
			t.Fatalf("expected sandbox error, got %v", err)
		}
	})

	t.Run("missing merchant credentials", func(t *testing.T) {
		cfg := productionConfig()
		cfg.RatapayAPISecret = ""
		cfg.RatapayMerchantID = ""
		err := ValidateForProduction(cfg)
		if err == nil || !strings.Contains(err.Error(), "RATAPAY_MERCHANT_ID, RATAPAY_API_SECRET") {
			t.Fatalf("expected credentials error, got %v", err)
		}
	})

	t.Run("short operator key", func(t *testing.T) {
		cfg := productionConfig()
		cfg.OperatorAPIKey = "short"
		err := ValidateForProduction(cfg)
		if err == nil || !strings.Contains(err.Error(), "OPERATOR_API_KEY") {
			t.Fatalf("expected operator key error, got %v", err)
		}
	})

	t.Run("debug logging", func(t *testing.T) {
		cfg := productionConfig()
		cfg.LogLevel = "debug"
		if err := ValidateForProduction(cfg); err == nil {
			t.Fatal("expected error, got nil")
		}
	})
}

func TestValidateRatapay(t *testing.T) {
	if err := ValidateRatapay(&Config{}); err == nil {
		t.Fatal("expected error for empty config")
	}
	if err := ValidateRatapay(productionConfig()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
