package app

import (
	"fmt"

	"github.com/ghuser/ratapay/pkg/cache"
	"github.com/ghuser/ratapay/pkg/config"
	"github.com/ghuser/ratapay/pkg/logger"
	"github.com/ghuser/ratapay/services/payment/infrastructure/ratapay"
)

// RatapayConfig maps the merchant settings of cfg onto the client config.
func RatapayConfig(cfg *config.Config) ratapay.Config {
	return ratapay.Config{
		MerchantID: cfg.RatapayMerchantID,
		APIKey:     cfg.RatapayAPIKey,
		APISecret:  cfg.RatapayAPISecret,
		Sandbox:    cfg.RatapaySandbox,
		BaseURL:    cfg.RatapayBaseURL,
		PaymentURL: cfg.RatapayPaymentURL,
		Timeout:    cfg.RatapayHTTPTimeout,
	}
}

// NewRatapayClient builds the Ratapay client with an OAuth token provider.
// Tokens live in Redis when cfg.RatapayTokenStore is "redis" (redisClient
// must then be non-nil) and in process memory otherwise.
func NewRatapayClient(cfg *config.Config, redisClient *cache.RedisClient, log logger.Logger) (*ratapay.Client, error) {
	if err := config.ValidateRatapay(cfg); err != nil {
		return nil, err
	}
	rcfg := RatapayConfig(cfg)

	var store ratapay.TokenStore
	switch cfg.RatapayTokenStore {
	case config.TokenStoreRedis:
		if redisClient == nil {
			return nil, fmt.Errorf("ratapay: token store %q needs a redis client", cfg.RatapayTokenStore)
		}
		store = cache.NewTokenCache(redisClient, cfg.RatapayMerchantID)
	default:
		store = &ratapay.MemoryTokenStore{}
	}

	tokens := ratapay.NewOAuthTokenProvider(ratapay.OAuthConfig{
		BaseURL:      rcfg.APIBaseURL(),
		ClientID:     cfg.RatapayMerchantID,
		ClientSecret: cfg.RatapayMerchantSecret,
		ExpiryBuffer: cfg.RatapayTokenBuffer,
	}, ratapay.NewHTTPClient(cfg.RatapayHTTPTimeout), store, log)

	return ratapay.New(rcfg, tokens, log)
}
