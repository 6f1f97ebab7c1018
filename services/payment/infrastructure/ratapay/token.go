package ratapay

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/singleflight"

	"github.com/ghuser/ratapay/pkg/logger"
	"github.com/ghuser/ratapay/services/payment/domain"
)

// DefaultExpiryBuffer is how long before the stated expiry a token is refreshed.
const DefaultExpiryBuffer = 600 * time.Second

// TokenProvider supplies the bearer token sent with every signed request.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenProvider for a token obtained elsewhere.
type StaticToken string

func (s StaticToken) Token(context.Context) (string, error) {
	if s == "" {
		return "", domain.ErrTokenUnavailable
	}
	return string(s), nil
}

// TokenStore persists the current access token. Load returns an empty token
// when nothing is stored.
type TokenStore interface {
	Load(ctx context.Context) (token string, expiresAt time.Time, err error)
	Save(ctx context.Context, token string, expiresAt time.Time) error
}

// MemoryTokenStore keeps the token in process memory.
type MemoryTokenStore struct {
	mu        sync.RWMutex
	token     string
	expiresAt time.Time
}

func (m *MemoryTokenStore) Load(context.Context) (string, time.Time, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token, m.expiresAt, nil
}

func (m *MemoryTokenStore) Save(_ context.Context, token string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	m.expiresAt = expiresAt
	return nil
}

// OAuthConfig configures the client-credentials grant.
type OAuthConfig struct {
	BaseURL      string // token endpoint is BaseURL + "/oauth/token"
	ClientID     string // merchant id
	ClientSecret string // merchant secret
	ExpiryBuffer time.Duration
}

// OAuthTokenProvider obtains tokens with the client-credentials grant and
// caches them in a TokenStore until ExpiryBuffer before they expire.
// Concurrent refreshes share one request.
type OAuthTokenProvider struct {
	cfg   OAuthConfig
	http  *http.Client
	store TokenStore
	log   logger.Logger
	now   func() time.Time
	group singleflight.Group
}

// NewOAuthTokenProvider creates a provider. A nil store keeps tokens in memory.
func NewOAuthTokenProvider(cfg OAuthConfig, httpClient *http.Client, store TokenStore, log logger.Logger) *OAuthTokenProvider {
	if store == nil {
		store = &MemoryTokenStore{}
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &OAuthTokenProvider{
		cfg:   cfg,
		http:  httpClient,
		store: store,
		log:   log,
		now:   time.Now,
	}
}

// Token returns a cached token or fetches a new one.
func (p *OAuthTokenProvider) Token(ctx context.Context) (string, error) {
	if tok, ok := p.cached(ctx); ok {
		return tok, nil
	}
	v, err, _ := p.group.Do("token", func() (any, error) {
		if tok, ok := p.cached(ctx); ok {
			return tok, nil
		}
		return p.refresh(ctx)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (p *OAuthTokenProvider) cached(ctx context.Context) (string, bool) {
	tok, expiresAt, err := p.store.Load(ctx)
	if err != nil {
		p.log.WarnContext(ctx, "token store load failed", "error", err)
		return "", false
	}
	if tok == "" || !p.now().Before(expiresAt) {
		return "", false
	}
	return tok, true
}

type tokenResponse struct {
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	AccessToken string `json:"access_token"`
}

func (p *OAuthTokenProvider) refresh(ctx context.Context) (string, error) {
	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {p.cfg.ClientID},
		"client_secret": {p.cfg.ClientSecret},
		"scope":         {"*"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(p.cfg.BaseURL, "/")+"/oauth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("%w: build request: %w", domain.ErrTokenUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := p.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrTokenUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("%w: read body: %w", domain.ErrTokenUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: HTTP %d: %s", domain.ErrTokenUnavailable, resp.StatusCode, snippet(body))
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return "", fmt.Errorf("%w: decode: %w", domain.ErrTokenUnavailable, err)
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("%w: response has no access_token", domain.ErrTokenUnavailable)
	}

	now := p.now()
	expiresAt, err := p.expiry(ctx, tr, now)
	if err != nil {
		return "", err
	}
	if err := p.store.Save(ctx, tr.AccessToken, expiresAt); err != nil {
		p.log.WarnContext(ctx, "token store save failed", "error", err)
	}
	p.log.InfoContext(ctx, "ratapay token refreshed", "expires_at", expiresAt)
	return tr.AccessToken, nil
}

// expiry prefers expires_in and falls back to the JWT exp claim. A buffer
// that would consume the whole lifetime is cut to half of it.
func (p *OAuthTokenProvider) expiry(ctx context.Context, tr tokenResponse, now time.Time) (time.Time, error) {
	var exp time.Time
	if tr.ExpiresIn > 0 {
		exp = now.Add(time.Duration(tr.ExpiresIn) * time.Second)
	} else {
		claims := jwt.MapClaims{}
		if _, _, err := jwt.NewParser().ParseUnverified(tr.AccessToken, claims); err != nil {
			return time.Time{}, fmt.Errorf("%w: no expires_in and token is not a JWT: %w", domain.ErrTokenUnavailable, err)
		}
		claim, err := claims.GetExpirationTime()
		if err != nil || claim == nil {
			return time.Time{}, fmt.Errorf("%w: no expires_in and no exp claim", domain.ErrTokenUnavailable)
		}
		exp = claim.Time
	}

	buffer := p.cfg.ExpiryBuffer
	if lifetime := exp.Sub(now); lifetime > 0 && buffer >= lifetime {
		buffer = lifetime / 2
		p.log.WarnContext(ctx, "token lifetime shorter than expiry buffer, using half the lifetime",
			"lifetime", lifetime, "configured_buffer", p.cfg.ExpiryBuffer)
	}
	return exp.Add(-buffer), nil
}
