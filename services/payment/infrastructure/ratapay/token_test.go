package ratapay

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghuser/ratapay/services/payment/domain"
)

type tokenServer struct {
	*httptest.Server
	hits atomic.Int32
}

func newTokenServer(t *testing.T, respond func(w http.ResponseWriter, r *http.Request)) *tokenServer {
	t.Helper()
	ts := &tokenServer{}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ts.hits.Add(1)
		respond(w, r)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func newProvider(baseURL string, store TokenStore, now *time.Time) *OAuthTokenProvider {
	p := NewOAuthTokenProvider(OAuthConfig{
		BaseURL:      baseURL,
		ClientID:     "101",
		ClientSecret: "abc",
		ExpiryBuffer: DefaultExpiryBuffer,
	}, nil, store, testLogger())
	p.now = func() time.Time { return *now }
	return p
}

func TestOAuthTokenProviderCachesUntilBuffer(t *testing.T) {
	srv := newTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/oauth/token", r.URL.Path)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		assert.Equal(t, "101", r.PostForm.Get("client_id"))
		assert.Equal(t, "abc", r.PostForm.Get("client_secret"))
		assert.Equal(t, "*", r.PostForm.Get("scope"))
		_, _ = io.WriteString(w, `{"token_type":"Bearer","expires_in":3600,"access_token":"tok-1"}`)
	})

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store := &MemoryTokenStore{}
	p := newProvider(srv.URL, store, &now)
	ctx := context.Background()

	tok, err := p.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", tok)

	_, expiresAt, _ := store.Load(ctx)
	assert.Equal(t, now.Add(3000*time.Second), expiresAt)

	now = now.Add(2999 * time.Second)
	_, err = p.Token(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, srv.hits.Load())

	now = now.Add(time.Second)
	_, err = p.Token(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, srv.hits.Load(), "token must refresh once the buffer is reached")
}

func TestOAuthTokenProviderShortLivedTokenUsesHalfLifetime(t *testing.T) {
	srv := newTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"token_type":"Bearer","expires_in":300,"access_token":"tok-short"}`)
	})

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store := &MemoryTokenStore{}
	p := newProvider(srv.URL, store, &now)
	ctx := context.Background()

	_, err := p.Token(ctx)
	require.NoError(t, err)

	_, expiresAt, _ := store.Load(ctx)
	assert.Equal(t, now.Add(150*time.Second), expiresAt)

	now = now.Add(149 * time.Second)
	tok, err := p.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-short", tok)
	assert.EqualValues(t, 1, srv.hits.Load(), "a token shorter than the buffer must still be reused")
}

func TestOAuthTokenProviderCollapsesConcurrentRefresh(t *testing.T) {
	release := make(chan struct{})
	srv := newTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
		<-release
		_, _ = io.WriteString(w, `{"expires_in":3600,"access_token":"tok"}`)
	})

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	p := newProvider(srv.URL, nil, &now)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := p.Token(context.Background())
			errs <- err
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	assert.EqualValues(t, 1, srv.hits.Load())
}

func TestOAuthTokenProviderFallsBackToJWTExpiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	exp := now.Add(2 * time.Hour)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"exp": exp.Unix()}).SignedString([]byte("k"))
	require.NoError(t, err)

	srv := newTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprintf(w, `{"access_token":%q}`, signed)
	})
	store := &MemoryTokenStore{}
	p := newProvider(srv.URL, store, &now)

	tok, err := p.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, signed, tok)

	_, expiresAt, _ := store.Load(context.Background())
	assert.Equal(t, exp.Add(-DefaultExpiryBuffer).Unix(), expiresAt.Unix())
}

func TestOAuthTokenProviderFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error":"invalid_client"}`},
		{"no token", http.StatusOK, `{"expires_in":3600}`},
		{"opaque token without expiry", http.StatusOK, `{"access_token":"opaque"}`},
		{"not json", http.StatusOK, `<html>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})
			now := time.Now()
			_, err := newProvider(srv.URL, nil, &now).Token(context.Background())
			require.ErrorIs(t, err, domain.ErrTokenUnavailable)
		})
	}
}

func TestStaticToken(t *testing.T) {
	tok, err := StaticToken("abc").Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)

	_, err = StaticToken("").Token(context.Background())
	require.ErrorIs(t, err, domain.ErrTokenUnavailable)
}
