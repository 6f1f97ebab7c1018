// Package auth keeps the payer's checkout in a server-side session so the
// status page can find the transaction without exposing its ref in the URL.
//
// Session keys should be 32 or 64 bytes for HMAC authentication,
// and 16, 24, or 32 bytes for AES encryption. Production deployments
// must use cryptographically random keys generated with:
//
//	openssl rand -base64 32
package auth

import (
	"bytes"
	"context"
	"encoding/base32"
	"encoding/gob"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"github.com/redis/go-redis/v9"

	"github.com/ghuser/ratapay/pkg/cache"
)

// DefaultSessionMaxAge outlives any Ratapay payment page.
const DefaultSessionMaxAge = 24 * time.Hour

var sessionKeyPrefix = cache.Key("checkout_session") + ":"

var errSessionNotFound = errors.New("session not found")

// sessionBackend persists encoded session values by ID.
type sessionBackend interface {
	get(ctx context.Context, id string) ([]byte, error)
	set(ctx context.Context, id string, data []byte, ttl time.Duration) error
	del(ctx context.Context, id string) error
}

type redisBackend struct {
	client redis.Cmdable
	prefix string
}

func (b redisBackend) get(ctx context.Context, id string) ([]byte, error) {
	data, err := b.client.Get(ctx, b.prefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, errSessionNotFound
	}
	return data, err
}

func (b redisBackend) set(ctx context.Context, id string, data []byte, ttl time.Duration) error {
	return b.client.Set(ctx, b.prefix+id, data, ttl).Err()
}

func (b redisBackend) del(ctx context.Context, id string) error {
	return b.client.Del(ctx, b.prefix+id).Err()
}

// StoreOption customises a RedisStore.
type StoreOption func(*RedisStore)

// WithMaxAge sets how long a checkout session lives, in Redis and in the cookie.
func WithMaxAge(d time.Duration) StoreOption {
	return func(s *RedisStore) { s.options.MaxAge = int(d / time.Second) }
}

// WithKeyPrefix overrides the Redis key prefix of stored sessions.
func WithKeyPrefix(prefix string) StoreOption {
	return func(s *RedisStore) {
		if b, ok := s.backend.(redisBackend); ok {
			b.prefix = prefix
			s.backend = b
		}
	}
}

// RedisStore is a sessions.Store keeping checkout session values in Redis.
// Only the session ID travels in the cookie, signed and encrypted with
// securecookie. Cookies are HttpOnly and SameSite=Lax, Secure in production.
//
// Redis keys are "ratapay:checkout_session:<id>" with a TTL equal to MaxAge.
// Values are gob-encoded; register custom types via gob.Register before use.
type RedisStore struct {
	backend sessionBackend
	codecs  []securecookie.Codec
	options *sessions.Options
}

// NewSessionStore creates a Redis-backed checkout session store.
// authKey signs the cookie (32 or 64 bytes); encryptionKey encrypts it
// (16, 24 or 32 bytes). secureCookie should be true whenever served over HTTPS.
func NewSessionStore(client redis.Cmdable, authKey, encryptionKey []byte, secureCookie bool, opts ...StoreOption) *RedisStore {
	return newStore(redisBackend{client: client, prefix: sessionKeyPrefix}, authKey, encryptionKey, secureCookie, opts...)
}

func newStore(backend sessionBackend, authKey, encryptionKey []byte, secureCookie bool, opts ...StoreOption) *RedisStore {
	s := &RedisStore{
		backend: backend,
		codecs:  securecookie.CodecsFromPairs(authKey, encryptionKey),
		options: &sessions.Options{
			Path:     "/",
			MaxAge:   int(DefaultSessionMaxAge / time.Second),
			HttpOnly: true,
			Secure:   secureCookie,
			SameSite: http.SameSiteLaxMode,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the named session, cached per request by gorilla's registry.
func (s *RedisStore) Get(r *http.Request, name string) (*sessions.Session, error) {
	return sessions.GetRegistry(r).Get(s, name)
}

// New loads the session named by the request cookie. A missing, tampered or
// expired cookie, or one whose Redis key is gone, yields a fresh session
// and no error.
func (s *RedisStore) New(r *http.Request, name string) (*sessions.Session, error) {
	session := sessions.NewSession(s, name)
	opts := *s.options
	session.Options = &opts
	session.IsNew = true

	c, err := r.Cookie(name)
	if err != nil {
		return session, nil
	}
	var id string
	if err := securecookie.DecodeMulti(name, c.Value, &id, s.codecs...); err != nil {
		return session, nil
	}

	session.ID = id
	if err := s.load(r.Context(), session); err != nil {
		session.ID = ""
		return session, nil
	}
	session.IsNew = false
	return session, nil
}

// Save persists the session and writes its cookie. A negative MaxAge
// deletes both.
func (s *RedisStore) Save(r *http.Request, w http.ResponseWriter, session *sessions.Session) error {
	if session.Options.MaxAge < 0 {
		if session.ID != "" {
			_ = s.backend.del(r.Context(), session.ID)
		}
		http.SetCookie(w, sessions.NewCookie(session.Name(), "", session.Options))
		return nil
	}

	if session.ID == "" {
		session.ID = newSessionID()
	}
	if err := s.save(r.Context(), session); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}

	encoded, err := securecookie.EncodeMulti(session.Name(), session.ID, s.codecs...)
	if err != nil {
		return fmt.Errorf("encode session cookie: %w", err)
	}
	http.SetCookie(w, sessions.NewCookie(session.Name(), encoded, session.Options))
	return nil
}

func newSessionID() string {
	return strings.TrimRight(base32.StdEncoding.EncodeToString(securecookie.GenerateRandomKey(32)), "=")
}

func (s *RedisStore) save(ctx context.Context, session *sessions.Session) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(session.Values); err != nil {
		return fmt.Errorf("encode session values: %w", err)
	}
	ttl := time.Duration(session.Options.MaxAge) * time.Second
	if err := s.backend.set(ctx, session.ID, buf.Bytes(), ttl); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

func (s *RedisStore) load(ctx context.Context, session *sessions.Session) error {
	data, err := s.backend.get(ctx, session.ID)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	return gob.NewDecoder(bytes.NewReader(data)).Decode(&session.Values)
}
