// Package ratapay sends signed requests to the Ratapay API.
//
// Every request goes through the same pipeline: obtain a bearer token,
// add merchant_id to the payload, stamp the current time, sign
// method + endpoint + token + payload hash + timestamp, and send the payload
// form encoded with the Authorization, X-RATAPAY-SIGN, X-RATAPAY-TS and
// X-RATAPAY-KEY headers. Responses are JSON envelopes with a boolean success.
package ratapay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"

	"github.com/ghuser/ratapay/pkg/logger"
	"github.com/ghuser/ratapay/pkg/payload"
	"github.com/ghuser/ratapay/pkg/signature"
	"github.com/ghuser/ratapay/pkg/telemetry"
	"github.com/ghuser/ratapay/services/payment/domain"
)

const (
	SandboxBaseURL    = "https://dev.ratapay.co.id/v2"
	ProductionBaseURL = "https://api.ratapay.co.id/v2"

	SandboxPaymentURL    = "https://appdev.ratapay.co.id"
	ProductionPaymentURL = "https://app.ratapay.co.id"

	HeaderSignature = "X-RATAPAY-SIGN"
	HeaderTimestamp = "X-RATAPAY-TS"
	HeaderKey       = "X-RATAPAY-KEY"

	maxResponseBytes = 1 << 20
)

// Config holds merchant credentials and endpoints.
type Config struct {
	MerchantID string
	APIKey     string
	APISecret  string
	Sandbox    bool
	BaseURL    string // overrides the sandbox/production default when set
	PaymentURL string // overrides the sandbox/production default when set
	Timeout    time.Duration
}

// APIBaseURL returns the API base URL in effect.
func (c Config) APIBaseURL() string {
	switch {
	case c.BaseURL != "":
		return strings.TrimRight(c.BaseURL, "/")
	case c.Sandbox:
		return SandboxBaseURL
	default:
		return ProductionBaseURL
	}
}

// PaymentBaseURL returns the payment page base URL in effect.
func (c Config) PaymentBaseURL() string {
	switch {
	case c.PaymentURL != "":
		return strings.TrimRight(c.PaymentURL, "/")
	case c.Sandbox:
		return SandboxPaymentURL
	default:
		return ProductionPaymentURL
	}
}

// Client talks to one Ratapay merchant account. It is safe for concurrent use.
type Client struct {
	cfg     Config
	http    *http.Client
	tokens  TokenProvider
	log     logger.Logger
	now     func() time.Time
	metrics *telemetry.GatewayMetrics
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the instrumented default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithClock replaces time.Now for request timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// NewHTTPClient returns an HTTP client traced with otelhttp.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

// New creates a Client.
func New(cfg Config, tokens TokenProvider, log logger.Logger, opts ...Option) (*Client, error) {
	if cfg.MerchantID == "" {
		return nil, errors.New("ratapay: merchant id is required")
	}
	if cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, errors.New("ratapay: api key and secret are required")
	}
	if tokens == nil {
		return nil, errors.New("ratapay: token provider is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	metrics, err := telemetry.NewGatewayMetrics(otel.Meter("github.com/ghuser/ratapay/ratapay"))
	if err != nil {
		return nil, fmt.Errorf("ratapay: %w", err)
	}

	c := &Client{
		cfg:     cfg,
		http:    NewHTTPClient(cfg.Timeout),
		tokens:  tokens,
		log:     log,
		now:     time.Now,
		metrics: metrics,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Config returns the client configuration.
func (c *Client) Config() Config { return c.cfg }

// Ping reports whether a bearer token can be obtained, which needs Ratapay to
// be reachable and the merchant credentials to be accepted.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.tokens.Token(ctx); err != nil {
		return fmt.Errorf("ratapay ping: %w", err)
	}
	return nil
}

// PaymentURL returns the payer-facing page for a transaction ref.
func (c *Client) PaymentURL(ref string) string {
	return c.cfg.PaymentBaseURL() + "/payment/" + ref
}

// Prepared is a signed request ready to be sent.
type Prepared struct {
	Method    string
	Endpoint  string
	Payload   *payload.Object
	Timestamp string
	Token     string
	Signature signature.Signature
}

// Header returns the authentication headers for p.
func (p *Prepared) Header(apiKey string) http.Header {
	h := http.Header{}
	h.Set("Authorization", "Bearer "+p.Token)
	h.Set(HeaderSignature, p.Signature.Value)
	h.Set(HeaderTimestamp, p.Timestamp)
	h.Set(HeaderKey, apiKey)
	h.Set("Accept", "application/json")
	return h
}

// Prepare signs a request without sending it. POST payloads get merchant_id
// added; a nil payload is signed as empty.
func (c *Client) Prepare(ctx context.Context, method, endpoint string, body *payload.Object) (*Prepared, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	p := body.Clone()
	if method != http.MethodGet {
		p.Set("merchant_id", c.cfg.MerchantID)
	}

	ts := signature.FormatTimestamp(c.now())
	sig, err := signature.Sign(signature.Request{Method: method, Endpoint: endpoint, Payload: p},
		signature.Credentials{Token: token, Secret: c.cfg.APISecret}, ts)
	if err != nil {
		return nil, err
	}
	return &Prepared{
		Method:    method,
		Endpoint:  endpoint,
		Payload:   p,
		Timestamp: ts,
		Token:     token,
		Signature: sig,
	}, nil
}

// Do signs and sends a request and returns the decoded envelope of a
// successful response.
func (c *Client) Do(ctx context.Context, method, endpoint string, body *payload.Object) (*payload.Object, error) {
	start := time.Now()
	env, err := c.do(ctx, method, endpoint, body)

	elapsed := time.Since(start)

	outcome := telemetry.OutcomeSuccess
	switch {
	case errors.Is(err, domain.ErrRequestRejected):
		outcome = telemetry.OutcomeRejected
	case err != nil:
		outcome = telemetry.OutcomeError
	}
	c.metrics.Record(ctx, metricEndpoint(endpoint), outcome, elapsed)

	attrs := []any{"method", method, "endpoint", endpoint, "outcome", outcome,
		"duration_ms", elapsed.Milliseconds()}
	if err != nil {
		c.log.WarnContext(ctx, "ratapay request failed", append(attrs, "error", err)...)
		return nil, err
	}
	c.log.DebugContext(ctx, "ratapay request", attrs...)
	return env, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, body *payload.Object) (*payload.Object, error) {
	prep, err := c.Prepare(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}

	var reqBody io.Reader
	if method != http.MethodGet && prep.Payload.Len() > 0 {
		reqBody = strings.NewReader(payload.Form(prep.Payload).Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.APIBaseURL()+endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", domain.ErrTransport, err)
	}
	req.Header = prep.Header(c.cfg.APIKey)
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrTransport, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", domain.ErrTransport, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: HTTP %d: %s", domain.ErrTransport, resp.StatusCode, snippet(raw))
	}
	return decodeEnvelope(raw)
}

// decodeEnvelope maps a response body to the envelope or to one of
// ErrEmptyResponse, ErrMalformedResponse or a *domain.RejectedError.
func decodeEnvelope(raw []byte) (*payload.Object, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return nil, domain.ErrEmptyResponse
	}
	var env payload.Object
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrMalformedResponse, err)
	}
	if env.Len() == 0 {
		return nil, domain.ErrEmptyResponse
	}
	v, ok := env.Get("success")
	if !ok {
		return nil, fmt.Errorf("%w: missing success", domain.ErrMalformedResponse)
	}
	success, ok := v.(bool)
	if !ok {
		return nil, fmt.Errorf("%w: success is %T, want bool", domain.ErrMalformedResponse, v)
	}
	if !success {
		msg, _ := env.Get("msg")
		text, _ := msg.(string)
		if text == "" {
			text = "Request Failed"
		}
		return nil, &domain.RejectedError{Message: text}
	}
	return &env, nil
}

// metricEndpoint drops query strings and transaction refs to keep label
// cardinality bounded.
func metricEndpoint(endpoint string) string {
	path, _, _ := strings.Cut(endpoint, "?")
	parts := strings.Split(path, "/")
	if len(parts) > 3 && parts[1] == "transaction" {
		parts[2] = "{ref}"
	}
	return strings.Join(parts, "/")
}

func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}

// Params is a bag of request fields for the thin endpoint builders.
type Params map[string]any

// object converts p into a payload with keys in ascending order.
func (p Params) object() *payload.Object {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	o := payload.NewObject()
	for _, k := range keys {
		if p[k] != nil {
			o.Set(k, p[k])
		}
	}
	return o
}
