package telemetry

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	sentryhttp "github.com/getsentry/sentry-go/http"

	"github.com/ghuser/ratapay/pkg/config"
)

// scrubbedHeaders never leave the process: bearer tokens, request signatures
// and the checkout session cookie.
var scrubbedHeaders = []string{
	"Authorization",
	"Cookie",
	"Set-Cookie",
	"X-Ratapay-Sign",
	"X-Ratapay-Key",
}

// scrubbedFields are payload keys whose values are replaced in request bodies.
var scrubbedFields = []string{"email", "password", "client_secret", "secret"}

const redacted = "[redacted]"

// SetupSentry initializes the Sentry SDK. No-ops if DSN is empty.
func SetupSentry(cfg *config.Config) error {
	if cfg.SentryDSN == "" {
		return nil
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.SentryDSN,
		Environment:      cfg.Environment,
		Release:          cfg.ServiceName + "@" + cfg.ServiceVersion,
		TracesSampleRate: 0.2,
		SendDefaultPII:   false,
		BeforeSend:       scrubEvent,
	}); err != nil {
		return fmt.Errorf("sentry init: %w", err)
	}
	sentry.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTag("ratapay.merchant_id", cfg.RatapayMerchantID)
	})
	return nil
}

// scrubEvent removes credentials and payer details from the captured request.
func scrubEvent(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
	if event == nil || event.Request == nil {
		return event
	}
	for k := range event.Request.Headers {
		for _, h := range scrubbedHeaders {
			if strings.EqualFold(k, h) {
				event.Request.Headers[k] = redacted
			}
		}
	}
	event.Request.Cookies = ""
	event.Request.Data = scrubBody(event.Request.Data)
	return event
}

// scrubBody replaces the whole body when it mentions a sensitive field, since
// checkout bodies may be JSON or form encoded.
func scrubBody(body string) string {
	if body == "" {
		return body
	}
	lower := strings.ToLower(body)
	for _, f := range scrubbedFields {
		if strings.Contains(lower, f) {
			return redacted
		}
	}
	return body
}

// SentryFlush flushes buffered events before process exit.
func SentryFlush() {
	sentry.Flush(2 * time.Second)
}

// SentryMiddleware returns a net/http middleware that captures panics and errors.
// Repanic: true so the outer Recovery middleware still handles the 500 response.
func SentryMiddleware() func(http.Handler) http.Handler {
	h := sentryhttp.New(sentryhttp.Options{Repanic: true})
	return h.Handle
}
