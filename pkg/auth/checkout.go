package auth

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"github.com/ghuser/ratapay/pkg/httpx"
	"github.com/ghuser/ratapay/pkg/logger"
)

// SessionName is the cookie name of the checkout session.
const SessionName = "ratapay_checkout"

const (
	sessionTransactionIDKey = "transaction_id"
	sessionRefKey           = "transaction_ref"
)

// RememberCheckout stores c in the checkout session and writes the cookie.
func RememberCheckout(store sessions.Store, w http.ResponseWriter, r *http.Request, c Checkout) error {
	session, err := store.Get(r, SessionName)
	if err != nil {
		// A tampered or stale cookie still yields a usable fresh session.
		if session == nil {
			return fmt.Errorf("get checkout session: %w", err)
		}
	}
	session.Values[sessionTransactionIDKey] = c.TransactionID.String()
	session.Values[sessionRefKey] = c.Ref
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("save checkout session: %w", err)
	}
	return nil
}

// LoadCheckout reads the checkout stored by RememberCheckout.
func LoadCheckout(store sessions.Store, r *http.Request) (Checkout, error) {
	session, err := store.Get(r, SessionName)
	if err != nil {
		return Checkout{}, fmt.Errorf("%w: %w", ErrNoCheckout, err)
	}
	ref, _ := session.Values[sessionRefKey].(string)
	idStr, _ := session.Values[sessionTransactionIDKey].(string)
	if ref == "" || idStr == "" {
		return Checkout{}, ErrNoCheckout
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return Checkout{}, fmt.Errorf("%w: transaction_id: %w", ErrNoCheckout, err)
	}
	return Checkout{TransactionID: id, Ref: ref}, nil
}

// RequireCheckout is a chi middleware that loads the checkout session and
// injects it into the request context. Requests without one get 404.
//
// After this middleware, handlers can safely call auth.CheckoutFromCtx(r.Context()).
func RequireCheckout(store sessions.Store, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := LoadCheckout(store, r)
			if err != nil {
				log.WarnContext(r.Context(), "no checkout in session", "error", err)
				httpx.JSONError(w, http.StatusNotFound, "no checkout in progress")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithCheckout(r.Context(), c)))
		})
	}
}
