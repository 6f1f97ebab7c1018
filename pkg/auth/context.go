package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// contextKey is an unexported type to prevent key collisions in context.
type contextKey string

const checkoutKey contextKey = "checkout"

// ErrNoCheckout is returned when the request carries no checkout.
// Handlers should answer 404 when this error occurs.
var ErrNoCheckout = errors.New("no checkout in session")

// Checkout identifies the payer's most recent transaction.
type Checkout struct {
	TransactionID uuid.UUID
	Ref           string
}

// CheckoutFromCtx extracts the checkout injected by RequireCheckout.
func CheckoutFromCtx(ctx context.Context) (Checkout, error) {
	c, ok := ctx.Value(checkoutKey).(Checkout)
	if !ok || c.Ref == "" || c.TransactionID == uuid.Nil {
		return Checkout{}, ErrNoCheckout
	}
	return c, nil
}

// WithCheckout returns a new context with c attached.
func WithCheckout(ctx context.Context, c Checkout) context.Context {
	return context.WithValue(ctx, checkoutKey, c)
}
