package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestWithCheckout_CheckoutFromCtx(t *testing.T) {
	c := Checkout{TransactionID: uuid.New(), Ref: "REF1"}
	ctx := WithCheckout(context.Background(), c)

	got, err := CheckoutFromCtx(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != c {
		t.Fatalf("expected %v, got %v", c, got)
	}
}

func TestCheckoutFromCtx_EmptyContext(t *testing.T) {
	_, err := CheckoutFromCtx(context.Background())
	if !errors.Is(err, ErrNoCheckout) {
		t.Fatalf("expected ErrNoCheckout, got %v", err)
	}
}

func TestCheckoutFromCtx_Incomplete(t *testing.T) {
	tests := map[string]Checkout{
		"nil id":    {Ref: "REF1"},
		"empty ref": {TransactionID: uuid.New()},
	}
	for name, c := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := CheckoutFromCtx(WithCheckout(context.Background(), c))
			if !errors.Is(err, ErrNoCheckout) {
				t.Fatalf("expected ErrNoCheckout, got %v", err)
			}
		})
	}
}
