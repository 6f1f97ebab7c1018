package ratapay

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ghuser/ratapay/pkg/payload"
)

// RegisterAccount creates a Ratapay account, e.g. with email, name and password.
func (c *Client) RegisterAccount(ctx context.Context, params Params) (*payload.Object, error) {
	env, err := c.Do(ctx, http.MethodPost, "/account/register", params.object())
	if err != nil {
		return nil, fmt.Errorf("register account: %w", err)
	}
	return env, nil
}

// LinkAccount links an existing Ratapay account to the merchant.
func (c *Client) LinkAccount(ctx context.Context, params Params) (*payload.Object, error) {
	env, err := c.Do(ctx, http.MethodPost, "/account/link", params.object())
	if err != nil {
		return nil, fmt.Errorf("link account: %w", err)
	}
	return env, nil
}

// ListAccounts lists the accounts linked to the merchant matching conditions.
func (c *Client) ListAccounts(ctx context.Context, conditions map[string]string) (*payload.Object, error) {
	env, err := c.Do(ctx, http.MethodGet, listEndpoint("/account", conditions), nil)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return env, nil
}
