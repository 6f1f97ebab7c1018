package ratapay

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ghuser/ratapay/pkg/payload"
	"github.com/ghuser/ratapay/services/payment/domain"
	"github.com/ghuser/ratapay/services/payment/domain/models"
	"github.com/ghuser/ratapay/services/payment/domain/services"
)

// TransactionResult is what Ratapay returns for a created transaction.
type TransactionResult struct {
	InvoiceID  string `json:"invoice_id"`
	Note       string `json:"note"`
	Ref        string `json:"ref"`
	PaymentURL string `json:"payment_url"`
}

// CreateTransaction reconciles inv and sends it to POST /transaction.
// An invoice that breaks a reconciler rule is never sent.
func (c *Client) CreateTransaction(ctx context.Context, inv *models.Invoice) (*TransactionResult, error) {
	if err := services.ReconcileInvoice(inv); err != nil {
		return nil, err
	}

	env, err := c.Do(ctx, http.MethodPost, "/transaction", inv.Payload())
	if err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}

	v, _ := env.Get("invoice_data")
	data, ok := v.(*payload.Object)
	if !ok {
		return nil, fmt.Errorf("create transaction: %w: missing invoice_data", domain.ErrMalformedResponse)
	}
	res := &TransactionResult{
		InvoiceID: stringField(data, "source_invoice_id"),
		Note:      stringField(data, "note"),
		Ref:       stringField(data, "ref"),
	}
	if res.Ref == "" {
		return nil, fmt.Errorf("create transaction: %w: missing ref", domain.ErrMalformedResponse)
	}
	res.PaymentURL = c.PaymentURL(res.Ref)
	return res, nil
}

// AddBeneficiaries attaches beneficiaries to an existing transaction. They
// are split by tier into vendor_share and aff_share like an invoice.
func (c *Client) AddBeneficiaries(ctx context.Context, ref string, beneficiaries []*models.Beneficiary) (*payload.Object, error) {
	if ref == "" {
		return nil, fmt.Errorf("add beneficiaries: ref is required")
	}
	body := payload.NewObject()
	var vendors, affiliates []*payload.Object
	for _, b := range beneficiaries {
		if b.IsVendor() {
			vendors = append(vendors, b.Payload())
		} else {
			affiliates = append(affiliates, b.Payload())
		}
	}
	if len(vendors) > 0 {
		body.Set("vendor_share", vendors)
	}
	if len(affiliates) > 0 {
		body.Set("aff_share", affiliates)
	}

	env, err := c.Do(ctx, http.MethodPost, "/transaction/"+url.PathEscape(ref)+"/beneficiary", body)
	if err != nil {
		return nil, fmt.Errorf("add beneficiaries: %w", err)
	}
	return env, nil
}

// Refund asks Ratapay to refund a transaction, fully or as params describe.
func (c *Client) Refund(ctx context.Context, ref string, params Params) (*payload.Object, error) {
	return c.transactionAction(ctx, ref, "refund", params)
}

// Split releases the shares of a transaction to its beneficiaries.
func (c *Client) Split(ctx context.Context, ref string, params Params) (*payload.Object, error) {
	return c.transactionAction(ctx, ref, "split", params)
}

func (c *Client) transactionAction(ctx context.Context, ref, action string, params Params) (*payload.Object, error) {
	if ref == "" {
		return nil, fmt.Errorf("%s: ref is required", action)
	}
	env, err := c.Do(ctx, http.MethodPost, "/transaction/"+url.PathEscape(ref)+"/"+action, params.object())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", action, err)
	}
	return env, nil
}

// ListTransactions lists transactions matching conditions.
func (c *Client) ListTransactions(ctx context.Context, conditions map[string]string) (*payload.Object, error) {
	env, err := c.Do(ctx, http.MethodGet, listEndpoint("/transaction", conditions), nil)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return env, nil
}

// listEndpoint appends conditions as a query string. Keys are sorted before
// encoding so the signed path is deterministic.
func listEndpoint(path string, conditions map[string]string) string {
	if len(conditions) == 0 {
		return path
	}
	q := url.Values{}
	for k, v := range conditions {
		q.Set(k, v)
	}
	return path + "?" + q.Encode()
}

func stringField(o *payload.Object, key string) string {
	v, ok := o.Get(key)
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
