package ratapay

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghuser/ratapay/pkg/config"
	"github.com/ghuser/ratapay/pkg/logger"
	"github.com/ghuser/ratapay/pkg/signature"
	"github.com/ghuser/ratapay/services/payment/domain"
	"github.com/ghuser/ratapay/services/payment/domain/models"
)

var fixedNow = time.Date(2024, 1, 2, 15, 4, 5, 123_000_000, time.FixedZone("WIB", 7*60*60))

func testLogger() logger.Logger {
	return logger.New(&config.Config{LogLevel: "error"})
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := New(Config{
		MerchantID: "101",
		APIKey:     "key",
		APISecret:  "secret",
		Sandbox:    true,
		BaseURL:    baseURL,
		PaymentURL: "https://pay.example",
	}, StaticToken("tok"), testLogger(),
		WithHTTPClient(&http.Client{Timeout: 5 * time.Second}),
		WithClock(func() time.Time { return fixedNow }),
	)
	require.NoError(t, err)
	return c
}

func foodOrder(t *testing.T) *models.Invoice {
	t.Helper()
	inv, err := models.NewInvoice(models.Input{
		"note":             "Food Order #123",
		"email":            "buyer@mail.com",
		"invoice_id":       "FO123",
		"amount":           50000,
		"refundable":       true,
		"refund_threshold": "1D",
		"url_callback":     "https://mysite.com/callback",
		"paysystem":        "QRIS",
	})
	require.NoError(t, err)
	require.NoError(t, inv.AddItems([]models.Input{{
		"id":               "food1",
		"qty":              1,
		"subtotal":         25000,
		"name":             "Special Fried Noodle",
		"refundable":       true,
		"refund_threshold": "1D",
	}}))
	require.NoError(t, inv.AddBeneficiaries([]models.Input{{
		"email":         "jv1@mail.com",
		"share_amount":  25000,
		"share_item_id": "food1",
		"tier":          1,
	}}))
	return inv
}

func TestConfigURLs(t *testing.T) {
	assert.Equal(t, SandboxBaseURL, Config{Sandbox: true}.APIBaseURL())
	assert.Equal(t, ProductionBaseURL, Config{}.APIBaseURL())
	assert.Equal(t, "https://x.test/v2", Config{BaseURL: "https://x.test/v2/"}.APIBaseURL())
	assert.Equal(t, SandboxPaymentURL, Config{Sandbox: true}.PaymentBaseURL())
	assert.Equal(t, ProductionPaymentURL, Config{}.PaymentBaseURL())
}

func TestNewRequiresCredentials(t *testing.T) {
	_, err := New(Config{APIKey: "k", APISecret: "s"}, StaticToken("t"), testLogger())
	require.Error(t, err)
	_, err = New(Config{MerchantID: "1", APIKey: "k"}, StaticToken("t"), testLogger())
	require.Error(t, err)
	_, err = New(Config{MerchantID: "1", APIKey: "k", APISecret: "s"}, nil, testLogger())
	require.Error(t, err)
}

func TestPrepareMatchesReferenceCanonicalForm(t *testing.T) {
	c := newTestClient(t, "http://unused")
	prep, err := c.Prepare(context.Background(), http.MethodPost, "/transaction", foodOrder(t).Payload())
	require.NoError(t, err)

	assert.Equal(t, "2024-01-02T15:04:05.123+07:00", prep.Timestamp)
	assert.Equal(t, "d4400967bfe11a11d407e4b57bd27c905ae3a9fed359bc092ee17ae66ffe5e5d", prep.Signature.PayloadHash)

	ok, err := signature.Verify(
		signature.Request{Method: http.MethodPost, Endpoint: "/transaction", Payload: prep.Payload},
		signature.Credentials{Token: "tok", Secret: "secret"},
		prep.Timestamp, prep.Signature.Value)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCreateTransaction(t *testing.T) {
	var c *Client
	invoicePayload := foodOrder(t).Payload()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/transaction", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "key", r.Header.Get(HeaderKey))
		assert.Equal(t, "2024-01-02T15:04:05.123+07:00", r.Header.Get(HeaderTimestamp))
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))

		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "101", r.PostForm.Get("merchant_id"))
		assert.Equal(t, "FO123", r.PostForm.Get("source_invoice_id"))
		assert.Equal(t, "food1", r.PostForm.Get("items[0][id]"))
		assert.Equal(t, "1", r.PostForm.Get("items[0][refundable]"))
		assert.Equal(t, "jv1@mail.com", r.PostForm.Get("vendor_share[0][email]"))

		prep, err := c.Prepare(r.Context(), http.MethodPost, "/transaction", invoicePayload)
		if assert.NoError(t, err) {
			assert.Equal(t, prep.Signature.Value, r.Header.Get(HeaderSignature))
		}

		_, _ = io.WriteString(w, `{"success":true,"invoice_data":{"source_invoice_id":"FO123","note":"Food Order #123","ref":"RP1"}}`)
	}))
	defer srv.Close()
	c = newTestClient(t, srv.URL)

	res, err := c.CreateTransaction(context.Background(), foodOrder(t))
	require.NoError(t, err)
	assert.Equal(t, &TransactionResult{
		InvoiceID:  "FO123",
		Note:       "Food Order #123",
		Ref:        "RP1",
		PaymentURL: "https://pay.example/payment/RP1",
	}, res)
}

func TestCreateTransactionRejectsInconsistentInvoice(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()
	c := newTestClient(t, srv.URL)

	inv := foodOrder(t)
	require.NoError(t, inv.AddItems([]models.Input{{"id": "extra", "subtotal": 30000, "name": "Extra"}}))

	_, err := c.CreateTransaction(context.Background(), inv)
	require.ErrorIs(t, err, domain.ErrInvariantViolation)
	assert.EqualError(t, err, "Items Total Amount Exceeds Invoice Amount")
	assert.Zero(t, hits.Load(), "an invalid invoice must not be sent")
}

func TestCreateTransactionFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"rejected", http.StatusOK, `{"success":false,"msg":"Invalid Signature"}`, domain.ErrRequestRejected},
		{"empty body", http.StatusOK, ``, domain.ErrEmptyResponse},
		{"missing success", http.StatusOK, `{"msg":"?"}`, domain.ErrMalformedResponse},
		{"missing invoice data", http.StatusOK, `{"success":true}`, domain.ErrMalformedResponse},
		{"server error", http.StatusInternalServerError, `oops`, domain.ErrTransport},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := newTestClient(t, srv.URL).CreateTransaction(context.Background(), foodOrder(t))
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestTransportFailureIsDistinct(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := newTestClient(t, url).CreateTransaction(context.Background(), foodOrder(t))
	require.ErrorIs(t, err, domain.ErrTransport)
	assert.False(t, errors.Is(err, domain.ErrInvalidFields))
	assert.False(t, errors.Is(err, domain.ErrRequestRejected))
}

func TestDecodeEnvelope(t *testing.T) {
	tests := []struct {
		name string
		body string
		want error
	}{
		{"blank", "  ", domain.ErrEmptyResponse},
		{"null", "null", domain.ErrEmptyResponse},
		{"empty object", "{}", domain.ErrEmptyResponse},
		{"not json", "<html>", domain.ErrMalformedResponse},
		{"string success", `{"success":"true"}`, domain.ErrMalformedResponse},
		{"false", `{"success":false}`, domain.ErrRequestRejected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeEnvelope([]byte(tt.body))
			require.ErrorIs(t, err, tt.want)
		})
	}

	t.Run("rejection carries message", func(t *testing.T) {
		_, err := decodeEnvelope([]byte(`{"success":false,"msg":"Invalid Signature"}`))
		var rej *domain.RejectedError
		require.ErrorAs(t, err, &rej)
		assert.Equal(t, "Invalid Signature", rej.Message)
	})

	t.Run("default rejection message", func(t *testing.T) {
		_, err := decodeEnvelope([]byte(`{"success":false}`))
		assert.EqualError(t, err, "ratapay: Request Failed")
	})

	t.Run("success keeps fields", func(t *testing.T) {
		env, err := decodeEnvelope([]byte(`{"success":true,"data":[1]}`))
		require.NoError(t, err)
		assert.Equal(t, []string{"success", "data"}, env.Keys())
	})
}

func TestListAccountsSignsSortedQuery(t *testing.T) {
	const endpoint = "/account?email=a%40b.co&status=active"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/account", r.URL.Path)
		assert.Equal(t, "email=a%40b.co&status=active", r.URL.RawQuery)
		assert.Empty(t, r.Header.Get("Content-Type"))

		want, err := signature.Generate(
			signature.Request{Method: http.MethodGet, Endpoint: endpoint},
			signature.Credentials{Token: "tok", Secret: "secret"},
			"2024-01-02T15:04:05.123+07:00")
		if assert.NoError(t, err) {
			assert.Equal(t, want, r.Header.Get(HeaderSignature))
		}

		_, _ = io.WriteString(w, `{"success":true,"accounts":[]}`)
	}))
	defer srv.Close()

	env, err := newTestClient(t, srv.URL).ListAccounts(context.Background(),
		map[string]string{"status": "active", "email": "a@b.co"})
	require.NoError(t, err)
	assert.True(t, env.Has("accounts"))
}

func TestThinEndpoints(t *testing.T) {
	var gotPath string
	var gotForm map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = r.ParseForm()
		gotForm = r.PostForm
		_, _ = io.WriteString(w, `{"success":true}`)
	}))
	defer srv.Close()
	c := newTestClient(t, srv.URL)
	ctx := context.Background()

	_, err := c.RegisterAccount(ctx, Params{"email": "user@mail.com", "name": "user name", "password": "pw"})
	require.NoError(t, err)
	assert.Equal(t, "/account/register", gotPath)
	assert.Equal(t, "user@mail.com", gotForm["email"][0])
	assert.Equal(t, "101", gotForm["merchant_id"][0])

	_, err = c.LinkAccount(ctx, Params{"email": "user@mail.com"})
	require.NoError(t, err)
	assert.Equal(t, "/account/link", gotPath)

	_, err = c.Refund(ctx, "RP1", Params{"amount": 1000})
	require.NoError(t, err)
	assert.Equal(t, "/transaction/RP1/refund", gotPath)
	assert.Equal(t, "1000", gotForm["amount"][0])

	_, err = c.Split(ctx, "RP1", nil)
	require.NoError(t, err)
	assert.Equal(t, "/transaction/RP1/split", gotPath)

	driver, err := models.NewBeneficiary(models.Input{
		"email": "driver1@mail.com", "share_amount": 15000, "share_item_id": "delivery", "tier": 1,
	})
	require.NoError(t, err)
	aff, err := models.NewBeneficiary(models.Input{"email": "aff@mail.com", "share_amount": 100, "tier": 2})
	require.NoError(t, err)
	_, err = c.AddBeneficiaries(ctx, "RP1", []*models.Beneficiary{driver, aff})
	require.NoError(t, err)
	assert.Equal(t, "/transaction/RP1/beneficiary", gotPath)
	assert.Equal(t, "driver1@mail.com", gotForm["vendor_share[0][email]"][0])
	assert.Equal(t, "aff@mail.com", gotForm["aff_share[0][email]"][0])

	_, err = c.Refund(ctx, "", nil)
	require.Error(t, err)
}

func TestMetricEndpoint(t *testing.T) {
	assert.Equal(t, "/transaction", metricEndpoint("/transaction"))
	assert.Equal(t, "/transaction/{ref}/refund", metricEndpoint("/transaction/RP1/refund"))
	assert.Equal(t, "/account", metricEndpoint("/account?limit=1"))
}

func TestPing(t *testing.T) {
	c := newTestClient(t, "http://127.0.0.1:0")
	assert.NoError(t, c.Ping(context.Background()))

	c.tokens = StaticToken("")
	assert.ErrorIs(t, c.Ping(context.Background()), domain.ErrTokenUnavailable)
}
