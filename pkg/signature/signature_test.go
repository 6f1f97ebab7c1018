package signature

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghuser/ratapay/pkg/payload"
)

func TestSignEmptyPayloadIsReproducible(t *testing.T) {
	req := Request{Method: "POST", Endpoint: "/transaction", Payload: payload.NewObject()}
	cred := Credentials{Token: "T", Secret: "S"}
	ts := "2024-01-01T00:00:00.000+00:00"

	first, err := Sign(req, cred, ts)
	require.NoError(t, err)
	second, err := Sign(req, cred, ts)
	require.NoError(t, err)

	assert.Equal(t, EmptyPayloadHash, first.PayloadHash)
	assert.Equal(t, "POST:/transaction:T:"+EmptyPayloadHash+":"+ts, first.StringToSign)
	assert.Equal(t, "6e49871f7d939b23696412f99eb77f50f2f49f13fce7e29fb6688e2b7b7909bf", first.Value)
	assert.Equal(t, first, second)

	nilPayload, err := Generate(Request{Method: "POST", Endpoint: "/transaction"}, cred, ts)
	require.NoError(t, err)
	assert.Equal(t, first.Value, nilPayload)
}

func TestSignKnownVector(t *testing.T) {
	p := payload.NewObject()
	p.Set("url", "https://a.b/c")
	p.Set("note", "Order #1")
	p.Set("amount", int64(1000))

	sig, err := Sign(
		Request{Method: "POST", Endpoint: "/transaction", Payload: p},
		Credentials{Token: "tok", Secret: "secret"},
		"2024-01-02T15:04:05.123+07:00",
	)
	require.NoError(t, err)

	assert.Equal(t, `{"amount":1000,"note":"Order#1","url":"https://a.b/c"}`, string(sig.Canonical))
	assert.Equal(t, "f06eea8367619d2e0485d344ca66423fee87488e25377ca967ad8c87bbe21d0d", sig.PayloadHash)
	assert.Equal(t, "5bf42cfed3226af040d7ca2cab789bd865a7d849665718fe429694276659a906", sig.Value)
}

func TestSignInsertionOrderIndependent(t *testing.T) {
	a := payload.NewObject()
	a.Set("amount", int64(10))
	a.Set("note", "x")
	b := payload.NewObject()
	b.Set("note", "x")
	b.Set("amount", int64(10))

	cred := Credentials{Token: "T", Secret: "S"}
	ts := "2024-01-01T00:00:00.000+00:00"
	sa, err := Generate(Request{Method: "POST", Endpoint: "/e", Payload: a}, cred, ts)
	require.NoError(t, err)
	sb, err := Generate(Request{Method: "POST", Endpoint: "/e", Payload: b}, cred, ts)
	require.NoError(t, err)
	assert.Equal(t, sa, sb)
}

func TestStringToSignChangesWithEveryInput(t *testing.T) {
	base := payload.NewObject()
	base.Set("amount", int64(10))
	other := payload.NewObject()
	other.Set("amount", int64(11))

	hashBase, err := HashPayload(base)
	require.NoError(t, err)
	hashOther, err := HashPayload(other)
	require.NoError(t, err)

	ref := StringToSign("POST", "/transaction", "T", hashBase, "2024-01-01T00:00:00.000+00:00")

	variants := map[string]string{
		"method":    StringToSign("GET", "/transaction", "T", hashBase, "2024-01-01T00:00:00.000+00:00"),
		"endpoint":  StringToSign("POST", "/account", "T", hashBase, "2024-01-01T00:00:00.000+00:00"),
		"token":     StringToSign("POST", "/transaction", "U", hashBase, "2024-01-01T00:00:00.000+00:00"),
		"payload":   StringToSign("POST", "/transaction", "T", hashOther, "2024-01-01T00:00:00.000+00:00"),
		"timestamp": StringToSign("POST", "/transaction", "T", hashBase, "2024-01-01T00:00:00.001+00:00"),
	}
	for name, v := range variants {
		assert.NotEqual(t, ref, v, "changing %s must change the string-to-sign", name)
	}
}

func TestStringToSignStripsWhitespace(t *testing.T) {
	got := StringToSign("POST ", "/trans action", "T\n", "h", " ts")
	assert.Equal(t, "POST:/transaction:T:h:ts", got)
}

func TestVerify(t *testing.T) {
	req := Request{Method: "GET", Endpoint: "/account?limit=10"}
	cred := Credentials{Token: "T", Secret: "S"}
	ts := "2024-01-01T00:00:00.000+00:00"

	sig, err := Generate(req, cred, ts)
	require.NoError(t, err)

	ok, err := Verify(req, cred, ts, sig)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Verify(req, Credentials{Token: "T", Secret: "other"}, ts, sig)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFormatTimestamp(t *testing.T) {
	zone := time.FixedZone("WIB", 7*60*60)
	ts := time.Date(2024, 1, 2, 15, 4, 5, 123_456_789, zone)
	assert.Equal(t, "2024-01-02T15:04:05.123+07:00", FormatTimestamp(ts))

	utc := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-01-01T00:00:00.000+00:00", FormatTimestamp(utc))
}
