package signature

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghuser/ratapay/pkg/payload"
)

func obj(kv ...any) *payload.Object {
	o := payload.NewObject()
	for i := 0; i < len(kv); i += 2 {
		o.Set(kv[i].(string), kv[i+1])
	}
	return o
}

func TestCanonicalizeEmpty(t *testing.T) {
	got, err := Canonicalize(nil)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = Canonicalize(payload.NewObject())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCanonicalizeSortsTopLevelOnly(t *testing.T) {
	p := obj(
		"zebra", "z",
		"alpha", obj("b", "1x", "a", "2x"),
		"mid", []*payload.Object{obj("y", "y", "x", "x")},
	)

	got, err := Canonicalize(p)
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":{"b":"1x","a":"2x"},"mid":[{"y":"y","x":"x"}],"zebra":"z"}`, string(got))
}

func TestCanonicalizeValues(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		expected string
	}{
		{"int64", int64(25000), `25000`},
		{"int", 7, `7`},
		{"negative", int64(-3), `-3`},
		{"numeric string", "101", `101`},
		{"numeric string leading zeros", "007", `7`},
		{"numeric string signed", "+5", `5`},
		{"numeric string padded", " 42 ", `42`},
		{"decimal string", "1.5", `1.5`},
		{"integral float string", "10.0", `10.0`},
		{"exponent string", "1e3", `1000.0`},
		{"huge exponent string", "1e25", `1.0e+25`},
		{"json number", json.Number("12"), `12`},
		{"float", 2.25, `2.25`},
		{"alphanumeric stays quoted", "7D", `"7D"`},
		{"hex stays quoted", "0x1A", `"0x1A"`},
		{"slashes unescaped", "https://a.b/c", `"https://a.b/c"`},
		{"quote and backslash", `a"b\c`, `"a\"b\\c"`},
		{"html not escaped", "<b>&", `"<b>&"`},
		{"non-ascii escaped", "caf\u00e9", `"caf\u00e9"`},
		{"astral escaped as surrogates", "\U0001F600", `"\ud83d\ude00"`},
		{"control escaped", "a\x01b", `"a\u0001b"`},
		{"newline escaped", "a\nb", `"a\nb"`},
		{"spaces stripped", "Food Order #123", `"FoodOrder#123"`},
		{"bool true", true, `true`},
		{"null", nil, `null`},
		{"string list", []string{"1", "x"}, `[1,"x"]`},
		{"any list", []any{int64(1), "a b"}, `[1,"ab"]`},
		{"plain map sorted", map[string]any{"b": "1", "a": "2"}, `{"a":2,"b":1}`},
		{"empty nested object", payload.NewObject(), `[]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Canonicalize(obj("k", tt.value))
			require.NoError(t, err)
			assert.Equal(t, `{"k":`+tt.expected+`}`, string(got))
		})
	}
}

func TestCanonicalizeRejectsInvalidUTF8(t *testing.T) {
	_, err := Canonicalize(obj("k", "\xff"))
	require.Error(t, err)
}

func TestCanonicalizeRejectsUnsupportedType(t *testing.T) {
	_, err := Canonicalize(obj("k", struct{}{}))
	require.Error(t, err)
}

func TestCanonicalizeInsertionOrderIndependent(t *testing.T) {
	a := obj("note", "n", "amount", int64(10), "email", "e@x.io")
	b := obj("email", "e@x.io", "note", "n", "amount", int64(10))

	ca, err := Canonicalize(a)
	require.NoError(t, err)
	cb, err := Canonicalize(b)
	require.NoError(t, err)
	assert.Equal(t, string(ca), string(cb))
}

func TestCanonicalizeInvoiceGolden(t *testing.T) {
	item := obj(
		"id", "food1",
		"qty", int64(1),
		"subtotal", int64(25000),
		"name", "Special Fried Noodle",
		"refundable", int64(1),
		"refund_threshold", "1D",
	)
	vendor := obj(
		"email", "jv1@mail.com",
		"share_amount", int64(25000),
		"share_item_id", "food1",
		"tier", int64(1),
	)
	p := obj(
		"note", "Food Order #123",
		"email", "buyer@mail.com",
		"invoice_id", "FO123",
		"amount", int64(50000),
		"refundable", int64(1),
		"refund_threshold", "1D",
		"url_callback", "https://mysite.com/callback",
		"items", []*payload.Object{item},
		"paysystem", "QRIS",
		"source_invoice_id", "FO123",
		"vendor_share", []*payload.Object{vendor},
		"merchant_id", "101",
	)

	got, err := Canonicalize(p)
	require.NoError(t, err)

	g := goldie.New(t)
	g.Assert(t, "invoice_canonical", got)

	hash, err := HashPayload(p)
	require.NoError(t, err)
	assert.Equal(t, "d4400967bfe11a11d407e4b57bd27c905ae3a9fed359bc092ee17ae66ffe5e5d", hash)
}
