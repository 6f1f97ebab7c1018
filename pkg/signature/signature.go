// Package signature authenticates Ratapay API requests.
//
// A request is signed by HMAC-SHA256 over the string-to-sign
//
//	{METHOD}:{ENDPOINT}:{API_TOKEN}:{SHA256(canonical payload)}:{TIMESTAMP}
//
// with all whitespace removed, keyed by the API secret and hex encoded.
// Everything here is pure: identical inputs always give identical output.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/ghuser/ratapay/pkg/payload"
)

// TimestampLayout is ISO-8601 with milliseconds and a numeric UTC offset,
// e.g. 2024-01-02T15:04:05.123+07:00.
const TimestampLayout = "2006-01-02T15:04:05.000-07:00"

// EmptyPayloadHash is SHA-256 of the empty string, used when there is no payload.
const EmptyPayloadHash = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

// Request describes what is being signed.
type Request struct {
	Method   string
	Endpoint string
	Payload  *payload.Object
}

// Credentials holds the bearer token and the shared secret.
type Credentials struct {
	Token  string
	Secret string
}

// Signature exposes every intermediate step so callers can debug mismatches.
type Signature struct {
	Canonical    []byte
	PayloadHash  string
	StringToSign string
	Value        string
}

// FormatTimestamp renders t in TimestampLayout keeping t's own zone offset.
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// HashPayload returns the hex SHA-256 of the canonical payload, or
// EmptyPayloadHash when p is nil or has no fields.
func HashPayload(p *payload.Object) (string, error) {
	if p.Len() == 0 {
		return EmptyPayloadHash, nil
	}
	canonical, err := Canonicalize(p)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// StringToSign assembles the colon-delimited composite and strips whitespace.
func StringToSign(method, endpoint, token, payloadHash, timestamp string) string {
	s := method + ":" + endpoint + ":" + token + ":" + payloadHash + ":" + timestamp
	return string(stripWhitespace([]byte(s)))
}

// Sign computes the full signature for req at timestamp.
func Sign(req Request, cred Credentials, timestamp string) (Signature, error) {
	canonical, err := Canonicalize(req.Payload)
	if err != nil {
		return Signature{}, fmt.Errorf("canonicalize payload: %w", err)
	}
	hash := EmptyPayloadHash
	if len(canonical) > 0 {
		sum := sha256.Sum256(canonical)
		hash = hex.EncodeToString(sum[:])
	}
	sts := StringToSign(req.Method, req.Endpoint, cred.Token, hash, timestamp)

	mac := hmac.New(sha256.New, []byte(cred.Secret))
	mac.Write([]byte(sts))

	return Signature{
		Canonical:    canonical,
		PayloadHash:  hash,
		StringToSign: sts,
		Value:        hex.EncodeToString(mac.Sum(nil)),
	}, nil
}

// Generate returns only the hex signature for req at timestamp.
func Generate(req Request, cred Credentials, timestamp string) (string, error) {
	sig, err := Sign(req, cred, timestamp)
	if err != nil {
		return "", err
	}
	return sig.Value, nil
}

// Verify reports whether sig matches req at timestamp, in constant time.
func Verify(req Request, cred Credentials, timestamp, sig string) (bool, error) {
	expected, err := Generate(req, cred, timestamp)
	if err != nil {
		return false, err
	}
	return hmac.Equal([]byte(expected), []byte(sig)), nil
}
