package domain

import (
	"errors"
	"strings"
)

// Sentinel errors for the payment domain. Use errors.Is() to check these.
var (
	// ErrMissingRequiredField indicates a required constructor input was absent.
	ErrMissingRequiredField = errors.New("missing required field")

	// ErrInvalidFields indicates one or more field-level format or range violations.
	ErrInvalidFields = errors.New("invalid fields")

	// ErrInvariantViolation indicates an invoice whose items and beneficiaries disagree.
	ErrInvariantViolation = errors.New("invoice invariant violated")

	// ErrTransport indicates a network or HTTP-layer failure talking to Ratapay.
	ErrTransport = errors.New("ratapay transport failure")

	// ErrEmptyResponse indicates Ratapay answered without a usable body.
	ErrEmptyResponse = errors.New("empty response")

	// ErrMalformedResponse indicates a body without a boolean success field.
	ErrMalformedResponse = errors.New("malformed response")

	// ErrRequestRejected indicates Ratapay answered success=false.
	ErrRequestRejected = errors.New("request rejected by ratapay")

	// ErrTokenUnavailable indicates no access token could be obtained.
	ErrTokenUnavailable = errors.New("access token unavailable")

	// ErrTransactionNotFound indicates the requested transaction does not exist.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrTransactionAlreadyExists indicates a transaction with the same ref was already recorded.
	ErrTransactionAlreadyExists = errors.New("transaction already exists")
)

// MissingFieldError is returned by a constructor as soon as a required input is absent.
// It is never aggregated with field violations.
type MissingFieldError struct {
	Entity string
	Field  string
}

func (e *MissingFieldError) Error() string {
	return e.Entity + " " + e.Field + " is required"
}

// Is reports ErrMissingRequiredField so callers can match the category.
func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingRequiredField
}

// Violation is one field-level problem found while constructing an entity.
type Violation struct {
	Field  string
	Reason string
}

func (v Violation) String() string {
	return v.Field + ": " + v.Reason
}

// ValidationError aggregates every violation from one construction attempt.
type ValidationError struct {
	Entity     string
	Violations []Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	return strings.Join(parts, ", ")
}

// Is reports ErrInvalidFields so callers can match the category.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidFields
}

// Fields returns field name -> reason, handy for HTTP error bodies.
func (e *ValidationError) Fields() map[string]string {
	out := make(map[string]string, len(e.Violations))
	for _, v := range e.Violations {
		out[v.Field] = v.Reason
	}
	return out
}

// Invariant names a cross-entity rule checked by the invoice reconciler.
type Invariant string

const (
	InvariantItemsTotal          Invariant = "items_total"
	InvariantShareTotal          Invariant = "share_total"
	InvariantRebillShareTotal    Invariant = "rebill_share_total"
	InvariantBeneficiaryItemLink Invariant = "beneficiary_item_link"
)

// InvariantViolation describes the first reconciler rule an invoice broke.
// Subject holds the offending item id or beneficiary email when the rule is per-entity.
type InvariantViolation struct {
	Rule    Invariant
	Subject string
	Message string
}

func (e *InvariantViolation) Error() string {
	return e.Message
}

// Is reports ErrInvariantViolation so callers can match the category.
func (e *InvariantViolation) Is(target error) bool {
	return target == ErrInvariantViolation
}

// RejectedError carries the message Ratapay returned alongside success=false.
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string {
	return "ratapay: " + e.Message
}

// Is reports ErrRequestRejected so callers can match the category.
func (e *RejectedError) Is(target error) bool {
	return target == ErrRequestRejected
}
