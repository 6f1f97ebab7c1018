package events_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/ratapay/services/payment/domain/events"
)

func TestTransactionCreatedEvent_JSONFieldNames(t *testing.T) {
	evt := events.TransactionCreatedEvent{
		EventID:       uuid.MustParse("550e8400-e29b-41d4-a716-446655440001"),
		Version:       1,
		TransactionID: uuid.MustParse("550e8400-e29b-41d4-a716-446655440000"),
		Ref:           "RP123",
		InvoiceID:     "FO123",
		Amount:        50000,
		PaymentURL:    "https://appdev.ratapay.co.id/payment/RP123",
		OccurredAt:    time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC),
	}

	data, err := json.Marshal(evt)
	if err != nil {
		t.Fatalf("json.Marshal failed: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("json.Unmarshal failed: %v", err)
	}
	for _, key := range []string{"event_id", "version", "transaction_id", "ref", "invoice_id", "amount", "payment_url", "occurred_at"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("missing JSON key %q", key)
		}
	}
	if raw["ref"] != "RP123" {
		t.Errorf("ref: got %v, want RP123", raw["ref"])
	}
}

func TestTopicTransactionCreated(t *testing.T) {
	if events.TopicTransactionCreated != "transaction.created" {
		t.Fatalf("unexpected topic %q", events.TopicTransactionCreated)
	}
}
