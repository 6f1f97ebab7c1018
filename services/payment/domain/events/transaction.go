package events

import (
	"time"

	"github.com/google/uuid"
)

// TopicTransactionCreated is the Watermill topic published when Ratapay
// accepted an invoice and the transaction was recorded.
const TopicTransactionCreated = "transaction.created"

// TransactionCreatedEvent is published in the same database transaction that
// records the Transaction. Consumers subscribe via
// EventBus.Subscribe(ctx, events.TopicTransactionCreated).
type TransactionCreatedEvent struct {
	EventID       uuid.UUID `json:"event_id"` // Unique publish-time identifier for deduplication
	Version       int       `json:"version"`  // Schema version; increment on breaking changes
	TransactionID uuid.UUID `json:"transaction_id"`
	Ref           string    `json:"ref"`
	InvoiceID     string    `json:"invoice_id"`
	Amount        int64     `json:"amount"`
	PaymentURL    string    `json:"payment_url"`
	OccurredAt    time.Time `json:"occurred_at"`
}
