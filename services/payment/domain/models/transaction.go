package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TransactionStatus tracks what the gateway knows about a transaction.
type TransactionStatus string

const (
	TransactionPending  TransactionStatus = "pending"
	TransactionRefunded TransactionStatus = "refunded"
)

// Transaction is the record kept once Ratapay accepted an invoice.
type Transaction struct {
	ID         uuid.UUID
	Ref        string // Ratapay reference, used in the payment URL
	InvoiceID  string // merchant invoice id echoed back as source_invoice_id
	Note       string
	Email      string
	Amount     int64
	Paysystem  string
	PaymentURL string
	Status     TransactionStatus
	CreatedAt  time.Time
}

// NewTransaction records a transaction Ratapay created for inv.
func NewTransaction(inv *Invoice, ref, paymentURL string) (*Transaction, error) {
	if inv == nil {
		return nil, fmt.Errorf("invoice cannot be nil")
	}
	if ref == "" {
		return nil, fmt.Errorf("transaction ref must be set")
	}
	return &Transaction{
		ID:         uuid.New(),
		Ref:        ref,
		InvoiceID:  inv.InvoiceID(),
		Note:       inv.Note(),
		Email:      inv.Email(),
		Amount:     inv.Amount(),
		Paysystem:  inv.Paysystem(),
		PaymentURL: paymentURL,
		Status:     TransactionPending,
		CreatedAt:  time.Now().UTC(),
	}, nil
}
