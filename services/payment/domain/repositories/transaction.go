package repositories

import (
	"context"

	"github.com/ghuser/ratapay/services/payment/domain/models"
)

// QueryOpts contains pagination parameters for list queries.
type QueryOpts struct {
	Limit  int // Maximum number of records to return
	Offset int // Number of records to skip
}

// TransactionRepository is the persistence interface for recorded transactions.
// The domain layer owns this interface; infrastructure implements it.
type TransactionRepository interface {
	// Save records tx and publishes events.TopicTransactionCreated atomically.
	Save(ctx context.Context, tx *models.Transaction) error

	// GetByRef returns the transaction with the given Ratapay ref.
	GetByRef(ctx context.Context, ref string) (*models.Transaction, error)

	// List returns a page of transactions, newest first, and the total count.
	List(ctx context.Context, opts QueryOpts) ([]*models.Transaction, int, error)

	// UpdateStatus changes the status of the transaction with the given ref.
	UpdateStatus(ctx context.Context, ref string, status models.TransactionStatus) error
}
