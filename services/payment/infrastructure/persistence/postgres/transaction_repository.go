package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ghuser/ratapay/pkg/database"
	"github.com/ghuser/ratapay/pkg/events"
	paymentdomain "github.com/ghuser/ratapay/services/payment/domain"
	domainevents "github.com/ghuser/ratapay/services/payment/domain/events"
	"github.com/ghuser/ratapay/services/payment/domain/models"
	"github.com/ghuser/ratapay/services/payment/domain/repositories"
)

const uniqueViolation = "23505"

const (
	insertTransactionSQL = `
INSERT INTO transactions (id, ref, invoice_id, note, email, amount, paysystem, payment_url, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	selectTransactionColumns = `
SELECT id, ref, invoice_id, note, email, amount, paysystem, payment_url, status, created_at
FROM transactions`

	getTransactionByRefSQL = selectTransactionColumns + `
WHERE ref = $1`

	listTransactionsSQL = selectTransactionColumns + `
ORDER BY created_at DESC, id
LIMIT $1 OFFSET $2`

	countTransactionsSQL = `SELECT count(*) FROM transactions`

	updateTransactionStatusSQL = `
UPDATE transactions SET status = $2, updated_at = now()
WHERE ref = $1`
)

// TransactionRepository implements repositories.TransactionRepository against PostgreSQL.
type TransactionRepository struct {
	db  *database.Database
	bus *events.EventBus
}

var _ repositories.TransactionRepository = (*TransactionRepository)(nil)

// NewTransactionRepository returns a TransactionRepository backed by the given
// pool and event bus. A nil bus disables event publishing.
func NewTransactionRepository(db *database.Database, bus *events.EventBus) *TransactionRepository {
	return &TransactionRepository{db: db, bus: bus}
}

// Save records tx and publishes a TransactionCreatedEvent within the same transaction.
// Returns ErrTransactionAlreadyExists when the ref was already recorded.
func (r *TransactionRepository) Save(ctx context.Context, t *models.Transaction) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, insertTransactionSQL,
			t.ID, t.Ref, t.InvoiceID, t.Note, t.Email, t.Amount,
			t.Paysystem, t.PaymentURL, string(t.Status), t.CreatedAt,
		); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
				return paymentdomain.ErrTransactionAlreadyExists
			}
			return fmt.Errorf("insert transaction: %w", err)
		}

		if r.bus != nil {
			if err := r.publishCreated(ctx, tx, t); err != nil {
				return fmt.Errorf("publish transaction created: %w", err)
			}
		}
		return nil
	})
}

// GetByRef returns the transaction with the given ref or ErrTransactionNotFound.
func (r *TransactionRepository) GetByRef(ctx context.Context, ref string) (*models.Transaction, error) {
	row := r.db.DB().QueryRowContext(ctx, getTransactionByRefSQL, ref)
	t, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, paymentdomain.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("query transaction: %w", err)
	}
	return t, nil
}

// List returns a page of transactions, newest first, plus the total count.
func (r *TransactionRepository) List(ctx context.Context, opts repositories.QueryOpts) ([]*models.Transaction, int, error) {
	rows, err := r.db.DB().QueryContext(ctx, listTransactionsSQL, opts.Limit, opts.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var out []*models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate transactions: %w", err)
	}

	var total int
	if err := r.db.DB().QueryRowContext(ctx, countTransactionsSQL).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}
	return out, total, nil
}

// UpdateStatus changes the status of the transaction with the given ref.
func (r *TransactionRepository) UpdateStatus(ctx context.Context, ref string, status models.TransactionStatus) error {
	res, err := r.db.DB().ExecContext(ctx, updateTransactionStatusSQL, ref, string(status))
	if err != nil {
		return fmt.Errorf("update transaction status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update transaction status: %w", err)
	}
	if n == 0 {
		return paymentdomain.ErrTransactionNotFound
	}
	return nil
}

func (r *TransactionRepository) publishCreated(ctx context.Context, tx *sql.Tx, t *models.Transaction) error {
	event := domainevents.TransactionCreatedEvent{
		EventID:       uuid.New(),
		Version:       1,
		TransactionID: t.ID,
		Ref:           t.Ref,
		InvoiceID:     t.InvoiceID,
		Amount:        t.Amount,
		PaymentURL:    t.PaymentURL,
		OccurredAt:    t.CreatedAt,
	}
	msg, err := events.NewEventMessage(event.EventID.String(), event.Version, event)
	if err != nil {
		return err
	}
	return r.bus.PublishTx(ctx, tx, domainevents.TopicTransactionCreated, msg)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	var (
		t      models.Transaction
		status string
	)
	if err := row.Scan(
		&t.ID, &t.Ref, &t.InvoiceID, &t.Note, &t.Email, &t.Amount,
		&t.Paysystem, &t.PaymentURL, &status, &t.CreatedAt,
	); err != nil {
		return nil, err
	}
	t.Status = models.TransactionStatus(status)
	return &t, nil
}
