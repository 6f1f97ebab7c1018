package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	pkgcache "github.com/ghuser/ratapay/pkg/cache"
	"github.com/ghuser/ratapay/pkg/logger"
	"github.com/ghuser/ratapay/pkg/payload"
	"github.com/ghuser/ratapay/services/payment/domain/models"
	"github.com/ghuser/ratapay/services/payment/domain/repositories"
	domainsvcs "github.com/ghuser/ratapay/services/payment/domain/services"
	"github.com/ghuser/ratapay/services/payment/infrastructure/ratapay"
)

// Gateway is the part of the Ratapay client the checkout flow needs.
type Gateway interface {
	CreateTransaction(ctx context.Context, inv *models.Invoice) (*ratapay.TransactionResult, error)
	Refund(ctx context.Context, ref string, params ratapay.Params) (*payload.Object, error)
}

// TransactionCache is the Redis read model of recorded transactions.
type TransactionCache interface {
	Get(ctx context.Context, ref string) (*pkgcache.CachedTransaction, error)
	Set(ctx context.Context, tx *pkgcache.CachedTransaction) error
	Delete(ctx context.Context, ref string) error
}

// CheckoutRequest is an invoice with the items and beneficiaries to attach,
// each in the loose input form the entity constructors accept.
type CheckoutRequest struct {
	Invoice       models.Input
	Items         []models.Input
	Beneficiaries []models.Input
}

// CheckoutService assembles invoices, sends them to Ratapay and records the
// resulting transactions. Event publishing is handled by the repository
// layer (outbox pattern). Reads are served from Redis when available.
type CheckoutService struct {
	gateway Gateway
	repo    repositories.TransactionRepository
	cache   TransactionCache
	log     logger.Logger
}

// NewCheckoutService returns a CheckoutService. cache may be nil.
func NewCheckoutService(gateway Gateway, repo repositories.TransactionRepository, cache TransactionCache, log logger.Logger) *CheckoutService {
	return &CheckoutService{gateway: gateway, repo: repo, cache: cache, log: log}
}

// BuildInvoice constructs the invoice in req and attaches its items and
// beneficiaries. The reconciler is not run here.
func BuildInvoice(req CheckoutRequest) (*models.Invoice, error) {
	inv, err := models.NewInvoice(req.Invoice)
	if err != nil {
		return nil, fmt.Errorf("build invoice: %w", err)
	}
	if err := inv.AddItems(req.Items); err != nil {
		return nil, fmt.Errorf("build invoice items: %w", err)
	}
	if err := inv.AddBeneficiaries(req.Beneficiaries); err != nil {
		return nil, fmt.Errorf("build invoice beneficiaries: %w", err)
	}
	return inv, nil
}

// Checkout builds and reconciles the invoice, creates the Ratapay
// transaction and records it. The repository publishes TransactionCreatedEvent.
func (s *CheckoutService) Checkout(ctx context.Context, req CheckoutRequest) (*models.Transaction, error) {
	inv, err := BuildInvoice(req)
	if err != nil {
		return nil, err
	}
	if err := domainsvcs.ReconcileInvoice(inv); err != nil {
		return nil, fmt.Errorf("reconcile invoice: %w", err)
	}

	res, err := s.gateway.CreateTransaction(ctx, inv)
	if err != nil {
		return nil, err
	}

	tx, err := models.NewTransaction(inv, res.Ref, res.PaymentURL)
	if err != nil {
		return nil, fmt.Errorf("record transaction: %w", err)
	}
	if err := s.repo.Save(ctx, tx); err != nil {
		// Ratapay already holds the transaction; the ref is enough to reconcile by hand.
		s.log.ErrorContext(ctx, "transaction created but not recorded",
			"ref", res.Ref, "invoice_id", inv.InvoiceID(), "error", err)
		return nil, fmt.Errorf("save transaction: %w", err)
	}

	s.log.InfoContext(ctx, "transaction created",
		"ref", tx.Ref, "invoice_id", tx.InvoiceID, "amount", tx.Amount)
	return tx, nil
}

// GetByRef retrieves a transaction using a read-through cache pattern:
//  1. Check Redis cache first.
//  2. On cache miss (or cache error), query Postgres.
//  3. Asynchronously warm the cache with the Postgres result.
func (s *CheckoutService) GetByRef(ctx context.Context, ref string) (*models.Transaction, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, ref)
		if err == nil {
			return fromCache(cached), nil
		}
		if !errors.Is(err, redis.Nil) {
			s.log.WarnContext(ctx, "transaction cache read failed", "ref", ref, "error", err)
		}
	}

	tx, err := s.repo.GetByRef(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("get transaction: %w", err)
	}

	if s.cache != nil {
		go func() {
			if err := s.cache.Set(context.Background(), ToCache(tx)); err != nil {
				s.log.Warn("transaction cache warm failed", "ref", tx.Ref, "error", err)
			}
		}()
	}
	return tx, nil
}

// List returns a page of recorded transactions plus the total count.
func (s *CheckoutService) List(ctx context.Context, opts repositories.QueryOpts) ([]*models.Transaction, int, error) {
	txs, total, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	return txs, total, nil
}

// Refund asks Ratapay to refund the transaction and marks it refunded.
func (s *CheckoutService) Refund(ctx context.Context, ref string, params ratapay.Params) error {
	if _, err := s.repo.GetByRef(ctx, ref); err != nil {
		return fmt.Errorf("refund: %w", err)
	}
	if _, err := s.gateway.Refund(ctx, ref, params); err != nil {
		return err
	}
	if err := s.repo.UpdateStatus(ctx, ref, models.TransactionRefunded); err != nil {
		return fmt.Errorf("refund: %w", err)
	}
	if s.cache != nil {
		if err := s.cache.Delete(ctx, ref); err != nil {
			s.log.WarnContext(ctx, "transaction cache evict failed", "ref", ref, "error", err)
		}
	}
	s.log.InfoContext(ctx, "transaction refunded", "ref", ref)
	return nil
}

// ToCache converts tx into its Redis read model.
func ToCache(tx *models.Transaction) *pkgcache.CachedTransaction {
	return &pkgcache.CachedTransaction{
		ID:         tx.ID,
		Ref:        tx.Ref,
		InvoiceID:  tx.InvoiceID,
		Note:       tx.Note,
		Amount:     tx.Amount,
		PaymentURL: tx.PaymentURL,
		Status:     string(tx.Status),
		CreatedAt:  tx.CreatedAt,
	}
}

func fromCache(c *pkgcache.CachedTransaction) *models.Transaction {
	return &models.Transaction{
		ID:         c.ID,
		Ref:        c.Ref,
		InvoiceID:  c.InvoiceID,
		Note:       c.Note,
		Amount:     c.Amount,
		PaymentURL: c.PaymentURL,
		Status:     models.TransactionStatus(c.Status),
		CreatedAt:  c.CreatedAt,
	}
}
