package main

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/ghuser/ratapay/pkg/cache"
	"github.com/ghuser/ratapay/pkg/events"
	"github.com/ghuser/ratapay/pkg/logger"
	paymentEvents "github.com/ghuser/ratapay/services/payment/domain/events"
	"github.com/ghuser/ratapay/services/payment/domain/models"
)

type transactionCache interface {
	Set(ctx context.Context, tx *cache.CachedTransaction) error
}

// handleTransactionCreated returns a handler for transaction.created events.
// Handlers must be idempotent; EventBus retries up to 3x on failure.
// Warms the Redis read model so status lookups by ref skip Postgres.
func handleTransactionCreated(c transactionCache, log logger.Logger) func(context.Context, *message.Message) error {
	return func(ctx context.Context, msg *message.Message) error {
		var evt paymentEvents.TransactionCreatedEvent
		if err := events.DecodeEvent(msg, &evt); err != nil {
			return err
		}

		if err := c.Set(ctx, &cache.CachedTransaction{
			ID:         evt.TransactionID,
			Ref:        evt.Ref,
			InvoiceID:  evt.InvoiceID,
			Amount:     evt.Amount,
			PaymentURL: evt.PaymentURL,
			Status:     string(models.TransactionPending),
			CreatedAt:  evt.OccurredAt,
		}); err != nil {
			// Cache warming is best-effort; log but do not fail the handler.
			log.WarnContext(ctx, "cache warm failed for transaction.created",
				"ref", evt.Ref, "error", err)
			return nil
		}

		log.InfoContext(ctx, "cache warmed",
			"ref", evt.Ref, "invoice_id", evt.InvoiceID, "event_id", msg.Metadata.Get(events.MetadataEventID))
		return nil
	}
}
