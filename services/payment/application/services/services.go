package services

import (
	"github.com/ghuser/ratapay/pkg/app"
	"github.com/ghuser/ratapay/pkg/cache"
	"github.com/ghuser/ratapay/services/payment/infrastructure/persistence/postgres"
)

// Services is the application-layer service container for this bounded context.
// It wires domain services with their infrastructure implementations.
type Services struct {
	Checkout *CheckoutService
}

// New wires all payment application services with infrastructure from the Application container.
func New(a *app.Application) *Services {
	repo := postgres.NewTransactionRepository(a.Db, a.EventBus)
	var txCache TransactionCache
	if a.Redis != nil {
		txCache = cache.NewTransactionCache(a.Redis)
	}
	return &Services{
		Checkout: NewCheckoutService(a.Ratapay, repo, txCache, a.Logger),
	}
}
