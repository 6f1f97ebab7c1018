package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ghuser/ratapay/pkg/app"
	"github.com/ghuser/ratapay/pkg/auth"
	"github.com/ghuser/ratapay/pkg/httpx"
	"github.com/ghuser/ratapay/services/payment/application/handlers"
	appsvcs "github.com/ghuser/ratapay/services/payment/application/services"
)

// PaymentRoutes registers checkout and transaction endpoints on the provided chi router.
func PaymentRoutes(r chi.Router, a *app.Application) {
	svcs := appsvcs.New(a)
	Routes(r, svcs, a)
}

// Routes mounts the handlers for svcs. Split from PaymentRoutes so tests can
// supply their own service container.
func Routes(r chi.Router, svcs *appsvcs.Services, a *app.Application) {
	r.Route("/checkout", func(r chi.Router) {
		r.With(checkoutLimit(a)...).Post("/", handlers.NewPostCheckoutHandler(svcs, a.SessionStore, a.Logger).Execute)
		r.Group(func(r chi.Router) {
			if a.SessionStore != nil {
				r.Use(auth.RequireCheckout(a.SessionStore, a.Logger))
			}
			r.Get("/status", handlers.NewGetCheckoutStatusHandler(svcs).Execute)
		})
	})
	r.Route("/transactions", func(r chi.Router) {
		r.Use(auth.RequireOperator(operatorKey(a), a.Logger))
		r.Get("/", handlers.NewListTransactionsHandler(svcs).Execute)
		r.Get("/{ref}", handlers.NewGetTransactionHandler(svcs).Execute)
		r.Post("/{ref}/refund", handlers.NewPostRefundHandler(svcs).Execute)
	})
}

func operatorKey(a *app.Application) string {
	if a.Config == nil {
		return ""
	}
	return a.Config.OperatorAPIKey
}

// checkoutLimit is the per-IP budget for creating checkouts, each of which
// costs a signed Ratapay call.
func checkoutLimit(a *app.Application) []func(http.Handler) http.Handler {
	if a.Config == nil || a.Config.CheckoutRateLimit <= 0 {
		return nil
	}
	return []func(http.Handler) http.Handler{httpx.LimitByIP(a.Config.CheckoutRateLimit)}
}
