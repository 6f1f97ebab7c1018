package handlers

import (
	"net/http"

	"github.com/ghuser/ratapay/pkg/auth"
	"github.com/ghuser/ratapay/pkg/errhttp"
	"github.com/ghuser/ratapay/pkg/httpx"
	appsvcs "github.com/ghuser/ratapay/services/payment/application/services"
)

// GetCheckoutStatusHandler handles GET /checkout/status requests.
type GetCheckoutStatusHandler struct {
	svc *appsvcs.Services
}

// NewGetCheckoutStatusHandler returns a GetCheckoutStatusHandler.
func NewGetCheckoutStatusHandler(svc *appsvcs.Services) *GetCheckoutStatusHandler {
	return &GetCheckoutStatusHandler{svc: svc}
}

// Execute returns the transaction remembered in the checkout session.
// Must run behind auth.RequireCheckout.
//
//	@Summary	Checkout status
//	@Tags		checkout
//	@Produce	json
//	@Success	200	{object}	TransactionResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/checkout/status [get]
func (h *GetCheckoutStatusHandler) Execute(w http.ResponseWriter, r *http.Request) {
	c, err := auth.CheckoutFromCtx(r.Context())
	if err != nil {
		httpx.JSONError(w, http.StatusNotFound, "no checkout in progress")
		return
	}

	tx, err := h.svc.Checkout.GetByRef(r.Context(), c.Ref)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(tx))
}
