package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ghuser/ratapay/pkg/errhttp"
	"github.com/ghuser/ratapay/pkg/httpx"
	appsvcs "github.com/ghuser/ratapay/services/payment/application/services"
	"github.com/ghuser/ratapay/services/payment/infrastructure/ratapay"
)

// PostRefundHandler handles POST /transactions/{ref}/refund requests.
type PostRefundHandler struct {
	svc *appsvcs.Services
}

// NewPostRefundHandler returns a PostRefundHandler.
func NewPostRefundHandler(svc *appsvcs.Services) *PostRefundHandler {
	return &PostRefundHandler{svc: svc}
}

// Execute refunds a transaction. The optional JSON body is passed to
// Ratapay as refund parameters.
//
//	@Summary	Refund transaction
//	@Tags		transactions
//	@Accept		json
//	@Produce	json
//	@Param		ref	path	string	true	"Ratapay reference"
//	@Success	204
//	@Failure	401	{object}	ErrorResponse
//	@Failure	404	{object}	ErrorResponse
//	@Failure	502	{object}	ErrorResponse
//	@Security	OperatorKey
//	@Router		/transactions/{ref}/refund [post]
func (h *PostRefundHandler) Execute(w http.ResponseWriter, r *http.Request) {
	var params ratapay.Params
	if err := httpx.DecodeJSON(r, &params); err != nil && !errors.Is(err, httpx.ErrEmptyBody) {
		httpx.WriteDecodeError(w, err)
		return
	}

	if err := h.svc.Checkout.Refund(r.Context(), chi.URLParam(r, "ref"), params); err != nil {
		errhttp.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
