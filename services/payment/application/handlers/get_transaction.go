package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ghuser/ratapay/pkg/errhttp"
	"github.com/ghuser/ratapay/pkg/httpx"
	appsvcs "github.com/ghuser/ratapay/services/payment/application/services"
)

// GetTransactionHandler handles GET /transactions/{ref} requests.
type GetTransactionHandler struct {
	svc *appsvcs.Services
}

// NewGetTransactionHandler returns a GetTransactionHandler.
func NewGetTransactionHandler(svc *appsvcs.Services) *GetTransactionHandler {
	return &GetTransactionHandler{svc: svc}
}

// Execute returns one transaction by its Ratapay ref.
//
//	@Summary	Get transaction
//	@Tags		transactions
//	@Produce	json
//	@Param		ref	path		string	true	"Ratapay reference"
//	@Success	200	{object}	TransactionResponse
//	@Failure	401	{object}	ErrorResponse
//	@Failure	404	{object}	ErrorResponse
//	@Security	OperatorKey
//	@Router		/transactions/{ref} [get]
func (h *GetTransactionHandler) Execute(w http.ResponseWriter, r *http.Request) {
	tx, err := h.svc.Checkout.GetByRef(r.Context(), chi.URLParam(r, "ref"))
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(tx))
}
