package handlers

import (
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/ghuser/ratapay/pkg/auth"
	"github.com/ghuser/ratapay/pkg/errhttp"
	"github.com/ghuser/ratapay/pkg/httpx"
	"github.com/ghuser/ratapay/pkg/logger"
	pkgvalidator "github.com/ghuser/ratapay/pkg/validator"
	appsvcs "github.com/ghuser/ratapay/services/payment/application/services"
)

// PostCheckoutHandler handles POST /checkout requests.
type PostCheckoutHandler struct {
	svc      *appsvcs.Services
	sessions sessions.Store
	log      logger.Logger
}

// NewPostCheckoutHandler returns a PostCheckoutHandler. A nil session store
// skips remembering the checkout.
func NewPostCheckoutHandler(svc *appsvcs.Services, store sessions.Store, log logger.Logger) *PostCheckoutHandler {
	return &PostCheckoutHandler{svc: svc, sessions: store, log: log}
}

// Execute sends an invoice to Ratapay and returns the payment page.
//
//	@Summary		Create checkout
//	@Description	Validates an invoice, creates the Ratapay transaction and remembers it in the checkout session
//	@Tags			checkout
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CheckoutRequest	true	"Invoice with items and beneficiaries"
//	@Success		201		{object}	TransactionResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Failure		502		{object}	ErrorResponse
//	@Router			/checkout [post]
func (h *PostCheckoutHandler) Execute(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[CheckoutRequest](w, r)
	if !ok {
		return
	}

	tx, err := h.svc.Checkout.Checkout(r.Context(), req.toCheckout())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	if h.sessions != nil {
		c := auth.Checkout{TransactionID: tx.ID, Ref: tx.Ref}
		if err := auth.RememberCheckout(h.sessions, w, r, c); err != nil {
			h.log.WarnContext(r.Context(), "checkout session not saved", "ref", tx.Ref, "error", err)
		}
	}

	httpx.JSON(w, http.StatusCreated, toResponse(tx))
}
