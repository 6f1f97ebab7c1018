package handlers

import (
	"net/http"
	"strconv"

	"github.com/ghuser/ratapay/pkg/errhttp"
	"github.com/ghuser/ratapay/pkg/httpx"
	appsvcs "github.com/ghuser/ratapay/services/payment/application/services"
	"github.com/ghuser/ratapay/services/payment/domain/repositories"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// ListTransactionsResponse is one page of transactions.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	Total        int                   `json:"total"  example:"42"`
	Limit        int                   `json:"limit"  example:"20"`
	Offset       int                   `json:"offset" example:"0"`
} // @name ListTransactionsResponse

// ListTransactionsHandler handles GET /transactions requests.
type ListTransactionsHandler struct {
	svc *appsvcs.Services
}

// NewListTransactionsHandler returns a ListTransactionsHandler.
func NewListTransactionsHandler(svc *appsvcs.Services) *ListTransactionsHandler {
	return &ListTransactionsHandler{svc: svc}
}

// Execute lists recorded transactions, newest first.
//
//	@Summary	List transactions
//	@Tags		transactions
//	@Produce	json
//	@Param		limit	query		int	false	"Page size (max 100)"
//	@Param		offset	query		int	false	"Records to skip"
//	@Success	200		{object}	ListTransactionsResponse
//	@Failure	400		{object}	ErrorResponse
//	@Failure	401		{object}	ErrorResponse
//	@Security	OperatorKey
//	@Router		/transactions [get]
func (h *ListTransactionsHandler) Execute(w http.ResponseWriter, r *http.Request) {
	opts, ok := parseQueryOpts(w, r)
	if !ok {
		return
	}

	txs, total, err := h.svc.Checkout.List(r.Context(), opts)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	out := make([]TransactionResponse, len(txs))
	for i, tx := range txs {
		out[i] = toResponse(tx)
	}
	httpx.JSON(w, http.StatusOK, ListTransactionsResponse{
		Transactions: out,
		Total:        total,
		Limit:        opts.Limit,
		Offset:       opts.Offset,
	})
}

func parseQueryOpts(w http.ResponseWriter, r *http.Request) (repositories.QueryOpts, bool) {
	opts := repositories.QueryOpts{Limit: defaultListLimit}
	q := r.URL.Query()
	if s := q.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			httpx.JSONError(w, http.StatusBadRequest, "limit must be a positive integer")
			return opts, false
		}
		opts.Limit = min(n, maxListLimit)
	}
	if s := q.Get("offset"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			httpx.JSONError(w, http.StatusBadRequest, "offset must be a non-negative integer")
			return opts, false
		}
		opts.Offset = n
	}
	return opts, true
}
