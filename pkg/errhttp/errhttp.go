// Package errhttp maps domain sentinel errors to HTTP status codes.
// Add a case to mapErrorToStatus for each new domain sentinel error.
package errhttp

import (
	"errors"
	"net/http"

	"github.com/ghuser/ratapay/pkg/httpx"
	paymentdomain "github.com/ghuser/ratapay/services/payment/domain"
)

// WriteError maps err to an HTTP status code and writes a JSON error response.
// Uses errors.Is() so wrapped sentinel errors are matched correctly.
// Field violations are echoed under "fields". Unrecognized errors become a
// 500 whose body is only the status text.
func WriteError(w http.ResponseWriter, err error) {
	status := mapErrorToStatus(err)

	var ve *paymentdomain.ValidationError
	if errors.As(err, &ve) {
		httpx.JSON(w, status, map[string]any{
			"error":  err.Error(),
			"fields": ve.Fields(),
		})
		return
	}
	var iv *paymentdomain.InvariantViolation
	if errors.As(err, &iv) {
		httpx.JSON(w, status, map[string]any{
			"error": iv.Message,
			"rule":  string(iv.Rule),
		})
		return
	}
	httpx.JSONError(w, status, httpx.SafeError(err, status))
}

func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, paymentdomain.ErrTransactionNotFound):
		return http.StatusNotFound // 404
	case errors.Is(err, paymentdomain.ErrTransactionAlreadyExists):
		return http.StatusConflict // 409
	case errors.Is(err, paymentdomain.ErrMissingRequiredField),
		errors.Is(err, paymentdomain.ErrInvalidFields),
		errors.Is(err, paymentdomain.ErrInvariantViolation):
		return http.StatusUnprocessableEntity // 422
	case errors.Is(err, paymentdomain.ErrTransport),
		errors.Is(err, paymentdomain.ErrEmptyResponse),
		errors.Is(err, paymentdomain.ErrMalformedResponse),
		errors.Is(err, paymentdomain.ErrRequestRejected),
		errors.Is(err, paymentdomain.ErrTokenUnavailable):
		return http.StatusBadGateway // 502
	default:
		return http.StatusInternalServerError // 500
	}
}
