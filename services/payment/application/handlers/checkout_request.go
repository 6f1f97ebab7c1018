package handlers

import (
	"time"

	"github.com/google/uuid"

	pkgvalidator "github.com/ghuser/ratapay/pkg/validator"
	appsvcs "github.com/ghuser/ratapay/services/payment/application/services"
	"github.com/ghuser/ratapay/services/payment/domain/models"
)

func init() {
	if err := pkgvalidator.RegisterString("period", models.ValidatePeriod); err != nil {
		panic(err)
	}
}

// CheckoutItemRequest is one purchased item.
type CheckoutItemRequest struct {
	ID              string `json:"id"               validate:"required,max=32"           example:"food1"`
	Qty             *int64 `json:"qty"              validate:"omitempty,gte=1"           example:"1"`
	Subtotal        int64  `json:"subtotal"                                              example:"25000"`
	Name            string `json:"name"             validate:"required,max=128"          example:"Special Fried Noodle"`
	Type            string `json:"type"             validate:"max=64"`
	Category        string `json:"category"         validate:"max=64"`
	Brand           string `json:"brand"            validate:"max=64"`
	Refundable      bool   `json:"refundable"`
	RefundThreshold string `json:"refund_threshold" validate:"omitempty,period"         example:"1D"`
} // @name CheckoutItemRequest

// CheckoutBeneficiaryRequest is one party receiving a share of the invoice.
type CheckoutBeneficiaryRequest struct {
	Email             string `json:"email"               validate:"required,email"  example:"jv1@mail.com"`
	Name              string `json:"name"                validate:"max=64"`
	Username          string `json:"username"            validate:"max=64"`
	ShareAmount       int64  `json:"share_amount"                                   example:"25000"`
	RebillShareAmount *int64 `json:"rebill_share_amount"`
	ShareItemID       string `json:"share_item_id"                                  example:"food1"`
	Tier              *int64 `json:"tier"                validate:"omitempty,gte=1" example:"1"`
} // @name CheckoutBeneficiaryRequest

// CheckoutRequest is the request body for POST /checkout.
type CheckoutRequest struct {
	Note            string                       `json:"note"             validate:"required"               example:"Food Order #123"`
	Email           string                       `json:"email"            validate:"required,email"         example:"buyer@mail.com"`
	Name            string                       `json:"name"             validate:"max=64"`
	InvoiceID       string                       `json:"invoice_id"       validate:"required"               example:"FO123"`
	Amount          int64                        `json:"amount"           validate:"required"               example:"50000"`
	SecondAmount    *int64                       `json:"second_amount"`
	FirstPeriod     string                       `json:"first_period"     validate:"omitempty,period"`
	SecondPeriod    string                       `json:"second_period"    validate:"omitempty,period"`
	RebillTimes     *int64                       `json:"rebill_times"     validate:"omitempty,gte=1"`
	Refundable      bool                         `json:"refundable"`
	RefundThreshold string                       `json:"refund_threshold" validate:"omitempty,period"        example:"1D"`
	URLCallback     string                       `json:"url_callback"     validate:"omitempty,url"          example:"https://mysite.com/callback"`
	URLSuccess      string                       `json:"url_success"      validate:"omitempty,url"`
	URLFailed       string                       `json:"url_failed"       validate:"omitempty,url"`
	Paysystem       string                       `json:"paysystem"        validate:"required"               example:"QRIS"`
	Items           []CheckoutItemRequest        `json:"items"            validate:"dive"`
	Beneficiaries   []CheckoutBeneficiaryRequest `json:"beneficiaries"    validate:"dive"`
} // @name CheckoutRequest

// TransactionResponse describes a recorded transaction.
type TransactionResponse struct {
	ID         uuid.UUID `json:"id"          example:"123e4567-e89b-12d3-a456-426614174000"`
	Ref        string    `json:"ref"         example:"RP24010200001"`
	InvoiceID  string    `json:"invoice_id"  example:"FO123"`
	Note       string    `json:"note,omitempty"`
	Amount     int64     `json:"amount"      example:"50000"`
	PaymentURL string    `json:"payment_url" example:"https://appdev.ratapay.co.id/payment/RP24010200001"`
	Status     string    `json:"status"      example:"pending"`
	CreatedAt  time.Time `json:"created_at"  example:"2024-01-15T10:30:00Z"`
} // @name TransactionResponse

// ErrorResponse is returned on all error responses.
type ErrorResponse struct {
	Error string `json:"error" example:"Invalid Invoice Email Value"`
} // @name ErrorResponse

// toCheckout converts the request into entity inputs. Optional fields are
// only passed on when set, so entity defaults apply.
func (r *CheckoutRequest) toCheckout() appsvcs.CheckoutRequest {
	inv := models.Input{
		"note":       r.Note,
		"email":      r.Email,
		"invoice_id": r.InvoiceID,
		"amount":     r.Amount,
		"refundable": r.Refundable,
		"paysystem":  r.Paysystem,
	}
	setString(inv, "name", r.Name)
	setInt(inv, "second_amount", r.SecondAmount)
	setString(inv, "first_period", r.FirstPeriod)
	setString(inv, "second_period", r.SecondPeriod)
	setInt(inv, "rebill_times", r.RebillTimes)
	setString(inv, "refund_threshold", r.RefundThreshold)
	setString(inv, "url_callback", r.URLCallback)
	setString(inv, "url_success", r.URLSuccess)
	setString(inv, "url_failed", r.URLFailed)

	items := make([]models.Input, len(r.Items))
	for i, it := range r.Items {
		in := models.Input{
			"id":         it.ID,
			"subtotal":   it.Subtotal,
			"name":       it.Name,
			"refundable": it.Refundable,
		}
		setInt(in, "qty", it.Qty)
		setString(in, "type", it.Type)
		setString(in, "category", it.Category)
		setString(in, "brand", it.Brand)
		setString(in, "refund_threshold", it.RefundThreshold)
		items[i] = in
	}

	beneficiaries := make([]models.Input, len(r.Beneficiaries))
	for i, b := range r.Beneficiaries {
		in := models.Input{
			"email":        b.Email,
			"share_amount": b.ShareAmount,
		}
		setString(in, "name", b.Name)
		setString(in, "username", b.Username)
		setInt(in, "rebill_share_amount", b.RebillShareAmount)
		setString(in, "share_item_id", b.ShareItemID)
		setInt(in, "tier", b.Tier)
		beneficiaries[i] = in
	}

	return appsvcs.CheckoutRequest{Invoice: inv, Items: items, Beneficiaries: beneficiaries}
}

func setString(in models.Input, key, v string) {
	if v != "" {
		in[key] = v
	}
}

func setInt(in models.Input, key string, v *int64) {
	if v != nil {
		in[key] = *v
	}
}

func toResponse(tx *models.Transaction) TransactionResponse {
	return TransactionResponse{
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
