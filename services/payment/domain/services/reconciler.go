// Package services contains stateless domain services for the payment bounded context.
// They operate purely on domain types and have no external dependencies.
package services

import (
	"errors"
	"math"

	"github.com/ghuser/ratapay/services/payment/domain"
	"github.com/ghuser/ratapay/services/payment/domain/models"
)

// ValidInvoiceMessage is the outcome message of an invoice that passed every rule.
const ValidInvoiceMessage = "Valid Invoice"

// Outcome is the structured view of a reconciliation.
type Outcome struct {
	Valid   bool   `json:"valid" yaml:"valid"`
	Message string `json:"message" yaml:"message"`
}

// ReconcileInvoice checks the cross-entity rules of inv and returns the first
// broken one as an *domain.InvariantViolation, in this order:
//
//  1. item subtotals must not exceed amount
//  2. beneficiary shares must not exceed amount
//  3. beneficiary rebill shares must not exceed second_amount
//  4. with any items present, every beneficiary must reference an item id
func ReconcileInvoice(inv *models.Invoice) error {
	if inv == nil {
		return errors.New("invoice cannot be nil")
	}

	items := inv.Items()
	if len(items) > 0 {
		subtotals := make([]int64, len(items))
		for i, item := range items {
			subtotals[i] = item.Subtotal()
		}
		if sumExceeds(subtotals, inv.Amount()) {
			return &domain.InvariantViolation{
				Rule:    domain.InvariantItemsTotal,
				Message: "Items Total Amount Exceeds Invoice Amount",
			}
		}
	}

	beneficiaries := inv.Beneficiaries()
	if len(beneficiaries) > 0 {
		shares := make([]int64, len(beneficiaries))
		rebills := make([]int64, len(beneficiaries))
		for i, b := range beneficiaries {
			shares[i] = b.ShareAmount()
			rebills[i] = b.RebillShareAmount()
		}
		if sumExceeds(shares, inv.Amount()) {
			return &domain.InvariantViolation{
				Rule:    domain.InvariantShareTotal,
				Message: "Beneficiaries Total Share Amount Exceeds Invoice Amount",
			}
		}
		if sumExceeds(rebills, inv.SecondAmount()) {
			return &domain.InvariantViolation{
				Rule:    domain.InvariantRebillShareTotal,
				Message: "Beneficiaries Total Rebill Share Amount Exceeds Invoice Amount",
			}
		}
	}

	if len(items) > 0 {
		for _, b := range beneficiaries {
			if !inv.HasItem(b.ShareItemID()) {
				return &domain.InvariantViolation{
					Rule:    domain.InvariantBeneficiaryItemLink,
					Subject: b.Email(),
					Message: "Beneficiary not Associated to Any Item " + b.Email(),
				}
			}
		}
	}

	return nil
}

// sumExceeds reports whether the sum of values is greater than limit.
// A sum that would overflow int64 exceeds every limit.
func sumExceeds(values []int64, limit int64) bool {
	var total int64
	for _, v := range values {
		if v > 0 && total > math.MaxInt64-v {
			return true
		}
		total += v
	}
	return total > limit
}

// CheckInvoice runs ReconcileInvoice and reports the result as an Outcome.
// Errors other than invariant violations are reported with their message.
func CheckInvoice(inv *models.Invoice) Outcome {
	if err := ReconcileInvoice(inv); err != nil {
		return Outcome{Valid: false, Message: err.Error()}
	}
	return Outcome{Valid: true, Message: ValidInvoiceMessage}
}
