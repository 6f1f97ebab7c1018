package services

import (
	"errors"
	"math"
	"testing"

	"github.com/ghuser/ratapay/services/payment/domain"
	"github.com/ghuser/ratapay/services/payment/domain/models"
)

func newInvoice(t *testing.T, amount, secondAmount int64) *models.Invoice {
	t.Helper()
	inv, err := models.NewInvoice(models.Input{
		"note":          "Order",
		"email":         "buyer@mail.com",
		"invoice_id":    "INV1",
		"amount":        amount,
		"second_amount": secondAmount,
		"paysystem":     "QRIS",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return inv
}

func addItem(t *testing.T, inv *models.Invoice, id string, subtotal int64) {
	t.Helper()
	if err := inv.AddItems([]models.Input{{"id": id, "subtotal": subtotal, "name": "Item " + id}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func addBeneficiary(t *testing.T, inv *models.Invoice, in models.Input) {
	t.Helper()
	if err := inv.AddBeneficiaries([]models.Input{in}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func expectViolation(t *testing.T, err error, rule domain.Invariant, message string) {
	t.Helper()
	if !errors.Is(err, domain.ErrInvariantViolation) {
		t.Fatalf("expected ErrInvariantViolation, got %v", err)
	}
	var iv *domain.InvariantViolation
	if !errors.As(err, &iv) {
		t.Fatalf("expected *InvariantViolation, got %T", err)
	}
	if iv.Rule != rule {
		t.Fatalf("expected rule %q, got %q", rule, iv.Rule)
	}
	if iv.Message != message {
		t.Fatalf("expected message %q, got %q", message, iv.Message)
	}
}

func TestReconcileInvoice(t *testing.T) {
	t.Run("empty invoice is valid", func(t *testing.T) {
		if err := ReconcileInvoice(newInvoice(t, 100, 0)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("nil invoice", func(t *testing.T) {
		if err := ReconcileInvoice(nil); err == nil {
			t.Fatal("expected error, got nil")
		}
	})

	t.Run("items exceed amount", func(t *testing.T) {
		inv := newInvoice(t, 90, 0)
		addItem(t, inv, "a", 100)
		expectViolation(t, ReconcileInvoice(inv), domain.InvariantItemsTotal, "Items Total Amount Exceeds Invoice Amount")
	})

	t.Run("items equal to amount pass", func(t *testing.T) {
		inv := newInvoice(t, 100, 0)
		addItem(t, inv, "a", 60)
		addItem(t, inv, "b", 40)
		if err := ReconcileInvoice(inv); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("shares exceed amount", func(t *testing.T) {
		inv := newInvoice(t, 100, 0)
		addBeneficiary(t, inv, models.Input{"email": "a@b.co", "share_amount": 60})
		addBeneficiary(t, inv, models.Input{"email": "c@d.co", "share_amount": 41})
		expectViolation(t, ReconcileInvoice(inv), domain.InvariantShareTotal,
			"Beneficiaries Total Share Amount Exceeds Invoice Amount")
	})

	t.Run("rebill shares exceed second amount", func(t *testing.T) {
		inv := newInvoice(t, 100, 10)
		addBeneficiary(t, inv, models.Input{"email": "a@b.co", "share_amount": 50, "rebill_share_amount": 11})
		expectViolation(t, ReconcileInvoice(inv), domain.InvariantRebillShareTotal,
			"Beneficiaries Total Rebill Share Amount Exceeds Invoice Amount")
	})

	t.Run("beneficiary without item link", func(t *testing.T) {
		inv := newInvoice(t, 100, 0)
		addItem(t, inv, "a", 50)
		addBeneficiary(t, inv, models.Input{"email": "ok@b.co", "share_amount": 10, "share_item_id": "a"})
		addBeneficiary(t, inv, models.Input{"email": "orphan@b.co", "share_amount": 10, "share_item_id": "zzz"})

		err := ReconcileInvoice(inv)
		expectViolation(t, err, domain.InvariantBeneficiaryItemLink,
			"Beneficiary not Associated to Any Item orphan@b.co")
		var iv *domain.InvariantViolation
		errors.As(err, &iv)
		if iv.Subject != "orphan@b.co" {
			t.Fatalf("expected subject orphan@b.co, got %q", iv.Subject)
		}
	})

	t.Run("beneficiary with no share item id is orphaned when items exist", func(t *testing.T) {
		inv := newInvoice(t, 100, 0)
		addItem(t, inv, "a", 50)
		addBeneficiary(t, inv, models.Input{"email": "x@b.co", "share_amount": 10})
		expectViolation(t, ReconcileInvoice(inv), domain.InvariantBeneficiaryItemLink,
			"Beneficiary not Associated to Any Item x@b.co")
	})

	t.Run("no items means no link requirement", func(t *testing.T) {
		inv := newInvoice(t, 100, 0)
		addBeneficiary(t, inv, models.Input{"email": "x@b.co", "share_amount": 10, "share_item_id": "ghost"})
		if err := ReconcileInvoice(inv); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("rules are evaluated in order", func(t *testing.T) {
		inv := newInvoice(t, 10, 0)
		addItem(t, inv, "a", 50)
		addBeneficiary(t, inv, models.Input{"email": "x@b.co", "share_amount": 50, "share_item_id": "nope"})
		expectViolation(t, ReconcileInvoice(inv), domain.InvariantItemsTotal, "Items Total Amount Exceeds Invoice Amount")
	})

	t.Run("item subtotals overflowing int64 exceed amount", func(t *testing.T) {
		inv := newInvoice(t, 100, 0)
		addItem(t, inv, "a", math.MaxInt64)
		addItem(t, inv, "b", math.MaxInt64)
		expectViolation(t, ReconcileInvoice(inv), domain.InvariantItemsTotal, "Items Total Amount Exceeds Invoice Amount")
	})

	t.Run("single max subtotal fits max amount", func(t *testing.T) {
		inv := newInvoice(t, math.MaxInt64, 0)
		addItem(t, inv, "a", math.MaxInt64)
		if err := ReconcileInvoice(inv); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("max subtotal plus one overflows max amount", func(t *testing.T) {
		inv := newInvoice(t, math.MaxInt64, 0)
		addItem(t, inv, "a", math.MaxInt64)
		addItem(t, inv, "b", 1)
		expectViolation(t, ReconcileInvoice(inv), domain.InvariantItemsTotal, "Items Total Amount Exceeds Invoice Amount")
	})

	t.Run("shares overflowing int64 exceed amount", func(t *testing.T) {
		inv := newInvoice(t, 100, 0)
		addBeneficiary(t, inv, models.Input{"email": "a@b.co", "share_amount": int64(math.MaxInt64)})
		addBeneficiary(t, inv, models.Input{"email": "c@d.co", "share_amount": int64(math.MaxInt64)})
		expectViolation(t, ReconcileInvoice(inv), domain.InvariantShareTotal,
			"Beneficiaries Total Share Amount Exceeds Invoice Amount")
	})

	t.Run("rebill shares overflowing int64 exceed second amount", func(t *testing.T) {
		inv := newInvoice(t, 100, 100)
		addBeneficiary(t, inv, models.Input{"email": "a@b.co", "share_amount": 1, "rebill_share_amount": int64(math.MaxInt64)})
		addBeneficiary(t, inv, models.Input{"email": "c@d.co", "share_amount": 1, "rebill_share_amount": int64(math.MaxInt64)})
		expectViolation(t, ReconcileInvoice(inv), domain.InvariantRebillShareTotal,
			"Beneficiaries Total Rebill Share Amount Exceeds Invoice Amount")
	})

	t.Run("negative subtotal cannot offset the total", func(t *testing.T) {
		inv := newInvoice(t, 60, 0)
		err := inv.AddItems([]models.Input{
			{"id": "a", "subtotal": -100, "name": "Item a"},
			{"id": "b", "subtotal": 150, "name": "Item b"},
		})
		if !errors.Is(err, domain.ErrInvalidFields) {
			t.Fatalf("expected ErrInvalidFields, got %v", err)
		}
		if len(inv.Items()) != 0 {
			t.Fatalf("expected no items after rejected batch, got %d", len(inv.Items()))
		}
	})

	t.Run("cleared items lift the link requirement", func(t *testing.T) {
		inv := newInvoice(t, 100, 0)
		addItem(t, inv, "a", 50)
		addBeneficiary(t, inv, models.Input{"email": "x@b.co", "share_amount": 10, "share_item_id": "ghost"})
		inv.ClearItems()
		if err := ReconcileInvoice(inv); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestCheckInvoice(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		got := CheckInvoice(newInvoice(t, 100, 0))
		if !got.Valid || got.Message != "Valid Invoice" {
			t.Fatalf("unexpected outcome %+v", got)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		inv := newInvoice(t, 90, 0)
		addItem(t, inv, "a", 100)
		got := CheckInvoice(inv)
		if got.Valid || got.Message != "Items Total Amount Exceeds Invoice Amount" {
			t.Fatalf("unexpected outcome %+v", got)
		}
	})
}
