package models

import (
	"github.com/ghuser/ratapay/pkg/payload"
	"github.com/ghuser/ratapay/services/payment/domain"
)

const maxPayerNameLength = 64

// Invoice is a requested transaction with its items and beneficiaries.
// The header fields are fixed at construction; items and beneficiaries are
// appended afterwards and checked together by the invoice reconciler.
type Invoice struct {
	rec           invoiceRecord
	items         []*Item
	itemIDs       map[string]struct{}
	beneficiaries []*Beneficiary
}

type invoiceRecord struct {
	Note            string            `payload:"note"`
	Email           string            `payload:"email"`
	Name            string            `payload:"name"`
	InvoiceID       string            `payload:"invoice_id"`
	Amount          int64             `payload:"amount"`
	SecondAmount    int64             `payload:"second_amount"`
	FirstPeriod     string            `payload:"first_period"`
	SecondPeriod    string            `payload:"second_period"`
	RebillTimes     int64             `payload:"rebill_times"`
	Refundable      bool              `payload:"refundable"`
	RefundThreshold string            `payload:"refund_threshold"`
	URLCallback     string            `payload:"url_callback"`
	URLSuccess      string            `payload:"url_success"`
	URLFailed       string            `payload:"url_failed"`
	Items           []*payload.Object `payload:"items"`
	Paysystem       string            `payload:"paysystem"`
}

// NewInvoice validates in and builds an Invoice with no items or beneficiaries.
//
// Required: note, email, invoice_id, amount, paysystem. paysystem must also be
// a non-empty string; second_amount defaults to 0 and refundable to false.
func NewInvoice(in Input) (*Invoice, error) {
	for _, key := range []string{"note", "email", "invoice_id", "amount", "paysystem"} {
		if !in.Has(key) {
			return nil, &domain.MissingFieldError{Entity: "Invoice", Field: key}
		}
	}

	c := &fieldChecker{entity: "Invoice"}
	var rec invoiceRecord

	note, _ := in.lookup("note")
	rec.Note = c.text(note, "note", "Note", 0)

	email, _ := in.lookup("email")
	rec.Email = c.email(email, "email", "Email")

	if v, ok := in.lookup("name"); ok {
		rec.Name = c.text(v, "name", "Name", maxPayerNameLength)
	}

	id, _ := in.lookup("invoice_id")
	rec.InvoiceID = c.text(id, "invoice_id", "ID", 0)

	amount, _ := in.lookup("amount")
	if n, ok := ParseInt(amount); !ok || n == 0 {
		c.fail("amount", "Invalid Invoice Amount Value")
	} else {
		rec.Amount = n
	}

	if v, ok := in.lookup("second_amount"); ok {
		rec.SecondAmount = c.integer(v, "second_amount", "Second Amount", nonNegative)
	}
	if v, ok := in.lookup("first_period"); ok {
		rec.FirstPeriod = c.period(v, "first_period", "First Period")
	}
	if v, ok := in.lookup("second_period"); ok {
		rec.SecondPeriod = c.period(v, "second_period", "Second Period")
	}
	if v, ok := in.lookup("rebill_times"); ok {
		rec.RebillTimes = c.integer(v, "rebill_times", "Rebill Times", positive)
	}
	if v, ok := in.lookup("refundable"); ok {
		rec.Refundable = c.boolean(v, "refundable", "Refundable")
	}
	if v, ok := in.lookup("refund_threshold"); ok {
		rec.RefundThreshold = c.period(v, "refund_threshold", "Refund Threshold")
	}
	if v, ok := in.lookup("url_callback"); ok {
		rec.URLCallback = c.url(v, "url_callback", "URL Callback")
	}
	if v, ok := in.lookup("url_success"); ok {
		rec.URLSuccess = c.url(v, "url_success", "URL Success")
	}
	if v, ok := in.lookup("url_failed"); ok {
		rec.URLFailed = c.url(v, "url_failed", "URL Failed")
	}

	paysystem, _ := in.lookup("paysystem")
	rec.Paysystem = c.text(paysystem, "paysystem", "Paysystem", 0)

	if err := c.err(); err != nil {
		return nil, err
	}
	return &Invoice{rec: rec, itemIDs: make(map[string]struct{})}, nil
}

func (inv *Invoice) Note() string            { return inv.rec.Note }
func (inv *Invoice) Email() string           { return inv.rec.Email }
func (inv *Invoice) Name() string            { return inv.rec.Name }
func (inv *Invoice) InvoiceID() string       { return inv.rec.InvoiceID }
func (inv *Invoice) Amount() int64           { return inv.rec.Amount }
func (inv *Invoice) SecondAmount() int64     { return inv.rec.SecondAmount }
func (inv *Invoice) FirstPeriod() string     { return inv.rec.FirstPeriod }
func (inv *Invoice) SecondPeriod() string    { return inv.rec.SecondPeriod }
func (inv *Invoice) RebillTimes() int64      { return inv.rec.RebillTimes }
func (inv *Invoice) Refundable() bool        { return inv.rec.Refundable }
func (inv *Invoice) RefundThreshold() string { return inv.rec.RefundThreshold }
func (inv *Invoice) URLCallback() string     { return inv.rec.URLCallback }
func (inv *Invoice) URLSuccess() string      { return inv.rec.URLSuccess }
func (inv *Invoice) URLFailed() string       { return inv.rec.URLFailed }
func (inv *Invoice) Paysystem() string       { return inv.rec.Paysystem }

// AddItem appends item. Duplicate ids are kept; the id index is a set.
func (inv *Invoice) AddItem(item *Item) {
	inv.items = append(inv.items, item)
	inv.itemIDs[item.ID()] = struct{}{}
}

// AddItems builds an Item from every input and appends them all, or none
// when any input is rejected.
func (inv *Invoice) AddItems(inputs []Input) error {
	built := make([]*Item, 0, len(inputs))
	for _, in := range inputs {
		item, err := NewItem(in)
		if err != nil {
			return err
		}
		built = append(built, item)
	}
	for _, item := range built {
		inv.AddItem(item)
	}
	return nil
}

// ClearItems removes every item together with the id index.
func (inv *Invoice) ClearItems() {
	inv.items = nil
	inv.itemIDs = make(map[string]struct{})
}

// AddBeneficiary appends b. Its link to an item is checked by the reconciler.
func (inv *Invoice) AddBeneficiary(b *Beneficiary) {
	inv.beneficiaries = append(inv.beneficiaries, b)
}

// AddBeneficiaries builds a Beneficiary from every input and appends them
// all, or none when any input is rejected.
func (inv *Invoice) AddBeneficiaries(inputs []Input) error {
	built := make([]*Beneficiary, 0, len(inputs))
	for _, in := range inputs {
		b, err := NewBeneficiary(in)
		if err != nil {
			return err
		}
		built = append(built, b)
	}
	inv.beneficiaries = append(inv.beneficiaries, built...)
	return nil
}

// ClearBeneficiaries removes every beneficiary.
func (inv *Invoice) ClearBeneficiaries() {
	inv.beneficiaries = nil
}

// Items returns the items in the order they were added.
func (inv *Invoice) Items() []*Item {
	out := make([]*Item, len(inv.items))
	copy(out, inv.items)
	return out
}

// Beneficiaries returns the beneficiaries in the order they were added.
func (inv *Invoice) Beneficiaries() []*Beneficiary {
	out := make([]*Beneficiary, len(inv.beneficiaries))
	copy(out, inv.beneficiaries)
	return out
}

// ItemIDs returns the item ids in the order they were added, without duplicates.
func (inv *Invoice) ItemIDs() []string {
	ids := make([]string, 0, len(inv.itemIDs))
	seen := make(map[string]struct{}, len(inv.itemIDs))
	for _, item := range inv.items {
		if _, ok := seen[item.ID()]; ok {
			continue
		}
		seen[item.ID()] = struct{}{}
		ids = append(ids, item.ID())
	}
	return ids
}

// HasItem reports whether an item with id has been added.
func (inv *Invoice) HasItem(id string) bool {
	_, ok := inv.itemIDs[id]
	return ok
}

// Payload projects the invoice for the wire.
//
// Empty strings and zero numbers are dropped, refundable is 1 or 0,
// invoice_id is repeated as source_invoice_id, items become a list of item
// payloads and beneficiaries are split by tier into vendor_share and
// aff_share. An empty list is never emitted.
func (inv *Invoice) Payload() *payload.Object {
	rec := inv.rec
	for _, item := range inv.items {
		rec.Items = append(rec.Items, item.Payload())
	}
	out := payload.MustProject(rec)
	out.Set("source_invoice_id", rec.InvoiceID)

	var vendors, affiliates []*payload.Object
	for _, b := range inv.beneficiaries {
		if b.IsVendor() {
			vendors = append(vendors, b.Payload())
		} else {
			affiliates = append(affiliates, b.Payload())
		}
	}
	if len(vendors) > 0 {
		out.Set("vendor_share", vendors)
	}
	if len(affiliates) > 0 {
		out.Set("aff_share", affiliates)
	}
	return out
}
