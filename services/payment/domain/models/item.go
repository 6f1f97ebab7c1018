package models

import (
	"github.com/ghuser/ratapay/pkg/payload"
	"github.com/ghuser/ratapay/services/payment/domain"
)

const (
	maxItemIDLength    = 32
	maxItemNameLength  = 128
	maxItemLabelLength = 64
)

// Item is one purchasable line of an invoice.
type Item struct {
	rec itemRecord
}

// itemRecord is the wire shape of an Item, in wire order.
// Quantity and subtotal keep a zero value on the wire.
type itemRecord struct {
	ID              string `payload:"id"`
	Qty             int64  `payload:"qty,keepzero"`
	Subtotal        int64  `payload:"subtotal,keepzero"`
	Name            string `payload:"name"`
	Type            string `payload:"type"`
	Category        string `payload:"category"`
	Brand           string `payload:"brand"`
	Refundable      bool   `payload:"refundable"`
	RefundThreshold string `payload:"refund_threshold"`
}

// NewItem validates in and builds an Item.
//
// Required: id, subtotal, name. qty defaults to 1, refundable to false.
func NewItem(in Input) (*Item, error) {
	for _, key := range []string{"id", "subtotal", "name"} {
		if !in.Has(key) {
			return nil, &domain.MissingFieldError{Entity: "Item", Field: key}
		}
	}

	c := &fieldChecker{entity: "Item"}
	var rec itemRecord

	id, _ := in.lookup("id")
	rec.ID = c.text(id, "id", "ID", maxItemIDLength)

	rec.Qty = 1
	if v, ok := in.lookup("qty"); ok {
		rec.Qty = c.integer(v, "qty", "Qty", positive)
	}

	subtotal, _ := in.lookup("subtotal")
	rec.Subtotal = c.integer(subtotal, "subtotal", "Subtotal", nonNegative)

	name, _ := in.lookup("name")
	rec.Name = c.text(name, "name", "Name", maxItemNameLength)

	if v, ok := in.lookup("type"); ok {
		rec.Type = c.text(v, "type", "Type", maxItemLabelLength)
	}
	if v, ok := in.lookup("category"); ok {
		rec.Category = c.text(v, "category", "Category", maxItemLabelLength)
	}
	if v, ok := in.lookup("brand"); ok {
		rec.Brand = c.text(v, "brand", "Brand", maxItemLabelLength)
	}
	if v, ok := in.lookup("refundable"); ok {
		rec.Refundable = c.boolean(v, "refundable", "Refundable")
	}
	if v, ok := in.lookup("refund_threshold"); ok {
		rec.RefundThreshold = c.period(v, "refund_threshold", "Refund Threshold")
	}

	if err := c.err(); err != nil {
		return nil, err
	}
	return &Item{rec: rec}, nil
}

func (i *Item) ID() string              { return i.rec.ID }
func (i *Item) Qty() int64              { return i.rec.Qty }
func (i *Item) Subtotal() int64         { return i.rec.Subtotal }
func (i *Item) Name() string            { return i.rec.Name }
func (i *Item) Type() string            { return i.rec.Type }
func (i *Item) Category() string        { return i.rec.Category }
func (i *Item) Brand() string           { return i.rec.Brand }
func (i *Item) Refundable() bool        { return i.rec.Refundable }
func (i *Item) RefundThreshold() string { return i.rec.RefundThreshold }

// Payload projects the item for the wire. Empty strings are dropped,
// numbers are kept even when zero and refundable is always 1 or 0.
func (i *Item) Payload() *payload.Object {
	return payload.MustProject(i.rec)
}
