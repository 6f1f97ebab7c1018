package models

import (
	"github.com/ghuser/ratapay/pkg/payload"
	"github.com/ghuser/ratapay/services/payment/domain"
)

const maxBeneficiaryNameLength = 64

// VendorTier is the tier whose beneficiaries are sent as vendor_share.
// Every other tier is sent as aff_share.
const VendorTier = 1

// Beneficiary is a payee entitled to a share of an invoice.
type Beneficiary struct {
	rec beneficiaryRecord
}

type beneficiaryRecord struct {
	Email             string `payload:"email"`
	Name              string `payload:"name"`
	Username          string `payload:"username"`
	ShareAmount       int64  `payload:"share_amount"`
	RebillShareAmount int64  `payload:"rebill_share_amount"`
	ShareItemID       string `payload:"share_item_id"`
	Tier              int64  `payload:"tier"`
}

// NewBeneficiary validates in and builds a Beneficiary.
//
// Required: email, share_amount. tier defaults to 1.
func NewBeneficiary(in Input) (*Beneficiary, error) {
	for _, key := range []string{"email", "share_amount"} {
		if !in.Has(key) {
			return nil, &domain.MissingFieldError{Entity: "Beneficiary", Field: key}
		}
	}

	c := &fieldChecker{entity: "Beneficiary"}
	rec := beneficiaryRecord{Tier: VendorTier}

	email, _ := in.lookup("email")
	rec.Email = c.email(email, "email", "Email")

	if v, ok := in.lookup("name"); ok {
		rec.Name = c.text(v, "name", "Name", maxBeneficiaryNameLength)
	}
	if v, ok := in.lookup("username"); ok {
		rec.Username = c.text(v, "username", "Username", maxBeneficiaryNameLength)
	}

	share, _ := in.lookup("share_amount")
	rec.ShareAmount = c.integer(share, "share_amount", "Share Amount", nonNegative)

	if v, ok := in.lookup("rebill_share_amount"); ok {
		rec.RebillShareAmount = c.integer(v, "rebill_share_amount", "Rebill Share Amount", nonNegative)
	}
	if v, ok := in.lookup("share_item_id"); ok {
		rec.ShareItemID = c.text(v, "share_item_id", "Share Item ID", 0)
	}
	if v, ok := in.lookup("tier"); ok {
		rec.Tier = c.integer(v, "tier", "Tier", anyInt)
	}

	if err := c.err(); err != nil {
		return nil, err
	}
	return &Beneficiary{rec: rec}, nil
}

func (b *Beneficiary) Email() string            { return b.rec.Email }
func (b *Beneficiary) Name() string             { return b.rec.Name }
func (b *Beneficiary) Username() string         { return b.rec.Username }
func (b *Beneficiary) ShareAmount() int64       { return b.rec.ShareAmount }
func (b *Beneficiary) RebillShareAmount() int64 { return b.rec.RebillShareAmount }
func (b *Beneficiary) ShareItemID() string      { return b.rec.ShareItemID }
func (b *Beneficiary) Tier() int64              { return b.rec.Tier }

// IsVendor reports whether the beneficiary belongs in vendor_share.
func (b *Beneficiary) IsVendor() bool { return b.rec.Tier == VendorTier }

// Payload projects the beneficiary for the wire. Empty strings and zero
// amounts are dropped.
func (b *Beneficiary) Payload() *payload.Object {
	return payload.MustProject(b.rec)
}
