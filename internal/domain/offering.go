package domain

import "time"

// DefaultCurrency for offerings that do not specify one.
const DefaultCurrency = "eur"

// Offering is one payment transaction between a vendor and a customer.
// Offerings are persisted before the charge attempt; ChargeID is attached
// exactly once after the provider call succeeds and is never rewritten.
// An offering without a ChargeID is a failed or incomplete payment.
type Offering struct {
	ID         string `json:"id"`
	VendorID   string `json:"vendor_id"`
	CustomerID string `json:"customer_id"`

	// Demo route metadata, not consumed by the payment logic.
	OriginLat      float64 `json:"origin_lat"`
	OriginLng      float64 `json:"origin_lng"`
	DestinationLat float64 `json:"destination_lat"`
	DestinationLng float64 `json:"destination_lng"`

	Amount   int64  `json:"amount"` // minor units, always positive
	Currency string `json:"currency"`

	PickupAt  time.Time `json:"pickup_at"`
	DropoffAt time.Time `json:"dropoff_at"`

	// ChargeID references the provider charge. TransferID is only set by
	// the separate charge+transfer path (non-DE vendors); if that second
	// call fails the charge reference stays and TransferID stays empty —
	// the accepted inconsistency window.
	ChargeID      string `json:"charge_id,omitempty"`
	TransferID    string `json:"transfer_id,omitempty"`
	TransferGroup string `json:"transfer_group,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Paid reports whether the offering carries a successful charge reference.
func (o *Offering) Paid() bool {
	return o.ChargeID != ""
}
