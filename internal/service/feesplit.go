package service

// Fee model. The marketplace keeps a percentage of every charge; on top of
// that, payment links carry a separate fixed application fee. The two are
// distinct line items and are never merged into one number.
const (
	// PlatformFeePercent is the platform's cut of each charge.
	PlatformFeePercent = 20

	// FixedApplicationFee is the flat fee (minor units) attached to
	// payment links.
	FixedApplicationFee = 300
)

// VendorPayout returns the vendor's share of a charge amount in minor
// units, truncating toward zero. For the 20% platform rate this is
// floor(amount * 0.8) on positive amounts.
func VendorPayout(amount int64) int64 {
	return amount * (100 - PlatformFeePercent) / 100
}

// PlatformFee returns the platform's percentage cut, the exact complement
// of VendorPayout so the two always sum to the full amount.
func PlatformFee(amount int64) int64 {
	return amount - VendorPayout(amount)
}
