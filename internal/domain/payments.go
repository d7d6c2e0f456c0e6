package domain

import "time"

// ============================================================
// Payments provider — call shapes consumed/produced by the core
// ============================================================

// AccountParams describes a provider account-creation request. The payload
// shape depends on the vendor type: companies send a business name,
// individuals send first/last name and email.
type AccountParams struct {
	Type         string // individual | company
	Country      string
	Email        string
	BusinessName string
	FirstName    string
	LastName     string
}

// Account is a provider-side connected account.
type Account struct {
	ID               string
	Country          string
	DetailsSubmitted bool
	ChargesEnabled   bool
	PayoutsEnabled   bool
}

// AccountLink is a time-limited hosted onboarding URL.
type AccountLink struct {
	URL       string
	ExpiresAt time.Time
}

// ChargeParams describes a charge-creation request. Exactly one of the two
// routing shapes is used per call: OnBehalfOf + TransferAmount/Destination
// for the direct destination-charge path, or TransferGroup for the
// separate charge+transfer path.
type ChargeParams struct {
	Amount      int64
	Currency    string
	Description string
	PayerID     string

	// Direct destination-charge path (vendor country = DE).
	OnBehalfOf          string
	TransferAmount      int64
	TransferDestination string

	// Separate charge+transfer path (all other countries).
	TransferGroup string
}

// Charge is the provider's record of a completed charge.
type Charge struct {
	ID            string
	Amount        int64
	Currency      string
	TransferGroup string
}

// TransferParams describes a transfer of the vendor payout to a connected
// account, correlated with its charge via TransferGroup.
type TransferParams struct {
	Amount        int64
	Currency      string
	Destination   string
	TransferGroup string
}

// Transfer is the provider's record of a completed transfer.
type Transfer struct {
	ID          string
	Amount      int64
	Destination string
}

// Product is a vendor-scoped catalog entry. DefaultPriceID may be empty,
// in which case the display price falls back to the first listed price.
type Product struct {
	ID             string
	Name           string
	Description    string
	DefaultPriceID string
	Active         bool
}

// Price is a provider price attached to a product.
type Price struct {
	ID         string
	ProductID  string
	UnitAmount int64
	Currency   string
}

// ProductWithPrice pairs a product with its resolved display price.
type ProductWithPrice struct {
	Product Product `json:"product"`
	Price   *Price  `json:"price,omitempty"`
}

// PaymentLinkParams describes a hosted payment-link request scoped to a
// connected account. ApplicationFee is the fixed platform fee in minor
// units, separate from the percentage split used on the charge paths.
type PaymentLinkParams struct {
	PriceID        string
	Quantity       int64
	ApplicationFee int64
}

// PaymentLink is a provider-hosted payment page.
type PaymentLink struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// BalanceAmount is one currency bucket of an account balance.
type BalanceAmount struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// Balance holds the available and pending funds of a connected account.
type Balance struct {
	Available []BalanceAmount `json:"available"`
	Pending   []BalanceAmount `json:"pending"`
}

// PayoutParams describes a payout from a connected account balance to the
// vendor's bank.
type PayoutParams struct {
	Amount   int64
	Currency string
}

// Payout is the provider's record of a created payout.
type Payout struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}
