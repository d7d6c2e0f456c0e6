package domain

// ============================================================
// HTTP request / response bodies
// ============================================================

// SignupRequest is the body for POST /v1/auth/signup.
type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the body for POST /v1/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionResponse is returned by signup and login.
type SessionResponse struct {
	VendorID       string         `json:"vendorId"`
	Email          string         `json:"email"`
	OnboardingStep OnboardingStep `json:"onboardingStep"`
	ExpiresIn      int            `json:"expiresIn"`
}

// ProfileUpdateRequest is the body for PUT /v1/vendor/profile. It is an
// explicit enumerated mapping onto the vendor record — pointer fields
// distinguish "not sent" from "set to empty".
type ProfileUpdateRequest struct {
	Type            *string `json:"type,omitempty"`
	FirstName       *string `json:"firstName,omitempty"`
	LastName        *string `json:"lastName,omitempty"`
	BusinessName    *string `json:"businessName,omitempty"`
	Address         *string `json:"address,omitempty"`
	City            *string `json:"city,omitempty"`
	PostalCode      *string `json:"postalCode,omitempty"`
	Country         *string `json:"country,omitempty"`
	ServiceRate     *int64  `json:"serviceRate,omitempty"`
	ServiceRadiusKm *int    `json:"serviceRadiusKm,omitempty"`
	Password        *string `json:"password,omitempty"`
}

// VendorResponse is the sanitized vendor view (no hash, no API key).
type VendorResponse struct {
	ID                 string         `json:"id"`
	Email              string         `json:"email"`
	Type               string         `json:"type"`
	FirstName          string         `json:"firstName,omitempty"`
	LastName           string         `json:"lastName,omitempty"`
	BusinessName       string         `json:"businessName,omitempty"`
	Country            string         `json:"country"`
	AccountID          string         `json:"accountId,omitempty"`
	OnboardingComplete bool           `json:"onboardingComplete"`
	OnboardingStep     OnboardingStep `json:"onboardingStep"`
}

// NewVendorResponse builds the sanitized view from a vendor record.
func NewVendorResponse(v *Vendor) *VendorResponse {
	return &VendorResponse{
		ID:                 v.ID,
		Email:              v.Email,
		Type:               v.Type,
		FirstName:          v.FirstName,
		LastName:           v.LastName,
		BusinessName:       v.BusinessName,
		Country:            v.Country,
		AccountID:          v.AccountID,
		OnboardingComplete: v.OnboardingComplete,
		OnboardingStep:     v.Step(),
	}
}

// OfferingRequest is the body for POST /v1/vendor/offerings.
type OfferingRequest struct {
	CustomerID     string  `json:"customerId"`
	Amount         int64   `json:"amount"`
	Currency       string  `json:"currency,omitempty"`
	OriginLat      float64 `json:"originLat,omitempty"`
	OriginLng      float64 `json:"originLng,omitempty"`
	DestinationLat float64 `json:"destinationLat,omitempty"`
	DestinationLng float64 `json:"destinationLng,omitempty"`
	PickupAt       string  `json:"pickupAt,omitempty"`
	DropoffAt      string  `json:"dropoffAt,omitempty"`
}

// PaymentLinkRequest is the body for POST /v1/vendor/payment-links and
// POST /api/v1/payment-links. Quantity defaults to 1 when absent.
type PaymentLinkRequest struct {
	PriceID  string `json:"priceId"`
	Quantity *int64 `json:"quantity,omitempty"`
}

// PayoutRequest is the body for POST /v1/vendor/payouts.
type PayoutRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency,omitempty"`
}

// OnboardingLinkResponse is returned by POST /v1/vendor/onboarding/link.
type OnboardingLinkResponse struct {
	URL string `json:"url"`
}

// FinalizeResponse tells the caller where to go after the hosted
// onboarding flow returns.
type FinalizeResponse struct {
	OnboardingComplete bool           `json:"onboardingComplete"`
	OnboardingStep     OnboardingStep `json:"onboardingStep"`
	Redirect           string         `json:"redirect"`
}

// DashboardResponse aggregates the vendor landing view.
type DashboardResponse struct {
	Vendor    *VendorResponse `json:"vendor"`
	Balance   *Balance        `json:"balance,omitempty"`
	Offerings []Offering      `json:"offerings"`
}
