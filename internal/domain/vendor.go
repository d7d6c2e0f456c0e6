package domain

import (
	"strings"
	"time"
)

// Vendor account types. Company is the default for new signups.
const (
	VendorTypeIndividual = "individual"
	VendorTypeCompany    = "company"
)

// DefaultCountry is assigned to vendors that never picked one.
// It also selects the direct destination-charge path (see PaymentService).
const DefaultCountry = "DE"

// OnboardingStep is the signup-wizard position derived from vendor state.
// It is never persisted — always recomputed from the record.
type OnboardingStep string

const (
	StepAccount  OnboardingStep = "account"
	StepProfile  OnboardingStep = "profile"
	StepPayments OnboardingStep = "payments"
	StepDone     OnboardingStep = "done"
)

// Vendor is an onboarded sub-merchant receiving payouts.
// Field names match the vendors table columns.
type Vendor struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash,omitempty"`
	Type         string `json:"type"`

	// Individual vendors use first/last name, companies use business name.
	// The two sets are mutually exclusive; ApplyType enforces that.
	FirstName    string `json:"first_name,omitempty"`
	LastName     string `json:"last_name,omitempty"`
	BusinessName string `json:"business_name,omitempty"`

	Address    string `json:"address,omitempty"`
	City       string `json:"city,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country"`

	ServiceRate     int64 `json:"service_rate,omitempty"`
	ServiceRadiusKm int   `json:"service_radius_km,omitempty"`

	// AccountID is the provider-side connected account, empty until created.
	AccountID          string `json:"account_id,omitempty"`
	OnboardingComplete bool   `json:"onboarding_complete"`

	// APIKey is unique across vendors and immutable once set at signup.
	APIKey string `json:"api_key,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// NormalizeEmail lowercases and trims an email for unique storage.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// DisplayName returns the name shown for the vendor, by type.
func (v *Vendor) DisplayName() string {
	if v.Type == VendorTypeIndividual {
		return strings.TrimSpace(v.FirstName + " " + v.LastName)
	}
	return v.BusinessName
}

// ProfileComplete reports whether the type-specific name fields are filled.
func (v *Vendor) ProfileComplete() bool {
	if v.Type == VendorTypeIndividual {
		return v.FirstName != "" && v.LastName != ""
	}
	return v.BusinessName != ""
}

// Step derives the vendor's current onboarding step. A nil vendor means
// nobody is authenticated yet.
func (v *Vendor) Step() OnboardingStep {
	if v == nil || v.ID == "" {
		return StepAccount
	}
	if !v.ProfileComplete() {
		return StepProfile
	}
	if !v.OnboardingComplete {
		return StepPayments
	}
	return StepDone
}

// ApplyType sets the vendor type and clears the other type's name fields.
// A vendor that switches type mid-wizard is re-evaluated against the new
// type's required fields on the next Step call.
func (v *Vendor) ApplyType(vendorType string) {
	v.Type = vendorType
	switch vendorType {
	case VendorTypeIndividual:
		v.BusinessName = ""
	case VendorTypeCompany:
		v.FirstName = ""
		v.LastName = ""
	}
}
