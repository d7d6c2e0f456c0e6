package domain_test

import (
	"testing"

	"github.com/holzmann/marketpay-go/internal/domain"
)

func TestStep_NilVendor(t *testing.T) {
	var v *domain.Vendor
	if got := v.Step(); got != domain.StepAccount {
		t.Errorf("expected step 'account' for nil vendor, got %q", got)
	}
}

func TestStep_AllStates(t *testing.T) {
	tests := []struct {
		name   string
		vendor domain.Vendor
		want   domain.OnboardingStep
	}{
		{
			name:   "unsaved vendor",
			vendor: domain.Vendor{},
			want:   domain.StepAccount,
		},
		{
			name:   "company without business name",
			vendor: domain.Vendor{ID: "v1", Type: domain.VendorTypeCompany},
			want:   domain.StepProfile,
		},
		{
			name:   "individual missing last name",
			vendor: domain.Vendor{ID: "v1", Type: domain.VendorTypeIndividual, FirstName: "Ana"},
			want:   domain.StepProfile,
		},
		{
			name:   "company profile complete, not onboarded",
			vendor: domain.Vendor{ID: "v1", Type: domain.VendorTypeCompany, BusinessName: "Kavholm GmbH"},
			want:   domain.StepPayments,
		},
		{
			name: "individual fully onboarded",
			vendor: domain.Vendor{
				ID: "v1", Type: domain.VendorTypeIndividual,
				FirstName: "Ana", LastName: "Berg",
				OnboardingComplete: true,
			},
			want: domain.StepDone,
		},
		{
			name: "onboarded but profile wiped by type switch",
			vendor: domain.Vendor{
				ID: "v1", Type: domain.VendorTypeIndividual,
				OnboardingComplete: true,
			},
			want: domain.StepProfile,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.vendor.Step(); got != tt.want {
				t.Errorf("expected step %q, got %q", tt.want, got)
			}
		})
	}
}

func TestStep_DoneRequiresBoth(t *testing.T) {
	// done iff profile complete AND onboarding_complete
	v := domain.Vendor{ID: "v1", Type: domain.VendorTypeCompany, BusinessName: "Acme"}
	if v.Step() == domain.StepDone {
		t.Error("profile complete alone must not be 'done'")
	}
	v.OnboardingComplete = true
	if v.Step() != domain.StepDone {
		t.Errorf("expected 'done', got %q", v.Step())
	}
}

func TestApplyType_ClearsOtherTypeFields(t *testing.T) {
	v := domain.Vendor{
		ID: "v1", Type: domain.VendorTypeCompany,
		BusinessName: "Acme GmbH",
	}

	v.ApplyType(domain.VendorTypeIndividual)
	if v.BusinessName != "" {
		t.Errorf("switching to individual must clear business name, got %q", v.BusinessName)
	}

	v.FirstName = "Ana"
	v.LastName = "Berg"
	v.ApplyType(domain.VendorTypeCompany)
	if v.FirstName != "" || v.LastName != "" {
		t.Errorf("switching to company must clear personal names, got %q %q", v.FirstName, v.LastName)
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := domain.NormalizeEmail("  Ana.Berg@Example.COM "); got != "ana.berg@example.com" {
		t.Errorf("unexpected normalized email %q", got)
	}
}

func TestDisplayName(t *testing.T) {
	company := domain.Vendor{Type: domain.VendorTypeCompany, BusinessName: "Kavholm"}
	if company.DisplayName() != "Kavholm" {
		t.Errorf("unexpected display name %q", company.DisplayName())
	}
	indiv := domain.Vendor{Type: domain.VendorTypeIndividual, FirstName: "Ana", LastName: "Berg"}
	if indiv.DisplayName() != "Ana Berg" {
		t.Errorf("unexpected display name %q", indiv.DisplayName())
	}
}

func TestOfferingPaid(t *testing.T) {
	o := domain.Offering{ID: "off-1"}
	if o.Paid() {
		t.Error("offering without charge reference must not count as paid")
	}
	o.ChargeID = "ch_123"
	if !o.Paid() {
		t.Error("offering with charge reference must count as paid")
	}
}
