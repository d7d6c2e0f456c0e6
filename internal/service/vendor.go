package service

import (
	"context"
	"fmt"

	"github.com/holzmann/marketpay-go/internal/domain"
	"github.com/holzmann/marketpay-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var vendorTracer = otel.Tracer("service/vendor")

// VendorService handles signup-wizard profile updates.
type VendorService struct {
	vendors  port.VendorStore
	sessions port.SessionStore
	logger   *zap.Logger
}

// NewVendorService creates the vendor service.
func NewVendorService(vendors port.VendorStore, sessions port.SessionStore, logger *zap.Logger) *VendorService {
	return &VendorService{vendors: vendors, sessions: sessions, logger: logger}
}

// UpdateProfile applies one wizard submission to the vendor record. The
// mapping is an explicit field-by-field copy: a type switch clears the
// other type's name fields and a supplied password is re-hashed before the
// write. Returns the updated record.
func (s *VendorService) UpdateProfile(ctx context.Context, vendor *domain.Vendor, req *domain.ProfileUpdateRequest) (*domain.Vendor, error) {
	ctx, span := vendorTracer.Start(ctx, "VendorService.UpdateProfile")
	defer span.End()
	span.SetAttributes(attribute.String("vendor.id", vendor.ID))

	updated := *vendor
	updates := map[string]any{}

	nameTouched := req.Type != nil || req.FirstName != nil || req.LastName != nil || req.BusinessName != nil

	if req.Type != nil {
		if *req.Type != domain.VendorTypeIndividual && *req.Type != domain.VendorTypeCompany {
			return nil, &domain.ErrValidation{Field: "type", Message: "must be 'individual' or 'company'"}
		}
		updated.ApplyType(*req.Type)
		updates["type"] = updated.Type
	}

	if req.FirstName != nil {
		updated.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		updated.LastName = *req.LastName
	}
	if req.BusinessName != nil {
		updated.BusinessName = *req.BusinessName
	}

	if nameTouched {
		// Re-apply the exclusion in case name fields arrived alongside or
		// after a type change: the record never carries both name sets.
		updated.ApplyType(updated.Type)
		updates["first_name"] = updated.FirstName
		updates["last_name"] = updated.LastName
		updates["business_name"] = updated.BusinessName
	}

	if req.Address != nil {
		updated.Address = *req.Address
		updates["address"] = updated.Address
	}
	if req.City != nil {
		updated.City = *req.City
		updates["city"] = updated.City
	}
	if req.PostalCode != nil {
		updated.PostalCode = *req.PostalCode
		updates["postal_code"] = updated.PostalCode
	}
	if req.Country != nil {
		if len(*req.Country) != 2 {
			return nil, &domain.ErrValidation{Field: "country", Message: "must be a two-letter ISO code"}
		}
		updated.Country = *req.Country
		updates["country"] = updated.Country
	}
	if req.ServiceRate != nil {
		if *req.ServiceRate <= 0 {
			return nil, &domain.ErrValidation{Field: "serviceRate", Message: "must be a positive amount in minor units"}
		}
		updated.ServiceRate = *req.ServiceRate
		updates["service_rate"] = updated.ServiceRate
	}
	if req.ServiceRadiusKm != nil {
		updated.ServiceRadiusKm = *req.ServiceRadiusKm
		updates["service_radius_km"] = updated.ServiceRadiusKm
	}

	if req.Password != nil {
		if len(*req.Password) < 8 {
			return nil, &domain.ErrValidation{Field: "password", Message: "must be at least 8 characters"}
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		updated.PasswordHash = string(hash)
		updates["password_hash"] = updated.PasswordHash
	}

	if len(updates) == 0 {
		return nil, &domain.ErrValidation{Field: "body", Message: "no fields to update"}
	}

	if err := s.vendors.UpdateVendor(ctx, vendor.ID, updates); err != nil {
		return nil, fmt.Errorf("update vendor: %w", err)
	}

	// A changed password invalidates every open session for the vendor,
	// including the one this request arrived on. The client logs in again
	// with the new credentials.
	if req.Password != nil {
		if err := s.sessions.RevokeVendorSessions(ctx, vendor.ID); err != nil {
			return nil, fmt.Errorf("revoke sessions: %w", err)
		}
		s.logger.Info("sessions revoked after password change", zap.String("vendor_id", vendor.ID))
	}

	s.logger.Info("vendor profile updated",
		zap.String("vendor_id", vendor.ID),
		zap.String("onboarding_step", string(updated.Step())),
	)
	return &updated, nil
}
