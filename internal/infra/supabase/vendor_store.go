package supabase

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/holzmann/marketpay-go/internal/domain"

	"go.opentelemetry.io/otel/attribute"
)

// ============================================================
// VendorStore implementation — vendor CRUD via PostgREST
// ============================================================

// vendorRow maps the vendors table. It mirrors domain.Vendor but keeps the
// timestamp as a string column.
type vendorRow struct {
	ID                 string `json:"id"`
	Email              string `json:"email"`
	PasswordHash       string `json:"password_hash"`
	Type               string `json:"type"`
	FirstName          string `json:"first_name"`
	LastName           string `json:"last_name"`
	BusinessName       string `json:"business_name"`
	Address            string `json:"address"`
	City               string `json:"city"`
	PostalCode         string `json:"postal_code"`
	Country            string `json:"country"`
	ServiceRate        int64  `json:"service_rate"`
	ServiceRadiusKm    int    `json:"service_radius_km"`
	AccountID          string `json:"account_id"`
	OnboardingComplete bool   `json:"onboarding_complete"`
	APIKey             string `json:"api_key"`
	CreatedAt          string `json:"created_at"`
}

func (r *vendorRow) toDomain() *domain.Vendor {
	created, _ := time.Parse(time.RFC3339, r.CreatedAt)
	return &domain.Vendor{
		ID:                 r.ID,
		Email:              r.Email,
		PasswordHash:       r.PasswordHash,
		Type:               r.Type,
		FirstName:          r.FirstName,
		LastName:           r.LastName,
		BusinessName:       r.BusinessName,
		Address:            r.Address,
		City:               r.City,
		PostalCode:         r.PostalCode,
		Country:            r.Country,
		ServiceRate:        r.ServiceRate,
		ServiceRadiusKm:    r.ServiceRadiusKm,
		AccountID:          r.AccountID,
		OnboardingComplete: r.OnboardingComplete,
		APIKey:             r.APIKey,
		CreatedAt:          created,
	}
}

func (c *Client) getVendorBy(ctx context.Context, field, value string) (*domain.Vendor, error) {
	path := fmt.Sprintf("vendors?%s=eq.%s&limit=1", field, url.QueryEscape(value))
	body, err := c.doGet(ctx, path)
	if err != nil {
		return nil, err
	}

	rows, err := decodeRows[vendorRow](body)
	if err != nil {
		return nil, fmt.Errorf("decode vendors: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil // not found is not an error for lookups
	}
	return rows[0].toDomain(), nil
}

func (c *Client) GetVendorByID(ctx context.Context, id string) (*domain.Vendor, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetVendorByID")
	defer span.End()
	span.SetAttributes(attribute.String("vendor.id", id))

	return c.getVendorBy(ctx, "id", id)
}

func (c *Client) GetVendorByEmail(ctx context.Context, email string) (*domain.Vendor, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetVendorByEmail")
	defer span.End()

	return c.getVendorBy(ctx, "email", domain.NormalizeEmail(email))
}

func (c *Client) GetVendorByAPIKey(ctx context.Context, apiKey string) (*domain.Vendor, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetVendorByAPIKey")
	defer span.End()

	return c.getVendorBy(ctx, "api_key", apiKey)
}

func (c *Client) CreateVendor(ctx context.Context, v *domain.Vendor) error {
	ctx, span := tracer.Start(ctx, "Supabase.CreateVendor")
	defer span.End()

	data := map[string]any{
		"id":                  v.ID,
		"email":               v.Email,
		"password_hash":       v.PasswordHash,
		"type":                v.Type,
		"first_name":          v.FirstName,
		"last_name":           v.LastName,
		"business_name":       v.BusinessName,
		"address":             v.Address,
		"city":                v.City,
		"postal_code":         v.PostalCode,
		"country":             v.Country,
		"service_rate":        v.ServiceRate,
		"service_radius_km":   v.ServiceRadiusKm,
		"account_id":          v.AccountID,
		"onboarding_complete": v.OnboardingComplete,
		"api_key":             v.APIKey,
		"created_at":          v.CreatedAt.Format(time.RFC3339),
	}

	if _, err := c.doPost(ctx, "vendors", data); err != nil {
		return fmt.Errorf("create vendor: %w", err)
	}
	return nil
}

func (c *Client) UpdateVendor(ctx context.Context, id string, updates map[string]any) error {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateVendor")
	defer span.End()
	span.SetAttributes(attribute.String("vendor.id", id))

	path := fmt.Sprintf("vendors?id=eq.%s", url.QueryEscape(id))
	return c.doPatch(ctx, path, updates)
}

func (c *Client) CountVendors(ctx context.Context) (int, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CountVendors")
	defer span.End()

	return c.doCount(ctx, "vendors?select=id")
}

// Ping verifies store reachability at startup (used with the bootstrap
// retry loop in main).
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.doRequest(ctx, http.MethodGet, "vendors?select=id&limit=1")
	return err
}
