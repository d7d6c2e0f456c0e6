package supabase

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/holzmann/marketpay-go/internal/domain"

	"go.opentelemetry.io/otel/attribute"
)

// ============================================================
// OfferingStore implementation
// ============================================================

type offeringRow struct {
	ID             string  `json:"id"`
	VendorID       string  `json:"vendor_id"`
	CustomerID     string  `json:"customer_id"`
	OriginLat      float64 `json:"origin_lat"`
	OriginLng      float64 `json:"origin_lng"`
	DestinationLat float64 `json:"destination_lat"`
	DestinationLng float64 `json:"destination_lng"`
	Amount         int64   `json:"amount"`
	Currency       string  `json:"currency"`
	PickupAt       string  `json:"pickup_at"`
	DropoffAt      string  `json:"dropoff_at"`
	ChargeID       string  `json:"charge_id"`
	TransferID     string  `json:"transfer_id"`
	TransferGroup  string  `json:"transfer_group"`
	CreatedAt      string  `json:"created_at"`
}

func (r *offeringRow) toDomain() domain.Offering {
	pickup, _ := time.Parse(time.RFC3339, r.PickupAt)
	dropoff, _ := time.Parse(time.RFC3339, r.DropoffAt)
	created, _ := time.Parse(time.RFC3339, r.CreatedAt)
	return domain.Offering{
		ID:             r.ID,
		VendorID:       r.VendorID,
		CustomerID:     r.CustomerID,
		OriginLat:      r.OriginLat,
		OriginLng:      r.OriginLng,
		DestinationLat: r.DestinationLat,
		DestinationLng: r.DestinationLng,
		Amount:         r.Amount,
		Currency:       r.Currency,
		PickupAt:       pickup,
		DropoffAt:      dropoff,
		ChargeID:       r.ChargeID,
		TransferID:     r.TransferID,
		TransferGroup:  r.TransferGroup,
		CreatedAt:      created,
	}
}

func (c *Client) CreateOffering(ctx context.Context, o *domain.Offering) error {
	ctx, span := tracer.Start(ctx, "Supabase.CreateOffering")
	defer span.End()
	span.SetAttributes(attribute.String("offering.id", o.ID))

	data := map[string]any{
		"id":              o.ID,
		"vendor_id":       o.VendorID,
		"customer_id":     o.CustomerID,
		"origin_lat":      o.OriginLat,
		"origin_lng":      o.OriginLng,
		"destination_lat": o.DestinationLat,
		"destination_lng": o.DestinationLng,
		"amount":          o.Amount,
		"currency":        o.Currency,
		"pickup_at":       o.PickupAt.Format(time.RFC3339),
		"dropoff_at":      o.DropoffAt.Format(time.RFC3339),
		"charge_id":       o.ChargeID,
		"transfer_id":     o.TransferID,
		"transfer_group":  o.TransferGroup,
		"created_at":      o.CreatedAt.Format(time.RFC3339),
	}

	if _, err := c.doPost(ctx, "offerings", data); err != nil {
		return fmt.Errorf("create offering: %w", err)
	}
	return nil
}

// AttachCharge sets the charge reference on an offering. Only rows without
// a reference are matched, so the reference is written at most once.
func (c *Client) AttachCharge(ctx context.Context, offeringID, chargeID string) error {
	ctx, span := tracer.Start(ctx, "Supabase.AttachCharge")
	defer span.End()
	span.SetAttributes(attribute.String("offering.id", offeringID))

	path := fmt.Sprintf("offerings?id=eq.%s&charge_id=eq.", url.QueryEscape(offeringID))
	return c.doPatch(ctx, path, map[string]any{"charge_id": chargeID})
}

// AttachTransfer sets the transfer reference for the separate
// charge+transfer path.
func (c *Client) AttachTransfer(ctx context.Context, offeringID, transferID string) error {
	ctx, span := tracer.Start(ctx, "Supabase.AttachTransfer")
	defer span.End()
	span.SetAttributes(attribute.String("offering.id", offeringID))

	path := fmt.Sprintf("offerings?id=eq.%s&transfer_id=eq.", url.QueryEscape(offeringID))
	return c.doPatch(ctx, path, map[string]any{"transfer_id": transferID})
}

// ListVendorOfferingsSince returns a vendor's offerings created at or after
// the given time, most recent first.
func (c *Client) ListVendorOfferingsSince(ctx context.Context, vendorID string, since time.Time) ([]domain.Offering, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListVendorOfferingsSince")
	defer span.End()
	span.SetAttributes(attribute.String("vendor.id", vendorID))

	path := fmt.Sprintf("offerings?vendor_id=eq.%s&created_at=gte.%s&order=created_at.desc",
		url.QueryEscape(vendorID), url.QueryEscape(since.UTC().Format(time.RFC3339)))
	body, err := c.doGet(ctx, path)
	if err != nil {
		return nil, err
	}

	rows, err := decodeRows[offeringRow](body)
	if err != nil {
		return nil, fmt.Errorf("decode offerings: %w", err)
	}

	offerings := make([]domain.Offering, 0, len(rows))
	for i := range rows {
		offerings = append(offerings, rows[i].toDomain())
	}
	return offerings, nil
}
