package service

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/holzmann/marketpay-go/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// demoCustomers are the fixture identities seeded into every fresh
// environment. Emails double as stable keys for idempotent reseeding.
var demoCustomers = []struct {
	FirstName string
	LastName  string
	Email     string
}{
	{"Ada", "Krüger", "ada.krueger@example.com"},
	{"Ben", "Okafor", "ben.okafor@example.com"},
	{"Clara", "Lindqvist", "clara.lindqvist@example.com"},
	{"Diego", "Ferreira", "diego.ferreira@example.com"},
	{"Emre", "Yilmaz", "emre.yilmaz@example.com"},
}

// SeedDemoCustomers makes sure the demo customer fixtures exist, creating
// a provider payer for each new one. Safe to run on every startup: existing
// emails are skipped.
func (s *PaymentService) SeedDemoCustomers(ctx context.Context) error {
	ctx, span := payTracer.Start(ctx, "PaymentService.SeedDemoCustomers")
	defer span.End()

	// A table that already holds the full fixture set means the environment
	// was bootstrapped before; skip the per-email round trips.
	existing, err := s.customers.CountCustomers(ctx)
	if err != nil {
		return fmt.Errorf("count customers: %w", err)
	}
	if existing >= len(demoCustomers) {
		return nil
	}

	created := 0
	for _, fixture := range demoCustomers {
		existing, err := s.customers.GetCustomerByEmail(ctx, fixture.Email)
		if err != nil {
			return fmt.Errorf("check customer %s: %w", fixture.Email, err)
		}
		if existing != nil {
			continue
		}

		payerID, err := s.provider.CreatePayer(ctx, fixture.Email, fixture.FirstName+" "+fixture.LastName)
		if err != nil {
			s.metrics.IncrExternalError("provider")
			return fmt.Errorf("create payer for %s: %w", fixture.Email, err)
		}

		customer := &domain.Customer{
			ID:        uuid.New().String(),
			FirstName: fixture.FirstName,
			LastName:  fixture.LastName,
			Email:     fixture.Email,
			PayerID:   payerID,
			CreatedAt: time.Now().UTC(),
		}
		if err := s.customers.CreateCustomer(ctx, customer); err != nil {
			return fmt.Errorf("create customer %s: %w", fixture.Email, err)
		}
		created++
	}

	if created > 0 {
		s.logger.Info("demo customers seeded", zap.Int("created", created))
	}
	return nil
}

// GenerateTestOffering picks a random demo customer and runs a plausible
// offering through the real payment path. Exists so a vendor can exercise
// the full charge flow from the dashboard without a counterparty.
func (s *PaymentService) GenerateTestOffering(ctx context.Context, vendor *domain.Vendor) (*domain.Offering, error) {
	ctx, span := payTracer.Start(ctx, "PaymentService.GenerateTestOffering")
	defer span.End()

	customer, err := s.customers.RandomCustomer(ctx)
	if err != nil {
		return nil, fmt.Errorf("pick random customer: %w", err)
	}
	if customer == nil {
		return nil, &domain.ErrValidation{Field: "customers", Message: "no demo customers available"}
	}

	amount := vendor.ServiceRate
	if amount <= 0 {
		// 20.00 to 120.00 in minor units when the vendor has no rate yet.
		amount = int64(2000 + rand.Intn(10001))
	}

	now := time.Now().UTC()
	req := &domain.OfferingRequest{
		CustomerID:     customer.ID,
		Amount:         amount,
		OriginLat:      52.52 + rand.Float64()*0.1,
		OriginLng:      13.40 + rand.Float64()*0.1,
		DestinationLat: 52.52 + rand.Float64()*0.1,
		DestinationLng: 13.40 + rand.Float64()*0.1,
		PickupAt:       now.Add(time.Hour).Format(time.RFC3339),
		DropoffAt:      now.Add(2 * time.Hour).Format(time.RFC3339),
	}
	return s.CreateOffering(ctx, vendor, req)
}
