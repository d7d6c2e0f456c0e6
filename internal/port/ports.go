// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"
	"time"

	"github.com/holzmann/marketpay-go/internal/domain"
)

// VendorStore defines vendor persistence. Lookup methods return (nil, nil)
// when no record matches — absence is not an error at this layer.
type VendorStore interface {
	GetVendorByID(ctx context.Context, id string) (*domain.Vendor, error)
	GetVendorByEmail(ctx context.Context, email string) (*domain.Vendor, error)
	GetVendorByAPIKey(ctx context.Context, apiKey string) (*domain.Vendor, error)
	CreateVendor(ctx context.Context, v *domain.Vendor) error
	UpdateVendor(ctx context.Context, id string, updates map[string]any) error
	CountVendors(ctx context.Context) (int, error)
}

// CustomerStore defines customer persistence. Customers are read-only
// outside the seeding path.
type CustomerStore interface {
	GetCustomerByID(ctx context.Context, id string) (*domain.Customer, error)
	GetCustomerByEmail(ctx context.Context, email string) (*domain.Customer, error)
	CreateCustomer(ctx context.Context, c *domain.Customer) error
	RandomCustomer(ctx context.Context) (*domain.Customer, error)
	CountCustomers(ctx context.Context) (int, error)
}

// OfferingStore defines offering persistence. References are attached
// in-place, exactly once, after the corresponding provider call succeeds.
type OfferingStore interface {
	CreateOffering(ctx context.Context, o *domain.Offering) error
	AttachCharge(ctx context.Context, offeringID, chargeID string) error
	AttachTransfer(ctx context.Context, offeringID, transferID string) error
	ListVendorOfferingsSince(ctx context.Context, vendorID string, since time.Time) ([]domain.Offering, error)
}

// SessionStore defines server-side session persistence. Only token hashes
// are stored.
type SessionStore interface {
	CreateSession(ctx context.Context, s *domain.Session) error
	GetSessionByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error)
	RevokeSession(ctx context.Context, tokenHash string) error
	RevokeVendorSessions(ctx context.Context, vendorID string) error
}

// PaymentProvider is the external payments platform. Calls scoped to a
// connected account take the account id explicitly. Provider calls are
// never retried by callers — a failed payment must not be replayed.
type PaymentProvider interface {
	CreateAccount(ctx context.Context, params *domain.AccountParams) (*domain.Account, error)
	GetAccount(ctx context.Context, accountID string) (*domain.Account, error)
	CreateAccountLink(ctx context.Context, accountID, refreshURL, returnURL string) (*domain.AccountLink, error)
	GetBalance(ctx context.Context, accountID string) (*domain.Balance, error)

	CreateCharge(ctx context.Context, params *domain.ChargeParams) (*domain.Charge, error)
	CreateTransfer(ctx context.Context, params *domain.TransferParams) (*domain.Transfer, error)

	ListProducts(ctx context.Context, accountID string) ([]domain.Product, error)
	ListPrices(ctx context.Context, accountID, productID string) ([]domain.Price, error)
	GetPrice(ctx context.Context, accountID, priceID string) (*domain.Price, error)
	CreatePaymentLink(ctx context.Context, accountID string, params *domain.PaymentLinkParams) (*domain.PaymentLink, error)
	CreatePayout(ctx context.Context, accountID string, params *domain.PayoutParams) (*domain.Payout, error)

	// CreatePayer registers a payment-method holder for a customer record.
	CreatePayer(ctx context.Context, email, name string) (string, error)
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}
