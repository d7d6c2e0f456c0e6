package service

import (
	"context"
	"fmt"
	"time"

	"github.com/holzmann/marketpay-go/internal/domain"
	"github.com/holzmann/marketpay-go/internal/infra/observability"
	"github.com/holzmann/marketpay-go/internal/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var payTracer = otel.Tracer("service/payments")

// directChargeCountry selects the single-call destination-charge path.
// Vendors in any other country get the separate charge+transfer path.
const directChargeCountry = domain.DefaultCountry

// dashboardWindow is how far back the dashboard offering list reaches.
const dashboardWindow = 7 * 24 * time.Hour

// PaymentService orchestrates every call to the payments provider:
// account creation, hosted onboarding, charges and transfers, payment
// links, catalog reads, balance and payouts. Provider calls are never
// retried here.
type PaymentService struct {
	vendors   port.VendorStore
	customers port.CustomerStore
	offerings port.OfferingStore
	provider  port.PaymentProvider
	catalog   port.Cache[[]domain.ProductWithPrice]
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// NewPaymentService creates the payment orchestrator.
func NewPaymentService(
	vendors port.VendorStore,
	customers port.CustomerStore,
	offerings port.OfferingStore,
	provider port.PaymentProvider,
	catalog port.Cache[[]domain.ProductWithPrice],
	metrics *observability.Metrics,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		vendors:   vendors,
		customers: customers,
		offerings: offerings,
		provider:  provider,
		catalog:   catalog,
		metrics:   metrics,
		logger:    logger,
	}
}

// ============================================================
// Connected account + hosted onboarding
// ============================================================

// EnsureAccount creates the vendor's connected account when it has none,
// persisting the returned id before anything else happens. Idempotent by
// construction: an existing id short-circuits.
func (s *PaymentService) EnsureAccount(ctx context.Context, vendor *domain.Vendor) error {
	ctx, span := payTracer.Start(ctx, "PaymentService.EnsureAccount")
	defer span.End()
	span.SetAttributes(attribute.String("vendor.id", vendor.ID))

	if vendor.AccountID != "" {
		return nil
	}

	params := &domain.AccountParams{
		Type:    vendor.Type,
		Country: vendor.Country,
		Email:   vendor.Email,
	}
	if vendor.Type == domain.VendorTypeCompany {
		params.BusinessName = vendor.BusinessName
	} else {
		params.FirstName = vendor.FirstName
		params.LastName = vendor.LastName
	}

	account, err := s.provider.CreateAccount(ctx, params)
	if err != nil {
		s.metrics.IncrExternalError("provider")
		return err
	}

	if err := s.vendors.UpdateVendor(ctx, vendor.ID, map[string]any{"account_id": account.ID}); err != nil {
		return fmt.Errorf("persist account id: %w", err)
	}
	vendor.AccountID = account.ID

	s.logger.Info("connected account created",
		zap.String("vendor_id", vendor.ID),
		zap.String("account_id", account.ID),
	)
	return nil
}

// OnboardingLink ensures the account exists and mints a fresh hosted
// onboarding URL. A new link is requested on every call, whether or not
// the account was just created. Failures surface to the caller unretried.
func (s *PaymentService) OnboardingLink(ctx context.Context, vendor *domain.Vendor, refreshURL, returnURL string) (*domain.AccountLink, error) {
	ctx, span := payTracer.Start(ctx, "PaymentService.OnboardingLink")
	defer span.End()
	span.SetAttributes(attribute.String("vendor.id", vendor.ID))

	if err := s.EnsureAccount(ctx, vendor); err != nil {
		return nil, err
	}

	link, err := s.provider.CreateAccountLink(ctx, vendor.AccountID, refreshURL, returnURL)
	if err != nil {
		s.metrics.IncrExternalError("provider")
		return nil, err
	}
	return link, nil
}

// FinalizeOnboarding is called when the vendor returns from the hosted
// flow. It asks the provider whether details were submitted; only on a
// positive answer does onboarding_complete flip to true. This is the sole
// writer of that flag. An incomplete account leaves state untouched and
// routes the vendor back to the wizard.
func (s *PaymentService) FinalizeOnboarding(ctx context.Context, vendor *domain.Vendor) (*domain.FinalizeResponse, error) {
	ctx, span := payTracer.Start(ctx, "PaymentService.FinalizeOnboarding")
	defer span.End()
	span.SetAttributes(attribute.String("vendor.id", vendor.ID))

	if vendor.AccountID == "" {
		return nil, &domain.ErrValidation{Field: "account", Message: "vendor has no connected account"}
	}

	account, err := s.provider.GetAccount(ctx, vendor.AccountID)
	if err != nil {
		s.metrics.IncrExternalError("provider")
		return nil, err
	}

	if !account.DetailsSubmitted {
		s.logger.Info("onboarding not finished, returning to wizard",
			zap.String("vendor_id", vendor.ID),
		)
		return &domain.FinalizeResponse{
			OnboardingComplete: false,
			OnboardingStep:     vendor.Step(),
			Redirect:           "/signup",
		}, nil
	}

	if err := s.vendors.UpdateVendor(ctx, vendor.ID, map[string]any{"onboarding_complete": true}); err != nil {
		return nil, fmt.Errorf("persist onboarding flag: %w", err)
	}
	vendor.OnboardingComplete = true

	s.logger.Info("vendor onboarding complete", zap.String("vendor_id", vendor.ID))
	return &domain.FinalizeResponse{
		OnboardingComplete: true,
		OnboardingStep:     vendor.Step(),
		Redirect:           "/dashboard",
	}, nil
}

// ============================================================
// Charges and transfers
// ============================================================

// CreateOffering persists an offering, then charges the customer and
// routes the vendor payout by country:
//
//   - DE vendors: one destination charge carrying the payout in its
//     transfer data. A single provider operation.
//   - all other countries: a charge tagged with the offering id as
//     transfer group, then a separate transfer of the payout with the same
//     group. The two calls are not transactional — if the transfer fails
//     after the charge succeeded, the offering keeps its charge reference
//     and no transfer reference. That window stays visible, by contract.
//
// The offering row exists before any provider call; a rejected payment
// leaves it without a charge reference.
func (s *PaymentService) CreateOffering(ctx context.Context, vendor *domain.Vendor, req *domain.OfferingRequest) (*domain.Offering, error) {
	ctx, span := payTracer.Start(ctx, "PaymentService.CreateOffering")
	defer span.End()
	span.SetAttributes(
		attribute.String("vendor.id", vendor.ID),
		attribute.Int64("amount", req.Amount),
	)

	if req.Amount <= 0 {
		return nil, &domain.ErrValidation{Field: "amount", Message: "must be a positive integer in minor units"}
	}
	if req.CustomerID == "" {
		return nil, &domain.ErrValidation{Field: "customerId", Message: "required"}
	}
	if vendor.AccountID == "" || !vendor.OnboardingComplete {
		return nil, &domain.ErrValidation{Field: "vendor", Message: "vendor is not onboarded for payments"}
	}

	customer, err := s.customers.GetCustomerByID(ctx, req.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("get customer: %w", err)
	}
	if customer == nil {
		return nil, &domain.ErrValidation{Field: "customerId", Message: "unknown customer"}
	}

	currency := req.Currency
	if currency == "" {
		currency = domain.DefaultCurrency
	}

	offering := &domain.Offering{
		ID:             uuid.New().String(),
		VendorID:       vendor.ID,
		CustomerID:     req.CustomerID,
		OriginLat:      req.OriginLat,
		OriginLng:      req.OriginLng,
		DestinationLat: req.DestinationLat,
		DestinationLng: req.DestinationLng,
		Amount:         req.Amount,
		Currency:       currency,
		PickupAt:       parseTimeOrNow(req.PickupAt),
		DropoffAt:      parseTimeOrNow(req.DropoffAt),
		CreatedAt:      time.Now().UTC(),
	}

	route := "separate"
	if vendor.Country == directChargeCountry {
		route = "direct"
	} else {
		offering.TransferGroup = offering.ID
	}

	// Persisted before the charge attempt: a rejected payment must leave
	// a queryable offering with no transaction reference.
	if err := s.offerings.CreateOffering(ctx, offering); err != nil {
		return nil, fmt.Errorf("create offering: %w", err)
	}

	payout := VendorPayout(offering.Amount)
	description := fmt.Sprintf("Offering %s by %s", offering.ID, vendor.DisplayName())

	chargeParams := &domain.ChargeParams{
		Amount:      offering.Amount,
		Currency:    offering.Currency,
		Description: description,
		PayerID:     customer.PayerID,
	}
	if route == "direct" {
		chargeParams.OnBehalfOf = vendor.AccountID
		chargeParams.TransferAmount = payout
		chargeParams.TransferDestination = vendor.AccountID
	} else {
		chargeParams.TransferGroup = offering.TransferGroup
	}

	charge, err := s.provider.CreateCharge(ctx, chargeParams)
	if err != nil {
		s.metrics.IncrExternalError("provider")
		s.metrics.IncrPayment(route, "error")
		s.logger.Warn("charge rejected",
			zap.String("offering_id", offering.ID),
			zap.String("route", route),
			zap.Error(err),
		)
		return offering, &domain.ErrPaymentRejected{OfferingID: offering.ID, Err: err}
	}

	if err := s.offerings.AttachCharge(ctx, offering.ID, charge.ID); err != nil {
		return offering, fmt.Errorf("attach charge reference: %w", err)
	}
	offering.ChargeID = charge.ID

	if route == "separate" {
		transfer, err := s.provider.CreateTransfer(ctx, &domain.TransferParams{
			Amount:        payout,
			Currency:      offering.Currency,
			Destination:   vendor.AccountID,
			TransferGroup: offering.TransferGroup,
		})
		if err != nil {
			// Accepted inconsistency window: the charge stands, the
			// transfer is missing, and the offering shows exactly that.
			s.metrics.IncrExternalError("provider")
			s.metrics.IncrPayment(route, "error")
			s.logger.Error("transfer failed after successful charge",
				zap.String("offering_id", offering.ID),
				zap.String("charge_id", charge.ID),
				zap.Error(err),
			)
			return offering, &domain.ErrPaymentRejected{OfferingID: offering.ID, Err: err}
		}
		if err := s.offerings.AttachTransfer(ctx, offering.ID, transfer.ID); err != nil {
			return offering, fmt.Errorf("attach transfer reference: %w", err)
		}
		offering.TransferID = transfer.ID
	}

	s.metrics.IncrPayment(route, "success")
	s.metrics.AddPaymentVolume(offering.Currency, offering.Amount)
	s.logger.Info("offering paid",
		zap.String("offering_id", offering.ID),
		zap.String("route", route),
		zap.Int64("amount", offering.Amount),
		zap.Int64("vendor_payout", payout),
	)
	return offering, nil
}

// ============================================================
// Payment links
// ============================================================

// CreatePaymentLink requests a provider-hosted payment page for one of the
// vendor's prices. Quantity defaults to 1 when absent. Nothing is
// persisted.
func (s *PaymentService) CreatePaymentLink(ctx context.Context, vendor *domain.Vendor, req *domain.PaymentLinkRequest) (*domain.PaymentLink, error) {
	ctx, span := payTracer.Start(ctx, "PaymentService.CreatePaymentLink")
	defer span.End()
	span.SetAttributes(attribute.String("vendor.id", vendor.ID))

	if req.PriceID == "" {
		return nil, &domain.ErrValidation{Field: "priceId", Message: "required"}
	}
	quantity := int64(1)
	if req.Quantity != nil {
		if *req.Quantity <= 0 {
			return nil, &domain.ErrValidation{Field: "quantity", Message: "must be a positive integer"}
		}
		quantity = *req.Quantity
	}
	if vendor.AccountID == "" {
		return nil, &domain.ErrValidation{Field: "vendor", Message: "vendor has no connected account"}
	}

	link, err := s.provider.CreatePaymentLink(ctx, vendor.AccountID, &domain.PaymentLinkParams{
		PriceID:        req.PriceID,
		Quantity:       quantity,
		ApplicationFee: FixedApplicationFee,
	})
	if err != nil {
		s.metrics.IncrExternalError("provider")
		return nil, err
	}

	s.logger.Info("payment link created",
		zap.String("vendor_id", vendor.ID),
		zap.String("link_id", link.ID),
	)
	return link, nil
}

// ============================================================
// Catalog
// ============================================================

// ListProducts lists the vendor's products with their display price. The
// explicit default price wins; without one, the first price in the
// provider's listing is used — never an amount-based pick. Results are
// cached per account.
func (s *PaymentService) ListProducts(ctx context.Context, vendor *domain.Vendor) ([]domain.ProductWithPrice, error) {
	ctx, span := payTracer.Start(ctx, "PaymentService.ListProducts")
	defer span.End()
	span.SetAttributes(attribute.String("vendor.id", vendor.ID))

	if vendor.AccountID == "" {
		return []domain.ProductWithPrice{}, nil
	}

	cacheKey := "catalog:" + vendor.AccountID
	if cached, ok := s.catalog.Get(cacheKey); ok {
		s.metrics.IncrCacheHit("catalog")
		return cached, nil
	}
	s.metrics.IncrCacheMiss("catalog")

	products, err := s.provider.ListProducts(ctx, vendor.AccountID)
	if err != nil {
		s.metrics.IncrExternalError("provider")
		return nil, err
	}

	listing := make([]domain.ProductWithPrice, 0, len(products))
	for _, product := range products {
		price, err := s.resolvePrice(ctx, vendor.AccountID, product)
		if err != nil {
			s.metrics.IncrExternalError("provider")
			return nil, err
		}
		listing = append(listing, domain.ProductWithPrice{Product: product, Price: price})
	}

	s.catalog.Set(cacheKey, listing)
	return listing, nil
}

// resolvePrice implements the display-price rule: default price if set,
// otherwise the first listed price, otherwise none.
func (s *PaymentService) resolvePrice(ctx context.Context, accountID string, product domain.Product) (*domain.Price, error) {
	if product.DefaultPriceID != "" {
		return s.provider.GetPrice(ctx, accountID, product.DefaultPriceID)
	}

	prices, err := s.provider.ListPrices(ctx, accountID, product.ID)
	if err != nil {
		return nil, err
	}
	if len(prices) == 0 {
		return nil, nil
	}
	return &prices[0], nil
}

// ============================================================
// Balance, payouts, dashboard
// ============================================================

// Balance returns the vendor's connected-account balance.
func (s *PaymentService) Balance(ctx context.Context, vendor *domain.Vendor) (*domain.Balance, error) {
	ctx, span := payTracer.Start(ctx, "PaymentService.Balance")
	defer span.End()

	if vendor.AccountID == "" {
		return nil, &domain.ErrValidation{Field: "vendor", Message: "vendor has no connected account"}
	}

	balance, err := s.provider.GetBalance(ctx, vendor.AccountID)
	if err != nil {
		s.metrics.IncrExternalError("provider")
		return nil, err
	}
	return balance, nil
}

// Payout creates a payout from the vendor's connected-account balance.
func (s *PaymentService) Payout(ctx context.Context, vendor *domain.Vendor, req *domain.PayoutRequest) (*domain.Payout, error) {
	ctx, span := payTracer.Start(ctx, "PaymentService.Payout")
	defer span.End()
	span.SetAttributes(attribute.String("vendor.id", vendor.ID))

	if req.Amount <= 0 {
		return nil, &domain.ErrValidation{Field: "amount", Message: "must be a positive integer in minor units"}
	}
	if vendor.AccountID == "" || !vendor.OnboardingComplete {
		return nil, &domain.ErrValidation{Field: "vendor", Message: "vendor is not onboarded for payments"}
	}

	currency := req.Currency
	if currency == "" {
		currency = domain.DefaultCurrency
	}

	payout, err := s.provider.CreatePayout(ctx, vendor.AccountID, &domain.PayoutParams{
		Amount:   req.Amount,
		Currency: currency,
	})
	if err != nil {
		s.metrics.IncrExternalError("provider")
		return nil, err
	}

	s.logger.Info("payout created",
		zap.String("vendor_id", vendor.ID),
		zap.String("payout_id", payout.ID),
		zap.Int64("amount", payout.Amount),
	)
	return payout, nil
}

// ListOfferings returns the vendor's offerings created within the given
// window, newest first.
func (s *PaymentService) ListOfferings(ctx context.Context, vendor *domain.Vendor, window time.Duration) ([]domain.Offering, error) {
	ctx, span := payTracer.Start(ctx, "PaymentService.ListOfferings")
	defer span.End()
	span.SetAttributes(attribute.String("vendor.id", vendor.ID))

	offerings, err := s.offerings.ListVendorOfferingsSince(ctx, vendor.ID, time.Now().Add(-window))
	if err != nil {
		return nil, fmt.Errorf("list offerings: %w", err)
	}
	if offerings == nil {
		offerings = []domain.Offering{}
	}
	return offerings, nil
}

// Dashboard aggregates the vendor landing view: the last week of
// offerings (newest first) and, for onboarded vendors, the account
// balance. The two reads run concurrently.
func (s *PaymentService) Dashboard(ctx context.Context, vendor *domain.Vendor) (*domain.DashboardResponse, error) {
	ctx, span := payTracer.Start(ctx, "PaymentService.Dashboard")
	defer span.End()
	span.SetAttributes(attribute.String("vendor.id", vendor.ID))

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("dashboard", time.Since(start))
	}()

	var (
		offerings []domain.Offering
		balance   *domain.Balance
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		list, err := s.offerings.ListVendorOfferingsSince(gCtx, vendor.ID, time.Now().Add(-dashboardWindow))
		if err != nil {
			return fmt.Errorf("list offerings: %w", err)
		}
		offerings = list
		return nil
	})

	if vendor.AccountID != "" {
		g.Go(func() error {
			b, err := s.provider.GetBalance(gCtx, vendor.AccountID)
			if err != nil {
				// The dashboard still renders without a balance.
				s.metrics.IncrExternalError("provider")
				s.logger.Warn("dashboard: balance unavailable",
					zap.String("vendor_id", vendor.ID),
					zap.Error(err),
				)
				return nil
			}
			balance = b
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if offerings == nil {
		offerings = []domain.Offering{}
	}
	return &domain.DashboardResponse{
		Vendor:    domain.NewVendorResponse(vendor),
		Balance:   balance,
		Offerings: offerings,
	}, nil
}

// parseTimeOrNow reads an RFC3339 timestamp, defaulting to now.
func parseTimeOrNow(value string) time.Time {
	if value == "" {
		return time.Now().UTC()
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Now().UTC()
	}
	return t
}
