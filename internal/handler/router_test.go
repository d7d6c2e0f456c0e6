package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/holzmann/marketpay-go/internal/domain"
	"github.com/holzmann/marketpay-go/internal/handler"
	"github.com/holzmann/marketpay-go/internal/infra/cache"
	"github.com/holzmann/marketpay-go/internal/infra/observability"
	"github.com/holzmann/marketpay-go/internal/service"

	"go.uber.org/zap"
)

// --- In-memory stores ---

type memVendorStore struct {
	vendors map[string]*domain.Vendor
}

func (m *memVendorStore) GetVendorByID(_ context.Context, id string) (*domain.Vendor, error) {
	return m.vendors[id], nil
}

func (m *memVendorStore) GetVendorByEmail(_ context.Context, email string) (*domain.Vendor, error) {
	for _, v := range m.vendors {
		if v.Email == email {
			return v, nil
		}
	}
	return nil, nil
}

func (m *memVendorStore) GetVendorByAPIKey(_ context.Context, apiKey string) (*domain.Vendor, error) {
	for _, v := range m.vendors {
		if v.APIKey == apiKey {
			return v, nil
		}
	}
	return nil, nil
}

func (m *memVendorStore) CreateVendor(_ context.Context, v *domain.Vendor) error {
	m.vendors[v.ID] = v
	return nil
}

func (m *memVendorStore) UpdateVendor(_ context.Context, id string, updates map[string]any) error {
	v := m.vendors[id]
	if v == nil {
		return errors.New("no such vendor")
	}
	if acct, ok := updates["account_id"].(string); ok {
		v.AccountID = acct
	}
	if done, ok := updates["onboarding_complete"].(bool); ok {
		v.OnboardingComplete = done
	}
	return nil
}

func (m *memVendorStore) CountVendors(_ context.Context) (int, error) { return len(m.vendors), nil }

type memCustomerStore struct {
	customers map[string]*domain.Customer
}

func (m *memCustomerStore) GetCustomerByID(_ context.Context, id string) (*domain.Customer, error) {
	return m.customers[id], nil
}

func (m *memCustomerStore) GetCustomerByEmail(_ context.Context, email string) (*domain.Customer, error) {
	for _, c := range m.customers {
		if c.Email == email {
			return c, nil
		}
	}
	return nil, nil
}

func (m *memCustomerStore) CreateCustomer(_ context.Context, c *domain.Customer) error {
	m.customers[c.ID] = c
	return nil
}

func (m *memCustomerStore) RandomCustomer(_ context.Context) (*domain.Customer, error) {
	for _, c := range m.customers {
		return c, nil
	}
	return nil, nil
}

func (m *memCustomerStore) CountCustomers(_ context.Context) (int, error) { return len(m.customers), nil }

type memOfferingStore struct {
	offerings []*domain.Offering
}

func (m *memOfferingStore) CreateOffering(_ context.Context, o *domain.Offering) error {
	m.offerings = append(m.offerings, o)
	return nil
}

func (m *memOfferingStore) AttachCharge(_ context.Context, offeringID, chargeID string) error {
	for _, o := range m.offerings {
		if o.ID == offeringID {
			o.ChargeID = chargeID
		}
	}
	return nil
}

func (m *memOfferingStore) AttachTransfer(_ context.Context, offeringID, transferID string) error {
	for _, o := range m.offerings {
		if o.ID == offeringID {
			o.TransferID = transferID
		}
	}
	return nil
}

func (m *memOfferingStore) ListVendorOfferingsSince(_ context.Context, vendorID string, since time.Time) ([]domain.Offering, error) {
	var out []domain.Offering
	for _, o := range m.offerings {
		if o.VendorID == vendorID && o.CreatedAt.After(since) {
			out = append(out, *o)
		}
	}
	return out, nil
}

type memSessionStore struct {
	sessions map[string]*domain.Session
}

func (m *memSessionStore) CreateSession(_ context.Context, s *domain.Session) error {
	m.sessions[s.TokenHash] = s
	return nil
}

func (m *memSessionStore) GetSessionByTokenHash(_ context.Context, hash string) (*domain.Session, error) {
	return m.sessions[hash], nil
}

func (m *memSessionStore) RevokeSession(_ context.Context, hash string) error {
	if s, ok := m.sessions[hash]; ok {
		s.Revoked = true
	}
	return nil
}

func (m *memSessionStore) RevokeVendorSessions(_ context.Context, vendorID string) error {
	for _, s := range m.sessions {
		if s.VendorID == vendorID {
			s.Revoked = true
		}
	}
	return nil
}

// --- Provider stub ---

type stubProvider struct {
	chargeErr error
}

func (p *stubProvider) CreateAccount(_ context.Context, _ *domain.AccountParams) (*domain.Account, error) {
	return &domain.Account{ID: "acct_test"}, nil
}

func (p *stubProvider) GetAccount(_ context.Context, id string) (*domain.Account, error) {
	return &domain.Account{ID: id, DetailsSubmitted: true}, nil
}

func (p *stubProvider) CreateAccountLink(_ context.Context, _, _, _ string) (*domain.AccountLink, error) {
	return &domain.AccountLink{URL: "https://onboard.example/link"}, nil
}

func (p *stubProvider) GetBalance(_ context.Context, _ string) (*domain.Balance, error) {
	return &domain.Balance{}, nil
}

func (p *stubProvider) CreateCharge(_ context.Context, _ *domain.ChargeParams) (*domain.Charge, error) {
	if p.chargeErr != nil {
		return nil, p.chargeErr
	}
	return &domain.Charge{ID: "ch_test"}, nil
}

func (p *stubProvider) CreateTransfer(_ context.Context, _ *domain.TransferParams) (*domain.Transfer, error) {
	return &domain.Transfer{ID: "tr_test"}, nil
}

func (p *stubProvider) ListProducts(_ context.Context, _ string) ([]domain.Product, error) {
	return []domain.Product{{ID: "prod_1", Name: "Move S", DefaultPriceID: "price_1"}}, nil
}

func (p *stubProvider) ListPrices(_ context.Context, _, _ string) ([]domain.Price, error) {
	return nil, nil
}

func (p *stubProvider) GetPrice(_ context.Context, _, priceID string) (*domain.Price, error) {
	return &domain.Price{ID: priceID, UnitAmount: 4900}, nil
}

func (p *stubProvider) CreatePaymentLink(_ context.Context, _ string, _ *domain.PaymentLinkParams) (*domain.PaymentLink, error) {
	return &domain.PaymentLink{ID: "pl_test", URL: "https://pay.example/pl_test"}, nil
}

func (p *stubProvider) CreatePayout(_ context.Context, _ string, _ *domain.PayoutParams) (*domain.Payout, error) {
	return &domain.Payout{ID: "po_test"}, nil
}

func (p *stubProvider) CreatePayer(_ context.Context, _, _ string) (string, error) {
	return "payer_test", nil
}

// --- Fixture ---

type fixture struct {
	router   http.Handler
	vendors  *memVendorStore
	provider *stubProvider
}

func newFixture() *fixture {
	vendors := &memVendorStore{vendors: map[string]*domain.Vendor{}}
	customers := &memCustomerStore{customers: map[string]*domain.Customer{
		"cust-1": {ID: "cust-1", Email: "payer@example.com", PayerID: "payer_1"},
	}}
	sessions := &memSessionStore{sessions: map[string]*domain.Session{}}
	offerings := &memOfferingStore{}
	provider := &stubProvider{}
	logger := zap.NewNop()

	authSvc := service.NewAuthService(vendors, sessions, "test-secret", time.Hour, 15*time.Minute, logger)
	vendorSvc := service.NewVendorService(vendors, sessions, logger)
	paySvc := service.NewPaymentService(
		vendors, customers, offerings, provider,
		cache.New[[]domain.ProductWithPrice](time.Minute),
		observability.NewMetrics(), logger,
	)

	router := handler.NewRouter(handler.Deps{
		Auth:       authSvc,
		Vendors:    vendorSvc,
		Payments:   paySvc,
		VendorRead: vendors,
		Metrics:    observability.NewMetrics(),
		AppBaseURL: "http://localhost:8080",
		Logger:     logger,
	})

	return &fixture{router: router, vendors: vendors, provider: provider}
}

func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

// signup runs the signup flow and returns the session cookie.
func (f *fixture) signup(t *testing.T, email string) *http.Cookie {
	t.Helper()

	body := `{"email":"` + email + `","password":"long enough"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/signup", strings.NewReader(body))
	rec := f.do(req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	for _, c := range rec.Result().Cookies() {
		if c.Name == "mp_session" {
			return c
		}
	}
	t.Fatal("signup did not set a session cookie")
	return nil
}

// onboard marks the fixture vendor as fully onboarded, bypassing the
// hosted flow.
func (f *fixture) onboard(email string) {
	for _, v := range f.vendors.vendors {
		if v.Email == email {
			v.AccountID = "acct_test"
			v.OnboardingComplete = true
			v.BusinessName = "Acme"
		}
	}
}

// --- Tests ---

func TestHealth(t *testing.T) {
	f := newFixture()

	rec := f.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "OK" {
		t.Errorf("expected body 'OK', got '%s'", rec.Body.String())
	}
}

func TestMetricsEndpoints(t *testing.T) {
	f := newFixture()

	rec := f.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("/metrics: expected 200, got %d", rec.Code)
	}

	rec = f.do(httptest.NewRequest(http.MethodGet, "/v1/metrics/payments", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("/v1/metrics/payments: expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected JSON snapshot, got content type '%s'", ct)
	}
}

func TestVendorRoutes_RequireSession(t *testing.T) {
	f := newFixture()

	rec := f.do(httptest.NewRequest(http.MethodGet, "/v1/vendor/me", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no cookie: expected 401, got %d", rec.Code)
	}

	browserReq := httptest.NewRequest(http.MethodGet, "/v1/vendor/me", nil)
	browserReq.Header.Set("Accept", "text/html,application/xhtml+xml")
	rec = f.do(browserReq)
	if rec.Code != http.StatusSeeOther {
		t.Errorf("browser without cookie: expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Errorf("browser redirect location = %q, want /login", loc)
	}

	cookie := f.signup(t, "vendor@example.com")
	req := httptest.NewRequest(http.MethodGet, "/v1/vendor/me", nil)
	req.AddCookie(cookie)
	rec = f.do(req)
	if rec.Code != http.StatusOK {
		t.Errorf("with cookie: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if body := rec.Body.String(); strings.Contains(body, "password") || strings.Contains(body, "api_key") {
		t.Errorf("vendor view must not leak credentials: %s", body)
	}
}

func TestLogout_RevokesSession(t *testing.T) {
	f := newFixture()
	cookie := f.signup(t, "vendor@example.com")

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/logout", nil)
	req.AddCookie(cookie)
	if rec := f.do(req); rec.Code != http.StatusNoContent {
		t.Fatalf("logout: expected 204, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/vendor/me", nil)
	req.AddCookie(cookie)
	if rec := f.do(req); rec.Code != http.StatusUnauthorized {
		t.Errorf("after logout: expected 401, got %d", rec.Code)
	}
}

func TestCreateOffering_EndToEnd(t *testing.T) {
	f := newFixture()
	cookie := f.signup(t, "vendor@example.com")
	f.onboard("vendor@example.com")

	body := `{"customerId":"cust-1","amount":10000}`
	req := httptest.NewRequest(http.MethodPost, "/v1/vendor/offerings", strings.NewReader(body))
	req.AddCookie(cookie)
	rec := f.do(req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "ch_test") {
		t.Errorf("expected charge reference in response, got %s", rec.Body.String())
	}
}

func TestCreateOffering_RejectedChargeReturns402(t *testing.T) {
	f := newFixture()
	cookie := f.signup(t, "vendor@example.com")
	f.onboard("vendor@example.com")
	f.provider.chargeErr = errors.New("card declined")

	body := `{"customerId":"cust-1","amount":10000}`
	req := httptest.NewRequest(http.MethodPost, "/v1/vendor/offerings", strings.NewReader(body))
	req.AddCookie(cookie)
	rec := f.do(req)
	if rec.Code != http.StatusPaymentRequired {
		t.Errorf("expected 402, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAPIKeySurface(t *testing.T) {
	f := newFixture()
	f.signup(t, "vendor@example.com")
	f.onboard("vendor@example.com")

	var apiKey string
	for _, v := range f.vendors.vendors {
		apiKey = v.APIKey
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	req.Header.Set("Authorization", "Api-Key "+apiKey)
	rec := f.do(req)
	if rec.Code != http.StatusOK {
		t.Errorf("valid key: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	req.Header.Set("Authorization", "Bearer "+apiKey)
	if rec := f.do(req); rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong scheme: expected 401, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	req.Header.Set("Authorization", "Api-Key vk_unknown")
	if rec := f.do(req); rec.Code != http.StatusUnauthorized {
		t.Errorf("unknown key: expected 401, got %d", rec.Code)
	}
}

func TestOnboardingLinkAndReturn(t *testing.T) {
	f := newFixture()
	cookie := f.signup(t, "vendor@example.com")

	req := httptest.NewRequest(http.MethodPost, "/v1/vendor/onboarding/link", nil)
	req.AddCookie(cookie)
	rec := f.do(req)
	if rec.Code != http.StatusOK {
		t.Fatalf("link: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "https://onboard.example/link") {
		t.Errorf("expected onboarding url, got %s", rec.Body.String())
	}

	// The vendor now has an account; a forged state token must not finalize.
	rec = f.do(httptest.NewRequest(http.MethodGet, "/v1/onboarding/return?state=forged", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("forged state: expected 401, got %d", rec.Code)
	}
}

func TestCreatePaymentLink_Sessions(t *testing.T) {
	f := newFixture()
	cookie := f.signup(t, "vendor@example.com")
	f.onboard("vendor@example.com")

	body := `{"priceId":"price_1"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/vendor/payment-links", strings.NewReader(body))
	req.AddCookie(cookie)
	rec := f.do(req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "https://pay.example/pl_test") {
		t.Errorf("expected link url, got %s", rec.Body.String())
	}
}
