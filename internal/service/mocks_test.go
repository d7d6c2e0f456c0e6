package service_test

import (
	"context"
	"time"

	"github.com/holzmann/marketpay-go/internal/domain"
)

func ctx() context.Context { return context.Background() }

// --- Store mocks ---

type mockVendorStore struct {
	vendors   map[string]*domain.Vendor // keyed by id
	updates   []map[string]any
	createErr error
	updateErr error
	getErr    error
}

func newMockVendorStore(vendors ...*domain.Vendor) *mockVendorStore {
	m := &mockVendorStore{vendors: map[string]*domain.Vendor{}}
	for _, v := range vendors {
		m.vendors[v.ID] = v
	}
	return m
}

func (m *mockVendorStore) GetVendorByID(_ context.Context, id string) (*domain.Vendor, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.vendors[id], nil
}

func (m *mockVendorStore) GetVendorByEmail(_ context.Context, email string) (*domain.Vendor, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, v := range m.vendors {
		if v.Email == email {
			return v, nil
		}
	}
	return nil, nil
}

func (m *mockVendorStore) GetVendorByAPIKey(_ context.Context, apiKey string) (*domain.Vendor, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, v := range m.vendors {
		if v.APIKey == apiKey {
			return v, nil
		}
	}
	return nil, nil
}

func (m *mockVendorStore) CreateVendor(_ context.Context, v *domain.Vendor) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.vendors[v.ID] = v
	return nil
}

func (m *mockVendorStore) UpdateVendor(_ context.Context, id string, updates map[string]any) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updates = append(m.updates, updates)
	return nil
}

func (m *mockVendorStore) CountVendors(_ context.Context) (int, error) {
	return len(m.vendors), nil
}

// lastUpdate returns the most recent update map, or nil.
func (m *mockVendorStore) lastUpdate() map[string]any {
	if len(m.updates) == 0 {
		return nil
	}
	return m.updates[len(m.updates)-1]
}

type mockCustomerStore struct {
	customers map[string]*domain.Customer // keyed by id
	created   []*domain.Customer
	random    *domain.Customer
	err       error
}

func newMockCustomerStore(customers ...*domain.Customer) *mockCustomerStore {
	m := &mockCustomerStore{customers: map[string]*domain.Customer{}}
	for _, c := range customers {
		m.customers[c.ID] = c
	}
	return m
}

func (m *mockCustomerStore) GetCustomerByID(_ context.Context, id string) (*domain.Customer, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.customers[id], nil
}

func (m *mockCustomerStore) GetCustomerByEmail(_ context.Context, email string) (*domain.Customer, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, c := range m.customers {
		if c.Email == email {
			return c, nil
		}
	}
	return nil, nil
}

func (m *mockCustomerStore) CreateCustomer(_ context.Context, c *domain.Customer) error {
	if m.err != nil {
		return m.err
	}
	m.customers[c.ID] = c
	m.created = append(m.created, c)
	return nil
}

func (m *mockCustomerStore) RandomCustomer(_ context.Context) (*domain.Customer, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.random, nil
}

func (m *mockCustomerStore) CountCustomers(_ context.Context) (int, error) {
	return len(m.customers), nil
}

type mockOfferingStore struct {
	created   []*domain.Offering
	charges   map[string]string // offering id -> charge id
	transfers map[string]string // offering id -> transfer id
	listed    []domain.Offering
	createErr error
	listErr   error
}

func newMockOfferingStore() *mockOfferingStore {
	return &mockOfferingStore{
		charges:   map[string]string{},
		transfers: map[string]string{},
	}
}

func (m *mockOfferingStore) CreateOffering(_ context.Context, o *domain.Offering) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = append(m.created, o)
	return nil
}

func (m *mockOfferingStore) AttachCharge(_ context.Context, offeringID, chargeID string) error {
	m.charges[offeringID] = chargeID
	return nil
}

func (m *mockOfferingStore) AttachTransfer(_ context.Context, offeringID, transferID string) error {
	m.transfers[offeringID] = transferID
	return nil
}

func (m *mockOfferingStore) ListVendorOfferingsSince(_ context.Context, _ string, _ time.Time) ([]domain.Offering, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.listed, nil
}

type mockSessionStore struct {
	sessions map[string]*domain.Session // keyed by token hash
	err      error
}

func newMockSessionStore() *mockSessionStore {
	return &mockSessionStore{sessions: map[string]*domain.Session{}}
}

func (m *mockSessionStore) CreateSession(_ context.Context, s *domain.Session) error {
	if m.err != nil {
		return m.err
	}
	m.sessions[s.TokenHash] = s
	return nil
}

func (m *mockSessionStore) GetSessionByTokenHash(_ context.Context, tokenHash string) (*domain.Session, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.sessions[tokenHash], nil
}

func (m *mockSessionStore) RevokeSession(_ context.Context, tokenHash string) error {
	if s, ok := m.sessions[tokenHash]; ok {
		s.Revoked = true
	}
	return nil
}

func (m *mockSessionStore) RevokeVendorSessions(_ context.Context, vendorID string) error {
	for _, s := range m.sessions {
		if s.VendorID == vendorID {
			s.Revoked = true
		}
	}
	return nil
}

// --- Provider mock ---

type mockProvider struct {
	account     *domain.Account
	accountErr  error
	link        *domain.AccountLink
	linkErr     error
	balance     *domain.Balance
	balanceErr  error
	charge      *domain.Charge
	chargeErr   error
	transfer    *domain.Transfer
	transferErr error
	products    []domain.Product
	prices      map[string][]domain.Price // product id -> listing order
	priceByID   map[string]*domain.Price
	catalogErr  error
	paymentLink *domain.PaymentLink
	payout      *domain.Payout
	payoutErr   error
	payerID     string
	payerErr    error

	chargeParams   []*domain.ChargeParams
	transferParams []*domain.TransferParams
	linkParams     []*domain.PaymentLinkParams
	listCalls      int
}

func (m *mockProvider) CreateAccount(_ context.Context, _ *domain.AccountParams) (*domain.Account, error) {
	return m.account, m.accountErr
}

func (m *mockProvider) GetAccount(_ context.Context, _ string) (*domain.Account, error) {
	return m.account, m.accountErr
}

func (m *mockProvider) CreateAccountLink(_ context.Context, _, _, _ string) (*domain.AccountLink, error) {
	return m.link, m.linkErr
}

func (m *mockProvider) GetBalance(_ context.Context, _ string) (*domain.Balance, error) {
	return m.balance, m.balanceErr
}

func (m *mockProvider) CreateCharge(_ context.Context, params *domain.ChargeParams) (*domain.Charge, error) {
	m.chargeParams = append(m.chargeParams, params)
	return m.charge, m.chargeErr
}

func (m *mockProvider) CreateTransfer(_ context.Context, params *domain.TransferParams) (*domain.Transfer, error) {
	m.transferParams = append(m.transferParams, params)
	return m.transfer, m.transferErr
}

func (m *mockProvider) ListProducts(_ context.Context, _ string) ([]domain.Product, error) {
	m.listCalls++
	return m.products, m.catalogErr
}

func (m *mockProvider) ListPrices(_ context.Context, _, productID string) ([]domain.Price, error) {
	return m.prices[productID], m.catalogErr
}

func (m *mockProvider) GetPrice(_ context.Context, _, priceID string) (*domain.Price, error) {
	return m.priceByID[priceID], m.catalogErr
}

func (m *mockProvider) CreatePaymentLink(_ context.Context, _ string, params *domain.PaymentLinkParams) (*domain.PaymentLink, error) {
	m.linkParams = append(m.linkParams, params)
	return m.paymentLink, m.linkErr
}

func (m *mockProvider) CreatePayout(_ context.Context, _ string, params *domain.PayoutParams) (*domain.Payout, error) {
	return m.payout, m.payoutErr
}

func (m *mockProvider) CreatePayer(_ context.Context, _, _ string) (string, error) {
	return m.payerID, m.payerErr
}
