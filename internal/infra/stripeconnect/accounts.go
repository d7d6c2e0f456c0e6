package stripeconnect

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
// Connected accounts, onboarding links, balance, payers
// ============================================================

type accountResponse struct {
	ID               string `json:"id"`
	Country          string `json:"country"`
	DetailsSubmitted bool   `json:"details_submitted"`
	ChargesEnabled   bool   `json:"charges_enabled"`
	PayoutsEnabled   bool   `json:"payouts_enabled"`
}

func (r *accountResponse) toDomain() *domain.Account {
	return &domain.Account{
		ID:               r.ID,
		Country:          r.Country,
		DetailsSubmitted: r.DetailsSubmitted,
		ChargesEnabled:   r.ChargesEnabled,
		PayoutsEnabled:   r.PayoutsEnabled,
	}
}

// CreateAccount creates a connected account for a vendor. The payload shape
// depends on the vendor type: companies send the business name, individuals
// send first/last name and email.
func (c *Client) CreateAccount(ctx context.Context, params *domain.AccountParams) (*domain.Account, error) {
	ctx, span := tracer.Start(ctx, "Provider.CreateAccount")
	defer span.End()
	span.SetAttributes(
		attribute.String("account.type", params.Type),
		attribute.String("account.country", params.Country),
	)

	form := url.Values{}
	form.Set("type", "express")
	form.Set("country", params.Country)
	form.Set("email", params.Email)
	form.Set("business_type", params.Type)
	switch params.Type {
	case domain.VendorTypeCompany:
		form.Set("company[name]", params.BusinessName)
	case domain.VendorTypeIndividual:
		form.Set("individual[first_name]", params.FirstName)
		form.Set("individual[last_name]", params.LastName)
		form.Set("individual[email]", params.Email)
	}

	var resp accountResponse
	if err := c.doForm(ctx, http.MethodPost, "/v1/accounts", form, "", &resp); err != nil {
		return nil, &domain.ErrExternalService{Service: "provider/accounts", Err: err}
	}
	return resp.toDomain(), nil
}

// GetAccount retrieves a connected account, including its onboarding
// completion status.
func (c *Client) GetAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	ctx, span := tracer.Start(ctx, "Provider.GetAccount")
	defer span.End()
	span.SetAttributes(attribute.String("account.id", accountID))

	var resp accountResponse
	if err := c.doForm(ctx, http.MethodGet, "/v1/accounts/"+accountID, nil, "", &resp); err != nil {
		return nil, &domain.ErrExternalService{Service: "provider/accounts", Err: err}
	}
	return resp.toDomain(), nil
}

// CreateAccountLink requests a fresh, time-limited hosted onboarding URL.
// A new link is minted on every call regardless of account state.
func (c *Client) CreateAccountLink(ctx context.Context, accountID, refreshURL, returnURL string) (*domain.AccountLink, error) {
	ctx, span := tracer.Start(ctx, "Provider.CreateAccountLink")
	defer span.End()
	span.SetAttributes(attribute.String("account.id", accountID))

	form := url.Values{}
	form.Set("account", accountID)
	form.Set("refresh_url", refreshURL)
	form.Set("return_url", returnURL)
	form.Set("type", "account_onboarding")

	var resp struct {
		URL       string `json:"url"`
		ExpiresAt int64  `json:"expires_at"`
	}
	if err := c.doForm(ctx, http.MethodPost, "/v1/account_links", form, "", &resp); err != nil {
		return nil, &domain.ErrExternalService{Service: "provider/account_links", Err: err}
	}
	return &domain.AccountLink{
		URL:       resp.URL,
		ExpiresAt: time.Unix(resp.ExpiresAt, 0),
	}, nil
}

// GetBalance retrieves available and pending funds of a connected account.
func (c *Client) GetBalance(ctx context.Context, accountID string) (*domain.Balance, error) {
	ctx, span := tracer.Start(ctx, "Provider.GetBalance")
	defer span.End()
	span.SetAttributes(attribute.String("account.id", accountID))

	var resp struct {
		Available []struct {
			Amount   int64  `json:"amount"`
			Currency string `json:"currency"`
		} `json:"available"`
		Pending []struct {
			Amount   int64  `json:"amount"`
			Currency string `json:"currency"`
		} `json:"pending"`
	}
	if err := c.doForm(ctx, http.MethodGet, "/v1/balance", nil, accountID, &resp); err != nil {
		return nil, &domain.ErrExternalService{Service: "provider/balance", Err: err}
	}

	balance := &domain.Balance{}
	for _, a := range resp.Available {
		balance.Available = append(balance.Available, domain.BalanceAmount{Amount: a.Amount, Currency: a.Currency})
	}
	for _, p := range resp.Pending {
		balance.Pending = append(balance.Pending, domain.BalanceAmount{Amount: p.Amount, Currency: p.Currency})
	}
	return balance, nil
}

// CreatePayer registers a payment-method holder for a customer record.
func (c *Client) CreatePayer(ctx context.Context, email, name string) (string, error) {
	ctx, span := tracer.Start(ctx, "Provider.CreatePayer")
	defer span.End()

	form := url.Values{}
	form.Set("email", email)
	form.Set("name", name)

	var resp struct {
		ID string `json:"id"`
	}
	if err := c.doForm(ctx, http.MethodPost, "/v1/customers", form, "", &resp); err != nil {
		return "", &domain.ErrExternalService{Service: "provider/customers", Err: err}
	}
	if resp.ID == "" {
		return "", &domain.ErrExternalService{Service: "provider/customers", Err: fmt.Errorf("empty payer id")}
	}
	return resp.ID, nil
}
