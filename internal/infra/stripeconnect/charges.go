package stripeconnect

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/holzmann/marketpay-go/internal/domain"

	"go.opentelemetry.io/otel/attribute"
)

// ============================================================
// Charges, transfers and payouts
// ============================================================

// CreateCharge creates a charge. The params carry exactly one routing
// shape: on_behalf_of + transfer_data for the direct destination-charge
// path, or a transfer_group for the separate charge+transfer path.
func (c *Client) CreateCharge(ctx context.Context, params *domain.ChargeParams) (*domain.Charge, error) {
	ctx, span := tracer.Start(ctx, "Provider.CreateCharge")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("charge.amount", params.Amount),
		attribute.String("charge.currency", params.Currency),
	)

	form := url.Values{}
	form.Set("amount", strconv.FormatInt(params.Amount, 10))
	form.Set("currency", params.Currency)
	if params.Description != "" {
		form.Set("description", params.Description)
	}
	if params.PayerID != "" {
		form.Set("customer", params.PayerID)
	}

	if params.OnBehalfOf != "" {
		form.Set("on_behalf_of", params.OnBehalfOf)
		form.Set("transfer_data[amount]", strconv.FormatInt(params.TransferAmount, 10))
		form.Set("transfer_data[destination]", params.TransferDestination)
	} else if params.TransferGroup != "" {
		form.Set("transfer_group", params.TransferGroup)
	}

	var resp struct {
		ID            string `json:"id"`
		Amount        int64  `json:"amount"`
		Currency      string `json:"currency"`
		TransferGroup string `json:"transfer_group"`
	}
	if err := c.doForm(ctx, http.MethodPost, "/v1/charges", form, "", &resp); err != nil {
		return nil, &domain.ErrExternalService{Service: "provider/charges", Err: err}
	}
	return &domain.Charge{
		ID:            resp.ID,
		Amount:        resp.Amount,
		Currency:      resp.Currency,
		TransferGroup: resp.TransferGroup,
	}, nil
}

// CreateTransfer moves the vendor payout to a connected account, tagged
// with the same transfer group as its charge.
func (c *Client) CreateTransfer(ctx context.Context, params *domain.TransferParams) (*domain.Transfer, error) {
	ctx, span := tracer.Start(ctx, "Provider.CreateTransfer")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("transfer.amount", params.Amount),
		attribute.String("transfer.destination", params.Destination),
	)

	form := url.Values{}
	form.Set("amount", strconv.FormatInt(params.Amount, 10))
	form.Set("currency", params.Currency)
	form.Set("destination", params.Destination)
	form.Set("transfer_group", params.TransferGroup)

	var resp struct {
		ID          string `json:"id"`
		Amount      int64  `json:"amount"`
		Destination string `json:"destination"`
	}
	if err := c.doForm(ctx, http.MethodPost, "/v1/transfers", form, "", &resp); err != nil {
		return nil, &domain.ErrExternalService{Service: "provider/transfers", Err: err}
	}
	return &domain.Transfer{
		ID:          resp.ID,
		Amount:      resp.Amount,
		Destination: resp.Destination,
	}, nil
}

// CreatePayout pays out from a connected account balance to the vendor's
// bank.
func (c *Client) CreatePayout(ctx context.Context, accountID string, params *domain.PayoutParams) (*domain.Payout, error) {
	ctx, span := tracer.Start(ctx, "Provider.CreatePayout")
	defer span.End()
	span.SetAttributes(attribute.String("account.id", accountID))

	form := url.Values{}
	form.Set("amount", strconv.FormatInt(params.Amount, 10))
	form.Set("currency", params.Currency)

	var resp struct {
		ID       string `json:"id"`
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
	}
	if err := c.doForm(ctx, http.MethodPost, "/v1/payouts", form, accountID, &resp); err != nil {
		return nil, &domain.ErrExternalService{Service: "provider/payouts", Err: err}
	}
	return &domain.Payout{
		ID:       resp.ID,
		Amount:   resp.Amount,
		Currency: resp.Currency,
	}, nil
}
