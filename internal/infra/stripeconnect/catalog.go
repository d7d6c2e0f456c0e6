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
// Catalog: products, prices, payment links
// ============================================================

type productResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	DefaultPrice string `json:"default_price"`
	Active       bool   `json:"active"`
}

type priceResponse struct {
	ID         string `json:"id"`
	Product    string `json:"product"`
	UnitAmount int64  `json:"unit_amount"`
	Currency   string `json:"currency"`
}

// ListProducts lists active products of a connected account.
func (c *Client) ListProducts(ctx context.Context, accountID string) ([]domain.Product, error) {
	ctx, span := tracer.Start(ctx, "Provider.ListProducts")
	defer span.End()
	span.SetAttributes(attribute.String("account.id", accountID))

	form := url.Values{}
	form.Set("active", "true")

	var resp struct {
		Data []productResponse `json:"data"`
	}
	if err := c.doForm(ctx, http.MethodGet, "/v1/products", form, accountID, &resp); err != nil {
		return nil, &domain.ErrExternalService{Service: "provider/products", Err: err}
	}

	products := make([]domain.Product, 0, len(resp.Data))
	for _, p := range resp.Data {
		products = append(products, domain.Product{
			ID:             p.ID,
			Name:           p.Name,
			Description:    p.Description,
			DefaultPriceID: p.DefaultPrice,
			Active:         p.Active,
		})
	}
	return products, nil
}

// ListPrices lists the prices of one product, in the provider's listing
// order. Callers rely on that order for the display-price fallback.
func (c *Client) ListPrices(ctx context.Context, accountID, productID string) ([]domain.Price, error) {
	ctx, span := tracer.Start(ctx, "Provider.ListPrices")
	defer span.End()
	span.SetAttributes(attribute.String("product.id", productID))

	form := url.Values{}
	form.Set("product", productID)

	var resp struct {
		Data []priceResponse `json:"data"`
	}
	if err := c.doForm(ctx, http.MethodGet, "/v1/prices", form, accountID, &resp); err != nil {
		return nil, &domain.ErrExternalService{Service: "provider/prices", Err: err}
	}

	prices := make([]domain.Price, 0, len(resp.Data))
	for _, p := range resp.Data {
		prices = append(prices, domain.Price{
			ID:         p.ID,
			ProductID:  p.Product,
			UnitAmount: p.UnitAmount,
			Currency:   p.Currency,
		})
	}
	return prices, nil
}

// GetPrice retrieves one price by id.
func (c *Client) GetPrice(ctx context.Context, accountID, priceID string) (*domain.Price, error) {
	ctx, span := tracer.Start(ctx, "Provider.GetPrice")
	defer span.End()
	span.SetAttributes(attribute.String("price.id", priceID))

	var resp priceResponse
	if err := c.doForm(ctx, http.MethodGet, "/v1/prices/"+priceID, nil, accountID, &resp); err != nil {
		return nil, &domain.ErrExternalService{Service: "provider/prices", Err: err}
	}
	return &domain.Price{
		ID:         resp.ID,
		ProductID:  resp.Product,
		UnitAmount: resp.UnitAmount,
		Currency:   resp.Currency,
	}, nil
}

// CreatePaymentLink creates a hosted payment link scoped to a connected
// account, with the fixed platform application fee.
func (c *Client) CreatePaymentLink(ctx context.Context, accountID string, params *domain.PaymentLinkParams) (*domain.PaymentLink, error) {
	ctx, span := tracer.Start(ctx, "Provider.CreatePaymentLink")
	defer span.End()
	span.SetAttributes(
		attribute.String("price.id", params.PriceID),
		attribute.Int64("quantity", params.Quantity),
	)

	form := url.Values{}
	form.Set("line_items[0][price]", params.PriceID)
	form.Set("line_items[0][quantity]", strconv.FormatInt(params.Quantity, 10))
	if params.ApplicationFee > 0 {
		form.Set("application_fee_amount", strconv.FormatInt(params.ApplicationFee, 10))
	}

	var resp struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	}
	if err := c.doForm(ctx, http.MethodPost, "/v1/payment_links", form, accountID, &resp); err != nil {
		return nil, &domain.ErrExternalService{Service: "provider/payment_links", Err: err}
	}
	return &domain.PaymentLink{ID: resp.ID, URL: resp.URL}, nil
}
