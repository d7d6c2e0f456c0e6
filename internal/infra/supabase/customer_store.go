package supabase

import (
	"context"
	"fmt"
	"math/rand"
	"net/url"
	"time"

	"github.com/holzmann/marketpay-go/internal/domain"
)

// ============================================================
// CustomerStore implementation
// ============================================================

type customerRow struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	PayerID   string `json:"payer_id"`
	CreatedAt string `json:"created_at"`
}

func (r *customerRow) toDomain() *domain.Customer {
	created, _ := time.Parse(time.RFC3339, r.CreatedAt)
	return &domain.Customer{
		ID:        r.ID,
		Email:     r.Email,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		PayerID:   r.PayerID,
		CreatedAt: created,
	}
}

func (c *Client) GetCustomerByID(ctx context.Context, id string) (*domain.Customer, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetCustomerByID")
	defer span.End()

	return c.getCustomerBy(ctx, "id", id)
}

func (c *Client) GetCustomerByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetCustomerByEmail")
	defer span.End()

	return c.getCustomerBy(ctx, "email", domain.NormalizeEmail(email))
}

func (c *Client) getCustomerBy(ctx context.Context, field, value string) (*domain.Customer, error) {
	path := fmt.Sprintf("customers?%s=eq.%s&limit=1", field, url.QueryEscape(value))
	body, err := c.doGet(ctx, path)
	if err != nil {
		return nil, err
	}

	rows, err := decodeRows[customerRow](body)
	if err != nil {
		return nil, fmt.Errorf("decode customers: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0].toDomain(), nil
}

func (c *Client) CreateCustomer(ctx context.Context, cust *domain.Customer) error {
	ctx, span := tracer.Start(ctx, "Supabase.CreateCustomer")
	defer span.End()

	data := map[string]any{
		"id":         cust.ID,
		"email":      cust.Email,
		"first_name": cust.FirstName,
		"last_name":  cust.LastName,
		"payer_id":   cust.PayerID,
		"created_at": cust.CreatedAt.Format(time.RFC3339),
	}

	if _, err := c.doPost(ctx, "customers", data); err != nil {
		return fmt.Errorf("create customer: %w", err)
	}
	return nil
}

// RandomCustomer returns a uniformly random customer record, or nil when
// the table is empty. PostgREST has no random ordering, so this counts and
// reads at a random offset.
func (c *Client) RandomCustomer(ctx context.Context) (*domain.Customer, error) {
	ctx, span := tracer.Start(ctx, "Supabase.RandomCustomer")
	defer span.End()

	total, err := c.doCount(ctx, "customers?select=id")
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return nil, nil
	}

	path := fmt.Sprintf("customers?order=created_at.asc&limit=1&offset=%d", rand.Intn(total))
	body, err := c.doGet(ctx, path)
	if err != nil {
		return nil, err
	}

	rows, err := decodeRows[customerRow](body)
	if err != nil {
		return nil, fmt.Errorf("decode customers: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0].toDomain(), nil
}

func (c *Client) CountCustomers(ctx context.Context) (int, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CountCustomers")
	defer span.End()

	return c.doCount(ctx, "customers?select=id")
}
