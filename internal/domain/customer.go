package domain

import "time"

// Customer is a payer. Customers are created by the demo seeding path (or
// externally) and are read-only from the payment orchestrator's view.
type Customer struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`

	// PayerID is the provider-side payment-method holder, created together
	// with the record. Exactly one per customer.
	PayerID string `json:"payer_id"`

	CreatedAt time.Time `json:"created_at"`
}
