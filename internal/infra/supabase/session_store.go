package supabase

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/holzmann/marketpay-go/internal/domain"
)

// ============================================================
// SessionStore implementation — only token hashes are stored
// ============================================================

type sessionRow struct {
	ID        string `json:"id"`
	VendorID  string `json:"vendor_id"`
	TokenHash string `json:"token_hash"`
	ExpiresAt string `json:"expires_at"`
	Revoked   bool   `json:"revoked"`
}

func (c *Client) CreateSession(ctx context.Context, s *domain.Session) error {
	ctx, span := tracer.Start(ctx, "Supabase.CreateSession")
	defer span.End()

	data := map[string]any{
		"id":         s.ID,
		"vendor_id":  s.VendorID,
		"token_hash": s.TokenHash,
		"expires_at": s.ExpiresAt.Format(time.RFC3339),
		"revoked":    s.Revoked,
	}

	if _, err := c.doPost(ctx, "sessions", data); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (c *Client) GetSessionByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetSessionByTokenHash")
	defer span.End()

	path := fmt.Sprintf("sessions?token_hash=eq.%s&revoked=eq.false&limit=1", url.QueryEscape(tokenHash))
	body, err := c.doGet(ctx, path)
	if err != nil {
		return nil, err
	}

	rows, err := decodeRows[sessionRow](body)
	if err != nil {
		return nil, fmt.Errorf("decode sessions: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	r := rows[0]
	expires, _ := time.Parse(time.RFC3339, r.ExpiresAt)
	return &domain.Session{
		ID:        r.ID,
		VendorID:  r.VendorID,
		TokenHash: r.TokenHash,
		ExpiresAt: expires,
		Revoked:   r.Revoked,
	}, nil
}

func (c *Client) RevokeSession(ctx context.Context, tokenHash string) error {
	ctx, span := tracer.Start(ctx, "Supabase.RevokeSession")
	defer span.End()

	path := fmt.Sprintf("sessions?token_hash=eq.%s", url.QueryEscape(tokenHash))
	return c.doPatch(ctx, path, map[string]any{"revoked": true})
}

func (c *Client) RevokeVendorSessions(ctx context.Context, vendorID string) error {
	ctx, span := tracer.Start(ctx, "Supabase.RevokeVendorSessions")
	defer span.End()

	path := fmt.Sprintf("sessions?vendor_id=eq.%s&revoked=eq.false", url.QueryEscape(vendorID))
	return c.doPatch(ctx, path, map[string]any{"revoked": true})
}
