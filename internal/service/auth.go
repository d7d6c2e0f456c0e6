// Package service provides the business logic layer (use cases).
package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/holzmann/marketpay-go/internal/domain"
	"github.com/holzmann/marketpay-go/internal/port"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var authTracer = otel.Tracer("service/auth")

// apiKeyPrefix marks every vendor API key.
const apiKeyPrefix = "vk_"

// AuthService owns both authentication mechanisms: server-side login
// sessions for the vendor dashboard and static API keys for programmatic
// callers. It also signs the short-lived state tokens carried through the
// hosted onboarding return URL.
type AuthService struct {
	vendors    port.VendorStore
	sessions   port.SessionStore
	stateKey   []byte
	sessionTTL time.Duration
	stateTTL   time.Duration
	logger     *zap.Logger
}

// NewAuthService creates the auth service.
func NewAuthService(vendors port.VendorStore, sessions port.SessionStore, stateSecret string, sessionTTL, stateTTL time.Duration, logger *zap.Logger) *AuthService {
	return &AuthService{
		vendors:    vendors,
		sessions:   sessions,
		stateKey:   []byte(stateSecret),
		sessionTTL: sessionTTL,
		stateTTL:   stateTTL,
		logger:     logger,
	}
}

// SessionTTL exposes the configured session lifetime for cookie expiry.
func (s *AuthService) SessionTTL() time.Duration {
	return s.sessionTTL
}

// ============================================================
// Signup — POST /v1/auth/signup
// ============================================================

// Signup creates a minimal vendor record (company type, default country)
// and opens a session. The wizard fills in the rest later. Email
// uniqueness is checked here explicitly, before the insert.
func (s *AuthService) Signup(ctx context.Context, req *domain.SignupRequest) (*domain.Vendor, string, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.Signup")
	defer span.End()

	email := domain.NormalizeEmail(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, "", &domain.ErrValidation{Field: "email", Message: "a valid email is required"}
	}
	if len(req.Password) < 8 {
		return nil, "", &domain.ErrValidation{Field: "password", Message: "must be at least 8 characters"}
	}
	span.SetAttributes(attribute.String("vendor.email", email))

	existing, err := s.vendors.GetVendorByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("check existing vendor: %w", err)
	}
	if existing != nil {
		return nil, "", &domain.ErrConflict{Message: "email already registered"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	vendor := &domain.Vendor{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		Type:         domain.VendorTypeCompany,
		Country:      domain.DefaultCountry,
		APIKey:       newAPIKey(),
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.vendors.CreateVendor(ctx, vendor); err != nil {
		return nil, "", fmt.Errorf("create vendor: %w", err)
	}

	token, err := s.openSession(ctx, vendor.ID)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("vendor signed up", zap.String("vendor_id", vendor.ID))
	return vendor, token, nil
}

// ============================================================
// Login / Logout
// ============================================================

// Login verifies the password and opens a session. Unknown email and wrong
// password produce the same error.
func (s *AuthService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.Vendor, string, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.Login")
	defer span.End()

	vendor, err := s.vendors.GetVendorByEmail(ctx, domain.NormalizeEmail(req.Email))
	if err != nil {
		return nil, "", fmt.Errorf("get vendor: %w", err)
	}
	if vendor == nil {
		return nil, "", &domain.ErrUnauthorized{Message: "invalid credentials"}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(vendor.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warn("login: failed password attempt", zap.String("vendor_id", vendor.ID))
		return nil, "", &domain.ErrUnauthorized{Message: "invalid credentials"}
	}

	token, err := s.openSession(ctx, vendor.ID)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("vendor logged in", zap.String("vendor_id", vendor.ID))
	return vendor, token, nil
}

// Logout revokes the presented session token.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	ctx, span := authTracer.Start(ctx, "AuthService.Logout")
	defer span.End()

	if err := s.sessions.RevokeSession(ctx, hashToken(token)); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// Authenticate resolves a session token to its vendor. Expired, revoked and
// unknown tokens all return the same unauthenticated error.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.Vendor, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.Authenticate")
	defer span.End()

	if token == "" {
		return nil, &domain.ErrUnauthorized{}
	}

	session, err := s.sessions.GetSessionByTokenHash(ctx, hashToken(token))
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if !session.Valid(time.Now()) {
		return nil, &domain.ErrUnauthorized{}
	}

	vendor, err := s.vendors.GetVendorByID(ctx, session.VendorID)
	if err != nil {
		return nil, fmt.Errorf("get vendor: %w", err)
	}
	if vendor == nil {
		return nil, &domain.ErrUnauthorized{}
	}
	return vendor, nil
}

// ============================================================
// API keys
// ============================================================

// ResolveAPIKey resolves a static API key to its vendor. An unknown key is
// not a store error — it maps to the same unauthenticated response as a
// malformed one, so callers cannot probe key formats.
func (s *AuthService) ResolveAPIKey(ctx context.Context, apiKey string) (*domain.Vendor, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.ResolveAPIKey")
	defer span.End()

	if !strings.HasPrefix(apiKey, apiKeyPrefix) {
		return nil, &domain.ErrUnauthorized{}
	}

	vendor, err := s.vendors.GetVendorByAPIKey(ctx, apiKey)
	if err != nil {
		return nil, fmt.Errorf("get vendor by api key: %w", err)
	}
	if vendor == nil {
		return nil, &domain.ErrUnauthorized{}
	}
	return vendor, nil
}

// ============================================================
// Onboarding state tokens
// ============================================================

// onboardingClaims is the signed state carried through the provider's
// hosted onboarding return URL.
type onboardingClaims struct {
	VendorID string `json:"vid"`
	jwt.RegisteredClaims
}

// SignOnboardingState mints a short-lived token identifying the vendor on
// the way into the hosted onboarding flow.
func (s *AuthService) SignOnboardingState(vendorID string) (string, error) {
	now := time.Now()
	claims := onboardingClaims{
		VendorID: vendorID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.stateTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.stateKey)
}

// VerifyOnboardingState validates a state token and returns the vendor id.
func (s *AuthService) VerifyOnboardingState(token string) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &onboardingClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.stateKey, nil
	})
	if err != nil {
		return "", &domain.ErrUnauthorized{Message: "invalid onboarding state"}
	}

	claims, ok := parsed.Claims.(*onboardingClaims)
	if !ok || !parsed.Valid || claims.VendorID == "" {
		return "", &domain.ErrUnauthorized{Message: "invalid onboarding state"}
	}
	return claims.VendorID, nil
}

// ============================================================
// Internals
// ============================================================

// openSession mints an opaque token and stores only its hash.
func (s *AuthService) openSession(ctx context.Context, vendorID string) (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	token := hex.EncodeToString(raw)

	session := &domain.Session{
		ID:        uuid.New().String(),
		VendorID:  vendorID,
		TokenHash: hashToken(token),
		ExpiresAt: time.Now().Add(s.sessionTTL),
	}
	if err := s.sessions.CreateSession(ctx, session); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return token, nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// newAPIKey mints a prefixed, unique vendor API key.
func newAPIKey() string {
	return apiKeyPrefix + strings.ReplaceAll(uuid.New().String(), "-", "")
}
