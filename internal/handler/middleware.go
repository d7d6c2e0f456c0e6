package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/holzmann/marketpay-go/internal/domain"
	"github.com/holzmann/marketpay-go/internal/service"

	"go.uber.org/zap"
)

type contextKey string

const vendorKey contextKey = "vendor"

// sessionCookieName holds the opaque session token in the browser.
const sessionCookieName = "mp_session"

// SessionAuthMiddleware resolves the session cookie to a vendor and injects
// the record into the request context. Missing, expired and revoked
// sessions all fail the same way: browsers are sent back to the login
// page, API callers get a 401.
func SessionAuthMiddleware(authSvc *service.AuthService, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(sessionCookieName)
			if err != nil {
				logger.Debug("auth: missing session cookie",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				rejectUnauthenticated(w, r)
				return
			}

			vendor, err := authSvc.Authenticate(r.Context(), cookie.Value)
			if err != nil {
				var unauthorized *domain.ErrUnauthorized
				if errors.As(err, &unauthorized) {
					rejectUnauthenticated(w, r)
					return
				}
				handleServiceError(w, err, logger)
				return
			}

			ctx := context.WithValue(r.Context(), vendorKey, vendor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// APIKeyAuthMiddleware resolves "Authorization: Api-Key <key>" headers for
// programmatic callers. The scheme name is matched case-insensitively.
func APIKeyAuthMiddleware(authSvc *service.AuthService, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Warn("auth: missing api key",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				writeError(w, http.StatusUnauthorized, "unauthenticated")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Api-Key") {
				logger.Warn("auth: invalid authorization scheme",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				writeError(w, http.StatusUnauthorized, "unauthenticated")
				return
			}

			vendor, err := authSvc.ResolveAPIKey(r.Context(), parts[1])
			if err != nil {
				handleServiceError(w, err, logger)
				return
			}

			ctx := context.WithValue(r.Context(), vendorKey, vendor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// rejectUnauthenticated sends browsers to the login page and everyone
// else a 401. A request counts as a browser when it prefers HTML.
func rejectUnauthenticated(w http.ResponseWriter, r *http.Request) {
	if strings.Contains(r.Header.Get("Accept"), "text/html") {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	writeError(w, http.StatusUnauthorized, "unauthenticated")
}

// VendorFromContext extracts the authenticated vendor from context.
func VendorFromContext(ctx context.Context) *domain.Vendor {
	v, _ := ctx.Value(vendorKey).(*domain.Vendor)
	return v
}

// setSessionCookie writes the session token with the configured lifetime.
func setSessionCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearSessionCookie expires the session cookie immediately.
func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
