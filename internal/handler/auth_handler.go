package handler

import (
	"encoding/json"
	"net/http"

	"github.com/holzmann/marketpay-go/internal/domain"
	"github.com/holzmann/marketpay-go/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Authentication
// ============================================================

func signupHandler(authSvc *service.AuthService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/auth/signup")
		defer span.End()

		var req domain.SignupRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		vendor, token, err := authSvc.Signup(ctx, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		setSessionCookie(w, token, authSvc.SessionTTL())
		writeJSON(w, http.StatusCreated, domain.SessionResponse{
			VendorID:       vendor.ID,
			Email:          vendor.Email,
			OnboardingStep: vendor.Step(),
			ExpiresIn:      int(authSvc.SessionTTL().Seconds()),
		})
	}
}

func loginHandler(authSvc *service.AuthService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/auth/login")
		defer span.End()

		var req domain.LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		vendor, token, err := authSvc.Login(ctx, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		setSessionCookie(w, token, authSvc.SessionTTL())
		writeJSON(w, http.StatusOK, domain.SessionResponse{
			VendorID:       vendor.ID,
			Email:          vendor.Email,
			OnboardingStep: vendor.Step(),
			ExpiresIn:      int(authSvc.SessionTTL().Seconds()),
		})
	}
}

func logoutHandler(authSvc *service.AuthService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/auth/logout")
		defer span.End()

		// Logout is idempotent: a missing cookie still clears client state.
		if cookie, err := r.Cookie(sessionCookieName); err == nil {
			if err := authSvc.Logout(ctx, cookie.Value); err != nil {
				handleServiceError(w, err, logger)
				return
			}
		}

		clearSessionCookie(w)
		w.WriteHeader(http.StatusNoContent)
	}
}
