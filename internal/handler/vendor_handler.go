package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/holzmann/marketpay-go/internal/domain"
	"github.com/holzmann/marketpay-go/internal/port"
	"github.com/holzmann/marketpay-go/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Vendor profile and onboarding
// ============================================================

func vendorMeHandler(logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "GET /v1/vendor/me")
		defer span.End()

		vendor := VendorFromContext(r.Context())
		writeJSON(w, http.StatusOK, domain.NewVendorResponse(vendor))
	}
}

func updateProfileHandler(vendorSvc *service.VendorService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/vendor/profile")
		defer span.End()

		vendor := VendorFromContext(ctx)

		var req domain.ProfileUpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		updated, err := vendorSvc.UpdateProfile(ctx, vendor, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, domain.NewVendorResponse(updated))
	}
}

func dashboardHandler(paySvc *service.PaymentService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/vendor/dashboard")
		defer span.End()

		vendor := VendorFromContext(ctx)

		resp, err := paySvc.Dashboard(ctx, vendor)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

// onboardingLinkHandler mints a fresh hosted-onboarding URL. The return URL
// carries a signed state token so the finalize endpoint can identify the
// vendor without a session.
func onboardingLinkHandler(authSvc *service.AuthService, paySvc *service.PaymentService, appBaseURL string, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/vendor/onboarding/link")
		defer span.End()

		vendor := VendorFromContext(ctx)

		state, err := authSvc.SignOnboardingState(vendor.ID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		refreshURL := appBaseURL + "/signup?step=payments"
		returnURL := fmt.Sprintf("%s/v1/onboarding/return?state=%s", appBaseURL, url.QueryEscape(state))

		link, err := paySvc.OnboardingLink(ctx, vendor, refreshURL, returnURL)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, domain.OnboardingLinkResponse{URL: link.URL})
	}
}

// onboardingReturnHandler finalizes onboarding when the provider redirects
// the vendor back. It is authenticated by the state token alone, not by a
// session cookie.
func onboardingReturnHandler(authSvc *service.AuthService, paySvc *service.PaymentService, vendorStore port.VendorStore, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/onboarding/return")
		defer span.End()

		vendorID, err := authSvc.VerifyOnboardingState(r.URL.Query().Get("state"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		vendor, err := vendorStore.GetVendorByID(ctx, vendorID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if vendor == nil {
			handleServiceError(w, &domain.ErrNotFound{Resource: "vendor", ID: vendorID}, logger)
			return
		}

		resp, err := paySvc.FinalizeOnboarding(ctx, vendor)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

