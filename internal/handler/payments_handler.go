package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/holzmann/marketpay-go/internal/domain"
	"github.com/holzmann/marketpay-go/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Offerings, payment links, balance, payouts
// ============================================================

// defaultOfferingWindow bounds GET /v1/vendor/offerings when no ?days=
// parameter is given.
const defaultOfferingWindow = 30 * 24 * time.Hour

func createOfferingHandler(paySvc *service.PaymentService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/vendor/offerings")
		defer span.End()

		vendor := VendorFromContext(ctx)

		var req domain.OfferingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		offering, err := paySvc.CreateOffering(ctx, vendor, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusCreated, offering)
	}
}

func listOfferingsHandler(paySvc *service.PaymentService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/vendor/offerings")
		defer span.End()

		vendor := VendorFromContext(ctx)

		window := defaultOfferingWindow
		if v := r.URL.Query().Get("days"); v != "" {
			if days, err := strconv.Atoi(v); err == nil && days > 0 && days <= 365 {
				window = time.Duration(days) * 24 * time.Hour
			}
		}

		offerings, err := paySvc.ListOfferings(ctx, vendor, window)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, offerings)
	}
}

func testOfferingHandler(paySvc *service.PaymentService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/vendor/test-offering")
		defer span.End()

		vendor := VendorFromContext(ctx)

		offering, err := paySvc.GenerateTestOffering(ctx, vendor)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusCreated, offering)
	}
}

func createPaymentLinkHandler(paySvc *service.PaymentService, route string, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST "+route)
		defer span.End()

		vendor := VendorFromContext(ctx)

		var req domain.PaymentLinkRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		link, err := paySvc.CreatePaymentLink(ctx, vendor, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusCreated, link)
	}
}

func listProductsHandler(paySvc *service.PaymentService, route string, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET "+route)
		defer span.End()

		vendor := VendorFromContext(ctx)

		listing, err := paySvc.ListProducts(ctx, vendor)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, listing)
	}
}

func balanceHandler(paySvc *service.PaymentService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/vendor/balance")
		defer span.End()

		vendor := VendorFromContext(ctx)

		balance, err := paySvc.Balance(ctx, vendor)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, balance)
	}
}

func payoutHandler(paySvc *service.PaymentService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/vendor/payouts")
		defer span.End()

		vendor := VendorFromContext(ctx)

		var req domain.PayoutRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		payout, err := paySvc.Payout(ctx, vendor, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusCreated, payout)
	}
}
