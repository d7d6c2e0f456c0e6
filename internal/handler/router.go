package handler

import (
	"net/http"

	"github.com/holzmann/marketpay-go/internal/infra/observability"
	"github.com/holzmann/marketpay-go/internal/port"
	"github.com/holzmann/marketpay-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// Deps bundles everything the router wires together.
type Deps struct {
	Auth       *service.AuthService
	Vendors    *service.VendorService
	Payments   *service.PaymentService
	VendorRead port.VendorStore
	Metrics    *observability.Metrics
	AppBaseURL string
	Logger     *zap.Logger
}

// NewRouter creates the HTTP router with all routes and middleware. Two
// authenticated surfaces share the same services: the session-gated
// dashboard API under /v1/vendor and the API-key-gated surface under
// /api/v1.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(d.Logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)

	// --- Operational endpoints ---
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(d.Metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// Payment metrics snapshot (public, read-only).
		r.Get("/metrics/payments", paymentMetricsHandler(d.Metrics))

		// Authentication.
		r.Post("/auth/signup", signupHandler(d.Auth, d.Logger))
		r.Post("/auth/login", loginHandler(d.Auth, d.Logger))
		r.Post("/auth/logout", logoutHandler(d.Auth, d.Logger))

		// Hosted-onboarding return. Authenticated by the signed state
		// token in the query string, not by a session: the redirect from
		// the provider must work in any browser context.
		r.Get("/onboarding/return", onboardingReturnHandler(d.Auth, d.Payments, d.VendorRead, d.Logger))

		// Session-gated dashboard API.
		r.Route("/vendor", func(r chi.Router) {
			r.Use(SessionAuthMiddleware(d.Auth, d.Logger))

			r.Get("/me", vendorMeHandler(d.Logger))
			r.Put("/profile", updateProfileHandler(d.Vendors, d.Logger))
			r.Get("/dashboard", dashboardHandler(d.Payments, d.Logger))

			r.Post("/onboarding/link", onboardingLinkHandler(d.Auth, d.Payments, d.AppBaseURL, d.Logger))

			r.Post("/offerings", createOfferingHandler(d.Payments, d.Logger))
			r.Get("/offerings", listOfferingsHandler(d.Payments, d.Logger))
			r.Post("/test-offering", testOfferingHandler(d.Payments, d.Logger))

			r.Get("/products", listProductsHandler(d.Payments, "/v1/vendor/products", d.Logger))
			r.Post("/payment-links", createPaymentLinkHandler(d.Payments, "/v1/vendor/payment-links", d.Logger))

			r.Get("/balance", balanceHandler(d.Payments, d.Logger))
			r.Post("/payouts", payoutHandler(d.Payments, d.Logger))
		})
	})

	// --- API-key-gated surface for programmatic callers ---
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(APIKeyAuthMiddleware(d.Auth, d.Logger))

		r.Get("/products", listProductsHandler(d.Payments, "/api/v1/products", d.Logger))
		r.Post("/payment-links", createPaymentLinkHandler(d.Payments, "/api/v1/payment-links", d.Logger))
	})

	return r
}

func paymentMetricsHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "GET /v1/metrics/payments")
		defer span.End()

		writeJSON(w, http.StatusOK, metrics.PaymentsSnapshot())
	}
}
