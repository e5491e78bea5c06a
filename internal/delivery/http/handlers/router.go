package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

func NewRouter(h *Handler, metricsHandler http.Handler, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggerMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", HeaderUserID, HeaderUserRole},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(IdentityMiddleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	r.Group(func(r chi.Router) {
		r.Use(RequireIdentity)

		r.Route("/referrals", func(r chi.Router) {
			r.Post("/codes", h.CreateReferralCode)
			r.Get("/codes/{userId}", h.GetReferralCode)
			r.Post("/apply", h.ApplyReferralCode)
			r.Get("/tree", h.GetReferralTree)
			r.Get("/earnings", h.GetReferralEarnings)

			r.Group(func(r chi.Router) {
				r.Use(RequireAdmin)
				r.Put("/status", h.UpdateReferralStatus)
				r.Post("/conversions", h.RecordConversion)
			})
		})

		r.Route("/fraud-detection", func(r chi.Router) {
			r.Post("/check", h.CheckForFraud)

			r.Group(func(r chi.Router) {
				r.Use(RequireAdmin)
				r.Get("/suspects", h.ListSuspects)
				r.Put("/review/{id}", h.ReviewSuspect)
				r.Get("/stats", h.GetActivityStats)
			})
		})

		r.Route("/rewards", func(r chi.Router) {
			r.Get("/", h.ListRewards)

			r.Group(func(r chi.Router) {
				r.Use(RequireAdmin)
				r.Post("/", h.CreateReward)
				r.Put("/{id}/status", h.UpdateRewardStatus)
			})
		})

		r.Route("/affiliate", func(r chi.Router) {
			r.Post("/request-payout", h.RequestPayout)
			r.Get("/balance", h.GetBalance)
			r.Get("/payouts", h.ListPayouts)
			r.Post("/payouts/{id}/cancel", h.CancelPayout)
			r.With(RequireAdmin).Put("/payouts/{id}", h.ProcessPayout)
		})
	})

	return r
}
