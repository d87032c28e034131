package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/yusufkecer/body-measurements-backend/internal/config"
	"github.com/yusufkecer/body-measurements-backend/internal/handler"
	"github.com/yusufkecer/body-measurements-backend/internal/middleware"
)

const maxBodyBytes = 1 << 20

type Handlers struct {
	Auth         *handler.AuthHandler
	Measurements *handler.MeasurementHandler
}

func NewRouter(cfg *config.Config, h Handlers) *mux.Router {
	authRL := middleware.NewRateLimiter(cfg.AuthRateLimitRPS, cfg.AuthRateLimitBurst).TrustProxies(cfg.TrustedProxies)
	apiRL := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).TrustProxies(cfg.TrustedProxies)

	r := mux.NewRouter()

	// RequestID → Logging → CORS → Security Headers → body limit
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.LimitBody(maxBodyBytes))

	r.HandleFunc("/api/v1/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods(http.MethodGet, http.MethodOptions)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.APIKeyMiddleware(cfg.APIKey))

	api.Handle("/auth/register", authRL.Middleware(http.HandlerFunc(h.Auth.Register))).Methods(http.MethodPost, http.MethodOptions)
	api.Handle("/auth/login", authRL.Middleware(http.HandlerFunc(h.Auth.Login))).Methods(http.MethodPost, http.MethodOptions)

	protected := api.NewRoute().Subrouter()
	protected.Use(apiRL.Middleware)
	protected.Use(middleware.AuthMiddleware(cfg.JWTSecret))

	protected.HandleFunc("/measurements", h.Measurements.List).Methods(http.MethodGet, http.MethodOptions)
	protected.HandleFunc("/measurements", h.Measurements.Create).Methods(http.MethodPost, http.MethodOptions)
	protected.HandleFunc("/measurements/changes", h.Measurements.Changes).Methods(http.MethodGet, http.MethodOptions)
	protected.HandleFunc("/measurements/{id}", h.Measurements.Get).Methods(http.MethodGet, http.MethodOptions)
	protected.HandleFunc("/measurements/{id}", h.Measurements.Replace).Methods(http.MethodPut, http.MethodOptions)
	protected.HandleFunc("/measurements/{id}", h.Measurements.Delete).Methods(http.MethodDelete, http.MethodOptions)
	protected.HandleFunc("/forecast", h.Measurements.Forecast).Methods(http.MethodGet, http.MethodOptions)

	return r
}
