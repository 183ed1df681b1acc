// Package httpapi exposes the flood-tracking service over REST. It also
// carries the operational endpoints: health, readiness, and Prometheus
// metrics.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/oancholarevelo/floodtrack/internal/adapter/weatherapi"
	"github.com/oancholarevelo/floodtrack/internal/domain"
	"github.com/oancholarevelo/floodtrack/internal/feed"
	"github.com/oancholarevelo/floodtrack/internal/service"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// WeatherProvider fetches the forecast block for a town page.
type WeatherProvider interface {
	Forecast(ctx context.Context, loc domain.GeoPoint, days int) (weatherapi.Report, error)
}

// Feeds bundles the live collection mirrors the read endpoints serve from.
type Feeds struct {
	Reports     *feed.Cache[domain.FloodReport]
	SafeAreas   *feed.Cache[domain.SafeArea]
	AidRequests *feed.Cache[domain.AidPost]
	AidOffers   *feed.Cache[domain.AidPost]
}

// Server is the HTTP front of the service.
type Server struct {
	httpServer *http.Server
	svc        *service.Service
	feeds      Feeds
	weather    WeatherProvider // nil disables the weather endpoint
	auth       *AdminAuth
	logger     *slog.Logger
}

// NewServer wires the REST routes. weather may be nil.
func NewServer(addr string, svc *service.Service, feeds Feeds, weather WeatherProvider, auth *AdminAuth, ready ReadinessChecker, logger *slog.Logger) *Server {
	s := &Server{
		svc:     svc,
		feeds:   feeds,
		weather: weather,
		auth:    auth,
		logger:  logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", handleReady(ready))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/reports", func(r chi.Router) {
			r.Get("/", s.handleListReports)
			r.Post("/", s.handleCreateReport)
			r.Patch("/{id}/level", s.handleUpdateFloodLevel)
			r.Post("/{id}/subsided", s.handleMarkSubsided)
			r.Delete("/{id}", s.handleRequestDeletion(domain.CollectionFloodReports))
		})

		r.Route("/safe-areas", func(r chi.Router) {
			r.Get("/", s.handleListSafeAreas)
			r.Post("/", s.handleCreateSafeArea)
			r.Put("/{id}", s.handleUpdateSafeArea)
			r.Delete("/{id}", s.handleRequestDeletion(domain.CollectionSafeAreas))
		})

		r.Route("/aid/{kind}", func(r chi.Router) {
			r.Use(s.aidCollection)
			r.Get("/", s.handleListAid)
			r.Post("/", s.handleCreateAid)
			r.Post("/{id}/fulfill", s.handleFulfillAid)
			r.Delete("/{id}", s.handleDeleteAid)
		})

		r.Post("/sos", s.handleSOS)

		r.Route("/towns/{town}", func(r chi.Router) {
			r.Get("/", s.handleTown)
			r.Get("/hotlines", s.handleHotlines)
			r.Get("/weather", s.handleWeather)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", s.handleAdminLogin)

			r.Group(func(r chi.Router) {
				r.Use(s.auth.require)
				r.Get("/pending", s.handlePendingReview)
				r.Delete("/{collection}/{id}", s.handlePurge)
			})
		})
	})

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}

func writeError(w http.ResponseWriter, err error) {
	var code int
	switch {
	case errors.Is(err, service.ErrValidation):
		code = http.StatusBadRequest
	case errors.Is(err, service.ErrBlockedLanguage):
		code = http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrInvalidTransition), errors.Is(err, service.ErrNotPendingReview):
		code = http.StatusConflict
	case status.Code(err) == codes.NotFound:
		code = http.StatusNotFound
	default:
		code = http.StatusInternalServerError
	}
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", service.ErrValidation, err)
	}
	return nil
}
