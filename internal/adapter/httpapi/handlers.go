package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/oancholarevelo/floodtrack/internal/domain"
	"github.com/oancholarevelo/floodtrack/internal/feed"
	"github.com/oancholarevelo/floodtrack/internal/hotlines"
	"github.com/oancholarevelo/floodtrack/internal/service"
)

type ctxKey int

const aidCollectionKey ctxKey = iota

// viewerLocation resolves the reference point for proximity ranking: explicit
// lat/lon query parameters win, otherwise the town's center (defaulting to
// montalban) anchors the view.
func viewerLocation(r *http.Request) domain.GeoPoint {
	q := r.URL.Query()
	lat, errLat := strconv.ParseFloat(q.Get("lat"), 64)
	lon, errLon := strconv.ParseFloat(q.Get("lon"), 64)
	if errLat == nil && errLon == nil {
		return domain.GeoPoint{Latitude: lat, Longitude: lon}
	}
	return domain.TownCenter(q.Get("town"))
}

// --- flood reports ---

type createReportRequest struct {
	Level     domain.FloodLevel `json:"level"`
	Latitude  float64           `json:"latitude"`
	Longitude float64           `json:"longitude"`
	IsSOS     bool              `json:"isSOS,omitempty"`
}

func (s *Server) handleCreateReport(w http.ResponseWriter, r *http.Request) {
	var req createReportRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	id, err := s.svc.ReportFlood(r.Context(), req.Level, domain.GeoPoint{Latitude: req.Latitude, Longitude: req.Longitude}, req.IsSOS)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	entries := feed.FloodFeed(s.feeds.Reports.Snapshot(), viewerLocation(r))
	writeJSON(w, http.StatusOK, map[string]any{"items": entries})
}

func (s *Server) handleUpdateFloodLevel(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Level domain.FloodLevel `json:"level"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := s.svc.UpdateFloodLevel(r.Context(), chi.URLParam(r, "id"), req.Level); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMarkSubsided(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.MarkSubsided(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRequestDeletion(col domain.Collection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.svc.RequestDeletion(r.Context(), col, chi.URLParam(r, "id")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// --- safe areas ---

type safeAreaRequest struct {
	Name      string        `json:"name"`
	Capacity  *int          `json:"capacity,omitempty"`
	Status    domain.Status `json:"status,omitempty"`
	Latitude  float64       `json:"latitude"`
	Longitude float64       `json:"longitude"`
}

func (s *Server) handleCreateSafeArea(w http.ResponseWriter, r *http.Request) {
	var req safeAreaRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	id, err := s.svc.AddSafeArea(r.Context(), req.Name, req.Capacity, req.Status,
		domain.GeoPoint{Latitude: req.Latitude, Longitude: req.Longitude})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) handleUpdateSafeArea(w http.ResponseWriter, r *http.Request) {
	var req safeAreaRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := s.svc.UpdateSafeArea(r.Context(), chi.URLParam(r, "id"), req.Name, req.Capacity, req.Status); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListSafeAreas(w http.ResponseWriter, r *http.Request) {
	entries := feed.SafeAreaFeed(s.feeds.SafeAreas.Snapshot(), viewerLocation(r))
	writeJSON(w, http.StatusOK, map[string]any{"items": entries})
}

// --- aid posts ---

// aidCollection resolves the {kind} route segment to an aid collection.
func (s *Server) aidCollection(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var col domain.Collection
		switch chi.URLParam(r, "kind") {
		case "requests":
			col = domain.CollectionAidRequests
		case "offers":
			col = domain.CollectionAidOffers
		default:
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown aid kind"})
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), aidCollectionKey, col)))
	})
}

func aidCollectionFrom(r *http.Request) domain.Collection {
	return r.Context().Value(aidCollectionKey).(domain.Collection)
}

func (s *Server) aidCache(col domain.Collection) *feed.Cache[domain.AidPost] {
	if col == domain.CollectionAidOffers {
		return s.feeds.AidOffers
	}
	return s.feeds.AidRequests
}

type aidRequest struct {
	Title     string           `json:"title"`
	Location  string           `json:"location"`
	Details   string           `json:"details"`
	OfferType domain.OfferType `json:"offerType,omitempty"`
}

func (s *Server) handleCreateAid(w http.ResponseWriter, r *http.Request) {
	var req aidRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	col := aidCollectionFrom(r)
	id, err := s.svc.PostAid(r.Context(), col, domain.AidPost{
		Title:     req.Title,
		Location:  req.Location,
		Details:   req.Details,
		OfferType: req.OfferType,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) handleListAid(w http.ResponseWriter, r *http.Request) {
	col := aidCollectionFrom(r)
	entries := feed.AidFeed(col, s.aidCache(col).Snapshot())

	if term := r.URL.Query().Get("q"); term != "" {
		filtered := entries[:0]
		for _, e := range entries {
			if domain.MatchesSearch(e.Item, term) {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}

	writeJSON(w, http.StatusOK, map[string]any{"items": entries})
}

func (s *Server) handleFulfillAid(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var err error
	if aidCollectionFrom(r) == domain.CollectionAidRequests {
		err = s.svc.MarkHelped(r.Context(), id)
	} else {
		err = s.svc.MarkHelpGiven(r.Context(), id)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteAid(w http.ResponseWriter, r *http.Request) {
	s.handleRequestDeletion(aidCollectionFrom(r))(w, r)
}

// --- SOS ---

type sosRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Details   string  `json:"details,omitempty"`
}

func (s *Server) handleSOS(w http.ResponseWriter, r *http.Request) {
	var req sosRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	id, err := s.svc.SOS(r.Context(), domain.GeoPoint{Latitude: req.Latitude, Longitude: req.Longitude}, req.Details)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// --- town pages ---

func (s *Server) handleTown(w http.ResponseWriter, r *http.Request) {
	town := chi.URLParam(r, "town")
	writeJSON(w, http.StatusOK, map[string]any{
		"town":   town,
		"known":  domain.KnownTown(town),
		"center": domain.TownCenter(town),
	})
}

func (s *Server) handleHotlines(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"items": hotlines.ForTown(chi.URLParam(r, "town")),
	})
}

func (s *Server) handleWeather(w http.ResponseWriter, r *http.Request) {
	if s.weather == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "weather is not configured"})
		return
	}

	report, err := s.weather.Forecast(r.Context(), domain.TownCenter(chi.URLParam(r, "town")), 3)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// --- admin review ---

func (s *Server) handlePendingReview(w http.ResponseWriter, r *http.Request) {
	items, err := s.svc.PendingReview(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) handlePurge(w http.ResponseWriter, r *http.Request) {
	col, err := parseCollection(chi.URLParam(r, "collection"))
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.svc.Purge(r.Context(), col, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseCollection(name string) (domain.Collection, error) {
	for _, col := range domain.Collections() {
		if string(col) == name {
			return col, nil
		}
	}
	return "", fmt.Errorf("%w: unknown collection %q", service.ErrValidation, name)
}
