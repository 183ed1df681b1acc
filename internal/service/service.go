// Package service implements the application operations behind the HTTP API:
// posting and editing community content, the SOS flow, and the administrator
// review queue. All status changes go through the lifecycle transition table;
// the store never sees a status the table did not produce.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/oancholarevelo/floodtrack/internal/domain"
	"github.com/oancholarevelo/floodtrack/internal/observability"
)

// Store is the slice of the content store the service needs.
type Store interface {
	AddFloodReport(ctx context.Context, level domain.FloodLevel, loc domain.GeoPoint, sos bool) (string, error)
	UpdateFloodLevel(ctx context.Context, id string, level domain.FloodLevel) error
	AddSafeArea(ctx context.Context, name string, capacity *int, status domain.Status, loc domain.GeoPoint) (string, error)
	UpdateSafeArea(ctx context.Context, id, name string, capacity *int, status domain.Status) error
	AddAidPost(ctx context.Context, col domain.Collection, post domain.AidPost) (string, error)
	SetStatus(ctx context.Context, col domain.Collection, id string, status domain.Status, touch bool) error
	GetStatus(ctx context.Context, col domain.Collection, id string) (domain.Status, error)
	ListPendingDeletion(ctx context.Context, col domain.Collection) ([]domain.ReviewItem, error)
	Delete(ctx context.Context, col domain.Collection, id string) error
}

// AlertPublisher fans SOS posts and new flood reports out to responders.
// Implementations must be safe for concurrent use.
type AlertPublisher interface {
	PublishSOS(ctx context.Context, post domain.AidPost) error
	PublishFloodReport(ctx context.Context, report domain.FloodReport) error
}

var (
	// ErrValidation marks a rejected request body.
	ErrValidation = errors.New("validation failed")
	// ErrBlockedLanguage marks text rejected by the profanity filter.
	ErrBlockedLanguage = errors.New("text contains blocked language")
	// ErrNotPendingReview is returned when a permanent delete targets a
	// document the sweeper or a user never flagged.
	ErrNotPendingReview = errors.New("content is not pending review")
)

// Service wires the content operations together.
type Service struct {
	store    Store
	geocoder domain.Geocoder // nil disables reverse geocoding
	alerts   AlertPublisher  // nil disables SOS fan-out
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// New creates the service. geocoder and alerts may be nil; the SOS flow then
// falls back to raw coordinates and skips fan-out.
func New(store Store, geocoder domain.Geocoder, alerts AlertPublisher, logger *slog.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		store:    store,
		geocoder: geocoder,
		alerts:   alerts,
		logger:   logger,
		metrics:  metrics,
	}
}

// ReportFlood records a new flood report at the given point. SOS-flagged
// reports pin above the distance sort in the feed. New reports are mirrored
// to the alert topic when a publisher is configured; publish failures never
// fail the report.
func (s *Service) ReportFlood(ctx context.Context, level domain.FloodLevel, loc domain.GeoPoint, sos bool) (string, error) {
	if !domain.ValidFloodLevel(level) {
		return "", fmt.Errorf("%w: unknown flood level %q", ErrValidation, level)
	}

	id, err := s.store.AddFloodReport(ctx, level, loc, sos)
	if err != nil {
		return "", err
	}

	s.metrics.ContentCreated.WithLabelValues(string(domain.CollectionFloodReports)).Inc()
	s.logger.Info("flood report created", "id", id, "level", string(level), "sos", sos)

	if s.alerts != nil {
		report := domain.FloodReport{ID: id, Level: level, Location: loc, Status: domain.StatusActive, IsSOS: sos}
		if err := s.alerts.PublishFloodReport(ctx, report); err != nil {
			s.logger.Error("flood report alert publish failed", "id", id, "error", err)
			s.metrics.AlertErrors.Inc()
		} else {
			s.metrics.AlertsPublished.Inc()
		}
	}

	return id, nil
}

// UpdateFloodLevel changes the water depth on a live report. Editing refreshes
// the report's staleness clock.
func (s *Service) UpdateFloodLevel(ctx context.Context, id string, level domain.FloodLevel) error {
	if !domain.ValidFloodLevel(level) {
		return fmt.Errorf("%w: unknown flood level %q", ErrValidation, level)
	}
	if err := s.requireEditable(ctx, domain.CollectionFloodReports, id); err != nil {
		return err
	}

	if err := s.store.UpdateFloodLevel(ctx, id, level); err != nil {
		return err
	}
	s.metrics.ContentUpdated.WithLabelValues(string(domain.CollectionFloodReports)).Inc()
	return nil
}

// MarkSubsided resolves a flood report.
func (s *Service) MarkSubsided(ctx context.Context, id string) error {
	return s.applyEvent(ctx, domain.CollectionFloodReports, id, domain.EventResolve, true)
}

// AddSafeArea registers an evacuation center. Status defaults to Open.
func (s *Service) AddSafeArea(ctx context.Context, name string, capacity *int, status domain.Status, loc domain.GeoPoint) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: name is required", ErrValidation)
	}
	if domain.Profane(name) {
		return "", ErrBlockedLanguage
	}
	if status == "" {
		status = domain.StatusOpen
	}
	if !domain.ActiveEquivalent(domain.CollectionSafeAreas, status) {
		return "", fmt.Errorf("%w: unknown safe area status %q", ErrValidation, status)
	}

	id, err := s.store.AddSafeArea(ctx, name, capacity, status, loc)
	if err != nil {
		return "", err
	}

	s.metrics.ContentCreated.WithLabelValues(string(domain.CollectionSafeAreas)).Inc()
	s.logger.Info("safe area created", "id", id, "name", name)
	return id, nil
}

// UpdateSafeArea edits an evacuation center's name, capacity, and operational
// status. The status change goes through the transition table, so a center
// already flagged pending_deletion cannot be edited back to life.
func (s *Service) UpdateSafeArea(ctx context.Context, id, name string, capacity *int, status domain.Status) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if domain.Profane(name) {
		return ErrBlockedLanguage
	}

	ev, err := safeAreaEvent(status)
	if err != nil {
		return err
	}

	cur, err := s.store.GetStatus(ctx, domain.CollectionSafeAreas, id)
	if err != nil {
		return err
	}
	next, err := domain.Transition(domain.CollectionSafeAreas, cur, ev)
	if err != nil {
		return err
	}

	if err := s.store.UpdateSafeArea(ctx, id, name, capacity, next); err != nil {
		return err
	}
	s.metrics.ContentUpdated.WithLabelValues(string(domain.CollectionSafeAreas)).Inc()
	return nil
}

func safeAreaEvent(status domain.Status) (domain.Event, error) {
	switch status {
	case domain.StatusOpen:
		return domain.EventSetOpen, nil
	case domain.StatusFull:
		return domain.EventSetFull, nil
	case domain.StatusClosed:
		return domain.EventSetClosed, nil
	}
	return "", fmt.Errorf("%w: unknown safe area status %q", ErrValidation, status)
}

// PostAid publishes an aid request or offer.
func (s *Service) PostAid(ctx context.Context, col domain.Collection, post domain.AidPost) (string, error) {
	if col != domain.CollectionAidRequests && col != domain.CollectionAidOffers {
		return "", fmt.Errorf("%w: %s does not accept aid posts", ErrValidation, col)
	}
	post.Title = strings.TrimSpace(post.Title)
	if post.Title == "" {
		return "", fmt.Errorf("%w: title is required", ErrValidation)
	}
	if col == domain.CollectionAidOffers && !domain.ValidOfferType(post.OfferType) {
		return "", fmt.Errorf("%w: unknown offer type %q", ErrValidation, post.OfferType)
	}
	for _, text := range []string{post.Title, post.Location, post.Details} {
		if domain.Profane(text) {
			return "", ErrBlockedLanguage
		}
	}

	post.Status = domain.StatusActive
	id, err := s.store.AddAidPost(ctx, col, post)
	if err != nil {
		return "", err
	}

	s.metrics.ContentCreated.WithLabelValues(string(col)).Inc()
	s.logger.Info("aid post created", "collection", string(col), "id", id, "sos", post.IsSOS)
	return id, nil
}

// MarkHelped resolves an aid request.
func (s *Service) MarkHelped(ctx context.Context, id string) error {
	return s.applyEvent(ctx, domain.CollectionAidRequests, id, domain.EventFulfill, true)
}

// MarkHelpGiven resolves an aid offer.
func (s *Service) MarkHelpGiven(ctx context.Context, id string) error {
	return s.applyEvent(ctx, domain.CollectionAidOffers, id, domain.EventConsume, true)
}

// RequestDeletion soft-deletes a document: it moves to pending_deletion and
// waits for administrator review. Items already pending are rejected with
// ErrInvalidTransition.
func (s *Service) RequestDeletion(ctx context.Context, col domain.Collection, id string) error {
	return s.applyEvent(ctx, col, id, domain.EventRequestDeletion, false)
}

// SOS files an emergency aid request from raw coordinates. The position is
// reverse geocoded to a readable address when a geocoder is configured;
// geocoding failures fall back to the raw coordinates rather than blocking
// the request. The post is pinned above all others in the aid feed.
func (s *Service) SOS(ctx context.Context, loc domain.GeoPoint, details string) (string, error) {
	location := fmt.Sprintf("%.5f, %.5f", loc.Latitude, loc.Longitude)
	if s.geocoder != nil {
		res, err := s.geocoder.ReverseGeocode(ctx, loc.Latitude, loc.Longitude)
		if err != nil {
			s.logger.Warn("sos reverse geocode failed, using raw coordinates", "error", err)
		} else if res.FormattedAddress != "" {
			location = res.FormattedAddress
		}
	}

	post := domain.AidPost{
		Title:    "SOS - Emergency Assistance Needed",
		Location: location,
		Details:  strings.TrimSpace(details),
		IsSOS:    true,
	}

	id, err := s.PostAid(ctx, domain.CollectionAidRequests, post)
	if err != nil {
		return "", err
	}

	if s.alerts != nil {
		post.ID = id
		if err := s.alerts.PublishSOS(ctx, post); err != nil {
			s.logger.Error("sos alert publish failed", "id", id, "error", err)
			s.metrics.AlertErrors.Inc()
		} else {
			s.metrics.AlertsPublished.Inc()
		}
	}

	return id, nil
}

// PendingReview lists every soft-deleted document across all collections.
func (s *Service) PendingReview(ctx context.Context) ([]domain.ReviewItem, error) {
	var items []domain.ReviewItem
	for _, col := range domain.Collections() {
		colItems, err := s.store.ListPendingDeletion(ctx, col)
		if err != nil {
			return nil, fmt.Errorf("list pending review: %w", err)
		}
		items = append(items, colItems...)
	}
	return items, nil
}

// Purge permanently deletes a document. Only documents already flagged
// pending_deletion can be purged; everything else must go through the
// soft-delete flow first.
func (s *Service) Purge(ctx context.Context, col domain.Collection, id string) error {
	cur, err := s.store.GetStatus(ctx, col, id)
	if err != nil {
		return err
	}
	if cur != domain.StatusPendingDeletion {
		return fmt.Errorf("%w: %s/%s is %q", ErrNotPendingReview, col, id, cur)
	}

	if err := s.store.Delete(ctx, col, id); err != nil {
		return err
	}
	s.logger.Info("content purged", "collection", string(col), "id", id)
	return nil
}

func (s *Service) applyEvent(ctx context.Context, col domain.Collection, id string, ev domain.Event, touch bool) error {
	cur, err := s.store.GetStatus(ctx, col, id)
	if err != nil {
		return err
	}
	next, err := domain.Transition(col, cur, ev)
	if err != nil {
		return err
	}

	if err := s.store.SetStatus(ctx, col, id, next, touch); err != nil {
		return err
	}
	s.metrics.ContentUpdated.WithLabelValues(string(col)).Inc()
	return nil
}

func (s *Service) requireEditable(ctx context.Context, col domain.Collection, id string) error {
	cur, err := s.store.GetStatus(ctx, col, id)
	if err != nil {
		return err
	}
	if !domain.ViewStateFor(col, cur).Editable {
		return fmt.Errorf("%w: %s/%s is %q", domain.ErrInvalidTransition, col, id, cur)
	}
	return nil
}
