package httpapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oancholarevelo/floodtrack/internal/adapter/httpapi"
	"github.com/oancholarevelo/floodtrack/internal/adapter/weatherapi"
	"github.com/oancholarevelo/floodtrack/internal/domain"
	"github.com/oancholarevelo/floodtrack/internal/feed"
	"github.com/oancholarevelo/floodtrack/internal/observability"
	"github.com/oancholarevelo/floodtrack/internal/service"
)

// --- in-memory store ---

type memStore struct {
	statuses map[string]domain.Status
	posts    map[string]domain.AidPost
	sosFlags map[string]bool
	nextID   int
	deleted  []string
}

func newMemStore() *memStore {
	return &memStore{
		statuses: make(map[string]domain.Status),
		posts:    make(map[string]domain.AidPost),
		sosFlags: make(map[string]bool),
	}
}

func (m *memStore) newID() string {
	m.nextID++
	return fmt.Sprintf("id%d", m.nextID)
}

func key(col domain.Collection, id string) string { return string(col) + "/" + id }

func (m *memStore) AddFloodReport(_ context.Context, _ domain.FloodLevel, _ domain.GeoPoint, sos bool) (string, error) {
	id := m.newID()
	m.statuses[key(domain.CollectionFloodReports, id)] = domain.StatusActive
	m.sosFlags[key(domain.CollectionFloodReports, id)] = sos
	return id, nil
}

func (m *memStore) UpdateFloodLevel(context.Context, string, domain.FloodLevel) error { return nil }

func (m *memStore) AddSafeArea(_ context.Context, _ string, _ *int, status domain.Status, _ domain.GeoPoint) (string, error) {
	id := m.newID()
	m.statuses[key(domain.CollectionSafeAreas, id)] = status
	return id, nil
}

func (m *memStore) UpdateSafeArea(_ context.Context, id, _ string, _ *int, status domain.Status) error {
	m.statuses[key(domain.CollectionSafeAreas, id)] = status
	return nil
}

func (m *memStore) AddAidPost(_ context.Context, col domain.Collection, post domain.AidPost) (string, error) {
	id := m.newID()
	post.ID = id
	m.posts[key(col, id)] = post
	m.statuses[key(col, id)] = post.Status
	return id, nil
}

func (m *memStore) SetStatus(_ context.Context, col domain.Collection, id string, status domain.Status, _ bool) error {
	m.statuses[key(col, id)] = status
	return nil
}

func (m *memStore) GetStatus(_ context.Context, col domain.Collection, id string) (domain.Status, error) {
	s, ok := m.statuses[key(col, id)]
	if !ok {
		return "", errors.New("not found")
	}
	return s, nil
}

func (m *memStore) ListPendingDeletion(_ context.Context, col domain.Collection) ([]domain.ReviewItem, error) {
	var items []domain.ReviewItem
	for k, s := range m.statuses {
		if s == domain.StatusPendingDeletion && strings.HasPrefix(k, string(col)+"/") {
			items = append(items, domain.ReviewItem{
				Collection: col,
				ID:         strings.TrimPrefix(k, string(col)+"/"),
				Title:      "flagged item",
			})
		}
	}
	return items, nil
}

func (m *memStore) Delete(_ context.Context, col domain.Collection, id string) error {
	m.deleted = append(m.deleted, key(col, id))
	delete(m.statuses, key(col, id))
	return nil
}

// --- feed sources ---

type fakeSource[T any] struct{ ch chan []T }

func newFakeSource[T any]() *fakeSource[T] { return &fakeSource[T]{ch: make(chan []T, 4)} }

func (f *fakeSource[T]) Updates() <-chan []T { return f.ch }
func (f *fakeSource[T]) Close()              { close(f.ch) }

type readyOK struct{}

func (readyOK) CheckReadiness(context.Context) error { return nil }

type fixture struct {
	server  *httpapi.Server
	store   *memStore
	reports *fakeSource[domain.FloodReport]
	aidReqs *fakeSource[domain.AidPost]
}

func newFixture(t *testing.T, weather httpapi.WeatherProvider) *fixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := observability.NewMetricsForTesting()
	store := newMemStore()
	svc := service.New(store, nil, nil, logger, metrics)

	reports := newFakeSource[domain.FloodReport]()
	areas := newFakeSource[domain.SafeArea]()
	aidReqs := newFakeSource[domain.AidPost]()
	aidOffers := newFakeSource[domain.AidPost]()

	feeds := httpapi.Feeds{
		Reports:     feed.NewCache[domain.FloodReport](reports, domain.CollectionFloodReports, logger, metrics),
		SafeAreas:   feed.NewCache[domain.SafeArea](areas, domain.CollectionSafeAreas, logger, metrics),
		AidRequests: feed.NewCache[domain.AidPost](aidReqs, domain.CollectionAidRequests, logger, metrics),
		AidOffers:   feed.NewCache[domain.AidPost](aidOffers, domain.CollectionAidOffers, logger, metrics),
	}
	t.Cleanup(func() {
		feeds.Reports.Close()
		feeds.SafeAreas.Close()
		feeds.AidRequests.Close()
		feeds.AidOffers.Close()
	})

	auth := httpapi.NewAdminAuth("hunter2", "test-signing-key", time.Hour)
	srv := httpapi.NewServer(":0", svc, feeds, weather, auth, readyOK{}, logger)

	return &fixture{server: srv, store: store, reports: reports, aidReqs: aidReqs}
}

func (f *fixture) do(method, path, body string, header http.Header) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	return rec
}

// --- tests ---

func TestHealthz(t *testing.T) {
	f := newFixture(t, nil)
	rec := f.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyz(t *testing.T) {
	f := newFixture(t, nil)
	rec := f.do(http.MethodGet, "/readyz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateReport(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(http.MethodPost, "/api/v1/reports",
		`{"level":"Knee-deep","latitude":14.7739,"longitude":121.139}`, nil)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["id"])
	assert.Equal(t, domain.StatusActive, f.store.statuses["flood_reports/"+resp["id"]])
}

func TestCreateReportWithSOSFlag(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(http.MethodPost, "/api/v1/reports",
		`{"level":"Waist-deep","latitude":14.7739,"longitude":121.139,"isSOS":true}`, nil)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, f.store.sosFlags["flood_reports/"+resp["id"]])
}

func TestCreateReportRejectsUnknownLevel(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(http.MethodPost, "/api/v1/reports",
		`{"level":"Neck-deep","latitude":14.7,"longitude":121.1}`, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListReportsRanksByProximity(t *testing.T) {
	f := newFixture(t, nil)

	f.reports.ch <- []domain.FloodReport{
		{ID: "far", Status: domain.StatusActive, Location: domain.GeoPoint{Latitude: 14.6939, Longitude: 121.1169}},
		{ID: "near", Status: domain.StatusActive, Location: domain.GeoPoint{Latitude: 14.7740, Longitude: 121.1391}},
	}

	require.Eventually(t, func() bool {
		rec := f.do(http.MethodGet, "/api/v1/reports?lat=14.7739&lon=121.1390", "", nil)
		if rec.Code != http.StatusOK {
			return false
		}
		var resp struct {
			Items []feed.Entry[domain.FloodReport] `json:"items"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || len(resp.Items) != 2 {
			return false
		}
		return resp.Items[0].Item.ID == "near" && resp.Items[1].Item.ID == "far"
	}, time.Second, 5*time.Millisecond)
}

func TestSoftDeleteFlow(t *testing.T) {
	f := newFixture(t, nil)
	f.store.statuses["flood_reports/r1"] = domain.StatusActive

	rec := f.do(http.MethodDelete, "/api/v1/reports/r1", "", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, domain.StatusPendingDeletion, f.store.statuses["flood_reports/r1"])

	// Deleting again conflicts: the item is already awaiting review.
	rec = f.do(http.MethodDelete, "/api/v1/reports/r1", "", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCreateAidPost(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(http.MethodPost, "/api/v1/aid/requests",
		`{"title":"Need drinking water","location":"Purok 3","details":"family of 5"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(http.MethodPost, "/api/v1/aid/rescues", `{"title":"x"}`, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListAidSearchFilter(t *testing.T) {
	f := newFixture(t, nil)

	f.aidReqs.ch <- []domain.AidPost{
		{ID: "a1", Title: "Need drinking water", Status: domain.StatusActive},
		{ID: "a2", Title: "Boat rescue", Status: domain.StatusActive},
	}

	require.Eventually(t, func() bool {
		rec := f.do(http.MethodGet, "/api/v1/aid/requests?q=water", "", nil)
		var resp struct {
			Items []feed.Entry[domain.AidPost] `json:"items"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			return false
		}
		return len(resp.Items) == 1 && resp.Items[0].Item.ID == "a1"
	}, time.Second, 5*time.Millisecond)
}

func TestSOS(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(http.MethodPost, "/api/v1/sos",
		`{"latitude":14.7739,"longitude":121.139,"details":"trapped on roof"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	post := f.store.posts["aid_requests/"+resp["id"]]
	assert.True(t, post.IsSOS)
	assert.Equal(t, "14.77390, 121.13900", post.Location)
}

func TestHotlines(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(http.MethodGet, "/api/v1/towns/sanmateo/hotlines", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "911")
	assert.Contains(t, rec.Body.String(), "San Mateo MDRRMO")
}

type fakeWeather struct{ report weatherapi.Report }

func (f *fakeWeather) Forecast(context.Context, domain.GeoPoint, int) (weatherapi.Report, error) {
	return f.report, nil
}

func TestWeather(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		f := newFixture(t, nil)
		rec := f.do(http.MethodGet, "/api/v1/towns/montalban/weather", "", nil)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("configured", func(t *testing.T) {
		weather := &fakeWeather{report: weatherapi.Report{
			Current: weatherapi.Current{TempC: 28.5, Condition: "Moderate rain"},
		}}
		f := newFixture(t, weather)

		rec := f.do(http.MethodGet, "/api/v1/towns/montalban/weather", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Moderate rain")
	})
}

func TestAdminFlow(t *testing.T) {
	f := newFixture(t, nil)
	f.store.statuses["flood_reports/r1"] = domain.StatusPendingDeletion
	f.store.statuses["flood_reports/r2"] = domain.StatusActive

	// Wrong password.
	rec := f.do(http.MethodPost, "/api/v1/admin/login", `{"password":"guess"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Privileged routes reject missing tokens.
	rec = f.do(http.MethodGet, "/api/v1/admin/pending", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Log in and list the review queue.
	rec = f.do(http.MethodPost, "/api/v1/admin/login", `{"password":"hunter2"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var login map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	require.NotEmpty(t, login["token"])

	authed := http.Header{"Authorization": {"Bearer " + login["token"]}}

	rec = f.do(http.MethodGet, "/api/v1/admin/pending", "", authed)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "r1")
	assert.NotContains(t, rec.Body.String(), "r2")

	// Purge the flagged report.
	rec = f.do(http.MethodDelete, "/api/v1/admin/flood_reports/r1", "", authed)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{"flood_reports/r1"}, f.store.deleted)

	// A live report cannot be purged.
	rec = f.do(http.MethodDelete, "/api/v1/admin/flood_reports/r2", "", authed)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Garbage tokens are rejected.
	rec = f.do(http.MethodGet, "/api/v1/admin/pending", "",
		http.Header{"Authorization": {"Bearer not.a.token"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
