package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	httpadapter "github.com/couchcryptid/iot-temp-pipeline/internal/adapter/http"
	"github.com/couchcryptid/iot-temp-pipeline/internal/adapter/store"
	"github.com/couchcryptid/iot-temp-pipeline/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockViews struct {
	readyErr error
	queryErr error
	daily    []store.DailyStat
	latest   []domain.Reading
}

func (m *mockViews) CheckReadiness(_ context.Context) error { return m.readyErr }

func (m *mockViews) DailyStats(_ context.Context) ([]store.DailyStat, error) {
	return m.daily, m.queryErr
}

func (m *mockViews) LatestPerRoom(_ context.Context) ([]domain.Reading, error) {
	return m.latest, m.queryErr
}

func newTestServer(views *mockViews) *httpadapter.Server {
	return httpadapter.NewServer(":0", views, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func get(t *testing.T, srv http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthzReturns200(t *testing.T) {
	rec := get(t, newTestServer(&mockViews{}), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	rec := get(t, newTestServer(&mockViews{}), "/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	rec := get(t, newTestServer(&mockViews{readyErr: fmt.Errorf("store not ready")}), "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	rec := get(t, newTestServer(&mockViews{}), "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestDailyEndpoint(t *testing.T) {
	views := &mockViews{daily: []store.DailyStat{{
		Day: time.Date(2018, 12, 8, 0, 0, 0, 0, time.UTC), TempAvg: 25, TempMin: 20, TempMax: 30, Readings: 2,
	}}}

	rec := get(t, newTestServer(views), "/api/daily")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t,
		`[{"day":"2018-12-08T00:00:00Z","temp_avg":25,"temp_min":20,"temp_max":30,"readings":2}]`,
		rec.Body.String())
}

func TestLatestEndpoint(t *testing.T) {
	room := "Room Admin"
	loc := domain.LocationOut
	views := &mockViews{latest: []domain.Reading{{
		Room: &room, Timestamp: time.Date(2018, 12, 8, 9, 29, 0, 0, time.UTC), TemperatureC: 29.5, Location: &loc,
	}}}

	rec := get(t, newTestServer(views), "/api/latest")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t,
		`[{"room":"Room Admin","ts":"2018-12-08T09:29:00Z","temperature_c":29.5,"location":"Out"}]`,
		rec.Body.String())
}

func TestEmptyViewsReturnEmptyArrays(t *testing.T) {
	srv := newTestServer(&mockViews{})

	assert.JSONEq(t, `[]`, get(t, srv, "/api/daily").Body.String())
	assert.JSONEq(t, `[]`, get(t, srv, "/api/latest").Body.String())
}

func TestViewQueryError(t *testing.T) {
	srv := newTestServer(&mockViews{queryErr: fmt.Errorf("connection reset")})

	for _, path := range []string{"/api/daily", "/api/latest"} {
		rec := get(t, srv, path)
		assert.Equal(t, http.StatusInternalServerError, rec.Code, path)

		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.NotContains(t, body["error"], "connection reset")
	}
}

func TestUnknownMethodRejected(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestServer(&mockViews{}).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/daily", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
