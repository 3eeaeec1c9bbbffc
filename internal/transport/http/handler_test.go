package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"ticker/internal/adapter/surface"
	"ticker/internal/domain"
	"ticker/internal/usecase"
	"ticker/internal/worker"
	"ticker/storage"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDisplay struct {
	st      domain.DisplayStatus
	updates []domain.DisplaySettings
	err     error
}

func (s *stubDisplay) DisplayStatus() domain.DisplayStatus { return s.st }

func (s *stubDisplay) UpdateDisplay(settings domain.DisplaySettings) error {
	if s.err != nil {
		return s.err
	}
	s.updates = append(s.updates, settings)
	return nil
}

type stubFetcher struct {
	pending bool
	status  worker.Status
}

func (s *stubFetcher) Trigger() bool {
	if s.pending {
		return false
	}
	s.pending = true
	return true
}

func (s *stubFetcher) Status() worker.Status { return s.status }

func newTestServer(t *testing.T, frames frameGetter) (http.Handler, *stubFetcher) {
	t.Helper()
	return newTestServerWithDisplay(t, frames, &stubDisplay{st: domain.DisplayStatus{
		Content:   "BBC: First headline",
		Direction: domain.DirectionLeft,
		Position:  12,
		Animation: domain.AnimationRainbow,
		UpdatedAt: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
	}})
}

func newTestServerWithDisplay(t *testing.T, frames frameGetter, display *stubDisplay) (http.Handler, *stubFetcher) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	ring := storage.NewHeadlineRing(20)
	ring.Append(
		domain.Headline{Source: "BBC", Text: "First headline"},
		domain.Headline{Source: "CNN", Text: "Second headline"},
	)
	fetcher := &stubFetcher{status: worker.Status{Cycles: 3, Succeeded: 4, Headlines: 2}}
	h := NewHandler(log, usecase.NewHeadlinesUseCase(ring), display, fetcher, frames)
	return NewServer(log, h), fetcher
}

func do(t *testing.T, srv http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	return doBody(t, srv, method, target, "")
}

func doBody(t *testing.T, srv http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(method, target, strings.NewReader(body)))
	return rec
}

func TestHealthCheck(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := do(t, srv, http.MethodGet, "/api/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestGetHeadlines(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := do(t, srv, http.MethodGet, "/api/headlines")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var got []headlineResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, headlineResponse{Source: "BBC", Title: "First headline", Text: "BBC: First headline"}, got[0])
}

func TestGetHeadlines_Limit(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := do(t, srv, http.MethodGet, "/api/headlines?limit=1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Second headline")
	assert.NotContains(t, rec.Body.String(), "First headline")

	for _, bad := range []string{"0", "-1", "abc"} {
		rec = do(t, srv, http.MethodGet, "/api/headlines?limit="+bad)
		assert.Equal(t, http.StatusBadRequest, rec.Code, bad)
	}
}

func TestGetHeadlines_MethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := do(t, srv, http.MethodPost, "/api/headlines")

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestGetStatus(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := do(t, srv, http.MethodGet, "/api/status")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `"direction":"left"`)
	assert.Contains(t, body, `"animation":"rainbow"`)
	assert.Contains(t, body, `"position":12`)
	assert.Contains(t, body, `"cycles":3`)
}

func TestTriggerFetch(t *testing.T) {
	srv, fetcher := newTestServer(t, nil)

	rec := do(t, srv, http.MethodPost, "/api/feeds/fetch")
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.JSONEq(t, `{"status":"queued"}`, rec.Body.String())
	assert.True(t, fetcher.pending)

	rec = do(t, srv, http.MethodPost, "/api/feeds/fetch")
	assert.JSONEq(t, `{"status":"already_pending"}`, rec.Body.String())

	rec = do(t, srv, http.MethodGet, "/api/feeds/fetch")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestGetFrame(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	assert.Equal(t, http.StatusNotFound, do(t, srv, http.MethodGet, "/api/frame").Code)

	fb := surface.NewFramebuffer(64, 32, slog.New(slog.NewTextHandler(io.Discard, nil)))
	fb.Clear()
	fb.DrawText("Hello", 0, 12, domain.ColorRed, domain.FontMedium)
	srv, _ = newTestServer(t, fb)

	rec := do(t, srv, http.MethodGet, "/api/frame")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `"text":"Hello"`))
	assert.Contains(t, rec.Body.String(), `"font":"medium"`)
}

func TestCORSPreflight(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := do(t, srv, http.MethodOptions, "/api/feeds/fetch")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "GET, POST, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
}

func TestUpdateDisplay(t *testing.T) {
	display := &stubDisplay{}
	srv, _ := newTestServerWithDisplay(t, nil, display)

	rec := doBody(t, srv, http.MethodPost, "/api/display", `{"direction":"up","brightness":30}`)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.JSONEq(t, `{"status":"queued"}`, rec.Body.String())
	require.Len(t, display.updates, 1)
	require.NotNil(t, display.updates[0].Direction)
	assert.Equal(t, domain.DirectionUp, *display.updates[0].Direction)
	require.NotNil(t, display.updates[0].Brightness)
	assert.Equal(t, 30, *display.updates[0].Brightness)
	assert.Nil(t, display.updates[0].Animation)
}

func TestUpdateDisplay_BadRequests(t *testing.T) {
	tests := []struct {
		name   string
		method string
		body   string
		want   int
	}{
		{name: "wrong method", method: http.MethodGet, want: http.StatusMethodNotAllowed},
		{name: "not json", method: http.MethodPost, body: "direction=up", want: http.StatusBadRequest},
		{name: "unknown direction", method: http.MethodPost, body: `{"direction":"sideways"}`, want: http.StatusBadRequest},
		{name: "empty", method: http.MethodPost, body: `{}`, want: http.StatusBadRequest},
		{name: "brightness out of range", method: http.MethodPost, body: `{"brightness":150}`, want: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			display := &stubDisplay{}
			srv, _ := newTestServerWithDisplay(t, nil, display)

			rec := doBody(t, srv, tt.method, "/api/display", tt.body)

			assert.Equal(t, tt.want, rec.Code)
			assert.Empty(t, display.updates)
		})
	}
}

func TestUpdateDisplay_Busy(t *testing.T) {
	srv, _ := newTestServerWithDisplay(t, nil, &stubDisplay{err: errors.New("display settings queue is full")})

	rec := doBody(t, srv, http.MethodPost, "/api/display", `{"animation":"blink"}`)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "queue is full")
}

func TestRequestID(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := do(t, srv, http.MethodGet, "/api/health")
	generated := rec.Header().Get(RequestIDHeader)
	_, err := uuid.Parse(generated)
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set(RequestIDHeader, "client-42")
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, "client-42", rec.Header().Get(RequestIDHeader))
}

func TestGetRequestID_Missing(t *testing.T) {
	assert.Empty(t, getRequestID(context.Background()))
}
