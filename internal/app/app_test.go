package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"ticker/internal/config"
	"ticker/internal/domain"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, feedURL string) *config.Config {
	t.Helper()
	cfg := config.New()
	cfg.Logger.Level = "error"
	cfg.Server.Enabled = false
	cfg.Feeds.Sources = []domain.FeedSource{{Name: "Test", URL: feedURL, Enabled: true}}
	cfg.Feeds.SourceDelay = "0s"
	cfg.Display.QuotesPath = ""
	cfg.Display.FactsPath = ""
	cfg.Display.Slots = []domain.ContentSlot{
		{Kind: domain.ContentCustomText, Text: "Welcome", Enabled: true},
		{Kind: domain.ContentHeadlines, Enabled: true},
	}
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestApp_FramePublishesStatus(t *testing.T) {
	a, err := New(testConfig(t, "http://127.0.0.1:1/feed"))
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, domain.DisplayStatus{}, a.DisplayStatus())

	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	a.frame(now)
	st := a.DisplayStatus()
	assert.Equal(t, "Welcome", st.Content)
	assert.Equal(t, "custom", st.Slot)
	assert.Equal(t, domain.DirectionLeft, st.Direction)
	assert.Equal(t, now, st.UpdatedAt)

	frame := a.framebuffer.Snapshot()
	require.Len(t, frame.Glyphs, 1)
	assert.Equal(t, "Welcome", frame.Glyphs[0].Text)
	assert.Equal(t, uint8(127), frame.Brightness)

	a.frame(now.Add(5 * time.Second))
	assert.Equal(t, "No RSS headlines available", a.DisplayStatus().Content)
	assert.Equal(t, "headlines", a.DisplayStatus().Slot)
}

func TestApp_UpdateDisplay(t *testing.T) {
	a, err := New(testConfig(t, "http://127.0.0.1:1/feed"))
	require.NoError(t, err)
	defer a.Close()

	dir := domain.DirectionUp
	anim := domain.AnimationBlink
	speed := 500
	brightness := 20
	require.NoError(t, a.UpdateDisplay(domain.DisplaySettings{
		Direction:     &dir,
		Animation:     &anim,
		ScrollSpeedMs: &speed,
		Brightness:    &brightness,
	}))

	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	a.applySettings(now, <-a.settings)

	assert.Equal(t, domain.DirectionUp, a.state.Scroll.Direction)
	assert.Equal(t, domain.MaxScrollSpeed, a.state.Scroll.Speed)
	assert.Equal(t, domain.AnimationBlink, a.state.Animation.Kind)
	assert.Equal(t, uint8(51), a.framebuffer.Snapshot().Brightness)
}

func TestApp_UpdateDisplay_Rejects(t *testing.T) {
	a, err := New(testConfig(t, "http://127.0.0.1:1/feed"))
	require.NoError(t, err)
	defer a.Close()

	tooBright := 101
	assert.Error(t, a.UpdateDisplay(domain.DisplaySettings{Brightness: &tooBright}))
	assert.Error(t, a.UpdateDisplay(domain.DisplaySettings{}))

	dir := domain.DirectionRight
	for range settingsQueueSize {
		require.NoError(t, a.UpdateDisplay(domain.DisplaySettings{Direction: &dir}))
	}
	assert.ErrorIs(t, a.UpdateDisplay(domain.DisplaySettings{Direction: &dir}), ErrSettingsQueueFull)
}

func TestApp_FetchOnceFillsBuffer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<rss><channel><item><title>Hello World</title></item></channel></rss>`))
	}))
	defer srv.Close()
	a, err := New(testConfig(t, srv.URL))
	require.NoError(t, err)
	defer a.Close()

	report := a.FetchOnce(context.Background())

	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, []domain.Headline{{Source: "Test", Text: "Hello World"}}, a.Headlines())

	a.frame(time.Unix(0, 0))
	a.frame(time.Unix(5, 0))
	assert.Equal(t, "Test: Hello World", a.DisplayStatus().Content)
}
