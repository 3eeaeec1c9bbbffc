package render

import (
	"io"
	"log/slog"
	"strings"
	"testing"
	"ticker/internal/domain"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type drawCall struct {
	text  string
	x, y  int
	color domain.Color
}

type recordingSurface struct {
	clears     int
	draws      []drawCall
	brightness []uint8
}

func (s *recordingSurface) Clear() {
	s.clears++
	s.draws = nil
}

func (s *recordingSurface) DrawText(text string, x, y int, color domain.Color, _ domain.Font) {
	s.draws = append(s.draws, drawCall{text: text, x: x, y: y, color: color})
}

func (s *recordingSurface) MeasureWidth(text string, font domain.Font) int {
	m := font.Metrics()
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return 0
	}
	return n*m.Advance() - m.Spacing
}

func (s *recordingSurface) SetBrightness(level uint8) {
	s.brightness = append(s.brightness, level)
}

var t0 = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func testOptions() Options {
	return Options{
		Width:         64,
		Height:        32,
		Font:          domain.FontMedium,
		Panel:         domain.PanelRGB,
		Color:         domain.ColorWhite,
		Brightness:    127,
		ScrollEnabled: true,
	}
}

func newTestRenderer(s Surface, opts Options) *Renderer {
	return NewRenderer(s, opts, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestAdvance_LeftIsPeriodic(t *testing.T) {
	const textWidth, width, height = 100, 64, 32
	pos := 0
	for i := 1; i < textWidth+width; i++ {
		pos = Advance(pos, domain.DirectionLeft, textWidth, width, height)
		require.NotZero(t, pos, "step %d", i)
	}
	pos = Advance(pos, domain.DirectionLeft, textWidth, width, height)
	assert.Zero(t, pos)
}

func TestAdvance_Wrap(t *testing.T) {
	tests := []struct {
		name string
		dir  domain.Direction
		pos  int
		want int
	}{
		{name: "left step", dir: domain.DirectionLeft, pos: 5, want: 6},
		{name: "left wrap", dir: domain.DirectionLeft, pos: 163, want: 0},
		{name: "right step", dir: domain.DirectionRight, pos: 5, want: 4},
		{name: "right wrap", dir: domain.DirectionRight, pos: -163, want: 64},
		{name: "up step", dir: domain.DirectionUp, pos: 0, want: 1},
		{name: "up wrap", dir: domain.DirectionUp, pos: 41, want: -10},
		{name: "down step", dir: domain.DirectionDown, pos: 0, want: -1},
		{name: "down wrap", dir: domain.DirectionDown, pos: -41, want: 32},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Advance(tt.pos, tt.dir, 100, 64, 32))
		})
	}
}

func TestOrigin(t *testing.T) {
	x, y := Origin(10, domain.DirectionLeft, true, 100, 8, 64, 32)
	assert.Equal(t, []int{54, 12}, []int{x, y})

	x, y = Origin(10, domain.DirectionUp, true, 20, 8, 64, 32)
	assert.Equal(t, []int{22, 22}, []int{x, y})

	x, y = Origin(-3, domain.DirectionDown, true, 100, 8, 64, 32)
	assert.Equal(t, []int{0, -3}, []int{x, y})

	x, y = Origin(99, domain.DirectionLeft, false, 20, 8, 64, 32)
	assert.Equal(t, []int{22, 12}, []int{x, y})
}

func TestPlan_Blink(t *testing.T) {
	assert.True(t, Plan(domain.AnimationBlink, "text", 0, domain.ColorWhite).Visible)
	assert.False(t, Plan(domain.AnimationBlink, "text", 1, domain.ColorWhite).Visible)
	assert.False(t, Plan(domain.AnimationBlink, "text", 3, domain.ColorWhite).Visible)
	assert.True(t, Plan(domain.AnimationBlink, "text", -2, domain.ColorWhite).Visible)
}

func TestPlan_Fade(t *testing.T) {
	tests := []struct {
		step int
		want uint8
	}{
		{step: 0, want: 127},
		{step: 25, want: 254},
		{step: 50, want: 127},
		{step: 75, want: 0},
		{step: 125, want: 254},
	}
	for _, tt := range tests {
		plan := Plan(domain.AnimationFade, "text", tt.step, domain.ColorWhite)
		assert.True(t, plan.Visible)
		assert.True(t, plan.SetBrightness)
		assert.Equal(t, tt.want, plan.Brightness, "step %d", tt.step)
	}
}

func TestPlan_None(t *testing.T) {
	plan := Plan(domain.AnimationNone, "plain text", 17, domain.ColorGreen)

	assert.Equal(t, Instructions{Visible: true, Runs: []Run{{Text: "plain text", Color: domain.ColorGreen}}}, plan)
}

func TestPlan_Rainbow(t *testing.T) {
	plan := Plan(domain.AnimationRainbow, "abcd", 0, domain.ColorWhite)

	require.Len(t, plan.Runs, 4)
	assert.Equal(t, domain.ColorRed, plan.Runs[0].Color)
	assert.Equal(t, "d", plan.Runs[3].Text)
	assert.Equal(t, 3, plan.Runs[3].Index)
	assert.Equal(t, domain.ColorGreen, Plan(domain.AnimationRainbow, "x", 120, domain.ColorWhite).Runs[0].Color)
}

func TestRainbowHue_Range(t *testing.T) {
	for step := -400; step <= 800; step += 7 {
		for i := range 40 {
			h := RainbowHue(step, i)
			assert.GreaterOrEqual(t, h, 0)
			assert.Less(t, h, 360)
		}
	}
	assert.Equal(t, 90, RainbowHue(0, 3))
	assert.Equal(t, 20, RainbowHue(350, 1))
}

func TestBrightnessLevel(t *testing.T) {
	assert.Equal(t, uint8(0), BrightnessLevel(-5))
	assert.Equal(t, uint8(127), BrightnessLevel(50))
	assert.Equal(t, uint8(255), BrightnessLevel(100))
	assert.Equal(t, uint8(255), BrightnessLevel(150))
}

func TestRenderer_NilSurface(t *testing.T) {
	r := newTestRenderer(nil, testOptions())
	st := domain.NewDisplayState(domain.DirectionLeft, 80*time.Millisecond, domain.AnimationRainbow)
	st.SetContent("Nothing to draw on")

	assert.False(t, r.Tick(t0, st))
	r.SetBrightness(10)
}

func TestRenderer_StaticText(t *testing.T) {
	s := &recordingSurface{}
	r := newTestRenderer(s, testOptions())
	st := domain.NewDisplayState(domain.DirectionLeft, 80*time.Millisecond, domain.AnimationNone)
	st.SetContent("12:00")

	require.True(t, r.Tick(t0, st))
	require.Len(t, s.draws, 1)
	// "12:00" is 5*7-1 = 34 px wide in the medium font
	assert.Equal(t, drawCall{text: "12:00", x: 15, y: 12, color: domain.ColorWhite}, s.draws[0])
	assert.Zero(t, st.Scroll.Position)

	assert.False(t, r.Tick(t0.Add(500*time.Millisecond), st))
	assert.False(t, r.Tick(t0.Add(time.Second), st))
	assert.True(t, r.Tick(t0.Add(time.Second+time.Millisecond), st))
	assert.Equal(t, 2, s.clears)
}

func TestRenderer_ScrollsLeft(t *testing.T) {
	s := &recordingSurface{}
	r := newTestRenderer(s, testOptions())
	st := domain.NewDisplayState(domain.DirectionLeft, 80*time.Millisecond, domain.AnimationNone)
	st.SetContent("BBC: a headline far wider than the panel")

	require.True(t, r.Tick(t0, st))
	assert.Equal(t, 1, st.Scroll.Position)
	assert.Equal(t, 63, s.draws[0].x)

	assert.False(t, r.Tick(t0.Add(80*time.Millisecond), st))
	assert.Equal(t, 1, st.Scroll.Position)

	require.True(t, r.Tick(t0.Add(81*time.Millisecond), st))
	assert.Equal(t, 2, st.Scroll.Position)
	assert.Equal(t, 62, s.draws[0].x)
}

func TestRenderer_ScrollDisabledCentres(t *testing.T) {
	s := &recordingSurface{}
	opts := testOptions()
	opts.ScrollEnabled = false
	r := newTestRenderer(s, opts)
	st := domain.NewDisplayState(domain.DirectionLeft, 80*time.Millisecond, domain.AnimationNone)
	st.SetContent(strings.Repeat("W", 30))

	require.True(t, r.Tick(t0, st))
	assert.Zero(t, st.Scroll.Position)
	assert.Zero(t, s.draws[0].x)
}

func TestRenderer_SpeedIsClamped(t *testing.T) {
	s := &recordingSurface{}
	r := newTestRenderer(s, testOptions())
	st := domain.NewDisplayState(domain.DirectionLeft, 80*time.Millisecond, domain.AnimationNone)
	st.SetContent("A long line of text that has to scroll")
	st.Scroll.Speed = 10 * time.Millisecond

	r.Tick(t0, st)
	assert.False(t, r.Tick(t0.Add(20*time.Millisecond), st))
	assert.True(t, r.Tick(t0.Add(31*time.Millisecond), st))

	st.Scroll.Speed = 500 * time.Millisecond
	assert.False(t, r.Tick(t0.Add(231*time.Millisecond), st))
	assert.True(t, r.Tick(t0.Add(232*time.Millisecond), st))
}

func TestRenderer_BlinkHidden(t *testing.T) {
	s := &recordingSurface{}
	r := newTestRenderer(s, testOptions())
	st := domain.NewDisplayState(domain.DirectionLeft, 80*time.Millisecond, domain.AnimationBlink)
	st.SetContent("Blink")
	st.SetAnimation(domain.AnimationBlink, t0)

	require.True(t, r.Tick(t0.Add(time.Millisecond), st))
	assert.Len(t, s.draws, 1)

	require.True(t, r.Tick(t0.Add(502*time.Millisecond), st))
	assert.Equal(t, 1, st.Animation.Step)
	assert.Empty(t, s.draws)
	assert.Equal(t, 2, s.clears)
}

func TestRenderer_MonoForcesRed(t *testing.T) {
	s := &recordingSurface{}
	opts := testOptions()
	opts.Panel = domain.PanelMono
	r := newTestRenderer(s, opts)
	st := domain.NewDisplayState(domain.DirectionLeft, 80*time.Millisecond, domain.AnimationRainbow)
	st.SetContent("Hue")

	require.True(t, r.Tick(t0, st))
	require.Len(t, s.draws, 3)
	for _, d := range s.draws {
		assert.Equal(t, domain.ColorRed, d.color)
	}
}

func TestRenderer_RainbowPlacesEachRune(t *testing.T) {
	s := &recordingSurface{}
	r := newTestRenderer(s, testOptions())
	st := domain.NewDisplayState(domain.DirectionLeft, 80*time.Millisecond, domain.AnimationRainbow)
	st.SetContent("Hey")

	require.True(t, r.Tick(t0, st))
	require.Len(t, s.draws, 3)
	assert.Equal(t, s.draws[0].x+7, s.draws[1].x)
	assert.Equal(t, s.draws[1].x+7, s.draws[2].x)
	assert.NotEqual(t, s.draws[0].color, s.draws[1].color)
}

func TestRenderer_FadeRestoresBrightness(t *testing.T) {
	s := &recordingSurface{}
	r := newTestRenderer(s, testOptions())
	st := domain.NewDisplayState(domain.DirectionLeft, 80*time.Millisecond, domain.AnimationFade)
	st.SetContent("Fade")

	require.True(t, r.Tick(t0, st))
	assert.Equal(t, []uint8{127, FadeLevel(1)}, s.brightness)

	st.SetAnimation(domain.AnimationNone, t0)
	st.LastStatic = time.Time{}
	require.True(t, r.Tick(t0.Add(time.Millisecond), st))
	assert.Equal(t, uint8(127), s.brightness[len(s.brightness)-1])
}
