package render

import (
	"log/slog"
	"ticker/internal/domain"
	"time"
)

// StaticRefresh - период перерисовки текста, который помещается на панель.
const StaticRefresh = time.Second

// Surface - пиксельная панель. Координаты задают левый верхний угол текста.
type Surface interface {
	Clear()
	DrawText(text string, x, y int, color domain.Color, font domain.Font)
	MeasureWidth(text string, font domain.Font) int
	SetBrightness(level uint8)
}

// Options - постоянные параметры отрисовки.
type Options struct {
	Width         int
	Height        int
	Font          domain.Font
	Panel         domain.Panel
	Color         domain.Color
	Brightness    uint8
	ScrollEnabled bool
}

// Renderer рисует активную строку из domain.DisplayState: прокручивает
// широкий текст, центрирует узкий и накладывает анимацию.
// Не владеет таймером: Tick вызывается циклом отрисовки.
type Renderer struct {
	surface Surface
	opts    Options
	log     *slog.Logger
	dimmed  bool
}

// NewRenderer создает рендерер. Если surface равен nil, Tick ничего не рисует.
func NewRenderer(surface Surface, opts Options, log *slog.Logger) *Renderer {
	r := &Renderer{
		surface: surface,
		opts:    opts,
		log:     log.With(slog.String("component", "renderer")),
	}
	if surface == nil {
		r.log.Warn("No display surface, rendering disabled")
		return r
	}
	surface.SetBrightness(opts.Brightness)
	r.log.Info("Renderer ready",
		slog.Int("width", opts.Width),
		slog.Int("height", opts.Height),
		slog.String("font", opts.Font.String()),
		slog.String("panel", opts.Panel.String()),
	)
	return r
}

// Tick продвигает анимацию и прокрутку по их собственным интервалам и
// перерисовывает кадр, если что-то изменилось. Возвращает true, если кадр
// был нарисован.
func (r *Renderer) Tick(now time.Time, st *domain.DisplayState) bool {
	if r.surface == nil {
		return false
	}
	redraw := r.stepAnimation(now, st)

	textWidth := r.surface.MeasureWidth(st.Content, r.opts.Font)
	scrolling := r.opts.ScrollEnabled && textWidth > r.opts.Width
	if scrolling {
		if now.Sub(st.Scroll.LastTick) > domain.ClampSpeed(st.Scroll.Speed) {
			st.Scroll.Position = Advance(st.Scroll.Position, st.Scroll.Direction, textWidth, r.opts.Width, r.opts.Height)
			st.Scroll.LastTick = now
			redraw = true
		}
	} else if now.Sub(st.LastStatic) > StaticRefresh {
		st.LastStatic = now
		redraw = true
	}
	if !redraw {
		return false
	}
	r.draw(st, textWidth, scrolling)
	return true
}

// SetBrightness меняет базовую яркость панели.
func (r *Renderer) SetBrightness(level uint8) {
	r.opts.Brightness = level
	if r.surface != nil && !r.dimmed {
		r.surface.SetBrightness(level)
	}
}

func (r *Renderer) stepAnimation(now time.Time, st *domain.DisplayState) bool {
	period, interval := Cadence(st.Animation.Kind)
	if period == 0 {
		return false
	}
	if now.Sub(st.Animation.LastTick) <= interval {
		return false
	}
	st.Animation.Step = (st.Animation.Step + 1) % period
	st.Animation.LastTick = now
	return true
}

func (r *Renderer) draw(st *domain.DisplayState, textWidth int, scrolling bool) {
	r.surface.Clear()

	plan := Plan(st.Animation.Kind, st.Content, st.Animation.Step, r.baseColor())
	switch {
	case plan.SetBrightness:
		r.surface.SetBrightness(plan.Brightness)
		r.dimmed = true
	case r.dimmed:
		r.surface.SetBrightness(r.opts.Brightness)
		r.dimmed = false
	}
	if !plan.Visible || st.Content == "" {
		return
	}

	metrics := r.opts.Font.Metrics()
	x, y := Origin(st.Scroll.Position, st.Scroll.Direction, scrolling, textWidth, metrics.Height, r.opts.Width, r.opts.Height)
	for _, run := range plan.Runs {
		color := run.Color
		// Одноцветная панель рисует только красным, в том числе радугу.
		if r.opts.Panel == domain.PanelMono {
			color = domain.ColorRed
		}
		r.surface.DrawText(run.Text, x+run.Index*metrics.Advance(), y, color, r.opts.Font)
	}
}

func (r *Renderer) baseColor() domain.Color {
	if r.opts.Panel == domain.PanelMono {
		return domain.ColorRed
	}
	return r.opts.Color
}
