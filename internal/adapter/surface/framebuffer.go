// Package surface содержит поверхности отрисовки для рендерера.
//
// Framebuffer - поверхность без железа: хранит вызовы отрисовки текущего кадра
// в памяти вместо управления светодиодами. Используется, когда драйвер панели
// не подключён, и отдаёт кадр в API статуса.
package surface

import (
	"log/slog"
	"sync"
	"ticker/internal/domain"
	"unicode/utf8"
)

// Glyph - один вызов отрисовки текста.
type Glyph struct {
	Text  string       `json:"text"`
	X     int          `json:"x"`
	Y     int          `json:"y"`
	Color domain.Color `json:"color"`
	Font  domain.Font  `json:"font"`
}

// Frame - снимок кадрового буфера.
type Frame struct {
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	Brightness uint8   `json:"brightness"`
	Glyphs     []Glyph `json:"glyphs"`
	Frames     uint64  `json:"frames"`
}

// Framebuffer безопасен для конкурентного использования: цикл отрисовки
// рисует, пока API статуса читает снимки.
type Framebuffer struct {
	mu         sync.Mutex
	width      int
	height     int
	brightness uint8
	glyphs     []Glyph
	frames     uint64
	logger     *slog.Logger
}

// NewFramebuffer создает поверхность размером width×height.
func NewFramebuffer(width, height int, logger *slog.Logger) *Framebuffer {
	return &Framebuffer{
		width:  width,
		height: height,
		logger: logger.With(slog.String("component", "framebuffer")),
	}
}

// Clear начинает новый кадр.
func (f *Framebuffer) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.glyphs = f.glyphs[:0]
	f.frames++
}

// DrawText запоминает текст в точке (x, y). Текст целиком за пределами панели отбрасывается.
func (f *Framebuffer) DrawText(text string, x, y int, color domain.Color, font domain.Font) {
	m := font.Metrics()
	w := measure(text, m)
	if x >= f.width || y >= f.height || x+w <= 0 || y+m.Height <= 0 {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.glyphs = append(f.glyphs, Glyph{Text: text, X: x, Y: y, Color: color, Font: font})
}

// MeasureWidth возвращает ширину текста в пикселях для моноширинного шрифта
// без интервала после последнего символа.
func (f *Framebuffer) MeasureWidth(text string, font domain.Font) int {
	return measure(text, font.Metrics())
}

// SetBrightness запоминает 8-битный уровень яркости панели.
func (f *Framebuffer) SetBrightness(level uint8) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.brightness != level {
		f.logger.Debug("Brightness changed", slog.Int("level", int(level)))
	}
	f.brightness = level
}

// Snapshot возвращает копию текущего кадра.
func (f *Framebuffer) Snapshot() Frame {
	f.mu.Lock()
	defer f.mu.Unlock()
	glyphs := make([]Glyph, len(f.glyphs))
	copy(glyphs, f.glyphs)
	return Frame{
		Width:      f.width,
		Height:     f.height,
		Brightness: f.brightness,
		Glyphs:     glyphs,
		Frames:     f.frames,
	}
}

func measure(text string, m domain.FontMetrics) int {
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return 0
	}
	return n*m.Advance() - m.Spacing
}
