package render

import (
	"math"
	"ticker/internal/domain"
	"time"

	"github.com/lucasb-eyer/go-colorful"
)

const (
	FadeSteps       = 100
	FadeInterval    = 100 * time.Millisecond
	BlinkStates     = 2
	BlinkInterval   = 500 * time.Millisecond
	RainbowSteps    = 360
	RainbowInterval = 50 * time.Millisecond
	// RainbowHueStep - сдвиг оттенка между соседними символами, в градусах.
	RainbowHueStep = 30
)

// Run - фрагмент текста одного цвета. Index - позиция первого символа
// фрагмента в строке.
type Run struct {
	Text  string
	Index int
	Color domain.Color
}

// Instructions описывают, как нарисовать текст на одном кадре.
type Instructions struct {
	Visible       bool
	SetBrightness bool
	Brightness    uint8
	Runs          []Run
}

// Cadence возвращает число шагов анимации и длительность одного шага.
// Для AnimationNone период равен нулю.
func Cadence(kind domain.Animation) (period int, interval time.Duration) {
	switch kind {
	case domain.AnimationFade:
		return FadeSteps, FadeInterval
	case domain.AnimationBlink:
		return BlinkStates, BlinkInterval
	case domain.AnimationRainbow:
		return RainbowSteps, RainbowInterval
	default:
		return 0, 0
	}
}

// Plan строит инструкции отрисовки для анимации kind на шаге step.
// Шаг берётся по модулю периода анимации.
func Plan(kind domain.Animation, text string, step int, base domain.Color) Instructions {
	period, _ := Cadence(kind)
	if period > 0 {
		step = ((step % period) + period) % period
	}
	plain := []Run{{Text: text, Color: base}}

	switch kind {
	case domain.AnimationFade:
		return Instructions{
			Visible:       true,
			SetBrightness: true,
			Brightness:    FadeLevel(step),
			Runs:          plain,
		}
	case domain.AnimationBlink:
		return Instructions{Visible: step == 0, Runs: plain}
	case domain.AnimationRainbow:
		runes := []rune(text)
		runs := make([]Run, len(runes))
		for i, r := range runes {
			runs[i] = Run{Text: string(r), Index: i, Color: HueColor(RainbowHue(step, i))}
		}
		return Instructions{Visible: true, Runs: runs}
	default:
		return Instructions{Visible: true, Runs: plain}
	}
}

// FadeLevel - яркость на шаге step: синусоида в диапазоне [0, 254].
func FadeLevel(step int) uint8 {
	phase := 2 * math.Pi * float64(step) / FadeSteps
	return uint8(math.Round(127 * (1 + math.Sin(phase))))
}

// RainbowHue - оттенок символа i на шаге step, в диапазоне [0, 360).
func RainbowHue(step, i int) int {
	h := (step + RainbowHueStep*i) % RainbowSteps
	if h < 0 {
		h += RainbowSteps
	}
	return h
}

// HueColor переводит оттенок при полной насыщенности и яркости в RGB565.
func HueColor(hue int) domain.Color {
	r, g, b := colorful.Hsv(float64(hue), 1, 1).Clamped().RGB255()
	return domain.RGB565(r, g, b)
}

// BrightnessLevel переводит яркость в процентах в 8-битный уровень панели.
func BrightnessLevel(percent int) uint8 {
	percent = min(max(percent, 0), 100)
	return uint8(percent * 255 / 100)
}
