package domain

// Direction - направление прокрутки текста.
type Direction int

const (
	DirectionLeft Direction = iota
	DirectionRight
	DirectionUp
	DirectionDown
)

var directionNames = []string{"left", "right", "up", "down"}

func (d Direction) String() string { return enumName("Direction", directionNames, int(d)) }

func (d Direction) MarshalText() ([]byte, error) {
	return marshalEnum("direction", directionNames, int(d))
}

func (d *Direction) UnmarshalText(text []byte) error {
	v, err := parseEnum("direction", directionNames, text)
	if err != nil {
		return err
	}
	*d = Direction(v)
	return nil
}

// Animation - эффект, накладываемый на текст поверх прокрутки.
type Animation int

const (
	AnimationNone Animation = iota
	AnimationFade
	AnimationBlink
	AnimationRainbow
)

var animationNames = []string{"none", "fade", "blink", "rainbow"}

func (a Animation) String() string { return enumName("Animation", animationNames, int(a)) }

func (a Animation) MarshalText() ([]byte, error) {
	return marshalEnum("animation", animationNames, int(a))
}

func (a *Animation) UnmarshalText(text []byte) error {
	v, err := parseEnum("animation", animationNames, text)
	if err != nil {
		return err
	}
	*a = Animation(v)
	return nil
}

// Font - встроенный растровый шрифт панели.
type Font int

const (
	FontSmall Font = iota
	FontMedium
	FontLarge
)

var fontNames = []string{"small", "medium", "large"}

func (f Font) String() string { return enumName("Font", fontNames, int(f)) }

func (f Font) MarshalText() ([]byte, error) {
	return marshalEnum("font", fontNames, int(f))
}

func (f *Font) UnmarshalText(text []byte) error {
	v, err := parseEnum("font", fontNames, text)
	if err != nil {
		return err
	}
	*f = Font(v)
	return nil
}

// FontMetrics - размеры глифа моноширинного шрифта в пикселях.
type FontMetrics struct {
	Width   int
	Height  int
	Spacing int
}

// Advance - шаг курсора на один символ.
func (m FontMetrics) Advance() int { return m.Width + m.Spacing }

// Metrics возвращает размеры глифа; неизвестный шрифт считается средним.
func (f Font) Metrics() FontMetrics {
	switch f {
	case FontSmall:
		return FontMetrics{Width: 4, Height: 6, Spacing: 1}
	case FontLarge:
		return FontMetrics{Width: 8, Height: 12, Spacing: 2}
	default:
		return FontMetrics{Width: 6, Height: 8, Spacing: 1}
	}
}

// Panel - тип светодиодной панели.
type Panel int

const (
	PanelMono Panel = iota
	PanelRGB
)

var panelNames = []string{"mono", "rgb"}

func (p Panel) String() string { return enumName("Panel", panelNames, int(p)) }

func (p Panel) MarshalText() ([]byte, error) {
	return marshalEnum("panel", panelNames, int(p))
}

func (p *Panel) UnmarshalText(text []byte) error {
	v, err := parseEnum("panel", panelNames, text)
	if err != nil {
		return err
	}
	*p = Panel(v)
	return nil
}

// Color - цвет в родной для панели кодировке RGB565.
type Color uint16

const (
	ColorBlack Color = 0x0000
	ColorRed   Color = 0xF800
	ColorGreen Color = 0x07E0
	ColorWhite Color = 0xFFFF
)

// RGB565 упаковывает 8-битные компоненты в RGB565.
func RGB565(r, g, b uint8) Color {
	return Color(uint16(r&0xF8)<<8 | uint16(g&0xFC)<<3 | uint16(b>>3))
}
