package domain

import (
	"fmt"
	"time"
)

const (
	MinScrollSpeed = 30 * time.Millisecond
	MaxScrollSpeed = 200 * time.Millisecond
)

// ClampSpeed ограничивает задержку прокрутки диапазоном [30, 200] мс.
func ClampSpeed(d time.Duration) time.Duration {
	if d < MinScrollSpeed {
		return MinScrollSpeed
	}
	if d > MaxScrollSpeed {
		return MaxScrollSpeed
	}
	return d
}

type ScrollState struct {
	Position  int
	Direction Direction
	Speed     time.Duration
	LastTick  time.Time
}

type AnimationState struct {
	Kind     Animation
	Step     int
	LastTick time.Time
}

// DisplayState объединяет всё изменяемое состояние показа: активную строку,
// прокрутку и анимацию. Принадлежит циклу отрисовки и передаётся
// планировщику и рендереру явно.
type DisplayState struct {
	Content    string
	Scroll     ScrollState
	Animation  AnimationState
	LastStatic time.Time
}

func NewDisplayState(dir Direction, speed time.Duration, anim Animation) *DisplayState {
	return &DisplayState{
		Scroll:    ScrollState{Direction: dir, Speed: ClampSpeed(speed)},
		Animation: AnimationState{Kind: anim},
	}
}

// SetContent заменяет активную строку и сбрасывает позицию, если строка изменилась.
// Возвращает true при замене.
func (s *DisplayState) SetContent(text string) bool {
	if text == s.Content {
		return false
	}
	s.Content = text
	s.Reset()
	return true
}

// Reset возвращает прокрутку и анимацию в начальное состояние.
func (s *DisplayState) Reset() {
	s.Scroll.Position = 0
	s.Animation.Step = 0
	s.LastStatic = time.Time{}
}

// DisplaySettings - изменение параметров показа во время работы.
// Незаданные поля не меняются. Яркость применяет рендерер.
type DisplaySettings struct {
	Direction     *Direction `json:"direction,omitempty"`
	Animation     *Animation `json:"animation,omitempty"`
	ScrollSpeedMs *int       `json:"scroll_speed_ms,omitempty"`
	Brightness    *int       `json:"brightness,omitempty"`
}

// Validate проверяет диапазоны числовых полей.
func (s DisplaySettings) Validate() error {
	if s.Direction == nil && s.Animation == nil && s.ScrollSpeedMs == nil && s.Brightness == nil {
		return fmt.Errorf("no display settings given")
	}
	if s.ScrollSpeedMs != nil && *s.ScrollSpeedMs <= 0 {
		return fmt.Errorf("scroll_speed_ms must be positive")
	}
	if s.Brightness != nil && (*s.Brightness < 0 || *s.Brightness > 100) {
		return fmt.Errorf("brightness must be within [0, 100]")
	}
	return nil
}

// Apply переносит направление, скорость и анимацию в состояние показа.
func (s DisplaySettings) Apply(st *DisplayState, now time.Time) {
	if s.Direction != nil {
		st.SetDirection(*s.Direction)
	}
	if s.ScrollSpeedMs != nil {
		st.SetSpeed(time.Duration(*s.ScrollSpeedMs) * time.Millisecond)
	}
	if s.Animation != nil {
		st.SetAnimation(*s.Animation, now)
	}
}

func (s *DisplayState) SetDirection(d Direction) {
	s.Scroll.Direction = d
	s.Scroll.Position = 0
}

func (s *DisplayState) SetSpeed(d time.Duration) {
	s.Scroll.Speed = ClampSpeed(d)
}

func (s *DisplayState) SetAnimation(kind Animation, now time.Time) {
	s.Animation = AnimationState{Kind: kind, LastTick: now}
}

// DisplayStatus - снимок состояния для API статуса.
type DisplayStatus struct {
	Content   string    `json:"content"`
	Slot      string    `json:"slot,omitempty"`
	Direction Direction `json:"direction"`
	Position  int       `json:"position"`
	Animation Animation `json:"animation"`
	Step      int       `json:"step"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *DisplayState) Status(now time.Time) DisplayStatus {
	return DisplayStatus{
		Content:   s.Content,
		Direction: s.Scroll.Direction,
		Position:  s.Scroll.Position,
		Animation: s.Animation.Kind,
		Step:      s.Animation.Step,
		UpdatedAt: now,
	}
}
