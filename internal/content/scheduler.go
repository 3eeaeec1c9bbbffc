package content

import (
	"log/slog"
	"ticker/internal/domain"
	"time"
)

const (
	DefaultInterval        = 5 * time.Second
	NoHeadlinesPlaceholder = "No RSS headlines available"
)

// Clock форматирует текущее время и дату для слотов Time и Date.
type Clock interface {
	FormatTime(now time.Time) string
	FormatDate(now time.Time) string
}

// HeadlineSource отдаёт заголовки по кругу.
type HeadlineSource interface {
	Next() (domain.Headline, bool)
}

// PhraseSource выбирает случайную фразу для слотов Quote и Fact.
type PhraseSource interface {
	Pick() string
}

// Sources - генераторы текста для слотов.
type Sources struct {
	Clock     Clock
	Headlines HeadlineSource
	Quotes    PhraseSource
	Facts     PhraseSource
}

// Scheduler переключает активную строку по кругу между включёнными слотами.
// Не потокобезопасен: вызывается только из цикла отрисовки.
type Scheduler struct {
	slots      []domain.ContentSlot
	interval   time.Duration
	src        Sources
	log        *slog.Logger
	index      int
	lastUpdate time.Time
}

func NewScheduler(slots []domain.ContentSlot, interval time.Duration, src Sources, log *slog.Logger) *Scheduler {
	if len(slots) == 0 {
		slots = domain.DefaultSlots()
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{
		slots:    slots,
		interval: interval,
		src:      src,
		log:      log.With(slog.String("component", "scheduler")),
		index:    -1,
	}
}

// Advance переходит к следующему включённому слоту, если с прошлого
// срабатывания прошло не меньше интервала. Просмотр ограничен одним полным
// кругом; если включённых слотов нет, state не меняется.
// Возвращает true, если активная строка была заменена.
func (s *Scheduler) Advance(now time.Time, state *domain.DisplayState) bool {
	if !s.lastUpdate.IsZero() && now.Sub(s.lastUpdate) < s.interval {
		return false
	}
	s.lastUpdate = now

	n := len(s.slots)
	for i := 1; i <= n; i++ {
		idx := (s.index + i) % n
		slot := s.slots[idx]
		if !slot.Enabled {
			continue
		}
		s.index = idx
		text := s.generate(slot, now)
		changed := state.SetContent(text)
		s.log.Debug("Content slot selected",
			slog.String("slot", slot.Kind.String()),
			slog.String("content", text),
			slog.Bool("changed", changed),
		)
		return changed
	}
	s.log.Debug("No enabled content slots, keeping current content")
	return false
}

// Current возвращает последний выбранный слот.
func (s *Scheduler) Current() (domain.ContentSlot, bool) {
	if s.index < 0 {
		return domain.ContentSlot{}, false
	}
	return s.slots[s.index], true
}

func (s *Scheduler) generate(slot domain.ContentSlot, now time.Time) string {
	switch slot.Kind {
	case domain.ContentTime:
		return s.src.Clock.FormatTime(now)
	case domain.ContentDate:
		return s.src.Clock.FormatDate(now)
	case domain.ContentHeadlines:
		if h, ok := s.src.Headlines.Next(); ok {
			return h.String()
		}
		return NoHeadlinesPlaceholder
	case domain.ContentQuote:
		return s.src.Quotes.Pick()
	case domain.ContentFunFact:
		return s.src.Facts.Pick()
	case domain.ContentCustomText:
		return slot.Text
	default:
		return slot.Text
	}
}
