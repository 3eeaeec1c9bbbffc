package content

import (
	"log/slog"
	"math/rand/v2"
	"os"
	"strings"
	"sync"

	"github.com/samber/lo"
)

const (
	DefaultQuote = "Believe you can and you're halfway there."
	DefaultFact  = "The ESP32 has built-in Wi-Fi and Bluetooth!"
)

// PhraseList - неизменяемый набор фраз, из которого Pick выбирает
// равновероятно. Пустой набор всегда отдаёт fallback.
type PhraseList struct {
	mu       sync.Mutex
	phrases  []string
	fallback string
	rnd      *rand.Rand
}

// NewPhraseList создает набор. rnd может быть nil, тогда используется
// генератор со случайным зерном.
func NewPhraseList(phrases []string, fallback string, rnd *rand.Rand) *PhraseList {
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &PhraseList{
		phrases:  ParsePhrases(strings.Join(phrases, "\n")),
		fallback: fallback,
		rnd:      rnd,
	}
}

// LoadPhrases читает фразы из файла, по одной на строку. Файл читается один раз;
// если он недоступен, набор остаётся пустым и Pick отдаёт fallback.
func LoadPhrases(path, fallback string, log *slog.Logger) *PhraseList {
	list := NewPhraseList(nil, fallback, nil)
	if path == "" {
		return list
	}
	data, err := os.ReadFile(path)
	if err != nil {
		log.Warn("Phrase list unavailable, using built-in phrase",
			slog.String("component", "scheduler"),
			slog.String("path", path),
			slog.Any("error", err),
		)
		return list
	}
	list.phrases = ParsePhrases(string(data))
	log.Info("Phrase list loaded",
		slog.String("component", "scheduler"),
		slog.String("path", path),
		slog.Int("count", len(list.phrases)),
	)
	return list
}

// ParsePhrases разбивает текст на строки, отбрасывая пустые и комментарии (#).
func ParsePhrases(text string) []string {
	return lo.FilterMap(strings.Split(text, "\n"), func(line string, _ int) (string, bool) {
		line = strings.TrimSpace(line)
		return line, line != "" && !strings.HasPrefix(line, "#")
	})
}

func (p *PhraseList) Pick() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.phrases) == 0 {
		return p.fallback
	}
	return p.phrases[p.rnd.IntN(len(p.phrases))]
}

func (p *PhraseList) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.phrases)
}
