package storage

import (
	"sync"
	"ticker/internal/domain"
)

// DefaultRingCapacity - сколько последних заголовков хранит тикер.
const DefaultRingCapacity = 20

// HeadlineRing - ограниченный FIFO-буфер заголовков, общий для цикла сбора
// (запись) и цикла отрисовки (чтение по кругу). Каждая операция выполняется
// под мьютексом целиком.
type HeadlineRing struct {
	mu       sync.Mutex
	items    []domain.Headline
	capacity int
	cursor   int
}

func NewHeadlineRing(capacity int) *HeadlineRing {
	if capacity <= 0 {
		capacity = DefaultRingCapacity
	}
	return &HeadlineRing{
		items:    make([]domain.Headline, 0, capacity),
		capacity: capacity,
	}
}

// Append добавляет заголовки в конец буфера, вытесняя самые старые при переполнении.
func (r *HeadlineRing) Append(headlines ...domain.Headline) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, h := range headlines {
		r.items = append(r.items, h)
		if len(r.items) > r.capacity {
			copy(r.items, r.items[1:])
			r.items = r.items[:r.capacity]
			if r.cursor > 0 {
				r.cursor--
			}
		}
	}
}

// Clear удаляет все заголовки и сбрасывает позицию чтения.
func (r *HeadlineRing) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = r.items[:0]
	r.cursor = 0
}

// Next возвращает следующий заголовок по кругу. ok == false, если буфер пуст.
func (r *HeadlineRing) Next() (h domain.Headline, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.items) == 0 {
		return domain.Headline{}, false
	}
	idx := r.cursor % len(r.items)
	r.cursor = (idx + 1) % len(r.items)
	return r.items[idx], true
}

func (r *HeadlineRing) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

func (r *HeadlineRing) Capacity() int { return r.capacity }

// Snapshot возвращает копию содержимого от старых к новым.
func (r *HeadlineRing) Snapshot() []domain.Headline {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Headline, len(r.items))
	copy(out, r.items)
	return out
}
