package usecase

import (
	"context"
	"ticker/internal/domain"
	"time"
)

// FeedFetcher определяет транспорт: один GET-запрос с таймаутом.
// Неуспешный HTTP-статус не является ошибкой и возвращается в Document.
type FeedFetcher interface {
	Fetch(ctx context.Context, url string, timeout time.Duration) (*domain.Document, error)
}

// FeedParser определяет две стратегии извлечения заголовков:
// структурный разбор XML и лексический поиск пар <title>.
type FeedParser interface {
	Normalize(body []byte) []byte
	Parse(ctx context.Context, body []byte, limit int) ([]string, error)
	Scan(body []byte, limit int) []string
}

// HeadlineSink - общий буфер заголовков, в который пишет цикл сбора.
type HeadlineSink interface {
	Clear()
	Append(headlines ...domain.Headline)
}

// HeadlineArchiver сохраняет заголовки завершённого цикла в долговременное хранилище
// и отдаёт последние из них, когда цикл не принёс ни одного заголовка.
type HeadlineArchiver interface {
	SaveHeadlines(ctx context.Context, headlines []domain.Headline) (int, error)
	RecentHeadlines(ctx context.Context, n int) ([]domain.Headline, error)
}
