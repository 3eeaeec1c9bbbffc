package storage

import (
	"context"
	"ticker/internal/domain"
)

// Archive определяет долговременное хранилище заголовков.
// Из него восстанавливается буфер, если цикл сбора не принёс ни одного заголовка.
type Archive interface {
	SaveHeadlines(ctx context.Context, headlines []domain.Headline) (int, error)
	RecentHeadlines(ctx context.Context, n int) ([]domain.Headline, error)
	Close()
}
