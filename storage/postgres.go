package storage

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"ticker/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresArchive struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewPostgresArchive(pool *pgxpool.Pool, log *slog.Logger) *PostgresArchive {
	log.Info("Initializing Postgres headline archive", slog.String("component", "archive"))
	return &PostgresArchive{
		pool: pool,
		log:  log.With(slog.String("component", "archive")),
	}
}

func (db *PostgresArchive) Close() {
	db.log.Info("Closing database connection pool")
	db.pool.Close()
}

// SaveHeadlines сохраняет заголовки одного цикла сбора одной транзакцией.
// Повторно встреченный заголовок только обновляет время последнего появления.
func (db *PostgresArchive) SaveHeadlines(ctx context.Context, headlines []domain.Headline) (n int, err error) {
	if len(headlines) == 0 {
		return 0, nil
	}
	const op = "storage.postgres.SaveHeadlines"
	log := db.log.With(slog.String("op", op))
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		log.Error("Failed to begin transaction", slog.Any("error", err))
		return 0, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(context.Background()); rollbackErr != nil {
				log.Error("Failed to rollback transaction", slog.Any("error", rollbackErr))
			}
		}
	}()
	batch := &pgx.Batch{}
	query := `
	INSERT INTO headlines (source, title, seen_at)
	VALUES ($1, $2, now())
	ON CONFLICT (source, title) DO UPDATE SET seen_at = EXCLUDED.seen_at;
	`
	for _, h := range headlines {
		batch.Queue(query, h.Source, h.Text)
	}
	if err = tx.SendBatch(ctx, batch).Close(); err != nil {
		log.Error("Failed to execute batch", slog.Any("error", err))
		return 0, fmt.Errorf("%s: failed to execute batch: %w", op, err)
	}
	if err = tx.Commit(ctx); err != nil {
		log.Error("Failed to commit transaction", slog.Any("error", err))
		return 0, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}
	return len(headlines), nil
}

// RecentHeadlines возвращает n последних заголовков в порядке от старых к новым,
// чтобы их можно было сразу добавить в HeadlineRing.
func (db *PostgresArchive) RecentHeadlines(ctx context.Context, n int) ([]domain.Headline, error) {
	if n <= 0 {
		n = DefaultRingCapacity
	}
	const op = "storage.postgres.RecentHeadlines"
	log := db.log.With(slog.String("op", op), slog.Int("limit", n))
	query := `
	SELECT source, title
	FROM headlines
	ORDER BY seen_at DESC, id DESC
	LIMIT $1;
	`
	rows, err := db.pool.Query(ctx, query, n)
	if err != nil {
		log.Error("Database query failed", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to execute query: %w", op, err)
	}
	headlines, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Headline, error) {
		var h domain.Headline
		err := row.Scan(&h.Source, &h.Text)
		return h, err
	})
	if err != nil {
		log.Error("Failed to collect rows", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to scan row: %w", op, err)
	}
	slices.Reverse(headlines)
	log.Debug("Loaded archived headlines", slog.Int("count", len(headlines)))
	return headlines, nil
}
