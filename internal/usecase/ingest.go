package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"ticker/internal/domain"
	"time"

	"github.com/samber/lo"
)

const (
	DefaultSourceDelay     = 500 * time.Millisecond
	DefaultMinPayloadBytes = 50
	DefaultMaxPayloadBytes = 50000
	DefaultRestoreLimit    = 20
)

// IngestorConfig задаёт ограничения цикла сбора.
// Нулевые значения заменяются значениями по умолчанию, кроме SourceDelay.
// RestoreLimit - сколько заголовков поднимать из архива после пустого цикла.
type IngestorConfig struct {
	SourceDelay     time.Duration
	MinPayloadBytes int
	MaxPayloadBytes int
	RestoreLimit    int
}

// CycleReport - итог одного цикла сбора.
type CycleReport struct {
	Processed int
	Succeeded int
	Empty     int
	Failed    int
	Headlines []domain.Headline
	Restored  int
	Duration  time.Duration
}

// FeedIngestor реализует цикл сбора заголовков: загрузку, разбор с
// запасной стратегией и запись в общий буфер.
type FeedIngestor struct {
	fetcher  FeedFetcher
	parser   FeedParser
	sink     HeadlineSink
	archive  HeadlineArchiver
	log      *slog.Logger
	cfg      IngestorConfig
	sleepCtx func(ctx context.Context, d time.Duration) bool
}

// NewFeedIngestor создает ингестор. archive может быть nil.
func NewFeedIngestor(
	fetcher FeedFetcher,
	parser FeedParser,
	sink HeadlineSink,
	archive HeadlineArchiver,
	log *slog.Logger,
	cfg IngestorConfig,
) *FeedIngestor {
	if cfg.MinPayloadBytes <= 0 {
		cfg.MinPayloadBytes = DefaultMinPayloadBytes
	}
	if cfg.MaxPayloadBytes <= 0 {
		cfg.MaxPayloadBytes = DefaultMaxPayloadBytes
	}
	if cfg.RestoreLimit <= 0 {
		cfg.RestoreLimit = DefaultRestoreLimit
	}
	return &FeedIngestor{
		fetcher:  fetcher,
		parser:   parser,
		sink:     sink,
		archive:  archive,
		log:      log.With(slog.String("component", "feed-processor")),
		cfg:      cfg,
		sleepCtx: sleepCtx,
	}
}

// FetchAll выполняет один цикл сбора: очищает буфер и последовательно, в порядке
// списка, обрабатывает включённые источники с фиксированной паузой между ними.
// Ошибка одного источника не прерывает цикл. Цикл прекращается только при
// отмене ctx (остановка процесса). Если ни один источник не дал заголовков,
// буфер заполняется последними заголовками из архива.
func (uc *FeedIngestor) FetchAll(ctx context.Context, sources []domain.FeedSource, maxPerSource int, timeout time.Duration) CycleReport {
	start := time.Now()
	enabled := lo.Filter(sources, func(src domain.FeedSource, _ int) bool { return src.Enabled })
	uc.log.Info("Feed processing cycle started",
		slog.Int("feeds_to_process", len(enabled)),
		slog.Int("feeds_disabled", len(sources)-len(enabled)),
	)
	uc.sink.Clear()

	var report CycleReport
	for i, src := range enabled {
		if ctx.Err() != nil {
			uc.log.Warn("Feed processing cycle interrupted", slog.Int("remaining", len(enabled)-i))
			break
		}
		headlines, err := uc.ProcessSource(ctx, src, maxPerSource, timeout)
		report.Processed++
		switch {
		case err == nil:
			report.Succeeded++
			report.Headlines = append(report.Headlines, headlines...)
		case errors.Is(err, domain.ErrExtractionEmpty):
			report.Empty++
			uc.log.Warn("No headlines found", slog.String("feed", src.Name))
		default:
			report.Failed++
			uc.log.Warn("Feed skipped",
				slog.String("feed", src.Name),
				slog.Any("error", err),
			)
		}
		if i < len(enabled)-1 && !uc.sleepCtx(ctx, uc.cfg.SourceDelay) {
			break
		}
	}

	if uc.archive != nil && ctx.Err() == nil {
		if len(report.Headlines) > 0 {
			if saved, err := uc.archive.SaveHeadlines(ctx, report.Headlines); err != nil {
				uc.log.Error("Failed to archive headlines", slog.Any("error", err))
			} else {
				uc.log.Debug("Headlines archived", slog.Int("count", saved))
			}
		} else {
			report.Restored = uc.restore(ctx)
		}
	}

	report.Duration = time.Since(start)
	uc.log.Info("Feed processing cycle completed",
		slog.Int("successful", report.Succeeded),
		slog.Int("empty", report.Empty),
		slog.Int("errors", report.Failed),
		slog.Int("headlines", len(report.Headlines)),
		slog.Int("restored", report.Restored),
		slog.Duration("duration", report.Duration),
	)
	return report
}

// restore возвращает в буфер последние заархивированные заголовки.
func (uc *FeedIngestor) restore(ctx context.Context) int {
	recent, err := uc.archive.RecentHeadlines(ctx, uc.cfg.RestoreLimit)
	if err != nil {
		uc.log.Warn("Failed to restore headlines from archive", slog.Any("error", err))
		return 0
	}
	uc.sink.Append(recent...)
	uc.log.Info("Headline buffer restored from archive", slog.Int("count", len(recent)))
	return len(recent)
}

// ProcessSource загружает и разбирает один источник и добавляет принятые
// заголовки в буфер в порядке документа. Возвращает ошибку, оборачивающую
// domain.ErrTransport, domain.ErrParse или domain.ErrExtractionEmpty.
func (uc *FeedIngestor) ProcessSource(ctx context.Context, src domain.FeedSource, maxPerSource int, timeout time.Duration) ([]domain.Headline, error) {
	start := time.Now()
	log := uc.log.With(
		slog.String("feed", src.Name),
		slog.String("url", src.URL),
	)
	log.Debug("Processing feed started")

	doc, err := uc.fetcher.Fetch(ctx, src.URL, timeout)
	if err != nil {
		return nil, fmt.Errorf("fetch failed for %s: %w", src.Name, err)
	}
	if doc.IsRedirect() {
		log.Info("Following redirect", slog.String("location", doc.Location))
		doc, err = uc.fetcher.Fetch(ctx, doc.Location, timeout)
		if err != nil {
			return nil, fmt.Errorf("fetch after redirect failed for %s: %w", src.Name, err)
		}
	}
	if !doc.IsSuccess() {
		return nil, fmt.Errorf("%w: unexpected status code %d for %s", domain.ErrTransport, doc.StatusCode, src.Name)
	}
	body := doc.Body
	if len(body) < uc.cfg.MinPayloadBytes {
		return nil, fmt.Errorf("%w: response too short (%d bytes) for %s", domain.ErrTransport, len(body), src.Name)
	}
	if len(body) > uc.cfg.MaxPayloadBytes {
		body = body[:uc.cfg.MaxPayloadBytes]
		doc.Truncated = true
	}
	if doc.Truncated {
		log.Warn("Payload too large, truncated", slog.Int("bytes", len(body)))
	}
	log.Debug("Feed fetched", slog.String("stage", "fetch"), slog.Int("bytes", len(body)))

	body = uc.parser.Normalize(body)
	strategy := "structured"
	titles, err := uc.parser.Parse(ctx, body, maxPerSource)
	if err != nil || len(titles) == 0 {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if err != nil {
			log.Warn("Structured parse failed, using fallback",
				slog.String("stage", "parse"),
				slog.Any("error", err),
			)
		} else {
			log.Info("No valid headlines found, using fallback", slog.String("stage", "parse"))
		}
		titles = uc.parser.Scan(body, maxPerSource)
		strategy = "fallback"
	}
	if len(titles) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrExtractionEmpty, src.Name)
	}

	headlines := lo.Map(titles, func(title string, _ int) domain.Headline {
		return domain.Headline{Source: src.Name, Text: title}
	})
	uc.sink.Append(headlines...)
	log.Info("Feed processing completed",
		slog.String("strategy", strategy),
		slog.Int("items_found", len(headlines)),
		slog.Duration("duration", time.Since(start)),
	)
	return headlines, nil
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
