package fetcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"ticker/internal/domain"
	"time"
)

// HTTPFetcher реализует транспорт ингестора поверх net/http.
// Перенаправления не выполняются автоматически: ответ 3xx возвращается
// вызывающему вместе с адресом Location, чтобы тот сам решил, идти ли дальше.
// Тело ответа читается не больше чем на maxBody байт.
type HTTPFetcher struct {
	client    *http.Client
	log       *slog.Logger
	userAgent string
	maxBody   int
}

// NewHTTPFetcher создает транспорт с заданным User-Agent и лимитом размера тела.
func NewHTTPFetcher(log *slog.Logger, userAgent string, maxBody int) *HTTPFetcher {
	return &HTTPFetcher{
		client: &http.Client{
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		log:       log.With(slog.String("component", "fetcher")),
		userAgent: userAgent,
		maxBody:   maxBody,
	}
}

// Fetch выполняет один GET-запрос с таймаутом.
// Ошибки сети и чтения оборачивают domain.ErrTransport; неуспешный статус
// ошибкой не считается и возвращается в Document.StatusCode.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string, timeout time.Duration) (*domain.Document, error) {
	log := f.log.With(slog.String("url", url))
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		log.Error("Failed to create HTTP request", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to create request for url %s: %w", domain.ErrTransport, url, err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		log.Warn("HTTP request failed", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to fetch url %s: %w", domain.ErrTransport, url, err)
	}
	defer resp.Body.Close()

	doc := &domain.Document{URL: url, StatusCode: resp.StatusCode}
	if loc, err := resp.Location(); err == nil {
		doc.Location = loc.String()
	}
	if doc.StatusCode < 200 || doc.StatusCode >= 300 {
		log.Debug("Non-success status", slog.Int("status_code", resp.StatusCode))
		return doc, nil
	}

	reader := io.Reader(resp.Body)
	if f.maxBody > 0 {
		reader = io.LimitReader(resp.Body, int64(f.maxBody)+1)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		log.Warn("Failed to read response body", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to read body from %s: %w", domain.ErrTransport, url, err)
	}
	if f.maxBody > 0 && len(body) > f.maxBody {
		body = body[:f.maxBody]
		doc.Truncated = true
	}
	doc.Body = body
	log.Debug("Fetched URL", slog.Int("bytes", len(body)), slog.Bool("truncated", doc.Truncated))
	return doc, nil
}
