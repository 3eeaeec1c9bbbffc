package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"ticker/internal/adapter/clock"
	"ticker/internal/adapter/fetcher"
	"ticker/internal/adapter/parser"
	"ticker/internal/adapter/surface"
	"ticker/internal/config"
	"ticker/internal/content"
	"ticker/internal/domain"
	"ticker/internal/logger"
	"ticker/internal/migrations"
	"ticker/internal/render"
	server "ticker/internal/transport/http"
	"ticker/internal/usecase"
	"ticker/internal/worker"
	"ticker/storage"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgxpool"
)

const settingsQueueSize = 8

// ErrSettingsQueueFull возвращается, если цикл отрисовки не успевает принимать настройки.
var ErrSettingsQueueFull = errors.New("display settings queue is full")

// App представляет основное приложение тикера.
// Координирует работу всех компонентов: цикла отрисовки, воркера сбора лент,
// HTTP API статуса, архива заголовков и системы логирования.
type App struct {
	config      *config.Config
	logger      *slog.Logger
	server      *http.Server
	worker      *worker.Worker
	ring        *storage.HeadlineRing
	archive     storage.Archive
	scheduler   *content.Scheduler
	renderer    *render.Renderer
	framebuffer *surface.Framebuffer
	state       *domain.DisplayState
	status      atomic.Pointer[domain.DisplayStatus]
	settings    chan domain.DisplaySettings
	stopChan    chan os.Signal
	cancel      context.CancelFunc
	wg          sync.WaitGroup
}

// New создает и инициализирует приложение.
// Архив заголовков подключается только если он включён в конфигурации;
// недоступная база данных не мешает запуску тикера.
func New(cfg *config.Config) (*App, error) {
	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to setup logger: %w", err)
	}
	slog.SetDefault(appLogger)
	if err := cfg.ApplyDefaults(); err != nil {
		appLogger.Warn("Configuration incomplete", slog.String("component", "app"), slog.Any("error", err))
	}

	ring := storage.NewHeadlineRing(storage.DefaultRingCapacity)
	a := &App{
		config:   cfg,
		logger:   appLogger,
		ring:     ring,
		settings: make(chan domain.DisplaySettings, settingsQueueSize),
		stopChan: make(chan os.Signal, 1),
	}

	var archiver usecase.HeadlineArchiver
	if cfg.Database.Enabled {
		if archive, err := openArchive(context.Background(), cfg.Database, appLogger); err != nil {
			appLogger.Error("Headline archive disabled",
				slog.String("component", "database"),
				slog.Any("error", err),
			)
		} else {
			a.archive = archive
			archiver = archive
		}
	}

	var maxAge time.Duration
	if cfg.Feeds.RecencyFilter {
		maxAge = cfg.Feeds.MaxAge()
	}
	httpFetcher := fetcher.NewHTTPFetcher(appLogger, cfg.Feeds.UserAgent, cfg.Feeds.MaxPayloadBytes)
	xmlParser := parser.NewXMLParser(appLogger, maxAge)
	ingestor := usecase.NewFeedIngestor(httpFetcher, xmlParser, ring, archiver, appLogger, usecase.IngestorConfig{
		SourceDelay:     cfg.Feeds.Delay(),
		MinPayloadBytes: cfg.Feeds.MinPayloadBytes,
		MaxPayloadBytes: cfg.Feeds.MaxPayloadBytes,
		RestoreLimit:    ring.Capacity(),
	})
	a.worker = worker.New(ingestor, worker.Config{
		Sources:      cfg.Feeds.Sources,
		MaxPerSource: cfg.Feeds.MaxHeadlinesPerSource,
		Timeout:      cfg.Feeds.Timeout(),
		Interval:     cfg.Feeds.Interval(),
	}, nil, appLogger)

	display := cfg.Display
	a.framebuffer = surface.NewFramebuffer(display.Width, display.Height, appLogger)
	a.renderer = render.NewRenderer(a.framebuffer, render.Options{
		Width:         display.Width,
		Height:        display.Height,
		Font:          display.Font,
		Panel:         display.Panel,
		Color:         domain.Color(display.TextColor),
		Brightness:    render.BrightnessLevel(display.Brightness),
		ScrollEnabled: display.ScrollEnabled,
	}, appLogger)
	a.scheduler = content.NewScheduler(display.Slots, display.Rotation(), content.Sources{
		Clock:     clock.New(display.Timezone, appLogger),
		Headlines: ring,
		Quotes:    content.LoadPhrases(display.QuotesPath, content.DefaultQuote, appLogger),
		Facts:     content.LoadPhrases(display.FactsPath, content.DefaultFact, appLogger),
	}, appLogger)
	a.state = domain.NewDisplayState(display.Direction, display.ScrollSpeed(), display.Animation)

	if cfg.Server.Enabled {
		handler := server.NewHandler(appLogger, usecase.NewHeadlinesUseCase(ring), a, a.worker, a.framebuffer)
		a.server = &http.Server{
			Addr:              cfg.Server.Address,
			Handler:           server.NewServer(appLogger, handler),
			ReadHeaderTimeout: 5 * time.Second,
		}
	}
	return a, nil
}

// openArchive подключается к PostgreSQL с повторными попытками и применяет миграции.
func openArchive(ctx context.Context, cfg config.DatabaseConfig, log *slog.Logger) (*storage.PostgresArchive, error) {
	pool, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 500 * time.Millisecond
	policy.MaxElapsedTime = 15 * time.Second
	ping := func() error { return pool.Ping(ctx) }
	notify := func(err error, next time.Duration) {
		log.Warn("Database not ready, retrying",
			slog.String("component", "database"),
			slog.Any("error", err),
			slog.Duration("retry_in", next),
		)
	}
	if err := backoff.RetryNotify(ping, backoff.WithContext(policy, ctx), notify); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	log.Info("Database connection established", slog.String("component", "database"))
	if err := migrations.Apply(ctx, log, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrations failed: %w", err)
	}
	return storage.NewPostgresArchive(pool, log), nil
}

// DisplayStatus возвращает последнее опубликованное циклом отрисовки состояние.
func (a *App) DisplayStatus() domain.DisplayStatus {
	if st := a.status.Load(); st != nil {
		return *st
	}
	return domain.DisplayStatus{}
}

// Headlines возвращает текущее содержимое буфера заголовков.
func (a *App) Headlines() []domain.Headline {
	return a.ring.Snapshot()
}

// UpdateDisplay передаёт новые параметры показа циклу отрисовки,
// который применяет их перед следующим кадром.
func (a *App) UpdateDisplay(settings domain.DisplaySettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	select {
	case a.settings <- settings:
		return nil
	default:
		return ErrSettingsQueueFull
	}
}

// FetchOnce выполняет один цикл сбора в текущей горутине.
func (a *App) FetchOnce(ctx context.Context) usecase.CycleReport {
	report, _ := a.worker.RunOnce(ctx)
	return report
}

// Run запускает тикер: воркер сбора лент, цикл отрисовки и, если включён,
// HTTP API статуса. Блокируется до получения сигнала завершения.
func (a *App) Run() error {
	a.logger.Info("Starting ticker",
		slog.String("component", "app"),
		slog.Int("feed_count", len(a.config.Feeds.Sources)),
		slog.String("fetch_interval", a.worker.Interval().String()),
	)
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	a.worker.Start()
	a.wg.Add(1)
	go a.renderLoop(ctx)

	if a.server != nil {
		listener, err := net.Listen("tcp", a.server.Addr)
		if err != nil {
			a.Shutdown()
			return fmt.Errorf("failed to create listener: %w", err)
		}
		a.logger.Info("HTTP server ready",
			slog.String("component", "server"),
			slog.String("address", listener.Addr().String()),
		)
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			if err := a.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error("HTTP server failed", slog.Any("error", err))
			}
		}()
	}

	signal.Notify(a.stopChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-a.stopChan
	a.logger.Info("Shutdown signal received",
		slog.String("component", "app"),
		slog.String("signal", sig.String()),
	)
	return a.Shutdown()
}

// renderLoop - единственный владелец DisplayState. На каждом кадре
// продвигает расписание и рендерер и публикует снимок состояния для API.
func (a *App) renderLoop(ctx context.Context) {
	defer a.wg.Done()
	ticker := time.NewTicker(a.config.Display.Frame())
	defer ticker.Stop()
	a.logger.Info("Render loop started",
		slog.String("component", "renderer"),
		slog.Duration("frame_interval", a.config.Display.Frame()),
	)
	for {
		select {
		case s := <-a.settings:
			a.applySettings(time.Now(), s)
		case now := <-ticker.C:
			a.frame(now)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) frame(now time.Time) {
	a.scheduler.Advance(now, a.state)
	a.renderer.Tick(now, a.state)
	st := a.state.Status(now)
	if slot, ok := a.scheduler.Current(); ok {
		st.Slot = slot.Name
		if st.Slot == "" {
			st.Slot = slot.Kind.String()
		}
	}
	a.status.Store(&st)
}

func (a *App) applySettings(now time.Time, s domain.DisplaySettings) {
	s.Apply(a.state, now)
	if s.Brightness != nil {
		a.renderer.SetBrightness(render.BrightnessLevel(*s.Brightness))
	}
	a.logger.Info("Display settings updated", slog.String("component", "renderer"))
}

// Shutdown выполняет graceful shutdown приложения.
// Останавливает цикл отрисовки и воркер, завершает HTTP-сервер, закрывает архив
// и ожидает завершения всех горутин.
func (a *App) Shutdown() error {
	a.logger.Info("Starting graceful shutdown", slog.String("component", "app"))
	if a.cancel != nil {
		a.cancel()
	}
	if a.worker != nil {
		a.worker.Stop()
	}
	if a.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("HTTP server shutdown failed", slog.Any("error", err))
		}
	}
	a.wg.Wait()
	a.Close()
	a.logger.Info("Application stopped gracefully", slog.String("component", "app"))
	return nil
}

// Close освобождает ресурсы, не связанные с циклами: соединение с архивом.
func (a *App) Close() {
	if a.archive != nil {
		a.archive.Close()
		a.archive = nil
	}
}
