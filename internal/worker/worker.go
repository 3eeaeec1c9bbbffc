package worker

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"ticker/internal/domain"
	"ticker/internal/usecase"
	"time"
)

// Ingestor определяет интерфейс одного цикла сбора заголовков.
// Используется для внедрения зависимости в воркер.
type Ingestor interface {
	FetchAll(ctx context.Context, sources []domain.FeedSource, maxPerSource int, timeout time.Duration) usecase.CycleReport
}

// Config - параметры расписания сбора.
type Config struct {
	Sources      []domain.FeedSource
	MaxPerSource int
	Timeout      time.Duration
	Interval     time.Duration
}

// Status - сведения о последнем цикле для API статуса.
type Status struct {
	Cycles    int64     `json:"cycles"`
	Skipped   int64     `json:"skipped"`
	LastRun   time.Time `json:"last_run"`
	Succeeded int       `json:"succeeded"`
	Failed    int       `json:"failed"`
	Empty     int       `json:"empty"`
	Headlines int       `json:"headlines"`
	Restored  int       `json:"restored"`
	Duration  string    `json:"duration"`
}

// Worker реализует фоновый цикл сбора заголовков.
// Циклы выполняются строго последовательно в одной горутине: по таймеру,
// сразу после старта и по запросу Trigger.
type Worker struct {
	ingestor Ingestor
	cfg      Config
	online   func() bool
	log      *slog.Logger
	trigger  chan struct{}
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
	cycles   atomic.Int64
	skipped  atomic.Int64
	mu       sync.Mutex
	status   Status
}

// New создает воркер. online может быть nil, тогда сеть считается доступной.
func New(ingestor Ingestor, cfg Config, online func() bool, log *slog.Logger) *Worker {
	return &Worker{
		ingestor: ingestor,
		cfg:      cfg,
		online:   online,
		log:      log.With(slog.String("component", "worker")),
		trigger:  make(chan struct{}, 1),
	}
}

// Start запускает воркер в отдельной горутине.
func (w *Worker) Start() {
	w.ctx, w.cancel = context.WithCancel(context.Background())
	w.done = make(chan struct{})
	go w.run()
}

// Stop отменяет контекст и ждёт завершения текущего цикла.
func (w *Worker) Stop() {
	if w.cancel == nil {
		return
	}
	w.cancel()
	<-w.done
}

// Trigger запрашивает внеочередной цикл. Повторные запросы до начала
// цикла объединяются; в этом случае возвращается false.
func (w *Worker) Trigger() bool {
	select {
	case w.trigger <- struct{}{}:
		w.log.Info("Feed fetch requested")
		return true
	default:
		return false
	}
}

// RunOnce выполняет один цикл в вызывающей горутине.
func (w *Worker) RunOnce(ctx context.Context) (usecase.CycleReport, bool) {
	return w.runCycle(ctx)
}

func (w *Worker) Status() Status {
	w.mu.Lock()
	defer w.mu.Unlock()
	s := w.status
	s.Cycles = w.cycles.Load()
	s.Skipped = w.skipped.Load()
	return s
}

func (w *Worker) Interval() time.Duration { return w.cfg.Interval }

func (w *Worker) run() {
	defer close(w.done)
	w.log.Info("Feed processing worker started",
		slog.String("interval", w.cfg.Interval.String()),
		slog.Int("feed_count", len(w.cfg.Sources)),
	)
	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()
	w.runCycle(w.ctx)
	for {
		select {
		case <-ticker.C:
			w.runCycle(w.ctx)
		case <-w.trigger:
			w.runCycle(w.ctx)
			ticker.Reset(w.cfg.Interval)
		case <-w.ctx.Done():
			w.log.Info("Worker stopping")
			return
		}
	}
}

// runCycle пропускает цикл без сети, сохраняя буфер заголовков.
func (w *Worker) runCycle(ctx context.Context) (usecase.CycleReport, bool) {
	if w.online != nil && !w.online() {
		w.skipped.Add(1)
		w.log.Warn("Network unavailable, skipping feed cycle")
		return usecase.CycleReport{}, false
	}
	report := w.ingestor.FetchAll(ctx, w.cfg.Sources, w.cfg.MaxPerSource, w.cfg.Timeout)
	w.cycles.Add(1)

	w.mu.Lock()
	w.status = Status{
		LastRun:   time.Now(),
		Succeeded: report.Succeeded,
		Failed:    report.Failed,
		Empty:     report.Empty,
		Headlines: len(report.Headlines),
		Restored:  report.Restored,
		Duration:  report.Duration.Round(time.Millisecond).String(),
	}
	w.mu.Unlock()
	return report, true
}
