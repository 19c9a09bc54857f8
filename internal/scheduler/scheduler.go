package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/radar-vs-measurement/internal/weather"
)

// DefaultRunTimeout bounds a single scheduled comparison run.
const DefaultRunTimeout = 30 * time.Second

// Reporter produces one comparison report per call.
type Reporter interface {
	RunReport(ctx context.Context) (weather.Report, error)
}

// Scheduler periodically runs comparison reports.
type Scheduler struct {
	scheduler  *gocron.Scheduler
	reporter   Reporter
	interval   time.Duration
	runTimeout time.Duration
	logger     *slog.Logger
}

// New creates a new Scheduler. A nil logger falls back to slog.Default.
func New(reporter Reporter, interval time.Duration, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		scheduler:  gocron.NewScheduler(time.UTC),
		reporter:   reporter,
		interval:   interval,
		runTimeout: DefaultRunTimeout,
		logger:     logger.With("component", "scheduler"),
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
// A non-positive interval disables scheduling.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		s.logger.Info("report interval not set; nothing to schedule")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).SingletonMode().Do(s.run)
	if err != nil {
		return err
	}

	s.logger.Info("scheduled comparison reports", "interval", s.interval)
	s.scheduler.StartAsync()
	return nil
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.runTimeout)
	defer cancel()

	start := time.Now()
	report, err := s.reporter.RunReport(ctx)
	if err != nil {
		s.logger.Error("comparison report failed", "id", report.ID, "err", err)
		return
	}
	s.logger.Info("comparison report completed",
		"id", report.ID,
		"points", report.Points,
		"duration", time.Since(start),
	)
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
