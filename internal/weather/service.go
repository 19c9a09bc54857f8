package weather

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/radar-vs-measurement/internal/metrics"
)

// ServiceConfig configures a Service.
type ServiceConfig struct {
	Sources Sources
	Align   AlignOptions
	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

// Service runs the fetch and align stages and keeps comparison reports.
type Service struct {
	source  PayloadSource
	store   ReportStore
	sources Sources
	opts    AlignOptions
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewService creates a new Service.
func NewService(source PayloadSource, store ReportStore, cfg ServiceConfig) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		source:  source,
		store:   store,
		sources: cfg.Sources,
		opts:    cfg.Align,
		metrics: cfg.Metrics,
		logger:  logger.With("component", "comparison"),
	}
}

// Compare fetches both payloads concurrently and aligns them. Any failure
// aborts the run; no partial result is returned.
func (s *Service) Compare(ctx context.Context) (AlignedPair, error) {
	payloads, err := s.source.FetchPayloads(ctx)
	if err != nil {
		s.metrics.ObserveComparison(outcomeOf(err), 0)
		s.logger.Warn("fetch failed", "err", err)
		return AlignedPair{}, err
	}

	pair, err := Align(payloads, s.sources, s.opts)
	if err != nil {
		s.metrics.ObserveComparison(outcomeOf(err), 0)
		s.logger.Warn("alignment failed", "err", err)
		return AlignedPair{}, err
	}

	s.metrics.ObserveComparison(metrics.OutcomeOK, pair.Len())
	s.logger.Debug("aligned series", "points", pair.Len())
	return pair, nil
}

// RunReport runs a comparison, summarizes it and stores the report. Failed
// runs are stored too, with their error text.
func (s *Service) RunReport(ctx context.Context) (Report, error) {
	runAt := time.Now().UTC()
	id := uuid.NewString()

	pair, err := s.Compare(ctx)
	if err != nil {
		report := Report{
			ID:     id,
			RunAt:  runAt,
			Status: ReportFailed,
			Error:  err.Error(),
		}
		s.save(report)
		return report, err
	}

	report := Summarize(pair)
	report.ID = id
	report.RunAt = runAt
	s.save(report)
	s.metrics.ObserveReport(runAt, report.MeanDifference, report.RMSE)

	s.logger.Info("report stored",
		"id", report.ID,
		"points", report.Points,
		"mean_difference", report.MeanDifference,
		"rmse", report.RMSE,
	)
	return report, nil
}

func (s *Service) save(report Report) {
	if s.store == nil {
		return
	}
	s.store.Save(report)
}

// LatestReport delegates to the underlying store.
func (s *Service) LatestReport() (Report, error) {
	if s.store == nil {
		return Report{}, ErrNoReportStore
	}
	return s.store.Latest()
}

// ReportRange delegates to the underlying store.
func (s *Service) ReportRange(from, to time.Time) ([]Report, error) {
	if s.store == nil {
		return nil, ErrNoReportStore
	}
	return s.store.Range(from, to)
}

func outcomeOf(err error) string {
	var (
		fetchErr *FetchError
		rangeErr *RangeMismatchError
	)
	switch {
	case errors.As(err, &fetchErr):
		return metrics.OutcomeFetchError
	case errors.As(err, &rangeErr):
		return metrics.OutcomeRangeMismatch
	case errors.Is(err, ErrPayloadShape), errors.Is(err, ErrEmptySeries):
		return metrics.OutcomePayloadError
	default:
		return metrics.OutcomeError
	}
}
