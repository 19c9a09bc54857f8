package store

import (
	"errors"
	"sync"
	"time"

	"github.com/i474232898/radar-vs-measurement/internal/weather"
)

var (
	// ErrNotFound is returned when no report matches a query.
	ErrNotFound = errors.New("no comparison report found")
)

// MemoryStore is a concurrency-safe in-memory history of comparison reports,
// ordered by RunAt. It never holds series data.
type MemoryStore struct {
	mu sync.RWMutex

	reports []weather.Report

	// retention configuration
	maxHistory int           // max number of reports kept
	maxAge     time.Duration // optional max age for reports

	now func() time.Time
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxHistory is <= 0, it is treated as unlimited.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		maxHistory: maxHistory,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

// Save appends a report and enforces retention.
func (s *MemoryStore) Save(report weather.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Keep the history ordered even if runs finish out of order.
	i := len(s.reports)
	for i > 0 && s.reports[i-1].RunAt.After(report.RunAt) {
		i--
	}
	s.reports = append(s.reports, weather.Report{})
	copy(s.reports[i+1:], s.reports[i:])
	s.reports[i] = report

	// Enforce retention by count.
	if s.maxHistory > 0 && len(s.reports) > s.maxHistory {
		over := len(s.reports) - s.maxHistory
		s.reports = s.reports[over:]
	}

	// Enforce retention by age.
	if s.maxAge > 0 {
		cutoff := s.now().Add(-s.maxAge)
		i := 0
		for ; i < len(s.reports); i++ {
			if !s.reports[i].RunAt.Before(cutoff) {
				break
			}
		}
		s.reports = s.reports[i:]
	}
}

// Latest returns the most recent report.
func (s *MemoryStore) Latest() (weather.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.reports) == 0 {
		return weather.Report{}, ErrNotFound
	}
	return s.reports[len(s.reports)-1], nil
}

// Range returns all reports that ran between from and to (inclusive).
func (s *MemoryStore) Range(from, to time.Time) ([]weather.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []weather.Report
	for _, r := range s.reports {
		if !r.RunAt.Before(from) && !r.RunAt.After(to) {
			result = append(result, r)
		}
	}

	if len(result) == 0 {
		return nil, ErrNotFound
	}
	return result, nil
}
