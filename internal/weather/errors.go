package weather

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrPayloadShape is returned when an upstream payload does not have the
	// expected structure.
	ErrPayloadShape = errors.New("unexpected payload shape")

	// ErrInvalidResample is returned for resampling targets outside [2, len(data)].
	ErrInvalidResample = errors.New("invalid resample target")

	// ErrEmptySeries is returned when a series without samples is aligned.
	ErrEmptySeries = errors.New("series has no samples")

	// ErrNoReportStore is returned by report queries on a Service without a store.
	ErrNoReportStore = errors.New("report store not configured")
)

// FetchError reports a failed upstream request: transport failure, bad status
// or a body that is not JSON.
type FetchError struct {
	Index int    // position of the request in the batch
	Name  string // logical name of the request, never the URL
	Err   error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s (request %d): %v", e.Name, e.Index, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// RangeMismatchError reports that the two series do not start and end at the
// same instant.
type RangeMismatchError struct {
	MeasurementFirst time.Time
	MeasurementLast  time.Time
	RadarFirst       time.Time
	RadarLast        time.Time
}

func (e *RangeMismatchError) Error() string {
	return fmt.Sprintf(
		"time range mismatch: measurement [%s, %s], radar [%s, %s]",
		e.MeasurementFirst.Format(time.RFC3339), e.MeasurementLast.Format(time.RFC3339),
		e.RadarFirst.Format(time.RFC3339), e.RadarLast.Format(time.RFC3339),
	)
}
