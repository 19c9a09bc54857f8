package weather

import (
	"fmt"
	"time"
)

// DefaultRadarCorrection is the provisional unit correction applied to radar
// values. The unit of the two upstream series has not been confirmed; the
// factor brings the radar estimate onto the measurement scale.
const DefaultRadarCorrection = 10.0

// TiePolicy decides which series provides the time axis when both series
// have the same number of samples.
type TiePolicy int

const (
	// TieMeasurementAxis keeps the measurement axis on equal length.
	TieMeasurementAxis TiePolicy = iota
	// TieRadarAxis keeps the radar axis on equal length.
	TieRadarAxis
)

func (p TiePolicy) String() string {
	switch p {
	case TieRadarAxis:
		return "radar"
	default:
		return "measurement"
	}
}

// ParseTiePolicy maps "measurement" or "radar" to a TiePolicy.
func ParseTiePolicy(s string) (TiePolicy, error) {
	switch s {
	case "", "measurement":
		return TieMeasurementAxis, nil
	case "radar":
		return TieRadarAxis, nil
	default:
		return TieMeasurementAxis, fmt.Errorf("invalid tie policy %q (allowed: measurement, radar)", s)
	}
}

// AlignOptions tunes Align. The zero value uses DefaultRadarCorrection and
// TieMeasurementAxis.
type AlignOptions struct {
	RadarCorrection float64
	OnTie           TiePolicy
}

func (o AlignOptions) correction() float64 {
	if o.RadarCorrection == 0 {
		return DefaultRadarCorrection
	}
	return o.RadarCorrection
}

// Align extracts both series from their payloads and aligns them.
func Align(payloads Payloads, sources Sources, opts AlignOptions) (AlignedPair, error) {
	measurement, err := Extract(payloads.Measurement, sources.Measurement)
	if err != nil {
		return AlignedPair{}, fmt.Errorf("measurement: %w", err)
	}
	radar, err := Extract(payloads.Radar, sources.Radar)
	if err != nil {
		return AlignedPair{}, fmt.Errorf("radar: %w", err)
	}
	return AlignSeries(measurement, radar, opts)
}

// AlignSeries checks that both series cover the same time span, resamples
// the longer one to the length of the shorter one and applies the radar
// correction. The time axis of the result is the one of the series that was
// not resampled.
func AlignSeries(measurement, radar Series, opts AlignOptions) (AlignedPair, error) {
	if measurement.Len() == 0 {
		return AlignedPair{}, fmt.Errorf("measurement: %w", ErrEmptySeries)
	}
	if radar.Len() == 0 {
		return AlignedPair{}, fmt.Errorf("radar: %w", ErrEmptySeries)
	}

	if !sameInstant(measurement.First(), radar.First()) || !sameInstant(measurement.Last(), radar.Last()) {
		return AlignedPair{}, &RangeMismatchError{
			MeasurementFirst: measurement.First(),
			MeasurementLast:  measurement.Last(),
			RadarFirst:       radar.First(),
			RadarLast:        radar.Last(),
		}
	}

	msr := measurement.Values()
	rdr := radar.Values()

	var (
		times []time.Time
		err   error
	)
	switch {
	case measurement.Len() > radar.Len(),
		measurement.Len() == radar.Len() && opts.OnTie == TieRadarAxis:
		times = radar.Times()
		msr, err = Resample(msr, radar.Len())
	default:
		times = measurement.Times()
		rdr, err = Resample(rdr, measurement.Len())
	}
	if err != nil {
		return AlignedPair{}, err
	}

	return AlignedPair{
		Times:       times,
		Radar:       ApplyCorrection(rdr, opts.correction()),
		Measurement: msr,
	}, nil
}

// sameInstant compares timestamps at millisecond precision.
func sameInstant(a, b time.Time) bool {
	return a.UnixMilli() == b.UnixMilli()
}
