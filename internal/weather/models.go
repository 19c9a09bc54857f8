package weather

import (
	"encoding/json"
	"time"
)

// Point is a single sample of a series.
type Point struct {
	Time  time.Time `json:"time"` // always UTC
	Value float64   `json:"value"`
}

// Series is a named sequence of points ordered by Time ascending.
type Series struct {
	Name   string  `json:"name"`
	Points []Point `json:"points"`
}

// Len returns the number of points in the series.
func (s Series) Len() int {
	return len(s.Points)
}

// Times returns the timestamps of the series in order.
func (s Series) Times() []time.Time {
	out := make([]time.Time, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Time
	}
	return out
}

// Values returns the values of the series in order.
func (s Series) Values() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Value
	}
	return out
}

// First returns the earliest timestamp. The series must not be empty.
func (s Series) First() time.Time {
	return s.Points[0].Time
}

// Last returns the latest timestamp. The series must not be empty.
func (s Series) Last() time.Time {
	return s.Points[len(s.Points)-1].Time
}

// SourcePath locates one series inside an upstream payload:
// payload.<Provider>.<Station>.<timestamp>.<Field>.
type SourcePath struct {
	Provider string `yaml:"provider" validate:"required"`
	Station  string `yaml:"station" validate:"required"`
	Field    string `yaml:"field" validate:"required"`
}

func (p SourcePath) String() string {
	return "payload." + p.Provider + "." + p.Station + ".*." + p.Field
}

// Sources holds the paths of both series.
type Sources struct {
	Measurement SourcePath `yaml:"measurement"`
	Radar       SourcePath `yaml:"radar"`
}

// DefaultSources returns the grid measurement at Interlaken and the
// climate-database radar estimate for station 67340.
func DefaultSources() Sources {
	return Sources{
		Measurement: SourcePath{Provider: "gridapi", Station: "interlaken", Field: "prate"},
		Radar:       SourcePath{Provider: "dbklima", Station: "67340", Field: "rr"},
	}
}

// Payloads are the raw JSON bodies returned by the two upstream requests.
type Payloads struct {
	Measurement json.RawMessage
	Radar       json.RawMessage
}

// AlignedPair is the output of alignment: two equally long value slices on a
// shared time axis.
type AlignedPair struct {
	Times       []time.Time `json:"times"`
	Radar       []float64   `json:"radar"`
	Measurement []float64   `json:"measurement"`
}

// Len returns the number of aligned samples.
func (p AlignedPair) Len() int {
	return len(p.Times)
}

// Difference returns radar[i] - measurement[i] for every sample.
func (p AlignedPair) Difference() []float64 {
	out := make([]float64, len(p.Radar))
	for i := range p.Radar {
		out[i] = p.Radar[i] - p.Measurement[i]
	}
	return out
}

// ReportStatus is the outcome of a scheduled comparison run.
type ReportStatus string

const (
	ReportOK     ReportStatus = "ok"
	ReportFailed ReportStatus = "failed"
)

// Report summarizes one comparison run. It never carries the series themselves.
type Report struct {
	ID     string       `json:"id"`
	RunAt  time.Time    `json:"runAt"` // always UTC
	Status ReportStatus `json:"status"`
	Error  string       `json:"error,omitempty"`

	Points            int       `json:"points"`
	Start             time.Time `json:"start"`
	End               time.Time `json:"end"`
	MeanRadar         float64   `json:"meanRadar"`
	MeanMeasurement   float64   `json:"meanMeasurement"`
	MeanDifference    float64   `json:"meanDifference"`
	MeanAbsDifference float64   `json:"meanAbsDifference"`
	RMSE              float64   `json:"rmse"`
	MaxAbsDifference  float64   `json:"maxAbsDifference"`
}
