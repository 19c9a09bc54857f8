package weather

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestExtractSortsByTimestamp(t *testing.T) {
	raw := json.RawMessage(`{"payload":{"gridapi":{"interlaken":{
		"2018-06-04 12:00:00":{"prate":2.5,"tt":14.1},
		"2018-06-04 00:00:00":{"prate":0.0,"tt":9.3},
		"2018-06-05 00:00:00":{"prate":1.25,"tt":8.0},
		"2018-06-04 06:00:00":{"prate":4,"tt":11.7}
	}}}}`)

	s, err := Extract(raw, DefaultSources().Measurement)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantTimes := []time.Time{
		time.Date(2018, 6, 4, 0, 0, 0, 0, time.UTC),
		time.Date(2018, 6, 4, 6, 0, 0, 0, time.UTC),
		time.Date(2018, 6, 4, 12, 0, 0, 0, time.UTC),
		time.Date(2018, 6, 5, 0, 0, 0, 0, time.UTC),
	}
	wantValues := []float64{0, 4, 2.5, 1.25}

	if s.Len() != len(wantTimes) {
		t.Fatalf("expected %d points, got %d", len(wantTimes), s.Len())
	}
	for i, p := range s.Points {
		if !p.Time.Equal(wantTimes[i]) || p.Value != wantValues[i] {
			t.Errorf("point %d = %v/%v, want %v/%v", i, p.Time, p.Value, wantTimes[i], wantValues[i])
		}
	}
	if s.Name != "interlaken" {
		t.Errorf("expected series name interlaken, got %q", s.Name)
	}
}

func TestExtractMixedTimestampLayouts(t *testing.T) {
	// Lexical order differs from time order once zones are involved.
	raw := json.RawMessage(`{"payload":{"dbklima":{"67340":{
		"2018-06-04T01:00:00+02:00":{"rr":1},
		"2018-06-04T00:30:00Z":{"rr":2}
	}}}}`)

	s, err := Extract(raw, DefaultSources().Radar)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Points[0].Value != 1 || s.Points[1].Value != 2 {
		t.Errorf("points not ordered by instant: %+v", s.Points)
	}
}

func TestExtractShapeErrors(t *testing.T) {
	path := DefaultSources().Radar

	cases := map[string]string{
		"not json object":   `[1,2,3]`,
		"missing payload":   `{"data":{}}`,
		"missing provider":  `{"payload":{"gridapi":{}}}`,
		"missing station":   `{"payload":{"dbklima":{"67341":{}}}}`,
		"station not map":   `{"payload":{"dbklima":{"67340":[1,2]}}}`,
		"no records":        `{"payload":{"dbklima":{"67340":{}}}}`,
		"bad timestamp":     `{"payload":{"dbklima":{"67340":{"yesterday":{"rr":1}}}}}`,
		"missing field":     `{"payload":{"dbklima":{"67340":{"2018-06-04":{"tt":1}}}}}`,
		"null field":        `{"payload":{"dbklima":{"67340":{"2018-06-04":{"rr":null}}}}}`,
		"non-numeric field": `{"payload":{"dbklima":{"67340":{"2018-06-04":{"rr":"1.2"}}}}}`,
		"null record":       `{"payload":{"dbklima":{"67340":{"2018-06-04":null}}}}`,
		"duplicate instant": `{"payload":{"dbklima":{"67340":{"2018-06-04":{"rr":1},"2018-06-04T00:00:00Z":{"rr":5}}}}}`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Extract(json.RawMessage(body), path)
			if !errors.Is(err, ErrPayloadShape) {
				t.Fatalf("expected ErrPayloadShape, got %v", err)
			}
		})
	}
}
