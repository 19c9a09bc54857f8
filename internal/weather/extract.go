package weather

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/i474232898/radar-vs-measurement/internal/common"
)

// Extract reads the series located by path from an upstream payload of shape
// {"payload": {<provider>: {<station>: {<timestamp>: {<field>: number, ...}}}}}.
// Timestamp keys are parsed explicitly and the result is sorted by time, so
// the key order of the payload does not matter.
func Extract(payload json.RawMessage, path SourcePath) (Series, error) {
	raw, err := lookup(payload, "payload", path.Provider, path.Station)
	if err != nil {
		return Series{}, err
	}

	var records map[string]map[string]json.RawMessage
	if err := json.Unmarshal(raw, &records); err != nil {
		return Series{}, fmt.Errorf("%w: %s is not a map of records: %v", ErrPayloadShape, path, err)
	}
	if len(records) == 0 {
		return Series{}, fmt.Errorf("%w: %s has no records", ErrPayloadShape, path)
	}

	keys := make([]string, 0, len(records))
	for k := range records {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	points := make([]Point, 0, len(records))
	for _, key := range keys {
		ts, err := common.ParseTimestamp(key)
		if err != nil {
			return Series{}, fmt.Errorf("%w: %s: %v", ErrPayloadShape, path, err)
		}

		value, err := numericField(records[key], path.Field)
		if err != nil {
			return Series{}, fmt.Errorf("%w: %s at %s: %v", ErrPayloadShape, path, key, err)
		}

		points = append(points, Point{Time: ts, Value: value})
	}

	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Time.Before(points[j].Time)
	})

	// Different key spellings may name the same instant.
	for i := 1; i < len(points); i++ {
		if sameInstant(points[i-1].Time, points[i].Time) {
			return Series{}, fmt.Errorf("%w: %s has more than one record at %s",
				ErrPayloadShape, path, points[i].Time.Format(time.RFC3339Nano))
		}
	}

	return Series{Name: path.Station, Points: points}, nil
}

// lookup walks nested JSON objects along keys.
func lookup(raw json.RawMessage, keys ...string) (json.RawMessage, error) {
	cur := raw
	for i, key := range keys {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(cur, &obj); err != nil || obj == nil {
			return nil, fmt.Errorf("%w: %s is not an object", ErrPayloadShape, jsonPath(keys[:i]))
		}
		next, ok := obj[key]
		if !ok {
			return nil, fmt.Errorf("%w: missing %s", ErrPayloadShape, jsonPath(keys[:i+1]))
		}
		cur = next
	}
	return cur, nil
}

func jsonPath(keys []string) string {
	if len(keys) == 0 {
		return "$"
	}
	return "$." + strings.Join(keys, ".")
}

func numericField(fields map[string]json.RawMessage, name string) (float64, error) {
	raw, ok := fields[name]
	if !ok {
		return 0, fmt.Errorf("field %q missing", name)
	}
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return 0, fmt.Errorf("field %q is null", name)
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, fmt.Errorf("field %q is not a number", name)
	}
	return v, nil
}
