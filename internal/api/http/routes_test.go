package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/i474232898/radar-vs-measurement/internal/chart"
	"github.com/i474232898/radar-vs-measurement/internal/metrics"
	"github.com/i474232898/radar-vs-measurement/internal/store"
	"github.com/i474232898/radar-vs-measurement/internal/weather"
)

const (
	measurementPayload = `{"payload":{"gridapi":{"interlaken":{
		"2020-01-01 00:00:00":{"prate":1.0},
		"2020-01-03 00:00:00":{"prate":2.0},
		"2020-01-05 00:00:00":{"prate":3.0}}}}}`
	radarPayload = `{"payload":{"dbklima":{"67340":{
		"2020-01-01 00:00:00":{"rr":0.5},
		"2020-01-05 00:00:00":{"rr":0.25}}}}}`
	shiftedRadarPayload = `{"payload":{"dbklima":{"67340":{
		"2020-01-01 00:00:00":{"rr":0.5},
		"2020-01-06 00:00:00":{"rr":0.25}}}}}`
)

type stubSource struct {
	payloads weather.Payloads
	err      error
}

func (s stubSource) FetchPayloads(ctx context.Context) (weather.Payloads, error) {
	return s.payloads, s.err
}

func newTestApp(t *testing.T, src weather.PayloadSource) (*fiber.App, *weather.Service) {
	t.Helper()

	reg := prometheus.NewRegistry()
	m := metrics.New()
	reg.MustRegister(m)

	svc := weather.NewService(src, store.NewMemoryStore(10, time.Hour), weather.ServiceConfig{
		Sources: weather.DefaultSources(),
		Metrics: m,
	})

	app := fiber.New()
	RegisterRoutes(app, svc, chart.NewRenderer(), reg)
	return app, svc
}

func okSource() stubSource {
	return stubSource{payloads: weather.Payloads{
		Measurement: json.RawMessage(measurementPayload),
		Radar:       json.RawMessage(radarPayload),
	}}
}

func do(t *testing.T, app *fiber.App, target string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return resp
}

func TestComparison(t *testing.T) {
	app, _ := newTestApp(t, okSource())

	resp := do(t, app, "/api/v1/comparison")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	var body comparisonResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Times) != 2 || len(body.Difference) != 2 {
		t.Fatalf("unexpected body %+v", body)
	}
	if body.Radar[0] != 5 || body.Measurement[1] != 3 || body.Difference[1] != -0.5 {
		t.Errorf("unexpected values %+v", body)
	}
}

func TestComparisonErrorMapping(t *testing.T) {
	cases := map[string]struct {
		src  stubSource
		code int
	}{
		"range mismatch": {
			src: stubSource{payloads: weather.Payloads{
				Measurement: json.RawMessage(measurementPayload),
				Radar:       json.RawMessage(shiftedRadarPayload),
			}},
			code: http.StatusUnprocessableEntity,
		},
		"fetch error": {
			src:  stubSource{err: &weather.FetchError{Index: 0, Name: "measurement", Err: errors.New("connection refused")}},
			code: http.StatusBadGateway,
		},
		"payload shape": {
			src: stubSource{payloads: weather.Payloads{
				Measurement: json.RawMessage(`{"payload":{}}`),
				Radar:       json.RawMessage(radarPayload),
			}},
			code: http.StatusBadGateway,
		},
		"timeout": {
			src:  stubSource{err: &weather.FetchError{Name: "radar", Err: context.DeadlineExceeded}},
			code: http.StatusGatewayTimeout,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			app, _ := newTestApp(t, tc.src)
			for _, target := range []string{"/api/v1/comparison", "/api/v1/comparison/chart"} {
				resp := do(t, app, target)
				if resp.StatusCode != tc.code {
					t.Errorf("%s: expected status %d, got %d", target, tc.code, resp.StatusCode)
				}
			}
		})
	}
}

// TestChartQueryValidation verifies that the chart endpoint only accepts the
// documented panels and formats.
func TestChartQueryValidation(t *testing.T) {
	app, _ := newTestApp(t, okSource())

	for _, target := range []string{
		"/api/v1/comparison/chart?panel=scatter",
		"/api/v1/comparison/chart?format=gif",
		"/api/v1/comparison/chart?panel=both&format=svg",
	} {
		resp := do(t, app, target)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: expected status %d, got %d", target, http.StatusBadRequest, resp.StatusCode)
		}
	}
}

func TestChartFormats(t *testing.T) {
	app, _ := newTestApp(t, okSource())

	cases := []struct {
		target      string
		contentType string
	}{
		{"/api/v1/comparison/chart", "image/png"},
		{"/api/v1/comparison/chart?panel=overlay&format=svg", "image/svg+xml"},
		{"/api/v1/comparison/chart?panel=difference&format=png", "image/png"},
	}
	for _, tc := range cases {
		target, contentType := tc.target, tc.contentType
		resp := do(t, app, target)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s: expected status %d, got %d", target, http.StatusOK, resp.StatusCode)
		}
		if got := resp.Header.Get("Content-Type"); got != contentType {
			t.Errorf("%s: content type %q, want %q", target, got, contentType)
		}
		body, _ := io.ReadAll(resp.Body)
		if len(body) == 0 {
			t.Errorf("%s: empty body", target)
		}
	}
}

func TestReports(t *testing.T) {
	app, svc := newTestApp(t, okSource())

	resp := do(t, app, "/api/v1/reports/latest")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status %d before any run, got %d", http.StatusNotFound, resp.StatusCode)
	}

	report, err := svc.RunReport(context.Background())
	if err != nil {
		t.Fatalf("run report: %v", err)
	}

	resp = do(t, app, "/api/v1/reports/latest")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	var latest weather.Report
	if err := json.NewDecoder(resp.Body).Decode(&latest); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if latest.ID != report.ID || latest.Points != 2 {
		t.Errorf("unexpected latest report %+v", latest)
	}

	from := report.RunAt.Add(-time.Minute).Format(time.RFC3339)
	to := report.RunAt.Add(time.Minute).Format(time.RFC3339)
	resp = do(t, app, "/api/v1/reports?from="+from+"&to="+to)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
}

func TestReportsQueryValidation(t *testing.T) {
	app, _ := newTestApp(t, okSource())

	for _, target := range []string{
		"/api/v1/reports",
		"/api/v1/reports?from=2020-01-01T00:00:00Z",
		"/api/v1/reports?from=yesterday&to=today",
		"/api/v1/reports?from=2020-01-02T00:00:00Z&to=2020-01-01T00:00:00Z",
	} {
		resp := do(t, app, target)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: expected status %d, got %d", target, http.StatusBadRequest, resp.StatusCode)
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	app, _ := newTestApp(t, okSource())

	do(t, app, "/api/v1/comparison")

	resp := do(t, app, "/metrics")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `rvm_comparisons_total{outcome="ok"} 1`) {
		t.Errorf("comparison counter missing from metrics output:\n%s", body)
	}
}

func TestParseTime(t *testing.T) {
	want := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"2020-01-01T00:00:00Z", "1577836800", "2020-01-01"} {
		got, err := parseTime(in)
		if err != nil || !got.Equal(want) {
			t.Errorf("parseTime(%q) = %v, %v", in, got, err)
		}
	}
}
