package httpapi

import (
	"bytes"
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/i474232898/radar-vs-measurement/internal/chart"
	"github.com/i474232898/radar-vs-measurement/internal/common"
	"github.com/i474232898/radar-vs-measurement/internal/store"
	"github.com/i474232898/radar-vs-measurement/internal/weather"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app. gatherer may be
// nil, in which case /metrics is not served.
func RegisterRoutes(app *fiber.App, service *weather.Service, renderer *chart.Renderer, gatherer prometheus.Gatherer) {
	if gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	v1 := app.Group("/api/v1")

	v1.Get("/comparison", func(c *fiber.Ctx) error {
		pair, err := service.Compare(c.UserContext())
		if err != nil {
			return comparisonError(err)
		}

		return c.JSON(comparisonResponse{
			Times:       pair.Times,
			Radar:       pair.Radar,
			Measurement: pair.Measurement,
			Difference:  pair.Difference(),
		})
	})

	v1.Get("/comparison/chart", func(c *fiber.Ctx) error {
		var q chartQuery
		if err := q.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		pair, err := service.Compare(c.UserContext())
		if err != nil {
			return comparisonError(err)
		}

		// Render into a buffer so a failed render never produces a partial image.
		var buf bytes.Buffer
		format := chart.Format(q.Format)
		switch q.Panel {
		case panelOverlay:
			err = renderer.RenderOverlay(&buf, pair, format)
		case panelDifference:
			err = renderer.RenderDifference(&buf, pair, format)
		default:
			err = renderer.RenderComparison(&buf, pair)
		}
		if err != nil {
			if errors.Is(err, chart.ErrTooFewPoints) {
				return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to render chart")
		}

		c.Set(fiber.HeaderContentType, format.ContentType())
		c.Set(fiber.HeaderCacheControl, "no-store")
		return c.Send(buf.Bytes())
	})

	v1.Get("/reports/latest", func(c *fiber.Ctx) error {
		report, err := service.LatestReport()
		if err != nil {
			return reportError(err, "no comparison report available")
		}
		return c.JSON(report)
	})

	v1.Get("/reports", func(c *fiber.Ctx) error {
		var req historyQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		reports, err := service.ReportRange(req.From, req.To)
		if err != nil {
			return reportError(err, "no comparison reports for requested range")
		}

		return c.JSON(fiber.Map{
			"from":    req.From,
			"to":      req.To,
			"reports": reports,
		})
	})
}

type comparisonResponse struct {
	Times       []time.Time `json:"times"`
	Radar       []float64   `json:"radar"`
	Measurement []float64   `json:"measurement"`
	Difference  []float64   `json:"difference"`
}

// comparisonError maps pipeline failures to HTTP errors.
func comparisonError(err error) error {
	var (
		rangeErr *weather.RangeMismatchError
		fetchErr *weather.FetchError
	)
	switch {
	case errors.As(err, &rangeErr):
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.NewError(fiber.StatusGatewayTimeout, "upstream request timed out")
	case errors.As(err, &fetchErr):
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	case errors.Is(err, weather.ErrPayloadShape), errors.Is(err, weather.ErrEmptySeries):
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "failed to compare radar and measurement")
	}
}

func reportError(err error, notFound string) error {
	if errors.Is(err, store.ErrNotFound) || errors.Is(err, weather.ErrNoReportStore) {
		return fiber.NewError(fiber.StatusNotFound, notFound)
	}
	return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch comparison reports")
}

const (
	panelOverlay    = "overlay"
	panelDifference = "difference"
	panelBoth       = "both"
)

// chartQuery holds query parameters for the chart endpoint.
type chartQuery struct {
	Panel  string `validate:"required,oneof=overlay difference both"`
	Format string `validate:"required,oneof=png svg"`
}

func (q *chartQuery) bind(c *fiber.Ctx) error {
	q.Panel = c.Query("panel", panelBoth)
	q.Format = c.Query("format", string(chart.FormatPNG))

	if err := validate.Struct(q); err != nil {
		return err
	}
	if q.Panel == panelBoth && q.Format != string(chart.FormatPNG) {
		return errors.New("panel=both is only available as png")
	}
	return nil
}

// historyQuery holds query parameters for the reports endpoint.
type historyQuery struct {
	From time.Time `validate:"required"`
	To   time.Time `validate:"required,gtefield=From"`
}

func (h *historyQuery) bind(c *fiber.Ctx) error {
	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		return errors.New("from and to query parameters are required")
	}

	from, err := parseTime(fromStr)
	if err != nil {
		return err
	}
	to, err := parseTime(toStr)
	if err != nil {
		return err
	}

	h.From = from
	h.To = to
	return nil
}

// parseTime accepts the timestamp layouts of upstream payloads or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := common.ParseTimestamp(s); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}
