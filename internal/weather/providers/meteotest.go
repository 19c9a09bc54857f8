package providers

import (
	"context"
	"fmt"
	"net/url"

	"github.com/i474232898/radar-vs-measurement/internal/weather"
)

// Default MDX Meteotest API settings.
const (
	DefaultMeteotestURL      = "https://mdx.meteotest.ch/api_v1"
	DefaultMeteotestService  = "prod2data"
	DefaultMeteotestFormat   = "json"
	DefaultMeasurementAction = "probetag_montet_radar"
	DefaultRadarAction       = "probetag_montet_dbklima"
	measurementRequestName   = "measurement"
	radarRequestName         = "radar"
)

// MeteotestConfig holds the MDX API settings. APIKey must be supplied by the
// caller; there is no built-in credential.
type MeteotestConfig struct {
	BaseURL           string
	APIKey            string
	Service           string
	Format            string
	MeasurementAction string
	RadarAction       string
}

// MeteotestClient implements weather.PayloadSource for the MDX Meteotest API.
type MeteotestClient struct {
	fetcher *Fetcher
	cfg     MeteotestConfig
}

// NewMeteotestClient creates a client. Empty optional settings fall back to
// the package defaults.
func NewMeteotestClient(fetcher *Fetcher, cfg MeteotestConfig) *MeteotestClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultMeteotestURL
	}
	if cfg.Service == "" {
		cfg.Service = DefaultMeteotestService
	}
	if cfg.Format == "" {
		cfg.Format = DefaultMeteotestFormat
	}
	if cfg.MeasurementAction == "" {
		cfg.MeasurementAction = DefaultMeasurementAction
	}
	if cfg.RadarAction == "" {
		cfg.RadarAction = DefaultRadarAction
	}
	return &MeteotestClient{fetcher: fetcher, cfg: cfg}
}

// Requests returns the measurement and radar requests, in that order.
func (c *MeteotestClient) Requests() []Request {
	return []Request{
		c.request(measurementRequestName, c.cfg.MeasurementAction),
		c.request(radarRequestName, c.cfg.RadarAction),
	}
}

func (c *MeteotestClient) request(name, action string) Request {
	values := url.Values{}
	values.Set("key", c.cfg.APIKey)
	values.Set("service", c.cfg.Service)
	values.Set("action", action)
	values.Set("format", c.cfg.Format)

	return Request{
		Name:    name,
		BaseURL: c.cfg.BaseURL,
		Query:   values,
	}
}

// FetchPayloads fetches both payloads concurrently.
func (c *MeteotestClient) FetchPayloads(ctx context.Context) (weather.Payloads, error) {
	if c.cfg.APIKey == "" {
		return weather.Payloads{}, fmt.Errorf("meteotest api key is not configured")
	}

	bodies, err := c.fetcher.FetchAll(ctx, c.Requests())
	if err != nil {
		return weather.Payloads{}, err
	}

	return weather.Payloads{
		Measurement: bodies[0],
		Radar:       bodies[1],
	}, nil
}
