package chart

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"math"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/i474232898/radar-vs-measurement/internal/weather"
)

// Format is an output image format.
type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
)

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatSVG {
		return "image/svg+xml"
	}
	return "image/png"
}

func (f Format) provider() (gochart.RendererProvider, error) {
	switch f {
	case FormatPNG:
		return gochart.PNG, nil
	case FormatSVG:
		return gochart.SVG, nil
	default:
		return nil, fmt.Errorf("unsupported chart format %q", f)
	}
}

// ErrTooFewPoints is returned for pairs that cannot span a time axis.
var ErrTooFewPoints = errors.New("at least two aligned points are required to draw a chart")

const (
	legendRadar       = "Radar"
	legendMeasurement = "Measurement"
	legendDifference  = "Radar - Measurement"

	tickFormat = "Mon 02"
)

var (
	radarColor       = drawing.ColorFromHex("ffa500").WithAlpha(200)
	measurementColor = drawing.ColorFromHex("0000ff").WithAlpha(160)
	differenceColor  = drawing.ColorFromHex("555555")
	gridColor        = drawing.ColorFromHex("e0e0e0")
)

// Renderer draws comparison charts of an aligned pair.
type Renderer struct {
	// Width and Height are the dimensions of the combined chart. The overlay
	// takes three quarters of the height and the difference the rest.
	Width  int
	Height int
}

// NewRenderer returns a renderer with the default 600x500 layout.
func NewRenderer() *Renderer {
	return &Renderer{Width: 600, Height: 500}
}

func (r *Renderer) overlayHeight() int {
	return r.Height * 3 / 4
}

func (r *Renderer) differenceHeight() int {
	return r.Height - r.overlayHeight()
}

// RenderOverlay draws both series on a shared time and value axis.
func (r *Renderer) RenderOverlay(w io.Writer, pair weather.AlignedPair, format Format) error {
	p, err := format.provider()
	if err != nil {
		return err
	}
	c, err := r.overlayChart(pair, r.overlayHeight())
	if err != nil {
		return err
	}
	return c.Render(p, w)
}

// RenderDifference draws radar minus measurement.
func (r *Renderer) RenderDifference(w io.Writer, pair weather.AlignedPair, format Format) error {
	p, err := format.provider()
	if err != nil {
		return err
	}
	c, err := r.differenceChart(pair, r.differenceHeight())
	if err != nil {
		return err
	}
	return c.Render(p, w)
}

// RenderComparison draws the overlay above the difference into one PNG.
func (r *Renderer) RenderComparison(w io.Writer, pair weather.AlignedPair) error {
	var top, bottom bytes.Buffer
	if err := r.RenderOverlay(&top, pair, FormatPNG); err != nil {
		return fmt.Errorf("overlay: %w", err)
	}
	if err := r.RenderDifference(&bottom, pair, FormatPNG); err != nil {
		return fmt.Errorf("difference: %w", err)
	}

	overlay, err := png.Decode(&top)
	if err != nil {
		return fmt.Errorf("decode overlay: %w", err)
	}
	diff, err := png.Decode(&bottom)
	if err != nil {
		return fmt.Errorf("decode difference: %w", err)
	}

	ob, db := overlay.Bounds(), diff.Bounds()
	width := max(ob.Dx(), db.Dx())
	canvas := image.NewRGBA(image.Rect(0, 0, width, ob.Dy()+db.Dy()))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(canvas, image.Rect(0, 0, ob.Dx(), ob.Dy()), overlay, ob.Min, draw.Over)
	draw.Draw(canvas, image.Rect(0, ob.Dy(), db.Dx(), ob.Dy()+db.Dy()), diff, db.Min, draw.Over)

	return png.Encode(w, canvas)
}

func (r *Renderer) overlayChart(pair weather.AlignedPair, height int) (*gochart.Chart, error) {
	if err := checkPair(pair); err != nil {
		return nil, err
	}

	// The value axis starts at zero and leaves one unit of headroom above the
	// highest sample.
	top := math.Max(maxOf(pair.Measurement), maxOf(pair.Radar)) + 1

	c := &gochart.Chart{
		Width:      r.Width,
		Height:     height,
		Background: gochart.Style{Padding: gochart.Box{Top: 20, Left: 20, Right: 20, Bottom: 20}},
		XAxis:      timeAxis(),
		YAxis: gochart.YAxis{
			Range:          &gochart.ContinuousRange{Min: 0, Max: top},
			GridMajorStyle: gridStyle(),
		},
		Series: []gochart.Series{
			gochart.TimeSeries{
				Name:    legendRadar,
				XValues: pair.Times,
				YValues: pair.Radar,
				Style:   lineStyle(radarColor),
			},
			gochart.TimeSeries{
				Name:    legendMeasurement,
				XValues: pair.Times,
				YValues: pair.Measurement,
				Style:   lineStyle(measurementColor),
			},
		},
	}
	c.Elements = []gochart.Renderable{gochart.Legend(c)}
	return c, nil
}

func (r *Renderer) differenceChart(pair weather.AlignedPair, height int) (*gochart.Chart, error) {
	if err := checkPair(pair); err != nil {
		return nil, err
	}

	diff := pair.Difference()

	c := &gochart.Chart{
		Width:      r.Width,
		Height:     height,
		Background: gochart.Style{Padding: gochart.Box{Top: 10, Left: 20, Right: 20, Bottom: 20}},
		XAxis:      timeAxis(),
		YAxis: gochart.YAxis{
			Range:          &gochart.ContinuousRange{Min: minOf(diff) - 2, Max: maxOf(diff) + 2},
			GridMajorStyle: gridStyle(),
		},
		Series: []gochart.Series{
			gochart.TimeSeries{
				Name:    legendDifference,
				XValues: pair.Times,
				YValues: diff,
				Style:   lineStyle(differenceColor),
			},
		},
	}
	c.Elements = []gochart.Renderable{gochart.Legend(c)}
	return c, nil
}

func checkPair(pair weather.AlignedPair) error {
	if pair.Len() < 2 {
		return ErrTooFewPoints
	}
	if len(pair.Radar) != pair.Len() || len(pair.Measurement) != pair.Len() {
		return fmt.Errorf("aligned pair has mismatched lengths: %d times, %d radar, %d measurement",
			pair.Len(), len(pair.Radar), len(pair.Measurement))
	}
	if pair.Times[0].Equal(pair.Times[pair.Len()-1]) {
		return ErrTooFewPoints
	}
	return nil
}

func timeAxis() gochart.XAxis {
	return gochart.XAxis{
		ValueFormatter: gochart.TimeValueFormatterWithFormat(tickFormat),
		GridMajorStyle: gridStyle(),
	}
}

func gridStyle() gochart.Style {
	return gochart.Style{StrokeColor: gridColor, StrokeWidth: 1}
}

func lineStyle(c drawing.Color) gochart.Style {
	return gochart.Style{StrokeColor: c, StrokeWidth: 2}
}

func maxOf(values []float64) float64 {
	m := math.Inf(-1)
	for _, v := range values {
		m = math.Max(m, v)
	}
	return m
}

func minOf(values []float64) float64 {
	m := math.Inf(1)
	for _, v := range values {
		m = math.Min(m, v)
	}
	return m
}
