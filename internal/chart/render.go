package chart

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"sessioncli/internal/config"
	"sessioncli/internal/exporter"
	"sessioncli/pkg/contracts/domain"
)

// ErrEmptySeries is returned when there is nothing to plot.
var ErrEmptySeries = errors.New("visitor series has no points")

// Options size the rendered image.
type Options struct {
	Width  int
	Height int
}

const (
	padTop    = 30
	padLeft   = 56
	padRight  = 16
	padBottom = 64
)

// RenderBarChart draws the visitor series as a PNG bar chart with the
// series title and axis labels.
func RenderBarChart(series *domain.VisitorSeries, opts Options) ([]byte, error) {
	if series == nil || len(series.Points) == 0 {
		return nil, ErrEmptySeries
	}
	if opts.Width <= 0 {
		opts.Width = config.DefaultChartWidth
	}
	if opts.Height <= 0 {
		opts.Height = config.DefaultChartHeight
	}

	bars := make([]gochart.Value, len(series.Points))
	var maxCount int64
	for i, p := range series.Points {
		bars[i] = gochart.Value{
			Label: p.EventDate.Format("2006-01-02"),
			Value: float64(p.Count),
			Style: gochart.Style{
				FillColor:   drawing.ColorFromHex("1f77b4"),
				StrokeColor: drawing.ColorFromHex("1f77b4"),
				StrokeWidth: 1,
			},
		}
		if p.Count > maxCount {
			maxCount = p.Count
		}
	}

	bc := gochart.BarChart{
		Title:  series.Title,
		Width:  opts.Width,
		Height: opts.Height,
		Background: gochart.Style{
			Padding: gochart.Box{Top: padTop, Left: padLeft, Right: padRight, Bottom: padBottom},
		},
		BarWidth: barWidth(opts.Width, len(bars)),
		YAxis: gochart.YAxis{
			Range:          &gochart.ContinuousRange{Min: 0, Max: axisMax(maxCount)},
			ValueFormatter: gochart.IntValueFormatter,
		},
		Bars: bars,
	}
	bc.Elements = []gochart.Renderable{axisLabels(series.XLabel, series.YLabel)}

	var buf bytes.Buffer
	if err := bc.Render(gochart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}
	return buf.Bytes(), nil
}

// axisMax leaves headroom above the tallest bar; a zero-height range is invalid
func axisMax(maxCount int64) float64 {
	if maxCount <= 0 {
		return 1
	}
	return math.Ceil(float64(maxCount) * 1.1)
}

func barWidth(width, bars int) int {
	w := (width - padLeft - padRight) / (2 * bars)
	switch {
	case w > 60:
		return 60
	case w < 4:
		return 4
	}
	return w
}

// axisLabels draws the x label under the tick labels and the y label
// rotated along the left edge
func axisLabels(xLabel, yLabel string) gochart.Renderable {
	return func(r gochart.Renderer, canvasBox gochart.Box, defaults gochart.Style) {
		if defaults.Font != nil {
			r.SetFont(defaults.Font)
		}
		r.SetFontColor(drawing.ColorBlack)
		r.SetFontSize(11)

		if xLabel != "" {
			tb := r.MeasureText(xLabel)
			x := canvasBox.Left + (canvasBox.Width()-tb.Width())/2
			r.Text(xLabel, x, canvasBox.Bottom+padBottom/2+tb.Height())
		}

		if yLabel != "" {
			tb := r.MeasureText(yLabel)
			x := canvasBox.Left - padLeft/2
			y := canvasBox.Top + (canvasBox.Height()+tb.Width())/2
			r.SetTextRotation(3 * math.Pi / 2)
			r.Text(yLabel, x, y)
			r.ClearTextRotation()
		}
	}
}

// Save writes the PNG to path atomically.
func Save(path string, png []byte) error {
	return exporter.WriteFileAtomic(path, func(w io.Writer) error {
		_, err := w.Write(png)
		return err
	})
}
