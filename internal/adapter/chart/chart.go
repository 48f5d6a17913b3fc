// Package chart renders the tone distribution as SVG bar and pie charts.
package chart

import (
	"bytes"
	"errors"
	"fmt"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/pscheid92/allin/internal/domain"
)

// ErrNoData is returned when there is nothing to plot.
var ErrNoData = errors.New("no data to plot")

// palette follows the familiar ten-colour categorical cycle.
var palette = []drawing.Color{
	drawing.ColorFromHex("1f77b4"),
	drawing.ColorFromHex("ff7f0e"),
	drawing.ColorFromHex("2ca02c"),
	drawing.ColorFromHex("d62728"),
	drawing.ColorFromHex("9467bd"),
	drawing.ColorFromHex("8c564b"),
	drawing.ColorFromHex("e377c2"),
	drawing.ColorFromHex("7f7f7f"),
	drawing.ColorFromHex("bcbd22"),
	drawing.ColorFromHex("17becf"),
}

func colorAt(i int) drawing.Color {
	return palette[i%len(palette)]
}

const (
	barWidth      = 720
	barHeight     = 400
	barThickness  = 60
	barSpacing    = 40
	barTitleSpace = 40
)

// Bar renders one bar per tone in distribution order (most frequent first).
func Bar(dist domain.ToneDistribution) ([]byte, error) {
	if dist.Total() == 0 {
		return nil, ErrNoData
	}

	maxCount := 0
	for _, tc := range dist {
		maxCount = max(maxCount, tc.Count)
	}

	c := gochart.BarChart{
		Title:      "Tone distribution",
		Width:      barWidth,
		Height:     barHeight,
		BarWidth:   barThickness,
		BarSpacing: barSpacing,
		Background: gochart.Style{
			Padding: gochart.Box{Top: barTitleSpace, Left: 10, Right: 10, Bottom: 10},
		},
		YAxis: gochart.YAxis{
			Range:          &gochart.ContinuousRange{Min: 0, Max: float64(maxCount)},
			ValueFormatter: gochart.IntValueFormatter,
		},
		Bars: barValues(dist),
	}

	var buf bytes.Buffer
	if err := c.Render(gochart.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render bar chart: %w", err)
	}
	return buf.Bytes(), nil
}

func barValues(dist domain.ToneDistribution) []gochart.Value {
	values := make([]gochart.Value, len(dist))
	for i, tc := range dist {
		values[i] = gochart.Value{
			Label: tc.Tone.String(),
			Value: float64(tc.Count),
			Style: gochart.Style{
				FillColor:   colorAt(i),
				StrokeColor: colorAt(i),
				StrokeWidth: 1,
			},
		}
	}
	return values
}
