package chart

import (
	"bytes"
	"fmt"
	"math"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/pscheid92/allin/internal/domain"
)

// StartAngle is where the first slice begins, in degrees counter-clockwise
// from 3 o'clock.
const StartAngle = 90.0

const (
	pieSize          = 480
	pieRadius        = 170
	pieTitleSize     = 14
	pieFontSize      = 11
	pctDistance      = 0.6
	labelDistance    = 1.1
	pieTitleBaseline = 28
)

// Slice is the geometry of one pie wedge. Angles are in degrees, measured
// counter-clockwise from 3 o'clock; Sweep is always positive.
type Slice struct {
	Tone  domain.Tone
	Count int
	Share float64
	Label string
	Start float64
	Sweep float64
}

// Mid is the angle bisecting the slice.
func (s Slice) Mid() float64 {
	return s.Start + s.Sweep/2
}

// PieSlices lays the distribution out counter-clockwise starting at StartAngle.
func PieSlices(dist domain.ToneDistribution) []Slice {
	total := dist.Total()
	if total == 0 {
		return nil
	}

	slices := make([]Slice, 0, len(dist))
	cursor := StartAngle
	for _, tc := range dist {
		share := float64(tc.Count) * 100 / float64(total)
		sweep := 360 * float64(tc.Count) / float64(total)
		slices = append(slices, Slice{
			Tone:  tc.Tone,
			Count: tc.Count,
			Share: share,
			Label: fmt.Sprintf("%.1f%%", share),
			Start: cursor,
			Sweep: sweep,
		})
		cursor += sweep
	}
	return slices
}

// Pie renders the distribution as a circular pie in a square canvas, one
// wedge per tone labelled with its percentage share.
func Pie(dist domain.ToneDistribution) ([]byte, error) {
	slices := PieSlices(dist)
	if len(slices) == 0 {
		return nil, ErrNoData
	}

	r, err := gochart.SVG(pieSize, pieSize)
	if err != nil {
		return nil, fmt.Errorf("create renderer: %w", err)
	}
	font, err := gochart.GetDefaultFont()
	if err != nil {
		return nil, fmt.Errorf("load font: %w", err)
	}
	r.SetFont(font)

	cx, cy := pieSize/2, pieSize/2+10

	for i, s := range slices {
		r.SetFillColor(colorAt(i))
		r.SetStrokeColor(drawing.ColorWhite)
		r.SetStrokeWidth(1)

		if len(slices) == 1 {
			r.Circle(pieRadius, cx, cy)
			continue
		}

		// The renderer sweeps clockwise from 3 o'clock with y pointing down,
		// so a counter-clockwise wedge [a, a+sweep] is drawn from -(a+sweep).
		start := -degreesToRadians(s.Start + s.Sweep)
		r.MoveTo(cx, cy)
		r.ArcTo(cx, cy, pieRadius, pieRadius, start, degreesToRadians(s.Sweep))
		r.LineTo(cx, cy)
		r.Close()
		r.FillStroke()
	}

	r.SetFontColor(drawing.ColorBlack)
	r.SetFontSize(pieFontSize)
	for _, s := range slices {
		drawCentered(r, s.Label, polar(cx, cy, pieRadius*pctDistance, s.Mid()))
		drawCentered(r, s.Tone.String(), polar(cx, cy, pieRadius*labelDistance, s.Mid()))
	}

	r.SetFontSize(pieTitleSize)
	drawCentered(r, "Tone share", point{x: cx, y: pieTitleBaseline})

	var buf bytes.Buffer
	if err := r.Save(&buf); err != nil {
		return nil, fmt.Errorf("render pie chart: %w", err)
	}
	return buf.Bytes(), nil
}

type point struct {
	x, y int
}

// polar converts an angle counter-clockwise from 3 o'clock to canvas
// coordinates.
func polar(cx, cy int, radius, degrees float64) point {
	rad := degreesToRadians(degrees)
	return point{
		x: cx + int(math.Round(radius*math.Cos(rad))),
		y: cy - int(math.Round(radius*math.Sin(rad))),
	}
}

func drawCentered(r gochart.Renderer, text string, p point) {
	box := r.MeasureText(text)
	r.Text(text, p.x-box.Width()/2, p.y+box.Height()/2)
}

func degreesToRadians(d float64) float64 {
	return d * math.Pi / 180
}
