package chart

import (
	"bytes"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/raine/market-dashboard/internal/analytics"
	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	DefaultWidth  = 800
	DefaultHeight = 400
)

// ErrNoData is returned when a descriptor has nothing to draw.
var ErrNoData = errors.New("no data to chart")

var categoryColors = map[analytics.Category]drawing.Color{
	analytics.CategoryNew:   drawing.ColorFromHex("279100"),
	analytics.CategoryUsed:  drawing.ColorFromHex("0064D2"),
	analytics.CategoryOther: drawing.ColorFromHex("999999"),
}

// Image is a chart rendered to PNG.
type Image struct {
	mu   sync.RWMutex
	id   string
	kind Kind
	data []byte
}

// PNG returns the encoded image. It reports false once the image has been
// destroyed.
func (img *Image) PNG() ([]byte, bool) {
	img.mu.RLock()
	defer img.mu.RUnlock()

	if img.data == nil {
		return nil, false
	}
	return img.data, true
}

// Destroy drops the encoded image.
func (img *Image) Destroy() {
	img.mu.Lock()
	defer img.mu.Unlock()
	img.data = nil
}

// PNGRenderer draws charts with go-chart.
type PNGRenderer struct {
	Width  int
	Height int
}

var _ Renderer = (*PNGRenderer)(nil)

// NewPNGRenderer creates a renderer producing images of the given size. Zero
// values fall back to the defaults.
func NewPNGRenderer(width, height int) *PNGRenderer {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	return &PNGRenderer{Width: width, Height: height}
}

// Render draws d into a new Image.
func (r *PNGRenderer) Render(d Descriptor) (Instance, error) {
	var buf bytes.Buffer
	var err error

	switch d.Kind {
	case KindScatter:
		err = r.renderScatter(d, &buf)
	case KindHistogram:
		err = r.renderHistogram(d, &buf)
	case KindDonut:
		err = r.renderDonut(d, &buf)
	default:
		return nil, fmt.Errorf("unknown chart kind %q", d.Kind)
	}
	if err != nil {
		return nil, err
	}

	return &Image{id: d.ID, kind: d.Kind, data: buf.Bytes()}, nil
}

// pointStyle returns a style that renders points only (no connecting line)
func pointStyle(col drawing.Color) gochart.Style {
	return gochart.Style{
		StrokeWidth: gochart.Disabled,
		DotWidth:    5,
		DotColor:    col.WithAlpha(128),
	}
}

func (r *PNGRenderer) renderScatter(d Descriptor, buf *bytes.Buffer) error {
	var series []gochart.Series
	var xs, ys []float64

	for _, cat := range analytics.Categories {
		points := d.Series.Get(cat)
		if len(points) == 0 {
			continue
		}
		s := gochart.ContinuousSeries{
			Name:  string(cat),
			Style: pointStyle(categoryColors[cat]),
		}
		for _, p := range points {
			s.XValues = append(s.XValues, p.X)
			s.YValues = append(s.YValues, p.Y)
		}
		xs = append(xs, s.XValues...)
		ys = append(ys, s.YValues...)
		series = append(series, s)
	}
	if len(series) == 0 {
		return ErrNoData
	}

	xAxis := gochart.XAxis{Name: d.Axes.X, Range: paddedRange(xs)}
	if d.Axes.TimeX {
		xAxis.ValueFormatter = func(v interface{}) string {
			if f, ok := v.(float64); ok {
				return time.UnixMilli(int64(f)).UTC().Format("Jan 02")
			}
			return ""
		}
	}

	yAxis := gochart.YAxis{Name: d.Axes.Y, Range: paddedRange(ys)}
	if d.Axes.Y == "" {
		yAxis.Style = gochart.Style{Hidden: true}
	}

	ch := gochart.Chart{
		Title:      d.Title,
		Width:      r.Width,
		Height:     r.Height,
		Background: gochart.Style{Padding: gochart.Box{Top: 20, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      xAxis,
		YAxis:      yAxis,
		Series:     series,
	}
	ch.Elements = []gochart.Renderable{gochart.Legend(&ch)}

	return ch.Render(gochart.PNG, buf)
}

func (r *PNGRenderer) renderHistogram(d Descriptor, buf *bytes.Buffer) error {
	if len(d.Bins) == 0 {
		return ErrNoData
	}

	bars := make([]gochart.Value, len(d.Bins))
	maxCount := 0
	for i, b := range d.Bins {
		bars[i] = gochart.Value{Value: float64(b.Count), Label: b.Label}
		maxCount = max(maxCount, b.Count)
	}

	barWidth := max(r.Width/(len(bars)*2), 8)

	ch := gochart.BarChart{
		Title:    d.Title,
		Width:    r.Width,
		Height:   r.Height,
		BarWidth: barWidth,
		Background: gochart.Style{
			Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16},
		},
		YAxis: gochart.YAxis{
			Range: &gochart.ContinuousRange{Min: 0, Max: float64(maxCount) + 1},
		},
		Bars: bars,
	}

	return ch.Render(gochart.PNG, buf)
}

func (r *PNGRenderer) renderDonut(d Descriptor, buf *bytes.Buffer) error {
	var values []gochart.Value
	for _, cat := range analytics.Categories {
		n := d.Counts.Get(cat)
		if n == 0 {
			continue
		}
		col := categoryColors[cat]
		values = append(values, gochart.Value{
			Value: float64(n),
			Label: fmt.Sprintf("%s (%d)", cat, n),
			Style: gochart.Style{FillColor: col, StrokeColor: col, StrokeWidth: 2},
		})
	}
	if len(values) == 0 {
		return ErrNoData
	}

	ch := gochart.DonutChart{
		Title:  d.Title,
		Width:  r.Height,
		Height: r.Height,
		Values: values,
	}

	return ch.Render(gochart.PNG, buf)
}

// paddedRange spans vals with a 5% margin. A single distinct value gets a
// margin of 1 so the range is never empty.
func paddedRange(vals []float64) *gochart.ContinuousRange {
	lo, hi := slices.Min(vals), slices.Max(vals)
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = 1
	}
	return &gochart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}
