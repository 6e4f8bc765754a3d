// Package charts renders dashboard projections as PNG images.
package charts

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"sort"
	"strings"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/i474232898/air-quality-dashboard/internal/airquality"
)

// Chart names accepted by Render.
const (
	Pie        = "pie"
	Line       = "line"
	Scatter    = "scatter"
	StackedBar = "stacked-bar"
	Wind       = "wind"
)

// Names lists every chart, in dashboard order.
func Names() []string {
	return []string{Pie, Line, Scatter, StackedBar, Wind}
}

// Qualitative palette for categories and stations (Set3).
var set3 = []drawing.Color{
	drawing.ColorFromHex("8dd3c7"),
	drawing.ColorFromHex("ffffb3"),
	drawing.ColorFromHex("bebada"),
	drawing.ColorFromHex("fb8072"),
	drawing.ColorFromHex("80b1d3"),
	drawing.ColorFromHex("fdb462"),
	drawing.ColorFromHex("b3de69"),
	drawing.ColorFromHex("fccde5"),
	drawing.ColorFromHex("d9d9d9"),
	drawing.ColorFromHex("bc80bd"),
	drawing.ColorFromHex("ccebc5"),
	drawing.ColorFromHex("ffed6f"),
}

// Sequential palette for the wind chart, light to dark by severity.
var blues = []drawing.Color{
	drawing.ColorFromHex("deebf7"),
	drawing.ColorFromHex("c6dbef"),
	drawing.ColorFromHex("9ecae1"),
	drawing.ColorFromHex("6baed6"),
	drawing.ColorFromHex("3182bd"),
	drawing.ColorFromHex("08519c"),
	drawing.ColorFromHex("08306b"),
}

// Line colors for per-station series.
var stationColors = []drawing.Color{
	drawing.ColorFromHex("636efa"),
	drawing.ColorFromHex("ef553b"),
	drawing.ColorFromHex("00cc96"),
	drawing.ColorFromHex("ab63fa"),
	drawing.ColorFromHex("ffa15a"),
	drawing.ColorFromHex("19d3f3"),
	drawing.ColorFromHex("ff6692"),
	drawing.ColorFromHex("b6e880"),
	drawing.ColorFromHex("ff97ff"),
	drawing.ColorFromHex("fecb52"),
	drawing.ColorFromHex("1f77b4"),
	drawing.ColorFromHex("8c564b"),
}

func pick(palette []drawing.Color, i int) drawing.Color {
	return palette[i%len(palette)]
}

// Renderer draws charts at a fixed size.
type Renderer struct {
	width  int
	height int
}

func New(width, height int) *Renderer {
	return &Renderer{width: width, height: height}
}

// Render draws the named chart from d into w.
func (r *Renderer) Render(w io.Writer, name string, d airquality.Dashboard) error {
	switch name {
	case Pie:
		return r.Pie(w, d.CategoryShare)
	case Line:
		return r.Line(w, d.Series, d.Options.Parameter, d.Options.Frequency)
	case Scatter:
		return r.Scatter(w, d.Pairwise, d.Options.X, d.Options.Y)
	case StackedBar:
		return r.StackedBar(w, d.StationCategories)
	case Wind:
		return r.WindBar(w, d.WindCategories)
	}
	return fmt.Errorf("unknown chart %q", name)
}

// Pie draws the share of each category.
func (r *Renderer) Pie(w io.Writer, share []airquality.CategoryCount) error {
	var values []chart.Value
	for i, c := range share {
		if c.Count == 0 {
			continue
		}
		values = append(values, chart.Value{
			Value: float64(c.Count),
			Label: fmt.Sprintf("%s %.1f%%", c.Category, c.Share*100),
			Style: chart.Style{FillColor: pick(set3, i)},
		})
	}
	if len(values) == 0 {
		return r.blank(w)
	}

	pie := chart.PieChart{
		Title:  "Air Quality Categories Percentage",
		Width:  r.width,
		Height: r.height,
		Values: values,
	}
	return r.renderOrBlank(w, pie.Render)
}

// Line draws one time series per station.
func (r *Renderer) Line(w io.Writer, points []airquality.SeriesPoint, p airquality.Parameter, f airquality.Frequency) error {
	byStation := make(map[string]*chart.TimeSeries)
	var order []string
	for _, pt := range points {
		if !pt.Mean.Valid {
			continue
		}
		s, ok := byStation[pt.Station]
		if !ok {
			s = &chart.TimeSeries{Name: pt.Station}
			byStation[pt.Station] = s
			order = append(order, pt.Station)
		}
		s.XValues = append(s.XValues, pt.Bucket)
		s.YValues = append(s.YValues, pt.Mean.Value)
	}
	if len(order) == 0 {
		return r.blank(w)
	}

	series := make([]chart.Series, 0, len(order))
	for i, name := range order {
		s := byStation[name]
		// go-chart needs two X values to compute a range.
		if len(s.XValues) == 1 {
			s.XValues = append(s.XValues, s.XValues[0].Add(time.Second))
			s.YValues = append(s.YValues, s.YValues[0])
		}
		s.Style = chart.Style{StrokeColor: pick(stationColors, i), StrokeWidth: 1.5}
		series = append(series, *s)
	}

	c := chart.Chart{
		Title:  fmt.Sprintf("%s %s Levels by Station Over Time", p, title(f)),
		Width:  r.width,
		Height: r.height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16},
		},
		XAxis:  chart.XAxis{Name: "datetime", ValueFormatter: chart.TimeDateValueFormatter},
		YAxis:  chart.YAxis{Name: string(p)},
		Series: series,
	}
	c.Elements = []chart.Renderable{chart.LegendLeft(&c)}
	return r.renderOrBlank(w, c.Render)
}

// Scatter draws x against y, one point series per station.
func (r *Renderer) Scatter(w io.Writer, points []airquality.PairPoint, x, y airquality.Parameter) error {
	byStation := make(map[string]*chart.ContinuousSeries)
	var order []string
	for _, pt := range points {
		if !pt.X.Valid || !pt.Y.Valid {
			continue
		}
		s, ok := byStation[pt.Station]
		if !ok {
			s = &chart.ContinuousSeries{Name: pt.Station}
			byStation[pt.Station] = s
			order = append(order, pt.Station)
		}
		s.XValues = append(s.XValues, pt.X.Value)
		s.YValues = append(s.YValues, pt.Y.Value)
	}
	if len(order) == 0 {
		return r.blank(w)
	}

	series := make([]chart.Series, 0, len(order))
	for i, name := range order {
		s := byStation[name]
		if len(s.XValues) == 1 {
			s.XValues = append(s.XValues, s.XValues[0]+1)
			s.YValues = append(s.YValues, s.YValues[0])
		}
		s.Style = pointStyle(pick(stationColors, i))
		series = append(series, *s)
	}

	c := chart.Chart{
		Title:  fmt.Sprintf("%s vs. %s Correlation", x, y),
		Width:  r.width,
		Height: r.height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16},
		},
		XAxis:  chart.XAxis{Name: string(x)},
		YAxis:  chart.YAxis{Name: string(y)},
		Series: series,
	}
	c.Elements = []chart.Renderable{chart.LegendLeft(&c)}
	return r.renderOrBlank(w, c.Render)
}

// pointStyle renders points only, without connecting lines.
func pointStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: chart.Disabled,
		DotWidth:    3,
		DotColor:    col,
	}
}

// StackedBar draws one bar per station stacked by category.
func (r *Renderer) StackedBar(w io.Writer, p airquality.Pivot) error {
	var bars []chart.StackedBar
	for i, station := range p.Stations {
		var values []chart.Value
		for j, category := range p.Categories {
			n := p.Counts[i][j]
			if n == 0 {
				continue
			}
			values = append(values, chart.Value{
				Value: float64(n),
				Label: category,
				Style: chart.Style{FillColor: pick(set3, j), StrokeColor: drawing.ColorWhite},
			})
		}
		if len(values) == 0 {
			continue
		}
		bars = append(bars, chart.StackedBar{Name: station, Values: values})
	}
	return r.stacked(w, "Air Quality by Station", bars)
}

// WindBar draws one bar per wind direction stacked by category. go-chart has no
// polar projection, so the rose is unrolled along the X axis.
func (r *Renderer) WindBar(w io.Writer, counts []airquality.WindCount) error {
	byDirection := make(map[string][]chart.Value)
	for _, wc := range counts {
		if wc.Count == 0 {
			continue
		}
		byDirection[wc.WindDirection] = append(byDirection[wc.WindDirection], chart.Value{
			Value: float64(wc.Count),
			Label: wc.Category,
			Style: chart.Style{FillColor: pick(blues, wc.Rank), StrokeColor: drawing.ColorWhite},
		})
	}

	directions := make([]string, 0, len(byDirection))
	for d := range byDirection {
		directions = append(directions, d)
	}
	sort.Slice(directions, func(i, j int) bool {
		return compassIndex(directions[i]) < compassIndex(directions[j])
	})

	bars := make([]chart.StackedBar, 0, len(directions))
	for _, d := range directions {
		bars = append(bars, chart.StackedBar{Name: d, Values: byDirection[d]})
	}
	return r.stacked(w, "Air Quality by Wind Direction", bars)
}

func (r *Renderer) stacked(w io.Writer, titleText string, bars []chart.StackedBar) error {
	if len(bars) == 0 {
		return r.blank(w)
	}
	c := chart.StackedBarChart{
		Title:      titleText,
		Width:      r.width,
		Height:     r.height,
		BarSpacing: 8,
		Background: chart.Style{
			Padding: chart.Box{Top: 40},
		},
		Bars: bars,
	}
	return r.renderOrBlank(w, c.Render)
}

var compass = []string{"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE", "S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW"}

// compassIndex orders sectors clockwise from north; unknown labels sort last.
func compassIndex(d string) int {
	for i, c := range compass {
		if c == d {
			return i
		}
	}
	return len(compass)
}

func title(f airquality.Frequency) string {
	s := string(f)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// renderOrBlank renders into a buffer and falls back to a blank image when go-chart
// rejects the data, e.g. a series whose values span a zero range.
func (r *Renderer) renderOrBlank(w io.Writer, render func(chart.RendererProvider, io.Writer) error) error {
	var buf bytes.Buffer
	if err := render(chart.PNG, &buf); err != nil {
		return r.blank(w)
	}
	_, err := buf.WriteTo(w)
	return err
}

// blank writes an empty white image; go-chart refuses to render without data.
func (r *Renderer) blank(w io.Writer) error {
	img := image.NewRGBA(image.Rect(0, 0, r.width, r.height))
	for y := 0; y < r.height; y++ {
		for x := 0; x < r.width; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 255, G: 255, B: 255, A: 255})
		}
	}
	return png.Encode(w, img)
}
