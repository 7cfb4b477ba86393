package export

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	ErrNoData        = errors.New("nothing to export")
	ErrUnknownFormat = errors.New("unknown export format")
)

type Format string

const (
	SVG Format = "svg"
	PNG Format = "png"
)

func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case SVG:
		return SVG, nil
	case PNG:
		return PNG, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

func (f Format) ContentType() string {
	if f == PNG {
		return "image/png"
	}
	return "image/svg+xml;charset=utf-8"
}

func (f Format) renderer() chart.RendererProvider {
	if f == PNG {
		return chart.PNG
	}
	return chart.SVG
}

// Filename names the download for a view, e.g. "temporal-trend.png".
func Filename(view string, f Format) string {
	return view + "." + string(f)
}

// Options sizes the export; PNG output is multiplied by Scale.
type Options struct {
	Width  int
	Height int
	Scale  int
}

func DefaultOptions() Options {
	return Options{Width: 960, Height: 540, Scale: 2}
}

func (o Options) size(f Format) (int, int) {
	w, h := o.Width, o.Height
	if w <= 0 || h <= 0 {
		d := DefaultOptions()
		w, h = d.Width, d.Height
	}
	if f == PNG && o.Scale > 1 {
		w, h = w*o.Scale, h*o.Scale
	}
	return w, h
}

var background = chart.Style{
	FillColor: chart.ColorWhite,
	Padding:   chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16},
}

type Bar struct {
	Label string
	Value float64
}

// Bars renders a single-series bar chart.
func Bars(w io.Writer, f Format, title string, bars []Bar, o Options) error {
	top := 0.0
	values := make([]chart.Value, 0, len(bars))
	for _, b := range bars {
		top = math.Max(top, b.Value)
		values = append(values, chart.Value{Label: b.Label, Value: b.Value})
	}
	if top <= 0 {
		return ErrNoData
	}
	width, height := o.size(f)
	bc := chart.BarChart{
		Title:      title,
		Width:      width,
		Height:     height,
		Background: background,
		BarWidth:   barWidth(width, len(values)),
		YAxis: chart.YAxis{
			Range:          &chart.ContinuousRange{Min: 0, Max: top * 1.1},
			ValueFormatter: numberFormatter,
		},
		Bars: values,
	}
	return bc.Render(f.renderer(), w)
}

type Stack struct {
	Name  string
	Parts []Bar
}

// Stacked renders one 100% bar per stack; stacks with nothing in them are left out.
func Stacked(w io.Writer, f Format, title string, stacks []Stack, o Options) error {
	bars := make([]chart.StackedBar, 0, len(stacks))
	for _, s := range stacks {
		var total float64
		values := make([]chart.Value, 0, len(s.Parts))
		for _, p := range s.Parts {
			if p.Value <= 0 {
				continue
			}
			total += p.Value
			values = append(values, chart.Value{Label: p.Label, Value: p.Value})
		}
		if total == 0 {
			continue
		}
		bars = append(bars, chart.StackedBar{Name: s.Name, Values: values})
	}
	if len(bars) == 0 {
		return ErrNoData
	}
	width, height := o.size(f)
	sbc := chart.StackedBarChart{
		Title:      title,
		Width:      width,
		Height:     height,
		Background: background,
		BarSpacing: 40,
		Bars:       bars,
	}
	return sbc.Render(f.renderer(), w)
}

type Series struct {
	Name   string
	Values []float64
}

// Trend renders line series over shared x values. A single point is widened
// into a flat segment so the axis has a range.
func Trend(w io.Writer, f Format, title string, xs []float64, series []Series, o Options) error {
	if len(xs) == 0 || len(series) == 0 {
		return ErrNoData
	}
	top := 0.0
	out := make([]chart.Series, 0, len(series))
	for _, s := range series {
		if len(s.Values) != len(xs) {
			return fmt.Errorf("series %q has %d values for %d x values", s.Name, len(s.Values), len(xs))
		}
		x, y := xs, s.Values
		if len(xs) == 1 {
			x = []float64{xs[0] - 0.5, xs[0] + 0.5}
			y = []float64{s.Values[0], s.Values[0]}
		}
		for _, v := range y {
			top = math.Max(top, v)
		}
		out = append(out, chart.ContinuousSeries{Name: s.Name, XValues: x, YValues: y})
	}
	if top <= 0 {
		return ErrNoData
	}
	width, height := o.size(f)
	ch := chart.Chart{
		Title:      title,
		Width:      width,
		Height:     height,
		Background: background,
		YAxis: chart.YAxis{
			Range:          &chart.ContinuousRange{Min: 0, Max: top * 1.1},
			ValueFormatter: numberFormatter,
		},
		Series: out,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	return ch.Render(f.renderer(), w)
}

func barWidth(width, n int) int {
	if n == 0 {
		return 0
	}
	bw := width / (n * 2)
	if bw > 80 {
		bw = 80
	}
	if bw < 8 {
		bw = 8
	}
	return bw
}

// numberFormatter prints whole numbers with thousands separators and
// fractions to two places.
func numberFormatter(v interface{}) string {
	p := message.NewPrinter(language.English)
	f, ok := v.(float64)
	if !ok {
		return fmt.Sprint(v)
	}
	if f == math.Trunc(f) {
		return p.Sprintf("%d", int64(f))
	}
	return p.Sprintf("%.2f", f)
}
