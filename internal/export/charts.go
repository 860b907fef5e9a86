package export

import (
	"bufio"
	"fmt"
	"html"
	"io"
	"math"
	"os"
	"path/filepath"

	svg "github.com/ajstarks/svgo"

	"github.com/tyler180/fantasy-market-share/internal/marketshare"
)

// Chart file names.
const (
	RecShareByWeekSVG         = "rec_share_by_week.svg"
	RecShareByWeekPositionSVG = "rec_share_by_week_position.svg"
	RecShareMaxByPositionSVG  = "rec_share_max_by_week_position.svg"
	TopRBShareSVG             = "rb_share_top_rbs.svg"
)

var palette = []string{"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd", "#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf"}

// LineChart is one set of week-indexed lines drawn on shared axes.
type LineChart struct {
	Title  string
	YLabel string
	Series []marketshare.Series
}

// vmap maps value from [low1, high1] onto [low2, high2].
func vmap(value, low1, high1, low2, high2 float64) float64 {
	if high1 == low1 {
		return (low2 + high2) / 2
	}
	return low2 + (high2-low2)*(value-low1)/(high1-low1)
}

// bounds returns the week range and a y ceiling rounded up to the next tenth.
func bounds(series []marketshare.Series) (wmin, wmax int, ymax float64) {
	wmin, wmax, ymax = math.MaxInt, math.MinInt, 0.1
	for _, s := range series {
		for _, p := range s.Points {
			wmin = min(wmin, p.Week)
			wmax = max(wmax, p.Week)
			ymax = math.Max(ymax, p.Value)
		}
	}
	if wmin > wmax {
		wmin, wmax = 1, 17
	}
	return wmin, wmax, math.Ceil(ymax*10) / 10
}

type frame struct {
	x, y, w, h int
	wmin, wmax int
	ymax       float64
}

func (f frame) px(week int) int { return int(vmap(float64(week), float64(f.wmin), float64(f.wmax), float64(f.x), float64(f.x+f.w))) }

func (f frame) py(v float64) int { return int(vmap(v, 0, f.ymax, float64(f.y+f.h), float64(f.y))) }

func (f frame) axes(canvas *svg.SVG, ticks bool) {
	canvas.Rect(f.x, f.y, f.w, f.h, "fill:none;stroke:#999;stroke-width:1")
	for i := 1; i < 5; i++ {
		y := f.y + f.h*i/5
		canvas.Line(f.x, y, f.x+f.w, y, "stroke:#ddd;stroke-width:1")
	}
	if !ticks {
		return
	}
	for w := f.wmin; w <= f.wmax; w++ {
		canvas.Text(f.px(w), f.y+f.h+18, fmt.Sprint(w), "text-anchor:middle;font-size:11px;fill:#555")
	}
	for i := 0; i <= 5; i++ {
		v := f.ymax * float64(i) / 5
		canvas.Text(f.x-6, f.py(v)+4, fmt.Sprintf("%.2f", v), "text-anchor:end;font-size:11px;fill:#555")
	}
}

func (f frame) line(canvas *svg.SVG, s marketshare.Series, color string) {
	canvas.Group(`class="series"`, fmt.Sprintf(`data-label="%s"`, html.EscapeString(s.Label)))
	xs := make([]int, len(s.Points))
	ys := make([]int, len(s.Points))
	for i, p := range s.Points {
		xs[i], ys[i] = f.px(p.Week), f.py(p.Value)
	}
	if len(xs) > 1 {
		canvas.Polyline(xs, ys, "fill:none;stroke-width:2;stroke:"+color)
	}
	for i := range xs {
		canvas.Circle(xs[i], ys[i], 3, "fill:"+color)
	}
	canvas.Gend()
}

// RenderLineChart draws c as a single panel with a legend.
func RenderLineChart(w io.Writer, c LineChart) {
	const width, height = 900, 540
	wmin, wmax, ymax := bounds(c.Series)
	f := frame{x: 70, y: 60, w: 660, h: 400, wmin: wmin, wmax: wmax, ymax: ymax}

	canvas := svg.New(w)
	canvas.Start(width, height)
	canvas.Title(c.Title)
	canvas.Rect(0, 0, width, height, "fill:white")
	canvas.Gstyle("font-family:Helvetica,Arial,sans-serif")
	canvas.Text(width/2, 32, c.Title, "text-anchor:middle;font-size:20px")
	f.axes(canvas, true)
	canvas.Text(f.x+f.w/2, height-20, "week", "text-anchor:middle;font-size:13px")
	canvas.Text(18, f.y+f.h/2, c.YLabel, "text-anchor:middle;font-size:13px;writing-mode:tb")

	for i, s := range c.Series {
		color := palette[i%len(palette)]
		f.line(canvas, s, color)
		ly := f.y + 10 + i*20
		canvas.Line(f.x+f.w+20, ly, f.x+f.w+40, ly, "stroke-width:3;stroke:"+color)
		canvas.Text(f.x+f.w+46, ly+4, s.Label, "font-size:12px")
	}
	canvas.Gend()
	canvas.End()
}

// RenderFacets draws one small panel per series on a shared y scale, five
// panels per row.
func RenderFacets(w io.Writer, title string, series []marketshare.Series) {
	const cols, pw, ph, pad, top = 5, 220, 150, 40, 60
	rows := (len(series) + cols - 1) / cols
	width := cols*(pw+pad) + pad
	height := top + max(rows, 1)*(ph+pad) + pad
	wmin, wmax, ymax := bounds(series)

	canvas := svg.New(w)
	canvas.Start(width, height)
	canvas.Title(title)
	canvas.Rect(0, 0, width, height, "fill:white")
	canvas.Gstyle("font-family:Helvetica,Arial,sans-serif")
	canvas.Text(width/2, 32, title, "text-anchor:middle;font-size:20px")
	for i, s := range series {
		f := frame{
			x: pad + (i%cols)*(pw+pad), y: top + (i/cols)*(ph+pad), w: pw, h: ph,
			wmin: wmin, wmax: wmax, ymax: ymax,
		}
		canvas.Group(`class="panel"`, fmt.Sprintf(`data-label="%s"`, html.EscapeString(s.Label)))
		f.axes(canvas, false)
		canvas.Text(f.x+f.w/2, f.y-6, s.Label, "text-anchor:middle;font-size:12px")
		f.line(canvas, s, palette[0])
		canvas.Gend()
	}
	canvas.Gend()
	canvas.End()
}

// WriteCharts renders the four report charts into dir.
func WriteCharts(dir string, c marketshare.ChartData) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	charts := []struct {
		name   string
		render func(io.Writer)
	}{
		{RecShareByWeekSVG, func(w io.Writer) {
			RenderLineChart(w, LineChart{Title: "Receiving market share by week", YLabel: "mean rec_market_share", Series: []marketshare.Series{c.RecWeekly}})
		}},
		{RecShareByWeekPositionSVG, func(w io.Writer) {
			RenderLineChart(w, LineChart{Title: "Receiving market share by week and position", YLabel: "mean rec_market_share", Series: c.RecWeeklyByPosition})
		}},
		{RecShareMaxByPositionSVG, func(w io.Writer) {
			RenderLineChart(w, LineChart{Title: "Max receiving market share by week and position", YLabel: "max rec_market_share", Series: c.RecWeeklyMaxByPosition})
		}},
		{TopRBShareSVG, func(w io.Writer) {
			RenderFacets(w, fmt.Sprintf("Weekly market share, top %d running backs", len(c.TopRBWeekly)), c.TopRBWeekly)
		}},
	}

	paths := make([]string, 0, len(charts))
	for _, ch := range charts {
		p := filepath.Join(dir, ch.name)
		f, err := os.Create(p)
		if err != nil {
			return paths, fmt.Errorf("create %s: %w", p, err)
		}
		bw := bufio.NewWriter(f)
		ch.render(bw)
		if err := bw.Flush(); err != nil {
			_ = f.Close()
			return paths, fmt.Errorf("write %s: %w", p, err)
		}
		if err := f.Close(); err != nil {
			return paths, fmt.Errorf("close %s: %w", p, err)
		}
		paths = append(paths, p)
	}
	return paths, nil
}
