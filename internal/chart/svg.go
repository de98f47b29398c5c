// Package chart renders aggregation results as standalone SVG charts.
package chart

import (
	"fmt"
	"html"
	"math"
	"strings"

	"github.com/KaramelBytes/cord19-explorer/internal/aggregate"
	"github.com/KaramelBytes/cord19-explorer/internal/utils"
)

// Palette used across charts.
const (
	ColorYears    = "#2E86AB"
	ColorJournals = "#A23B72"
	ColorSources  = "#F18F01"
	ColorWords    = "#C73E1D"
)

// Size is a chart's outer dimensions in pixels.
type Size struct {
	W, H int
}

// DefaultSize fits one dashboard panel.
var DefaultSize = Size{W: 560, H: 320}

const (
	marginTop    = 36
	marginRight  = 20
	marginBottom = 48
	labelChars   = 28
)

// Point is one x/y sample of a line chart.
type Point struct {
	X     float64
	Y     float64
	Label string
}

// Bar is one labelled bar.
type Bar struct {
	Label string
	Value float64
}

// YearPoints converts year counts into line chart points.
func YearPoints(ycs []aggregate.YearCount) []Point {
	out := make([]Point, len(ycs))
	for i, yc := range ycs {
		out[i] = Point{X: float64(yc.Year), Y: float64(yc.Count), Label: fmt.Sprint(yc.Year)}
	}
	return out
}

// CountBars converts top-N counts into bars.
func CountBars(cs []aggregate.Count) []Bar {
	out := make([]Bar, len(cs))
	for i, c := range cs {
		out[i] = Bar{Label: c.Key, Value: float64(c.Count)}
	}
	return out
}

// HistogramBars converts histogram bins into bars labelled by their lower edge.
func HistogramBars(bins []aggregate.Bin) []Bar {
	out := make([]Bar, len(bins))
	for i, b := range bins {
		out[i] = Bar{Label: fmt.Sprintf("%.0f", b.Lo), Value: float64(b.Count)}
	}
	return out
}

// LineChart draws points joined by a line with the area below filled.
func LineChart(title string, pts []Point, color string, sz Size) string {
	var b strings.Builder
	open(&b, sz, title)
	if len(pts) == 0 {
		empty(&b, sz)
		return closeSVG(&b)
	}
	left := 56
	pw := float64(sz.W - left - marginRight)
	ph := float64(sz.H - marginTop - marginBottom)
	xmin, xmax := pts[0].X, pts[0].X
	ymax := 0.0
	for _, p := range pts {
		xmin = math.Min(xmin, p.X)
		xmax = math.Max(xmax, p.X)
		ymax = math.Max(ymax, p.Y)
	}
	if ymax == 0 {
		ymax = 1
	}
	xs := func(x float64) float64 {
		if xmax == xmin {
			return float64(left) + pw/2
		}
		return float64(left) + (x-xmin)/(xmax-xmin)*pw
	}
	ys := func(y float64) float64 { return float64(marginTop) + ph - y/ymax*ph }
	axes(&b, left, sz, ymax)

	var line, area strings.Builder
	fmt.Fprintf(&area, "M%.1f,%.1f ", xs(pts[0].X), ys(0))
	for i, p := range pts {
		cmd := "L"
		if i == 0 {
			cmd = "M"
		}
		fmt.Fprintf(&line, "%s%.1f,%.1f ", cmd, xs(p.X), ys(p.Y))
		fmt.Fprintf(&area, "L%.1f,%.1f ", xs(p.X), ys(p.Y))
	}
	fmt.Fprintf(&area, "L%.1f,%.1f Z", xs(pts[len(pts)-1].X), ys(0))
	fmt.Fprintf(&b, `<path d="%s" fill="%s" fill-opacity="0.3" stroke="none"/>`+"\n", area.String(), color)
	fmt.Fprintf(&b, `<path d="%s" fill="none" stroke="%s" stroke-width="2.5"/>`+"\n", strings.TrimSpace(line.String()), color)
	for _, p := range pts {
		fmt.Fprintf(&b, `<circle cx="%.1f" cy="%.1f" r="4" fill="%s"><title>%s: %g</title></circle>`+"\n",
			xs(p.X), ys(p.Y), color, esc(p.Label), p.Y)
		fmt.Fprintf(&b, `<text x="%.1f" y="%d" font-size="11" text-anchor="middle">%s</text>`+"\n",
			xs(p.X), sz.H-marginBottom+16, esc(p.Label))
	}
	return closeSVG(&b)
}

// HBarChart draws horizontal bars, first bar on top.
func HBarChart(title string, bars []Bar, color string, sz Size) string {
	var b strings.Builder
	open(&b, sz, title)
	if len(bars) == 0 {
		empty(&b, sz)
		return closeSVG(&b)
	}
	left := 190
	pw := float64(sz.W - left - marginRight - 30)
	ph := float64(sz.H - marginTop - 16)
	vmax := maxValue(bars)
	slot := ph / float64(len(bars))
	for i, bar := range bars {
		y := float64(marginTop) + float64(i)*slot
		w := bar.Value / vmax * pw
		fmt.Fprintf(&b, `<rect x="%d" y="%.1f" width="%.1f" height="%.1f" fill="%s"><title>%s: %g</title></rect>`+"\n",
			left, y+slot*0.1, w, slot*0.8, color, esc(bar.Label), bar.Value)
		fmt.Fprintf(&b, `<text x="%d" y="%.1f" font-size="11" text-anchor="end" dominant-baseline="middle">%s</text>`+"\n",
			left-6, y+slot/2, esc(utils.Truncate(bar.Label, labelChars)))
		fmt.Fprintf(&b, `<text x="%.1f" y="%.1f" font-size="11" dominant-baseline="middle">%g</text>`+"\n",
			float64(left)+w+4, y+slot/2, bar.Value)
	}
	return closeSVG(&b)
}

// VBarChart draws vertical bars with rotated labels.
func VBarChart(title string, bars []Bar, color string, sz Size) string {
	return vbars(&strings.Builder{}, title, bars, color, sz, true, 0.8)
}

// Histogram draws adjacent vertical bars.
func Histogram(title string, bars []Bar, color string, sz Size) string {
	return vbars(&strings.Builder{}, title, bars, color, sz, false, 1)
}

func vbars(b *strings.Builder, title string, bars []Bar, color string, sz Size, labels bool, fill float64) string {
	open(b, sz, title)
	if len(bars) == 0 {
		empty(b, sz)
		return closeSVG(b)
	}
	left := 56
	bottom := marginBottom
	if labels {
		bottom = 90
	}
	pw := float64(sz.W - left - marginRight)
	ph := float64(sz.H - marginTop - bottom)
	vmax := maxValue(bars)
	axes(b, left, Size{W: sz.W, H: sz.H - bottom + marginBottom}, vmax)
	slot := pw / float64(len(bars))
	for i, bar := range bars {
		x := float64(left) + float64(i)*slot
		h := bar.Value / vmax * ph
		y := float64(marginTop) + ph - h
		fmt.Fprintf(b, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s" stroke="#333" stroke-width="0.3"><title>%s: %g</title></rect>`+"\n",
			x+slot*(1-fill)/2, y, slot*fill, h, color, esc(bar.Label), bar.Value)
		if labels {
			lx := x + slot/2
			ly := float64(marginTop) + ph + 12
			fmt.Fprintf(b, `<text x="%.1f" y="%.1f" font-size="11" text-anchor="end" transform="rotate(-45 %.1f %.1f)">%s</text>`+"\n",
				lx, ly, lx, ly, esc(utils.Truncate(bar.Label, 18)))
		}
	}
	if !labels && len(bars) > 0 {
		fmt.Fprintf(b, `<text x="%d" y="%d" font-size="11">%s</text>`+"\n", left, sz.H-marginBottom+16, esc(bars[0].Label))
		fmt.Fprintf(b, `<text x="%d" y="%d" font-size="11" text-anchor="end">%s</text>`+"\n", sz.W-marginRight, sz.H-marginBottom+16, esc(bars[len(bars)-1].Label))
	}
	return closeSVG(b)
}

func open(b *strings.Builder, sz Size, title string) {
	fmt.Fprintf(b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="sans-serif">`+"\n",
		sz.W, sz.H, sz.W, sz.H)
	fmt.Fprintf(b, `<rect width="%d" height="%d" fill="white"/>`+"\n", sz.W, sz.H)
	if title != "" {
		fmt.Fprintf(b, `<text x="%d" y="22" font-size="14" font-weight="bold" text-anchor="middle">%s</text>`+"\n", sz.W/2, esc(title))
	}
}

func empty(b *strings.Builder, sz Size) {
	fmt.Fprintf(b, `<text x="%d" y="%d" font-size="12" fill="gray" text-anchor="middle">no data</text>`+"\n", sz.W/2, sz.H/2)
}

func closeSVG(b *strings.Builder) string {
	b.WriteString("</svg>\n")
	return b.String()
}

// axes draws the y axis with a light grid and the x baseline.
func axes(b *strings.Builder, left int, sz Size, ymax float64) {
	top := marginTop
	bottom := sz.H - marginBottom
	ph := float64(bottom - top)
	for i := 0; i <= 4; i++ {
		v := ymax * float64(i) / 4
		y := float64(bottom) - ph*float64(i)/4
		fmt.Fprintf(b, `<line x1="%d" y1="%.1f" x2="%d" y2="%.1f" stroke="#ddd"/>`+"\n", left, y, sz.W-marginRight, y)
		fmt.Fprintf(b, `<text x="%d" y="%.1f" font-size="10" text-anchor="end" dominant-baseline="middle">%s</text>`+"\n", left-4, y, tick(v))
	}
	fmt.Fprintf(b, `<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="#333"/>`+"\n", left, bottom, sz.W-marginRight, bottom)
}

func tick(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.1f", v)
}

func maxValue(bars []Bar) float64 {
	m := 0.0
	for _, b := range bars {
		m = math.Max(m, b.Value)
	}
	if m == 0 {
		return 1
	}
	return m
}

func esc(s string) string { return html.EscapeString(s) }
