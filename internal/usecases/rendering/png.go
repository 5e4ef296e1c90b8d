package rendering

import (
	"bytes"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/vfg2006/covid-insights/pkg/utils"
)

const (
	marginLeft   = 100.0
	marginRight  = 190.0
	marginTop    = 70.0
	marginBottom = 100.0
	yTickCount   = 5
	xTickCount   = 7
)

type plotArea struct {
	x0, y0, x1, y1 float64
}

func (a plotArea) width() float64  { return a.x1 - a.x0 }
func (a plotArea) height() float64 { return a.y1 - a.y0 }

type yScale struct {
	min, max float64
	log      bool
}

func (s yScale) transform(v float64) float64 {
	if s.log {
		return math.Log10(v)
	}
	return v
}

// project converte o valor para a coordenada vertical da área
func (s yScale) project(v float64, area plotArea) float64 {
	lo, hi := s.transform(s.min), s.transform(s.max)
	if hi == lo {
		return area.y1 - area.height()/2
	}
	return area.y1 - (s.transform(v)-lo)/(hi-lo)*area.height()
}

// ticks devolve os valores das marcações do eixo Y
func (s yScale) ticks() []float64 {
	if s.log {
		ticks := make([]float64, 0)
		for e := floorDecade(s.min); e <= ceilDecade(s.max); e++ {
			ticks = append(ticks, math.Pow(10, e))
		}
		return ticks
	}

	step := niceStep((s.max - s.min) / yTickCount)
	ticks := make([]float64, 0, yTickCount+1)
	for v := s.min; v <= s.max+step/2; v += step {
		ticks = append(ticks, v)
	}
	return ticks
}

// floorDecade e ceilDecade toleram o erro de arredondamento de Log10
func floorDecade(v float64) float64 {
	return math.Floor(math.Log10(v) + 1e-9)
}

func ceilDecade(v float64) float64 {
	return math.Ceil(math.Log10(v) - 1e-9)
}

func niceStep(raw float64) float64 {
	if raw <= 0 {
		return 1
	}
	exp := math.Pow(10, math.Floor(math.Log10(raw)))
	for _, m := range []float64{1, 2, 2.5, 5, 10} {
		if raw <= m*exp {
			return m * exp
		}
	}
	return 10 * exp
}

func newYScale(values []float64, logScale bool) yScale {
	min, max := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if logScale && v <= 0 {
			continue
		}
		min = math.Min(min, v)
		max = math.Max(max, v)
	}

	if logScale {
		if math.IsInf(min, 1) {
			return yScale{min: 1, max: 10, log: true}
		}
		// Arredonda para as décadas inteiras
		return yScale{
			min: math.Pow(10, floorDecade(min)),
			max: math.Pow(10, ceilDecade(max)),
			log: true,
		}
	}

	if min > 0 {
		min = 0
	}
	if max <= min {
		max = min + 1
	}
	step := niceStep((max - min) / yTickCount)
	return yScale{min: min, max: math.Ceil(max/step) * step}
}

func formatTick(v float64, percent bool) string {
	if percent {
		return fmt.Sprintf("%.0f%%", v)
	}
	return utils.FormatShortNotation(v)
}

type canvas struct {
	dc      *gg.Context
	regular font.Face
	bold    font.Face
	small   font.Face
	width   int
	height  int
	area    plotArea
	percent bool
}

func newCanvas(width, height int, percent bool) (*canvas, error) {
	regular, err := loadFont(goregular.TTF, 14)
	if err != nil {
		return nil, fmt.Errorf("failed to load font: %w", err)
	}
	bold, err := loadFont(gobold.TTF, 22)
	if err != nil {
		return nil, fmt.Errorf("failed to load font: %w", err)
	}
	small, err := loadFont(goregular.TTF, 12)
	if err != nil {
		return nil, fmt.Errorf("failed to load font: %w", err)
	}

	dc := gg.NewContext(width, height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	return &canvas{
		dc:      dc,
		regular: regular,
		bold:    bold,
		small:   small,
		width:   width,
		height:  height,
		area: plotArea{
			x0: marginLeft,
			y0: marginTop,
			x1: float64(width) - marginRight,
			y1: float64(height) - marginBottom,
		},
		percent: percent,
	}, nil
}

func (c *canvas) drawTitle(title, yLabel string) {
	c.dc.SetFontFace(c.bold)
	c.dc.SetRGB(0.1, 0.1, 0.15)
	c.dc.DrawStringAnchored(title, float64(c.width)/2, marginTop/2, 0.5, 0.5)

	c.dc.SetFontFace(c.regular)
	c.dc.Push()
	c.dc.RotateAbout(gg.Radians(-90), 24, c.area.y0+c.area.height()/2)
	c.dc.DrawStringAnchored(yLabel, 24, c.area.y0+c.area.height()/2, 0.5, 0.5)
	c.dc.Pop()
}

// drawYAxis desenha a grade horizontal e os rótulos do eixo Y
func (c *canvas) drawYAxis(scale yScale) {
	c.dc.SetFontFace(c.small)
	for _, tick := range scale.ticks() {
		y := scale.project(tick, c.area)

		c.dc.SetRGBA(0, 0, 0, 0.12)
		c.dc.SetLineWidth(1)
		c.dc.DrawLine(c.area.x0, y, c.area.x1, y)
		c.dc.Stroke()

		c.dc.SetRGB(0.25, 0.25, 0.3)
		c.dc.DrawStringAnchored(formatTick(tick, c.percent), c.area.x0-10, y, 1, 0.5)
	}

	c.dc.SetRGB(0.3, 0.3, 0.35)
	c.dc.SetLineWidth(1.5)
	c.dc.DrawLine(c.area.x0, c.area.y0, c.area.x0, c.area.y1)
	c.dc.DrawLine(c.area.x0, c.area.y1, c.area.x1, c.area.y1)
	c.dc.Stroke()
}

// drawRotatedLabel escreve o rótulo inclinado abaixo do eixo X
func (c *canvas) drawRotatedLabel(text string, x float64) {
	y := c.area.y1 + 12
	c.dc.Push()
	c.dc.RotateAbout(gg.Radians(-40), x, y)
	c.dc.DrawStringAnchored(text, x, y, 1, 0.5)
	c.dc.Pop()
}

func (c *canvas) drawLegend(lines []lineSeries) {
	c.dc.SetFontFace(c.regular)
	x := c.area.x1 + 20
	y := c.area.y0 + 10
	for _, line := range lines {
		c.dc.SetHexColor(line.Color)
		c.dc.DrawRectangle(x, y-6, 14, 12)
		c.dc.Fill()

		c.dc.SetRGB(0.15, 0.15, 0.2)
		drawSharpText(c.dc, line.Name, x+22, y+5)
		y += 24
	}
}

func (c *canvas) encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := c.dc.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// drawLineChart desenha uma linha por país ao longo do tempo. Pontos
// indefinidos interrompem a linha.
func drawLineChart(lines []lineSeries, req ChartRequest, width, height int) ([]byte, error) {
	c, err := newCanvas(width, height, req.Percent)
	if err != nil {
		return nil, err
	}

	var values []float64
	var firstDay, lastDay time.Time
	for _, line := range lines {
		for _, p := range line.Points {
			if !p.Defined || (req.LogScale && p.Value <= 0) {
				continue
			}
			values = append(values, p.Value)
			if firstDay.IsZero() || p.Date.Before(firstDay) {
				firstDay = p.Date
			}
			if p.Date.After(lastDay) {
				lastDay = p.Date
			}
		}
	}

	scale := newYScale(values, req.LogScale)
	span := lastDay.Sub(firstDay).Hours()
	projectX := func(t time.Time) float64 {
		if span == 0 {
			return c.area.x0 + c.area.width()/2
		}
		return c.area.x0 + t.Sub(firstDay).Hours()/span*c.area.width()
	}

	yLabel := req.YLabel
	if req.LogScale {
		yLabel += " (log)"
	}
	c.drawTitle(req.Title, yLabel)
	c.drawYAxis(scale)

	c.dc.SetFontFace(c.small)
	c.dc.SetRGB(0.25, 0.25, 0.3)
	for i := 0; i < xTickCount; i++ {
		tick := firstDay
		if span > 0 {
			tick = firstDay.Add(time.Duration(float64(i) / float64(xTickCount-1) * span * float64(time.Hour)))
		}
		x := projectX(tick)
		c.dc.DrawLine(x, c.area.y1, x, c.area.y1+5)
		c.dc.Stroke()
		c.drawRotatedLabel(tick.Format(time.DateOnly), x)
		if span == 0 {
			break
		}
	}

	for _, line := range lines {
		c.dc.SetHexColor(line.Color)
		c.dc.SetLineWidth(2)
		drawing := false
		for _, p := range line.Points {
			if !p.Defined || (req.LogScale && p.Value <= 0) {
				drawing = false
				continue
			}
			x, y := projectX(p.Date), scale.project(p.Value, c.area)
			if !drawing {
				c.dc.NewSubPath()
				c.dc.MoveTo(x, y)
				drawing = true
				continue
			}
			c.dc.LineTo(x, y)
		}
		c.dc.Stroke()
	}

	c.drawLegend(lines)
	return c.encode()
}

// drawBarChart desenha uma barra por país, do maior para o menor valor
func drawBarChart(bars []barValue, req ChartRequest, width, height int) ([]byte, error) {
	c, err := newCanvas(width, height, req.Percent)
	if err != nil {
		return nil, err
	}

	sorted := make([]barValue, len(bars))
	copy(sorted, bars)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Value > sorted[j].Value
	})

	values := make([]float64, len(sorted))
	for i, b := range sorted {
		values[i] = b.Value
	}
	scale := newYScale(values, false)

	c.drawTitle(req.Title, req.YLabel)
	c.drawYAxis(scale)

	slot := c.area.width() / float64(len(sorted))
	barWidth := slot * 0.6
	for i, bar := range sorted {
		x := c.area.x0 + slot*float64(i) + (slot-barWidth)/2
		top := scale.project(bar.Value, c.area)

		c.dc.SetHexColor(defaultColors[i%len(defaultColors)])
		c.dc.DrawRectangle(x, top, barWidth, c.area.y1-top)
		c.dc.Fill()

		c.dc.SetFontFace(c.small)
		c.dc.SetRGB(0.15, 0.15, 0.2)
		label := formatTick(bar.Value, false)
		if req.Percent {
			label = fmt.Sprintf("%.2f%%", bar.Value)
		}
		c.dc.DrawStringAnchored(label, x+barWidth/2, top-8, 0.5, 0)
		c.drawRotatedLabel(bar.Label, x+barWidth/2)
	}

	return c.encode()
}

// drawSharpText desenha o texto com uma sombra leve para ganhar nitidez
func drawSharpText(dc *gg.Context, text string, x, y float64) {
	dc.Push()
	dc.SetRGBA(0, 0, 0, 0.25)
	dc.DrawString(text, x+0.5, y+0.5)
	dc.Pop()

	dc.DrawString(text, x, y)
}

func loadFont(fontData []byte, size float64) (font.Face, error) {
	f, err := truetype.Parse(fontData)
	if err != nil {
		return nil, err
	}
	face := truetype.NewFace(f, &truetype.Options{
		Size:       size,
		DPI:        72,
		Hinting:    font.HintingFull,
		SubPixelsX: 4,
		SubPixelsY: 4,
	})
	return face, nil
}
