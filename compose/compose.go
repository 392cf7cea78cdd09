// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package compose renders content records into panel-sized frames. A frame
// is laid out in landscape (header band on top, body below) and rotated 90
// degrees clockwise as the last step to match the portrait mounting of the
// panel.
package compose

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log/slog"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"

	"infohud/content"
	"infohud/icons"
	"infohud/textfit"
)

// ErrInsufficientForecast is returned when weather mode has fewer than the
// three forecast days the body layout needs. No frame is produced.
var ErrInsufficientForecast = errors.New("compose: fewer than 3 forecast days")

// Layout constants, all pre-rotation.
const (
	defaultWidth  = 600
	defaultHeight = 400
	headerHeight  = 62

	headerFontSize = 24
	bodyFontSize   = 26
	headerIconSize = 48
	bodyIconSize   = 40
	iconPadding    = 20
	padding        = 10

	thumbWidth  = 250
	thumbHeight = 150
)

var (
	white     = color.RGBA{255, 255, 255, 255}
	lightGray = color.RGBA{200, 200, 200, 255}
	red       = color.RGBA{255, 0, 0, 255}
	green     = color.RGBA{0, 255, 0, 255}
	blue      = color.RGBA{0, 0, 255, 255}
	skyBlue   = color.RGBA{135, 206, 235, 255}
	sunOrange = color.RGBA{255, 69, 0, 255}
	duskPlum  = color.RGBA{102, 51, 153, 255}
)

// Options configures a Compositor. Zero values select the panel defaults
// and the embedded fonts.
type Options struct {
	// Width and Height are the pre-rotation landscape panel resolution.
	Width, Height int
	// Font is used for all text. Defaults to the embedded Go Bold, matching
	// the single bold family the layout was designed around.
	Font *textfit.Font
	// Icons is the icon set. Defaults to the embedded set.
	Icons *icons.Set
	// Clock supplies the header date and time. Defaults to time.Now.
	Clock func() time.Time
	// Logger receives render warnings. Defaults to slog.Default.
	Logger *slog.Logger
}

// Compositor renders frames. It is a pure function of the record, the
// supplied weather context and the injected clock, so it is safe to test in
// isolation.
type Compositor struct {
	w, h  int
	font  *textfit.Font
	icons *icons.Set
	clock func() time.Time
	log   *slog.Logger
}

// New builds a Compositor.
func New(opts Options) (*Compositor, error) {
	c := &Compositor{
		w:     opts.Width,
		h:     opts.Height,
		font:  opts.Font,
		icons: opts.Icons,
		clock: opts.Clock,
		log:   opts.Logger,
	}
	if c.w == 0 {
		c.w = defaultWidth
	}
	if c.h == 0 {
		c.h = defaultHeight
	}
	if c.h <= headerHeight {
		return nil, fmt.Errorf("compose: height %d leaves no body below the %dpx header", c.h, headerHeight)
	}
	if c.font == nil {
		c.font = textfit.DefaultBold()
	}
	if c.icons == nil {
		set, err := icons.Load()
		if err != nil {
			return nil, err
		}
		c.icons = set
	}
	if c.clock == nil {
		c.clock = time.Now
	}
	if c.log == nil {
		c.log = slog.Default()
	}
	return c, nil
}

// Bounds returns the post-rotation (portrait) frame size.
func (c *Compositor) Bounds() image.Rectangle {
	return image.Rect(0, 0, c.h, c.w)
}

// Compose renders one frame for the record. The weather record feeds the
// header band and may be nil; the header then shows "N/A" / "Unknown" and
// rendering still succeeds. The only no-frame case is a weather body with
// fewer than three forecast days.
func (c *Compositor) Compose(rec content.Record, weather *content.WeatherRecord) (image.Image, error) {
	if wr, ok := rec.(*content.WeatherRecord); ok && len(wr.Forecast) < 3 {
		return nil, ErrInsufficientForecast
	}

	canvas := image.NewRGBA(image.Rect(0, 0, c.w, c.h))

	header := c.region("header", c.w, headerHeight, color.Black, func(dc *gg.Context) {
		c.drawHeader(dc, weather)
	})
	pasteAt(canvas, header, 0, 0)

	bodyH := c.h - headerHeight
	var body image.Image
	switch rec.Kind() {
	case content.KindPhoto:
		body = c.region("photo", c.w, bodyH, color.Black, func(dc *gg.Context) {
			c.drawPhotoBody(dc, rec.(*content.PhotoRecord), bodyH)
		})
	case content.KindStock:
		body = c.region("stock", c.w, bodyH, color.Black, func(dc *gg.Context) {
			c.drawStockBody(dc, rec.(*content.StockRecord), bodyH)
		})
	case content.KindNews:
		body = c.region("news", c.w, bodyH, color.Black, func(dc *gg.Context) {
			c.drawNewsBody(dc, rec.(*content.NewsRecord), bodyH)
		})
	case content.KindWeather:
		body = c.region("weather", c.w, bodyH, color.White, func(dc *gg.Context) {
			c.drawWeatherBody(dc, rec.(*content.WeatherRecord), bodyH)
		})
	default:
		c.log.Warn("unhandled content kind", "kind", rec.Kind())
		body = blank(c.w, bodyH)
	}
	pasteAt(canvas, body, 0, headerHeight)

	// Rotation is a pure geometric transform applied exactly once, after all
	// positions were computed in landscape.
	return imaging.Rotate270(canvas), nil
}

// region runs a render step under a fault boundary. A panic inside the step
// yields an all-black region instead of propagating, so one broken field
// never blocks the whole frame.
func (c *Compositor) region(name string, w, h int, bg color.Color, fn func(dc *gg.Context)) (img image.Image) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("render step failed, substituting blank region", "region", name, "panic", r)
			img = blank(w, h)
		}
	}()
	dc := gg.NewContext(w, h)
	dc.SetColor(bg)
	dc.Clear()
	fn(dc)
	return dc.Image()
}

func blank(w, h int) image.Image {
	dc := gg.NewContext(w, h)
	dc.SetColor(color.Black)
	dc.Clear()
	return dc.Image()
}

func pasteAt(dst *image.RGBA, src image.Image, x, y int) {
	b := src.Bounds()
	r := image.Rect(x, y, x+b.Dx(), y+b.Dy())
	draw.Draw(dst, r, src, b.Min, draw.Src)
}

// moonTitle turns a phase identifier like "WAXING_GIBBOUS" into the display
// form "Waxing Gibbous".
func moonTitle(phase string) string {
	if phase == "" {
		return "Unknown"
	}
	words := strings.Fields(strings.ReplaceAll(strings.ToLower(phase), "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// drawHeader renders the fixed-height top band: date left, clock centered,
// temperature right with the condition icon immediately to its left.
func (c *Compositor) drawHeader(dc *gg.Context, weather *content.WeatherRecord) {
	now := c.clock()
	dc.SetFontFace(c.font.Face(headerFontSize))

	temperature := "N/A"
	condition := "Unknown"
	if weather != nil {
		if weather.Current.Temperature != "" {
			temperature = weather.Current.Temperature + "°F"
		}
		if weather.Current.Condition != "" {
			condition = weather.Current.Condition
		}
	}

	midY := float64(headerHeight) / 2
	dc.SetColor(white)
	dc.DrawStringAnchored(now.Format("02 Jan 06"), padding, midY, 0, 0.35)
	dc.DrawStringAnchored(now.Format("15:04"), float64(c.w)/2, midY, 0.5, 0.35)

	rightX := float64(c.w - padding)
	dc.DrawStringAnchored(temperature, rightX, midY, 1, 0.35)

	tempW, _ := dc.MeasureString(temperature)
	iconX := int(rightX - tempW - iconPadding - headerIconSize)
	iconY := (headerHeight - headerIconSize) / 2
	c.drawIcon(dc, icons.Condition(condition), headerIconSize, iconX, iconY)
}

// drawPhotoBody fills the body edge-to-edge with the photo. Aspect ratio is
// deliberately not preserved. A missing image leaves the body blank.
func (c *Compositor) drawPhotoBody(dc *gg.Context, rec *content.PhotoRecord, bodyH int) {
	if rec.Image == nil {
		c.log.Warn("no image received for the body section")
		return
	}
	resized := imaging.Resize(rec.Image, c.w, bodyH, imaging.Lanczos)
	dc.DrawImage(resized, 0, 0)
}

// drawStockBody lays out up to 10 quotes in a 2-column, 5-row grid.
func (c *Compositor) drawStockBody(dc *gg.Context, rec *content.StockRecord, bodyH int) {
	const (
		rows = 5
		cols = 2
		pad  = 20
	)
	colWidth := (c.w - pad*(cols+1)) / cols
	rowHeight := (bodyH - pad*(rows+1)) / rows

	dc.SetFontFace(c.font.Face(bodyFontSize))

	quotes := rec.Quotes
	if len(quotes) > rows*cols {
		quotes = quotes[:rows*cols]
	}
	for i, q := range quotes {
		col := i % cols
		row := i / cols
		x := float64(pad + col*(colWidth+pad))
		y := float64(pad + row*(rowHeight+pad))

		dc.SetColor(white)
		dc.DrawStringAnchored(q.Symbol, x, y, 0, 1)

		price := "No Data"
		if !q.NoData {
			price = fmt.Sprintf("%.2f", q.Price)
		}
		if q.Change > 0 {
			dc.SetColor(green)
		} else {
			dc.SetColor(red)
		}
		dc.DrawStringAnchored(price, x+150, y, 0, 1)

		// Change magnitude is omitted when exactly zero.
		if !q.NoData && q.Change != 0 {
			dc.SetColor(white)
			dc.DrawStringAnchored(fmt.Sprintf("%.2f", q.Change), x+250, y, 0, 1)
		}
	}
}

// drawNewsBody renders the headline across the top, the thumbnail on the
// left below it and the summary in the remaining space to the right. A
// missing thumbnail degrades to a text-only layout.
func (c *Compositor) drawNewsBody(dc *gg.Context, rec *content.NewsRecord, bodyH int) {
	const pad = 20

	headline, headlineSize := textfit.FitWidth(c.font, rec.Title, c.w-2*pad, bodyFontSize*2)
	dc.SetFontFace(c.font.Face(headlineSize))
	dc.SetColor(white)
	dc.DrawStringAnchored(headline, float64(c.w)/2, pad, 0.5, 1)
	headlineH := c.font.LineHeight(headlineSize)

	contentY := pad + headlineH + 10
	if rec.Thumbnail != nil {
		thumb := imaging.Resize(rec.Thumbnail, thumbWidth, thumbHeight, imaging.Lanczos)
		dc.DrawImage(thumb, pad, contentY)
	}

	summaryX := pad + thumbWidth + 20
	maxW := c.w - summaryX - pad
	maxH := bodyH - contentY - pad
	lines, size := textfit.FitArea(c.font, rec.Summary, maxW, maxH, bodyFontSize-6)

	dc.SetFontFace(c.font.Face(size))
	dc.SetColor(lightGray)
	lineH := c.font.LineHeight(size)
	for i, line := range lines {
		dc.DrawStringAnchored(line, float64(summaryX), float64(contentY+i*lineH), 0, 1)
	}
}

// drawWeatherBody renders one bordered sky-blue column per forecast day.
// The caller already guaranteed at least three days.
func (c *Compositor) drawWeatherBody(dc *gg.Context, rec *content.WeatherRecord, bodyH int) {
	const (
		cols       = 3
		colSpacing = 20
	)
	colWidth := (c.w - 80) / cols
	tableWidth := colWidth*cols + colSpacing*(cols-1)
	startX := (c.w - tableWidth) / 2

	dc.SetFontFace(c.font.Face(bodyFontSize))
	dc.SetColor(color.Black)
	dc.DrawStringAnchored("3-Day Forecast", float64(c.w)/2, 10, 0.5, 1)

	smallFace := c.font.Face(bodyFontSize - 4)
	dayFace := c.font.Face(bodyFontSize * 11 / 10)
	moonFace := c.font.Face(bodyFontSize * 4 / 7)

	for i, day := range rec.Forecast[:cols] {
		x := float64(startX + i*(colWidth+colSpacing))
		center := x + float64(colWidth)/2

		dc.SetColor(skyBlue)
		dc.DrawRectangle(x, 40, float64(colWidth), float64(bodyH-50))
		dc.Fill()
		dc.SetColor(color.Black)
		dc.SetLineWidth(2)
		dc.DrawRectangle(x, 40, float64(colWidth), float64(bodyH-50))
		dc.Stroke()

		dc.SetFontFace(dayFace)
		dc.DrawStringAnchored(day.Day, center, 50, 0.5, 1)

		dc.SetFontFace(smallFace)
		dc.SetColor(red)
		dc.DrawStringAnchored("H: "+day.High+"°F", center, 90, 0.5, 1)
		dc.SetColor(blue)
		dc.DrawStringAnchored("L: "+day.Low+"°F", center, 120, 0.5, 1)

		iconX := int(x) + 10
		c.drawIcon(dc, "sunrise", bodyIconSize, iconX, 160)
		dc.SetColor(sunOrange)
		dc.DrawStringAnchored(day.Sunrise, x+10+bodyIconSize+5, 170, 0, 1)

		c.drawIcon(dc, "sunset", bodyIconSize, iconX, 200)
		dc.SetColor(duskPlum)
		dc.DrawStringAnchored(day.Sunset, x+10+bodyIconSize+5, 210, 0, 1)

		c.drawIcon(dc, icons.Moon(day.MoonPhase), bodyIconSize, int(center)-bodyIconSize/2, 240)
		dc.SetFontFace(moonFace)
		dc.SetColor(color.Black)
		dc.DrawStringAnchored(moonTitle(day.MoonPhase), center, 290, 0.5, 1)
	}
}

// drawIcon renders an icon into the context, logging and skipping on
// failure so a corrupt or missing icon never aborts the frame.
func (c *Compositor) drawIcon(dc *gg.Context, name string, size, x, y int) {
	img, err := c.icons.Render(name, size)
	if err != nil {
		c.log.Warn("failed to render icon", "icon", name, "err", err)
		return
	}
	dc.DrawImage(img, x, y)
}
