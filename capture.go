package main

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog"
)

// ErrEmptyCapture is returned when the region to capture lies outside the screen.
var ErrEmptyCapture = errors.New("empty capture region")

type captureState int

const (
	captureIdle captureState = iota
	captureRequested
)

// ScreenshotCapture copies the displayed image region to the clipboard at
// the end of the frame after a request.
type ScreenshotCapture struct {
	state captureState
	log   zerolog.Logger
}

func NewScreenshotCapture(logger zerolog.Logger) *ScreenshotCapture {
	return &ScreenshotCapture{log: componentLogger(logger, targetClipboard)}
}

// Request asks for a capture of the next drawn frame. A request made while
// one is pending is dropped and Request returns false.
func (c *ScreenshotCapture) Request() bool {
	if c.state == captureRequested {
		c.log.Debug().Msg("screenshot already requested, dropping request")
		return false
	}
	c.state = captureRequested
	return true
}

func (c *ScreenshotCapture) Pending() bool {
	return c.state == captureRequested
}

// Complete runs a pending capture against the frame just drawn on screen and
// returns to idle. region is in points, ppp is pixels per point.
func (c *ScreenshotCapture) Complete(screen *ebiten.Image, region Rect, ppp float64, bridge *ClipboardBridge) {
	if c.state != captureRequested {
		return
	}
	c.state = captureIdle

	b := screen.Bounds()
	pix := make([]byte, 4*b.Dx()*b.Dy())
	screen.ReadPixels(pix)
	c.log.Debug().Int("width", b.Dx()).Int("height", b.Dy()).Msg("got screenshot")

	data, err := cropToPNG(pix, b, region, ppp)
	if err != nil {
		c.log.Warn().Err(err).Msg("failed to capture screenshot")
		return
	}
	if err := bridge.WriteImage(data); err != nil {
		c.log.Warn().Err(err).Msg("failed to copy image to clipboard")
	}
}

// cropRect converts region from points to pixels and clips it to screen.
func cropRect(region Rect, ppp float64, screen image.Rectangle) (image.Rectangle, error) {
	if ppp <= 0 {
		ppp = 1
	}
	px := image.Rect(
		int(math.Floor(region.Min.X*ppp)),
		int(math.Floor(region.Min.Y*ppp)),
		int(math.Ceil(region.Max().X*ppp)),
		int(math.Ceil(region.Max().Y*ppp)),
	).Intersect(screen)
	if px.Empty() {
		return image.Rectangle{}, fmt.Errorf("%w: %v", ErrEmptyCapture, region)
	}
	return px, nil
}

// cropToPNG encodes the part of an RGBA screen buffer covered by region.
func cropToPNG(pix []byte, bounds image.Rectangle, region Rect, ppp float64) ([]byte, error) {
	r, err := cropRect(region, ppp, bounds)
	if err != nil {
		return nil, err
	}
	if len(pix) < 4*bounds.Dx()*bounds.Dy() {
		return nil, fmt.Errorf("%w: screen buffer too short", ErrInvalidPixelBuffer)
	}
	screen := &image.RGBA{Pix: pix, Stride: 4 * bounds.Dx(), Rect: bounds}
	var buf bytes.Buffer
	if err := png.Encode(&buf, screen.SubImage(r)); err != nil {
		return nil, fmt.Errorf("encoding screenshot: %w", err)
	}
	return buf.Bytes(), nil
}
