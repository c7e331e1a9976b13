package main

import (
	"bytes"
	"image"
	"image/color"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/image/font/gofont/goregular"
)

// newFontSource loads the UI font.
func newFontSource() (*text.GoTextFaceSource, error) {
	return text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
}

// DrawText draws text with specified position and color
func DrawText(screen *ebiten.Image, textString string, font *text.GoTextFace, x, y float64, textColor color.RGBA) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(textColor)
	text.Draw(screen, textString, font, op)
}

// DrawCenteredText draws text centered on (cx, cy)
func DrawCenteredText(screen *ebiten.Image, textString string, font *text.GoTextFace, cx, cy float64, textColor color.RGBA) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(cx, cy)
	op.ColorScale.ScaleWithColor(textColor)
	op.PrimaryAlign = text.AlignCenter
	op.SecondaryAlign = text.AlignCenter
	text.Draw(screen, textString, font, op)
}

// DrawFilledRect draws filled rectangles with float64 coordinates
func DrawFilledRect(screen *ebiten.Image, x, y, w, h float64, bgColor color.RGBA) {
	vector.DrawFilledRect(screen, float32(x), float32(y), float32(w), float32(h), bgColor, false)
}

// DrawSpinner draws a ring of dots whose brightest dot rotates over time.
func DrawSpinner(screen *ebiten.Image, cx, cy, radius float64, now time.Time, c color.RGBA) {
	const dots = 8
	phase := int(now.UnixMilli()/100) % dots
	for i := 0; i < dots; i++ {
		angle := 2 * math.Pi * float64(i) / dots
		x := cx + radius*math.Cos(angle)
		y := cy + radius*math.Sin(angle)
		alpha := uint8(255 - ((i-phase+dots)%dots)*28)
		dot := color.RGBA{c.R, c.G, c.B, alpha}
		vector.DrawFilledCircle(screen, float32(x), float32(y), float32(radius/5), premultiply(dot), true)
	}
}

// DrawWarningGlyph draws a warning triangle with an exclamation mark.
func DrawWarningGlyph(screen *ebiten.Image, font *text.GoTextFace, cx, cy, size float64, c color.RGBA) {
	h := size * math.Sqrt(3) / 2
	top := [2]float32{float32(cx), float32(cy - h/2)}
	left := [2]float32{float32(cx - size/2), float32(cy + h/2)}
	right := [2]float32{float32(cx + size/2), float32(cy + h/2)}
	width := float32(math.Max(2, size/12))
	vector.StrokeLine(screen, top[0], top[1], left[0], left[1], width, c, true)
	vector.StrokeLine(screen, left[0], left[1], right[0], right[1], width, c, true)
	vector.StrokeLine(screen, right[0], right[1], top[0], top[1], width, c, true)
	DrawCenteredText(screen, "!", font, cx, cy+h/8, c)
}

func premultiply(c color.RGBA) color.RGBA {
	a := uint16(c.A)
	return color.RGBA{
		R: uint8(uint16(c.R) * a / 255),
		G: uint8(uint16(c.G) * a / 255),
		B: uint8(uint16(c.B) * a / 255),
		A: c.A,
	}
}

// TextureCache keeps GPU textures for decoded entries. Evicted textures are
// deallocated; a later Get uploads the entry's decoded image again.
type TextureCache struct {
	cache  *lru.Cache[uint64, *ebiten.Image]
	upload func(image.Image) *ebiten.Image
}

// NewTextureCache creates a cache holding at most size textures.
func NewTextureCache(size int) *TextureCache {
	if size < 1 {
		size = 16
	}
	cache, err := lru.NewWithEvict[uint64, *ebiten.Image](size, func(_ uint64, img *ebiten.Image) {
		if img != nil {
			img.Deallocate()
		}
	})
	if err != nil {
		// Only reachable with a non-positive size.
		panic(err)
	}
	return &TextureCache{cache: cache, upload: ebiten.NewImageFromImage}
}

// Get returns the texture for a ready entry, uploading it on a miss. It
// returns nil for entries that are not ready.
func (c *TextureCache) Get(e *ImageEntry) *ebiten.Image {
	if e == nil || e.State() != EntryReady {
		return nil
	}
	if tex, ok := c.cache.Get(e.ID()); ok {
		return tex
	}
	tex := c.upload(e.Image())
	c.cache.Add(e.ID(), tex)
	return tex
}

func (c *TextureCache) Len() int {
	return c.cache.Len()
}
