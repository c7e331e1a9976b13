package main

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	"github.com/rs/zerolog"
	"golang.design/x/clipboard"
	"golang.org/x/image/draw"
)

var (
	// ErrClipboardUnavailable is returned when the platform clipboard could
	// not be initialized.
	ErrClipboardUnavailable = errors.New("clipboard unavailable")

	errClipboardEmpty = errors.New("no data of the requested format")
)

// Clipboard is the platform clipboard. Images are exchanged as PNG.
type Clipboard interface {
	ReadImage() ([]byte, error)
	ReadText() (string, error)
	WriteImage(png []byte) error
	Clear() error
}

type systemClipboard struct{}

// openSystemClipboard initializes the platform clipboard.
func openSystemClipboard() (Clipboard, error) {
	if err := clipboard.Init(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrClipboardUnavailable, err)
	}
	return systemClipboard{}, nil
}

func (systemClipboard) ReadImage() ([]byte, error) {
	data := clipboard.Read(clipboard.FmtImage)
	if len(data) == 0 {
		return nil, fmt.Errorf("reading image: %w", errClipboardEmpty)
	}
	return data, nil
}

func (systemClipboard) ReadText() (string, error) {
	data := clipboard.Read(clipboard.FmtText)
	if len(data) == 0 {
		return "", fmt.Errorf("reading text: %w", errClipboardEmpty)
	}
	return string(data), nil
}

func (systemClipboard) WriteImage(png []byte) error {
	clipboard.Write(clipboard.FmtImage, png)
	return nil
}

func (systemClipboard) Clear() error {
	clipboard.Write(clipboard.FmtText, []byte{})
	return nil
}

// ClipboardBridge connects the clipboard to the registry. With no clipboard
// every operation is a no-op.
type ClipboardBridge struct {
	cb  Clipboard
	log zerolog.Logger
}

// NewClipboardBridge wraps cb, which may be nil.
func NewClipboardBridge(cb Clipboard, logger zerolog.Logger) *ClipboardBridge {
	return &ClipboardBridge{cb: cb, log: componentLogger(logger, targetClipboard)}
}

func (b *ClipboardBridge) Available() bool {
	return b != nil && b.cb != nil
}

// Paste appends the clipboard image to reg. Without an image the clipboard
// text is read and logged. The clipboard is cleared afterwards in either
// case. It reports whether an entry was appended.
func (b *ClipboardBridge) Paste(reg *Registry) bool {
	if !b.Available() {
		return false
	}
	defer func() {
		if err := b.cb.Clear(); err != nil {
			b.log.Warn().Err(err).Msg("failed to clear clipboard")
		}
	}()

	err := b.pasteImage(reg)
	if err == nil {
		return true
	}
	b.log.Warn().Err(err).Msg("failed to paste image")

	text, err := b.cb.ReadText()
	if err != nil {
		b.log.Warn().Err(err).Msg("failed to paste text")
		return false
	}
	b.log.Debug().Str("text", text).Msg("got paste item")
	return false
}

func (b *ClipboardBridge) pasteImage(reg *Registry) error {
	data, err := b.cb.ReadImage()
	if err != nil {
		return err
	}
	pix, w, h, err := decodeToNRGBA(data)
	if err != nil {
		return err
	}
	return reg.AppendFromRawPixels(pix, w, h)
}

// WriteImage puts an encoded PNG on the clipboard.
func (b *ClipboardBridge) WriteImage(png []byte) error {
	if !b.Available() {
		return ErrClipboardUnavailable
	}
	return b.cb.WriteImage(png)
}

// decodeToNRGBA decodes data into a tightly packed non-premultiplied RGBA
// buffer.
func decodeToNRGBA(data []byte) ([]byte, int, int, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, 0, 0, fmt.Errorf("decoding clipboard image: %w", err)
	}
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst.Pix, b.Dx(), b.Dy(), nil
}
