package main

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrInvalidPixelBuffer is returned when a raw pixel buffer does not match
// its declared dimensions.
var ErrInvalidPixelBuffer = errors.New("invalid pixel buffer")

// ImageFormat is the container format of an entry, derived from its name.
type ImageFormat int

const (
	FormatPNG ImageFormat = iota
	FormatJPEG
	FormatGIF
	FormatBMP
	FormatWebP
	FormatTIFF
)

var formatByExt = map[string]ImageFormat{
	".png":  FormatPNG,
	".jpg":  FormatJPEG,
	".jpeg": FormatJPEG,
	".gif":  FormatGIF,
	".bmp":  FormatBMP,
	".webp": FormatWebP,
	".tif":  FormatTIFF,
	".tiff": FormatTIFF,
}

// FormatFromPath returns the format for the extension of p, case-insensitive.
func FormatFromPath(p string) (ImageFormat, bool) {
	f, ok := formatByExt[strings.ToLower(filepath.Ext(p))]
	return f, ok
}

func (f ImageFormat) String() string {
	switch f {
	case FormatPNG:
		return "PNG"
	case FormatJPEG:
		return "JPEG"
	case FormatGIF:
		return "GIF"
	case FormatBMP:
		return "BMP"
	case FormatWebP:
		return "WebP"
	case FormatTIFF:
		return "TIFF"
	default:
		return "Unknown"
	}
}

// Origin is where an entry's encoded bytes come from.
type Origin interface {
	// Open returns the encoded image bytes.
	Open() ([]byte, error)
	// Label is a short human-readable name for overlays and logs.
	Label() string
}

// PathOrigin is a file on a filesystem.
type PathOrigin struct {
	Fs   afero.Fs
	Path string
}

func (o PathOrigin) Open() ([]byte, error) {
	return afero.ReadFile(o.Fs, o.Path)
}

func (o PathOrigin) Label() string {
	return o.Path
}

// BytesOrigin is an in-memory encoded buffer, such as a pasted image.
type BytesOrigin struct {
	Data []byte
}

func (o BytesOrigin) Open() ([]byte, error) {
	return o.Data, nil
}

func (o BytesOrigin) Label() string {
	return fmt.Sprintf("bytes://clipboard (%d bytes)", len(o.Data))
}

// ArchiveOrigin is a member of a zip, rar or 7z archive.
type ArchiveOrigin struct {
	Fs      afero.Fs
	Archive string
	Member  string
}

func (o ArchiveOrigin) Open() ([]byte, error) {
	return readArchiveMember(o.Fs, o.Archive, o.Member)
}

// Label returns the resource identifier archive:<archive>!<member>.
func (o ArchiveOrigin) Label() string {
	return archiveScheme + o.Archive + "!" + o.Member
}

// EntryState is the lazy decode state of an ImageEntry.
type EntryState int

const (
	EntryUnloaded EntryState = iota
	EntryPending
	EntryReady
	EntryFailed
)

func (s EntryState) String() string {
	switch s {
	case EntryUnloaded:
		return "unloaded"
	case EntryPending:
		return "pending"
	case EntryReady:
		return "ready"
	case EntryFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ImageEntry is one viewable image. Its bytes are read and decoded at most
// once; a failure is kept and reported on every later poll.
type ImageEntry struct {
	id     uint64
	format ImageFormat
	origin Origin

	state EntryState
	img   image.Image
	info  ImageInfo
	err   error
}

func (e *ImageEntry) ID() uint64 { return e.id }
func (e *ImageEntry) Format() ImageFormat { return e.format }
func (e *ImageEntry) Origin() Origin { return e.origin }
func (e *ImageEntry) State() EntryState { return e.state }
func (e *ImageEntry) Image() image.Image { return e.img }
func (e *ImageEntry) Info() ImageInfo { return e.info }
func (e *ImageEntry) Err() error { return e.err }

// Poll advances the entry by one step and returns the new state. The first
// poll only marks the entry pending so a spinner can be shown for a frame;
// the second resolves it.
func (e *ImageEntry) Poll() EntryState {
	switch e.state {
	case EntryUnloaded:
		e.state = EntryPending
	case EntryPending:
		e.resolve()
	}
	return e.state
}

func (e *ImageEntry) resolve() {
	data, err := e.origin.Open()
	if err != nil {
		e.fail(fmt.Errorf("reading %s: %w", e.origin.Label(), err))
		return
	}
	img, decoded, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		e.fail(fmt.Errorf("decoding %s: %w", e.origin.Label(), err))
		return
	}
	e.img = img
	e.info = readImageInfo(data, img, decoded)
	e.state = EntryReady
}

func (e *ImageEntry) fail(err error) {
	e.err = err
	e.state = EntryFailed
}

// Registry is the ordered set of entries. Insertion order is navigation order.
type Registry struct {
	entries []*ImageEntry
	nextID  uint64
	sorter  SortStrategy
	log     zerolog.Logger
}

// NewRegistry creates an empty registry. sorter orders archive members.
func NewRegistry(sorter SortStrategy, logger zerolog.Logger) *Registry {
	if sorter == nil {
		sorter = &NaturalSortStrategy{}
	}
	return &Registry{
		sorter: sorter,
		log:    componentLogger(logger, targetImages),
	}
}

func (r *Registry) Len() int {
	return len(r.entries)
}

// At returns the entry at i, or nil when i is out of range.
func (r *Registry) At(i int) *ImageEntry {
	if i < 0 || i >= len(r.entries) {
		return nil
	}
	return r.entries[i]
}

func (r *Registry) add(format ImageFormat, origin Origin) {
	r.nextID++
	r.entries = append(r.entries, &ImageEntry{id: r.nextID, format: format, origin: origin})
}

// AppendFromPaths appends an entry for every path with a known image
// extension and one for every image member of an archive path. Other paths
// are dropped silently. It returns the number of entries appended.
func (r *Registry) AppendFromPaths(fs afero.Fs, paths []string) int {
	before := len(r.entries)
	for _, p := range paths {
		if isArchiveExt(p) {
			r.appendArchive(fs, p)
			continue
		}
		format, ok := FormatFromPath(p)
		if !ok {
			continue
		}
		r.add(format, PathOrigin{Fs: fs, Path: p})
	}
	added := len(r.entries) - before
	r.log.Debug().Int("added", added).Int("total", len(r.entries)).Msg("entries appended")
	return added
}

func (r *Registry) appendArchive(fs afero.Fs, archivePath string) {
	members, err := listArchiveImages(fs, archivePath)
	if err != nil {
		r.log.Warn().Err(err).Str("archive", archivePath).Msg("failed to read archive")
		return
	}
	for _, m := range r.sorter.Sort(members) {
		format, _ := FormatFromPath(m)
		r.add(format, ArchiveOrigin{Fs: fs, Archive: archivePath, Member: m})
	}
}

// AppendFromRawPixels encodes a non-premultiplied RGBA buffer of the given
// dimensions as PNG and appends it as an in-memory entry. Nothing is appended
// on failure.
func (r *Registry) AppendFromRawPixels(pix []byte, width, height int) error {
	data, err := encodeRawPixels(pix, width, height)
	if err != nil {
		r.log.Warn().Err(err).Msg("failed to encode pasted image")
		return err
	}
	r.add(FormatPNG, BytesOrigin{Data: data})
	r.log.Debug().Int("width", width).Int("height", height).Msg("pasted image appended")
	return nil
}

func encodeRawPixels(pix []byte, width, height int) ([]byte, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: dimensions %dx%d", ErrInvalidPixelBuffer, width, height)
	}
	need := 4 * width * height
	if len(pix) < need {
		return nil, fmt.Errorf("%w: have %d bytes, need %d", ErrInvalidPixelBuffer, len(pix), need)
	}
	img := &image.NRGBA{
		Pix:    pix[:need],
		Stride: 4 * width,
		Rect:   image.Rect(0, 0, width, height),
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding png: %w", err)
	}
	return buf.Bytes(), nil
}
