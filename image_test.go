package main

import (
	"archive/zip"
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeTestPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 40), G: uint8(y * 40), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// countingOrigin counts how often its bytes are requested.
type countingOrigin struct {
	data  []byte
	err   error
	opens int
}

func (o *countingOrigin) Open() ([]byte, error) {
	o.opens++
	return o.data, o.err
}

func (o *countingOrigin) Label() string { return "counting" }

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path   string
		format ImageFormat
		ok     bool
	}{
		{"test.png", FormatPNG, true},
		{"test.PNG", FormatPNG, true},
		{"test.jpg", FormatJPEG, true},
		{"test.jpeg", FormatJPEG, true},
		{"test.gif", FormatGIF, true},
		{"test.bmp", FormatBMP, true},
		{"test.webp", FormatWebP, true},
		{"test.tiff", FormatTIFF, true},
		{"test.backup.jpg", FormatJPEG, true},
		{"/path/to/test.png", FormatPNG, true},
		{"test.txt", 0, false},
		{"test", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			format, ok := FormatFromPath(tt.path)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.format, format)
			}
		})
	}
}

func TestAppendFromRawPixels(t *testing.T) {
	reg := NewRegistry(nil, zerolog.Nop())
	pix := []byte{
		255, 0, 0, 255, 0, 255, 0, 255,
		0, 0, 255, 255, 255, 255, 255, 128,
	}

	require.NoError(t, reg.AppendFromRawPixels(pix, 2, 2))
	require.Equal(t, 1, reg.Len())

	entry := reg.At(0)
	assert.Equal(t, FormatPNG, entry.Format())
	assert.IsType(t, BytesOrigin{}, entry.Origin())
	assert.Equal(t, EntryUnloaded, entry.State())

	assert.Equal(t, EntryPending, entry.Poll())
	assert.Equal(t, EntryReady, entry.Poll())
	assert.Equal(t, image.Rect(0, 0, 2, 2), entry.Image().Bounds())
	assert.Equal(t, color.NRGBAModel.Convert(entry.Image().At(1, 1)), color.NRGBA{255, 255, 255, 128})
	assert.Equal(t, 2, entry.Info().Width)
	assert.Equal(t, "png", entry.Info().DecodedFormat)
}

func TestAppendFromRawPixelsInvalid(t *testing.T) {
	tests := []struct {
		name          string
		pix           []byte
		width, height int
	}{
		{"short buffer", make([]byte, 15), 2, 2},
		{"zero width", make([]byte, 16), 0, 2},
		{"negative height", make([]byte, 16), 2, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := NewRegistry(nil, zerolog.Nop())
			err := reg.AppendFromRawPixels(tt.pix, tt.width, tt.height)
			assert.ErrorIs(t, err, ErrInvalidPixelBuffer)
			assert.Equal(t, 0, reg.Len())
		})
	}
}

func TestDecodeFailureIsCached(t *testing.T) {
	reg := NewRegistry(nil, zerolog.Nop())
	require.NoError(t, reg.AppendFromRawPixels(make([]byte, 4), 1, 1))
	bad := &countingOrigin{data: []byte("not an image")}
	reg.add(FormatPNG, bad)
	require.NoError(t, reg.AppendFromRawPixels(make([]byte, 4), 1, 1))

	entry := reg.At(1)
	assert.Equal(t, EntryPending, entry.Poll())
	assert.Equal(t, EntryFailed, entry.Poll())
	assert.Equal(t, EntryFailed, entry.Poll())
	assert.Equal(t, EntryFailed, entry.Poll())
	assert.Equal(t, 1, bad.opens)
	assert.Error(t, entry.Err())
	assert.Nil(t, entry.Image())

	for _, i := range []int{0, 2} {
		other := reg.At(i)
		other.Poll()
		assert.Equal(t, EntryReady, other.Poll())
	}
}

func TestReadFailureIsCached(t *testing.T) {
	origin := &countingOrigin{err: errors.New("gone")}
	entry := &ImageEntry{origin: origin}

	entry.Poll()
	entry.Poll()
	entry.Poll()

	assert.Equal(t, EntryFailed, entry.State())
	assert.Equal(t, 1, origin.opens)
	assert.ErrorContains(t, entry.Err(), "gone")
}

func TestRegistryAt(t *testing.T) {
	reg := NewRegistry(nil, zerolog.Nop())
	assert.Nil(t, reg.At(0))
	assert.Nil(t, reg.At(-1))
}

func TestPathOriginMissingFile(t *testing.T) {
	reg := NewRegistry(nil, zerolog.Nop())
	reg.AppendFromPaths(afero.NewMemMapFs(), []string{"/gone.png"})

	entry := reg.At(0)
	entry.Poll()
	assert.Equal(t, EntryFailed, entry.Poll())
}

func writeZip(t *testing.T, fs afero.Fs, path string, members map[string][]byte, order []string) {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range order {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write(members[name])
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, afero.WriteFile(fs, path, buf.Bytes(), 0o644))
}

func TestAppendFromZipArchive(t *testing.T) {
	fs := afero.NewMemMapFs()
	pngData := encodeTestPNG(t, 3, 2)
	members := map[string][]byte{
		"p/10.png":   pngData,
		"p/2.png":    pngData,
		"p/1.png":    pngData,
		"readme.txt": []byte("hello"),
	}
	writeZip(t, fs, "/book.zip", members, []string{"p/10.png", "readme.txt", "p/2.png", "p/1.png"})

	reg := NewRegistry(&NaturalSortStrategy{}, zerolog.Nop())
	assert.Equal(t, 4, reg.AppendFromPaths(fs, []string{"/book.zip", "/cover.jpg"}))

	var labels []string
	for i := 0; i < reg.Len(); i++ {
		labels = append(labels, reg.At(i).Origin().Label())
	}
	assert.Equal(t, []string{
		"archive:/book.zip!p/1.png",
		"archive:/book.zip!p/2.png",
		"archive:/book.zip!p/10.png",
		"/cover.jpg",
	}, labels)

	entry := reg.At(1)
	entry.Poll()
	require.Equal(t, EntryReady, entry.Poll())
	assert.Equal(t, 3, entry.Info().Width)
	assert.Equal(t, 2, entry.Info().Height)
}

func TestArchiveErrors(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeZip(t, fs, "/a.zip", map[string][]byte{"x.png": []byte("x")}, []string{"x.png"})
	require.NoError(t, afero.WriteFile(fs, "/broken.zip", []byte("not a zip"), 0o644))

	_, err := readArchiveMember(fs, "/a.zip", "y.png")
	assert.ErrorIs(t, err, ErrMemberNotFound)

	_, err = listArchiveImages(fs, "/a.tar")
	assert.ErrorIs(t, err, ErrUnsupportedArchive)

	data, err := readArchiveMember(fs, "/a.zip", "x.png")
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), data)

	reg := NewRegistry(nil, zerolog.Nop())
	assert.Equal(t, 0, reg.AppendFromPaths(fs, []string{"/broken.zip", "/missing.7z", "/missing.rar"}))
}

func TestIsArchiveExt(t *testing.T) {
	assert.True(t, isArchiveExt("a.zip"))
	assert.True(t, isArchiveExt("a.RAR"))
	assert.True(t, isArchiveExt("a.7z"))
	assert.False(t, isArchiveExt("a.tar"))
	assert.False(t, isArchiveExt("zip"))
}

func TestImageInfoLines(t *testing.T) {
	info := ImageInfo{Width: 640, Height: 480, Size: 2048, CameraModel: "X100", FNumber: "f/2.0", ExposureTime: "1/250 s"}
	assert.Equal(t, []string{"640 x 480", "2.0 KiB", "Camera: X100", "f/2.0  1/250 s"}, info.Lines())

	plain := readImageInfo(encodeTestPNG(t, 4, 5), image.NewNRGBA(image.Rect(0, 0, 4, 5)), "png")
	assert.Equal(t, 4, plain.Width)
	assert.Equal(t, 5, plain.Height)
	assert.Empty(t, plain.CameraModel)
	assert.Equal(t, []string{"4 x 5", formatByteSize(plain.Size)}, plain.Lines())
}

func TestFormatByteSize(t *testing.T) {
	assert.Equal(t, "512 B", formatByteSize(512))
	assert.Equal(t, "1.5 KiB", formatByteSize(1536))
	assert.Equal(t, "3.0 MiB", formatByteSize(3*1024*1024))
}
