package main

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
	"github.com/nwaples/rardecode"
	"github.com/spf13/afero"
)

var (
	ErrUnsupportedArchive = errors.New("unsupported archive format")
	ErrMemberNotFound     = errors.New("archive member not found")
)

// archiveScheme prefixes resource identifiers of archive members:
// archive:<archive path>!<member>.
const archiveScheme = "archive:"

func isArchiveExt(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zip", ".rar", ".7z":
		return true
	default:
		return false
	}
}

// openSized opens path on fs and reports its size, for readers that need
// random access.
func openSized(fs afero.Fs, path string) (afero.File, int64, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, 0, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, err
	}
	return f, info.Size(), nil
}

// listArchiveImages returns the names of archive members with a recognized
// image extension, in archive order.
func listArchiveImages(fs afero.Fs, archivePath string) ([]string, error) {
	var names []string
	err := walkArchive(fs, archivePath, func(name string, isDir bool, _ func() (io.ReadCloser, error)) (bool, error) {
		if !isDir {
			if _, ok := FormatFromPath(name); ok {
				names = append(names, name)
			}
		}
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}

// readArchiveMember returns the bytes of a single member.
func readArchiveMember(fs afero.Fs, archivePath, member string) ([]byte, error) {
	var data []byte
	found := false
	err := walkArchive(fs, archivePath, func(name string, _ bool, open func() (io.ReadCloser, error)) (bool, error) {
		if name != member {
			return false, nil
		}
		rc, err := open()
		if err != nil {
			return true, err
		}
		defer rc.Close()
		data, err = io.ReadAll(rc)
		found = true
		return true, err
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %s in %s", ErrMemberNotFound, member, archivePath)
	}
	return data, nil
}

// archiveVisitor is called once per member. Returning stop ends the walk.
type archiveVisitor func(name string, isDir bool, open func() (io.ReadCloser, error)) (stop bool, err error)

func walkArchive(fs afero.Fs, archivePath string, visit archiveVisitor) error {
	switch strings.ToLower(filepath.Ext(archivePath)) {
	case ".zip":
		return walkZip(fs, archivePath, visit)
	case ".rar":
		return walkRar(fs, archivePath, visit)
	case ".7z":
		return walk7z(fs, archivePath, visit)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedArchive, archivePath)
	}
}

func walkZip(fs afero.Fs, archivePath string, visit archiveVisitor) error {
	f, size, err := openSized(fs, archivePath)
	if err != nil {
		return err
	}
	defer f.Close()

	r, err := zip.NewReader(f, size)
	if err != nil {
		return fmt.Errorf("reading zip %s: %w", archivePath, err)
	}
	for _, zf := range r.File {
		stop, err := visit(zf.Name, zf.FileInfo().IsDir(), zf.Open)
		if err != nil || stop {
			return err
		}
	}
	return nil
}

func walk7z(fs afero.Fs, archivePath string, visit archiveVisitor) error {
	f, size, err := openSized(fs, archivePath)
	if err != nil {
		return err
	}
	defer f.Close()

	r, err := sevenzip.NewReader(f, size)
	if err != nil {
		return fmt.Errorf("reading 7z %s: %w", archivePath, err)
	}
	for _, sf := range r.File {
		stop, err := visit(sf.Name, sf.FileInfo().IsDir(), sf.Open)
		if err != nil || stop {
			return err
		}
	}
	return nil
}

func walkRar(fs afero.Fs, archivePath string, visit archiveVisitor) error {
	f, err := fs.Open(archivePath)
	if err != nil {
		return err
	}
	defer f.Close()

	r, err := rardecode.NewReader(f, "")
	if err != nil {
		return fmt.Errorf("reading rar %s: %w", archivePath, err)
	}
	for {
		header, err := r.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading rar %s: %w", archivePath, err)
		}
		// rar members are streamed; the current member is readable from r
		// until Next is called again.
		open := func() (io.ReadCloser, error) { return io.NopCloser(r), nil }
		stop, err := visit(header.Name, header.IsDir, open)
		if err != nil || stop {
			return err
		}
	}
}
