// Package export writes rendered frames to disk.
package export

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// Format is an image encoding supported by Save
type Format int

// The supported image encoding formats
const (
	None Format = iota
	PNG
	BMP
	TIFF
)

// ErrUnknownFormat is returned for extensions that have no encoder
var ErrUnknownFormat = errors.New("unknown image format")

// String returns the canonical file extension without the dot
func (f Format) String() string {
	switch f {
	case PNG:
		return "png"
	case BMP:
		return "bmp"
	case TIFF:
		return "tiff"
	default:
		return "none"
	}
}

// ExtToFormat returns a Format based on a filename extension, which can start with a . or not
func ExtToFormat(ext string) (Format, error) {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	switch ext {
	case "png":
		return PNG, nil
	case "bmp":
		return BMP, nil
	case "tif", "tiff":
		return TIFF, nil
	}
	return None, fmt.Errorf("%w: extension %q", ErrUnknownFormat, ext)
}

// Save writes img to path, creating parent directories. The format follows the extension.
func Save(img image.Image, path string) (err error) {
	format, err := ExtToFormat(filepath.Ext(path))
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); err == nil && closeErr != nil {
			err = closeErr
		}
	}()

	bw := bufio.NewWriter(file)
	if err := Write(img, bw, format); err != nil {
		return fmt.Errorf("encode %s: %w", format, err)
	}
	return bw.Flush()
}

// Write encodes img to w in the given format
func Write(img image.Image, w io.Writer, format Format) error {
	switch format {
	case PNG:
		return png.Encode(w, img)
	case BMP:
		return bmp.Encode(w, img)
	case TIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}

// Open decodes an image written by Save
func Open(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	format, err := ExtToFormat(filepath.Ext(path))
	if err != nil {
		return nil, err
	}

	r := bufio.NewReader(file)
	switch format {
	case PNG:
		return png.Decode(r)
	case BMP:
		return bmp.Decode(r)
	default:
		return tiff.Decode(r)
	}
}
