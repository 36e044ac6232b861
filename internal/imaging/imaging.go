// Package imaging is the image-decoding collaborator for the OCR pipeline.
// It decides which files are eligible inputs, verifies that an image can be
// decoded before any engine sees it, and converts formats the backends do
// not consume natively into temporary PNG copies with guaranteed cleanup.
package imaging

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	// Decoders for the supported input formats.
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrUndecodable is returned when a file cannot be decoded as an image.
var ErrUndecodable = errors.New("image cannot be decoded")

// supportedExts is the fixed set of input extensions, matched
// case-insensitively.
var supportedExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
	".webp": true,
}

// nativeExts are formats every backend consumes directly. Anything else is
// re-encoded to a temporary PNG first.
var nativeExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// SupportedFile reports whether the file name has a supported image extension.
func SupportedFile(name string) bool {
	return supportedExts[strings.ToLower(filepath.Ext(name))]
}

// Preparer validates and converts input images.
type Preparer struct{}

// NewPreparer returns the standard image preparer.
func NewPreparer() *Preparer {
	return &Preparer{}
}

// Prepare verifies that the image at path is decodable and returns a path the
// engines can consume, plus a cleanup func releasing any temporary artifact.
// The cleanup func is non-nil whenever the error is nil and must be called on
// every exit path, including when an engine later fails.
func (p *Preparer) Prepare(path string) (string, func(), error) {
	f, err := os.Open(path)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrUndecodable, err)
	}
	defer f.Close()

	if _, _, err := image.DecodeConfig(f); err != nil {
		return "", nil, fmt.Errorf("%w: %s: %v", ErrUndecodable, filepath.Base(path), err)
	}

	if nativeExts[strings.ToLower(filepath.Ext(path))] {
		return path, func() {}, nil
	}
	return convertToPNG(f, path)
}

// convertToPNG decodes the full image and writes a temporary PNG copy.
func convertToPNG(f *os.File, path string) (string, func(), error) {
	if _, err := f.Seek(0, 0); err != nil {
		return "", nil, fmt.Errorf("rewind %s: %w", filepath.Base(path), err)
	}
	img, _, err := image.Decode(f)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %s: %v", ErrUndecodable, filepath.Base(path), err)
	}

	tmp, err := os.CreateTemp("", "ocrtool-*.png")
	if err != nil {
		return "", nil, fmt.Errorf("create temp image: %w", err)
	}
	cleanup := func() {
		os.Remove(tmp.Name())
	}

	if err := png.Encode(tmp, img); err != nil {
		tmp.Close()
		cleanup()
		return "", nil, fmt.Errorf("convert %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("convert %s: %w", filepath.Base(path), err)
	}
	return tmp.Name(), cleanup, nil
}
