// Package loader provides flat binary image loading for the emulator.
package loader

import (
	"fmt"
	"io"
	"os"

	"github.com/sarchlab/armemu/emu"
)

// ErrImageTooLarge is returned when an image does not fit below the limit.
// It is the same sentinel emu.Memory.LoadImage reports, so either error
// matches with errors.Is.
var ErrImageTooLarge = emu.ErrImageTooLarge

// Image represents a flat binary image ready to be copied to address 0.
type Image struct {
	// Path is the file the image was read from. Empty for Read.
	Path string
	// Data contains the raw image bytes.
	Data []byte
}

// Size returns the image length in bytes.
func (img *Image) Size() int {
	return len(img.Data)
}

// Load reads the flat binary at path. The image must be strictly smaller
// than limit bytes, leaving room for the terminating zero word.
func Load(path string, limit int) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}
	defer func() { _ = f.Close() }()

	img, err := Read(f, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	img.Path = path

	return img, nil
}

// Read reads a flat binary image from r. At most limit bytes are consumed,
// so oversized inputs are rejected without reading them to the end.
func Read(r io.Reader, limit int) (*Image, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("invalid image limit %d", limit)
	}

	data, err := io.ReadAll(io.LimitReader(r, int64(limit)))
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	if len(data) >= limit {
		return nil, fmt.Errorf("%w: at least %d bytes, limit is %d",
			ErrImageTooLarge, len(data), limit)
	}

	return &Image{Data: data}, nil
}
