// Package surface defines the drawable target a decoded bitmap is written to.
package surface

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

// ErrAllocation reports that a surface could not be allocated for the
// requested dimensions.
var ErrAllocation = errors.New("surface: allocation refused")

// maxPixels bounds the default allocator; anything larger is treated as a
// refused platform allocation.
const maxPixels = 1 << 26

// Surface is a row-major pixel sink sized at allocation time.
type Surface interface {
	Size() (width, height int)
	SetRGB(x, y int, r, g, b uint8)
}

// Allocator produces a surface for the given dimensions or reports that the
// allocation was refused.
type Allocator func(width, height int) (Surface, error)

// RGBA is a Surface backed by a stdlib image.RGBA with opaque alpha.
type RGBA struct {
	Img *image.RGBA
}

// NewRGBA allocates an RGBA surface. It is the default Allocator.
func NewRGBA(width, height int) (Surface, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrAllocation, width, height)
	}
	if int64(width)*int64(height) > maxPixels {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrAllocation, width, height, maxPixels)
	}
	return &RGBA{Img: image.NewRGBA(image.Rect(0, 0, width, height))}, nil
}

func (s *RGBA) Size() (int, int) {
	b := s.Img.Bounds()
	return b.Dx(), b.Dy()
}

func (s *RGBA) SetRGB(x, y int, r, g, b uint8) {
	s.Img.SetRGBA(x, y, color.RGBA{R: r, G: g, B: b, A: 0xFF})
}

// Bounded wraps an allocator with configured dimension limits.
func Bounded(alloc Allocator, maxWidth, maxHeight int) Allocator {
	return func(width, height int) (Surface, error) {
		if (maxWidth > 0 && width > maxWidth) || (maxHeight > 0 && height > maxHeight) {
			return nil, fmt.Errorf("%w: %dx%d exceeds limit %dx%d",
				ErrAllocation, width, height, maxWidth, maxHeight)
		}
		return alloc(width, height)
	}
}
