package bmp

import (
	"fmt"
	"io"
)

// RGB is one resolved 24-bit color.
type RGB struct {
	R, G, B uint8
}

// Palette is the color table for bit depths of 8 and below, index-addressed.
// It is read once after the DIB header and immutable afterwards.
type Palette []RGB

// readColorTable reads count consecutive 4-byte entries immediately following
// the header block. Each entry stores blue, green, red in its three low-order
// bytes; the high byte is reserved and ignored.
func readColorTable(src io.Reader, count int) (Palette, error) {
	pal := make(Palette, 0, min(count, 256))
	var entry [4]byte
	for i := 0; i < count; i++ {
		if _, err := io.ReadFull(src, entry[:]); err != nil {
			return nil, fmt.Errorf("%w: color table entry %d of %d: %v",
				ErrUnexpectedEndOfSource, i, count, err)
		}
		pal = append(pal, RGB{R: entry[2], G: entry[1], B: entry[0]})
	}
	return pal, nil
}
