package bmp

import (
	"bytes"
	"encoding/binary"
	"testing"
)

// testBitmap describes a synthetic BMP byte stream for tests.
type testBitmap struct {
	width       int32
	height      int32
	bpp         uint16
	compression uint32
	imageSize   uint32
	colorCount  uint32
	masks       []byte // 12 bytes when compression is BI_BITFIELDS
	palette     []byte // raw 4-byte BGRX entries
	gap         int    // legal gap between color table and pixel array
	pixels      []byte

	fileSizeOverride uint32 // nonzero replaces the computed file size
}

// build serializes the bitmap with a 14-byte file header and a 40-byte
// BITMAPINFOHEADER.
func (tb testBitmap) build(t *testing.T) []byte {
	t.Helper()

	offset := 14 + 40 + len(tb.masks) + len(tb.palette) + tb.gap
	fileSize := uint32(offset + len(tb.pixels))
	if tb.fileSizeOverride != 0 {
		fileSize = tb.fileSizeOverride
	}

	var buf bytes.Buffer
	le := binary.LittleEndian

	buf.WriteString("BM")
	_ = binary.Write(&buf, le, fileSize)
	_ = binary.Write(&buf, le, uint32(0)) // reserved
	_ = binary.Write(&buf, le, uint32(offset))

	_ = binary.Write(&buf, le, uint32(40))
	_ = binary.Write(&buf, le, tb.width)
	_ = binary.Write(&buf, le, tb.height)
	_ = binary.Write(&buf, le, uint16(1)) // planes
	_ = binary.Write(&buf, le, tb.bpp)
	_ = binary.Write(&buf, le, tb.compression)
	_ = binary.Write(&buf, le, tb.imageSize)
	_ = binary.Write(&buf, le, uint64(0)) // x/y resolution
	_ = binary.Write(&buf, le, tb.colorCount)
	_ = binary.Write(&buf, le, uint32(0)) // important colors

	buf.Write(tb.masks)
	buf.Write(tb.palette)
	buf.Write(make([]byte, tb.gap))
	buf.Write(tb.pixels)

	return buf.Bytes()
}

// paletteBGRX builds raw color table bytes from RGB triples.
func paletteBGRX(colors ...RGB) []byte {
	out := make([]byte, 0, 4*len(colors))
	for _, c := range colors {
		out = append(out, c.B, c.G, c.R, 0)
	}
	return out
}
