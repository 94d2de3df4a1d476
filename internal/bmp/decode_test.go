package bmp

import (
	"bytes"
	"image"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kulaginds/bmp-html5/internal/surface"
)

// decodeRGBA decodes and unwraps the default RGBA surface.
func decodeRGBA(t *testing.T, data []byte, opts Options) (*image.RGBA, Info) {
	t.Helper()

	res, err := Decode(bytes.NewReader(data), opts)
	require.NoError(t, err)

	rgba, ok := res.Surface.(*surface.RGBA)
	require.True(t, ok)
	return rgba.Img, res.Info
}

func requirePixel(t *testing.T, img *image.RGBA, x, y int, want RGB) {
	t.Helper()
	c := img.RGBAAt(x, y)
	require.Equal(t, want, RGB{R: c.R, G: c.G, B: c.B}, "pixel (%d,%d)", x, y)
}

func TestDecode_1x1_24Bit(t *testing.T) {
	data := testBitmap{
		width:     1,
		height:    1,
		bpp:       24,
		imageSize: 4,
		pixels:    []byte{0x10, 0x20, 0x30, 0x00},
	}.build(t)

	img, info := decodeRGBA(t, data, Options{})

	requirePixel(t, img, 0, 0, RGB{R: 0x30, G: 0x20, B: 0x10})
	require.Equal(t, 24, info.BitsPerPixel)
}

func TestDecode_1x1_32BitPadByteIgnored(t *testing.T) {
	data := testBitmap{
		width:     1,
		height:    1,
		bpp:       32,
		imageSize: 4,
		pixels:    []byte{0x10, 0x20, 0x30, 0xEE},
	}.build(t)

	img, _ := decodeRGBA(t, data, Options{})
	requirePixel(t, img, 0, 0, RGB{R: 0x30, G: 0x20, B: 0x10})
}

func TestDecode_16BitMaskSelection(t *testing.T) {
	pixels := []byte{0xFF, 0xFF, 0x00, 0x00} // word 0xFFFF plus stride padding

	plain := testBitmap{width: 1, height: 1, bpp: 16, imageSize: 4, pixels: pixels}.build(t)
	img, _ := decodeRGBA(t, plain, Options{})
	requirePixel(t, img, 0, 0, RGB{R: 0xF8, G: 0xF8, B: 0xF8})

	masks := make([]byte, 12)
	masks[0] = 0x00
	masks[1] = 0xF8 // red 0xF800
	masks[5] = 0x07
	masks[4] = 0xE0 // green 0x07E0
	masks[8] = 0x1F // blue 0x001F
	masked := testBitmap{
		width:       1,
		height:      1,
		bpp:         16,
		compression: uint32(BiBitfields),
		imageSize:   4,
		masks:       masks,
		pixels:      pixels,
	}.build(t)

	img, info := decodeRGBA(t, masked, Options{})
	require.NotNil(t, info.Masks)
	requirePixel(t, img, 0, 0, RGB{R: 0xF8, G: 0xFC, B: 0xF8})
}

func TestDecode_1BitPalette(t *testing.T) {
	pal0 := RGB{R: 0x00, G: 0x00, B: 0xFF}
	pal1 := RGB{R: 0xFF, G: 0x00, B: 0x00}

	data := testBitmap{
		width:      8,
		height:     1,
		bpp:        1,
		imageSize:  4,
		colorCount: 2,
		palette:    paletteBGRX(pal0, pal1),
		pixels:     []byte{0x80, 0x00, 0x00, 0x00},
	}.build(t)

	img, _ := decodeRGBA(t, data, Options{})

	// Top bit set: first sub-pixel uses entry 1, the remaining seven entry 0.
	requirePixel(t, img, 0, 0, pal1)
	for x := 1; x < 8; x++ {
		requirePixel(t, img, x, 0, pal0)
	}
}

func TestDecode_4BitPalette(t *testing.T) {
	pal := make([]RGB, 16)
	pal[0x3] = RGB{R: 0x11, G: 0x22, B: 0x33}
	pal[0x1] = RGB{R: 0x44, G: 0x55, B: 0x66}

	data := testBitmap{
		width:     2,
		height:    1,
		bpp:       4,
		imageSize: 4,
		palette:   paletteBGRX(pal...),
		pixels:    []byte{0x31, 0x00, 0x00, 0x00},
	}.build(t)

	img, info := decodeRGBA(t, data, Options{})
	require.Equal(t, 16, info.ColorCount)
	requirePixel(t, img, 0, 0, pal[0x3])
	requirePixel(t, img, 1, 0, pal[0x1])
}

func TestDecode_RLE8(t *testing.T) {
	pal := make([]RGB, 4)
	pal[1] = RGB{R: 0xAA}
	pal[2] = RGB{B: 0xBB}

	data := testBitmap{
		width:       4,
		height:      2,
		bpp:         8,
		compression: uint32(BiRLE8),
		imageSize:   8,
		colorCount:  4,
		palette:     paletteBGRX(pal...),
		pixels: []byte{
			0x04, 0x01, // run: four pixels of index 1
			0x00, 0x00, // end of line
			0x04, 0x02, // run: four pixels of index 2
			0x00, 0x01, // end of bitmap
		},
	}.build(t)

	img, info := decodeRGBA(t, data, Options{})
	require.Equal(t, BiRLE8, info.Compression)

	for x := 0; x < 4; x++ {
		requirePixel(t, img, x, 0, pal[1])
		requirePixel(t, img, x, 1, pal[2])
	}
}

func TestDecode_RLE4(t *testing.T) {
	pal := make([]RGB, 16)
	pal[1] = RGB{R: 0x10}
	pal[2] = RGB{G: 0x20}

	data := testBitmap{
		width:       4,
		height:      1,
		bpp:         4,
		compression: uint32(BiRLE4),
		imageSize:   4,
		colorCount:  16,
		palette:     paletteBGRX(pal...),
		pixels: []byte{
			0x04, 0x12, // run: nibbles 1,2,1,2
			0x00, 0x01, // end of bitmap
		},
	}.build(t)

	img, _ := decodeRGBA(t, data, Options{})
	requirePixel(t, img, 0, 0, pal[1])
	requirePixel(t, img, 1, 0, pal[2])
	requirePixel(t, img, 2, 0, pal[1])
	requirePixel(t, img, 3, 0, pal[2])
}

func TestDecode_GapBeforePixelArray(t *testing.T) {
	data := testBitmap{
		width:     1,
		height:    1,
		bpp:       24,
		imageSize: 4,
		gap:       16,
		pixels:    []byte{0x10, 0x20, 0x30, 0x00},
	}.build(t)

	img, info := decodeRGBA(t, data, Options{})
	require.Equal(t, uint32(54+16), info.PixelArrayOffset)
	requirePixel(t, img, 0, 0, RGB{R: 0x30, G: 0x20, B: 0x10})
}

func TestDecode_TruncatedPixelArray(t *testing.T) {
	data := testBitmap{
		width:     4,
		height:    4,
		bpp:       24,
		imageSize: 48,
		pixels:    make([]byte, 20), // header claims 48
	}.build(t)

	_, err := Decode(bytes.NewReader(data), Options{})
	require.ErrorIs(t, err, ErrUnexpectedEndOfSource)
}

func TestDecode_TruncatedRLEStream(t *testing.T) {
	data := testBitmap{
		width:       4,
		height:      1,
		bpp:         8,
		compression: uint32(BiRLE8),
		imageSize:   4,
		colorCount:  2,
		palette:     make([]byte, 2*4),
		pixels:      []byte{0x00, 0x06, 0x01, 0x02}, // absolute run cut short
	}.build(t)

	_, err := Decode(bytes.NewReader(data), Options{})
	require.ErrorIs(t, err, ErrUnexpectedEndOfSource)
}

func TestDecode_RowOrder(t *testing.T) {
	// Two rows stored bottom-up (positive height): the file stores the
	// bottom row first.
	storedFirst := RGB{R: 0x01, G: 0x02, B: 0x03}
	storedSecond := RGB{R: 0x04, G: 0x05, B: 0x06}
	pixels := []byte{
		storedFirst.B, storedFirst.G, storedFirst.R, 0x00,
		storedSecond.B, storedSecond.G, storedSecond.R, 0x00,
	}

	tb := testBitmap{width: 1, height: 2, bpp: 24, imageSize: 8, pixels: pixels}

	// Default: rows land in on-disk order, no reversal.
	img, _ := decodeRGBA(t, tb.build(t), Options{})
	requirePixel(t, img, 0, 0, storedFirst)
	requirePixel(t, img, 0, 1, storedSecond)

	// Bottom-up option: the stored-first row is the bottom row.
	img, _ = decodeRGBA(t, tb.build(t), Options{RowOrder: RowOrderBottomUp})
	requirePixel(t, img, 0, 1, storedFirst)
	requirePixel(t, img, 0, 0, storedSecond)

	// Negative height means top-down storage; the option changes nothing.
	tb.height = -2
	img, _ = decodeRGBA(t, tb.build(t), Options{RowOrder: RowOrderBottomUp})
	requirePixel(t, img, 0, 0, storedFirst)
	requirePixel(t, img, 0, 1, storedSecond)
}

func TestDecode_SurfaceAllocationRefused(t *testing.T) {
	data := testBitmap{
		width:     2,
		height:    2,
		bpp:       24,
		imageSize: 16,
		pixels:    make([]byte, 16),
	}.build(t)

	_, err := Decode(bytes.NewReader(data), Options{
		Allocate: surface.Bounded(surface.NewRGBA, 1, 1),
	})
	require.ErrorIs(t, err, ErrSurfaceAllocation)
}

func TestDecode_ExtraScanlinesDropped(t *testing.T) {
	// Pixel data holds two rows but the header declares one; the extra row
	// is dropped.
	data := testBitmap{
		width:     1,
		height:    1,
		bpp:       24,
		imageSize: 8,
		pixels: []byte{
			0x10, 0x20, 0x30, 0x00,
			0xAA, 0xBB, 0xCC, 0x00,
		},
	}.build(t)

	img, _ := decodeRGBA(t, data, Options{})
	b := img.Bounds()
	require.Equal(t, 1, b.Dy())
	requirePixel(t, img, 0, 0, RGB{R: 0x30, G: 0x20, B: 0x10})
}

func TestDecode_SubByteUnitClippedAtRowBoundary(t *testing.T) {
	// Width 3 at 1bpp: the single source byte naturally expands to eight
	// sub-pixels, but only three fit the row.
	pal0 := RGB{B: 0xFF}
	pal1 := RGB{R: 0xFF}

	data := testBitmap{
		width:      3,
		height:     1,
		bpp:        1,
		imageSize:  4,
		colorCount: 2,
		palette:    paletteBGRX(pal0, pal1),
		pixels:     []byte{0xA0, 0x00, 0x00, 0x00}, // bits 1,0,1,0...
	}.build(t)

	img, _ := decodeRGBA(t, data, Options{})
	require.Equal(t, 3, img.Bounds().Dx())
	requirePixel(t, img, 0, 0, pal1)
	requirePixel(t, img, 1, 0, pal0)
	requirePixel(t, img, 2, 0, pal1)
}

func TestDecode_InfoMatchesDecode(t *testing.T) {
	data := testBitmap{
		width:     1,
		height:    1,
		bpp:       24,
		imageSize: 4,
		pixels:    []byte{0x10, 0x20, 0x30, 0x00},
	}.build(t)

	// DecodeInfo never touches pixel data: it succeeds on a source truncated
	// right after the headers.
	info, err := DecodeInfo(bytes.NewReader(data[:54]))
	require.NoError(t, err)

	_, full := decodeRGBA(t, data, Options{})
	require.Equal(t, *info, full)
}
