// Package bmp decodes Windows bitmap (BMP) byte streams into drawable
// surfaces.
//
// Supported are BITMAPINFOHEADER files (and larger DIB headers, extra fields
// skipped) at 1, 4, 8, 16, 24 and 32 bits per pixel, uncompressed or
// compressed with BI_RLE8/BI_RLE4, with BI_BITFIELDS masks honored for the
// 16-bit channel layout. A decode is a pure, single-pass function of the
// input bytes: it either populates a freshly allocated surface or fails with
// one of the package's sentinel errors, leaving no shared state behind.
package bmp

import (
	"fmt"
	"io"

	"github.com/kulaginds/bmp-html5/internal/surface"
)

// RowOrder selects how decoded scanlines map onto surface rows.
type RowOrder int

const (
	// RowOrderAsStored writes rows in on-disk order regardless of the height
	// sign. Bottom-up files (positive height) therefore come out vertically
	// mirrored; this matches the behavior existing consumers depend on and
	// is the default.
	RowOrderAsStored RowOrder = iota

	// RowOrderBottomUp reverses rows for positive-height images, honoring
	// the BMP convention that positive height means bottom-up storage.
	// Negative-height (top-down) images are unaffected.
	RowOrderBottomUp
)

// Info exposes the parsed header fields for diagnostic use by the caller.
type Info struct {
	FileSize         uint32
	PixelArrayOffset uint32
	Width            int
	Height           int
	BitsPerPixel     int
	Compression      Compression
	ImageSize        int
	ColorCount       int
	Masks            *BitMasks
}

// Result is a completed decode: the populated surface plus header
// diagnostics.
type Result struct {
	Surface surface.Surface
	Info    Info
}

// Options tune a single decode. The zero value uses the default RGBA
// allocator and as-stored row order.
type Options struct {
	Allocate surface.Allocator
	RowOrder RowOrder
}

// decoder owns all per-decode state. Nothing is shared between decodes, so
// concurrent decodes over independent sources are safe.
type decoder struct {
	src   io.ReadSeeker
	opts  Options
	fh    FileHeader
	ih    InfoHeader
	masks *BitMasks
	pal   Palette
	rows  [][]byte
}

// Decode runs the full pipeline: header parse, color table (bit depths of 8
// and below), scanline read and decompression, and surface assembly. The
// caller owns the source and its lifetime; Decode never closes it.
func Decode(src io.ReadSeeker, opts Options) (*Result, error) {
	if opts.Allocate == nil {
		opts.Allocate = surface.NewRGBA
	}

	d := &decoder{src: src, opts: opts}

	var err error
	if d.fh, d.ih, d.masks, err = parseHeaders(src); err != nil {
		return nil, err
	}

	if d.ih.BitsPerPixel <= 8 {
		if d.pal, err = readColorTable(src, d.ih.ColorCount); err != nil {
			return nil, err
		}
	}

	if d.rows, err = readScanlines(src, d.fh, d.ih); err != nil {
		return nil, err
	}

	surf, err := d.assemble()
	if err != nil {
		return nil, err
	}

	return &Result{Surface: surf, Info: d.info()}, nil
}

// DecodeInfo parses the headers only, without touching the color table or
// pixel data.
func DecodeInfo(src io.ReadSeeker) (*Info, error) {
	d := decoder{}
	var err error
	if d.fh, d.ih, d.masks, err = parseHeaders(src); err != nil {
		return nil, err
	}
	info := d.info()
	return &info, nil
}

// assemble allocates the target surface and walks the decoded grid, expanding
// each unit through the resolver and writing pixels left to right. Units that
// straddle the row boundary contribute fewer pixels than their natural count,
// and decoded rows beyond the declared height are dropped.
func (d *decoder) assemble() (surface.Surface, error) {
	width, height := d.ih.Width, abs(d.ih.Height)

	surf, err := d.opts.Allocate(width, height)
	if err != nil {
		return nil, fmt.Errorf("%w: %dx%d: %v", ErrSurfaceAllocation, width, height, err)
	}

	res := resolver{bitsPerPixel: d.ih.BitsPerPixel, palette: d.pal, masks: d.masks}
	step := unitSize(d.ih.BitsPerPixel)

	var px [maxUnitPixels]RGB
	for i, row := range d.rows {
		if i >= height {
			break // over-long decompressed output is truncated
		}
		y := i
		if d.opts.RowOrder == RowOrderBottomUp && d.ih.Height > 0 {
			y = height - 1 - i
		}

		x := 0
		for off := 0; off+step <= len(row) && x < width; off += step {
			n := res.resolveUnit(row[off:off+step], &px)
			for j := 0; j < n && x < width; j++ {
				surf.SetRGB(x, y, px[j].R, px[j].G, px[j].B)
				x++
			}
		}
	}

	return surf, nil
}

func (d *decoder) info() Info {
	return Info{
		FileSize:         d.fh.FileSize,
		PixelArrayOffset: d.fh.PixelArrayOffset,
		Width:            d.ih.Width,
		Height:           d.ih.Height,
		BitsPerPixel:     d.ih.BitsPerPixel,
		Compression:      d.ih.Compression,
		ImageSize:        d.ih.ImageSize,
		ColorCount:       d.ih.ColorCount,
		Masks:            d.masks,
	}
}
