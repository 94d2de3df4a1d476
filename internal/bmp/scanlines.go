package bmp

import (
	"fmt"
	"io"

	"github.com/kulaginds/bmp-html5/internal/codec"
)

// unitSize returns the byte width of one encoded pixel unit within a
// scanline. Sub-byte depths use single-byte units holding 8/bpp packed
// indices; a 32-bit unit carries three meaningful bytes plus one pad byte.
func unitSize(bitsPerPixel int) int {
	switch bitsPerPixel {
	case 16:
		return 2
	case 24:
		return 3
	case 32:
		return 4
	default:
		return 1
	}
}

// readScanlines seeks to the pixel array, reads exactly ImageSize bytes,
// applies RLE decompression when declared, and splits the result into
// consecutive RowStride chunks, one per scanline.
func readScanlines(src io.ReadSeeker, fh FileHeader, ih InfoHeader) ([][]byte, error) {
	// A gap between the color table and the pixel array is legal; seeking
	// to the declared offset skips it.
	if _, err := src.Seek(int64(fh.PixelArrayOffset), io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w: seek to pixel array at %d: %v",
			ErrUnexpectedEndOfSource, fh.PixelArrayOffset, err)
	}

	data := make([]byte, ih.ImageSize)
	if _, err := io.ReadFull(src, data); err != nil {
		return nil, fmt.Errorf("%w: pixel array wants %d bytes at offset %d: %v",
			ErrUnexpectedEndOfSource, ih.ImageSize, fh.PixelArrayOffset, err)
	}

	var err error
	switch ih.Compression {
	case BiRLE8:
		if data, err = codec.DecompressRLE8(data, ih.Width); err != nil {
			return nil, fmt.Errorf("%w: RLE8: %v", ErrUnexpectedEndOfSource, err)
		}
	case BiRLE4:
		if data, err = codec.DecompressRLE4(data, ih.Width); err != nil {
			return nil, fmt.Errorf("%w: RLE4: %v", ErrUnexpectedEndOfSource, err)
		}
	}

	stride := codec.RowStride(ih.Width, ih.BitsPerPixel)
	if stride <= 0 {
		// Nonpositive width; surface allocation refuses it downstream.
		return nil, nil
	}
	rows := make([][]byte, 0, min(abs(ih.Height), len(data)/stride+1))
	for off := 0; off < len(data); off += stride {
		end := off + stride
		if end > len(data) {
			end = len(data)
		}
		rows = append(rows, data[off:end])
	}
	return rows, nil
}
