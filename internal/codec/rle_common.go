// Package codec implements the BMP run-length decompressors as specified in
// MS-WMF section 2.2.2.9 (BI_RLE8) and 2.2.2.10 (BI_RLE4).
//
// Both formats share the same two-byte op-code structure: a nonzero first
// byte starts a run, a zero first byte is an escape whose second byte selects
// end-of-line, end-of-bitmap, a delta cursor move, or an absolute literal run.
package codec

import "errors"

// ErrTruncated reports a run-length stream that ends in the middle of an
// op-code or literal run.
var ErrTruncated = errors.New("codec: truncated run-length stream")

// Escape selectors, valid after a zero count byte.
const (
	escEndOfLine   = 0x00
	escEndOfBitmap = 0x01
	escDelta       = 0x02
)

// RowStride returns the on-disk byte length of one scanline. BMP scanlines
// are padded to a 4-byte boundary, both on disk and after RLE decompression.
func RowStride(width, bitsPerPixel int) int {
	return (bitsPerPixel*width + 31) / 32 * 4
}

// alignUp rounds n up to the next multiple of m.
func alignUp(n, m int) int {
	if m <= 0 {
		return n
	}
	if r := n % m; r != 0 {
		return n + m - r
	}
	return n
}

// padToLine appends zero units until the output length is a multiple of the
// line width.
func padToLine(out []byte, lineWidth int) []byte {
	if lineWidth <= 0 {
		return out
	}
	for len(out)%lineWidth != 0 {
		out = append(out, 0)
	}
	return out
}
