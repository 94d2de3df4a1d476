package bmp

import "errors"

// Decode failure taxonomy. Every stage fails closed: the first error aborts
// the whole decode and is surfaced to the caller, wrapped with the offending
// offset or field. Match with errors.Is.
var (
	// ErrInvalidSignature reports that the source does not start with the
	// "BM" bitmap magic.
	ErrInvalidSignature = errors.New("bmp: missing BM signature")

	// ErrUnsupportedHeaderVersion reports a DIB header smaller than the
	// 40-byte BITMAPINFOHEADER.
	ErrUnsupportedHeaderVersion = errors.New("bmp: unsupported DIB header version")

	// ErrUnsupportedBitDepth reports a bit depth outside {1,4,8,16,24,32}.
	ErrUnsupportedBitDepth = errors.New("bmp: unsupported bit depth")

	// ErrInvalidImageSize reports a declared or derived pixel-array size
	// below one byte.
	ErrInvalidImageSize = errors.New("bmp: invalid pixel data size")

	// ErrUnexpectedEndOfSource reports any read past the end of the source:
	// headers, color table, pixel array, or a mid-RLE escape sequence.
	ErrUnexpectedEndOfSource = errors.New("bmp: unexpected end of source")

	// ErrSurfaceAllocation reports that the target surface was refused for
	// the decoded dimensions.
	ErrSurfaceAllocation = errors.New("bmp: surface allocation failed")
)
