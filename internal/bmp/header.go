package bmp

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/kulaginds/bmp-html5/internal/codec"
)

// signature is the little-endian value of the ASCII bytes "BM" (19778).
const signature = 0x4D42

const (
	fileHeaderSize = 14
	// Minimum supported DIB header: the 40-byte BITMAPINFOHEADER. Larger
	// headers are accepted; fields past the first 40 bytes are skipped.
	infoHeaderSize = 40
)

// Compression enumerates the pixel-array encodings of the DIB header.
type Compression uint32

const (
	BiRGB Compression = iota
	BiRLE8
	BiRLE4
	BiBitfields
)

func (c Compression) String() string {
	switch c {
	case BiRGB:
		return "BI_RGB"
	case BiRLE8:
		return "BI_RLE8"
	case BiRLE4:
		return "BI_RLE4"
	case BiBitfields:
		return "BI_BITFIELDS"
	}
	return fmt.Sprintf("compression(%d)", uint32(c))
}

// FileHeader holds the fields of the fixed 14-byte bitmap file header that
// matter to the decoder.
type FileHeader struct {
	FileSize         uint32
	PixelArrayOffset uint32
}

// InfoHeader is the 40-byte BITMAPINFOHEADER with the derived-field fixups
// already applied. The sign of Height encodes scanline storage order; its
// magnitude is the pixel row count.
type InfoHeader struct {
	HeaderSize   int
	Width        int
	Height       int
	BitsPerPixel int
	Compression  Compression
	ImageSize    int // pixel-array bytes, derived when declared as zero
	ColorCount   int // palette entries, 2^bpp when declared as zero
}

// BitMasks disambiguates the 16-bit channel layout of BI_BITFIELDS images.
type BitMasks struct {
	Red   uint32
	Green uint32
	Blue  uint32
}

// parseHeaders reads the file header and the DIB header, validates the magic
// and bit depth, and applies the ColorCount and ImageSize fixups. The source
// is left positioned just past the header block (and mask block, if any).
func parseHeaders(src io.Reader) (FileHeader, InfoHeader, *BitMasks, error) {
	var fh FileHeader
	var ih InfoHeader

	var raw [fileHeaderSize]byte
	if _, err := io.ReadFull(src, raw[:]); err != nil {
		return fh, ih, nil, fmt.Errorf("%w: file header: %v", ErrUnexpectedEndOfSource, err)
	}
	if binary.LittleEndian.Uint16(raw[0:2]) != signature {
		return fh, ih, nil, fmt.Errorf("%w: got 0x%02X%02X", ErrInvalidSignature, raw[0], raw[1])
	}
	fh.FileSize = binary.LittleEndian.Uint32(raw[2:6])
	fh.PixelArrayOffset = binary.LittleEndian.Uint32(raw[10:14])

	var sizeField [4]byte
	if _, err := io.ReadFull(src, sizeField[:]); err != nil {
		return fh, ih, nil, fmt.Errorf("%w: DIB header size: %v", ErrUnexpectedEndOfSource, err)
	}
	headerSize := int(binary.LittleEndian.Uint32(sizeField[:]))
	if headerSize < infoHeaderSize {
		return fh, ih, nil, fmt.Errorf("%w: %d bytes", ErrUnsupportedHeaderVersion, headerSize)
	}

	rest := make([]byte, headerSize-4)
	if _, err := io.ReadFull(src, rest); err != nil {
		return fh, ih, nil, fmt.Errorf("%w: DIB header wants %d bytes: %v",
			ErrUnexpectedEndOfSource, headerSize, err)
	}

	ih.HeaderSize = headerSize
	ih.Width = int(int32(binary.LittleEndian.Uint32(rest[0:4])))
	ih.Height = int(int32(binary.LittleEndian.Uint32(rest[4:8])))
	// rest[8:10] planes, rest[20:28] resolution and rest[32:36] important
	// colors are ignored, as are any bytes past the 40 required fields.
	ih.BitsPerPixel = int(binary.LittleEndian.Uint16(rest[10:12]))
	ih.Compression = Compression(binary.LittleEndian.Uint32(rest[12:16]))
	ih.ImageSize = int(binary.LittleEndian.Uint32(rest[16:20]))
	ih.ColorCount = int(binary.LittleEndian.Uint32(rest[28:32]))

	switch ih.BitsPerPixel {
	case 1, 4, 8, 16, 24, 32:
	default:
		return fh, ih, nil, fmt.Errorf("%w: %d bpp", ErrUnsupportedBitDepth, ih.BitsPerPixel)
	}

	if ih.ColorCount == 0 {
		ih.ColorCount = 1 << ih.BitsPerPixel
	}
	if ih.ImageSize == 0 {
		switch ih.Compression {
		case BiRLE8, BiRLE4:
			ih.ImageSize = int(fh.FileSize) - int(fh.PixelArrayOffset)
		default:
			ih.ImageSize = codec.RowStride(ih.Width, ih.BitsPerPixel) * abs(ih.Height)
		}
	}
	if ih.ImageSize < 1 {
		return fh, ih, nil, fmt.Errorf("%w: %d bytes", ErrInvalidImageSize, ih.ImageSize)
	}

	var masks *BitMasks
	if ih.Compression == BiBitfields {
		var mb [12]byte
		if _, err := io.ReadFull(src, mb[:]); err != nil {
			return fh, ih, nil, fmt.Errorf("%w: channel masks: %v", ErrUnexpectedEndOfSource, err)
		}
		masks = &BitMasks{
			Red:   binary.LittleEndian.Uint32(mb[0:4]),
			Green: binary.LittleEndian.Uint32(mb[4:8]),
			Blue:  binary.LittleEndian.Uint32(mb[8:12]),
		}
	}

	return fh, ih, masks, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
