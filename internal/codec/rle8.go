package codec

import "fmt"

// DecompressRLE8 expands a BI_RLE8 pixel stream into flat scanline bytes.
//
// The input is a sequence of two-byte op-codes. A nonzero count byte repeats
// the following value byte count times. A zero count byte escapes: end-of-line
// pads the output with zeros to the line width, end-of-bitmap pads and stops,
// delta skips two input bytes without emitting anything, and any other
// selector K >= 3 copies K literal bytes (plus one input pad byte when K is
// odd, keeping the input on a 2-byte boundary).
//
// The line width used for padding is the image width rounded up to the next
// multiple of 4, so every emitted line matches the uncompressed row stride.
func DecompressRLE8(src []byte, width int) ([]byte, error) {
	lineWidth := alignUp(width, 4)
	out := make([]byte, 0, len(src)*2)

	i := 0
	for i < len(src) {
		if i+1 >= len(src) {
			return nil, fmt.Errorf("%w: op-code at offset %d", ErrTruncated, i)
		}
		count, value := src[i], src[i+1]
		i += 2

		if count > 0 { // run mode
			for n := 0; n < int(count); n++ {
				out = append(out, value)
			}
			continue
		}

		switch value {
		case escEndOfLine:
			out = padToLine(out, lineWidth)
		case escEndOfBitmap:
			return padToLine(out, lineWidth), nil
		case escDelta:
			if i+2 > len(src) {
				return nil, fmt.Errorf("%w: delta at offset %d", ErrTruncated, i-2)
			}
			// Relative cursor move; nothing is materialized in the flat output.
			i += 2
		default: // absolute mode: value literal bytes follow
			k := int(value)
			if i+k > len(src) {
				return nil, fmt.Errorf("%w: absolute run of %d at offset %d", ErrTruncated, k, i-2)
			}
			out = append(out, src[i:i+k]...)
			i += k
			if k%2 == 1 {
				i++ // input pad byte keeps op-codes 2-byte aligned
			}
		}
	}

	return out, nil
}
