package codec

import "fmt"

// DecompressRLE4 expands a BI_RLE4 pixel stream into flat scanline bytes.
//
// The op-code structure matches DecompressRLE8 but every encoded unit is a
// 4-bit nibble. Run mode emits count nibbles alternating between the high and
// low nibble of the value byte. Absolute mode unpacks K nibbles from the next
// ceil(K/2) input bytes, then skips one input pad byte when K is even. After
// decompression the nibbles are repacked two per byte (a trailing zero nibble
// is appended when the count is odd) so the caller splits rows exactly like
// uncompressed 4-bit data.
func DecompressRLE4(src []byte, width int) ([]byte, error) {
	// Padding target in nibbles, derived from the half-width row stride.
	lineNibbles := 2 * alignUp((width+1)/2, 4)
	nibbles := make([]byte, 0, len(src)*4)

	i := 0
	for i < len(src) {
		if i+1 >= len(src) {
			return nil, fmt.Errorf("%w: op-code at offset %d", ErrTruncated, i)
		}
		count, value := src[i], src[i+1]
		i += 2

		if count > 0 { // run mode
			hi, lo := value>>4, value&0x0F
			for n := 0; n < int(count); n++ {
				if n%2 == 0 {
					nibbles = append(nibbles, hi)
				} else {
					nibbles = append(nibbles, lo)
				}
			}
			continue
		}

		switch value {
		case escEndOfLine:
			nibbles = padToLine(nibbles, lineNibbles)
		case escEndOfBitmap:
			return packNibbles(padToLine(nibbles, lineNibbles)), nil
		case escDelta:
			if i+2 > len(src) {
				return nil, fmt.Errorf("%w: delta at offset %d", ErrTruncated, i-2)
			}
			i += 2
		default: // absolute mode: value nibbles follow
			k := int(value)
			nb := (k + 1) / 2
			if i+nb > len(src) {
				return nil, fmt.Errorf("%w: absolute run of %d at offset %d", ErrTruncated, k, i-2)
			}
			for n := 0; n < k; n++ {
				b := src[i+n/2]
				if n%2 == 0 {
					nibbles = append(nibbles, b>>4)
				} else {
					nibbles = append(nibbles, b&0x0F)
				}
			}
			i += nb
			if k%2 == 0 {
				i++ // even-count literals carry an input pad byte
			}
		}
	}

	return packNibbles(nibbles), nil
}

// packNibbles packs the nibble sequence pairwise back into bytes, high nibble
// first.
func packNibbles(nibbles []byte) []byte {
	if len(nibbles)%2 == 1 {
		nibbles = append(nibbles, 0)
	}
	out := make([]byte, len(nibbles)/2)
	for i := range out {
		out[i] = nibbles[2*i]<<4 | nibbles[2*i+1]
	}
	return out
}
