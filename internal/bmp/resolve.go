package bmp

// maxUnitPixels is the widest fan-out of a single encoded unit: a 1-bit byte
// holds eight packed indices.
const maxUnitPixels = 8

// resolver converts encoded pixel units into RGB values for one decode. It is
// pure: the same unit always resolves to the same pixels.
type resolver struct {
	bitsPerPixel int
	palette      Palette
	masks        *BitMasks
}

// resolveUnit expands one encoded unit into px and returns the pixel count.
//
// 24- and 32-bit units store blue, green, red in their first three bytes; the
// fourth byte of a 32-bit unit is padding. 16-bit units are little-endian
// words, 5-5-5 unless the red mask selects 5-6-5; each channel is shifted
// into the high bits of its 8-bit slot, low bits left clear. Units at 8 bits
// and below hold 8/bpp packed palette indices, most significant group first.
func (r *resolver) resolveUnit(unit []byte, px *[maxUnitPixels]RGB) int {
	switch r.bitsPerPixel {
	case 24, 32:
		px[0] = RGB{R: unit[2], G: unit[1], B: unit[0]}
		return 1

	case 16:
		word := uint16(unit[0]) | uint16(unit[1])<<8
		if r.masks != nil && r.masks.Red == 0xF800 {
			px[0] = RGB{
				R: uint8((word >> 11) << 3),
				G: uint8(((word >> 5) & 0x3F) << 2),
				B: uint8((word & 0x1F) << 3),
			}
		} else {
			px[0] = RGB{
				R: uint8(((word >> 10) & 0x1F) << 3),
				G: uint8(((word >> 5) & 0x1F) << 3),
				B: uint8((word & 0x1F) << 3),
			}
		}
		return 1

	default: // 1, 4, 8: packed palette indices
		perUnit := 8 / r.bitsPerPixel
		mask := byte(1<<r.bitsPerPixel - 1)
		for i := 0; i < perUnit; i++ {
			shift := uint(8 - r.bitsPerPixel*(i+1))
			px[i] = r.lookup(int(unit[0] >> shift & mask))
		}
		return perUnit
	}
}

// lookup resolves a palette index; indices past the table resolve to black
// rather than failing, keeping the resolver total.
func (r *resolver) lookup(idx int) RGB {
	if idx >= len(r.palette) {
		return RGB{}
	}
	return r.palette[idx]
}
