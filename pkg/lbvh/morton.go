package lbvh

// quantization steps per axis, 10 bits
const mortonAxisResolution = 1024

// expandBits spreads a 10-bit integer over 30 bits by inserting two zeros after each bit.
func expandBits(v uint32) uint32 {
	v = (v * 0x00010001) & 0xFF0000FF
	v = (v * 0x00000101) & 0x0F00F00F
	v = (v * 0x00000011) & 0xC30C30C3
	v = (v * 0x00000005) & 0x49249249

	return v
}

// quantize maps a coordinate of the unit interval to [0, 1023].
// Values outside the unit interval are clamped, NaN maps to 0.
func quantize(f float32) uint32 {
	f *= mortonAxisResolution

	switch {
	case !(f > 0): // also catches NaN
		return 0
	case f > mortonAxisResolution-1:
		return mortonAxisResolution - 1
	}

	return uint32(f)
}

// EncodeMorton calculates a 30-bit Morton code for a point of the unit cube [0, 1]³.
// The bits of the three axes are interleaved with X most significant.
// Coordinates outside the unit cube are clamped onto it.
func EncodeMorton(x, y, z float32) uint32 {
	xx := expandBits(quantize(x))
	yy := expandBits(quantize(y))
	zz := expandBits(quantize(z))

	return xx*4 + yy*2 + zz
}
