package bits

import mathbits "math/bits"

// Mask returns a value with the low n bits set. n >= 64 yields all ones.
func Mask(n int) uint64 {
	if n >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << uint(n)) - 1
}

// ShiftedMask returns Mask(n) moved to start at bit offset.
func ShiftedMask(offset, n int) uint64 {
	return Mask(n) << uint(offset)
}

// Extract returns the n bits of v starting at offset, shifted down to bit 0.
func Extract(v uint64, offset, n int) uint64 {
	return (v >> uint(offset)) & Mask(n)
}

// ExtractNoShift returns the n bits of v starting at offset, left in place.
func ExtractNoShift(v uint64, offset, n int) uint64 {
	return v & ShiftedMask(offset, n)
}

// Modify returns v with the n bits at offset replaced by the low n bits of nv.
func Modify(v uint64, offset, n int, nv uint64) uint64 {
	m := ShiftedMask(offset, n)
	return (v &^ m) | ((nv << uint(offset)) & m)
}

// SignExtend interprets the low n bits of raw as a two's complement number.
func SignExtend(raw uint64, n int) int64 {
	raw &= Mask(n)
	if n < 64 && raw&(uint64(1)<<uint(n-1)) != 0 {
		raw |= ^Mask(n)
	}
	return int64(raw)
}

// Truncate returns the n-bit two's complement pattern of v, which is v mod 2^n.
func Truncate(v int64, n int) uint64 {
	return uint64(v) & Mask(n)
}

// Required returns the number of bits needed to represent v, at least 1.
func Required(v uint64) int {
	if v == 0 {
		return 1
	}
	return mathbits.Len64(v)
}

// MinSigned returns -2^(n-1).
func MinSigned(n int) int64 {
	return -int64(uint64(1) << uint(n-1))
}

// MaxSigned returns 2^(n-1) - 1.
func MaxSigned(n int) int64 {
	return int64((uint64(1) << uint(n-1)) - 1)
}
