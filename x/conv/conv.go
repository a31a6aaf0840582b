// Package conv formats integers into caller buffers without fmt or
// strconv, for labels built on hot paths.
package conv

const hexDigits = "0123456789ABCDEF"

// Itoa writes n in base 10 at the end of buf and returns the used tail.
// 20 bytes hold any int64.
func Itoa(buf []byte, n int64) []byte {
	u := uint64(n)
	if n < 0 {
		u = uint64(-n)
	}
	i := utoa(buf, u)
	if n < 0 && i > 0 {
		i--
		buf[i] = '-'
	}
	return buf[i:]
}

func utoa(buf []byte, u uint64) int {
	i := len(buf)
	if i == 0 {
		return 0
	}
	if u == 0 {
		i--
		buf[i] = '0'
		return i
	}
	for u > 0 && i > 0 {
		i--
		buf[i] = byte('0' + u%10)
		u /= 10
	}
	return i
}

// Hex writes the low digits nibbles of v as zero-padded uppercase hex,
// without a prefix. A buf shorter than digits yields an empty slice.
func Hex(buf []byte, v uint32, digits int) []byte {
	if digits > 8 || len(buf) < digits {
		return buf[:0]
	}
	i := len(buf)
	for j := 0; j < digits; j++ {
		i--
		buf[i] = hexDigits[v&0xF]
		v >>= 4
	}
	return buf[i:]
}
