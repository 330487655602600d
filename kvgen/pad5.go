package kvgen

import "strconv"

//go:generate go run ./asm-generators/pad5 -out pad5_amd64.s -stubs pad5_stub_amd64.go -pkg kvgen

// appendPad5 appends n in decimal, zero padded to at least five digits.
func appendPad5(dst []byte, n int) []byte {
	if n >= 100000 {
		return strconv.AppendInt(dst, int64(n), 10)
	}
	var d [5]byte
	formatPad5(&d, uint64(n))
	return append(dst, d[:]...)
}

// pad5Naive writes the low five decimal digits of n into d.
func pad5Naive(d *[5]byte, n uint64) {
	for i := len(d) - 1; i >= 0; i-- {
		d[i] = '0' + byte(n%10)
		n /= 10
	}
}
