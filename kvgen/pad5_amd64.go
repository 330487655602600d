//go:build amd64 && kvgen_asm

package kvgen

func formatPad5(d *[5]byte, n uint64) {
	pad5Kernel(d, n)
}
