package main

import (
	. "github.com/mmcloughlin/avo/build"
	. "github.com/mmcloughlin/avo/operand"
	. "github.com/mmcloughlin/avo/reg"
)

const digits = 5

func main() {
	ConstraintExpr("amd64 && kvgen_asm")

	TEXT("pad5Kernel", NOSPLIT, "func(dst *[5]byte, n uint64)")

	dst := Load(Param("dst"), RCX)
	n := Load(Param("n"), RBX)

	ten := RSI
	MOVQ(U32(10), ten)

	// DIVQ divides RDX:RAX, leaving the quotient in RAX and the remainder in
	// RDX.  Digits are produced least significant first.
	for i := digits - 1; i >= 0; i-- {
		Commentf("Digit %d", i)
		MOVQ(n, RAX)
		XORQ(RDX, RDX)
		DIVQ(ten)
		ADDQ(U8('0'), RDX)
		MOVB(DL, Mem{Base: dst}.Offset(i))
		MOVQ(RAX, n)
	}

	RET()

	Generate()
}
