package bls12381

import (
	"fmt"
	"testing"
)

func dump(tag string, z *GT) {
	fmt.Printf("%s %s|%s|%s|%s|%s|%s|%s|%s|%s|%s|%s|%s\n", tag,
		z.C0.B0.A0.String(), z.C0.B0.A1.String(),
		z.C0.B1.A0.String(), z.C0.B1.A1.String(),
		z.C0.B2.A0.String(), z.C0.B2.A1.String(),
		z.C1.B0.A0.String(), z.C1.B0.A1.String(),
		z.C1.B1.A0.String(), z.C1.B1.A1.String(),
		z.C1.B2.A0.String(), z.C1.B2.A1.String())
}

func TestZZDiag(t *testing.T) {
	ml, _ := MillerLoop([]G1Affine{g1GenAff}, []G2Affine{g2GenAff})
	var result GT
	result.Set(&ml)
	var tt [3]GT
	tt[0].Conjugate(&result)
	result.Inverse(&result)
	tt[0].Mul(&tt[0], &result)
	result.FrobeniusSquare(&tt[0]).Mul(&result, &tt[0])
	dump("EASY", &result)
	tt[0].CyclotomicSquare(&result)
	dump("H1", &tt[0])
	tt[1].Expt(&result)
	dump("H2", &tt[1])
}
