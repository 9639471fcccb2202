package ecc

import (
	"math/big"
)

// NafDecomposition writes the non-adjacent form of k into result, least
// significant digit first, and returns the number of digits written.
// result must have room for k.BitLen()+1 digits; k must be non-negative.
// No two consecutive digits are nonzero, so sum(result[i] * 2^i) == k with
// a minimal number of nonzero digits.
func NafDecomposition(k *big.Int, result []int8) int {
	one := big.NewInt(1)
	var cur big.Int
	cur.Set(k)

	length := 0
	for cur.Sign() != 0 {
		switch {
		case cur.Bit(0) == 0:
			result[length] = 0
		case cur.Bit(1) == 1:
			// odd with a trailing 11 pattern: emit -1 and carry up
			result[length] = -1
			cur.Add(&cur, one)
		default:
			result[length] = 1
		}
		cur.Rsh(&cur, 1)
		length++
	}
	return length
}

// SplitScalar decomposes k into (k1, k2) such that k = k1 + k2*lambda,
// with k1, k2 of roughly half the bit length of k.
// lambda is the eigenvalue of the curve endomorphism; since lambda² ≈ r,
// an exact integer division yields the decomposition without a lattice
// reduction: k2 = k / lambda, k1 = k mod lambda.
// Both halves are non-negative.
func SplitScalar(k, lambda *big.Int) (k1, k2 big.Int) {
	k2.DivMod(k, lambda, &k1)
	return
}

// BoothRecode windows the scalar bits into signed digits in
// [-2^(c-1), 2^(c-1)], least significant digit first.
// The scalar is consumed as a non-negative big integer; the recoding is such
// that sum(digit[i] * 2^(c*i)) == scalar.
func BoothRecode(scalar *big.Int, c uint) []int16 {
	nbDigits := (scalar.BitLen()+int(c)-1)/int(c) + 1
	digits := make([]int16, nbDigits)

	var carry int16
	max := int16(1) << (c - 1)
	mask := new(big.Int).SetUint64((1 << c) - 1)
	var buf, cur big.Int
	buf.Set(scalar)

	for i := 0; i < nbDigits; i++ {
		cur.And(&buf, mask)
		d := int16(cur.Uint64()) + carry
		carry = 0
		if d > max {
			d -= int16(1) << c
			carry = 1
		}
		digits[i] = d
		buf.Rsh(&buf, c)
	}
	return digits
}
