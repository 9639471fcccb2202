// Copyright 2020 ConsenSys AG
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package fptower implements the degree 2/6/12 extension tower over the
// BLS12-381 base field:
//
//	E2  = Fp[u]/(u²+1)
//	E6  = E2[v]/(v³-(u+1))
//	E12 = E6[w]/(w²-v)
package fptower

import (
	"math/big"

	"github.com/consensys/gkzg/ecc/bls12381/fp"
)

// E2 is a degree two finite field extension of fp.Element: x = A0 + A1·u
type E2 struct {
	A0, A1 fp.Element
}

// Equal returns true if z equals x
func (z *E2) Equal(x *E2) bool {
	return z.A0.Equal(&x.A0) && z.A1.Equal(&x.A1)
}

// Cmp compares z and x lexicographically (imaginary part first)
func (z *E2) Cmp(x *E2) int {
	if !z.A1.Equal(&x.A1) {
		zb := z.A1.Bytes()
		xb := x.A1.Bytes()
		for i := 0; i < fp.Bytes; i++ {
			if zb[i] != xb[i] {
				if zb[i] > xb[i] {
					return 1
				}
				return -1
			}
		}
	}
	if z.A0.Equal(&x.A0) {
		return 0
	}
	zb := z.A0.Bytes()
	xb := x.A0.Bytes()
	for i := 0; i < fp.Bytes; i++ {
		if zb[i] != xb[i] {
			if zb[i] > xb[i] {
				return 1
			}
			return -1
		}
	}
	return 0
}

// LexicographicallyLargest returns true if z is strictly larger than -z,
// comparing the imaginary part first.
func (z *E2) LexicographicallyLargest() bool {
	if z.A1.IsZero() {
		return z.A0.LexicographicallyLargest()
	}
	return z.A1.LexicographicallyLargest()
}

// Sgn0 returns the RFC 9380 §4.1 sign of z (m = 2 variant).
func (z *E2) Sgn0() uint64 {
	s0 := z.A0.Sgn0()
	var z0 uint64
	if z.A0.IsZero() {
		z0 = 1
	}
	s1 := z.A1.Sgn0()
	return s0 | (z0 & s1)
}

// SetString sets a E2 element from two decimal strings
func (z *E2) SetString(s0, s1 string) *E2 {
	z.A0.SetString(s0)
	z.A1.SetString(s1)
	return z
}

// SetZero sets z to 0
func (z *E2) SetZero() *E2 {
	z.A0.SetZero()
	z.A1.SetZero()
	return z
}

// SetOne sets z to 1
func (z *E2) SetOne() *E2 {
	z.A0.SetOne()
	z.A1.SetZero()
	return z
}

// Set z = x
func (z *E2) Set(x *E2) *E2 {
	*z = *x
	return z
}

// SetRandom sets z to a uniform random value
func (z *E2) SetRandom() (*E2, error) {
	if _, err := z.A0.SetRandom(); err != nil {
		return nil, err
	}
	if _, err := z.A1.SetRandom(); err != nil {
		return nil, err
	}
	return z, nil
}

// IsZero returns z == 0
func (z *E2) IsZero() bool {
	return z.A0.IsZero() && z.A1.IsZero()
}

// IsOne returns z == 1
func (z *E2) IsOne() bool {
	return z.A0.IsOne() && z.A1.IsZero()
}

// Add z = x + y
func (z *E2) Add(x, y *E2) *E2 {
	z.A0.Add(&x.A0, &y.A0)
	z.A1.Add(&x.A1, &y.A1)
	return z
}

// Sub z = x - y
func (z *E2) Sub(x, y *E2) *E2 {
	z.A0.Sub(&x.A0, &y.A0)
	z.A1.Sub(&x.A1, &y.A1)
	return z
}

// Double z = 2x
func (z *E2) Double(x *E2) *E2 {
	z.A0.Double(&x.A0)
	z.A1.Double(&x.A1)
	return z
}

// Neg z = -x
func (z *E2) Neg(x *E2) *E2 {
	z.A0.Neg(&x.A0)
	z.A1.Neg(&x.A1)
	return z
}

// Halve z = z/2
func (z *E2) Halve() *E2 {
	z.A0.Halve()
	z.A1.Halve()
	return z
}

// Conjugate z = x̄ = (A0, -A1)
func (z *E2) Conjugate(x *E2) *E2 {
	z.A0.Set(&x.A0)
	z.A1.Neg(&x.A1)
	return z
}

// Mul z = x * y, by Karatsuba:
// (a0+a1u)(b0+b1u) = (a0b0 - a1b1) + ((a0+a1)(b0+b1) - a0b0 - a1b1)u
func (z *E2) Mul(x, y *E2) *E2 {
	var a, b, c fp.Element
	a.Add(&x.A0, &x.A1)
	b.Add(&y.A0, &y.A1)
	a.Mul(&a, &b)
	b.Mul(&x.A0, &y.A0)
	c.Mul(&x.A1, &y.A1)
	z.A1.Sub(&a, &b).Sub(&z.A1, &c)
	z.A0.Sub(&b, &c)
	return z
}

// Square z = x * x, complex squaring:
// (a0+a1u)² = (a0+a1)(a0-a1) + 2a0a1·u
func (z *E2) Square(x *E2) *E2 {
	var a, b fp.Element
	a.Add(&x.A0, &x.A1)
	b.Sub(&x.A0, &x.A1)
	a.Mul(&a, &b)
	b.Mul(&x.A0, &x.A1).Double(&b)
	z.A0.Set(&a)
	z.A1.Set(&b)
	return z
}

// MulByElement z = x * (y, 0) with y in fp
func (z *E2) MulByElement(x *E2, y *fp.Element) *E2 {
	z.A0.Mul(&x.A0, y)
	z.A1.Mul(&x.A1, y)
	return z
}

// MulByNonResidue z = x * (1+u)
func (z *E2) MulByNonResidue(x *E2) *E2 {
	var a fp.Element
	a.Sub(&x.A0, &x.A1)
	z.A1.Add(&x.A0, &x.A1)
	z.A0.Set(&a)
	return z
}

// MulByI z = x * u = (-A1, A0)
func (z *E2) MulByI(x *E2) *E2 {
	var a fp.Element
	a.Neg(&x.A1)
	z.A1.Set(&x.A0)
	z.A0.Set(&a)
	return z
}

// Norm returns x.A0² + x.A1² in fp
func (z *E2) Norm(res *fp.Element) *fp.Element {
	var t fp.Element
	res.Square(&z.A0)
	t.Square(&z.A1)
	res.Add(res, &t)
	return res
}

// Inverse z = x⁻¹; z == 0 if x == 0.
// Algorithm 8 from https://eprint.iacr.org/2010/354.pdf
func (z *E2) Inverse(x *E2) *E2 {
	var t0, t1 fp.Element
	t0.Square(&x.A0)
	t1.Square(&x.A1)
	t0.Add(&t0, &t1)
	t1.Inverse(&t0)
	z.A0.Mul(&x.A0, &t1)
	z.A1.Mul(&x.A1, &t1).Neg(&z.A1)
	return z
}

// Select sets z to x0 if c == 0 and to x1 otherwise, in constant time.
func (z *E2) Select(c uint64, x0, x1 *E2) *E2 {
	z.A0.Select(c, &x0.A0, &x1.A0)
	z.A1.Select(c, &x0.A1, &x1.A1)
	return z
}

// CNeg sets z to -x if flag == 1, to x if flag == 0, in constant time.
func (z *E2) CNeg(x *E2, flag uint64) *E2 {
	var neg E2
	neg.Neg(x)
	return z.Select(flag, x, &neg)
}

// Exp z = x^k; the exponent is treated as public.
func (z *E2) Exp(x E2, k *big.Int) *E2 {
	if k.Sign() == 0 {
		return z.SetOne()
	}
	e := k
	if k.Sign() == -1 {
		x.Inverse(&x)
		e = new(big.Int).Abs(k)
	}
	z.SetOne()
	for i := e.BitLen() - 1; i >= 0; i-- {
		z.Square(z)
		if e.Bit(i) == 1 {
			z.Mul(z, &x)
		}
	}
	return z
}

// exponents for the E2 square root, fixed at init
var (
	sqrtExp1 big.Int // (p-3)/4
	sqrtExp2 big.Int // (p-1)/2
)

func init() {
	q := fp.Modulus()
	sqrtExp1.Sub(q, big.NewInt(3))
	sqrtExp1.Rsh(&sqrtExp1, 2)
	sqrtExp2.Sub(q, big.NewInt(1))
	sqrtExp2.Rsh(&sqrtExp2, 1)
}

// Sqrt sets z to a square root of x and returns z; if x has no square root,
// Sqrt returns nil and z is unchanged.
//
// Algorithm 9 of https://eprint.iacr.org/2012/685.pdf (Adj,
// Rodríguez-Henríquez), specialized to p ≡ 3 mod 4. The final trial squaring
// selects among the candidate rotations.
func (z *E2) Sqrt(x *E2) *E2 {
	if x.IsZero() {
		return z.SetZero()
	}

	var a1, alpha, x0, minusOne, res E2
	minusOne.SetOne().Neg(&minusOne)

	a1.Exp(*x, &sqrtExp1)           // a1 = x^((p-3)/4)
	alpha.Square(&a1).Mul(&alpha, x) // alpha = x^((p-1)/2)
	x0.Mul(&a1, x)                   // x0 = x^((p+1)/4)

	if alpha.Equal(&minusOne) {
		// res = u·x0
		res.MulByI(&x0)
	} else {
		var one E2
		one.SetOne()
		alpha.Add(&alpha, &one)
		res.Exp(alpha, &sqrtExp2) // (1+alpha)^((p-1)/2)
		res.Mul(&res, &x0)
	}

	var check E2
	check.Square(&res)
	if !check.Equal(x) {
		return nil
	}
	z.Set(&res)
	return z
}

// Legendre returns 1 if z is a nonzero square in E2, -1 if it is a
// non-square, 0 if z == 0. Uses the norm map to fp.
func (z *E2) Legendre() int {
	var n fp.Element
	z.Norm(&n)
	return n.Legendre()
}
