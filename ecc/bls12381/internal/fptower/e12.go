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

package fptower

import (
	"errors"
	"math/big"

	"github.com/consensys/gkzg/ecc/bls12381/fp"
)

// E12 is a degree two finite field extension of E6: x = C0 + C1·w
type E12 struct {
	C0, C1 E6
}

// Equal returns true if z equals x
func (z *E12) Equal(x *E12) bool {
	return z.C0.Equal(&x.C0) && z.C1.Equal(&x.C1)
}

// Set z = x
func (z *E12) Set(x *E12) *E12 {
	*z = *x
	return z
}

// SetOne sets z to 1
func (z *E12) SetOne() *E12 {
	z.C0.SetOne()
	z.C1.SetZero()
	return z
}

// SetZero sets z to 0
func (z *E12) SetZero() *E12 {
	z.C0.SetZero()
	z.C1.SetZero()
	return z
}

// SetRandom sets z to a uniform random value
func (z *E12) SetRandom() (*E12, error) {
	if _, err := z.C0.SetRandom(); err != nil {
		return nil, err
	}
	if _, err := z.C1.SetRandom(); err != nil {
		return nil, err
	}
	return z, nil
}

// IsZero returns z == 0
func (z *E12) IsZero() bool {
	return z.C0.IsZero() && z.C1.IsZero()
}

// IsOne returns z == 1
func (z *E12) IsOne() bool {
	return z.C0.IsOne() && z.C1.IsZero()
}

// Add z = x + y
func (z *E12) Add(x, y *E12) *E12 {
	z.C0.Add(&x.C0, &y.C0)
	z.C1.Add(&x.C1, &y.C1)
	return z
}

// Sub z = x - y
func (z *E12) Sub(x, y *E12) *E12 {
	z.C0.Sub(&x.C0, &y.C0)
	z.C1.Sub(&x.C1, &y.C1)
	return z
}

// Double z = 2x
func (z *E12) Double(x *E12) *E12 {
	z.C0.Double(&x.C0)
	z.C1.Double(&x.C1)
	return z
}

// Conjugate z = x̄ = (C0, -C1); this is the inverse on the unit circle of
// the norm map, hence inversion for cyclotomic-subgroup elements.
func (z *E12) Conjugate(x *E12) *E12 {
	z.C0.Set(&x.C0)
	z.C1.Neg(&x.C1)
	return z
}

// InverseUnitary inverts a unitary element (an element of norm 1, e.g. any
// Miller loop output after the easy part of the final exponentiation)
func (z *E12) InverseUnitary(x *E12) *E12 {
	return z.Conjugate(x)
}

// Mul z = x * y
// Algorithm 20 from https://eprint.iacr.org/2010/354.pdf (Karatsuba)
func (z *E12) Mul(x, y *E12) *E12 {
	var a, b, c E6
	a.Add(&x.C0, &x.C1)
	b.Add(&y.C0, &y.C1)
	a.Mul(&a, &b)
	b.Mul(&x.C0, &y.C0)
	c.Mul(&x.C1, &y.C1)
	z.C1.Sub(&a, &b).Sub(&z.C1, &c)
	c.MulByNonResidue(&c)
	z.C0.Add(&b, &c)
	return z
}

// Square z = x * x
// Algorithm 22 from https://eprint.iacr.org/2010/354.pdf
func (z *E12) Square(x *E12) *E12 {
	var c0, c2, c3 E6
	c0.Sub(&x.C0, &x.C1)
	c3.MulByNonResidue(&x.C1).Neg(&c3).Add(&x.C0, &c3)
	c2.Mul(&x.C0, &x.C1)
	c0.Mul(&c0, &c3).Add(&c0, &c2)
	z.C1.Double(&c2)
	c2.MulByNonResidue(&c2)
	z.C0.Add(&c0, &c2)
	return z
}

// Inverse z = x⁻¹; z == 0 if x == 0.
// Algorithm 23 from https://eprint.iacr.org/2010/354.pdf
func (z *E12) Inverse(x *E12) *E12 {
	var t0, t1, tmp E6
	t0.Square(&x.C0)
	t1.Square(&x.C1)
	tmp.MulByNonResidue(&t1)
	t0.Sub(&t0, &tmp)
	t1.Inverse(&t0)
	z.C0.Mul(&x.C0, &t1)
	z.C1.Mul(&x.C1, &t1).Neg(&z.C1)
	return z
}

// MulBy014 multiplication by the sparse element (c0, c1, 0, 0, c4, 0); this
// is the shape of the Miller loop line evaluations.
func (z *E12) MulBy014(c0, c1, c4 *E2) *E12 {
	var a, b E6
	var d E2

	a.Set(&z.C0)
	a.MulBy01(c0, c1)

	b.Set(&z.C1)
	b.MulBy1(c4)
	d.Add(c1, c4)

	z.C1.Add(&z.C1, &z.C0)
	z.C1.MulBy01(c0, &d)
	z.C1.Sub(&z.C1, &a)
	z.C1.Sub(&z.C1, &b)
	z.C0.MulByNonResidue(&b)
	z.C0.Add(&z.C0, &a)

	return z
}

// CyclotomicSquare squares x in the cyclotomic subgroup (Granger, Scott,
// https://eprint.iacr.org/2009/565.pdf). The input must be in the
// subgroup; the output is undefined otherwise.
func (z *E12) CyclotomicSquare(x *E12) *E12 {
	// x = (x0,x1,x2,x3,x4,x5,x6,x7) in E2⁶
	// cyclosquare(x) = (3*x4²*u + 3*x0² - 2*x0,
	//                   3*x2²*u + 3*x3² - 2*x1,
	//                   3*x5²*u + 3*x1² - 2*x2,
	//                   6*x1*x5*u + 2*x3,
	//                   6*x0*x4 + 2*x4,
	//                   6*x2*x3 + 2*x5)

	var t [9]E2

	t[0].Square(&x.C1.B1)
	t[1].Square(&x.C0.B0)
	t[6].Add(&x.C1.B1, &x.C0.B0).Square(&t[6]).Sub(&t[6], &t[0]).Sub(&t[6], &t[1]) // 2*x4*x0
	t[2].Square(&x.C0.B2)
	t[3].Square(&x.C1.B0)
	t[7].Add(&x.C0.B2, &x.C1.B0).Square(&t[7]).Sub(&t[7], &t[2]).Sub(&t[7], &t[3]) // 2*x2*x3
	t[8].Add(&x.C1.B2, &x.C0.B1).Square(&t[8])
	t[4].Square(&x.C1.B2)
	t[5].Square(&x.C0.B1)
	t[8].Sub(&t[8], &t[4]).Sub(&t[8], &t[5]).MulByNonResidue(&t[8]) // 2*x5*x1*u

	t[0].MulByNonResidue(&t[0]).Add(&t[0], &t[1]) // x4²*u + x0²
	t[2].MulByNonResidue(&t[2]).Add(&t[2], &t[3]) // x2²*u + x3²
	t[4].MulByNonResidue(&t[4]).Add(&t[4], &t[5]) // x5²*u + x1²

	z.C0.B0.Sub(&t[0], &x.C0.B0).Double(&z.C0.B0).Add(&z.C0.B0, &t[0])
	z.C0.B1.Sub(&t[2], &x.C0.B1).Double(&z.C0.B1).Add(&z.C0.B1, &t[2])
	z.C0.B2.Sub(&t[4], &x.C0.B2).Double(&z.C0.B2).Add(&z.C0.B2, &t[4])

	z.C1.B0.Add(&t[8], &x.C1.B0).Double(&z.C1.B0).Add(&z.C1.B0, &t[8])
	z.C1.B1.Add(&t[6], &x.C1.B1).Double(&z.C1.B1).Add(&z.C1.B1, &t[6])
	z.C1.B2.Add(&t[7], &x.C1.B2).Double(&z.C1.B2).Add(&z.C1.B2, &t[7])

	return z
}

// nSquare repeated cyclotomic squarings
func (z *E12) nSquare(n int) {
	for i := 0; i < n; i++ {
		z.CyclotomicSquare(z)
	}
}

// Expt z = xᵗ mod q¹², where t = |seed| of the curve. The input must be in
// the cyclotomic subgroup.
//
// t in binary is 1101001000000001 followed by one bit set at position 16
// and 16 trailing zeros, giving the addition chain below (62 squarings,
// 5 multiplications).
func (z *E12) Expt(x *E12) *E12 {
	var result E12
	result.Set(x)

	result.nSquare(1)
	result.Mul(&result, x)
	result.nSquare(2)
	result.Mul(&result, x)
	result.nSquare(3)
	result.Mul(&result, x)
	result.nSquare(9)
	result.Mul(&result, x)
	result.nSquare(32)
	result.Mul(&result, x)
	result.nSquare(16)

	z.Set(&result)
	return z
}

// Exp z = x^k; the exponent is treated as public.
func (z *E12) Exp(x E12, k *big.Int) *E12 {
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

// IsInSubGroup checks that z is in the prime-order subgroup of the
// cyclotomic group, i.e. z^(p⁴-p²+1) == 1.
func (z *E12) IsInSubGroup() bool {
	var a, b E12
	a.FrobeniusSquare(z)             // z^(p²)
	b.FrobeniusSquare(&a).Mul(&b, z) // z^(p⁴+1)
	return a.Equal(&b)
}

// Select sets z to x0 if c == 0 and to x1 otherwise, in constant time.
func (z *E12) Select(c uint64, x0, x1 *E12) *E12 {
	for i := 0; i < 3; i++ {
		b0, b1 := e6Coeff(&x0.C0, i), e6Coeff(&x1.C0, i)
		e6Coeff(&z.C0, i).Select(c, b0, b1)
		b0, b1 = e6Coeff(&x0.C1, i), e6Coeff(&x1.C1, i)
		e6Coeff(&z.C1, i).Select(c, b0, b1)
	}
	return z
}

func e6Coeff(x *E6, i int) *E2 {
	switch i {
	case 0:
		return &x.B0
	case 1:
		return &x.B1
	default:
		return &x.B2
	}
}

// SizeOfGT is the size in bytes of a GT element, tightly packed
const SizeOfGT = 12 * fp.Bytes

// Bytes returns the regular (non-Montgomery) big-endian serialization of z,
// coefficients ordered from the highest tower index down.
func (z *E12) Bytes() (r [SizeOfGT]byte) {
	offset := 0
	put := func(e *fp.Element) {
		b := e.Bytes()
		copy(r[offset:offset+fp.Bytes], b[:])
		offset += fp.Bytes
	}
	put(&z.C1.B2.A1)
	put(&z.C1.B2.A0)
	put(&z.C1.B1.A1)
	put(&z.C1.B1.A0)
	put(&z.C1.B0.A1)
	put(&z.C1.B0.A0)
	put(&z.C0.B2.A1)
	put(&z.C0.B2.A0)
	put(&z.C0.B1.A1)
	put(&z.C0.B1.A0)
	put(&z.C0.B0.A1)
	put(&z.C0.B0.A0)
	return
}

// SetBytes deserializes z from buf, the inverse of Bytes. Each coefficient
// must be a canonical field element.
func (z *E12) SetBytes(buf []byte) error {
	if len(buf) != SizeOfGT {
		return errors.New("invalid buffer size")
	}
	offset := 0
	get := func(e *fp.Element) error {
		err := e.SetBytesCanonical(buf[offset : offset+fp.Bytes])
		offset += fp.Bytes
		return err
	}
	for _, e := range []*fp.Element{
		&z.C1.B2.A1, &z.C1.B2.A0,
		&z.C1.B1.A1, &z.C1.B1.A0,
		&z.C1.B0.A1, &z.C1.B0.A0,
		&z.C0.B2.A1, &z.C0.B2.A0,
		&z.C0.B1.A1, &z.C0.B1.A0,
		&z.C0.B0.A1, &z.C0.B0.A0,
	} {
		if err := get(e); err != nil {
			return err
		}
	}
	return nil
}
