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

// Package fr contains field arithmetic operations for modulus
// r = 0x73eda753299d7d483339d80809a1d80553bda402fffe5bfeffffffff00000001
// the scalar field of the BLS12-381 curve.
//
// The representation is a fixed size array of 4 uint64 little-endian limbs,
// in Montgomery form (a value v is stored as v·R mod r, R = 2^256).
package fr

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"io"
	"math/big"
	"math/bits"
)

// Element represents a field element stored on 4 words (uint64)
// Element is in Montgomery form: Element[i] = limb i of v·R mod r
//
// Element is fully reduced: its value is always < r.
type Element [4]uint64

const (
	// Limbs number of 64 bits words needed to represent Element
	Limbs = 4
	// Bits number of bits needed to represent Element
	Bits = 255
	// Bytes number of bytes needed to represent Element
	Bytes = 32
)

// qElement is r, the field modulus
var qElement = Element{
	0xffffffff00000001,
	0x53bda402fffe5bfe,
	0x3339d80809a1d805,
	0x73eda753299d7d48,
}

// qInvNeg is -r⁻¹ mod 2^64
const qInvNeg = 0xfffffffeffffffff

// rSquare is R² mod r, used to enter the Montgomery domain
var rSquare = Element{
	0xc999e990f3f29c6d,
	0x2b6cedcb87925c23,
	0x05d314967254398f,
	0x0748d9d99f59ff11,
}

// Modulus decimal string, same value the curve package prints
const modulusStr = "52435875175126190479447740508185965837690552500527637822603658699938581184513"

var (
	_modulus       big.Int
	_qMinusTwo     big.Int
	ErrInvalidSize = errors.New("fr: invalid byte slice size")
	// ErrBadScalar is returned when a 32-byte big-endian value is not a
	// canonical field element (value >= r).
	ErrBadScalar = errors.New("fr: 32-byte value is not a canonical scalar")
	// ErrZeroValue is returned by BatchInvert when an input is zero.
	ErrZeroValue = errors.New("fr: input contains a zero value")
)

func init() {
	_modulus.SetString(modulusStr, 10)
	_qMinusTwo.Sub(&_modulus, big.NewInt(2))
}

// Modulus returns r as a big.Int
func Modulus() *big.Int {
	return new(big.Int).Set(&_modulus)
}

// NewElement returns a new Element from a uint64 value
func NewElement(v uint64) Element {
	var z Element
	z.SetUint64(v)
	return z
}

// One returns 1 in Montgomery form
func One() Element {
	var one Element
	one.SetOne()
	return one
}

// SetZero z = 0
func (z *Element) SetZero() *Element {
	z[0], z[1], z[2], z[3] = 0, 0, 0, 0
	return z
}

// SetOne z = 1 (in Montgomery form)
func (z *Element) SetOne() *Element {
	z[0] = 0x00000001fffffffe
	z[1] = 0x5884b7fa00034802
	z[2] = 0x998c4fefecbc4ff5
	z[3] = 0x1824b159acc5056f
	return z
}

// Set z = x
func (z *Element) Set(x *Element) *Element {
	*z = *x
	return z
}

// SetUint64 sets z to v (converted to Montgomery form)
func (z *Element) SetUint64(v uint64) *Element {
	*z = Element{v}
	return z.toMont()
}

// SetBigInt sets z to v mod r (converted to Montgomery form)
func (z *Element) SetBigInt(v *big.Int) *Element {
	var t big.Int
	t.Mod(v, &_modulus)
	bs := t.Bytes()
	var buf [Bytes]byte
	copy(buf[Bytes-len(bs):], bs)
	z.setBytesUnchecked(buf)
	return z
}

// SetString sets z from a base-10 string; it panics if the string is not a
// valid number. Large values are reduced mod r.
func (z *Element) SetString(s string) *Element {
	var v big.Int
	if _, ok := v.SetString(s, 10); !ok {
		panic("fr.Element.SetString failed -> can't parse number into a big.Int " + s)
	}
	return z.SetBigInt(&v)
}

// setBytesUnchecked interprets buf as a 256-bit big-endian integer, assumed
// already reduced, and converts it to Montgomery form.
func (z *Element) setBytesUnchecked(buf [Bytes]byte) {
	z[0] = binary.BigEndian.Uint64(buf[24:32])
	z[1] = binary.BigEndian.Uint64(buf[16:24])
	z[2] = binary.BigEndian.Uint64(buf[8:16])
	z[3] = binary.BigEndian.Uint64(buf[0:8])
	z.toMont()
}

// SetBytes interprets e as a big-endian integer, reduces it mod r and sets z
// to that value (in Montgomery form).
func (z *Element) SetBytes(e []byte) *Element {
	var v big.Int
	v.SetBytes(e)
	return z.SetBigInt(&v)
}

// SetBytesCanonical sets z from a 32-byte big-endian encoding and errors if
// the value is not fully reduced (>= r) or the slice has the wrong length.
func (z *Element) SetBytesCanonical(e []byte) error {
	if len(e) != Bytes {
		return ErrInvalidSize
	}
	var buf [Bytes]byte
	copy(buf[:], e)
	var t Element
	t[0] = binary.BigEndian.Uint64(buf[24:32])
	t[1] = binary.BigEndian.Uint64(buf[16:24])
	t[2] = binary.BigEndian.Uint64(buf[8:16])
	t[3] = binary.BigEndian.Uint64(buf[0:8])
	if !t.smallerThanModulus() {
		return ErrBadScalar
	}
	t.toMont()
	z.Set(&t)
	return nil
}

// SetRandom sets z to a uniform random value, reading from crypto/rand.
func (z *Element) SetRandom() (*Element, error) {
	var bytes [Bytes]byte
	for {
		if _, err := io.ReadFull(rand.Reader, bytes[:]); err != nil {
			return nil, err
		}
		// mask the excess bit then rejection-sample
		bytes[0] &= 0x7f
		var t Element
		t[0] = binary.BigEndian.Uint64(bytes[24:32])
		t[1] = binary.BigEndian.Uint64(bytes[16:24])
		t[2] = binary.BigEndian.Uint64(bytes[8:16])
		t[3] = binary.BigEndian.Uint64(bytes[0:8])
		if t.smallerThanModulus() {
			t.toMont()
			z.Set(&t)
			return z, nil
		}
	}
}

// Bytes returns the canonical (non-Montgomery) big-endian byte representation
func (z *Element) Bytes() (res [Bytes]byte) {
	t := *z
	t.fromMont()
	binary.BigEndian.PutUint64(res[24:32], t[0])
	binary.BigEndian.PutUint64(res[16:24], t[1])
	binary.BigEndian.PutUint64(res[8:16], t[2])
	binary.BigEndian.PutUint64(res[0:8], t[3])
	return
}

// BigInt sets and returns res as the canonical value of z
func (z *Element) BigInt(res *big.Int) *big.Int {
	b := z.Bytes()
	return res.SetBytes(b[:])
}

// String returns the decimal representation of the canonical value of z
func (z *Element) String() string {
	var t big.Int
	return z.BigInt(&t).String()
}

// IsZero returns z == 0
func (z *Element) IsZero() bool {
	return (z[3] | z[2] | z[1] | z[0]) == 0
}

// IsOne returns z == 1
func (z *Element) IsOne() bool {
	var one Element
	one.SetOne()
	return z.Equal(&one)
}

// Equal returns z == x
func (z *Element) Equal(x *Element) bool {
	return (z[3] == x[3]) && (z[2] == x[2]) && (z[1] == x[1]) && (z[0] == x[0])
}

// Cmp compares (lexicographic order) z and x and returns:
//
//	-1 if z <  x
//	 0 if z == x
//	+1 if z >  x
func (z *Element) Cmp(x *Element) int {
	zb := z.Bytes()
	xb := x.Bytes()
	for i := 0; i < Bytes; i++ {
		if zb[i] > xb[i] {
			return 1
		} else if zb[i] < xb[i] {
			return -1
		}
	}
	return 0
}

// smallerThanModulus returns true if z < r (z in canonical limb form)
func (z *Element) smallerThanModulus() bool {
	return (z[3] < qElement[3] || (z[3] == qElement[3] && (z[2] < qElement[2] || (z[2] == qElement[2] && (z[1] < qElement[1] || (z[1] == qElement[1] && (z[0] < qElement[0])))))))
}

// LexicographicallyLargest returns true if z, in canonical form, is strictly
// larger than r-z.
func (z *Element) LexicographicallyLargest() bool {
	// z is lex largest iff canonical(z) >= (r+1)/2
	t := *z
	t.fromMont()
	var b uint64
	_, b = bits.Sub64(t[0], 0x7fffffff80000001, 0)
	_, b = bits.Sub64(t[1], 0xa9ded2017fff2dff, b)
	_, b = bits.Sub64(t[2], 0x199cec0404d0ec02, b)
	_, b = bits.Sub64(t[3], 0x39f6d3a994cebea4, b)
	return b == 0
}

// Select sets z to x0 if c == 0 and to x1 otherwise, in constant time.
func (z *Element) Select(c uint64, x0, x1 *Element) *Element {
	mask := -(c & 1)
	z[0] = x0[0] ^ (mask & (x0[0] ^ x1[0]))
	z[1] = x0[1] ^ (mask & (x0[1] ^ x1[1]))
	z[2] = x0[2] ^ (mask & (x0[2] ^ x1[2]))
	z[3] = x0[3] ^ (mask & (x0[3] ^ x1[3]))
	return z
}

// CNeg sets z to -x if flag == 1, to x if flag == 0, in constant time.
func (z *Element) CNeg(x *Element, flag uint64) *Element {
	var neg Element
	neg.Neg(x)
	return z.Select(flag, x, &neg)
}

// conditionalSubtractModulus sets z to z-r if z >= r, in constant time.
func (z *Element) conditionalSubtractModulus() {
	var b uint64
	var t Element
	t[0], b = bits.Sub64(z[0], qElement[0], 0)
	t[1], b = bits.Sub64(z[1], qElement[1], b)
	t[2], b = bits.Sub64(z[2], qElement[2], b)
	t[3], b = bits.Sub64(z[3], qElement[3], b)
	// b == 1 → z < r, keep z; b == 0 → take t
	mask := b - 1
	z[0] ^= mask & (z[0] ^ t[0])
	z[1] ^= mask & (z[1] ^ t[1])
	z[2] ^= mask & (z[2] ^ t[2])
	z[3] ^= mask & (z[3] ^ t[3])
}

// Add z = x + y (mod r)
func (z *Element) Add(x, y *Element) *Element {
	var carry uint64
	z[0], carry = bits.Add64(x[0], y[0], 0)
	z[1], carry = bits.Add64(x[1], y[1], carry)
	z[2], carry = bits.Add64(x[2], y[2], carry)
	z[3], _ = bits.Add64(x[3], y[3], carry)
	z.conditionalSubtractModulus()
	return z
}

// Double z = 2x (mod r)
func (z *Element) Double(x *Element) *Element {
	return z.Add(x, x)
}

// Sub z = x - y (mod r)
func (z *Element) Sub(x, y *Element) *Element {
	var b uint64
	z[0], b = bits.Sub64(x[0], y[0], 0)
	z[1], b = bits.Sub64(x[1], y[1], b)
	z[2], b = bits.Sub64(x[2], y[2], b)
	z[3], b = bits.Sub64(x[3], y[3], b)
	// add r back if we borrowed, in constant time
	mask := -b
	var carry uint64
	z[0], carry = bits.Add64(z[0], mask&qElement[0], 0)
	z[1], carry = bits.Add64(z[1], mask&qElement[1], carry)
	z[2], carry = bits.Add64(z[2], mask&qElement[2], carry)
	z[3], _ = bits.Add64(z[3], mask&qElement[3], carry)
	return z
}

// Neg z = -x (mod r)
func (z *Element) Neg(x *Element) *Element {
	if x.IsZero() {
		return z.SetZero()
	}
	var b uint64
	z[0], b = bits.Sub64(qElement[0], x[0], 0)
	z[1], b = bits.Sub64(qElement[1], x[1], b)
	z[2], b = bits.Sub64(qElement[2], x[2], b)
	z[3], _ = bits.Sub64(qElement[3], x[3], b)
	return z
}

// Halve z = z / 2 (mod r)
func (z *Element) Halve() {
	// if z is odd, add the modulus before shifting
	mask := -(z[0] & 1)
	var carry uint64
	z[0], carry = bits.Add64(z[0], mask&qElement[0], 0)
	z[1], carry = bits.Add64(z[1], mask&qElement[1], carry)
	z[2], carry = bits.Add64(z[2], mask&qElement[2], carry)
	z[3], carry = bits.Add64(z[3], mask&qElement[3], carry)
	z[0] = z[0]>>1 | z[1]<<63
	z[1] = z[1]>>1 | z[2]<<63
	z[2] = z[2]>>1 | z[3]<<63
	z[3] = z[3]>>1 | carry<<63
}

// Mul z = x * y (mod r), inputs and output in Montgomery form
//
// CIOS interleaved multiplication-reduction; since the modulus' top bit is
// clear, the no-carry optimization applies and the accumulator fits in
// Limbs words. See https://hackmd.io/@gnark/modular_multiplication
func (z *Element) Mul(x, y *Element) *Element {
	var t [Limbs]uint64
	var c [3]uint64
	for i := 0; i < Limbs; i++ {
		v := x[i]
		c[1], c[0] = madd1(v, y[0], t[0])
		m := c[0] * qInvNeg
		c[2] = madd0(m, qElement[0], c[0])
		for j := 1; j < Limbs-1; j++ {
			c[1], c[0] = madd2(v, y[j], c[1], t[j])
			c[2], t[j-1] = madd2(m, qElement[j], c[2], c[0])
		}
		c[1], c[0] = madd2(v, y[Limbs-1], c[1], t[Limbs-1])
		t[Limbs-1], t[Limbs-2] = madd3(m, qElement[Limbs-1], c[0], c[2], c[1])
	}
	copy(z[:], t[:])
	z.conditionalSubtractModulus()
	return z
}

// Square z = x * x (mod r)
func (z *Element) Square(x *Element) *Element {
	return z.Mul(x, x)
}

// toMont converts z from canonical to Montgomery form
func (z *Element) toMont() *Element {
	return z.Mul(z, &rSquare)
}

// fromMont converts z from Montgomery to canonical form
func (z *Element) fromMont() *Element {
	// Montgomery reduction with a multiplier of 1
	for i := 0; i < Limbs; i++ {
		m := z[0] * qInvNeg
		c := madd0(m, qElement[0], z[0])
		c, z[0] = madd2(m, qElement[1], c, z[1])
		c, z[1] = madd2(m, qElement[2], c, z[2])
		c, z[2] = madd2(m, qElement[3], c, z[3])
		z[3] = c
	}
	z.conditionalSubtractModulus()
	return z
}

// ToMont converts z from canonical limbs to Montgomery form
func (z *Element) ToMont() *Element { return z.toMont() }

// FromMont converts z from Montgomery form to canonical limbs
func (z *Element) FromMont() *Element { return z.fromMont() }

// Exp z = x^k (mod r); the exponent is treated as public.
func (z *Element) Exp(x Element, k *big.Int) *Element {
	if k.Sign() == 0 {
		return z.SetOne()
	}
	e := k
	if k.Sign() == -1 {
		// negative k, use x⁻¹ and |k|
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

// Inverse z = x⁻¹ (mod r); z == 0 if x == 0.
//
// Fermat inversion with a fixed public exponent: constant time with respect
// to x.
func (z *Element) Inverse(x *Element) *Element {
	return z.Exp(*x, &_qMinusTwo)
}

// BatchInvert returns the element-wise inverse of a, using Montgomery's
// trick: a single inversion and 3(n-1) multiplications. It returns
// ErrZeroValue if any input is zero.
func BatchInvert(a []Element) ([]Element, error) {
	res := make([]Element, len(a))
	if len(a) == 0 {
		return res, nil
	}

	// prefix products
	accumulator := One()
	for i := 0; i < len(a); i++ {
		if a[i].IsZero() {
			return nil, ErrZeroValue
		}
		res[i].Set(&accumulator)
		accumulator.Mul(&accumulator, &a[i])
	}

	accumulator.Inverse(&accumulator)

	// unwind
	for i := len(a) - 1; i >= 0; i-- {
		res[i].Mul(&res[i], &accumulator)
		accumulator.Mul(&accumulator, &a[i])
	}
	return res, nil
}
