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

// Package fp contains field arithmetic operations for the modulus
// p = 0x1a0111ea397fe69a4b1ba7b6434bacd764774b84f38512bf6730d2a0f6b0f6241eabfffeb153ffffb9feffffffffaaab
// the base field of the BLS12-381 curve.
//
// The representation is a fixed size array of 6 uint64 little-endian limbs,
// in Montgomery form (a value v is stored as v·R mod p, R = 2^384).
package fp

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"io"
	"math/big"
	"math/bits"
)

// Element represents a field element stored on 6 words (uint64)
// Element is in Montgomery form: Element[i] = limb i of v·R mod p
//
// Element is fully reduced: its value is always < p.
type Element [6]uint64

const (
	// Limbs number of 64 bits words needed to represent Element
	Limbs = 6
	// Bits number of bits needed to represent Element
	Bits = 381
	// Bytes number of bytes needed to represent Element
	Bytes = 48
)

// qElement is p, the field modulus
var qElement = Element{
	0xb9feffffffffaaab,
	0x1eabfffeb153ffff,
	0x6730d2a0f6b0f624,
	0x64774b84f38512bf,
	0x4b1ba7b6434bacd7,
	0x1a0111ea397fe69a,
}

// qInvNeg is -p⁻¹ mod 2^64
const qInvNeg = 0x89f3fffcfffcfffd

// rSquare is R² mod p, used to enter the Montgomery domain
var rSquare = Element{
	0xf4df1f341c341746,
	0x0a76e6a609d104f1,
	0x8de5476c4c95b6d5,
	0x67eb88a9939d83c0,
	0x9a793e85b519952d,
	0x11988fe592cae3aa,
}

// Modulus decimal string, same value the curve package prints
const modulusStr = "4002409555221667393417789825735904156556882819939007885332058136124031650490837864442687629129015664037894272559787"

var (
	_modulus       big.Int
	_qMinusTwo     big.Int // inversion exponent
	_qPlus1Over4   big.Int // sqrt exponent (p ≡ 3 mod 4)
	_qMinus1Over2  big.Int // Legendre exponent
	ErrInvalidSize = errors.New("fp: invalid byte slice size")
	// ErrNotCanonical is returned when a 48-byte big-endian value is >= p.
	ErrNotCanonical = errors.New("fp: 48-byte value is not a canonical field element")
)

func init() {
	_modulus.SetString(modulusStr, 10)
	_qMinusTwo.Sub(&_modulus, big.NewInt(2))
	_qPlus1Over4.Add(&_modulus, big.NewInt(1))
	_qPlus1Over4.Rsh(&_qPlus1Over4, 2)
	_qMinus1Over2.Sub(&_modulus, big.NewInt(1))
	_qMinus1Over2.Rsh(&_qMinus1Over2, 1)
}

// Modulus returns p as a big.Int
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
	z[0], z[1], z[2], z[3], z[4], z[5] = 0, 0, 0, 0, 0, 0
	return z
}

// SetOne z = 1 (in Montgomery form)
func (z *Element) SetOne() *Element {
	z[0] = 0x760900000002fffd
	z[1] = 0xebf4000bc40c0002
	z[2] = 0x5f48985753c758ba
	z[3] = 0x77ce585370525745
	z[4] = 0x5c071a97a256ec6d
	z[5] = 0x15f65ec3fa80e493
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

// SetBigInt sets z to v mod p (converted to Montgomery form)
func (z *Element) SetBigInt(v *big.Int) *Element {
	var t big.Int
	t.Mod(v, &_modulus)
	bs := t.Bytes()
	var buf [Bytes]byte
	copy(buf[Bytes-len(bs):], bs)
	var e Element
	for i := 0; i < Limbs; i++ {
		e[i] = binary.BigEndian.Uint64(buf[Bytes-8*(i+1) : Bytes-8*i])
	}
	e.toMont()
	return z.Set(&e)
}

// SetString sets z from a base-10 string; it panics if the string is not a
// valid number. Large values are reduced mod p.
func (z *Element) SetString(s string) *Element {
	var v big.Int
	if _, ok := v.SetString(s, 10); !ok {
		panic("fp.Element.SetString failed -> can't parse number into a big.Int " + s)
	}
	return z.SetBigInt(&v)
}

// SetBytes interprets e as a big-endian integer, reduces it mod p and sets z
// to that value (in Montgomery form).
func (z *Element) SetBytes(e []byte) *Element {
	var v big.Int
	v.SetBytes(e)
	return z.SetBigInt(&v)
}

// SetBytesCanonical sets z from a 48-byte big-endian encoding and errors if
// the value is not fully reduced (>= p) or the slice has the wrong length.
func (z *Element) SetBytesCanonical(e []byte) error {
	if len(e) != Bytes {
		return ErrInvalidSize
	}
	var t Element
	for i := 0; i < Limbs; i++ {
		t[i] = binary.BigEndian.Uint64(e[Bytes-8*(i+1) : Bytes-8*i])
	}
	if !t.smallerThanModulus() {
		return ErrNotCanonical
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
		// mask the 3 excess bits then rejection-sample
		bytes[0] &= 0x1f
		var t Element
		for i := 0; i < Limbs; i++ {
			t[i] = binary.BigEndian.Uint64(bytes[Bytes-8*(i+1) : Bytes-8*i])
		}
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
	for i := 0; i < Limbs; i++ {
		binary.BigEndian.PutUint64(res[Bytes-8*(i+1):Bytes-8*i], t[i])
	}
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
	return (z[5] | z[4] | z[3] | z[2] | z[1] | z[0]) == 0
}

// IsOne returns z == 1
func (z *Element) IsOne() bool {
	var one Element
	one.SetOne()
	return z.Equal(&one)
}

// Equal returns z == x
func (z *Element) Equal(x *Element) bool {
	return (z[5] == x[5]) && (z[4] == x[4]) && (z[3] == x[3]) && (z[2] == x[2]) && (z[1] == x[1]) && (z[0] == x[0])
}

// smallerThanModulus returns true if z < p (z in canonical limb form)
func (z *Element) smallerThanModulus() bool {
	for i := Limbs - 1; i >= 0; i-- {
		if z[i] < qElement[i] {
			return true
		}
		if z[i] > qElement[i] {
			return false
		}
	}
	return false // z == p
}

// LexicographicallyLargest returns true if z, in canonical form, is strictly
// larger than p-z. Used by the Zcash-style compressed encoding sign bit.
func (z *Element) LexicographicallyLargest() bool {
	// z > (p-1)/2 ⟺ 2z > p-1 ⟺ 2z ≥ p+1
	t := *z
	t.fromMont()
	// compute 2t - (p+1)/2... simpler: compare t with (p-1)/2 via subtraction
	// halfQ = (p+1)/2 in canonical limbs; z is lex largest iff t >= halfQ
	var b uint64
	_, b = bits.Sub64(t[0], 0xdcff7fffffffd556, 0)
	_, b = bits.Sub64(t[1], 0x0f55ffff58a9ffff, b)
	_, b = bits.Sub64(t[2], 0xb39869507b587b12, b)
	_, b = bits.Sub64(t[3], 0xb23ba5c279c2895f, b)
	_, b = bits.Sub64(t[4], 0x258dd3db21a5d66b, b)
	_, b = bits.Sub64(t[5], 0x0d0088f51cbff34d, b)
	return b == 0
}

// Sgn0 returns the parity of the canonical representation of z, per
// RFC 9380 §4.1.
func (z *Element) Sgn0() uint64 {
	t := *z
	t.fromMont()
	return t[0] & 1
}

// Select sets z to x0 if c == 0 and to x1 otherwise, in constant time.
func (z *Element) Select(c uint64, x0, x1 *Element) *Element {
	mask := -(c & 1)
	for i := 0; i < Limbs; i++ {
		z[i] = x0[i] ^ (mask & (x0[i] ^ x1[i]))
	}
	return z
}

// CNeg sets z to -x if flag == 1, to x if flag == 0, in constant time.
func (z *Element) CNeg(x *Element, flag uint64) *Element {
	var neg Element
	neg.Neg(x)
	return z.Select(flag, x, &neg)
}

// conditionalSubtractModulus sets z to z-p if z >= p, in constant time.
func (z *Element) conditionalSubtractModulus() {
	var b uint64
	var t Element
	t[0], b = bits.Sub64(z[0], qElement[0], 0)
	t[1], b = bits.Sub64(z[1], qElement[1], b)
	t[2], b = bits.Sub64(z[2], qElement[2], b)
	t[3], b = bits.Sub64(z[3], qElement[3], b)
	t[4], b = bits.Sub64(z[4], qElement[4], b)
	t[5], b = bits.Sub64(z[5], qElement[5], b)
	// b == 1 → z < p, keep z; b == 0 → take t
	mask := b - 1
	for i := 0; i < Limbs; i++ {
		z[i] ^= mask & (z[i] ^ t[i])
	}
}

// Add z = x + y (mod p)
func (z *Element) Add(x, y *Element) *Element {
	var carry uint64
	z[0], carry = bits.Add64(x[0], y[0], 0)
	z[1], carry = bits.Add64(x[1], y[1], carry)
	z[2], carry = bits.Add64(x[2], y[2], carry)
	z[3], carry = bits.Add64(x[3], y[3], carry)
	z[4], carry = bits.Add64(x[4], y[4], carry)
	z[5], _ = bits.Add64(x[5], y[5], carry)
	z.conditionalSubtractModulus()
	return z
}

// Double z = 2x (mod p)
func (z *Element) Double(x *Element) *Element {
	return z.Add(x, x)
}

// Sub z = x - y (mod p)
func (z *Element) Sub(x, y *Element) *Element {
	var b uint64
	z[0], b = bits.Sub64(x[0], y[0], 0)
	z[1], b = bits.Sub64(x[1], y[1], b)
	z[2], b = bits.Sub64(x[2], y[2], b)
	z[3], b = bits.Sub64(x[3], y[3], b)
	z[4], b = bits.Sub64(x[4], y[4], b)
	z[5], b = bits.Sub64(x[5], y[5], b)
	// add p back if we borrowed, in constant time
	mask := -b
	var carry uint64
	z[0], carry = bits.Add64(z[0], mask&qElement[0], 0)
	z[1], carry = bits.Add64(z[1], mask&qElement[1], carry)
	z[2], carry = bits.Add64(z[2], mask&qElement[2], carry)
	z[3], carry = bits.Add64(z[3], mask&qElement[3], carry)
	z[4], carry = bits.Add64(z[4], mask&qElement[4], carry)
	z[5], _ = bits.Add64(z[5], mask&qElement[5], carry)
	return z
}

// Neg z = -x (mod p)
func (z *Element) Neg(x *Element) *Element {
	if x.IsZero() {
		return z.SetZero()
	}
	var b uint64
	z[0], b = bits.Sub64(qElement[0], x[0], 0)
	z[1], b = bits.Sub64(qElement[1], x[1], b)
	z[2], b = bits.Sub64(qElement[2], x[2], b)
	z[3], b = bits.Sub64(qElement[3], x[3], b)
	z[4], b = bits.Sub64(qElement[4], x[4], b)
	z[5], _ = bits.Sub64(qElement[5], x[5], b)
	return z
}

// Halve z = z / 2 (mod p)
func (z *Element) Halve() {
	// if z is odd, add the modulus before shifting
	mask := -(z[0] & 1)
	var carry uint64
	z[0], carry = bits.Add64(z[0], mask&qElement[0], 0)
	z[1], carry = bits.Add64(z[1], mask&qElement[1], carry)
	z[2], carry = bits.Add64(z[2], mask&qElement[2], carry)
	z[3], carry = bits.Add64(z[3], mask&qElement[3], carry)
	z[4], carry = bits.Add64(z[4], mask&qElement[4], carry)
	z[5], carry = bits.Add64(z[5], mask&qElement[5], carry)
	z[0] = z[0]>>1 | z[1]<<63
	z[1] = z[1]>>1 | z[2]<<63
	z[2] = z[2]>>1 | z[3]<<63
	z[3] = z[3]>>1 | z[4]<<63
	z[4] = z[4]>>1 | z[5]<<63
	z[5] = z[5]>>1 | carry<<63
}

// MulBy3 z = 3x (mod p)
func (z *Element) MulBy3(x *Element) *Element {
	var t Element
	t.Double(x)
	return z.Add(&t, x)
}

// Mul z = x * y (mod p), inputs and output in Montgomery form
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

// Square z = x * x (mod p)
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
		c, z[3] = madd2(m, qElement[4], c, z[4])
		c, z[4] = madd2(m, qElement[5], c, z[5])
		z[5] = c
	}
	z.conditionalSubtractModulus()
	return z
}

// ToMont converts z from canonical limbs to Montgomery form
func (z *Element) ToMont() *Element { return z.toMont() }

// FromMont converts z from Montgomery form to canonical limbs
func (z *Element) FromMont() *Element { return z.fromMont() }

// Exp z = x^k (mod p); the exponent is treated as public.
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

// Inverse z = x⁻¹ (mod p); z == 0 if x == 0.
//
// Fermat inversion with a fixed public exponent: constant time with respect
// to x.
func (z *Element) Inverse(x *Element) *Element {
	return z.Exp(*x, &_qMinusTwo)
}

// Legendre returns the Legendre symbol of z: 1 if z is a nonzero quadratic
// residue, -1 if it is a non-residue, 0 if z == 0.
func (z *Element) Legendre() int {
	var l Element
	l.Exp(*z, &_qMinus1Over2)
	if l.IsZero() {
		return 0
	}
	if l.IsOne() {
		return 1
	}
	return -1
}

// Sqrt sets z to a square root of x and returns z; if x has no square root,
// Sqrt returns nil and z is unchanged.
//
// Since p ≡ 3 mod 4, the candidate root is x^((p+1)/4); the exponent is
// public, the verification square keeps the routine correct for non-residues.
func (z *Element) Sqrt(x *Element) *Element {
	var candidate, square Element
	candidate.Exp(*x, &_qPlus1Over4)
	square.Square(&candidate)
	if !square.Equal(x) {
		return nil
	}
	z.Set(&candidate)
	return z
}

// BatchInvert returns the element-wise inverse of a, using Montgomery's
// trick. A zero input yields a zero output at the same index (callers on the
// untrusted path must reject zeros beforehand).
func BatchInvert(a []Element) []Element {
	res := make([]Element, len(a))
	if len(a) == 0 {
		return res
	}

	zeroes := make([]bool, len(a))
	accumulator := One()
	for i := 0; i < len(a); i++ {
		if a[i].IsZero() {
			zeroes[i] = true
			continue
		}
		res[i].Set(&accumulator)
		accumulator.Mul(&accumulator, &a[i])
	}

	accumulator.Inverse(&accumulator)

	for i := len(a) - 1; i >= 0; i-- {
		if zeroes[i] {
			continue
		}
		res[i].Mul(&res[i], &accumulator)
		accumulator.Mul(&accumulator, &a[i])
	}
	return res
}
