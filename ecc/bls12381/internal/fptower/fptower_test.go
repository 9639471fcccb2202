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
	"math/big"
	"testing"

	"github.com/consensys/gkzg/ecc/bls12381/fp"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"
)

// GenE2 generates a random E2 element
func GenE2() gopter.Gen {
	return func(genParams *gopter.GenParameters) *gopter.GenResult {
		var a E2
		if _, err := a.SetRandom(); err != nil {
			panic(err)
		}
		return gopter.NewGenResult(a, gopter.NoShrinker)
	}
}

// GenE6 generates a random E6 element
func GenE6() gopter.Gen {
	return func(genParams *gopter.GenParameters) *gopter.GenResult {
		var a E6
		if _, err := a.SetRandom(); err != nil {
			panic(err)
		}
		return gopter.NewGenResult(a, gopter.NoShrinker)
	}
}

// GenE12 generates a random E12 element
func GenE12() gopter.Gen {
	return func(genParams *gopter.GenParameters) *gopter.GenResult {
		var a E12
		if _, err := a.SetRandom(); err != nil {
			panic(err)
		}
		return gopter.NewGenResult(a, gopter.NoShrinker)
	}
}

func TestE2Ops(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("x² == x*x", prop.ForAll(
		func(a E2) bool {
			var s, m E2
			s.Square(&a)
			m.Mul(&a, &a)
			return s.Equal(&m)
		},
		GenE2(),
	))

	properties.Property("x * x⁻¹ == 1 for x != 0", prop.ForAll(
		func(a E2) bool {
			if a.IsZero() {
				return true
			}
			var inv, p E2
			inv.Inverse(&a)
			p.Mul(&a, &inv)
			return p.IsOne()
		},
		GenE2(),
	))

	properties.Property("(x+y)*z == x*z + y*z", prop.ForAll(
		func(a, b, c E2) bool {
			var l, r, t E2
			l.Add(&a, &b).Mul(&l, &c)
			r.Mul(&a, &c)
			t.Mul(&b, &c)
			r.Add(&r, &t)
			return l.Equal(&r)
		},
		GenE2(), GenE2(), GenE2(),
	))

	properties.Property("MulByNonResidue == mul by (1+u)", prop.ForAll(
		func(a E2) bool {
			var nr, l, r E2
			nr.A0.SetOne()
			nr.A1.SetOne()
			l.MulByNonResidue(&a)
			r.Mul(&a, &nr)
			return l.Equal(&r)
		},
		GenE2(),
	))

	properties.Property("MulByI == mul by u", prop.ForAll(
		func(a E2) bool {
			var i, l, r E2
			i.A1.SetOne()
			l.MulByI(&a)
			r.Mul(&a, &i)
			return l.Equal(&r)
		},
		GenE2(),
	))

	properties.Property("conjugate fixes the norm", prop.ForAll(
		func(a E2) bool {
			var c E2
			var n1, n2 fp.Element
			c.Conjugate(&a)
			a.Norm(&n1)
			c.Norm(&n2)
			return n1.Equal(&n2)
		},
		GenE2(),
	))

	properties.Property("Sqrt(x²) squares back to x²", prop.ForAll(
		func(a E2) bool {
			var sq, r, check E2
			sq.Square(&a)
			if r.Sqrt(&sq) == nil {
				return false
			}
			check.Square(&r)
			return check.Equal(&sq)
		},
		GenE2(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestE2SqrtLegendre(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)

	properties.Property("Sqrt succeeds iff Legendre != -1", prop.ForAll(
		func(a E2) bool {
			var r E2
			ok := r.Sqrt(&a) != nil
			if a.IsZero() {
				return ok
			}
			return ok == (a.Legendre() == 1)
		},
		GenE2(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestE6Ops(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("x² == x*x", prop.ForAll(
		func(a E6) bool {
			var s, m E6
			s.Square(&a)
			m.Mul(&a, &a)
			return s.Equal(&m)
		},
		GenE6(),
	))

	properties.Property("x * x⁻¹ == 1 for x != 0", prop.ForAll(
		func(a E6) bool {
			if a.IsZero() {
				return true
			}
			var inv, p E6
			inv.Inverse(&a)
			p.Mul(&a, &inv)
			return p.IsOne()
		},
		GenE6(),
	))

	properties.Property("MulByNonResidue shifts coefficients", prop.ForAll(
		func(a E6) bool {
			var v, l, r E6
			v.B1.SetOne() // v
			l.MulByNonResidue(&a)
			r.Mul(&a, &v)
			return l.Equal(&r)
		},
		GenE6(),
	))

	properties.Property("MulBy01 matches full multiplication", prop.ForAll(
		func(a E6, c0, c1 E2) bool {
			var sparse E6
			sparse.B0.Set(&c0)
			sparse.B1.Set(&c1)
			var full, got E6
			full.Mul(&a, &sparse)
			got.Set(&a).MulBy01(&c0, &c1)
			return got.Equal(&full)
		},
		GenE6(), GenE2(), GenE2(),
	))

	properties.Property("MulBy1 matches full multiplication", prop.ForAll(
		func(a E6, c1 E2) bool {
			var sparse E6
			sparse.B1.Set(&c1)
			var full, got E6
			full.Mul(&a, &sparse)
			got.Set(&a).MulBy1(&c1)
			return got.Equal(&full)
		},
		GenE6(), GenE2(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestE12Ops(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)

	properties.Property("x² == x*x", prop.ForAll(
		func(a E12) bool {
			var s, m E12
			s.Square(&a)
			m.Mul(&a, &a)
			return s.Equal(&m)
		},
		GenE12(),
	))

	properties.Property("x * x⁻¹ == 1 for x != 0", prop.ForAll(
		func(a E12) bool {
			if a.IsZero() {
				return true
			}
			var inv, p E12
			inv.Inverse(&a)
			p.Mul(&a, &inv)
			return p.IsOne()
		},
		GenE12(),
	))

	properties.Property("MulBy014 matches full multiplication", prop.ForAll(
		func(a E12, c0, c1, c4 E2) bool {
			var sparse E12
			sparse.C0.B0.Set(&c0)
			sparse.C0.B1.Set(&c1)
			sparse.C1.B1.Set(&c4)
			var full, got E12
			full.Mul(&a, &sparse)
			got.Set(&a).MulBy014(&c0, &c1, &c4)
			return got.Equal(&full)
		},
		GenE12(), GenE2(), GenE2(), GenE2(),
	))

	properties.Property("Frobenius == Exp(p)", prop.ForAll(
		func(a E12) bool {
			var f, e E12
			f.Frobenius(&a)
			e.Exp(a, fp.Modulus())
			return f.Equal(&e)
		},
		GenE12(),
	))

	properties.Property("FrobeniusSquare == Frobenius ∘ Frobenius", prop.ForAll(
		func(a E12) bool {
			var f2, ff E12
			f2.FrobeniusSquare(&a)
			ff.Frobenius(&a).Frobenius(&ff)
			return f2.Equal(&ff)
		},
		GenE12(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// cyclotomic sends a random element to the cyclotomic subgroup via
// x^(p⁶-1)(p²+1)
func cyclotomic(a *E12) E12 {
	var r, t E12
	t.Conjugate(a) // x^(p⁶)
	r.Inverse(a)
	t.Mul(&t, &r) // x^(p⁶-1)
	r.FrobeniusSquare(&t).Mul(&r, &t)
	return r
}

func TestE12Cyclotomic(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 20

	properties := gopter.NewProperties(parameters)

	properties.Property("CyclotomicSquare == Square in the cyclotomic subgroup", prop.ForAll(
		func(a E12) bool {
			if a.IsZero() {
				return true
			}
			c := cyclotomic(&a)
			var s, cs E12
			s.Square(&c)
			cs.CyclotomicSquare(&c)
			return s.Equal(&cs)
		},
		GenE12(),
	))

	properties.Property("Expt == Exp(|seed|)", prop.ForAll(
		func(a E12) bool {
			if a.IsZero() {
				return true
			}
			c := cyclotomic(&a)
			var e, got E12
			var tAbs big.Int
			tAbs.SetUint64(15132376222941642752) // 0xd201000000010000
			e.Exp(c, &tAbs)
			got.Expt(&c)
			return got.Equal(&e)
		},
		GenE12(),
	))

	properties.Property("conjugate inverts unitary elements", prop.ForAll(
		func(a E12) bool {
			if a.IsZero() {
				return true
			}
			c := cyclotomic(&a)
			var inv, conj E12
			inv.Inverse(&c)
			conj.InverseUnitary(&c)
			return inv.Equal(&conj)
		},
		GenE12(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestE12Serialization(t *testing.T) {
	assert := require.New(t)

	var a, b E12
	_, err := a.SetRandom()
	assert.NoError(err)

	buf := a.Bytes()
	assert.NoError(b.SetBytes(buf[:]))
	assert.True(a.Equal(&b))

	assert.Error(b.SetBytes(buf[:SizeOfGT-1]))
}
