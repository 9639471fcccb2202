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

package bls12381

import (
	"math/big"
	"testing"

	"github.com/consensys/gkzg/ecc"
	"github.com/consensys/gkzg/ecc/bls12381/fr"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"
)

// mulNafG1 computes [s]a with a signed non-adjacent-form ladder; an
// independent baseline for the GLV and windowed paths.
func mulNafG1(a *G1Jac, s *big.Int) G1Jac {
	naf := make([]int8, s.BitLen()+1)
	l := ecc.NafDecomposition(s, naf)
	var res, neg G1Jac
	res.Set(&g1Infinity)
	neg.Neg(a)
	for i := l - 1; i >= 0; i-- {
		res.DoubleAssign()
		switch naf[i] {
		case 1:
			res.AddAssign(a)
		case -1:
			res.AddAssign(&neg)
		}
	}
	return res
}

// GenFr generates a random fr.Element
func GenFr() gopter.Gen {
	return func(genParams *gopter.GenParameters) *gopter.GenResult {
		var a fr.Element
		if _, err := a.SetRandom(); err != nil {
			panic(err)
		}
		return gopter.NewGenResult(a, gopter.NoShrinker)
	}
}

// randomG1 returns [s]G for a fresh random s
func randomG1(t *testing.T) G1Jac {
	t.Helper()
	var s fr.Element
	_, err := s.SetRandom()
	require.NoError(t, err)
	var sBig big.Int
	s.BigInt(&sBig)
	var p G1Jac
	p.ScalarMultiplicationBase(&sBig)
	return p
}

func TestG1GeneratorIsOnCurve(t *testing.T) {
	require.True(t, g1Gen.IsOnCurve())
	require.True(t, g1Gen.IsInSubGroup())
	require.True(t, g1GenAff.IsOnCurve())
	require.True(t, g1GenAff.IsInSubGroup())
}

func TestG1Conversions(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 20

	properties := gopter.NewProperties(parameters)

	properties.Property("affine ↔ Jacobian round trip", prop.ForAll(
		func(s fr.Element) bool {
			var sBig big.Int
			s.BigInt(&sBig)
			var p G1Jac
			p.ScalarMultiplicationBase(&sBig)
			var a G1Affine
			a.FromJacobian(&p)
			var q G1Jac
			q.FromAffine(&a)
			return q.Equal(&p) && a.IsOnCurve()
		},
		GenFr(),
	))

	properties.Property("extended Jacobian → affine matches Jacobian → affine", prop.ForAll(
		func(s fr.Element) bool {
			var sBig big.Int
			s.BigInt(&sBig)
			var p G1Jac
			p.ScalarMultiplicationBase(&sBig)
			var a G1Affine
			a.FromJacobian(&p)

			var ext g1JacExtended
			ext.setInfinity()
			ext.addMixed(&a)
			var b G1Affine
			b.fromJacExtended(&ext)
			return b.Equal(&a)
		},
		GenFr(),
	))

	t.Run("infinity", func(t *testing.T) {
		var p G1Jac
		p.Set(&g1Infinity)
		var a G1Affine
		a.FromJacobian(&p)
		require.True(t, a.IsInfinity())
		require.True(t, a.IsOnCurve())

		var ext g1JacExtended
		ext.setInfinity()
		var b G1Affine
		b.fromJacExtended(&ext)
		require.True(t, b.IsInfinity())
	})

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestG1Ops(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 10

	properties := gopter.NewProperties(parameters)

	properties.Property("[2]P == P + P", prop.ForAll(
		func(s fr.Element) bool {
			var sBig big.Int
			s.BigInt(&sBig)
			var p, d, a G1Jac
			p.ScalarMultiplicationBase(&sBig)
			d.Double(&p)
			a.Set(&p).AddAssign(&p)
			return d.Equal(&a) && d.IsOnCurve()
		},
		GenFr(),
	))

	properties.Property("P - P == ∞", prop.ForAll(
		func(s fr.Element) bool {
			var sBig big.Int
			s.BigInt(&sBig)
			var p, q G1Jac
			p.ScalarMultiplicationBase(&sBig)
			q.Set(&p)
			p.SubAssign(&q)
			return p.Z.IsZero()
		},
		GenFr(),
	))

	properties.Property("mixed addition matches Jacobian addition", prop.ForAll(
		func(s1, s2 fr.Element) bool {
			var b1, b2 big.Int
			s1.BigInt(&b1)
			s2.BigInt(&b2)
			var p, q, ref G1Jac
			p.ScalarMultiplicationBase(&b1)
			q.ScalarMultiplicationBase(&b2)
			ref.Set(&p).AddAssign(&q)

			var qAff G1Affine
			qAff.FromJacobian(&q)
			p.AddMixed(&qAff)
			return p.Equal(&ref)
		},
		GenFr(), GenFr(),
	))

	properties.Property("[a+b]G == [a]G + [b]G", prop.ForAll(
		func(s1, s2 fr.Element) bool {
			var sum fr.Element
			sum.Add(&s1, &s2)
			var b1, b2, bSum big.Int
			s1.BigInt(&b1)
			s2.BigInt(&b2)
			sum.BigInt(&bSum)
			var p, q, ref G1Jac
			p.ScalarMultiplicationBase(&b1)
			q.ScalarMultiplicationBase(&b2)
			p.AddAssign(&q)
			ref.ScalarMultiplicationBase(&bSum)
			return p.Equal(&ref)
		},
		GenFr(), GenFr(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestG1ScalarMultiplication(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 10

	properties := gopter.NewProperties(parameters)

	properties.Property("GLV matches windowed double-and-add", prop.ForAll(
		func(s fr.Element) bool {
			var sBig big.Int
			s.BigInt(&sBig)
			var p, q G1Jac
			p.mulGLV(&g1Gen, &sBig)
			q.mulWindowed(&g1Gen, &sBig)
			return p.Equal(&q)
		},
		GenFr(),
	))

	properties.Property("GLV matches NAF signed-digit ladder", prop.ForAll(
		func(s fr.Element) bool {
			var sBig big.Int
			s.BigInt(&sBig)
			var p G1Jac
			p.mulGLV(&g1Gen, &sBig)
			q := mulNafG1(&g1Gen, &sBig)
			return p.Equal(&q)
		},
		GenFr(),
	))

	properties.Property("φ(P) == [λ]P", prop.ForAll(
		func(s fr.Element) bool {
			var sBig big.Int
			s.BigInt(&sBig)
			var p, ph, lp G1Jac
			p.ScalarMultiplicationBase(&sBig)
			ph.phi(&p)
			lp.mulWindowed(&p, &lambdaGLV)
			return ph.Equal(&lp)
		},
		GenFr(),
	))

	properties.Property("[r]P == ∞", prop.ForAll(
		func(s fr.Element) bool {
			var sBig big.Int
			s.BigInt(&sBig)
			var p G1Jac
			p.ScalarMultiplicationBase(&sBig)
			p.mulWindowed(&p, fr.Modulus())
			return p.Z.IsZero()
		},
		GenFr(),
	))

	t.Run("edge cases", func(t *testing.T) {
		var p G1Jac
		p.ScalarMultiplication(&g1Gen, big.NewInt(0))
		require.True(t, p.Z.IsZero())

		p.ScalarMultiplication(&g1Gen, big.NewInt(1))
		require.True(t, p.Equal(&g1Gen))

		// scalars reduce mod r
		var rPlusOne big.Int
		rPlusOne.Add(fr.Modulus(), big.NewInt(1))
		p.ScalarMultiplication(&g1Gen, &rPlusOne)
		require.True(t, p.Equal(&g1Gen))

		// negative scalars reduce as well
		var m1 big.Int
		m1.SetInt64(-1)
		var q G1Jac
		q.ScalarMultiplication(&g1Gen, &m1)
		q.AddAssign(&g1Gen)
		require.True(t, q.Z.IsZero())
	})

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestG1CofactorAndSubGroup(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 10

	properties := gopter.NewProperties(parameters)

	properties.Property("ClearCofactor lands in the subgroup", prop.ForAll(
		func(s fr.Element) bool {
			// random subgroup points stay in the subgroup after clearing
			var sBig big.Int
			s.BigInt(&sBig)
			var p G1Jac
			p.ScalarMultiplicationBase(&sBig)
			p.ClearCofactor(&p)
			return p.IsOnCurve() && p.IsInSubGroup()
		},
		GenFr(),
	))

	properties.Property("mulBySeed matches [|z|]P", prop.ForAll(
		func(s fr.Element) bool {
			var sBig big.Int
			s.BigInt(&sBig)
			var p, q, ref G1Jac
			p.ScalarMultiplicationBase(&sBig)
			q.mulBySeed(&p)
			ref.mulWindowed(&p, &xGen)
			return q.Equal(&ref)
		},
		GenFr(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestG1BatchJacobianToAffine(t *testing.T) {
	points := make([]G1Jac, 10)
	for i := range points {
		points[i] = randomG1(t)
	}
	// one infinity in the middle
	points[4].Set(&g1Infinity)

	affine := BatchJacobianToAffineG1(points)
	require.Len(t, affine, len(points))
	for i := range points {
		var ref G1Affine
		ref.FromJacobian(&points[i])
		require.True(t, affine[i].Equal(&ref), "mismatch at %d", i)
	}
	require.True(t, affine[4].IsInfinity())
}
