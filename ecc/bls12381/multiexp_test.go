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

	"github.com/consensys/gkzg/ecc/bls12381/fr"
	"github.com/stretchr/testify/require"
)

// msmTestScalars builds n pseudo-random scalars; deterministic so failures
// reproduce
func msmTestScalars(n int) []fr.Element {
	scalars := make([]fr.Element, n)
	var s, inc fr.Element
	s.SetUint64(1)
	inc.SetUint64(0xdeadbeef)
	for i := 0; i < n; i++ {
		s.Mul(&s, &inc).Add(&s, &inc)
		scalars[i] = s
	}
	return scalars
}

func msmTestInput(t *testing.T, n int) ([]G1Affine, []fr.Element) {
	t.Helper()
	scalars := msmTestScalars(n)
	points := make([]G1Affine, n)
	var sBig big.Int
	for i := 0; i < n; i++ {
		scalars[i].BigInt(&sBig)
		points[i].ScalarMultiplicationBase(&sBig)
	}
	return points, scalars
}

// msmNaiveG1 is the reference implementation
func msmNaiveG1(points []G1Affine, scalars []fr.Element) G1Jac {
	var res, tmp G1Jac
	res.Set(&g1Infinity)
	var sBig big.Int
	for i := range points {
		scalars[i].BigInt(&sBig)
		var pJac G1Jac
		pJac.FromAffine(&points[i])
		tmp.ScalarMultiplication(&pJac, &sBig)
		res.AddAssign(&tmp)
	}
	return res
}

func TestMultiExpG1(t *testing.T) {
	for _, n := range []int{1, 3, 7, 8, 9, 33, 129} {
		points, scalars := msmTestInput(t, n)
		ref := msmNaiveG1(points, scalars)

		var res G1Jac
		_, err := res.MultiExp(points, scalars)
		require.NoError(t, err)
		require.True(t, res.Equal(&ref), "n=%d", n)
	}
}

func TestMultiExpG1EdgeCases(t *testing.T) {
	t.Run("length mismatch", func(t *testing.T) {
		var res G1Jac
		_, err := res.MultiExp(make([]G1Affine, 2), make([]fr.Element, 3))
		require.ErrorIs(t, err, ErrMismatchedLengths)
	})

	t.Run("empty", func(t *testing.T) {
		var res G1Jac
		_, err := res.MultiExp(nil, nil)
		require.NoError(t, err)
		require.True(t, res.Z.IsZero())
	})

	t.Run("zero scalars and infinity points are skipped", func(t *testing.T) {
		points, scalars := msmTestInput(t, 20)
		scalars[3].SetZero()
		scalars[17].SetZero()
		points[5].setInfinity()
		ref := msmNaiveG1(points, scalars)

		var res G1Jac
		_, err := res.MultiExp(points, scalars)
		require.NoError(t, err)
		require.True(t, res.Equal(&ref))
	})
}

func TestMultiExpG2(t *testing.T) {
	for _, n := range []int{1, 7, 9, 40} {
		scalars := msmTestScalars(n)
		points := make([]G2Affine, n)
		var sBig big.Int
		for i := range points {
			scalars[i].BigInt(&sBig)
			points[i].ScalarMultiplicationBase(&sBig)
		}

		// reference
		var ref, tmp G2Jac
		ref.Set(&g2Infinity)
		for i := range points {
			scalars[i].BigInt(&sBig)
			var pJac G2Jac
			pJac.FromAffine(&points[i])
			tmp.ScalarMultiplication(&pJac, &sBig)
			ref.AddAssign(&tmp)
		}

		var res G2Jac
		_, err := res.MultiExp(points, scalars)
		require.NoError(t, err)
		require.True(t, res.Equal(&ref), "n=%d", n)
	}
}

func TestG1FixedBaseTable(t *testing.T) {
	points, scalars := msmTestInput(t, 16)
	ref := msmNaiveG1(points, scalars)

	for _, c := range []uint{2, 4, 8} {
		table := NewG1FixedBaseTable(points, c)
		var res G1Jac
		_, err := table.MultiExp(&res, scalars)
		require.NoError(t, err)
		require.True(t, res.Equal(&ref), "c=%d", c)
	}

	t.Run("length mismatch", func(t *testing.T) {
		table := NewG1FixedBaseTable(points, 4)
		var res G1Jac
		_, err := table.MultiExp(&res, scalars[:3])
		require.ErrorIs(t, err, ErrMismatchedLengths)
	})
}

func TestBulkAddG1(t *testing.T) {
	points, _ := msmTestInput(t, 31)

	// reference via sequential mixed additions
	var ref G1Jac
	ref.Set(&g1Infinity)
	for i := range points {
		ref.AddMixed(&points[i])
	}
	var refAff G1Affine
	refAff.FromJacobian(&ref)

	sum := BulkAddG1Affine(points)
	require.True(t, sum.Equal(&refAff))

	t.Run("cancelling pairs", func(t *testing.T) {
		var negged []G1Affine
		negged = append(negged, points...)
		for i := range points {
			var n G1Affine
			n.Neg(&points[i])
			negged = append(negged, n)
		}
		sum := BulkAddG1Affine(negged)
		require.True(t, sum.IsInfinity())
	})

	t.Run("duplicates double", func(t *testing.T) {
		dup := []G1Affine{points[0], points[0], points[1]}
		var ref G1Jac
		ref.FromAffine(&points[0])
		ref.DoubleAssign()
		ref.AddMixed(&points[1])
		var refAff G1Affine
		refAff.FromJacobian(&ref)
		sum := BulkAddG1Affine(dup)
		require.True(t, sum.Equal(&refAff))
	})

	t.Run("empty and infinity", func(t *testing.T) {
		empty := BulkAddG1Affine(nil)
		require.True(t, empty.IsInfinity())
		var inf G1Affine
		inf.setInfinity()
		infSum := BulkAddG1Affine([]G1Affine{inf})
		require.True(t, infSum.IsInfinity())
		sum := BulkAddG1Affine([]G1Affine{inf, points[0]})
		require.True(t, sum.Equal(&points[0]))
	})
}

func TestBulkAddG2(t *testing.T) {
	scalars := msmTestScalars(17)
	points := make([]G2Affine, len(scalars))
	var sBig big.Int
	for i := range points {
		scalars[i].BigInt(&sBig)
		points[i].ScalarMultiplicationBase(&sBig)
	}

	var ref G2Jac
	ref.Set(&g2Infinity)
	for i := range points {
		ref.AddMixed(&points[i])
	}
	var refAff G2Affine
	refAff.FromJacobian(&ref)

	sum := BulkAddG2Affine(points)
	require.True(t, sum.Equal(&refAff))
}
