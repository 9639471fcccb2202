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
	"errors"
	"math/big"
	"math/bits"
	"time"

	"github.com/consensys/gkzg/ecc"
	"github.com/consensys/gkzg/ecc/bls12381/fp"
	"github.com/consensys/gkzg/ecc/bls12381/fr"
	"github.com/consensys/gkzg/logger"
)

var ErrMismatchedLengths = errors.New("mismatched number of points and scalars")

// msmCutoff is the input size below which the naive sum of scalar
// multiplications beats the bucket method
const msmCutoff = 8

// msmBestC picks the Pippenger window size in bits for the given input
// size, about log₂(n) minus a small constant
func msmBestC(nbPoints int) uint {
	c := uint(bits.Len(uint(nbPoints))) // ~log₂(n)+1
	if c > 2 {
		c -= 2
	}
	if c < 4 {
		c = 4
	}
	if c > 14 {
		c = 14 // Booth digits are int16
	}
	return c
}

// MultiExp computes p = Σᵢ scalars[i]·points[i] with the bucket (Pippenger)
// method; small inputs fall back to a naive sum
func (p *G1Jac) MultiExp(points []G1Affine, scalars []fr.Element) (*G1Jac, error) {
	if len(points) != len(scalars) {
		return nil, ErrMismatchedLengths
	}

	// drop zero scalars and infinity points
	ps := make([]G1Affine, 0, len(points))
	ss := make([]fr.Element, 0, len(scalars))
	for i := range points {
		if scalars[i].IsZero() || points[i].IsInfinity() {
			continue
		}
		ps = append(ps, points[i])
		ss = append(ss, scalars[i])
	}

	if len(ps) < msmCutoff {
		p.Set(&g1Infinity)
		var sBig big.Int
		var tmp, pJac G1Jac
		for i := range ps {
			ss[i].BigInt(&sBig)
			pJac.FromAffine(&ps[i])
			tmp.mulGLV(&pJac, &sBig)
			p.AddAssign(&tmp)
		}
		return p, nil
	}

	c := msmBestC(len(ps))
	nbWindows := (fr.Bits+int(c)-1)/int(c) + 1

	digits := make([][]int16, len(ss))
	var sBig big.Int
	for i := range ss {
		ss[i].BigInt(&sBig)
		digits[i] = ecc.BoothRecode(&sBig, c)
	}

	buckets := make([]g1JacExtended, 1<<(c-1))

	p.Set(&g1Infinity)
	for w := nbWindows - 1; w >= 0; w-- {
		for i := uint(0); i < c; i++ {
			p.DoubleAssign()
		}

		for i := range buckets {
			buckets[i].setInfinity()
		}
		for k := range digits {
			if w >= len(digits[k]) {
				continue
			}
			d := digits[k][w]
			if d > 0 {
				buckets[d-1].addMixed(&ps[k])
			} else if d < 0 {
				buckets[-d-1].subMixed(&ps[k])
			}
		}

		// integrate: Σⱼ (j+1)·bucket[j] by the running-sum trick
		var runningSum, total g1JacExtended
		runningSum.setInfinity()
		total.setInfinity()
		for j := len(buckets) - 1; j >= 0; j-- {
			if !buckets[j].ZZ.IsZero() {
				runningSum.add(&buckets[j])
			}
			total.add(&runningSum)
		}

		var t G1Jac
		t.fromJacExtended(&total)
		p.AddAssign(&t)
	}

	return p, nil
}

// MultiExp computes p = Σᵢ scalars[i]·points[i], affine result
func (p *G1Affine) MultiExp(points []G1Affine, scalars []fr.Element) (*G1Affine, error) {
	var res G1Jac
	if _, err := res.MultiExp(points, scalars); err != nil {
		return nil, err
	}
	return p.FromJacobian(&res), nil
}

// MultiExp computes p = Σᵢ scalars[i]·points[i] on G2
func (p *G2Jac) MultiExp(points []G2Affine, scalars []fr.Element) (*G2Jac, error) {
	if len(points) != len(scalars) {
		return nil, ErrMismatchedLengths
	}

	ps := make([]G2Affine, 0, len(points))
	ss := make([]fr.Element, 0, len(scalars))
	for i := range points {
		if scalars[i].IsZero() || points[i].IsInfinity() {
			continue
		}
		ps = append(ps, points[i])
		ss = append(ss, scalars[i])
	}

	if len(ps) < msmCutoff {
		p.Set(&g2Infinity)
		var sBig big.Int
		var tmp, pJac G2Jac
		for i := range ps {
			ss[i].BigInt(&sBig)
			pJac.FromAffine(&ps[i])
			tmp.mulGLV(&pJac, &sBig)
			p.AddAssign(&tmp)
		}
		return p, nil
	}

	c := msmBestC(len(ps))
	nbWindows := (fr.Bits+int(c)-1)/int(c) + 1

	digits := make([][]int16, len(ss))
	var sBig big.Int
	for i := range ss {
		ss[i].BigInt(&sBig)
		digits[i] = ecc.BoothRecode(&sBig, c)
	}

	buckets := make([]g2JacExtended, 1<<(c-1))

	p.Set(&g2Infinity)
	for w := nbWindows - 1; w >= 0; w-- {
		for i := uint(0); i < c; i++ {
			p.DoubleAssign()
		}

		for i := range buckets {
			buckets[i].setInfinity()
		}
		for k := range digits {
			if w >= len(digits[k]) {
				continue
			}
			d := digits[k][w]
			if d > 0 {
				buckets[d-1].addMixed(&ps[k])
			} else if d < 0 {
				buckets[-d-1].subMixed(&ps[k])
			}
		}

		var runningSum, total g2JacExtended
		runningSum.setInfinity()
		total.setInfinity()
		for j := len(buckets) - 1; j >= 0; j-- {
			if !buckets[j].ZZ.IsZero() {
				runningSum.add(&buckets[j])
			}
			total.add(&runningSum)
		}

		var t G2Jac
		t.fromJacExtended(&total)
		p.AddAssign(&t)
	}

	return p, nil
}

// MultiExp computes p = Σᵢ scalars[i]·points[i] on G2, affine result
func (p *G2Affine) MultiExp(points []G2Affine, scalars []fr.Element) (*G2Affine, error) {
	var res G2Jac
	if _, err := res.MultiExp(points, scalars); err != nil {
		return nil, err
	}
	return p.FromJacobian(&res), nil
}

// batchAffineTileG1 bounds the per-tile allocation of the batch conversion
const batchAffineTileG1 = 1536

// BatchJacobianToAffineG1 converts a slice of Jacobian points to affine
// with a single field inversion per tile (Montgomery's trick); points at
// infinity convert to the affine (0,0) encoding
func BatchJacobianToAffineG1(points []G1Jac) []G1Affine {
	res := make([]G1Affine, len(points))
	for start := 0; start < len(points); start += batchAffineTileG1 {
		end := start + batchAffineTileG1
		if end > len(points) {
			end = len(points)
		}
		batchJacobianToAffineG1Tile(points[start:end], res[start:end])
	}
	return res
}

func batchJacobianToAffineG1Tile(points []G1Jac, res []G1Affine) {
	zs := make([]fp.Element, len(points))
	for i := range points {
		zs[i] = points[i].Z
	}
	zInvs := fp.BatchInvert(zs)

	for i := range points {
		if zInvs[i].IsZero() {
			res[i].setInfinity()
			continue
		}
		var zInv2 fp.Element
		zInv2.Square(&zInvs[i])
		res[i].X.Mul(&points[i].X, &zInv2)
		zInv2.Mul(&zInv2, &zInvs[i])
		res[i].Y.Mul(&points[i].Y, &zInv2)
	}
}

// batchAffineTileG2 is half the G1 tile: E2 coordinates double the
// working-set size
const batchAffineTileG2 = 768

// BatchJacobianToAffineG2 is the G2 counterpart of BatchJacobianToAffineG1
func BatchJacobianToAffineG2(points []G2Jac) []G2Affine {
	res := make([]G2Affine, len(points))
	for start := 0; start < len(points); start += batchAffineTileG2 {
		end := start + batchAffineTileG2
		if end > len(points) {
			end = len(points)
		}
		batchJacobianToAffineG2Tile(points[start:end], res[start:end])
	}
	return res
}

func batchJacobianToAffineG2Tile(points []G2Jac, res []G2Affine) {
	zs := make([]E2, len(points))
	for i := range points {
		zs[i] = points[i].Z
	}
	zInvs := batchInvertE2(zs)

	for i := range points {
		if zInvs[i].IsZero() {
			res[i].setInfinity()
			continue
		}
		var zInv2 E2
		zInv2.Square(&zInvs[i])
		res[i].X.Mul(&points[i].X, &zInv2)
		zInv2.Mul(&zInv2, &zInvs[i])
		res[i].Y.Mul(&points[i].Y, &zInv2)
	}
}

// G1FixedBaseTable holds windowed multiples of a fixed set of points for
// repeated multi-exponentiations against varying scalars
type G1FixedBaseTable struct {
	c      uint
	tables [][]G1Affine // tables[i][j] = (j+1)·points[i], j < 2^(c-1)
}

// NewG1FixedBaseTable precomputes 2^(c-1) multiples of every point
func NewG1FixedBaseTable(points []G1Affine, c uint) *G1FixedBaseTable {
	start := time.Now()
	if c < 2 {
		c = 2
	}
	if c > 14 {
		c = 14
	}
	t := &G1FixedBaseTable{
		c:      c,
		tables: make([][]G1Affine, len(points)),
	}

	size := 1 << (c - 1)
	for i := range points {
		multiples := make([]G1Jac, size)
		multiples[0].FromAffine(&points[i])
		for j := 1; j < size; j++ {
			multiples[j].Set(&multiples[j-1])
			multiples[j].AddMixed(&points[i])
		}
		t.tables[i] = BatchJacobianToAffineG1(multiples)
	}

	log := logger.Logger().With().Str("curve", "bls12381").Logger()
	log.Debug().Int("points", len(points)).Uint("c", c).
		Dur("took", time.Since(start)).Msg("fixed-base table built")

	return t
}

// MultiExp computes p = Σᵢ scalars[i]·points[i] using the precomputed
// table; len(scalars) must match the table
func (t *G1FixedBaseTable) MultiExp(p *G1Jac, scalars []fr.Element) (*G1Jac, error) {
	if len(scalars) != len(t.tables) {
		return nil, ErrMismatchedLengths
	}

	digits := make([][]int16, len(scalars))
	var sBig big.Int
	for i := range scalars {
		scalars[i].BigInt(&sBig)
		digits[i] = ecc.BoothRecode(&sBig, t.c)
	}

	nbWindows := (fr.Bits+int(t.c)-1)/int(t.c) + 1

	p.Set(&g1Infinity)
	var neg G1Affine
	for w := nbWindows - 1; w >= 0; w-- {
		for i := uint(0); i < t.c; i++ {
			p.DoubleAssign()
		}
		for k := range digits {
			if w >= len(digits[k]) {
				continue
			}
			d := digits[k][w]
			if d > 0 {
				p.AddMixed(&t.tables[k][d-1])
			} else if d < 0 {
				neg.Neg(&t.tables[k][-d-1])
				p.AddMixed(&neg)
			}
		}
	}
	return p, nil
}
