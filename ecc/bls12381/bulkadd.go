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
	"github.com/consensys/gkzg/ecc/bls12381/fp"
)

// BulkAddG1Affine sums a flat slice of affine points with one field
// inversion per halving round: at each level pairs are added with the
// affine chord/tangent formula, all slope denominators inverted in a
// single batch. Cost is about 5M+1S per point. Not constant-time; callers
// pass public points only.
func BulkAddG1Affine(points []G1Affine) G1Affine {
	// compact away infinities, working on a copy
	buf := make([]G1Affine, 0, len(points))
	for i := range points {
		if !points[i].IsInfinity() {
			buf = append(buf, points[i])
		}
	}

	dens := make([]fp.Element, len(buf)/2)

	for len(buf) > 1 {
		half := len(buf) / 2
		dens = dens[:half]

		// λ denominators: x₂-x₁ for distinct x, 2y for doublings,
		// 0 marks a cancelling pair
		for i := 0; i < half; i++ {
			a, b := &buf[2*i], &buf[2*i+1]
			if a.X.Equal(&b.X) {
				if a.Y.Equal(&b.Y) && !a.Y.IsZero() {
					dens[i].Double(&a.Y)
				} else {
					dens[i].SetZero()
				}
			} else {
				dens[i].Sub(&b.X, &a.X)
			}
		}

		invs := fp.BatchInvert(dens)

		out := buf[:0]
		for i := 0; i < half; i++ {
			a, b := buf[2*i], buf[2*i+1]

			var lambda fp.Element
			if a.X.Equal(&b.X) {
				if invs[i].IsZero() {
					// P + (-P), drop the pair
					continue
				}
				// tangent: λ = 3x²/2y
				lambda.Square(&a.X).MulBy3(&lambda).Mul(&lambda, &invs[i])
			} else {
				// chord: λ = (y₂-y₁)/(x₂-x₁)
				lambda.Sub(&b.Y, &a.Y).Mul(&lambda, &invs[i])
			}

			var p G1Affine
			p.X.Square(&lambda).Sub(&p.X, &a.X).Sub(&p.X, &b.X)
			p.Y.Sub(&a.X, &p.X).Mul(&p.Y, &lambda).Sub(&p.Y, &a.Y)
			out = append(out, p)
		}
		if len(buf)%2 == 1 {
			out = append(out, buf[len(buf)-1])
		}
		buf = out
	}

	if len(buf) == 0 {
		var inf G1Affine
		inf.setInfinity()
		return inf
	}
	return buf[0]
}

// BulkAddG2Affine is the G2 counterpart of BulkAddG1Affine
func BulkAddG2Affine(points []G2Affine) G2Affine {
	buf := make([]G2Affine, 0, len(points))
	for i := range points {
		if !points[i].IsInfinity() {
			buf = append(buf, points[i])
		}
	}

	for len(buf) > 1 {
		half := len(buf) / 2

		// Montgomery's trick over E2 denominators
		dens := make([]E2, half)
		for i := 0; i < half; i++ {
			a, b := &buf[2*i], &buf[2*i+1]
			if a.X.Equal(&b.X) {
				if a.Y.Equal(&b.Y) && !a.Y.IsZero() {
					dens[i].Double(&a.Y)
				} else {
					dens[i].SetZero()
				}
			} else {
				dens[i].Sub(&b.X, &a.X)
			}
		}
		invs := batchInvertE2(dens)

		out := buf[:0]
		for i := 0; i < half; i++ {
			a, b := buf[2*i], buf[2*i+1]

			var lambda, sq E2
			if a.X.Equal(&b.X) {
				if invs[i].IsZero() {
					continue
				}
				sq.Square(&a.X)
				lambda.Double(&sq).Add(&lambda, &sq).Mul(&lambda, &invs[i])
			} else {
				lambda.Sub(&b.Y, &a.Y).Mul(&lambda, &invs[i])
			}

			var p G2Affine
			p.X.Square(&lambda).Sub(&p.X, &a.X).Sub(&p.X, &b.X)
			p.Y.Sub(&a.X, &p.X).Mul(&p.Y, &lambda).Sub(&p.Y, &a.Y)
			out = append(out, p)
		}
		if len(buf)%2 == 1 {
			out = append(out, buf[len(buf)-1])
		}
		buf = out
	}

	if len(buf) == 0 {
		var inf G2Affine
		inf.setInfinity()
		return inf
	}
	return buf[0]
}

// batchInvertE2 inverts a slice of E2 elements with a single inversion;
// zeroes stay zero
func batchInvertE2(a []E2) []E2 {
	res := make([]E2, len(a))
	if len(a) == 0 {
		return res
	}

	zeroes := make([]bool, len(a))
	var acc E2
	acc.SetOne()
	for i := range a {
		if a[i].IsZero() {
			zeroes[i] = true
			continue
		}
		res[i].Set(&acc)
		acc.Mul(&acc, &a[i])
	}
	acc.Inverse(&acc)
	for i := len(a) - 1; i >= 0; i-- {
		if zeroes[i] {
			continue
		}
		res[i].Mul(&res[i], &acc)
		acc.Mul(&acc, &a[i])
	}
	return res
}
