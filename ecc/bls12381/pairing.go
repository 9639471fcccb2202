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

	"github.com/consensys/gkzg/ecc/bls12381/internal/fptower"
)

// GT is the multiplicative target group of the pairing, the r-torsion of
// the cyclotomic subgroup of Fp12
type GT = fptower.E12

var ErrInvalidWitness = errors.New("mismatching number of points in pairing input")

// lineEvaluation is a sparse Fp12 element: the line through two points of
// the twist evaluated at a G1 point, coefficients in the 014 positions
type lineEvaluation struct {
	r0 E2
	r1 E2
	r2 E2
}

// Pair computes the reduced ate pairing ∏ᵢ e(Pᵢ, Qᵢ)
func Pair(P []G1Affine, Q []G2Affine) (GT, error) {
	f, err := MillerLoop(P, Q)
	if err != nil {
		return GT{}, err
	}
	return FinalExponentiation(&f), nil
}

// PairingCheck returns true if ∏ᵢ e(Pᵢ, Qᵢ) == 1
func PairingCheck(P []G1Affine, Q []G2Affine) (bool, error) {
	f, err := Pair(P, Q)
	if err != nil {
		return false, err
	}
	var one GT
	one.SetOne()
	return f.Equal(&one), nil
}

// FinalExponentiation raises z to (p¹²-1)/r, mapping a Miller loop output
// into GT. The easy part is (p⁶-1)(p²+1); the hard part follows
// Hayashida, Hayasaka and Teruya (https://eprint.iacr.org/2020/875.pdf).
func FinalExponentiation(z *GT) GT {
	var result GT
	result.Set(z)

	var t [3]GT

	// easy part: z^((p⁶-1)(p²+1))
	t[0].Conjugate(&result)
	result.Inverse(&result)
	t[0].Mul(&t[0], &result)
	result.FrobeniusSquare(&t[0]).
		Mul(&result, &t[0])

	// hard part: 3(p⁴-p²+1)/r, multiple of the exact exponent
	t[0].CyclotomicSquare(&result)
	t[1].Expt(&result)
	t[2].InverseUnitary(&result)
	t[1].Mul(&t[1], &t[2])
	t[2].Expt(&t[1])
	t[1].InverseUnitary(&t[1])
	t[1].Mul(&t[1], &t[2])
	t[2].Expt(&t[1])
	t[1].Frobenius(&t[1])
	t[1].Mul(&t[1], &t[2])
	result.Mul(&result, &t[0])
	t[0].Expt(&t[1])
	t[2].Expt(&t[0])
	t[0].FrobeniusSquare(&t[1])
	t[1].InverseUnitary(&t[1])
	t[1].Mul(&t[1], &t[2])
	t[1].Mul(&t[1], &t[0])
	result.Mul(&result, &t[1])

	return result
}

// MillerLoop computes the multi-pair Miller loop
// ∏ᵢ f_{|z|,Qᵢ}(Pᵢ), conjugated at the end since the seed z is negative.
// Infinity points on either side are silently skipped.
func MillerLoop(P []G1Affine, Q []G2Affine) (GT, error) {
	n := len(P)
	if n == 0 || n != len(Q) {
		return GT{}, ErrInvalidWitness
	}

	// filter infinity points
	p := make([]G1Affine, 0, n)
	q := make([]G2Affine, 0, n)
	for k := 0; k < n; k++ {
		if P[k].IsInfinity() || Q[k].IsInfinity() {
			continue
		}
		p = append(p, P[k])
		q = append(q, Q[k])
	}
	n = len(p)

	qProj := make([]g2Proj, n)
	for k := 0; k < n; k++ {
		qProj[k].FromAffine(&q[k])
	}

	var result GT
	result.SetOne()
	var l lineEvaluation

	// loopCounter[63] == 1; the loop runs over the remaining bits
	for i := 62; i >= 0; i-- {
		result.Square(&result)

		for k := 0; k < n; k++ {
			qProj[k].doubleStep(&l)
			l.r1.MulByElement(&l.r1, &p[k].X)
			l.r2.MulByElement(&l.r2, &p[k].Y)
			result.MulBy014(&l.r0, &l.r1, &l.r2)

			if loopCounter[i] == 0 {
				continue
			}
			qProj[k].addMixedStep(&l, &q[k])
			l.r1.MulByElement(&l.r1, &p[k].X)
			l.r2.MulByElement(&l.r2, &p[k].Y)
			result.MulBy014(&l.r0, &l.r1, &l.r2)
		}
	}

	result.Conjugate(&result)

	return result, nil
}

// g2Proj is a point of the twist in homogeneous projective coordinates,
// used only inside the Miller loop
type g2Proj struct {
	x, y, z E2
}

// FromAffine initializes the working point from an affine G2 point
func (p *g2Proj) FromAffine(a *G2Affine) *g2Proj {
	p.x.Set(&a.X)
	p.y.Set(&a.Y)
	p.z.SetOne()
	return p
}

// doubleStep doubles p and evaluates the tangent line at p
// (https://eprint.iacr.org/2013/722.pdf, section 4.3)
func (p *g2Proj) doubleStep(evaluations *lineEvaluation) {
	var t1, A, B, C, D, E, EE, F, G, H, I, J, K E2
	A.Mul(&p.x, &p.y)
	A.Halve()
	B.Square(&p.y)
	C.Square(&p.z)
	D.Double(&C).
		Add(&D, &C)
	E.Mul(&D, &bTwistCurveCoeff)
	F.Double(&E).
		Add(&F, &E)
	G.Add(&B, &F)
	G.Halve()
	H.Add(&p.y, &p.z).
		Square(&H)
	t1.Add(&B, &C)
	H.Sub(&H, &t1)
	I.Sub(&E, &B)
	J.Square(&p.x)
	EE.Square(&E)
	K.Double(&EE).
		Add(&K, &EE)

	p.x.Sub(&B, &F).
		Mul(&p.x, &A)
	p.y.Square(&G).
		Sub(&p.y, &K)
	p.z.Mul(&B, &H)

	evaluations.r0.Set(&I)
	evaluations.r1.Double(&J).
		Add(&evaluations.r1, &J)
	evaluations.r2.Neg(&H)
}

// addMixedStep adds the affine point a to p and evaluates the line through
// both (https://eprint.iacr.org/2013/722.pdf, section 4.3)
func (p *g2Proj) addMixedStep(evaluations *lineEvaluation, a *G2Affine) {
	var Y2Z1, X2Z1, O, L, C, D, E, F, G, H, t0, t1, t2, J E2
	Y2Z1.Mul(&a.Y, &p.z)
	O.Sub(&p.y, &Y2Z1)
	X2Z1.Mul(&a.X, &p.z)
	L.Sub(&p.x, &X2Z1)
	C.Square(&O)
	D.Square(&L)
	E.Mul(&L, &D)
	F.Mul(&p.z, &C)
	G.Mul(&p.x, &D)
	t0.Double(&G)
	H.Add(&E, &F).
		Sub(&H, &t0)
	t1.Mul(&p.y, &E)

	p.x.Mul(&L, &H)
	p.y.Sub(&G, &H).
		Mul(&p.y, &O).
		Sub(&p.y, &t1)
	p.z.Mul(&E, &p.z)

	t2.Mul(&L, &a.Y)
	J.Mul(&a.X, &O).
		Sub(&J, &t2)

	evaluations.r0.Set(&J)
	evaluations.r1.Neg(&O)
	evaluations.r2.Set(&L)
}
