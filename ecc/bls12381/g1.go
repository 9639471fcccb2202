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

	"github.com/consensys/gkzg/ecc"
	"github.com/consensys/gkzg/ecc/bls12381/fp"
	"github.com/consensys/gkzg/ecc/bls12381/fr"
)

// G1Affine is a point in affine coordinates (x,y) on E: y² = x³ + 4
type G1Affine struct {
	X, Y fp.Element
}

// G1Jac is a point in Jacobian coordinates (x=X/Z², y=Y/Z³)
type G1Jac struct {
	X, Y, Z fp.Element
}

// g1JacExtended is a point in extended Jacobian coordinates
// (x=X/ZZ, y=Y/ZZZ, ZZ³=ZZZ²); used for the multi-exponentiation buckets
type g1JacExtended struct {
	X, Y, ZZ, ZZZ fp.Element
}

// -------------------------------------------------------------------------------------------------
// Affine

// Set p = a
func (p *G1Affine) Set(a *G1Affine) *G1Affine {
	p.X, p.Y = a.X, a.Y
	return p
}

// setInfinity sets p to the affine representation of the point at infinity
// (0,0)
func (p *G1Affine) setInfinity() *G1Affine {
	p.X.SetZero()
	p.Y.SetZero()
	return p
}

// Equal tests p == a
func (p *G1Affine) Equal(a *G1Affine) bool {
	return p.X.Equal(&a.X) && p.Y.Equal(&a.Y)
}

// Neg sets p = -a
func (p *G1Affine) Neg(a *G1Affine) *G1Affine {
	p.X = a.X
	p.Y.Neg(&a.Y)
	return p
}

// IsInfinity returns true if p is the point at infinity, encoded as (0,0)
func (p *G1Affine) IsInfinity() bool {
	return p.X.IsZero() && p.Y.IsZero()
}

// IsOnCurve returns true if p is on the curve (the point at infinity counts
// as on the curve)
func (p *G1Affine) IsOnCurve() bool {
	if p.IsInfinity() {
		return true
	}
	var left, right fp.Element
	left.Square(&p.Y)
	right.Square(&p.X).Mul(&right, &p.X).Add(&right, &bCurveCoeff)
	return left.Equal(&right)
}

// IsInSubGroup returns true if p is in the r-torsion subgroup
func (p *G1Affine) IsInSubGroup() bool {
	var q G1Jac
	q.FromAffine(p)
	return q.IsInSubGroup()
}

// FromJacobian converts a Jacobian point to affine coordinates
func (p *G1Affine) FromJacobian(q *G1Jac) *G1Affine {
	if q.Z.IsZero() {
		return p.setInfinity()
	}
	var a, b fp.Element
	a.Inverse(&q.Z)
	b.Square(&a)
	p.X.Mul(&q.X, &b)
	p.Y.Mul(&q.Y, &b).Mul(&p.Y, &a)
	return p
}

// Add sets p = a + b in affine coordinates (via Jacobian)
func (p *G1Affine) Add(a, b *G1Affine) *G1Affine {
	var q G1Jac
	q.FromAffine(a)
	q.AddMixed(b)
	return p.FromJacobian(&q)
}

// Sub sets p = a - b
func (p *G1Affine) Sub(a, b *G1Affine) *G1Affine {
	var nb G1Affine
	nb.Neg(b)
	return p.Add(a, &nb)
}

// Double sets p = 2a
func (p *G1Affine) Double(a *G1Affine) *G1Affine {
	var q G1Jac
	q.FromAffine(a)
	q.DoubleAssign()
	return p.FromJacobian(&q)
}

// ScalarMultiplication sets p = [s]a
func (p *G1Affine) ScalarMultiplication(a *G1Affine, s *big.Int) *G1Affine {
	var q, aJac G1Jac
	aJac.FromAffine(a)
	q.ScalarMultiplication(&aJac, s)
	return p.FromJacobian(&q)
}

// ScalarMultiplicationBase sets p = [s]G where G is the group generator
func (p *G1Affine) ScalarMultiplicationBase(s *big.Int) *G1Affine {
	var q G1Jac
	q.ScalarMultiplication(&g1Gen, s)
	return p.FromJacobian(&q)
}

// String returns "E([x,y])" (affine) or "O" for the point at infinity
func (p *G1Affine) String() string {
	if p.IsInfinity() {
		return "O"
	}
	return "E([" + p.X.String() + "," + p.Y.String() + "])"
}

// -------------------------------------------------------------------------------------------------
// Jacobian

// Set p = a
func (p *G1Jac) Set(a *G1Jac) *G1Jac {
	p.X, p.Y, p.Z = a.X, a.Y, a.Z
	return p
}

// Equal tests p == a (projective equality)
func (p *G1Jac) Equal(a *G1Jac) bool {
	var pAff, aAff G1Affine
	pAff.FromJacobian(p)
	aAff.FromJacobian(a)
	return pAff.Equal(&aAff)
}

// Neg sets p = -a
func (p *G1Jac) Neg(a *G1Jac) *G1Jac {
	*p = *a
	p.Y.Neg(&a.Y)
	return p
}

// FromAffine converts an affine point to Jacobian coordinates
func (p *G1Jac) FromAffine(a *G1Affine) *G1Jac {
	if a.IsInfinity() {
		p.Z.SetZero()
		p.X.SetOne()
		p.Y.SetOne()
		return p
	}
	p.Z.SetOne()
	p.X.Set(&a.X)
	p.Y.Set(&a.Y)
	return p
}

// SubAssign sets p = p - a
func (p *G1Jac) SubAssign(a *G1Jac) *G1Jac {
	var tmp G1Jac
	tmp.Set(a)
	tmp.Y.Neg(&tmp.Y)
	return p.AddAssign(&tmp)
}

// AddAssign sets p = p + a
// https://hyperelliptic.org/EFD/g1p/auto-shortw-jacobian-3.html#addition-add-2007-bl
func (p *G1Jac) AddAssign(a *G1Jac) *G1Jac {
	if a.Z.IsZero() {
		return p
	}
	if p.Z.IsZero() {
		return p.Set(a)
	}

	var Z1Z1, Z2Z2, U1, U2, S1, S2, H, I, J, r, V fp.Element
	Z1Z1.Square(&a.Z)
	Z2Z2.Square(&p.Z)
	U1.Mul(&a.X, &Z2Z2)
	U2.Mul(&p.X, &Z1Z1)
	S1.Mul(&a.Y, &p.Z).Mul(&S1, &Z2Z2)
	S2.Mul(&p.Y, &a.Z).Mul(&S2, &Z1Z1)

	if U1.Equal(&U2) && S1.Equal(&S2) {
		return p.DoubleAssign()
	}

	H.Sub(&U2, &U1)
	I.Double(&H).Square(&I)
	J.Mul(&H, &I)
	r.Sub(&S2, &S1).Double(&r)
	V.Mul(&U1, &I)
	p.X.Square(&r).Sub(&p.X, &J).Sub(&p.X, &V).Sub(&p.X, &V)
	p.Y.Sub(&V, &p.X).Mul(&p.Y, &r)
	S1.Mul(&S1, &J).Double(&S1)
	p.Y.Sub(&p.Y, &S1)
	p.Z.Add(&p.Z, &a.Z).Square(&p.Z).Sub(&p.Z, &Z1Z1).Sub(&p.Z, &Z2Z2).Mul(&p.Z, &H)

	return p
}

// AddMixed sets p = p + a where a is affine
// https://hyperelliptic.org/EFD/g1p/auto-shortw-jacobian-0.html#addition-madd-2007-bl
func (p *G1Jac) AddMixed(a *G1Affine) *G1Jac {
	if a.IsInfinity() {
		return p
	}
	if p.Z.IsZero() {
		p.X = a.X
		p.Y = a.Y
		p.Z.SetOne()
		return p
	}

	var Z1Z1, U2, S2, H, HH, I, J, r, V fp.Element
	Z1Z1.Square(&p.Z)
	U2.Mul(&a.X, &Z1Z1)
	S2.Mul(&a.Y, &p.Z).Mul(&S2, &Z1Z1)

	if U2.Equal(&p.X) && S2.Equal(&p.Y) {
		return p.DoubleAssign()
	}

	H.Sub(&U2, &p.X)
	HH.Square(&H)
	I.Double(&HH).Double(&I)
	J.Mul(&H, &I)
	r.Sub(&S2, &p.Y).Double(&r)
	V.Mul(&p.X, &I)
	p.X.Square(&r).Sub(&p.X, &J).Sub(&p.X, &V).Sub(&p.X, &V)
	J.Mul(&J, &p.Y).Double(&J)
	p.Y.Sub(&V, &p.X).Mul(&p.Y, &r)
	p.Y.Sub(&p.Y, &J)
	p.Z.Add(&p.Z, &H).Square(&p.Z).Sub(&p.Z, &Z1Z1).Sub(&p.Z, &HH)

	return p
}

// Double sets p = 2a
func (p *G1Jac) Double(a *G1Jac) *G1Jac {
	p.Set(a)
	return p.DoubleAssign()
}

// DoubleAssign doubles p in place
// https://hyperelliptic.org/EFD/g1p/auto-shortw-jacobian-0.html#doubling-dbl-2009-l
func (p *G1Jac) DoubleAssign() *G1Jac {
	var XX, YY, YYYY, ZZ, S, M, T fp.Element
	XX.Square(&p.X)
	YY.Square(&p.Y)
	YYYY.Square(&YY)
	ZZ.Square(&p.Z)
	S.Add(&p.X, &YY).Square(&S).Sub(&S, &XX).Sub(&S, &YYYY).Double(&S)
	M.Double(&XX).Add(&M, &XX)
	p.Z.Add(&p.Z, &p.Y).Square(&p.Z).Sub(&p.Z, &YY).Sub(&p.Z, &ZZ)
	T.Square(&M)
	p.X = T
	T.Double(&S)
	p.X.Sub(&p.X, &T)
	p.Y.Sub(&S, &p.X).Mul(&p.Y, &M)
	YYYY.Double(&YYYY).Double(&YYYY).Double(&YYYY)
	p.Y.Sub(&p.Y, &YYYY)

	return p
}

// doubleAndAdd sets p = 2p + a; used by the fixed seed chains
func (p *G1Jac) doubleAndAdd(a *G1Jac) *G1Jac {
	p.DoubleAssign()
	return p.AddAssign(a)
}

// doubleN doubles p n times
func (p *G1Jac) doubleN(n int) *G1Jac {
	for i := 0; i < n; i++ {
		p.DoubleAssign()
	}
	return p
}

// IsOnCurve returns true if p is on the curve
func (p *G1Jac) IsOnCurve() bool {
	var left, right, tmp fp.Element
	left.Square(&p.Y)
	right.Square(&p.X).Mul(&right, &p.X)
	tmp.Square(&p.Z).Square(&tmp).Mul(&tmp, &p.Z).Mul(&tmp, &p.Z).Mul(&tmp, &bCurveCoeff)
	right.Add(&right, &tmp)
	return left.Equal(&right)
}

// IsInSubGroup returns true if p is on the r-torsion.
// The check is P + [z²]φ(P) == ∞ (https://eprint.iacr.org/2021/1130.pdf):
// φ acts as [λ] with λ = z²-1, so the left side is [z⁴-z²+1]P = [r]P.
func (p *G1Jac) IsInSubGroup() bool {
	var res G1Jac
	res.phi(p).
		mulBySeed(&res).
		mulBySeed(&res).
		AddAssign(p)
	return res.Z.IsZero()
}

// phi sets p = φ(a) where φ(x,y) = (βx, y), the GLV endomorphism
func (p *G1Jac) phi(a *G1Jac) *G1Jac {
	p.Set(a)
	p.X.Mul(&p.X, &thirdRootOneG1)
	return p
}

// mulBySeed sets p = [|z|]a using the fixed double-and-add chain for the
// curve seed
func (p *G1Jac) mulBySeed(a *G1Jac) *G1Jac {
	var res, acc G1Jac
	acc.Set(a)
	res.Set(a)
	res.DoubleAssign().AddAssign(&acc)
	res.DoubleAssign()
	res.doubleAndAdd(&acc)
	res.doubleN(2)
	res.doubleAndAdd(&acc)
	res.doubleN(8)
	res.doubleAndAdd(&acc)
	res.doubleN(31)
	res.doubleAndAdd(&acc)
	res.doubleN(16)
	return p.Set(&res)
}

// ClearCofactor maps p to the r-torsion subgroup. The effective cofactor is
// 1-z, so the result is [|z|]p + p (https://eprint.iacr.org/2019/403.pdf).
func (p *G1Jac) ClearCofactor(a *G1Jac) *G1Jac {
	var t G1Jac
	t.mulBySeed(a)
	t.AddAssign(a)
	return p.Set(&t)
}

// ScalarMultiplication sets p = [s]a using the GLV endomorphism
func (p *G1Jac) ScalarMultiplication(a *G1Jac, s *big.Int) *G1Jac {
	return p.mulGLV(a, s)
}

// ScalarMultiplicationBase sets p = [s]G where G is the group generator
func (p *G1Jac) ScalarMultiplicationBase(s *big.Int) *G1Jac {
	return p.mulGLV(&g1Gen, s)
}

// mulWindowed computes [s]a with a 2-bit window; s must be non-negative.
// Slower than mulGLV, kept as the plain reference ladder.
func (p *G1Jac) mulWindowed(a *G1Jac, s *big.Int) *G1Jac {
	var res G1Jac
	var ops [3]G1Jac

	res.Set(&g1Infinity)
	ops[0].Set(a)
	ops[1].Double(&ops[0])
	ops[2].Set(&ops[0]).AddAssign(&ops[1])

	b := s.Bytes()
	for i := range b {
		w := b[i]
		mask := byte(0xc0)
		for j := 0; j < 4; j++ {
			res.DoubleAssign().DoubleAssign()
			c := (w & mask) >> (6 - 2*j)
			if c != 0 {
				res.AddAssign(&ops[c-1])
			}
			mask = mask >> 2
		}
	}
	p.Set(&res)

	return p
}

// mulGLV computes [s]a using the endomorphism φ: s is split as
// s = k1 + λ·k2 and the two half-length multiplications run jointly.
func (p *G1Jac) mulGLV(a *G1Jac, s *big.Int) *G1Jac {
	var table [15]G1Jac
	var res G1Jac

	res.Set(&g1Infinity)

	var sRed big.Int
	sRed.Mod(s, fr.Modulus())
	if sRed.Sign() == 0 {
		return p.Set(&res)
	}

	// table[b3b2b1b0-1] = b3b2·φ(a) + b1b0·a
	table[0].Set(a)
	table[3].phi(a)

	k1, k2 := ecc.SplitScalar(&sRed, &lambdaGLV)

	table[1].Double(&table[0])
	table[2].Set(&table[1]).AddAssign(&table[0])
	table[4].Set(&table[3]).AddAssign(&table[0])
	table[5].Set(&table[3]).AddAssign(&table[1])
	table[6].Set(&table[3]).AddAssign(&table[2])
	table[7].Double(&table[3])
	table[8].Set(&table[7]).AddAssign(&table[0])
	table[9].Set(&table[7]).AddAssign(&table[1])
	table[10].Set(&table[7]).AddAssign(&table[2])
	table[11].Set(&table[7]).AddAssign(&table[3])
	table[12].Set(&table[11]).AddAssign(&table[0])
	table[13].Set(&table[11]).AddAssign(&table[1])
	table[14].Set(&table[11]).AddAssign(&table[2])

	nbits := k1.BitLen()
	if k2.BitLen() > nbits {
		nbits = k2.BitLen()
	}
	if nbits%2 == 1 {
		nbits++
	}

	for i := nbits - 1; i > 0; i -= 2 {
		res.DoubleAssign().DoubleAssign()
		b1 := k1.Bit(i)<<1 | k1.Bit(i-1)
		b2 := k2.Bit(i)<<1 | k2.Bit(i-1)
		if b1|b2 != 0 {
			res.AddAssign(&table[(b2<<2|b1)-1])
		}
	}

	return p.Set(&res)
}

// String returns the affine representation of p
func (p *G1Jac) String() string {
	var a G1Affine
	a.FromJacobian(p)
	return a.String()
}

// -------------------------------------------------------------------------------------------------
// Extended Jacobian

// setInfinity sets p to the point at infinity (ZZ == 0)
func (p *g1JacExtended) setInfinity() *g1JacExtended {
	p.X.SetOne()
	p.Y.SetOne()
	p.ZZ = fp.Element{}
	p.ZZZ = fp.Element{}
	return p
}

// fromJacExtended converts an extended Jacobian point to affine
func (p *G1Affine) fromJacExtended(q *g1JacExtended) *G1Affine {
	if q.ZZ.IsZero() {
		return p.setInfinity()
	}
	var t fp.Element
	t.Inverse(&q.ZZ)
	p.X.Mul(&q.X, &t)
	t.Inverse(&q.ZZZ)
	p.Y.Mul(&q.Y, &t)
	return p
}

// fromJacExtended converts an extended Jacobian point to Jacobian
func (p *G1Jac) fromJacExtended(q *g1JacExtended) *G1Jac {
	if q.ZZ.IsZero() {
		p.Set(&g1Infinity)
		return p
	}
	p.X.Mul(&q.ZZ, &q.X).Mul(&p.X, &q.ZZ)
	p.Y.Mul(&q.ZZZ, &q.Y).Mul(&p.Y, &q.ZZZ)
	p.Z.Set(&q.ZZZ)
	return p
}

// add sets p = p + q in extended Jacobian coordinates
// https://www.hyperelliptic.org/EFD/g1p/auto-shortw-xyzz.html#addition-add-2008-s
func (p *g1JacExtended) add(q *g1JacExtended) *g1JacExtended {
	if q.ZZ.IsZero() {
		return p
	}
	if p.ZZ.IsZero() {
		p.Set(q)
		return p
	}

	var A, B, U1, U2, S1, S2 fp.Element
	U1.Mul(&p.X, &q.ZZ)
	U2.Mul(&q.X, &p.ZZ)
	S1.Mul(&p.Y, &q.ZZZ)
	S2.Mul(&q.Y, &p.ZZZ)

	A.Sub(&U2, &U1)
	B.Sub(&S2, &S1)

	if A.IsZero() {
		if B.IsZero() {
			return p.double(q)
		}
		return p.setInfinity()
	}

	var P, R, PP, PPP, Q, V fp.Element
	P.Set(&A)
	R.Set(&B)
	PP.Square(&P)
	PPP.Mul(&P, &PP)
	Q.Mul(&U1, &PP)
	V.Mul(&S1, &PPP)

	p.X.Square(&R).Sub(&p.X, &PPP).Sub(&p.X, &Q).Sub(&p.X, &Q)
	p.Y.Sub(&Q, &p.X).Mul(&p.Y, &R).Sub(&p.Y, &V)
	p.ZZ.Mul(&p.ZZ, &q.ZZ).Mul(&p.ZZ, &PP)
	p.ZZZ.Mul(&p.ZZZ, &q.ZZZ).Mul(&p.ZZZ, &PPP)

	return p
}

// double sets p = 2q in extended Jacobian coordinates
// https://www.hyperelliptic.org/EFD/g1p/auto-shortw-xyzz.html#doubling-dbl-2008-s-1
func (p *g1JacExtended) double(q *g1JacExtended) *g1JacExtended {
	var U, V, W, S, XX, M fp.Element
	U.Double(&q.Y)
	V.Square(&U)
	W.Mul(&U, &V)
	S.Mul(&q.X, &V)
	XX.Square(&q.X)
	M.Double(&XX).Add(&M, &XX)
	U.Mul(&W, &q.Y)

	p.X.Square(&M).Sub(&p.X, &S).Sub(&p.X, &S)
	p.Y.Sub(&S, &p.X).Mul(&p.Y, &M).Sub(&p.Y, &U)
	p.ZZ.Mul(&V, &q.ZZ)
	p.ZZZ.Mul(&W, &q.ZZZ)

	return p
}

// Set p = q
func (p *g1JacExtended) Set(q *g1JacExtended) *g1JacExtended {
	p.X, p.Y, p.ZZ, p.ZZZ = q.X, q.Y, q.ZZ, q.ZZZ
	return p
}

// addMixed sets p = p + a with a affine
// https://www.hyperelliptic.org/EFD/g1p/auto-shortw-xyzz.html#addition-madd-2008-s
func (p *g1JacExtended) addMixed(a *G1Affine) *g1JacExtended {
	if a.IsInfinity() {
		return p
	}
	if p.ZZ.IsZero() {
		p.X = a.X
		p.Y = a.Y
		p.ZZ.SetOne()
		p.ZZZ.SetOne()
		return p
	}

	var P, R fp.Element
	P.Mul(&a.X, &p.ZZ)
	P.Sub(&P, &p.X)
	R.Mul(&a.Y, &p.ZZZ)
	R.Sub(&R, &p.Y)

	if P.IsZero() {
		if R.IsZero() {
			return p.doubleMixed(a)
		}
		return p.setInfinity()
	}

	var PP, PPP, Q, Q2, RR, X3, Y3 fp.Element
	PP.Square(&P)
	PPP.Mul(&P, &PP)
	Q.Mul(&p.X, &PP)
	RR.Square(&R)
	X3.Sub(&RR, &PPP)
	Q2.Double(&Q)
	p.X.Sub(&X3, &Q2)
	Y3.Sub(&Q, &p.X).Mul(&Y3, &R)
	R.Mul(&p.Y, &PPP)
	p.Y.Sub(&Y3, &R)
	p.ZZ.Mul(&p.ZZ, &PP)
	p.ZZZ.Mul(&p.ZZZ, &PPP)

	return p
}

// subMixed sets p = p - a with a affine
func (p *g1JacExtended) subMixed(a *G1Affine) *g1JacExtended {
	var na G1Affine
	na.Neg(a)
	return p.addMixed(&na)
}

// doubleMixed sets p = 2a with a affine
func (p *g1JacExtended) doubleMixed(a *G1Affine) *g1JacExtended {
	var U, V, W, S, XX, M, S2, L fp.Element
	U.Double(&a.Y)
	V.Square(&U)
	W.Mul(&U, &V)
	S.Mul(&a.X, &V)
	XX.Square(&a.X)
	M.Double(&XX).Add(&M, &XX)
	S2.Double(&S)
	L.Mul(&W, &a.Y)

	p.X.Square(&M).Sub(&p.X, &S2)
	p.Y.Sub(&S, &p.X).Mul(&p.Y, &M).Sub(&p.Y, &L)
	p.ZZ.Set(&V)
	p.ZZZ.Set(&W)

	return p
}
