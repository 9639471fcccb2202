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
	"github.com/consensys/gkzg/ecc/bls12381/fr"
)

// G2Affine is a point in affine coordinates (x,y) on E': y² = x³ + 4(u+1)
type G2Affine struct {
	X, Y E2
}

// G2Jac is a point in Jacobian coordinates (x=X/Z², y=Y/Z³) on the twist
type G2Jac struct {
	X, Y, Z E2
}

// g2JacExtended is a point in extended Jacobian coordinates
// (x=X/ZZ, y=Y/ZZZ, ZZ³=ZZZ²)
type g2JacExtended struct {
	X, Y, ZZ, ZZZ E2
}

// -------------------------------------------------------------------------------------------------
// Affine

// Set p = a
func (p *G2Affine) Set(a *G2Affine) *G2Affine {
	p.X, p.Y = a.X, a.Y
	return p
}

// setInfinity sets p to the affine representation of the point at infinity
// (0,0)
func (p *G2Affine) setInfinity() *G2Affine {
	p.X.SetZero()
	p.Y.SetZero()
	return p
}

// Equal tests p == a
func (p *G2Affine) Equal(a *G2Affine) bool {
	return p.X.Equal(&a.X) && p.Y.Equal(&a.Y)
}

// Neg sets p = -a
func (p *G2Affine) Neg(a *G2Affine) *G2Affine {
	p.X = a.X
	p.Y.Neg(&a.Y)
	return p
}

// IsInfinity returns true if p is the point at infinity, encoded as (0,0)
func (p *G2Affine) IsInfinity() bool {
	return p.X.IsZero() && p.Y.IsZero()
}

// IsOnCurve returns true if p is on the twist (the point at infinity counts
// as on the curve)
func (p *G2Affine) IsOnCurve() bool {
	if p.IsInfinity() {
		return true
	}
	var left, right E2
	left.Square(&p.Y)
	right.Square(&p.X).Mul(&right, &p.X).Add(&right, &bTwistCurveCoeff)
	return left.Equal(&right)
}

// IsInSubGroup returns true if p is in the r-torsion subgroup
func (p *G2Affine) IsInSubGroup() bool {
	var q G2Jac
	q.FromAffine(p)
	return q.IsInSubGroup()
}

// FromJacobian converts a Jacobian point to affine coordinates
func (p *G2Affine) FromJacobian(q *G2Jac) *G2Affine {
	if q.Z.IsZero() {
		return p.setInfinity()
	}
	var a, b E2
	a.Inverse(&q.Z)
	b.Square(&a)
	p.X.Mul(&q.X, &b)
	p.Y.Mul(&q.Y, &b).Mul(&p.Y, &a)
	return p
}

// Add sets p = a + b in affine coordinates (via Jacobian)
func (p *G2Affine) Add(a, b *G2Affine) *G2Affine {
	var q G2Jac
	q.FromAffine(a)
	q.AddMixed(b)
	return p.FromJacobian(&q)
}

// Sub sets p = a - b
func (p *G2Affine) Sub(a, b *G2Affine) *G2Affine {
	var nb G2Affine
	nb.Neg(b)
	return p.Add(a, &nb)
}

// Double sets p = 2a
func (p *G2Affine) Double(a *G2Affine) *G2Affine {
	var q G2Jac
	q.FromAffine(a)
	q.DoubleAssign()
	return p.FromJacobian(&q)
}

// ScalarMultiplication sets p = [s]a
func (p *G2Affine) ScalarMultiplication(a *G2Affine, s *big.Int) *G2Affine {
	var q, aJac G2Jac
	aJac.FromAffine(a)
	q.ScalarMultiplication(&aJac, s)
	return p.FromJacobian(&q)
}

// ScalarMultiplicationBase sets p = [s]G where G is the group generator
func (p *G2Affine) ScalarMultiplicationBase(s *big.Int) *G2Affine {
	var q G2Jac
	q.ScalarMultiplication(&g2Gen, s)
	return p.FromJacobian(&q)
}

// String returns "E'([x,y])" (affine) or "O" for the point at infinity
func (p *G2Affine) String() string {
	if p.IsInfinity() {
		return "O"
	}
	return "E'([" + p.X.A0.String() + "+" + p.X.A1.String() + "*u," +
		p.Y.A0.String() + "+" + p.Y.A1.String() + "*u])"
}

// -------------------------------------------------------------------------------------------------
// Jacobian

// Set p = a
func (p *G2Jac) Set(a *G2Jac) *G2Jac {
	p.X, p.Y, p.Z = a.X, a.Y, a.Z
	return p
}

// Equal tests p == a (projective equality)
func (p *G2Jac) Equal(a *G2Jac) bool {
	var pAff, aAff G2Affine
	pAff.FromJacobian(p)
	aAff.FromJacobian(a)
	return pAff.Equal(&aAff)
}

// Neg sets p = -a
func (p *G2Jac) Neg(a *G2Jac) *G2Jac {
	*p = *a
	p.Y.Neg(&a.Y)
	return p
}

// FromAffine converts an affine point to Jacobian coordinates
func (p *G2Jac) FromAffine(a *G2Affine) *G2Jac {
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
func (p *G2Jac) SubAssign(a *G2Jac) *G2Jac {
	var tmp G2Jac
	tmp.Set(a)
	tmp.Y.Neg(&tmp.Y)
	return p.AddAssign(&tmp)
}

// AddAssign sets p = p + a
// https://hyperelliptic.org/EFD/g1p/auto-shortw-jacobian-3.html#addition-add-2007-bl
func (p *G2Jac) AddAssign(a *G2Jac) *G2Jac {
	if a.Z.IsZero() {
		return p
	}
	if p.Z.IsZero() {
		return p.Set(a)
	}

	var Z1Z1, Z2Z2, U1, U2, S1, S2, H, I, J, r, V E2
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
func (p *G2Jac) AddMixed(a *G2Affine) *G2Jac {
	if a.IsInfinity() {
		return p
	}
	if p.Z.IsZero() {
		p.X = a.X
		p.Y = a.Y
		p.Z.SetOne()
		return p
	}

	var Z1Z1, U2, S2, H, HH, I, J, r, V E2
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
func (p *G2Jac) Double(a *G2Jac) *G2Jac {
	p.Set(a)
	return p.DoubleAssign()
}

// DoubleAssign doubles p in place
// https://hyperelliptic.org/EFD/g1p/auto-shortw-jacobian-0.html#doubling-dbl-2009-l
func (p *G2Jac) DoubleAssign() *G2Jac {
	var XX, YY, YYYY, ZZ, S, M, T E2
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

// doubleAndAdd sets p = 2p + a
func (p *G2Jac) doubleAndAdd(a *G2Jac) *G2Jac {
	p.DoubleAssign()
	return p.AddAssign(a)
}

// doubleN doubles p n times
func (p *G2Jac) doubleN(n int) *G2Jac {
	for i := 0; i < n; i++ {
		p.DoubleAssign()
	}
	return p
}

// IsOnCurve returns true if p is on the twist
func (p *G2Jac) IsOnCurve() bool {
	var left, right, tmp E2
	left.Square(&p.Y)
	right.Square(&p.X).Mul(&right, &p.X)
	tmp.Square(&p.Z).Square(&tmp).Mul(&tmp, &p.Z).Mul(&tmp, &p.Z).Mul(&tmp, &bTwistCurveCoeff)
	right.Add(&right, &tmp)
	return left.Equal(&right)
}

// IsInSubGroup returns true if p is on the r-torsion.
// ψ acts as [z] on the subgroup, so the check is ψ(P) + [|z|]P == ∞
// (https://eprint.iacr.org/2021/1130.pdf).
func (p *G2Jac) IsInSubGroup() bool {
	var a, res G2Jac
	a.psi(p)
	res.mulBySeed(p)
	res.AddAssign(&a)
	return res.Z.IsZero()
}

// psi sets p = ψ(a), the untwist-Frobenius-twist endomorphism
func (p *G2Jac) psi(a *G2Jac) *G2Jac {
	p.Set(a)
	p.X.Conjugate(&p.X).Mul(&p.X, &psiCoeffX)
	p.Y.Conjugate(&p.Y).Mul(&p.Y, &psiCoeffY)
	p.Z.Conjugate(&p.Z)
	return p
}

// phi sets p = φ(a) where φ(x,y) = (β²x, y); φ acts as [λ] on G2
func (p *G2Jac) phi(a *G2Jac) *G2Jac {
	p.Set(a)
	p.X.MulByElement(&p.X, &thirdRootOneG2)
	return p
}

// mulBySeed sets p = [|z|]a using the fixed double-and-add chain
func (p *G2Jac) mulBySeed(a *G2Jac) *G2Jac {
	var res, acc G2Jac
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

// mulBySeedNeg sets p = [z]a (the seed is negative)
func (p *G2Jac) mulBySeedNeg(a *G2Jac) *G2Jac {
	p.mulBySeed(a)
	p.Y.Neg(&p.Y)
	return p
}

// ClearCofactor maps p to the r-torsion subgroup:
// [z²-z-1]P + [z-1]ψ(P) + ψ²(2P)
// (Budroni-Pintore, https://eprint.iacr.org/2017/419.pdf)
func (p *G2Jac) ClearCofactor(a *G2Jac) *G2Jac {
	var t1, t2, res, t G2Jac

	t1.mulBySeedNeg(a)  // [z]P
	t2.mulBySeedNeg(&t1) // [z²]P

	res.Set(&t2).SubAssign(&t1) // [z²-z]P
	res.SubAssign(a)            // [z²-z-1]P

	t.Set(&t1).SubAssign(a) // [z-1]P
	t.psi(&t)               // [z-1]ψ(P)
	res.AddAssign(&t)

	t.Double(a) // 2P
	t.psi(&t).psi(&t)
	res.AddAssign(&t)

	return p.Set(&res)
}

// ScalarMultiplication sets p = [s]a using the GLV endomorphism
func (p *G2Jac) ScalarMultiplication(a *G2Jac, s *big.Int) *G2Jac {
	return p.mulGLV(a, s)
}

// ScalarMultiplicationBase sets p = [s]G where G is the group generator
func (p *G2Jac) ScalarMultiplicationBase(s *big.Int) *G2Jac {
	return p.mulGLV(&g2Gen, s)
}

// mulWindowed computes [s]a with a 2-bit window; s must be non-negative
func (p *G2Jac) mulWindowed(a *G2Jac, s *big.Int) *G2Jac {
	var res G2Jac
	var ops [3]G2Jac

	res.Set(&g2Infinity)
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

// mulGLV computes [s]a via the φ split, see G1Jac.mulGLV
func (p *G2Jac) mulGLV(a *G2Jac, s *big.Int) *G2Jac {
	var table [15]G2Jac
	var res G2Jac

	res.Set(&g2Infinity)

	var sRed big.Int
	sRed.Mod(s, fr.Modulus())
	if sRed.Sign() == 0 {
		return p.Set(&res)
	}

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
func (p *G2Jac) String() string {
	var a G2Affine
	a.FromJacobian(p)
	return a.String()
}

// -------------------------------------------------------------------------------------------------
// Extended Jacobian

// setInfinity sets p to the point at infinity (ZZ == 0)
func (p *g2JacExtended) setInfinity() *g2JacExtended {
	p.X.SetOne()
	p.Y.SetOne()
	p.ZZ = E2{}
	p.ZZZ = E2{}
	return p
}

// Set p = q
func (p *g2JacExtended) Set(q *g2JacExtended) *g2JacExtended {
	p.X, p.Y, p.ZZ, p.ZZZ = q.X, q.Y, q.ZZ, q.ZZZ
	return p
}

// fromJacExtended converts an extended Jacobian point to affine
func (p *G2Affine) fromJacExtended(q *g2JacExtended) *G2Affine {
	if q.ZZ.IsZero() {
		return p.setInfinity()
	}
	var t E2
	t.Inverse(&q.ZZ)
	p.X.Mul(&q.X, &t)
	t.Inverse(&q.ZZZ)
	p.Y.Mul(&q.Y, &t)
	return p
}

// fromJacExtended converts an extended Jacobian point to Jacobian
func (p *G2Jac) fromJacExtended(q *g2JacExtended) *G2Jac {
	if q.ZZ.IsZero() {
		p.Set(&g2Infinity)
		return p
	}
	p.X.Mul(&q.ZZ, &q.X).Mul(&p.X, &q.ZZ)
	p.Y.Mul(&q.ZZZ, &q.Y).Mul(&p.Y, &q.ZZZ)
	p.Z.Set(&q.ZZZ)
	return p
}

// add sets p = p + q in extended Jacobian coordinates
func (p *g2JacExtended) add(q *g2JacExtended) *g2JacExtended {
	if q.ZZ.IsZero() {
		return p
	}
	if p.ZZ.IsZero() {
		p.Set(q)
		return p
	}

	var A, B, U1, U2, S1, S2 E2
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

	var P, R, PP, PPP, Q, V E2
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
func (p *g2JacExtended) double(q *g2JacExtended) *g2JacExtended {
	var U, V, W, S, XX, M E2
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

// addMixed sets p = p + a with a affine
func (p *g2JacExtended) addMixed(a *G2Affine) *g2JacExtended {
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

	var P, R E2
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

	var PP, PPP, Q, Q2, RR, X3, Y3 E2
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
func (p *g2JacExtended) subMixed(a *G2Affine) *g2JacExtended {
	var na G2Affine
	na.Neg(a)
	return p.addMixed(&na)
}

// doubleMixed sets p = 2a with a affine
func (p *g2JacExtended) doubleMixed(a *G2Affine) *g2JacExtended {
	var U, V, W, S, XX, M, S2, L E2
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
