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

// Simplified SWU parameters for the 3-isogenous curve
// E2': y² = x³ + sswuG2A·x + sswuG2B with Z = -(2 + u)
// (RFC 9380, section 8.8.2)
var (
	sswuG2A E2
	sswuG2B E2
	sswuG2Z E2
)

// 3-isogeny E2' → E2 coefficient tables in ascending degree
var (
	g2IsoXNum [4]E2
	g2IsoXDen [3]E2
	g2IsoYNum [4]E2
	g2IsoYDen [4]E2
)

func init() {
	sswuG2A.SetString("0", "240")
	sswuG2B.SetString("1012", "1012")
	sswuG2Z.SetString(
		"4002409555221667393417789825735904156556882819939007885332058136124031650490837864442687629129015664037894272559785",
		"4002409555221667393417789825735904156556882819939007885332058136124031650490837864442687629129015664037894272559786")

	g2IsoXNum[0].SetString(
		"889424345604814976315064405719089812568196182208668418962679585805340366775741747653930584250892369786198727235542",
		"889424345604814976315064405719089812568196182208668418962679585805340366775741747653930584250892369786198727235542")
	g2IsoXNum[1].SetString(
		"0",
		"2668273036814444928945193217157269437704588546626005256888038757416021100327225242961791752752677109358596181706522")
	g2IsoXNum[2].SetString(
		"2668273036814444928945193217157269437704588546626005256888038757416021100327225242961791752752677109358596181706526",
		"1334136518407222464472596608578634718852294273313002628444019378708010550163612621480895876376338554679298090853261")
	g2IsoXNum[3].SetString(
		"3557697382419259905260257622876359250272784728834673675850718343221361467102966990615722337003569479144794908942033",
		"0")

	g2IsoXDen[0].SetString(
		"0",
		"4002409555221667393417789825735904156556882819939007885332058136124031650490837864442687629129015664037894272559715")
	g2IsoXDen[1].SetString(
		"12",
		"4002409555221667393417789825735904156556882819939007885332058136124031650490837864442687629129015664037894272559775")
	g2IsoXDen[2].SetString("1", "0")

	g2IsoYNum[0].SetString(
		"3261222600550988246488569487636662646083386001431784202863158481286248011511053074731078808919938689216061999863558",
		"3261222600550988246488569487636662646083386001431784202863158481286248011511053074731078808919938689216061999863558")
	g2IsoYNum[1].SetString(
		"0",
		"889424345604814976315064405719089812568196182208668418962679585805340366775741747653930584250892369786198727235518")
	g2IsoYNum[2].SetString(
		"2668273036814444928945193217157269437704588546626005256888038757416021100327225242961791752752677109358596181706524",
		"1334136518407222464472596608578634718852294273313002628444019378708010550163612621480895876376338554679298090853263")
	g2IsoYNum[3].SetString(
		"2816510427748580758331037284777117739799287910327449993381818688383577828123182200904113516794492504322962636245776",
		"0")

	g2IsoYDen[0].SetString(
		"4002409555221667393417789825735904156556882819939007885332058136124031650490837864442687629129015664037894272559355",
		"4002409555221667393417789825735904156556882819939007885332058136124031650490837864442687629129015664037894272559355")
	g2IsoYDen[1].SetString(
		"0",
		"4002409555221667393417789825735904156556882819939007885332058136124031650490837864442687629129015664037894272559571")
	g2IsoYDen[2].SetString(
		"18",
		"4002409555221667393417789825735904156556882819939007885332058136124031650490837864442687629129015664037894272559769")
	g2IsoYDen[3].SetString("1", "0")
}

// g2EvalPolynomial evaluates the polynomial with the given ascending-degree
// coefficients at x (Horner)
func g2EvalPolynomial(res *E2, coefficients []E2, x *E2) {
	acc := coefficients[len(coefficients)-1]
	for i := len(coefficients) - 2; i >= 0; i-- {
		acc.Mul(&acc, x)
		acc.Add(&acc, &coefficients[i])
	}
	res.Set(&acc)
}

// g2Isogeny applies the 3-isogeny E2' → E2 to p in place
func g2Isogeny(p *G2Affine) {
	var xNum, xDen, yNum, yDen E2
	g2EvalPolynomial(&xNum, g2IsoXNum[:], &p.X)
	g2EvalPolynomial(&xDen, g2IsoXDen[:], &p.X)
	g2EvalPolynomial(&yNum, g2IsoYNum[:], &p.X)
	g2EvalPolynomial(&yDen, g2IsoYDen[:], &p.X)

	// one inversion for both denominators
	var inv, t E2
	inv.Mul(&xDen, &yDen).Inverse(&inv)

	t.Mul(&inv, &yDen)
	p.X.Mul(&xNum, &t)
	t.Mul(&inv, &xDen)
	yNum.Mul(&yNum, &t)
	p.Y.Mul(&p.Y, &yNum)
}

// mapToCurve2 maps a field element to a point of the isogenous curve E2'
// using the simplified SWU method (RFC 9380, section 6.6.2)
func mapToCurve2(u *E2) G2Affine {
	var tv1, tv2, x1, gx1, x2, gx2, x, y E2

	// tv1 = Z·u², tv2 = tv1² + tv1
	tv1.Square(u).Mul(&tv1, &sswuG2Z)
	tv2.Square(&tv1).Add(&tv2, &tv1)

	// x1 = (-B/A)·(1 + 1/tv2), or B/(Z·A) for the exceptional case
	if tv2.IsZero() {
		x1.Mul(&sswuG2Z, &sswuG2A)
		x1.Inverse(&x1)
		x1.Mul(&x1, &sswuG2B)
	} else {
		x1.Inverse(&tv2)
		var one E2
		one.SetOne()
		x1.Add(&x1, &one)
		var t E2
		t.Inverse(&sswuG2A)
		t.Mul(&t, &sswuG2B).Neg(&t)
		x1.Mul(&x1, &t)
	}

	// gx1 = x1³ + A·x1 + B
	gx1.Square(&x1).Add(&gx1, &sswuG2A).Mul(&gx1, &x1).Add(&gx1, &sswuG2B)

	if y.Sqrt(&gx1) != nil {
		x.Set(&x1)
	} else {
		// x2 = tv1·x1, gx2 = gx1·tv1³
		x2.Mul(&tv1, &x1)
		gx2.Square(&tv1).Mul(&gx2, &tv1).Mul(&gx2, &gx1)
		if y.Sqrt(&gx2) == nil {
			panic("neither candidate is a square")
		}
		x.Set(&x2)
	}

	if y.Sgn0() != u.Sgn0() {
		y.Neg(&y)
	}

	return G2Affine{X: x, Y: y}
}

// MapToG2 maps a field element to a point of the r-torsion of G2: SSWU to
// the isogenous curve, 3-isogeny, cofactor clearing
func MapToG2(u E2) G2Affine {
	res := mapToCurve2(&u)
	g2Isogeny(&res)

	var jac G2Jac
	jac.FromAffine(&res)
	jac.ClearCofactor(&jac)
	res.FromJacobian(&jac)
	return res
}

// EncodeToG2 maps msg to a curve point non-uniformly (one field element,
// one SSWU map)
func EncodeToG2(msg, dst []byte) (G2Affine, error) {
	var res G2Affine
	u, err := hashToFp(msg, dst, 2)
	if err != nil {
		return res, err
	}
	return MapToG2(E2{A0: u[0], A1: u[1]}), nil
}

// HashToG2 hashes msg to a uniformly distributed point of G2
// (RFC 9380, hash_to_curve)
func HashToG2(msg, dst []byte) (G2Affine, error) {
	var res G2Affine
	u, err := hashToFp(msg, dst, 4)
	if err != nil {
		return res, err
	}

	q0 := mapToCurve2(&E2{A0: u[0], A1: u[1]})
	q1 := mapToCurve2(&E2{A0: u[2], A1: u[3]})
	g2Isogeny(&q0)
	g2Isogeny(&q1)

	var jac G2Jac
	jac.FromAffine(&q0)
	jac.AddMixed(&q1)
	jac.ClearCofactor(&jac)

	res.FromJacobian(&jac)
	return res, nil
}
