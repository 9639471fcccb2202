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

// Package bls12381 implements the BLS12-381 pairing-friendly elliptic curve:
//
//	E:  y² = x³ + 4        over Fp (G1)
//	E': y² = x³ + 4(u+1)   over Fp² (G2, M-twist)
//
// with embedding degree 12 and seed z = -0xd201000000010000. Both groups
// have prime order r, and the pairing target group GT is the r-torsion of
// the cyclotomic subgroup of Fp¹².
//
// Serialization follows the Zcash point encoding (compressed points carry
// the sign of y in the most significant bits).
package bls12381

import (
	"math/big"

	"github.com/consensys/gkzg/ecc/bls12381/fp"
	"github.com/consensys/gkzg/ecc/bls12381/internal/fptower"
)

// E2 is the quadratic extension Fp[u]/(u²+1)
type E2 = fptower.E2

// E6 is the sextic extension built on E2
type E6 = fptower.E6

// E12 is the degree 12 extension; pairing results live in its cyclotomic
// subgroup
type E12 = fptower.E12

// SizeOfGT is the byte size of a marshalled GT element
const SizeOfGT = fptower.SizeOfGT

// bCurveCoeff is b in E: y² = x³ + b
var bCurveCoeff fp.Element

// bTwistCurveCoeff is b' in E': y² = x³ + b'
var bTwistCurveCoeff E2

// generators of the r-torsion subgroups
var g1Gen G1Jac
var g2Gen G2Jac

var g1GenAff G1Affine
var g2GenAff G2Affine

// point at infinity in Jacobian coordinates
var g1Infinity G1Jac
var g2Infinity G2Jac

// optimal Ate loop counter: |z| in binary, little-endian
var loopCounter [64]int8

// xGen is |z|, the absolute value of the curve seed
var xGen big.Int

// GLV parameters. phi(P) = (β·x, y) acts as scalar multiplication by λ on
// G1; on G2 the matching root of unity is β².
//
// λ = z² - 1 and λ² + λ + 1 ≡ 0 mod r.
var thirdRootOneG1 fp.Element
var thirdRootOneG2 fp.Element
var lambdaGLV big.Int

// untwist-Frobenius-twist endomorphism coefficients:
// ψ(x, y) = (x̄·ψx, ȳ·ψy) with ψx = (1/(u+1))^((p-1)/3),
// ψy = (1/(u+1))^((p-1)/2). ψ acts as multiplication by z on G2.
var psiCoeffX E2
var psiCoeffY E2

func init() {

	bCurveCoeff.SetUint64(4)
	bTwistCurveCoeff.A0.SetUint64(4)
	bTwistCurveCoeff.A1.SetUint64(4)

	g1Gen.X.SetString("3685416753713387016781088315183077757961620795782546409894578378688607592378376318836054947676345821548104185464507")
	g1Gen.Y.SetString("1339506544944476473020471379941921221584933875938349620426543736416511423956333506472724655353366534992391756441569")
	g1Gen.Z.SetOne()

	g2Gen.X.SetString("352701069587466618187139116011060144890029952792775240219908644239793785735715026873347600343865175952761926303160",
		"3059144344244213709971259814753781636986470325476647558659373206291635324768958432433509563104347017837885763365758")
	g2Gen.Y.SetString("1985150602287291935568054521177171638300868978215655730859378665066344726373823718423869104263333984641494340347905",
		"927553665492332455747201965776037880757740193453592970025027978793976877002675564980949289727957565575433344219582")
	g2Gen.Z.SetString("1", "0")

	g1GenAff.FromJacobian(&g1Gen)
	g2GenAff.FromJacobian(&g2Gen)

	g1Infinity.X.SetOne()
	g1Infinity.Y.SetOne()

	g2Infinity.X.SetOne()
	g2Infinity.Y.SetOne()

	thirdRootOneG1.SetString("4002409555221667392624310435006688643935503118305586438271171395842971157480381377015405980053539358417135540939436")
	thirdRootOneG2.Square(&thirdRootOneG1)
	lambdaGLV.SetString("228988810152649578064853576960394133503", 10) // z²-1

	xGen.SetUint64(15132376222941642752) // |z|
	for i := 0; i < 64; i++ {
		loopCounter[i] = int8(xGen.Bit(i))
	}

	var one, nonRes E2
	one.SetOne()
	nonRes.SetString("1", "1")
	var nonResInv E2
	nonResInv.Inverse(&nonRes)

	q := fp.Modulus()
	var e big.Int
	e.Sub(q, big.NewInt(1)).Div(&e, big.NewInt(3))
	psiCoeffX.Exp(nonResInv, &e)
	e.Sub(q, big.NewInt(1)).Div(&e, big.NewInt(2))
	psiCoeffY.Exp(nonResInv, &e)
}

// Generators returns the generators of the r-torsion groups in Jacobian and
// affine coordinates
func Generators() (g1Jac G1Jac, g2Jac G2Jac, g1Aff G1Affine, g2Aff G2Affine) {
	g1Aff = g1GenAff
	g2Aff = g2GenAff
	g1Jac = g1Gen
	g2Jac = g2Gen
	return
}

// CurveCoefficients returns the b coefficients of the curve and its twist
func CurveCoefficients() (b fp.Element, bTwist E2) {
	b = bCurveCoeff
	bTwist = bTwistCurveCoeff
	return
}
