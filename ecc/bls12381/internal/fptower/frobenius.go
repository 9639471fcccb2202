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

	"github.com/consensys/gkzg/ecc/bls12381/fp"
)

// Frobenius coefficients γ1ᵢ = (1+u)^(i(p-1)/6) and γ2ᵢ = (1+u)^(i(p²-1)/6),
// i = 1..5, fixed at init.
var (
	frobCoeffA [5]E2
	frobCoeffB [5]E2
)

func init() {
	q := fp.Modulus()
	var qSquare big.Int
	qSquare.Mul(q, q)

	var e1, e2 big.Int
	e1.Sub(q, big.NewInt(1)).Div(&e1, big.NewInt(6))
	e2.Sub(&qSquare, big.NewInt(1)).Div(&e2, big.NewInt(6))

	var nonRes E2
	nonRes.A0.SetOne()
	nonRes.A1.SetOne()

	var e big.Int
	for i := int64(1); i <= 5; i++ {
		e.Mul(&e1, big.NewInt(i))
		frobCoeffA[i-1].Exp(nonRes, &e)
		e.Mul(&e2, big.NewInt(i))
		frobCoeffB[i-1].Exp(nonRes, &e)
	}
}

// Frobenius sets z to x^p and returns z. On the tower basis
// (1, w, w², w³, w⁴, w⁵) over E2, the wⁱ coefficient is conjugated and
// scaled by γ1ᵢ.
func (z *E12) Frobenius(x *E12) *E12 {
	var t [6]E2
	t[0].Conjugate(&x.C0.B0)
	t[1].Conjugate(&x.C1.B0).Mul(&t[1], &frobCoeffA[0])
	t[2].Conjugate(&x.C0.B1).Mul(&t[2], &frobCoeffA[1])
	t[3].Conjugate(&x.C1.B1).Mul(&t[3], &frobCoeffA[2])
	t[4].Conjugate(&x.C0.B2).Mul(&t[4], &frobCoeffA[3])
	t[5].Conjugate(&x.C1.B2).Mul(&t[5], &frobCoeffA[4])

	z.C0.B0.Set(&t[0])
	z.C1.B0.Set(&t[1])
	z.C0.B1.Set(&t[2])
	z.C1.B1.Set(&t[3])
	z.C0.B2.Set(&t[4])
	z.C1.B2.Set(&t[5])
	return z
}

// FrobeniusSquare sets z to x^(p²) and returns z. The p²-power Frobenius is
// the identity on E2, so no conjugation is needed.
func (z *E12) FrobeniusSquare(x *E12) *E12 {
	var t [6]E2
	t[0].Set(&x.C0.B0)
	t[1].Mul(&x.C1.B0, &frobCoeffB[0])
	t[2].Mul(&x.C0.B1, &frobCoeffB[1])
	t[3].Mul(&x.C1.B1, &frobCoeffB[2])
	t[4].Mul(&x.C0.B2, &frobCoeffB[3])
	t[5].Mul(&x.C1.B2, &frobCoeffB[4])

	z.C0.B0.Set(&t[0])
	z.C1.B0.Set(&t[1])
	z.C0.B1.Set(&t[2])
	z.C1.B1.Set(&t[3])
	z.C0.B2.Set(&t[4])
	z.C1.B2.Set(&t[5])
	return z
}
