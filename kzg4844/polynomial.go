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

package kzg4844

import (
	"math/big"

	"github.com/consensys/gkzg/ecc/bls12381/fr"
)

// Evaluate computes p(z) by the barycentric formula
//
//	p(z) = (z^N − 1)/N · Σᵢ p(ωᵢ)·ωᵢ/(z − ωᵢ)
//
// over the setup's bit-reversed domain, with a single batch inversion for
// the N denominators. When z lies in the domain the matching evaluation is
// returned directly.
func (ts *TrustedSetup) Evaluate(p Polynomial, z *fr.Element) (fr.Element, error) {
	var res fr.Element
	if err := ts.isUsable(); err != nil {
		return res, err
	}
	if len(p) != FieldElementsPerBlob {
		return res, ErrBadArgs
	}

	for i := range ts.roots {
		if ts.roots[i].Equal(z) {
			res.Set(&p[i])
			return res, nil
		}
	}

	dens := make([]fr.Element, FieldElementsPerBlob)
	for i := range dens {
		dens[i].Sub(z, &ts.roots[i])
	}
	// z is outside the domain, so no denominator is zero
	invs, err := fr.BatchInvert(dens)
	if err != nil {
		return res, err
	}

	var term fr.Element
	for i := range p {
		term.Mul(&p[i], &ts.roots[i]).Mul(&term, &invs[i])
		res.Add(&res, &term)
	}

	var zN fr.Element
	var one fr.Element
	one.SetOne()
	zN.Exp(*z, big.NewInt(FieldElementsPerBlob)).Sub(&zN, &one)
	res.Mul(&res, &zN).Mul(&res, &domainInv)
	return res, nil
}

// computeQuotient evaluates p at z and builds the Kate quotient
// q(X) = (p(X) − y)/(X − z) in evaluation form. When z coincides with a
// domain point ωₘ the quotient is still well defined there and is recovered
// as q(ωₘ) = Σ_{i≠m} ωᵢ·(p(ωᵢ) − y)/(z·(z − ωᵢ)).
func (ts *TrustedSetup) computeQuotient(p Polynomial, z *fr.Element) (y fr.Element, q Polynomial, err error) {
	inDomain := -1
	for i := range ts.roots {
		if ts.roots[i].Equal(z) {
			inDomain = i
			break
		}
	}

	q = make(Polynomial, FieldElementsPerBlob)
	dens := make([]fr.Element, FieldElementsPerBlob)

	if inDomain < 0 {
		if y, err = ts.Evaluate(p, z); err != nil {
			return y, nil, err
		}
		for i := range dens {
			dens[i].Sub(&ts.roots[i], z)
		}
		invs, err := fr.BatchInvert(dens)
		if err != nil {
			return y, nil, err
		}
		for i := range q {
			q[i].Sub(&p[i], &y).Mul(&q[i], &invs[i])
		}
		return y, q, nil
	}

	y.Set(&p[inDomain])
	for i := range dens {
		if i == inDomain {
			dens[i].SetOne() // placeholder, q[m] is recovered below
			continue
		}
		dens[i].Sub(z, &ts.roots[i]).Mul(&dens[i], z)
	}
	invs, err := fr.BatchInvert(dens)
	if err != nil {
		return y, nil, err
	}

	var num, qm fr.Element
	for i := range q {
		if i == inDomain {
			continue
		}
		num.Sub(&p[i], &y)
		// (p(ωᵢ) − y)/(ωᵢ − z) = −(p(ωᵢ) − y)·z / (z(z − ωᵢ))
		q[i].Mul(&num, &invs[i]).Mul(&q[i], z).Neg(&q[i])
		num.Mul(&num, &ts.roots[i]).Mul(&num, &invs[i])
		qm.Add(&qm, &num)
	}
	q[inDomain].Set(&qm)
	return y, q, nil
}
