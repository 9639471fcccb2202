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

package fr

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"
)

// genElement generates a random field element
func genElement() gopter.Gen {
	return func(genParams *gopter.GenParameters) *gopter.GenResult {
		var a Element
		if _, err := a.SetRandom(); err != nil {
			panic(err)
		}
		return gopter.NewGenResult(a, gopter.NoShrinker)
	}
}

func TestElementOps(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("(a+b)+c == a+(b+c)", prop.ForAll(
		func(a, b, c Element) bool {
			var l, r Element
			l.Add(&a, &b).Add(&l, &c)
			r.Add(&b, &c).Add(&a, &r)
			return l.Equal(&r)
		},
		genElement(), genElement(), genElement(),
	))

	properties.Property("a*(b+c) == a*b + a*c", prop.ForAll(
		func(a, b, c Element) bool {
			var l, r, t1, t2 Element
			l.Add(&b, &c).Mul(&l, &a)
			t1.Mul(&a, &b)
			t2.Mul(&a, &c)
			r.Add(&t1, &t2)
			return l.Equal(&r)
		},
		genElement(), genElement(), genElement(),
	))

	properties.Property("x² == x*x", prop.ForAll(
		func(a Element) bool {
			var s, m Element
			s.Square(&a)
			m.Mul(&a, &a)
			return s.Equal(&m)
		},
		genElement(),
	))

	properties.Property("a + (-a) == 0", prop.ForAll(
		func(a Element) bool {
			var n, s Element
			n.Neg(&a)
			s.Add(&a, &n)
			return s.IsZero()
		},
		genElement(),
	))

	properties.Property("2*(a/2) == a", prop.ForAll(
		func(a Element) bool {
			h := a
			h.Halve()
			var d Element
			d.Double(&h)
			return d.Equal(&a)
		},
		genElement(),
	))

	properties.Property("a * a⁻¹ == 1", prop.ForAll(
		func(a Element) bool {
			if a.IsZero() {
				return true
			}
			var inv, p Element
			inv.Inverse(&a)
			p.Mul(&a, &inv)
			return p.IsOne()
		},
		genElement(),
	))

	properties.Property("toMont ∘ fromMont == id", prop.ForAll(
		func(a Element) bool {
			r := a
			r.FromMont().ToMont()
			return r.Equal(&a)
		},
		genElement(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestElementBatchInvert(t *testing.T) {
	a := make([]Element, 17)
	for i := range a {
		_, err := a[i].SetRandom()
		require.NoError(t, err)
		if a[i].IsZero() {
			a[i].SetOne()
		}
	}

	invs, err := BatchInvert(a)
	require.NoError(t, err)
	require.Len(t, invs, len(a))
	for i := range a {
		var want Element
		want.Inverse(&a[i])
		require.True(t, invs[i].Equal(&want), "index %d", i)
	}

	// any zero input is rejected
	a[9].SetZero()
	_, err = BatchInvert(a)
	require.ErrorIs(t, err, ErrZeroValue)

	empty, err := BatchInvert(nil)
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestElementSetBytesCanonical(t *testing.T) {
	var a Element
	_, err := a.SetRandom()
	require.NoError(t, err)

	buf := a.Bytes()
	var b Element
	require.NoError(t, b.SetBytesCanonical(buf[:]))
	require.True(t, b.Equal(&a))

	// r itself is not canonical, r-1 is
	var rBytes [Bytes]byte
	Modulus().FillBytes(rBytes[:])
	require.ErrorIs(t, b.SetBytesCanonical(rBytes[:]), ErrBadScalar)

	rBytes[Bytes-1]-- // r ends in ...0001
	require.NoError(t, b.SetBytesCanonical(rBytes[:]))

	require.ErrorIs(t, b.SetBytesCanonical(rBytes[:Bytes-1]), ErrInvalidSize)
}
