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
	"bytes"
	"encoding/hex"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/consensys/gkzg/ecc/bls12381"
	"github.com/consensys/gkzg/ecc/bls12381/fr"
	"github.com/stretchr/testify/require"
)

// insecureSetupBytes builds a ceremony output from a known secret τ:
// g1[i] = [Lᵢ(τ)]G₁ over the natural-order roots and g2[j] = [τʲ]G₂.
// Test-only; a real setup's τ is destroyed by the ceremony.
func insecureSetupBytes(t *testing.T, tau fr.Element) (g1, g2 [][]byte) {
	t.Helper()

	var w fr.Element
	w.SetString(scale2RootOfUnity[12])
	roots := make([]fr.Element, FieldElementsPerBlob)
	roots[0].SetOne()
	for i := 1; i < FieldElementsPerBlob; i++ {
		roots[i].Mul(&roots[i-1], &w)
	}

	// Lᵢ(τ) = ωⁱ·(τ^N − 1) / (N·(τ − ωⁱ))
	dens := make([]fr.Element, FieldElementsPerBlob)
	for i := range dens {
		dens[i].Sub(&tau, &roots[i])
	}
	invs, err := fr.BatchInvert(dens)
	require.NoError(t, err, "tau must not lie in the evaluation domain")

	var zN, one fr.Element
	one.SetOne()
	zN.Exp(tau, big.NewInt(FieldElementsPerBlob)).Sub(&zN, &one).Mul(&zN, &domainInv)

	g1 = make([][]byte, FieldElementsPerBlob)
	var li fr.Element
	var liBig big.Int
	var point bls12381.G1Affine
	for i := 0; i < FieldElementsPerBlob; i++ {
		li.Mul(&roots[i], &zN).Mul(&li, &invs[i])
		point.ScalarMultiplicationBase(li.BigInt(&liBig))
		b := point.Bytes()
		g1[i] = b[:]
	}

	g2 = make([][]byte, g2MonomialCount)
	var tauPow fr.Element
	var tauBig big.Int
	var point2 bls12381.G2Affine
	tauPow.SetOne()
	for j := 0; j < g2MonomialCount; j++ {
		point2.ScalarMultiplicationBase(tauPow.BigInt(&tauBig))
		b := point2.Bytes()
		g2[j] = b[:]
		tauPow.Mul(&tauPow, &tau)
	}
	return g1, g2
}

var (
	setupOnce   sync.Once
	sharedSetup *TrustedSetup
	setupErr    error
)

// testSetup loads one shared insecure setup (τ = 1337) for the package's
// tests.
func testSetup(t *testing.T) *TrustedSetup {
	t.Helper()
	setupOnce.Do(func() {
		var tau fr.Element
		tau.SetUint64(1337)
		g1, g2 := insecureSetupBytes(t, tau)
		sharedSetup, setupErr = LoadTrustedSetup(g1, g2)
	})
	require.NoError(t, setupErr)
	return sharedSetup
}

func TestLoadTrustedSetupRejectsMonomial(t *testing.T) {
	var tau fr.Element
	tau.SetUint64(1337)
	_, g2 := insecureSetupBytes(t, tau)

	// g1 in monomial form: [τ^i]G1
	g1 := make([][]byte, FieldElementsPerBlob)
	var tauPow fr.Element
	var tauBig big.Int
	var point bls12381.G1Affine
	tauPow.SetOne()
	for i := 0; i < FieldElementsPerBlob; i++ {
		point.ScalarMultiplicationBase(tauPow.BigInt(&tauBig))
		b := point.Bytes()
		g1[i] = b[:]
		tauPow.Mul(&tauPow, &tau)
	}

	_, err := LoadTrustedSetup(g1, g2)
	require.ErrorIs(t, err, ErrBadArgs)
	require.Contains(t, err.Error(), "monomial")
}

func TestLoadTrustedSetupRejectsBadInput(t *testing.T) {
	var tau fr.Element
	tau.SetUint64(1337)
	g1, g2 := insecureSetupBytes(t, tau)

	_, err := LoadTrustedSetup(g1[:17], g2)
	require.ErrorIs(t, err, ErrBadArgs)

	_, err = LoadTrustedSetup(g1, g2[:g2MonomialCount-1])
	require.ErrorIs(t, err, ErrBadArgs)

	// truncated point
	bad := make([][]byte, len(g1))
	copy(bad, g1)
	bad[3] = g1[3][:47]
	_, err = LoadTrustedSetup(bad, g2)
	require.ErrorIs(t, err, ErrBadArgs)

	// zeroed buffer carries no valid compression flag
	corrupt := make([]byte, bls12381.SizeOfG1AffineCompressed)
	copy(bad, g1)
	bad[3] = corrupt
	_, err = LoadTrustedSetup(bad, g2)
	require.ErrorIs(t, err, ErrBadArgs)
}

func TestTrustedSetupRoots(t *testing.T) {
	ts := testSetup(t)

	// index 0 is fixed by the bit-reversal permutation
	require.True(t, ts.roots[0].IsOne())

	// every root has order dividing 4096, and the domain has no duplicates
	N := big.NewInt(FieldElementsPerBlob)
	seen := make(map[fr.Element]struct{}, FieldElementsPerBlob)
	var pow fr.Element
	for i := range ts.roots {
		pow.Exp(ts.roots[i], N)
		require.True(t, pow.IsOne(), "root %d", i)
		_, dup := seen[ts.roots[i]]
		require.False(t, dup, "root %d repeats", i)
		seen[ts.roots[i]] = struct{}{}
	}
}

func TestLoadTrustedSetupFile(t *testing.T) {
	var tau fr.Element
	tau.SetUint64(1337)
	g1, g2 := insecureSetupBytes(t, tau)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%d\n%d\n", FieldElementsPerBlob, g2MonomialCount)
	for _, b := range g1 {
		fmt.Fprintf(&buf, "%s\n", hex.EncodeToString(b))
	}
	for _, b := range g2 {
		fmt.Fprintf(&buf, "%s\n", hex.EncodeToString(b))
	}
	path := filepath.Join(t.TempDir(), "trusted_setup.txt")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

	fromFile, err := LoadTrustedSetupFile(path)
	require.NoError(t, err)

	ref := testSetup(t)
	require.Equal(t, ref.g1Lagrange, fromFile.g1Lagrange)
	require.Equal(t, ref.g2Monomial, fromFile.g2Monomial)
	require.Equal(t, ref.roots, fromFile.roots)

	// header mismatch
	_, err = parseTrustedSetupText(bytes.NewBufferString("4096\n64\n"))
	require.ErrorIs(t, err, ErrBadArgs)

	// truncated body
	_, err = parseTrustedSetupText(bytes.NewBufferString("4096\n65\nabcdef\n"))
	require.ErrorIs(t, err, ErrBadArgs)
}

func TestTrustedSetupDumpRestore(t *testing.T) {
	ts := testSetup(t)

	var buf bytes.Buffer
	n, err := ts.WriteTo(&buf)
	require.NoError(t, err)
	require.Equal(t, int64(buf.Len()), n)

	restored, err := ReadTrustedSetupFrom(&buf)
	require.NoError(t, err)
	require.Equal(t, ts.g1Lagrange, restored.g1Lagrange)
	require.Equal(t, ts.g2Monomial, restored.g2Monomial)
	require.Equal(t, ts.roots, restored.roots)

	_, err = ReadTrustedSetupFrom(bytes.NewBufferString("not cbor"))
	require.Error(t, err)
}

func TestTrustedSetupFree(t *testing.T) {
	var tau fr.Element
	tau.SetUint64(98765)
	g1, g2 := insecureSetupBytes(t, tau)
	ts, err := LoadTrustedSetup(g1, g2)
	require.NoError(t, err)

	ts.Free()
	ts.Free() // idempotent

	var blob Blob
	_, err = ts.BlobToCommitment(&blob)
	require.ErrorIs(t, err, ErrSetupFreed)

	_, err = ts.WriteTo(&bytes.Buffer{})
	require.ErrorIs(t, err, ErrSetupFreed)
}
