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
	"encoding/hex"
	"os"
	"testing"

	"github.com/consensys/gkzg/ecc/bls12381/fr"
	"github.com/stretchr/testify/require"
)

// testBlob fills a blob with a deterministic chain of field elements.
func testBlob(seed uint64) *Blob {
	var blob Blob
	var e fr.Element
	e.SetUint64(seed)
	var step fr.Element
	step.SetUint64(0xdeadbeef)
	for i := 0; i < FieldElementsPerBlob; i++ {
		e.Mul(&e, &step).Add(&e, &step)
		b := e.Bytes()
		copy(blob[i*BytesPerFieldElement:], b[:])
	}
	return &blob
}

// constantBlob repeats a single field element 4096 times.
func constantBlob(v uint64) *Blob {
	var blob Blob
	var e fr.Element
	e.SetUint64(v)
	b := e.Bytes()
	for i := 0; i < FieldElementsPerBlob; i++ {
		copy(blob[i*BytesPerFieldElement:], b[:])
	}
	return &blob
}

func frBytes(v uint64) [BytesPerFieldElement]byte {
	var e fr.Element
	e.SetUint64(v)
	return e.Bytes()
}

func TestComputeProofConstantPolynomial(t *testing.T) {
	ts := testSetup(t)
	blob := constantBlob(1)

	c, err := ts.BlobToCommitment(blob)
	require.NoError(t, err)

	// p ≡ 1, so p(2) = 1 and the quotient is zero
	proof, y, err := ts.ComputeProof(blob, frBytes(2))
	require.NoError(t, err)
	require.Equal(t, frBytes(1), y)

	ok, err := ts.VerifyProof(c, frBytes(2), y, proof)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = ts.VerifyProof(c, frBytes(2), frBytes(2), proof)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestComputeProofInDomain(t *testing.T) {
	ts := testSetup(t)
	blob := testBlob(7)
	c, err := ts.BlobToCommitment(blob)
	require.NoError(t, err)

	for _, i := range []int{0, 1, 123} {
		z := ts.roots[i].Bytes()
		proof, y, err := ts.ComputeProof(blob, z)
		require.NoError(t, err)

		// at a domain point the evaluation is the blob element itself
		var want [BytesPerFieldElement]byte
		copy(want[:], blob[i*BytesPerFieldElement:(i+1)*BytesPerFieldElement])
		require.Equal(t, want, y, "root %d", i)

		ok, err := ts.VerifyProof(c, z, y, proof)
		require.NoError(t, err)
		require.True(t, ok, "root %d", i)
	}
}

// TestBlobToCommitmentKnownVector pins the commitment of a fixed blob
// against the value produced under the public ceremony setup. It needs the
// ceremony file, which is too large to vendor; fetch it from
// https://github.com/ethereum/c-kzg-4844/blob/main/src/trusted_setup.txt
// into testdata/ to enable the pin.
func TestBlobToCommitmentKnownVector(t *testing.T) {
	const path = "testdata/trusted_setup.txt"
	if _, err := os.Stat(path); err != nil {
		t.Skipf("ceremony file %s not present; fetch ethereum/c-kzg-4844 src/trusted_setup.txt to enable", path)
	}
	ts, err := LoadTrustedSetupFile(path)
	require.NoError(t, err)
	defer ts.Free()

	first, err := hex.DecodeString("14629a3a39f7b854e6aa49aa2edb450267eac2c14bb2d4f97a0b81a3f57055ad")
	require.NoError(t, err)
	var blob Blob
	copy(blob[:], first)

	c, err := ts.BlobToCommitment(&blob)
	require.NoError(t, err)
	want, err := hex.DecodeString("91a5e1c143820d2e7bec38a5404c5145807cb88c0abbbecbcb4bccc83a4b417326e337574cff43303f8a6648ecbee7ac")
	require.NoError(t, err)
	require.Equal(t, want, c[:])
}

func TestBlobToCommitmentZeroBlob(t *testing.T) {
	ts := testSetup(t)

	var blob Blob
	c, err := ts.BlobToCommitment(&blob)
	require.NoError(t, err)

	// the zero polynomial commits to the point at infinity
	require.Equal(t, byte(0xc0), c[0])
	for i := 1; i < BytesPerCommitment; i++ {
		require.Equal(t, byte(0), c[i])
	}
}

func TestBlobToCommitmentInvalidElement(t *testing.T) {
	ts := testSetup(t)

	var blob Blob
	fr.Modulus().FillBytes(blob[5*BytesPerFieldElement : 6*BytesPerFieldElement])
	_, err := ts.BlobToCommitment(&blob)
	require.ErrorIs(t, err, ErrBadArgs)

	_, _, err = ts.ComputeProof(&blob, frBytes(2))
	require.ErrorIs(t, err, ErrBadArgs)
}

func TestBlobProofRoundTrip(t *testing.T) {
	ts := testSetup(t)
	blob := testBlob(11)

	c, err := ts.BlobToCommitment(blob)
	require.NoError(t, err)
	proof, err := ts.ComputeBlobProof(blob, c)
	require.NoError(t, err)

	ok, err := ts.VerifyBlobProof(blob, c, proof)
	require.NoError(t, err)
	require.True(t, ok)

	// a valid proof for another blob must not verify
	other := testBlob(13)
	otherC, err := ts.BlobToCommitment(other)
	require.NoError(t, err)
	otherProof, err := ts.ComputeBlobProof(other, otherC)
	require.NoError(t, err)

	ok, err = ts.VerifyBlobProof(blob, c, otherProof)
	require.NoError(t, err)
	require.False(t, ok)

	// garbage proof bytes fail at decode time
	var garbage Proof
	garbage[0] = 0x20 // uncompressed flag on a 48-byte buffer
	_, err = ts.VerifyBlobProof(blob, c, garbage)
	require.ErrorIs(t, err, ErrBadArgs)
}

func TestVerifyProofWrongValue(t *testing.T) {
	ts := testSetup(t)
	blob := testBlob(17)

	c, err := ts.BlobToCommitment(blob)
	require.NoError(t, err)
	proof, y, err := ts.ComputeProof(blob, frBytes(42))
	require.NoError(t, err)

	ok, err := ts.VerifyProof(c, frBytes(42), y, proof)
	require.NoError(t, err)
	require.True(t, ok)

	// claim tampering flips the verdict, not the error
	ok, err = ts.VerifyProof(c, frBytes(43), y, proof)
	require.NoError(t, err)
	require.False(t, ok)

	// swapping in a proof for a different point is well formed but wrong
	wrongProof, _, err := ts.ComputeProof(blob, frBytes(43))
	require.NoError(t, err)
	ok, err = ts.VerifyProof(c, frBytes(42), y, wrongProof)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestVerifyBlobProofBatch(t *testing.T) {
	ts := testSetup(t)

	const n = 16
	blobs := make([]Blob, n)
	commitments := make([]Commitment, n)
	proofs := make([]Proof, n)
	for i := 0; i < n; i++ {
		blobs[i] = *testBlob(uint64(100 + i))
		var err error
		commitments[i], err = ts.BlobToCommitment(&blobs[i])
		require.NoError(t, err)
		proofs[i], err = ts.ComputeBlobProof(&blobs[i], commitments[i])
		require.NoError(t, err)
	}

	ok, err := ts.VerifyBlobProofBatch(blobs, commitments, proofs)
	require.NoError(t, err)
	require.True(t, ok)

	// one well-formed but misplaced proof poisons the batch
	tampered := make([]Proof, n)
	copy(tampered, proofs)
	tampered[9] = proofs[3]
	ok, err = ts.VerifyBlobProofBatch(blobs, commitments, tampered)
	require.NoError(t, err)
	require.False(t, ok)

	// empty batch accepts
	ok, err = ts.VerifyBlobProofBatch(nil, nil, nil)
	require.NoError(t, err)
	require.True(t, ok)

	// singleton batch follows the one-shot path
	ok, err = ts.VerifyBlobProofBatch(blobs[:1], commitments[:1], proofs[:1])
	require.NoError(t, err)
	require.True(t, ok)

	// length mismatch
	_, err = ts.VerifyBlobProofBatch(blobs, commitments[:n-1], proofs)
	require.ErrorIs(t, err, ErrBadArgs)
}

func TestEvaluatePolynomial(t *testing.T) {
	ts := testSetup(t)

	// linear polynomial given by its evaluations: p(x) = a·x + b
	var a, b fr.Element
	a.SetUint64(3)
	b.SetUint64(5)
	p := make(Polynomial, FieldElementsPerBlob)
	for i := range p {
		p[i].Mul(&a, &ts.roots[i]).Add(&p[i], &b)
	}

	var z, want fr.Element
	z.SetUint64(123456789)
	want.Mul(&a, &z).Add(&want, &b)
	got, err := ts.Evaluate(p, &z)
	require.NoError(t, err)
	require.True(t, got.Equal(&want))

	// in-domain short-circuit
	got, err = ts.Evaluate(p, &ts.roots[77])
	require.NoError(t, err)
	require.True(t, got.Equal(&p[77]))

	// wrong length
	_, err = ts.Evaluate(p[:100], &z)
	require.ErrorIs(t, err, ErrBadArgs)
}

func TestChallengeDomainSeparation(t *testing.T) {
	ts := testSetup(t)
	blob := testBlob(23)
	c, err := ts.BlobToCommitment(blob)
	require.NoError(t, err)

	z1 := computeChallenge(blob, &c)
	z2 := computeChallenge(blob, &c)
	require.True(t, z1.Equal(&z2), "challenge must be deterministic")

	var c2 Commitment = c
	c2[47] ^= 1
	z3 := computeChallenge(blob, &c2)
	require.False(t, z1.Equal(&z3), "challenge must bind the commitment")

	other := testBlob(29)
	z4 := computeChallenge(other, &c)
	require.False(t, z1.Equal(&z4), "challenge must bind the blob")
}
