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
	"fmt"
	"math/big"

	"github.com/consensys/gkzg/ecc/bls12381"
	"github.com/consensys/gkzg/ecc/bls12381/fr"
)

// BlobToCommitment commits to the blob's polynomial:
// C = Σᵢ p(ωᵢ)·g1_lagrange[i].
func (ts *TrustedSetup) BlobToCommitment(blob *Blob) (Commitment, error) {
	var c Commitment
	if err := ts.isUsable(); err != nil {
		return c, err
	}
	p, err := BlobToPolynomial(blob)
	if err != nil {
		return c, err
	}
	point, err := ts.commitPolynomial(p)
	if err != nil {
		return c, err
	}
	return Commitment(point.Bytes()), nil
}

// ComputeProof opens the blob's polynomial at an arbitrary 32-byte
// big-endian point z, returning the proof π = [q(τ)]₁ and y = p(z).
func (ts *TrustedSetup) ComputeProof(blob *Blob, zBytes [BytesPerFieldElement]byte) (Proof, [BytesPerFieldElement]byte, error) {
	var proof Proof
	var yBytes [BytesPerFieldElement]byte
	if err := ts.isUsable(); err != nil {
		return proof, yBytes, err
	}

	var z fr.Element
	if err := z.SetBytesCanonical(zBytes[:]); err != nil {
		return proof, yBytes, fmt.Errorf("%w: z is not a canonical field element", ErrBadArgs)
	}
	p, err := BlobToPolynomial(blob)
	if err != nil {
		return proof, yBytes, err
	}

	proof, y, err := ts.openPolynomial(p, &z)
	if err != nil {
		return proof, yBytes, err
	}
	yBytes = y.Bytes()
	return proof, yBytes, nil
}

// ComputeBlobProof proves the blob's evaluation at the Fiat-Shamir
// challenge derived from (blob, commitment); this is the proof carried by
// an EIP-4844 transaction.
func (ts *TrustedSetup) ComputeBlobProof(blob *Blob, commitment Commitment) (Proof, error) {
	var proof Proof
	if err := ts.isUsable(); err != nil {
		return proof, err
	}
	var c bls12381.G1Affine
	if _, err := c.SetBytes(commitment[:]); err != nil {
		return proof, fmt.Errorf("%w: commitment: %v", ErrBadArgs, err)
	}
	p, err := BlobToPolynomial(blob)
	if err != nil {
		return proof, err
	}

	z := computeChallenge(blob, &commitment)
	proof, _, err = ts.openPolynomial(p, &z)
	return proof, err
}

// VerifyProof checks the evaluation claim p(z) == y against a commitment:
// e(C − [y]G₁, G₂) == e(π, [τ]G₂ − [z]G₂). A well-formed but wrong proof
// yields (false, nil); malformed inputs yield an error.
func (ts *TrustedSetup) VerifyProof(commitment Commitment, zBytes, yBytes [BytesPerFieldElement]byte, proof Proof) (bool, error) {
	if err := ts.isUsable(); err != nil {
		return false, err
	}
	var c, pi bls12381.G1Affine
	if _, err := c.SetBytes(commitment[:]); err != nil {
		return false, fmt.Errorf("%w: commitment: %v", ErrBadArgs, err)
	}
	if _, err := pi.SetBytes(proof[:]); err != nil {
		return false, fmt.Errorf("%w: proof: %v", ErrBadArgs, err)
	}
	var z, y fr.Element
	if err := z.SetBytesCanonical(zBytes[:]); err != nil {
		return false, fmt.Errorf("%w: z is not a canonical field element", ErrBadArgs)
	}
	if err := y.SetBytesCanonical(yBytes[:]); err != nil {
		return false, fmt.Errorf("%w: y is not a canonical field element", ErrBadArgs)
	}
	return ts.verifyOpening(&c, &z, &y, &pi)
}

// VerifyBlobProof checks a blob proof produced by ComputeBlobProof: the
// challenge point is re-derived from (blob, commitment) and the claimed
// value is the blob polynomial's own evaluation there.
func (ts *TrustedSetup) VerifyBlobProof(blob *Blob, commitment Commitment, proof Proof) (bool, error) {
	if err := ts.isUsable(); err != nil {
		return false, err
	}
	var c, pi bls12381.G1Affine
	if _, err := c.SetBytes(commitment[:]); err != nil {
		return false, fmt.Errorf("%w: commitment: %v", ErrBadArgs, err)
	}
	if _, err := pi.SetBytes(proof[:]); err != nil {
		return false, fmt.Errorf("%w: proof: %v", ErrBadArgs, err)
	}
	p, err := BlobToPolynomial(blob)
	if err != nil {
		return false, err
	}

	z := computeChallenge(blob, &commitment)
	y, err := ts.Evaluate(p, &z)
	if err != nil {
		return false, err
	}
	return ts.verifyOpening(&c, &z, &y, &pi)
}

// VerifyBlobProofBatch checks n blob proofs with a single pairing equation
// by folding them under powers of a transcript-derived scalar:
//
//	e(Σ rᵢπᵢ, [τ]G₂) == e(Σ rᵢ(Cᵢ − [yᵢ]G₁) + Σ rᵢzᵢπᵢ, G₂)
//
// n == 0 accepts; n == 1 falls back to the single-proof path.
func (ts *TrustedSetup) VerifyBlobProofBatch(blobs []Blob, commitments []Commitment, proofs []Proof) (bool, error) {
	if err := ts.isUsable(); err != nil {
		return false, err
	}
	n := len(blobs)
	if len(commitments) != n || len(proofs) != n {
		return false, fmt.Errorf("%w: %d blobs, %d commitments, %d proofs",
			ErrBadArgs, n, len(commitments), len(proofs))
	}
	if n == 0 {
		return true, nil
	}
	if n == 1 {
		return ts.VerifyBlobProof(&blobs[0], commitments[0], proofs[0])
	}

	cs := make([]bls12381.G1Affine, n)
	pis := make([]bls12381.G1Affine, n)
	zs := make([]fr.Element, n)
	ys := make([]fr.Element, n)
	for i := 0; i < n; i++ {
		if _, err := cs[i].SetBytes(commitments[i][:]); err != nil {
			return false, fmt.Errorf("%w: commitment %d: %v", ErrBadArgs, i, err)
		}
		if _, err := pis[i].SetBytes(proofs[i][:]); err != nil {
			return false, fmt.Errorf("%w: proof %d: %v", ErrBadArgs, i, err)
		}
		p, err := BlobToPolynomial(&blobs[i])
		if err != nil {
			return false, fmt.Errorf("%w: blob %d", ErrBadArgs, i)
		}
		zs[i] = computeChallenge(&blobs[i], &commitments[i])
		if ys[i], err = ts.Evaluate(p, &zs[i]); err != nil {
			return false, err
		}
	}

	rPowers := computeRPowers(commitments, zs, ys, proofs)

	// Σ rᵢπᵢ
	var proofLincomb bls12381.G1Jac
	if _, err := proofLincomb.MultiExp(pis, rPowers); err != nil {
		return false, err
	}

	// Σ rᵢ(Cᵢ − [yᵢ]G₁) + Σ rᵢzᵢπᵢ
	//   = Σ rᵢCᵢ − [Σ rᵢyᵢ]G₁ + Σ (rᵢzᵢ)πᵢ
	rz := make([]fr.Element, n)
	var ry fr.Element
	var t fr.Element
	for i := 0; i < n; i++ {
		rz[i].Mul(&rPowers[i], &zs[i])
		t.Mul(&rPowers[i], &ys[i])
		ry.Add(&ry, &t)
	}
	var rhs, acc bls12381.G1Jac
	if _, err := rhs.MultiExp(cs, rPowers); err != nil {
		return false, err
	}
	if _, err := acc.MultiExp(pis, rz); err != nil {
		return false, err
	}
	rhs.AddAssign(&acc)
	var ryBig big.Int
	acc.ScalarMultiplicationBase(ry.BigInt(&ryBig))
	rhs.SubAssign(&acc)

	var lhsAff, rhsAff bls12381.G1Affine
	lhsAff.FromJacobian(&proofLincomb)
	rhsAff.FromJacobian(rhs.Neg(&rhs))

	_, _, _, g2 := bls12381.Generators()
	return bls12381.PairingCheck(
		[]bls12381.G1Affine{lhsAff, rhsAff},
		[]bls12381.G2Affine{ts.g2Monomial[1], g2},
	)
}

// commitPolynomial runs the Pippenger MSM of the evaluations against the
// bit-reversed Lagrange points.
func (ts *TrustedSetup) commitPolynomial(p Polynomial) (bls12381.G1Affine, error) {
	var res bls12381.G1Affine
	_, err := res.MultiExp(ts.g1Lagrange, p)
	return res, err
}

// openPolynomial builds the quotient at z and commits it.
func (ts *TrustedSetup) openPolynomial(p Polynomial, z *fr.Element) (Proof, fr.Element, error) {
	var proof Proof
	y, q, err := ts.computeQuotient(p, z)
	if err != nil {
		return proof, y, err
	}
	point, err := ts.commitPolynomial(q)
	if err != nil {
		return proof, y, err
	}
	return Proof(point.Bytes()), y, nil
}

// verifyOpening evaluates the pairing equation
// e(C − [y]G₁, G₂)·e(π, [τ]G₂ − [z]G₂)⁻¹ == 1 by negating the first G1
// input and running both pairs through one Miller loop.
func (ts *TrustedSetup) verifyOpening(c *bls12381.G1Affine, z, y *fr.Element, proof *bls12381.G1Affine) (bool, error) {
	var yBig, zBig big.Int

	var yG1 bls12381.G1Affine
	yG1.ScalarMultiplicationBase(y.BigInt(&yBig))
	var cMinusY bls12381.G1Affine
	cMinusY.Sub(c, &yG1).Neg(&cMinusY)

	_, _, _, g2 := bls12381.Generators()
	var zG2 bls12381.G2Affine
	zG2.ScalarMultiplicationBase(z.BigInt(&zBig))
	var tauMinusZ bls12381.G2Affine
	tauMinusZ.Sub(&ts.g2Monomial[1], &zG2)

	return bls12381.PairingCheck(
		[]bls12381.G1Affine{cMinusY, *proof},
		[]bls12381.G2Affine{g2, tauMinusZ},
	)
}
