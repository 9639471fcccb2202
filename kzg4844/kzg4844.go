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

// Package kzg4844 implements the KZG polynomial commitment scheme used by
// EIP-4844 blob transactions: blob to commitment, point-evaluation proofs,
// and batched proof verification over BLS12-381.
//
// Polynomials are kept in evaluation form over the 4096-element subgroup of
// Fr, in bit-reversed order, matching the trusted setup's g1 points.
package kzg4844

import (
	"errors"

	"github.com/consensys/gkzg/ecc/bls12381"
	"github.com/consensys/gkzg/ecc/bls12381/fr"
)

const (
	// FieldElementsPerBlob is the number of field elements in a blob.
	FieldElementsPerBlob = 4096

	// BytesPerFieldElement is the size of a serialized Fr element.
	BytesPerFieldElement = fr.Bytes

	// BytesPerBlob is the size of a blob in bytes.
	BytesPerBlob = FieldElementsPerBlob * BytesPerFieldElement

	// BytesPerCommitment is the size of a compressed G1 commitment.
	BytesPerCommitment = bls12381.SizeOfG1AffineCompressed

	// BytesPerProof is the size of a compressed G1 evaluation proof.
	BytesPerProof = bls12381.SizeOfG1AffineCompressed

	// g2MonomialCount is the number of G2 points in the trusted setup,
	// enough to commit to quotients of degree ≤ 64.
	g2MonomialCount = 65
)

// Blob is a flat sequence of 4096 serialized field elements, each a 32-byte
// big-endian canonical Fr value.
type Blob [BytesPerBlob]byte

// Commitment is a compressed G1 point committing to a blob.
type Commitment [BytesPerCommitment]byte

// Proof is a compressed G1 point proving an evaluation claim.
type Proof [BytesPerProof]byte

var (
	// ErrBadArgs covers any malformed boundary input: out-of-range field
	// elements, invalid curve points, mismatched slice lengths.
	ErrBadArgs = errors.New("kzg4844: bad arguments")

	// ErrSetupFreed is returned when a trusted setup is used after Free.
	ErrSetupFreed = errors.New("kzg4844: trusted setup freed")
)

// Polynomial holds evaluations over the bit-reversed root-of-unity domain;
// index i is the value at TrustedSetup root i.
type Polynomial []fr.Element

// BlobToPolynomial deserializes a blob into its evaluation-form polynomial.
// It fails if any 32-byte chunk is not a canonical field element.
func BlobToPolynomial(blob *Blob) (Polynomial, error) {
	p := make(Polynomial, FieldElementsPerBlob)
	for i := 0; i < FieldElementsPerBlob; i++ {
		chunk := blob[i*BytesPerFieldElement : (i+1)*BytesPerFieldElement]
		if err := p[i].SetBytesCanonical(chunk); err != nil {
			return nil, ErrBadArgs
		}
	}
	return p, nil
}
