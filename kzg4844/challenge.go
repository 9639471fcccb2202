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
	"crypto/sha256"
	"encoding/binary"
	"math/big"

	"github.com/consensys/gkzg/ecc/bls12381/fr"
)

// Fiat-Shamir domain separators, 16 ASCII bytes each.
const (
	domainBlobVerify  = "FSBLOBVERIFY_V1_"
	domainBatchVerify = "RCKZGBATCH___V1_"
)

// hashToFr interprets a digest as a big-endian integer reduced mod r.
func hashToFr(digest [sha256.Size]byte) fr.Element {
	var v big.Int
	v.SetBytes(digest[:]).Mod(&v, fr.Modulus())
	var e fr.Element
	e.SetBigInt(&v)
	return e
}

// computeChallenge derives the evaluation challenge binding a blob to its
// commitment:
//
//	H("FSBLOBVERIFY_V1_" ‖ u64_be(0) ‖ u64_be(4096) ‖ blob ‖ commitment)
func computeChallenge(blob *Blob, commitment *Commitment) fr.Element {
	h := sha256.New()
	h.Write([]byte(domainBlobVerify))
	var degree [16]byte
	binary.BigEndian.PutUint64(degree[8:], FieldElementsPerBlob)
	h.Write(degree[:])
	h.Write(blob[:])
	h.Write(commitment[:])

	var digest [sha256.Size]byte
	h.Sum(digest[:0])
	return hashToFr(digest)
}

// computeRPowers derives the batch challenge r from the full transcript of
// n (commitment, z, y, proof) tuples and returns [r⁰, r¹, …, rⁿ⁻¹].
func computeRPowers(commitments []Commitment, zs, ys []fr.Element, proofs []Proof) []fr.Element {
	n := len(commitments)

	h := sha256.New()
	h.Write([]byte(domainBatchVerify))
	var u64 [8]byte
	binary.BigEndian.PutUint64(u64[:], FieldElementsPerBlob)
	h.Write(u64[:])
	binary.BigEndian.PutUint64(u64[:], uint64(n))
	h.Write(u64[:])
	for i := 0; i < n; i++ {
		h.Write(commitments[i][:])
		zb := zs[i].Bytes()
		h.Write(zb[:])
		yb := ys[i].Bytes()
		h.Write(yb[:])
		h.Write(proofs[i][:])
	}

	var digest [sha256.Size]byte
	h.Sum(digest[:0])
	r := hashToFr(digest)

	powers := make([]fr.Element, n)
	if n == 0 {
		return powers
	}
	powers[0].SetOne()
	for i := 1; i < n; i++ {
		powers[i].Mul(&powers[i-1], &r)
	}
	return powers
}
