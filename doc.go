// Package gkzg provides BLS12-381 pairing-based cryptography and the
// EIP-4844 KZG polynomial commitment scheme.
//
// The library is organized in three layers:
//   - ecc/bls12381: field tower, curve groups, pairing, hash-to-curve
//     (RFC 9380), multi-scalar multiplication and a reusable signature
//     aggregation context
//   - kzg4844: blob commitments, point-evaluation proofs and batched
//     verification as used by EIP-4844 blob transactions
//   - signature/bls: BLS signatures in the min-pk variant of
//     draft-irtf-cfrg-bls-signature
package gkzg
