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

// Package bls implements BLS signatures over BLS12-381 in the min-pk
// variant of draft-irtf-cfrg-bls-signature: public keys in G1, signatures
// and message hashes in G2, with the basic-scheme ciphersuite
// BLS_SIG_BLS12381G2_XMD:SHA-256_SSWU_RO_NUL_.
package bls

import (
	"crypto/sha256"
	"errors"
	"io"
	"math/big"

	"github.com/consensys/gkzg/ecc/bls12381"
	"github.com/consensys/gkzg/ecc/bls12381/fr"
	"golang.org/x/crypto/hkdf"
)

// DST is the hash-to-curve domain separation tag of the basic min-pk
// scheme.
const DST = "BLS_SIG_BLS12381G2_XMD:SHA-256_SSWU_RO_NUL_"

const (
	keygenSalt = "BLS-SIG-KEYGEN-SALT-"
	okmLen     = 48 // ceil((255 + 128) / 8)
	minIKMLen  = 32
)

var (
	ErrShortIKM     = errors.New("bls: input key material shorter than 32 bytes")
	ErrZeroKey      = errors.New("bls: secret key is zero")
	ErrNoSignatures = errors.New("bls: nothing to aggregate")
)

// SecretKey is a non-zero scalar mod r.
type SecretKey struct {
	scalar fr.Element
}

// PublicKey is the G1 point [sk]G₁.
type PublicKey struct {
	A bls12381.G1Affine
}

// Signature is the G2 point [sk]·hash(msg).
type Signature struct {
	S bls12381.G2Affine
}

// GenerateKey derives a secret key from at least 32 bytes of input key
// material, per draft-irtf-cfrg-bls-signature §2.3: the HKDF salt starts as
// H("BLS-SIG-KEYGEN-SALT-") and is re-hashed until the derived scalar is
// non-zero mod r.
func GenerateKey(ikm []byte) (*SecretKey, error) {
	if len(ikm) < minIKMLen {
		return nil, ErrShortIKM
	}

	// ikm ‖ I2OSP(0, 1) and key_info ‖ I2OSP(L, 2)
	ikmPadded := make([]byte, len(ikm)+1)
	copy(ikmPadded, ikm)
	info := []byte{0, okmLen}

	salt := []byte(keygenSalt)
	var sk SecretKey
	for {
		digest := sha256.Sum256(salt)
		salt = digest[:]

		okm := make([]byte, okmLen)
		r := hkdf.New(sha256.New, ikmPadded, salt, info)
		if _, err := io.ReadFull(r, okm); err != nil {
			return nil, err
		}

		var v big.Int
		v.SetBytes(okm).Mod(&v, fr.Modulus())
		sk.scalar.SetBigInt(&v)
		if !sk.scalar.IsZero() {
			return &sk, nil
		}
	}
}

// SetBytes loads a secret key from its 32-byte big-endian encoding.
func (sk *SecretKey) SetBytes(b []byte) error {
	if err := sk.scalar.SetBytesCanonical(b); err != nil {
		return err
	}
	if sk.scalar.IsZero() {
		return ErrZeroKey
	}
	return nil
}

// Bytes returns the 32-byte big-endian encoding of the secret key.
func (sk *SecretKey) Bytes() [fr.Bytes]byte {
	return sk.scalar.Bytes()
}

// PublicKey computes [sk]G₁.
func (sk *SecretKey) PublicKey() PublicKey {
	var skBig big.Int
	var pk PublicKey
	pk.A.ScalarMultiplicationBase(sk.scalar.BigInt(&skBig))
	return pk
}

// Sign hashes msg to G2 and multiplies by the secret key.
func Sign(sk *SecretKey, msg []byte) (Signature, error) {
	var sig Signature
	h, err := bls12381.HashToG2(msg, []byte(DST))
	if err != nil {
		return sig, err
	}
	var skBig big.Int
	sig.S.ScalarMultiplication(&h, sk.scalar.BigInt(&skBig))
	return sig, nil
}

// Verify checks e(pk, hash(msg)) == e(G₁, sig). Infinity public keys and
// off-subgroup points are rejected.
func Verify(pk *PublicKey, msg []byte, sig *Signature) bool {
	ctx := bls12381.NewPairing(true, []byte(DST))
	if err := ctx.AggregatePkInG1(&pk.A, true, &sig.S, true, msg, nil); err != nil {
		return false
	}
	return ctx.FinalVerify(nil)
}

// AggregateSignatures sums signatures into one.
func AggregateSignatures(sigs []Signature) (Signature, error) {
	var agg Signature
	if len(sigs) == 0 {
		return agg, ErrNoSignatures
	}
	var acc bls12381.G2Jac
	acc.FromAffine(&sigs[0].S)
	for i := 1; i < len(sigs); i++ {
		acc.AddMixed(&sigs[i].S)
	}
	agg.S.FromJacobian(&acc)
	return agg, nil
}

// AggregateVerify checks an aggregated signature over pairwise distinct
// messages: e(G₁, sig) == Π e(pkᵢ, hash(msgᵢ)).
func AggregateVerify(pks []PublicKey, msgs [][]byte, sig *Signature) bool {
	if len(pks) == 0 || len(pks) != len(msgs) {
		return false
	}
	ctx := bls12381.NewPairing(true, []byte(DST))
	for i := range pks {
		s := &sig.S
		if i > 0 {
			s = nil // signature aggregated once
		}
		if err := ctx.AggregatePkInG1(&pks[i].A, true, s, true, msgs[i], nil); err != nil {
			return false
		}
	}
	return ctx.FinalVerify(nil)
}

// FastAggregateVerify checks an aggregated signature where every signer
// signed the same message; the public keys are summed in G1 first.
func FastAggregateVerify(pks []PublicKey, msg []byte, sig *Signature) bool {
	if len(pks) == 0 {
		return false
	}
	var acc bls12381.G1Jac
	acc.FromAffine(&pks[0].A)
	for i := 1; i < len(pks); i++ {
		acc.AddMixed(&pks[i].A)
	}
	var apk PublicKey
	apk.A.FromJacobian(&acc)
	return Verify(&apk, msg, sig)
}
