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

package bls12381

import (
	"errors"
	"math/big"
)

// Pairing is a reusable aggregation accumulator for batched signature
// verification. Pairs are buffered and flushed through the Miller loop in
// groups of nMaxPairs; the running Fp12 product is final-exponentiated
// once, in FinalVerify. A context is either min-sig (signatures in G1,
// public keys in G2) or min-pk (signatures in G2, public keys in G1); the
// first Aggregate call fixes the variant.
type Pairing struct {
	hashOrEncode bool
	dst          []byte

	minSig  bool
	minPk   bool
	signSet bool
	gtSet   bool

	f GT // product of the committed Miller loops

	p []G1Affine // buffered pairs, flushed by Commit
	q []G2Affine

	aggrSigG1 G1Jac // aggregated signature, min-sig variant
	aggrSigG2 G2Jac // aggregated signature, min-pk variant
}

// nMaxPairs is the buffered-pair threshold that triggers an intermediate
// Miller loop
const nMaxPairs = 8

var (
	ErrAggrTypeMismatch = errors.New("mixing min-sig and min-pk aggregation")
	ErrPkIsInfinity     = errors.New("public key is the point at infinity")
	ErrAggrUncommitted  = errors.New("aggregation context has uncommitted pairs")
)

// NewPairing creates an aggregation context. If hashOrEncode is true
// messages are hashed to the signature group with HashToG1/HashToG2
// (uniform encoding), otherwise with EncodeToG1/EncodeToG2.
func NewPairing(hashOrEncode bool, dst []byte) *Pairing {
	pp := &Pairing{
		hashOrEncode: hashOrEncode,
		dst:          append([]byte(nil), dst...),
	}
	pp.f.SetOne()
	pp.aggrSigG1.Set(&g1Infinity)
	pp.aggrSigG2.Set(&g2Infinity)
	return pp
}

// AggregatePkInG1 buffers the pair (pk, hash(msg)) in the min-pk variant:
// public key in G1, signature and message hash in G2. A non-nil sig is
// accumulated into the aggregated signature; subsequent calls may pass nil
// when the signature has already been aggregated. checkPk and checkSig
// enable the respective subgroup checks.
func (pp *Pairing) AggregatePkInG1(pk *G1Affine, checkPk bool, sig *G2Affine, checkSig bool, msg, aug []byte) error {
	return pp.mulNAggregatePkInG1(pk, checkPk, sig, checkSig, nil, msg, aug)
}

// MulNAggregatePkInG1 is AggregatePkInG1 with the hashed point and the
// signature both multiplied by scalar; used to randomize batched
// verifications
func (pp *Pairing) MulNAggregatePkInG1(pk *G1Affine, checkPk bool, sig *G2Affine, checkSig bool, scalar *big.Int, msg, aug []byte) error {
	return pp.mulNAggregatePkInG1(pk, checkPk, sig, checkSig, scalar, msg, aug)
}

func (pp *Pairing) mulNAggregatePkInG1(pk *G1Affine, checkPk bool, sig *G2Affine, checkSig bool, scalar *big.Int, msg, aug []byte) error {
	if pp.minSig {
		return ErrAggrTypeMismatch
	}
	pp.minPk = true

	if pk.IsInfinity() {
		return ErrPkIsInfinity
	}
	if checkPk && !pk.IsInSubGroup() {
		return ErrPointNotInSubGroup
	}

	if sig != nil {
		if checkSig && !sig.IsInSubGroup() {
			return ErrPointNotInSubGroup
		}
		s := *sig
		if scalar != nil {
			s.ScalarMultiplication(&s, scalar)
		}
		pp.aggrSigG2.AddMixed(&s)
		pp.signSet = true
	}

	h, err := pp.hashToG2(msg, aug)
	if err != nil {
		return err
	}
	if scalar != nil {
		h.ScalarMultiplication(&h, scalar)
	}

	pp.p = append(pp.p, *pk)
	pp.q = append(pp.q, h)
	return pp.commitIfFull()
}

// AggregatePkInG2 buffers the pair (hash(msg), pk) in the min-sig variant:
// public key in G2, signature and message hash in G1
func (pp *Pairing) AggregatePkInG2(pk *G2Affine, checkPk bool, sig *G1Affine, checkSig bool, msg, aug []byte) error {
	return pp.mulNAggregatePkInG2(pk, checkPk, sig, checkSig, nil, msg, aug)
}

// MulNAggregatePkInG2 is AggregatePkInG2 with the hashed point and the
// signature both multiplied by scalar
func (pp *Pairing) MulNAggregatePkInG2(pk *G2Affine, checkPk bool, sig *G1Affine, checkSig bool, scalar *big.Int, msg, aug []byte) error {
	return pp.mulNAggregatePkInG2(pk, checkPk, sig, checkSig, scalar, msg, aug)
}

func (pp *Pairing) mulNAggregatePkInG2(pk *G2Affine, checkPk bool, sig *G1Affine, checkSig bool, scalar *big.Int, msg, aug []byte) error {
	if pp.minPk {
		return ErrAggrTypeMismatch
	}
	pp.minSig = true

	if pk.IsInfinity() {
		return ErrPkIsInfinity
	}
	if checkPk && !pk.IsInSubGroup() {
		return ErrPointNotInSubGroup
	}

	if sig != nil {
		if checkSig && !sig.IsInSubGroup() {
			return ErrPointNotInSubGroup
		}
		s := *sig
		if scalar != nil {
			s.ScalarMultiplication(&s, scalar)
		}
		pp.aggrSigG1.AddMixed(&s)
		pp.signSet = true
	}

	h, err := pp.hashToG1(msg, aug)
	if err != nil {
		return err
	}
	if scalar != nil {
		h.ScalarMultiplication(&h, scalar)
	}

	pp.p = append(pp.p, h)
	pp.q = append(pp.q, *pk)
	return pp.commitIfFull()
}

func (pp *Pairing) hashToG1(msg, aug []byte) (G1Affine, error) {
	data := msg
	if len(aug) != 0 {
		data = append(append([]byte(nil), aug...), msg...)
	}
	if pp.hashOrEncode {
		return HashToG1(data, pp.dst)
	}
	return EncodeToG1(data, pp.dst)
}

func (pp *Pairing) hashToG2(msg, aug []byte) (G2Affine, error) {
	data := msg
	if len(aug) != 0 {
		data = append(append([]byte(nil), aug...), msg...)
	}
	if pp.hashOrEncode {
		return HashToG2(data, pp.dst)
	}
	return EncodeToG2(data, pp.dst)
}

func (pp *Pairing) commitIfFull() error {
	if len(pp.p) < nMaxPairs {
		return nil
	}
	return pp.Commit()
}

// Commit flushes the buffered pairs through the Miller loop into the
// running product
func (pp *Pairing) Commit() error {
	if len(pp.p) == 0 {
		return nil
	}
	ml, err := MillerLoop(pp.p, pp.q)
	if err != nil {
		return err
	}
	pp.f.Mul(&pp.f, &ml)
	pp.gtSet = true
	pp.p = pp.p[:0]
	pp.q = pp.q[:0]
	return nil
}

// Merge combines another committed context into pp; the two must agree on
// the min-sig/min-pk variant and both be committed
func (pp *Pairing) Merge(other *Pairing) error {
	if (pp.minSig && other.minPk) || (pp.minPk && other.minSig) {
		return ErrAggrTypeMismatch
	}
	if len(pp.p) != 0 || len(other.p) != 0 {
		return ErrAggrUncommitted
	}

	pp.minSig = pp.minSig || other.minSig
	pp.minPk = pp.minPk || other.minPk

	if other.gtSet {
		pp.f.Mul(&pp.f, &other.f)
		pp.gtSet = true
	}
	if other.signSet {
		pp.aggrSigG1.AddAssign(&other.aggrSigG1)
		pp.aggrSigG2.AddAssign(&other.aggrSigG2)
		pp.signSet = true
	}
	return nil
}

// FinalVerify commits any remaining pairs, runs the final exponentiation
// and checks the pairing equation. With a nil expected value the check is
// against the aggregated signature paired with the group generator (or
// against the GT identity when no signature was aggregated); a non-nil
// expected value must be a Miller loop output, e.g. from
// AggregatedSignature, and is compared instead.
func (pp *Pairing) FinalVerify(expected *GT) bool {
	if err := pp.Commit(); err != nil {
		return false
	}

	ratio := pp.f

	var sigML GT
	switch {
	case expected != nil:
		sigML = *expected
	case pp.signSet:
		var err error
		sigML, err = pp.aggregatedSignatureML()
		if err != nil {
			return false
		}
	default:
		sigML.SetOne()
	}

	sigML.Conjugate(&sigML)
	ratio.Mul(&ratio, &sigML)

	res := FinalExponentiation(&ratio)
	return res.IsOne()
}

// AggregatedSignature returns the Miller loop of the aggregated signature
// with the matching group generator, suitable as the expected value of
// FinalVerify on another context
func (pp *Pairing) AggregatedSignature() (GT, error) {
	return pp.aggregatedSignatureML()
}

func (pp *Pairing) aggregatedSignatureML() (GT, error) {
	if pp.minSig {
		var s G1Affine
		s.FromJacobian(&pp.aggrSigG1)
		return MillerLoop([]G1Affine{s}, []G2Affine{g2GenAff})
	}
	var s G2Affine
	s.FromJacobian(&pp.aggrSigG2)
	return MillerLoop([]G1Affine{g1GenAff}, []G2Affine{s})
}
