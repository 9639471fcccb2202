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
	"crypto/sha256"
	"errors"
	"math/big"

	"github.com/consensys/gkzg/ecc/bls12381/fp"
)

// RFC 9380 hash-to-field parameters for BLS12-381 with SHA-256:
// L = ceil((381 + 128) / 8) bytes per field element.
const szL = 64

var (
	ErrExpandMsgLength = errors.New("requested expand_message_xmd output too long")
	ErrEmptyDST        = errors.New("zero-length domain separation tag")
)

// oversizeDSTSalt prefixes domain separation tags longer than 255 bytes
// before they are collapsed to a digest
var oversizeDSTSalt = []byte("H2C-OVERSIZE-DST-")

// ExpandMsgXmd produces lenInBytes pseudo-random bytes from msg and a
// domain separation tag using SHA-256, per RFC 9380 section 5.3.1
func ExpandMsgXmd(msg, dst []byte, lenInBytes int) ([]byte, error) {
	h := sha256.New()
	blockSize := h.BlockSize()
	szDigest := h.Size()

	if len(dst) == 0 {
		return nil, ErrEmptyDST
	}
	if len(dst) > 255 {
		h.Write(oversizeDSTSalt)
		h.Write(dst)
		dst = h.Sum(nil)
		h.Reset()
	}

	ell := (lenInBytes + szDigest - 1) / szDigest
	if ell > 255 || lenInBytes > 255*szDigest {
		return nil, ErrExpandMsgLength
	}

	// b₀ = H(Z_pad ‖ msg ‖ l_i_b_str ‖ 0x00 ‖ DST ‖ len(DST))
	h.Write(make([]byte, blockSize))
	h.Write(msg)
	h.Write([]byte{byte(lenInBytes >> 8), byte(lenInBytes), 0})
	h.Write(dst)
	h.Write([]byte{byte(len(dst))})
	b0 := h.Sum(nil)

	// b₁ = H(b₀ ‖ 0x01 ‖ DST ‖ len(DST))
	h.Reset()
	h.Write(b0)
	h.Write([]byte{1})
	h.Write(dst)
	h.Write([]byte{byte(len(dst))})
	bi := h.Sum(nil)

	res := make([]byte, 0, ell*szDigest)
	res = append(res, bi...)

	for i := 2; i <= ell; i++ {
		// bᵢ = H((b₀ ⊕ bᵢ₋₁) ‖ i ‖ DST ‖ len(DST))
		h.Reset()
		strxor := make([]byte, szDigest)
		for j := 0; j < szDigest; j++ {
			strxor[j] = b0[j] ^ bi[j]
		}
		h.Write(strxor)
		h.Write([]byte{byte(i)})
		h.Write(dst)
		h.Write([]byte{byte(len(dst))})
		bi = h.Sum(nil)
		res = append(res, bi...)
	}

	return res[:lenInBytes], nil
}

// hashToFp hashes msg to count field elements, each drawn from a 64-byte
// chunk reduced modulo p
func hashToFp(msg, dst []byte, count int) ([]fp.Element, error) {
	pseudoRandomBytes, err := ExpandMsgXmd(msg, dst, count*szL)
	if err != nil {
		return nil, err
	}

	res := make([]fp.Element, count)
	var v big.Int
	for i := 0; i < count; i++ {
		v.SetBytes(pseudoRandomBytes[i*szL : (i+1)*szL])
		res[i].SetBigInt(&v)
	}
	return res, nil
}
