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

	"github.com/consensys/gkzg/ecc/bls12381/fp"
)

// Point serialization follows the ZCash format
// (https://github.com/zcash/librustzcash/blob/master/pairing/src/bls12_381/README.md):
// big-endian coordinates with three flag bits stuffed in the most
// significant byte. For E2 coordinates the imaginary part A1 comes first.
const (
	mMask                 byte = 0b111 << 5
	mUncompressed         byte = 0b000 << 5
	mUncompressedInfinity byte = 0b010 << 5
	mCompressedSmallest   byte = 0b100 << 5
	mCompressedLargest    byte = 0b101 << 5
	mCompressedInfinity   byte = 0b110 << 5
)

// Serialized point sizes in bytes
const (
	SizeOfG1AffineCompressed   = 48
	SizeOfG1AffineUncompressed = SizeOfG1AffineCompressed * 2
	SizeOfG2AffineCompressed   = 96
	SizeOfG2AffineUncompressed = SizeOfG2AffineCompressed * 2
)

var (
	ErrInvalidEncoding    = errors.New("invalid point encoding")
	ErrShortBuffer        = errors.New("buffer too short")
	ErrPointNotOnCurve    = errors.New("point is not on the curve")
	ErrPointNotInSubGroup = errors.New("point is not in the correct subgroup")
)

// -------------------------------------------------------------------------------------------------
// G1

// Bytes returns the compressed serialization of p
func (p *G1Affine) Bytes() (res [SizeOfG1AffineCompressed]byte) {
	if p.IsInfinity() {
		res[0] = mCompressedInfinity
		return
	}

	tmp := p.X.Bytes()
	copy(res[:], tmp[:])

	if p.Y.LexicographicallyLargest() {
		res[0] |= mCompressedLargest
	} else {
		res[0] |= mCompressedSmallest
	}
	return
}

// RawBytes returns the uncompressed serialization of p
func (p *G1Affine) RawBytes() (res [SizeOfG1AffineUncompressed]byte) {
	if p.IsInfinity() {
		res[0] = mUncompressedInfinity
		return
	}

	tmp := p.X.Bytes()
	copy(res[:fp.Bytes], tmp[:])
	tmp = p.Y.Bytes()
	copy(res[fp.Bytes:], tmp[:])
	return
}

// Marshal returns the compressed serialization of p
func (p *G1Affine) Marshal() []byte {
	b := p.Bytes()
	return b[:]
}

// Unmarshal deserializes a compressed or uncompressed point and validates
// it, see SetBytes
func (p *G1Affine) Unmarshal(buf []byte) error {
	_, err := p.SetBytes(buf)
	return err
}

// SetBytes deserializes a point from buf (compressed or uncompressed,
// detected from the flag bits) and returns the number of bytes read.
// The encoding is fully validated: flags, canonical field values, curve
// membership and subgroup membership.
func (p *G1Affine) SetBytes(buf []byte) (int, error) {
	if len(buf) < SizeOfG1AffineCompressed {
		return 0, ErrShortBuffer
	}

	mData := buf[0] & mMask

	switch mData {
	case mUncompressed, mUncompressedInfinity:
		if len(buf) < SizeOfG1AffineUncompressed {
			return 0, ErrShortBuffer
		}
		if mData == mUncompressedInfinity {
			if !isZeroed(buf[0]&^mMask, buf[1:SizeOfG1AffineUncompressed]) {
				return 0, ErrInvalidEncoding
			}
			p.setInfinity()
			return SizeOfG1AffineUncompressed, nil
		}
		if err := p.X.SetBytesCanonical(buf[:fp.Bytes]); err != nil {
			return 0, err
		}
		if err := p.Y.SetBytesCanonical(buf[fp.Bytes : 2*fp.Bytes]); err != nil {
			return 0, err
		}
		if !p.IsOnCurve() {
			return 0, ErrPointNotOnCurve
		}
		if !p.IsInSubGroup() {
			return 0, ErrPointNotInSubGroup
		}
		return SizeOfG1AffineUncompressed, nil

	case mCompressedInfinity:
		if !isZeroed(buf[0]&^mMask, buf[1:SizeOfG1AffineCompressed]) {
			return 0, ErrInvalidEncoding
		}
		p.setInfinity()
		return SizeOfG1AffineCompressed, nil

	case mCompressedSmallest, mCompressedLargest:
		var bufX [fp.Bytes]byte
		copy(bufX[:], buf[:fp.Bytes])
		bufX[0] &= ^mMask

		if err := p.X.SetBytesCanonical(bufX[:]); err != nil {
			return 0, err
		}

		// y² = x³ + 4
		var y fp.Element
		y.Square(&p.X).Mul(&y, &p.X).Add(&y, &bCurveCoeff)
		if y.Sqrt(&y) == nil {
			return 0, ErrPointNotOnCurve
		}

		if y.LexicographicallyLargest() != (mData == mCompressedLargest) {
			y.Neg(&y)
		}
		p.Y = y

		if !p.IsInSubGroup() {
			return 0, ErrPointNotInSubGroup
		}
		return SizeOfG1AffineCompressed, nil

	default:
		return 0, ErrInvalidEncoding
	}
}

// -------------------------------------------------------------------------------------------------
// G2

// Bytes returns the compressed serialization of p (X.A1 || X.A0)
func (p *G2Affine) Bytes() (res [SizeOfG2AffineCompressed]byte) {
	if p.IsInfinity() {
		res[0] = mCompressedInfinity
		return
	}

	tmp := p.X.A1.Bytes()
	copy(res[:fp.Bytes], tmp[:])
	tmp = p.X.A0.Bytes()
	copy(res[fp.Bytes:], tmp[:])

	if p.Y.LexicographicallyLargest() {
		res[0] |= mCompressedLargest
	} else {
		res[0] |= mCompressedSmallest
	}
	return
}

// RawBytes returns the uncompressed serialization of p
// (X.A1 || X.A0 || Y.A1 || Y.A0)
func (p *G2Affine) RawBytes() (res [SizeOfG2AffineUncompressed]byte) {
	if p.IsInfinity() {
		res[0] = mUncompressedInfinity
		return
	}

	tmp := p.X.A1.Bytes()
	copy(res[:fp.Bytes], tmp[:])
	tmp = p.X.A0.Bytes()
	copy(res[fp.Bytes:2*fp.Bytes], tmp[:])
	tmp = p.Y.A1.Bytes()
	copy(res[2*fp.Bytes:3*fp.Bytes], tmp[:])
	tmp = p.Y.A0.Bytes()
	copy(res[3*fp.Bytes:], tmp[:])
	return
}

// Marshal returns the compressed serialization of p
func (p *G2Affine) Marshal() []byte {
	b := p.Bytes()
	return b[:]
}

// Unmarshal deserializes a compressed or uncompressed point and validates
// it, see SetBytes
func (p *G2Affine) Unmarshal(buf []byte) error {
	_, err := p.SetBytes(buf)
	return err
}

// SetBytes deserializes a point from buf and returns the number of bytes
// read; same validation ladder as G1Affine.SetBytes
func (p *G2Affine) SetBytes(buf []byte) (int, error) {
	if len(buf) < SizeOfG2AffineCompressed {
		return 0, ErrShortBuffer
	}

	mData := buf[0] & mMask

	switch mData {
	case mUncompressed, mUncompressedInfinity:
		if len(buf) < SizeOfG2AffineUncompressed {
			return 0, ErrShortBuffer
		}
		if mData == mUncompressedInfinity {
			if !isZeroed(buf[0]&^mMask, buf[1:SizeOfG2AffineUncompressed]) {
				return 0, ErrInvalidEncoding
			}
			p.setInfinity()
			return SizeOfG2AffineUncompressed, nil
		}
		if err := p.X.A1.SetBytesCanonical(buf[:fp.Bytes]); err != nil {
			return 0, err
		}
		if err := p.X.A0.SetBytesCanonical(buf[fp.Bytes : 2*fp.Bytes]); err != nil {
			return 0, err
		}
		if err := p.Y.A1.SetBytesCanonical(buf[2*fp.Bytes : 3*fp.Bytes]); err != nil {
			return 0, err
		}
		if err := p.Y.A0.SetBytesCanonical(buf[3*fp.Bytes : 4*fp.Bytes]); err != nil {
			return 0, err
		}
		if !p.IsOnCurve() {
			return 0, ErrPointNotOnCurve
		}
		if !p.IsInSubGroup() {
			return 0, ErrPointNotInSubGroup
		}
		return SizeOfG2AffineUncompressed, nil

	case mCompressedInfinity:
		if !isZeroed(buf[0]&^mMask, buf[1:SizeOfG2AffineCompressed]) {
			return 0, ErrInvalidEncoding
		}
		p.setInfinity()
		return SizeOfG2AffineCompressed, nil

	case mCompressedSmallest, mCompressedLargest:
		var bufX [fp.Bytes]byte
		copy(bufX[:], buf[:fp.Bytes])
		bufX[0] &= ^mMask

		if err := p.X.A1.SetBytesCanonical(bufX[:]); err != nil {
			return 0, err
		}
		if err := p.X.A0.SetBytesCanonical(buf[fp.Bytes : 2*fp.Bytes]); err != nil {
			return 0, err
		}

		// y² = x³ + 4(u+1)
		var y E2
		y.Square(&p.X).Mul(&y, &p.X).Add(&y, &bTwistCurveCoeff)
		if y.Sqrt(&y) == nil {
			return 0, ErrPointNotOnCurve
		}

		if y.LexicographicallyLargest() != (mData == mCompressedLargest) {
			y.Neg(&y)
		}
		p.Y = y

		if !p.IsInSubGroup() {
			return 0, ErrPointNotInSubGroup
		}
		return SizeOfG2AffineCompressed, nil

	default:
		return 0, ErrInvalidEncoding
	}
}

// isZeroed checks that the non-flag bits of the first byte and the rest of
// the buffer are all zero
func isZeroed(firstByte byte, buf []byte) bool {
	if firstByte != 0 {
		return false
	}
	for _, b := range buf {
		if b != 0 {
			return false
		}
	}
	return true
}
