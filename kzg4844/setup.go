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
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"math/bits"
	"os"
	"strconv"
	"time"

	"github.com/consensys/gkzg/ecc/bls12381"
	"github.com/consensys/gkzg/ecc/bls12381/fr"
	"github.com/consensys/gkzg/logger"
	"github.com/fxamacker/cbor/v2"
)

// scale2RootOfUnity[k] is a primitive 2^k-th root of unity in Fr, derived
// from the generator 7 of Fr* as 7^((r-1)/2^k).
var scale2RootOfUnity = [13]string{
	"1",
	"52435875175126190479447740508185965837690552500527637822603658699938581184512",
	"3465144826073652318776269530687742778270252468765361963008",
	"23674694431658770659612952115660802947967373701506253797663184111817857449850",
	"14788168760825820622209131888203028446852016562542525606630160374691593895118",
	"36581797046584068049060372878520385032448812009597153775348195406694427778894",
	"31519469946562159605140591558550197856588417350474800936898404023113662197331",
	"47309214877430199588914062438791732591241783999377560080318349803002842391998",
	"36007022166693598376559747923784822035233416720563672082740011604939309541707",
	"4214636447306890335450803789410475782380792963881561516561680164772024173390",
	"22781213702924172180523978385542388841346373992886390990881355510284839737428",
	"49307615728544765012166121802278658070711169839041683575071795236746050763237",
	"39033254847818212395286706435128746857159659164139250548781411570340225835782",
}

// domainInv is 1/4096 in Fr, the batch-size normalizer of the barycentric
// formula.
var domainInv fr.Element

func init() {
	domainInv.SetUint64(FieldElementsPerBlob)
	domainInv.Inverse(&domainInv)
}

// TrustedSetup holds the processed powers-of-τ ceremony output: 4096 G1
// points committing to the Lagrange basis at the bit-reversed roots of
// unity, and 65 G2 points in monomial form. It is read-only after load and
// safe for concurrent use.
type TrustedSetup struct {
	g1Lagrange []bls12381.G1Affine
	g2Monomial []bls12381.G2Affine
	roots      []fr.Element
	freed      bool
}

// LoadTrustedSetup processes a trusted setup given as raw compressed point
// encodings: 4096 48-byte G1 points in Lagrange form over the natural-order
// roots, and 65 96-byte G2 points in monomial form. Every point is
// uncompressed and subgroup-checked, the G1 side is probed to reject a
// monomial-form ceremony file, and both the G1 points and the roots of
// unity are bit-reversal permuted.
func LoadTrustedSetup(g1Compressed, g2Compressed [][]byte) (*TrustedSetup, error) {
	start := time.Now()

	if len(g1Compressed) != FieldElementsPerBlob || len(g2Compressed) != g2MonomialCount {
		return nil, fmt.Errorf("%w: expected %d g1 and %d g2 points, got %d and %d",
			ErrBadArgs, FieldElementsPerBlob, g2MonomialCount, len(g1Compressed), len(g2Compressed))
	}

	ts := &TrustedSetup{
		g1Lagrange: make([]bls12381.G1Affine, FieldElementsPerBlob),
		g2Monomial: make([]bls12381.G2Affine, g2MonomialCount),
	}
	for i, b := range g1Compressed {
		if len(b) != bls12381.SizeOfG1AffineCompressed {
			return nil, fmt.Errorf("%w: g1 point %d has size %d", ErrBadArgs, i, len(b))
		}
		if _, err := ts.g1Lagrange[i].SetBytes(b); err != nil {
			return nil, fmt.Errorf("%w: g1 point %d: %v", ErrBadArgs, i, err)
		}
	}
	for i, b := range g2Compressed {
		if len(b) != bls12381.SizeOfG2AffineCompressed {
			return nil, fmt.Errorf("%w: g2 point %d has size %d", ErrBadArgs, i, len(b))
		}
		if _, err := ts.g2Monomial[i].SetBytes(b); err != nil {
			return nil, fmt.Errorf("%w: g2 point %d: %v", ErrBadArgs, i, err)
		}
	}

	if err := ts.checkLagrangeForm(0, 1); err != nil {
		return nil, err
	}

	roots, err := expandRootsOfUnity()
	if err != nil {
		return nil, err
	}
	ts.roots = roots

	bitReverse(ts.g1Lagrange)
	bitReverse(ts.roots)

	log := logger.Logger().With().Str("package", "kzg4844").Logger()
	log.Debug().Dur("took", time.Since(start)).Msg("trusted setup loaded")

	return ts, nil
}

// checkLagrangeForm probes e(g1[i1], g2[0]) == e(g1[i0], g2[1]), which holds
// precisely when g1[i1] = τ·g1[i0], i.e. when the G1 side is in monomial
// form. i0 and i1 address the positions of τ⁰ and τ¹ in the current point
// order.
func (ts *TrustedSetup) checkLagrangeForm(i0, i1 int) error {
	var neg bls12381.G1Affine
	neg.Neg(&ts.g1Lagrange[i0])
	monomial, err := bls12381.PairingCheck(
		[]bls12381.G1Affine{ts.g1Lagrange[i1], neg},
		[]bls12381.G2Affine{ts.g2Monomial[0], ts.g2Monomial[1]},
	)
	if err != nil {
		return err
	}
	if monomial {
		return fmt.Errorf("%w: g1 points are in monomial form, expected Lagrange form", ErrBadArgs)
	}
	return nil
}

// expandRootsOfUnity computes the natural-order 4096-element root domain
// from the primitive root table and verifies it wraps around exactly once.
func expandRootsOfUnity() ([]fr.Element, error) {
	var w fr.Element
	w.SetString(scale2RootOfUnity[12])

	roots := make([]fr.Element, FieldElementsPerBlob+1)
	roots[0].SetOne()
	for i := 1; i <= FieldElementsPerBlob; i++ {
		roots[i].Mul(&roots[i-1], &w)
	}
	if !roots[FieldElementsPerBlob].IsOne() || roots[FieldElementsPerBlob/2].IsOne() {
		return nil, fmt.Errorf("%w: root of unity is not primitive of order %d", ErrBadArgs, FieldElementsPerBlob)
	}
	return roots[:FieldElementsPerBlob], nil
}

// bitReverse permutes v in place by reversing the bits of each index.
// len(v) must be a power of two.
func bitReverse[T any](v []T) {
	n := uint64(len(v))
	if bits.OnesCount64(n) != 1 {
		panic("len(v) must be a power of 2")
	}
	shift := 64 - uint64(bits.TrailingZeros64(n))
	for i := uint64(0); i < n; i++ {
		j := bits.Reverse64(i) >> shift
		if i < j {
			v[i], v[j] = v[j], v[i]
		}
	}
}

// LoadTrustedSetupFile reads a ceremony file in the text format used by
// EIP-4844 tooling: the counts 4096 and 65 on the first two lines, then one
// hex-encoded compressed point per line, G1 first.
func LoadTrustedSetupFile(path string) (*TrustedSetup, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseTrustedSetupText(f)
}

func parseTrustedSetupText(r io.Reader) (*TrustedSetup, error) {
	scanner := bufio.NewScanner(r)
	nextLine := func() (string, error) {
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return "", err
			}
			return "", fmt.Errorf("%w: unexpected end of trusted setup file", ErrBadArgs)
		}
		return scanner.Text(), nil
	}

	for _, want := range []int{FieldElementsPerBlob, g2MonomialCount} {
		line, err := nextLine()
		if err != nil {
			return nil, err
		}
		n, err := strconv.Atoi(line)
		if err != nil || n != want {
			return nil, fmt.Errorf("%w: expected point count %d, got %q", ErrBadArgs, want, line)
		}
	}

	readPoints := func(count, size int) ([][]byte, error) {
		points := make([][]byte, count)
		for i := 0; i < count; i++ {
			line, err := nextLine()
			if err != nil {
				return nil, err
			}
			b, err := hex.DecodeString(line)
			if err != nil || len(b) != size {
				return nil, fmt.Errorf("%w: point %d is not %d hex-encoded bytes", ErrBadArgs, i, size)
			}
			points[i] = b
		}
		return points, nil
	}

	g1, err := readPoints(FieldElementsPerBlob, bls12381.SizeOfG1AffineCompressed)
	if err != nil {
		return nil, err
	}
	g2, err := readPoints(g2MonomialCount, bls12381.SizeOfG2AffineCompressed)
	if err != nil {
		return nil, err
	}
	return LoadTrustedSetup(g1, g2)
}

// Free zeroizes and releases the setup's point tables. It is idempotent;
// any later use of the setup returns ErrSetupFreed.
func (ts *TrustedSetup) Free() {
	if ts.freed {
		return
	}
	for i := range ts.g1Lagrange {
		ts.g1Lagrange[i] = bls12381.G1Affine{}
	}
	for i := range ts.g2Monomial {
		ts.g2Monomial[i] = bls12381.G2Affine{}
	}
	for i := range ts.roots {
		ts.roots[i] = fr.Element{}
	}
	ts.g1Lagrange = nil
	ts.g2Monomial = nil
	ts.roots = nil
	ts.freed = true
}

func (ts *TrustedSetup) isUsable() error {
	if ts.freed || ts.g1Lagrange == nil {
		return ErrSetupFreed
	}
	return nil
}

// trustedSetupDump is the cbor image of a processed setup: uncompressed
// points, already bit-reversal permuted, so restoring skips decompression.
type trustedSetupDump struct {
	G1Lagrange [][]byte `cbor:"1,keyasint"`
	G2Monomial [][]byte `cbor:"2,keyasint"`
}

// WriteTo dumps the processed setup in cbor, uncompressed points in
// bit-reversed order. The dump is larger than the ceremony file but loads
// without the per-point square root.
func (ts *TrustedSetup) WriteTo(w io.Writer) (int64, error) {
	if err := ts.isUsable(); err != nil {
		return 0, err
	}
	dump := trustedSetupDump{
		G1Lagrange: make([][]byte, len(ts.g1Lagrange)),
		G2Monomial: make([][]byte, len(ts.g2Monomial)),
	}
	for i := range ts.g1Lagrange {
		raw := ts.g1Lagrange[i].RawBytes()
		dump.G1Lagrange[i] = raw[:]
	}
	for i := range ts.g2Monomial {
		raw := ts.g2Monomial[i].RawBytes()
		dump.G2Monomial[i] = raw[:]
	}
	cw := &countingWriter{w: w}
	if err := cbor.NewEncoder(cw).Encode(&dump); err != nil {
		return cw.n, err
	}
	return cw.n, nil
}

// ReadTrustedSetupFrom restores a setup written by WriteTo. Points are
// still validated (on-curve and subgroup) and the Lagrange-form probe is
// re-run on the bit-reversed positions of τ⁰ and τ¹.
func ReadTrustedSetupFrom(r io.Reader) (*TrustedSetup, error) {
	dec, err := cbor.DecOptions{MaxArrayElements: 2 * FieldElementsPerBlob}.DecMode()
	if err != nil {
		return nil, err
	}
	var dump trustedSetupDump
	if err := dec.NewDecoder(r).Decode(&dump); err != nil {
		return nil, err
	}
	if len(dump.G1Lagrange) != FieldElementsPerBlob || len(dump.G2Monomial) != g2MonomialCount {
		return nil, fmt.Errorf("%w: dump holds %d g1 and %d g2 points",
			ErrBadArgs, len(dump.G1Lagrange), len(dump.G2Monomial))
	}

	ts := &TrustedSetup{
		g1Lagrange: make([]bls12381.G1Affine, FieldElementsPerBlob),
		g2Monomial: make([]bls12381.G2Affine, g2MonomialCount),
	}
	for i, b := range dump.G1Lagrange {
		if _, err := ts.g1Lagrange[i].SetBytes(b); err != nil {
			return nil, fmt.Errorf("%w: g1 point %d: %v", ErrBadArgs, i, err)
		}
	}
	for i, b := range dump.G2Monomial {
		if _, err := ts.g2Monomial[i].SetBytes(b); err != nil {
			return nil, fmt.Errorf("%w: g2 point %d: %v", ErrBadArgs, i, err)
		}
	}

	// the dump is bit-reversed; τ¹'s Lagrange position moved accordingly
	if err := ts.checkLagrangeForm(0, reverseIndex(1)); err != nil {
		return nil, err
	}

	roots, err := expandRootsOfUnity()
	if err != nil {
		return nil, err
	}
	ts.roots = roots
	bitReverse(ts.roots)

	return ts, nil
}

// reverseIndex maps a natural-order domain index to its bit-reversed
// position.
func reverseIndex(i int) int {
	shift := 64 - uint64(bits.TrailingZeros64(FieldElementsPerBlob))
	return int(bits.Reverse64(uint64(i)) >> shift)
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}
