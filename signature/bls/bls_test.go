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

package bls

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func testKey(t *testing.T, seed byte) (*SecretKey, PublicKey) {
	t.Helper()
	ikm := bytes.Repeat([]byte{seed}, 32)
	sk, err := GenerateKey(ikm)
	require.NoError(t, err)
	return sk, sk.PublicKey()
}

func TestGenerateKey(t *testing.T) {
	sk, pk := testKey(t, 1)
	require.False(t, pk.A.IsInfinity())
	require.True(t, pk.A.IsInSubGroup())

	// deterministic in the input key material
	sk2, err := GenerateKey(bytes.Repeat([]byte{1}, 32))
	require.NoError(t, err)
	require.Equal(t, sk.Bytes(), sk2.Bytes())

	// distinct material, distinct key
	sk3, _ := testKey(t, 2)
	require.NotEqual(t, sk.Bytes(), sk3.Bytes())

	_, err = GenerateKey(make([]byte, 31))
	require.ErrorIs(t, err, ErrShortIKM)
}

func TestSecretKeyRoundTrip(t *testing.T) {
	sk, _ := testKey(t, 3)
	b := sk.Bytes()

	var restored SecretKey
	require.NoError(t, restored.SetBytes(b[:]))
	require.Equal(t, sk.Bytes(), restored.Bytes())

	require.ErrorIs(t, restored.SetBytes(make([]byte, 32)), ErrZeroKey)
}

func TestSignVerify(t *testing.T) {
	sk, pk := testKey(t, 4)
	msg := []byte("blob sidecar 0xdeadbeef")

	sig, err := Sign(sk, msg)
	require.NoError(t, err)
	require.True(t, sig.S.IsInSubGroup())
	require.True(t, Verify(&pk, msg, &sig))

	require.False(t, Verify(&pk, []byte("another message"), &sig))

	_, wrongPk := testKey(t, 5)
	require.False(t, Verify(&wrongPk, msg, &sig))
}

func TestVerifyRejectsInfinityPk(t *testing.T) {
	sk, _ := testKey(t, 6)
	msg := []byte("msg")
	sig, err := Sign(sk, msg)
	require.NoError(t, err)

	var infPk PublicKey
	require.False(t, Verify(&infPk, msg, &sig))
}

func TestAggregateVerify(t *testing.T) {
	const n = 10
	pks := make([]PublicKey, n)
	msgs := make([][]byte, n)
	sigs := make([]Signature, n)
	for i := 0; i < n; i++ {
		sk, pk := testKey(t, byte(10+i))
		pks[i] = pk
		msgs[i] = []byte(fmt.Sprintf("message %d", i))
		var err error
		sigs[i], err = Sign(sk, msgs[i])
		require.NoError(t, err)
	}

	agg, err := AggregateSignatures(sigs)
	require.NoError(t, err)
	require.True(t, AggregateVerify(pks, msgs, &agg))

	// swapping two messages breaks the pairing product
	msgs[0], msgs[1] = msgs[1], msgs[0]
	require.False(t, AggregateVerify(pks, msgs, &agg))
	msgs[0], msgs[1] = msgs[1], msgs[0]

	// one bad signature poisons the aggregate
	sigs[7].S.Neg(&sigs[7].S)
	badAgg, err := AggregateSignatures(sigs)
	require.NoError(t, err)
	require.False(t, AggregateVerify(pks, msgs, &badAgg))

	require.False(t, AggregateVerify(pks[:n-1], msgs, &agg))
	require.False(t, AggregateVerify(nil, nil, &agg))

	_, err = AggregateSignatures(nil)
	require.ErrorIs(t, err, ErrNoSignatures)
}

func TestFastAggregateVerify(t *testing.T) {
	const n = 5
	msg := []byte("same message for all signers")
	pks := make([]PublicKey, n)
	sigs := make([]Signature, n)
	for i := 0; i < n; i++ {
		sk, pk := testKey(t, byte(50+i))
		pks[i] = pk
		var err error
		sigs[i], err = Sign(sk, msg)
		require.NoError(t, err)
	}

	agg, err := AggregateSignatures(sigs)
	require.NoError(t, err)
	require.True(t, FastAggregateVerify(pks, msg, &agg))
	require.False(t, FastAggregateVerify(pks[:n-1], msg, &agg))
	require.False(t, FastAggregateVerify(pks, []byte("other"), &agg))
}
