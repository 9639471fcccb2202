package ecc

import (
	"crypto/rand"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNafDecomposition(t *testing.T) {
	max := new(big.Int).Lsh(big.NewInt(1), 256)

	for trial := 0; trial < 100; trial++ {
		k, err := rand.Int(rand.Reader, max)
		require.NoError(t, err)

		naf := make([]int8, k.BitLen()+1)
		l := NafDecomposition(k, naf)
		require.LessOrEqual(t, l, len(naf))

		// no two consecutive nonzero digits
		for i := 1; i < l; i++ {
			if naf[i] != 0 {
				require.Zero(t, naf[i-1])
			}
		}

		// sum(naf[i] * 2^i) reconstructs k
		sum := new(big.Int)
		term := new(big.Int)
		for i := 0; i < l; i++ {
			term.SetInt64(int64(naf[i]))
			term.Lsh(term, uint(i))
			sum.Add(sum, term)
		}
		require.Zero(t, sum.Cmp(k))
	}

	// zero scalar yields no digits
	naf := make([]int8, 1)
	require.Zero(t, NafDecomposition(new(big.Int), naf))
}
