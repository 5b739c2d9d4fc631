package matrix_test

import (
	"testing"

	"github.com/katalvlaran/rowmul/matrix"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// TestMul_Example checks the canonical 2×2 product.
func TestMul_Example(t *testing.T) {
	a := MustFromRows(t, [][]int64{{1, 2}, {3, 4}})
	b := MustFromRows(t, [][]int64{{5, 6}, {7, 8}})

	c, err := matrix.Mul(a, b)
	require.NoError(t, err)
	require.Equal(t, MustFromRows(t, [][]int64{{19, 22}, {43, 50}}).Data(), c.Data())
}

// TestMulRows_RangesMatchFullProduct verifies that every contiguous split of the
// rows concatenates to the full product.
func TestMulRows_RangesMatchFullProduct(t *testing.T) {
	const n = 7
	a := MustRandom(t, n, 11, -5, 5)
	b := MustRandom(t, n, 12, -5, 5)

	full, err := matrix.Mul(a, b)
	require.NoError(t, err)

	for split := 0; split <= n; split++ {
		top, err := matrix.MulRows(a, b, 0, split)
		require.NoError(t, err)
		bottom, err := matrix.MulRows(a, b, split, n)
		require.NoError(t, err)
		require.Equal(t, full.Data(), append(top, bottom...), "split at %d", split)
	}
}

// TestMulRows_EmptyRange ensures lo==hi is a legal no-op.
func TestMulRows_EmptyRange(t *testing.T) {
	a := MustRandom(t, 3, 1, 1, 10)

	out, err := matrix.MulRows(a, a, 3, 3)
	require.NoError(t, err)
	require.NotNil(t, out)
	require.Empty(t, out)
}

// TestMulRows_Errors covers validation ordering: nil → shape → row bounds.
func TestMulRows_Errors(t *testing.T) {
	a := MustDense(t, 2, 3)

	_, err := matrix.MulRows(nil, a, 0, 1)
	require.ErrorIs(t, err, matrix.ErrNilMatrix)

	_, err = matrix.MulRows(a, a, 0, 1)
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)

	_, err = matrix.MulRows(a, MustDense(t, 3, 2), 1, 3)
	require.ErrorIs(t, err, matrix.ErrOutOfRange)

	_, err = matrix.Mul(a, a)
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)
}

// TestMulRows_FallbackMatchesFastPath forces the interface path and compares bitwise.
func TestMulRows_FallbackMatchesFastPath(t *testing.T) {
	a := MustRandom(t, 6, 21, -100, 100)
	b := MustRandom(t, 6, 22, -100, 100)

	fast, err := matrix.MulRows(a, b, 1, 5)
	require.NoError(t, err)
	slow, err := matrix.MulRows(hide{a}, hide{b}, 1, 5)
	require.NoError(t, err)
	require.Equal(t, fast, slow)
}

// TestMul_MatchesNaiveAndGonum cross-checks the kernel against an index-based
// reference and gonum's float64 product for small integers.
func TestMul_MatchesNaiveAndGonum(t *testing.T) {
	for _, n := range []int{1, 2, 5, 10} {
		a := MustRandom(t, n, int64(100+n), 1, 10)
		b := MustRandom(t, n, int64(200+n), 1, 10)

		c, err := matrix.Mul(a, b)
		require.NoError(t, err)
		require.Equal(t, MustFromRows(t, naiveProduct(t, a, b)).Data(), c.Data())

		var g mat.Dense
		g.Mul(matrix.ToGonum(a), matrix.ToGonum(b))
		back, err := matrix.FromGonum(&g)
		require.NoError(t, err)
		require.True(t, c.Equal(back), "n=%d", n)
	}
}

// TestMul_Rectangular checks a non-square product shape.
func TestMul_Rectangular(t *testing.T) {
	a := MustFromRows(t, [][]int64{{1, 2, 3}})
	b := MustFromRows(t, [][]int64{{1}, {2}, {3}})

	c, err := matrix.Mul(a, b)
	require.NoError(t, err)
	require.Equal(t, 1, c.Rows())
	require.Equal(t, 1, c.Cols())
	require.Equal(t, []int64{14}, c.Data())
}
