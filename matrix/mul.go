// SPDX-License-Identifier: MIT

// Package matrix - product kernel.
//
// Purpose:
//   - One canonical kernel (MulRows) computes any contiguous row range of a×b.
//   - Mul is MulRows over [0, Rows) so partitioned and sequential products share code.
//
// Determinism & Policy:
//   - Fixed i→j→k loop order. Integer arithmetic wraps on overflow in Go,
//     and wrapped addition is associative, so any row split yields
//     bit-identical cells.

package matrix

import "fmt"

const (
	opMul     = "Mul"
	opMulRows = "MulRows"
)

// matrixErrorf wraps err with an operation tag.
func matrixErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// MulRows computes rows [lo, hi) of the product a×b and returns them as one flat
// row-major slice of length (hi-lo)*b.Cols().
// MAIN DESCRIPTION:
//   - out[(i-lo)*n + j] = Σ_k a[i,k] * b[k,j] for i in [lo,hi), j in [0,b.Cols()).
//
// Implementation:
//   - Stage 1: ValidateMulCompatible(a, b) and ValidateRowBounds(lo, hi, a.Rows()).
//   - Stage 2: fast path on two *Dense operands (flat slices), fallback via At.
//
// Behavior highlights:
//   - Reads only rows [lo,hi) of a; never touches cells outside the requested range.
//   - lo == hi returns an empty, non-nil slice (an empty partition is a no-op).
//
// Errors:
//   - ErrNilMatrix, ErrDimensionMismatch (from ValidateMulCompatible).
//   - ErrOutOfRange when the row range is outside a.
//
// Complexity:
//   - Time O((hi-lo)*k*c), Space O((hi-lo)*c).
func MulRows(a, b Matrix, lo, hi int) ([]int64, error) {
	if err := ValidateMulCompatible(a, b); err != nil {
		return nil, matrixErrorf(opMulRows, err)
	}
	if err := ValidateRowBounds(lo, hi, a.Rows()); err != nil {
		return nil, matrixErrorf(opMulRows, err)
	}

	inner, cols := a.Cols(), b.Cols()
	out := make([]int64, (hi-lo)*cols)
	var (
		i, j, k int   // loop iterators
		acc     int64 // running dot product
	)

	// Fast-path for two Dense matrices.
	if da, okA := a.(*Dense); okA {
		if db, okB := b.(*Dense); okB {
			var rowA, rowOut int
			for i = lo; i < hi; i++ {
				rowA = i * inner
				rowOut = (i - lo) * cols
				for j = 0; j < cols; j++ {
					acc = 0
					for k = 0; k < inner; k++ {
						acc += da.data[rowA+k] * db.data[k*cols+j]
					}
					out[rowOut+j] = acc
				}
			}

			return out, nil
		}
	}

	// Fallback: generic interface triple-loop (i-j-k).
	var av, bv int64
	var err error
	for i = lo; i < hi; i++ {
		for j = 0; j < cols; j++ {
			acc = 0
			for k = 0; k < inner; k++ {
				if av, err = a.At(i, k); err != nil {
					return nil, matrixErrorf(opMulRows, err)
				}
				if bv, err = b.At(k, j); err != nil {
					return nil, matrixErrorf(opMulRows, err)
				}
				acc += av * bv
			}
			out[(i-lo)*cols+j] = acc
		}
	}

	return out, nil
}

// Mul returns the full product a×b as a new *Dense.
// Sequential reference implementation; delegates to MulRows over every row.
// Complexity: O(r*k*c).
func Mul(a, b Matrix) (*Dense, error) {
	if err := ValidateMulCompatible(a, b); err != nil {
		return nil, matrixErrorf(opMul, err)
	}
	data, err := MulRows(a, b, 0, a.Rows())
	if err != nil {
		return nil, matrixErrorf(opMul, err)
	}

	return &Dense{r: a.Rows(), c: b.Cols(), data: data}, nil
}
