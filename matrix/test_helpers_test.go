// SPDX-License-Identifier: MIT
// Package matrix_test contains test helpers
//
// Purpose:
//   • Provide small, deterministic test fixtures and utilities for kernels.

package matrix_test

import (
	"testing"

	"github.com/katalvlaran/rowmul/matrix"
)

// hide WRAPS any Matrix to hide its concrete type from type assertions.
// Use hide{X} in tests to force the non-*Dense (fallback) path of MulRows.
type hide struct{ matrix.Matrix }

// MustDense ALLOCATES an r×c *Dense or fails the test (fatal on error).
func MustDense(tb testing.TB, r, c int) *matrix.Dense {
	tb.Helper()
	m, err := matrix.NewDense(r, c)
	if err != nil {
		tb.Fatalf("NewDense(%d,%d): %v", r, c, err)
	}

	return m
}

// MustFromRows builds a *Dense from literal rows or fails the test.
func MustFromRows(tb testing.TB, rows [][]int64) *matrix.Dense {
	tb.Helper()
	m, err := matrix.FromRows(rows)
	if err != nil {
		tb.Fatalf("FromRows: %v", err)
	}

	return m
}

// MustRandom returns an n×n matrix filled from seed within [lo,hi].
func MustRandom(tb testing.TB, n int, seed, lo, hi int64) *matrix.Dense {
	tb.Helper()
	m := MustDense(tb, n, n)
	if err := (matrix.RandomFiller{Seed: seed, Lo: lo, Hi: hi}).Fill(m); err != nil {
		tb.Fatalf("RandomFiller.Fill: %v", err)
	}

	return m
}

// naiveProduct is an index-by-index reference written against the public API only.
func naiveProduct(tb testing.TB, a, b *matrix.Dense) [][]int64 {
	tb.Helper()
	out := make([][]int64, a.Rows())
	for i := 0; i < a.Rows(); i++ {
		out[i] = make([]int64, b.Cols())
		for j := 0; j < b.Cols(); j++ {
			var s int64
			for k := 0; k < a.Cols(); k++ {
				av, _ := a.At(i, k)
				bv, _ := b.At(k, j)
				s += av * bv
			}
			out[i][j] = s
		}
	}

	return out
}
