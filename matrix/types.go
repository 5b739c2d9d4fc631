// SPDX-License-Identifier: MIT

// Package matrix: domain-facing types shared by the dense storage, the product
// kernel and the fillers. Errors and fills live in dedicated files
// (errors.go, fill.go).
package matrix

// Matrix represents a two-dimensional mutable array of int64 values.
// *Dense is the only implementation shipped; the interface lets validators and
// test wrappers stay decoupled from the concrete storage.
//
// Complexity notes: all methods are expected O(1) except Clone (O(r*c)).
type Matrix interface {
	// Rows returns the number of rows in the matrix.
	Rows() int

	// Cols returns the number of columns in the matrix.
	Cols() int

	// At retrieves the element at position (i, j).
	// Returns ErrOutOfRange if i<0, i>=Rows(), j<0 or j>=Cols().
	At(i, j int) (int64, error)

	// Set assigns the value v at position (i, j).
	// Returns ErrOutOfRange if indices are invalid.
	Set(i, j int, v int64) error

	// Clone returns a deep copy of the matrix.
	Clone() Matrix
}

// Filler populates a matrix in place. Implementations must be deterministic for
// a fixed configuration so runs can be reproduced in tests.
type Filler interface {
	Fill(m *Dense) error
}
