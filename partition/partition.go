// SPDX-License-Identifier: MIT

// Package partition divides the rows of an N-row matrix among P participants.
//
// The formula is the single source of truth for every participant:
//
//	rowsPerProcess = N / P                  (integer division)
//	rank r < P-1   owns [r*rowsPerProcess, (r+1)*rowsPerProcess)
//	rank P-1       owns [(P-1)*rowsPerProcess, N)
//
// The highest rank absorbs the remainder, so the ranges tile [0,N) exactly.
// When P > N every rank but the last receives an empty range.
//
// All functions are pure: identical inputs always yield identical ranges.
package partition

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrBadSize is returned when the participant count is below one.
	ErrBadSize = errors.New("partition: participant count must be >= 1")

	// ErrBadRank is returned when a rank lies outside [0, size).
	ErrBadRank = errors.New("partition: rank out of range")

	// ErrBadDimension is returned when the row count is negative.
	ErrBadDimension = errors.New("partition: dimension must be >= 0")

	// ErrGap signals that a set of ranges leaves some row unassigned.
	ErrGap = errors.New("partition: ranges leave a gap")

	// ErrOverlap signals that a row is assigned to more than one range.
	ErrOverlap = errors.New("partition: ranges overlap")

	// ErrOutOfBounds signals a malformed range or one reaching outside [0, n).
	ErrOutOfBounds = errors.New("partition: range out of bounds")
)

// Range is a half-open row interval [Start, End).
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of rows in r.
func (r Range) Len() int { return r.End - r.Start }

// Empty reports whether r holds no rows.
func (r Range) Empty() bool { return r.End <= r.Start }

// Contains reports whether row i lies in r.
func (r Range) Contains(i int) bool { return i >= r.Start && i < r.End }

// String renders r as "[start,end)".
func (r Range) String() string { return fmt.Sprintf("[%d,%d)", r.Start, r.End) }

// RowsPerProcess returns N / P, the base block height before the remainder.
// Callers must have validated size >= 1.
func RowsPerProcess(size, n int) int { return n / size }

// ComputeRange returns the rows owned by rank among size participants for an
// n-row matrix.
//
// Errors:
//   - ErrBadSize when size < 1.
//   - ErrBadRank when rank ∉ [0, size).
//   - ErrBadDimension when n < 0.
//
// Complexity: O(1).
func ComputeRange(rank, size, n int) (Range, error) {
	if size < 1 {
		return Range{}, fmt.Errorf("ComputeRange(size=%d): %w", size, ErrBadSize)
	}
	if rank < 0 || rank >= size {
		return Range{}, fmt.Errorf("ComputeRange(rank=%d,size=%d): %w", rank, size, ErrBadRank)
	}
	if n < 0 {
		return Range{}, fmt.Errorf("ComputeRange(n=%d): %w", n, ErrBadDimension)
	}

	per := RowsPerProcess(size, n)
	r := Range{Start: rank * per, End: (rank + 1) * per}
	if rank == size-1 {
		r.End = n // highest rank absorbs the remainder
	}

	return r, nil
}

// All returns the ranges of every rank; index i holds rank i's range.
// Errors: same as ComputeRange.
func All(size, n int) ([]Range, error) {
	if size < 1 {
		return nil, fmt.Errorf("All(size=%d): %w", size, ErrBadSize)
	}
	out := make([]Range, size)
	for rank := 0; rank < size; rank++ {
		r, err := ComputeRange(rank, size, n)
		if err != nil {
			return nil, err
		}
		out[rank] = r
	}

	return out, nil
}

// Validate checks that ranges, given in any order, tile [0, n) exactly: no row
// is missing and no row is claimed twice. Empty ranges are ignored.
//
// Errors:
//   - ErrOutOfBounds for End < Start, Start < 0 or End > n.
//   - ErrOverlap when two non-empty ranges share a row.
//   - ErrGap when some row in [0, n) is uncovered.
//
// Complexity: O(k log k) for k ranges.
func Validate(ranges []Range, n int) error {
	nonEmpty := make([]Range, 0, len(ranges))
	for _, r := range ranges {
		if r.End < r.Start || r.Start < 0 || r.End > n {
			return fmt.Errorf("Validate: %v with n=%d: %w", r, n, ErrOutOfBounds)
		}
		if !r.Empty() {
			nonEmpty = append(nonEmpty, r)
		}
	}
	sort.Slice(nonEmpty, func(i, j int) bool { return nonEmpty[i].Start < nonEmpty[j].Start })

	next := 0 // first row not yet covered
	for _, r := range nonEmpty {
		switch {
		case r.Start < next:
			return fmt.Errorf("Validate: %v starts before row %d: %w", r, next, ErrOverlap)
		case r.Start > next:
			return fmt.Errorf("Validate: rows [%d,%d) uncovered: %w", next, r.Start, ErrGap)
		}
		next = r.End
	}
	if next != n {
		return fmt.Errorf("Validate: rows [%d,%d) uncovered: %w", next, n, ErrGap)
	}

	return nil
}
