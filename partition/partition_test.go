// SPDX-License-Identifier: MIT

package partition_test

import (
	"testing"

	"github.com/katalvlaran/rowmul/partition"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestComputeRange_Table pins the formula on representative shapes.
func TestComputeRange_Table(t *testing.T) {
	cases := []struct {
		name       string
		rank, size int
		n          int
		want       partition.Range
	}{
		{"single participant owns all", 0, 1, 4, partition.Range{Start: 0, End: 4}},
		{"even split first", 0, 2, 4, partition.Range{Start: 0, End: 2}},
		{"even split last", 1, 2, 4, partition.Range{Start: 2, End: 4}},
		{"remainder to last", 2, 3, 10, partition.Range{Start: 6, End: 10}},
		{"middle rank", 1, 3, 10, partition.Range{Start: 3, End: 6}},
		{"more ranks than rows, early rank empty", 3, 5, 3, partition.Range{Start: 0, End: 0}},
		{"more ranks than rows, last rank full", 4, 5, 3, partition.Range{Start: 0, End: 3}},
		{"zero rows", 0, 2, 0, partition.Range{Start: 0, End: 0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := partition.ComputeRange(tc.rank, tc.size, tc.n)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

// TestComputeRange_Errors checks argument validation order: size → rank → n.
func TestComputeRange_Errors(t *testing.T) {
	_, err := partition.ComputeRange(0, 0, 4)
	require.ErrorIs(t, err, partition.ErrBadSize)

	_, err = partition.ComputeRange(2, 2, 4)
	require.ErrorIs(t, err, partition.ErrBadRank)

	_, err = partition.ComputeRange(-1, 2, 4)
	require.ErrorIs(t, err, partition.ErrBadRank)

	_, err = partition.ComputeRange(0, 2, -1)
	require.ErrorIs(t, err, partition.ErrBadDimension)
}

// TestAll_Coverage verifies every (size, n) pair up to 12 tiles [0,n) exactly,
// that ranges are contiguous in rank order, and that only the last rank grows.
func TestAll_Coverage(t *testing.T) {
	for size := 1; size <= 12; size++ {
		for n := 0; n <= 12; n++ {
			ranges, err := partition.All(size, n)
			require.NoError(t, err)
			require.Len(t, ranges, size)
			require.NoError(t, partition.Validate(ranges, n), "size=%d n=%d", size, n)

			per := partition.RowsPerProcess(size, n)
			for rank, r := range ranges[:size-1] {
				assert.Equal(t, per, r.Len(), "size=%d n=%d rank=%d", size, n, rank)
				assert.Equal(t, r.End, ranges[rank+1].Start)
			}
			assert.Equal(t, n, ranges[size-1].End)
			assert.Equal(t, per+n%size, ranges[size-1].Len())
		}
	}
}

// TestAll_Deterministic repeats the computation and expects identical output.
func TestAll_Deterministic(t *testing.T) {
	first, err := partition.All(4, 10)
	require.NoError(t, err)
	second, err := partition.All(4, 10)
	require.NoError(t, err)
	require.Equal(t, first, second)

	_, err = partition.All(0, 10)
	require.ErrorIs(t, err, partition.ErrBadSize)
}

// TestValidate_Rejects covers each failure class, with ranges out of order.
func TestValidate_Rejects(t *testing.T) {
	r := func(s, e int) partition.Range { return partition.Range{Start: s, End: e} }

	require.NoError(t, partition.Validate([]partition.Range{r(2, 4), r(0, 2), r(4, 4)}, 4))
	require.ErrorIs(t, partition.Validate([]partition.Range{r(0, 1), r(2, 4)}, 4), partition.ErrGap)
	require.ErrorIs(t, partition.Validate([]partition.Range{r(0, 2)}, 4), partition.ErrGap)
	require.ErrorIs(t, partition.Validate(nil, 1), partition.ErrGap)
	require.ErrorIs(t, partition.Validate([]partition.Range{r(0, 3), r(2, 4)}, 4), partition.ErrOverlap)
	require.ErrorIs(t, partition.Validate([]partition.Range{r(0, 2), r(0, 2), r(2, 4)}, 4), partition.ErrOverlap)
	require.ErrorIs(t, partition.Validate([]partition.Range{r(0, 5)}, 4), partition.ErrOutOfBounds)
	require.ErrorIs(t, partition.Validate([]partition.Range{r(3, 2)}, 4), partition.ErrOutOfBounds)
	require.NoError(t, partition.Validate(nil, 0))
}

// TestRange_Helpers checks the small accessors.
func TestRange_Helpers(t *testing.T) {
	r := partition.Range{Start: 2, End: 5}
	assert.Equal(t, 3, r.Len())
	assert.False(t, r.Empty())
	assert.True(t, r.Contains(2))
	assert.False(t, r.Contains(5))
	assert.Equal(t, "[2,5)", r.String())
	assert.True(t, partition.Range{Start: 3, End: 3}.Empty())
}
