// SPDX-License-Identifier: MIT

package partition_test

import (
	"fmt"

	"github.com/katalvlaran/rowmul/partition"
)

// ExampleAll shows the remainder landing on the highest rank.
func ExampleAll() {
	ranges, err := partition.All(3, 10)
	if err != nil {
		fmt.Println(err)
		return
	}
	for rank, r := range ranges {
		fmt.Printf("rank %d: %v\n", rank, r)
	}
	// Output:
	// rank 0: [0,3)
	// rank 1: [3,6)
	// rank 2: [6,10)
}
