package matrix_test

import (
	"fmt"

	"github.com/katalvlaran/rowmul/matrix"
)

// ExampleMul multiplies two 2×2 matrices with the sequential reference kernel.
func ExampleMul() {
	a, _ := matrix.FromRows([][]int64{{1, 2}, {3, 4}})
	b, _ := matrix.FromRows([][]int64{{5, 6}, {7, 8}})

	c, err := matrix.Mul(a, b)
	if err != nil {
		fmt.Println("error:", err)

		return
	}
	fmt.Print(c)
	// Output:
	// [19, 22]
	// [43, 50]
}

// ExampleMulRows computes only the second row of the product, as one
// participant owning the row range [1,2) would.
func ExampleMulRows() {
	a, _ := matrix.FromRows([][]int64{{1, 2}, {3, 4}})
	b, _ := matrix.FromRows([][]int64{{5, 6}, {7, 8}})

	row, _ := matrix.MulRows(a, b, 1, 2)
	fmt.Println(row)
	// Output:
	// [43 50]
}
