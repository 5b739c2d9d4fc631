// Package matrix provides the dense integer matrix used by the row-partitioned
// multiplication pipeline.
//
// The matrix package provides:
//
//   - Dense, a row-major int64 buffer with error-returning accessors
//     (At/Set/Row/RowSpan never panic on bad indices).
//   - MulRows, the single product kernel: rows [lo,hi) of a×b computed with the
//     textbook i→j→k loop. Mul is MulRows over every row, so a partitioned run
//     and a sequential run produce bit-identical results.
//   - Fillers (RandomFiller, FuncFiller, CopyFiller) as pluggable, reproducible
//     data sources for the input matrices.
//   - ToGonum, a bridge into gonum's float64 matrices for external tooling.
//
// Matrices are small by contract (the coordinator bounds N), so the kernels
// favour a fixed loop order over blocking or vectorisation.
package matrix
