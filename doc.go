// SPDX-License-Identifier: MIT

// Package rowmul multiplies two square integer matrices by splitting the rows
// of the product among cooperating participants.
//
// Every participant runs the same pipeline and meets the others only in
// blocking collectives (package comm):
//
//	Idle ──broadcast N──▶ DimensionKnown ──partition──▶ RangeComputed
//	     ──broadcast A,B + multiply own rows──▶ LocalComputeDone
//	     ──gather at root──▶ Gathered ──▶ Done
//
//   - The coordinator (root, rank 0 by default) validates N against the
//     maximum dimension before anything is sent. An invalid N aborts every
//     participant and yields no result.
//   - Rows are partitioned by one pure formula (package partition): each rank
//     owns N/P rows and the highest rank absorbs the remainder.
//   - The coordinator fills A and B and broadcasts them so all participants
//     multiply identical inputs.
//   - Each participant computes C[i][j] = Σ_k A[i][k]·B[k][j] for its rows only
//     (package matrix).
//   - The coordinator places every block at its sender's row offset, so the
//     assembled C is bit-identical to a sequential product for any P.
//
// Entry points:
//
//	Run       one participant's pipeline over any *comm.Comm.
//	RunLocal  P goroutine participants over an in-process world.
//
// Commands live under cmd/rowmul: `local` for in-process runs, `serve` and
// `join` for one process per participant over websockets.
//
// Quick example:
//
//	c, err := rowmul.RunLocal(ctx, 4, 8, rowmul.WithSeed(42))
//	if err != nil { … }
//	fmt.Print(c)
package rowmul
