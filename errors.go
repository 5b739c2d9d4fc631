// SPDX-License-Identifier: MIT

package rowmul

import "errors"

var (
	// ErrInvalidDimension reports an N outside [1, max dimension]. The run is
	// aborted for every participant before anything is broadcast.
	ErrInvalidDimension = errors.New("rowmul: invalid matrix dimension")

	// ErrAssembly reports gathered blocks that do not tile the result: a gap,
	// an overlap, or a block whose size disagrees with its row range.
	ErrAssembly = errors.New("rowmul: gathered blocks do not assemble")

	// ErrNilComm is returned when a pipeline step is handed a nil communicator.
	ErrNilComm = errors.New("rowmul: nil communicator")
)
