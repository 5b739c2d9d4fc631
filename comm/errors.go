// SPDX-License-Identifier: MIT

package comm

import "errors"

// Sentinel errors. Call sites wrap them with fmt.Errorf("<Op>: %w", ErrX) so
// callers match with errors.Is.
var (
	// ErrAborted marks every collective that fails because some participant
	// aborted the run. In-process transports also wrap the original cause.
	ErrAborted = errors.New("comm: run aborted")

	// ErrCollectiveDesync reports a message that does not belong to the
	// collective in progress: wrong kind, stale sequence, unexpected or
	// duplicate sender.
	ErrCollectiveDesync = errors.New("comm: collective desync")

	// ErrBadRoot reports a root rank outside [0, size).
	ErrBadRoot = errors.New("comm: root out of range")

	// ErrBadRank reports a rank outside [0, size), or a message addressed to one.
	ErrBadRank = errors.New("comm: rank out of range")

	// ErrBadSize reports a participant count below one.
	ErrBadSize = errors.New("comm: size must be >= 1")

	// ErrClosed is returned by operations on a closed communicator or transport.
	ErrClosed = errors.New("comm: closed")

	// ErrPeerLost reports a participant whose link dropped, or that left while
	// the run still needed it.
	ErrPeerLost = errors.New("comm: peer lost")

	// ErrHandshake reports a websocket join that the hub refused or garbled.
	ErrHandshake = errors.New("comm: handshake failed")

	// ErrNilTransport is returned by New when no transport is supplied.
	ErrNilTransport = errors.New("comm: nil transport")
)
