// SPDX-License-Identifier: MIT

package rowmul

import "fmt"

// State is a participant's position in the pipeline. States only advance;
// a failure ends the run without a retry state.
type State int

const (
	// Idle: nothing received yet.
	Idle State = iota
	// DimensionKnown: N has been broadcast.
	DimensionKnown
	// RangeComputed: the participant knows its rows.
	RangeComputed
	// LocalComputeDone: A and B received and the own rows multiplied.
	LocalComputeDone
	// Gathered: the root holds every block.
	Gathered
	// Done: the run finished successfully.
	Done
)

var stateNames = [...]string{
	Idle:             "Idle",
	DimensionKnown:   "DimensionKnown",
	RangeComputed:    "RangeComputed",
	LocalComputeDone: "LocalComputeDone",
	Gathered:         "Gathered",
	Done:             "Done",
}

// String returns the state name.
func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}

	return stateNames[s]
}
