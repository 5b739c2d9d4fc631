// SPDX-License-Identifier: MIT

package comm

import (
	"fmt"

	"github.com/katalvlaran/rowmul/partition"
)

// Kind tags a Message with its role in a collective or in the join handshake.
type Kind string

// Message kinds.
const (
	// KindEnter is sent by a non-root to announce it reached a broadcast.
	KindEnter Kind = "enter"
	// KindValue carries the broadcast payload from the root.
	KindValue Kind = "value"
	// KindPart carries one participant's contribution to a gather.
	KindPart Kind = "part"
	// KindRelease lets a gather contributor leave the collective.
	KindRelease Kind = "release"
	// KindAbort poisons the run; Reason describes the cause.
	KindAbort Kind = "abort"
	// KindHello opens a websocket join; From is the joining rank.
	KindHello Kind = "hello"
	// KindWelcome accepts a join; Data[0] is the world size.
	KindWelcome Kind = "welcome"
	// KindBye closes a link cleanly, or refuses a join when Reason is set.
	KindBye Kind = "bye"
)

// Broadcast-to-everyone address used by KindAbort.
const toAll = -1

// Message is the single wire unit exchanged between participants.
// It is JSON-encoded on the websocket transport and passed by value locally.
type Message struct {
	Kind   Kind    `json:"kind"`
	Seq    uint64  `json:"seq"`
	From   int     `json:"from"`
	To     int     `json:"to"`
	Start  int     `json:"start,omitempty"`
	End    int     `json:"end,omitempty"`
	Data   []int64 `json:"data,omitempty"`
	Reason string  `json:"reason,omitempty"`
}

// Range returns the row range carried by a KindPart message.
func (m Message) Range() partition.Range { return partition.Range{Start: m.Start, End: m.End} }

// String renders m compactly for logs.
func (m Message) String() string {
	return fmt.Sprintf("%s#%d %d→%d len=%d", m.Kind, m.Seq, m.From, m.To, len(m.Data))
}

// Part is one participant's gather contribution as seen by the root.
type Part struct {
	Rank  int
	Range partition.Range
	Data  []int64
}
