// SPDX-License-Identifier: MIT

package comm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// Hub is the coordinator side of a websocket world. The coordinator process
// owns rank 0 (Hub.Comm) and serves the Hub as an http.Handler; every other
// participant joins with Dial. Messages between peers are relayed by the hub.
//
// Handshake: the peer sends Hello{From: rank}; the hub answers
// Welcome{Data: [size]} or Bye{Reason} when the rank is out of range, already
// taken, or the run has started or ended.
//
// The run starts once size-1 peers are connected. From then on a peer that
// drops without sending Bye aborts the run with ErrPeerLost, and a peer that
// says Bye fails rank 0's next collective with ErrPeerLost.
type Hub struct {
	size     int
	opts     options
	log      *slog.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	peers   map[int]*wsPeer
	pending map[int][]Message // addressed to ranks that have not joined yet
	joined  chan struct{}     // closed once size-1 peers are connected
	start   sync.Once
	closed  bool

	inbox    chan Message
	once     sync.Once
	done     chan struct{}
	abortErr error

	comm *Comm
}

// wsPeer is one joined participant as seen by the hub.
type wsPeer struct {
	rank int
	conn *websocket.Conn
	wmu  sync.Mutex // gorilla connections allow one concurrent writer
}

func (p *wsPeer) write(m Message) error {
	p.wmu.Lock()
	defer p.wmu.Unlock()

	return p.conn.WriteJSON(m)
}

// NewHub creates the hub of a size-participant world.
func NewHub(size int, opts ...Option) (*Hub, error) {
	if size < 1 {
		return nil, fmt.Errorf("NewHub(size=%d): %w", size, ErrBadSize)
	}
	o := gatherOptions(opts)
	h := &Hub{
		size:    size,
		opts:    o,
		log:     o.logger.With("component", "hub"),
		peers:   make(map[int]*wsPeer, size-1),
		pending: make(map[int][]Message),
		joined:  make(chan struct{}),
		inbox:   make(chan Message, o.inboxFor(size)),
		done:    make(chan struct{}),
	}
	if size == 1 {
		h.start.Do(func() { close(h.joined) })
	}
	c, err := New(Root, size, &hubTransport{h: h}, opts...)
	if err != nil {
		return nil, err
	}
	h.comm = c

	return h, nil
}

// Comm returns the coordinator's communicator (rank 0).
func (h *Hub) Comm() *Comm { return h.comm }

// Wait blocks until every peer has joined, the run is aborted, or ctx ends.
func (h *Hub) Wait(ctx context.Context) error {
	select {
	case <-h.joined:
		return nil
	case <-h.done:
		return h.abortErr
	case <-ctx.Done():
		return fmt.Errorf("Hub.Wait: %w", ctx.Err())
	}
}

// ServeHTTP upgrades the request and serves one peer until it leaves.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}
	defer conn.Close()

	p, err := h.accept(conn)
	if err != nil {
		h.log.Warn("join refused", "remote", r.RemoteAddr, "err", err)
		return
	}
	h.log.Info("peer joined", "peer", p.rank)
	h.serve(p)
}

func (h *Hub) accept(conn *websocket.Conn) (*wsPeer, error) {
	_ = conn.SetReadDeadline(time.Now().Add(h.opts.handshake))
	var hello Message
	if err := conn.ReadJSON(&hello); err != nil {
		return nil, fmt.Errorf("read hello: %w: %w", ErrHandshake, err)
	}
	_ = conn.SetReadDeadline(time.Time{})

	refuse := func(reason string) error {
		_ = conn.WriteJSON(Message{Kind: KindBye, From: Root, To: hello.From, Reason: reason})
		return fmt.Errorf("%w: %s", ErrHandshake, reason)
	}
	if hello.Kind != KindHello {
		return nil, refuse(fmt.Sprintf("expected %s, got %s", KindHello, hello.Kind))
	}
	if hello.From < 1 || hello.From >= h.size {
		return nil, refuse(fmt.Sprintf("rank %d outside [1,%d)", hello.From, h.size))
	}

	p := &wsPeer{rank: hello.From, conn: conn}
	reason, err := h.admit(p)
	switch {
	case reason != "":
		return nil, refuse(reason)
	case err != nil:
		h.abort(fmt.Errorf("welcome rank %d: %w: %w", p.rank, ErrPeerLost, err))
		return nil, err
	}

	return p, nil
}

// admit publishes p and sends its Welcome followed by any queued messages.
// p's write lock is held throughout so Welcome precedes any relay.
func (h *Hub) admit(p *wsPeer) (refused string, err error) {
	p.wmu.Lock()
	defer p.wmu.Unlock()

	queued, refused := h.register(p)
	if refused != "" {
		return refused, nil
	}
	err = p.conn.WriteJSON(Message{Kind: KindWelcome, From: Root, To: p.rank, Data: []int64{int64(h.size)}})
	for i := 0; err == nil && i < len(queued); i++ {
		err = p.conn.WriteJSON(queued[i])
	}

	return "", err
}

// register adds p to the world unless the rank is taken or the run has
// started, and returns the messages queued for it.
func (h *Hub) register(p *wsPeer) ([]Message, string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch {
	case h.closed || h.over():
		return nil, "run is over"
	case h.started():
		return nil, "run in progress"
	}
	if _, dup := h.peers[p.rank]; dup {
		return nil, fmt.Sprintf("rank %d already joined", p.rank)
	}
	h.peers[p.rank] = p
	queued := h.pending[p.rank]
	delete(h.pending, p.rank)
	if len(h.peers) == h.size-1 {
		h.start.Do(func() { close(h.joined) })
	}

	return queued, ""
}

// serve relays p's messages until p says Bye or the link fails.
func (h *Hub) serve(p *wsPeer) {
	for {
		var m Message
		if err := p.conn.ReadJSON(&m); err != nil {
			if !h.finished() {
				h.abort(fmt.Errorf("rank %d: %w: %w", p.rank, ErrPeerLost, err))
			}
			return
		}
		switch m.Kind {
		case KindBye:
			h.leave(p)
			return
		case KindAbort:
			h.abort(fmt.Errorf("rank %d: %s", p.rank, m.Reason))
			return
		}
		if err := h.route(m); err != nil {
			h.abort(err)
			return
		}
	}
}

// route delivers m to rank 0's inbox or relays it to the addressed peer.
func (h *Hub) route(m Message) error {
	switch {
	case m.To == Root:
		select {
		case h.inbox <- m:
			return nil
		case <-h.done:
			return h.abortErr
		}
	case m.To > 0 && m.To < h.size:
		p, err := h.peer(m)
		if err != nil || p == nil {
			return err
		}
		if err := p.write(m); err != nil {
			return fmt.Errorf("relay to rank %d: %w: %w", m.To, ErrPeerLost, err)
		}

		return nil
	default:
		return fmt.Errorf("route %v: %w", m, ErrBadRank)
	}
}

// leave drops p after its Bye. Once the run has started, rank 0 is told too:
// any collective still waiting on p fails instead of blocking.
func (h *Hub) leave(p *wsPeer) {
	h.mu.Lock()
	delete(h.peers, p.rank)
	h.mu.Unlock()
	h.log.Info("peer left", "peer", p.rank)

	if !h.started() || h.finished() {
		return
	}
	select {
	case h.inbox <- Message{Kind: KindBye, From: p.rank, To: Root}:
	case <-h.done:
	default:
		h.log.Warn("inbox full, departure not delivered", "peer", p.rank)
	}
}

// started reports whether every peer has joined at least once.
func (h *Hub) started() bool {
	select {
	case <-h.joined:
		return true
	default:
		return false
	}
}

func (h *Hub) over() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

func (h *Hub) finished() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.closed || h.over()
}

// abort poisons the run once and fans the cause out to every peer.
func (h *Hub) abort(cause error) {
	h.once.Do(func() {
		h.abortErr = fmt.Errorf("%w: %w", ErrAborted, cause)
		close(h.done)
		h.log.Error("run aborted", "cause", cause)

		for _, p := range h.snapshot() {
			_ = p.write(Message{Kind: KindAbort, From: Root, To: toAll, Reason: cause.Error()})
		}
	})
}

func (h *Hub) snapshot() []*wsPeer {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*wsPeer, 0, len(h.peers))
	for _, p := range h.peers {
		out = append(out, p)
	}

	return out
}

// peer returns the addressee of m. Before the run starts, messages for
// ranks that have not joined are queued and peer returns nil.
func (h *Hub) peer(m Message) (*wsPeer, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if p, ok := h.peers[m.To]; ok {
		return p, nil
	}
	if h.started() {
		return nil, fmt.Errorf("relay to rank %d: rank left: %w", m.To, ErrPeerLost)
	}
	h.pending[m.To] = append(h.pending[m.To], m)

	return nil, nil
}

// shutdown says goodbye to every peer and drops the links.
func (h *Hub) shutdown() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	h.mu.Unlock()

	for _, p := range h.snapshot() {
		_ = p.write(Message{Kind: KindBye, From: Root, To: p.rank})
		_ = p.conn.Close()
	}

	return nil
}

// hubTransport is rank 0's Transport over the hub.
type hubTransport struct{ h *Hub }

func (t *hubTransport) Send(ctx context.Context, m Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if t.h.over() {
		return t.h.abortErr
	}
	if m.To == Root {
		return fmt.Errorf("send to self: %w", ErrBadRank)
	}

	return t.h.route(m)
}

func (t *hubTransport) Recv(ctx context.Context) (Message, error) {
	return recvOrDone(ctx, t.h.inbox, t.h.done, &t.h.abortErr)
}

func (t *hubTransport) Abort(cause error) error {
	t.h.abort(cause)

	return nil
}

func (t *hubTransport) Close() error { return t.h.shutdown() }

// wsTransport is a peer's link to the hub.
type wsTransport struct {
	rank int
	conn *websocket.Conn
	wmu  sync.Mutex

	inbox  chan Message
	once   sync.Once
	done   chan struct{}
	err    error
	closed atomic.Bool
}

// Dial joins the hub at url as rank (>= 1) and returns the peer's Comm.
// The world size is learned from the hub's Welcome.
func Dial(ctx context.Context, url string, rank int, opts ...Option) (*Comm, error) {
	if rank < 1 {
		return nil, fmt.Errorf("Dial(rank=%d): rank 0 is the hub: %w", rank, ErrBadRank)
	}
	o := gatherOptions(opts)
	d := websocket.Dialer{Proxy: http.ProxyFromEnvironment, HandshakeTimeout: o.handshake}

	conn, _, err := d.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("Dial(%s): %w", url, err)
	}
	size, err := join(conn, rank, o.handshake)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("Dial(%s): %w", url, err)
	}

	t := &wsTransport{
		rank:  rank,
		conn:  conn,
		inbox: make(chan Message, o.inboxFor(size)),
		done:  make(chan struct{}),
	}
	c, err := New(rank, size, t, opts...)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	go t.read()

	return c, nil
}

func join(conn *websocket.Conn, rank int, timeout time.Duration) (int, error) {
	if err := conn.WriteJSON(Message{Kind: KindHello, From: rank, To: Root}); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrHandshake, err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(timeout))
	var w Message
	if err := conn.ReadJSON(&w); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrHandshake, err)
	}
	_ = conn.SetReadDeadline(time.Time{})

	switch {
	case w.Kind == KindBye:
		return 0, fmt.Errorf("%w: %s", ErrHandshake, w.Reason)
	case w.Kind != KindWelcome || len(w.Data) != 1:
		return 0, fmt.Errorf("%w: unexpected %v", ErrHandshake, w)
	case int(w.Data[0]) <= rank:
		return 0, fmt.Errorf("%w: rank %d outside world of %d", ErrBadRank, rank, w.Data[0])
	}

	return int(w.Data[0]), nil
}

func (t *wsTransport) fail(cause error) {
	t.once.Do(func() {
		t.err = fmt.Errorf("%w: %w", ErrAborted, cause)
		close(t.done)
	})
}

// read pumps hub messages into the inbox until the link ends.
func (t *wsTransport) read() {
	for {
		var m Message
		if err := t.conn.ReadJSON(&m); err != nil {
			if !t.closed.Load() {
				t.fail(fmt.Errorf("%w: %w", ErrPeerLost, err))
			}
			return
		}
		switch m.Kind {
		case KindAbort:
			t.fail(errors.New(m.Reason))
			return
		case KindBye:
			t.fail(fmt.Errorf("%w: hub closed the run", ErrPeerLost))
			return
		}
		select {
		case t.inbox <- m:
		case <-t.done:
			return
		}
	}
}

func (t *wsTransport) write(ctx context.Context, m Message) error {
	t.wmu.Lock()
	defer t.wmu.Unlock()
	if dl, ok := ctx.Deadline(); ok {
		_ = t.conn.SetWriteDeadline(dl)
		defer t.conn.SetWriteDeadline(time.Time{})
	}

	return t.conn.WriteJSON(m)
}

func (t *wsTransport) Send(ctx context.Context, m Message) error {
	if t.closed.Load() {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case <-t.done:
		return t.err
	default:
	}
	if err := t.write(ctx, m); err != nil {
		t.fail(fmt.Errorf("%w: %w", ErrPeerLost, err))
		return t.err
	}

	return nil
}

func (t *wsTransport) Recv(ctx context.Context) (Message, error) {
	if t.closed.Load() {
		return Message{}, ErrClosed
	}

	return recvOrDone(ctx, t.inbox, t.done, &t.err)
}

// Abort tells the hub, which fans the cause out to every participant.
func (t *wsTransport) Abort(cause error) error {
	err := t.write(context.Background(), Message{Kind: KindAbort, From: t.rank, To: toAll, Reason: cause.Error()})
	t.fail(cause)

	return err
}

// Close says Bye so the hub does not treat the departure as a loss.
func (t *wsTransport) Close() error {
	if t.closed.Swap(true) {
		return nil
	}
	_ = t.write(context.Background(), Message{Kind: KindBye, From: t.rank, To: Root})
	t.wmu.Lock()
	_ = t.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	t.wmu.Unlock()

	return t.conn.Close()
}

// recvOrDone drains buffered messages before reporting the terminal error.
// *errp must be written before done is closed.
func recvOrDone(ctx context.Context, in <-chan Message, done <-chan struct{}, errp *error) (Message, error) {
	select {
	case m := <-in:
		return m, nil
	default:
	}

	select {
	case m := <-in:
		return m, nil
	case <-done:
		select {
		case m := <-in:
			return m, nil
		default:
			return Message{}, *errp
		}
	case <-ctx.Done():
		return Message{}, ctx.Err()
	}
}
