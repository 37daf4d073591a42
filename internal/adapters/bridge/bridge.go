// Package bridge carries the session's host traffic over a websocket.
// Messages are buffered in a bounded outbox until a host page connects and
// are delivered in order, at least once. Haptics, notifications and alerts
// are dropped while no host is attached.
package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/okian/ladder/internal/domain/match"
	"github.com/okian/ladder/internal/domain/model"
	"github.com/okian/ladder/pkg/logger"
	"github.com/okian/ladder/pkg/metrics"
)

const (
	defaultOutboxSize   = 32
	defaultWriteTimeout = 5 * time.Second
	maxInboundSize      = 64 << 10
)

// InboundFunc receives raw messages from the host.
type InboundFunc func(ctx context.Context, raw []byte)

// Bridge is the host side of one session.
type Bridge struct {
	size         int
	writeTimeout time.Duration
	inbound      InboundFunc
	logger       logger.Logger

	mu     sync.Mutex
	outbox [][]byte
	conn   *conn
	closed bool
}

type conn struct {
	ws   *websocket.Conn
	wake chan struct{}
	done chan struct{}
	once sync.Once
}

func (c *conn) close() {
	c.once.Do(func() {
		close(c.done)
		c.ws.Close()
	})
}

var _ match.Bridge = (*Bridge)(nil)

// New creates a disconnected Bridge.
func New(opts ...Option) *Bridge {
	b := &Bridge{
		size:         defaultOutboxSize,
		writeTimeout: defaultWriteTimeout,
		logger:       logger.Discard(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Attach makes ws the host connection, replacing any previous one, and
// starts flushing the outbox to it.
func (b *Bridge) Attach(ctx context.Context, ws *websocket.Conn) error {
	c := &conn{ws: ws, wake: make(chan struct{}, 1), done: make(chan struct{})}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		ws.Close()
		return ErrClosed
	}
	old := b.conn
	b.conn = c
	b.mu.Unlock()

	if old != nil {
		old.close()
	} else {
		metrics.UpdateBridgeConnections(1)
	}
	b.logger.Info(ctx, "host attached", logger.String("remote", ws.RemoteAddr().String()))

	bg := context.WithoutCancel(ctx)
	go b.writeLoop(bg, c)
	go b.readLoop(bg, c)
	return nil
}

// Connected reports whether a host is attached.
func (b *Bridge) Connected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conn != nil
}

// Pending returns the number of frames not yet delivered.
func (b *Bridge) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.outbox)
}

// Close drops the connection and refuses further frames.
func (b *Bridge) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	c := b.conn
	b.conn = nil
	b.mu.Unlock()

	if c != nil {
		c.close()
		metrics.UpdateBridgeConnections(-1)
	}
	return nil
}

func (b *Bridge) Haptic(ctx context.Context, style string) {
	b.bestEffort(ctx, Frame{Kind: KindHaptic, Style: style})
}

func (b *Bridge) Notify(ctx context.Context, kind string) {
	b.bestEffort(ctx, Frame{Kind: KindNotification, Type: kind})
}

func (b *Bridge) Alert(ctx context.Context, text string) {
	b.bestEffort(ctx, Frame{Kind: KindAlert, Text: text})
}

// Send queues a structured message for the host. Malformed messages and a
// full outbox are errors.
func (b *Bridge) Send(ctx context.Context, msg model.Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode %s: %w", msg.Action(), err)
	}
	if err := b.enqueue(Frame{Kind: KindSend, Payload: payload}, false); err != nil {
		metrics.RecordBridgeSendError()
		b.logger.Warn(ctx, "host message not queued", logger.String("action", msg.Action()), logger.Error(err))
		return err
	}
	return nil
}

// bestEffort frames are only queued while a host is attached, so the outbox
// keeps its room for Send payloads.
func (b *Bridge) bestEffort(ctx context.Context, f Frame) {
	if err := b.enqueue(f, true); err != nil {
		b.logger.Debug(ctx, "host frame dropped", logger.String("kind", f.Kind), logger.Error(err))
	}
}

func (b *Bridge) enqueue(f Frame, lossy bool) error {
	raw, err := json.Marshal(f)
	if err != nil {
		return err
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrClosed
	}
	if lossy && b.conn == nil {
		b.mu.Unlock()
		return ErrNotAttached
	}
	if len(b.outbox) >= b.size {
		b.mu.Unlock()
		return ErrOutboxFull
	}
	b.outbox = append(b.outbox, raw)
	c := b.conn
	b.mu.Unlock()

	metrics.RecordBridgeFrame(f.Kind)
	if c != nil {
		select {
		case c.wake <- struct{}{}:
		default:
		}
	}
	return nil
}

// next returns the head of the outbox while c is the current connection.
func (b *Bridge) next(c *conn) (frame []byte, current bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.conn != c {
		return nil, false
	}
	if len(b.outbox) == 0 {
		return nil, true
	}
	return b.outbox[0], true
}

// pop removes the head after it was written on c.
func (b *Bridge) pop(c *conn) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.conn == c && len(b.outbox) > 0 {
		b.outbox[0] = nil
		b.outbox = b.outbox[1:]
	}
}

func (b *Bridge) writeLoop(ctx context.Context, c *conn) {
	for {
		frame, current := b.next(c)
		if !current {
			return
		}
		if frame == nil {
			select {
			case <-c.wake:
				continue
			case <-c.done:
				return
			}
		}

		_ = c.ws.SetWriteDeadline(time.Now().Add(b.writeTimeout))
		if err := c.ws.WriteMessage(websocket.TextMessage, frame); err != nil {
			metrics.RecordBridgeSendError()
			b.logger.Warn(ctx, "host write failed", logger.Error(err))
			b.detach(ctx, c)
			return
		}
		b.pop(c)
	}
}

func (b *Bridge) readLoop(ctx context.Context, c *conn) {
	c.ws.SetReadLimit(maxInboundSize)
	for {
		_, raw, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				b.logger.Warn(ctx, "host read failed", logger.Error(err))
			}
			b.detach(ctx, c)
			return
		}
		if b.inbound != nil {
			b.inbound(ctx, raw)
		}
	}
}

// detach forgets c if it is still the current connection.
func (b *Bridge) detach(ctx context.Context, c *conn) {
	b.mu.Lock()
	current := b.conn == c
	if current {
		b.conn = nil
	}
	b.mu.Unlock()

	c.close()
	if current {
		metrics.UpdateBridgeConnections(-1)
		b.logger.Info(ctx, "host detached")
	}
}
