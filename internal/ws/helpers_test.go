package ws

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const waitTimeout = 2 * time.Second

var errConnClosed = errors.New("connection closed")

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeConn is an in-memory Conn: the test plays the client through in/out
type fakeConn struct {
	in     chan []byte
	out    chan []byte
	closed chan struct{}
	once   sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		in:     make(chan []byte, 16),
		out:    make(chan []byte, 256),
		closed: make(chan struct{}),
	}
}

func (c *fakeConn) Read(ctx context.Context) ([]byte, error) {
	select {
	case b, ok := <-c.in:
		if !ok {
			return nil, io.EOF
		}
		return b, nil
	case <-c.closed:
		return nil, errConnClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *fakeConn) Write(ctx context.Context, b []byte) error {
	select {
	case <-c.closed:
		return errConnClosed
	default:
	}
	select {
	case c.out <- b:
		return nil
	case <-c.closed:
		return errConnClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *fakeConn) Close(string) error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) isClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

// send plays an inbound frame from the client
func (c *fakeConn) send(frame string) { c.in <- []byte(frame) }

// hangUp ends the client's side of the stream
func (c *fakeConn) hangUp() { close(c.in) }

// next returns the next packet written to the client
func (c *fakeConn) next(t *testing.T) Packet {
	t.Helper()
	select {
	case b := <-c.out:
		var p Packet
		require.NoError(t, json.Unmarshal(b, &p))
		return p
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for a packet")
		return Packet{}
	}
}

// expect skips participant counts until a packet of the given event arrives
func (c *fakeConn) expect(t *testing.T, event string) Packet {
	t.Helper()
	for {
		p := c.next(t)
		if p.Event == event {
			return p
		}
		require.Equal(t, EventParticipantCount, p.Event, "unexpected packet while waiting for %s", event)
	}
}

// expectCount waits for a participant count of n
func (c *fakeConn) expectCount(t *testing.T, n int) {
	t.Helper()
	for {
		p := c.expect(t, EventParticipantCount)
		require.NotNil(t, p.Count)
		if *p.Count == n {
			return
		}
	}
}

// expectNone asserts nothing but participant counts is written for d
func (c *fakeConn) expectNone(t *testing.T, d time.Duration) {
	t.Helper()
	deadline := time.After(d)
	for {
		select {
		case b := <-c.out:
			var p Packet
			require.NoError(t, json.Unmarshal(b, &p))
			require.Equal(t, EventParticipantCount, p.Event, "unexpected packet %s", b)
		case <-deadline:
			return
		}
	}
}

// drainAfterClose waits for the server to close the connection and returns
// everything it wrote before that
func (c *fakeConn) drainAfterClose(t *testing.T) []Packet {
	t.Helper()
	require.Eventually(t, c.isClosed, waitTimeout, 5*time.Millisecond)
	var out []Packet
	for {
		select {
		case b := <-c.out:
			var p Packet
			require.NoError(t, json.Unmarshal(b, &p))
			out = append(out, p)
		default:
			return out
		}
	}
}
