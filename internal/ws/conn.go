package ws

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"nhooyr.io/websocket"
)

// maxFrameSize bounds inbound frames; clients only ever send tiny commands
const maxFrameSize = 4 << 10

var errUnexpectedFrame = errors.New("unexpected frame type")

// Conn is a live client connection as seen by rooms and sessions.
// Read and Write may be called concurrently with each other, Close from anywhere.
type Conn interface {
	// Read blocks until a text frame arrives. Any other frame type, a close
	// frame or a transport error is returned as an error.
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, b []byte) error
	Close(reason string) error
}

// Accept upgrades HTTP to websocket (allow all origins)
func Accept(w http.ResponseWriter, r *http.Request) (Conn, error) {
	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns:  []string{"*"},
		CompressionMode: websocket.CompressionDisabled,
	})
	if err != nil {
		return nil, err
	}
	c.SetReadLimit(maxFrameSize)
	return &socket{ws: c}, nil
}

// Reject closes an already upgraded connection with a policy violation,
// used when the room vanished between the pre-upgrade check and the hand-off
func Reject(c Conn, err error) {
	if s, ok := c.(*socket); ok {
		_ = s.ws.Close(websocket.StatusPolicyViolation, err.Error())
		return
	}
	_ = c.Close(err.Error())
}

type socket struct {
	ws *websocket.Conn
}

func (s *socket) Read(ctx context.Context) ([]byte, error) {
	typ, data, err := s.ws.Read(ctx)
	if err != nil {
		return nil, err
	}
	if typ != websocket.MessageText {
		return nil, fmt.Errorf("%w: %s", errUnexpectedFrame, typ)
	}
	return data, nil
}

func (s *socket) Write(ctx context.Context, b []byte) error {
	return s.ws.Write(ctx, websocket.MessageText, b)
}

// Close closes the WS connection normally
func (s *socket) Close(reason string) error {
	return s.ws.Close(websocket.StatusNormalClosure, reason)
}
