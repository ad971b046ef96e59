package carrier

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// writeTimeout bounds each outbound frame write; a stuck carrier socket must
// not stall the session workers.
const writeTimeout = 2 * time.Second

// Conn wraps a carrier WebSocket with JSON framing and serialized writes.
type Conn struct {
	ws *websocket.Conn
	mu sync.Mutex
}

// NewConn wraps an upgraded WebSocket connection.
func NewConn(ws *websocket.Conn) *Conn {
	return &Conn{ws: ws}
}

// ReadFrame blocks for the next inbound frame.
func (c *Conn) ReadFrame() (Frame, error) {
	var f Frame
	_, data, err := c.ws.ReadMessage()
	if err != nil {
		return f, err
	}
	if err = json.Unmarshal(data, &f); err != nil {
		return f, fmt.Errorf("decode carrier frame: %w", err)
	}
	return f, nil
}

// WriteFrame sends one frame, serialized against concurrent writers.
func (c *Conn) WriteFrame(f Frame) error {
	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode carrier frame: %w", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

// Close closes the underlying socket.
func (c *Conn) Close() error {
	return c.ws.Close()
}
