// Package debugger owns the websocket connection to the Steam client's
// remote-debugging endpoint and sends fire-and-forget CDP commands
// over it, reconnecting through discovery when a send fails.
package debugger

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/gorilla/websocket"

	"github.com/steampatch/steampatchd/internal/discovery"
)

// Message is one outgoing CDP command. Commands are fire-and-forget:
// no response correlation, so the id stays constant.
type Message struct {
	ID     int     `json:"id"`
	Method string  `json:"method"`
	Params *Params `json:"params,omitempty"`
}

type Params struct {
	Expression string `json:"expression"`
}

const messageID = 1

// sendRetries bounds the total send attempts per message; each failed
// attempt costs at most one discovery timeout for the reconnect.
const sendRetries = 3

// Conn is the slice of a websocket connection the manager uses.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// DialFunc opens a socket to a debugger endpoint URL.
type DialFunc func(ctx context.Context, url string) (Conn, error)

func defaultDial(ctx context.Context, url string) (Conn, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// Manager holds at most one live connection to the current debug
// target. The connection is exclusively owned: it is replaced wholesale
// on reconnect and all sends are serialized by the single caller that
// drives the patch cycles.
type Manager struct {
	discovery *discovery.Client
	dial      DialFunc
	conn      Conn
}

func NewManager(d *discovery.Client) *Manager {
	return &Manager{
		discovery: d,
		dial:      defaultDial,
	}
}

// Connect discovers the current debug target and opens a fresh socket
// to it, replacing and closing any previously held connection. On
// failure the previous connection (if any) is kept and the error is
// returned; callers treat it as "target not reachable, skip this cycle".
func (m *Manager) Connect(ctx context.Context) error {
	url, err := m.discovery.Discover(ctx)
	if err != nil {
		return fmt.Errorf("debug target discovery failed: %w", err)
	}

	conn, err := m.dial(ctx, url)
	if err != nil {
		return fmt.Errorf("failed to open debugger socket: %w", err)
	}

	if m.conn != nil {
		m.conn.Close()
	}
	m.conn = conn
	slog.Info("Connected to debugger", "endpoint", url)
	return nil
}

// Connected reports whether the manager currently holds a connection.
// The connection may still be broken; sends discover that and reconnect.
func (m *Manager) Connected() bool {
	return m.conn != nil
}

// Close releases the held connection, if any.
func (m *Manager) Close() {
	if m.conn != nil {
		m.conn.Close()
		m.conn = nil
	}
}

// Reload asks the target page context to reload itself.
func (m *Manager) Reload(ctx context.Context) {
	m.send(ctx, Message{ID: messageID, Method: "Page.reload"})
}

// Evaluate runs a script source string inside the target context.
func (m *Manager) Evaluate(ctx context.Context, js string) {
	m.send(ctx, Message{
		ID:     messageID,
		Method: "Runtime.evaluate",
		Params: &Params{Expression: js},
	})
}

// send writes one text frame to the target, retrying with a fresh
// connection on failure. After sendRetries failed attempts the message
// is dropped; delivery is best-effort and nothing is surfaced to the
// caller beyond the logged warnings.
func (m *Manager) send(ctx context.Context, msg Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		slog.Error(fmt.Sprintf("Failed to encode %s command: %v", msg.Method, err))
		return
	}

	for remaining := sendRetries; remaining > 0; remaining-- {
		if m.conn != nil {
			if err := m.conn.WriteMessage(websocket.TextMessage, payload); err == nil {
				return
			}
			slog.Warn("Couldn't send command to debugger, reconnecting", "method", msg.Method)
		}

		// Get a fresh endpoint and socket. If discovery or dialing
		// fails we hold on to the old (presumably broken) connection
		// and burn another attempt on it.
		if err := m.Connect(ctx); err != nil {
			slog.Warn("Still can't reach the debugger", "error", err)
		}
	}

	slog.Warn("Dropping command after repeated send failures", "method", msg.Method, "attempts", sendRetries)
}
