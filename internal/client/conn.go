package client

import (
	"encoding/json"
	"log"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/fasthttp/websocket"
)

// Wire event names shared with the gateway.
const (
	eventJoinGroup      = "join-group"
	eventLeaveGroup     = "leave-group"
	eventSendMessage    = "send-message"
	eventReceiveMessage = "receive-message"
	eventNotification   = "notification"
	eventError          = "error"
)

// Envelope is the wire format for every realtime frame.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type ConnState string

const (
	StateDisconnected ConnState = "disconnected"
	StateConnected    ConnState = "connected"
	StateReconnecting ConnState = "reconnecting"
)

// reconnector tracks exponential backoff with jitter. The attempt counter
// resets after a connection has stayed up for a minute.
type reconnector struct {
	baseDelay   time.Duration
	maxDelay    time.Duration
	maxAttempts int
	attempt     int
	connectedAt time.Time
}

func newReconnector() *reconnector {
	return &reconnector{
		baseDelay:   time.Second,
		maxDelay:    30 * time.Second,
		maxAttempts: 10,
	}
}

func (r *reconnector) shouldReconnect() bool {
	return r.maxAttempts == 0 || r.attempt < r.maxAttempts
}

func (r *reconnector) markConnected() {
	r.connectedAt = time.Now()
}

func (r *reconnector) nextDelay() time.Duration {
	if !r.connectedAt.IsZero() && time.Since(r.connectedAt) > 60*time.Second {
		r.attempt = 0
	}
	jitter := time.Duration(rand.Float64() * float64(r.baseDelay) * 0.5)
	delay := time.Duration(math.Min(
		float64(r.baseDelay)*math.Pow(2, float64(r.attempt))+float64(jitter),
		float64(r.maxDelay),
	))
	r.attempt++
	return delay
}

// EnvelopeHandler receives every inbound frame.
type EnvelopeHandler func(eventType string, payload json.RawMessage)

// ConnManager owns the single realtime connection of a session. Sends are
// fire-and-forget; connection loss degrades the session to "no live updates"
// while the reconnect loop runs.
type ConnManager struct {
	wsURL string

	mu       sync.Mutex
	writeMux sync.Mutex
	conn     *websocket.Conn
	state    ConnState
	closed   bool
	dialing  bool

	handler EnvelopeHandler
	onUp    func()
	recon   *reconnector
}

func NewConnManager(wsURL string) *ConnManager {
	return &ConnManager{
		wsURL: wsURL,
		state: StateDisconnected,
		recon: newReconnector(),
	}
}

// OnEvent sets the inbound frame handler. Must be called before Connect.
func (m *ConnManager) OnEvent(h EnvelopeHandler) {
	m.handler = h
}

// OnUp sets the hook invoked after every successful (re)connect, before any
// frame is dispatched. Used to refresh the directory and rejoin rooms.
func (m *ConnManager) OnUp(f func()) {
	m.onUp = f
}

// Connect dials the gateway and starts the read pump. Calling Connect on a
// live connection, or while another Connect is dialing, is a no-op.
func (m *ConnManager) Connect() error {
	m.mu.Lock()
	if m.conn != nil || m.dialing {
		m.mu.Unlock()
		return nil
	}
	m.dialing = true
	m.closed = false
	m.mu.Unlock()

	conn, _, err := websocket.DefaultDialer.Dial(m.wsURL, nil)

	m.mu.Lock()
	m.dialing = false
	if err != nil {
		m.mu.Unlock()
		return err
	}
	if m.closed {
		m.mu.Unlock()
		conn.Close()
		return nil
	}
	m.conn = conn
	m.state = StateConnected
	m.mu.Unlock()
	m.recon.markConnected()

	if m.onUp != nil {
		m.onUp()
	}
	go m.readPump(conn)
	return nil
}

func (m *ConnManager) readPump(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			log.Printf("Dropping malformed frame: %v", err)
			continue
		}
		if env.Type == "pong" {
			continue
		}
		if m.handler != nil {
			m.handler(env.Type, env.Payload)
		}
	}

	m.mu.Lock()
	if m.conn == conn {
		m.conn = nil
	}
	closed := m.closed
	if !closed {
		m.state = StateReconnecting
	}
	m.mu.Unlock()

	if !closed {
		m.reconnectLoop()
	}
}

func (m *ConnManager) reconnectLoop() {
	for m.recon.shouldReconnect() {
		delay := m.recon.nextDelay()
		log.Printf("Realtime connection lost, retrying in %s", delay)
		time.Sleep(delay)

		m.mu.Lock()
		if m.closed || m.conn != nil {
			m.mu.Unlock()
			return
		}
		m.mu.Unlock()

		conn, _, err := websocket.DefaultDialer.Dial(m.wsURL, nil)
		if err != nil {
			continue
		}

		m.mu.Lock()
		// Close may have raced the dial.
		if m.closed || m.conn != nil {
			m.mu.Unlock()
			conn.Close()
			return
		}
		m.conn = conn
		m.state = StateConnected
		m.mu.Unlock()
		m.recon.markConnected()

		if m.onUp != nil {
			m.onUp()
		}
		go m.readPump(conn)
		return
	}

	m.mu.Lock()
	m.state = StateDisconnected
	m.mu.Unlock()
	log.Printf("Realtime connection abandoned after %d attempts; history remains available", m.recon.attempt)
}

// Send writes a frame. Failures are logged, never returned; delivery is
// best-effort and the caller must not depend on it.
func (m *ConnManager) Send(eventType string, payload interface{}) {
	m.mu.Lock()
	conn := m.conn
	m.mu.Unlock()

	if conn == nil {
		log.Printf("Dropping %s frame: not connected", eventType)
		return
	}

	data, err := json.Marshal(map[string]interface{}{
		"type":    eventType,
		"payload": payload,
	})
	if err != nil {
		log.Printf("Error marshaling %s frame: %v", eventType, err)
		return
	}

	m.writeMux.Lock()
	err = conn.WriteMessage(websocket.TextMessage, data)
	m.writeMux.Unlock()
	if err != nil {
		log.Printf("Error sending %s frame: %v", eventType, err)
		// Force the read pump to notice and drive the reconnect.
		conn.Close()
	}
}

// State returns the current connection state.
func (m *ConnManager) State() ConnState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Close tears the connection down. Idempotent; no reconnect follows.
func (m *ConnManager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	m.state = StateDisconnected
	if m.conn != nil {
		m.conn.Close()
		m.conn = nil
	}
}
