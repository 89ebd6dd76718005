package ws

import (
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
)

var ErrNotConnected = errors.New("user is not connected")

// ClientConnection wraps a WebSocket connection with metadata
type ClientConnection struct {
	Conn       *websocket.Conn
	UserID     uint
	LastPong   time.Time
	PingTicker *time.Ticker
	CloseChan  chan struct{}

	// Serializes writes; the hub and the ping routine both write.
	writeMux sync.Mutex
}

func (c *ClientConnection) write(frameType int, data []byte) error {
	c.writeMux.Lock()
	defer c.writeMux.Unlock()
	return c.Conn.WriteMessage(frameType, data)
}

// WriteJSON sends a data frame through the same mutex as hub pushes. Handler
// replies must use this, never the raw conn.
func (c *ClientConnection) WriteJSON(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.write(websocket.TextMessage, data)
}

// Hub manages all active WebSocket connections and the group rooms they have
// joined. Delivery is best-effort to currently connected members.
type Hub struct {
	clients    map[uint]*ClientConnection
	clientsMux sync.RWMutex

	// rooms maps group id -> joined user ids; userRooms is the inverse.
	rooms    map[uint]map[uint]struct{}
	userRoom map[uint]map[uint]struct{}
	roomsMux sync.RWMutex

	pingInterval time.Duration
	pongTimeout  time.Duration
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	hub := &Hub{
		clients:      make(map[uint]*ClientConnection),
		rooms:        make(map[uint]map[uint]struct{}),
		userRoom:     make(map[uint]map[uint]struct{}),
		pingInterval: 30 * time.Second,
		pongTimeout:  90 * time.Second,
	}

	go hub.connectionHealthChecker()

	return hub
}

// Register adds a client connection with health monitoring. A second
// connection for the same user replaces the first. The returned handle must
// be passed back to Unregister so a stale handler unwinding late cannot tear
// down the replacement.
func (h *Hub) Register(userID uint, conn *websocket.Conn) *ClientConnection {
	clientConn := &ClientConnection{
		Conn:       conn,
		UserID:     userID,
		LastPong:   time.Now(),
		PingTicker: time.NewTicker(h.pingInterval),
		CloseChan:  make(chan struct{}),
	}

	conn.SetPongHandler(func(appData string) error {
		h.clientsMux.Lock()
		clientConn.LastPong = time.Now()
		h.clientsMux.Unlock()
		return nil
	})

	conn.SetReadDeadline(time.Now().Add(h.pongTimeout))

	h.clientsMux.Lock()
	if prev, exists := h.clients[userID]; exists {
		prev.PingTicker.Stop()
		close(prev.CloseChan)
		prev.Conn.Close()
	}
	h.clients[userID] = clientConn
	h.clientsMux.Unlock()

	go h.pingRoutine(clientConn)

	log.Printf("User %d connected to hub (total: %d)", userID, h.Count())
	return clientConn
}

// Unregister removes a client connection and its room joins. A no-op when
// the registered connection is a different instance: the caller was already
// replaced and the replacement's state must survive.
func (h *Hub) Unregister(client *ClientConnection) {
	h.clientsMux.Lock()
	current, exists := h.clients[client.UserID]
	if !exists || current != client {
		h.clientsMux.Unlock()
		return
	}
	if client.PingTicker != nil {
		client.PingTicker.Stop()
	}
	close(client.CloseChan)
	delete(h.clients, client.UserID)
	count := len(h.clients)
	h.clientsMux.Unlock()

	h.LeaveAllRooms(client.UserID)
	log.Printf("User %d disconnected from hub (total: %d)", client.UserID, count)
}

// JoinRoom subscribes a user to a group room. Re-joining is a no-op.
func (h *Hub) JoinRoom(groupID, userID uint) {
	h.roomsMux.Lock()
	defer h.roomsMux.Unlock()

	if h.rooms[groupID] == nil {
		h.rooms[groupID] = make(map[uint]struct{})
	}
	h.rooms[groupID][userID] = struct{}{}

	if h.userRoom[userID] == nil {
		h.userRoom[userID] = make(map[uint]struct{})
	}
	h.userRoom[userID][groupID] = struct{}{}
}

// LeaveRoom unsubscribes a user from a group room
func (h *Hub) LeaveRoom(groupID, userID uint) {
	h.roomsMux.Lock()
	defer h.roomsMux.Unlock()

	if members, ok := h.rooms[groupID]; ok {
		delete(members, userID)
		if len(members) == 0 {
			delete(h.rooms, groupID)
		}
	}
	if rooms, ok := h.userRoom[userID]; ok {
		delete(rooms, groupID)
		if len(rooms) == 0 {
			delete(h.userRoom, userID)
		}
	}
}

// LeaveAllRooms drops every room join of a user
func (h *Hub) LeaveAllRooms(userID uint) {
	h.roomsMux.Lock()
	rooms := make([]uint, 0, len(h.userRoom[userID]))
	for groupID := range h.userRoom[userID] {
		rooms = append(rooms, groupID)
	}
	h.roomsMux.Unlock()

	for _, groupID := range rooms {
		h.LeaveRoom(groupID, userID)
	}
}

// RoomMembers returns the user ids currently joined to a room
func (h *Hub) RoomMembers(groupID uint) []uint {
	h.roomsMux.RLock()
	defer h.roomsMux.RUnlock()

	members := make([]uint, 0, len(h.rooms[groupID]))
	for userID := range h.rooms[groupID] {
		members = append(members, userID)
	}
	return members
}

// InRoom reports whether a user has joined a room
func (h *Hub) InRoom(groupID, userID uint) bool {
	h.roomsMux.RLock()
	defer h.roomsMux.RUnlock()
	_, ok := h.rooms[groupID][userID]
	return ok
}

// IsOnline checks if a user is connected
func (h *Hub) IsOnline(userID uint) bool {
	h.clientsMux.RLock()
	defer h.clientsMux.RUnlock()
	_, exists := h.clients[userID]
	return exists
}

// SendToUser sends data to a specific user
func (h *Hub) SendToUser(userID uint, data interface{}) error {
	h.clientsMux.RLock()
	clientConn, exists := h.clients[userID]
	h.clientsMux.RUnlock()

	if !exists {
		return ErrNotConnected
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		log.Printf("Error marshaling data for user %d: %v", userID, err)
		return err
	}

	if err := clientConn.write(websocket.TextMessage, jsonData); err != nil {
		log.Printf("Error sending message to user %d: %v", userID, err)
		h.Unregister(clientConn)
		return err
	}

	return nil
}

// BroadcastToRoom sends data to every user joined to a group room, the
// sender included.
func (h *Hub) BroadcastToRoom(groupID uint, data interface{}) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		log.Printf("Error marshaling room broadcast: %v", err)
		return
	}

	members := h.RoomMembers(groupID)

	h.clientsMux.RLock()
	conns := make([]*ClientConnection, 0, len(members))
	for _, userID := range members {
		if clientConn, exists := h.clients[userID]; exists {
			conns = append(conns, clientConn)
		}
	}
	h.clientsMux.RUnlock()

	for _, clientConn := range conns {
		if err := clientConn.write(websocket.TextMessage, jsonData); err != nil {
			log.Printf("Error broadcasting to user %d: %v", clientConn.UserID, err)
			h.Unregister(clientConn)
		}
	}
}

// Count returns the number of connected clients
func (h *Hub) Count() int {
	h.clientsMux.RLock()
	defer h.clientsMux.RUnlock()
	return len(h.clients)
}

// pingRoutine sends periodic ping messages to keep connection alive
func (h *Hub) pingRoutine(client *ClientConnection) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Ping routine recovered from panic for user %d: %v", client.UserID, r)
		}
	}()

	for {
		select {
		case <-client.CloseChan:
			return
		case <-client.PingTicker.C:
			h.clientsMux.RLock()
			current, exists := h.clients[client.UserID]
			h.clientsMux.RUnlock()

			if !exists || current != client {
				return
			}

			if err := client.Conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(10*time.Second)); err != nil {
				log.Printf("Ping failed for user %d: %v", client.UserID, err)
				h.Unregister(client)
				return
			}
		}
	}
}

// connectionHealthChecker monitors connection health and removes dead connections
func (h *Hub) connectionHealthChecker() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		h.clientsMux.RLock()
		deadConnections := make([]*ClientConnection, 0)
		now := time.Now()

		for _, client := range h.clients {
			if now.Sub(client.LastPong) > h.pongTimeout {
				deadConnections = append(deadConnections, client)
			}
		}
		h.clientsMux.RUnlock()

		for _, client := range deadConnections {
			log.Printf("Removing dead connection for user %d (no pong received)", client.UserID)
			h.Unregister(client)
		}
	}
}
