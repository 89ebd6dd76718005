package client

import (
	"encoding/json"
	"errors"
	"log"
	"strings"

	"github.com/cubie-app/chat/internal/models"
)

// Config describes one authenticated chat session.
type Config struct {
	// BaseURL is the gateway root, e.g. "http://localhost:8080".
	BaseURL  string
	Token    string
	Identity models.Identity
	// PageSize overrides the history page size; 0 means the default.
	PageSize int
}

// Session owns the whole chat subsystem for one user: the connection, the
// joined rooms, the active-group timeline, the notification backlog and the
// group directory. Consumers receive it by handle; there is no package-level
// shared state.
type Session struct {
	identity  models.Identity
	conn      *ConnManager
	rooms     *RoomTracker
	store     *MessageStore
	router    *NotificationRouter
	directory *GroupDirectory
}

// New wires a session together. It does not touch the network; call Connect.
func New(cfg Config) (*Session, error) {
	if cfg.Identity.UserID == 0 {
		return nil, errors.New("identity is required")
	}
	if cfg.BaseURL == "" || cfg.Token == "" {
		return nil, errors.New("base URL and token are required")
	}

	api := NewAPIClient(cfg.BaseURL, cfg.Token)
	conn := NewConnManager(wsURL(cfg.BaseURL, cfg.Token))

	s := &Session{
		identity: cfg.Identity,
		conn:     conn,
		rooms:    NewRoomTracker(conn.Send),
		store:    NewMessageStore(api, conn.Send, cfg.Identity.UserID, cfg.PageSize),
		router:   NewNotificationRouter(cfg.Identity.UserID, cfg.Identity.Settings),
	}
	s.directory = NewGroupDirectory(api, func(groups []models.GroupResponse) {
		s.rooms.Reconcile(groups)
	})

	conn.OnEvent(s.handleEvent)
	conn.OnUp(s.handleUp)
	return s, nil
}

func wsURL(baseURL, token string) string {
	ws := baseURL
	switch {
	case strings.HasPrefix(baseURL, "https://"):
		ws = "wss://" + strings.TrimPrefix(baseURL, "https://")
	case strings.HasPrefix(baseURL, "http://"):
		ws = "ws://" + strings.TrimPrefix(baseURL, "http://")
	}
	return ws + "/ws?token=" + token
}

// Connect dials the gateway; the directory refresh and room joins run as
// part of the connect hook, and again after every reconnect.
func (s *Session) Connect() error {
	return s.conn.Connect()
}

// Close tears the session down. Idempotent. History stays fetchable through
// the persistence API afterwards.
func (s *Session) Close() {
	s.conn.Close()
}

func (s *Session) handleUp() {
	if err := s.directory.Refresh(); err != nil {
		// Degraded start: no directory yet, so rejoin whatever we knew.
		log.Printf("Directory refresh on connect failed: %v", err)
		s.rooms.Rejoin()
		return
	}
	// Refresh fired Reconcile through onChange; rejoin covers rooms the
	// server forgot across the reconnect.
	s.rooms.Rejoin()
}

func (s *Session) handleEvent(eventType string, payload json.RawMessage) {
	switch eventType {
	case eventReceiveMessage:
		var msg models.MessageResponse
		if err := json.Unmarshal(payload, &msg); err != nil {
			log.Printf("Dropping malformed message frame: %v", err)
			return
		}
		forActive := s.store.ApplyLive(msg)
		s.directory.ApplyMessage(msg)
		if !forActive {
			s.router.Classify(msg, s.store.ActiveGroup(), s.directory.Groups())
		}
	case eventNotification:
		var n models.Notification
		if err := json.Unmarshal(payload, &n); err != nil {
			log.Printf("Dropping malformed notification frame: %v", err)
			return
		}
		s.router.Notify(n)
	case eventError:
		log.Printf("Gateway error frame: %s", string(payload))
	}
}

// Identity returns the session's bound identity.
func (s *Session) Identity() models.Identity {
	return s.identity
}

// Store exposes the active-group timeline.
func (s *Session) Store() *MessageStore {
	return s.store
}

// Notifications exposes the notification backlog.
func (s *Session) Notifications() *NotificationRouter {
	return s.router
}

// Directory exposes the group directory.
func (s *Session) Directory() *GroupDirectory {
	return s.directory
}

// Rooms exposes the room tracker.
func (s *Session) Rooms() *RoomTracker {
	return s.rooms
}

// SelectGroup switches the active chat view. 0 clears the selection.
func (s *Session) SelectGroup(groupID uint) {
	s.store.SelectGroup(groupID)
}

// Send dispatches a message to the active group.
func (s *Session) Send(content string) (string, error) {
	return s.store.Send(content)
}
