package handlers

import (
	"log"

	"github.com/gofiber/websocket/v2"

	"github.com/cubie-app/chat/internal/handlers/ws"
	"github.com/cubie-app/chat/internal/service"
)

type WebSocketHandler struct {
	messageService *service.MessageService
	groupService   *service.GroupService
	hub            *ws.Hub
}

func NewWebSocketHandler(messageService *service.MessageService, groupService *service.GroupService) *WebSocketHandler {
	return &WebSocketHandler{
		messageService: messageService,
		groupService:   groupService,
		hub:            ws.NewHub(),
	}
}

// GetHub returns the hub instance (useful for sending messages from other handlers)
func (h *WebSocketHandler) GetHub() *ws.Hub {
	return h.hub
}

func (h *WebSocketHandler) HandleWebSocket(c *websocket.Conn) {
	userID := c.Locals("userID").(uint)

	client := h.hub.Register(userID, c)

	// Unregister by handle; if this connection was replaced by a newer one,
	// the late unwind here must not tear the replacement down.
	defer h.hub.Unregister(client)

	log.Printf("User %d connected via WebSocket", userID)

	ctx := &ws.MessageContext{
		UserID:         userID,
		Client:         client,
		Hub:            h.hub,
		MessageService: h.messageService,
		GroupService:   h.groupService,
	}

	for {
		_, messageBytes, err := c.ReadMessage()
		if err != nil {
			log.Printf("Error reading message from user %d: %v", userID, err)
			break
		}

		msg, err := ws.Deserialize(messageBytes)
		if err != nil {
			log.Printf("Error deserializing message from user %d: %v", userID, err)
			ws.SendError(client, "invalid_message", "Invalid message format", err.Error())
			continue
		}

		if err := msg.Process(ctx); err != nil {
			log.Printf("Error processing message %s from user %d: %v", msg.GetType(), userID, err)
			ws.SendError(client, "processing_failed", "Failed to process message", err.Error())
		}
	}

	log.Printf("User %d disconnected from WebSocket", userID)
}
