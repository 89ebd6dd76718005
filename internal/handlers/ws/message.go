package ws

import (
	"encoding/json"

	"github.com/cubie-app/chat/internal/service"
)

// MessageContext provides all dependencies needed for message processing
type MessageContext struct {
	UserID         uint
	Client         *ClientConnection
	Hub            *Hub
	MessageService *service.MessageService
	GroupService   *service.GroupService
}

// Message interface for all WebSocket message types
type Message interface {
	GetType() string
	Process(ctx *MessageContext) error
}

// SerializedMessage is the wire format wrapper
type SerializedMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// ErrorResponse is sent when message processing fails
type ErrorResponse struct {
	Type    string `json:"type"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

// Serialize wraps a message in the wire envelope.
func Serialize(msg Message) ([]byte, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	return json.Marshal(SerializedMessage{Type: msg.GetType(), Payload: payload})
}

// Deserialize decodes a wire frame into its registered message type.
func Deserialize(data []byte) (Message, error) {
	var wrapper SerializedMessage
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil, err
	}

	msg, err := createMessage(wrapper.Type)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(wrapper.Payload, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// SendError sends an error response to the client. The write goes through
// the client handle so it never races a hub push on the same connection.
func SendError(client *ClientConnection, code, message, details string) error {
	return client.WriteJSON(ErrorResponse{
		Type:    "error",
		Error:   message,
		Code:    code,
		Details: details,
	})
}

// Envelope builds an outbound push frame.
func Envelope(msgType string, payload interface{}) map[string]interface{} {
	return map[string]interface{}{
		"type":    msgType,
		"payload": payload,
	}
}
