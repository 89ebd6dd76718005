package ws

import (
	"errors"
	"log"

	"github.com/cubie-app/chat/internal/service"
)

const (
	MsgJoinGroup      = "join-group"
	MsgLeaveGroup     = "leave-group"
	MsgSendMessage    = "send-message"
	MsgReceiveMessage = "receive-message"
	MsgNotification   = "notification"
)

// JoinGroup subscribes the sender to a group room. Membership is checked so
// a removed member cannot rejoin and keep receiving messages.
type JoinGroup struct {
	GroupID uint `json:"group_id"`
}

func (msg *JoinGroup) GetType() string {
	return MsgJoinGroup
}

func (msg *JoinGroup) Process(ctx *MessageContext) error {
	isMember, err := ctx.GroupService.IsMember(msg.GroupID, ctx.UserID)
	if err != nil {
		return err
	}
	if !isMember {
		return service.ErrNotMember
	}

	ctx.Hub.JoinRoom(msg.GroupID, ctx.UserID)
	return nil
}

// LeaveGroup unsubscribes the sender from a group room.
type LeaveGroup struct {
	GroupID uint `json:"group_id"`
}

func (msg *LeaveGroup) GetType() string {
	return MsgLeaveGroup
}

func (msg *LeaveGroup) Process(ctx *MessageContext) error {
	ctx.Hub.LeaveRoom(msg.GroupID, ctx.UserID)
	return nil
}

// SendMessage persists a group message and fans it out to the room. The
// sender receives the echo too; clients append on echo rather than
// optimistically.
type SendMessage struct {
	ClientID string `json:"client_id"`
	GroupID  uint   `json:"group_id"`
	Content  string `json:"content"`
}

func (msg *SendMessage) GetType() string {
	return MsgSendMessage
}

func (msg *SendMessage) Process(ctx *MessageContext) error {
	saved, err := ctx.MessageService.SendGroupMessage(ctx.UserID, msg.ClientID, msg.GroupID, msg.Content)
	if err != nil {
		if errors.Is(err, service.ErrNotMember) || errors.Is(err, service.ErrInvalidContent) {
			return err
		}
		log.Printf("Failed to persist message from user %d: %v", ctx.UserID, err)
		return err
	}

	ctx.Hub.BroadcastToRoom(msg.GroupID, Envelope(MsgReceiveMessage, saved.ToResponse()))

	// Keep last-message previews fresh for every member's directory.
	ctx.GroupService.TouchGroup(msg.GroupID)
	return nil
}
