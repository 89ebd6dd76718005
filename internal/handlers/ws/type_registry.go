package ws

import (
	"fmt"
	"reflect"
)

var typeRegistry = map[string]reflect.Type{}

func init() {
	// Register all message types
	RegisterType(&JoinGroup{})
	RegisterType(&LeaveGroup{})
	RegisterType(&SendMessage{})
	RegisterType(&MessagePing{})
	RegisterType(&MessagePong{})
}

func RegisterType(msg Message) {
	typeRegistry[msg.GetType()] = reflect.TypeOf(msg).Elem()
}

// createMessage builds a zero value of the registered type for a frame.
func createMessage(msgType string) (Message, error) {
	rt, ok := typeRegistry[msgType]
	if !ok {
		return nil, fmt.Errorf("unknown message type: %s", msgType)
	}
	return reflect.New(rt).Interface().(Message), nil
}
