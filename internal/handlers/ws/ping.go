package ws

// MessagePing is a text-frame keepalive for clients that cannot observe
// control-frame pings.
type MessagePing struct{}

func (msg *MessagePing) GetType() string {
	return "ping"
}

func (msg *MessagePing) Process(ctx *MessageContext) error {
	return ctx.Client.WriteJSON(map[string]string{"type": "pong"})
}

// MessagePong acknowledges a server ping; clients may send it to track
// latency.
type MessagePong struct{}

func (msg *MessagePong) GetType() string {
	return "pong"
}

func (msg *MessagePong) Process(ctx *MessageContext) error {
	return nil
}
