package websocket

const (
	EventChats    = "chats"
	EventMessages = "messages"
	EventPending  = "pending"
	EventAck      = "ack"
	EventError    = "error"
)

// Event is a server frame. Snapshot events carry the full current list.
type Event struct {
	Type   string `json:"type"`
	Id     string `json:"id,omitempty"`
	ChatId string `json:"chatId,omitempty"`
	Data   any    `json:"data,omitempty"`
	Error  string `json:"error,omitempty"`
}
