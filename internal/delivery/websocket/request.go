package websocket

const (
	CommandSubscribeChats    = "subscribe_chats"
	CommandSubscribeMessages = "subscribe_messages"
	CommandSubscribePending  = "subscribe_pending"
	CommandUnsubscribe       = "unsubscribe"
	CommandSendMessage       = "send_message"
)

// Command is a client frame. Id names a subscription so it can be released
// later; it defaults to the command type plus chat id.
type Command struct {
	Type   string `json:"type"`
	Id     string `json:"id,omitempty"`
	ChatId string `json:"chatId,omitempty"`
	Text   string `json:"text,omitempty"`
}

func (c Command) subscriptionId() string {
	if c.Id != "" {
		return c.Id
	}
	if c.ChatId != "" {
		return c.Type + ":" + c.ChatId
	}
	return c.Type
}
