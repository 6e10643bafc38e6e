package entity

import "time"

// Message is immutable once stored; it always lives under its chat.
type Message struct {
	Id        string    `json:"id"`
	ChatId    string    `json:"chatId"`
	SenderId  string    `json:"senderId"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

type SendMessageRequest struct {
	Text string `json:"text"`
}
