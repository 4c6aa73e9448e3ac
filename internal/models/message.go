package models

import "time"

// Message is a chat or group message. Immutable once created; ordered by
// creation time ascending.
type Message struct {
	ID        string    `json:"id" db:"id"`
	ChatID    *string   `json:"chatId,omitempty" db:"chat_id"`   // Null for group messages
	GroupID   *string   `json:"groupId,omitempty" db:"group_id"` // Null for direct messages
	SenderID  string    `json:"senderId" db:"sender_id"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// MessageWithSender includes sender information
type MessageWithSender struct {
	ID        string       `json:"id"`
	ChatID    *string      `json:"chatId,omitempty"`
	GroupID   *string      `json:"groupId,omitempty"`
	Sender    UserResponse `json:"sender"`
	Content   string       `json:"content"`
	CreatedAt time.Time    `json:"createdAt"`
}
