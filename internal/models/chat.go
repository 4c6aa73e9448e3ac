package models

import "time"

// Chat is a two-party conversation. Its ID is the canonical sorted pair key,
// identical no matter which participant created it.
type Chat struct {
	ID        string    `json:"id" db:"id"`
	UserA     string    `json:"userA" db:"user_a"`
	UserB     string    `json:"userB" db:"user_b"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// ChatListItem is a chat as seen by one participant.
type ChatListItem struct {
	ID          string       `json:"id"`
	Peer        UserResponse `json:"peer"`
	LastMessage *struct {
		Content   string    `json:"content"`
		SenderID  string    `json:"senderId"`
		CreatedAt time.Time `json:"createdAt"`
	} `json:"lastMessage,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
