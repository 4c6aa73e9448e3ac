package websocket

import (
	"time"

	"talksy/server/internal/models"
)

// EventType represents different WebSocket event types
type EventType string

const (
	// Connection events
	EventConnect    EventType = "connect"
	EventDisconnect EventType = "disconnect"

	// Direct message events
	EventMessageSent     EventType = "message_sent"
	EventMessageReceived EventType = "message_received"

	// Group message events
	EventGroupMessageSent     EventType = "group_message_sent"
	EventGroupMessageReceived EventType = "group_message_received"

	// Friend request events
	EventFriendRequestReceived EventType = "friend_request_received"
	EventFriendRequestUpdated  EventType = "friend_request_updated"

	// Typing events
	EventTypingStart EventType = "typing_start"
	EventTypingStop  EventType = "typing_stop"

	// Presence events
	EventUserOnline  EventType = "user_online"
	EventUserOffline EventType = "user_offline"

	// Error events
	EventError EventType = "error"
)

// WSMessage represents a WebSocket message structure
type WSMessage struct {
	Type      EventType   `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// MessagePayload represents direct message event payload
type MessagePayload struct {
	ID        string    `json:"id"`
	ChatID    string    `json:"chatId"`
	SenderID  string    `json:"senderId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// GroupMessagePayload represents group message event payload
type GroupMessagePayload struct {
	ID        string    `json:"id"`
	GroupID   string    `json:"groupId"`
	SenderID  string    `json:"senderId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// FriendRequestPayload represents friend request lifecycle payload
type FriendRequestPayload struct {
	RequestID string               `json:"requestId"`
	FromID    string               `json:"fromId"`
	ToID      string               `json:"toId"`
	Status    models.RequestStatus `json:"status"`
}

// TypingPayload represents typing indicator payload
type TypingPayload struct {
	UserID  string `json:"userId"`
	ChatID  string `json:"chatId,omitempty"`
	GroupID string `json:"groupId,omitempty"`
}

// PresencePayload represents user presence payload
type PresencePayload struct {
	UserID   string    `json:"userId"`
	IsOnline bool      `json:"isOnline"`
	LastSeen time.Time `json:"lastSeen,omitempty"`
}

// ErrorPayload represents error event payload
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// IncomingMessage represents messages received from clients
type IncomingMessage struct {
	Type    EventType              `json:"type"`
	Payload map[string]interface{} `json:"payload"`
}
