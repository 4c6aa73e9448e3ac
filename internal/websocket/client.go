package websocket

import (
	"encoding/json"
	"log"
	"time"

	"talksy/server/internal/utils"

	"github.com/gofiber/contrib/websocket"
)

// Client represents a WebSocket client connection
type Client struct {
	ID       string // User ID
	Username string
	Conn     *websocket.Conn
	Hub      *Hub
	Send     chan []byte
}

// NewClient creates a new WebSocket client
func NewClient(userID, username string, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		ID:       userID,
		Username: username,
		Conn:     conn,
		Hub:      hub,
		Send:     make(chan []byte, 256),
	}
}

// ReadPump handles incoming messages from the client
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		// Any client frame counts as activity
		c.Hub.TouchLastSeen(c.ID)

		// Parse incoming message
		var incoming IncomingMessage
		if err := json.Unmarshal(message, &incoming); err != nil {
			log.Printf("Failed to parse message: %v", err)
			continue
		}

		// Handle different event types
		c.handleIncomingMessage(incoming)
	}
}

// WritePump handles outgoing messages to the client
func (c *Client) WritePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("Write error: %v", err)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleIncomingMessage processes different types of incoming messages
func (c *Client) handleIncomingMessage(msg IncomingMessage) {
	switch msg.Type {
	case EventTypingStart:
		c.relayTyping(EventTypingStart, msg.Payload)
	case EventTypingStop:
		c.relayTyping(EventTypingStop, msg.Payload)
	default:
		log.Printf("Unknown message type: %s", msg.Type)
	}
}

// relayTyping forwards a typing indicator to the chat peer or group members.
func (c *Client) relayTyping(event EventType, payload map[string]interface{}) {
	chatID, _ := payload["chatId"].(string)
	groupID, _ := payload["groupId"].(string)

	message := WSMessage{
		Type: event,
		Payload: TypingPayload{
			UserID:  c.ID,
			ChatID:  chatID,
			GroupID: groupID,
		},
		Timestamp: time.Now(),
	}

	if groupID != "" {
		c.Hub.BroadcastToGroup(groupID, message, c.ID)
		return
	}

	if chatID != "" {
		// The chat key holds both participants; the peer is whichever is not us.
		a, b, ok := utils.ChatParticipants(chatID)
		if !ok {
			return
		}
		peer := a
		if peer == c.ID {
			peer = b
		}
		c.Hub.BroadcastToUser(peer, message)
	}
}
