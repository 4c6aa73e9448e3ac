package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"talksy/server/internal/database"
	"talksy/server/internal/utils"
)

// Hub maintains the set of active clients and broadcasts messages
type Hub struct {
	// Registered clients mapped by user ID
	Clients map[string]*Client

	// Register requests from clients
	Register chan *Client

	// Unregister requests from clients
	Unregister chan *Client

	// Mutex for thread-safe operations
	mu sync.RWMutex

	// last_seen writes are coalesced: activity marks a user dirty and the
	// debouncer flushes all dirty rows in one pass.
	seenMu    sync.Mutex
	seenDirty map[string]time.Time
	seenFlush *utils.Debouncer
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	h := &Hub{
		Clients:    make(map[string]*Client),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		seenDirty:  make(map[string]time.Time),
	}
	h.seenFlush = utils.NewDebouncer(10*time.Second, h.flushLastSeen)
	return h
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.registerClient(client)
		case client := <-h.Unregister:
			h.unregisterClient(client)
		}
	}
}

// Shutdown flushes pending last_seen writes.
func (h *Hub) Shutdown() {
	h.seenFlush.Stop()
}

// attach records the client as its user's live connection. A reconnect
// supersedes the old connection: its send channel is closed here, but the
// stale client object keeps running until its read pump notices, so detach
// must recognize it and leave the new registration alone.
func (h *Hub) attach(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if existing, ok := h.Clients[client.ID]; ok {
		close(existing.Send)
	}

	h.Clients[client.ID] = client
}

// detach removes the client only if it is still the registered connection for
// its user. A superseded client detaching is a no-op: tearing down by ID alone
// would evict the live connection and close its channel twice.
func (h *Hub) detach(client *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	existing, ok := h.Clients[client.ID]
	if !ok || existing != client {
		return false
	}

	delete(h.Clients, client.ID)
	close(client.Send)
	return true
}

// registerClient adds a client to the hub
func (h *Hub) registerClient(client *Client) {
	h.attach(client)

	// Update user's online status in database
	_, err := database.Pool.Exec(context.Background(), `
		UPDATE users SET is_online = true, last_seen = $1 WHERE id = $2
	`, time.Now(), client.ID)

	if err != nil {
		log.Printf("Failed to update online status: %v", err)
	}

	// Broadcast user online status to their friends
	h.broadcastPresence(client.ID, true)

	log.Printf("Client connected: %s (%s)", client.Username, client.ID)
}

// unregisterClient removes a client from the hub
func (h *Hub) unregisterClient(client *Client) {
	if !h.detach(client) {
		// Superseded connection going away; the user is still online
		return
	}

	// Update user's offline status in database
	_, err := database.Pool.Exec(context.Background(), `
		UPDATE users SET is_online = false, last_seen = $1 WHERE id = $2
	`, time.Now(), client.ID)

	if err != nil {
		log.Printf("Failed to update offline status: %v", err)
	}

	// Broadcast user offline status to their friends
	h.broadcastPresence(client.ID, false)

	log.Printf("Client disconnected: %s (%s)", client.Username, client.ID)
}

// TouchLastSeen records activity for a connected user. The actual database
// write happens on the debounced flush.
func (h *Hub) TouchLastSeen(userID string) {
	h.seenMu.Lock()
	h.seenDirty[userID] = time.Now()
	h.seenMu.Unlock()

	h.seenFlush.Trigger()
}

func (h *Hub) flushLastSeen() {
	h.seenMu.Lock()
	dirty := h.seenDirty
	h.seenDirty = make(map[string]time.Time)
	h.seenMu.Unlock()

	for userID, seenAt := range dirty {
		_, err := database.Pool.Exec(context.Background(), `
			UPDATE users SET last_seen = $1 WHERE id = $2
		`, seenAt, userID)
		if err != nil {
			log.Printf("Failed to flush last_seen for %s: %v", userID, err)
		}
	}
}

// broadcastPresence sends user's online/offline status to their friends
func (h *Hub) broadcastPresence(userID string, isOnline bool) {
	// Get user's friends
	rows, err := database.Pool.Query(context.Background(), `
		SELECT friend_id FROM friendships WHERE user_id = $1
	`, userID)

	if err != nil {
		log.Printf("Failed to get friends: %v", err)
		return
	}
	defer rows.Close()

	var friendIDs []string
	for rows.Next() {
		var friendID string
		if err := rows.Scan(&friendID); err != nil {
			continue
		}
		friendIDs = append(friendIDs, friendID)
	}

	// Prepare presence message
	message := WSMessage{
		Type: EventUserOnline,
		Payload: PresencePayload{
			UserID:   userID,
			IsOnline: isOnline,
			LastSeen: time.Now(),
		},
		Timestamp: time.Now(),
	}

	if !isOnline {
		message.Type = EventUserOffline
	}

	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("Failed to marshal presence message: %v", err)
		return
	}

	// Send to each friend who is online
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, friendID := range friendIDs {
		if client, ok := h.Clients[friendID]; ok {
			select {
			case client.Send <- data:
			default:
				log.Printf("Failed to send presence to client: %s", friendID)
			}
		}
	}
}

// BroadcastToUser sends a message to a specific user
func (h *Hub) BroadcastToUser(userID string, message WSMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if client, ok := h.Clients[userID]; ok {
		data, err := json.Marshal(message)
		if err != nil {
			log.Printf("Failed to marshal message: %v", err)
			return
		}

		select {
		case client.Send <- data:
		default:
			log.Printf("Failed to send message to client: %s", userID)
		}
	}
}

// BroadcastToUsers sends a message to multiple users
func (h *Hub) BroadcastToUsers(userIDs []string, message WSMessage) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("Failed to marshal message: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, userID := range userIDs {
		if client, ok := h.Clients[userID]; ok {
			select {
			case client.Send <- data:
			default:
				log.Printf("Failed to send message to client: %s", userID)
			}
		}
	}
}

// BroadcastToGroup sends a message to all members of a group
func (h *Hub) BroadcastToGroup(groupID string, message WSMessage, excludeUserID string) {
	// Get group members
	rows, err := database.Pool.Query(context.Background(), `
		SELECT user_id FROM group_members WHERE group_id = $1
	`, groupID)

	if err != nil {
		log.Printf("Failed to get group members: %v", err)
		return
	}
	defer rows.Close()

	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("Failed to marshal message: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			continue
		}

		// Skip the sender
		if userID == excludeUserID {
			continue
		}

		if client, ok := h.Clients[userID]; ok {
			select {
			case client.Send <- data:
			default:
				log.Printf("Failed to send message to client: %s", userID)
			}
		}
	}
}

// IsUserOnline checks if a user is currently connected
func (h *Hub) IsUserOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	_, ok := h.Clients[userID]
	return ok
}

// GetOnlineUsers returns a list of currently online user IDs
func (h *Hub) GetOnlineUsers() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	userIDs := make([]string, 0, len(h.Clients))
	for userID := range h.Clients {
		userIDs = append(userIDs, userID)
	}

	return userIDs
}

// GetOnlineCount returns the number of currently connected clients
func (h *Hub) GetOnlineCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.Clients)
}
