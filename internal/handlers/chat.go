package handlers

import (
	"context"
	"strconv"
	"time"

	"talksy/server/internal/database"
	"talksy/server/internal/models"
	"talksy/server/internal/utils"
	ws "talksy/server/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
)

// SendChatMessageRequest represents direct message body
type SendChatMessageRequest struct {
	Content string `json:"content"`
}

// ensureChat upserts the conversation record for a pair of users and returns
// its canonical id. ON CONFLICT DO NOTHING gives merge semantics: an existing
// record, including its creation timestamp, is never clobbered. Idempotent.
func ensureChat(ctx context.Context, tx pgx.Tx, userA, userB string) (string, error) {
	chatID := utils.DeriveChatID(userA, userB)
	if userA > userB {
		userA, userB = userB, userA
	}

	_, err := tx.Exec(ctx, `
		INSERT INTO chats (id, user_a, user_b, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING
	`, chatID, userA, userB, time.Now())

	return chatID, err
}

// GetChats returns the caller's conversations with peer info and last message
func GetChats(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	rows, err := database.Pool.Query(context.Background(), `
		SELECT
			ch.id, ch.created_at,
			u.id, u.username, u.email, u.name, u.about, u.phone, u.avatar, u.is_online, u.last_seen, u.created_at,
			m.content, m.sender_id, m.created_at
		FROM chats ch
		INNER JOIN users u ON u.id = CASE WHEN ch.user_a = $1 THEN ch.user_b ELSE ch.user_a END
		LEFT JOIN LATERAL (
			SELECT content, sender_id, created_at
			FROM messages
			WHERE chat_id = ch.id
			ORDER BY created_at DESC
			LIMIT 1
		) m ON TRUE
		WHERE ch.user_a = $1 OR ch.user_b = $1
		ORDER BY m.created_at DESC NULLS LAST
	`, userID)

	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Database error",
		})
	}
	defer rows.Close()

	var chats []models.ChatListItem

	for rows.Next() {
		var item models.ChatListItem
		var peer models.User
		var lastContent, lastSender *string
		var lastAt *time.Time

		err := rows.Scan(
			&item.ID, &item.CreatedAt,
			&peer.ID, &peer.Username, &peer.Email, &peer.Name, &peer.About, &peer.Phone,
			&peer.Avatar, &peer.IsOnline, &peer.LastSeen, &peer.CreatedAt,
			&lastContent, &lastSender, &lastAt,
		)

		if err != nil {
			continue
		}

		item.Peer = peer.ToResponse()

		if lastContent != nil && lastSender != nil && lastAt != nil {
			item.LastMessage = &struct {
				Content   string    `json:"content"`
				SenderID  string    `json:"senderId"`
				CreatedAt time.Time `json:"createdAt"`
			}{
				Content:   *lastContent,
				SenderID:  *lastSender,
				CreatedAt: *lastAt,
			}
		}

		chats = append(chats, item)
	}

	if chats == nil {
		chats = []models.ChatListItem{}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    chats,
	})
}

// SendChatMessage sends a direct message to another user. The conversation is
// created lazily on first contact; upsert and insert run in one transaction.
func SendChatMessage(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	peerID := c.Params("userId")

	var req SendChatMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	if req.Content == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Message content is required",
		})
	}

	if peerID == userID {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "You cannot message yourself",
		})
	}

	// Check if peer exists
	var peerExists bool
	err := database.Pool.QueryRow(context.Background(), "SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)", peerID).Scan(&peerExists)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Database error",
		})
	}

	if !peerExists {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "Recipient not found",
		})
	}

	tx, err := database.Pool.Begin(context.Background())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Database error",
		})
	}
	defer tx.Rollback(context.Background())

	chatID, err := ensureChat(context.Background(), tx, userID, peerID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to create chat",
		})
	}

	var message models.Message
	err = tx.QueryRow(context.Background(), `
		INSERT INTO messages (chat_id, sender_id, content, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, chat_id, sender_id, content, created_at
	`, chatID, userID, req.Content, time.Now()).
		Scan(&message.ID, &message.ChatID, &message.SenderID, &message.Content, &message.CreatedAt)

	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to send message",
		})
	}

	if err := tx.Commit(context.Background()); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to commit transaction",
		})
	}

	// Push through the live subscription channel
	if WSHub != nil {
		payload := ws.MessagePayload{
			ID:        message.ID,
			ChatID:    chatID,
			SenderID:  message.SenderID,
			Content:   message.Content,
			CreatedAt: message.CreatedAt,
		}

		WSHub.BroadcastToUser(peerID, ws.WSMessage{
			Type:      ws.EventMessageReceived,
			Payload:   payload,
			Timestamp: time.Now(),
		})

		// Also send to sender for confirmation
		WSHub.BroadcastToUser(userID, ws.WSMessage{
			Type:      ws.EventMessageSent,
			Payload:   payload,
			Timestamp: time.Now(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    message,
	})
}

// GetChatMessages returns message history with another user, ordered by
// creation time ascending
func GetChatMessages(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	peerID := c.Params("userId")

	chatID := utils.DeriveChatID(userID, peerID)

	// Pagination
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "50"))

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}
	offset := (page - 1) * limit

	// Get total count
	var total int
	err := database.Pool.QueryRow(context.Background(), `
		SELECT COUNT(*) FROM messages WHERE chat_id = $1
	`, chatID).Scan(&total)

	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Database error",
		})
	}

	// Get messages with sender info
	rows, err := database.Pool.Query(context.Background(), `
		SELECT
			m.id, m.chat_id, m.sender_id, m.content, m.created_at,
			u.id, u.username, u.email, u.name, u.about, u.phone, u.avatar, u.is_online, u.last_seen, u.created_at
		FROM messages m
		INNER JOIN users u ON m.sender_id = u.id
		WHERE m.chat_id = $1
		ORDER BY m.created_at ASC
		LIMIT $2 OFFSET $3
	`, chatID, limit, offset)

	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Database error",
		})
	}
	defer rows.Close()

	var messages []models.MessageWithSender

	for rows.Next() {
		var message models.Message
		var sender models.User

		err := rows.Scan(
			&message.ID, &message.ChatID, &message.SenderID, &message.Content, &message.CreatedAt,
			&sender.ID, &sender.Username, &sender.Email, &sender.Name, &sender.About,
			&sender.Phone, &sender.Avatar, &sender.IsOnline, &sender.LastSeen, &sender.CreatedAt,
		)

		if err != nil {
			continue
		}

		messages = append(messages, models.MessageWithSender{
			ID:        message.ID,
			ChatID:    message.ChatID,
			Sender:    sender.ToResponse(),
			Content:   message.Content,
			CreatedAt: message.CreatedAt,
		})
	}

	if messages == nil {
		messages = []models.MessageWithSender{}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"chatId":   chatID,
			"messages": messages,
			"pagination": fiber.Map{
				"page":  page,
				"limit": limit,
				"total": total,
			},
		},
	})
}
