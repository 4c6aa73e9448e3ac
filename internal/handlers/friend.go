package handlers

import (
	"context"
	"time"

	"talksy/server/internal/database"
	"talksy/server/internal/models"
	ws "talksy/server/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
)

// SendFriendRequestRequest represents friend request creation body
type SendFriendRequestRequest struct {
	UserID string `json:"userId"`
}

// RespondFriendRequestRequest represents accept/decline body
type RespondFriendRequestRequest struct {
	Action string `json:"action"` // accept, decline
}

// Pending request direction relative to the caller.
const (
	pendingNone     = ""
	pendingSent     = "sent"
	pendingReceived = "received"
)

// pendingRequestBetween reports whether a pending request exists between two
// users, and in which direction relative to userID. Every call site that
// creates requests goes through this check.
func pendingRequestBetween(ctx context.Context, userID, otherID string) (string, error) {
	var fromID string
	err := database.Pool.QueryRow(ctx, `
		SELECT from_id FROM friend_requests
		WHERE status = 'pending'
		AND ((from_id = $1 AND to_id = $2) OR (from_id = $2 AND to_id = $1))
		LIMIT 1
	`, userID, otherID).Scan(&fromID)

	if err == pgx.ErrNoRows {
		return pendingNone, nil
	}
	if err != nil {
		return pendingNone, err
	}

	if fromID == userID {
		return pendingSent, nil
	}
	return pendingReceived, nil
}

// pendingConflictMessage maps a pending direction to the user-facing error.
func pendingConflictMessage(direction string) string {
	switch direction {
	case pendingSent:
		return "You have already sent a friend request to this user"
	case pendingReceived:
		return "This user has already sent you a friend request. Check your pending requests"
	default:
		return ""
	}
}

// SendFriendRequest creates a pending friend request
func SendFriendRequest(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	var req SendFriendRequestRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	if req.UserID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "User ID is required",
		})
	}

	if req.UserID == userID {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "You cannot send a friend request to yourself",
		})
	}

	// Check if target exists
	var exists bool
	err := database.Pool.QueryRow(context.Background(), "SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)", req.UserID).Scan(&exists)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Database error",
		})
	}

	if !exists {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "User not found",
		})
	}

	// Check if already friends
	err = database.Pool.QueryRow(context.Background(), `
		SELECT EXISTS(SELECT 1 FROM friendships WHERE user_id = $1 AND friend_id = $2)
	`, userID, req.UserID).Scan(&exists)

	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Database error",
		})
	}

	if exists {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"error":   "You are already friends with this user",
		})
	}

	// Check for a pending request in either direction
	direction, err := pendingRequestBetween(context.Background(), userID, req.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Database error",
		})
	}

	if direction != pendingNone {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"error":   pendingConflictMessage(direction),
		})
	}

	// Create the pending request. The sender's outgoing set is this record:
	// from_id = sender AND status = 'pending'.
	var request models.FriendRequest
	err = database.Pool.QueryRow(context.Background(), `
		INSERT INTO friend_requests (from_id, to_id, status, created_at, updated_at)
		VALUES ($1, $2, 'pending', $3, $4)
		RETURNING id, from_id, to_id, status, created_at, updated_at
	`, userID, req.UserID, time.Now(), time.Now()).
		Scan(&request.ID, &request.FromID, &request.ToID, &request.Status, &request.CreatedAt, &request.UpdatedAt)

	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to send friend request",
		})
	}

	// Push to the recipient's live subscription
	if WSHub != nil {
		WSHub.BroadcastToUser(request.ToID, ws.WSMessage{
			Type: ws.EventFriendRequestReceived,
			Payload: ws.FriendRequestPayload{
				RequestID: request.ID,
				FromID:    request.FromID,
				ToID:      request.ToID,
				Status:    request.Status,
			},
			Timestamp: time.Now(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    request,
	})
}

// RespondFriendRequest accepts or declines a pending request. Acceptance
// writes both friendship rows in the same transaction as the status flip.
func RespondFriendRequest(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	requestID := c.Params("requestId")

	var req RespondFriendRequestRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	var next models.RequestStatus
	switch req.Action {
	case "accept":
		next = models.RequestAccepted
	case "decline":
		next = models.RequestDeclined
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Action must be accept or decline",
		})
	}

	var request models.FriendRequest
	err := database.Pool.QueryRow(context.Background(), `
		SELECT id, from_id, to_id, status, created_at, updated_at
		FROM friend_requests WHERE id = $1
	`, requestID).Scan(&request.ID, &request.FromID, &request.ToID, &request.Status, &request.CreatedAt, &request.UpdatedAt)

	if err == pgx.ErrNoRows {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "Friend request not found",
		})
	}

	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Database error",
		})
	}

	// Only the recipient may respond
	if request.ToID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"error":   "Only the recipient can respond to this request",
		})
	}

	// Accepted and declined are terminal
	if !request.Status.CanTransitionTo(next) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"error":   "Request has already been responded to",
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

	_, err = tx.Exec(context.Background(), `
		UPDATE friend_requests SET status = $1, updated_at = $2 WHERE id = $3
	`, next, time.Now(), request.ID)

	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to update request",
		})
	}

	if next == models.RequestAccepted {
		// Both directions of the friendship, atomically with the status flip
		_, err = tx.Exec(context.Background(), `
			INSERT INTO friendships (user_id, friend_id, created_at)
			VALUES ($1, $2, $3), ($2, $1, $3)
			ON CONFLICT DO NOTHING
		`, request.FromID, request.ToID, time.Now())

		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"error":   "Failed to create friendship",
			})
		}
	}

	if err := tx.Commit(context.Background()); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to commit transaction",
		})
	}

	request.Status = next

	// Tell the sender the outcome via their live subscription
	if WSHub != nil {
		WSHub.BroadcastToUser(request.FromID, ws.WSMessage{
			Type: ws.EventFriendRequestUpdated,
			Payload: ws.FriendRequestPayload{
				RequestID: request.ID,
				FromID:    request.FromID,
				ToID:      request.ToID,
				Status:    request.Status,
			},
			Timestamp: time.Now(),
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    request,
	})
}

// ListFriendRequests returns pending requests addressed to the caller,
// with sender profiles resolved
func ListFriendRequests(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	rows, err := database.Pool.Query(context.Background(), `
		SELECT
			r.id, r.status, r.created_at,
			u.id, u.username, u.email, u.name, u.about, u.phone, u.avatar, u.is_online, u.last_seen, u.created_at
		FROM friend_requests r
		INNER JOIN users u ON r.from_id = u.id
		WHERE r.to_id = $1 AND r.status = 'pending'
		ORDER BY r.created_at DESC
	`, userID)

	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Database error",
		})
	}
	defer rows.Close()

	var requests []models.FriendRequestWithSender

	for rows.Next() {
		var request models.FriendRequestWithSender
		var sender models.User

		err := rows.Scan(
			&request.ID, &request.Status, &request.CreatedAt,
			&sender.ID, &sender.Username, &sender.Email, &sender.Name, &sender.About,
			&sender.Phone, &sender.Avatar, &sender.IsOnline, &sender.LastSeen, &sender.CreatedAt,
		)

		if err != nil {
			continue
		}

		request.Sender = sender.ToResponse()
		requests = append(requests, request)
	}

	if requests == nil {
		requests = []models.FriendRequestWithSender{}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    requests,
	})
}

// ListFriends returns the caller's friends
func ListFriends(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	rows, err := database.Pool.Query(context.Background(), `
		SELECT u.id, u.username, u.email, u.name, u.about, u.phone, u.avatar, u.is_online, u.last_seen, u.created_at
		FROM friendships f
		INNER JOIN users u ON f.friend_id = u.id
		WHERE f.user_id = $1
		ORDER BY f.created_at DESC
	`, userID)

	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Database error",
		})
	}
	defer rows.Close()

	var friends []models.UserResponse

	for rows.Next() {
		var user models.User
		err := rows.Scan(&user.ID, &user.Username, &user.Email, &user.Name, &user.About,
			&user.Phone, &user.Avatar, &user.IsOnline, &user.LastSeen, &user.CreatedAt)

		if err != nil {
			continue
		}

		friends = append(friends, user.ToResponse())
	}

	if friends == nil {
		friends = []models.UserResponse{}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    friends,
	})
}
