package handlers

import (
	"context"
	"strconv"
	"strings"
	"time"

	"talksy/server/internal/database"
	"talksy/server/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
)

// UpdateProfileRequest represents profile update request body
type UpdateProfileRequest struct {
	Name  *string `json:"name,omitempty"`
	About *string `json:"about,omitempty"`
	Phone *string `json:"phone,omitempty"`
}

// UserListItem is a directory entry with relationship status relative to the caller
type UserListItem struct {
	models.UserResponse
	IsFriend        bool `json:"isFriend"`
	PendingSent     bool `json:"pendingSent"`
	PendingReceived bool `json:"pendingReceived"`
}

// ListUsers returns the user directory with relationship status
func ListUsers(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	rows, err := database.Pool.Query(context.Background(), `
		SELECT
			u.id, u.username, u.email, u.name, u.about, u.phone, u.avatar,
			u.is_online, u.last_seen, u.created_at,
			EXISTS(SELECT 1 FROM friendships f WHERE f.user_id = $1 AND f.friend_id = u.id) AS is_friend,
			EXISTS(SELECT 1 FROM friend_requests r WHERE r.from_id = $1 AND r.to_id = u.id AND r.status = 'pending') AS pending_sent,
			EXISTS(SELECT 1 FROM friend_requests r WHERE r.from_id = u.id AND r.to_id = $1 AND r.status = 'pending') AS pending_received
		FROM users u
		WHERE u.id != $1
		ORDER BY u.created_at ASC
	`, userID)

	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Database error",
		})
	}
	defer rows.Close()

	var users []UserListItem

	for rows.Next() {
		var user models.User
		var item UserListItem

		err := rows.Scan(
			&user.ID, &user.Username, &user.Email, &user.Name, &user.About, &user.Phone,
			&user.Avatar, &user.IsOnline, &user.LastSeen, &user.CreatedAt,
			&item.IsFriend, &item.PendingSent, &item.PendingReceived,
		)

		if err != nil {
			continue
		}

		item.UserResponse = user.ToResponse()
		users = append(users, item)
	}

	if users == nil {
		users = []UserListItem{}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    users,
	})
}

// searchPattern turns user input into an anchored ILIKE prefix pattern,
// escaping the wildcard characters so they match literally.
func searchPattern(query string) string {
	escaper := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return escaper.Replace(query) + "%"
}

// SearchUsers finds users by name or username prefix
func SearchUsers(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	query := c.Query("q", "")

	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Search query is required",
		})
	}

	rows, err := database.Pool.Query(context.Background(), `
		SELECT
			u.id, u.username, u.email, u.name, u.about, u.phone, u.avatar,
			u.is_online, u.last_seen, u.created_at,
			EXISTS(SELECT 1 FROM friendships f WHERE f.user_id = $1 AND f.friend_id = u.id) AS is_friend,
			EXISTS(SELECT 1 FROM friend_requests r WHERE r.from_id = $1 AND r.to_id = u.id AND r.status = 'pending') AS pending_sent,
			EXISTS(SELECT 1 FROM friend_requests r WHERE r.from_id = u.id AND r.to_id = $1 AND r.status = 'pending') AS pending_received
		FROM users u
		WHERE u.id != $1
		AND (u.name ILIKE $2 OR u.username ILIKE $2)
		ORDER BY u.username ASC
		LIMIT 20
	`, userID, searchPattern(query))

	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Database error",
		})
	}
	defer rows.Close()

	var users []UserListItem

	for rows.Next() {
		var user models.User
		var item UserListItem

		err := rows.Scan(
			&user.ID, &user.Username, &user.Email, &user.Name, &user.About, &user.Phone,
			&user.Avatar, &user.IsOnline, &user.LastSeen, &user.CreatedAt,
			&item.IsFriend, &item.PendingSent, &item.PendingReceived,
		)

		if err != nil {
			continue
		}

		item.UserResponse = user.ToResponse()
		users = append(users, item)
	}

	if users == nil {
		users = []UserListItem{}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    users,
	})
}

// GetUser returns another user's profile with relationship status
func GetUser(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	targetID := c.Params("userId")

	if targetID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "User ID is required",
		})
	}

	var user models.User
	var item UserListItem
	err := database.Pool.QueryRow(context.Background(), `
		SELECT
			u.id, u.username, u.email, u.name, u.about, u.phone, u.avatar,
			u.is_online, u.last_seen, u.created_at,
			EXISTS(SELECT 1 FROM friendships f WHERE f.user_id = $1 AND f.friend_id = u.id) AS is_friend,
			EXISTS(SELECT 1 FROM friend_requests r WHERE r.from_id = $1 AND r.to_id = u.id AND r.status = 'pending') AS pending_sent,
			EXISTS(SELECT 1 FROM friend_requests r WHERE r.from_id = u.id AND r.to_id = $1 AND r.status = 'pending') AS pending_received
		FROM users u
		WHERE u.id = $2
	`, userID, targetID).Scan(
		&user.ID, &user.Username, &user.Email, &user.Name, &user.About, &user.Phone,
		&user.Avatar, &user.IsOnline, &user.LastSeen, &user.CreatedAt,
		&item.IsFriend, &item.PendingSent, &item.PendingReceived,
	)

	if err == pgx.ErrNoRows {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "User not found",
		})
	}

	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Database error",
		})
	}

	item.UserResponse = user.ToResponse()

	return c.JSON(fiber.Map{
		"success": true,
		"data":    item,
	})
}

// UpdateProfile updates the caller's profile. Merge semantics: only fields
// present in the body are written.
func UpdateProfile(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	if req.Name == nil && req.About == nil && req.Phone == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Nothing to update",
		})
	}

	if req.Name != nil && *req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Name cannot be empty",
		})
	}

	// Build the update dynamically from provided fields
	query := "UPDATE users SET updated_at = $1"
	args := []interface{}{time.Now()}
	argCount := 2

	if req.Name != nil {
		query += ", name = $" + strconv.Itoa(argCount)
		args = append(args, *req.Name)
		argCount++
	}

	if req.About != nil {
		query += ", about = $" + strconv.Itoa(argCount)
		args = append(args, *req.About)
		argCount++
	}

	if req.Phone != nil {
		query += ", phone = $" + strconv.Itoa(argCount)
		args = append(args, *req.Phone)
		argCount++
	}

	query += " WHERE id = $" + strconv.Itoa(argCount) +
		" RETURNING id, username, email, name, about, phone, avatar, is_online, last_seen, created_at, updated_at"
	args = append(args, userID)

	var user models.User
	err := database.Pool.QueryRow(context.Background(), query, args...).
		Scan(&user.ID, &user.Username, &user.Email, &user.Name, &user.About, &user.Phone,
			&user.Avatar, &user.IsOnline, &user.LastSeen, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to update profile",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    user.ToResponse(),
	})
}
