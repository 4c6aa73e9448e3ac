package handlers

import (
	"context"
	"strconv"
	"time"

	"talksy/server/internal/database"
	"talksy/server/internal/models"
	ws "talksy/server/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
)

// CreateGroupRequest represents group creation request body
type CreateGroupRequest struct {
	Name string `json:"name"`
}

// AddMemberRequest represents add member request body
type AddMemberRequest struct {
	UserID string `json:"userId"`
}

// SendGroupMessageRequest represents group message body
type SendGroupMessageRequest struct {
	Content string `json:"content"`
}

// GroupListItem is a directory entry with membership info for the caller
type GroupListItem struct {
	models.Group
	MemberCount int  `json:"memberCount"`
	IsMember    bool `json:"isMember"`
	IsAdmin     bool `json:"isAdmin"`
}

// isGroupMember checks membership. Admins are always members.
func isGroupMember(ctx context.Context, groupID, userID string) (bool, error) {
	var member bool
	err := database.Pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM group_members WHERE group_id = $1 AND user_id = $2)
	`, groupID, userID).Scan(&member)
	return member, err
}

// CreateGroup creates a new group with the caller as admin. The group record
// and the admin's membership row are written in one transaction.
func CreateGroup(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	var req CreateGroupRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	if req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Group name is required",
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

	var group models.Group
	err = tx.QueryRow(context.Background(), `
		INSERT INTO groups (name, admin_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, admin_id, created_at, updated_at
	`, req.Name, userID, time.Now(), time.Now()).
		Scan(&group.ID, &group.Name, &group.AdminID, &group.CreatedAt, &group.UpdatedAt)

	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to create group",
		})
	}

	_, err = tx.Exec(context.Background(), `
		INSERT INTO group_members (group_id, user_id, joined_at)
		VALUES ($1, $2, $3)
	`, group.ID, userID, time.Now())

	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to add admin as member",
		})
	}

	if err := tx.Commit(context.Background()); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to commit transaction",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    group,
	})
}

// GetGroups returns all groups with member counts and the caller's membership
func GetGroups(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	rows, err := database.Pool.Query(context.Background(), `
		SELECT
			g.id, g.name, g.admin_id, g.created_at, g.updated_at,
			(SELECT COUNT(*) FROM group_members m WHERE m.group_id = g.id) AS member_count,
			EXISTS(SELECT 1 FROM group_members m WHERE m.group_id = g.id AND m.user_id = $1) AS is_member
		FROM groups g
		ORDER BY g.created_at DESC
	`, userID)

	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Database error",
		})
	}
	defer rows.Close()

	var groups []GroupListItem

	for rows.Next() {
		var item GroupListItem

		err := rows.Scan(
			&item.ID, &item.Name, &item.AdminID, &item.CreatedAt, &item.UpdatedAt,
			&item.MemberCount, &item.IsMember,
		)

		if err != nil {
			continue
		}

		item.IsAdmin = item.AdminID == userID
		groups = append(groups, item)
	}

	if groups == nil {
		groups = []GroupListItem{}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    groups,
	})
}

// GetGroupDetails returns a group with its resolved member list. Members only.
func GetGroupDetails(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	groupID := c.Params("groupId")

	var group models.GroupWithMembers
	err := database.Pool.QueryRow(context.Background(), `
		SELECT id, name, admin_id, created_at, updated_at FROM groups WHERE id = $1
	`, groupID).Scan(&group.ID, &group.Name, &group.AdminID, &group.CreatedAt, &group.UpdatedAt)

	if err == pgx.ErrNoRows {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "Group not found",
		})
	}

	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Database error",
		})
	}

	member, err := isGroupMember(context.Background(), groupID, userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Database error",
		})
	}

	if !member {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"error":   "You are not a member of this group",
		})
	}

	rows, err := database.Pool.Query(context.Background(), `
		SELECT u.id, u.username, u.email, u.name, u.about, u.phone, u.avatar, u.is_online, u.last_seen, u.created_at
		FROM group_members m
		INNER JOIN users u ON m.user_id = u.id
		WHERE m.group_id = $1
		ORDER BY m.joined_at ASC
	`, groupID)

	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Database error",
		})
	}
	defer rows.Close()

	for rows.Next() {
		var user models.User
		err := rows.Scan(&user.ID, &user.Username, &user.Email, &user.Name, &user.About,
			&user.Phone, &user.Avatar, &user.IsOnline, &user.LastSeen, &user.CreatedAt)

		if err != nil {
			continue
		}

		group.Members = append(group.Members, user.ToResponse())
	}

	if group.Members == nil {
		group.Members = []models.UserResponse{}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    group,
	})
}

// JoinGroup adds the caller to a group. Idempotent: joining a group you are
// already in succeeds without a duplicate row.
func JoinGroup(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	groupID := c.Params("groupId")

	var exists bool
	err := database.Pool.QueryRow(context.Background(), "SELECT EXISTS(SELECT 1 FROM groups WHERE id = $1)", groupID).Scan(&exists)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Database error",
		})
	}

	if !exists {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "Group not found",
		})
	}

	_, err = database.Pool.Exec(context.Background(), `
		INSERT INTO group_members (group_id, user_id, joined_at)
		VALUES ($1, $2, $3)
		ON CONFLICT DO NOTHING
	`, groupID, userID, time.Now())

	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to join group",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Joined group successfully",
	})
}

// LeaveGroup removes the caller from a group. When the admin leaves, the
// admin role passes to the earliest-joined remaining member; if no member
// remains, the group is deleted.
func LeaveGroup(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	groupID := c.Params("groupId")

	var adminID string
	err := database.Pool.QueryRow(context.Background(), "SELECT admin_id FROM groups WHERE id = $1", groupID).Scan(&adminID)

	if err == pgx.ErrNoRows {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "Group not found",
		})
	}

	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Database error",
		})
	}

	member, err := isGroupMember(context.Background(), groupID, userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Database error",
		})
	}

	if !member {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "You are not a member of this group",
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
		DELETE FROM group_members WHERE group_id = $1 AND user_id = $2
	`, groupID, userID)

	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to leave group",
		})
	}

	if adminID == userID {
		// Hand the group to the earliest-joined remaining member
		var nextAdmin string
		err = tx.QueryRow(context.Background(), `
			SELECT user_id FROM group_members
			WHERE group_id = $1
			ORDER BY joined_at ASC
			LIMIT 1
		`, groupID).Scan(&nextAdmin)

		if err == pgx.ErrNoRows {
			// Last member out deletes the group (messages cascade)
			_, err = tx.Exec(context.Background(), "DELETE FROM groups WHERE id = $1", groupID)
			if err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"success": false,
					"error":   "Failed to delete group",
				})
			}
		} else if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"error":   "Database error",
			})
		} else {
			_, err = tx.Exec(context.Background(), `
				UPDATE groups SET admin_id = $1, updated_at = $2 WHERE id = $3
			`, nextAdmin, time.Now(), groupID)

			if err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"success": false,
					"error":   "Failed to transfer admin",
				})
			}
		}
	}

	if err := tx.Commit(context.Background()); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to commit transaction",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Left group successfully",
	})
}

// AddGroupMember adds a user to a group. Admin only.
func AddGroupMember(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	groupID := c.Params("groupId")

	var req AddMemberRequest
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

	var adminID string
	err := database.Pool.QueryRow(context.Background(), "SELECT admin_id FROM groups WHERE id = $1", groupID).Scan(&adminID)

	if err == pgx.ErrNoRows {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "Group not found",
		})
	}

	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Database error",
		})
	}

	if adminID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"error":   "Only the group admin can add members",
		})
	}

	var exists bool
	err = database.Pool.QueryRow(context.Background(), "SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)", req.UserID).Scan(&exists)
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

	_, err = database.Pool.Exec(context.Background(), `
		INSERT INTO group_members (group_id, user_id, joined_at)
		VALUES ($1, $2, $3)
		ON CONFLICT DO NOTHING
	`, groupID, req.UserID, time.Now())

	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to add member",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Member added successfully",
	})
}

// RemoveGroupMember removes a user from a group. Admin only; admins leave
// through LeaveGroup instead so the group always keeps an admin.
func RemoveGroupMember(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	groupID := c.Params("groupId")
	targetID := c.Params("userId")

	var adminID string
	err := database.Pool.QueryRow(context.Background(), "SELECT admin_id FROM groups WHERE id = $1", groupID).Scan(&adminID)

	if err == pgx.ErrNoRows {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "Group not found",
		})
	}

	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Database error",
		})
	}

	if adminID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"error":   "Only the group admin can remove members",
		})
	}

	if targetID == adminID {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Admin cannot remove themselves. Leave the group instead",
		})
	}

	result, err := database.Pool.Exec(context.Background(), `
		DELETE FROM group_members WHERE group_id = $1 AND user_id = $2
	`, groupID, targetID)

	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to remove member",
		})
	}

	if result.RowsAffected() == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "User is not a member of this group",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Member removed successfully",
	})
}

// DeleteGroup deletes a group and everything under it. Admin only.
func DeleteGroup(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	groupID := c.Params("groupId")

	var adminID string
	err := database.Pool.QueryRow(context.Background(), "SELECT admin_id FROM groups WHERE id = $1", groupID).Scan(&adminID)

	if err == pgx.ErrNoRows {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "Group not found",
		})
	}

	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Database error",
		})
	}

	if adminID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"error":   "Only the group admin can delete the group",
		})
	}

	// Members and messages cascade
	_, err = database.Pool.Exec(context.Background(), "DELETE FROM groups WHERE id = $1", groupID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to delete group",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Group deleted successfully",
	})
}

// SendGroupMessage posts a message to a group. Members only.
func SendGroupMessage(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	groupID := c.Params("groupId")

	var req SendGroupMessageRequest
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

	var exists bool
	err := database.Pool.QueryRow(context.Background(), "SELECT EXISTS(SELECT 1 FROM groups WHERE id = $1)", groupID).Scan(&exists)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Database error",
		})
	}

	if !exists {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "Group not found",
		})
	}

	member, err := isGroupMember(context.Background(), groupID, userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Database error",
		})
	}

	if !member {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"error":   "You are not a member of this group",
		})
	}

	var message models.Message
	err = database.Pool.QueryRow(context.Background(), `
		INSERT INTO messages (group_id, sender_id, content, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, group_id, sender_id, content, created_at
	`, groupID, userID, req.Content, time.Now()).
		Scan(&message.ID, &message.GroupID, &message.SenderID, &message.Content, &message.CreatedAt)

	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to send message",
		})
	}

	// Fan out to online members
	if WSHub != nil {
		WSHub.BroadcastToGroup(groupID, ws.WSMessage{
			Type: ws.EventGroupMessageReceived,
			Payload: ws.GroupMessagePayload{
				ID:        message.ID,
				GroupID:   groupID,
				SenderID:  message.SenderID,
				Content:   message.Content,
				CreatedAt: message.CreatedAt,
			},
			Timestamp: time.Now(),
		}, userID)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    message,
	})
}

// GetGroupMessages returns group message history, ordered by creation time
// ascending. Members only.
func GetGroupMessages(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	groupID := c.Params("groupId")

	var exists bool
	err := database.Pool.QueryRow(context.Background(), "SELECT EXISTS(SELECT 1 FROM groups WHERE id = $1)", groupID).Scan(&exists)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Database error",
		})
	}

	if !exists {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "Group not found",
		})
	}

	member, err := isGroupMember(context.Background(), groupID, userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Database error",
		})
	}

	if !member {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"error":   "You are not a member of this group",
		})
	}

	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "50"))

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}
	offset := (page - 1) * limit

	var total int
	err = database.Pool.QueryRow(context.Background(), `
		SELECT COUNT(*) FROM messages WHERE group_id = $1
	`, groupID).Scan(&total)

	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Database error",
		})
	}

	rows, err := database.Pool.Query(context.Background(), `
		SELECT
			m.id, m.group_id, m.sender_id, m.content, m.created_at,
			u.id, u.username, u.email, u.name, u.about, u.phone, u.avatar, u.is_online, u.last_seen, u.created_at
		FROM messages m
		INNER JOIN users u ON m.sender_id = u.id
		WHERE m.group_id = $1
		ORDER BY m.created_at ASC
		LIMIT $2 OFFSET $3
	`, groupID, limit, offset)

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
			&message.ID, &message.GroupID, &message.SenderID, &message.Content, &message.CreatedAt,
			&sender.ID, &sender.Username, &sender.Email, &sender.Name, &sender.About,
			&sender.Phone, &sender.Avatar, &sender.IsOnline, &sender.LastSeen, &sender.CreatedAt,
		)

		if err != nil {
			continue
		}

		messages = append(messages, models.MessageWithSender{
			ID:        message.ID,
			GroupID:   message.GroupID,
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
			"messages": messages,
			"pagination": fiber.Map{
				"page":  page,
				"limit": limit,
				"total": total,
			},
		},
	})
}
