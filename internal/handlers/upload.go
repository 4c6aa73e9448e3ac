package handlers

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"talksy/server/internal/database"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	MaxFileSize      = 5 * 1024 * 1024 // 5MB
	MaxAvatarSize    = 2 * 1024 * 1024 // 2MB
	UploadDir        = "./uploads"
	AllowedImageExts = ".jpg,.jpeg,.png,.gif,.webp"
	AllowedFileExts  = ".pdf,.doc,.docx,.txt,.zip"
)

// UploadFile handles generic attachment uploads
func UploadFile(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "No file uploaded",
		})
	}

	if file.Size > MaxFileSize {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   fmt.Sprintf("File size exceeds limit of 5MB (uploaded: %.2fMB)", float64(file.Size)/(1024*1024)),
		})
	}

	fileType := c.Query("type", "file") // image, file
	if fileType != "image" && fileType != "file" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid file type. Must be: image or file",
		})
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !isAllowedExtension(ext, fileType) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   fmt.Sprintf("File extension %s not allowed for type %s", ext, fileType),
		})
	}

	uploadPath := filepath.Join(UploadDir, fileType+"s")
	if err := os.MkdirAll(uploadPath, 0755); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to create upload directory",
		})
	}

	// Generate unique filename
	filename := fmt.Sprintf("%s-%d%s", uuid.New().String(), time.Now().Unix(), ext)
	fullPath := filepath.Join(uploadPath, filename)

	if err := c.SaveFile(file, fullPath); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to save file",
		})
	}

	fileURL := fmt.Sprintf("/uploads/%ss/%s", fileType, filename)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"filename": file.Filename,
			"size":     file.Size,
			"type":     fileType,
			"url":      fileURL,
		},
	})
}

// UploadAvatar sets the caller's profile picture. The filename is keyed by
// user id so a re-upload overwrites the previous avatar in place.
func UploadAvatar(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	file, err := c.FormFile("avatar")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "No avatar uploaded",
		})
	}

	if file.Size > MaxAvatarSize {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Avatar size exceeds limit of 2MB",
		})
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !extAllowed(AllowedImageExts, ext) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid image format. Allowed: jpg, jpeg, png, gif, webp",
		})
	}

	uploadPath := filepath.Join(UploadDir, "avatars")
	if err := os.MkdirAll(uploadPath, 0755); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to create upload directory",
		})
	}

	// Drop any previous avatar with a different extension
	removeAvatarFiles(uploadPath, userID)

	filename := userID + ext
	fullPath := filepath.Join(uploadPath, filename)

	if err := c.SaveFile(file, fullPath); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to save avatar",
		})
	}

	avatarURL := fmt.Sprintf("/uploads/avatars/%s", filename)

	_, err = database.Pool.Exec(context.Background(), `
		UPDATE users SET avatar = $1, updated_at = $2 WHERE id = $3
	`, avatarURL, time.Now(), userID)

	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to update profile",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"url": avatarURL,
		},
	})
}

// DeleteAvatar removes the caller's profile picture
func DeleteAvatar(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	removeAvatarFiles(filepath.Join(UploadDir, "avatars"), userID)

	_, err := database.Pool.Exec(context.Background(), `
		UPDATE users SET avatar = NULL, updated_at = $1 WHERE id = $2
	`, time.Now(), userID)

	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to update profile",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Avatar removed successfully",
	})
}

// removeAvatarFiles deletes all stored avatar variants for a user
func removeAvatarFiles(dir, userID string) {
	for _, ext := range strings.Split(AllowedImageExts, ",") {
		os.Remove(filepath.Join(dir, userID+ext))
	}
}

// extAllowed checks the extension against the list by exact match, so a
// partial extension cannot slip through as a substring of an allowed one.
func extAllowed(list, ext string) bool {
	for _, allowed := range strings.Split(list, ",") {
		if allowed == ext {
			return true
		}
	}
	return false
}

// isAllowedExtension checks if file extension is allowed for the given type
func isAllowedExtension(ext, fileType string) bool {
	switch fileType {
	case "image":
		return extAllowed(AllowedImageExts, ext)
	case "file":
		return extAllowed(AllowedFileExts, ext)
	default:
		return false
	}
}

// GetFile serves uploaded files
func GetFile(c *fiber.Ctx) error {
	fileType := c.Params("type")
	filename := c.Params("filename")

	if fileType != "images" && fileType != "files" && fileType != "avatars" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid file type",
		})
	}

	// Keep lookups inside the upload directory
	if filename != filepath.Base(filename) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid filename",
		})
	}

	filePath := filepath.Join(UploadDir, fileType, filename)

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "File not found",
		})
	}

	file, err := os.Open(filePath)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to open file",
		})
	}
	defer file.Close()

	fileInfo, err := file.Stat()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to get file info",
		})
	}

	ext := strings.ToLower(filepath.Ext(filename))
	c.Set("Content-Type", getContentType(ext))
	c.Set("Content-Length", fmt.Sprintf("%d", fileInfo.Size()))

	_, err = io.Copy(c.Response().BodyWriter(), file)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to send file",
		})
	}

	return nil
}

// getContentType returns content type based on file extension
func getContentType(ext string) string {
	switch ext {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".pdf":
		return "application/pdf"
	case ".doc":
		return "application/msword"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".txt":
		return "text/plain"
	case ".zip":
		return "application/zip"
	default:
		return "application/octet-stream"
	}
}
