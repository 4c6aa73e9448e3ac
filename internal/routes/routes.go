package routes

import (
	"talksy/server/internal/handlers"
	"talksy/server/internal/middleware"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

// InitWebSocket initializes the WebSocket hub
func InitWebSocket() {
	handlers.InitWebSocket()
}

// ShutdownWebSocket flushes pending presence writes before exit
func ShutdownWebSocket() {
	handlers.ShutdownWebSocket()
}

// SetupRoutes configures all application routes
func SetupRoutes(app *fiber.App) {
	// API v1 group
	api := app.Group("/api/v1")

	// Health check (public)
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"message": "Talksy API is running",
		})
	})

	// Auth routes (public)
	auth := api.Group("/auth")
	auth.Post("/send-otp", middleware.StrictRateLimiter(), handlers.SendOTP)
	auth.Post("/register", middleware.StrictRateLimiter(), handlers.Register)
	auth.Post("/login", middleware.StrictRateLimiter(), handlers.Login)
	auth.Post("/refresh", middleware.StrictRateLimiter(), handlers.RefreshToken)
	auth.Post("/logout", middleware.AuthMiddleware, handlers.Logout)
	auth.Get("/me", middleware.AuthMiddleware, handlers.GetMe)

	// User directory and profile (protected)
	users := api.Group("/users", middleware.AuthMiddleware)
	users.Get("/", handlers.ListUsers)
	users.Get("/search", handlers.SearchUsers)
	users.Put("/me", handlers.UpdateProfile)
	users.Get("/:userId", handlers.GetUser)

	// Friend routes (protected)
	friends := api.Group("/friends", middleware.AuthMiddleware)
	friends.Get("/", handlers.ListFriends)
	friends.Get("/requests", handlers.ListFriendRequests)
	friends.Post("/requests", middleware.ModerateRateLimiter(), handlers.SendFriendRequest)
	friends.Post("/requests/:requestId", handlers.RespondFriendRequest)

	// Chat routes (protected)
	chats := api.Group("/chats", middleware.AuthMiddleware)
	chats.Get("/", handlers.GetChats)
	chats.Post("/:userId/messages", handlers.SendChatMessage)
	chats.Get("/:userId/messages", handlers.GetChatMessages)

	// Group routes (protected)
	groups := api.Group("/groups", middleware.AuthMiddleware)
	groups.Post("/", handlers.CreateGroup)
	groups.Get("/", handlers.GetGroups)
	groups.Get("/:groupId", handlers.GetGroupDetails)
	groups.Delete("/:groupId", handlers.DeleteGroup)
	groups.Post("/:groupId/join", handlers.JoinGroup)
	groups.Post("/:groupId/leave", handlers.LeaveGroup)
	groups.Post("/:groupId/members", handlers.AddGroupMember)
	groups.Delete("/:groupId/members/:userId", handlers.RemoveGroupMember)
	groups.Post("/:groupId/messages", handlers.SendGroupMessage)
	groups.Get("/:groupId/messages", handlers.GetGroupMessages)

	// Upload routes (protected)
	uploads := api.Group("/upload", middleware.AuthMiddleware)
	uploads.Post("/file", middleware.UploadRateLimiter(), handlers.UploadFile)
	uploads.Post("/avatar", middleware.UploadRateLimiter(), handlers.UploadAvatar)
	uploads.Delete("/avatar", handlers.DeleteAvatar)

	// Serve uploaded files (public)
	app.Get("/uploads/:type/:filename", handlers.GetFile)

	// WebSocket route (protected)
	api.Get("/ws", middleware.AuthMiddleware, handlers.WebSocketUpgrade, websocket.New(handlers.WebSocketHandler))

	// WebSocket stats (protected, for debugging)
	api.Get("/ws/stats", middleware.AuthMiddleware, handlers.GetWebSocketStats)
}
