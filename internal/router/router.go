package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/berea-app/berea-api/internal/config"
	"github.com/berea-app/berea-api/internal/handler"
	"github.com/berea-app/berea-api/internal/middleware"
	"github.com/berea-app/berea-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler         *handler.AuthHandler
	SessionHandler      *handler.SessionHandler
	SeriesHandler       *handler.SeriesHandler
	MembershipHandler   *handler.MembershipHandler
	ContentHandler      *handler.ContentHandler
	CommentHandler      *handler.CommentHandler
	ChatHandler         *handler.ChatHandler
	StreamHandler       *handler.StreamHandler
	GroupHandler        *handler.GroupHandler
	PrayerHandler       *handler.PrayerHandler
	NotificationHandler *handler.NotificationHandler
	AdminHandler        *handler.AdminHandler
	JWTMiddleware       fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	// Auth. Signup and login stay outside the JWT gate and get a tighter
	// rate limit since they burn bcrypt cycles.
	auth := api.Group("/auth")
	auth.Post("/signup", middleware.RateLimit("auth", 10, time.Minute), deps.AuthHandler.Signup)
	auth.Post("/login", middleware.RateLimit("auth", 10, time.Minute), deps.AuthHandler.Login)
	auth.Get("/me", jwtMiddleware, deps.AuthHandler.Me)
	auth.Patch("/me", jwtMiddleware, deps.AuthHandler.UpdateMe)
	auth.Post("/me/password", jwtMiddleware, deps.AuthHandler.ChangePassword)

	// Series.
	series := api.Group("/series", jwtMiddleware)
	series.Post("/", deps.SeriesHandler.Create)
	series.Get("/", deps.SeriesHandler.List)
	series.Get("/mine", deps.SeriesHandler.ListMine)
	series.Get("/:id", deps.SeriesHandler.Get)
	series.Patch("/:id", deps.SeriesHandler.Update)
	series.Delete("/:id", deps.SeriesHandler.Delete)

	// Sessions and everything scoped under one.
	sessions := api.Group("/sessions", jwtMiddleware)
	sessions.Post("/", deps.SessionHandler.Create)
	sessions.Get("/", deps.SessionHandler.List)
	sessions.Get("/mine", deps.SessionHandler.ListMine)
	sessions.Get("/public", deps.SessionHandler.ListPublic)
	sessions.Post("/join-by-code", deps.MembershipHandler.JoinByCode)
	sessions.Get("/invites", deps.MembershipHandler.ListMyInvites)
	sessions.Patch("/invites/:id", deps.MembershipHandler.Respond)
	sessions.Get("/:id", deps.SessionHandler.Get)
	sessions.Patch("/:id", deps.SessionHandler.Update)
	sessions.Delete("/:id", deps.SessionHandler.Delete)
	sessions.Post("/:id/join-code", deps.SessionHandler.RegenerateJoinCode)

	sessions.Post("/:id/join", deps.MembershipHandler.Join)
	sessions.Delete("/:id/join", deps.MembershipHandler.Leave)
	sessions.Post("/:id/invites", deps.MembershipHandler.Invite)
	sessions.Get("/:id/invites", deps.MembershipHandler.ListSessionInvites)

	sessions.Post("/:id/passages", deps.ContentHandler.AddPassage)
	sessions.Get("/:id/passages", deps.ContentHandler.ListPassages)
	sessions.Delete("/:id/passages/:passageId", deps.ContentHandler.RemovePassage)
	sessions.Post("/:id/resources", deps.ContentHandler.AddResource)
	sessions.Get("/:id/resources", deps.ContentHandler.ListResources)
	sessions.Delete("/:id/resources/:resourceId", deps.ContentHandler.RemoveResource)

	sessions.Post("/:id/passages/:passageId/comments", deps.CommentHandler.Add)
	sessions.Get("/:id/passages/:passageId/comments", deps.CommentHandler.Thread)
	sessions.Get("/:id/comments", deps.CommentHandler.SessionThread)
	sessions.Patch("/:id/comments/:commentId", deps.CommentHandler.Update)
	sessions.Delete("/:id/comments/:commentId", deps.CommentHandler.Delete)

	sessions.Post("/:id/chat", middleware.RateLimit("chat", 30, time.Minute), deps.ChatHandler.SendToSession)
	sessions.Get("/:id/chat", deps.ChatHandler.SessionHistory)

	// Groups.
	groups := api.Group("/groups", jwtMiddleware)
	groups.Post("/", deps.GroupHandler.Create)
	groups.Get("/", deps.GroupHandler.List)
	groups.Get("/public", deps.GroupHandler.ListPublic)
	groups.Get("/mine", deps.GroupHandler.ListMine)
	groups.Get("/:id", deps.GroupHandler.Get)
	groups.Patch("/:id", deps.GroupHandler.Update)
	groups.Delete("/:id", deps.GroupHandler.Delete)
	groups.Post("/:id/join", deps.GroupHandler.Join)
	groups.Post("/:id/members", deps.GroupHandler.AddMember)
	groups.Delete("/:id/members/:userId", deps.GroupHandler.RemoveMember)
	groups.Post("/:id/assign/sessions/:sessionId", deps.GroupHandler.AssignToSession)
	groups.Post("/:id/assign/series/:seriesId", deps.GroupHandler.AssignToSeries)
	groups.Delete("/:id/assign/sessions/:sessionId", deps.GroupHandler.UnassignFromSession)
	groups.Delete("/:id/assign/series/:seriesId", deps.GroupHandler.UnassignFromSeries)
	groups.Post("/:id/chat", middleware.RateLimit("chat", 30, time.Minute), deps.ChatHandler.SendToGroup)
	groups.Get("/:id/chat", deps.ChatHandler.GroupHistory)

	// Prayer wall.
	prayers := api.Group("/prayer-requests", jwtMiddleware)
	prayers.Post("/", deps.PrayerHandler.Create)
	prayers.Get("/", deps.PrayerHandler.List)
	prayers.Get("/:id", deps.PrayerHandler.Get)
	prayers.Delete("/:id", deps.PrayerHandler.Delete)
	prayers.Post("/:id/reactions", deps.PrayerHandler.ToggleReaction)

	// Notifications.
	notifications := api.Group("/notifications", jwtMiddleware)
	notifications.Get("/", deps.NotificationHandler.List)
	notifications.Get("/unread-count", deps.NotificationHandler.UnreadCount)
	notifications.Post("/read-all", deps.NotificationHandler.MarkAllRead)
	notifications.Post("/:id/read", deps.NotificationHandler.MarkRead)

	// Websocket streams share the JWT gate with the REST surface.
	if deps.StreamHandler != nil {
		ws := api.Group("/ws", jwtMiddleware, deps.StreamHandler.Upgrade)
		ws.Get("/sessions/:id/chat", deps.StreamHandler.SessionChat())
		ws.Get("/groups/:id/chat", deps.StreamHandler.GroupChat())
		ws.Get("/sessions/:id/comments", deps.StreamHandler.Comments())
		ws.Get("/notifications", deps.StreamHandler.Notifications())
	}

	// Admin, behind the role check.
	admin := api.Group("/admin", jwtMiddleware, middleware.RequireRole("ADMIN"))
	admin.Get("/users", deps.AdminHandler.ListUsers)
	admin.Patch("/users/:id/role", deps.AdminHandler.UpdateUserRole)
	admin.Delete("/users/:id", deps.AdminHandler.DeleteUser)
	admin.Get("/sessions", deps.AdminHandler.ListSessions)
	admin.Delete("/sessions/:id", deps.AdminHandler.DeleteSession)
	admin.Get("/groups", deps.AdminHandler.ListGroups)
	admin.Delete("/groups/:id", deps.AdminHandler.DeleteGroup)
	admin.Delete("/series/:id", deps.AdminHandler.DeleteSeries)
	admin.Get("/stats", deps.AdminHandler.Stats)
}
