package server

import (
	"time"

	"github.com/eventsphere/api/internal/auth"
	"github.com/eventsphere/api/internal/event"
	"github.com/eventsphere/api/internal/folio"
	"github.com/eventsphere/api/internal/middleware"
	"github.com/eventsphere/api/internal/models"
	"github.com/eventsphere/api/internal/role"
	"github.com/eventsphere/api/internal/upload"
	"github.com/eventsphere/api/internal/user"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func SetupRoutes(app *fiber.App, pipeline *upload.Pipeline) {
	// Middleware
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS, PATCH",
	}))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		depth, _ := pipeline.QueueDepth()
		return c.JSON(fiber.Map{
			"status":      "ok",
			"message":     "EventSphere API is running",
			"queue_depth": depth,
		})
	})

	// ==========================================
	// AUTH ROUTES (No authentication required)
	// ==========================================
	authGroup := app.Group("/auth")
	app.Use("/auth", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 1 * time.Minute,
	}))
	authGroup.Post("/register", auth.RegisterHandler)
	authGroup.Post("/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 15 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
	}), auth.LoginHandler)
	authGroup.Get("/google/login", auth.GoogleLogin)
	authGroup.Get("/google/callback", auth.GoogleCallback)
	authGroup.Post("/refresh", limiter.New(limiter.Config{
		Max:        3,
		Expiration: 5 * time.Minute,
	}), auth.RefreshHandler)
	authGroup.Post("/logout", auth.JWTProtected(), auth.LogoutHandler)

	// ==========================================
	// USER MANAGEMENT (Admin only)
	// ==========================================
	userGroup := app.Group("/users")
	userGroup.Use(auth.JWTProtected())
	userGroup.Use(auth.RoleProtected("admin"))
	userGroup.Post("/", user.CreateUserHandler)
	userGroup.Get("/", user.ListUsersHandler)
	userGroup.Get("/:id", user.GetUserHandler)
	userGroup.Put("/:id", user.UpdateUserHandler)
	userGroup.Delete("/:id", user.DeleteUserHandler)

	// ==========================================
	// ROLE MANAGEMENT (Admin only)
	// ==========================================
	roleGroup := app.Group("/roles")
	roleGroup.Use(auth.JWTProtected())
	roleGroup.Use(auth.RoleProtected("admin"))
	roleGroup.Post("/", role.CreateRoleHandler)
	roleGroup.Get("/", role.ListRolesHandler)
	roleGroup.Get("/:id", role.GetRoleHandler)
	roleGroup.Put("/:id", role.UpdateRoleHandler)
	roleGroup.Delete("/:id", role.DeleteRoleHandler)

	// ==========================================
	// EVENTS
	// ==========================================
	eventGroup := app.Group("/events")
	eventGroup.Use(auth.JWTProtected())

	eventGroup.Post("/",
		middleware.PermissionProtected("Event", "create"),
		event.CreateEventHandler)
	eventGroup.Get("/",
		middleware.PermissionProtected("Event", "read"),
		event.ListEventsHandler)
	eventGroup.Get("/:id",
		middleware.PermissionProtected("Event", "read"),
		event.GetEventHandler(pipeline))
	eventGroup.Put("/:id",
		middleware.PermissionProtected("Event", "update"),
		event.UpdateEventHandler)
	eventGroup.Delete("/:id",
		middleware.PermissionProtected("Event", "delete"),
		event.DeleteEventHandler)

	// Event media
	eventGroup.Post("/:id/media",
		middleware.PermissionProtected("Media", "create"),
		pipeline.UploadMediaHandler(models.OwnerTypeEvent))
	eventGroup.Get("/:id/media",
		middleware.PermissionProtected("Media", "read"),
		pipeline.ListMediaHandler(models.OwnerTypeEvent))
	eventGroup.Get("/:id/media/stats",
		middleware.PermissionProtected("Media", "read"),
		pipeline.MediaStatsHandler(models.OwnerTypeEvent))

	// ==========================================
	// FOLIO WORKS
	// ==========================================
	folioGroup := app.Group("/folios")
	folioGroup.Use(auth.JWTProtected())

	folioGroup.Post("/",
		middleware.PermissionProtected("Folio", "create"),
		folio.CreateFolioHandler)
	folioGroup.Get("/",
		middleware.PermissionProtected("Folio", "read"),
		folio.ListFoliosHandler)
	folioGroup.Get("/:id",
		middleware.PermissionProtected("Folio", "read"),
		folio.GetFolioHandler(pipeline))
	folioGroup.Put("/:id",
		middleware.PermissionProtected("Folio", "update"),
		folio.UpdateFolioHandler)
	folioGroup.Delete("/:id",
		middleware.PermissionProtected("Folio", "delete"),
		folio.DeleteFolioHandler)

	// Folio media
	folioGroup.Post("/:id/media",
		middleware.PermissionProtected("Media", "create"),
		pipeline.UploadMediaHandler(models.OwnerTypeFolio))
	folioGroup.Get("/:id/media",
		middleware.PermissionProtected("Media", "read"),
		pipeline.ListMediaHandler(models.OwnerTypeFolio))
	folioGroup.Get("/:id/media/stats",
		middleware.PermissionProtected("Media", "read"),
		pipeline.MediaStatsHandler(models.OwnerTypeFolio))

	// ==========================================
	// MEDIA
	// ==========================================
	mediaGroup := app.Group("/media")
	mediaGroup.Use(auth.JWTProtected())

	mediaGroup.Get("/status/:token",
		middleware.PermissionProtected("Media", "read"),
		pipeline.UploadStatusHandler)
	mediaGroup.Post("/bulk-delete",
		middleware.PermissionProtected("Media", "delete"),
		pipeline.BulkDeleteHandler)
	mediaGroup.Get("/:id",
		middleware.PermissionProtected("Media", "read"),
		pipeline.GetMediaHandler)
	mediaGroup.Patch("/:id",
		middleware.PermissionProtected("Media", "update"),
		pipeline.UpdateMediaHandler)
}
