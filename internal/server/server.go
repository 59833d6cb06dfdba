package server

import (
	"github.com/eventsphere/api/internal/upload"
	"github.com/gofiber/fiber/v2"
)

func New(pipeline *upload.Pipeline) *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit: 100 * 1024 * 1024,
	})

	app.Static("/uploads", "./uploads", fiber.Static{
		Compress:  true,
		ByteRange: true,
		Browse:    false,
		MaxAge:    3600,
	})

	SetupRoutes(app, pipeline)

	return app
}
