package server

import (
	"log"
	"strconv"

	"notebot-be/internal/bootstrap"
	"notebot-be/internal/config"
	"notebot-be/internal/pkg/serverutils"
	ws "notebot-be/internal/websocket"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"
)

type Server struct {
	app       *fiber.App
	cfg       *config.Config
	container *bootstrap.Container
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	app := fiber.New(fiber.Config{
		BodyLimit: 1 * 1024 * 1024, // 1MB, notes are short text
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.App.CorsAllowedOrigins,
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization",
	}))

	// OpenTelemetry tracing middleware (traces all HTTP requests)
	app.Use(otelfiber.Middleware())

	app.Use(serverutils.ErrorHandlerMiddleware())

	registerRoutes(app, container)

	return &Server{
		app:       app,
		cfg:       cfg,
		container: container,
	}
}

func (s *Server) GetApp() *fiber.App {
	return s.app
}

func (s *Server) Run() error {
	log.Printf("✅ Server is running on http://localhost:%s", s.cfg.App.Port)
	return s.app.Listen(":" + s.cfg.App.Port)
}

func registerRoutes(app *fiber.App, c *bootstrap.Container) {
	api := app.Group("/api")

	c.DialogueController.RegisterRoutes(api)
	c.NoteController.RegisterRoutes(api)

	// Live chat front end: one socket per device, text frames in, router
	// replies and note-event pushes out.
	app.Get("/ws/chat/:user_id", websocket.New(func(conn *websocket.Conn) {
		userId, err := strconv.ParseInt(conn.Params("user_id"), 10, 64)
		if err != nil || userId <= 0 {
			conn.Close()
			return
		}
		ws.ServeWs(c.WebSocketHub, c.DialogueService, conn, userId)
	}))
}
