package controller

import (
	"github.com/chessrules/chess-server/internal/middleware"
	"github.com/chessrules/chess-server/internal/service"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
)

// NewApp wires middleware, REST routes and WebSocket routes around the
// game service.
func NewApp(gameService *service.GameService, allowOrigins string) *fiber.App {
	// Player IDs from headers outlive the request, so values must not
	// alias fasthttp's buffers.
	app := fiber.New(fiber.Config{
		AppName:   "chess-server",
		Immutable: true,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, X-Player-ID",
		AllowMethods:     "GET, POST, OPTIONS",
		AllowCredentials: true,
	}))

	gameController := NewGameController(gameService)
	wsController := NewWebSocketController(gameService)

	wsConfig := websocket.Config{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
	app.Get("/ws/game/:gameId",
		middleware.EnsurePlayerID(),
		middleware.WebSocketUpgrade(true),
		websocket.New(wsController.HandleConnection, wsConfig))
	app.Get("/ws/matchmaking",
		middleware.EnsurePlayerID(),
		middleware.WebSocketUpgrade(false),
		websocket.New(wsController.HandleMatchmaking, wsConfig))

	api := app.Group("/api", middleware.EnsurePlayerID())
	gameController.Register(api.Group("/game"))

	return app
}
