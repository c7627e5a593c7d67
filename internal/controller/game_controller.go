package controller

import (
	"errors"

	"github.com/chessrules/chess-server/internal/model"
	"github.com/chessrules/chess-server/internal/service"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

type GameController struct {
	gameService *service.GameService
}

func NewGameController(gameService *service.GameService) *GameController {
	return &GameController{gameService: gameService}
}

// Register mounts the game routes on router.
func (gc *GameController) Register(router fiber.Router) {
	router.Post("/matchmaking/join", gc.JoinMatchmaking)
	router.Post("/matchmaking/leave", gc.LeaveMatchmaking)
	router.Get("/matchmaking/status", gc.MatchmakingStatus)
	router.Post("/create", gc.CreateGame)
	router.Post("/join/:gameId", gc.JoinGame)
	router.Get("/:gameId", gc.GetGameState)
	router.Get("/:gameId/moves", gc.GetLegalMoves)
	router.Get("/:gameId/movable", gc.GetMovablePieces)
	router.Post("/:gameId/move", gc.MakeMove)
	router.Post("/:gameId/reset", gc.ResetGame)
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrGameNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, model.ErrInvalidSquare):
		return fiber.StatusBadRequest
	case errors.Is(err, model.ErrIllegalMove), errors.Is(err, model.ErrNoPiece):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, model.ErrNotInGame):
		return fiber.StatusForbidden
	case errors.Is(err, model.ErrGameFull), errors.Is(err, model.ErrGameOver),
		errors.Is(err, model.ErrNotYourTurn), errors.Is(err, model.ErrGameExists),
		errors.Is(err, model.ErrAlreadyQueued), errors.Is(err, model.ErrTimeExpired):
		return fiber.StatusConflict
	}
	return fiber.StatusInternalServerError
}

func errorResponse(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		log.Errorf("%s %s: %v", c.Method(), c.Path(), err)
	}
	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func playerID(c *fiber.Ctx) string {
	id, _ := c.Locals("playerID").(string)
	return id
}

func (gc *GameController) CreateGame(c *fiber.Ctx) error {
	gameID, err := gc.gameService.CreateGame(c.UserContext(), playerID(c))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Game created",
		"game_id": gameID,
		"color":   model.White,
	})
}

func (gc *GameController) JoinGame(c *fiber.Ctx) error {
	color, err := gc.gameService.JoinGame(c.UserContext(), c.Params("gameId"), playerID(c))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Game joined",
		"color":   color,
	})
}

func (gc *GameController) GetGameState(c *fiber.Ctx) error {
	gameState, err := gc.gameService.GetGameState(c.UserContext(), c.Params("gameId"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(gameState)
}

// GetLegalMoves answers GET /:gameId/moves?square=e2.
func (gc *GameController) GetLegalMoves(c *fiber.Ctx) error {
	sq, err := model.ParseSquare(c.Query("square"))
	if err != nil {
		return errorResponse(c, err)
	}
	moves, err := gc.gameService.LegalMoves(c.UserContext(), c.Params("gameId"), sq)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"square": sq,
		"moves":  moves,
	})
}

func (gc *GameController) GetMovablePieces(c *fiber.Ctx) error {
	squares, err := gc.gameService.MovablePieces(c.UserContext(), c.Params("gameId"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"squares": squares,
	})
}

func (gc *GameController) MakeMove(c *fiber.Ctx) error {
	var move model.SimpleMove
	if err := c.BodyParser(&move); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid move body: " + err.Error(),
		})
	}
	state, err := gc.gameService.HandleMove(c.UserContext(), c.Params("gameId"), playerID(c), move)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(state)
}

func (gc *GameController) ResetGame(c *fiber.Ctx) error {
	state, err := gc.gameService.ResetGame(c.UserContext(), c.Params("gameId"), playerID(c))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(state)
}

func (gc *GameController) JoinMatchmaking(c *fiber.Ctx) error {
	if err := gc.gameService.JoinMatchmaking(playerID(c)); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"status": "queued",
	})
}

func (gc *GameController) LeaveMatchmaking(c *fiber.Ctx) error {
	if !gc.gameService.LeaveMatchmaking(playerID(c)) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "player not in queue",
		})
	}
	return c.JSON(fiber.Map{
		"status": "left",
	})
}

// MatchmakingStatus answers players who queued over REST rather than on the
// matchmaking socket. A match is reported once.
func (gc *GameController) MatchmakingStatus(c *fiber.Ctx) error {
	match, matched, queued := gc.gameService.MatchStatus(playerID(c))
	switch {
	case matched:
		return c.JSON(fiber.Map{
			"status": "matched",
			"gameId": match.GameID,
			"color":  match.Color,
		})
	case queued:
		return c.JSON(fiber.Map{
			"status": "queued",
		})
	}
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"error": "player not in queue",
	})
}
