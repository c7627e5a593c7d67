package service

import (
	"context"
	"fmt"

	"github.com/chessrules/chess-server/internal/model"
	"github.com/chessrules/chess-server/internal/ws"
	"github.com/google/uuid"
)

type GameService struct {
	gameManager *GameManager
}

func NewGameService(gameManager *GameManager) *GameService {
	return &GameService{
		gameManager: gameManager,
	}
}

func (gs *GameService) JoinGame(ctx context.Context, gameID string, playerID string) (model.Color, error) {
	return gs.gameManager.AddPlayerToGame(ctx, gameID, playerID)
}

// CreateGame creates a game under a fresh id and seats the creator as white.
func (gs *GameService) CreateGame(ctx context.Context, playerID string) (string, error) {
	gameID := uuid.New().String()

	if _, err := gs.gameManager.CreateGame(ctx, gameID); err != nil {
		return "", fmt.Errorf("failed to create game: %w", err)
	}
	if _, err := gs.gameManager.AddPlayerToGame(ctx, gameID, playerID); err != nil {
		return "", fmt.Errorf("failed to seat creator: %w", err)
	}
	return gameID, nil
}

func (gs *GameService) JoinMatchmaking(playerID string) error {
	return gs.gameManager.JoinMatchmaking(playerID)
}

func (gs *GameService) LeaveMatchmaking(playerID string) bool {
	return gs.gameManager.LeaveMatchmaking(playerID)
}

func (gs *GameService) MatchStatus(playerID string) (ws.MatchFound, bool, bool) {
	return gs.gameManager.MatchStatus(playerID)
}

func (gs *GameService) GetGameState(ctx context.Context, gameID string) (model.GameState, error) {
	return gs.gameManager.GetGameState(ctx, gameID)
}

func (gs *GameService) HandleMove(ctx context.Context, gameID string, playerID string, move model.SimpleMove) (model.GameState, error) {
	return gs.gameManager.MakeMove(ctx, gameID, playerID, move)
}

func (gs *GameService) LegalMoves(ctx context.Context, gameID string, sq model.Square) ([]model.Square, error) {
	return gs.gameManager.LegalMoves(ctx, gameID, sq)
}

func (gs *GameService) MovablePieces(ctx context.Context, gameID string) ([]model.Square, error) {
	return gs.gameManager.MovablePieces(ctx, gameID)
}

func (gs *GameService) ResetGame(ctx context.Context, gameID string, playerID string) (model.GameState, error) {
	return gs.gameManager.ResetGame(ctx, gameID, playerID)
}

func (gs *GameService) RegisterConnection(ctx context.Context, gameID string, playerID string, conn model.Conn) error {
	return gs.gameManager.RegisterConnection(ctx, gameID, playerID, conn)
}

func (gs *GameService) UnregisterConnection(gameID string, playerID string, conn model.Conn) {
	gs.gameManager.UnregisterConnection(gameID, playerID, conn)
}

func (gs *GameService) RegisterMatchmakingChannel(playerID string, ch chan string) {
	gs.gameManager.RegisterMatchmakingChannel(playerID, ch)
}

func (gs *GameService) UnregisterMatchmakingChannel(playerID string, ch chan string) {
	gs.gameManager.UnregisterMatchmakingChannel(playerID, ch)
}
