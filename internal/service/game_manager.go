// service/game_manager.go
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chessrules/chess-server/internal/model"
	"github.com/chessrules/chess-server/internal/store"
	"github.com/chessrules/chess-server/internal/ws"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
)

// GameStore persists game snapshots. A nil store keeps games in memory.
type GameStore interface {
	Save(ctx context.Context, rec store.Record) error
	Load(ctx context.Context, id string) (store.Record, error)
}

type GameManager struct {
	games            map[string]*model.Game
	queue            *model.Queue
	matchingChannels map[string]chan string
	pendingMatches   map[string]ws.MatchFound // players paired without a channel
	store            GameStore
	timeControl      time.Duration
	mu               sync.RWMutex
}

func NewGameManager(timeControl time.Duration, gameStore GameStore) *GameManager {
	return &GameManager{
		games:            make(map[string]*model.Game),
		queue:            model.NewQueue(),
		matchingChannels: make(map[string]chan string),
		pendingMatches:   make(map[string]ws.MatchFound),
		store:            gameStore,
		timeControl:      timeControl,
	}
}

// RunMatchmaking pairs queued players every interval until ctx is done.
func (gm *GameManager) RunMatchmaking(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for gm.matchNextPair(ctx) {
			}
		}
	}
}

// matchNextPair seats the two longest-waiting players in a new game and
// notifies them. It reports whether a pair was found. gm.mu is held from
// dequeueing to notifying, so MatchStatus never sees a player who is neither
// queued nor matched.
func (gm *GameManager) matchNextPair(ctx context.Context) bool {
	gm.mu.Lock()
	queued1, queued2, ok := gm.queue.GetNextPair()
	if !ok {
		gm.mu.Unlock()
		return false
	}
	player1, player2 := queued1.Player, queued2.Player

	gameID := uuid.New().String()
	game := model.NewGame(gameID, gm.timeControl)
	p1Color, err := game.AddPlayer(player1.ID)
	if err == nil {
		var p2Color model.Color
		p2Color, err = game.AddPlayer(player2.ID)
		if err == nil {
			gm.games[gameID] = game
			gm.notifyMatch(player1.ID, ws.MatchFound{GameID: gameID, Color: p1Color.String()})
			gm.notifyMatch(player2.ID, ws.MatchFound{GameID: gameID, Color: p2Color.String()})
		}
	}
	gm.mu.Unlock()
	if err != nil {
		log.Errorf("matchmaking: seat %s and %s: %v", player1.ID, player2.ID, err)
		return true
	}

	log.Infof("matchmaking: game %s for %s (white) and %s (black) after %s",
		gameID, player1.ID, player2.ID, time.Since(queued1.JoinedAt).Round(time.Millisecond))
	gm.persist(ctx, game.GetState())
	return true
}

// notifyMatch sends the match to the player's channel, or keeps it for
// MatchStatus when the player queued without one. Must be called with gm.mu
// held.
func (gm *GameManager) notifyMatch(playerID string, event ws.MatchFound) {
	ch, ok := gm.matchingChannels[playerID]
	if ok {
		delete(gm.matchingChannels, playerID)
		defer close(ch)
		select {
		case ch <- mustJSON(event):
			return
		default:
		}
	}
	gm.pendingMatches[playerID] = event
}

// MatchStatus hands out, once, the match found for a player who queued
// without a live channel. Otherwise it reports whether the player is still
// waiting.
func (gm *GameManager) MatchStatus(playerID string) (match ws.MatchFound, matched, queued bool) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if event, ok := gm.pendingMatches[playerID]; ok {
		delete(gm.pendingMatches, playerID)
		return event, true, false
	}
	return ws.MatchFound{}, false, gm.queue.Contains(playerID)
}

func (gm *GameManager) RegisterMatchmakingChannel(playerID string, ch chan string) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if existingCh, exists := gm.matchingChannels[playerID]; exists {
		delete(gm.matchingChannels, playerID)
		close(existingCh)
	}
	gm.matchingChannels[playerID] = ch
}

// UnregisterMatchmakingChannel leaves closing the channel to its creator.
func (gm *GameManager) UnregisterMatchmakingChannel(playerID string, ch chan string) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if current, ok := gm.matchingChannels[playerID]; ok && current == ch {
		delete(gm.matchingChannels, playerID)
	}
}

func mustJSON(v interface{}) string {
	bytes, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(bytes)
}

func (gm *GameManager) CreateGame(ctx context.Context, gameID string) (*model.Game, error) {
	gm.mu.Lock()
	if _, exists := gm.games[gameID]; exists {
		gm.mu.Unlock()
		return nil, model.ErrGameExists
	}
	game := model.NewGame(gameID, gm.timeControl)
	gm.games[gameID] = game
	gm.mu.Unlock()

	gm.persist(ctx, game.GetState())
	return game, nil
}

// GetGame looks in memory first, then in the store.
func (gm *GameManager) GetGame(ctx context.Context, gameID string) (*model.Game, error) {
	gm.mu.RLock()
	game, exists := gm.games[gameID]
	gm.mu.RUnlock()
	if exists {
		return game, nil
	}
	if gm.store == nil {
		return nil, model.ErrGameNotFound
	}

	rec, err := gm.store.Load(ctx, gameID)
	if err != nil {
		return nil, err
	}
	board, err := model.ParseFEN(rec.FEN)
	if err != nil {
		return nil, fmt.Errorf("restore game %s: %w", gameID, err)
	}
	restored := model.RestoreGame(rec.ID, gm.timeControl, board, rec.WhiteID, rec.BlackID, rec.Resolve, rec.Version)

	gm.mu.Lock()
	defer gm.mu.Unlock()
	// Another request may have restored it meanwhile.
	if game, exists := gm.games[gameID]; exists {
		return game, nil
	}
	gm.games[gameID] = restored
	log.Infof("restored game %s from store", gameID)
	return restored, nil
}

func (gm *GameManager) AddPlayerToGame(ctx context.Context, gameID string, playerID string) (model.Color, error) {
	game, err := gm.GetGame(ctx, gameID)
	if err != nil {
		return model.White, err
	}
	color, err := game.AddPlayer(playerID)
	if err != nil {
		return color, err
	}
	gm.persist(ctx, game.GetState())
	return color, nil
}

// JoinMatchmaking queues the player. A match left over from an earlier
// queueing is dropped.
func (gm *GameManager) JoinMatchmaking(playerID string) error {
	gm.mu.Lock()
	delete(gm.pendingMatches, playerID)
	gm.mu.Unlock()
	return gm.queue.AddPlayer(model.Player{ID: playerID})
}

func (gm *GameManager) LeaveMatchmaking(playerID string) bool {
	return gm.queue.Remove(playerID)
}

func (gm *GameManager) GetGameState(ctx context.Context, gameID string) (model.GameState, error) {
	game, err := gm.GetGame(ctx, gameID)
	if err != nil {
		return model.GameState{}, err
	}
	return game.GetState(), nil
}

func (gm *GameManager) MakeMove(ctx context.Context, gameID string, playerID string, move model.SimpleMove) (model.GameState, error) {
	game, err := gm.GetGame(ctx, gameID)
	if err != nil {
		return model.GameState{}, err
	}

	_, state, err := game.MakeMove(playerID, move.From, move.To)
	if err != nil && !errors.Is(err, model.ErrTimeExpired) {
		return model.GameState{}, err
	}
	gm.persist(ctx, state)
	return state, err
}

func (gm *GameManager) LegalMoves(ctx context.Context, gameID string, sq model.Square) ([]model.Square, error) {
	game, err := gm.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	return game.LegalMoves(sq), nil
}

func (gm *GameManager) MovablePieces(ctx context.Context, gameID string) ([]model.Square, error) {
	game, err := gm.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	return game.MovablePieces(), nil
}

func (gm *GameManager) ResetGame(ctx context.Context, gameID string, playerID string) (model.GameState, error) {
	game, err := gm.GetGame(ctx, gameID)
	if err != nil {
		return model.GameState{}, err
	}
	state, err := game.Reset(playerID)
	if err != nil {
		return model.GameState{}, err
	}
	gm.persist(ctx, state)
	return state, nil
}

func (gm *GameManager) RegisterConnection(ctx context.Context, gameID string, playerID string, conn model.Conn) error {
	game, err := gm.GetGame(ctx, gameID)
	if err != nil {
		return err
	}
	return game.RegisterConnection(playerID, conn)
}

func (gm *GameManager) UnregisterConnection(gameID string, playerID string, conn model.Conn) {
	gm.mu.RLock()
	game, exists := gm.games[gameID]
	gm.mu.RUnlock()
	if !exists {
		return
	}
	game.UnregisterConnection(playerID, conn)
}

// persist saves a snapshot taken under the game's lock. Failures are
// logged; the in-memory game stays authoritative.
func (gm *GameManager) persist(ctx context.Context, state model.GameState) {
	if gm.store == nil {
		return
	}
	rec := store.Record{
		ID:      state.ID,
		FEN:     state.FEN,
		Status:  state.Status.String(),
		WhiteID: state.Players.White.ID,
		BlackID: state.Players.Black.ID,
		Version: state.Version,
	}
	if state.Resolve != nil {
		rec.Resolve = *state.Resolve
	}
	if err := gm.store.Save(ctx, rec); err != nil {
		log.Errorf("persist game %s: %v", state.ID, err)
	}
}
