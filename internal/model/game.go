package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chessrules/chess-server/internal/ws"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/websocket/v2"
)

const resolveTimeout = "timeout"

// The connections for a specific game
type GameConnections struct {
	connections map[string]Conn // playerID -> connection
	mu          sync.RWMutex
}

func NewGameConnections() *GameConnections {
	return &GameConnections{
		connections: make(map[string]Conn),
	}
}

// Game is one board shared by two players and any spectators.
type Game struct {
	ID          string
	mu          sync.Mutex
	board       *Board
	result      GameResult
	resolve     string
	white       string
	black       string
	lastMove    *Move
	sound       string
	narration   string
	whiteClock  *Clock
	blackClock  *Clock
	version     int64
	connections *GameConnections
}

// GameState is the snapshot sent to clients and persisted.
type GameState struct {
	ID            string                      `json:"id"`
	Version       int64                       `json:"version"`
	Board         [boardSize][boardSize]Piece `json:"board"`
	ToMove        Color                       `json:"toMove"`
	FEN           string                      `json:"fen"`
	Status        Status                      `json:"status"`
	IsCheck       bool                        `json:"isCheck"`
	Resolve       *string                     `json:"resolve"`
	Winner        *Color                      `json:"winner"`
	LastMove      *Move                       `json:"lastMove"`
	Notation      string                      `json:"notation"`
	Narration     string                      `json:"narration"`
	Announcement  string                      `json:"announcement"`
	Sound         string                      `json:"sound"`
	MovablePieces []Square                    `json:"movablePieces"`
	Players       struct {
		White ClientPlayer `json:"white"`
		Black ClientPlayer `json:"black"`
	} `json:"players"`
}

func NewGame(id string, timeControl time.Duration) *Game {
	return RestoreGame(id, timeControl, NewBoard(), "", "", "", 0)
}

// RestoreGame rebuilds a game from a stored position. The result is
// recomputed from the board; resolve only carries outcomes the board cannot
// show, such as a timeout. version continues the stored snapshot's count.
func RestoreGame(id string, timeControl time.Duration, board *Board, white, black, resolve string, version int64) *Game {
	g := &Game{
		ID:          id,
		board:       board,
		white:       white,
		black:       black,
		version:     version,
		whiteClock:  NewClock(timeControl),
		blackClock:  NewClock(timeControl),
		connections: NewGameConnections(),
	}
	g.result = Evaluate(board)
	g.resolve = resolveFor(g.result)
	if resolve == resolveTimeout {
		g.resolve = resolve
	}
	return g
}

func resolveFor(result GameResult) string {
	if result.IsTerminal() {
		return result.Status.String()
	}
	return ""
}

// AddPlayer seats the player as white, then black. Joining again returns the
// seat already held.
func (g *Game) AddPlayer(playerID string) (Color, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if color, ok := g.colorOf(playerID); ok {
		return color, nil
	}
	if g.white == "" {
		g.white = playerID
		g.version++
		return White, nil
	}
	if g.black == "" {
		g.black = playerID
		g.version++
		return Black, nil
	}
	return White, ErrGameFull
}

func (g *Game) IsPlayerInGame(playerID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	_, ok := g.colorOf(playerID)
	return ok
}

func (g *Game) colorOf(playerID string) (Color, bool) {
	switch {
	case playerID == "":
		return White, false
	case g.white == playerID:
		return White, true
	case g.black == playerID:
		return Black, true
	}
	return White, false
}

func (g *Game) canSpectate() bool {
	return g.white == "" || g.black == ""
}

func (g *Game) isOver() bool {
	return g.resolve != ""
}

// MakeMove plays from->to for the player and broadcasts the new state. The
// returned state is the snapshot taken with the move, also on ErrTimeExpired.
func (g *Game) MakeMove(playerID string, from, to Square) (Move, GameState, error) {
	g.mu.Lock()

	move, err := g.makeMove(playerID, from, to)
	state := g.state()
	g.mu.Unlock()

	if err != nil && !errors.Is(err, ErrTimeExpired) {
		return Move{}, GameState{}, err
	}
	g.broadcastState(state)
	return move, state, err
}

func (g *Game) makeMove(playerID string, from, to Square) (Move, error) {
	if g.isOver() {
		return Move{}, ErrGameOver
	}
	color, ok := g.colorOf(playerID)
	if !ok {
		return Move{}, ErrNotInGame
	}
	// Either player's attempt ends the game once the side to move is out of time.
	if g.flagFell() {
		return Move{}, ErrTimeExpired
	}
	if color != g.board.SideToMove {
		return Move{}, ErrNotYourTurn
	}
	if g.board.PieceAt(from).IsEmpty() {
		return Move{}, &MoveError{Err: ErrNoPiece, From: from, To: to}
	}

	applied, result, ok := TryMove(g.board, from, to)
	if !ok {
		return Move{}, &MoveError{Err: ErrIllegalMove, From: from, To: to}
	}

	g.clockFor(color).Stop()
	g.clockFor(color.Opposite()).Start()

	g.version++
	g.lastMove = applied
	g.result = result
	g.resolve = resolveFor(result)
	g.narration = applied.Describe()
	switch {
	case result.Status != Ongoing:
		g.sound = result.Status.String()
	case applied.IsCapture():
		g.sound = "capture"
	default:
		g.sound = "move"
	}
	log.Debugf("game %s: %s (%s), %s", g.ID, applied.Notation(), applied.Describe(), result)
	return *applied, nil
}

// flagFell resolves the game as a timeout when the side to move has run out
// of time, and reports whether this call did so. Only the side to move's
// clock runs.
func (g *Game) flagFell() bool {
	if g.isOver() {
		return false
	}
	color := g.board.SideToMove
	if !g.clockFor(color).Expired() {
		return false
	}
	g.clockFor(color).Stop()
	g.version++
	g.resolve = resolveTimeout
	g.sound = ""
	g.narration = fmt.Sprintf("%s ran out of time", color.Name())
	log.Debugf("game %s: %s flagged", g.ID, color)
	return true
}

func (g *Game) clockFor(color Color) *Clock {
	if color == White {
		return g.whiteClock
	}
	return g.blackClock
}

// LegalMoves returns the destinations of the piece on sq when it belongs to
// the side to move; otherwise none.
func (g *Game) LegalMoves(sq Square) []Square {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.isOver() || !g.board.PieceAt(sq).Is(g.board.SideToMove) {
		return []Square{}
	}
	return LegalMoves(g.board, sq)
}

func (g *Game) MovablePieces() []Square {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.isOver() {
		return []Square{}
	}
	return MovablePieces(g.board)
}

// Reset starts a fresh board with the same players and returns the new
// state.
func (g *Game) Reset(playerID string) (GameState, error) {
	g.mu.Lock()
	if _, ok := g.colorOf(playerID); !ok {
		g.mu.Unlock()
		return GameState{}, ErrNotInGame
	}
	g.version++
	g.board = NewBoard()
	g.result = GameResult{Status: Ongoing, Color: White}
	g.resolve = ""
	g.lastMove = nil
	g.sound = ""
	g.narration = ""
	g.whiteClock.Reset()
	g.blackClock.Reset()
	state := g.state()
	g.mu.Unlock()

	g.broadcastState(state)
	return state, nil
}

// GetState returns the current snapshot. A clock that ran out since the last
// move ends the game here, and the result is broadcast.
func (g *Game) GetState() GameState {
	g.mu.Lock()
	flagged := g.flagFell()
	state := g.state()
	g.mu.Unlock()

	if flagged {
		g.broadcastState(state)
	}
	return state
}

func (g *Game) state() GameState {
	state := GameState{
		ID:            g.ID,
		Version:       g.version,
		Board:         g.board.Squares,
		ToMove:        g.board.SideToMove,
		FEN:           g.board.FEN(),
		Status:        g.result.Status,
		IsCheck:       g.result.Status == Check || g.result.Status == Checkmate,
		LastMove:      g.lastMove,
		Narration:     g.narration,
		Sound:         g.sound,
		MovablePieces: []Square{},
	}
	if g.lastMove != nil {
		state.Notation = g.lastMove.Notation()
	}
	if g.resolve != "" {
		resolve := g.resolve
		state.Resolve = &resolve
	}
	switch {
	case g.result.Status == Checkmate:
		winner := g.result.Color.Opposite()
		state.Winner = &winner
		state.Announcement = "Checkmate!"
	case g.resolve == resolveTimeout:
		winner := g.board.SideToMove.Opposite()
		state.Winner = &winner
		state.Announcement = "Time!"
	case g.result.Status == Stalemate:
		state.Announcement = "Stalemate!"
	case g.result.Status == Check:
		state.Announcement = "Check!"
	}
	if !g.isOver() {
		state.MovablePieces = MovablePieces(g.board)
	}
	state.Players.White = ClientPlayer{ID: g.white, Color: White, TimeLeft: max(0, g.whiteClock.GetTimeLeft().Milliseconds())}
	state.Players.Black = ClientPlayer{ID: g.black, Color: Black, TimeLeft: max(0, g.blackClock.GetTimeLeft().Milliseconds())}
	return state
}

// Board returns a copy of the current position.
func (g *Game) Board() Board {
	g.mu.Lock()
	defer g.mu.Unlock()

	return *g.board
}

func (g *Game) RegisterConnection(playerID string, conn Conn) error {
	g.mu.Lock()
	isAuthorized := true
	if _, ok := g.colorOf(playerID); !ok {
		isAuthorized = g.canSpectate()
	}
	state := g.state()
	g.mu.Unlock()

	if !isAuthorized {
		return ErrNotInGame
	}

	g.connections.mu.Lock()
	if _, exists := g.connections.connections[playerID]; exists {
		// Keep the healthy connection and turn the new one away.
		g.connections.mu.Unlock()
		conn.WriteMessage(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "Connection already exists"),
		)
		conn.Close()
		return nil
	}
	g.connections.connections[playerID] = conn
	g.connections.mu.Unlock()
	log.Debugf("game %s: registered connection for player %s", g.ID, playerID)

	g.broadcastState(state)
	return nil
}

// UnregisterConnection drops the player's connection only if conn is still
// the registered one.
func (g *Game) UnregisterConnection(playerID string, conn Conn) {
	g.connections.mu.Lock()
	defer g.connections.mu.Unlock()

	if current, exists := g.connections.connections[playerID]; exists && current == conn {
		delete(g.connections.connections, playerID)
		log.Debugf("game %s: unregistered connection for player %s", g.ID, playerID)
	}
}

func (g *Game) ConnectionCount() int {
	g.connections.mu.RLock()
	defer g.connections.mu.RUnlock()
	return len(g.connections.connections)
}

func (g *Game) broadcastState(state GameState) {
	payload, err := json.Marshal(state)
	if err != nil {
		log.Errorf("game %s: marshal state: %v", g.ID, err)
		return
	}

	g.connections.mu.RLock()
	activeConnections := make(map[string]Conn, len(g.connections.connections))
	for playerID, conn := range g.connections.connections {
		activeConnections[playerID] = conn
	}
	g.connections.mu.RUnlock()

	for playerID, conn := range activeConnections {
		if err := conn.WriteJSON(ws.Message{
			Type:    ws.MessageTypeGameState,
			Payload: json.RawMessage(payload),
		}); err != nil {
			log.Warnf("game %s: send state to player %s: %v", g.ID, playerID, err)
			g.UnregisterConnection(playerID, conn)
		}
	}
}
