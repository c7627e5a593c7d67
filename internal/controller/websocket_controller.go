package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/chessrules/chess-server/internal/model"
	"github.com/chessrules/chess-server/internal/service"
	"github.com/chessrules/chess-server/internal/ws"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/websocket/v2"
)

type WebSocketController struct {
	gameService *service.GameService
}

func NewWebSocketController(gameService *service.GameService) *WebSocketController {
	return &WebSocketController{
		gameService: gameService,
	}
}

// selectPayload asks for the legal moves of one square.
type selectPayload struct {
	Square model.Square `json:"square"`
}

type legalMovesPayload struct {
	Square model.Square   `json:"square"`
	Moves  []model.Square `json:"moves"`
}

// syncConn serialises writes; broadcasts from other goroutines share the
// connection with the read loop's replies.
type syncConn struct {
	*websocket.Conn
	mu sync.Mutex
}

func (s *syncConn) WriteJSON(v interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Conn.WriteJSON(v)
}

func (s *syncConn) WriteMessage(messageType int, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Conn.WriteMessage(messageType, data)
}

// HandleConnection serves one player's live connection to a game.
func (wsc *WebSocketController) HandleConnection(conn *websocket.Conn) {
	gameID, _ := conn.Locals("wsGameID").(string)
	playerID, _ := conn.Locals("wsPlayerID").(string)
	ctx := context.Background()
	c := &syncConn{Conn: conn}

	if err := wsc.gameService.RegisterConnection(ctx, gameID, playerID, c); err != nil {
		log.Warnf("ws game %s: register player %s: %v", gameID, playerID, err)
		wsc.sendError(c, err)
		c.Close()
		return
	}
	defer wsc.gameService.UnregisterConnection(gameID, playerID, c)

	for {
		messageType, message, err := c.ReadMessage()
		if err != nil {
			log.Debugf("ws game %s: read from player %s: %v", gameID, playerID, err)
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var msg ws.Message
		if err := json.Unmarshal(message, &msg); err != nil {
			wsc.sendError(c, fmt.Errorf("parse message: %w", err))
			continue
		}

		reply, err := wsc.handleMessage(ctx, gameID, playerID, msg)
		if err != nil {
			wsc.sendError(c, err)
			continue
		}
		if reply != nil {
			if err := c.WriteJSON(reply); err != nil {
				log.Warnf("ws game %s: write to player %s: %v", gameID, playerID, err)
				return
			}
		}
	}
}

// handleMessage executes one client message. State changes reach every
// connection through the game's broadcast, so only queries return a reply.
func (wsc *WebSocketController) handleMessage(ctx context.Context, gameID, playerID string, msg ws.Message) (*ws.Message, error) {
	switch msg.Type {
	case ws.MessageTypeMove:
		var move model.SimpleMove
		if err := json.Unmarshal(msg.Payload, &move); err != nil {
			return nil, err
		}
		_, err := wsc.gameService.HandleMove(ctx, gameID, playerID, move)
		return nil, err

	case ws.MessageTypeSelect:
		var sel selectPayload
		if err := json.Unmarshal(msg.Payload, &sel); err != nil {
			return nil, err
		}
		moves, err := wsc.gameService.LegalMoves(ctx, gameID, sel.Square)
		if err != nil {
			return nil, err
		}
		reply, err := ws.NewMessage(ws.MessageTypeLegalMoves, legalMovesPayload{Square: sel.Square, Moves: moves})
		return &reply, err

	case ws.MessageTypeReset:
		_, err := wsc.gameService.ResetGame(ctx, gameID, playerID)
		return nil, err

	case ws.MessageTypeGameState:
		state, err := wsc.gameService.GetGameState(ctx, gameID)
		if err != nil {
			return nil, err
		}
		reply, err := ws.NewMessage(ws.MessageTypeGameState, state)
		return &reply, err

	default:
		return nil, fmt.Errorf("unknown message type: %s", msg.Type)
	}
}

// HandleMatchmaking queues the player and holds the connection open until a
// game is found or the client goes away.
func (wsc *WebSocketController) HandleMatchmaking(c *websocket.Conn) {
	playerID, _ := c.Locals("wsPlayerID").(string)
	ch := make(chan string, 1)
	wsc.gameService.RegisterMatchmakingChannel(playerID, ch)
	defer wsc.gameService.UnregisterMatchmakingChannel(playerID, ch)

	if err := wsc.gameService.JoinMatchmaking(playerID); err != nil {
		wsc.sendError(c, err)
		return
	}

	// A read error means the client left; drop them from the queue.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	select {
	case event, ok := <-ch:
		if !ok {
			return
		}
		if err := c.WriteJSON(ws.Message{Type: ws.MessageTypeMatchFound, Payload: json.RawMessage(event)}); err != nil {
			log.Warnf("ws matchmaking: notify player %s: %v", playerID, err)
		}
	case <-gone:
		wsc.gameService.LeaveMatchmaking(playerID)
	}
}

func (wsc *WebSocketController) sendError(c model.Conn, err error) {
	msg, merr := ws.NewMessage(ws.MessageTypeError, ws.ErrorPayload{Error: err.Error()})
	if merr != nil {
		return
	}
	if werr := c.WriteJSON(msg); werr != nil {
		log.Debugf("ws: send error: %v", werr)
	}
}
