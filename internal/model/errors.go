package model

import (
	"errors"
	"fmt"
)

// Sentinel errors. Check them with errors.Is; most are returned wrapped.
var (
	ErrInvalidSquare = errors.New("invalid square")
	ErrInvalidFEN    = errors.New("invalid FEN string")
	ErrIllegalMove   = errors.New("illegal move")
	ErrNoPiece       = errors.New("no piece at from square")
	ErrNotYourTurn   = errors.New("not your turn")
	ErrNotInGame     = errors.New("player not in game")
	ErrGameNotFound  = errors.New("game not found")
	ErrGameExists    = errors.New("game already exists")
	ErrGameFull      = errors.New("game is full")
	ErrGameOver      = errors.New("game is over")
	ErrAlreadyQueued = errors.New("player already in queue")
	ErrTimeExpired   = errors.New("time expired")
)

// MoveError wraps a rejected move with its coordinates.
type MoveError struct {
	Err  error
	From Square
	To   Square
}

func (e *MoveError) Error() string {
	return fmt.Sprintf("%s to %s: %v", e.From, e.To, e.Err)
}

func (e *MoveError) Unwrap() error {
	return e.Err
}
