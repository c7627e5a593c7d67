package model

import "fmt"

// Move is a proposed transition captured against the board it was built
// from. It is never mutated after construction.
type Move struct {
	From          Square `json:"from"`
	To            Square `json:"to"`
	PieceMoved    Piece  `json:"piece"`
	PieceCaptured Piece  `json:"capturedPiece"`
}

func NewMove(board *Board, from, to Square) Move {
	return Move{
		From:          from,
		To:            to,
		PieceMoved:    board.PieceAt(from),
		PieceCaptured: board.PieceAt(to),
	}
}

// Equal compares only the coordinates.
func (m Move) Equal(other Move) bool {
	return m.From == other.From && m.To == other.To
}

func (m Move) IsCapture() bool {
	return !m.PieceCaptured.IsEmpty()
}

// Notation is the piece letter (none for pawns) followed by the destination,
// e.g. "Qe5" or "e5".
func (m Move) Notation() string {
	return m.PieceMoved.Type.getPieceNotation() + m.To.String()
}

// Describe is the spoken form, e.g. "White Queen to d3".
func (m Move) Describe() string {
	return fmt.Sprintf("%s %s to %s", m.PieceMoved.Color.Name(), m.PieceMoved.Type.Name(), m.To)
}

// SimpleMove is a bare coordinate pair as sent by clients.
type SimpleMove struct {
	From Square `json:"from"`
	To   Square `json:"to"`
}
