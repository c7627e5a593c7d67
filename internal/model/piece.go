package model

import (
	"encoding/json"
	"fmt"
)

type Color uint8

const (
	White Color = iota
	Black
)

func (c Color) Opposite() Color {
	if c == White {
		return Black
	}
	return White
}

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

// Name is the capitalised form used in narration.
func (c Color) Name() string {
	if c == White {
		return "White"
	}
	return "Black"
}

func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Color) UnmarshalText(text []byte) error {
	switch string(text) {
	case "white", "w":
		*c = White
	case "black", "b":
		*c = Black
	default:
		return fmt.Errorf("unknown color %q", text)
	}
	return nil
}

type PieceType uint8

const (
	NoPiece PieceType = iota
	King
	Queen
	Rook
	Bishop
	Knight
	Pawn
)

func (p PieceType) getPieceNotation() string {
	switch p {
	case King:
		return "K"
	case Queen:
		return "Q"
	case Rook:
		return "R"
	case Bishop:
		return "B"
	case Knight:
		return "N"
	}
	return ""
}

func (p PieceType) String() string {
	switch p {
	case King:
		return "king"
	case Queen:
		return "queen"
	case Rook:
		return "rook"
	case Bishop:
		return "bishop"
	case Knight:
		return "knight"
	case Pawn:
		return "pawn"
	}
	return ""
}

// Name is the capitalised form used in narration.
func (p PieceType) Name() string {
	switch p {
	case King:
		return "King"
	case Queen:
		return "Queen"
	case Rook:
		return "Rook"
	case Bishop:
		return "Bishop"
	case Knight:
		return "Knight"
	case Pawn:
		return "Pawn"
	}
	return ""
}

func (p PieceType) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Piece is the content of one square. The zero value is an empty square.
type Piece struct {
	Type  PieceType
	Color Color
}

var Empty = Piece{}

func NewPiece(color Color, pieceType PieceType) Piece {
	return Piece{Type: pieceType, Color: color}
}

func (p Piece) IsEmpty() bool {
	return p.Type == NoPiece
}

// Is reports whether the square holds a piece of the given color.
func (p Piece) Is(color Color) bool {
	return !p.IsEmpty() && p.Color == color
}

func (p Piece) String() string {
	if p.IsEmpty() {
		return "--"
	}
	return string(p.fenRune())
}

func (p Piece) MarshalJSON() ([]byte, error) {
	if p.IsEmpty() {
		return []byte("null"), nil
	}
	return json.Marshal(struct {
		Type  PieceType `json:"type"`
		Color Color     `json:"color"`
	}{p.Type, p.Color})
}
