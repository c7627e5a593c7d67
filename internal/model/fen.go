package model

import (
	"fmt"
	"strings"
	"unicode"
)

// StartFEN is the starting position. Castling and en passant fields are
// always "-" because neither rule is played.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w - - 0 1"

var fenPieces = map[rune]PieceType{
	'k': King,
	'q': Queen,
	'r': Rook,
	'b': Bishop,
	'n': Knight,
	'p': Pawn,
}

func (p Piece) fenRune() rune {
	for r, pieceType := range fenPieces {
		if pieceType != p.Type {
			continue
		}
		if p.Color == White {
			return unicode.ToUpper(r)
		}
		return r
	}
	return '-'
}

// ParseFEN reads the placement and side-to-move fields of a FEN record.
// The remaining fields are optional and ignored.
func ParseFEN(fen string) (*Board, error) {
	fields := strings.Fields(fen)
	if len(fields) < 2 {
		return nil, fmt.Errorf("%w: need placement and side to move: %q", ErrInvalidFEN, fen)
	}

	ranks := strings.Split(fields[0], "/")
	if len(ranks) != boardSize {
		return nil, fmt.Errorf("%w: %d ranks", ErrInvalidFEN, len(ranks))
	}

	board := &Board{}
	for row, rank := range ranks {
		col := 0
		for _, r := range rank {
			if r >= '1' && r <= '8' {
				col += int(r - '0')
				continue
			}
			pieceType, ok := fenPieces[unicode.ToLower(r)]
			if !ok {
				return nil, fmt.Errorf("%w: unknown piece %q", ErrInvalidFEN, r)
			}
			if col >= boardSize {
				return nil, fmt.Errorf("%w: rank %d overflows", ErrInvalidFEN, boardSize-row)
			}
			color := Black
			if unicode.IsUpper(r) {
				color = White
			}
			board.Squares[row][col] = NewPiece(color, pieceType)
			col++
		}
		if col != boardSize {
			return nil, fmt.Errorf("%w: rank %d has %d files", ErrInvalidFEN, boardSize-row, col)
		}
	}

	switch fields[1] {
	case "w":
		board.SideToMove = White
	case "b":
		board.SideToMove = Black
	default:
		return nil, fmt.Errorf("%w: side to move %q", ErrInvalidFEN, fields[1])
	}
	return board, nil
}

// FEN encodes the position. Clocks are not tracked, so the trailing fields
// are fixed.
func (b *Board) FEN() string {
	var sb strings.Builder
	for row := 0; row < boardSize; row++ {
		if row > 0 {
			sb.WriteByte('/')
		}
		empty := 0
		for col := 0; col < boardSize; col++ {
			p := b.Squares[row][col]
			if p.IsEmpty() {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteRune(p.fenRune())
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
	}
	if b.SideToMove == White {
		sb.WriteString(" w")
	} else {
		sb.WriteString(" b")
	}
	sb.WriteString(" - - 0 1")
	return sb.String()
}
