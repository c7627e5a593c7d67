package model

import (
	"testing"

	"github.com/chessrules/chess-server/internal/testutil"
)

func TestNotationAndDescription(t *testing.T) {
	tests := []struct {
		name     string
		piece    Piece
		to       string
		notation string
		describe string
	}{
		{"knight", NewPiece(White, Knight), "e5", "Ne5", "White Knight to e5"},
		{"pawn", NewPiece(White, Pawn), "e5", "e5", "White Pawn to e5"},
		{"black queen", NewPiece(Black, Queen), "d3", "Qd3", "Black Queen to d3"},
		{"king", NewPiece(Black, King), "h8", "Kh8", "Black King to h8"},
		{"rook", NewPiece(White, Rook), "a1", "Ra1", "White Rook to a1"},
		{"bishop", NewPiece(Black, Bishop), "c6", "Bc6", "Black Bishop to c6"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Move{From: sq("a8"), To: sq(tt.to), PieceMoved: tt.piece}
			testutil.AssertEqual(t, m.Notation(), tt.notation)
			testutil.AssertEqual(t, m.Describe(), tt.describe)
		})
	}
}

func TestNotationHasNoCaptureOrCheckMarks(t *testing.T) {
	b := mustFEN(t, "4k3/8/8/8/8/8/4q3/4K3 w - - 0 1")
	move, _, ok := TryMove(b, sq("e1"), sq("e2"))
	testutil.AssertTrue(t, ok)
	testutil.AssertEqual(t, move.Notation(), "Ke2")
}

func TestNewMoveCapturesPiecesBeforeMutation(t *testing.T) {
	b := NewBoard()
	m := NewMove(b, sq("g1"), sq("f3"))
	b.Apply(m)

	testutil.AssertEqual(t, m.PieceMoved, NewPiece(White, Knight))
	testutil.AssertTrue(t, m.PieceCaptured.IsEmpty())
	testutil.AssertEqual(t, b.PieceAt(sq("f3")), NewPiece(White, Knight))
	testutil.AssertTrue(t, b.PieceAt(sq("g1")).IsEmpty())
	testutil.AssertEqual(t, b.SideToMove, Black)
}

func TestMoveEqualComparesCoordinatesOnly(t *testing.T) {
	a := Move{From: sq("e2"), To: sq("e4"), PieceMoved: NewPiece(White, Pawn)}
	b := Move{From: sq("e2"), To: sq("e4")}
	c := Move{From: sq("e2"), To: sq("e3"), PieceMoved: NewPiece(White, Pawn)}

	testutil.AssertTrue(t, a.Equal(b))
	testutil.AssertFalse(t, a.Equal(c))
}
