package model

import "strings"

// Board is the position: an 8x8 grid and the color to move. Copying a Board
// value copies the whole grid.
type Board struct {
	Squares    [boardSize][boardSize]Piece `json:"board"`
	SideToMove Color                       `json:"toMove"`
}

var backRank = [boardSize]PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// NewBoard returns the standard starting position with White to move.
func NewBoard() *Board {
	board := &Board{SideToMove: White}
	for col := 0; col < boardSize; col++ {
		board.Squares[0][col] = NewPiece(Black, backRank[col])
		board.Squares[1][col] = NewPiece(Black, Pawn)
		board.Squares[6][col] = NewPiece(White, Pawn)
		board.Squares[7][col] = NewPiece(White, backRank[col])
	}
	return board
}

func (b *Board) PieceAt(sq Square) Piece {
	return b.Squares[sq.row][sq.col]
}

// Place puts p on sq, replacing whatever was there. Placing Empty clears it.
func (b *Board) Place(sq Square, p Piece) {
	b.Squares[sq.row][sq.col] = p
}

// Apply moves the piece and hands the turn over. The move is not validated;
// gate it through TryMove or LegalMoves first.
func (b *Board) Apply(m Move) {
	b.Place(m.From, Empty)
	b.Place(m.To, m.PieceMoved)
	b.SideToMove = b.SideToMove.Opposite()
}

// FindKing scans the grid for the king of the given color.
func (b *Board) FindKing(color Color) (Square, bool) {
	king := NewPiece(color, King)
	for row := 0; row < boardSize; row++ {
		for col := 0; col < boardSize; col++ {
			if b.Squares[row][col] == king {
				return Square{row: int8(row), col: int8(col)}, true
			}
		}
	}
	return Square{}, false
}

// String draws the board from White's side, rank 8 first.
func (b *Board) String() string {
	var sb strings.Builder
	for row := 0; row < boardSize; row++ {
		sb.WriteByte(byte('8' - row))
		for col := 0; col < boardSize; col++ {
			sb.WriteByte(' ')
			p := b.Squares[row][col]
			if p.IsEmpty() {
				sb.WriteByte('.')
			} else {
				sb.WriteRune(p.fenRune())
			}
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("  a b c d e f g h\n")
	return sb.String()
}
