package model

type direction struct {
	dr, dc int
}

var (
	rookDirs   = []direction{{-1, 0}, {0, -1}, {1, 0}, {0, 1}}
	bishopDirs = []direction{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}}
	queenDirs  = append(append([]direction{}, rookDirs...), bishopDirs...)
	kingDirs   = []direction{{-1, -1}, {-1, 0}, {-1, 1}, {0, -1}, {0, 1}, {1, -1}, {1, 0}, {1, 1}}
	knightDirs = []direction{{-2, -1}, {-2, 1}, {-1, -2}, {-1, 2}, {1, -2}, {1, 2}, {2, -1}, {2, 1}}
)

// PossibleMoves returns the pseudo-legal destinations of the piece on sq,
// ignoring whether the move would leave its own king in check. An empty
// square has no moves.
func PossibleMoves(board *Board, sq Square) []Square {
	piece := board.PieceAt(sq)
	switch piece.Type {
	case Pawn:
		return getPsuedoPawnMoves(board, sq, piece.Color)
	case Knight:
		return getSteppingMoves(board, sq, piece.Color, knightDirs)
	case King:
		return getSteppingMoves(board, sq, piece.Color, kingDirs)
	case Rook:
		return getSlidingMoves(board, sq, piece.Color, rookDirs)
	case Bishop:
		return getSlidingMoves(board, sq, piece.Color, bishopDirs)
	case Queen:
		return getSlidingMoves(board, sq, piece.Color, queenDirs)
	default:
		return nil
	}
}

func getPsuedoPawnMoves(board *Board, sq Square, color Color) []Square {
	moves := []Square{}
	forward, homeRow, enemy := -1, 6, Black
	if color == Black {
		forward, homeRow, enemy = 1, 1, White
	}

	if one, ok := sq.offset(forward, 0); ok && board.PieceAt(one).IsEmpty() {
		moves = append(moves, one)
		if sq.Row() == homeRow {
			if two, ok := sq.offset(2*forward, 0); ok && board.PieceAt(two).IsEmpty() {
				moves = append(moves, two)
			}
		}
	}
	for _, dc := range []int{-1, 1} {
		if target, ok := sq.offset(forward, dc); ok && board.PieceAt(target).Is(enemy) {
			moves = append(moves, target)
		}
	}
	return moves
}

func getSteppingMoves(board *Board, sq Square, color Color, dirs []direction) []Square {
	moves := []Square{}
	for _, dir := range dirs {
		target, ok := sq.offset(dir.dr, dir.dc)
		if ok && !board.PieceAt(target).Is(color) {
			moves = append(moves, target)
		}
	}
	return moves
}

func getSlidingMoves(board *Board, sq Square, color Color, dirs []direction) []Square {
	moves := []Square{}
	for _, dir := range dirs {
		target, ok := sq.offset(dir.dr, dir.dc)
		for ok {
			occupant := board.PieceAt(target)
			if occupant.IsEmpty() {
				moves = append(moves, target)
			} else {
				if occupant.Color != color {
					moves = append(moves, target)
				}
				break
			}
			target, ok = target.offset(dir.dr, dir.dc)
		}
	}
	return moves
}

// LegalMoves returns the destinations of the piece on sq that do not leave
// its own king in check. Each candidate is tried on a copy of the board.
func LegalMoves(board *Board, sq Square) []Square {
	piece := board.PieceAt(sq)
	legal := []Square{}
	for _, to := range PossibleMoves(board, sq) {
		simulated := *board
		simulated.Place(sq, Empty)
		simulated.Place(to, piece)
		if !InCheck(&simulated, piece.Color) {
			legal = append(legal, to)
		}
	}
	return legal
}

// InCheck reports whether any pseudo-legal move of the opponent lands on the
// king of the given color. A board without that king is never in check.
func InCheck(board *Board, color Color) bool {
	king, ok := board.FindKing(color)
	if !ok {
		return false
	}
	return isSquareAttacked(board, color.Opposite(), king)
}

func isSquareAttacked(board *Board, attacker Color, target Square) bool {
	for row := 0; row < boardSize; row++ {
		for col := 0; col < boardSize; col++ {
			if !board.Squares[row][col].Is(attacker) {
				continue
			}
			from := Square{row: int8(row), col: int8(col)}
			for _, to := range PossibleMoves(board, from) {
				if to == target {
					return true
				}
			}
		}
	}
	return false
}

// HasAnyLegalMove stops at the first piece of the color that can move.
func HasAnyLegalMove(board *Board, color Color) bool {
	for row := 0; row < boardSize; row++ {
		for col := 0; col < boardSize; col++ {
			if !board.Squares[row][col].Is(color) {
				continue
			}
			if len(LegalMoves(board, Square{row: int8(row), col: int8(col)})) > 0 {
				return true
			}
		}
	}
	return false
}

// LegalMovesForColor lists every legal move of the color, origin by origin
// in board order.
func LegalMovesForColor(board *Board, color Color) []Move {
	moves := []Move{}
	for _, from := range occupiedBy(board, color) {
		for _, to := range LegalMoves(board, from) {
			moves = append(moves, NewMove(board, from, to))
		}
	}
	return moves
}

// MovablePieces lists the squares of the side to move that have at least one
// legal move.
func MovablePieces(board *Board) []Square {
	movable := []Square{}
	for _, sq := range occupiedBy(board, board.SideToMove) {
		if len(LegalMoves(board, sq)) > 0 {
			movable = append(movable, sq)
		}
	}
	return movable
}

func occupiedBy(board *Board, color Color) []Square {
	squares := []Square{}
	for row := 0; row < boardSize; row++ {
		for col := 0; col < boardSize; col++ {
			if board.Squares[row][col].Is(color) {
				squares = append(squares, Square{row: int8(row), col: int8(col)})
			}
		}
	}
	return squares
}

func IsCheckmate(board *Board) bool {
	color := board.SideToMove
	return InCheck(board, color) && !HasAnyLegalMove(board, color)
}

func IsStalemate(board *Board) bool {
	color := board.SideToMove
	return !InCheck(board, color) && !HasAnyLegalMove(board, color)
}

// Evaluate derives the result for the side to move.
func Evaluate(board *Board) GameResult {
	color := board.SideToMove
	check := InCheck(board, color)
	switch {
	case HasAnyLegalMove(board, color):
		if check {
			return GameResult{Status: Check, Color: color}
		}
		return GameResult{Status: Ongoing, Color: color}
	case check:
		return GameResult{Status: Checkmate, Color: color}
	default:
		return GameResult{Status: Stalemate, Color: color}
	}
}

// TryMove applies from->to when it is legal and returns the applied move and
// the result for the new side to move. An illegal move leaves the board
// untouched and returns ok == false.
func TryMove(board *Board, from, to Square) (applied *Move, result GameResult, ok bool) {
	legal := false
	for _, dest := range LegalMoves(board, from) {
		if dest == to {
			legal = true
			break
		}
	}
	if !legal {
		return nil, GameResult{}, false
	}

	move := NewMove(board, from, to)
	board.Apply(move)
	return &move, Evaluate(board), true
}
