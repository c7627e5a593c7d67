package model

import (
	"encoding/json"
	"fmt"
)

const boardSize = 8

// Square is a board coordinate. Row 0 is rank 8 and column 0 is the a-file.
// Squares are only built through NewSquare or ParseSquare, so both
// coordinates are always in [0,7].
type Square struct {
	row int8
	col int8
}

func NewSquare(row, col int) (Square, error) {
	if !boundaryCheck(row, col) {
		return Square{}, fmt.Errorf("%w: row %d col %d", ErrInvalidSquare, row, col)
	}
	return Square{row: int8(row), col: int8(col)}, nil
}

// ParseSquare reads algebraic coordinates such as "e4".
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 {
		return Square{}, fmt.Errorf("%w: %q", ErrInvalidSquare, s)
	}
	file, rank := s[0], s[1]
	if file >= 'A' && file <= 'H' {
		file += 'a' - 'A'
	}
	if file < 'a' || file > 'h' || rank < '1' || rank > '8' {
		return Square{}, fmt.Errorf("%w: %q", ErrInvalidSquare, s)
	}
	return Square{row: int8('8' - rank), col: int8(file - 'a')}, nil
}

func (s Square) Row() int { return int(s.row) }
func (s Square) Col() int { return int(s.col) }

// offset returns the square (dr, dc) away and whether it is on the board.
func (s Square) offset(dr, dc int) (Square, bool) {
	r, c := int(s.row)+dr, int(s.col)+dc
	if !boundaryCheck(r, c) {
		return Square{}, false
	}
	return Square{row: int8(r), col: int8(c)}, true
}

func (s Square) getFileNotation() string {
	return fmt.Sprintf("%c", 'a'+s.col)
}

func (s Square) getRankNotation() string {
	return fmt.Sprintf("%d", boardSize-int(s.row))
}

func (s Square) String() string {
	return s.getFileNotation() + s.getRankNotation()
}

func (s Square) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Square) UnmarshalText(text []byte) error {
	sq, err := ParseSquare(string(text))
	if err != nil {
		return err
	}
	*s = sq
	return nil
}

// MarshalJSON is explicit so Square keeps its string form inside maps and
// slices as well.
func (s Square) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Square) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidSquare, data)
	}
	return s.UnmarshalText([]byte(text))
}

func boundaryCheck(row, col int) bool {
	return row >= 0 && row < boardSize && col >= 0 && col < boardSize
}
