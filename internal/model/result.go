package model

import "fmt"

type Status uint8

const (
	Ongoing Status = iota
	Check
	Checkmate
	Stalemate
)

func (s Status) String() string {
	switch s {
	case Check:
		return "check"
	case Checkmate:
		return "checkmate"
	case Stalemate:
		return "stalemate"
	}
	return "ongoing"
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	switch string(text) {
	case "ongoing":
		*s = Ongoing
	case "check":
		*s = Check
	case "checkmate":
		*s = Checkmate
	case "stalemate":
		*s = Stalemate
	default:
		return fmt.Errorf("unknown status %q", text)
	}
	return nil
}

// GameResult is derived from a board after each move; Color is the side the
// status applies to, i.e. the side to move.
type GameResult struct {
	Status Status `json:"status"`
	Color  Color  `json:"color"`
}

func (r GameResult) IsTerminal() bool {
	return r.Status == Checkmate || r.Status == Stalemate
}

func (r GameResult) String() string {
	if r.Status == Ongoing {
		return r.Status.String()
	}
	return fmt.Sprintf("%s (%s)", r.Status, r.Color)
}
