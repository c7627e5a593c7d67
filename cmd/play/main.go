// Command play runs a two-player game on one terminal.
//
// Enter moves as two squares, e.g. "e2 e4". "m" lists the pieces that can
// move, "r" starts over once the game has ended and "q" quits.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chessrules/chess-server/internal/model"
)

func main() {
	if err := run(os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(in io.Reader, out io.Writer) error {
	board := model.NewBoard()
	gameOver := false
	scanner := bufio.NewScanner(in)

	fmt.Fprint(out, board)
	prompt(out, board, gameOver)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
		case line == "q":
			return nil
		case line == "r":
			if gameOver {
				board = model.NewBoard()
				gameOver = false
				fmt.Fprint(out, board)
			}
		case line == "m":
			fmt.Fprintln(out, joinSquares(model.MovablePieces(board)))
		default:
			if gameOver {
				fmt.Fprintln(out, "Game over. Press 'r' to play again or 'q' to quit.")
				break
			}
			gameOver = playLine(out, board, line)
		}
		prompt(out, board, gameOver)
	}
	return scanner.Err()
}

// playLine applies one "from to" line and reports whether the game ended.
func playLine(out io.Writer, board *model.Board, line string) bool {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		fmt.Fprintln(out, "Enter a move as two squares, e.g. e2 e4")
		return false
	}
	from, err := model.ParseSquare(fields[0])
	if err != nil {
		fmt.Fprintln(out, "Invalid move!")
		return false
	}
	to, err := model.ParseSquare(fields[1])
	if err != nil {
		fmt.Fprintln(out, "Invalid move!")
		return false
	}
	if !board.PieceAt(from).Is(board.SideToMove) {
		fmt.Fprintf(out, "Select a %s piece.\n", board.SideToMove)
		return false
	}

	move, result, ok := model.TryMove(board, from, to)
	if !ok {
		fmt.Fprintln(out, "Invalid move!")
		return false
	}

	fmt.Fprint(out, board)
	fmt.Fprintf(out, "Move: %s (%s)\n", move.Describe(), move.Notation())
	switch result.Status {
	case model.Check:
		fmt.Fprintln(out, "Check!")
	case model.Checkmate:
		fmt.Fprintln(out, "Checkmate! Press 'r' to play again or 'q' to quit.")
		return true
	case model.Stalemate:
		fmt.Fprintln(out, "Stalemate! Press 'r' to play again or 'q' to quit.")
		return true
	}
	return false
}

func prompt(out io.Writer, board *model.Board, gameOver bool) {
	if gameOver {
		fmt.Fprint(out, "> ")
		return
	}
	fmt.Fprintf(out, "%s> ", board.SideToMove.Name())
}

func joinSquares(squares []model.Square) string {
	names := make([]string, len(squares))
	for i, sq := range squares {
		names[i] = sq.String()
	}
	return strings.Join(names, " ")
}
