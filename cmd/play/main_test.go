package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/chessrules/chess-server/internal/testutil"
)

func play(t *testing.T, input string) string {
	t.Helper()
	var out bytes.Buffer
	testutil.AssertNoError(t, run(strings.NewReader(input), &out))
	return out.String()
}

func TestFoolsMateSession(t *testing.T) {
	out := play(t, "f2 f3\ne7 e5\ng2 g4\nd8 h4\ne2 e4\nr\nq\n")

	testutil.AssertTrue(t, strings.Contains(out, "Move: White Pawn to f3 (f3)"), out)
	testutil.AssertTrue(t, strings.Contains(out, "Move: Black Queen to h4 (Qh4)"), out)
	testutil.AssertTrue(t, strings.Contains(out, "Checkmate! Press 'r' to play again or 'q' to quit."), out)
	testutil.AssertTrue(t, strings.Contains(out, "Game over. Press 'r' to play again or 'q' to quit."), out)
	testutil.AssertTrue(t, strings.HasSuffix(out, "White> "), "fresh game after r: %q", out)
}

func TestRejectedInput(t *testing.T) {
	out := play(t, "e7 e5\na2 a5\nz9 a1\ne2\nq\n")

	testutil.AssertEqual(t, strings.Count(out, "Select a white piece."), 1)
	testutil.AssertEqual(t, strings.Count(out, "Invalid move!"), 2)
	testutil.AssertTrue(t, strings.Contains(out, "Enter a move as two squares"), out)
	testutil.AssertFalse(t, strings.Contains(out, "Move:"), "nothing was played")
}

func TestCheckAndMovablePieces(t *testing.T) {
	out := play(t, "e2 e4\nf7 f6\nd1 h5\nm\n")

	testutil.AssertTrue(t, strings.Contains(out, "Check!"), out)
	testutil.AssertTrue(t, strings.Contains(out, "Black> g7\n"), out)
}

func TestResetIgnoredMidGame(t *testing.T) {
	out := play(t, "e2 e4\nr\n")
	testutil.AssertTrue(t, strings.HasSuffix(out, "Black> "), out)
}
