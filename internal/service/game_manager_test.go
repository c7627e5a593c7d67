package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/chessrules/chess-server/internal/model"
	"github.com/chessrules/chess-server/internal/store"
	"github.com/chessrules/chess-server/internal/testutil"
	"github.com/chessrules/chess-server/internal/ws"
)

type memStore struct {
	mu      sync.Mutex
	records map[string]store.Record
	saves   int
	failing bool
}

func newMemStore() *memStore {
	return &memStore{records: make(map[string]store.Record)}
}

func (m *memStore) Save(_ context.Context, rec store.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return errors.New("disk full")
	}
	m.saves++
	m.records[rec.ID] = rec
	return nil
}

func (m *memStore) Load(_ context.Context, id string) (store.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok {
		return store.Record{}, fmt.Errorf("load %s: %w", id, model.ErrGameNotFound)
	}
	return rec, nil
}

func sq(t *testing.T, name string) model.Square {
	t.Helper()
	s, err := model.ParseSquare(name)
	testutil.AssertNoError(t, err)
	return s
}

func move(t *testing.T, from, to string) model.SimpleMove {
	return model.SimpleMove{From: sq(t, from), To: sq(t, to)}
}

func TestCreateAndPlay(t *testing.T) {
	ctx := context.Background()
	st := newMemStore()
	gs := NewGameService(NewGameManager(0, st))

	gameID, err := gs.CreateGame(ctx, "alice")
	testutil.AssertNoError(t, err)
	color, err := gs.JoinGame(ctx, gameID, "bob")
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, color, model.Black)

	state, err := gs.HandleMove(ctx, gameID, "alice", move(t, "e2", "e4"))
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, state.ToMove, model.Black)
	testutil.AssertEqual(t, state.Narration, "White Pawn to e4")

	_, err = gs.HandleMove(ctx, gameID, "alice", move(t, "d2", "d4"))
	testutil.AssertErrorIs(t, err, model.ErrNotYourTurn)

	rec, err := st.Load(ctx, gameID)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, rec.FEN, state.FEN)
	testutil.AssertEqual(t, rec.WhiteID, "alice")
	testutil.AssertEqual(t, rec.BlackID, "bob")
	testutil.AssertEqual(t, rec.Status, "ongoing")

	moves, err := gs.LegalMoves(ctx, gameID, sq(t, "g8"))
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, len(moves), 2)

	movable, err := gs.MovablePieces(ctx, gameID)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, len(movable), 10)
}

func TestUnknownGame(t *testing.T) {
	ctx := context.Background()
	gs := NewGameService(NewGameManager(0, nil))

	_, err := gs.GetGameState(ctx, "missing")
	testutil.AssertErrorIs(t, err, model.ErrGameNotFound)
	_, err = gs.HandleMove(ctx, "missing", "alice", move(t, "e2", "e4"))
	testutil.AssertErrorIs(t, err, model.ErrGameNotFound)
	_, err = gs.JoinGame(ctx, "missing", "alice")
	testutil.AssertErrorIs(t, err, model.ErrGameNotFound)
}

func TestCreateGameTwice(t *testing.T) {
	gm := NewGameManager(0, nil)
	_, err := gm.CreateGame(context.Background(), "fixed")
	testutil.AssertNoError(t, err)
	_, err = gm.CreateGame(context.Background(), "fixed")
	testutil.AssertErrorIs(t, err, model.ErrGameExists)
}

func TestRestoreFromStore(t *testing.T) {
	ctx := context.Background()
	st := newMemStore()

	first := NewGameManager(0, st)
	_, err := first.CreateGame(ctx, "g1")
	testutil.AssertNoError(t, err)
	_, err = first.AddPlayerToGame(ctx, "g1", "alice")
	testutil.AssertNoError(t, err)
	_, err = first.AddPlayerToGame(ctx, "g1", "bob")
	testutil.AssertNoError(t, err)
	for _, m := range []model.SimpleMove{move(t, "f2", "f3"), move(t, "e7", "e5"), move(t, "g2", "g4")} {
		player := "alice"
		if m.From.Row() < 4 {
			player = "bob"
		}
		_, err := first.MakeMove(ctx, "g1", player, m)
		testutil.AssertNoError(t, err)
	}

	// A fresh manager, as after a restart, finds the game in the store.
	second := NewGameManager(0, st)
	state, err := second.GetGameState(ctx, "g1")
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, state.ToMove, model.Black)
	testutil.AssertEqual(t, state.Players.White.ID, "alice")

	state, err = second.MakeMove(ctx, "g1", "bob", move(t, "d8", "h4"))
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, state.Status, model.Checkmate)

	rec, err := st.Load(ctx, "g1")
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, rec.Status, "checkmate")
	testutil.AssertEqual(t, rec.Resolve, "checkmate")
}

func TestRestoreRejectsCorruptRecord(t *testing.T) {
	st := newMemStore()
	st.records["bad"] = store.Record{ID: "bad", FEN: "not a fen"}

	_, err := NewGameManager(0, st).GetGame(context.Background(), "bad")
	testutil.AssertErrorIs(t, err, model.ErrInvalidFEN)
}

func TestPersistFailureKeepsGameInMemory(t *testing.T) {
	ctx := context.Background()
	st := newMemStore()
	st.failing = true
	gm := NewGameManager(0, st)

	_, err := gm.CreateGame(ctx, "g")
	testutil.AssertNoError(t, err)
	_, err = gm.GetGame(ctx, "g")
	testutil.AssertNoError(t, err)
}

func TestResetGame(t *testing.T) {
	ctx := context.Background()
	gs := NewGameService(NewGameManager(0, nil))
	gameID, err := gs.CreateGame(ctx, "alice")
	testutil.AssertNoError(t, err)

	_, err = gs.HandleMove(ctx, gameID, "alice", move(t, "e2", "e4"))
	testutil.AssertNoError(t, err)

	state, err := gs.ResetGame(ctx, gameID, "alice")
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, state.FEN, model.StartFEN)

	_, err = gs.ResetGame(ctx, gameID, "mallory")
	testutil.AssertErrorIs(t, err, model.ErrNotInGame)
}

func TestMatchmaking(t *testing.T) {
	ctx := context.Background()
	gm := NewGameManager(0, newMemStore())

	ch1 := make(chan string, 1)
	ch2 := make(chan string, 1)
	gm.RegisterMatchmakingChannel("alice", ch1)
	gm.RegisterMatchmakingChannel("bob", ch2)

	testutil.AssertNoError(t, gm.JoinMatchmaking("alice"))
	testutil.AssertErrorIs(t, gm.JoinMatchmaking("alice"), model.ErrAlreadyQueued)
	testutil.AssertFalse(t, gm.matchNextPair(ctx), "one player is not a pair")

	testutil.AssertNoError(t, gm.JoinMatchmaking("bob"))
	testutil.AssertTrue(t, gm.matchNextPair(ctx))

	var found1, found2 ws.MatchFound
	testutil.AssertNoError(t, json.Unmarshal([]byte(<-ch1), &found1))
	testutil.AssertNoError(t, json.Unmarshal([]byte(<-ch2), &found2))
	testutil.AssertEqual(t, found1.GameID, found2.GameID)
	testutil.AssertEqual(t, found1.Color, "white")
	testutil.AssertEqual(t, found2.Color, "black")

	_, open := <-ch1
	testutil.AssertFalse(t, open, "channel closed after the match")

	game, err := gm.GetGame(ctx, found1.GameID)
	testutil.AssertNoError(t, err)
	testutil.AssertTrue(t, game.IsPlayerInGame("alice"))
	testutil.AssertTrue(t, game.IsPlayerInGame("bob"))
}

func TestMatchStatusWithoutChannel(t *testing.T) {
	gm := NewGameManager(0, nil)
	ch := make(chan string, 1)
	gm.RegisterMatchmakingChannel("bob", ch)

	_, matched, queued := gm.MatchStatus("alice")
	testutil.AssertFalse(t, matched)
	testutil.AssertFalse(t, queued)

	testutil.AssertNoError(t, gm.JoinMatchmaking("alice"))
	_, matched, queued = gm.MatchStatus("alice")
	testutil.AssertFalse(t, matched)
	testutil.AssertTrue(t, queued)

	testutil.AssertNoError(t, gm.JoinMatchmaking("bob"))
	testutil.AssertTrue(t, gm.matchNextPair(context.Background()))

	match, matched, _ := gm.MatchStatus("alice")
	testutil.AssertTrue(t, matched, "match kept for a player without a channel")
	testutil.AssertEqual(t, match.Color, "white")

	var viaChannel ws.MatchFound
	testutil.AssertNoError(t, json.Unmarshal([]byte(<-ch), &viaChannel))
	testutil.AssertEqual(t, viaChannel.GameID, match.GameID)
	_, matched, _ = gm.MatchStatus("bob")
	testutil.AssertFalse(t, matched, "bob was told on his channel")

	_, matched, queued = gm.MatchStatus("alice")
	testutil.AssertFalse(t, matched, "reported once")
	testutil.AssertFalse(t, queued)
}

func TestPersistedVersionFollowsGame(t *testing.T) {
	ctx := context.Background()
	st := newMemStore()
	gm := NewGameManager(0, st)
	_, err := gm.CreateGame(ctx, "g")
	testutil.AssertNoError(t, err)
	_, err = gm.AddPlayerToGame(ctx, "g", "alice")
	testutil.AssertNoError(t, err)

	state, err := gm.MakeMove(ctx, "g", "alice", move(t, "e2", "e4"))
	testutil.AssertNoError(t, err)
	rec, err := st.Load(ctx, "g")
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, rec.Version, state.Version)
	testutil.AssertEqual(t, rec.Version, int64(2))
	testutil.AssertEqual(t, rec.FEN, state.FEN)

	restored, err := NewGameManager(0, st).GetGameState(ctx, "g")
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, restored.Version, int64(2))
}

func TestLeaveMatchmaking(t *testing.T) {
	gm := NewGameManager(0, nil)
	testutil.AssertNoError(t, gm.JoinMatchmaking("alice"))
	testutil.AssertTrue(t, gm.LeaveMatchmaking("alice"))
	testutil.AssertFalse(t, gm.LeaveMatchmaking("alice"))
}

func TestRunMatchmakingStopsWithContext(t *testing.T) {
	gm := NewGameManager(0, nil)
	ch := make(chan string, 1)
	gm.RegisterMatchmakingChannel("alice", ch)
	gm.RegisterMatchmakingChannel("bob", make(chan string, 1))
	testutil.AssertNoError(t, gm.JoinMatchmaking("alice"))
	testutil.AssertNoError(t, gm.JoinMatchmaking("bob"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		gm.RunMatchmaking(ctx, 5*time.Millisecond)
		close(done)
	}()

	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("no match within 2s")
	}
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("matchmaking loop did not stop")
	}
}

func TestRegisterMatchmakingChannelReplacesOld(t *testing.T) {
	gm := NewGameManager(0, nil)
	old := make(chan string, 1)
	gm.RegisterMatchmakingChannel("alice", old)
	gm.RegisterMatchmakingChannel("alice", make(chan string, 1))

	_, open := <-old
	testutil.AssertFalse(t, open)
}
