package match

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/rocketscienceinc/tris-server/internal/entity"
	"github.com/rocketscienceinc/tris-server/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBrokenPipe = errors.New("broken pipe")

// scriptedTransport replays a fixed list of client lines and records what the server sent.
// Running out of lines looks like the client hanging up.
type scriptedTransport struct {
	lines    []string
	sent     []string
	reads    int
	closed   bool
	failSend int // 1-based index of the write that fails, 0 for never
}

func (that *scriptedTransport) ReadLine() (string, error) {
	if that.closed || len(that.lines) == 0 {
		return "", io.EOF
	}

	line := that.lines[0]
	that.lines = that.lines[1:]
	that.reads++

	return line, nil
}

func (that *scriptedTransport) WriteLine(text string) error {
	if that.closed {
		return io.ErrClosedPipe
	}

	if that.failSend > 0 && len(that.sent)+1 == that.failSend {
		that.failSend = 0
		return errBrokenPipe
	}

	that.sent = append(that.sent, text)

	return nil
}

func (that *scriptedTransport) Close() error {
	that.closed = true
	return nil
}

type recordingObserver struct {
	started  []string
	finished []Result
}

func (that *recordingObserver) MatchStarted(_ context.Context, matchID string) {
	that.started = append(that.started, matchID)
}

func (that *recordingObserver) MatchFinished(_ context.Context, result Result) {
	that.finished = append(that.finished, result)
}

func newTestMatch(seat1, seat2 *scriptedTransport, observer Observer) *Match {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return New(logger,
		session.NewEndpoint(entity.Seat1, seat1),
		session.NewEndpoint(entity.Seat2, seat2),
		observer)
}

func runMatch(seat1Lines, seat2Lines []string) (Result, *scriptedTransport, *scriptedTransport) {
	seat1 := &scriptedTransport{lines: seat1Lines}
	seat2 := &scriptedTransport{lines: seat2Lines}

	result := newTestMatch(seat1, seat2, nil).Run(context.Background())

	return result, seat1, seat2
}

func TestMatch_FirstMove(t *testing.T) {
	// Given: a fresh pair where seat 1 plays the center and seat 2 then hangs up
	result, seat1, seat2 := runMatch([]string{"4"}, nil)

	// Then: both got READY, seat 1 got OK, seat 2 got the board without a tag
	assert.Equal(t, []string{"READY", "OK", "DISCONNECTED"}, seat1.sent)
	assert.Equal(t, []string{"READY", "0,0,0,0,1,0,0,0,0,"}, seat2.sent)

	// Then: the match ended on seat 2 leaving
	assert.Equal(t, StateDisconnected, result.State)
	assert.Equal(t, entity.Seat2, result.Left)
	assert.Equal(t, 1, result.Moves)
}

func TestMatch_RejectedMoves(t *testing.T) {
	t.Run("Out of range keeps the turn", func(t *testing.T) {
		// Given: seat 1 sends 9, then a legal move
		result, seat1, seat2 := runMatch([]string{"9", "0"}, nil)

		// Then: KO first, the board is untouched, and seat 1 is read again
		assert.Equal(t, []string{"READY", "KO", "OK", "DISCONNECTED"}, seat1.sent)
		assert.Equal(t, []string{"READY", "1,0,0,0,0,0,0,0,0,"}, seat2.sent)
		assert.Equal(t, 2, seat1.reads)
		assert.Equal(t, 1, result.Moves)
	})

	t.Run("Malformed input keeps the turn", func(t *testing.T) {
		// Given: seat 1 sends garbage, then hangs up
		result, seat1, seat2 := runMatch([]string{"x"}, []string{"4"})

		// Then: KO, seat 2 was never read and never saw a board
		assert.Equal(t, []string{"READY", "KO"}, seat1.sent)
		assert.Equal(t, []string{"READY", "DISCONNECTED"}, seat2.sent)
		assert.Equal(t, 0, seat2.reads)
		assert.Equal(t, entity.Board{}, result.Board)
		assert.Equal(t, entity.Seat1, result.Left)
	})

	t.Run("Repeated bad moves never change board or turn", func(t *testing.T) {
		// Given: seat 1 sends several bad lines before playing 4,
		// and seat 2 tries the occupied cell before playing 0
		result, seat1, seat2 := runMatch(
			[]string{"x", "9", "-1", "  ", "4"},
			[]string{"4", "4", "0"},
		)

		// Then: every bad line got exactly one KO to its sender
		assert.Equal(t, []string{"READY", "KO", "KO", "KO", "KO", "OK", "2,0,0,0,1,0,0,0,0,"}, seat1.sent)
		assert.Equal(t, []string{"READY", "0,0,0,0,1,0,0,0,0,", "KO", "KO", "OK", "DISCONNECTED"}, seat2.sent)

		// Then: only the two accepted moves are on the board
		assert.Equal(t, entity.Board{0: 2, 4: 1}, result.Board)
	})

	t.Run("Whitespace around the index is accepted", func(t *testing.T) {
		_, seat1, _ := runMatch([]string{"  8\t"}, nil)

		assert.Equal(t, []string{"READY", "OK", "DISCONNECTED"}, seat1.sent)
	})
}

func TestMatch_TurnAlternation(t *testing.T) {
	// Given: both seats play two non-terminal moves each
	result, seat1, seat2 := runMatch([]string{"0", "8"}, []string{"4", "2"})

	// Then: every accepted move is acknowledged to the mover and mirrored to the other seat
	assert.Equal(t, []string{"READY", "OK", "1,0,0,0,2,0,0,0,0,", "OK", "1,0,2,0,2,0,0,0,1,"}, seat1.sent)
	assert.Equal(t, []string{"READY", "1,0,0,0,0,0,0,0,0,", "OK", "1,0,0,0,2,0,0,0,1,", "OK", "DISCONNECTED"}, seat2.sent)

	// Then: seat 1 was the one to hang up, on its third turn
	assert.Equal(t, entity.Seat1, result.Left)
	assert.Equal(t, 2, seat1.reads)
	assert.Equal(t, 2, seat2.reads)
}

func TestMatch_Win(t *testing.T) {
	// Given: seat 1 completes the top row on its third move, with lines left over
	result, seat1, seat2 := runMatch([]string{"0", "1", "2", "5"}, []string{"3", "4", "6"})

	// Then: the mover gets W and the opponent a snapshot tagged L
	assert.Equal(t, "W", seat1.sent[len(seat1.sent)-1])
	assert.Equal(t, "1,1,1,2,2,0,0,0,0,L", seat2.sent[len(seat2.sent)-1])

	// Then: nothing else is read once the game is decided
	assert.Equal(t, []string{"5"}, seat1.lines)
	assert.Equal(t, []string{"6"}, seat2.lines)

	// Then: both endpoints are closed
	assert.True(t, seat1.closed)
	assert.True(t, seat2.closed)

	assert.Equal(t, StateWon, result.State)
	assert.Equal(t, entity.Seat1, result.Winner)
	assert.Equal(t, 5, result.Moves)
}

func TestMatch_WinBySeat2(t *testing.T) {
	// Given: seat 2 completes the left column
	result, seat1, seat2 := runMatch([]string{"1", "2", "8"}, []string{"0", "3", "6"})

	// Then: seat 2 wins and seat 1 sees the losing board
	assert.Equal(t, StateWon, result.State)
	assert.Equal(t, entity.Seat2, result.Winner)
	assert.Equal(t, "W", seat2.sent[len(seat2.sent)-1])
	assert.Equal(t, "2,1,1,2,0,0,2,0,1,L", seat1.sent[len(seat1.sent)-1])
}

func TestMatch_Draw(t *testing.T) {
	// Given: nine moves that fill the board without a line
	result, seat1, seat2 := runMatch(
		[]string{"0", "2", "3", "7", "8"},
		[]string{"1", "4", "5", "6"},
	)

	// Then: the mover gets P and the opponent a snapshot tagged P
	assert.Equal(t, "P", seat1.sent[len(seat1.sent)-1])
	assert.Equal(t, "1,2,1,1,2,2,2,1,1,P", seat2.sent[len(seat2.sent)-1])

	// Then: the match is drawn and closed
	assert.Equal(t, StateDrawn, result.State)
	assert.Equal(t, entity.NoSeat, result.Winner)
	assert.Equal(t, 9, result.Moves)
	assert.True(t, seat1.closed)
	assert.True(t, seat2.closed)
}

func TestMatch_Disconnect(t *testing.T) {
	t.Run("Seat 2 leaves before its first move", func(t *testing.T) {
		// Given: seat 1 moves and seat 2 never answers
		result, seat1, seat2 := runMatch([]string{"4"}, nil)

		// Then: seat 1 is told and both endpoints are closed
		assert.Equal(t, entity.MsgDisconnected, seat1.sent[len(seat1.sent)-1])
		assert.True(t, seat1.closed)
		assert.True(t, seat2.closed)
		assert.Equal(t, StateDisconnected, result.State)
	})

	t.Run("Seat 1 leaves immediately", func(t *testing.T) {
		// Given: seat 1 hangs up right after READY
		result, seat1, seat2 := runMatch(nil, []string{"4"})

		// Then: seat 2 is told, seat 1 gets nothing more
		assert.Equal(t, []string{"READY"}, seat1.sent)
		assert.Equal(t, []string{"READY", "DISCONNECTED"}, seat2.sent)
		assert.Equal(t, entity.Seat1, result.Left)
	})

	t.Run("Failed snapshot write is the opponent leaving", func(t *testing.T) {
		// Given: seat 2 whose second write breaks
		seat1 := &scriptedTransport{lines: []string{"4", "0"}}
		seat2 := &scriptedTransport{lines: []string{"0"}, failSend: 2}

		// When: the match runs
		result := newTestMatch(seat1, seat2, nil).Run(context.Background())

		// Then: seat 1 got its OK and then the notice; seat 2 was never read
		assert.Equal(t, []string{"READY", "OK", "DISCONNECTED"}, seat1.sent)
		assert.Equal(t, entity.Seat2, result.Left)
		assert.Equal(t, 0, seat2.reads)
	})

	t.Run("Failed READY ends the match before play", func(t *testing.T) {
		// Given: seat 1 that cannot be written to
		seat1 := &scriptedTransport{lines: []string{"4"}, failSend: 1}
		seat2 := &scriptedTransport{lines: []string{"0"}}

		// When: the match runs
		result := newTestMatch(seat1, seat2, nil).Run(context.Background())

		// Then: seat 2 never sees READY, only the notice
		assert.Equal(t, []string{"DISCONNECTED"}, seat2.sent)
		assert.Equal(t, StateDisconnected, result.State)
		assert.Equal(t, entity.Seat1, result.Left)
	})
}

func TestMatch_Observer(t *testing.T) {
	// Given: a match with a recording observer
	observer := &recordingObserver{}
	seat1 := &scriptedTransport{lines: []string{"0", "1", "2"}}
	seat2 := &scriptedTransport{lines: []string{"3", "4"}}
	m := newTestMatch(seat1, seat2, observer)

	// When: the match runs to a win
	result := m.Run(context.Background())

	// Then: the observer saw one start and one finish with the same id
	require.Len(t, observer.started, 1)
	require.Len(t, observer.finished, 1)
	assert.Equal(t, m.ID, observer.started[0])
	assert.Equal(t, result, observer.finished[0])
	assert.NotEmpty(t, result.MatchID)
}

func TestState_IsTerminal(t *testing.T) {
	assert.False(t, StateStarting.IsTerminal())
	assert.False(t, StateAwaitingMove.IsTerminal())
	assert.True(t, StateWon.IsTerminal())
	assert.True(t, StateDrawn.IsTerminal())
	assert.True(t, StateDisconnected.IsTerminal())
	assert.Equal(t, "awaiting_move", StateAwaitingMove.String())
}
