package match

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rocketscienceinc/tris-server/internal/apperror"
	"github.com/rocketscienceinc/tris-server/internal/entity"
	"github.com/rocketscienceinc/tris-server/internal/session"
)

// Match runs one game between two endpoints. All board mutation happens inside Run,
// on the goroutine that calls it.
type Match struct {
	ID string

	logger   *slog.Logger
	observer Observer

	board  entity.Board
	first  *session.Endpoint
	second *session.Endpoint

	current  *session.Endpoint
	opponent *session.Endpoint
	state    State
	left     entity.Seat
}

// New - creates a match for seat 1 and seat 2. observer may be nil.
func New(logger *slog.Logger, first, second *session.Endpoint, observer Observer) *Match {
	id := uuid.NewString()

	return &Match{
		ID:       id,
		logger:   logger.With("component", "match", "matchID", id),
		observer: observer,
		first:    first,
		second:   second,
		state:    StateStarting,
	}
}

// Run - plays the match to a terminal state, closes both endpoints and returns the outcome.
// ctx only scopes observer calls; a running game is never cut short by it.
func (that *Match) Run(ctx context.Context) Result {
	log := that.logger.With("method", "Run")
	started := time.Now()

	log.Info("game session started", "seat1", that.first.Addr(), "seat2", that.second.Addr())

	if that.observer != nil {
		that.observer.MatchStarted(ctx, that.ID)
	}

	that.play()

	that.first.Close()
	that.second.Close()

	result := Result{
		MatchID:  that.ID,
		State:    that.state,
		Left:     that.left,
		Board:    that.board,
		Moves:    that.board.Moves(),
		Duration: time.Since(started),
	}
	if that.state == StateWon {
		result.Winner = that.current.Seat
	}

	log.Info("game session ended", "state", that.state.String(), "winner", int(result.Winner), "moves", result.Moves)

	if that.observer != nil {
		that.observer.MatchFinished(ctx, result)
	}

	return result
}

func (that *Match) play() {
	if !that.start() {
		return
	}

	for !that.state.IsTerminal() {
		that.turn()
	}
}

// start - sends READY in seat order and hands the first turn to seat 1.
func (that *Match) start() bool {
	if err := that.first.SendLine(entity.MsgReady); err != nil {
		that.disconnect(that.first, that.second, err)
		return false
	}

	if err := that.second.SendLine(entity.MsgReady); err != nil {
		that.disconnect(that.second, that.first, err)
		return false
	}

	that.current, that.opponent = that.first, that.second
	that.state = StateAwaitingMove

	return true
}

// turn - handles one line from the current player.
func (that *Match) turn() {
	log := that.logger.With("method", "turn", "seat", int(that.current.Seat))

	line, err := that.current.ReadLine()
	if err != nil {
		that.disconnect(that.current, that.opponent, err)
		return
	}

	cell, err := parseMove(line)
	if err == nil {
		err = that.board.Place(cell, that.current.Seat)
	}

	if err != nil {
		log.Debug("move rejected", "line", line, "error", err)

		if sendErr := that.current.SendLine(entity.MsgKO); sendErr != nil {
			that.disconnect(that.current, that.opponent, sendErr)
		}

		return
	}

	log.Debug("move accepted", "cell", cell)

	switch {
	case that.board.CheckWinner() == that.current.Seat:
		that.state = StateWon
		that.finish(entity.MsgWin, entity.TagLost)
	case that.board.CheckDraw():
		that.state = StateDrawn
		that.finish(entity.MsgDraw, entity.TagDraw)
	default:
		that.advance()
	}
}

// advance - acknowledges a non-terminal move and passes the turn.
func (that *Match) advance() {
	if err := that.current.SendLine(entity.MsgOK); err != nil {
		that.disconnect(that.current, that.opponent, err)
		return
	}

	if err := that.opponent.SendLine(that.board.Snapshot(entity.TagNone)); err != nil {
		that.disconnect(that.opponent, that.current, err)
		return
	}

	that.current, that.opponent = that.opponent, that.current
}

// finish - delivers the final pair of messages. The outcome is already decided,
// so a write failure here is only logged.
func (that *Match) finish(moverMsg, opponentTag string) {
	log := that.logger.With("method", "finish")

	if err := that.current.SendLine(moverMsg); err != nil {
		log.Warn("failed to deliver result to mover", "error", err)
	}

	if err := that.opponent.SendLine(that.board.Snapshot(opponentTag)); err != nil {
		log.Warn("failed to deliver result to opponent", "error", err)
	}
}

// disconnect - gone dropped out; the survivor gets an explicit notice.
func (that *Match) disconnect(gone, survivor *session.Endpoint, cause error) {
	log := that.logger.With("method", "disconnect")

	that.state = StateDisconnected
	that.left = gone.Seat

	log.Info("player disconnected", "seat", int(gone.Seat), "error", cause)

	if err := survivor.SendLine(entity.MsgDisconnected); err != nil {
		log.Debug("failed to notify opponent", "error", err)
	}
}

func parseMove(line string) (int, error) {
	cell, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", apperror.ErrMalformedMove, line)
	}

	return cell, nil
}
