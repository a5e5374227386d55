package match

import (
	"context"
	"time"

	"github.com/rocketscienceinc/tris-server/internal/entity"
)

type State int

const (
	StateStarting State = iota
	StateAwaitingMove
	StateWon
	StateDrawn
	StateDisconnected
)

func (that State) String() string {
	switch that {
	case StateStarting:
		return "starting"
	case StateAwaitingMove:
		return "awaiting_move"
	case StateWon:
		return "won"
	case StateDrawn:
		return "drawn"
	case StateDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

func (that State) IsTerminal() bool {
	return that == StateWon || that == StateDrawn || that == StateDisconnected
}

// Result describes how a match ended.
type Result struct {
	MatchID  string
	State    State
	Winner   entity.Seat
	Left     entity.Seat // seat that dropped out, set with StateDisconnected
	Board    entity.Board
	Moves    int
	Duration time.Duration
}

// Observer is told about match lifecycle events. Implementations must not block for long:
// they run on the match goroutine.
type Observer interface {
	MatchStarted(ctx context.Context, matchID string)
	MatchFinished(ctx context.Context, result Result)
}
