package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rocketscienceinc/tris-server/internal/entity"
	"github.com/rocketscienceinc/tris-server/internal/match"
)

const (
	EventMatchStarted  = "match:started"
	EventMatchFinished = "match:finished"

	publishTimeout = 2 * time.Second
)

// Event is the JSON payload published for every lifecycle change of a match.
type Event struct {
	Event      string       `json:"event"`
	MatchID    string       `json:"match_id"`
	State      string       `json:"state"`
	Winner     entity.Seat  `json:"winner"`
	Left       entity.Seat  `json:"left,omitempty"`
	Board      entity.Board `json:"board"`
	Moves      int          `json:"moves"`
	DurationMS int64        `json:"duration_ms,omitempty"`
}

// Publisher - match.Observer that announces matches on a Redis channel. Nothing is stored.
type Publisher struct {
	logger  *slog.Logger
	client  *redis.Client
	channel string
}

func New(logger *slog.Logger, client *redis.Client, channel string) *Publisher {
	return &Publisher{
		logger:  logger.With("component", "publisher", "channel", channel),
		client:  client,
		channel: channel,
	}
}

// MatchStarted - publishes a match:started event.
func (that *Publisher) MatchStarted(ctx context.Context, matchID string) {
	that.publish(ctx, Event{
		Event:   EventMatchStarted,
		MatchID: matchID,
		State:   match.StateAwaitingMove.String(),
	})
}

// MatchFinished - publishes a match:finished event with the final board.
func (that *Publisher) MatchFinished(ctx context.Context, result match.Result) {
	that.publish(ctx, Event{
		Event:      EventMatchFinished,
		MatchID:    result.MatchID,
		State:      result.State.String(),
		Winner:     result.Winner,
		Left:       result.Left,
		Board:      result.Board,
		Moves:      result.Moves,
		DurationMS: result.Duration.Milliseconds(),
	})
}

// publish - failures are logged only; a match never waits on Redis longer than publishTimeout.
func (that *Publisher) publish(ctx context.Context, event Event) {
	log := that.logger.With("method", "publish", "event", event.Event, "matchID", event.MatchID)

	if err := that.send(ctx, event); err != nil {
		log.Warn("failed to publish match event", "error", err)
		return
	}

	log.Debug("match event published")
}

func (that *Publisher) send(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err = that.client.Publish(ctx, that.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish to Redis: %w", err)
	}

	return nil
}
