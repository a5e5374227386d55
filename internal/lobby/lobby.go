package lobby

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rocketscienceinc/tris-server/internal/apperror"
	"github.com/rocketscienceinc/tris-server/internal/entity"
	"github.com/rocketscienceinc/tris-server/internal/match"
	"github.com/rocketscienceinc/tris-server/internal/session"
)

const (
	minAcceptDelay = 5 * time.Millisecond
	maxAcceptDelay = time.Second
)

// Lobby accepts clients and pairs them in arrival order, one match per pair.
type Lobby struct {
	logger   *slog.Logger
	listener Listener
	observer match.Observer

	matches sync.WaitGroup
	active  atomic.Int64
	waiting atomic.Int64
	closed  atomic.Bool
}

// New - creates a lobby on listener. observer may be nil and is handed to every match.
func New(logger *slog.Logger, listener Listener, observer match.Observer) *Lobby {
	return &Lobby{
		logger:   logger.With("component", "lobby"),
		listener: listener,
		observer: observer,
	}
}

// AcceptLoop - pairs clients until Stop is called or ctx is done.
// It returns nil on a requested shutdown and an error only if the listener fails on its own.
func (that *Lobby) AcceptLoop(ctx context.Context) error {
	log := that.logger.With("method", "AcceptLoop")

	stop := context.AfterFunc(ctx, func() {
		if err := that.Stop(); err != nil {
			log.Error("failed to stop lobby", "error", err)
		}
	})
	defer stop()

	log.Info("waiting for players", "addr", that.Addr())

	var waiting *session.Endpoint

	for {
		transport, err := that.accept()
		if err != nil {
			if waiting != nil {
				waiting.Close()
				that.waiting.Store(0)
			}

			return that.result(err)
		}

		if waiting != nil && !waiting.Alive() {
			log.Info("waiting player left before pairing", "remote", waiting.Addr())
			waiting.Close()
			waiting = nil
			that.waiting.Store(0)
		}

		if waiting == nil {
			waiting = that.seat(transport)
			continue
		}

		second := session.NewEndpoint(entity.Seat2, transport)
		log.Info("player connected", "seat", int(entity.Seat2), "remote", second.Addr())

		that.waiting.Store(0)
		that.dispatch(ctx, waiting, second)
		waiting = nil
	}
}

// seat - puts a new arrival in the pairing slot as seat 1 and tells it to wait.
// Returns nil when the client is already gone.
func (that *Lobby) seat(transport session.Transport) *session.Endpoint {
	log := that.logger.With("method", "seat")

	endpoint := session.NewEndpoint(entity.Seat1, transport)
	log.Info("player connected", "seat", int(entity.Seat1), "remote", endpoint.Addr())

	if err := endpoint.SendLine(entity.MsgWait); err != nil {
		log.Info("waiting player left before pairing", "error", err)
		endpoint.Close()

		return nil
	}

	that.waiting.Store(1)

	return endpoint
}

// accept - blocks for the next client. Accept errors are logged and retried with a growing
// delay while the lobby is open.
func (that *Lobby) accept() (session.Transport, error) {
	log := that.logger.With("method", "accept")

	var delay time.Duration

	for {
		transport, err := that.listener.Accept()
		if err == nil {
			return transport, nil
		}

		if that.closed.Load() {
			return nil, apperror.ErrLobbyClosed
		}

		if errors.Is(err, net.ErrClosed) {
			return nil, fmt.Errorf("listener closed unexpectedly: %w", err)
		}

		delay = min(max(2*delay, minAcceptDelay), maxAcceptDelay)

		log.Error("accept error", "error", err, "retryIn", delay)
		time.Sleep(delay)
	}
}

// dispatch - runs the match on its own goroutine. Matches outlive Stop.
func (that *Lobby) dispatch(ctx context.Context, first, second *session.Endpoint) {
	m := match.New(that.logger, first, second, that.observer)

	that.active.Add(1)
	that.matches.Add(1)

	go func() {
		defer that.matches.Done()
		defer that.active.Add(-1)

		m.Run(context.WithoutCancel(ctx))
	}()
}

func (that *Lobby) result(err error) error {
	if errors.Is(err, apperror.ErrLobbyClosed) {
		that.logger.Info("lobby stopped")
		return nil
	}

	return err
}

// Stop - closes the listener. Safe to call more than once; running matches are left alone.
func (that *Lobby) Stop() error {
	if that.closed.Swap(true) {
		return nil
	}

	if err := that.listener.Close(); err != nil {
		return fmt.Errorf("failed to close listener: %w", err)
	}

	return nil
}

// Wait - blocks until every dispatched match has finished.
func (that *Lobby) Wait() {
	that.matches.Wait()
}

func (that *Lobby) ActiveMatches() int64 {
	return that.active.Load()
}

// Waiting - 1 while a player sits in the pairing slot, else 0.
func (that *Lobby) Waiting() int64 {
	return that.waiting.Load()
}

func (that *Lobby) Addr() string {
	if addr := that.listener.Addr(); addr != nil {
		return addr.String()
	}

	return ""
}
