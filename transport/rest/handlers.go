package rest

import (
	"log/slog"
	"net/http"
)

type Handlers interface {
	PingHandler(w http.ResponseWriter, _ *http.Request)
	StatsHandler(w http.ResponseWriter, _ *http.Request)
}

// StatsProvider reports live lobby counters.
type StatsProvider interface {
	ActiveMatches() int64
	Waiting() int64
}

type handlers struct {
	logger *slog.Logger
	stats  StatsProvider
}

func NewHandlers(logger *slog.Logger, stats StatsProvider) Handlers {
	return &handlers{
		logger: logger.With("component", "rest"),
		stats:  stats,
	}
}
