package rest

import (
	"encoding/json"
	"net/http"
)

type statsResponse struct {
	ActiveMatches int64 `json:"active_matches"`
	Waiting       int64 `json:"waiting"`
}

// StatsHandler - current number of running matches and whether a player is waiting.
func (that *handlers) StatsHandler(w http.ResponseWriter, _ *http.Request) {
	response := statsResponse{
		ActiveMatches: that.stats.ActiveMatches(),
		Waiting:       that.stats.Waiting(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		that.logger.Error("failed to encode stats", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
}
