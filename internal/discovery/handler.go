package discovery

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

type Handler struct {
	browse  func(ctx context.Context) ([]Peer, error)
	timeout time.Duration
}

// NewHandler serves LAN lookups that wait at most timeout for answers.
func NewHandler(timeout time.Duration) *Handler {
	return &Handler{browse: Browse, timeout: timeout}
}

// Peers lists relays found on the local network.
func (h *Handler) Peers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	peers, err := h.browse(ctx)
	if err != nil {
		slog.Error("browse lan", "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "lan lookup failed"})
		return
	}
	if peers == nil {
		peers = []Peer{}
	}
	writeJSON(w, http.StatusOK, peers)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
