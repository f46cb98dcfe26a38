package api

import "net/http"

// StatsProvider defines the interface for getting service statistics.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// StatsHandler handles stats requests.
type StatsHandler struct {
	statsProvider StatsProvider
	hub           *Hub
}

// NewStatsHandler creates a new stats handler. When hub is set the number
// of connected stream clients is reported as streamClients.
func NewStatsHandler(statsProvider StatsProvider, hub *Hub) *StatsHandler {
	return &StatsHandler{statsProvider: statsProvider, hub: hub}
}

// HandleStats handles GET /stats requests.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, _ *http.Request) {
	stats := make(map[string]interface{})
	for k, v := range h.statsProvider.GetStats() {
		stats[k] = v
	}
	if h.hub != nil {
		stats["streamClients"] = h.hub.Clients()
	}
	writeJSON(w, http.StatusOK, stats)
}
