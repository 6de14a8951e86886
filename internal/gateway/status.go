package gateway

import (
	"fmt"
	"net/http"
)

// handleStatus returns an http.HandlerFunc reporting the listen port, the
// monitored group and the trigger token.
func (g *Gateway) handleStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, "Relay Bot Status:\n- Running on port %d\n- Monitoring Group: %s\n- Bot Mention: %s\n",
			g.config.Port, g.settings.Group, g.settings.Trigger)
	}
}
