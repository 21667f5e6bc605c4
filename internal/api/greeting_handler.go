package api

import (
	"net"
	"net/http"
	"strings"
)

// handleHello greets a visitor by name with their location and current
// temperature, derived from the client IP.
func (h *handlers) handleHello(w http.ResponseWriter, r *http.Request) {
	visitorName := r.URL.Query().Get("visitor_name")
	if visitorName == "" {
		visitorName = "Guest"
	}
	visitorName = strings.Trim(visitorName, `"`)

	g, err := h.greeting.Greet(r.Context(), clientIP(r), visitorName)
	if err != nil {
		if h.metrics != nil {
			h.metrics.IncGreetingUpstreamError()
		}
		h.logger.Error("greeting upstream failure", "error", err)
		writeError(w, http.StatusBadRequest, "unable to resolve visitor location")
		return
	}

	writeJSON(w, http.StatusOK, g)
}

// clientIP extracts the originating client address, honouring the first
// X-Forwarded-For entry when a proxy sits in front.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
