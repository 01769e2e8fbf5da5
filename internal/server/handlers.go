// Package server provides the HTTP server and routing for the budget optimizer.
package server

import (
	"net/http"

	"github.com/aristath/budgetopt/internal/respond"
)

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":  "healthy",
		"version": s.version,
		"service": "budgetopt",
	}

	s.writeJSON(w, r, http.StatusOK, response)
}

// writeJSON writes a response, as MessagePack when the client asks for it
func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	if err := writeBody(w, r, status, data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode response")
	}
}

func writeBody(w http.ResponseWriter, r *http.Request, status int, data interface{}) error {
	return respond.Write(w, r, status, data)
}
