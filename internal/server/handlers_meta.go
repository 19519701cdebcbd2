package server

import (
	"net/http"

	"github.com/spitzerl/workshop-b3-api/internal/api"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, api.HealthResponse{Status: "ok"})
}
