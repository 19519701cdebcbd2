package server

import (
	"net/http"

	"github.com/spitzerl/workshop-b3-api/internal/api"
)

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req api.UserCreateRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}
	user, err := s.userService.Create(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, user)
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.userService.List(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, users)
}

// handleGetUser accepts a numeric id or an email in the path.
func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.userService.Get(r.Context(), r.PathValue("identifier"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var req api.UserUpdateRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}
	user, err := s.userService.Update(r.Context(), r.PathValue("identifier"), req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := s.userService.Delete(r.Context(), r.PathValue("identifier")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req api.VerifyRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}
	resp, err := s.userService.Verify(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}
