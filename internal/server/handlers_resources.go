package server

import (
	"net/http"

	"github.com/spitzerl/workshop-b3-api/internal/api"
)

func (s *Server) handleCreateResource(w http.ResponseWriter, r *http.Request) {
	var req api.ResourceCreateRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}
	resource, err := s.resourceService.Create(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, resource)
}

func (s *Server) handleListResources(w http.ResponseWriter, r *http.Request) {
	ownerID, err := queryInt64(r, "ownerId")
	if err != nil {
		s.writeErrorReq(w, r, http.StatusBadRequest, err)
		return
	}
	resources, err := s.resourceService.List(r.Context(), ownerID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resources)
}

func (s *Server) handleGetResource(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathIDOrBadRequest(w, r, "id")
	if !ok {
		return
	}
	resource, err := s.resourceService.Get(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resource)
}

func (s *Server) handleUpdateResource(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathIDOrBadRequest(w, r, "id")
	if !ok {
		return
	}
	var req api.ResourceUpdateRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}
	resource, err := s.resourceService.Update(r.Context(), id, req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resource)
}

func (s *Server) handleDeleteResource(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathIDOrBadRequest(w, r, "id")
	if !ok {
		return
	}
	if err := s.resourceService.Delete(r.Context(), id); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
