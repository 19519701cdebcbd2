package server

import (
	"net/http"
)

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	// Health check.
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api", s.handleHealth)
	mux.Handle("GET /metrics", s.metrics.Handler())

	// Files.
	mux.HandleFunc("POST /api/files/upload", s.handleUploadFile)
	mux.HandleFunc("GET /api/files", s.handleListFiles)
	mux.HandleFunc("GET /api/files/public", s.handleListPublicFiles)
	mux.HandleFunc("GET /api/files/versions/{versionId}/download", s.handleDownloadVersion)

	// Single file.
	mux.HandleFunc("GET /api/files/{id}", s.handleGetFile)
	mux.HandleFunc("PUT /api/files/{id}", s.handleReplaceFile)
	mux.HandleFunc("DELETE /api/files/{id}", s.handleDeleteFile)
	// {id}/versions, plus the legacy per-owner listing user/{userId}.
	mux.HandleFunc("GET /api/files/{id}/{sub}", s.handleFileSubresource)
	mux.HandleFunc("GET /api/files/{id}/download", s.handleDownloadFile)

	// Users.
	mux.HandleFunc("POST /api/users", s.handleCreateUser)
	mux.HandleFunc("GET /api/users", s.handleListUsers)
	mux.HandleFunc("GET /api/users/{identifier}", s.handleGetUser)
	mux.HandleFunc("PUT /api/users/{identifier}", s.handleUpdateUser)
	mux.HandleFunc("DELETE /api/users/{identifier}", s.handleDeleteUser)
	mux.HandleFunc("GET /api/users/{userId}/files", s.handleListUserFiles)

	// Resources.
	mux.HandleFunc("POST /api/resources", s.handleCreateResource)
	mux.HandleFunc("GET /api/resources", s.handleListResources)
	mux.HandleFunc("GET /api/resources/{id}", s.handleGetResource)
	mux.HandleFunc("PUT /api/resources/{id}", s.handleUpdateResource)
	mux.HandleFunc("DELETE /api/resources/{id}", s.handleDeleteResource)

	// Auth.
	mux.HandleFunc("POST /api/auth/verify", s.handleVerify)

	return s.withRequestLogging(mux)
}
