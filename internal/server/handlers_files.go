package server

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/spitzerl/workshop-b3-api/internal/api"
	"github.com/spitzerl/workshop-b3-api/internal/models"
)

const uploadFormField = "file"

func (s *Server) handleUploadFile(w http.ResponseWriter, r *http.Request) {
	form, ok := s.parseUploadForm(w, r)
	if !ok {
		return
	}
	defer form.close()

	ownerRaw := strings.TrimSpace(r.FormValue("ownerId"))
	if ownerRaw == "" {
		s.writeErrorReq(w, r, http.StatusBadRequest, badRequestCode(fmt.Errorf("ownerId is required"), ErrCodeMissingRequired))
		return
	}
	ownerID, err := parseID(ownerRaw, "ownerId")
	if err != nil {
		s.writeErrorReq(w, r, http.StatusBadRequest, err)
		return
	}
	visibility, err := models.ParseVisibility(r.FormValue("isPublic"))
	if err != nil {
		s.writeErrorReq(w, r, http.StatusBadRequest, badRequestCode(err, ErrCodeInvalidVisibility))
		return
	}

	result, err := s.fileService.Upload(r.Context(), UploadInput{
		OwnerID:      ownerID,
		IsPublic:     visibility == models.VisibilityPublic,
		Content:      form.file,
		OriginalName: form.header.Filename,
		MimeType:     form.header.Header.Get("Content-Type"),
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, api.FileUploadResponse{
		ID:            result.File.ID,
		VersionID:     result.Version.ID,
		VersionNumber: result.Version.VersionNumber,
		Name:          result.File.Name,
		MimeType:      result.File.MimeType,
		OwnerID:       result.File.OwnerID,
		IsPublic:      result.File.IsPublic,
		SizeBytes:     result.Version.SizeBytes,
		CreatedAt:     result.File.CreatedAt,
	})
}

func (s *Server) handleReplaceFile(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathIDOrBadRequest(w, r, "id")
	if !ok {
		return
	}
	form, ok := s.parseUploadForm(w, r)
	if !ok {
		return
	}
	defer form.close()

	result, err := s.fileService.Replace(r.Context(), id, ReplaceInput{
		Content:      form.file,
		OriginalName: form.header.Filename,
		MimeType:     form.header.Header.Get("Content-Type"),
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, api.FileReplaceResponse{
		ID:            result.File.ID,
		NewVersionID:  result.Version.ID,
		VersionNumber: result.Version.VersionNumber,
		Name:          result.File.Name,
	})
}

func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	ownerID, err := queryInt64(r, "ownerId")
	if err != nil {
		s.writeErrorReq(w, r, http.StatusBadRequest, err)
		return
	}
	publicOnly, err := queryBool(r, "public")
	if err != nil {
		s.writeErrorReq(w, r, http.StatusBadRequest, err)
		return
	}
	s.listFiles(w, r, ListFilesInput{OwnerID: ownerID, PublicOnly: publicOnly})
}

func (s *Server) handleListPublicFiles(w http.ResponseWriter, r *http.Request) {
	s.listFiles(w, r, ListFilesInput{PublicOnly: true})
}

func (s *Server) handleListUserFiles(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := s.pathIDOrBadRequest(w, r, "userId")
	if !ok {
		return
	}
	s.listFiles(w, r, ListFilesInput{OwnerID: ownerID})
}

// handleFileSubresource serves GET /api/files/{id}/versions and the older
// GET /api/files/user/{userId}, which share one mux pattern.
func (s *Server) handleFileSubresource(w http.ResponseWriter, r *http.Request) {
	id, sub := r.PathValue("id"), r.PathValue("sub")
	switch {
	case id == "user":
		ownerID, err := parseID(sub, "userId")
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		s.listFiles(w, r, ListFilesInput{OwnerID: ownerID})
	case sub == "versions":
		s.handleListFileVersions(w, r)
	default:
		s.writeServiceError(w, r, makeAPIError(http.StatusNotFound, "not_found", 0, fmt.Errorf("unknown file resource %q", sub)))
	}
}

func (s *Server) listFiles(w http.ResponseWriter, r *http.Request, in ListFilesInput) {
	files, err := s.fileService.List(r.Context(), in)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, files)
}

func (s *Server) handleGetFile(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathIDOrBadRequest(w, r, "id")
	if !ok {
		return
	}
	file, err := s.fileService.Get(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, file)
}

func (s *Server) handleListFileVersions(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathIDOrBadRequest(w, r, "id")
	if !ok {
		return
	}
	versions, err := s.fileService.ListVersions(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, versions)
}

func (s *Server) handleDownloadFile(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathIDOrBadRequest(w, r, "id")
	if !ok {
		return
	}
	content, err := s.fileService.Open(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.streamContent(w, r, content)
}

func (s *Server) handleDownloadVersion(w http.ResponseWriter, r *http.Request) {
	content, err := s.fileService.OpenVersion(r.Context(), r.PathValue("versionId"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.streamContent(w, r, content)
}

func (s *Server) handleDeleteFile(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathIDOrBadRequest(w, r, "id")
	if !ok {
		return
	}
	if err := s.fileService.Delete(r.Context(), id); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) streamContent(w http.ResponseWriter, r *http.Request, content *FileContent) {
	defer content.Close()

	w.Header().Set("Content-Type", content.MimeType)
	w.Header().Set("Content-Length", strconv.FormatInt(content.SizeBytes, 10))
	w.Header().Set("Content-Disposition", contentDisposition(content.Name))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, content); err != nil {
		s.log().Warn("stream file content", "path", r.URL.Path, "error", err)
	}
}

func contentDisposition(name string) string {
	if name == "" {
		return "attachment"
	}
	if value := mime.FormatMediaType("attachment", map[string]string{"filename": name}); value != "" {
		return value
	}
	return "attachment"
}

type uploadForm struct {
	file   multipart.File
	header *multipart.FileHeader
	form   *multipart.Form
}

func (f *uploadForm) close() {
	if f.file != nil {
		_ = f.file.Close()
	}
	if f.form != nil {
		_ = f.form.RemoveAll()
	}
}

func (s *Server) parseUploadForm(w http.ResponseWriter, r *http.Request) (*uploadForm, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(s.multipartMaxMemory); err != nil {
		apiErr := classifyMultipartError(err)
		s.writeErrorReq(w, r, httpStatusFromError(apiErr), apiErr)
		return nil, false
	}

	file, header, err := r.FormFile(uploadFormField)
	if err != nil {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
		s.writeErrorReq(w, r, http.StatusBadRequest, badRequestCode(fmt.Errorf("file is required"), ErrCodeMissingRequired))
		return nil, false
	}
	return &uploadForm{file: file, header: header, form: r.MultipartForm}, true
}

func classifyMultipartError(err error) error {
	if err == nil {
		return nil
	}
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) || strings.Contains(strings.ToLower(err.Error()), "request body too large") {
		return makeAPIError(http.StatusRequestEntityTooLarge, "invalid_argument", ErrCodeRequestTooLarge, fmt.Errorf("request body too large"))
	}
	return badRequestCode(err, ErrCodeInvalidArgument)
}
