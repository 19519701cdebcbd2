package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path/filepath"
	"strings"

	"github.com/spitzerl/workshop-b3-api/internal/blobstore"
	"github.com/spitzerl/workshop-b3-api/internal/models"
	"github.com/spitzerl/workshop-b3-api/internal/store"
)

const fallbackFileMediaType = "application/octet-stream"

// ownerLookup is the slice of the user store FileService needs.
type ownerLookup interface {
	UserExists(ctx context.Context, id int64) (bool, error)
}

// FileService coordinates the blob store, the version ledger and the file
// registry. Blob writes cannot join a database transaction, so every failed
// database step removes the blob written by the same call.
type FileService struct {
	files         store.FileStore
	owners        ownerLookup
	blobs         blobstore.BlobStore
	logger        *slog.Logger
	metrics       *Metrics
	retainHistory bool
}

// FileServiceOptions tunes FileService behavior.
type FileServiceOptions struct {
	// RetainHistory keeps the blob of a superseded version after a replace.
	RetainHistory bool
	Logger        *slog.Logger
	Metrics       *Metrics
}

// NewFileService constructs a FileService.
func NewFileService(files store.FileStore, owners ownerLookup, blobs blobstore.BlobStore, opts FileServiceOptions) *FileService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &FileService{
		files:         files,
		owners:        owners,
		blobs:         blobs,
		logger:        logger.With("component", "file_service"),
		metrics:       opts.Metrics,
		retainHistory: opts.RetainHistory,
	}
}

// UploadInput describes the first version of a new logical file.
type UploadInput struct {
	OwnerID      int64
	IsPublic     bool
	Content      io.Reader
	OriginalName string
	MimeType     string
}

// ReplaceInput describes a new version of an existing logical file.
type ReplaceInput struct {
	Content      io.Reader
	OriginalName string
	MimeType     string
}

// ListFilesInput narrows a file listing.
type ListFilesInput struct {
	OwnerID    int64
	PublicOnly bool
}

// FileContent is an open blob plus the metadata needed to serve it.
type FileContent struct {
	io.ReadCloser
	Name      string
	MimeType  string
	SizeBytes int64
}

// UploadResult is returned by Upload.
type UploadResult struct {
	File    models.LogicalFile
	Version models.FileVersion
}

// ReplaceResult is returned by Replace.
type ReplaceResult struct {
	File     models.LogicalFile
	Version  models.FileVersion
	Previous models.FileVersion
}

// Upload writes the blob, then records version 1 and the file row atomically.
func (s *FileService) Upload(ctx context.Context, in UploadInput) (result UploadResult, err error) {
	defer func() { s.metrics.fileOp("upload", err) }()
	if err := s.ready(); err != nil {
		return UploadResult{}, err
	}

	if in.Content == nil {
		return UploadResult{}, badRequestCode(fmt.Errorf("file content is required"), ErrCodeMissingRequired)
	}
	if in.OwnerID <= 0 {
		return UploadResult{}, badRequestCode(fmt.Errorf("ownerId is required"), ErrCodeMissingRequired)
	}
	name := cleanFileName(in.OriginalName)
	if name == "" {
		return UploadResult{}, badRequestCode(fmt.Errorf("file name is required"), ErrCodeMissingRequired)
	}
	if err := s.ensureOwner(ctx, in.OwnerID); err != nil {
		return UploadResult{}, err
	}

	put, err := s.blobs.Put(ctx, "", name, in.Content)
	if err != nil {
		return UploadResult{}, blobError(err)
	}
	s.metrics.blobWritten(put.SizeBytes)

	file := &models.LogicalFile{
		Name:     name,
		MimeType: resolveMediaType(in.MimeType, name),
		OwnerID:  in.OwnerID,
		IsPublic: in.IsPublic,
	}
	version, err := s.files.CreateFileWithVersion(ctx, file, put.Path, put.SizeBytes)
	if err != nil {
		s.compensate(ctx, "upload", put.Path, err)
		return UploadResult{}, fileStoreError(err)
	}

	s.logger.Info("file uploaded", "file_id", file.ID, "version_id", version.ID, "owner_id", file.OwnerID, "size_bytes", put.SizeBytes)
	return UploadResult{File: *file, Version: *version}, nil
}

// Replace writes a new blob, appends the next version and repoints the file.
// The previous blob is removed after commit unless history is retained.
func (s *FileService) Replace(ctx context.Context, id int64, in ReplaceInput) (result ReplaceResult, err error) {
	defer func() { s.metrics.fileOp("replace", err) }()
	if err := s.ready(); err != nil {
		return ReplaceResult{}, err
	}

	if in.Content == nil {
		return ReplaceResult{}, badRequestCode(fmt.Errorf("file content is required"), ErrCodeMissingRequired)
	}
	current, err := s.files.GetFile(ctx, id)
	if err != nil {
		return ReplaceResult{}, storeFailure(err)
	}
	if current == nil {
		return ReplaceResult{}, notFoundCode(fmt.Errorf("file not found"), ErrCodeFileNotFound)
	}

	name := cleanFileName(in.OriginalName)
	mediaType := ""
	if name != "" || strings.TrimSpace(in.MimeType) != "" {
		mediaType = resolveMediaType(in.MimeType, firstNonEmpty(name, current.Name))
	}

	put, err := s.blobs.Put(ctx, "", firstNonEmpty(name, current.Name), in.Content)
	if err != nil {
		return ReplaceResult{}, blobError(err)
	}
	s.metrics.blobWritten(put.SizeBytes)

	version, previous, err := s.files.AppendFileVersion(ctx, id, name, mediaType, put.Path, put.SizeBytes)
	if err != nil {
		s.compensate(ctx, "replace", put.Path, err)
		return ReplaceResult{}, fileStoreError(err)
	}

	// Committed: finish the cleanup and re-read even if the request is cancelled.
	ctx = context.WithoutCancel(ctx)
	if !s.retainHistory && previous != nil && previous.BlobPath != "" {
		if err := s.blobs.Remove(ctx, previous.BlobPath); err != nil {
			s.logger.Warn("remove superseded blob", "file_id", id, "version_id", previous.ID, "path", previous.BlobPath, "error", err)
		}
	}

	updated, err := s.files.GetFile(ctx, id)
	if err != nil {
		return ReplaceResult{}, storeFailure(err)
	}
	if updated == nil {
		return ReplaceResult{}, notFoundCode(fmt.Errorf("file not found"), ErrCodeFileNotFound)
	}

	s.logger.Info("file replaced", "file_id", id, "version_id", version.ID, "version_number", version.VersionNumber)
	result = ReplaceResult{File: *updated, Version: *version}
	if previous != nil {
		result.Previous = *previous
	}
	return result, nil
}

// Delete removes every version row and the file row in one transaction, then
// removes the blobs. Blob removal failures are logged only.
func (s *FileService) Delete(ctx context.Context, id int64) (err error) {
	defer func() { s.metrics.fileOp("delete", err) }()
	if err := s.ready(); err != nil {
		return err
	}

	paths, err := s.files.DeleteFileCascade(ctx, id)
	if err != nil {
		return fileStoreError(err)
	}

	// The rows are gone; a cancelled request must not strand their blobs.
	cleanupCtx := context.WithoutCancel(ctx)
	for _, path := range paths {
		if err := s.blobs.Remove(cleanupCtx, path); err != nil {
			s.logger.Warn("remove blob after delete", "file_id", id, "path", path, "error", err)
		}
	}
	s.logger.Info("file deleted", "file_id", id, "versions", len(paths))
	return nil
}

// Get returns the file metadata joined with its current version.
func (s *FileService) Get(ctx context.Context, id int64) (models.LogicalFile, error) {
	if err := s.ready(); err != nil {
		return models.LogicalFile{}, err
	}
	file, err := s.files.GetFile(ctx, id)
	if err != nil {
		return models.LogicalFile{}, storeFailure(err)
	}
	if file == nil {
		return models.LogicalFile{}, notFoundCode(fmt.Errorf("file not found"), ErrCodeFileNotFound)
	}
	return *file, nil
}

// List returns files ordered newest first.
func (s *FileService) List(ctx context.Context, in ListFilesInput) ([]models.LogicalFile, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	files, err := s.files.ListFiles(ctx, store.FileFilter{OwnerID: in.OwnerID, PublicOnly: in.PublicOnly})
	if err != nil {
		return nil, storeFailure(err)
	}
	return files, nil
}

// ListVersions returns the ledger of a file in version order.
func (s *FileService) ListVersions(ctx context.Context, id int64) ([]models.FileVersion, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	versions, err := s.files.ListVersions(ctx, id)
	if err != nil {
		return nil, storeFailure(err)
	}
	return versions, nil
}

// Open streams the current version of a file.
func (s *FileService) Open(ctx context.Context, id int64) (*FileContent, error) {
	file, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.openBlob(ctx, file.BlobPath, file.Name, file.MimeType)
}

// OpenVersion streams one specific version.
func (s *FileService) OpenVersion(ctx context.Context, versionID string) (*FileContent, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	versionID = strings.TrimSpace(versionID)
	if versionID == "" {
		return nil, badRequestCode(fmt.Errorf("versionId is required"), ErrCodeInvalidID)
	}
	version, err := s.files.GetVersion(ctx, versionID)
	if err != nil {
		return nil, storeFailure(err)
	}
	if version == nil {
		return nil, notFoundCode(fmt.Errorf("version not found"), ErrCodeVersionNotFound)
	}

	name := filepath.Base(version.BlobPath)
	mediaType := resolveMediaType("", name)
	if version.FileID > 0 {
		file, err := s.files.GetFile(ctx, version.FileID)
		if err != nil {
			return nil, storeFailure(err)
		}
		if file != nil {
			name = file.Name
			mediaType = file.MimeType
		}
	}
	return s.openBlob(ctx, version.BlobPath, name, mediaType)
}

func (s *FileService) openBlob(ctx context.Context, path, name, mediaType string) (*FileContent, error) {
	reader, err := s.blobs.Open(ctx, path)
	if err != nil {
		if errors.Is(err, blobstore.ErrBlobNotFound) {
			s.logger.Warn("blob missing for recorded version", "path", path)
		}
		return nil, blobError(err)
	}
	return &FileContent{
		ReadCloser: reader.ReadCloser,
		Name:       name,
		MimeType:   firstNonEmpty(mediaType, fallbackFileMediaType),
		SizeBytes:  reader.SizeBytes,
	}, nil
}

func (s *FileService) ensureOwner(ctx context.Context, ownerID int64) error {
	if s.owners == nil {
		return nil
	}
	exists, err := s.owners.UserExists(ctx, ownerID)
	if err != nil {
		return storeFailure(err)
	}
	if !exists {
		return badRequestCode(fmt.Errorf("owner %d does not exist", ownerID), ErrCodeUnknownOwner)
	}
	return nil
}

// compensate removes a blob whose database step failed. Its own failure is
// logged so the original error reaches the caller.
func (s *FileService) compensate(ctx context.Context, op, path string, cause error) {
	err := s.blobs.Remove(context.WithoutCancel(ctx), path)
	s.metrics.compensation(op, err)
	if err != nil {
		s.logger.Error("compensation failed, orphan blob left on disk", "op", op, "path", path, "cause", cause, "error", err)
		return
	}
	s.logger.Warn("blob removed after failed database step", "op", op, "path", path, "cause", cause)
}

func (s *FileService) ready() error {
	if s == nil || s.files == nil || s.blobs == nil {
		return internalError(fmt.Errorf("file service is not configured"))
	}
	return nil
}

func fileStoreError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return notFoundCode(fmt.Errorf("file not found"), ErrCodeFileNotFound)
	case errors.Is(err, store.ErrOwnerRequired):
		return badRequestCode(err, ErrCodeMissingRequired)
	case errors.Is(err, store.ErrForeignKey):
		return badRequestCode(fmt.Errorf("owner does not exist"), ErrCodeUnknownOwner)
	case errors.Is(err, store.ErrConflict):
		return conflictCode(fmt.Errorf("version already exists"), ErrCodeConflict)
	default:
		return storeFailure(err)
	}
}

func blobError(err error) error {
	if errors.Is(err, blobstore.ErrBlobNotFound) {
		return notFoundCode(fmt.Errorf("file content is missing"), ErrCodeBlobMissing)
	}
	return ioFailure(err)
}

func cleanFileName(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	base := filepath.Base(strings.ReplaceAll(raw, "\\", "/"))
	if base == "." || base == "/" {
		return ""
	}
	return base
}

func resolveMediaType(declared, name string) string {
	if declared = strings.TrimSpace(declared); declared != "" {
		// Multipart writers default to octet-stream; the extension says more.
		if mediaType, params, err := mime.ParseMediaType(declared); err == nil && mediaType != fallbackFileMediaType {
			if formatted := mime.FormatMediaType(mediaType, params); formatted != "" {
				return formatted
			}
		}
	}
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); byExt != "" {
		return byExt
	}
	return fallbackFileMediaType
}
