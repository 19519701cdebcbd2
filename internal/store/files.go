package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/spitzerl/workshop-b3-api/internal/models"
)

const fileSelect = `
SELECT f.id, f.name, f.mime_type, f.owner_id, f.is_public, f.current_version_id, f.created_at, f.updated_at,
  COALESCE(v.version_number, 0), COALESCE(v.blob_path, ''), COALESCE(v.size_bytes, 0)
FROM files f
LEFT JOIN file_versions v ON v.id = f.current_version_id`

// FileFilter narrows ListFiles. The zero value lists every file.
type FileFilter struct {
	OwnerID    int64
	PublicOnly bool
}

// CreateFile inserts a registry row pointing at file.CurrentVersionID.
func (s *Store) CreateFile(ctx context.Context, file *models.LogicalFile) error {
	return s.createFile(ctx, s.db, file)
}

func (s *Store) createFile(ctx context.Context, db dbtx, file *models.LogicalFile) error {
	if file == nil {
		return fmt.Errorf("file is required")
	}
	if file.OwnerID <= 0 {
		return ErrOwnerRequired
	}
	file.Name = strings.TrimSpace(file.Name)
	if file.Name == "" {
		return fmt.Errorf("name is required")
	}
	if strings.TrimSpace(file.CurrentVersionID) == "" {
		return fmt.Errorf("current version is required")
	}
	if file.MimeType == "" {
		file.MimeType = "application/octet-stream"
	}
	now := s.now()
	if file.CreatedAt.IsZero() {
		file.CreatedAt = now
	}
	if file.UpdatedAt.IsZero() {
		file.UpdatedAt = file.CreatedAt
	}

	res, err := db.ExecContext(ctx, `
		INSERT INTO files (name, mime_type, owner_id, is_public, current_version_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, file.Name, file.MimeType, file.OwnerID, boolToInt(file.IsPublic), file.CurrentVersionID,
		dbFormatTime(file.CreatedAt), dbFormatTime(file.UpdatedAt))
	if err != nil {
		return classifyConstraint(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	file.ID = id
	return nil
}

// GetFile returns a file joined with its current version, or nil when absent.
func (s *Store) GetFile(ctx context.Context, id int64) (*models.LogicalFile, error) {
	return getFile(ctx, s.db, id)
}

func getFile(ctx context.Context, db dbtx, id int64) (*models.LogicalFile, error) {
	row := db.QueryRowContext(ctx, fileSelect+` WHERE f.id = ?`, id)
	return scanFile(row)
}

// ListFiles lists files, newest first, joined with their current version.
func (s *Store) ListFiles(ctx context.Context, filter FileFilter) ([]models.LogicalFile, error) {
	query := fileSelect
	conditions := []string{}
	args := []any{}
	if filter.OwnerID > 0 {
		conditions = append(conditions, "f.owner_id = ?")
		args = append(args, filter.OwnerID)
	}
	if filter.PublicOnly {
		conditions = append(conditions, "f.is_public = 1")
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY f.created_at DESC, f.id DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	files := []models.LogicalFile{}
	for rows.Next() {
		file, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		if file != nil {
			files = append(files, *file)
		}
	}
	return files, rows.Err()
}

// UpdateCurrentVersion repoints a file at versionID and refreshes name and mime type.
func (s *Store) UpdateCurrentVersion(ctx context.Context, id int64, name, mimeType, versionID string) error {
	return s.updateCurrentVersion(ctx, s.db, id, name, mimeType, versionID)
}

func (s *Store) updateCurrentVersion(ctx context.Context, db dbtx, id int64, name, mimeType, versionID string) error {
	if strings.TrimSpace(versionID) == "" {
		return fmt.Errorf("version id is required")
	}
	res, err := db.ExecContext(ctx, `
		UPDATE files
		SET name = COALESCE(?, name), mime_type = COALESCE(?, mime_type), current_version_id = ?, updated_at = ?
		WHERE id = ?
	`, nullIfEmpty(strings.TrimSpace(name)), nullIfEmpty(mimeType), versionID, dbFormatTime(s.now()), id)
	if err != nil {
		return classifyConstraint(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteFile removes the registry row only. Use DeleteFileCascade to drop versions too.
func (s *Store) DeleteFile(ctx context.Context, id int64) error {
	return deleteFile(ctx, s.db, id)
}

func deleteFile(ctx context.Context, db dbtx, id int64) error {
	res, err := db.ExecContext(ctx, "DELETE FROM files WHERE id = ?", id)
	if err != nil {
		return classifyConstraint(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateFileWithVersion records the first version, the file row and the link
// between them in one transaction. file.CurrentVersionID is set on success.
func (s *Store) CreateFileWithVersion(ctx context.Context, file *models.LogicalFile, blobPath string, sizeBytes int64) (_ *models.FileVersion, err error) {
	if file == nil {
		return nil, fmt.Errorf("file is required")
	}
	if file.OwnerID <= 0 {
		return nil, ErrOwnerRequired
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	version, err := s.appendVersionTx(ctx, tx, 0, blobPath, sizeBytes)
	if err != nil {
		return nil, err
	}
	file.CurrentVersionID = version.ID
	if err := s.createFile(ctx, tx, file); err != nil {
		return nil, err
	}
	if err := linkVersion(ctx, tx, version.ID, file.ID); err != nil {
		return nil, err
	}
	if err := commitChecked(ctx, tx); err != nil {
		return nil, classifyConstraint(err)
	}

	version.FileID = file.ID
	file.VersionNumber = version.VersionNumber
	file.BlobPath = version.BlobPath
	file.SizeBytes = version.SizeBytes
	return version, nil
}

// AppendFileVersion adds a version to an existing file and makes it current in
// one transaction. It returns the new version and the version it superseded.
func (s *Store) AppendFileVersion(ctx context.Context, id int64, name, mimeType, blobPath string, sizeBytes int64) (_ *models.FileVersion, _ *models.FileVersion, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	current, err := getFile(ctx, tx, id)
	if err != nil {
		return nil, nil, err
	}
	if current == nil {
		return nil, nil, ErrNotFound
	}
	previous := &models.FileVersion{
		ID:            current.CurrentVersionID,
		FileID:        current.ID,
		VersionNumber: current.VersionNumber,
		BlobPath:      current.BlobPath,
		SizeBytes:     current.SizeBytes,
	}

	version, err := s.appendVersionTx(ctx, tx, id, blobPath, sizeBytes)
	if err != nil {
		return nil, nil, err
	}
	if err := s.updateCurrentVersion(ctx, tx, id, name, mimeType, version.ID); err != nil {
		return nil, nil, err
	}
	if err := commitChecked(ctx, tx); err != nil {
		return nil, nil, classifyConstraint(err)
	}
	return version, previous, nil
}

// DeleteFileCascade deletes all versions and the file row in one transaction and
// returns the blob paths the caller must remove.
func (s *Store) DeleteFileCascade(ctx context.Context, id int64) (_ []string, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	file, err := getFile(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if file == nil {
		return nil, ErrNotFound
	}
	paths, err := deleteAllVersionsTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := deleteFile(ctx, tx, id); err != nil {
		return nil, err
	}
	if err := commitChecked(ctx, tx); err != nil {
		return nil, classifyConstraint(err)
	}
	return paths, nil
}

func scanFile(scanner rowScanner) (*models.LogicalFile, error) {
	var (
		file      models.LogicalFile
		isPublic  int
		createdAt string
		updatedAt string
	)
	err := scanner.Scan(
		&file.ID,
		&file.Name,
		&file.MimeType,
		&file.OwnerID,
		&isPublic,
		&file.CurrentVersionID,
		&createdAt,
		&updatedAt,
		&file.VersionNumber,
		&file.BlobPath,
		&file.SizeBytes,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	file.IsPublic = isPublic != 0
	if file.CreatedAt, err = dbParseTime(createdAt); err != nil {
		return nil, err
	}
	if file.UpdatedAt, err = dbParseTime(updatedAt); err != nil {
		return nil, err
	}
	return &file, nil
}
