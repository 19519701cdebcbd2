package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/spitzerl/workshop-b3-api/internal/models"
)

const versionColumns = "id, file_id, version_number, blob_path, size_bytes, uploaded_at"

// AppendVersion records a new version for fileID. A fileID of 0 means the owning
// file does not exist yet; the version gets number 1 and must be linked later.
func (s *Store) AppendVersion(ctx context.Context, fileID int64, blobPath string, sizeBytes int64) (_ *models.FileVersion, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	version, err := s.appendVersionTx(ctx, tx, fileID, blobPath, sizeBytes)
	if err != nil {
		return nil, err
	}
	if err := commitChecked(ctx, tx); err != nil {
		return nil, classifyConstraint(err)
	}
	return version, nil
}

// appendVersionTx computes the next number and inserts the row inside tx.
func (s *Store) appendVersionTx(ctx context.Context, tx dbtx, fileID int64, blobPath string, sizeBytes int64) (*models.FileVersion, error) {
	blobPath = strings.TrimSpace(blobPath)
	if blobPath == "" {
		return nil, fmt.Errorf("blob path is required")
	}
	if sizeBytes < 0 {
		return nil, fmt.Errorf("size_bytes must be >= 0")
	}

	latest, err := latestVersionNumber(ctx, tx, fileID)
	if err != nil {
		return nil, err
	}
	number := latest + 1
	id, err := GenerateVersionID(number)
	if err != nil {
		return nil, err
	}

	version := &models.FileVersion{
		ID:            id,
		FileID:        fileID,
		VersionNumber: number,
		BlobPath:      blobPath,
		SizeBytes:     sizeBytes,
		UploadedAt:    s.now(),
	}
	var owner any
	if fileID > 0 {
		owner = fileID
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO file_versions (`+versionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)
	`, version.ID, owner, version.VersionNumber, version.BlobPath, version.SizeBytes, dbFormatTime(version.UploadedAt))
	if err != nil {
		return nil, classifyConstraint(err)
	}
	return version, nil
}

// LinkVersion backfills the owning file on a version created before the file row.
func (s *Store) LinkVersion(ctx context.Context, versionID string, fileID int64) error {
	return linkVersion(ctx, s.db, versionID, fileID)
}

func linkVersion(ctx context.Context, db dbtx, versionID string, fileID int64) error {
	if fileID <= 0 {
		return fmt.Errorf("file id is required")
	}
	res, err := db.ExecContext(ctx, "UPDATE file_versions SET file_id = ? WHERE id = ?", fileID, versionID)
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

// ListVersions returns the versions of a file ordered by version number ascending.
func (s *Store) ListVersions(ctx context.Context, fileID int64) ([]models.FileVersion, error) {
	return listVersions(ctx, s.db, fileID)
}

func listVersions(ctx context.Context, db dbtx, fileID int64) ([]models.FileVersion, error) {
	rows, err := db.QueryContext(ctx, `SELECT `+versionColumns+` FROM file_versions WHERE file_id = ? ORDER BY version_number ASC`, fileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	versions := []models.FileVersion{}
	for rows.Next() {
		version, err := scanVersion(rows)
		if err != nil {
			return nil, err
		}
		if version != nil {
			versions = append(versions, *version)
		}
	}
	return versions, rows.Err()
}

// LatestVersionNumber returns the highest version number of a file, or 0.
func (s *Store) LatestVersionNumber(ctx context.Context, fileID int64) (int, error) {
	return latestVersionNumber(ctx, s.db, fileID)
}

func latestVersionNumber(ctx context.Context, db dbtx, fileID int64) (int, error) {
	if fileID <= 0 {
		return 0, nil
	}
	var latest int
	err := db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version_number), 0) FROM file_versions WHERE file_id = ?", fileID).Scan(&latest)
	if err != nil {
		return 0, err
	}
	return latest, nil
}

// DeleteAllVersions deletes every version row of a file and returns their blob paths.
func (s *Store) DeleteAllVersions(ctx context.Context, fileID int64) (_ []string, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	paths, err := deleteAllVersionsTx(ctx, tx, fileID)
	if err != nil {
		return nil, err
	}
	if err := commitChecked(ctx, tx); err != nil {
		return nil, classifyConstraint(err)
	}
	return paths, nil
}

func deleteAllVersionsTx(ctx context.Context, tx dbtx, fileID int64) ([]string, error) {
	versions, err := listVersions(ctx, tx, fileID)
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM file_versions WHERE file_id = ?", fileID); err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(versions))
	for _, v := range versions {
		paths = append(paths, v.BlobPath)
	}
	return paths, nil
}

// GetVersion returns one version, or nil when absent.
func (s *Store) GetVersion(ctx context.Context, versionID string) (*models.FileVersion, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+versionColumns+` FROM file_versions WHERE id = ?`, versionID)
	return scanVersion(row)
}

func scanVersion(scanner rowScanner) (*models.FileVersion, error) {
	var (
		version    models.FileVersion
		fileID     sql.NullInt64
		uploadedAt string
	)
	err := scanner.Scan(&version.ID, &fileID, &version.VersionNumber, &version.BlobPath, &version.SizeBytes, &uploadedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if fileID.Valid {
		version.FileID = fileID.Int64
	}
	if version.UploadedAt, err = dbParseTime(uploadedAt); err != nil {
		return nil, err
	}
	return &version, nil
}
