package store

import (
	"context"

	"github.com/spitzerl/workshop-b3-api/internal/models"
)

// FileStore abstracts the version ledger and the logical file registry.
type FileStore interface {
	AppendVersion(ctx context.Context, fileID int64, blobPath string, sizeBytes int64) (*models.FileVersion, error)
	LinkVersion(ctx context.Context, versionID string, fileID int64) error
	ListVersions(ctx context.Context, fileID int64) ([]models.FileVersion, error)
	LatestVersionNumber(ctx context.Context, fileID int64) (int, error)
	DeleteAllVersions(ctx context.Context, fileID int64) ([]string, error)
	GetVersion(ctx context.Context, versionID string) (*models.FileVersion, error)

	CreateFile(ctx context.Context, file *models.LogicalFile) error
	GetFile(ctx context.Context, id int64) (*models.LogicalFile, error)
	ListFiles(ctx context.Context, filter FileFilter) ([]models.LogicalFile, error)
	UpdateCurrentVersion(ctx context.Context, id int64, name, mimeType, versionID string) error
	DeleteFile(ctx context.Context, id int64) error

	CreateFileWithVersion(ctx context.Context, file *models.LogicalFile, blobPath string, sizeBytes int64) (*models.FileVersion, error)
	AppendFileVersion(ctx context.Context, id int64, name, mimeType, blobPath string, sizeBytes int64) (*models.FileVersion, *models.FileVersion, error)
	DeleteFileCascade(ctx context.Context, id int64) ([]string, error)
}

// UserStore abstracts user storage.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UserExists(ctx context.Context, id int64) (bool, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUser(ctx context.Context, id int64, update UserUpdate) error
	DeleteUser(ctx context.Context, id int64) error
}

// ResourceStore abstracts resource storage.
type ResourceStore interface {
	CreateResource(ctx context.Context, resource *models.Resource) error
	GetResource(ctx context.Context, id int64) (*models.Resource, error)
	ListResources(ctx context.Context, ownerID int64) ([]models.Resource, error)
	UpdateResource(ctx context.Context, id int64, update ResourceUpdate) error
	DeleteResource(ctx context.Context, id int64) error
}

var (
	_ FileStore     = (*Store)(nil)
	_ UserStore     = (*Store)(nil)
	_ ResourceStore = (*Store)(nil)
)
