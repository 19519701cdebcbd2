// Package seed loads YAML fixtures of users, resources and files into a
// running store through the same services the HTTP API uses.
package seed

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/spitzerl/workshop-b3-api/internal/api"
	"github.com/spitzerl/workshop-b3-api/internal/models"
	"github.com/spitzerl/workshop-b3-api/internal/server"
)

// Fixture is the top-level document of a seed file.
type Fixture struct {
	Users     []UserFixture     `yaml:"users"`
	Resources []ResourceFixture `yaml:"resources"`
	Files     []FileFixture     `yaml:"files"`
}

// UserFixture describes one user. Existing emails are reused.
type UserFixture struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

// ResourceFixture references users by email.
type ResourceFixture struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Owner       string `yaml:"owner"`
	Assignee    string `yaml:"assignee"`
}

// FileFixture is a file and its successive versions, oldest first.
type FileFixture struct {
	Owner    string           `yaml:"owner"`
	Public   bool             `yaml:"public"`
	Versions []VersionFixture `yaml:"versions"`
}

// VersionFixture carries inline content or a path relative to the fixture file.
type VersionFixture struct {
	Name     string `yaml:"name"`
	MimeType string `yaml:"mime_type"`
	Content  string `yaml:"content"`
	Path     string `yaml:"path"`
}

// Result counts what a seed run created.
type Result struct {
	UsersCreated     int `json:"users_created"`
	UsersReused      int `json:"users_reused"`
	ResourcesCreated int `json:"resources_created"`
	FilesCreated     int `json:"files_created"`
	VersionsCreated  int `json:"versions_created"`
	FilesDeleted     int `json:"files_deleted,omitempty"`
	ResourcesDeleted int `json:"resources_deleted,omitempty"`
	UsersDeleted     int `json:"users_deleted,omitempty"`
}

// Users is the user surface the seeder needs.
type Users interface {
	Create(ctx context.Context, req api.UserCreateRequest) (models.User, error)
	Get(ctx context.Context, identifier string) (models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Delete(ctx context.Context, identifier string) error
}

// Resources is the resource surface the seeder needs.
type Resources interface {
	Create(ctx context.Context, req api.ResourceCreateRequest) (models.Resource, error)
	List(ctx context.Context, ownerID int64) ([]models.Resource, error)
	Delete(ctx context.Context, id int64) error
}

// Files is the orchestrator surface the seeder needs.
type Files interface {
	Upload(ctx context.Context, in server.UploadInput) (server.UploadResult, error)
	Replace(ctx context.Context, id int64, in server.ReplaceInput) (server.ReplaceResult, error)
	List(ctx context.Context, in server.ListFilesInput) ([]models.LogicalFile, error)
	Delete(ctx context.Context, id int64) error
}

// Seeder applies fixtures.
type Seeder struct {
	users     Users
	resources Resources
	files     Files
	logger    *slog.Logger
}

func New(users Users, resources Resources, files Files, logger *slog.Logger) *Seeder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Seeder{users: users, resources: resources, files: files, logger: logger.With("component", "seed")}
}

// LoadFile parses a fixture file. Version paths are resolved against its directory.
func LoadFile(path string) (*Fixture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fixture, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	base := filepath.Dir(path)
	for i := range fixture.Files {
		for j := range fixture.Files[i].Versions {
			v := &fixture.Files[i].Versions[j]
			if v.Path != "" && !filepath.IsAbs(v.Path) {
				v.Path = filepath.Join(base, v.Path)
			}
		}
	}
	return fixture, nil
}

// Parse decodes and validates a fixture document. Unknown keys are rejected.
func Parse(r io.Reader) (*Fixture, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var fixture Fixture
	if err := dec.Decode(&fixture); err != nil {
		if err == io.EOF {
			return &fixture, nil
		}
		return nil, err
	}
	if err := fixture.Validate(); err != nil {
		return nil, err
	}
	return &fixture, nil
}

// Validate checks references and required fields before anything is written.
func (f *Fixture) Validate() error {
	emails := map[string]struct{}{}
	for i, u := range f.Users {
		email := strings.ToLower(strings.TrimSpace(u.Email))
		if email == "" {
			return fmt.Errorf("users[%d]: email is required", i)
		}
		if _, dup := emails[email]; dup {
			return fmt.Errorf("users[%d]: duplicate email %s", i, email)
		}
		emails[email] = struct{}{}
	}
	for i, r := range f.Resources {
		if strings.TrimSpace(r.Title) == "" {
			return fmt.Errorf("resources[%d]: title is required", i)
		}
		if strings.TrimSpace(r.Owner) == "" {
			return fmt.Errorf("resources[%d]: owner is required", i)
		}
	}
	for i, file := range f.Files {
		if strings.TrimSpace(file.Owner) == "" {
			return fmt.Errorf("files[%d]: owner is required", i)
		}
		if len(file.Versions) == 0 {
			return fmt.Errorf("files[%d]: at least one version is required", i)
		}
		for j, v := range file.Versions {
			if strings.TrimSpace(v.Name) == "" {
				return fmt.Errorf("files[%d].versions[%d]: name is required", i, j)
			}
			if v.Content != "" && v.Path != "" {
				return fmt.Errorf("files[%d].versions[%d]: content and path are mutually exclusive", i, j)
			}
		}
	}
	return nil
}

// Apply creates users, then resources, then files with their versions.
func (s *Seeder) Apply(ctx context.Context, fixture *Fixture) (Result, error) {
	var result Result
	if fixture == nil {
		return result, nil
	}

	ids := map[string]int64{}
	for _, u := range fixture.Users {
		email := strings.ToLower(strings.TrimSpace(u.Email))
		existing, err := s.users.Get(ctx, email)
		switch {
		case err == nil:
			ids[email] = existing.ID
			result.UsersReused++
			continue
		case server.StatusCode(err) != http.StatusNotFound:
			return result, fmt.Errorf("lookup user %s: %w", email, err)
		}
		created, err := s.users.Create(ctx, api.UserCreateRequest{Name: u.Name, Email: email, Password: u.Password})
		if err != nil {
			return result, fmt.Errorf("create user %s: %w", email, err)
		}
		ids[email] = created.ID
		result.UsersCreated++
	}

	resolve := func(ref string) (int64, error) {
		email := strings.ToLower(strings.TrimSpace(ref))
		if id, ok := ids[email]; ok {
			return id, nil
		}
		user, err := s.users.Get(ctx, email)
		if err != nil {
			return 0, fmt.Errorf("resolve user %s: %w", email, err)
		}
		ids[email] = user.ID
		return user.ID, nil
	}

	for _, r := range fixture.Resources {
		ownerID, err := resolve(r.Owner)
		if err != nil {
			return result, err
		}
		req := api.ResourceCreateRequest{Title: r.Title, Description: r.Description, OwnerID: ownerID}
		if strings.TrimSpace(r.Assignee) != "" {
			assignee, err := resolve(r.Assignee)
			if err != nil {
				return result, err
			}
			req.UserID = &assignee
		}
		if _, err := s.resources.Create(ctx, req); err != nil {
			return result, fmt.Errorf("create resource %q: %w", r.Title, err)
		}
		result.ResourcesCreated++
	}

	for _, file := range fixture.Files {
		ownerID, err := resolve(file.Owner)
		if err != nil {
			return result, err
		}
		var fileID int64
		for i, v := range file.Versions {
			content, err := versionContent(v)
			if err != nil {
				return result, err
			}
			if i == 0 {
				uploaded, err := s.files.Upload(ctx, server.UploadInput{
					OwnerID:      ownerID,
					IsPublic:     file.Public,
					Content:      content,
					OriginalName: v.Name,
					MimeType:     v.MimeType,
				})
				if err != nil {
					return result, fmt.Errorf("upload %s: %w", v.Name, err)
				}
				fileID = uploaded.File.ID
				result.FilesCreated++
			} else {
				if _, err := s.files.Replace(ctx, fileID, server.ReplaceInput{
					Content:      content,
					OriginalName: v.Name,
					MimeType:     v.MimeType,
				}); err != nil {
					return result, fmt.Errorf("replace %s: %w", v.Name, err)
				}
			}
			result.VersionsCreated++
		}
	}

	s.logger.Info("seed applied",
		"users_created", result.UsersCreated,
		"resources_created", result.ResourcesCreated,
		"files_created", result.FilesCreated,
		"versions_created", result.VersionsCreated,
	)
	return result, nil
}

// Reset deletes every file, resource and user. Files go first so their blobs
// are removed and owners become deletable.
func (s *Seeder) Reset(ctx context.Context) (Result, error) {
	var result Result

	files, err := s.files.List(ctx, server.ListFilesInput{})
	if err != nil {
		return result, fmt.Errorf("list files: %w", err)
	}
	for _, f := range files {
		if err := s.files.Delete(ctx, f.ID); err != nil {
			return result, fmt.Errorf("delete file %d: %w", f.ID, err)
		}
		result.FilesDeleted++
	}

	resources, err := s.resources.List(ctx, 0)
	if err != nil {
		return result, fmt.Errorf("list resources: %w", err)
	}
	for _, r := range resources {
		if err := s.resources.Delete(ctx, r.ID); err != nil {
			return result, fmt.Errorf("delete resource %d: %w", r.ID, err)
		}
		result.ResourcesDeleted++
	}

	users, err := s.users.List(ctx)
	if err != nil {
		return result, fmt.Errorf("list users: %w", err)
	}
	for _, u := range users {
		if err := s.users.Delete(ctx, fmt.Sprint(u.ID)); err != nil {
			return result, fmt.Errorf("delete user %d: %w", u.ID, err)
		}
		result.UsersDeleted++
	}

	s.logger.Info("seed reset", "files", result.FilesDeleted, "resources", result.ResourcesDeleted, "users", result.UsersDeleted)
	return result, nil
}

func versionContent(v VersionFixture) (io.Reader, error) {
	if v.Path == "" {
		return bytes.NewReader([]byte(v.Content)), nil
	}
	data, err := os.ReadFile(v.Path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", v.Path, err)
	}
	return bytes.NewReader(data), nil
}
