package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/spitzerl/workshop-b3-api/internal/models"
)

const resourceColumns = "id, title, description, user_id, owner_id, created_at, updated_at"

// ResourceUpdate describes fields to update. Nil fields are left untouched.
type ResourceUpdate struct {
	Title       *string
	Description *string
	UserID      *int64
	OwnerID     *int64
}

// CreateResource inserts a resource and sets resource.ID.
func (s *Store) CreateResource(ctx context.Context, resource *models.Resource) error {
	if resource == nil {
		return fmt.Errorf("resource is required")
	}
	if strings.TrimSpace(resource.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if resource.OwnerID <= 0 {
		return ErrOwnerRequired
	}
	now := s.now()
	if resource.CreatedAt.IsZero() {
		resource.CreatedAt = now
	}
	if resource.UpdatedAt.IsZero() {
		resource.UpdatedAt = resource.CreatedAt
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO resources (title, description, user_id, owner_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, resource.Title, nullIfEmpty(resource.Description), nullInt64(resource.UserID), resource.OwnerID,
		dbFormatTime(resource.CreatedAt), dbFormatTime(resource.UpdatedAt))
	if err != nil {
		return classifyConstraint(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	resource.ID = id
	return nil
}

// GetResource returns one resource, or nil when absent.
func (s *Store) GetResource(ctx context.Context, id int64) (*models.Resource, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+resourceColumns+` FROM resources WHERE id = ?`, id)
	return scanResource(row)
}

// ListResources lists resources ordered by id. ownerID 0 lists all.
func (s *Store) ListResources(ctx context.Context, ownerID int64) ([]models.Resource, error) {
	query := `SELECT ` + resourceColumns + ` FROM resources`
	args := []any{}
	if ownerID > 0 {
		query += " WHERE owner_id = ?"
		args = append(args, ownerID)
	}
	query += " ORDER BY id ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	resources := []models.Resource{}
	for rows.Next() {
		resource, err := scanResource(rows)
		if err != nil {
			return nil, err
		}
		if resource != nil {
			resources = append(resources, *resource)
		}
	}
	return resources, rows.Err()
}

// UpdateResource applies a partial update. It returns ErrNotFound for unknown ids.
func (s *Store) UpdateResource(ctx context.Context, id int64, update ResourceUpdate) error {
	set := []string{}
	args := []any{}

	if update.Title != nil {
		if strings.TrimSpace(*update.Title) == "" {
			return fmt.Errorf("title cannot be empty")
		}
		set = append(set, "title = ?")
		args = append(args, *update.Title)
	}
	if update.Description != nil {
		set = append(set, "description = ?")
		args = append(args, nullIfEmpty(*update.Description))
	}
	if update.UserID != nil {
		set = append(set, "user_id = ?")
		if *update.UserID > 0 {
			args = append(args, *update.UserID)
		} else {
			args = append(args, nil)
		}
	}

	if update.OwnerID != nil {
		if *update.OwnerID <= 0 {
			return ErrOwnerRequired
		}
		set = append(set, "owner_id = ?")
		args = append(args, *update.OwnerID)
	}

	set = append(set, "updated_at = ?")
	args = append(args, dbFormatTime(s.now()))
	args = append(args, id)

	query := fmt.Sprintf("UPDATE resources SET %s WHERE id = ?", strings.Join(set, ", "))
	res, err := s.db.ExecContext(ctx, query, args...)
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

// DeleteResource deletes one resource.
func (s *Store) DeleteResource(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM resources WHERE id = ?", id)
	if err != nil {
		return err
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

func scanResource(scanner rowScanner) (*models.Resource, error) {
	var (
		resource    models.Resource
		description sql.NullString
		userID      sql.NullInt64
		createdAt   string
		updatedAt   string
	)
	err := scanner.Scan(&resource.ID, &resource.Title, &description, &userID, &resource.OwnerID, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	resource.Description = description.String
	if userID.Valid {
		v := userID.Int64
		resource.UserID = &v
	}
	if resource.CreatedAt, err = dbParseTime(createdAt); err != nil {
		return nil, err
	}
	if resource.UpdatedAt, err = dbParseTime(updatedAt); err != nil {
		return nil, err
	}
	return &resource, nil
}
