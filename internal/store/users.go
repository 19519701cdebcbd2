package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/spitzerl/workshop-b3-api/internal/models"
)

const userColumns = "id, name, email, password_hash, created_at, updated_at"

// UserUpdate describes fields to update. Nil fields are left untouched.
type UserUpdate struct {
	Name         *string
	Email        *string
	PasswordHash *string
}

// CreateUser inserts a user and sets user.ID. Duplicate emails wrap ErrConflict.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	if user == nil {
		return fmt.Errorf("user is required")
	}
	if user.Email == "" {
		return fmt.Errorf("email is required")
	}
	if user.PasswordHash == "" {
		return fmt.Errorf("password hash is required")
	}
	now := s.now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = user.CreatedAt
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO users (name, email, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, user.Name, user.Email, user.PasswordHash, dbFormatTime(user.CreatedAt), dbFormatTime(user.UpdatedAt))
	if err != nil {
		return classifyConstraint(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	user.ID = id
	return nil
}

// GetUser returns one user, or nil when absent.
func (s *Store) GetUser(ctx context.Context, id int64) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// GetUserByEmail returns one user by email, or nil when absent.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

// UserExists reports whether a user id exists.
func (s *Store) UserExists(ctx context.Context, id int64) (bool, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM users WHERE id = ? LIMIT 1", id).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListUsers lists users ordered by id.
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		if user != nil {
			users = append(users, *user)
		}
	}
	return users, rows.Err()
}

// UpdateUser applies a partial update. It returns ErrNotFound for unknown ids.
func (s *Store) UpdateUser(ctx context.Context, id int64, update UserUpdate) error {
	set := []string{}
	args := []any{}

	if update.Name != nil {
		set = append(set, "name = ?")
		args = append(args, *update.Name)
	}
	if update.Email != nil {
		set = append(set, "email = ?")
		args = append(args, *update.Email)
	}
	if update.PasswordHash != nil {
		set = append(set, "password_hash = ?")
		args = append(args, *update.PasswordHash)
	}

	set = append(set, "updated_at = ?")
	args = append(args, dbFormatTime(s.now()))
	args = append(args, id)

	query := fmt.Sprintf("UPDATE users SET %s WHERE id = ?", strings.Join(set, ", "))
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

// DeleteUser deletes a user. Owned resources cascade; owned files block the
// delete with ErrForeignKey.
func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
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

func scanUser(scanner rowScanner) (*models.User, error) {
	var (
		user      models.User
		createdAt string
		updatedAt string
	)
	err := scanner.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if user.CreatedAt, err = dbParseTime(createdAt); err != nil {
		return nil, err
	}
	if user.UpdatedAt, err = dbParseTime(updatedAt); err != nil {
		return nil, err
	}
	return &user, nil
}
