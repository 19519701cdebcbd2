package server

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spitzerl/workshop-b3-api/internal/api"
	internalauth "github.com/spitzerl/workshop-b3-api/internal/auth"
	"github.com/spitzerl/workshop-b3-api/internal/models"
	"github.com/spitzerl/workshop-b3-api/internal/store"
)

var errInvalidCredentials = errors.New("invalid email or password")

// UserService owns user validation, password hashing and credential checks.
type UserService struct {
	store store.UserStore
}

func NewUserService(userStore store.UserStore) *UserService {
	return &UserService{store: userStore}
}

func (u *UserService) Create(ctx context.Context, req api.UserCreateRequest) (models.User, error) {
	if err := u.ready(); err != nil {
		return models.User{}, err
	}
	email, err := internalauth.NormalizeEmail(req.Email)
	if err != nil {
		return models.User{}, badRequestCode(err, ErrCodeInvalidEmail)
	}
	hash, err := internalauth.HashPassword(req.Password)
	if err != nil {
		return models.User{}, badRequestCode(err, ErrCodeInvalidPassword)
	}

	user := &models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: hash,
	}
	if err := u.store.CreateUser(ctx, user); err != nil {
		return models.User{}, userStoreError(err)
	}
	return *user, nil
}

func (u *UserService) List(ctx context.Context) ([]models.User, error) {
	if err := u.ready(); err != nil {
		return nil, err
	}
	users, err := u.store.ListUsers(ctx)
	if err != nil {
		return nil, storeFailure(err)
	}
	return users, nil
}

// Get resolves a user by numeric id or email.
func (u *UserService) Get(ctx context.Context, identifier string) (models.User, error) {
	if err := u.ready(); err != nil {
		return models.User{}, err
	}
	user, err := u.lookup(ctx, identifier)
	if err != nil {
		return models.User{}, err
	}
	return *user, nil
}

func (u *UserService) Update(ctx context.Context, identifier string, req api.UserUpdateRequest) (models.User, error) {
	if err := u.ready(); err != nil {
		return models.User{}, err
	}
	if req.Name == nil && req.Email == nil && req.Password == nil {
		return models.User{}, badRequestCode(fmt.Errorf("no fields to update"), ErrCodeMissingRequired)
	}
	user, err := u.lookup(ctx, identifier)
	if err != nil {
		return models.User{}, err
	}

	update := store.UserUpdate{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		update.Name = &name
	}
	if req.Email != nil {
		email, err := internalauth.NormalizeEmail(*req.Email)
		if err != nil {
			return models.User{}, badRequestCode(err, ErrCodeInvalidEmail)
		}
		update.Email = &email
	}
	if req.Password != nil {
		hash, err := internalauth.HashPassword(*req.Password)
		if err != nil {
			return models.User{}, badRequestCode(err, ErrCodeInvalidPassword)
		}
		update.PasswordHash = &hash
	}

	if err := u.store.UpdateUser(ctx, user.ID, update); err != nil {
		return models.User{}, userStoreError(err)
	}
	updated, err := u.store.GetUser(ctx, user.ID)
	if err != nil {
		return models.User{}, storeFailure(err)
	}
	if updated == nil {
		return models.User{}, notFoundCode(fmt.Errorf("user not found"), ErrCodeUserNotFound)
	}
	return *updated, nil
}

func (u *UserService) Delete(ctx context.Context, identifier string) error {
	if err := u.ready(); err != nil {
		return err
	}
	user, err := u.lookup(ctx, identifier)
	if err != nil {
		return err
	}
	if err := u.store.DeleteUser(ctx, user.ID); err != nil {
		return userStoreError(err)
	}
	return nil
}

// Verify checks credentials. Unknown emails and wrong passwords share one error.
func (u *UserService) Verify(ctx context.Context, req api.VerifyRequest) (api.VerifyResponse, error) {
	if err := u.ready(); err != nil {
		return api.VerifyResponse{}, err
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return api.VerifyResponse{}, badRequestCode(fmt.Errorf("email and password are required"), ErrCodeMissingRequired)
	}
	email, err := internalauth.NormalizeEmail(req.Email)
	if err != nil {
		return api.VerifyResponse{}, unauthorized(errInvalidCredentials)
	}
	user, err := u.store.GetUserByEmail(ctx, email)
	if err != nil {
		return api.VerifyResponse{}, storeFailure(err)
	}
	if user == nil || !internalauth.VerifyPassword(user.PasswordHash, req.Password) {
		return api.VerifyResponse{}, unauthorized(errInvalidCredentials)
	}
	return api.VerifyResponse{
		Valid: true,
		User:  &api.VerifiedUser{ID: user.ID, Name: user.Name, Email: user.Email},
	}, nil
}

func (u *UserService) lookup(ctx context.Context, identifier string) (*models.User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, badRequestCode(fmt.Errorf("user identifier is required"), ErrCodeInvalidID)
	}

	var (
		user *models.User
		err  error
	)
	if internalauth.LooksLikeEmail(identifier) {
		user, err = u.store.GetUserByEmail(ctx, strings.ToLower(identifier))
	} else {
		id, parseErr := strconv.ParseInt(identifier, 10, 64)
		if parseErr != nil || id <= 0 {
			return nil, badRequestCode(fmt.Errorf("invalid user identifier"), ErrCodeInvalidID)
		}
		user, err = u.store.GetUser(ctx, id)
	}
	if err != nil {
		return nil, storeFailure(err)
	}
	if user == nil {
		return nil, notFoundCode(fmt.Errorf("user not found"), ErrCodeUserNotFound)
	}
	return user, nil
}

func (u *UserService) ready() error {
	if u == nil || u.store == nil {
		return internalError(fmt.Errorf("user service is not configured"))
	}
	return nil
}

func userStoreError(err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return notFoundCode(fmt.Errorf("user not found"), ErrCodeUserNotFound)
	case errors.Is(err, store.ErrConflict):
		return conflictCode(fmt.Errorf("email already exists"), ErrCodeEmailExists)
	case errors.Is(err, store.ErrForeignKey):
		return conflictCode(fmt.Errorf("user still owns files"), ErrCodeUserHasFiles)
	default:
		return storeFailure(err)
	}
}
