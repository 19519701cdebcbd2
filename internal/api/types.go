package api

import "time"

// ErrorResponse is a generic JSON error wrapper.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	ErrorCode int    `json:"error_code,omitempty"`
}

// HealthResponse is returned by the health endpoints.
type HealthResponse struct {
	Status string `json:"status"`
}

// FileUploadResponse is returned after a successful upload.
type FileUploadResponse struct {
	ID            int64     `json:"id"`
	VersionID     string    `json:"versionId"`
	VersionNumber int       `json:"versionNumber"`
	Name          string    `json:"name"`
	MimeType      string    `json:"mimeType"`
	OwnerID       int64     `json:"ownerId"`
	IsPublic      bool      `json:"isPublic"`
	SizeBytes     int64     `json:"sizeBytes"`
	CreatedAt     time.Time `json:"createdAt"`
}

// FileReplaceResponse is returned after a successful replace.
type FileReplaceResponse struct {
	ID            int64  `json:"id"`
	NewVersionID  string `json:"newVersionId"`
	VersionNumber int    `json:"versionNumber"`
	Name          string `json:"name"`
}

// UserCreateRequest defines the payload for creating a user.
type UserCreateRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserUpdateRequest defines a partial user update.
type UserUpdateRequest struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
}

// ResourceCreateRequest defines the payload for creating a resource.
type ResourceCreateRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	UserID      *int64 `json:"userId,omitempty"`
	OwnerID     int64  `json:"ownerId"`
}

// ResourceUpdateRequest defines a partial resource update.
type ResourceUpdateRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	UserID      *int64  `json:"userId,omitempty"`
	OwnerID     *int64  `json:"ownerId,omitempty"`
}

// VerifyRequest carries credentials to check.
type VerifyRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// VerifiedUser is the public projection of a user after verification.
type VerifiedUser struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// VerifyResponse reports whether the credentials matched.
type VerifyResponse struct {
	Valid bool          `json:"valid"`
	User  *VerifiedUser `json:"user,omitempty"`
}
