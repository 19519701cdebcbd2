package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Visibility controls whether a logical file is listed publicly.
type Visibility string

const (
	VisibilityPrivate Visibility = "private"
	VisibilityPublic  Visibility = "public"
)

// ParseVisibility accepts "public"/"private" and boolean spellings ("true", "1", ...).
// An empty value is private.
func ParseVisibility(raw string) (Visibility, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	switch value {
	case "", string(VisibilityPrivate):
		return VisibilityPrivate, nil
	case string(VisibilityPublic):
		return VisibilityPublic, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return "", fmt.Errorf("invalid visibility: %s", raw)
	}
	if parsed {
		return VisibilityPublic, nil
	}
	return VisibilityPrivate, nil
}

// LogicalFile is the stable, addressable file record a client refers to across versions.
type LogicalFile struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	MimeType         string    `json:"mimeType"`
	OwnerID          int64     `json:"ownerId"`
	IsPublic         bool      `json:"isPublic"`
	CurrentVersionID string    `json:"versionId"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`

	// Denormalized from the current version row.
	VersionNumber int    `json:"versionNumber"`
	BlobPath      string `json:"-"`
	SizeBytes     int64  `json:"sizeBytes"`
}

// Visibility reports the file visibility as an enum.
func (f LogicalFile) Visibility() Visibility {
	if f.IsPublic {
		return VisibilityPublic
	}
	return VisibilityPrivate
}

// FileVersion is one immutable uploaded revision of a logical file.
type FileVersion struct {
	ID            string    `json:"id"`
	FileID        int64     `json:"fileId,omitempty"`
	VersionNumber int       `json:"versionNumber"`
	BlobPath      string    `json:"-"`
	SizeBytes     int64     `json:"sizeBytes"`
	UploadedAt    time.Time `json:"uploadedAt"`
}
