package models

import "time"

// Resource is a generic owned record, optionally assigned to another user.
type Resource struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	UserID      *int64    `json:"userId,omitempty"`
	OwnerID     int64     `json:"ownerId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
