package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents a platform user.
type User struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Email           string         `gorm:"uniqueIndex;not null" json:"email" validate:"required,email"`
	PasswordHash    string         `gorm:"not null" json:"-" swaggerignore:"true"`
	Name            string         `gorm:"not null" json:"name" validate:"required"`
	FriendCode      string         `gorm:"type:varchar(7);uniqueIndex;not null" json:"friend_code"`
	IsOnline        bool           `gorm:"not null;default:false" json:"is_online"`
	ProfileImageURL string         `json:"profile_image_url,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-" swaggerignore:"true"`
}

// Friendship statuses.
const (
	FriendshipPending  = "pending"
	FriendshipAccepted = "accepted"
	FriendshipRejected = "rejected"
)

// Friendship is a directed relationship record. An accepted friendship is
// stored as two records, one per direction.
type Friendship struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index:idx_friendships_pair,unique" json:"user_id"`
	FriendID  uuid.UUID `gorm:"type:uuid;not null;index:idx_friendships_pair,unique" json:"friend_id"`
	Status    string    `gorm:"type:varchar(16);not null;default:'pending';index" json:"status" validate:"oneof=pending accepted rejected"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
