package models

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage is an immutable chat entry within a project. The
// auto-incremented ID is the authoritative ordering used to compute what is
// "new" since the last generation cycle.
type ChatMessage struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ProjectID uuid.UUID `gorm:"type:uuid;index;not null" json:"project_id"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	Content   string    `gorm:"type:text;not null" json:"content" validate:"required"`
	CreatedAt time.Time `json:"created_at"`
}
