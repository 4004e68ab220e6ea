package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Project is a collaborative mind-mapping workspace.
//
// IsGenerating and LastChatIDProcessed together form the generation-cycle
// state: IsGenerating true means a cycle is in flight and structural writes
// to the project's node set must be rejected; LastChatIDProcessed is the
// high-water mark of chat already folded into the current map and never
// decreases.
type Project struct {
	ID                  uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Title               string         `gorm:"not null;index" json:"title" validate:"required"`
	IsGenerating        bool           `gorm:"not null;default:false" json:"is_generating"`
	LastChatIDProcessed int64          `gorm:"not null;default:0" json:"last_chat_id_processed"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"-" swaggerignore:"true"`
}

// ProjectMember links a user to a project. Admins may perform destructive
// operations such as deleting the project.
type ProjectMember struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ProjectID uuid.UUID `gorm:"type:uuid;not null;index:idx_project_members_pair,unique" json:"project_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index:idx_project_members_pair,unique" json:"user_id"`
	IsAdmin   bool      `gorm:"not null;default:false" json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}
