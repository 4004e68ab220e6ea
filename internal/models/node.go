package models

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Mind-map hierarchy levels.
const (
	NodeTypeCore  = "core"
	NodeTypeMajor = "major"
	NodeTypeMinor = "minor"
)

// MindMapNode is one element of a project's mind map. IDs are assigned by
// the generation model (e.g. "core-1") and are unique within a project.
//
// Connections holds a JSON list of {"target_id": "..."} references to other
// node ids in the same project. The store does not enforce referential
// integrity of target ids; consumers treat them as advisory.
type MindMapNode struct {
	ID          string         `gorm:"primaryKey" json:"id"`
	ProjectID   uuid.UUID      `gorm:"type:uuid;primaryKey" json:"project_id"`
	NodeType    string         `gorm:"type:varchar(16);not null" json:"node_type" validate:"required,oneof=core major minor"`
	Title       string         `gorm:"not null" json:"title" validate:"required"`
	Description string         `gorm:"type:text" json:"description"`
	Connections datatypes.JSON `gorm:"type:jsonb" json:"connections"`
}

// NodeConnection is the element shape stored in MindMapNode.Connections.
type NodeConnection struct {
	TargetID string `json:"target_id"`
}
