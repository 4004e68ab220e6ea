package ai

import (
	"time"

	"github.com/mindweave/engine/internal/models"
)

// NodeSnapshot is the part of an existing mind-map node shown to the model
// when a map is regenerated. Connections are deliberately elided from the
// prompt; the model produces a fresh edge set.
type NodeSnapshot struct {
	ID          string
	Title       string
	Description string
}

// ChatEntry is one chat message as presented to the model.
type ChatEntry struct {
	ID        int64
	Author    string
	Content   string
	Timestamp time.Time
}

// GeneratedNode is one node of the model's structured response.
type GeneratedNode struct {
	ID          string                  `json:"id" validate:"required"`
	NodeType    string                  `json:"node_type" validate:"required,oneof=core major minor"`
	Title       string                  `json:"title" validate:"required"`
	Description string                  `json:"description"`
	Connections []models.NodeConnection `json:"connections"`
}

// GeneratedLink is the redundant convenience view of an edge. Node-level
// connections are authoritative; links may be empty.
type GeneratedLink struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// MindMapPayload is the validated structured output of one generation call.
type MindMapPayload struct {
	Nodes []GeneratedNode `json:"nodes" validate:"required"`
	Links []GeneratedLink `json:"links"`
}
