package main

import (
	"gorm.io/gorm"

	"github.com/mindweave/engine/internal/models"
)

// registerModels returns all models that need migration
func registerModels() []interface{} {
	return []interface{}{
		// User management
		&models.User{},
		&models.Friendship{},

		// Private notes
		&models.Memo{},

		// Projects, chat and the mind map
		&models.Project{},
		&models.ProjectMember{},
		&models.ChatMessage{},
		&models.MindMapNode{},
	}
}

// runMigrations executes all database migrations
func runMigrations(db *gorm.DB) error {
	if err := enableUUIDExtension(db); err != nil {
		return err
	}
	return db.AutoMigrate(registerModels()...)
}

// enableUUIDExtension ensures gen_random_uuid() is available
func enableUUIDExtension(db *gorm.DB) error {
	return db.Exec(`CREATE EXTENSION IF NOT EXISTS "pgcrypto"`).Error
}
