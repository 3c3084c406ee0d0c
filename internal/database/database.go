package database

import (
	"fmt"

	"filevault/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Connect(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate runs AutoMigrate plus the partial unique indexes that keep the
// idempotent share upsert safe under concurrent requests: two racing shares
// for the same (resource, grantee) cannot both insert an active row.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Folder{},
		&models.FileEntry{},
		&models.SharedFolder{},
		&models.SharedFile{},
		&models.FileVersion{},
		&models.FolderVersion{},
	)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if db.Dialector.Name() == "postgres" {
		stmts := []string{
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_shared_folders_active_grant
				ON shared_folders (folder_id, user_id) WHERE active`,
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_shared_files_active_grant
				ON shared_files (file_id, user_id) WHERE active`,
		}
		for _, stmt := range stmts {
			if err := db.Exec(stmt).Error; err != nil {
				return fmt.Errorf("index creation failed: %w", err)
			}
		}
	}

	return nil
}
