package repositories

import (
	"time"

	"filevault/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FileRepository interface {
	Create(file *models.FileEntry) error
	FindByID(id uuid.UUID) (*models.FileEntry, error)
	ListByFolder(folderID uuid.UUID) ([]models.FileEntry, error)
	CountByFolder(folderID uuid.UUID) (int64, error)
	Save(file *models.FileEntry) error
	SoftDelete(file *models.FileEntry, at time.Time) error
	// Transactional methods
	SoftDeleteByFolderInTx(tx *gorm.DB, folderID uuid.UUID, at time.Time) error
}

type fileRepository struct {
	db *gorm.DB
}

func NewFileRepository(db *gorm.DB) FileRepository {
	return &fileRepository{db: db}
}

func (r *fileRepository) Create(file *models.FileEntry) error {
	return r.db.Create(file).Error
}

func (r *fileRepository) FindByID(id uuid.UUID) (*models.FileEntry, error) {
	var file models.FileEntry
	if err := r.db.First(&file, "id = ? AND is_deleted = ?", id, false).Error; err != nil {
		return nil, err
	}
	return &file, nil
}

func (r *fileRepository) ListByFolder(folderID uuid.UUID) ([]models.FileEntry, error) {
	var files []models.FileEntry
	err := r.db.Where("folder_id = ? AND is_deleted = ?", folderID, false).Order("name").Find(&files).Error
	return files, err
}

func (r *fileRepository) CountByFolder(folderID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&models.FileEntry{}).Where("folder_id = ? AND is_deleted = ?", folderID, false).Count(&count).Error
	return count, err
}

func (r *fileRepository) Save(file *models.FileEntry) error {
	return r.db.Save(file).Error
}

func (r *fileRepository) SoftDelete(file *models.FileEntry, at time.Time) error {
	return r.db.Model(file).Updates(map[string]interface{}{
		"is_deleted": true,
		"deleted_at": at,
	}).Error
}

func (r *fileRepository) SoftDeleteByFolderInTx(tx *gorm.DB, folderID uuid.UUID, at time.Time) error {
	return tx.Model(&models.FileEntry{}).
		Where("folder_id = ? AND is_deleted = ?", folderID, false).
		Updates(map[string]interface{}{
			"is_deleted": true,
			"deleted_at": at,
		}).Error
}
