package repositories

import (
	"time"

	"filevault/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FolderRepository reads and writes folder rows. All lookups exclude
// soft-deleted folders.
type FolderRepository interface {
	Create(folder *models.Folder) error
	FindByID(id uuid.UUID) (*models.Folder, error)
	FindByIDAndOwner(id, ownerID uuid.UUID) (*models.Folder, error)
	ListByOwnerAndParent(ownerID uuid.UUID, parentID *uuid.UUID) ([]models.Folder, error)
	ListChildren(parentID uuid.UUID) ([]models.Folder, error)
	CountChildren(parentID uuid.UUID) (int64, error)
	Save(folder *models.Folder) error
	// Transactional methods
	ListChildrenInTx(tx *gorm.DB, parentID uuid.UUID) ([]models.Folder, error)
	SoftDeleteInTx(tx *gorm.DB, folder *models.Folder, deletedBy uuid.UUID, at time.Time) error
}

type folderRepository struct {
	db *gorm.DB
}

func NewFolderRepository(db *gorm.DB) FolderRepository {
	return &folderRepository{db: db}
}

func (r *folderRepository) Create(folder *models.Folder) error {
	return r.db.Create(folder).Error
}

func (r *folderRepository) FindByID(id uuid.UUID) (*models.Folder, error) {
	var folder models.Folder
	if err := r.db.First(&folder, "id = ? AND is_deleted = ?", id, false).Error; err != nil {
		return nil, err
	}
	return &folder, nil
}

func (r *folderRepository) FindByIDAndOwner(id, ownerID uuid.UUID) (*models.Folder, error) {
	var folder models.Folder
	if err := r.db.First(&folder, "id = ? AND owner_id = ? AND is_deleted = ?", id, ownerID, false).Error; err != nil {
		return nil, err
	}
	return &folder, nil
}

func (r *folderRepository) ListByOwnerAndParent(ownerID uuid.UUID, parentID *uuid.UUID) ([]models.Folder, error) {
	var folders []models.Folder
	query := r.db.Where("owner_id = ? AND is_deleted = ?", ownerID, false)
	if parentID != nil {
		query = query.Where("parent_id = ?", *parentID)
	} else {
		query = query.Where("parent_id IS NULL")
	}
	err := query.Order("name").Find(&folders).Error
	return folders, err
}

func (r *folderRepository) ListChildren(parentID uuid.UUID) ([]models.Folder, error) {
	var folders []models.Folder
	err := r.db.Where("parent_id = ? AND is_deleted = ?", parentID, false).Order("name").Find(&folders).Error
	return folders, err
}

func (r *folderRepository) CountChildren(parentID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&models.Folder{}).Where("parent_id = ? AND is_deleted = ?", parentID, false).Count(&count).Error
	return count, err
}

func (r *folderRepository) Save(folder *models.Folder) error {
	return r.db.Save(folder).Error
}

func (r *folderRepository) ListChildrenInTx(tx *gorm.DB, parentID uuid.UUID) ([]models.Folder, error) {
	var folders []models.Folder
	err := tx.Where("parent_id = ? AND is_deleted = ?", parentID, false).Find(&folders).Error
	return folders, err
}

func (r *folderRepository) SoftDeleteInTx(tx *gorm.DB, folder *models.Folder, deletedBy uuid.UUID, at time.Time) error {
	return tx.Model(folder).Updates(map[string]interface{}{
		"is_deleted":    true,
		"deleted_by_id": deletedBy,
		"deleted_at":    at,
	}).Error
}
