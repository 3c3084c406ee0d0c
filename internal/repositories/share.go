package repositories

import (
	"filevault/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ShareRepository reads and writes grant rows for folders and files.
// "Active" lookups return the single live grant for a (resource, grantee)
// pair; full listings include revoked grants for audit.
type ShareRepository interface {
	FindActiveFolderGrant(folderID, userID uuid.UUID) (*models.SharedFolder, error)
	FindActiveFileGrant(fileID, userID uuid.UUID) (*models.SharedFile, error)
	SaveFolderGrant(grant *models.SharedFolder) error
	SaveFileGrant(grant *models.SharedFile) error
	ListFolderGrants(folderID uuid.UUID) ([]models.SharedFolder, error)
	ListFileGrants(fileID uuid.UUID) ([]models.SharedFile, error)
	ListActiveFolderGrantsForUser(userID uuid.UUID) ([]models.SharedFolder, error)
	ListActiveFileGrantsForUser(userID uuid.UUID) ([]models.SharedFile, error)
	// Transactional methods
	FindActiveFolderGrantInTx(tx *gorm.DB, folderID, userID uuid.UUID) (*models.SharedFolder, error)
	FindActiveFileGrantInTx(tx *gorm.DB, fileID, userID uuid.UUID) (*models.SharedFile, error)
	CreateFolderGrantInTx(tx *gorm.DB, grant *models.SharedFolder) error
	CreateFileGrantInTx(tx *gorm.DB, grant *models.SharedFile) error
	SaveFolderGrantInTx(tx *gorm.DB, grant *models.SharedFolder) error
	SaveFileGrantInTx(tx *gorm.DB, grant *models.SharedFile) error
	DeactivateFolderGrantsInTx(tx *gorm.DB, folderID uuid.UUID) error
}

type shareRepository struct {
	db *gorm.DB
}

func NewShareRepository(db *gorm.DB) ShareRepository {
	return &shareRepository{db: db}
}

func (r *shareRepository) FindActiveFolderGrant(folderID, userID uuid.UUID) (*models.SharedFolder, error) {
	return r.FindActiveFolderGrantInTx(r.db, folderID, userID)
}

func (r *shareRepository) FindActiveFileGrant(fileID, userID uuid.UUID) (*models.SharedFile, error) {
	return r.FindActiveFileGrantInTx(r.db, fileID, userID)
}

func (r *shareRepository) SaveFolderGrant(grant *models.SharedFolder) error {
	return r.db.Save(grant).Error
}

func (r *shareRepository) SaveFileGrant(grant *models.SharedFile) error {
	return r.db.Save(grant).Error
}

func (r *shareRepository) ListFolderGrants(folderID uuid.UUID) ([]models.SharedFolder, error) {
	var grants []models.SharedFolder
	err := r.db.Where("folder_id = ?", folderID).Order("granted_at desc").Find(&grants).Error
	return grants, err
}

func (r *shareRepository) ListFileGrants(fileID uuid.UUID) ([]models.SharedFile, error) {
	var grants []models.SharedFile
	err := r.db.Where("file_id = ?", fileID).Order("granted_at desc").Find(&grants).Error
	return grants, err
}

func (r *shareRepository) ListActiveFolderGrantsForUser(userID uuid.UUID) ([]models.SharedFolder, error) {
	var grants []models.SharedFolder
	err := r.db.Preload("Folder").
		Where("user_id = ? AND active = ?", userID, true).
		Order("granted_at desc").
		Find(&grants).Error
	return grants, err
}

func (r *shareRepository) ListActiveFileGrantsForUser(userID uuid.UUID) ([]models.SharedFile, error) {
	var grants []models.SharedFile
	err := r.db.Preload("File").
		Where("user_id = ? AND active = ?", userID, true).
		Order("granted_at desc").
		Find(&grants).Error
	return grants, err
}

func (r *shareRepository) FindActiveFolderGrantInTx(tx *gorm.DB, folderID, userID uuid.UUID) (*models.SharedFolder, error) {
	var grant models.SharedFolder
	if err := tx.First(&grant, "folder_id = ? AND user_id = ? AND active = ?", folderID, userID, true).Error; err != nil {
		return nil, err
	}
	return &grant, nil
}

func (r *shareRepository) FindActiveFileGrantInTx(tx *gorm.DB, fileID, userID uuid.UUID) (*models.SharedFile, error) {
	var grant models.SharedFile
	if err := tx.First(&grant, "file_id = ? AND user_id = ? AND active = ?", fileID, userID, true).Error; err != nil {
		return nil, err
	}
	return &grant, nil
}

func (r *shareRepository) CreateFolderGrantInTx(tx *gorm.DB, grant *models.SharedFolder) error {
	return tx.Create(grant).Error
}

func (r *shareRepository) CreateFileGrantInTx(tx *gorm.DB, grant *models.SharedFile) error {
	return tx.Create(grant).Error
}

func (r *shareRepository) SaveFolderGrantInTx(tx *gorm.DB, grant *models.SharedFolder) error {
	return tx.Save(grant).Error
}

func (r *shareRepository) SaveFileGrantInTx(tx *gorm.DB, grant *models.SharedFile) error {
	return tx.Save(grant).Error
}

func (r *shareRepository) DeactivateFolderGrantsInTx(tx *gorm.DB, folderID uuid.UUID) error {
	return tx.Model(&models.SharedFolder{}).
		Where("folder_id = ? AND active = ?", folderID, true).
		Update("active", false).Error
}
