package repositories

import (
	"filevault/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VersionRepository interface {
	CreateFileVersion(version *models.FileVersion) error
	CreateFolderVersion(version *models.FolderVersion) error
	LatestFileVersion(fileID uuid.UUID) (*models.FileVersion, error)
	LatestFolderVersion(folderID uuid.UUID) (*models.FolderVersion, error)
	ListFileVersions(fileID uuid.UUID) ([]models.FileVersion, error)
	ListFolderVersions(folderID uuid.UUID) ([]models.FolderVersion, error)
	GetFileVersion(fileID uuid.UUID, number string) (*models.FileVersion, error)
	GetFolderVersion(folderID uuid.UUID, number string) (*models.FolderVersion, error)
}

type versionRepository struct {
	db *gorm.DB
}

func NewVersionRepository(db *gorm.DB) VersionRepository {
	return &versionRepository{db: db}
}

func (r *versionRepository) CreateFileVersion(version *models.FileVersion) error {
	return r.db.Create(version).Error
}

func (r *versionRepository) CreateFolderVersion(version *models.FolderVersion) error {
	return r.db.Create(version).Error
}

func (r *versionRepository) LatestFileVersion(fileID uuid.UUID) (*models.FileVersion, error) {
	var version models.FileVersion
	if err := r.db.Where("file_id = ?", fileID).Order("created_at desc").First(&version).Error; err != nil {
		return nil, err
	}
	return &version, nil
}

func (r *versionRepository) LatestFolderVersion(folderID uuid.UUID) (*models.FolderVersion, error) {
	var version models.FolderVersion
	if err := r.db.Where("folder_id = ?", folderID).Order("created_at desc").First(&version).Error; err != nil {
		return nil, err
	}
	return &version, nil
}

func (r *versionRepository) ListFileVersions(fileID uuid.UUID) ([]models.FileVersion, error) {
	var versions []models.FileVersion
	err := r.db.Where("file_id = ?", fileID).Order("created_at desc").Find(&versions).Error
	return versions, err
}

func (r *versionRepository) ListFolderVersions(folderID uuid.UUID) ([]models.FolderVersion, error) {
	var versions []models.FolderVersion
	err := r.db.Where("folder_id = ?", folderID).Order("created_at desc").Find(&versions).Error
	return versions, err
}

func (r *versionRepository) GetFileVersion(fileID uuid.UUID, number string) (*models.FileVersion, error) {
	var version models.FileVersion
	if err := r.db.First(&version, "file_id = ? AND version_number = ?", fileID, number).Error; err != nil {
		return nil, err
	}
	return &version, nil
}

func (r *versionRepository) GetFolderVersion(folderID uuid.UUID, number string) (*models.FolderVersion, error) {
	var version models.FolderVersion
	if err := r.db.First(&version, "folder_id = ? AND version_number = ?", folderID, number).Error; err != nil {
		return nil, err
	}
	return &version, nil
}
