package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"filevault/internal/apperrors"
	"filevault/internal/dto"
	"filevault/internal/events"
	"filevault/internal/kafka"
	"filevault/internal/redis"
	"filevault/internal/repositories"

	"filevault/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// FolderService maintains the per-owner folder tree. The parent chain must
// stay acyclic and terminate at a root; moves that would violate that are
// rejected before any write happens.
type FolderService struct {
	db       *gorm.DB
	folders  repositories.FolderRepository
	files    repositories.FileRepository
	shares   repositories.ShareRepository
	cache    Cache
	producer *kafka.Producer
	log      zerolog.Logger
}

func NewFolderService(
	db *gorm.DB,
	folders repositories.FolderRepository,
	files repositories.FileRepository,
	shares repositories.ShareRepository,
	cache Cache,
	producer *kafka.Producer,
	log zerolog.Logger,
) *FolderService {
	return &FolderService{
		db:       db,
		folders:  folders,
		files:    files,
		shares:   shares,
		cache:    cache,
		producer: producer,
		log:      log,
	}
}

// Create adds a folder under parentID (nil for root). The new folder starts
// with a nil updated-at; only rename and move set it.
func (s *FolderService) Create(ctx context.Context, ownerID uuid.UUID, name string, parentID *uuid.UUID) (*models.Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.Validation("folder name must not be empty")
	}

	if parentID != nil {
		if _, err := s.folders.FindByIDAndOwner(*parentID, ownerID); err != nil {
			if isNotFound(err) {
				return nil, apperrors.NotFound("parent folder not found")
			}
			return nil, apperrors.Internal("failed to look up parent folder", err)
		}
	}

	folder := &models.Folder{
		Name:     name,
		OwnerID:  ownerID,
		ParentID: parentID,
	}
	if err := s.folders.Create(folder); err != nil {
		return nil, apperrors.Internal("failed to create folder", err)
	}

	s.invalidateListing(ctx, ownerID, parentID)
	s.publishFolderEvent(ctx, events.FolderCreated, folder, ownerID)

	return folder, nil
}

// Rename changes the folder's name. Owner only; a non-owner cannot tell the
// folder exists, so they get not-found.
func (s *FolderService) Rename(ctx context.Context, folderID, ownerID uuid.UUID, newName string) (*models.Folder, error) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return nil, apperrors.Validation("folder name must not be empty")
	}

	folder, err := s.folders.FindByIDAndOwner(folderID, ownerID)
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.NotFound("folder not found")
		}
		return nil, apperrors.Internal("failed to look up folder", err)
	}

	now := time.Now()
	folder.Name = newName
	folder.UpdatedAt = &now
	if err := s.folders.Save(folder); err != nil {
		return nil, apperrors.Internal("failed to rename folder", err)
	}

	s.invalidateListing(ctx, ownerID, folder.ParentID)
	s.publishFolderEvent(ctx, events.FolderUpdated, folder, ownerID)

	return folder, nil
}

// Move reparents the folder. The move is rejected when the target parent is
// the folder itself or any of its descendants, which would make the folder
// its own ancestor.
func (s *FolderService) Move(ctx context.Context, folderID, ownerID uuid.UUID, newParentID *uuid.UUID) (*models.Folder, error) {
	folder, err := s.folders.FindByIDAndOwner(folderID, ownerID)
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.NotFound("folder not found")
		}
		return nil, apperrors.Internal("failed to look up folder", err)
	}

	if newParentID != nil {
		target, err := s.folders.FindByIDAndOwner(*newParentID, ownerID)
		if err != nil {
			if isNotFound(err) {
				return nil, apperrors.NotFound("target parent folder not found")
			}
			return nil, apperrors.Internal("failed to look up target parent", err)
		}

		if err := s.checkForCycle(folderID, target); err != nil {
			return nil, err
		}
	}

	oldParentID := folder.ParentID
	now := time.Now()
	folder.ParentID = newParentID
	folder.UpdatedAt = &now
	if err := s.folders.Save(folder); err != nil {
		return nil, apperrors.Internal("failed to move folder", err)
	}

	s.invalidateListing(ctx, ownerID, oldParentID)
	s.invalidateListing(ctx, ownerID, newParentID)
	s.publishFolderEvent(ctx, events.FolderMoved, folder, ownerID)

	return folder, nil
}

// checkForCycle walks up from the target parent via parent links. Finding
// folderID on the way means the folder would become its own descendant. A
// dangling parent reference just terminates the walk; it is not an error.
func (s *FolderService) checkForCycle(folderID uuid.UUID, target *models.Folder) error {
	current := target
	for {
		if current.ID == folderID {
			return apperrors.InvalidOperation("cannot move a folder into itself or one of its descendants")
		}
		if current.ParentID == nil {
			return nil
		}
		next, err := s.folders.FindByID(*current.ParentID)
		if err != nil {
			if isNotFound(err) {
				return nil
			}
			return apperrors.Internal("failed to walk parent chain", err)
		}
		current = next
	}
}

// Delete removes the folder, every descendant folder (depth-first) and all
// their files, in a single transaction. Active grants on deleted folders are
// deactivated; grant history stays.
func (s *FolderService) Delete(ctx context.Context, folderID, ownerID uuid.UUID) error {
	folder, err := s.folders.FindByIDAndOwner(folderID, ownerID)
	if err != nil {
		if isNotFound(err) {
			return apperrors.NotFound("folder not found")
		}
		return apperrors.Internal("failed to look up folder", err)
	}

	now := time.Now()
	staleKeys := map[string]struct{}{}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		return s.deleteTree(tx, folder, ownerID, now, staleKeys)
	})
	if err != nil {
		return apperrors.Internal("failed to delete folder", err)
	}

	keys := make([]string, 0, len(staleKeys))
	for key := range staleKeys {
		keys = append(keys, key)
	}
	if err := s.cacheRemove(ctx, keys...); err != nil {
		s.log.Warn().Err(err).Msg("failed to invalidate listing cache after delete")
	}

	s.publishFolderEvent(ctx, events.FolderDeleted, folder, ownerID)
	return nil
}

func (s *FolderService) deleteTree(tx *gorm.DB, folder *models.Folder, deletedBy uuid.UUID, at time.Time, staleKeys map[string]struct{}) error {
	children, err := s.folders.ListChildrenInTx(tx, folder.ID)
	if err != nil {
		return err
	}
	for i := range children {
		if err := s.deleteTree(tx, &children[i], deletedBy, at, staleKeys); err != nil {
			return err
		}
	}

	if err := s.files.SoftDeleteByFolderInTx(tx, folder.ID, at); err != nil {
		return err
	}
	if err := s.shares.DeactivateFolderGrantsInTx(tx, folder.ID); err != nil {
		return err
	}
	if err := s.folders.SoftDeleteInTx(tx, folder, deletedBy, at); err != nil {
		return err
	}

	staleKeys[redis.FolderListingKey(folder.OwnerID, folder.ParentID)] = struct{}{}
	staleKeys[redis.SharesOfKey(folder.ID)] = struct{}{}
	return nil
}

// List returns the owner's folders under parentID with computed file and
// subfolder counts, served from cache when fresh.
func (s *FolderService) List(ctx context.Context, ownerID uuid.UUID, parentID *uuid.UUID) ([]dto.FolderInfo, error) {
	key := redis.FolderListingKey(ownerID, parentID)

	var cached []dto.FolderInfo
	if s.cache != nil {
		if hit, err := s.cache.GetJSON(ctx, key, &cached); err == nil && hit {
			return cached, nil
		}
	}

	folders, err := s.folders.ListByOwnerAndParent(ownerID, parentID)
	if err != nil {
		return nil, apperrors.Internal("failed to list folders", err)
	}

	infos := make([]dto.FolderInfo, 0, len(folders))
	for _, folder := range folders {
		fileCount, err := s.files.CountByFolder(folder.ID)
		if err != nil {
			return nil, apperrors.Internal("failed to count files", err)
		}
		subCount, err := s.folders.CountChildren(folder.ID)
		if err != nil {
			return nil, apperrors.Internal("failed to count subfolders", err)
		}
		infos = append(infos, dto.FolderInfo{
			ID:             folder.ID,
			Name:           folder.Name,
			OwnerID:        folder.OwnerID,
			ParentID:       folder.ParentID,
			CreatedAt:      folder.CreatedAt,
			UpdatedAt:      folder.UpdatedAt,
			FileCount:      fileCount,
			SubfolderCount: subCount,
		})
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, infos, redis.ListingTTL); err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("failed to cache folder listing")
		}
	}

	return infos, nil
}

func (s *FolderService) invalidateListing(ctx context.Context, ownerID uuid.UUID, parentID *uuid.UUID) {
	if err := s.cacheRemove(ctx, redis.FolderListingKey(ownerID, parentID)); err != nil {
		s.log.Warn().Err(err).Msg("failed to invalidate listing cache")
	}
}

func (s *FolderService) cacheRemove(ctx context.Context, keys ...string) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Remove(ctx, keys...)
}

func (s *FolderService) publishFolderEvent(ctx context.Context, eventType string, folder *models.Folder, actionBy uuid.UUID) {
	if s.producer == nil {
		return
	}
	event := events.NewFileEvent(eventType, events.ResourceTypeFolder, folder.ID, folder.OwnerID, actionBy)
	if err := s.producer.PublishFileEvent(ctx, event); err != nil {
		s.log.Warn().Err(err).Str("event", fmt.Sprintf("%s %s", eventType, folder.ID)).Msg("failed to publish folder event")
	}
}
