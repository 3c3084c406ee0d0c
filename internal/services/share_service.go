package services

import (
	"context"
	"errors"
	"time"

	"filevault/internal/apperrors"
	"filevault/internal/dto"
	"filevault/internal/events"
	"filevault/internal/kafka"
	"filevault/internal/models"
	"filevault/internal/redis"
	"filevault/internal/repositories"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// ShareService manages grants. Sharing the same resource with the same
// grantee twice refreshes the one active grant instead of inserting a
// duplicate; revoking deactivates the grant but keeps the row for audit.
type ShareService struct {
	db       *gorm.DB
	folders  repositories.FolderRepository
	files    repositories.FileRepository
	users    repositories.UserRepository
	shares   repositories.ShareRepository
	cache    Cache
	producer *kafka.Producer
	log      zerolog.Logger
}

func NewShareService(
	db *gorm.DB,
	folders repositories.FolderRepository,
	files repositories.FileRepository,
	users repositories.UserRepository,
	shares repositories.ShareRepository,
	cache Cache,
	producer *kafka.Producer,
	log zerolog.Logger,
) *ShareService {
	return &ShareService{
		db:       db,
		folders:  folders,
		files:    files,
		users:    users,
		shares:   shares,
		cache:    cache,
		producer: producer,
		log:      log,
	}
}

// ShareFolder grants granteeID access to the folder at the given permission
// level. Re-sharing an already-shared pair refreshes the existing active
// grant in place: permission, expiry, note and granted-at are all reset.
func (s *ShareService) ShareFolder(ctx context.Context, folderID, grantorID, granteeID uuid.UUID, permission models.Permission, expiresAt *time.Time, note string) (*models.SharedFolder, error) {
	if _, err := s.folders.FindByIDAndOwner(folderID, grantorID); err != nil {
		if isNotFound(err) {
			return nil, apperrors.NotFound("folder not found")
		}
		return nil, apperrors.Internal("failed to look up folder", err)
	}

	if _, err := s.users.FindByID(granteeID); err != nil {
		if isNotFound(err) {
			return nil, apperrors.NotFound("target user not found")
		}
		return nil, apperrors.Internal("failed to look up target user", err)
	}

	var grant *models.SharedFolder
	err := s.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		existing, err := s.shares.FindActiveFolderGrantInTx(tx, folderID, granteeID)
		if err == nil {
			existing.Permission = permission
			existing.ExpiresAt = expiresAt
			existing.Note = note
			existing.GrantedAt = now
			existing.Active = true
			grant = existing
			return s.shares.SaveFolderGrantInTx(tx, existing)
		}
		if !isNotFound(err) {
			return err
		}

		grant = &models.SharedFolder{
			FolderID:   folderID,
			UserID:     granteeID,
			SharedByID: grantorID,
			Permission: permission,
			GrantedAt:  now,
			ExpiresAt:  expiresAt,
			Note:       note,
			Active:     true,
		}
		return s.shares.CreateFolderGrantInTx(tx, grant)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Conflict("folder is already being shared with this user")
		}
		return nil, apperrors.Internal("failed to share folder", err)
	}

	s.invalidateShareCaches(ctx, folderID, granteeID)
	s.publishShareEvent(ctx, events.FolderShared, events.ResourceTypeFolder, folderID, grantorID, granteeID, permission.String())

	return grant, nil
}

// ShareFile is the simplified file variant: grants default to Read with no
// expiry, same idempotent-update discipline.
func (s *ShareService) ShareFile(ctx context.Context, fileID, grantorID, granteeID uuid.UUID) (*models.SharedFile, error) {
	file, err := s.files.FindByID(fileID)
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.NotFound("file not found")
		}
		return nil, apperrors.Internal("failed to look up file", err)
	}
	if file.OwnerID != grantorID {
		return nil, apperrors.NotFound("file not found")
	}

	if _, err := s.users.FindByID(granteeID); err != nil {
		if isNotFound(err) {
			return nil, apperrors.NotFound("target user not found")
		}
		return nil, apperrors.Internal("failed to look up target user", err)
	}

	var grant *models.SharedFile
	err = s.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		existing, err := s.shares.FindActiveFileGrantInTx(tx, fileID, granteeID)
		if err == nil {
			existing.Permission = models.PermissionRead
			existing.ExpiresAt = nil
			existing.GrantedAt = now
			existing.Active = true
			grant = existing
			return s.shares.SaveFileGrantInTx(tx, existing)
		}
		if !isNotFound(err) {
			return err
		}

		grant = &models.SharedFile{
			FileID:     fileID,
			UserID:     granteeID,
			SharedByID: grantorID,
			Permission: models.PermissionRead,
			GrantedAt:  now,
			Active:     true,
		}
		return s.shares.CreateFileGrantInTx(tx, grant)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Conflict("file is already being shared with this user")
		}
		return nil, apperrors.Internal("failed to share file", err)
	}

	s.invalidateShareCaches(ctx, fileID, granteeID)
	s.publishShareEvent(ctx, events.FileShared, events.ResourceTypeFile, fileID, grantorID, granteeID, models.PermissionRead.String())

	return grant, nil
}

// ListSharedWithMe returns the caller's active grants joined with resource
// and grantor display info. Served from cache for a short TTL.
func (s *ShareService) ListSharedWithMe(ctx context.Context, userID uuid.UUID) (*dto.SharedWithMe, error) {
	key := redis.SharedWithMeKey(userID)

	var cached dto.SharedWithMe
	if s.cache != nil {
		if hit, err := s.cache.GetJSON(ctx, key, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	folderGrants, err := s.shares.ListActiveFolderGrantsForUser(userID)
	if err != nil {
		return nil, apperrors.Internal("failed to list folder grants", err)
	}
	fileGrants, err := s.shares.ListActiveFileGrantsForUser(userID)
	if err != nil {
		return nil, apperrors.Internal("failed to list file grants", err)
	}

	result := &dto.SharedWithMe{
		Folders: make([]dto.SharedFolderInfo, 0, len(folderGrants)),
		Files:   make([]dto.SharedFileInfo, 0, len(fileGrants)),
	}

	for _, grant := range folderGrants {
		result.Folders = append(result.Folders, dto.SharedFolderInfo{
			GrantID:      grant.ID,
			FolderID:     grant.FolderID,
			FolderName:   grant.Folder.Name,
			SharedByID:   grant.SharedByID,
			SharedByName: s.displayName(grant.SharedByID),
			Permission:   grant.Permission.String(),
			GrantedAt:    grant.GrantedAt,
			ExpiresAt:    grant.ExpiresAt,
			Note:         grant.Note,
		})
	}
	for _, grant := range fileGrants {
		result.Files = append(result.Files, dto.SharedFileInfo{
			GrantID:      grant.ID,
			FileID:       grant.FileID,
			FileName:     grant.File.Name,
			SharedByID:   grant.SharedByID,
			SharedByName: s.displayName(grant.SharedByID),
			Permission:   grant.Permission.String(),
			GrantedAt:    grant.GrantedAt,
			ExpiresAt:    grant.ExpiresAt,
			Note:         grant.Note,
		})
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, result, redis.SharedWithMeTTL); err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("failed to cache shared-with-me listing")
		}
	}

	return result, nil
}

// ListFolderShares returns every grant of the folder, active and revoked,
// for audit visibility. Owner only. The listing is cached per resource and
// invalidated by every grant mutation.
func (s *ShareService) ListFolderShares(ctx context.Context, folderID, ownerID uuid.UUID) ([]models.SharedFolder, error) {
	if _, err := s.folders.FindByIDAndOwner(folderID, ownerID); err != nil {
		if isNotFound(err) {
			return nil, apperrors.NotFound("folder not found")
		}
		return nil, apperrors.Internal("failed to look up folder", err)
	}

	key := redis.SharesOfKey(folderID)
	var cached []models.SharedFolder
	if s.cache != nil {
		if hit, err := s.cache.GetJSON(ctx, key, &cached); err == nil && hit {
			return cached, nil
		}
	}

	grants, err := s.shares.ListFolderGrants(folderID)
	if err != nil {
		return nil, apperrors.Internal("failed to list folder grants", err)
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, grants, redis.ListingTTL); err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("failed to cache folder share listing")
		}
	}
	return grants, nil
}

// ListFileShares is the file counterpart of ListFolderShares.
func (s *ShareService) ListFileShares(ctx context.Context, fileID, ownerID uuid.UUID) ([]models.SharedFile, error) {
	file, err := s.files.FindByID(fileID)
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.NotFound("file not found")
		}
		return nil, apperrors.Internal("failed to look up file", err)
	}
	if file.OwnerID != ownerID {
		return nil, apperrors.NotFound("file not found")
	}

	key := redis.SharesOfKey(fileID)
	var cached []models.SharedFile
	if s.cache != nil {
		if hit, err := s.cache.GetJSON(ctx, key, &cached); err == nil && hit {
			return cached, nil
		}
	}

	grants, err := s.shares.ListFileGrants(fileID)
	if err != nil {
		return nil, apperrors.Internal("failed to list file grants", err)
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, grants, redis.ListingTTL); err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("failed to cache file share listing")
		}
	}
	return grants, nil
}

// RevokeFolderShare deactivates the active grant for (folder, grantee).
// The row is kept; history survives revocation.
func (s *ShareService) RevokeFolderShare(ctx context.Context, folderID, granteeID, callerID uuid.UUID) error {
	if _, err := s.folders.FindByIDAndOwner(folderID, callerID); err != nil {
		if isNotFound(err) {
			return apperrors.NotFound("folder not found")
		}
		return apperrors.Internal("failed to look up folder", err)
	}

	grant, err := s.shares.FindActiveFolderGrant(folderID, granteeID)
	if err != nil {
		if isNotFound(err) {
			return apperrors.NotFound("no active share for this user")
		}
		return apperrors.Internal("failed to look up grant", err)
	}

	grant.Active = false
	if err := s.shares.SaveFolderGrant(grant); err != nil {
		return apperrors.Internal("failed to revoke share", err)
	}

	s.invalidateShareCaches(ctx, folderID, granteeID)
	s.publishShareEvent(ctx, events.FolderUnshared, events.ResourceTypeFolder, folderID, callerID, granteeID, "")

	return nil
}

// RevokeFileShare mirrors RevokeFolderShare for files.
func (s *ShareService) RevokeFileShare(ctx context.Context, fileID, granteeID, callerID uuid.UUID) error {
	file, err := s.files.FindByID(fileID)
	if err != nil {
		if isNotFound(err) {
			return apperrors.NotFound("file not found")
		}
		return apperrors.Internal("failed to look up file", err)
	}
	if file.OwnerID != callerID {
		return apperrors.NotFound("file not found")
	}

	grant, err := s.shares.FindActiveFileGrant(fileID, granteeID)
	if err != nil {
		if isNotFound(err) {
			return apperrors.NotFound("no active share for this user")
		}
		return apperrors.Internal("failed to look up grant", err)
	}

	grant.Active = false
	if err := s.shares.SaveFileGrant(grant); err != nil {
		return apperrors.Internal("failed to revoke share", err)
	}

	s.invalidateShareCaches(ctx, fileID, granteeID)
	s.publishShareEvent(ctx, events.FileUnshared, events.ResourceTypeFile, fileID, callerID, granteeID, "")

	return nil
}

func (s *ShareService) displayName(userID uuid.UUID) string {
	user, err := s.users.FindByID(userID)
	if err != nil {
		return ""
	}
	return user.Username
}

func (s *ShareService) invalidateShareCaches(ctx context.Context, resourceID, granteeID uuid.UUID) {
	if s.cache == nil {
		return
	}
	err := s.cache.Remove(ctx, redis.SharedWithMeKey(granteeID), redis.SharesOfKey(resourceID))
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to invalidate share caches")
	}
}

func (s *ShareService) publishShareEvent(ctx context.Context, eventType, resourceType string, resourceID, grantorID, granteeID uuid.UUID, permission string) {
	if s.producer == nil {
		return
	}
	event := events.NewShareEvent(eventType, resourceType, resourceID, grantorID, granteeID, permission)
	if err := s.producer.PublishShareEvent(ctx, event); err != nil {
		s.log.Warn().Err(err).Str("event", eventType).Msg("failed to publish share event")
	}
}
