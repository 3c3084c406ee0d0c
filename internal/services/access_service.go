package services

import (
	"time"

	"filevault/internal/models"
	"filevault/internal/repositories"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// AccessService decides ALLOW/DENY for a (resource, principal, required
// permission) triple. Owners always pass. Everyone else needs a live,
// unexpired grant whose permission level satisfies the requirement.
//
// The check is fail-closed: any unexpected error during evaluation is logged
// and reported as DENY. Callers only ever observe the boolean.
type AccessService struct {
	folders repositories.FolderRepository
	files   repositories.FileRepository
	shares  repositories.ShareRepository
	log     zerolog.Logger
}

func NewAccessService(
	folders repositories.FolderRepository,
	files repositories.FileRepository,
	shares repositories.ShareRepository,
	log zerolog.Logger,
) *AccessService {
	return &AccessService{folders: folders, files: files, shares: shares, log: log}
}

// CanAccessFolder checks whether userID may perform a required-level action
// on the folder. An ALLOW through a grant bumps the grant's access telemetry
// immediately; the owner path records nothing.
func (s *AccessService) CanAccessFolder(folderID, userID uuid.UUID, required models.Permission) bool {
	folder, err := s.folders.FindByID(folderID)
	if err != nil {
		if !isNotFound(err) {
			s.log.Error().Err(err).Str("folder", folderID.String()).Msg("access check failed, denying")
		}
		return false
	}

	if folder.OwnerID == userID {
		return true
	}

	grant, err := s.shares.FindActiveFolderGrant(folderID, userID)
	if err != nil {
		if !isNotFound(err) {
			s.log.Error().Err(err).Str("folder", folderID.String()).Msg("grant lookup failed, denying")
		}
		return false
	}

	if grantExpired(grant.ExpiresAt) {
		return false
	}
	if !grant.Permission.Satisfies(required) {
		return false
	}

	now := time.Now()
	grant.AccessCount++
	grant.LastAccessedByID = &userID
	grant.LastAccessedAt = &now
	if err := s.shares.SaveFolderGrant(grant); err != nil {
		s.log.Error().Err(err).Str("grant", grant.ID.String()).Msg("telemetry update failed, denying")
		return false
	}

	return true
}

// CanAccessFile is the file counterpart of CanAccessFolder. It looks only at
// direct file grants; containing-folder fallback lives in FileService.
func (s *AccessService) CanAccessFile(fileID, userID uuid.UUID, required models.Permission) bool {
	file, err := s.files.FindByID(fileID)
	if err != nil {
		if !isNotFound(err) {
			s.log.Error().Err(err).Str("file", fileID.String()).Msg("access check failed, denying")
		}
		return false
	}

	if file.OwnerID == userID {
		return true
	}

	grant, err := s.shares.FindActiveFileGrant(fileID, userID)
	if err != nil {
		if !isNotFound(err) {
			s.log.Error().Err(err).Str("file", fileID.String()).Msg("grant lookup failed, denying")
		}
		return false
	}

	if grantExpired(grant.ExpiresAt) {
		return false
	}
	if !grant.Permission.Satisfies(required) {
		return false
	}

	now := time.Now()
	grant.AccessCount++
	grant.LastAccessedByID = &userID
	grant.LastAccessedAt = &now
	if err := s.shares.SaveFileGrant(grant); err != nil {
		s.log.Error().Err(err).Str("grant", grant.ID.String()).Msg("telemetry update failed, denying")
		return false
	}

	return true
}

// CanViewFolder reports whether the folder is visible to userID at all:
// owner, or holder of any live grant. Unlike CanAccessFolder it records no
// telemetry, so callers rejecting an operation can use it to pick between
// Forbidden and NotFound without counting an access.
func (s *AccessService) CanViewFolder(folderID, userID uuid.UUID) bool {
	folder, err := s.folders.FindByID(folderID)
	if err != nil {
		if !isNotFound(err) {
			s.log.Error().Err(err).Str("folder", folderID.String()).Msg("visibility check failed, denying")
		}
		return false
	}

	if folder.OwnerID == userID {
		return true
	}

	grant, err := s.shares.FindActiveFolderGrant(folderID, userID)
	if err != nil {
		if !isNotFound(err) {
			s.log.Error().Err(err).Str("folder", folderID.String()).Msg("grant lookup failed, denying")
		}
		return false
	}

	return !grantExpired(grant.ExpiresAt)
}

// CanViewFile is the file counterpart of CanViewFolder.
func (s *AccessService) CanViewFile(fileID, userID uuid.UUID) bool {
	file, err := s.files.FindByID(fileID)
	if err != nil {
		if !isNotFound(err) {
			s.log.Error().Err(err).Str("file", fileID.String()).Msg("visibility check failed, denying")
		}
		return false
	}

	if file.OwnerID == userID {
		return true
	}

	grant, err := s.shares.FindActiveFileGrant(fileID, userID)
	if err != nil {
		if !isNotFound(err) {
			s.log.Error().Err(err).Str("file", fileID.String()).Msg("grant lookup failed, denying")
		}
		return false
	}

	return !grantExpired(grant.ExpiresAt)
}

// Expired grants are not auto-revoked; they stay visible in listings and
// simply fail future checks.
func grantExpired(expiresAt *time.Time) bool {
	return expiresAt != nil && time.Now().After(*expiresAt)
}
