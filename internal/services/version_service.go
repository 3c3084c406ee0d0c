package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"filevault/internal/apperrors"
	"filevault/internal/events"
	"filevault/internal/kafka"
	"filevault/internal/models"
	"filevault/internal/repositories"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const firstVersionNumber = "1.0"

// VersionService creates and reads immutable version records. Numbers are
// "major.minor" strings starting at "1.0"; each new version bumps the minor
// by one, so numbers per resource are strictly increasing in creation order.
type VersionService struct {
	folders  repositories.FolderRepository
	files    repositories.FileRepository
	versions repositories.VersionRepository
	access   *AccessService
	producer *kafka.Producer
	log      zerolog.Logger
}

func NewVersionService(
	folders repositories.FolderRepository,
	files repositories.FileRepository,
	versions repositories.VersionRepository,
	access *AccessService,
	producer *kafka.Producer,
	log zerolog.Logger,
) *VersionService {
	return &VersionService{
		folders:  folders,
		files:    files,
		versions: versions,
		access:   access,
		producer: producer,
		log:      log,
	}
}

// nextVersionNumber bumps the minor component of a "major.minor" string.
// A malformed stored number is surfaced rather than normalized: silently
// repairing it could mint a duplicate of an existing immutable version.
func nextVersionNumber(current string) (string, error) {
	majorStr, minorStr, ok := strings.Cut(current, ".")
	if !ok {
		return "", apperrors.Validation("malformed version number %q", current)
	}
	major, err := strconv.Atoi(majorStr)
	if err != nil {
		return "", apperrors.Validation("malformed version number %q", current)
	}
	minor, err := strconv.Atoi(minorStr)
	if err != nil {
		return "", apperrors.Validation("malformed version number %q", current)
	}
	return fmt.Sprintf("%d.%d", major, minor+1), nil
}

// NextFileVersionNumber returns the number the next version of the file
// will carry: "1.0" for the first, else the latest with minor+1.
func (s *VersionService) NextFileVersionNumber(fileID uuid.UUID) (string, error) {
	latest, err := s.versions.LatestFileVersion(fileID)
	if err != nil {
		if isNotFound(err) {
			return firstVersionNumber, nil
		}
		return "", apperrors.Internal("failed to look up latest version", err)
	}
	return nextVersionNumber(latest.VersionNumber)
}

// NextFolderVersionNumber is the folder counterpart of NextFileVersionNumber.
func (s *VersionService) NextFolderVersionNumber(folderID uuid.UUID) (string, error) {
	latest, err := s.versions.LatestFolderVersion(folderID)
	if err != nil {
		if isNotFound(err) {
			return firstVersionNumber, nil
		}
		return "", apperrors.Internal("failed to look up latest version", err)
	}
	return nextVersionNumber(latest.VersionNumber)
}

// CreateFileVersion snapshots the file's current blob key and size under the
// next version number. Versions are immutable once written.
func (s *VersionService) CreateFileVersion(ctx context.Context, fileID, creatorID uuid.UUID, notes string) (*models.FileVersion, error) {
	file, err := s.files.FindByID(fileID)
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.NotFound("file not found")
		}
		return nil, apperrors.Internal("failed to look up file", err)
	}

	if err := s.authorizeFileWrite(file, creatorID); err != nil {
		return nil, err
	}

	number, err := s.NextFileVersionNumber(fileID)
	if err != nil {
		return nil, err
	}

	version := &models.FileVersion{
		FileID:        fileID,
		VersionNumber: number,
		BlobKey:       file.BlobKey,
		Size:          file.Size,
		CreatedByID:   creatorID,
		Notes:         notes,
	}
	if err := s.versions.CreateFileVersion(version); err != nil {
		return nil, apperrors.Internal("failed to create version", err)
	}

	s.publishVersionEvent(ctx, events.ResourceTypeFile, fileID, file.OwnerID, creatorID)
	return version, nil
}

// CreateFolderVersion records the folder's structural hash under the next
// version number.
func (s *VersionService) CreateFolderVersion(ctx context.Context, folderID, creatorID uuid.UUID, notes string) (*models.FolderVersion, error) {
	folder, err := s.folders.FindByID(folderID)
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.NotFound("folder not found")
		}
		return nil, apperrors.Internal("failed to look up folder", err)
	}

	if err := s.authorizeFolderWrite(folder, creatorID); err != nil {
		return nil, err
	}

	number, err := s.NextFolderVersionNumber(folderID)
	if err != nil {
		return nil, err
	}

	hash, err := s.StructuralHash(folderID)
	if err != nil {
		return nil, err
	}

	version := &models.FolderVersion{
		FolderID:      folderID,
		VersionNumber: number,
		StructureHash: hash,
		CreatedByID:   creatorID,
		Notes:         notes,
	}
	if err := s.versions.CreateFolderVersion(version); err != nil {
		return nil, apperrors.Internal("failed to create version", err)
	}

	s.publishVersionEvent(ctx, events.ResourceTypeFolder, folderID, folder.OwnerID, creatorID)
	return version, nil
}

// StructuralHash digests the subtree's shape and content metadata: the
// folder name, its direct file and subfolder counts, each direct file's
// (name, size, mtime), then each subfolder's own hash, recursively. It is a
// pure function of structure, never of folder identity, so two folders with
// identical structure hash identically. The hash changes iff any
// descendant's name/size/mtime or the shape of the tree changes.
func (s *VersionService) StructuralHash(folderID uuid.UUID) (string, error) {
	signature, err := s.structuralSignature(folderID)
	if err != nil {
		return "", err
	}
	return hashSignature(signature), nil
}

func (s *VersionService) structuralSignature(folderID uuid.UUID) (string, error) {
	folder, err := s.folders.FindByID(folderID)
	if err != nil {
		if isNotFound(err) {
			return "", apperrors.NotFound("folder not found")
		}
		return "", apperrors.Internal("failed to look up folder", err)
	}

	files, err := s.files.ListByFolder(folderID)
	if err != nil {
		return "", apperrors.Internal("failed to list files", err)
	}
	children, err := s.folders.ListChildren(folderID)
	if err != nil {
		return "", apperrors.Internal("failed to list subfolders", err)
	}

	var b strings.Builder
	b.WriteString(folder.Name)
	fmt.Fprintf(&b, "|%d|%d", len(files), len(children))
	for _, file := range files {
		fmt.Fprintf(&b, "|%s:%d:%d", file.Name, file.Size, file.LastModified.UTC().Unix())
	}
	for _, child := range children {
		childSig, err := s.structuralSignature(child.ID)
		if err != nil {
			return "", err
		}
		b.WriteString("|")
		b.WriteString(hashSignature(childSig))
	}

	return b.String(), nil
}

func hashSignature(signature string) string {
	sum := sha256.Sum256([]byte(signature))
	return hex.EncodeToString(sum[:])
}

// ListFileVersions returns the file's versions, newest first.
func (s *VersionService) ListFileVersions(ctx context.Context, fileID, callerID uuid.UUID) ([]models.FileVersion, error) {
	file, err := s.files.FindByID(fileID)
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.NotFound("file not found")
		}
		return nil, apperrors.Internal("failed to look up file", err)
	}
	if err := s.authorizeFileRead(file, callerID); err != nil {
		return nil, err
	}

	versions, err := s.versions.ListFileVersions(fileID)
	if err != nil {
		return nil, apperrors.Internal("failed to list versions", err)
	}
	return versions, nil
}

// ListFolderVersions returns the folder's versions, newest first.
func (s *VersionService) ListFolderVersions(ctx context.Context, folderID, callerID uuid.UUID) ([]models.FolderVersion, error) {
	folder, err := s.folders.FindByID(folderID)
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.NotFound("folder not found")
		}
		return nil, apperrors.Internal("failed to look up folder", err)
	}
	if err := s.authorizeFolderRead(folder, callerID); err != nil {
		return nil, err
	}

	versions, err := s.versions.ListFolderVersions(folderID)
	if err != nil {
		return nil, apperrors.Internal("failed to list versions", err)
	}
	return versions, nil
}

// GetFileVersion looks up one version by number.
func (s *VersionService) GetFileVersion(ctx context.Context, fileID, callerID uuid.UUID, number string) (*models.FileVersion, error) {
	file, err := s.files.FindByID(fileID)
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.NotFound("file not found")
		}
		return nil, apperrors.Internal("failed to look up file", err)
	}
	if err := s.authorizeFileRead(file, callerID); err != nil {
		return nil, err
	}

	version, err := s.versions.GetFileVersion(fileID, number)
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.NotFound("version %s not found", number)
		}
		return nil, apperrors.Internal("failed to look up version", err)
	}
	return version, nil
}

// GetFolderVersion looks up one folder version by number.
func (s *VersionService) GetFolderVersion(ctx context.Context, folderID, callerID uuid.UUID, number string) (*models.FolderVersion, error) {
	folder, err := s.folders.FindByID(folderID)
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.NotFound("folder not found")
		}
		return nil, apperrors.Internal("failed to look up folder", err)
	}
	if err := s.authorizeFolderRead(folder, callerID); err != nil {
		return nil, err
	}

	version, err := s.versions.GetFolderVersion(folderID, number)
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.NotFound("version %s not found", number)
		}
		return nil, apperrors.Internal("failed to look up version", err)
	}
	return version, nil
}

// Callers with a Read-level grant can see the resource exists, so an
// insufficient level yields Forbidden; callers with no grant at all get
// not-found.
func (s *VersionService) authorizeFileWrite(file *models.FileEntry, callerID uuid.UUID) error {
	if file.OwnerID == callerID {
		return nil
	}
	if s.access.CanAccessFile(file.ID, callerID, models.PermissionWrite) {
		return nil
	}
	// Rejected either way from here; the visibility probe must not count
	// as an access.
	if s.access.CanViewFile(file.ID, callerID) {
		return apperrors.Forbidden("write access required to create a version")
	}
	return apperrors.NotFound("file not found")
}

func (s *VersionService) authorizeFolderWrite(folder *models.Folder, callerID uuid.UUID) error {
	if folder.OwnerID == callerID {
		return nil
	}
	if s.access.CanAccessFolder(folder.ID, callerID, models.PermissionWrite) {
		return nil
	}
	if s.access.CanViewFolder(folder.ID, callerID) {
		return apperrors.Forbidden("write access required to create a version")
	}
	return apperrors.NotFound("folder not found")
}

func (s *VersionService) authorizeFileRead(file *models.FileEntry, callerID uuid.UUID) error {
	if file.OwnerID == callerID {
		return nil
	}
	if s.access.CanAccessFile(file.ID, callerID, models.PermissionRead) {
		return nil
	}
	return apperrors.NotFound("file not found")
}

func (s *VersionService) authorizeFolderRead(folder *models.Folder, callerID uuid.UUID) error {
	if folder.OwnerID == callerID {
		return nil
	}
	if s.access.CanAccessFolder(folder.ID, callerID, models.PermissionRead) {
		return nil
	}
	return apperrors.NotFound("folder not found")
}

func (s *VersionService) publishVersionEvent(ctx context.Context, resourceType string, resourceID, ownerID, actionBy uuid.UUID) {
	if s.producer == nil {
		return
	}
	event := events.NewFileEvent(events.VersionCreated, resourceType, resourceID, ownerID, actionBy)
	if err := s.producer.PublishFileEvent(ctx, event); err != nil {
		s.log.Warn().Err(err).Msg("failed to publish version event")
	}
}
