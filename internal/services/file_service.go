package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"filevault/internal/apperrors"
	"filevault/internal/blobstore"
	"filevault/internal/events"
	"filevault/internal/kafka"
	"filevault/internal/models"
	"filevault/internal/repositories"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// FileService manages file metadata rows and their bytes in the blob store.
type FileService struct {
	files    repositories.FileRepository
	folders  repositories.FolderRepository
	access   *AccessService
	blobs    blobstore.Store
	producer *kafka.Producer
	log      zerolog.Logger
}

func NewFileService(
	files repositories.FileRepository,
	folders repositories.FolderRepository,
	access *AccessService,
	blobs blobstore.Store,
	producer *kafka.Producer,
	log zerolog.Logger,
) *FileService {
	return &FileService{
		files:    files,
		folders:  folders,
		access:   access,
		blobs:    blobs,
		producer: producer,
		log:      log,
	}
}

// Upload stores the content under a fresh blob key and records the metadata
// row. Uploading into a folder requires ownership or a Write-level grant on
// it; the uploader becomes the file's owner either way.
func (s *FileService) Upload(ctx context.Context, uploaderID uuid.UUID, folderID *uuid.UUID, name, contentType string, size int64, r io.Reader) (*models.FileEntry, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.Validation("file name must not be empty")
	}

	if folderID != nil {
		folder, err := s.folders.FindByID(*folderID)
		if err != nil {
			if isNotFound(err) {
				return nil, apperrors.NotFound("folder not found")
			}
			return nil, apperrors.Internal("failed to look up folder", err)
		}
		if folder.OwnerID != uploaderID && !s.access.CanAccessFolder(*folderID, uploaderID, models.PermissionWrite) {
			if s.access.CanViewFolder(*folderID, uploaderID) {
				return nil, apperrors.Forbidden("write access required to upload into this folder")
			}
			return nil, apperrors.NotFound("folder not found")
		}
	}

	blobKey := uuid.New().String()
	if err := s.blobs.Put(ctx, blobKey, r); err != nil {
		return nil, apperrors.Internal("failed to store file content", err)
	}

	now := time.Now()
	file := &models.FileEntry{
		Name:         name,
		ContentType:  contentType,
		Size:         size,
		OwnerID:      uploaderID,
		FolderID:     folderID,
		BlobKey:      blobKey,
		UploadedAt:   now,
		LastModified: now,
	}
	if err := s.files.Create(file); err != nil {
		// Orphaned blob; remove it so the store does not leak.
		if delErr := s.blobs.Delete(ctx, blobKey); delErr != nil {
			s.log.Warn().Err(delErr).Str("key", blobKey).Msg("failed to clean up blob after metadata failure")
		}
		return nil, apperrors.Internal("failed to create file record", err)
	}

	s.publishFileEvent(ctx, events.FileUploaded, file, uploaderID)
	return file, nil
}

// Download returns the file and a reader over its content. Access is
// granted to the owner, to anyone while the file is public and unexpired,
// to holders of a Read-level file grant, and to holders of a Read-level
// grant on the containing folder.
func (s *FileService) Download(ctx context.Context, fileID, userID uuid.UUID) (*models.FileEntry, io.ReadCloser, error) {
	file, err := s.files.FindByID(fileID)
	if err != nil {
		if isNotFound(err) {
			return nil, nil, apperrors.NotFound("file not found")
		}
		return nil, nil, apperrors.Internal("failed to look up file", err)
	}

	if !s.canRead(file, userID) {
		return nil, nil, apperrors.NotFound("file not found")
	}

	rc, err := s.blobs.Get(ctx, file.BlobKey)
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return nil, nil, apperrors.NotFound("file content not found")
		}
		return nil, nil, apperrors.Internal("failed to read file content", err)
	}

	return file, rc, nil
}

// Delete soft-deletes the metadata row and removes the blob. Owner only.
func (s *FileService) Delete(ctx context.Context, fileID, callerID uuid.UUID) error {
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

	if err := s.files.SoftDelete(file, time.Now()); err != nil {
		return apperrors.Internal("failed to delete file", err)
	}

	if err := s.blobs.Delete(ctx, file.BlobKey); err != nil {
		s.log.Warn().Err(err).Str("key", file.BlobKey).Msg("failed to delete blob for removed file")
	}

	s.publishFileEvent(ctx, events.FileDeleted, file, callerID)
	return nil
}

// ListFolderFiles returns the files of a folder visible to the caller.
func (s *FileService) ListFolderFiles(ctx context.Context, folderID, callerID uuid.UUID) ([]models.FileEntry, error) {
	folder, err := s.folders.FindByID(folderID)
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.NotFound("folder not found")
		}
		return nil, apperrors.Internal("failed to look up folder", err)
	}
	if folder.OwnerID != callerID && !s.access.CanAccessFolder(folderID, callerID, models.PermissionRead) {
		return nil, apperrors.NotFound("folder not found")
	}

	files, err := s.files.ListByFolder(folderID)
	if err != nil {
		return nil, apperrors.Internal("failed to list files", err)
	}
	return files, nil
}

func (s *FileService) canRead(file *models.FileEntry, userID uuid.UUID) bool {
	if file.OwnerID == userID {
		return true
	}
	if file.Public && (file.ExpiresAt == nil || time.Now().Before(*file.ExpiresAt)) {
		return true
	}
	if s.access.CanAccessFile(file.ID, userID, models.PermissionRead) {
		return true
	}
	// A grant on the containing folder covers its files too.
	if file.FolderID != nil && s.access.CanAccessFolder(*file.FolderID, userID, models.PermissionRead) {
		return true
	}
	return false
}

func (s *FileService) publishFileEvent(ctx context.Context, eventType string, file *models.FileEntry, actionBy uuid.UUID) {
	if s.producer == nil {
		return
	}
	event := events.NewFileEvent(eventType, events.ResourceTypeFile, file.ID, file.OwnerID, actionBy)
	if err := s.producer.PublishFileEvent(ctx, event); err != nil {
		s.log.Warn().Err(err).Str("event", eventType).Msg("failed to publish file event")
	}
}
