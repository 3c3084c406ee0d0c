package services

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"filevault/internal/apperrors"
	"filevault/internal/blobstore"
	"filevault/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFileFixture(t *testing.T) (*fixture, *FileService) {
	t.Helper()
	f := newFixture(t)
	blobs, err := blobstore.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	return f, NewFileService(f.files, f.folders, f.access, blobs, nil, zerolog.Nop())
}

func TestUploadDownloadRoundtrip(t *testing.T) {
	f, svc := newFileFixture(t)
	owner := f.createUser(t, "alice")
	folder := f.createFolder(t, owner, "docs", nil)

	content := "quarterly numbers"
	file, err := svc.Upload(context.Background(), owner.ID, &folder.ID, "report.txt", "text/plain", int64(len(content)), strings.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, owner.ID, file.OwnerID)
	assert.NotEmpty(t, file.BlobKey)

	got, rc, err := svc.Download(context.Background(), file.ID, owner.ID)
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, content, string(data))
	assert.Equal(t, "report.txt", got.Name)
}

func TestUploadRejectsEmptyName(t *testing.T) {
	f, svc := newFileFixture(t)
	owner := f.createUser(t, "alice")

	_, err := svc.Upload(context.Background(), owner.ID, nil, "  ", "text/plain", 0, strings.NewReader(""))
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestUploadIntoSharedFolderNeedsWrite(t *testing.T) {
	f, svc := newFileFixture(t)
	owner := f.createUser(t, "alice")
	grantee := f.createUser(t, "bob")
	stranger := f.createUser(t, "carol")
	folder := f.createFolder(t, owner, "docs", nil)

	_, err := f.share.ShareFolder(context.Background(), folder.ID, owner.ID, grantee.ID, models.PermissionRead, nil, "")
	require.NoError(t, err)

	// Read-level grantee can see the folder but cannot upload into it, and
	// the rejected attempt does not count as an access.
	_, err = svc.Upload(context.Background(), grantee.ID, &folder.ID, "a.txt", "text/plain", 1, strings.NewReader("a"))
	assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))

	grant, err := f.shares.FindActiveFolderGrant(folder.ID, grantee.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), grant.AccessCount)

	// No grant: the folder is invisible.
	_, err = svc.Upload(context.Background(), stranger.ID, &folder.ID, "a.txt", "text/plain", 1, strings.NewReader("a"))
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))

	_, err = f.share.ShareFolder(context.Background(), folder.ID, owner.ID, grantee.ID, models.PermissionWrite, nil, "")
	require.NoError(t, err)

	file, err := svc.Upload(context.Background(), grantee.ID, &folder.ID, "a.txt", "text/plain", 1, strings.NewReader("a"))
	require.NoError(t, err)
	// The uploader owns the file even inside someone else's folder.
	assert.Equal(t, grantee.ID, file.OwnerID)
}

func TestDownloadRequiresVisibility(t *testing.T) {
	f, svc := newFileFixture(t)
	owner := f.createUser(t, "alice")
	stranger := f.createUser(t, "bob")

	file, err := svc.Upload(context.Background(), owner.ID, nil, "secret.txt", "text/plain", 6, strings.NewReader("secret"))
	require.NoError(t, err)

	_, _, err = svc.Download(context.Background(), file.ID, stranger.ID)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestDownloadViaFileGrant(t *testing.T) {
	f, svc := newFileFixture(t)
	owner := f.createUser(t, "alice")
	grantee := f.createUser(t, "bob")

	file, err := svc.Upload(context.Background(), owner.ID, nil, "report.txt", "text/plain", 4, strings.NewReader("data"))
	require.NoError(t, err)

	_, err = f.share.ShareFile(context.Background(), file.ID, owner.ID, grantee.ID)
	require.NoError(t, err)

	_, rc, err := svc.Download(context.Background(), file.ID, grantee.ID)
	require.NoError(t, err)
	rc.Close()
}

func TestDownloadViaContainingFolderGrant(t *testing.T) {
	f, svc := newFileFixture(t)
	owner := f.createUser(t, "alice")
	grantee := f.createUser(t, "bob")
	folder := f.createFolder(t, owner, "docs", nil)

	file, err := svc.Upload(context.Background(), owner.ID, &folder.ID, "report.txt", "text/plain", 4, strings.NewReader("data"))
	require.NoError(t, err)

	// No direct file grant; the folder grant covers its files.
	_, err = f.share.ShareFolder(context.Background(), folder.ID, owner.ID, grantee.ID, models.PermissionRead, nil, "")
	require.NoError(t, err)

	_, rc, err := svc.Download(context.Background(), file.ID, grantee.ID)
	require.NoError(t, err)
	rc.Close()
}

func TestPublicFileRespectsExpiry(t *testing.T) {
	f, svc := newFileFixture(t)
	owner := f.createUser(t, "alice")
	stranger := f.createUser(t, "bob")

	file, err := svc.Upload(context.Background(), owner.ID, nil, "flyer.pdf", "application/pdf", 4, strings.NewReader("data"))
	require.NoError(t, err)

	future := time.Now().Add(time.Hour)
	file.Public = true
	file.ExpiresAt = &future
	require.NoError(t, f.files.Save(file))

	_, rc, err := svc.Download(context.Background(), file.ID, stranger.ID)
	require.NoError(t, err)
	rc.Close()

	past := time.Now().Add(-time.Hour)
	file.ExpiresAt = &past
	require.NoError(t, f.files.Save(file))

	_, _, err = svc.Download(context.Background(), file.ID, stranger.ID)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestDeleteFileOwnerOnly(t *testing.T) {
	f, svc := newFileFixture(t)
	owner := f.createUser(t, "alice")
	stranger := f.createUser(t, "bob")

	file, err := svc.Upload(context.Background(), owner.ID, nil, "report.txt", "text/plain", 4, strings.NewReader("data"))
	require.NoError(t, err)

	err = svc.Delete(context.Background(), file.ID, stranger.ID)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))

	require.NoError(t, svc.Delete(context.Background(), file.ID, owner.ID))

	_, _, err = svc.Download(context.Background(), file.ID, owner.ID)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestListFolderFilesVisibility(t *testing.T) {
	f, svc := newFileFixture(t)
	owner := f.createUser(t, "alice")
	grantee := f.createUser(t, "bob")
	folder := f.createFolder(t, owner, "docs", nil)

	_, err := svc.Upload(context.Background(), owner.ID, &folder.ID, "a.txt", "text/plain", 1, strings.NewReader("a"))
	require.NoError(t, err)
	_, err = svc.Upload(context.Background(), owner.ID, &folder.ID, "b.txt", "text/plain", 1, strings.NewReader("b"))
	require.NoError(t, err)

	_, err = svc.ListFolderFiles(context.Background(), folder.ID, grantee.ID)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))

	_, err = f.share.ShareFolder(context.Background(), folder.ID, owner.ID, grantee.ID, models.PermissionRead, nil, "")
	require.NoError(t, err)

	files, err := svc.ListFolderFiles(context.Background(), folder.ID, grantee.ID)
	require.NoError(t, err)
	assert.Len(t, files, 2)
}
