package services

import (
	"context"
	"testing"
	"time"

	"filevault/internal/apperrors"
	"filevault/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileVersionNumbersIncrease(t *testing.T) {
	f := newFixture(t)
	owner := f.createUser(t, "alice")
	file := f.createFile(t, owner, nil, "report.txt", 10, time.Now())

	for _, want := range []string{"1.0", "1.1", "1.2"} {
		version, err := f.version.CreateFileVersion(context.Background(), file.ID, owner.ID, "")
		require.NoError(t, err)
		assert.Equal(t, want, version.VersionNumber)
	}

	versions, err := f.version.ListFileVersions(context.Background(), file.ID, owner.ID)
	require.NoError(t, err)
	require.Len(t, versions, 3)
	assert.Equal(t, "1.2", versions[0].VersionNumber)
}

func TestFileVersionSnapshotsCurrentState(t *testing.T) {
	f := newFixture(t)
	owner := f.createUser(t, "alice")
	file := f.createFile(t, owner, nil, "report.txt", 10, time.Now())

	v1, err := f.version.CreateFileVersion(context.Background(), file.ID, owner.ID, "initial")
	require.NoError(t, err)
	assert.Equal(t, int64(10), v1.Size)
	assert.Equal(t, file.BlobKey, v1.BlobKey)
	assert.Equal(t, "initial", v1.Notes)

	file.Size = 25
	require.NoError(t, f.files.Save(file))

	v2, err := f.version.CreateFileVersion(context.Background(), file.ID, owner.ID, "")
	require.NoError(t, err)
	assert.Equal(t, int64(25), v2.Size)

	// The earlier version is untouched.
	got, err := f.version.GetFileVersion(context.Background(), file.ID, owner.ID, "1.0")
	require.NoError(t, err)
	assert.Equal(t, int64(10), got.Size)
}

func TestMalformedStoredVersionNumberIsSurfaced(t *testing.T) {
	f := newFixture(t)
	owner := f.createUser(t, "alice")
	file := f.createFile(t, owner, nil, "report.txt", 10, time.Now())

	require.NoError(t, f.versions.CreateFileVersion(&models.FileVersion{
		FileID:        file.ID,
		VersionNumber: "not-a-version",
		BlobKey:       file.BlobKey,
		Size:          file.Size,
		CreatedByID:   owner.ID,
	}))

	_, err := f.version.CreateFileVersion(context.Background(), file.ID, owner.ID, "")
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestFolderVersionRecordsStructureHash(t *testing.T) {
	f := newFixture(t)
	owner := f.createUser(t, "alice")
	folder := f.createFolder(t, owner, "docs", nil)

	created, err := f.version.CreateFolderVersion(context.Background(), folder.ID, owner.ID, "baseline")
	require.NoError(t, err)
	assert.Equal(t, "1.0", created.VersionNumber)
	assert.Len(t, created.StructureHash, 64)

	got, err := f.version.GetFolderVersion(context.Background(), folder.ID, owner.ID, "1.0")
	require.NoError(t, err)
	assert.Equal(t, created.StructureHash, got.StructureHash)

	_, err = f.version.GetFolderVersion(context.Background(), folder.ID, owner.ID, "2.0")
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestGetFileVersionUnknownNumber(t *testing.T) {
	f := newFixture(t)
	owner := f.createUser(t, "alice")
	file := f.createFile(t, owner, nil, "report.txt", 10, time.Now())

	_, err := f.version.GetFileVersion(context.Background(), file.ID, owner.ID, "9.9")
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestVersionAuthorizationTiers(t *testing.T) {
	f := newFixture(t)
	owner := f.createUser(t, "alice")
	reader := f.createUser(t, "bob")
	stranger := f.createUser(t, "carol")
	folder := f.createFolder(t, owner, "docs", nil)

	_, err := f.version.CreateFolderVersion(context.Background(), folder.ID, owner.ID, "")
	require.NoError(t, err)

	_, err = f.share.ShareFolder(context.Background(), folder.ID, owner.ID, reader.ID, models.PermissionRead, nil, "")
	require.NoError(t, err)

	// Read grant: can list, cannot create.
	_, err = f.version.ListFolderVersions(context.Background(), folder.ID, reader.ID)
	assert.NoError(t, err)
	_, err = f.version.CreateFolderVersion(context.Background(), folder.ID, reader.ID, "")
	assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))

	// No grant at all: the folder does not exist as far as they know.
	_, err = f.version.ListFolderVersions(context.Background(), folder.ID, stranger.ID)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))

	// Write grant: can create.
	_, err = f.share.ShareFolder(context.Background(), folder.ID, owner.ID, reader.ID, models.PermissionWrite, nil, "")
	require.NoError(t, err)
	_, err = f.version.CreateFolderVersion(context.Background(), folder.ID, reader.ID, "")
	assert.NoError(t, err)
}

func TestRejectedVersionCreateDoesNotBumpTelemetry(t *testing.T) {
	f := newFixture(t)
	owner := f.createUser(t, "alice")
	reader := f.createUser(t, "bob")
	folder := f.createFolder(t, owner, "docs", nil)

	_, err := f.share.ShareFolder(context.Background(), folder.ID, owner.ID, reader.ID, models.PermissionRead, nil, "")
	require.NoError(t, err)

	_, err = f.version.CreateFolderVersion(context.Background(), folder.ID, reader.ID, "")
	require.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))

	// The forbidden attempt must not count as an access.
	grant, err := f.shares.FindActiveFolderGrant(folder.ID, reader.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), grant.AccessCount)
	assert.Nil(t, grant.LastAccessedAt)
}

func TestStructuralHashIsPureFunctionOfStructure(t *testing.T) {
	f := newFixture(t)
	alice := f.createUser(t, "alice")
	bob := f.createUser(t, "bob")
	modified := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	build := func(owner *models.User) *models.Folder {
		root := f.createFolder(t, owner, "project", nil)
		sub := f.createFolder(t, owner, "assets", root)
		f.createFile(t, owner, root, "readme.md", 120, modified)
		f.createFile(t, owner, sub, "logo.png", 4096, modified)
		return root
	}

	aliceRoot := build(alice)
	bobRoot := build(bob)

	aliceHash, err := f.version.StructuralHash(aliceRoot.ID)
	require.NoError(t, err)
	bobHash, err := f.version.StructuralHash(bobRoot.ID)
	require.NoError(t, err)

	// Identical structure, different owners and IDs: identical hash.
	assert.Equal(t, aliceHash, bobHash)
	assert.Len(t, aliceHash, 64)
}

func TestStructuralHashTracksChanges(t *testing.T) {
	f := newFixture(t)
	owner := f.createUser(t, "alice")
	modified := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	root := f.createFolder(t, owner, "project", nil)
	file := f.createFile(t, owner, root, "readme.md", 120, modified)

	before, err := f.version.StructuralHash(root.ID)
	require.NoError(t, err)

	file.Size = 121
	require.NoError(t, f.files.Save(file))

	after, err := f.version.StructuralHash(root.ID)
	require.NoError(t, err)
	assert.NotEqual(t, before, after)

	// A new empty subfolder changes the shape too.
	f.createFolder(t, owner, "assets", root)
	withChild, err := f.version.StructuralHash(root.ID)
	require.NoError(t, err)
	assert.NotEqual(t, after, withChild)
}

func TestNextVersionNumberParsing(t *testing.T) {
	next, err := nextVersionNumber("1.0")
	require.NoError(t, err)
	assert.Equal(t, "1.1", next)

	next, err = nextVersionNumber("3.41")
	require.NoError(t, err)
	assert.Equal(t, "3.42", next)

	for _, malformed := range []string{"", "1", "1.x", "a.2"} {
		_, err := nextVersionNumber(malformed)
		assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err), malformed)
	}
}
