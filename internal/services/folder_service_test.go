package services

import (
	"context"
	"testing"
	"time"

	"filevault/internal/apperrors"
	"filevault/internal/models"
	"filevault/internal/redis"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCreateFolderRejectsEmptyName(t *testing.T) {
	f := newFixture(t)
	owner := f.createUser(t, "alice")

	_, err := f.folder.Create(context.Background(), owner.ID, "   ", nil)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestCreateFolderRejectsUnknownParent(t *testing.T) {
	f := newFixture(t)
	owner := f.createUser(t, "alice")
	other := f.createUser(t, "bob")
	foreign := f.createFolder(t, other, "theirs", nil)

	// A parent owned by someone else is indistinguishable from a missing one.
	_, err := f.folder.Create(context.Background(), owner.ID, "mine", &foreign.ID)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestNewFolderHasNoUpdatedAt(t *testing.T) {
	f := newFixture(t)
	owner := f.createUser(t, "alice")
	folder := f.createFolder(t, owner, "docs", nil)

	assert.Nil(t, folder.UpdatedAt)
}

func TestRenameFolder(t *testing.T) {
	f := newFixture(t)
	owner := f.createUser(t, "alice")
	stranger := f.createUser(t, "bob")
	folder := f.createFolder(t, owner, "docs", nil)

	renamed, err := f.folder.Rename(context.Background(), folder.ID, owner.ID, "documents")
	require.NoError(t, err)
	assert.Equal(t, "documents", renamed.Name)
	assert.NotNil(t, renamed.UpdatedAt)

	_, err = f.folder.Rename(context.Background(), folder.ID, stranger.ID, "hijacked")
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestMoveFolder(t *testing.T) {
	f := newFixture(t)
	owner := f.createUser(t, "alice")
	a := f.createFolder(t, owner, "a", nil)
	b := f.createFolder(t, owner, "b", nil)

	moved, err := f.folder.Move(context.Background(), b.ID, owner.ID, &a.ID)
	require.NoError(t, err)
	require.NotNil(t, moved.ParentID)
	assert.Equal(t, a.ID, *moved.ParentID)

	// Back to root.
	moved, err = f.folder.Move(context.Background(), b.ID, owner.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, moved.ParentID)
}

func TestMoveFolderRejectsCycles(t *testing.T) {
	f := newFixture(t)
	owner := f.createUser(t, "alice")
	a := f.createFolder(t, owner, "a", nil)
	b := f.createFolder(t, owner, "b", a)
	c := f.createFolder(t, owner, "c", b)

	// Into itself.
	_, err := f.folder.Move(context.Background(), a.ID, owner.ID, &a.ID)
	assert.Equal(t, apperrors.KindInvalidOperation, apperrors.KindOf(err))

	// Into a direct child.
	_, err = f.folder.Move(context.Background(), a.ID, owner.ID, &b.ID)
	assert.Equal(t, apperrors.KindInvalidOperation, apperrors.KindOf(err))

	// Into a deeper descendant.
	_, err = f.folder.Move(context.Background(), a.ID, owner.ID, &c.ID)
	assert.Equal(t, apperrors.KindInvalidOperation, apperrors.KindOf(err))

	// Nothing was written along the way.
	reloaded, err := f.folders.FindByID(a.ID)
	require.NoError(t, err)
	assert.Nil(t, reloaded.ParentID)

	// A legal reshuffle still works: c out from under b.
	_, err = f.folder.Move(context.Background(), c.ID, owner.ID, &a.ID)
	assert.NoError(t, err)
}

func TestDeleteFolderCascades(t *testing.T) {
	f := newFixture(t)
	owner := f.createUser(t, "alice")
	grantee := f.createUser(t, "bob")

	root := f.createFolder(t, owner, "root", nil)
	child := f.createFolder(t, owner, "child", root)
	grandchild := f.createFolder(t, owner, "grandchild", child)
	file := f.createFile(t, owner, child, "notes.txt", 5, time.Now())

	_, err := f.share.ShareFolder(context.Background(), child.ID, owner.ID, grantee.ID, models.PermissionRead, nil, "")
	require.NoError(t, err)

	require.NoError(t, f.folder.Delete(context.Background(), root.ID, owner.ID))

	for _, id := range []struct {
		name string
		find func() error
	}{
		{"root", func() error { _, err := f.folders.FindByID(root.ID); return err }},
		{"child", func() error { _, err := f.folders.FindByID(child.ID); return err }},
		{"grandchild", func() error { _, err := f.folders.FindByID(grandchild.ID); return err }},
		{"file", func() error { _, err := f.files.FindByID(file.ID); return err }},
	} {
		assert.ErrorIs(t, id.find(), gorm.ErrRecordNotFound, id.name)
	}

	// The grant on the deleted subtree is deactivated, not erased.
	_, err = f.shares.FindActiveFolderGrant(child.ID, grantee.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var audit []models.SharedFolder
	require.NoError(t, f.db.Where("folder_id = ?", child.ID).Find(&audit).Error)
	require.Len(t, audit, 1)
	assert.False(t, audit[0].Active)
}

func TestDeleteFolderUnknownID(t *testing.T) {
	f := newFixture(t)
	owner := f.createUser(t, "alice")
	other := f.createUser(t, "bob")
	folder := f.createFolder(t, other, "theirs", nil)

	err := f.folder.Delete(context.Background(), folder.ID, owner.ID)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestListFoldersCountsAndCaching(t *testing.T) {
	f := newFixture(t)
	owner := f.createUser(t, "alice")
	docs := f.createFolder(t, owner, "docs", nil)
	f.createFolder(t, owner, "sub", docs)
	f.createFile(t, owner, docs, "a.txt", 1, time.Now())
	f.createFile(t, owner, docs, "b.txt", 2, time.Now())

	infos, err := f.folder.List(context.Background(), owner.ID, nil)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "docs", infos[0].Name)
	assert.Equal(t, int64(2), infos[0].FileCount)
	assert.Equal(t, int64(1), infos[0].SubfolderCount)

	// The listing is cached now and served as-is even if the table changes
	// underneath.
	key := redis.FolderListingKey(owner.ID, nil)
	require.True(t, f.cache.has(key))
	f.createFolder(t, owner, "zzz", docs) // child listing, does not touch the root key

	cachedInfos, err := f.folder.List(context.Background(), owner.ID, nil)
	require.NoError(t, err)
	require.Len(t, cachedInfos, 1)
	assert.Equal(t, infos[0].ID, cachedInfos[0].ID)
	assert.Equal(t, infos[0].SubfolderCount, cachedInfos[0].SubfolderCount)
}

func TestMutationsInvalidateListingCache(t *testing.T) {
	f := newFixture(t)
	owner := f.createUser(t, "alice")
	folder := f.createFolder(t, owner, "docs", nil)

	key := redis.FolderListingKey(owner.ID, nil)
	_, err := f.folder.List(context.Background(), owner.ID, nil)
	require.NoError(t, err)
	require.True(t, f.cache.has(key))

	_, err = f.folder.Rename(context.Background(), folder.ID, owner.ID, "documents")
	require.NoError(t, err)
	assert.False(t, f.cache.has(key))

	// Repopulate, then delete must clear it again.
	_, err = f.folder.List(context.Background(), owner.ID, nil)
	require.NoError(t, err)
	require.True(t, f.cache.has(key))

	require.NoError(t, f.folder.Delete(context.Background(), folder.ID, owner.ID))
	assert.False(t, f.cache.has(key))
}
