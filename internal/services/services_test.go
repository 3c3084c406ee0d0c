package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"filevault/internal/database"
	"filevault/internal/models"
	"filevault/internal/repositories"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// fakeCache is a map-backed Cache so tests can assert on invalidation
// without a redis instance.
type fakeCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	removed []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: map[string][]byte{}}
}

func (c *fakeCache) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *fakeCache) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = raw
	return nil
}

func (c *fakeCache) Remove(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		delete(c.data, key)
		c.removed = append(c.removed, key)
	}
	return nil
}

func (c *fakeCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok
}

// fixture wires the full service stack over an in-memory sqlite database.
// Kafka is left nil; publishing is a no-op in tests.
type fixture struct {
	db       *gorm.DB
	cache    *fakeCache
	users    repositories.UserRepository
	folders  repositories.FolderRepository
	files    repositories.FileRepository
	shares   repositories.ShareRepository
	versions repositories.VersionRepository

	access  *AccessService
	folder  *FolderService
	share   *ShareService
	version *VersionService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	cache := newFakeCache()
	users := repositories.NewUserRepository(db)
	folders := repositories.NewFolderRepository(db)
	files := repositories.NewFileRepository(db)
	shares := repositories.NewShareRepository(db)
	versions := repositories.NewVersionRepository(db)

	log := zerolog.Nop()
	access := NewAccessService(folders, files, shares, log)

	return &fixture{
		db:       db,
		cache:    cache,
		users:    users,
		folders:  folders,
		files:    files,
		shares:   shares,
		versions: versions,
		access:   access,
		folder:   NewFolderService(db, folders, files, shares, cache, nil, log),
		share:    NewShareService(db, folders, files, users, shares, cache, nil, log),
		version:  NewVersionService(folders, files, versions, access, nil, log),
	}
}

func (f *fixture) createUser(t *testing.T, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		Active:       true,
	}
	require.NoError(t, f.users.Create(user))
	return user
}

func (f *fixture) createFolder(t *testing.T, owner *models.User, name string, parent *models.Folder) *models.Folder {
	t.Helper()
	var parentID *uuid.UUID
	if parent != nil {
		parentID = &parent.ID
	}
	folder, err := f.folder.Create(context.Background(), owner.ID, name, parentID)
	require.NoError(t, err)
	return folder
}

func (f *fixture) createFile(t *testing.T, owner *models.User, folder *models.Folder, name string, size int64, modified time.Time) *models.FileEntry {
	t.Helper()
	var folderID *uuid.UUID
	if folder != nil {
		folderID = &folder.ID
	}
	file := &models.FileEntry{
		Name:         name,
		ContentType:  "text/plain",
		Size:         size,
		OwnerID:      owner.ID,
		FolderID:     folderID,
		BlobKey:      uuid.New().String(),
		UploadedAt:   modified,
		LastModified: modified,
	}
	require.NoError(t, f.files.Create(file))
	return file
}
