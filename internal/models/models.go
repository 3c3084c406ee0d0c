package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Username     string    `gorm:"size:150;not null;unique" json:"username"`
	Email        string    `gorm:"size:255;not null;unique" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Active       bool      `gorm:"default:true" json:"active"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// Folder is a node in a strict per-owner tree. ParentID nil means root.
// Children are always computed by query, never held as a live collection.
type Folder struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	Name        string     `gorm:"size:150;not null" json:"name"`
	OwnerID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"ownerId"`
	ParentID    *uuid.UUID `gorm:"type:uuid;index" json:"parentId,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   *time.Time `gorm:"autoUpdateTime:false" json:"updatedAt,omitempty"`
	IsDeleted   bool       `gorm:"default:false;index" json:"-"`
	DeletedByID *uuid.UUID `gorm:"type:uuid" json:"-"`
	DeletedAt   *time.Time `json:"-"`
}

func (f *Folder) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

// FileEntry holds file metadata only; the bytes live in the blob store
// under BlobKey.
type FileEntry struct {
	ID           uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	Name         string     `gorm:"size:255;not null" json:"name"`
	ContentType  string     `gorm:"size:255" json:"contentType"`
	Size         int64      `gorm:"not null" json:"size"`
	OwnerID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"ownerId"`
	FolderID     *uuid.UUID `gorm:"type:uuid;index" json:"folderId,omitempty"`
	BlobKey      string     `gorm:"size:255;not null" json:"-"`
	UploadedAt   time.Time  `json:"uploadedAt"`
	LastModified time.Time  `json:"lastModified"`
	Public       bool       `gorm:"default:false" json:"public"`
	ExpiresAt    *time.Time `json:"expiresAt,omitempty"`
	IsDeleted    bool       `gorm:"default:false;index" json:"-"`
	DeletedAt    *time.Time `json:"-"`
}

func (f *FileEntry) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

// SharedFolder is a grant of access to a folder. At most one active grant
// may exist per (folder, grantee); re-sharing refreshes that row in place.
// Revoked grants stay around for audit.
type SharedFolder struct {
	ID               uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	FolderID         uuid.UUID  `gorm:"type:uuid;not null;index" json:"folderId"`
	UserID           uuid.UUID  `gorm:"type:uuid;not null;index" json:"userId"`
	SharedByID       uuid.UUID  `gorm:"type:uuid;not null" json:"sharedById"`
	Permission       Permission `gorm:"type:smallint;not null" json:"permission"`
	GrantedAt        time.Time  `json:"grantedAt"`
	ExpiresAt        *time.Time `json:"expiresAt,omitempty"`
	Active           bool       `gorm:"default:true;index" json:"active"`
	Note             string     `gorm:"size:500" json:"note,omitempty"`
	AccessCount      int64      `gorm:"default:0" json:"accessCount"`
	LastAccessedByID *uuid.UUID `gorm:"type:uuid" json:"lastAccessedById,omitempty"`
	LastAccessedAt   *time.Time `json:"lastAccessedAt,omitempty"`

	Folder Folder `gorm:"foreignKey:FolderID" json:"folder,omitempty"`
}

func (s *SharedFolder) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// SharedFile mirrors SharedFolder for individual files.
type SharedFile struct {
	ID               uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	FileID           uuid.UUID  `gorm:"type:uuid;not null;index" json:"fileId"`
	UserID           uuid.UUID  `gorm:"type:uuid;not null;index" json:"userId"`
	SharedByID       uuid.UUID  `gorm:"type:uuid;not null" json:"sharedById"`
	Permission       Permission `gorm:"type:smallint;not null" json:"permission"`
	GrantedAt        time.Time  `json:"grantedAt"`
	ExpiresAt        *time.Time `json:"expiresAt,omitempty"`
	Active           bool       `gorm:"default:true;index" json:"active"`
	Note             string     `gorm:"size:500" json:"note,omitempty"`
	AccessCount      int64      `gorm:"default:0" json:"accessCount"`
	LastAccessedByID *uuid.UUID `gorm:"type:uuid" json:"lastAccessedById,omitempty"`
	LastAccessedAt   *time.Time `json:"lastAccessedAt,omitempty"`

	File FileEntry `gorm:"foreignKey:FileID" json:"file,omitempty"`
}

func (s *SharedFile) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// FileVersion is an immutable snapshot record. Version numbers are
// "major.minor" strings, strictly increasing per file.
type FileVersion struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	FileID        uuid.UUID `gorm:"type:uuid;not null;index" json:"fileId"`
	VersionNumber string    `gorm:"size:20;not null" json:"versionNumber"`
	BlobKey       string    `gorm:"size:255;not null" json:"-"`
	Size          int64     `gorm:"not null" json:"size"`
	CreatedAt     time.Time `json:"createdAt"`
	CreatedByID   uuid.UUID `gorm:"type:uuid;not null" json:"createdById"`
	Notes         string    `gorm:"size:500" json:"notes,omitempty"`
}

func (v *FileVersion) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

// FolderVersion records a structural fingerprint of the folder subtree at
// creation time, used to detect drift without diffing every file.
type FolderVersion struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	FolderID      uuid.UUID `gorm:"type:uuid;not null;index" json:"folderId"`
	VersionNumber string    `gorm:"size:20;not null" json:"versionNumber"`
	StructureHash string    `gorm:"size:64;not null" json:"structureHash"`
	CreatedAt     time.Time `json:"createdAt"`
	CreatedByID   uuid.UUID `gorm:"type:uuid;not null" json:"createdById"`
	Notes         string    `gorm:"size:500" json:"notes,omitempty"`
}

func (v *FolderVersion) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
