package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateFolderReq struct {
	Name     string     `json:"name" binding:"required"`
	ParentID *uuid.UUID `json:"parentId"`
}

type RenameFolderReq struct {
	Name string `json:"name" binding:"required"`
}

type MoveFolderReq struct {
	NewParentID *uuid.UUID `json:"newParentId"`
}

// FolderInfo is a listing row with the computed child counts.
type FolderInfo struct {
	ID             uuid.UUID  `json:"id"`
	Name           string     `json:"name"`
	OwnerID        uuid.UUID  `json:"ownerId"`
	ParentID       *uuid.UUID `json:"parentId,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      *time.Time `json:"updatedAt,omitempty"`
	FileCount      int64      `json:"fileCount"`
	SubfolderCount int64      `json:"subfolderCount"`
}
