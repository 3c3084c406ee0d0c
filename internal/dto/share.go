package dto

import (
	"time"

	"github.com/google/uuid"
)

type ShareFolderReq struct {
	UserID     uuid.UUID  `json:"userId" binding:"required"`
	Permission string     `json:"permission" binding:"required"`
	ExpiresAt  *time.Time `json:"expiresAt"`
	Note       string     `json:"note"`
}

type ShareFileReq struct {
	UserID uuid.UUID `json:"userId" binding:"required"`
}

// SharedFolderInfo joins an active grant with resource and grantor display
// info for the shared-with-me listing.
type SharedFolderInfo struct {
	GrantID      uuid.UUID  `json:"grantId"`
	FolderID     uuid.UUID  `json:"folderId"`
	FolderName   string     `json:"folderName"`
	SharedByID   uuid.UUID  `json:"sharedById"`
	SharedByName string     `json:"sharedByName"`
	Permission   string     `json:"permission"`
	GrantedAt    time.Time  `json:"grantedAt"`
	ExpiresAt    *time.Time `json:"expiresAt,omitempty"`
	Note         string     `json:"note,omitempty"`
}

type SharedFileInfo struct {
	GrantID      uuid.UUID  `json:"grantId"`
	FileID       uuid.UUID  `json:"fileId"`
	FileName     string     `json:"fileName"`
	SharedByID   uuid.UUID  `json:"sharedById"`
	SharedByName string     `json:"sharedByName"`
	Permission   string     `json:"permission"`
	GrantedAt    time.Time  `json:"grantedAt"`
	ExpiresAt    *time.Time `json:"expiresAt,omitempty"`
	Note         string     `json:"note,omitempty"`
}

type SharedWithMe struct {
	Folders []SharedFolderInfo `json:"folders"`
	Files   []SharedFileInfo   `json:"files"`
}
