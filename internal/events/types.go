package events

// File Event Types
const (
	FolderCreated = "FOLDER_CREATED"
	FolderUpdated = "FOLDER_UPDATED"
	FolderMoved   = "FOLDER_MOVED"
	FolderDeleted = "FOLDER_DELETED"

	FileUploaded = "FILE_UPLOADED"
	FileDeleted  = "FILE_DELETED"

	VersionCreated = "VERSION_CREATED"
)

// Share Event Types
const (
	FolderShared   = "FOLDER_SHARED"
	FolderUnshared = "FOLDER_UNSHARED"
	FileShared     = "FILE_SHARED"
	FileUnshared   = "FILE_UNSHARED"
)

// Kafka Topics
const (
	FileActivityTopic  = "file.activity"
	ShareActivityTopic = "share.activity"
)

// Resource Types
const (
	ResourceTypeFolder = "folder"
	ResourceTypeFile   = "file"
)
