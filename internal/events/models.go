package events

import (
	"time"

	"github.com/google/uuid"
)

// FileEvent covers folder, file and version lifecycle changes.
type FileEvent struct {
	EventType    string    `json:"eventType"`
	ResourceType string    `json:"resourceType"`
	ResourceID   string    `json:"resourceId"`
	OwnerID      string    `json:"ownerId"`
	ActionBy     string    `json:"actionBy"`
	Timestamp    time.Time `json:"timestamp"`
}

// ShareEvent covers grant creation, refresh and revocation.
type ShareEvent struct {
	EventType    string    `json:"eventType"`
	ResourceType string    `json:"resourceType"`
	ResourceID   string    `json:"resourceId"`
	GrantorID    string    `json:"grantorId"`
	GranteeID    string    `json:"granteeId"`
	Permission   string    `json:"permission,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

func NewFileEvent(eventType, resourceType string, resourceID, ownerID, actionBy uuid.UUID) *FileEvent {
	return &FileEvent{
		EventType:    eventType,
		ResourceType: resourceType,
		ResourceID:   resourceID.String(),
		OwnerID:      ownerID.String(),
		ActionBy:     actionBy.String(),
		Timestamp:    time.Now(),
	}
}

func NewShareEvent(eventType, resourceType string, resourceID, grantorID, granteeID uuid.UUID, permission string) *ShareEvent {
	return &ShareEvent{
		EventType:    eventType,
		ResourceType: resourceType,
		ResourceID:   resourceID.String(),
		GrantorID:    grantorID.String(),
		GranteeID:    granteeID.String(),
		Permission:   permission,
		Timestamp:    time.Now(),
	}
}
