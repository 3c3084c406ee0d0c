package handlers

import (
	"net/http"

	"filevault/internal/dto"
	"filevault/internal/services"
	"filevault/pkg/responses"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type FolderHandler struct {
	folders *services.FolderService
}

func NewFolderHandler(folders *services.FolderService) *FolderHandler {
	return &FolderHandler{folders: folders}
}

// CreateFolder creates a new folder, optionally under a parent.
func (h *FolderHandler) CreateFolder(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req dto.CreateFolderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	folder, err := h.folders.Create(c.Request.Context(), ownerID, req.Name, req.ParentID)
	if err != nil {
		responses.FromError(c, err)
		return
	}

	responses.JSON(c, http.StatusCreated, folder)
}

// ListFolders lists the caller's folders under ?parentId= (root if absent),
// with computed file and subfolder counts.
func (h *FolderHandler) ListFolders(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}

	var parentID *uuid.UUID
	if raw := c.Query("parentId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid parentId"})
			return
		}
		parentID = &id
	}

	infos, err := h.folders.List(c.Request.Context(), ownerID, parentID)
	if err != nil {
		responses.FromError(c, err)
		return
	}

	responses.JSON(c, http.StatusOK, infos)
}

// RenameFolder renames a folder (owner only).
func (h *FolderHandler) RenameFolder(c *gin.Context) {
	folderID, ok := pathUUID(c, "folderId")
	if !ok {
		return
	}
	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req dto.RenameFolderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	folder, err := h.folders.Rename(c.Request.Context(), folderID, ownerID, req.Name)
	if err != nil {
		responses.FromError(c, err)
		return
	}

	responses.JSON(c, http.StatusOK, folder)
}

// MoveFolder reparents a folder (owner only); cycle-introducing moves are
// rejected.
func (h *FolderHandler) MoveFolder(c *gin.Context) {
	folderID, ok := pathUUID(c, "folderId")
	if !ok {
		return
	}
	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req dto.MoveFolderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	folder, err := h.folders.Move(c.Request.Context(), folderID, ownerID, req.NewParentID)
	if err != nil {
		responses.FromError(c, err)
		return
	}

	responses.JSON(c, http.StatusOK, folder)
}

// DeleteFolder deletes a folder and all its contents (owner only).
func (h *FolderHandler) DeleteFolder(c *gin.Context) {
	folderID, ok := pathUUID(c, "folderId")
	if !ok {
		return
	}
	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.folders.Delete(c.Request.Context(), folderID, ownerID); err != nil {
		responses.FromError(c, err)
		return
	}

	responses.JSON(c, http.StatusOK, gin.H{"message": "Folder and all its contents deleted successfully"})
}
