package handlers

import (
	"net/http"

	"filevault/internal/dto"
	"filevault/internal/services"
	"filevault/pkg/responses"

	"github.com/gin-gonic/gin"
)

type VersionHandler struct {
	versions *services.VersionService
}

func NewVersionHandler(versions *services.VersionService) *VersionHandler {
	return &VersionHandler{versions: versions}
}

// CreateFolderVersion snapshots the folder's structural hash.
func (h *VersionHandler) CreateFolderVersion(c *gin.Context) {
	folderID, ok := pathUUID(c, "folderId")
	if !ok {
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req dto.CreateVersionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	version, err := h.versions.CreateFolderVersion(c.Request.Context(), folderID, userID, req.Notes)
	if err != nil {
		responses.FromError(c, err)
		return
	}

	responses.JSON(c, http.StatusCreated, version)
}

// ListFolderVersions lists the folder's versions, newest first.
func (h *VersionHandler) ListFolderVersions(c *gin.Context) {
	folderID, ok := pathUUID(c, "folderId")
	if !ok {
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	versions, err := h.versions.ListFolderVersions(c.Request.Context(), folderID, userID)
	if err != nil {
		responses.FromError(c, err)
		return
	}

	responses.JSON(c, http.StatusOK, versions)
}

// GetFolderVersion looks up one folder version by number.
func (h *VersionHandler) GetFolderVersion(c *gin.Context) {
	folderID, ok := pathUUID(c, "folderId")
	if !ok {
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	version, err := h.versions.GetFolderVersion(c.Request.Context(), folderID, userID, c.Param("version"))
	if err != nil {
		responses.FromError(c, err)
		return
	}

	responses.JSON(c, http.StatusOK, version)
}

// CreateFileVersion snapshots the file's current path and size.
func (h *VersionHandler) CreateFileVersion(c *gin.Context) {
	fileID, ok := pathUUID(c, "fileId")
	if !ok {
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req dto.CreateVersionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	version, err := h.versions.CreateFileVersion(c.Request.Context(), fileID, userID, req.Notes)
	if err != nil {
		responses.FromError(c, err)
		return
	}

	responses.JSON(c, http.StatusCreated, version)
}

// ListFileVersions lists the file's versions, newest first.
func (h *VersionHandler) ListFileVersions(c *gin.Context) {
	fileID, ok := pathUUID(c, "fileId")
	if !ok {
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	versions, err := h.versions.ListFileVersions(c.Request.Context(), fileID, userID)
	if err != nil {
		responses.FromError(c, err)
		return
	}

	responses.JSON(c, http.StatusOK, versions)
}

// GetFileVersion looks up one file version by number.
func (h *VersionHandler) GetFileVersion(c *gin.Context) {
	fileID, ok := pathUUID(c, "fileId")
	if !ok {
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	version, err := h.versions.GetFileVersion(c.Request.Context(), fileID, userID, c.Param("version"))
	if err != nil {
		responses.FromError(c, err)
		return
	}

	responses.JSON(c, http.StatusOK, version)
}
