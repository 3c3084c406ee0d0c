package handlers

import (
	"net/http"

	"filevault/internal/dto"
	"filevault/internal/models"
	"filevault/internal/services"
	"filevault/pkg/responses"

	"github.com/gin-gonic/gin"
)

type ShareHandler struct {
	shares *services.ShareService
}

func NewShareHandler(shares *services.ShareService) *ShareHandler {
	return &ShareHandler{shares: shares}
}

// ShareFolder grants another user access to a folder (owner only).
func (h *ShareHandler) ShareFolder(c *gin.Context) {
	folderID, ok := pathUUID(c, "folderId")
	if !ok {
		return
	}
	grantorID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req dto.ShareFolderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	permission, err := models.ParsePermission(req.Permission)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	grant, err := h.shares.ShareFolder(c.Request.Context(), folderID, grantorID, req.UserID, permission, req.ExpiresAt, req.Note)
	if err != nil {
		responses.FromError(c, err)
		return
	}

	responses.JSON(c, http.StatusCreated, grant)
}

// ShareFile grants another user default Read access to a file (owner only).
func (h *ShareHandler) ShareFile(c *gin.Context) {
	fileID, ok := pathUUID(c, "fileId")
	if !ok {
		return
	}
	grantorID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req dto.ShareFileReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	grant, err := h.shares.ShareFile(c.Request.Context(), fileID, grantorID, req.UserID)
	if err != nil {
		responses.FromError(c, err)
		return
	}

	responses.JSON(c, http.StatusCreated, grant)
}

// SharedWithMe lists the caller's active incoming grants.
func (h *ShareHandler) SharedWithMe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	result, err := h.shares.ListSharedWithMe(c.Request.Context(), userID)
	if err != nil {
		responses.FromError(c, err)
		return
	}

	responses.JSON(c, http.StatusOK, result)
}

// ListFolderShares lists all grants of a folder, active and revoked
// (owner only).
func (h *ShareHandler) ListFolderShares(c *gin.Context) {
	folderID, ok := pathUUID(c, "folderId")
	if !ok {
		return
	}
	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}

	grants, err := h.shares.ListFolderShares(c.Request.Context(), folderID, ownerID)
	if err != nil {
		responses.FromError(c, err)
		return
	}

	responses.JSON(c, http.StatusOK, grants)
}

// ListFileShares lists all grants of a file, active and revoked (owner only).
func (h *ShareHandler) ListFileShares(c *gin.Context) {
	fileID, ok := pathUUID(c, "fileId")
	if !ok {
		return
	}
	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}

	grants, err := h.shares.ListFileShares(c.Request.Context(), fileID, ownerID)
	if err != nil {
		responses.FromError(c, err)
		return
	}

	responses.JSON(c, http.StatusOK, grants)
}

// RevokeFolderShare deactivates a folder grant (owner only).
func (h *ShareHandler) RevokeFolderShare(c *gin.Context) {
	folderID, ok := pathUUID(c, "folderId")
	if !ok {
		return
	}
	granteeID, ok := pathUUID(c, "userId")
	if !ok {
		return
	}
	callerID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.shares.RevokeFolderShare(c.Request.Context(), folderID, granteeID, callerID); err != nil {
		responses.FromError(c, err)
		return
	}

	responses.JSON(c, http.StatusOK, gin.H{"message": "Folder share revoked successfully"})
}

// RevokeFileShare deactivates a file grant (owner only).
func (h *ShareHandler) RevokeFileShare(c *gin.Context) {
	fileID, ok := pathUUID(c, "fileId")
	if !ok {
		return
	}
	granteeID, ok := pathUUID(c, "userId")
	if !ok {
		return
	}
	callerID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.shares.RevokeFileShare(c.Request.Context(), fileID, granteeID, callerID); err != nil {
		responses.FromError(c, err)
		return
	}

	responses.JSON(c, http.StatusOK, gin.H{"message": "File share revoked successfully"})
}
