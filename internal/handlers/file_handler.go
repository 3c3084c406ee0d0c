package handlers

import (
	"io"
	"net/http"

	"filevault/internal/services"
	"filevault/pkg/responses"

	"github.com/gin-gonic/gin"
)

type FileHandler struct {
	files *services.FileService
}

func NewFileHandler(files *services.FileService) *FileHandler {
	return &FileHandler{files: files}
}

// UploadFile stores a multipart upload into the folder from the path.
func (h *FileHandler) UploadFile(c *gin.Context) {
	folderID, ok := pathUUID(c, "folderId")
	if !ok {
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing file field"})
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read upload"})
		return
	}
	defer src.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	file, err := h.files.Upload(c.Request.Context(), userID, &folderID, fileHeader.Filename, contentType, fileHeader.Size, src)
	if err != nil {
		responses.FromError(c, err)
		return
	}

	responses.JSON(c, http.StatusCreated, file)
}

// DownloadFile streams the file content to the caller.
func (h *FileHandler) DownloadFile(c *gin.Context) {
	fileID, ok := pathUUID(c, "fileId")
	if !ok {
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	file, rc, err := h.files.Download(c.Request.Context(), fileID, userID)
	if err != nil {
		responses.FromError(c, err)
		return
	}
	defer rc.Close()

	c.Header("Content-Disposition", `attachment; filename="`+file.Name+`"`)
	c.Header("Content-Type", file.ContentType)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, rc); err != nil {
		// Headers are already out; nothing more to report to the client.
		_ = c.Error(err)
	}
}

// DeleteFile removes a file (owner only).
func (h *FileHandler) DeleteFile(c *gin.Context) {
	fileID, ok := pathUUID(c, "fileId")
	if !ok {
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.files.Delete(c.Request.Context(), fileID, userID); err != nil {
		responses.FromError(c, err)
		return
	}

	responses.JSON(c, http.StatusOK, gin.H{"message": "File deleted successfully"})
}

// ListFolderFiles lists the files in a folder visible to the caller.
func (h *FileHandler) ListFolderFiles(c *gin.Context) {
	folderID, ok := pathUUID(c, "folderId")
	if !ok {
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	files, err := h.files.ListFolderFiles(c.Request.Context(), folderID, userID)
	if err != nil {
		responses.FromError(c, err)
		return
	}

	responses.JSON(c, http.StatusOK, files)
}
