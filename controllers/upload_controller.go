package controllers

import (
	"errors"
	"net/http"
	"os"
	"strings"

	"github.com/Pedroffda/alinhavo-api/config"
	"github.com/Pedroffda/alinhavo-api/services"
	"github.com/Pedroffda/alinhavo-api/utils"
	"github.com/gin-gonic/gin"
)

// UploadImage handles POST /api/v1/uploads - stores an inspiration image
// (multipart field "image") and returns the reference an order can attach.
func UploadImage(c *gin.Context) {
	ownerID, ok := currentUser(c)
	if !ok {
		return
	}

	imageService := services.GetImageService()
	if imageService == nil {
		respondFailure(c, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Image storage is not configured")
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		respondFailure(c, http.StatusBadRequest, "MISSING_FILE", "An image file is required in the 'image' field")
		return
	}

	ref, err := imageService.UploadInspiration(c.Request.Context(), ownerID, fileHeader)
	if err != nil {
		var uploadErr *utils.FileUploadError
		if errors.As(err, &uploadErr) {
			respondFailure(c, http.StatusBadRequest, uploadErr.Code, uploadErr.Message)
			return
		}
		respondFailure(c, http.StatusServiceUnavailable, "UPLOAD_FAILED", "Failed to store image")
		return
	}

	url, _ := imageService.GetImageURL(c.Request.Context(), ref.Path)
	respondData(c, http.StatusCreated, gin.H{
		"path":       ref.Path,
		"file_name":  ref.FileName,
		"size_bytes": ref.SizeBytes,
		"mime_type":  ref.MimeType,
		"url":        url,
	})
}

// DeleteUploadedImage handles DELETE /api/v1/uploads/*key - discards an
// inspiration the caller uploaded but never attached to an order
func DeleteUploadedImage(c *gin.Context) {
	ownerID, ok := currentUser(c)
	if !ok {
		return
	}
	m, ok := marketplace(c)
	if !ok {
		return
	}

	imageService := services.GetImageService()
	if imageService == nil {
		respondFailure(c, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Image storage is not configured")
		return
	}

	key := strings.TrimPrefix(c.Param("key"), "/")
	if !imageService.OwnsImage(ownerID, key) {
		respondFailure(c, http.StatusForbidden, "FORBIDDEN", "Only the uploader can delete this image")
		return
	}

	inUse, err := m.Orders.InspirationInUse(c.Request.Context(), key)
	if err != nil {
		respondError(c, err)
		return
	}
	if inUse {
		respondFailure(c, http.StatusConflict, "IMAGE_IN_USE", "The image is attached to an order")
		return
	}

	if err := imageService.DeleteImage(c.Request.Context(), key); err != nil {
		respondFailure(c, http.StatusServiceUnavailable, "DELETE_FAILED", "Failed to delete image")
		return
	}
	respondData(c, http.StatusOK, gin.H{"path": key})
}

// GetUploadedImage handles GET /api/v1/uploads/*key - serves images kept on local disk
func GetUploadedImage(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	if key == "" {
		respondFailure(c, http.StatusBadRequest, "INVALID_REQUEST", "Filename is required")
		return
	}

	// Security: Prevent directory traversal attacks
	if strings.Contains(key, "..") || strings.Contains(key, "\\") {
		respondFailure(c, http.StatusBadRequest, "INVALID_FILENAME", "Invalid filename")
		return
	}

	uploadDir := "./uploads"
	if cfg := config.GetConfig(); cfg != nil && cfg.UploadDir != "" {
		uploadDir = cfg.UploadDir
	}
	filePath, err := utils.SafeJoin(uploadDir, key)
	if err != nil {
		respondFailure(c, http.StatusBadRequest, "INVALID_FILENAME", "Invalid filename")
		return
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		respondFailure(c, http.StatusNotFound, "FILE_NOT_FOUND", "Image not found")
		return
	}

	image, err := utils.DetectImage(key, data)
	if err != nil {
		respondFailure(c, http.StatusNotFound, "FILE_NOT_FOUND", "Image not found")
		return
	}

	c.Header("Cache-Control", "public, max-age=86400") // Cache for 24 hours
	c.Data(http.StatusOK, image.MimeType, image.Data)
}
