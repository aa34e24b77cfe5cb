package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// maxUploadSize caps image uploads at 5 MB.
const maxUploadSize = 5 << 20

var (
	errUploadMissing  = errors.New("no file uploaded")
	errUploadType     = errors.New("only JPEG, PNG, GIF and WEBP images are allowed")
	errUploadTooLarge = errors.New("file exceeds the 5 MB limit")
)

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// readImageUpload reads and validates a multipart image field. The returned
// object name is `<entity>/<uuid><ext>`.
func readImageUpload(c *gin.Context, field, entity string) (data []byte, contentType, objectName string, err error) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		return nil, "", "", errUploadMissing
	}

	if fileHeader.Size > maxUploadSize {
		return nil, "", "", errUploadTooLarge
	}

	contentType = fileHeader.Header.Get("Content-Type")
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		return nil, "", "", errUploadType
	}

	// Trust the filename extension over the sniffed one when it matches an
	// allowed type, so .jpeg stays .jpeg.
	if nameExt := strings.ToLower(filepath.Ext(fileHeader.Filename)); nameExt != "" {
		for _, allowed := range allowedImageTypes {
			if nameExt == allowed || (nameExt == ".jpeg" && allowed == ".jpg") {
				ext = nameExt
				break
			}
		}
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, "", "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer file.Close()

	data, err = io.ReadAll(io.LimitReader(file, maxUploadSize+1))
	if err != nil {
		return nil, "", "", fmt.Errorf("failed to read upload: %w", err)
	}
	if len(data) > maxUploadSize {
		return nil, "", "", errUploadTooLarge
	}

	objectName = fmt.Sprintf("%s/%s%s", entity, uuid.New().String(), ext)
	return data, contentType, objectName, nil
}

// handleUploadError maps upload validation failures to 400/413.
func (h *BaseHandler) handleUploadError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errUploadTooLarge):
		h.respondError(c, http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, errUploadMissing), errors.Is(err, errUploadType):
		h.respondError(c, http.StatusBadRequest, err.Error())
	default:
		h.LogError(c, err, "upload failed")
		h.respondError(c, http.StatusInternalServerError, "failed to process upload")
	}
}
