// Package file contains the HTTP handlers for uploading and downloading files
package file

import (
	"bitwise74/file-drop/internal"
	"bitwise74/file-drop/internal/service"
	"bitwise74/file-drop/pkg/middleware"
	"bitwise74/file-drop/pkg/validators"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func FileUpload(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	fh, err := c.FormFile("file")
	if err != nil {
		switch {
		case middleware.IsBodyTooLarge(err):
			limit := humanize.IBytes(uint64(d.Files.Config().MaxSize))
			err = fmt.Errorf("%w of %s", service.ErrSizeLimitExceeded, limit)
		case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
			err = validators.ErrNoFile
		default:
			zap.L().Error("Failed to read multipart form", zap.String("requestID", requestID), zap.Error(err))
			err = validators.ErrNoFile
		}

		respondError(c, requestID, err)
		return
	}

	if err := validators.FileHeader(fh); err != nil {
		respondError(c, requestID, err)
		return
	}

	f, err := fh.Open()
	if err != nil {
		zap.L().Error("Failed to open multipart file", zap.String("requestID", requestID), zap.Error(err))
		respondError(c, requestID, err)
		return
	}
	defer f.Close()

	contentType, body, err := validators.ContentType(fh.Header.Get("Content-Type"), f)
	if err != nil {
		zap.L().Error("Failed to detect content type", zap.String("requestID", requestID), zap.Error(err))
		respondError(c, requestID, err)
		return
	}

	rec, err := d.Files.Store(c.Request.Context(), service.Upload{
		Content:     body,
		Name:        fh.Filename,
		Size:        fh.Size,
		ContentType: contentType,
	})
	if err != nil {
		if errors.Is(err, service.ErrStorage) {
			zap.L().Error("Failed to store upload", zap.String("requestID", requestID), zap.Error(err))
		}

		respondError(c, requestID, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"fileUrl":   rec.URL,
		"fileCode":  rec.AccessCode,
		"expiresAt": rec.ExpiresAt(d.Files.Config().Expiry).Format(time.RFC3339),
	})
}
