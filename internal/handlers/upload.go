package handlers

import (
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/raj-sankey/chat-st/internal/storage"
)

// UploadRequest is the DTO for the attachment upload endpoint.
type UploadRequest struct {
	File *multipart.FileHeader `form:"file" validate:"required"`
}

// UploadHandler receives chat attachments and serves them back. Uploads
// are renamed to a timestamped unique name; the returned URL is what a
// client puts into a message envelope.
type UploadHandler struct {
	store       storage.Store
	maxFileSize int64
}

// NewUploadHandler creates an UploadHandler.
func NewUploadHandler(store storage.Store, maxFileSize int64) *UploadHandler {
	return &UploadHandler{store: store, maxFileSize: maxFileSize}
}

// Upload handles POST /api/upload.
func (h *UploadHandler) Upload(c echo.Context) error {
	ctx := c.Request().Context()

	var req UploadRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format.")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	fileHeader := req.File
	if h.maxFileSize > 0 && fileHeader.Size > h.maxFileSize {
		return c.String(http.StatusRequestEntityTooLarge,
			fmt.Sprintf("File size of %d bytes exceeds the limit of %d bytes", fileHeader.Size, h.maxFileSize))
	}

	src, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to open uploaded file")
	}
	defer src.Close()

	// Base strips any path the client smuggled into the filename. The
	// stored name keeps only the extension; the original name goes back
	// in the response for display.
	sanitized := filepath.Base(fileHeader.Filename)
	stored := fmt.Sprintf("%d-%s%s", time.Now().UnixNano(), uuid.NewString(), filepath.Ext(sanitized))

	if _, err := h.store.Save(ctx, stored, src); err != nil {
		c.Logger().Error("failed to save upload: ", err)
		return c.String(http.StatusInternalServerError, "Failed to save file")
	}

	return c.JSON(http.StatusCreated, UploadResponse{
		URL:      "/uploads/" + stored,
		Filename: sanitized,
	})
}

// Serve handles GET /uploads/:name.
func (h *UploadHandler) Serve(c echo.Context) error {
	name := filepath.Base(c.Param("name"))
	if name == "" || name == "." {
		return echo.NewHTTPError(http.StatusBadRequest, "File name is required")
	}

	content, err := h.store.Get(c.Request().Context(), name)
	if err != nil {
		return c.String(http.StatusNotFound, "File not found")
	}
	defer content.Close()

	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return c.Stream(http.StatusOK, contentType, content)
}
