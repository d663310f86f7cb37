package handlers

import (
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/grievance-service/internal/api/dto"
	"github.com/spec-kit/grievance-service/internal/storage"
	apperrors "github.com/spec-kit/grievance-service/pkg/util"
)

// UploadsHandler accepts grievance image uploads.
type UploadsHandler struct {
	store       storage.BlobStore
	maxSizeByte int64
}

// NewUploadsHandler constructs handler.
func NewUploadsHandler(store storage.BlobStore, maxUploadMB int) *UploadsHandler {
	return &UploadsHandler{store: store, maxSizeByte: int64(maxUploadMB) << 20}
}

// UploadImage POST /grievances/uploads.
func (h *UploadsHandler) UploadImage(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		return apperrors.NewValidationError("image file is required", nil)
	}
	if fileHeader.Size > h.maxSizeByte {
		return apperrors.NewValidationError("image too large", map[string]any{
			"max_bytes": h.maxSizeByte,
		})
	}
	contentType := fileHeader.Header.Get("Content-Type")
	if !storage.SupportedContentType(contentType) {
		return apperrors.NewValidationError("unsupported image type", map[string]any{
			"content_type": contentType,
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxSizeByte+1))
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if int64(len(data)) > h.maxSizeByte {
		return apperrors.NewValidationError("image too large", map[string]any{
			"max_bytes": h.maxSizeByte,
		})
	}

	url, err := h.store.Put(c.UserContext(), data, contentType)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.UploadResponse{URL: url}})
}
