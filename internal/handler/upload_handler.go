package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/campus-go-api/internal/service"
	"github.com/noah-isme/campus-go-api/internal/utils"
)

// UploadHandler wires attachment upload routes.
type UploadHandler struct {
	service service.UploadService
	logger  zerolog.Logger
}

// NewUploadHandler constructs the handler.
func NewUploadHandler(service service.UploadService, logger zerolog.Logger) *UploadHandler {
	return &UploadHandler{
		service: service,
		logger:  logger.With().Str("component", "upload_handler").Logger(),
	}
}

// Store accepts a multipart file and persists it for later attachment to an
// assignment or submission.
func (h *UploadHandler) Store(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "file field is required")
	}

	var courseID *uint
	if raw := strings.TrimSpace(c.FormValue("course_id")); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || parsed == 0 {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid course_id field")
		}
		id := uint(parsed)
		courseID = &id
	}

	upload, err := h.service.Store(c.UserContext(), file, courseID, principalFromContext(c))
	if err != nil {
		if errors.Is(err, service.ErrUploadTooLarge) {
			return utils.SendError(c, fiber.StatusRequestEntityTooLarge, err.Error())
		}
		if errors.Is(err, service.ErrUploadTypeNotAllowed) {
			return utils.SendError(c, fiber.StatusUnsupportedMediaType, err.Error())
		}
		return handleError(c, h.logger, err)
	}

	requestLogger(h.logger, c).Info().
		Uint("upload_id", upload.ID).
		Str("mime_type", upload.MimeType).
		Msg("file uploaded")

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "file uploaded", upload)
}

// Download resolves an upload record and redirects to its storage URL.
func (h *UploadHandler) Download(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	upload, err := h.service.Download(c.UserContext(), id, principalFromContext(c))
	if err != nil {
		return handleError(c, h.logger, err)
	}

	return c.Redirect(upload.URL, fiber.StatusFound)
}
