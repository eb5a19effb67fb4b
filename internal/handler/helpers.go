package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/campus-go-api/internal/apperr"
	"github.com/noah-isme/campus-go-api/internal/middleware"
	"github.com/noah-isme/campus-go-api/internal/models"
	"github.com/noah-isme/campus-go-api/internal/utils"
)

func parseUintParam(c *fiber.Ctx, key string) (uint, error) {
	raw := strings.TrimSpace(c.Params(key))
	parsed, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || parsed == 0 {
		return 0, errors.New("invalid " + key + " parameter")
	}
	return uint(parsed), nil
}

func parseQueryInt(c *fiber.Ctx, key string, fallback int) int {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 0 {
		return fallback
	}
	return parsed
}

func principalFromContext(c *fiber.Ctx) models.Principal {
	principal := models.Principal{}
	if v := c.Locals("user_id"); v != nil {
		if id, ok := v.(uint); ok {
			principal.ID = id
		}
	}
	if v := c.Locals("user_role"); v != nil {
		if role, ok := v.(string); ok {
			principal.Role = role
		}
	}
	return principal
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

// statusForKind maps taxonomy kinds to HTTP status codes. Unknown kinds fall
// through to 500 so a missing mapping never masks a server fault as a client
// error.
func statusForKind(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation, apperr.KindInvalidGradeFormat, apperr.KindInvalidGradeRange:
		return fiber.StatusBadRequest
	case apperr.KindNotFound:
		return fiber.StatusNotFound
	case apperr.KindForbidden, apperr.KindNotEnrolled:
		return fiber.StatusForbidden
	case apperr.KindSubmissionClosed:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

func handleError(c *fiber.Ctx, logger zerolog.Logger, err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		return utils.SendErrorWithCode(c, fiber.StatusBadRequest, string(apperr.KindValidation), validationMessage(validationErrors))
	}

	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		status := statusForKind(appErr.Kind)
		if status == fiber.StatusInternalServerError {
			requestLogger(logger, c).Error().Err(err).Msg("unmapped taxonomy error")
			return utils.SendError(c, status, "internal server error")
		}
		return utils.SendErrorWithCode(c, status, string(appErr.Kind), appErr.Message)
	}

	requestLogger(logger, c).Error().Err(err).Msg("request failed")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}

func validationMessage(errs validator.ValidationErrors) string {
	if len(errs) == 0 {
		return "invalid request payload"
	}
	fields := make([]string, 0, len(errs))
	for _, fieldErr := range errs {
		fields = append(fields, strings.ToLower(fieldErr.Field()))
	}
	return "invalid value for: " + strings.Join(fields, ", ")
}
