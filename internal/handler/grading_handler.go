package handler

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/campus-go-api/internal/apperr"
	"github.com/noah-isme/campus-go-api/internal/dto"
	"github.com/noah-isme/campus-go-api/internal/service"
	"github.com/noah-isme/campus-go-api/internal/utils"
)

// GradingHandler wires grading HTTP routes.
type GradingHandler struct {
	service service.GradingService
	logger  zerolog.Logger
}

// NewGradingHandler constructs the handler.
func NewGradingHandler(service service.GradingService, logger zerolog.Logger) *GradingHandler {
	return &GradingHandler{
		service: service,
		logger:  logger.With().Str("component", "grading_handler").Logger(),
	}
}

// Grade records a grade and optional feedback on one submission.
func (h *GradingHandler) Grade(c *fiber.Ctx) error {
	submissionID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.GradeRequest
	if err := c.BodyParser(&payload); err != nil {
		if formatErr := gradeBodyError(err); formatErr != nil {
			return handleError(c, h.logger, formatErr)
		}
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.Grade(c.UserContext(), submissionID, payload, principalFromContext(c))
	if err != nil {
		return handleError(c, h.logger, err)
	}

	requestLogger(h.logger, c).Info().
		Uint("submission_id", submissionID).
		Bool("regrade", result.IsRegrade).
		Msg("submission graded")

	message := "submission graded"
	if result.IsRegrade {
		message = "submission regraded"
	}

	return utils.SendSuccess(c, message, result)
}

// BulkGrade grades many submissions of one assignment in a single request.
// Individual failures are reported per entry; the batch itself succeeds.
func (h *GradingHandler) BulkGrade(c *fiber.Ctx) error {
	assignmentID, err := parseUintParam(c, "assignmentId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.BulkGradeRequest
	if err := c.BodyParser(&payload); err != nil {
		if formatErr := gradeBodyError(err); formatErr != nil {
			return handleError(c, h.logger, formatErr)
		}
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.BulkGrade(c.UserContext(), assignmentID, payload, principalFromContext(c))
	if err != nil {
		return handleError(c, h.logger, err)
	}

	requestLogger(h.logger, c).Info().
		Uint("assignment_id", assignmentID).
		Int("succeeded", len(result.Successful)).
		Int("failed", len(result.Failed)).
		Msg("bulk grading processed")

	return utils.SendSuccess(c, "bulk grading processed", result)
}

// gradeBodyError recognizes a grade field of the wrong JSON type and maps it
// to the grade format error kind. Other parse failures return nil so the
// caller falls back to the generic bad-request response.
func gradeBodyError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && strings.HasSuffix(typeErr.Field, "grade") {
		return apperr.New(apperr.KindInvalidGradeFormat, "grade is required and must be a number")
	}
	return nil
}
