package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/campus-go-api/internal/dto"
	"github.com/noah-isme/campus-go-api/internal/service"
	"github.com/noah-isme/campus-go-api/internal/utils"
)

// SubmissionHandler wires submission HTTP routes.
type SubmissionHandler struct {
	service service.SubmissionService
	logger  zerolog.Logger
}

// NewSubmissionHandler constructs the handler.
func NewSubmissionHandler(service service.SubmissionService, logger zerolog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		service: service,
		logger:  logger.With().Str("component", "submission_handler").Logger(),
	}
}

// Submit hands in work for an assignment. Submitting again before the grade
// lands replaces the previous attempt.
func (h *SubmissionHandler) Submit(c *fiber.Ctx) error {
	assignmentID, err := parseUintParam(c, "assignmentId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.SubmitRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	payload.AssignmentID = assignmentID

	result, err := h.service.Submit(c.UserContext(), payload, principalFromContext(c))
	if err != nil {
		return handleError(c, h.logger, err)
	}

	message := "submission received"
	status := fiber.StatusCreated
	if result.Resubmitted {
		message = "submission replaced"
		status = fiber.StatusOK
	}

	requestLogger(h.logger, c).Info().
		Uint("assignment_id", assignmentID).
		Bool("resubmitted", result.Resubmitted).
		Msg("submission stored")

	return utils.SendSuccessWithStatus(c, status, message, result)
}

// Get returns a single submission.
func (h *SubmissionHandler) Get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	submission, err := h.service.Get(c.UserContext(), id, principalFromContext(c))
	if err != nil {
		return handleError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "submission retrieved", submission)
}

// ListByAssignment returns all submissions for an assignment. Course managers
// only.
func (h *SubmissionHandler) ListByAssignment(c *fiber.Ctx) error {
	assignmentID, err := parseUintParam(c, "assignmentId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	submissions, err := h.service.ListByAssignment(c.UserContext(), assignmentID, principalFromContext(c))
	if err != nil {
		return handleError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "submissions retrieved", submissions)
}

// ListOwn returns the caller's own submissions across courses.
func (h *SubmissionHandler) ListOwn(c *fiber.Ctx) error {
	submissions, err := h.service.ListOwn(c.UserContext(), principalFromContext(c))
	if err != nil {
		return handleError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "submissions retrieved", submissions)
}
