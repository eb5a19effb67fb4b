package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/campus-go-api/internal/config"
	"github.com/noah-isme/campus-go-api/internal/handler"
	"github.com/noah-isme/campus-go-api/internal/middleware"
	"github.com/noah-isme/campus-go-api/internal/models"
	"github.com/noah-isme/campus-go-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AssignmentHandler   *handler.AssignmentHandler
	SubmissionHandler   *handler.SubmissionHandler
	GradingHandler      *handler.GradingHandler
	ReportHandler       *handler.ReportHandler
	UploadHandler       *handler.UploadHandler
	NotificationHandler *handler.NotificationHandler
	JWTMiddleware       fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	api.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	manageOnly := middleware.RequireRole(models.RoleTeacher, models.RoleAdmin)

	if deps.AssignmentHandler != nil {
		courses := api.Group("/courses", jwtMiddleware)
		courses.Get("/:courseId/assignments", deps.AssignmentHandler.ListByCourse)
		courses.Post("/:courseId/assignments", manageOnly, deps.AssignmentHandler.Create)

		assignments := api.Group("/assignments", jwtMiddleware)
		assignments.Get("/:id", deps.AssignmentHandler.Get)
		assignments.Patch("/:id", manageOnly, deps.AssignmentHandler.Update)
		assignments.Delete("/:id", manageOnly, deps.AssignmentHandler.Deactivate)

		if deps.SubmissionHandler != nil {
			assignments.Post("/:assignmentId/submissions",
				middleware.RequireRole(models.RoleStudent),
				middleware.RateLimit("submit", 30, time.Minute),
				deps.SubmissionHandler.Submit)
			assignments.Get("/:assignmentId/submissions", manageOnly, deps.SubmissionHandler.ListByAssignment)
		}

		if deps.GradingHandler != nil {
			assignments.Post("/:assignmentId/grades",
				manageOnly,
				middleware.RateLimit("bulk_grade", 10, time.Minute),
				deps.GradingHandler.BulkGrade)
		}
	}

	if deps.SubmissionHandler != nil {
		submissions := api.Group("/submissions", jwtMiddleware)
		submissions.Get("/:id", deps.SubmissionHandler.Get)
		if deps.GradingHandler != nil {
			submissions.Put("/:id/grade", manageOnly, deps.GradingHandler.Grade)
		}

		me := api.Group("/me", jwtMiddleware)
		me.Get("/submissions", deps.SubmissionHandler.ListOwn)
	}

	if deps.ReportHandler != nil {
		reports := api.Group("", jwtMiddleware)
		reports.Get("/students/:studentId/grades", deps.ReportHandler.StudentGrades)
		reports.Get("/courses/:courseId/gradebook", manageOnly, deps.ReportHandler.CourseGradebook)
	}

	if deps.UploadHandler != nil {
		uploads := api.Group("/uploads", jwtMiddleware)
		uploads.Post("", deps.UploadHandler.Store)
		uploads.Get("/:id", deps.UploadHandler.Download)
	}

	if deps.NotificationHandler != nil {
		notifications := api.Group("/notifications", jwtMiddleware)
		deps.NotificationHandler.Register(notifications)
	}
}
