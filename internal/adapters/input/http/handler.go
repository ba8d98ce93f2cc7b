package http

import (
	"context"
	"errors"
	"time"

	"claritas/internal/domain"
	"claritas/internal/ports/input"
	"claritas/pkg/validator"

	"gorm.io/gorm"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// ChunkSink accepts audio pushed by the UI for the active recording
type ChunkSink interface {
	Push(ctx context.Context, data []byte, mimeType string) error
}

// Services struct - the use cases served over HTTP
type Services struct {
	Sessions input.SessionService
	Capture  input.CaptureWorkflow
	Profiles input.ProfileService
	Reports  input.ReportService
	// Chunks is nil when the microphone is not fed over HTTP
	Chunks ChunkSink
}

// HTTPHandler struct - Primary/Driving adapter for HTTP
type HTTPHandler struct {
	sessions  input.SessionService
	capture   input.CaptureWorkflow
	profiles  input.ProfileService
	reports   input.ReportService
	chunks    ChunkSink
	db        *gorm.DB
	location  *time.Location
	validator validator.Validator
}

// New func - Creates new HTTP handler. db is nil unless sessions are kept in postgres.
func New(services Services, db *gorm.DB, location *time.Location) *HTTPHandler {
	if location == nil {
		location = time.UTC
	}
	return &HTTPHandler{
		sessions:  services.Sessions,
		capture:   services.Capture,
		profiles:  services.Profiles,
		reports:   services.Reports,
		chunks:    services.Chunks,
		db:        db,
		location:  location,
		validator: validator.New(),
	}
}

// Routes func - Registers the API routes on the /v1/api group
func (hdl *HTTPHandler) Routes(api fiber.Router) {
	api.Get("/sessions", hdl.ListSessions)
	api.Post("/sessions/upload", hdl.UploadSession)
	api.Get("/sessions/:id", hdl.GetSession)
	api.Get("/dashboard", hdl.GetDashboard)

	api.Get("/capture", hdl.GetCapture)
	api.Post("/capture/start", hdl.StartCapture)
	api.Post("/capture/chunk", hdl.PushChunk)
	api.Post("/capture/next", hdl.NextSentence)
	api.Post("/capture/stop", hdl.StopCapture)
	api.Post("/capture/cancel", hdl.CancelCapture)

	api.Get("/profile", hdl.GetProfile)
	api.Put("/profile", hdl.SignIn)
	api.Delete("/profile", hdl.SignOut)

	api.Post("/report", hdl.GenerateReport)
}

// HealthCheck func
// HealthCheck godoc
// @Summary Health check
// @Description Reports whether the service and its database are reachable
// @Tags Health
// @Produce json
// @Success 200 {object} ResponseBody
// @Router /health [get]
func (hdl *HTTPHandler) HealthCheck(c *fiber.Ctx) error {
	if hdl.db != nil {
		sqlDB, err := hdl.db.DB()
		if err != nil {
			logrus.Errorln(err)
			return c.Status(fiber.StatusInternalServerError).JSON(ResponseBody{Status: InternalServerError})
		}

		err = sqlDB.PingContext(c.UserContext())
		if err != nil {
			logrus.Errorln(err)
			return c.Status(fiber.StatusInternalServerError).JSON(ResponseBody{Status: InternalServerError})
		}
	}
	return c.Status(fiber.StatusOK).JSON(ResponseBody{Status: Success, Data: ""})
}

// errorResponse maps use case errors onto the response envelope
func errorResponse(c *fiber.Ctx, err error) error {
	var status Status
	switch {
	case errors.Is(err, domain.ErrInvalidTask), errors.Is(err, domain.ErrInvalidProfile):
		status = BadRequest
	case errors.Is(err, domain.ErrNoSessions):
		status = NotFound
	case errors.Is(err, domain.ErrDeviceUnavailable),
		errors.Is(err, domain.ErrWorkflowBusy),
		errors.Is(err, domain.ErrInvalidTransition):
		status = ConFlict
	case errors.Is(err, domain.ErrPayloadTooSmall):
		status = UnprocessableEntity
	case errors.Is(err, domain.ErrAnalysisFailed),
		errors.Is(err, domain.ErrLMStudioUnavailable),
		errors.Is(err, domain.ErrInvalidRequest):
		status = BadGateway
	default:
		logrus.Errorln(err)
		status = InternalServerError
	}

	msg := ResponseBody{
		Status: status,
	}
	msg.Status.Message = []string{
		err.Error(),
	}
	return c.Status(status.Code).JSON(msg)
}

// validationError responds 400 with the validator's message
func validationError(c *fiber.Ctx, err error) error {
	msg := ResponseBody{
		Status: BadRequest,
	}
	msg.Status.Message = []string{
		err.Error(),
	}
	return c.Status(fiber.StatusBadRequest).JSON(msg)
}
