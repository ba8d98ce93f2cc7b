package http

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"claritas/internal/domain"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ListSessions func
// ListSessions godoc
// @Summary List sessions
// @Description Sessions in chronological order, optionally narrowed to a date range and task type
// @Tags Sessions
// @Produce json
// @param from query string false "first day (2006-01-02)"
// @param to query string false "last day (2006-01-02)"
// @param task_type query string false "picture-description or sentence-reading"
// @Success 200 {object} ResponseBody
// @Router /v1/api/sessions [get]
func (hdl *HTTPHandler) ListSessions(c *fiber.Ctx) error {
	condition := QuerySessionRequest{}
	if err := c.QueryParser(&condition); err != nil {
		logrus.Errorln(err)
		return c.Status(fiber.StatusBadRequest).JSON(ResponseBody{Status: BadRequest})
	}
	if err := hdl.validator.ValidateStruct(condition); err != nil {
		return validationError(c, err)
	}

	filter, err := condition.ToDomain(hdl.location)
	if err != nil {
		return validationError(c, err)
	}

	sessions := hdl.sessions.ListSessions(c.UserContext(), filter)
	total := int64(len(sessions))
	return c.Status(fiber.StatusOK).JSON(ResponseBody{
		Status:    Success,
		Data:      sessions,
		TotalItem: &total,
	})
}

// GetSession func
// GetSession godoc
// @Summary Get session
// @Description One recorded session by ID
// @Tags Sessions
// @Produce json
// @param id path string true "uuid"
// @Success 200 {object} ResponseBody
// @Failure 404 {object} ResponseBody
// @Router /v1/api/sessions/{id} [get]
func (hdl *HTTPHandler) GetSession(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		logrus.Errorln(err)
		return c.Status(fiber.StatusBadRequest).JSON(ResponseBody{Status: BadRequest})
	}

	session, ok := hdl.sessions.GetSession(c.UserContext(), id)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(ResponseBody{Status: NotFound})
	}
	return c.Status(fiber.StatusOK).JSON(ResponseBody{Status: Success, Data: session})
}

// GetDashboard func
// GetDashboard godoc
// @Summary Dashboard
// @Description Overall score, latest scores, per-metric trend and chart series
// @Tags Sessions
// @Produce json
// @Success 200 {object} ResponseBody
// @Router /v1/api/dashboard [get]
func (hdl *HTTPHandler) GetDashboard(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(ResponseBody{Status: Success, Data: hdl.sessions.Dashboard(c.UserContext())})
}

// UploadSession func
// UploadSession godoc
// @Summary Upload recording
// @Description Submits a recorded audio file for analysis and stores the resulting session
// @Tags Sessions
// @Accept multipart/form-data
// @Produce json
// @param file formData file true "audio recording"
// @param taskType formData string true "picture-description or sentence-reading"
// @param patient formData string true "patient name"
// @param caregiver formData string false "caregiver name"
// @param caregiverEmail formData string false "caregiver email"
// @param imageId formData string false "picture shown to the patient"
// @Success 200 {object} ResponseBody
// @Failure 422 {object} ResponseBody
// @Failure 502 {object} ResponseBody
// @Router /v1/api/sessions/upload [post]
func (hdl *HTTPHandler) UploadSession(c *fiber.Ctx) error {
	var request TaskRequest
	if err := c.BodyParser(&request); err != nil {
		logrus.Errorln(err)
		return c.Status(fiber.StatusBadRequest).JSON(ResponseBody{Status: BadRequest})
	}
	if err := hdl.validator.ValidateStruct(request); err != nil {
		return validationError(c, err)
	}

	payload, err := readAudioFile(c)
	if err != nil {
		return validationError(c, err)
	}

	session, err := hdl.capture.Upload(c.UserContext(), request.ToDomain(), payload)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(ResponseBody{Status: Success, Data: session})
}

// readAudioFile loads the multipart "file" field and settles its content type
func readAudioFile(c *fiber.Ctx) (domain.AudioPayload, error) {
	header, err := c.FormFile("file")
	if err != nil {
		return domain.AudioPayload{}, fmt.Errorf("file is required: %w", err)
	}
	file, err := header.Open()
	if err != nil {
		return domain.AudioPayload{}, err
	}
	defer file.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		return domain.AudioPayload{}, err
	}
	data := buf.Bytes()

	mimeType := header.Header.Get(fiber.HeaderContentType)
	if mimeType == "" || mimeType == fiber.MIMEOctetStream {
		mimeType = mimetype.Detect(data).String()
	}
	if !strings.HasPrefix(mimeType, "audio/") && !strings.HasPrefix(mimeType, "video/") {
		mimeType = domain.DefaultAudioMimeType
	}
	return domain.AudioPayload{
		Data:     data,
		MimeType: mimeType,
		Filename: header.Filename,
	}, nil
}
