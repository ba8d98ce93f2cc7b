package http

import (
	"claritas/internal/domain"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// GetCapture func
// GetCapture godoc
// @Summary Capture state
// @Description Current state of the recorder, task and last error
// @Tags Capture
// @Produce json
// @Success 200 {object} ResponseBody
// @Router /v1/api/capture [get]
func (hdl *HTTPHandler) GetCapture(c *fiber.Ctx) error {
	return hdl.captureResponse(c, nil)
}

// StartCapture func
// StartCapture godoc
// @Summary Start recording
// @Description Acquires the microphone and starts recording the task
// @Tags Capture
// @Accept application/json
// @Produce json
// @param StartCapture body TaskRequest true "StartCapture"
// @Success 200 {object} ResponseBody
// @Failure 409 {object} ResponseBody
// @Router /v1/api/capture/start [post]
func (hdl *HTTPHandler) StartCapture(c *fiber.Ctx) error {
	var request TaskRequest
	if err := c.BodyParser(&request); err != nil {
		logrus.Errorln(err)
		return c.Status(fiber.StatusBadRequest).JSON(ResponseBody{Status: BadRequest})
	}
	if err := hdl.validator.ValidateStruct(request); err != nil {
		return validationError(c, err)
	}

	if err := hdl.capture.Start(c.UserContext(), request.ToDomain()); err != nil {
		return errorResponse(c, err)
	}
	return hdl.captureResponse(c, nil)
}

// PushChunk func
// PushChunk godoc
// @Summary Push audio
// @Description Appends raw audio bytes to the active recording. The Content-Type header names the audio format.
// @Tags Capture
// @Accept octet-stream
// @Produce json
// @Success 200 {object} ResponseBody
// @Failure 409 {object} ResponseBody
// @Router /v1/api/capture/chunk [post]
func (hdl *HTTPHandler) PushChunk(c *fiber.Ctx) error {
	if hdl.chunks == nil {
		return c.Status(fiber.StatusNotFound).JSON(ResponseBody{Status: NotFound})
	}
	body := c.Body()
	if len(body) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(ResponseBody{Status: BadRequest})
	}

	mimeType := c.Get(fiber.HeaderContentType)
	if mimeType == fiber.MIMEOctetStream {
		mimeType = ""
	}
	if err := hdl.chunks.Push(c.UserContext(), body, mimeType); err != nil {
		return errorResponse(c, err)
	}
	return hdl.captureResponse(c, nil)
}

// NextSentence func
// NextSentence godoc
// @Summary Next sentence
// @Description Advances a sentence-reading task. After the last sentence the recording is stopped and submitted.
// @Tags Capture
// @Produce json
// @Success 200 {object} ResponseBody
// @Failure 409 {object} ResponseBody
// @Router /v1/api/capture/next [post]
func (hdl *HTTPHandler) NextSentence(c *fiber.Ctx) error {
	session, err := hdl.capture.NextSentence(c.UserContext())
	if err != nil {
		return errorResponse(c, err)
	}
	return hdl.captureResponse(c, session)
}

// StopCapture func
// StopCapture godoc
// @Summary Stop recording
// @Description Releases the microphone and submits the recording for analysis
// @Tags Capture
// @Produce json
// @Success 200 {object} ResponseBody
// @Failure 422 {object} ResponseBody
// @Failure 502 {object} ResponseBody
// @Router /v1/api/capture/stop [post]
func (hdl *HTTPHandler) StopCapture(c *fiber.Ctx) error {
	session, err := hdl.capture.Stop(c.UserContext())
	if err != nil {
		return errorResponse(c, err)
	}
	return hdl.captureResponse(c, session)
}

// CancelCapture func
// CancelCapture godoc
// @Summary Cancel recording
// @Description Discards the recording and returns to idle
// @Tags Capture
// @Produce json
// @Success 200 {object} ResponseBody
// @Failure 409 {object} ResponseBody
// @Router /v1/api/capture/cancel [post]
func (hdl *HTTPHandler) CancelCapture(c *fiber.Ctx) error {
	if err := hdl.capture.Cancel(c.UserContext()); err != nil {
		return errorResponse(c, err)
	}
	return hdl.captureResponse(c, nil)
}

func (hdl *HTTPHandler) captureResponse(c *fiber.Ctx, session *domain.Session) error {
	return c.Status(fiber.StatusOK).JSON(ResponseBody{
		Status: Success,
		Data: CaptureResponse{
			Capture: hdl.capture.Snapshot(),
			Session: session,
		},
	})
}
