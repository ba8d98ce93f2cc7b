package http

import (
	"github.com/gofiber/fiber/v2"
)

// GenerateReport func
// GenerateReport godoc
// @Summary Clinical report
// @Description Asks the language model for a clinical narrative over the session history
// @Tags Report
// @Produce json
// @Success 200 {object} ResponseBody
// @Failure 404 {object} ResponseBody
// @Failure 502 {object} ResponseBody
// @Router /v1/api/report [post]
func (hdl *HTTPHandler) GenerateReport(c *fiber.Ctx) error {
	report, err := hdl.reports.Generate(c.UserContext())
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(ResponseBody{Status: Success, Data: report})
}
