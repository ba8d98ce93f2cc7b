package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// GetProfile func
// GetProfile godoc
// @Summary Current caregiver
// @Description The remembered caregiver profile
// @Tags Profile
// @Produce json
// @Success 200 {object} ResponseBody
// @Router /v1/api/profile [get]
func (hdl *HTTPHandler) GetProfile(c *fiber.Ctx) error {
	profile, ok := hdl.profiles.Current(c.UserContext())
	response := ProfileResponse{SignedIn: ok}
	if ok {
		response.Profile = &profile
	}
	return c.Status(fiber.StatusOK).JSON(ResponseBody{Status: Success, Data: response})
}

// SignIn func
// SignIn godoc
// @Summary Sign in
// @Description Stores the identity provider's profile of the caregiver
// @Tags Profile
// @Accept application/json
// @Produce json
// @param SignIn body ProfileRequest true "SignIn"
// @Success 200 {object} ResponseBody
// @Failure 400 {object} ResponseBody
// @Router /v1/api/profile [put]
func (hdl *HTTPHandler) SignIn(c *fiber.Ctx) error {
	var request ProfileRequest
	if err := c.BodyParser(&request); err != nil {
		logrus.Errorln(err)
		return c.Status(fiber.StatusBadRequest).JSON(ResponseBody{Status: BadRequest})
	}
	if err := hdl.validator.ValidateStruct(request); err != nil {
		return validationError(c, err)
	}

	profile := request.ToDomain()
	if err := hdl.profiles.SignIn(c.UserContext(), profile); err != nil {
		return errorResponse(c, err)
	}
	return hdl.GetProfile(c)
}

// SignOut func
// SignOut godoc
// @Summary Sign out
// @Description Forgets the caregiver profile
// @Tags Profile
// @Produce json
// @Success 200 {object} ResponseBody
// @Router /v1/api/profile [delete]
func (hdl *HTTPHandler) SignOut(c *fiber.Ctx) error {
	if err := hdl.profiles.SignOut(c.UserContext()); err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(ResponseBody{Status: Success, Data: ProfileResponse{}})
}
