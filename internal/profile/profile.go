package profile

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gdbrns/go-whatsapp-web-bridge/internal/bridge"
	typWhatsApp "github.com/gdbrns/go-whatsapp-web-bridge/internal/types"
	"github.com/gdbrns/go-whatsapp-web-bridge/pkg/log"
	"github.com/gdbrns/go-whatsapp-web-bridge/pkg/router"
)

// SetStatus
// @Summary     Set About Text
// @Tags        Profile
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       body body typWhatsApp.RequestProfileStatus true "Status"
// @Success     200
// @Router      /profile/status [post]
func SetStatus(c *fiber.Ctx) error {
	var req typWhatsApp.RequestProfileStatus
	if err := c.BodyParser(&req); err != nil {
		return router.ResponseBadRequest(c, "Failed parse body request")
	}

	cl := bridge.Client()
	if cl == nil {
		return bridge.ResponseNotInitialized(c)
	}

	if err := cl.SetStatus(bridge.Context(c), req.Status); err != nil {
		log.Operation(c, "SetStatus").WithError(err).Error("Failed to set status")
		return bridge.ResponseError(c, err)
	}

	return router.ResponseSuccess(c, "Success set status")
}

// SetName
// @Summary     Set Display Name
// @Tags        Profile
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       body body typWhatsApp.RequestProfileName true "Name"
// @Success     200
// @Router      /profile/name [post]
func SetName(c *fiber.Ctx) error {
	var req typWhatsApp.RequestProfileName
	if err := c.BodyParser(&req); err != nil {
		return router.ResponseBadRequest(c, "Failed parse body request")
	}

	cl := bridge.Client()
	if cl == nil {
		return bridge.ResponseNotInitialized(c)
	}

	ok, err := cl.SetDisplayName(bridge.Context(c), req.Name)
	if err != nil {
		log.Operation(c, "SetDisplayName").WithError(err).Error("Failed to set display name")
		return bridge.ResponseError(c, err)
	}

	return router.ResponseSuccessWithData(c, "Success set display name", map[string]interface{}{"updated": ok})
}

// SetPicture
// @Summary     Set Profile Picture
// @Tags        Profile
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       body body typWhatsApp.RequestProfilePicture true "Image"
// @Success     200
// @Failure     400 {object} router.ResError
// @Router      /profile/picture [post]
func SetPicture(c *fiber.Ctx) error {
	var req typWhatsApp.RequestProfilePicture
	if err := c.BodyParser(&req); err != nil {
		return router.ResponseBadRequest(c, "Failed parse body request")
	}
	if req.Media == nil {
		return router.ResponseBadRequest(c, "media is required")
	}

	cl := bridge.Client()
	if cl == nil {
		return bridge.ResponseNotInitialized(c)
	}

	ok, err := cl.SetProfilePicture(bridge.Context(c), req.Media)
	if err != nil {
		log.Operation(c, "SetProfilePicture").WithError(err).Error("Failed to set profile picture")
		return bridge.ResponseError(c, err)
	}

	return router.ResponseSuccessWithData(c, "Success set profile picture", map[string]interface{}{"updated": ok})
}

// DeletePicture
// @Summary     Delete Profile Picture
// @Tags        Profile
// @Produce     json
// @Security    BearerAuth
// @Success     200
// @Router      /profile/picture [delete]
func DeletePicture(c *fiber.Ctx) error {
	cl := bridge.Client()
	if cl == nil {
		return bridge.ResponseNotInitialized(c)
	}

	ok, err := cl.DeleteProfilePicture(bridge.Context(c))
	if err != nil {
		log.Operation(c, "DeleteProfilePicture").WithError(err).Error("Failed to delete profile picture")
		return bridge.ResponseError(c, err)
	}

	return router.ResponseSuccessWithData(c, "Success delete profile picture", map[string]interface{}{"deleted": ok})
}
