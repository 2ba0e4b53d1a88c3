package session

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gdbrns/go-whatsapp-web-bridge/internal/bridge"
	typWhatsApp "github.com/gdbrns/go-whatsapp-web-bridge/internal/types"
	"github.com/gdbrns/go-whatsapp-web-bridge/pkg/log"
	"github.com/gdbrns/go-whatsapp-web-bridge/pkg/router"
	pkgWhatsApp "github.com/gdbrns/go-whatsapp-web-bridge/pkg/whatsapp"
)

// Status
// @Summary     Session Status
// @Description Lifecycle and authentication state of the WhatsApp Web session
// @Tags        Session
// @Produce     json
// @Security    BearerAuth
// @Success     200
// @Failure     503 {object} router.ResError
// @Router      /session/status [get]
func Status(c *fiber.Ctx) error {
	cl := bridge.Client()
	if cl == nil {
		return bridge.ResponseNotInitialized(c)
	}

	data := map[string]interface{}{
		"session_id": bridge.SessionID(),
		"state":      cl.State(),
		"auth_state": cl.AuthState(),
	}
	if cl.State() == pkgWhatsApp.SessionReady {
		waState, err := cl.GetState(bridge.Context(c))
		if err != nil {
			log.Operation(c, "Status").WithError(err).Warn("Failed to read connection state")
		} else {
			data["wa_state"] = waState
		}
	}

	return router.ResponseSuccessWithData(c, "Success get session status", data)
}

// QR
// @Summary     Current QR Code
// @Description Latest QR code as PNG, or as text with format=text
// @Tags        Session
// @Produce     png
// @Produce     json
// @Security    BearerAuth
// @Param       format query string false "png or text"
// @Success     200
// @Failure     404 {object} router.ResError
// @Router      /session/qr [get]
func QR(c *fiber.Ctx) error {
	cl := bridge.Client()
	if cl == nil {
		return bridge.ResponseNotInitialized(c)
	}

	code := cl.LastQR()
	if code == "" {
		return router.ResponseNotFound(c, "QR code not available")
	}

	if c.Query("format") == "text" {
		return router.ResponseSuccessWithData(c, "Success get QR code", map[string]interface{}{"qr": code})
	}

	png, err := pkgWhatsApp.QRPNG(code)
	if err != nil {
		log.Operation(c, "QR").WithError(err).Error("Failed to render QR code")
		return bridge.ResponseError(c, err)
	}

	return router.ResponseSuccessWithImage(c, "image/png", png)
}

// PairingCode
// @Summary     Current Pairing Code
// @Description Latest phone-number pairing code
// @Tags        Session
// @Produce     json
// @Security    BearerAuth
// @Success     200
// @Failure     404 {object} router.ResError
// @Router      /session/code [get]
func PairingCode(c *fiber.Ctx) error {
	cl := bridge.Client()
	if cl == nil {
		return bridge.ResponseNotInitialized(c)
	}

	code := cl.LastPairingCode()
	if code == "" {
		return router.ResponseNotFound(c, "pairing code not available")
	}

	return router.ResponseSuccessWithData(c, "Success get pairing code", map[string]interface{}{"code": code})
}

// Info
// @Summary     Account Info
// @Description Info about the logged-in account
// @Tags        Session
// @Produce     json
// @Security    BearerAuth
// @Success     200
// @Failure     503 {object} router.ResError
// @Router      /session/info [get]
func Info(c *fiber.Ctx) error {
	cl := bridge.Client()
	if cl == nil {
		return bridge.ResponseNotInitialized(c)
	}

	info := cl.Info()
	if info == nil {
		return bridge.ResponseError(c, pkgWhatsApp.ErrBridgeNotReady)
	}

	return router.ResponseSuccessWithData(c, "Success get session info", info)
}

// Version
// @Summary     WhatsApp Web Version
// @Description Version running in the page and the latest known release
// @Tags        Session
// @Produce     json
// @Security    BearerAuth
// @Success     200
// @Router      /session/version [get]
func Version(c *fiber.Ctx) error {
	cl := bridge.Client()
	if cl == nil {
		return bridge.ResponseNotInitialized(c)
	}

	data := map[string]interface{}{"status": cl.VersionStatus()}
	if cl.State() == pkgWhatsApp.SessionReady {
		version, err := cl.GetWWebVersion(bridge.Context(c))
		if err != nil {
			log.Operation(c, "Version").WithError(err).Warn("Failed to read page version")
		} else {
			data["version"] = version
		}
	}

	return router.ResponseSuccessWithData(c, "Success get version", data)
}

// Screenshot
// @Summary     Page Screenshot
// @Description PNG screenshot of the WhatsApp Web page
// @Tags        Session
// @Produce     png
// @Security    BearerAuth
// @Success     200
// @Failure     503 {object} router.ResError
// @Router      /session/screenshot [get]
func Screenshot(c *fiber.Ctx) error {
	cl := bridge.Client()
	if cl == nil {
		return bridge.ResponseNotInitialized(c)
	}

	png, err := cl.Screenshot(bridge.Context(c))
	if err != nil {
		log.Operation(c, "Screenshot").WithError(err).Error("Failed to take screenshot")
		return bridge.ResponseError(c, err)
	}

	return router.ResponseSuccessWithImage(c, "image/png", png)
}

// Logout
// @Summary     Logout
// @Description Log the account out and clear persisted auth data
// @Tags        Session
// @Produce     json
// @Security    BearerAuth
// @Success     200
// @Failure     503 {object} router.ResError
// @Router      /session/logout [post]
func Logout(c *fiber.Ctx) error {
	cl := bridge.Client()
	if cl == nil {
		return bridge.ResponseNotInitialized(c)
	}

	if err := cl.Logout(bridge.Context(c)); err != nil {
		log.Operation(c, "Logout").WithError(err).Error("Failed to logout")
		return bridge.ResponseError(c, err)
	}

	log.Operation(c, "Logout").Info("Session logged out")

	return router.ResponseSuccess(c, "Success logout")
}

// Reset
// @Summary     Reset Connection
// @Description Force the WhatsApp Web socket to reconnect
// @Tags        Session
// @Produce     json
// @Security    BearerAuth
// @Success     200
// @Failure     503 {object} router.ResError
// @Router      /session/reset [post]
func Reset(c *fiber.Ctx) error {
	cl := bridge.Client()
	if cl == nil {
		return bridge.ResponseNotInitialized(c)
	}

	if err := cl.ResetState(bridge.Context(c)); err != nil {
		log.Operation(c, "Reset").WithError(err).Error("Failed to reset state")
		return bridge.ResponseError(c, err)
	}

	return router.ResponseSuccess(c, "Success reset state")
}

// Presence
// @Summary     Set Presence
// @Description Mark the account available or unavailable
// @Tags        Session
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       body body typWhatsApp.RequestPresence true "Presence"
// @Success     200
// @Failure     400 {object} router.ResError
// @Failure     503 {object} router.ResError
// @Router      /session/presence [post]
func Presence(c *fiber.Ctx) error {
	cl := bridge.Client()
	if cl == nil {
		return bridge.ResponseNotInitialized(c)
	}

	var req typWhatsApp.RequestPresence
	if err := c.BodyParser(&req); err != nil {
		return router.ResponseBadRequest(c, "Failed parse body request")
	}

	var err error
	if req.Available {
		err = cl.SendPresenceAvailable(bridge.Context(c))
	} else {
		err = cl.SendPresenceUnavailable(bridge.Context(c))
	}
	if err != nil {
		log.Operation(c, "Presence").WithField("available", req.Available).WithError(err).Error("Failed to send presence")
		return bridge.ResponseError(c, err)
	}

	return router.ResponseSuccess(c, "Success set presence")
}
