package admin

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gdbrns/go-whatsapp-web-bridge/internal/bridge"
	typWhatsApp "github.com/gdbrns/go-whatsapp-web-bridge/internal/types"
	"github.com/gdbrns/go-whatsapp-web-bridge/pkg/log"
	"github.com/gdbrns/go-whatsapp-web-bridge/pkg/router"
	pkgWhatsApp "github.com/gdbrns/go-whatsapp-web-bridge/pkg/whatsapp"
)

// GetHealth
// @Summary     Health
// @Description Session lifecycle state and enabled subsystems (Admin only)
// @Tags        Admin
// @Produce     json
// @Param       X-Admin-Secret header string true "Admin secret key"
// @Success     200
// @Failure     401 {object} router.ResError
// @Router      /admin/health [get]
func GetHealth(c *fiber.Ctx) error {
	data := map[string]interface{}{
		"session_id": bridge.SessionID(),
		"webhooks":   bridge.WebhookEngine() != nil,
	}

	cl := bridge.Client()
	if cl == nil {
		data["state"] = "uninitialized"
		return router.ResponseSuccessWithData(c, "success", data)
	}

	data["state"] = cl.State()
	data["auth_state"] = cl.AuthState()
	data["ready"] = cl.State() == pkgWhatsApp.SessionReady

	return router.ResponseSuccessWithData(c, "success", data)
}

// GetWhatsAppWebVersion
// @Summary     WhatsApp Web Version Status
// @Description Last version refresh result (Admin only)
// @Tags        Admin
// @Produce     json
// @Param       X-Admin-Secret header string true "Admin secret key"
// @Success     200 {object} pkgWhatsApp.VersionStatus
// @Failure     401 {object} router.ResError
// @Router      /admin/whatsapp/version [get]
func GetWhatsAppWebVersion(c *fiber.Ctx) error {
	cl := bridge.Client()
	if cl == nil {
		return bridge.ResponseNotInitialized(c)
	}

	return router.ResponseSuccessWithData(c, "success", cl.VersionStatus())
}

// RefreshWhatsAppWebVersion
// @Summary     Refresh WhatsApp Web Version
// @Description Look up the latest WhatsApp Web release. Throttled unless force is set (Admin only).
// @Tags        Admin
// @Accept      json
// @Produce     json
// @Param       X-Admin-Secret header string true "Admin secret key"
// @Param       body body typWhatsApp.RequestRefreshVersion false "Options"
// @Success     200 {object} pkgWhatsApp.VersionStatus
// @Failure     401 {object} router.ResError
// @Failure     502 {object} router.ResError
// @Router      /admin/whatsapp/version/refresh [post]
func RefreshWhatsAppWebVersion(c *fiber.Ctx) error {
	cl := bridge.Client()
	if cl == nil {
		return bridge.ResponseNotInitialized(c)
	}

	var req typWhatsApp.RequestRefreshVersion
	_ = c.BodyParser(&req)
	if c.QueryBool("force", false) {
		req.Force = true
	}

	status, refreshed, err := cl.RefreshWWebVersion(bridge.Context(c), req.Force)
	if err != nil {
		log.Operation(c, "RefreshWWebVersion").WithField("force", req.Force).WithError(err).Error("WA Web version refresh failed")
		return router.ResponseBadGateway(c, err.Error())
	}

	log.Operation(c, "RefreshWWebVersion").WithField("latest", status.Latest).WithField("refreshed", refreshed).Info("WA Web version refresh completed")

	return router.ResponseSuccessWithData(c, "success", map[string]interface{}{
		"status":    status,
		"refreshed": refreshed,
	})
}
