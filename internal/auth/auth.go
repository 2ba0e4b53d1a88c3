package auth

import (
	"github.com/gofiber/fiber/v2"

	typAuth "github.com/gdbrns/go-whatsapp-web-bridge/internal/auth/types"
	"github.com/gdbrns/go-whatsapp-web-bridge/internal/bridge"
	pkgAuth "github.com/gdbrns/go-whatsapp-web-bridge/pkg/auth"
	"github.com/gdbrns/go-whatsapp-web-bridge/pkg/log"
	"github.com/gdbrns/go-whatsapp-web-bridge/pkg/router"
)

// IssueToken
// @Summary     Issue Session Token
// @Description Issue a JWT for the session served by this process
// @Tags        Auth
// @Accept      json
// @Produce     json
// @Param       X-Admin-Secret header string true "Admin secret"
// @Param       body body typAuth.RequestToken false "Session (defaults to the configured one)"
// @Success     201 {object} typAuth.ResponseToken
// @Failure     400 {object} router.ResError
// @Failure     401 {object} router.ResError
// @Failure     500 {object} router.ResError
// @Router      /auth/token [post]
func IssueToken(c *fiber.Ctx) error {
	sessionID := bridge.SessionID()

	var req typAuth.RequestToken
	_ = c.BodyParser(&req)
	if req.SessionID != "" && req.SessionID != sessionID {
		log.Operation(c, "IssueToken").WithField("session_id", req.SessionID).Warn("Unknown session requested")
		return router.ResponseBadRequest(c, "unknown session_id")
	}

	token, err := pkgAuth.GenerateSessionToken(sessionID)
	if err != nil {
		log.Operation(c, "IssueToken").WithError(err).Error("Failed to generate token")
		return router.ResponseInternalError(c, err.Error())
	}

	log.Operation(c, "IssueToken").WithField("session_id", sessionID).Info("Session token issued")

	return router.ResponseCreatedWithData(c, "Success issue token", typAuth.ResponseToken{
		SessionID: sessionID,
		Token:     token,
		ExpiresIn: int64(pkgAuth.TokenTTL.Seconds()),
	})
}
