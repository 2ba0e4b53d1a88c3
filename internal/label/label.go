package label

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gdbrns/go-whatsapp-web-bridge/internal/bridge"
	typWhatsApp "github.com/gdbrns/go-whatsapp-web-bridge/internal/types"
	"github.com/gdbrns/go-whatsapp-web-bridge/pkg/log"
	"github.com/gdbrns/go-whatsapp-web-bridge/pkg/router"
)

// List
// @Summary     List Labels
// @Description Business accounts only
// @Tags        Labels
// @Produce     json
// @Security    BearerAuth
// @Success     200
// @Router      /labels [get]
func List(c *fiber.Ctx) error {
	cl := bridge.Client()
	if cl == nil {
		return bridge.ResponseNotInitialized(c)
	}

	labels, err := cl.GetLabels(bridge.Context(c))
	if err != nil {
		log.Operation(c, "GetLabels").WithError(err).Error("Failed to get labels")
		return bridge.ResponseError(c, err)
	}

	return router.ResponseSuccessWithData(c, "Success get labels", labels)
}

// Get
// @Summary     Get Label
// @Tags        Labels
// @Produce     json
// @Security    BearerAuth
// @Param       label_id path string true "Label ID"
// @Success     200
// @Failure     404 {object} router.ResError
// @Router      /labels/{label_id} [get]
func Get(c *fiber.Ctx) error {
	cl := bridge.Client()
	if cl == nil {
		return bridge.ResponseNotInitialized(c)
	}

	labelID := c.Params("label_id")
	label, err := cl.GetLabelByID(bridge.Context(c), labelID)
	if err != nil {
		log.Operation(c, "GetLabel").WithField("label_id", labelID).WithError(err).Error("Failed to get label")
		return bridge.ResponseError(c, err)
	}

	return router.ResponseSuccessWithData(c, "Success get label", label)
}

// Chats
// @Summary     Chats With Label
// @Tags        Labels
// @Produce     json
// @Security    BearerAuth
// @Param       label_id path string true "Label ID"
// @Success     200
// @Router      /labels/{label_id}/chats [get]
func Chats(c *fiber.Ctx) error {
	cl := bridge.Client()
	if cl == nil {
		return bridge.ResponseNotInitialized(c)
	}

	labelID := c.Params("label_id")
	chats, err := cl.GetChatsByLabelID(bridge.Context(c), labelID)
	if err != nil {
		log.Operation(c, "GetChatsByLabelID").WithField("label_id", labelID).WithError(err).Error("Failed to get chats by label")
		return bridge.ResponseError(c, err)
	}

	return router.ResponseSuccessWithData(c, "Success get chats by label", chats)
}

// Apply
// @Summary     Apply Labels
// @Description Set exactly the given labels on each chat. Business accounts only.
// @Tags        Labels
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       body body typWhatsApp.RequestApplyLabels true "Labels and chats"
// @Success     200
// @Failure     400 {object} router.ResError
// @Failure     403 {object} router.ResError
// @Router      /labels/apply [post]
func Apply(c *fiber.Ctx) error {
	var req typWhatsApp.RequestApplyLabels
	if err := c.BodyParser(&req); err != nil {
		return router.ResponseBadRequest(c, "Failed parse body request")
	}
	if len(req.ChatIDs) == 0 {
		return router.ResponseBadRequest(c, "chat_ids is required")
	}

	cl := bridge.Client()
	if cl == nil {
		return bridge.ResponseNotInitialized(c)
	}

	if err := cl.AddOrRemoveLabels(bridge.Context(c), req.LabelIDs, req.ChatIDs); err != nil {
		log.Operation(c, "AddOrRemoveLabels").WithError(err).Error("Failed to apply labels")
		return bridge.ResponseError(c, err)
	}

	return router.ResponseSuccess(c, "Success apply labels")
}
