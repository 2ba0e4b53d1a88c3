package groups

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gdbrns/go-whatsapp-web-bridge/internal/bridge"
	typWhatsApp "github.com/gdbrns/go-whatsapp-web-bridge/internal/types"
	"github.com/gdbrns/go-whatsapp-web-bridge/pkg/log"
	"github.com/gdbrns/go-whatsapp-web-bridge/pkg/router"
	wa "github.com/gdbrns/go-whatsapp-web-bridge/pkg/whatsapp/types"
)

// Create
// @Summary     Create Group
// @Description Create a group. Participants that could not be added are reported with their error code.
// @Tags        Groups
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       body body typWhatsApp.RequestCreateGroup true "Group"
// @Success     200
// @Failure     400 {object} router.ResError
// @Router      /groups [post]
func Create(c *fiber.Ctx) error {
	var req typWhatsApp.RequestCreateGroup
	if err := c.BodyParser(&req); err != nil {
		log.Operation(c, "CreateGroup").Warn("Failed to parse body request")
		return router.ResponseBadRequest(c, "Failed parse body request")
	}

	cl := bridge.Client()
	if cl == nil {
		return bridge.ResponseNotInitialized(c)
	}

	log.Operation(c, "CreateGroup").WithField("participants", len(req.Participants)).Info("Creating group")

	res, err := cl.CreateGroup(bridge.Context(c), req.Name, req.Participants)
	if err != nil {
		log.Operation(c, "CreateGroup").WithError(err).Error("Failed to create group")
		return bridge.ResponseError(c, err)
	}

	log.Operation(c, "CreateGroup").WithField("group_id", res.GID.String()).WithField("missing", len(res.MissingParticipants)).Info("Group created successfully")

	return router.ResponseSuccessWithData(c, "Success create group", res)
}

// Get
// @Summary     Group Metadata
// @Tags        Groups
// @Produce     json
// @Security    BearerAuth
// @Param       group_id path string true "Group ID"
// @Success     200
// @Failure     404 {object} router.ResError
// @Router      /groups/{group_id} [get]
func Get(c *fiber.Ctx) error {
	cl := bridge.Client()
	if cl == nil {
		return bridge.ResponseNotInitialized(c)
	}

	groupID := c.Params("group_id")
	meta, err := cl.GroupMetadata(bridge.Context(c), groupID)
	if err != nil {
		log.Operation(c, "GroupMetadata").WithField("group_id", groupID).WithError(err).Error("Failed to get group metadata")
		return bridge.ResponseError(c, err)
	}

	return router.ResponseSuccessWithData(c, "Success get group", meta)
}

// InviteInfo
// @Summary     Invite Info
// @Tags        Groups
// @Produce     json
// @Security    BearerAuth
// @Param       code path string true "Invite code"
// @Success     200
// @Failure     400 {object} router.ResError
// @Router      /groups/invites/{code} [get]
func InviteInfo(c *fiber.Ctx) error {
	cl := bridge.Client()
	if cl == nil {
		return bridge.ResponseNotInitialized(c)
	}

	info, err := cl.GetInviteInfo(bridge.Context(c), c.Params("code"))
	if err != nil {
		log.Operation(c, "GetInviteInfo").WithError(err).Error("Failed to get invite info")
		return bridge.ResponseError(c, err)
	}

	return router.ResponseSuccessWithData(c, "Success get invite info", info)
}

// AcceptInvite
// @Summary     Accept Invite
// @Tags        Groups
// @Produce     json
// @Security    BearerAuth
// @Param       code path string true "Invite code"
// @Success     200
// @Failure     400 {object} router.ResError
// @Router      /groups/invites/{code}/accept [post]
func AcceptInvite(c *fiber.Ctx) error {
	cl := bridge.Client()
	if cl == nil {
		return bridge.ResponseNotInitialized(c)
	}

	groupID, err := cl.AcceptInvite(bridge.Context(c), c.Params("code"))
	if err != nil {
		log.Operation(c, "AcceptInvite").WithError(err).Error("Failed to accept invite")
		return bridge.ResponseError(c, err)
	}

	log.Operation(c, "AcceptInvite").WithField("group_id", groupID).Info("Invite accepted")

	return router.ResponseSuccessWithData(c, "Success accept invite", map[string]interface{}{"group_id": groupID})
}

// AcceptInviteV4
// @Summary     Accept Private Invite
// @Description Accept an invite received as a message (groupInviteMessage)
// @Tags        Groups
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       body body wa.InviteV4 true "Invite"
// @Success     200
// @Failure     400 {object} router.ResError
// @Router      /groups/invites/v4/accept [post]
func AcceptInviteV4(c *fiber.Ctx) error {
	var invite wa.InviteV4
	if err := c.BodyParser(&invite); err != nil {
		return router.ResponseBadRequest(c, "Failed parse body request")
	}

	cl := bridge.Client()
	if cl == nil {
		return bridge.ResponseNotInitialized(c)
	}

	accepted, err := cl.AcceptGroupV4Invite(bridge.Context(c), &invite)
	if err != nil {
		log.Operation(c, "AcceptGroupV4Invite").WithField("group_id", invite.GroupID).WithError(err).Error("Failed to accept invite")
		return bridge.ResponseError(c, err)
	}

	return router.ResponseSuccessWithData(c, "Success accept invite", map[string]interface{}{"accepted": accepted})
}
