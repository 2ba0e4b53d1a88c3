package chat

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/gdbrns/go-whatsapp-web-bridge/internal/bridge"
	typWhatsApp "github.com/gdbrns/go-whatsapp-web-bridge/internal/types"
	"github.com/gdbrns/go-whatsapp-web-bridge/pkg/log"
	"github.com/gdbrns/go-whatsapp-web-bridge/pkg/router"
	pkgWhatsApp "github.com/gdbrns/go-whatsapp-web-bridge/pkg/whatsapp"
)

// List
// @Summary     List Chats
// @Tags        Chats
// @Produce     json
// @Security    BearerAuth
// @Success     200
// @Failure     503 {object} router.ResError
// @Router      /chats [get]
func List(c *fiber.Ctx) error {
	cl := bridge.Client()
	if cl == nil {
		return bridge.ResponseNotInitialized(c)
	}

	chats, err := cl.GetChats(bridge.Context(c))
	if err != nil {
		log.Operation(c, "GetChats").WithError(err).Error("Failed to get chats")
		return bridge.ResponseError(c, err)
	}

	return router.ResponseSuccessWithData(c, "Success get chats", chats)
}

// Get
// @Summary     Get Chat
// @Tags        Chats
// @Produce     json
// @Security    BearerAuth
// @Param       chat_id path string true "Chat ID"
// @Success     200
// @Failure     404 {object} router.ResError
// @Router      /chats/{chat_id} [get]
func Get(c *fiber.Ctx) error {
	cl := bridge.Client()
	if cl == nil {
		return bridge.ResponseNotInitialized(c)
	}

	chatID := c.Params("chat_id")
	chat, err := cl.GetChatByID(bridge.Context(c), chatID)
	if err != nil {
		log.Operation(c, "GetChat").WithField("chat_id", chatID).WithError(err).Error("Failed to get chat")
		return bridge.ResponseError(c, err)
	}

	return router.ResponseSuccessWithData(c, "Success get chat", chat)
}

// Labels
// @Summary     Chat Labels
// @Tags        Chats
// @Produce     json
// @Security    BearerAuth
// @Param       chat_id path string true "Chat ID"
// @Success     200
// @Router      /chats/{chat_id}/labels [get]
func Labels(c *fiber.Ctx) error {
	cl := bridge.Client()
	if cl == nil {
		return bridge.ResponseNotInitialized(c)
	}

	chatID := c.Params("chat_id")
	labels, err := cl.GetChatLabels(bridge.Context(c), chatID)
	if err != nil {
		log.Operation(c, "GetChatLabels").WithField("chat_id", chatID).WithError(err).Error("Failed to get chat labels")
		return bridge.ResponseError(c, err)
	}

	return router.ResponseSuccessWithData(c, "Success get chat labels", labels)
}

// toggle runs a chat action that reports the resulting flag.
func toggle(c *fiber.Ctx, op, field, message string, fn func(ctx context.Context, cl *pkgWhatsApp.Client, chatID string) (bool, error)) error {
	cl := bridge.Client()
	if cl == nil {
		return bridge.ResponseNotInitialized(c)
	}

	chatID := c.Params("chat_id")
	result, err := fn(bridge.Context(c), cl, chatID)
	if err != nil {
		log.Operation(c, op).WithField("chat_id", chatID).WithError(err).Error("Chat action failed")
		return bridge.ResponseError(c, err)
	}

	log.Operation(c, op).WithField("chat_id", chatID).WithField(field, result).Info("Chat action completed")

	return router.ResponseSuccessWithData(c, message, map[string]interface{}{field: result})
}

// action runs a chat action with no result.
func action(c *fiber.Ctx, op, message string, fn func(ctx context.Context, cl *pkgWhatsApp.Client, chatID string) error) error {
	cl := bridge.Client()
	if cl == nil {
		return bridge.ResponseNotInitialized(c)
	}

	chatID := c.Params("chat_id")
	if err := fn(bridge.Context(c), cl, chatID); err != nil {
		log.Operation(c, op).WithField("chat_id", chatID).WithError(err).Error("Chat action failed")
		return bridge.ResponseError(c, err)
	}

	log.Operation(c, op).WithField("chat_id", chatID).Info("Chat action completed")

	return router.ResponseSuccess(c, message)
}

// SendSeen
// @Summary     Mark Chat Seen
// @Tags        Chats
// @Produce     json
// @Security    BearerAuth
// @Param       chat_id path string true "Chat ID"
// @Success     200
// @Router      /chats/{chat_id}/seen [post]
func SendSeen(c *fiber.Ctx) error {
	return toggle(c, "SendSeen", "seen", "Success mark chat seen", func(ctx context.Context, cl *pkgWhatsApp.Client, chatID string) (bool, error) {
		return cl.SendSeen(ctx, chatID)
	})
}

// Archive
// @Summary     Archive Chat
// @Tags        Chats
// @Produce     json
// @Security    BearerAuth
// @Param       chat_id path string true "Chat ID"
// @Success     200
// @Router      /chats/{chat_id}/archive [post]
func Archive(c *fiber.Ctx) error {
	return toggle(c, "ArchiveChat", "archived", "Success archive chat", func(ctx context.Context, cl *pkgWhatsApp.Client, chatID string) (bool, error) {
		return cl.ArchiveChat(ctx, chatID)
	})
}

// Unarchive
// @Summary     Unarchive Chat
// @Tags        Chats
// @Produce     json
// @Security    BearerAuth
// @Param       chat_id path string true "Chat ID"
// @Success     200
// @Router      /chats/{chat_id}/unarchive [post]
func Unarchive(c *fiber.Ctx) error {
	return toggle(c, "UnarchiveChat", "archived", "Success unarchive chat", func(ctx context.Context, cl *pkgWhatsApp.Client, chatID string) (bool, error) {
		return cl.UnarchiveChat(ctx, chatID)
	})
}

// Pin
// @Summary     Pin Chat
// @Description Pin a chat. pinned is false when the pin limit is reached.
// @Tags        Chats
// @Produce     json
// @Security    BearerAuth
// @Param       chat_id path string true "Chat ID"
// @Success     200
// @Router      /chats/{chat_id}/pin [post]
func Pin(c *fiber.Ctx) error {
	return toggle(c, "PinChat", "pinned", "Success pin chat", func(ctx context.Context, cl *pkgWhatsApp.Client, chatID string) (bool, error) {
		return cl.PinChat(ctx, chatID)
	})
}

// Unpin
// @Summary     Unpin Chat
// @Tags        Chats
// @Produce     json
// @Security    BearerAuth
// @Param       chat_id path string true "Chat ID"
// @Success     200
// @Router      /chats/{chat_id}/unpin [post]
func Unpin(c *fiber.Ctx) error {
	return toggle(c, "UnpinChat", "pinned", "Success unpin chat", func(ctx context.Context, cl *pkgWhatsApp.Client, chatID string) (bool, error) {
		return cl.UnpinChat(ctx, chatID)
	})
}

// Mute
// @Summary     Mute Chat
// @Tags        Chats
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       chat_id path string true "Chat ID"
// @Param       body body typWhatsApp.RequestMuteChat false "Mute until (unix seconds, 0 = forever)"
// @Success     200
// @Failure     400 {object} router.ResError
// @Router      /chats/{chat_id}/mute [post]
func Mute(c *fiber.Ctx) error {
	var req typWhatsApp.RequestMuteChat
	_ = c.BodyParser(&req)

	var until time.Time
	if req.Until > 0 {
		until = time.Unix(req.Until, 0)
	}

	return action(c, "MuteChat", "Success mute chat", func(ctx context.Context, cl *pkgWhatsApp.Client, chatID string) error {
		return cl.MuteChat(ctx, chatID, until)
	})
}

// Unmute
// @Summary     Unmute Chat
// @Tags        Chats
// @Produce     json
// @Security    BearerAuth
// @Param       chat_id path string true "Chat ID"
// @Success     200
// @Router      /chats/{chat_id}/unmute [post]
func Unmute(c *fiber.Ctx) error {
	return action(c, "UnmuteChat", "Success unmute chat", func(ctx context.Context, cl *pkgWhatsApp.Client, chatID string) error {
		return cl.UnmuteChat(ctx, chatID)
	})
}

// MarkUnread
// @Summary     Mark Chat Unread
// @Tags        Chats
// @Produce     json
// @Security    BearerAuth
// @Param       chat_id path string true "Chat ID"
// @Success     200
// @Router      /chats/{chat_id}/unread [post]
func MarkUnread(c *fiber.Ctx) error {
	return action(c, "MarkChatUnread", "Success mark chat unread", func(ctx context.Context, cl *pkgWhatsApp.Client, chatID string) error {
		return cl.MarkChatUnread(ctx, chatID)
	})
}
