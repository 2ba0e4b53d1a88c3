package message

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/gdbrns/go-whatsapp-web-bridge/internal/bridge"
	typWhatsApp "github.com/gdbrns/go-whatsapp-web-bridge/internal/types"
	"github.com/gdbrns/go-whatsapp-web-bridge/pkg/log"
	"github.com/gdbrns/go-whatsapp-web-bridge/pkg/router"
	pkgWhatsApp "github.com/gdbrns/go-whatsapp-web-bridge/pkg/whatsapp"
	wa "github.com/gdbrns/go-whatsapp-web-bridge/pkg/whatsapp/types"
)

// sendContent picks the content to send. Structured fields win over Content,
// and Content over Text.
func sendContent(req *typWhatsApp.RequestSendMessage) (interface{}, bool) {
	switch {
	case req.Media != nil:
		return req.Media, true
	case req.Location != nil:
		return req.Location, true
	case len(req.Contacts) > 0:
		return &wa.ContactCard{IDs: req.Contacts}, true
	case req.Content != "":
		return req.Content, true
	case strings.TrimSpace(req.Text) != "":
		return req.Text, true
	}
	return nil, false
}

func sendOptions(req *typWhatsApp.RequestSendMessage) *pkgWhatsApp.MessageSendOptions {
	opts := &pkgWhatsApp.MessageSendOptions{
		LinkPreview:         req.LinkPreview,
		SendSeen:            req.SendSeen,
		SendAudioAsVoice:    req.SendAudioAsVoice,
		SendVideoAsGif:      req.SendVideoAsGif,
		SendMediaAsSticker:  req.SendMediaAsSticker,
		SendMediaAsDocument: req.SendMediaAsDocument,
		IsViewOnce:          req.IsViewOnce,
		Caption:             req.Caption,
		QuotedMessageID:     req.QuotedMessageID,
		Mentions:            req.Mentions,
		Mimetype:            req.Mimetype,
		Filename:            req.Filename,
		Filesize:            req.Filesize,
	}
	if req.Sticker != nil {
		opts.Sticker = &pkgWhatsApp.StickerOptions{
			Name:        req.Sticker.Name,
			Author:      req.Sticker.Author,
			Categories:  req.Sticker.Categories,
			PackID:      req.Sticker.PackID,
			PackName:    req.Sticker.PackName,
			PackPublish: req.Sticker.PackPublish,
			PackEmail:   req.Sticker.PackEmail,
			PackWebsite: req.Sticker.PackWebsite,
			AndroidApp:  req.Sticker.AndroidApp,
			IOSApp:      req.Sticker.IOSApp,
			IsAvatar:    req.Sticker.IsAvatar,
		}
	}
	return opts
}

// Send
// @Summary     Send Message
// @Description Send text, media, a location or contact cards to a chat
// @Tags        Messages
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       body body typWhatsApp.RequestSendMessage true "Message"
// @Success     200
// @Failure     400 {object} router.ResError
// @Failure     503 {object} router.ResError
// @Router      /messages [post]
func Send(c *fiber.Ctx) error {
	var req typWhatsApp.RequestSendMessage
	if err := c.BodyParser(&req); err != nil {
		log.Operation(c, "SendMessage").Warn("Failed to parse body request")
		return router.ResponseBadRequest(c, "Failed parse body request")
	}

	if req.ChatID == "" {
		return router.ResponseBadRequest(c, "chat_id is required")
	}

	content, ok := sendContent(&req)
	if !ok {
		return router.ResponseBadRequest(c, "message content is required")
	}

	cl := bridge.Client()
	if cl == nil {
		return bridge.ResponseNotInitialized(c)
	}

	log.Operation(c, "SendMessage").WithField("chat_id", req.ChatID).Info("Sending message")

	msg, err := cl.SendMessage(bridge.Context(c), req.ChatID, content, sendOptions(&req))
	if err != nil {
		log.Operation(c, "SendMessage").WithField("chat_id", req.ChatID).WithError(err).Error("Failed to send message")
		return bridge.ResponseError(c, err)
	}

	log.Operation(c, "SendMessage").WithField("chat_id", req.ChatID).WithField("message_id", msg.ID.Serialized).Info("Message sent successfully")

	return router.ResponseSuccessWithData(c, "Success send message", msg)
}

// Search
// @Summary     Search Messages
// @Description Full-text message search
// @Tags        Messages
// @Produce     json
// @Security    BearerAuth
// @Param       q       query string true  "Query"
// @Param       chat_id query string false "Limit to one chat"
// @Param       page    query int    false "Page"
// @Param       limit   query int    false "Results per page"
// @Success     200
// @Failure     400 {object} router.ResError
// @Router      /messages/search [get]
func Search(c *fiber.Ctx) error {
	query := c.Query("q")
	if strings.TrimSpace(query) == "" {
		return router.ResponseBadRequest(c, "q is required")
	}

	cl := bridge.Client()
	if cl == nil {
		return bridge.ResponseNotInitialized(c)
	}

	messages, err := cl.SearchMessages(bridge.Context(c), query, pkgWhatsApp.SearchOptions{
		ChatID: c.Query("chat_id"),
		Page:   c.QueryInt("page", 1),
		Limit:  c.QueryInt("limit", 10),
	})
	if err != nil {
		log.Operation(c, "SearchMessages").WithError(err).Error("Failed to search messages")
		return bridge.ResponseError(c, err)
	}

	return router.ResponseSuccessWithData(c, "Success search messages", messages)
}

// Get
// @Summary     Get Message
// @Description Get a message by its serialized id
// @Tags        Messages
// @Produce     json
// @Security    BearerAuth
// @Param       message_id path string true "Message ID"
// @Success     200
// @Failure     404 {object} router.ResError
// @Router      /messages/{message_id} [get]
func Get(c *fiber.Ctx) error {
	cl := bridge.Client()
	if cl == nil {
		return bridge.ResponseNotInitialized(c)
	}

	messageID := c.Params("message_id")
	msg, err := cl.GetMessageByID(bridge.Context(c), messageID)
	if err != nil {
		log.Operation(c, "GetMessage").WithField("message_id", messageID).WithError(err).Error("Failed to get message")
		return bridge.ResponseError(c, err)
	}

	return router.ResponseSuccessWithData(c, "Success get message", msg)
}

// React
// @Summary     React To Message
// @Description React with an emoji; an empty emoji removes the reaction
// @Tags        Messages
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       message_id path string true "Message ID"
// @Param       body body typWhatsApp.RequestReact true "Reaction"
// @Success     200
// @Failure     400 {object} router.ResError
// @Router      /messages/{message_id}/react [post]
func React(c *fiber.Ctx) error {
	messageID := c.Params("message_id")

	var req typWhatsApp.RequestReact
	if err := c.BodyParser(&req); err != nil {
		log.Operation(c, "React").Warn("Failed to parse body request")
		return router.ResponseBadRequest(c, "Failed parse body request")
	}

	cl := bridge.Client()
	if cl == nil {
		return bridge.ResponseNotInitialized(c)
	}

	if err := cl.React(bridge.Context(c), messageID, req.Emoji); err != nil {
		log.Operation(c, "React").WithField("message_id", messageID).WithError(err).Error("Failed to react to message")
		return bridge.ResponseError(c, err)
	}

	log.Operation(c, "React").WithField("message_id", messageID).WithField("emoji", req.Emoji).Info("Reaction sent successfully")

	return router.ResponseSuccess(c, "Success react to message")
}
