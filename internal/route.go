package internal

import (
	"github.com/gofiber/fiber/v2"
	swagger "github.com/gofiber/swagger"

	"github.com/gdbrns/go-whatsapp-web-bridge/internal/bridge"
	"github.com/gdbrns/go-whatsapp-web-bridge/pkg/auth"
	"github.com/gdbrns/go-whatsapp-web-bridge/pkg/router"

	ctlAdmin "github.com/gdbrns/go-whatsapp-web-bridge/internal/admin"
	ctlAuth "github.com/gdbrns/go-whatsapp-web-bridge/internal/auth"
	ctlChat "github.com/gdbrns/go-whatsapp-web-bridge/internal/chat"
	ctlContact "github.com/gdbrns/go-whatsapp-web-bridge/internal/contact"
	ctlGroups "github.com/gdbrns/go-whatsapp-web-bridge/internal/groups"
	ctlIndex "github.com/gdbrns/go-whatsapp-web-bridge/internal/index"
	ctlLabel "github.com/gdbrns/go-whatsapp-web-bridge/internal/label"
	ctlMessage "github.com/gdbrns/go-whatsapp-web-bridge/internal/message"
	ctlProfile "github.com/gdbrns/go-whatsapp-web-bridge/internal/profile"
	ctlSession "github.com/gdbrns/go-whatsapp-web-bridge/internal/session"
	ctlWebhooks "github.com/gdbrns/go-whatsapp-web-bridge/internal/webhooks"
)

func Routes(app *fiber.App) {
	// Configure OpenAPI / Swagger
	specURL := router.BaseURL + "/docs/swagger.json"
	swaggerHandler := swagger.New(swagger.Config{
		URL: specURL,
	})

	// Route for Index
	// ---------------------------------------------
	if router.BaseURL == "" {
		app.Get("/", ctlIndex.Index)
	} else {
		app.Get(router.BaseURL, ctlIndex.Index)
		app.Get(router.BaseURL+"/", ctlIndex.Index)
	}

	// Route for OpenAPI / Swagger
	// ---------------------------------------------
	app.Get(router.BaseURL+"/docs/swagger.json", func(c *fiber.Ctx) error {
		return c.SendFile("docs/swagger.json")
	})
	app.Get(router.BaseURL+"/docs/swagger.yaml", func(c *fiber.Ctx) error {
		return c.SendFile("docs/swagger.yaml")
	})
	app.Get(router.BaseURL+"/docs/*", swaggerHandler)

	// ============================================================
	// ADMIN ROUTES (X-Admin-Secret authentication)
	// ============================================================
	adminMiddleware := auth.AdminAuth()

	app.Post(router.BaseURL+"/auth/token", adminMiddleware, ctlAuth.IssueToken)
	app.Get(router.BaseURL+"/admin/health", adminMiddleware, ctlAdmin.GetHealth)
	app.Get(router.BaseURL+"/admin/whatsapp/version", adminMiddleware, ctlAdmin.GetWhatsAppWebVersion)
	app.Post(router.BaseURL+"/admin/whatsapp/version/refresh", adminMiddleware, ctlAdmin.RefreshWhatsAppWebVersion)

	// ============================================================
	// SESSION ROUTES (Bearer token authentication)
	// ============================================================
	bearer := auth.BearerAuth(bridge.SessionID())

	// Session routes
	app.Get(router.BaseURL+"/session/status", bearer, ctlSession.Status)
	app.Get(router.BaseURL+"/session/qr", bearer, ctlSession.QR)
	app.Get(router.BaseURL+"/session/code", bearer, ctlSession.PairingCode)
	app.Get(router.BaseURL+"/session/info", bearer, ctlSession.Info)
	app.Get(router.BaseURL+"/session/version", bearer, ctlSession.Version)
	app.Get(router.BaseURL+"/session/screenshot", bearer, ctlSession.Screenshot)
	app.Post(router.BaseURL+"/session/logout", bearer, ctlSession.Logout)
	app.Post(router.BaseURL+"/session/reset", bearer, ctlSession.Reset)
	app.Post(router.BaseURL+"/session/presence", bearer, ctlSession.Presence)

	// Message routes
	app.Post(router.BaseURL+"/messages", bearer, ctlMessage.Send)
	app.Get(router.BaseURL+"/messages/search", bearer, ctlMessage.Search)
	app.Get(router.BaseURL+"/messages/:message_id", bearer, ctlMessage.Get)
	app.Post(router.BaseURL+"/messages/:message_id/react", bearer, ctlMessage.React)

	// Chat routes
	app.Get(router.BaseURL+"/chats", bearer, ctlChat.List)
	app.Get(router.BaseURL+"/chats/:chat_id", bearer, ctlChat.Get)
	app.Get(router.BaseURL+"/chats/:chat_id/labels", bearer, ctlChat.Labels)
	app.Post(router.BaseURL+"/chats/:chat_id/seen", bearer, ctlChat.SendSeen)
	app.Post(router.BaseURL+"/chats/:chat_id/archive", bearer, ctlChat.Archive)
	app.Post(router.BaseURL+"/chats/:chat_id/unarchive", bearer, ctlChat.Unarchive)
	app.Post(router.BaseURL+"/chats/:chat_id/pin", bearer, ctlChat.Pin)
	app.Post(router.BaseURL+"/chats/:chat_id/unpin", bearer, ctlChat.Unpin)
	app.Post(router.BaseURL+"/chats/:chat_id/mute", bearer, ctlChat.Mute)
	app.Post(router.BaseURL+"/chats/:chat_id/unmute", bearer, ctlChat.Unmute)
	app.Post(router.BaseURL+"/chats/:chat_id/unread", bearer, ctlChat.MarkUnread)

	// Contact routes
	app.Get(router.BaseURL+"/contacts", bearer, ctlContact.List)
	app.Get(router.BaseURL+"/contacts/blocked", bearer, ctlContact.Blocked)
	app.Get(router.BaseURL+"/contacts/:contact_id", bearer, ctlContact.Get)
	app.Get(router.BaseURL+"/contacts/:contact_id/picture", bearer, ctlContact.Picture)
	app.Get(router.BaseURL+"/contacts/:contact_id/common-groups", bearer, ctlContact.CommonGroups)
	app.Get(router.BaseURL+"/numbers/:number", bearer, ctlContact.Number)

	// Group routes
	app.Post(router.BaseURL+"/groups", bearer, ctlGroups.Create)
	app.Post(router.BaseURL+"/groups/invites/v4/accept", bearer, ctlGroups.AcceptInviteV4)
	app.Get(router.BaseURL+"/groups/invites/:code", bearer, ctlGroups.InviteInfo)
	app.Post(router.BaseURL+"/groups/invites/:code/accept", bearer, ctlGroups.AcceptInvite)
	app.Get(router.BaseURL+"/groups/:group_id", bearer, ctlGroups.Get)

	// Label routes
	app.Get(router.BaseURL+"/labels", bearer, ctlLabel.List)
	app.Post(router.BaseURL+"/labels/apply", bearer, ctlLabel.Apply)
	app.Get(router.BaseURL+"/labels/:label_id", bearer, ctlLabel.Get)
	app.Get(router.BaseURL+"/labels/:label_id/chats", bearer, ctlLabel.Chats)

	// Profile routes
	app.Post(router.BaseURL+"/profile/status", bearer, ctlProfile.SetStatus)
	app.Post(router.BaseURL+"/profile/name", bearer, ctlProfile.SetName)
	app.Post(router.BaseURL+"/profile/picture", bearer, ctlProfile.SetPicture)
	app.Delete(router.BaseURL+"/profile/picture", bearer, ctlProfile.DeletePicture)

	// Webhook routes
	app.Get(router.BaseURL+"/webhooks", bearer, ctlWebhooks.ListWebhooks)
	app.Post(router.BaseURL+"/webhooks", bearer, ctlWebhooks.CreateWebhook)
	app.Get(router.BaseURL+"/webhooks/:webhook_id", bearer, ctlWebhooks.GetWebhook)
	app.Patch(router.BaseURL+"/webhooks/:webhook_id", bearer, ctlWebhooks.UpdateWebhook)
	app.Delete(router.BaseURL+"/webhooks/:webhook_id", bearer, ctlWebhooks.DeleteWebhook)
	app.Get(router.BaseURL+"/webhooks/:webhook_id/logs", bearer, ctlWebhooks.GetWebhookLogs)
	app.Post(router.BaseURL+"/webhooks/:webhook_id/test", bearer, ctlWebhooks.TestWebhook)
}
