package webhooks

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/gdbrns/go-whatsapp-web-bridge/internal/bridge"
	"github.com/gdbrns/go-whatsapp-web-bridge/internal/webhook"
	"github.com/gdbrns/go-whatsapp-web-bridge/pkg/log"
	"github.com/gdbrns/go-whatsapp-web-bridge/pkg/router"
	"github.com/gdbrns/go-whatsapp-web-bridge/pkg/validation"
)

const deliveryLogLimit = 100

// getSessionID extracts the session scope set by the bearer middleware
func getSessionID(c *fiber.Ctx) string {
	if v, ok := c.Locals("session_id").(string); ok && v != "" {
		return v
	}
	return bridge.SessionID()
}

type createWebhookRequest struct {
	URL    string              `json:"url"`
	Events []webhook.EventType `json:"events"`
}

type updateWebhookRequest struct {
	URL    string              `json:"url"`
	Events []webhook.EventType `json:"events"`
	Active *bool               `json:"active"`
}

func validateEvents(evts []webhook.EventType) error {
	for _, evt := range evts {
		if !webhook.ValidEventType(evt) {
			return fmt.Errorf("unknown event %q", evt)
		}
	}
	return nil
}

func engineOrUnavailable(c *fiber.Ctx) (*webhook.Engine, error) {
	engine := bridge.WebhookEngine()
	if engine == nil {
		return nil, router.ResponseServiceUnavailable(c, "webhooks are disabled: no datastore configured")
	}
	return engine, nil
}

func responseStoreError(c *fiber.Ctx, err error) error {
	if errors.Is(err, webhook.ErrNotFound) {
		return router.ResponseNotFound(c, "webhook not found")
	}
	return router.ResponseInternalError(c, err.Error())
}

func newSecret() (string, error) {
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return "", err
	}
	return hex.EncodeToString(secret), nil
}

// ListWebhooks
// @Summary     List Webhooks
// @Tags        Webhooks
// @Produce     json
// @Security    BearerAuth
// @Success     200
// @Failure     503 {object} router.ResError
// @Router      /webhooks [get]
func ListWebhooks(c *fiber.Ctx) error {
	sessionID := getSessionID(c)

	engine, err := engineOrUnavailable(c)
	if engine == nil {
		return err
	}

	webhooks, err := engine.Store().GetAllWebhooks(bridge.Context(c), sessionID)
	if err != nil {
		log.Webhook("", 0).WithField("session_id", sessionID).WithError(err).Error("Failed to list webhooks")
		return router.ResponseInternalError(c, err.Error())
	}
	if webhooks == nil {
		webhooks = []webhook.WebhookConfig{}
	}

	return router.ResponseSuccessWithData(c, "success", map[string]interface{}{"webhooks": webhooks})
}

// CreateWebhook
// @Summary     Create Webhook
// @Description Register a URL for the given events. An empty list subscribes to every event. The signing secret is only returned here.
// @Tags        Webhooks
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       body body createWebhookRequest true "Webhook"
// @Success     201
// @Failure     400 {object} router.ResError
// @Router      /webhooks [post]
func CreateWebhook(c *fiber.Ctx) error {
	sessionID := getSessionID(c)

	var req createWebhookRequest
	if err := c.BodyParser(&req); err != nil {
		return router.ResponseBadRequest(c, "invalid request body")
	}
	if err := validation.ValidateWebhookURL(req.URL); err != nil {
		return router.ResponseBadRequest(c, err.Error())
	}
	if err := validateEvents(req.Events); err != nil {
		return router.ResponseBadRequest(c, err.Error())
	}

	engine, err := engineOrUnavailable(c)
	if engine == nil {
		return err
	}

	secret, err := newSecret()
	if err != nil {
		return router.ResponseInternalError(c, err.Error())
	}

	webhookID, err := engine.Store().CreateWebhook(bridge.Context(c), sessionID, req.URL, secret, req.Events)
	if err != nil {
		log.Webhook("", 0).WithField("url", req.URL).WithError(err).Error("Failed to create webhook")
		return router.ResponseInternalError(c, err.Error())
	}

	log.Webhook("", webhookID).WithField("url", req.URL).WithField("event_count", len(req.Events)).Info("Webhook created successfully")

	return router.ResponseCreatedWithData(c, "webhook created", map[string]interface{}{"webhook_id": webhookID, "secret": secret})
}

// GetWebhook
// @Summary     Get Webhook
// @Tags        Webhooks
// @Produce     json
// @Security    BearerAuth
// @Param       webhook_id path int true "Webhook ID"
// @Success     200
// @Failure     404 {object} router.ResError
// @Router      /webhooks/{webhook_id} [get]
func GetWebhook(c *fiber.Ctx) error {
	sessionID := getSessionID(c)
	webhookID, err := c.ParamsInt("webhook_id")
	if err != nil {
		return router.ResponseBadRequest(c, "invalid webhook_id")
	}

	engine, err := engineOrUnavailable(c)
	if engine == nil {
		return err
	}

	wh, err := engine.Store().GetWebhook(bridge.Context(c), int64(webhookID), sessionID)
	if err != nil {
		return responseStoreError(c, err)
	}

	return router.ResponseSuccessWithData(c, "success", map[string]interface{}{"webhook": wh})
}

// UpdateWebhook
// @Summary     Update Webhook
// @Description Change the URL, subscribed events or active flag. Omitted fields keep their value.
// @Tags        Webhooks
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       webhook_id path int true "Webhook ID"
// @Param       body body updateWebhookRequest true "Changes"
// @Success     200
// @Failure     404 {object} router.ResError
// @Router      /webhooks/{webhook_id} [patch]
func UpdateWebhook(c *fiber.Ctx) error {
	sessionID := getSessionID(c)
	webhookID, err := c.ParamsInt("webhook_id")
	if err != nil {
		return router.ResponseBadRequest(c, "invalid webhook_id")
	}

	var req updateWebhookRequest
	if err := c.BodyParser(&req); err != nil {
		return router.ResponseBadRequest(c, "invalid request body")
	}
	if req.URL != "" {
		if err := validation.ValidateWebhookURL(req.URL); err != nil {
			return router.ResponseBadRequest(c, err.Error())
		}
	}
	if err := validateEvents(req.Events); err != nil {
		return router.ResponseBadRequest(c, err.Error())
	}

	engine, err := engineOrUnavailable(c)
	if engine == nil {
		return err
	}

	ctx := bridge.Context(c)
	wh, err := engine.Store().GetWebhook(ctx, int64(webhookID), sessionID)
	if err != nil {
		return responseStoreError(c, err)
	}

	if req.URL != "" {
		wh.URL = req.URL
	}
	if req.Events != nil {
		wh.Events = req.Events
	}
	if req.Active != nil {
		wh.Active = *req.Active
	}

	if err := engine.Store().UpdateWebhook(ctx, wh.ID, sessionID, wh.URL, wh.Secret, wh.Events, wh.Active); err != nil {
		log.Webhook("", wh.ID).WithError(err).Error("Failed to update webhook")
		return responseStoreError(c, err)
	}

	log.Webhook("", wh.ID).WithField("url", wh.URL).WithField("active", wh.Active).Info("Webhook updated successfully")

	return router.ResponseSuccessWithData(c, "webhook updated", map[string]interface{}{"webhook": wh})
}

// DeleteWebhook
// @Summary     Delete Webhook
// @Tags        Webhooks
// @Produce     json
// @Security    BearerAuth
// @Param       webhook_id path int true "Webhook ID"
// @Success     200
// @Failure     404 {object} router.ResError
// @Router      /webhooks/{webhook_id} [delete]
func DeleteWebhook(c *fiber.Ctx) error {
	sessionID := getSessionID(c)
	webhookID, err := c.ParamsInt("webhook_id")
	if err != nil {
		return router.ResponseBadRequest(c, "invalid webhook_id")
	}

	engine, err := engineOrUnavailable(c)
	if engine == nil {
		return err
	}

	if err := engine.Store().DeleteWebhook(bridge.Context(c), int64(webhookID), sessionID); err != nil {
		return responseStoreError(c, err)
	}

	log.Webhook("", int64(webhookID)).Info("Webhook deleted successfully")

	return router.ResponseSuccess(c, "webhook deleted")
}

// GetWebhookLogs
// @Summary     Webhook Delivery Logs
// @Tags        Webhooks
// @Produce     json
// @Security    BearerAuth
// @Param       webhook_id path int true "Webhook ID"
// @Success     200
// @Failure     404 {object} router.ResError
// @Router      /webhooks/{webhook_id}/logs [get]
func GetWebhookLogs(c *fiber.Ctx) error {
	sessionID := getSessionID(c)
	webhookID, err := c.ParamsInt("webhook_id")
	if err != nil {
		return router.ResponseBadRequest(c, "invalid webhook_id")
	}

	engine, err := engineOrUnavailable(c)
	if engine == nil {
		return err
	}

	ctx := bridge.Context(c)
	if _, err := engine.Store().GetWebhook(ctx, int64(webhookID), sessionID); err != nil {
		return responseStoreError(c, err)
	}

	logs, err := engine.Store().GetDeliveryLogs(ctx, int64(webhookID), deliveryLogLimit)
	if err != nil {
		return router.ResponseInternalError(c, err.Error())
	}
	if logs == nil {
		logs = []webhook.DeliveryLog{}
	}

	return router.ResponseSuccessWithData(c, "success", map[string]interface{}{"logs": logs})
}

// TestWebhook
// @Summary     Send Test Event
// @Description Queue a test.ping delivery to the webhook
// @Tags        Webhooks
// @Produce     json
// @Security    BearerAuth
// @Param       webhook_id path int true "Webhook ID"
// @Success     200
// @Failure     404 {object} router.ResError
// @Router      /webhooks/{webhook_id}/test [post]
func TestWebhook(c *fiber.Ctx) error {
	sessionID := getSessionID(c)
	webhookID, err := c.ParamsInt("webhook_id")
	if err != nil {
		return router.ResponseBadRequest(c, "invalid webhook_id")
	}

	engine, err := engineOrUnavailable(c)
	if engine == nil {
		return err
	}

	wh, err := engine.Store().GetWebhook(bridge.Context(c), int64(webhookID), sessionID)
	if err != nil {
		return responseStoreError(c, err)
	}

	queued := engine.Deliver(*wh, webhook.WebhookEvent{
		EventType: webhook.EventTest,
		SessionID: sessionID,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"message": "test webhook delivery",
		},
	})
	if !queued {
		return router.ResponseServiceUnavailable(c, "webhook delivery queue unavailable")
	}

	log.Webhook(string(webhook.EventTest), wh.ID).Info("Test webhook dispatched successfully")

	return router.ResponseSuccess(c, "test webhook dispatched")
}
