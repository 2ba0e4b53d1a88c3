package contact

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gdbrns/go-whatsapp-web-bridge/internal/bridge"
	"github.com/gdbrns/go-whatsapp-web-bridge/pkg/log"
	"github.com/gdbrns/go-whatsapp-web-bridge/pkg/router"
)

// List
// @Summary     List Contacts
// @Tags        Contacts
// @Produce     json
// @Security    BearerAuth
// @Success     200
// @Router      /contacts [get]
func List(c *fiber.Ctx) error {
	cl := bridge.Client()
	if cl == nil {
		return bridge.ResponseNotInitialized(c)
	}

	contacts, err := cl.GetContacts(bridge.Context(c))
	if err != nil {
		log.Operation(c, "GetContacts").WithError(err).Error("Failed to get contacts")
		return bridge.ResponseError(c, err)
	}

	return router.ResponseSuccessWithData(c, "Success get contacts", contacts)
}

// Blocked
// @Summary     Blocked Contacts
// @Tags        Contacts
// @Produce     json
// @Security    BearerAuth
// @Success     200
// @Router      /contacts/blocked [get]
func Blocked(c *fiber.Ctx) error {
	cl := bridge.Client()
	if cl == nil {
		return bridge.ResponseNotInitialized(c)
	}

	contacts, err := cl.GetBlockedContacts(bridge.Context(c))
	if err != nil {
		log.Operation(c, "GetBlockedContacts").WithError(err).Error("Failed to get blocked contacts")
		return bridge.ResponseError(c, err)
	}

	return router.ResponseSuccessWithData(c, "Success get blocked contacts", contacts)
}

// Get
// @Summary     Get Contact
// @Tags        Contacts
// @Produce     json
// @Security    BearerAuth
// @Param       contact_id path string true "Contact ID"
// @Success     200
// @Failure     404 {object} router.ResError
// @Router      /contacts/{contact_id} [get]
func Get(c *fiber.Ctx) error {
	cl := bridge.Client()
	if cl == nil {
		return bridge.ResponseNotInitialized(c)
	}

	contactID := c.Params("contact_id")
	contact, err := cl.GetContactByID(bridge.Context(c), contactID)
	if err != nil {
		log.Operation(c, "GetContact").WithField("contact_id", contactID).WithError(err).Error("Failed to get contact")
		return bridge.ResponseError(c, err)
	}

	return router.ResponseSuccessWithData(c, "Success get contact", contact)
}

// Picture
// @Summary     Profile Picture URL
// @Tags        Contacts
// @Produce     json
// @Security    BearerAuth
// @Param       contact_id path string true "Contact ID"
// @Success     200
// @Router      /contacts/{contact_id}/picture [get]
func Picture(c *fiber.Ctx) error {
	cl := bridge.Client()
	if cl == nil {
		return bridge.ResponseNotInitialized(c)
	}

	contactID := c.Params("contact_id")
	url, err := cl.GetProfilePicURL(bridge.Context(c), contactID)
	if err != nil {
		log.Operation(c, "GetProfilePicURL").WithField("contact_id", contactID).WithError(err).Error("Failed to get profile picture")
		return bridge.ResponseError(c, err)
	}

	return router.ResponseSuccessWithData(c, "Success get profile picture", map[string]interface{}{"url": url})
}

// CommonGroups
// @Summary     Groups In Common
// @Tags        Contacts
// @Produce     json
// @Security    BearerAuth
// @Param       contact_id path string true "Contact ID"
// @Success     200
// @Failure     403 {object} router.ResError
// @Router      /contacts/{contact_id}/common-groups [get]
func CommonGroups(c *fiber.Ctx) error {
	cl := bridge.Client()
	if cl == nil {
		return bridge.ResponseNotInitialized(c)
	}

	contactID := c.Params("contact_id")
	groups, err := cl.GetCommonGroups(bridge.Context(c), contactID)
	if err != nil {
		log.Operation(c, "GetCommonGroups").WithField("contact_id", contactID).WithError(err).Error("Failed to get common groups")
		return bridge.ResponseError(c, err)
	}

	return router.ResponseSuccessWithData(c, "Success get common groups", map[string]interface{}{"groups": groups})
}

// Number
// @Summary     Number Lookup
// @Description Resolve a phone number to its WhatsApp id, formatting and country code
// @Tags        Contacts
// @Produce     json
// @Security    BearerAuth
// @Param       number path string true "Phone number"
// @Success     200
// @Failure     400 {object} router.ResError
// @Router      /numbers/{number} [get]
func Number(c *fiber.Ctx) error {
	cl := bridge.Client()
	if cl == nil {
		return bridge.ResponseNotInitialized(c)
	}

	number := c.Params("number")
	ctx := bridge.Context(c)

	numberID, err := cl.GetNumberID(ctx, number)
	if err != nil {
		log.Operation(c, "GetNumberID").WithError(err).Error("Failed to resolve number")
		return bridge.ResponseError(c, err)
	}

	formatted, err := cl.GetFormattedNumber(ctx, number)
	if err != nil {
		return bridge.ResponseError(c, err)
	}

	countryCode, err := cl.GetCountryCode(ctx, number)
	if err != nil {
		return bridge.ResponseError(c, err)
	}

	return router.ResponseSuccessWithData(c, "Success lookup number", map[string]interface{}{
		"id":           numberID,
		"registered":   numberID != "",
		"formatted":    formatted,
		"country_code": countryCode,
	})
}
