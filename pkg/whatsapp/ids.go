package whatsapp

import (
	"strings"

	watypes "go.mau.fi/whatsmeow/types"

	"github.com/gdbrns/go-whatsapp-web-bridge/pkg/validation"
	"github.com/gdbrns/go-whatsapp-web-bridge/pkg/whatsapp/types"
)

func validatePhoneNumber(number string) error {
	if err := validation.ValidatePhone(number); err != nil {
		return invalidArgument("%v", err)
	}
	return nil
}

// NormalizeChatID turns a phone number or a jid into the id form the web app
// uses: users on c.us, groups on g.us.
func NormalizeChatID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if err := validation.ValidateChatID(id); err != nil {
		return "", invalidArgument("%v", err)
	}
	if !strings.Contains(id, "@") {
		number := strings.TrimPrefix(id, "+")
		if err := validatePhoneNumber(number); err != nil {
			return "", err
		}
		return number + "@" + watypes.LegacyUserServer, nil
	}
	jid, err := watypes.ParseJID(id)
	if err != nil {
		return "", invalidArgument("invalid chat id %q: %v", id, err)
	}
	jid = jid.ToNonAD()
	if jid.Server == watypes.DefaultUserServer {
		jid.Server = watypes.LegacyUserServer
	}
	if jid.User == "" {
		return "", invalidArgument("invalid chat id %q", id)
	}
	return jid.String(), nil
}

// NormalizeUserID is NormalizeChatID restricted to user accounts.
func NormalizeUserID(id string) (string, error) {
	chatID, err := NormalizeChatID(id)
	if err != nil {
		return "", err
	}
	if !strings.HasSuffix(chatID, "@"+watypes.LegacyUserServer) && !strings.HasSuffix(chatID, "@"+watypes.HiddenUserServer) {
		return "", invalidArgument("%q is not a user id", id)
	}
	return chatID, nil
}

func normalizeGroupID(id string) (string, error) {
	chatID, err := NormalizeChatID(id)
	if err != nil {
		return "", err
	}
	if !strings.HasSuffix(chatID, "@"+watypes.GroupServer) {
		return "", invalidArgument("%q is not a group id", id)
	}
	return chatID, nil
}

// whatsappNetID rewrites an id to the s.whatsapp.net server some lookups expect.
func whatsappNetID(number string) string {
	number = strings.TrimSpace(number)
	if strings.HasSuffix(number, "@"+watypes.DefaultUserServer) {
		return number
	}
	number = strings.Replace(number, watypes.LegacyUserServer, watypes.DefaultUserServer, 1)
	if !strings.Contains(number, "@"+watypes.DefaultUserServer) {
		number += "@" + watypes.DefaultUserServer
	}
	return number
}

func validateMessageID(id string) error {
	if _, err := types.ParseMessageID(id); err != nil {
		return invalidArgument("%v", err)
	}
	return nil
}
