package whatsapp

import (
	"context"
	"strings"

	"github.com/forPelevin/gomoji"
	"github.com/rivo/uniseg"

	"github.com/gdbrns/go-whatsapp-web-bridge/pkg/whatsapp/types"
)

func (c *Client) SetStatus(ctx context.Context, status string) error {
	return c.call(ctx, "set status", nil, jsSetStatus, status)
}

func (c *Client) SetDisplayName(ctx context.Context, name string) (bool, error) {
	if strings.TrimSpace(name) == "" {
		return false, invalidArgument("display name is empty")
	}
	var ok bool
	err := c.call(ctx, "set display name", &ok, jsSetDisplayName, name)
	return ok, err
}

// SetProfilePicture replaces the account picture with an image attachment.
func (c *Client) SetProfilePicture(ctx context.Context, media *types.MessageMedia) (bool, error) {
	if _, err := c.readySession(); err != nil {
		return false, err
	}
	if media == nil {
		return false, invalidArgument("profile picture is empty")
	}
	dataURI, err := profilePictureDataURI(media)
	if err != nil {
		return false, err
	}
	var ok bool
	err = c.call(ctx, "set profile picture", &ok, jsSetProfilePicture, dataURI)
	return ok, err
}

func (c *Client) DeleteProfilePicture(ctx context.Context) (bool, error) {
	var ok bool
	err := c.call(ctx, "delete profile picture", &ok, jsDeleteProfilePicture)
	return ok, err
}

// validateReaction allows a single emoji, or an empty string to remove a reaction.
func validateReaction(emoji string) error {
	if emoji == "" {
		return nil
	}
	if !gomoji.ContainsEmoji(emoji) || uniseg.GraphemeClusterCount(emoji) != 1 {
		return invalidArgument("reaction must be exactly one emoji")
	}
	return nil
}

// React sets this account's reaction on a message.
func (c *Client) React(ctx context.Context, messageID, emoji string) error {
	if err := validateMessageID(messageID); err != nil {
		return err
	}
	if err := validateReaction(emoji); err != nil {
		return err
	}
	return c.call(ctx, "react", nil, jsReact, messageID, emoji)
}
