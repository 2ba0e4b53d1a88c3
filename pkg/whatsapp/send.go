package whatsapp

import (
	"context"
	"encoding/json"

	"github.com/gdbrns/go-whatsapp-web-bridge/pkg/whatsapp/types"
)

// MessageSendOptions tune SendMessage. Nil pointers take the defaults noted.
type MessageSendOptions struct {
	// LinkPreview defaults to true.
	LinkPreview *bool
	// SendSeen marks the chat read before sending, default true.
	SendSeen *bool

	SendAudioAsVoice    bool
	SendVideoAsGif      bool
	SendMediaAsSticker  bool
	SendMediaAsDocument bool
	IsViewOnce          bool

	Caption         string
	QuotedMessageID string
	Mentions        []string

	// Media attaches a file; content then becomes the caption.
	Media *types.MessageMedia

	// Mimetype, Filename and Filesize replace what was detected for the
	// attachment. A Mimetype also keeps raw bytes from being sent as text.
	Mimetype string
	Filename string
	Filesize int64

	Sticker *StickerOptions

	// Extra is merged into the page-side send options.
	Extra map[string]interface{}
}

type stickerPayload struct {
	Author      string   `json:"author,omitempty"`
	Name        string   `json:"name,omitempty"`
	Categories  []string `json:"categories,omitempty"`
	PackID      string   `json:"packId,omitempty"`
	PackName    string   `json:"packName,omitempty"`
	PackPublish string   `json:"packPublish,omitempty"`
	PackEmail   string   `json:"packEmail,omitempty"`
	PackWebsite string   `json:"packWebsite,omitempty"`
	AndroidApp  string   `json:"androidApp,omitempty"`
	IOSApp      string   `json:"iOSApp,omitempty"`
	IsAvatar    bool     `json:"isAvatar,omitempty"`
}

func newStickerPayload(o StickerOptions) *stickerPayload {
	return &stickerPayload{
		Author:      o.Author,
		Name:        o.Name,
		Categories:  o.Categories,
		PackID:      o.PackID,
		PackName:    o.PackName,
		PackPublish: o.PackPublish,
		PackEmail:   o.PackEmail,
		PackWebsite: o.PackWebsite,
		AndroidApp:  o.AndroidApp,
		IOSApp:      o.IOSApp,
		IsAvatar:    o.IsAvatar,
	}
}

type sendPayload struct {
	Body             string                 `json:"body"`
	Media            *types.MessageMedia    `json:"media,omitempty"`
	MediaType        string                 `json:"mediaType,omitempty"`
	Caption          string                 `json:"caption,omitempty"`
	Location         *types.Location        `json:"location,omitempty"`
	Contacts         []string               `json:"contacts,omitempty"`
	QuotedMessageID  string                 `json:"quotedMessageId,omitempty"`
	Mentions         []string               `json:"mentions,omitempty"`
	LinkPreview      bool                   `json:"linkPreview"`
	SendSeen         bool                   `json:"sendSeen"`
	SendAudioAsVoice bool                   `json:"sendAudioAsVoice"`
	IsViewOnce       bool                   `json:"isViewOnce"`
	Sticker          *stickerPayload        `json:"sticker,omitempty"`
	Extra            map[string]interface{} `json:"extra,omitempty"`
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func mediaType(opts *MessageSendOptions) string {
	switch {
	case opts.SendMediaAsSticker:
		return "sticker"
	case opts.SendMediaAsDocument:
		return "document"
	case opts.SendAudioAsVoice:
		return "audio"
	case opts.SendVideoAsGif:
		return "video"
	}
	return "auto-detect"
}

// buildSendPayload resolves content and options into what the page sends.
func (c *Client) buildSendPayload(ctx context.Context, content interface{}, opts *MessageSendOptions) (*sendPayload, error) {
	if opts == nil {
		opts = &MessageSendOptions{}
	}
	body, media, location, card, err := c.resolveContent(ctx, content, mediaHint{Mimetype: opts.Mimetype, Filename: opts.Filename})
	if err != nil {
		return nil, err
	}

	payload := &sendPayload{
		Body:             body,
		Location:         location,
		Caption:          opts.Caption,
		LinkPreview:      boolOr(opts.LinkPreview, true),
		SendSeen:         boolOr(opts.SendSeen, true),
		SendAudioAsVoice: opts.SendAudioAsVoice,
		IsViewOnce:       opts.IsViewOnce,
		Extra:            opts.Extra,
	}
	if card != nil {
		for _, id := range card.IDs {
			contactID, err := NormalizeUserID(id)
			if err != nil {
				return nil, err
			}
			payload.Contacts = append(payload.Contacts, contactID)
		}
	}
	if opts.Media != nil {
		if media == nil && payload.Caption == "" {
			payload.Caption = body
		}
		media = opts.Media
		payload.Body = ""
	}
	if opts.QuotedMessageID != "" {
		if err := validateMessageID(opts.QuotedMessageID); err != nil {
			return nil, err
		}
		payload.QuotedMessageID = opts.QuotedMessageID
	}
	for _, mention := range opts.Mentions {
		id, err := NormalizeUserID(mention)
		if err != nil {
			return nil, err
		}
		payload.Mentions = append(payload.Mentions, id)
	}

	if media != nil {
		media = withOverrides(media, opts)
		if opts.SendMediaAsSticker {
			media, err = toSticker(media)
			if err != nil {
				return nil, err
			}
			sticker := StickerOptions{}
			if opts.Sticker != nil {
				sticker = *opts.Sticker
			}
			sticker = sticker.withDefaults(c.opts.StickerDefaults)
			payload.Sticker = newStickerPayload(sticker)
		}
		payload.Media = media
		payload.MediaType = mediaType(opts)
	}
	return payload, nil
}

// withOverrides applies the caller's attachment details to a copy of media.
func withOverrides(media *types.MessageMedia, opts *MessageSendOptions) *types.MessageMedia {
	if opts.Mimetype == "" && opts.Filename == "" && opts.Filesize == 0 {
		return media
	}
	out := *media
	if opts.Mimetype != "" {
		out.Mimetype = opts.Mimetype
	}
	if opts.Filename != "" {
		out.Filename = opts.Filename
	}
	if opts.Filesize > 0 {
		out.Filesize = opts.Filesize
	}
	return &out
}

// SendMessage sends content to a chat. Content may be text, raw bytes, a
// base64 string, a data uri, an http(s) url, a local file path, a
// *types.MessageMedia, a *types.Location or a *types.ContactCard.
func (c *Client) SendMessage(ctx context.Context, chatID string, content interface{}, opts *MessageSendOptions) (*types.Message, error) {
	if _, err := c.readySession(); err != nil {
		return nil, err
	}
	chatID, err := NormalizeChatID(chatID)
	if err != nil {
		return nil, err
	}
	payload, err := c.buildSendPayload(ctx, content, opts)
	if err != nil {
		return nil, err
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	var raw json.RawMessage
	if err := c.call(ctx, "send message", &raw, jsSendMessage, chatID, payload); err != nil {
		return nil, err
	}
	return types.ParseMessage(raw)
}
