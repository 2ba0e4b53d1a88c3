package types

import (
	wa "github.com/gdbrns/go-whatsapp-web-bridge/pkg/whatsapp/types"
)

type RequestSessionToken struct {
	SessionID string `json:"session_id"`
}

type RequestPresence struct {
	Available bool `json:"available"`
}

type RequestSticker struct {
	Name        string   `json:"name"`
	Author      string   `json:"author"`
	Categories  []string `json:"categories"`
	PackID      string   `json:"pack_id"`
	PackName    string   `json:"pack_name"`
	PackPublish string   `json:"pack_publish"`
	PackEmail   string   `json:"pack_email"`
	PackWebsite string   `json:"pack_website"`
	AndroidApp  string   `json:"android_app"`
	IOSApp      string   `json:"ios_app"`
	IsAvatar    bool     `json:"is_avatar"`
}

// RequestSendMessage carries one outgoing message. Exactly one content
// field is used; Text is the fallback.
type RequestSendMessage struct {
	ChatID string `json:"chat_id"`

	Text     string           `json:"text"`
	Content  string           `json:"content"`
	Media    *wa.MessageMedia `json:"media"`
	Location *wa.Location     `json:"location"`
	Contacts []string         `json:"contacts"`

	Caption             string          `json:"caption"`
	QuotedMessageID     string          `json:"quoted_message_id"`
	Mentions            []string        `json:"mentions"`
	LinkPreview         *bool           `json:"link_preview"`
	SendSeen            *bool           `json:"send_seen"`
	SendAudioAsVoice    bool            `json:"send_audio_as_voice"`
	SendVideoAsGif      bool            `json:"send_video_as_gif"`
	SendMediaAsSticker  bool            `json:"send_media_as_sticker"`
	SendMediaAsDocument bool            `json:"send_media_as_document"`
	IsViewOnce          bool            `json:"is_view_once"`
	Sticker             *RequestSticker `json:"sticker"`

	// Attachment overrides.
	Mimetype string `json:"mimetype"`
	Filename string `json:"filename"`
	Filesize int64  `json:"filesize"`
}

type RequestReact struct {
	Emoji string `json:"emoji"`
}

type RequestMuteChat struct {
	// Until is a unix timestamp in seconds. Zero mutes forever.
	Until int64 `json:"until"`
}

type RequestCreateGroup struct {
	Name         string   `json:"name"`
	Participants []string `json:"participants"`
}

type RequestApplyLabels struct {
	LabelIDs []string `json:"label_ids"`
	ChatIDs  []string `json:"chat_ids"`
}

type RequestProfileStatus struct {
	Status string `json:"status"`
}

type RequestProfileName struct {
	Name string `json:"name"`
}

type RequestProfilePicture struct {
	Media *wa.MessageMedia `json:"media"`
}

type RequestRefreshVersion struct {
	Force bool `json:"force"`
}
