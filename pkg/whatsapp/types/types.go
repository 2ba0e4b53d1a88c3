package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

// WID is a serialized WhatsApp id as the page reports it.
type WID struct {
	Server     string `json:"server"`
	User       string `json:"user"`
	Serialized string `json:"_serialized"`
}

func (w WID) String() string {
	if w.Serialized != "" {
		return w.Serialized
	}
	if w.User == "" {
		return ""
	}
	return w.User + "@" + w.Server
}

// UnmarshalJSON accepts both the object form and a bare serialized string.
func (w *WID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		user, server, _ := strings.Cut(s, "@")
		*w = WID{Server: server, User: user, Serialized: s}
		return nil
	}
	type plain WID
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*w = WID(p)
	if w.Serialized == "" && w.User != "" {
		w.Serialized = w.User + "@" + w.Server
	}
	return nil
}

// MessageID identifies a message within a chat.
type MessageID struct {
	FromMe      bool   `json:"fromMe"`
	Remote      string `json:"remote"`
	ID          string `json:"id"`
	Participant string `json:"participant,omitempty"`
	Serialized  string `json:"_serialized"`
}

func (m *MessageID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := ParseMessageID(s)
		if err != nil {
			return err
		}
		*m = parsed
		return nil
	}
	var p struct {
		FromMe      bool            `json:"fromMe"`
		Remote      json.RawMessage `json:"remote"`
		ID          string          `json:"id"`
		Participant json.RawMessage `json:"participant"`
		Serialized  string          `json:"_serialized"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*m = MessageID{FromMe: p.FromMe, ID: p.ID, Serialized: p.Serialized}
	m.Remote = widString(p.Remote)
	m.Participant = widString(p.Participant)
	return nil
}

func widString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var w WID
	if err := json.Unmarshal(raw, &w); err != nil {
		return ""
	}
	return w.String()
}

// ParseMessageID splits "<fromMe>_<remote>_<id>[_<participant>]".
func ParseMessageID(serialized string) (MessageID, error) {
	parts := strings.Split(serialized, "_")
	if len(parts) < 3 {
		return MessageID{}, fmt.Errorf("invalid serialized message id %q", serialized)
	}
	id := MessageID{
		FromMe:     parts[0] == "true",
		Remote:     parts[1],
		ID:         parts[2],
		Serialized: serialized,
	}
	if len(parts) > 3 {
		id.Participant = strings.Join(parts[3:], "_")
	}
	return id, nil
}

type Location struct {
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Name        string  `json:"name,omitempty"`
	Address     string  `json:"address,omitempty"`
	URL         string  `json:"url,omitempty"`
	Description string  `json:"description,omitempty"`
}

type InviteV4 struct {
	InviteCode    string `json:"inviteCode"`
	InviteCodeExp int64  `json:"inviteCodeExp"`
	GroupID       string `json:"groupId"`
	GroupName     string `json:"groupName,omitempty"`
	FromID        string `json:"fromId"`
	ToID          string `json:"toId,omitempty"`
}

// Message is a host-side snapshot of a page message. It holds no live page reference.
type Message struct {
	ID              MessageID  `json:"id"`
	Ack             MessageAck `json:"ack"`
	HasMedia        bool       `json:"hasMedia"`
	Body            string     `json:"body"`
	Type            string     `json:"type"`
	Subtype         string     `json:"subtype,omitempty"`
	Timestamp       int64      `json:"timestamp"`
	From            string     `json:"from"`
	To              string     `json:"to"`
	Author          string     `json:"author,omitempty"`
	DeviceType      string     `json:"deviceType,omitempty"`
	IsForwarded     bool       `json:"isForwarded"`
	ForwardingScore int        `json:"forwardingScore"`
	IsStatus        bool       `json:"isStatus"`
	IsStarred       bool       `json:"isStarred"`
	Broadcast       bool       `json:"broadcast"`
	FromMe          bool       `json:"fromMe"`
	HasQuotedMsg    bool       `json:"hasQuotedMsg"`
	HasReaction     bool       `json:"hasReaction"`
	IsNewMsg        bool       `json:"isNewMsg"`
	IsEphemeral     bool       `json:"isEphemeral"`
	IsGif           bool       `json:"isGif"`
	Duration        string     `json:"duration,omitempty"`
	Location        *Location  `json:"location,omitempty"`
	VCards          []string   `json:"vCards,omitempty"`
	InviteV4        *InviteV4  `json:"inviteV4,omitempty"`
	MentionedIDs    []string   `json:"mentionedIds,omitempty"`
	Recipients      []string   `json:"recipients,omitempty"`
	TemplateParams  []string   `json:"templateParams,omitempty"`
	Links           []Link     `json:"links,omitempty"`
}

type Link struct {
	Link         string `json:"link"`
	IsSuspicious bool   `json:"isSuspicious"`
}

func (m *Message) UnmarshalJSON(data []byte) error {
	type plain Message
	var p struct {
		plain
		From       json.RawMessage   `json:"from"`
		To         json.RawMessage   `json:"to"`
		Author     json.RawMessage   `json:"author"`
		Recipients []json.RawMessage `json:"recipients"`
		Mentioned  []json.RawMessage `json:"mentionedIds"`
		Params     []json.RawMessage `json:"templateParams"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*m = Message(p.plain)
	m.From = widString(p.From)
	m.To = widString(p.To)
	m.Author = widString(p.Author)
	m.Recipients = widStrings(p.Recipients)
	m.MentionedIDs = widStrings(p.Mentioned)
	m.TemplateParams = widStrings(p.Params)
	if !m.FromMe {
		m.FromMe = m.ID.FromMe
	}
	return nil
}

func widStrings(raws []json.RawMessage) []string {
	if len(raws) == 0 {
		return nil
	}
	out := make([]string, 0, len(raws))
	for _, raw := range raws {
		if s := widString(raw); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// ParseMessage normalizes a page message snapshot.
func ParseMessage(raw json.RawMessage) (*Message, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var m Message
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parse message: %w", err)
	}
	return &m, nil
}

type GroupParticipant struct {
	ID           WID  `json:"id"`
	IsAdmin      bool `json:"isAdmin"`
	IsSuperAdmin bool `json:"isSuperAdmin"`
}

type GroupMetadata struct {
	ID           WID                `json:"id"`
	Subject      string             `json:"subject"`
	Owner        *WID               `json:"owner,omitempty"`
	Creation     int64              `json:"creation"`
	Desc         string             `json:"desc,omitempty"`
	Announce     bool               `json:"announce"`
	Restrict     bool               `json:"restrict"`
	Participants []GroupParticipant `json:"participants"`
}

type Chat struct {
	ID             WID            `json:"id"`
	Name           string         `json:"name"`
	IsGroup        bool           `json:"isGroup"`
	IsReadOnly     bool           `json:"isReadOnly"`
	UnreadCount    int            `json:"unreadCount"`
	Timestamp      int64          `json:"timestamp"`
	Archived       bool           `json:"archived"`
	Pinned         bool           `json:"pinned"`
	IsMuted        bool           `json:"isMuted"`
	MuteExpiration int64          `json:"muteExpiration"`
	LastMessage    *Message       `json:"lastMessage,omitempty"`
	GroupMetadata  *GroupMetadata `json:"groupMetadata,omitempty"`
	Labels         []string       `json:"labels,omitempty"`
}

type Contact struct {
	ID           WID      `json:"id"`
	Number       string   `json:"number"`
	IsBusiness   bool     `json:"isBusiness"`
	IsEnterprise bool     `json:"isEnterprise"`
	Name         string   `json:"name,omitempty"`
	Pushname     string   `json:"pushname,omitempty"`
	ShortName    string   `json:"shortName,omitempty"`
	IsMe         bool     `json:"isMe"`
	IsUser       bool     `json:"isUser"`
	IsGroup      bool     `json:"isGroup"`
	IsWAContact  bool     `json:"isWAContact"`
	IsMyContact  bool     `json:"isMyContact"`
	IsBlocked    bool     `json:"isBlocked"`
	Labels       []string `json:"labels,omitempty"`
}

// DisplayName picks the best known name for the contact.
func (c Contact) DisplayName() string {
	for _, name := range []string{c.Name, c.Pushname, c.ShortName, c.Number} {
		if name != "" {
			return name
		}
	}
	return c.ID.User
}

type Label struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	HexColor string `json:"hexColor"`
}

type Call struct {
	ID                    string   `json:"id"`
	From                  string   `json:"from"`
	Timestamp             int64    `json:"timestamp"`
	IsVideo               bool     `json:"isVideo"`
	IsGroup               bool     `json:"isGroup"`
	FromMe                bool     `json:"fromMe"`
	CanHandleLocally      bool     `json:"canHandleLocally"`
	WebClientShouldHandle bool     `json:"webClientShouldHandle"`
	Participants          []string `json:"participants,omitempty"`
}

func (c *Call) UnmarshalJSON(data []byte) error {
	var p struct {
		ID                    string            `json:"id"`
		Peer                  json.RawMessage   `json:"peerJid"`
		From                  json.RawMessage   `json:"from"`
		OfferTime             int64             `json:"offerTime"`
		Timestamp             int64             `json:"timestamp"`
		IsVideo               bool              `json:"isVideo"`
		IsGroup               bool              `json:"isGroup"`
		OutgoingCall          bool              `json:"outgoing"`
		FromMe                bool              `json:"fromMe"`
		CanHandleLocally      bool              `json:"canHandleLocally"`
		WebClientShouldHandle bool              `json:"webClientShouldHandle"`
		Participants          []json.RawMessage `json:"participants"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*c = Call{
		ID:                    p.ID,
		From:                  widString(p.From),
		Timestamp:             p.Timestamp,
		IsVideo:               p.IsVideo,
		IsGroup:               p.IsGroup,
		FromMe:                p.FromMe || p.OutgoingCall,
		CanHandleLocally:      p.CanHandleLocally,
		WebClientShouldHandle: p.WebClientShouldHandle,
		Participants:          widStrings(p.Participants),
	}
	if c.From == "" {
		c.From = widString(p.Peer)
	}
	if c.Timestamp == 0 {
		c.Timestamp = p.OfferTime
	}
	return nil
}

// Reaction is a single emoji reaction to a message.
type Reaction struct {
	ID           MessageID  `json:"id"`
	Orphan       int        `json:"orphan"`
	OrphanReason string     `json:"orphanReason,omitempty"`
	Timestamp    int64      `json:"timestamp"`
	Reaction     string     `json:"reaction"`
	Read         bool       `json:"read"`
	MsgID        MessageID  `json:"msgId"`
	SenderID     string     `json:"senderId"`
	Ack          MessageAck `json:"ack"`
}

// GroupNotification describes a membership or settings change in a group.
type GroupNotification struct {
	ID           MessageID `json:"id"`
	Body         string    `json:"body"`
	Type         string    `json:"type"`
	Timestamp    int64     `json:"timestamp"`
	ChatID       string    `json:"chatId"`
	Author       string    `json:"author,omitempty"`
	RecipientIDs []string  `json:"recipientIds"`
}

// NewGroupNotification derives the notification view of a gp2 message.
func NewGroupNotification(m *Message) *GroupNotification {
	chatID := m.From
	if m.ID.FromMe {
		chatID = m.To
	}
	if m.ID.Remote != "" {
		chatID = m.ID.Remote
	}
	return &GroupNotification{
		ID:           m.ID,
		Body:         m.Body,
		Type:         m.Subtype,
		Timestamp:    m.Timestamp,
		ChatID:       chatID,
		Author:       m.Author,
		RecipientIDs: append([]string(nil), m.Recipients...),
	}
}

type ClientInfo struct {
	Pushname string `json:"pushname"`
	WID      WID    `json:"wid"`
	Platform string `json:"platform"`
}

// IsBusiness reports whether the logged in account runs a business app.
func (c ClientInfo) IsBusiness() bool {
	return c.Platform == "smba" || c.Platform == "smbi"
}

type BatteryInfo struct {
	Battery int  `json:"battery"`
	Plugged bool `json:"plugged"`
}

// MessageMedia is an attachment descriptor: base64 data plus metadata.
type MessageMedia struct {
	Mimetype string `json:"mimetype"`
	Data     string `json:"data"`
	Filename string `json:"filename,omitempty"`
	Filesize int64  `json:"filesize,omitempty"`
}

// ContactCard sends one or more contacts as vCards.
type ContactCard struct {
	IDs []string `json:"ids"`
}

type InviteInfo struct {
	ID           WID    `json:"id"`
	Subject      string `json:"subject"`
	Owner        *WID   `json:"owner,omitempty"`
	Size         int    `json:"size"`
	Creation     int64  `json:"creation"`
	Desc         string `json:"desc,omitempty"`
	Participants []WID  `json:"participants,omitempty"`
}

// CreateGroupResult lists the participants the server refused keyed by id,
// with the status code as value.
type CreateGroupResult struct {
	GID                 WID               `json:"gid"`
	MissingParticipants map[string]string `json:"missingParticipants"`
}
