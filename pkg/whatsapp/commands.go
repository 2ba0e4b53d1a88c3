package whatsapp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gdbrns/go-whatsapp-web-bridge/pkg/whatsapp/types"
)

// MaxPinnedChats is how many chats WhatsApp lets a user pin.
const MaxPinnedChats = 3

const (
	screenshotWidth  = 961
	screenshotHeight = 2000
)

func (c *Client) readySession() (*session, error) {
	s := c.current()
	if s == nil {
		return nil, ErrBridgeNotReady
	}
	if c.isDestroyed(s) {
		return nil, fmt.Errorf("%w: %w", ErrBridgeNotReady, ErrSessionDestroyed)
	}
	if !s.relay.Ready() {
		return nil, ErrBridgeNotReady
	}
	return s, nil
}

// call runs js against the ready page and decodes the result into out.
func (c *Client) call(ctx context.Context, op string, out interface{}, js string, args ...interface{}) error {
	s, err := c.readySession()
	if err != nil {
		return err
	}
	return c.callOn(ctx, s, op, out, js, args...)
}

func (c *Client) callOn(ctx context.Context, s *session, op string, out interface{}, js string, args ...interface{}) error {
	raw, err := s.page.Evaluate(ctx, js, args...)
	if err != nil {
		return remoteError(op, err)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s: decode result: %w", op, err)
	}
	return nil
}

func notFound(op, what string) error {
	return &RemoteOperationError{
		Op:       op,
		Category: CategoryNotFound,
		Message:  what + " not found",
	}
}

// GetWWebVersion returns the WhatsApp Web version running in the page.
func (c *Client) GetWWebVersion(ctx context.Context) (string, error) {
	var version string
	err := c.call(ctx, "get web version", &version, jsGetWWebVersion)
	return version, err
}

func (c *Client) SendSeen(ctx context.Context, chatID string) (bool, error) {
	chatID, err := NormalizeChatID(chatID)
	if err != nil {
		return false, err
	}
	var ok bool
	err = c.call(ctx, "send seen", &ok, jsSendSeen, chatID)
	return ok, err
}

// SearchOptions narrow SearchMessages. Zero values search every chat, page 1, 10 results.
type SearchOptions struct {
	ChatID string
	Page   int
	Limit  int
}

func (c *Client) SearchMessages(ctx context.Context, query string, opts SearchOptions) ([]*types.Message, error) {
	if strings.TrimSpace(query) == "" {
		return nil, invalidArgument("search query is empty")
	}
	page, limit := opts.Page, opts.Limit
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}
	var remote interface{}
	if opts.ChatID != "" {
		chatID, err := NormalizeChatID(opts.ChatID)
		if err != nil {
			return nil, err
		}
		remote = chatID
	}
	var messages []*types.Message
	err := c.call(ctx, "search messages", &messages, jsSearchMessages, query, page, limit, remote)
	return messages, err
}

func (c *Client) GetChats(ctx context.Context) ([]*types.Chat, error) {
	var chats []*types.Chat
	err := c.call(ctx, "get chats", &chats, jsGetChats)
	return chats, err
}

func (c *Client) GetChatByID(ctx context.Context, chatID string) (*types.Chat, error) {
	s, err := c.readySession()
	if err != nil {
		return nil, err
	}
	chatID, err = NormalizeChatID(chatID)
	if err != nil {
		return nil, err
	}
	return c.chatByID(ctx, s, chatID)
}

// chatByID is used by the relay itself, so it does not wait for readiness.
func (c *Client) chatByID(ctx context.Context, s *session, chatID string) (*types.Chat, error) {
	var chat *types.Chat
	if err := c.callOn(ctx, s, "get chat", &chat, jsGetChat, chatID); err != nil {
		return nil, err
	}
	if chat == nil {
		return nil, notFound("get chat", "chat "+chatID)
	}
	return chat, nil
}

func (c *Client) GetContacts(ctx context.Context) ([]*types.Contact, error) {
	var contacts []*types.Contact
	err := c.call(ctx, "get contacts", &contacts, jsGetContacts)
	return contacts, err
}

func (c *Client) GetContactByID(ctx context.Context, contactID string) (*types.Contact, error) {
	contactID, err := NormalizeChatID(contactID)
	if err != nil {
		return nil, err
	}
	var contact *types.Contact
	if err := c.call(ctx, "get contact", &contact, jsGetContact, contactID); err != nil {
		return nil, err
	}
	if contact == nil {
		return nil, notFound("get contact", "contact "+contactID)
	}
	return contact, nil
}

func (c *Client) GetMessageByID(ctx context.Context, messageID string) (*types.Message, error) {
	if err := validateMessageID(messageID); err != nil {
		return nil, err
	}
	var raw json.RawMessage
	if err := c.call(ctx, "get message", &raw, jsGetMessageByID, messageID); err != nil {
		return nil, err
	}
	msg, err := types.ParseMessage(raw)
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, notFound("get message", "message "+messageID)
	}
	return msg, nil
}

// GetState returns the app state, or an empty state when the page has none.
func (c *Client) GetState(ctx context.Context) (types.WAState, error) {
	var state *types.WAState
	if err := c.call(ctx, "get state", &state, jsGetState); err != nil {
		return "", err
	}
	if state == nil {
		return "", nil
	}
	return *state, nil
}

func (c *Client) SendPresenceAvailable(ctx context.Context) error {
	return c.call(ctx, "send presence available", nil, jsSendPresence, true)
}

func (c *Client) SendPresenceUnavailable(ctx context.Context) error {
	return c.call(ctx, "send presence unavailable", nil, jsSendPresence, false)
}

func (c *Client) ArchiveChat(ctx context.Context, chatID string) (bool, error) {
	return c.setArchived(ctx, chatID, true)
}

func (c *Client) UnarchiveChat(ctx context.Context, chatID string) (bool, error) {
	return c.setArchived(ctx, chatID, false)
}

func (c *Client) setArchived(ctx context.Context, chatID string, archive bool) (bool, error) {
	chatID, err := NormalizeChatID(chatID)
	if err != nil {
		return false, err
	}
	var archived bool
	err = c.call(ctx, "archive chat", &archived, jsArchiveChat, chatID, archive)
	return archived, err
}

type pinState struct {
	Pinned         bool `json:"pinned"`
	Total          int  `json:"total"`
	BoundaryPinned bool `json:"boundaryPinned"`
}

// pinDecision applies the pin limit. An already pinned chat reports success
// without a mutation, and a full pin list refuses without one.
func pinDecision(state pinState, limit int) (pinned bool, mutate bool) {
	if state.Pinned {
		return true, false
	}
	if state.Total > limit && state.BoundaryPinned {
		return false, false
	}
	return true, true
}

// PinChat pins a chat. It returns false when MaxPinnedChats are already pinned.
func (c *Client) PinChat(ctx context.Context, chatID string) (bool, error) {
	chatID, err := NormalizeChatID(chatID)
	if err != nil {
		return false, err
	}
	var state pinState
	if err := c.call(ctx, "pin chat", &state, jsPinState, chatID, MaxPinnedChats); err != nil {
		return false, err
	}
	result, mutate := pinDecision(state, MaxPinnedChats)
	if !mutate {
		return result, nil
	}
	var pinned bool
	err = c.call(ctx, "pin chat", &pinned, jsSetPinned, chatID, true)
	return pinned, err
}

// UnpinChat unpins a chat and returns the resulting pin flag.
func (c *Client) UnpinChat(ctx context.Context, chatID string) (bool, error) {
	chatID, err := NormalizeChatID(chatID)
	if err != nil {
		return false, err
	}
	var state pinState
	if err := c.call(ctx, "unpin chat", &state, jsPinState, chatID, MaxPinnedChats); err != nil {
		return false, err
	}
	if !state.Pinned {
		return false, nil
	}
	var pinned bool
	err = c.call(ctx, "unpin chat", &pinned, jsSetPinned, chatID, false)
	return pinned, err
}

// MuteChat mutes a chat until the given time. A zero time mutes forever.
func (c *Client) MuteChat(ctx context.Context, chatID string, until time.Time) error {
	chatID, err := NormalizeChatID(chatID)
	if err != nil {
		return err
	}
	expiration := int64(-1)
	if !until.IsZero() {
		if !until.After(time.Now()) {
			return invalidArgument("mute expiration %s is in the past", until.Format(time.RFC3339))
		}
		expiration = until.Unix()
	}
	return c.call(ctx, "mute chat", nil, jsMuteChat, chatID, expiration)
}

func (c *Client) UnmuteChat(ctx context.Context, chatID string) error {
	chatID, err := NormalizeChatID(chatID)
	if err != nil {
		return err
	}
	return c.call(ctx, "unmute chat", nil, jsMuteChat, chatID, 0)
}

func (c *Client) MarkChatUnread(ctx context.Context, chatID string) error {
	chatID, err := NormalizeChatID(chatID)
	if err != nil {
		return err
	}
	return c.call(ctx, "mark chat unread", nil, jsMarkChatUnread, chatID)
}

// GetProfilePicURL returns an empty string when the contact has no picture
// or hides it.
func (c *Client) GetProfilePicURL(ctx context.Context, contactID string) (string, error) {
	contactID, err := NormalizeChatID(contactID)
	if err != nil {
		return "", err
	}
	var url string
	err = c.call(ctx, "get profile picture", &url, jsGetProfilePicURL, contactID)
	return url, err
}

func (c *Client) GetCommonGroups(ctx context.Context, contactID string) ([]string, error) {
	contactID, err := NormalizeUserID(contactID)
	if err != nil {
		return nil, err
	}
	var groups []string
	err = c.call(ctx, "get common groups", &groups, jsGetCommonGroups, contactID)
	return groups, err
}

// ResetState forces the page to reconnect to the WhatsApp servers.
func (c *Client) ResetState(ctx context.Context) error {
	return c.call(ctx, "reset state", nil, jsResetState)
}

func (c *Client) IsRegisteredUser(ctx context.Context, id string) (bool, error) {
	numberID, err := c.GetNumberID(ctx, id)
	if err != nil {
		return false, err
	}
	return numberID != "", nil
}

// GetNumberID resolves a phone number to its WhatsApp id. The result is empty
// when the number is not on WhatsApp.
func (c *Client) GetNumberID(ctx context.Context, number string) (string, error) {
	userID, err := NormalizeUserID(number)
	if err != nil {
		return "", err
	}
	var id *string
	if err := c.call(ctx, "get number id", &id, jsGetNumberID, userID); err != nil {
		return "", err
	}
	if id == nil {
		return "", nil
	}
	return *id, nil
}

func (c *Client) GetFormattedNumber(ctx context.Context, number string) (string, error) {
	if strings.TrimSpace(number) == "" {
		return "", invalidArgument("number is empty")
	}
	var formatted string
	err := c.call(ctx, "get formatted number", &formatted, jsGetFormattedNumber, whatsappNetID(number))
	return formatted, err
}

var countryCodeCleaner = strings.NewReplacer(" ", "", "+", "", "@c.us", "")

func (c *Client) GetCountryCode(ctx context.Context, number string) (string, error) {
	number = countryCodeCleaner.Replace(number)
	if number == "" {
		return "", invalidArgument("number is empty")
	}
	var code json.Number
	if err := c.call(ctx, "get country code", &code, jsGetCountryCode, number); err != nil {
		return "", err
	}
	return code.String(), nil
}

// GetName returns the best known display name for a contact.
func (c *Client) GetName(ctx context.Context, contactID string) (string, error) {
	contact, err := c.GetContactByID(ctx, contactID)
	if err != nil {
		return "", err
	}
	return contact.DisplayName(), nil
}

// Screenshot captures the page as PNG at a tall viewport, then restores the
// configured one.
func (c *Client) Screenshot(ctx context.Context) ([]byte, error) {
	s := c.current()
	if s == nil || c.isDestroyed(s) {
		return nil, ErrBridgeNotReady
	}
	if err := s.page.SetViewport(ctx, screenshotWidth, screenshotHeight); err != nil {
		return nil, err
	}
	defer func() {
		viewport := c.opts.Browser.Viewport
		if err := s.page.SetViewport(context.Background(), viewport.Width, viewport.Height); err != nil && !c.benign(s, err) {
			c.log.WithError(err).Debug("Viewport not restored after screenshot")
		}
	}()
	return s.page.Screenshot(ctx)
}
