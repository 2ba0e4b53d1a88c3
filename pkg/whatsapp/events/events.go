// Package events contains the events emitted by the WhatsApp Web client.
// Handlers registered with Client.AddEventHandler receive pointers to these
// structs and are expected to type-switch on them.
package events

import (
	"github.com/gdbrns/go-whatsapp-web-bridge/pkg/whatsapp/types"
)

// QR is emitted for every new pairing QR token.
type QR struct {
	Code string
}

// PairingCode is emitted for every distinct phone-linking code.
type PairingCode struct {
	Code string
}

// LoadingScreen reports the web app's own loading progress.
type LoadingScreen struct {
	Percent int
	Message string
}

// Authenticated is emitted once the main UI is reached. Payload is whatever
// the auth strategy returned, usually session data worth persisting.
type Authenticated struct {
	Payload interface{}
}

// AuthFailure is emitted when the auth strategy rejects a pairing request.
// Err wraps whatsapp.ErrAuthenticationFailure.
type AuthFailure struct {
	Message string
	Err     error `json:"-"`
}

// Ready is emitted after the page runtime is wired and commands can be issued.
type Ready struct{}

// Disconnected is emitted once per session end. Reason is a WAState value,
// "NAVIGATION", or a descriptive message.
type Disconnected struct {
	Reason string
	// Err is set when the disconnect has a sentinel cause, such as
	// whatsapp.ErrMaxPairingRetries.
	Err error `json:"-"`
}

// StateChanged mirrors every app state transition observed in the page.
type StateChanged struct {
	State types.WAState
}

// Message is emitted for incoming new messages (not sent by this account).
type Message struct {
	Message *types.Message
}

// MessageCreate is emitted for every new message, including our own.
type MessageCreate struct {
	Message *types.Message
}

type MessageAck struct {
	Message *types.Message
	Ack     types.MessageAck
}

// MessageRevokeEveryone pairs the revoke notice with the revoked message when it
// was still known to the client.
type MessageRevokeEveryone struct {
	Message *types.Message
	Revoked *types.Message
}

// MessageRevokeMe is emitted when a message is deleted only for this account.
type MessageRevokeMe struct {
	Message *types.Message
}

type MessageEdit struct {
	Message  *types.Message
	NewBody  string
	PrevBody string
}

type MessageReaction struct {
	Reaction *types.Reaction
}

type MediaUploaded struct {
	Message *types.Message
}

type GroupJoin struct {
	Notification *types.GroupNotification
}

type GroupLeave struct {
	Notification *types.GroupNotification
}

type GroupAdminChanged struct {
	Notification *types.GroupNotification
}

type GroupUpdate struct {
	Notification *types.GroupNotification
}

// ContactChanged is emitted when a participant changes number (IsContact false)
// or a contact reports a number change (IsContact true).
type ContactChanged struct {
	Message   *types.Message
	OldID     string
	NewID     string
	IsContact bool
}

type ChatRemoved struct {
	Chat *types.Chat
}

type ChatArchived struct {
	Chat      *types.Chat
	CurrState bool
	PrevState bool
}

type UnreadCount struct {
	Chat *types.Chat
}

type BatteryChanged struct {
	Battery types.BatteryInfo
}

type IncomingCall struct {
	Call *types.Call
}
