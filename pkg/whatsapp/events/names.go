package events

// Public event names, as delivered to webhooks and logs.
const (
	NameQR                    = "qr"
	NamePairingCode           = "code"
	NameLoadingScreen         = "loading_screen"
	NameAuthenticated         = "authenticated"
	NameAuthFailure           = "auth_failure"
	NameReady                 = "ready"
	NameDisconnected          = "disconnected"
	NameStateChanged          = "change_state"
	NameMessage               = "message"
	NameMessageCreate         = "message_create"
	NameMessageAck            = "message_ack"
	NameMessageRevokeEveryone = "message_revoke_everyone"
	NameMessageRevokeMe       = "message_revoke_me"
	NameMessageEdit           = "message_edit"
	NameMessageReaction       = "message_reaction"
	NameMediaUploaded         = "media_uploaded"
	NameGroupJoin             = "group_join"
	NameGroupLeave            = "group_leave"
	NameGroupAdminChanged     = "group_admin_changed"
	NameGroupUpdate           = "group_update"
	NameContactChanged        = "contact_changed"
	NameChatRemoved           = "chat_removed"
	NameChatArchived          = "chat_archived"
	NameUnreadCount           = "unread_count"
	NameBatteryChanged        = "change_battery"
	NameIncomingCall          = "incoming_call"
)

// Names lists every public event name.
var Names = []string{
	NameQR, NamePairingCode, NameLoadingScreen, NameAuthenticated, NameAuthFailure,
	NameReady, NameDisconnected, NameStateChanged, NameMessage, NameMessageCreate,
	NameMessageAck, NameMessageRevokeEveryone, NameMessageRevokeMe, NameMessageEdit,
	NameMessageReaction, NameMediaUploaded, NameGroupJoin, NameGroupLeave,
	NameGroupAdminChanged, NameGroupUpdate, NameContactChanged, NameChatRemoved,
	NameChatArchived, NameUnreadCount, NameBatteryChanged, NameIncomingCall,
}

// Name returns the public name of evt, or "" for values that are not client events.
func Name(evt interface{}) string {
	switch evt.(type) {
	case *QR:
		return NameQR
	case *PairingCode:
		return NamePairingCode
	case *LoadingScreen:
		return NameLoadingScreen
	case *Authenticated:
		return NameAuthenticated
	case *AuthFailure:
		return NameAuthFailure
	case *Ready:
		return NameReady
	case *Disconnected:
		return NameDisconnected
	case *StateChanged:
		return NameStateChanged
	case *Message:
		return NameMessage
	case *MessageCreate:
		return NameMessageCreate
	case *MessageAck:
		return NameMessageAck
	case *MessageRevokeEveryone:
		return NameMessageRevokeEveryone
	case *MessageRevokeMe:
		return NameMessageRevokeMe
	case *MessageEdit:
		return NameMessageEdit
	case *MessageReaction:
		return NameMessageReaction
	case *MediaUploaded:
		return NameMediaUploaded
	case *GroupJoin:
		return NameGroupJoin
	case *GroupLeave:
		return NameGroupLeave
	case *GroupAdminChanged:
		return NameGroupAdminChanged
	case *GroupUpdate:
		return NameGroupUpdate
	case *ContactChanged:
		return NameContactChanged
	case *ChatRemoved:
		return NameChatRemoved
	case *ChatArchived:
		return NameChatArchived
	case *UnreadCount:
		return NameUnreadCount
	case *BatteryChanged:
		return NameBatteryChanged
	case *IncomingCall:
		return NameIncomingCall
	default:
		return ""
	}
}

// IsKnown reports whether name is a public event name.
func IsKnown(name string) bool {
	for _, n := range Names {
		if n == name {
			return true
		}
	}
	return false
}
