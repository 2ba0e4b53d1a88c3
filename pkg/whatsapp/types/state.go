package types

// WAState is the connection state reported by the page's app state store.
type WAState string

const (
	StateConflict          WAState = "CONFLICT"
	StateConnected         WAState = "CONNECTED"
	StateDeprecatedVersion WAState = "DEPRECATED_VERSION"
	StateOpening           WAState = "OPENING"
	StatePairing           WAState = "PAIRING"
	StateProxyBlock        WAState = "PROXYBLOCK"
	StateSMBTOSBlock       WAState = "SMB_TOS_BLOCK"
	StateTimeout           WAState = "TIMEOUT"
	StateTOSBlock          WAState = "TOS_BLOCK"
	StateUnlaunched        WAState = "UNLAUNCHED"
	StateUnpaired          WAState = "UNPAIRED"
	StateUnpairedIdle      WAState = "UNPAIRED_IDLE"
)

// MessageAck is the delivery state of a message.
type MessageAck int

const (
	AckError   MessageAck = -1
	AckPending MessageAck = 0
	AckServer  MessageAck = 1
	AckDevice  MessageAck = 2
	AckRead    MessageAck = 3
	AckPlayed  MessageAck = 4
)

func (a MessageAck) String() string {
	switch a {
	case AckError:
		return "error"
	case AckPending:
		return "pending"
	case AckServer:
		return "server"
	case AckDevice:
		return "device"
	case AckRead:
		return "read"
	case AckPlayed:
		return "played"
	default:
		return "unknown"
	}
}

// Message types the client reacts to.
const (
	MessageTypeText                 = "chat"
	MessageTypeCiphertext           = "ciphertext"
	MessageTypeRevoked              = "revoked"
	MessageTypeGroupNotification    = "gp2"
	MessageTypeNotificationTemplate = "notification_template"
	MessageTypeE2ENotification      = "e2e_notification"
	MessageTypeImage                = "image"
	MessageTypeVideo                = "video"
	MessageTypeAudio                = "audio"
	MessageTypeVoice                = "ptt"
	MessageTypeDocument             = "document"
	MessageTypeSticker              = "sticker"
	MessageTypeLocation             = "location"
	MessageTypeContactCard          = "vcard"
	MessageTypeContactCardMulti     = "multi_vcard"
	MessageTypeGroupInvite          = "groups_v4_invite"
)

// Group notification subtypes.
const (
	GroupNotificationAdd             = "add"
	GroupNotificationInvite          = "invite"
	GroupNotificationLinkedGroupJoin = "linked_group_join"
	GroupNotificationRemove          = "remove"
	GroupNotificationLeave           = "leave"
	GroupNotificationPromote         = "promote"
	GroupNotificationDemote          = "demote"
	GroupNotificationModify          = "modify"
	GroupNotificationChangeNumber    = "change_number"
)
