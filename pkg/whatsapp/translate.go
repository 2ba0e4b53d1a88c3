package whatsapp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gdbrns/go-whatsapp-web-bridge/pkg/whatsapp/events"
	"github.com/gdbrns/go-whatsapp-web-bridge/pkg/whatsapp/types"
)

const translateLookupTimeout = 30 * time.Second

func decodeArg(args []json.RawMessage, index int, out interface{}) error {
	if index >= len(args) {
		return fmt.Errorf("missing argument %d", index)
	}
	if err := json.Unmarshal(args[index], out); err != nil {
		return fmt.Errorf("argument %d: %w", index, err)
	}
	return nil
}

func messageArg(args []json.RawMessage, index int) (*types.Message, error) {
	if index >= len(args) {
		return nil, fmt.Errorf("missing argument %d", index)
	}
	return types.ParseMessage(args[index])
}

func (r *relay) onAddMessage(args []json.RawMessage) ([]interface{}, error) {
	msg, err := messageArg(args, 0)
	if err != nil || msg == nil {
		return nil, err
	}
	if msg.Type == types.MessageTypeCiphertext {
		// decrypted content arrives later as a type change
		r.pendingCiphertext.add(msg.ID.Serialized)
		return nil, nil
	}
	return translateNewMessage(msg), nil
}

func translateNewMessage(msg *types.Message) []interface{} {
	if msg.Type == types.MessageTypeGroupNotification {
		notification := types.NewGroupNotification(msg)
		switch msg.Subtype {
		case types.GroupNotificationAdd, types.GroupNotificationInvite, types.GroupNotificationLinkedGroupJoin:
			return []interface{}{&events.GroupJoin{Notification: notification}}
		case types.GroupNotificationRemove, types.GroupNotificationLeave:
			return []interface{}{&events.GroupLeave{Notification: notification}}
		case types.GroupNotificationPromote, types.GroupNotificationDemote:
			return []interface{}{&events.GroupAdminChanged{Notification: notification}}
		default:
			return []interface{}{&events.GroupUpdate{Notification: notification}}
		}
	}

	out := []interface{}{&events.MessageCreate{Message: msg}}
	if !msg.ID.FromMe {
		out = append(out, &events.Message{Message: msg})
	}
	return out
}

func (r *relay) onChangeMessageType(args []json.RawMessage) ([]interface{}, error) {
	msg, err := messageArg(args, 0)
	if err != nil || msg == nil {
		return nil, err
	}

	var out []interface{}
	if msg.Type != types.MessageTypeCiphertext && r.pendingCiphertext.take(msg.ID.Serialized) {
		out = append(out, translateNewMessage(msg)...)
	}

	if msg.Type == types.MessageTypeRevoked {
		out = append(out, &events.MessageRevokeEveryone{
			Message: msg,
			Revoked: r.recent.get(msg.ID.ID),
		})
	}
	return out, nil
}

func (r *relay) onChangeMessage(args []json.RawMessage) ([]interface{}, error) {
	msg, err := messageArg(args, 0)
	if err != nil || msg == nil {
		return nil, err
	}
	if msg.Type != types.MessageTypeRevoked {
		r.recent.put(msg)
	}

	if evt := contactChange(msg); evt != nil {
		return []interface{}{evt}, nil
	}
	return nil, nil
}

// contactChange detects number changes reported either as a group
// participant modification or as a contact notification template.
func contactChange(msg *types.Message) *events.ContactChanged {
	switch {
	case msg.Type == types.MessageTypeGroupNotification && msg.Subtype == types.GroupNotificationModify:
		if len(msg.Recipients) == 0 {
			return nil
		}
		return &events.ContactChanged{
			Message: msg,
			OldID:   msg.Author,
			NewID:   msg.Recipients[0],
		}
	case msg.Type == types.MessageTypeNotificationTemplate && msg.Subtype == types.GroupNotificationChangeNumber:
		newID := msg.To
		var oldID string
		for _, param := range msg.TemplateParams {
			if param != newID {
				oldID = param
				break
			}
		}
		return &events.ContactChanged{
			Message:   msg,
			OldID:     oldID,
			NewID:     newID,
			IsContact: true,
		}
	}
	return nil
}

func (r *relay) onRemoveMessage(args []json.RawMessage) ([]interface{}, error) {
	msg, err := messageArg(args, 0)
	if err != nil || msg == nil {
		return nil, err
	}
	if !msg.IsNewMsg {
		return nil, nil
	}
	return []interface{}{&events.MessageRevokeMe{Message: msg}}, nil
}

func (r *relay) onMessageAck(args []json.RawMessage) ([]interface{}, error) {
	msg, err := messageArg(args, 0)
	if err != nil || msg == nil {
		return nil, err
	}
	var ack types.MessageAck
	if err := decodeArg(args, 1, &ack); err != nil {
		return nil, err
	}
	return []interface{}{&events.MessageAck{Message: msg, Ack: ack}}, nil
}

func (r *relay) onChatUnreadCount(args []json.RawMessage) ([]interface{}, error) {
	var ref struct {
		ID types.WID `json:"id"`
	}
	if err := decodeArg(args, 0, &ref); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(r.session.ctx, translateLookupTimeout)
	defer cancel()
	chat, err := r.client.chatByID(ctx, r.session, ref.ID.String())
	if err != nil {
		return nil, err
	}
	return []interface{}{&events.UnreadCount{Chat: chat}}, nil
}

func (r *relay) onMediaUploaded(args []json.RawMessage) ([]interface{}, error) {
	msg, err := messageArg(args, 0)
	if err != nil || msg == nil {
		return nil, err
	}
	return []interface{}{&events.MediaUploaded{Message: msg}}, nil
}

func (r *relay) onAppStateChanged(args []json.RawMessage) ([]interface{}, error) {
	var state types.WAState
	if err := decodeArg(args, 0, &state); err != nil {
		return nil, err
	}
	r.session.watchdog.onState(state)
	return nil, nil
}

func (r *relay) onBatteryStateChanged(args []json.RawMessage) ([]interface{}, error) {
	var raw struct {
		Battery *int `json:"battery"`
		Plugged bool `json:"plugged"`
	}
	if err := decodeArg(args, 0, &raw); err != nil {
		return nil, err
	}
	if raw.Battery == nil {
		return nil, nil
	}
	return []interface{}{&events.BatteryChanged{
		Battery: types.BatteryInfo{Battery: *raw.Battery, Plugged: raw.Plugged},
	}}, nil
}

func (r *relay) onIncomingCall(args []json.RawMessage) ([]interface{}, error) {
	var call types.Call
	if err := decodeArg(args, 0, &call); err != nil {
		return nil, err
	}
	return []interface{}{&events.IncomingCall{Call: &call}}, nil
}

type rawReaction struct {
	MsgKey        string           `json:"msgKey"`
	ParentMsgKey  string           `json:"parentMsgKey"`
	SenderUserJid string           `json:"senderUserJid"`
	ReactionText  string           `json:"reactionText"`
	Orphan        int              `json:"orphan"`
	OrphanReason  string           `json:"orphanReason"`
	Timestamp     int64            `json:"timestamp"`
	Read          bool             `json:"read"`
	Ack           types.MessageAck `json:"ack"`
}

// onReaction fans a batch of raw reactions out into one event each. Keys
// arrive serialized and timestamps in milliseconds.
func (r *relay) onReaction(args []json.RawMessage) ([]interface{}, error) {
	var batch []rawReaction
	if err := decodeArg(args, 0, &batch); err != nil {
		return nil, err
	}
	out := make([]interface{}, 0, len(batch))
	for _, raw := range batch {
		reaction, err := resolveReaction(raw)
		if err != nil {
			r.client.log.WithError(err).Warn("Skipping unreadable reaction")
			continue
		}
		out = append(out, &events.MessageReaction{Reaction: reaction})
	}
	return out, nil
}

func resolveReaction(raw rawReaction) (*types.Reaction, error) {
	id, err := types.ParseMessageID(raw.MsgKey)
	if err != nil {
		return nil, err
	}
	parent, err := types.ParseMessageID(raw.ParentMsgKey)
	if err != nil {
		return nil, err
	}
	return &types.Reaction{
		ID:           id,
		Orphan:       raw.Orphan,
		OrphanReason: raw.OrphanReason,
		Timestamp:    raw.Timestamp / 1000,
		Reaction:     raw.ReactionText,
		Read:         raw.Read,
		MsgID:        parent,
		SenderID:     raw.SenderUserJid,
		Ack:          raw.Ack,
	}, nil
}

func (r *relay) onRemoveChat(args []json.RawMessage) ([]interface{}, error) {
	var chat types.Chat
	if err := decodeArg(args, 0, &chat); err != nil {
		return nil, err
	}
	return []interface{}{&events.ChatRemoved{Chat: &chat}}, nil
}

func (r *relay) onArchiveChat(args []json.RawMessage) ([]interface{}, error) {
	var chat types.Chat
	var curr, prev bool
	if err := decodeArg(args, 0, &chat); err != nil {
		return nil, err
	}
	if err := decodeArg(args, 1, &curr); err != nil {
		return nil, err
	}
	if err := decodeArg(args, 2, &prev); err != nil {
		return nil, err
	}
	return []interface{}{&events.ChatArchived{Chat: &chat, CurrState: curr, PrevState: prev}}, nil
}

func (r *relay) onEditMessage(args []json.RawMessage) ([]interface{}, error) {
	msg, err := messageArg(args, 0)
	if err != nil || msg == nil {
		return nil, err
	}
	if msg.Type == types.MessageTypeRevoked {
		return nil, nil
	}
	var newBody, prevBody string
	if err := decodeArg(args, 1, &newBody); err != nil {
		return nil, err
	}
	if err := decodeArg(args, 2, &prevBody); err != nil {
		return nil, err
	}
	return []interface{}{&events.MessageEdit{Message: msg, NewBody: newBody, PrevBody: prevBody}}, nil
}
