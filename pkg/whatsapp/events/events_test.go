package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNameCoversEveryEvent(t *testing.T) {
	all := []interface{}{
		&QR{}, &PairingCode{}, &LoadingScreen{}, &Authenticated{}, &AuthFailure{},
		&Ready{}, &Disconnected{}, &StateChanged{}, &Message{}, &MessageCreate{},
		&MessageAck{}, &MessageRevokeEveryone{}, &MessageRevokeMe{}, &MessageEdit{},
		&MessageReaction{}, &MediaUploaded{}, &GroupJoin{}, &GroupLeave{},
		&GroupAdminChanged{}, &GroupUpdate{}, &ContactChanged{}, &ChatRemoved{},
		&ChatArchived{}, &UnreadCount{}, &BatteryChanged{}, &IncomingCall{},
	}
	assert.Len(t, Names, len(all))

	seen := map[string]bool{}
	for _, evt := range all {
		name := Name(evt)
		assert.NotEmpty(t, name, "%T", evt)
		assert.True(t, IsKnown(name), name)
		assert.False(t, seen[name], "duplicate name %s", name)
		seen[name] = true
	}
}

func TestNameUnknown(t *testing.T) {
	assert.Equal(t, "", Name("qr"))
	assert.Equal(t, "", Name(QR{}))
	assert.False(t, IsKnown("message.received"))
}
