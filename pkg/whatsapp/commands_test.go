package whatsapp

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gdbrns/go-whatsapp-web-bridge/pkg/whatsapp/types"
)

func TestCommandsRequireReadyBridge(t *testing.T) {
	c, err := NewClient(Options{Logger: quietLogger()})
	require.NoError(t, err)

	_, err = c.GetChats(context.Background())
	assert.ErrorIs(t, err, ErrBridgeNotReady)
	_, err = c.SendMessage(context.Background(), "6281234567890", "hi", nil)
	assert.ErrorIs(t, err, ErrBridgeNotReady)
	_, err = c.Screenshot(context.Background())
	assert.ErrorIs(t, err, ErrBridgeNotReady)
}

func TestCreateGroupReportsMissingParticipants(t *testing.T) {
	c, _, _ := newReadyClient(t, map[string]string{
		jsCreateGroup: `{"gid":{"server":"g.us","user":"120363000000","_serialized":"120363000000@g.us"},
			"participants":[{"id":"111@c.us","code":200},{"id":"222@c.us","code":403}]}`,
	})

	res, err := c.CreateGroup(context.Background(), "Test", []string{"111@c.us", "222@c.us"})
	require.NoError(t, err)
	assert.Equal(t, "120363000000@g.us", res.GID.String())
	assert.Equal(t, map[string]string{"222@c.us": "403"}, res.MissingParticipants)
}

func TestCreateGroupValidatesArguments(t *testing.T) {
	c, _, _ := newReadyClient(t, nil)

	_, err := c.CreateGroup(context.Background(), "", []string{"111@c.us"})
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = c.CreateGroup(context.Background(), "Test", nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = c.CreateGroup(context.Background(), "Test", []string{"120363000000@g.us"})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestPinDecision(t *testing.T) {
	tests := []struct {
		name       string
		state      pinState
		wantPinned bool
		wantMutate bool
	}{
		{"already pinned", pinState{Pinned: true, Total: 5, BoundaryPinned: true}, true, false},
		{"room left", pinState{Total: 2}, true, true},
		{"at limit", pinState{Total: 3, BoundaryPinned: true}, true, true},
		{"over limit", pinState{Total: 4, BoundaryPinned: true}, false, false},
		{"over limit boundary free", pinState{Total: 4}, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pinned, mutate := pinDecision(tt.state, MaxPinnedChats)
			assert.Equal(t, tt.wantPinned, pinned)
			assert.Equal(t, tt.wantMutate, mutate)
		})
	}
}

func TestPinChatSkipsMutationWhenAlreadyPinned(t *testing.T) {
	c, page, _ := newReadyClient(t, map[string]string{
		jsPinState: `{"pinned":true,"total":1,"boundaryPinned":false}`,
	})

	pinned, err := c.PinChat(context.Background(), "111@c.us")
	require.NoError(t, err)
	assert.True(t, pinned)
	assert.NotContains(t, page.evaluatedScripts(), jsSetPinned)
}

func TestPinChatRefusedWhenFull(t *testing.T) {
	c, page, _ := newReadyClient(t, map[string]string{
		jsPinState: `{"pinned":false,"total":4,"boundaryPinned":true}`,
	})

	pinned, err := c.PinChat(context.Background(), "111@c.us")
	require.NoError(t, err)
	assert.False(t, pinned)
	assert.NotContains(t, page.evaluatedScripts(), jsSetPinned)
}

func TestGetChatByIDNotFound(t *testing.T) {
	c, _, _ := newReadyClient(t, nil)

	_, err := c.GetChatByID(context.Background(), "111@c.us")
	assert.True(t, IsRemoteCategory(err, CategoryNotFound))
}

func TestRemoteErrorsAreCategorized(t *testing.T) {
	c, page, _ := newReadyClient(t, nil)
	page.mu.Lock()
	page.evaluate = func(js string, args []interface{}) (json.RawMessage, error) {
		return nil, errors.New("evaluate: Error: not-authorized")
	}
	page.mu.Unlock()

	_, err := c.GetCommonGroups(context.Background(), "111@c.us")
	var remote *RemoteOperationError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, CategoryPrivacyRestricted, remote.Category)
	assert.Equal(t, "Error: not-authorized", remote.Message)
}

func TestCategorize(t *testing.T) {
	assert.Equal(t, CategoryBusinessOnly, categorize("[LT01] Only Whatsapp business"))
	assert.Equal(t, CategoryNotFound, categorize("Error: item-not-found"))
	assert.Equal(t, CategoryPrivacyRestricted, categorize("403 forbidden"))
	assert.Equal(t, CategoryUnauthorized, categorize("401"))
	assert.Equal(t, CategoryUnknown, categorize("something odd"))
}

func TestAddOrRemoveLabelsRequiresBusiness(t *testing.T) {
	c, _, _ := newReadyClient(t, nil)

	err := c.AddOrRemoveLabels(context.Background(), []string{"1"}, []string{"111@c.us"})
	assert.True(t, IsRemoteCategory(err, CategoryBusinessOnly))
}

func TestGetCountryCode(t *testing.T) {
	c, _, _ := newReadyClient(t, map[string]string{jsGetCountryCode: `62`})

	code, err := c.GetCountryCode(context.Background(), "+62 812@c.us")
	require.NoError(t, err)
	assert.Equal(t, "62", code)
}

func TestIsRegisteredUser(t *testing.T) {
	c, _, _ := newReadyClient(t, map[string]string{jsGetNumberID: `null`})

	registered, err := c.IsRegisteredUser(context.Background(), "6281234567890")
	require.NoError(t, err)
	assert.False(t, registered)
}

func TestMuteChatRejectsPastExpiration(t *testing.T) {
	c, _, _ := newReadyClient(t, nil)

	err := c.MuteChat(context.Background(), "111@c.us", time.Now().Add(-time.Hour))
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.NoError(t, c.MuteChat(context.Background(), "111@c.us", time.Time{}))
}

func TestAcceptGroupV4InviteValidation(t *testing.T) {
	c, _, _ := newReadyClient(t, nil)

	_, err := c.AcceptGroupV4Invite(context.Background(), &types.InviteV4{})
	assert.ErrorContains(t, err, "invalid invite code")
	_, err = c.AcceptGroupV4Invite(context.Background(), &types.InviteV4{InviteCode: "abc", InviteCodeExp: 0})
	assert.ErrorContains(t, err, "expired invite code")
}

func TestInviteCode(t *testing.T) {
	code, err := inviteCode("https://chat.whatsapp.com/AbCdEf123")
	require.NoError(t, err)
	assert.Equal(t, "AbCdEf123", code)

	code, err = inviteCode("AbCdEf123")
	require.NoError(t, err)
	assert.Equal(t, "AbCdEf123", code)

	_, err = inviteCode("https://chat.whatsapp.com/")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestSendMessageBuildsPayload(t *testing.T) {
	var mu sync.Mutex
	var gotChat string
	var gotPayload *sendPayload

	c, page, _ := newReadyClient(t, nil)
	page.mu.Lock()
	page.evaluate = func(js string, args []interface{}) (json.RawMessage, error) {
		if js == jsSendMessage {
			mu.Lock()
			gotChat = args[0].(string)
			gotPayload = args[1].(*sendPayload)
			mu.Unlock()
			return rawMessage("SENT1", "chat", "hello there", true), nil
		}
		return json.RawMessage("null"), nil
	}
	page.mu.Unlock()

	msg, err := c.SendMessage(context.Background(), "+6281234567890", "hello there", &MessageSendOptions{
		QuotedMessageID: "false_111@c.us_QUOTED",
		Mentions:        []string{"6280000000001"},
	})
	require.NoError(t, err)
	assert.Equal(t, "SENT1", msg.ID.ID)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "6281234567890@c.us", gotChat)
	assert.Equal(t, "hello there", gotPayload.Body)
	assert.True(t, gotPayload.LinkPreview)
	assert.True(t, gotPayload.SendSeen)
	assert.Equal(t, "false_111@c.us_QUOTED", gotPayload.QuotedMessageID)
	assert.Equal(t, []string{"6280000000001@c.us"}, gotPayload.Mentions)
	assert.Nil(t, gotPayload.Media)
}

func TestReactValidation(t *testing.T) {
	assert.NoError(t, validateReaction(""))
	assert.NoError(t, validateReaction("👍"))
	assert.NoError(t, validateReaction("❤️"))
	assert.ErrorIs(t, validateReaction("ok"), ErrInvalidArgument)
	assert.ErrorIs(t, validateReaction("👍👍"), ErrInvalidArgument)

	c, _, _ := newReadyClient(t, nil)
	assert.ErrorIs(t, c.React(context.Background(), "not-an-id", "👍"), ErrInvalidArgument)
	assert.NoError(t, c.React(context.Background(), "false_111@c.us_ABC", "👍"))
}

func TestScreenshotRestoresViewport(t *testing.T) {
	c, _, _ := newReadyClient(t, nil)

	png, err := c.Screenshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), png)
}

func TestMissingParticipants(t *testing.T) {
	got := missingParticipants([]participantResult{
		{ID: "a@c.us", Code: 200},
		{ID: "b@c.us", Code: 409},
		{ID: "c@c.us", Code: 403},
	})
	assert.Equal(t, map[string]string{"b@c.us": "409", "c@c.us": "403"}, got)
}
