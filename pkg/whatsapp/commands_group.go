package whatsapp

import (
	"context"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/gdbrns/go-whatsapp-web-bridge/pkg/whatsapp/types"
)

const lookupConcurrency = 8

type participantResult struct {
	ID   string `json:"id"`
	Code int    `json:"code"`
}

type createGroupResponse struct {
	GID          types.WID           `json:"gid"`
	Participants []participantResult `json:"participants"`
}

// missingParticipants keeps the participants the server did not add, keyed by
// id with their status code.
func missingParticipants(results []participantResult) map[string]string {
	missing := make(map[string]string)
	for _, p := range results {
		if p.Code != 200 {
			missing[p.ID] = strconv.Itoa(p.Code)
		}
	}
	return missing
}

// CreateGroup creates a group with at least one other participant.
func (c *Client) CreateGroup(ctx context.Context, name string, participants []string) (*types.CreateGroupResult, error) {
	if strings.TrimSpace(name) == "" {
		return nil, invalidArgument("group name is empty")
	}
	if len(participants) == 0 {
		return nil, invalidArgument("you need to add at least one other participant to the group")
	}
	ids := make([]string, 0, len(participants))
	for _, participant := range participants {
		id, err := NormalizeUserID(participant)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	var res createGroupResponse
	if err := c.call(ctx, "create group", &res, jsCreateGroup, name, ids); err != nil {
		return nil, err
	}
	return &types.CreateGroupResult{
		GID:                 res.GID,
		MissingParticipants: missingParticipants(res.Participants),
	}, nil
}

func (c *Client) GroupMetadata(ctx context.Context, chatID string) (*types.GroupMetadata, error) {
	chatID, err := normalizeGroupID(chatID)
	if err != nil {
		return nil, err
	}
	var metadata *types.GroupMetadata
	if err := c.call(ctx, "group metadata", &metadata, jsGroupMetadata, chatID); err != nil {
		return nil, err
	}
	if metadata == nil {
		return nil, notFound("group metadata", "group "+chatID)
	}
	return metadata, nil
}

// inviteCode accepts a bare code or a chat.whatsapp.com link.
func inviteCode(code string) (string, error) {
	code = strings.TrimSpace(code)
	if i := strings.LastIndex(code, "chat.whatsapp.com/"); i >= 0 {
		code = code[i+len("chat.whatsapp.com/"):]
	}
	code = strings.Trim(code, "/")
	if code == "" {
		return "", invalidArgument("invite code is empty")
	}
	return code, nil
}

func (c *Client) GetInviteInfo(ctx context.Context, code string) (*types.InviteInfo, error) {
	code, err := inviteCode(code)
	if err != nil {
		return nil, err
	}
	var info types.InviteInfo
	if err := c.call(ctx, "get invite info", &info, jsGetInviteInfo, code); err != nil {
		return nil, err
	}
	return &info, nil
}

// AcceptInvite joins a group and returns its id.
func (c *Client) AcceptInvite(ctx context.Context, code string) (string, error) {
	code, err := inviteCode(code)
	if err != nil {
		return "", err
	}
	var groupID string
	err = c.call(ctx, "accept invite", &groupID, jsAcceptInvite, code)
	return groupID, err
}

// AcceptGroupV4Invite joins a group from an invite received as a message.
func (c *Client) AcceptGroupV4Invite(ctx context.Context, invite *types.InviteV4) (bool, error) {
	if invite == nil || invite.InviteCode == "" {
		return false, invalidArgument("invalid invite code, try passing the message.inviteV4 object")
	}
	if invite.InviteCodeExp == 0 {
		return false, invalidArgument("expired invite code")
	}
	var ok bool
	err := c.call(ctx, "accept group v4 invite", &ok, jsAcceptGroupV4Invite, invite)
	return ok, err
}

func (c *Client) GetLabels(ctx context.Context) ([]*types.Label, error) {
	var labels []*types.Label
	err := c.call(ctx, "get labels", &labels, jsGetLabels)
	return labels, err
}

func (c *Client) GetLabelByID(ctx context.Context, labelID string) (*types.Label, error) {
	if strings.TrimSpace(labelID) == "" {
		return nil, invalidArgument("label id is empty")
	}
	var label *types.Label
	if err := c.call(ctx, "get label", &label, jsGetLabel, labelID); err != nil {
		return nil, err
	}
	if label == nil {
		return nil, notFound("get label", "label "+labelID)
	}
	return label, nil
}

func (c *Client) GetChatLabels(ctx context.Context, chatID string) ([]*types.Label, error) {
	chatID, err := NormalizeChatID(chatID)
	if err != nil {
		return nil, err
	}
	var labels []*types.Label
	err = c.call(ctx, "get chat labels", &labels, jsGetChatLabels, chatID)
	return labels, err
}

// GetChatsByLabelID returns the chats carrying a label, in label order.
func (c *Client) GetChatsByLabelID(ctx context.Context, labelID string) ([]*types.Chat, error) {
	if strings.TrimSpace(labelID) == "" {
		return nil, invalidArgument("label id is empty")
	}
	var chatIDs []string
	if err := c.call(ctx, "get chats by label", &chatIDs, jsGetLabelChatIDs, labelID); err != nil {
		return nil, err
	}

	chats := make([]*types.Chat, len(chatIDs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(lookupConcurrency)
	for i, id := range chatIDs {
		i, id := i, id
		g.Go(func() error {
			chat, err := c.GetChatByID(gctx, id)
			if err != nil {
				return err
			}
			chats[i] = chat
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return chats, nil
}

func (c *Client) GetBlockedContacts(ctx context.Context) ([]*types.Contact, error) {
	var ids []string
	if err := c.call(ctx, "get blocked contacts", &ids, jsGetBlockedIDs); err != nil {
		return nil, err
	}

	contacts := make([]*types.Contact, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(lookupConcurrency)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			contact, err := c.GetContactByID(gctx, id)
			if err != nil {
				return err
			}
			contacts[i] = contact
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return contacts, nil
}

// AddOrRemoveLabels sets exactly labelIDs on every chat in chatIDs. Labels are
// a WhatsApp Business feature.
func (c *Client) AddOrRemoveLabels(ctx context.Context, labelIDs, chatIDs []string) error {
	if _, err := c.readySession(); err != nil {
		return err
	}
	if info := c.Info(); info == nil || !info.IsBusiness() {
		return &RemoteOperationError{
			Op:       "add or remove labels",
			Category: CategoryBusinessOnly,
			Message:  "[LT01] Only Whatsapp business",
		}
	}
	normalized := make([]string, 0, len(chatIDs))
	for _, id := range chatIDs {
		chatID, err := NormalizeChatID(id)
		if err != nil {
			return err
		}
		normalized = append(normalized, chatID)
	}
	return c.call(ctx, "add or remove labels", nil, jsAddOrRemoveLabels, labelIDs, normalized)
}
