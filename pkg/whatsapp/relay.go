package whatsapp

import (
	"container/list"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"github.com/gdbrns/go-whatsapp-web-bridge/pkg/whatsapp/types"
)

// HostFunc is a Go function callable from page scripts as window[name](...args).
type HostFunc func(args []json.RawMessage) (interface{}, error)

// bridgeBinding is the only binding exposed through the protocol. Every named
// host function is a page shim forwarding to it, so all page calls reach the
// host on one ordered stream.
const bridgeBinding = "__wwebBridge"

const (
	recentMessageLimit = 256
	// messages the phone never decrypts are forgotten past this many
	pendingCiphertextLimit = 1024
)

type relay struct {
	client  *Client
	session *session

	mu       sync.Mutex
	handlers map[string]HostFunc
	bound    bool
	sealed   bool
	ready    bool

	// dispatchMu keeps page events strictly sequential.
	dispatchMu        sync.Mutex
	recent            *messageCache
	pendingCiphertext *idSet
}

func newRelay(c *Client, s *session) *relay {
	return &relay{
		client:            c,
		session:           s,
		handlers:          make(map[string]HostFunc),
		recent:            newMessageCache(recentMessageLimit),
		pendingCiphertext: newIDSet(pendingCiphertextLimit),
	}
}

// ExposeHostFunction makes fn callable from the page as window[name]. A second
// registration under the same name replaces the handler.
func (r *relay) ExposeHostFunction(ctx context.Context, name string, fn HostFunc) error {
	r.mu.Lock()
	if r.sealed {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrBridgeSealed, name)
	}
	_, existed := r.handlers[name]
	r.handlers[name] = fn
	bind := !r.bound
	r.bound = true
	r.mu.Unlock()

	if bind {
		// The binding outlives the call that installs it.
		if err := ctx.Err(); err != nil {
			r.unbind(name)
			return err
		}
		if err := r.session.page.Expose(r.session.ctx, bridgeBinding, r.dispatch); err != nil {
			r.unbind(name)
			return err
		}
	}
	if existed {
		return nil
	}

	shim := hostFunctionShim(name)
	if err := r.session.page.EvaluateOnNewDocument(ctx, shim); err != nil {
		return err
	}
	_, err := r.session.page.Evaluate(ctx, "() => {"+shim+"}")
	return err
}

func (r *relay) unbind(name string) {
	r.mu.Lock()
	r.bound = false
	delete(r.handlers, name)
	r.mu.Unlock()
}

func hostFunctionShim(name string) string {
	quoted := strconv.Quote(name)
	return fmt.Sprintf(`window[%s] = (...args) => window[%q]({ name: %s, args });`, quoted, bridgeBinding, quoted)
}

type bridgeCall struct {
	Name string            `json:"name"`
	Args []json.RawMessage `json:"args"`
}

// dispatch is the single entry point for page calls. Failures and panics in a
// host function are logged and reported back to the page; they never take the
// relay down.
func (r *relay) dispatch(payload json.RawMessage) (result interface{}, err error) {
	var call bridgeCall
	if err := json.Unmarshal(payload, &call); err != nil {
		r.client.log.WithError(err).Warn("Malformed bridge call")
		return nil, err
	}

	r.mu.Lock()
	fn := r.handlers[call.Name]
	r.mu.Unlock()
	if fn == nil {
		r.client.log.WithField("function", call.Name).Warn("Bridge call to unknown host function")
		return nil, fmt.Errorf("unknown host function %q", call.Name)
	}

	r.dispatchMu.Lock()
	defer r.dispatchMu.Unlock()
	defer func() {
		if rec := recover(); rec != nil {
			r.client.log.WithField("function", call.Name).Errorf("Host function panicked: %v", rec)
			result, err = nil, fmt.Errorf("host function %s panicked: %v", call.Name, rec)
		}
	}()

	result, err = fn(call.Args)
	if err != nil {
		r.client.log.WithError(err).WithField("function", call.Name).Warn("Host function failed")
	}
	return result, err
}

// subscribePageEvent binds a page event to a translator whose output is
// emitted in order.
func (r *relay) subscribePageEvent(ctx context.Context, name string, translate func(args []json.RawMessage) ([]interface{}, error)) error {
	return r.ExposeHostFunction(ctx, name, func(args []json.RawMessage) (interface{}, error) {
		evts, err := translate(args)
		if err != nil {
			return nil, err
		}
		for _, evt := range evts {
			r.client.emit(evt)
		}
		return nil, nil
	})
}

// wire binds every page event, installs the store listeners and seals the relay.
func (r *relay) wire(ctx context.Context) error {
	subscriptions := []struct {
		name      string
		translate func([]json.RawMessage) ([]interface{}, error)
	}{
		{"onAddMessageEvent", r.onAddMessage},
		{"onChangeMessageTypeEvent", r.onChangeMessageType},
		{"onChangeMessageEvent", r.onChangeMessage},
		{"onRemoveMessageEvent", r.onRemoveMessage},
		{"onMessageAckEvent", r.onMessageAck},
		{"onChatUnreadCountEvent", r.onChatUnreadCount},
		{"onMessageMediaUploadedEvent", r.onMediaUploaded},
		{"onAppStateChangedEvent", r.onAppStateChanged},
		{"onBatteryStateChangedEvent", r.onBatteryStateChanged},
		{"onIncomingCall", r.onIncomingCall},
		{"onReaction", r.onReaction},
		{"onRemoveChatEvent", r.onRemoveChat},
		{"onArchiveChatEvent", r.onArchiveChat},
		{"onEditMessageEvent", r.onEditMessage},
	}
	for _, sub := range subscriptions {
		if err := r.subscribePageEvent(ctx, sub.name, sub.translate); err != nil {
			return fmt.Errorf("subscribe %s: %w", sub.name, err)
		}
	}
	if _, err := r.session.page.Evaluate(ctx, jsInstallStoreListeners); err != nil {
		return remoteError("install store listeners", err)
	}

	r.mu.Lock()
	r.sealed = true
	r.ready = true
	r.mu.Unlock()
	return nil
}

// Ready reports whether commands may be issued against the page.
func (r *relay) Ready() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ready
}

// messageCache remembers the latest snapshot per message so a revoke can be
// paired with what was revoked.
type messageCache struct {
	limit int
	order []string
	items map[string]*types.Message
}

func newMessageCache(limit int) *messageCache {
	return &messageCache{limit: limit, items: make(map[string]*types.Message)}
}

func (m *messageCache) put(msg *types.Message) {
	key := msg.ID.ID
	if key == "" {
		return
	}
	if _, ok := m.items[key]; !ok {
		m.order = append(m.order, key)
		if len(m.order) > m.limit {
			delete(m.items, m.order[0])
			m.order = m.order[1:]
		}
	}
	m.items[key] = msg
}

func (m *messageCache) get(id string) *types.Message {
	return m.items[id]
}

// idSet is a set of ids that drops its oldest entry once full.
type idSet struct {
	limit int
	order *list.List
	items map[string]*list.Element
}

func newIDSet(limit int) *idSet {
	return &idSet{limit: limit, order: list.New(), items: make(map[string]*list.Element)}
}

func (s *idSet) add(id string) {
	if _, ok := s.items[id]; ok {
		return
	}
	s.items[id] = s.order.PushBack(id)
	for s.order.Len() > s.limit {
		oldest := s.order.Front()
		s.order.Remove(oldest)
		delete(s.items, oldest.Value.(string))
	}
}

// take removes id and reports whether it was present.
func (s *idSet) take(id string) bool {
	el, ok := s.items[id]
	if !ok {
		return false
	}
	s.order.Remove(el)
	delete(s.items, id)
	return true
}

func (s *idSet) len() int {
	return len(s.items)
}
