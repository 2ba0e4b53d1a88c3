package whatsapp

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/gdbrns/go-whatsapp-web-bridge/pkg/browser"
	"github.com/gdbrns/go-whatsapp-web-bridge/pkg/log"
	"github.com/gdbrns/go-whatsapp-web-bridge/pkg/whatsapp/events"
	"github.com/gdbrns/go-whatsapp-web-bridge/pkg/whatsapp/types"
)

// SessionState is the lifecycle of one browser page session.
type SessionState string

const (
	SessionIdle           SessionState = "idle"
	SessionLaunching      SessionState = "launching"
	SessionAwaitingAuth   SessionState = "awaiting-auth"
	SessionAuthenticating SessionState = "authenticating"
	SessionReady          SessionState = "ready"
	SessionDisconnected   SessionState = "disconnected"
	SessionDestroyed      SessionState = "destroyed"
)

// AuthState tracks the authentication flow of the current session.
type AuthState string

const (
	AuthStart                AuthState = "START"
	AuthDetecting            AuthState = "DETECTING"
	AuthNeedsPairing         AuthState = "NEEDS_PAIRING"
	AuthAlreadyAuthenticated AuthState = "ALREADY_AUTHENTICATED"
	AuthPairing              AuthState = "PAIRING_IN_PROGRESS"
	AuthAuthenticated        AuthState = "AUTHENTICATED"
	AuthReady                AuthState = "READY"
	AuthFailed               AuthState = "AUTH_FAILED"
)

// EventHandler receives pointers to the structs in the events package.
type EventHandler func(evt interface{})

type wrappedEventHandler struct {
	fn EventHandler
	id uint32
}

var nextHandlerID uint32

// session is one launched page and everything bound to it. A new one is
// created for every Initialize attempt.
type session struct {
	page     Page
	relay    *relay
	watchdog *watchdog

	ctx    context.Context
	cancel context.CancelFunc

	state        SessionState
	auth         AuthState
	qrRetries    int
	lastQR       string
	lastCode     string
	info         *types.ClientInfo
	destroyed    bool
	disconnected bool

	closeOnce sync.Once
}

// Client drives one WhatsApp Web account through a controlled browser page.
type Client struct {
	opts Options
	auth AuthStrategy
	log  *logrus.Entry

	handlersLock  sync.RWMutex
	eventHandlers []wrappedEventHandler

	mu   sync.Mutex
	sess *session

	limiter *rate.Limiter

	versionGroup singleflight.Group
	versionMu    sync.RWMutex
	version      versionStatus

	background sync.WaitGroup
}

// NewClient validates opts and prepares a client. Nothing is launched until Initialize.
func NewClient(opts Options) (*Client, error) {
	opts = opts.withDefaults()
	if !opts.LinkingMethod.IsQR() {
		if err := validatePhoneNumber(opts.LinkingMethod.Phone.Number); err != nil {
			return nil, err
		}
	}
	if opts.LinkingMethod.QR.MaxRetries < 0 {
		return nil, invalidArgument("qr max retries must not be negative")
	}

	entry := opts.Logger
	if entry == nil {
		entry = log.Session(string(SessionIdle))
	}

	c := &Client{
		opts: opts,
		auth: opts.AuthStrategy,
		log:  entry,
	}
	if opts.SendRateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(opts.SendRateLimit), opts.SendRateBurst)
	}
	c.auth.Setup(c)
	return c, nil
}

// AddEventHandler registers fn and returns an id for RemoveEventHandler.
// Handlers run synchronously, in registration order, on the relay's
// dispatch goroutine, so a slow handler delays every later event.
func (c *Client) AddEventHandler(fn EventHandler) uint32 {
	id := atomic.AddUint32(&nextHandlerID, 1)
	c.handlersLock.Lock()
	c.eventHandlers = append(c.eventHandlers, wrappedEventHandler{fn: fn, id: id})
	c.handlersLock.Unlock()
	return id
}

func (c *Client) RemoveEventHandler(id uint32) bool {
	c.handlersLock.Lock()
	defer c.handlersLock.Unlock()
	for index := range c.eventHandlers {
		if c.eventHandlers[index].id == id {
			c.eventHandlers = append(c.eventHandlers[:index], c.eventHandlers[index+1:]...)
			return true
		}
	}
	return false
}

func (c *Client) RemoveEventHandlers() {
	c.handlersLock.Lock()
	c.eventHandlers = nil
	c.handlersLock.Unlock()
}

// Subscribe delivers events on a channel until ctx ends. The channel is
// closed afterwards. Sends block, so a reader that stops reading stalls the relay.
func (c *Client) Subscribe(ctx context.Context, size int) <-chan interface{} {
	ch := make(chan interface{}, size)
	var once sync.Once
	var mu sync.Mutex
	closed := false
	id := c.AddEventHandler(func(evt interface{}) {
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		select {
		case ch <- evt:
		case <-ctx.Done():
		}
	})
	go func() {
		<-ctx.Done()
		c.RemoveEventHandler(id)
		once.Do(func() {
			mu.Lock()
			closed = true
			close(ch)
			mu.Unlock()
		})
	}()
	return ch
}

func (c *Client) emit(evt interface{}) {
	c.handlersLock.RLock()
	handlers := make([]wrappedEventHandler, len(c.eventHandlers))
	copy(handlers, c.eventHandlers)
	c.handlersLock.RUnlock()

	for _, handler := range handlers {
		c.callHandler(handler, evt)
	}
}

func (c *Client) callHandler(handler wrappedEventHandler, evt interface{}) {
	defer func() {
		if rec := recover(); rec != nil {
			c.log.WithField("event", events.Name(evt)).Errorf("Event handler panicked: %v", rec)
		}
	}()
	handler.fn(evt)
}

func (c *Client) current() *session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sess
}

// State returns the lifecycle state of the current session.
func (c *Client) State() SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess == nil {
		return SessionIdle
	}
	return c.sess.state
}

// AuthState returns the authentication state of the current session.
func (c *Client) AuthState() AuthState {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess == nil {
		return AuthStart
	}
	return c.sess.auth
}

// Info returns the logged in account, or nil before Ready.
func (c *Client) Info() *types.ClientInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess == nil || c.sess.info == nil {
		return nil
	}
	info := *c.sess.info
	return &info
}

// LastQR returns the most recent pairing QR token of the current session.
func (c *Client) LastQR() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess == nil {
		return ""
	}
	return c.sess.lastQR
}

// LastPairingCode returns the most recent phone-linking code of the current session.
func (c *Client) LastPairingCode() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess == nil {
		return ""
	}
	return c.sess.lastCode
}

func (c *Client) setState(s *session, state SessionState) {
	c.mu.Lock()
	if s.destroyed && state != SessionDestroyed {
		c.mu.Unlock()
		return
	}
	s.state = state
	c.mu.Unlock()
	c.log.WithField("state", string(state)).Debug("Session state changed")
}

func (c *Client) setAuthState(s *session, state AuthState) {
	c.mu.Lock()
	s.auth = state
	c.mu.Unlock()
	c.log.WithField("auth", string(state)).Debug("Auth state changed")
}

func (c *Client) authStateOf(s *session) AuthState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return s.auth
}

func (c *Client) isDestroyed(s *session) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return s.destroyed
}

func (c *Client) newSession(page Page) *session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &session{
		page:   page,
		ctx:    ctx,
		cancel: cancel,
		state:  SessionLaunching,
		auth:   AuthStart,
	}
	s.relay = newRelay(c, s)
	s.watchdog = newWatchdog(c, s)

	c.mu.Lock()
	c.sess = s
	c.mu.Unlock()
	return s
}

// Destroy closes the page and lets the auth strategy clean up. It is safe to
// call more than once; only the first call does any work.
func (c *Client) Destroy(ctx context.Context) error {
	s := c.current()
	if s == nil {
		return nil
	}
	return c.destroySession(ctx, s)
}

func (c *Client) destroySession(ctx context.Context, s *session) error {
	var err error
	s.closeOnce.Do(func() {
		c.mu.Lock()
		s.destroyed = true
		s.state = SessionDestroyed
		c.mu.Unlock()

		s.cancel()
		s.watchdog.stop()
		if cerr := s.page.Close(); cerr != nil && !browser.IsTargetClosed(cerr) {
			err = cerr
		}
		if serr := c.auth.Destroy(ctx); serr != nil && err == nil {
			err = serr
		}
		c.log.WithField("state", string(SessionDestroyed)).Info("Session destroyed")
	})
	return err
}

// disconnect ends the session once: Disconnected is emitted a single time and
// teardown runs in the background.
func (c *Client) disconnect(s *session, reason string, notifyStrategy bool) {
	c.disconnectWithCause(s, reason, nil, notifyStrategy)
}

// disconnectWithCause is disconnect with a sentinel attached to the event.
func (c *Client) disconnectWithCause(s *session, reason string, cause error, notifyStrategy bool) {
	c.mu.Lock()
	if s.destroyed || s.disconnected {
		c.mu.Unlock()
		return
	}
	s.disconnected = true
	s.state = SessionDisconnected
	c.mu.Unlock()

	c.log.WithField("reason", reason).Warn("Session disconnected")
	if notifyStrategy {
		if err := c.auth.Disconnect(context.Background()); err != nil {
			c.log.WithError(err).Warn("Auth strategy disconnect failed")
		}
	}
	c.emit(&events.Disconnected{Reason: reason, Err: cause})

	c.background.Add(1)
	go func() {
		defer c.background.Done()
		if err := c.destroySession(context.Background(), s); err != nil {
			c.log.WithError(err).Warn("Teardown after disconnect failed")
		}
	}()
}

// Wait blocks until background teardown started by disconnects has finished.
func (c *Client) Wait() {
	c.background.Wait()
}

// Logout unlinks the device, closes the browser and lets the auth strategy
// forget the session.
func (c *Client) Logout(ctx context.Context) error {
	s := c.current()
	if s == nil {
		return ErrBridgeNotReady
	}
	if _, err := s.page.Evaluate(ctx, jsLogout); err != nil && !browser.IsTargetClosed(err) {
		c.log.WithError(err).Warn("Page logout failed, closing anyway")
	}
	if err := c.destroySession(ctx, s); err != nil {
		c.log.WithError(err).Warn("Closing page after logout failed")
	}
	c.waitDisconnected(ctx, s.page)
	return c.auth.Logout(ctx)
}

func (c *Client) waitDisconnected(ctx context.Context, page Page) {
	ticker := time.NewTicker(c.opts.LogoutPollInterval)
	defer ticker.Stop()
	for attempt := 0; attempt < c.opts.LogoutPollAttempts; attempt++ {
		if !page.Connected() {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// benign reports errors caused by the session being torn down underneath a
// running flow.
func (c *Client) benign(s *session, err error) bool {
	if err == nil {
		return true
	}
	if !c.isDestroyed(s) {
		return false
	}
	return browser.IsTargetClosed(err) || errors.Is(err, ErrPageClosed) ||
		errors.Is(err, context.Canceled) || errors.Is(err, ErrSessionDestroyed)
}
