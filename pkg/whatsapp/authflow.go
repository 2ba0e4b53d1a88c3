package whatsapp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gdbrns/go-whatsapp-web-bridge/pkg/whatsapp/events"
	"github.com/gdbrns/go-whatsapp-web-bridge/pkg/whatsapp/types"
)

const (
	pairingLandmarkSelector = "div[data-ref] canvas"
	qrContainerSelector     = "div[data-ref]"
	qrRetryButtonSelector   = "div[data-ref] > span > button"

	linkWithPhoneButtonSelector = `//span[contains(text(), "Link with phone number")] | //div[@role="button"][contains(., "Link with phone number")]`
	phoneNumberInputSelector    = "input[aria-label='Type your phone number.']"
	phoneNextButtonSelector     = `//div[@role="button"][contains(., "Next")]`
	pairingCodeSelector         = "div[data-link-code]"
	generateNewCodeSelector     = `//div[@role="button"][contains(., "Generate new code")] | //a[contains(., "Generate new code")]`

	maxQRRetriesReason = "Max qrcode retries reached"
)

// Initialize launches the page, authenticates and wires the relay. It returns
// once the session is Ready, the auth strategy refused pairing, or
// initialization failed. A failed run leaves the session destroyed.
//
// ctx bounds initialization only. The browser and the page bindings stay up
// until Destroy, Logout or a disconnect.
func (c *Client) Initialize(ctx context.Context) error {
	for {
		restart, err := c.initializeOnce(ctx)
		if err != nil || !restart {
			return err
		}
		c.log.Info("Restarting initialization after authentication failure")
	}
}

func (c *Client) initializeOnce(ctx context.Context) (restart bool, err error) {
	if s := c.current(); s != nil && !c.isDestroyed(s) {
		return false, ErrAlreadyInitialized
	}

	cfg := c.opts.Browser
	if err := c.auth.BeforeBrowserInitialized(ctx, &cfg); err != nil {
		return false, fmt.Errorf("before browser initialized: %w", err)
	}
	page, err := c.opts.Launcher(ctx, cfg)
	if err != nil {
		return false, err
	}
	s := c.newSession(page)

	defer func() {
		if err == nil {
			return
		}
		if c.benign(s, err) {
			err = nil
			return
		}
		if derr := c.destroySession(context.Background(), s); derr != nil {
			c.log.WithError(derr).Warn("Teardown after failed initialization failed")
		}
	}()

	if err = c.auth.AfterBrowserInitialized(ctx, page); err != nil {
		return false, fmt.Errorf("after browser initialized: %w", err)
	}
	if err = c.prepareWebCache(page); err != nil {
		return false, err
	}
	if err = page.Navigate(ctx, WhatsWebURL, whatsappReferrer); err != nil {
		return false, err
	}
	if err = c.injectRuntime(ctx, s); err != nil {
		return false, err
	}
	c.setState(s, SessionAwaitingAuth)

	c.setAuthState(s, AuthDetecting)
	needsPairing, err := c.detectAuthentication(ctx, s)
	if err != nil {
		c.setAuthState(s, AuthFailed)
		return false, err
	}

	if needsPairing {
		c.setAuthState(s, AuthNeedsPairing)
		result, err := c.auth.OnAuthenticationNeeded(ctx)
		if err != nil {
			return false, err
		}
		if result.Failed {
			c.setAuthState(s, AuthFailed)
			c.emit(&events.AuthFailure{
				Message: result.FailureMessage,
				Err:     fmt.Errorf("%w: %s", ErrAuthenticationFailure, result.FailureMessage),
			})
			if derr := c.destroySession(ctx, s); derr != nil {
				c.log.WithError(derr).Warn("Teardown after authentication failure failed")
			}
			return result.Restart, nil
		}

		if err = c.pair(ctx, s); err != nil {
			c.setAuthState(s, AuthFailed)
			return false, err
		}
	} else {
		c.setAuthState(s, AuthAlreadyAuthenticated)
	}

	if c.isDestroyed(s) {
		return false, nil
	}
	c.setState(s, SessionAuthenticating)
	return false, c.finishAuthentication(ctx, s)
}

// detectAuthentication races the main screen against the pairing screen.
// The first signal wins, even if it is an error, and the other wait is cancelled.
func (c *Client) detectAuthentication(ctx context.Context, s *session) (needsPairing bool, err error) {
	dctx, cancel := context.WithTimeout(ctx, c.opts.AuthTimeout)
	defer cancel()

	type signal struct {
		needsPairing bool
		err          error
	}
	signals := make(chan signal, 2)
	wait := func(selector string, pairing bool) {
		err := s.page.WaitSelector(dctx, selector)
		signals <- signal{needsPairing: pairing, err: err}
	}
	go wait(LandmarkSelector(c.opts.LandmarkSelector), false)
	go wait(pairingLandmarkSelector, true)

	first := <-signals
	cancel()
	if first.err != nil {
		if errors.Is(first.err, context.DeadlineExceeded) || errors.Is(dctx.Err(), context.DeadlineExceeded) {
			return false, fmt.Errorf("%w: %v", ErrAuthDetectionTimeout, first.err)
		}
		return false, first.err
	}
	return first.needsPairing, nil
}

func (c *Client) pair(ctx context.Context, s *session) error {
	c.setAuthState(s, AuthPairing)
	stopWatch := s.watchdog.watchPairing()
	defer stopWatch()

	var err error
	if c.opts.LinkingMethod.IsQR() {
		err = c.pairWithQR(ctx, s)
	} else {
		err = c.pairWithPhone(ctx, s)
	}
	if err != nil {
		return err
	}

	// pairing has no deadline of its own
	return s.page.WaitSelector(ctx, LandmarkSelector(c.opts.LandmarkSelector))
}

func (c *Client) pairWithQR(ctx context.Context, s *session) error {
	err := s.relay.ExposeHostFunction(ctx, "onQRChangedEvent", func(args []json.RawMessage) (interface{}, error) {
		var code string
		if err := decodeArg(args, 0, &code); err != nil {
			return nil, err
		}
		c.onQR(s, code)
		return nil, nil
	})
	if err != nil {
		return err
	}
	_, err = s.page.Evaluate(ctx, jsObserveQR, qrContainerSelector, qrRetryButtonSelector)
	return err
}

func (c *Client) onQR(s *session, code string) {
	maxRetries := c.opts.LinkingMethod.QR.MaxRetries

	c.mu.Lock()
	if s.destroyed || s.disconnected {
		c.mu.Unlock()
		return
	}
	s.lastQR = code
	exceeded := false
	if maxRetries > 0 {
		s.qrRetries++
		exceeded = s.qrRetries > maxRetries
	}
	c.mu.Unlock()

	c.emit(&events.QR{Code: code})
	if exceeded {
		c.setAuthState(s, AuthFailed)
		c.disconnectWithCause(s, maxQRRetriesReason, ErrMaxPairingRetries, false)
	}
}

func (c *Client) pairWithPhone(ctx context.Context, s *session) error {
	err := s.relay.ExposeHostFunction(ctx, "onCodeReceivedEvent", func(args []json.RawMessage) (interface{}, error) {
		var code string
		if err := decodeArg(args, 0, &code); err != nil {
			return nil, err
		}
		c.onPairingCode(s, code)
		return nil, nil
	})
	if err != nil {
		return err
	}

	if err := s.page.Click(ctx, linkWithPhoneButtonSelector); err != nil {
		return err
	}
	if err := s.page.ClearAndType(ctx, phoneNumberInputSelector, c.opts.LinkingMethod.Phone.Number); err != nil {
		return err
	}
	if err := s.page.Click(ctx, phoneNextButtonSelector); err != nil {
		return err
	}
	_, err = s.page.Evaluate(ctx, jsObservePairingCode, pairingCodeSelector, generateNewCodeSelector)
	return err
}

func (c *Client) onPairingCode(s *session, code string) {
	c.mu.Lock()
	if s.destroyed || code == "" || code == s.lastCode {
		c.mu.Unlock()
		return
	}
	s.lastCode = code
	c.mu.Unlock()

	c.emit(&events.PairingCode{Code: code})
}

// injectRuntime loads wa-js and applies the runtime settings. Tuning failures
// only cost features, so they are logged and skipped.
func (c *Client) injectRuntime(ctx context.Context, s *session) error {
	if err := s.page.AddScriptTag(ctx, c.opts.WAJSURL, ""); err != nil {
		return fmt.Errorf("inject wa-js: %w", err)
	}
	if err := s.page.WaitFunction(ctx, jsWPPReady); err != nil {
		return fmt.Errorf("wait for wa-js: %w", err)
	}

	settings := runtimeSettings{
		MarkOnlineAvailable: c.opts.MarkOnlineAvailable,
		JoinBeta:            c.opts.JoinBeta,
	}
	if _, err := s.page.Evaluate(ctx, jsRuntimeSettings, settings); err != nil {
		c.log.WithError(err).Debug("Runtime settings not applied")
	}

	err := s.relay.ExposeHostFunction(ctx, "onLoadingScreen", func(args []json.RawMessage) (interface{}, error) {
		var progress events.LoadingScreen
		if err := decodeArg(args, 0, &progress.Percent); err != nil {
			return nil, err
		}
		_ = decodeArg(args, 1, &progress.Message)
		c.emit(&progress)
		return nil, nil
	})
	if err != nil {
		return err
	}
	if _, err := s.page.Evaluate(ctx, jsObserveLoadingScreen); err != nil {
		c.log.WithError(err).Debug("Loading screen observer not installed")
	}
	return nil
}

type runtimeSettings struct {
	MarkOnlineAvailable bool `json:"markOnlineAvailable"`
	JoinBeta            bool `json:"joinBeta"`
}

// finishAuthentication runs once the main screen is reached: it exposes the
// page stores, wires the relay and announces Ready.
func (c *Client) finishAuthentication(ctx context.Context, s *session) error {
	if _, err := s.page.Evaluate(ctx, jsCompareWWebVersions); err != nil {
		c.log.WithError(err).Debug("Version compatibility shim not applied")
	}
	if _, err := s.page.Evaluate(ctx, storeScript); err != nil {
		return remoteError("expose store", err)
	}

	payload, err := c.auth.GetAuthEventPayload(ctx, s.page)
	if err != nil {
		return err
	}
	c.setAuthState(s, AuthAuthenticated)
	c.emit(&events.Authenticated{Payload: payload})

	if err := s.page.WaitFunction(ctx, jsStoreReady); err != nil {
		return fmt.Errorf("wait for store: %w", err)
	}
	if _, err := s.page.Evaluate(ctx, jsUnregisterServiceWorkers); err != nil {
		c.log.WithError(err).Debug("Service workers not unregistered")
	}
	if _, err := s.page.Evaluate(ctx, utilsScript); err != nil {
		return remoteError("load utils", err)
	}

	raw, err := s.page.Evaluate(ctx, jsClientInfo)
	if err != nil {
		return remoteError("client info", err)
	}
	var info types.ClientInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return fmt.Errorf("decode client info: %w", err)
	}
	c.mu.Lock()
	s.info = &info
	c.mu.Unlock()

	if err := s.relay.wire(ctx); err != nil {
		return err
	}

	c.setAuthState(s, AuthReady)
	c.setState(s, SessionReady)
	c.log.WithField("wid", info.WID.String()).Info("WhatsApp Web session ready")
	c.emit(&events.Ready{})

	if err := c.auth.AfterAuthReady(ctx); err != nil {
		c.log.WithError(err).Warn("Auth strategy after-ready hook failed")
	}
	s.watchdog.watchNavigation()
	return nil
}

func (c *Client) prepareWebCache(page Page) error {
	cache := c.opts.WebCache
	if cache == nil {
		return nil
	}
	if c.opts.WebVersion != "" {
		html, err := cache.Resolve(c.opts.WebVersion)
		if err != nil {
			return err
		}
		if html != "" {
			return page.ServeDocument(WhatsWebURL, html)
		}
	}
	return page.OnDocument(WhatsWebURL, func(html string) {
		if err := cache.Persist(html); err != nil {
			c.log.WithError(err).Warn("Unable to persist web app version")
		}
	})
}
