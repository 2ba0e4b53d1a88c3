package whatsapp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gdbrns/go-whatsapp-web-bridge/pkg/browser"
	"github.com/gdbrns/go-whatsapp-web-bridge/pkg/whatsapp/events"
	"github.com/gdbrns/go-whatsapp-web-bridge/pkg/whatsapp/types"
)

// pairingPage shows the QR screen first and emits codes when the QR observer
// is installed. The main screen appears once loggedIn is closed.
func pairingPage(codes []string, loggedIn chan struct{}, closeAfter bool) *fakePage {
	page := newFakePage()
	page.wait = func(ctx context.Context, selector string) error {
		if selector == pairingLandmarkSelector {
			return nil
		}
		return page.block(ctx, loggedIn)
	}
	page.evaluate = func(js string, args []interface{}) (json.RawMessage, error) {
		switch js {
		case jsObserveQR:
			for _, code := range codes {
				if _, err := page.callHost("onQRChangedEvent", code); err != nil {
					return nil, err
				}
			}
			if closeAfter {
				close(loggedIn)
			}
		case jsClientInfo:
			return json.RawMessage(testClientInfo), nil
		}
		return json.RawMessage("null"), nil
	}
	return page
}

func eventsOf[T any](all []interface{}) []T {
	var out []T
	for _, evt := range all {
		if v, ok := evt.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

func TestInitializeAlreadyAuthenticated(t *testing.T) {
	c, page, rec := newReadyClient(t, nil)

	assert.Equal(t, AuthReady, c.AuthState())
	require.NotNil(t, c.Info())
	assert.Equal(t, "555000111@c.us", c.Info().WID.String())
	assert.Len(t, eventsOf[*events.Authenticated](rec.all()), 1)
	assert.Len(t, eventsOf[*events.Ready](rec.all()), 1)
	assert.Empty(t, eventsOf[*events.QR](rec.all()))

	assert.Equal(t, []string{bridgeBinding}, page.exposed)
	assert.Contains(t, page.evaluatedScripts(), jsInstallStoreListeners)
}

func TestInitializeEmitsEveryQR(t *testing.T) {
	loggedIn := make(chan struct{})
	page := pairingPage([]string{"a1", "b2", "c3"}, loggedIn, true)
	c, rec := newTestClient(t, page, Options{})

	require.NoError(t, c.Initialize(context.Background()))

	var codes []string
	for _, qr := range eventsOf[*events.QR](rec.all()) {
		codes = append(codes, qr.Code)
	}
	assert.Equal(t, []string{"a1", "b2", "c3"}, codes)
	assert.Equal(t, "c3", c.LastQR())
	assert.Equal(t, SessionReady, c.State())
	assert.Len(t, eventsOf[*events.Ready](rec.all()), 1)
	assert.Empty(t, eventsOf[*events.Disconnected](rec.all()))
}

func TestInitializeDisconnectsAfterMaxQRRetries(t *testing.T) {
	page := pairingPage([]string{"a1", "b2", "c3"}, make(chan struct{}), false)
	c, rec := newTestClient(t, page, Options{LinkingMethod: LinkingMethod{QR: QRLinking{MaxRetries: 2}}})

	require.NoError(t, c.Initialize(context.Background()))
	c.Wait()

	assert.Len(t, eventsOf[*events.QR](rec.all()), 3)
	disconnects := eventsOf[*events.Disconnected](rec.all())
	require.Len(t, disconnects, 1)
	assert.Equal(t, "Max qrcode retries reached", disconnects[0].Reason)
	assert.ErrorIs(t, disconnects[0].Err, ErrMaxPairingRetries)
	assert.Equal(t, AuthFailed, c.AuthState())
	assert.Equal(t, SessionDestroyed, c.State())
	assert.Equal(t, 1, page.closeCount())
	assert.Empty(t, eventsOf[*events.Ready](rec.all()))
}

func TestDetectionPairingWinsRace(t *testing.T) {
	page := newFakePage()
	c, _ := newTestClient(t, page, Options{})
	s := c.newSession(page)

	page.wait = func(ctx context.Context, selector string) error {
		if selector == pairingLandmarkSelector {
			return nil
		}
		return page.block(ctx, nil)
	}
	needsPairing, err := c.detectAuthentication(context.Background(), s)
	require.NoError(t, err)
	assert.True(t, needsPairing)
}

func TestDetectionMainScreenWinsRace(t *testing.T) {
	page := newFakePage()
	c, _ := newTestClient(t, page, Options{})
	s := c.newSession(page)

	page.wait = func(ctx context.Context, selector string) error {
		if selector == pairingLandmarkSelector {
			return page.block(ctx, nil)
		}
		return nil
	}
	needsPairing, err := c.detectAuthentication(context.Background(), s)
	require.NoError(t, err)
	assert.False(t, needsPairing)
}

func TestDetectionFirstErrorWins(t *testing.T) {
	page := newFakePage()
	c, _ := newTestClient(t, page, Options{})
	s := c.newSession(page)

	boom := errors.New("selector engine crashed")
	page.wait = func(ctx context.Context, selector string) error {
		if selector == pairingLandmarkSelector {
			return page.block(ctx, nil)
		}
		return boom
	}
	_, err := c.detectAuthentication(context.Background(), s)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrAuthDetectionTimeout)
}

func TestInitializeDetectionTimeout(t *testing.T) {
	page := newFakePage()
	c, rec := newTestClient(t, page, Options{AuthTimeout: 50 * time.Millisecond})

	err := c.Initialize(context.Background())
	assert.ErrorIs(t, err, ErrAuthDetectionTimeout)
	assert.Equal(t, SessionDestroyed, c.State())
	assert.Equal(t, 1, page.closeCount())
	assert.Empty(t, eventsOf[*events.Ready](rec.all()))
}

func TestInitializeTwiceFails(t *testing.T) {
	c, _, _ := newReadyClient(t, nil)
	assert.ErrorIs(t, c.Initialize(context.Background()), ErrAlreadyInitialized)
}

type refusingAuth struct {
	BaseAuthStrategy
	calls int
}

func (a *refusingAuth) OnAuthenticationNeeded(ctx context.Context) (AuthNeededResult, error) {
	a.calls++
	return AuthNeededResult{Failed: true, FailureMessage: "session rejected", Restart: a.calls < 2}, nil
}

func TestAuthFailureRestartsWhenRequested(t *testing.T) {
	pairingScreen := func() *fakePage {
		page := newFakePage()
		page.wait = func(ctx context.Context, selector string) error {
			if selector == pairingLandmarkSelector {
				return nil
			}
			return page.block(ctx, nil)
		}
		return page
	}
	strategy := &refusingAuth{}
	c, rec := newTestClient(t, pairingScreen(), Options{AuthStrategy: strategy})
	var pages []*fakePage
	c.opts.Launcher = func(ctx context.Context, cfg browser.Config) (Page, error) {
		page := pairingScreen()
		pages = append(pages, page)
		return page, nil
	}

	require.NoError(t, c.Initialize(context.Background()))

	assert.Equal(t, 2, strategy.calls)
	require.Len(t, pages, 2)
	assert.Equal(t, 1, pages[0].closeCount())
	assert.Equal(t, 1, pages[1].closeCount())
	failures := eventsOf[*events.AuthFailure](rec.all())
	require.Len(t, failures, 2)
	assert.Equal(t, "session rejected", failures[0].Message)
	assert.ErrorIs(t, failures[0].Err, ErrAuthenticationFailure)
	assert.Contains(t, failures[0].Err.Error(), "session rejected")
	assert.Equal(t, SessionDestroyed, c.State())
	assert.Equal(t, AuthFailed, c.AuthState())
}

func TestPairingCodeDeduplicated(t *testing.T) {
	page := newFakePage()
	c, rec := newTestClient(t, page, Options{LinkingMethod: LinkingMethod{Phone: &PhoneLinking{Number: "6281234567890"}}})
	s := c.newSession(page)

	c.onPairingCode(s, "ABCD-EFGH")
	c.onPairingCode(s, "ABCD-EFGH")
	c.onPairingCode(s, "")
	c.onPairingCode(s, "WXYZ-1234")

	codes := eventsOf[*events.PairingCode](rec.all())
	require.Len(t, codes, 2)
	assert.Equal(t, "WXYZ-1234", c.LastPairingCode())
}

func TestNewClientValidatesLinking(t *testing.T) {
	_, err := NewClient(Options{LinkingMethod: LinkingMethod{Phone: &PhoneLinking{Number: "0812"}}})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = NewClient(Options{LinkingMethod: LinkingMethod{QR: QRLinking{MaxRetries: -1}}})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

// phonePairingPage shows the pairing screen and answers the code observer
// with codes. The main screen appears after the codes were delivered.
func phonePairingPage(codes []string, observerArgs chan<- []interface{}) *fakePage {
	loggedIn := make(chan struct{})
	page := newFakePage()
	page.wait = func(ctx context.Context, selector string) error {
		if selector == pairingLandmarkSelector {
			return nil
		}
		return page.block(ctx, loggedIn)
	}
	page.evaluate = func(js string, args []interface{}) (json.RawMessage, error) {
		switch js {
		case jsObservePairingCode:
			observerArgs <- args
			for _, code := range codes {
				if _, err := page.callHost("onCodeReceivedEvent", code); err != nil {
					return nil, err
				}
			}
			close(loggedIn)
		case jsClientInfo:
			return json.RawMessage(testClientInfo), nil
		}
		return json.RawMessage("null"), nil
	}
	return page
}

func TestInitializePairsWithPhoneNumber(t *testing.T) {
	observerArgs := make(chan []interface{}, 1)
	page := phonePairingPage([]string{"ABCD-EFGH", "ABCD-EFGH", "WXYZ-1234"}, observerArgs)
	c, rec := newTestClient(t, page, Options{LinkingMethod: LinkingMethod{Phone: &PhoneLinking{Number: "6281234567890"}}})

	require.NoError(t, c.Initialize(context.Background()))

	clicks, typed := page.recorded()
	assert.Equal(t, []string{linkWithPhoneButtonSelector, phoneNextButtonSelector}, clicks)
	assert.Equal(t, []string{phoneNumberInputSelector + "=6281234567890"}, typed)

	args := <-observerArgs
	assert.Equal(t, []interface{}{pairingCodeSelector, generateNewCodeSelector}, args)
	assert.Contains(t, jsObservePairingCode, "expired.click()")

	var codes []string
	for _, evt := range eventsOf[*events.PairingCode](rec.all()) {
		codes = append(codes, evt.Code)
	}
	assert.Equal(t, []string{"ABCD-EFGH", "WXYZ-1234"}, codes)
	assert.Equal(t, "WXYZ-1234", c.LastPairingCode())
	assert.Empty(t, eventsOf[*events.QR](rec.all()))
	assert.Equal(t, SessionReady, c.State())
	assert.Equal(t, AuthReady, c.AuthState())
}

func TestFailedPairingMarksAuthFailed(t *testing.T) {
	page := newFakePage()
	page.wait = func(ctx context.Context, selector string) error {
		if selector == pairingLandmarkSelector {
			return nil
		}
		return page.block(ctx, nil)
	}
	page.evaluate = func(js string, args []interface{}) (json.RawMessage, error) {
		if js == jsObserveQR {
			return nil, errors.New("observer rejected")
		}
		return json.RawMessage("null"), nil
	}
	c, _ := newTestClient(t, page, Options{})

	err := c.Initialize(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "observer rejected")
	assert.Equal(t, AuthFailed, c.AuthState())
	assert.Equal(t, SessionDestroyed, c.State())
}

func TestSessionOutlivesInitializeContext(t *testing.T) {
	page := newFakePage()
	page.evaluate = respond(nil)
	page.wait = func(ctx context.Context, selector string) error {
		if selector == pairingLandmarkSelector {
			return page.block(ctx, nil)
		}
		return nil
	}
	c, rec := newTestClient(t, page, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, c.Initialize(ctx))
	cancel()

	_, err := page.callHost("onBatteryStateChangedEvent", map[string]interface{}{"battery": 42, "plugged": true})
	require.NoError(t, err)

	battery := eventsOf[*events.BatteryChanged](rec.all())
	require.Len(t, battery, 1)
	assert.Equal(t, types.BatteryInfo{Battery: 42, Plugged: true}, battery[0].Battery)
	assert.Equal(t, SessionReady, c.State())
}
