package whatsapp

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gdbrns/go-whatsapp-web-bridge/pkg/whatsapp/events"
	"github.com/gdbrns/go-whatsapp-web-bridge/pkg/whatsapp/types"
)

const (
	reasonNavigation = "NAVIGATION"
	takeoverTimeout  = 30 * time.Second
)

// watchdog turns app state changes and unexpected navigations into
// disconnects for one session.
type watchdog struct {
	client  *Client
	session *session

	mu        sync.Mutex
	lastState types.WAState
	timers    []*time.Timer
	stopNav   []func()
	stopped   bool
}

func newWatchdog(c *Client, s *session) *watchdog {
	return &watchdog{client: c, session: s}
}

// acceptedStates are the app states that keep a session alive.
func acceptedStates(takeoverOnConflict bool) map[types.WAState]bool {
	accepted := map[types.WAState]bool{
		types.StateConnected: true,
		types.StateOpening:   true,
		types.StatePairing:   true,
		types.StateTimeout:   true,
	}
	if takeoverOnConflict {
		accepted[types.StateConflict] = true
	}
	return accepted
}

func (w *watchdog) onState(state types.WAState) {
	w.mu.Lock()
	w.lastState = state
	w.mu.Unlock()

	w.client.emit(&events.StateChanged{State: state})

	takeover := w.client.opts.TakeoverOnConflict
	if takeover && state == types.StateConflict {
		w.scheduleTakeover()
	}
	if !acceptedStates(takeover)[state] {
		w.client.disconnect(w.session, string(state), true)
	}
}

// LastState returns the latest app state seen by the watchdog.
func (w *watchdog) LastState() types.WAState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastState
}

func (w *watchdog) scheduleTakeover() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	timer := time.AfterFunc(w.client.opts.TakeoverTimeout, func() {
		ctx, cancel := context.WithTimeout(w.session.ctx, takeoverTimeout)
		defer cancel()
		if _, err := w.session.page.Evaluate(ctx, jsTakeover); err != nil && !w.client.benign(w.session, err) {
			w.client.log.WithError(err).Warn("Session takeover failed")
		}
	})
	w.timers = append(w.timers, timer)
}

// watchNavigation treats any main frame navigation that leaves the page
// without an app state, or back on the pairing screen, as a logout.
func (w *watchdog) watchNavigation() {
	w.addNavigationWatch(func() { w.checkAfterNavigation() })
}

// watchPairing treats navigation during pairing as a logout.
func (w *watchdog) watchPairing() func() {
	return w.addNavigationWatch(func() {
		if w.client.authStateOf(w.session) == AuthPairing {
			w.client.disconnect(w.session, reasonNavigation, true)
		}
	})
}

func (w *watchdog) addNavigationWatch(check func()) func() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return func() {}
	}
	w.mu.Unlock()

	stop := w.session.page.OnNavigated(func(string) {
		w.client.background.Add(1)
		go func() {
			defer w.client.background.Done()
			check()
		}()
	})

	w.mu.Lock()
	w.stopNav = append(w.stopNav, stop)
	w.mu.Unlock()
	return stop
}

func (w *watchdog) checkAfterNavigation() {
	if w.client.isDestroyed(w.session) {
		return
	}
	ctx, cancel := context.WithTimeout(w.session.ctx, takeoverTimeout)
	defer cancel()

	var state types.WAState
	raw, err := w.session.page.Evaluate(ctx, jsGetState)
	if err != nil {
		if w.client.benign(w.session, err) {
			return
		}
		w.client.log.WithError(err).Debug("App state unavailable after navigation")
	} else if err := json.Unmarshal(raw, &state); err != nil {
		state = ""
	}

	if state == "" || state == types.StatePairing {
		w.client.disconnect(w.session, reasonNavigation, true)
	}
}

func (w *watchdog) stop() {
	w.mu.Lock()
	w.stopped = true
	timers := w.timers
	stops := w.stopNav
	w.timers = nil
	w.stopNav = nil
	w.mu.Unlock()

	for _, timer := range timers {
		timer.Stop()
	}
	for _, stop := range stops {
		stop()
	}
}
