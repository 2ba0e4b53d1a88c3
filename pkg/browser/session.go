package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/sirupsen/logrus"
	"github.com/ysmood/gson"

	"github.com/gdbrns/go-whatsapp-web-bridge/pkg/log"
)

// Binding is a host function callable from the page with a single JSON argument.
type Binding func(payload json.RawMessage) (interface{}, error)

// Session owns one browser and the page the client drives. It is the only
// holder of the rod handles; callers see it through the methods below.
type Session struct {
	browser  *rod.Browser
	page     *rod.Page
	launcher *launcher.Launcher

	mu        sync.Mutex
	stops     []func() error
	closed    bool
	closeOnce sync.Once
	closeErr  error
	entry     *logrus.Entry
}

// LaunchOrConnect starts (or attaches to) a browser and prepares its first page
// with the configured user agent, CSP bypass and viewport. ctx bounds the
// setup only; the browser stays up until Close.
func LaunchOrConnect(ctx context.Context, cfg Config) (*Session, error) {
	entry := log.Print(nil).WithField("component", "browser")

	var l *launcher.Launcher
	controlURL := cfg.WSEndpoint
	if controlURL == "" {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBrowserLaunch, err)
		}
		// The process is killed by Close, not by the caller's ctx.
		l = launcherFor(cfg).Context(context.WithoutCancel(ctx))
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBrowserLaunch, err)
		}
		controlURL = u
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		if l != nil {
			l.Kill()
		}
		return nil, fmt.Errorf("%w: connect %s: %v", ErrBrowserLaunch, controlURL, err)
	}

	s := &Session{browser: b, launcher: l, entry: entry}

	if cfg.Proxy.Username != "" {
		wait := b.HandleAuth(cfg.Proxy.Username, cfg.Proxy.Password)
		go func() {
			if err := wait(); err != nil && !IsTargetClosed(err) {
				entry.WithError(err).Warn("proxy authentication handler stopped")
			}
		}()
	}

	page, err := s.firstPage(cfg.WSEndpoint != "")
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("%w: open page: %v", ErrBrowserLaunch, err)
	}
	s.page = page

	if cfg.UserAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: cfg.UserAgent}); err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("%w: user agent: %v", ErrBrowserLaunch, err)
		}
	}
	if cfg.BypassCSP {
		if err := (proto.PageSetBypassCSP{Enabled: true}).Call(page); err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("%w: bypass csp: %v", ErrBrowserLaunch, err)
		}
	}
	if cfg.Viewport.Width > 0 && cfg.Viewport.Height > 0 {
		if err := s.SetViewport(ctx, cfg.Viewport.Width, cfg.Viewport.Height); err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("%w: %v", ErrBrowserLaunch, err)
		}
	}

	entry.WithField("attached", cfg.WSEndpoint != "").Info("Browser page session ready")
	return s, nil
}

func (s *Session) firstPage(attached bool) (*rod.Page, error) {
	if !attached {
		pages, err := s.browser.Pages()
		if err != nil {
			return nil, err
		}
		if p := pages.First(); p != nil {
			return p, nil
		}
	}
	return s.browser.Page(proto.TargetCreateTarget{})
}

func (s *Session) addStop(stop func() error) {
	s.mu.Lock()
	s.stops = append(s.stops, stop)
	s.mu.Unlock()
}

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Navigate loads url with the given referrer and waits for the load event.
// Only ctx bounds the wait.
func (s *Session) Navigate(ctx context.Context, url, referrer string) error {
	p := s.page.Context(ctx)
	res, err := proto.PageNavigate{URL: url, Referrer: referrer}.Call(p)
	if err != nil {
		if IsTargetClosed(err) {
			return wrapPageError("navigate", err)
		}
		return fmt.Errorf("%w: %s: %v", ErrNavigation, url, err)
	}
	if res.ErrorText != "" {
		return fmt.Errorf("%w: %s: %s", ErrNavigation, url, res.ErrorText)
	}
	if err := p.WaitLoad(); err != nil {
		return fmt.Errorf("%w: wait load: %v", ErrNavigation, err)
	}
	return nil
}

// AddScriptTag injects a script by url or inline content.
func (s *Session) AddScriptTag(ctx context.Context, url, content string) error {
	return wrapPageError("add script", s.page.Context(ctx).AddScriptTag(url, content))
}

// EvaluateOnNewDocument registers js to run before any page script on every
// document load. The registration is removed on Close.
func (s *Session) EvaluateOnNewDocument(ctx context.Context, js string) error {
	remove, err := s.page.Context(ctx).EvalOnNewDocument(js)
	if err != nil {
		return wrapPageError("eval on new document", err)
	}
	s.addStop(remove)
	return nil
}

// Evaluate runs a function expression in the page, awaiting a returned promise,
// and returns the JSON encoded result.
func (s *Session) Evaluate(ctx context.Context, js string, args ...interface{}) (json.RawMessage, error) {
	res, err := s.page.Context(ctx).Evaluate(&rod.EvalOptions{
		JS:           js,
		JSArgs:       args,
		ByValue:      true,
		AwaitPromise: true,
	})
	if err != nil {
		return nil, wrapPageError("evaluate", err)
	}
	if res == nil || res.Value.Nil() {
		return json.RawMessage("null"), nil
	}
	raw, err := res.Value.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("evaluate: decode result: %w", err)
	}
	return json.RawMessage(raw), nil
}

// Expose binds fn as window[name]. Invocations are delivered one at a time in
// the order the page makes them, for as long as ctx is alive or until Close.
func (s *Session) Expose(ctx context.Context, name string, fn Binding) error {
	stop, err := s.page.Context(ctx).Expose(name, func(payload gson.JSON) (interface{}, error) {
		raw, err := payload.MarshalJSON()
		if err != nil {
			return nil, err
		}
		return fn(json.RawMessage(raw))
	})
	if err != nil {
		return wrapPageError("expose "+name, err)
	}
	s.addStop(stop)
	return nil
}

func (s *Session) element(ctx context.Context, selector string) (*rod.Element, error) {
	p := s.page.Context(ctx)
	if strings.HasPrefix(selector, "//") {
		return p.ElementX(selector)
	}
	return p.Element(selector)
}

// WaitSelector blocks until selector matches an element or ctx ends.
func (s *Session) WaitSelector(ctx context.Context, selector string) error {
	_, err := s.element(ctx, selector)
	return wrapPageError("wait selector "+selector, err)
}

// WaitFunction blocks until the function expression js returns a truthy value or ctx ends.
func (s *Session) WaitFunction(ctx context.Context, js string) error {
	return wrapPageError("wait function", s.page.Context(ctx).Wait(rod.Eval(js)))
}

func (s *Session) Click(ctx context.Context, selector string) error {
	el, err := s.element(ctx, selector)
	if err != nil {
		return wrapPageError("click "+selector, err)
	}
	return wrapPageError("click "+selector, el.Click(proto.InputMouseButtonLeft, 1))
}

// ClearAndType empties an input and types text into it.
func (s *Session) ClearAndType(ctx context.Context, selector, text string) error {
	el, err := s.element(ctx, selector)
	if err != nil {
		return wrapPageError("type "+selector, err)
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return wrapPageError("type "+selector, err)
	}
	if err := el.SelectAllText(); err != nil {
		return wrapPageError("type "+selector, err)
	}
	if err := s.page.Keyboard.Press(input.Backspace); err != nil {
		return wrapPageError("type "+selector, err)
	}
	return wrapPageError("type "+selector, el.Input(text))
}

func (s *Session) SetViewport(ctx context.Context, width, height int) error {
	err := s.page.Context(ctx).SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             width,
		Height:            height,
		DeviceScaleFactor: 1,
	})
	return wrapPageError("viewport", err)
}

// Screenshot captures the visible viewport as PNG.
func (s *Session) Screenshot(ctx context.Context) ([]byte, error) {
	data, err := s.page.Context(ctx).Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return nil, wrapPageError("screenshot", err)
	}
	return data, nil
}

// OnNavigated calls fn with the url of every main frame navigation until stop is called.
func (s *Session) OnNavigated(fn func(url string)) (stop func()) {
	ctx, cancel := context.WithCancel(context.Background())
	wait := s.page.Context(ctx).EachEvent(func(ev *proto.PageFrameNavigated) {
		if ev.Frame == nil || ev.Frame.ParentID != "" {
			return
		}
		fn(ev.Frame.URL)
	})
	go wait()
	s.addStop(func() error {
		cancel()
		return nil
	})
	return cancel
}

// ServeDocument answers requests for url with html instead of hitting the network.
func (s *Session) ServeDocument(url, html string) error {
	router := s.page.HijackRequests()
	err := router.Add(url, proto.NetworkResourceTypeDocument, func(h *rod.Hijack) {
		h.Response.SetHeader("Content-Type", "text/html; charset=utf-8")
		h.Response.SetBody(html)
	})
	if err != nil {
		return wrapPageError("serve document", err)
	}
	go router.Run()
	s.addStop(router.Stop)
	return nil
}

// OnDocument hands the body of the document served for url to fn, leaving the
// response untouched for the page.
func (s *Session) OnDocument(url string, fn func(html string)) error {
	router := s.page.HijackRequests()
	err := router.Add(url, proto.NetworkResourceTypeDocument, func(h *rod.Hijack) {
		if err := h.LoadResponse(http.DefaultClient, true); err != nil {
			s.entry.WithError(err).Warn("document capture failed")
			h.ContinueRequest(&proto.FetchContinueRequest{})
			return
		}
		fn(h.Response.Body())
	})
	if err != nil {
		return wrapPageError("capture document", err)
	}
	go router.Run()
	s.addStop(router.Stop)
	return nil
}

// Connected reports whether the browser still answers protocol calls.
func (s *Session) Connected() bool {
	if s.isClosed() {
		return false
	}
	_, err := s.browser.Version()
	return err == nil
}

// Close tears the session down. Calling it again is a no-op; target-closed
// errors are not reported.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		stops := s.stops
		s.stops = nil
		s.mu.Unlock()

		for i := len(stops) - 1; i >= 0; i-- {
			_ = stops[i]()
		}
		if err := s.browser.Close(); err != nil && !IsTargetClosed(err) {
			s.closeErr = fmt.Errorf("close browser: %w", err)
		}
		if s.launcher != nil {
			s.launcher.Kill()
		}
		s.entry.Info("Browser page session closed")
		err = s.closeErr
	})
	return err
}
