package whatsapp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/gdbrns/go-whatsapp-web-bridge/pkg/browser"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakePage stands in for the browser tab. Page calls into the host go through
// callHost, the same single binding the real page uses.
type fakePage struct {
	mu         sync.Mutex
	binding    browser.Binding
	bindCtx    context.Context
	exposed    []string
	newDoc     []string
	evaluated  []string
	clicks     []string
	typed      []string
	navs       map[int]func(string)
	navSeq     int
	closeCalls int
	closed     chan struct{}
	closeOnce  sync.Once

	wait     func(ctx context.Context, selector string) error
	evaluate func(js string, args []interface{}) (json.RawMessage, error)
}

func newFakePage() *fakePage {
	return &fakePage{
		navs:   make(map[int]func(string)),
		closed: make(chan struct{}),
	}
}

func (p *fakePage) isClosed() bool {
	select {
	case <-p.closed:
		return true
	default:
		return false
	}
}

func (p *fakePage) Navigate(ctx context.Context, url, referrer string) error { return nil }

func (p *fakePage) AddScriptTag(ctx context.Context, url, content string) error { return nil }

func (p *fakePage) EvaluateOnNewDocument(ctx context.Context, js string) error {
	p.mu.Lock()
	p.newDoc = append(p.newDoc, js)
	p.mu.Unlock()
	return nil
}

func (p *fakePage) Evaluate(ctx context.Context, js string, args ...interface{}) (json.RawMessage, error) {
	if p.isClosed() {
		return nil, browser.ErrTargetClosed
	}
	p.mu.Lock()
	p.evaluated = append(p.evaluated, js)
	hook := p.evaluate
	p.mu.Unlock()
	if hook != nil {
		return hook(js, args)
	}
	return json.RawMessage("null"), nil
}

func (p *fakePage) Expose(ctx context.Context, name string, fn browser.Binding) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.exposed = append(p.exposed, name)
	p.binding = fn
	p.bindCtx = ctx
	return nil
}

func (p *fakePage) WaitSelector(ctx context.Context, selector string) error {
	if p.wait != nil {
		return p.wait(ctx, selector)
	}
	return p.block(ctx, nil)
}

// block waits until ctx ends, the page closes or release is closed.
func (p *fakePage) block(ctx context.Context, release <-chan struct{}) error {
	select {
	case <-release:
		return nil
	case <-p.closed:
		return browser.ErrTargetClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *fakePage) WaitFunction(ctx context.Context, js string) error { return nil }

func (p *fakePage) Click(ctx context.Context, selector string) error {
	p.mu.Lock()
	p.clicks = append(p.clicks, selector)
	p.mu.Unlock()
	return nil
}

func (p *fakePage) ClearAndType(ctx context.Context, selector, text string) error {
	p.mu.Lock()
	p.typed = append(p.typed, selector+"="+text)
	p.mu.Unlock()
	return nil
}

func (p *fakePage) SetViewport(ctx context.Context, width, height int) error { return nil }

func (p *fakePage) Screenshot(ctx context.Context) ([]byte, error) { return []byte("png"), nil }

func (p *fakePage) OnNavigated(fn func(url string)) (stop func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.navSeq++
	id := p.navSeq
	p.navs[id] = fn
	return func() {
		p.mu.Lock()
		delete(p.navs, id)
		p.mu.Unlock()
	}
}

func (p *fakePage) ServeDocument(url, html string) error { return nil }

func (p *fakePage) OnDocument(url string, fn func(html string)) error { return nil }

func (p *fakePage) Connected() bool { return !p.isClosed() }

func (p *fakePage) Close() error {
	p.mu.Lock()
	p.closeCalls++
	p.mu.Unlock()
	p.closeOnce.Do(func() { close(p.closed) })
	return nil
}

// callHost invokes window[name](...args) from the page side. Like a rod
// binding, it stops answering once the context it was exposed with ends.
func (p *fakePage) callHost(name string, args ...interface{}) (interface{}, error) {
	p.mu.Lock()
	binding, bindCtx := p.binding, p.bindCtx
	p.mu.Unlock()
	if binding == nil {
		return nil, errors.New("bridge binding not exposed")
	}
	if bindCtx != nil && bindCtx.Err() != nil {
		return nil, errors.New("bridge binding released")
	}
	raw := make([]json.RawMessage, 0, len(args))
	for _, arg := range args {
		data, err := json.Marshal(arg)
		if err != nil {
			return nil, err
		}
		raw = append(raw, data)
	}
	payload, err := json.Marshal(bridgeCall{Name: name, Args: raw})
	if err != nil {
		return nil, err
	}
	return binding(payload)
}

// navigate fires the main frame navigation listeners.
func (p *fakePage) navigate(url string) {
	p.mu.Lock()
	fns := make([]func(string), 0, len(p.navs))
	for _, fn := range p.navs {
		fns = append(fns, fn)
	}
	p.mu.Unlock()
	for _, fn := range fns {
		fn(url)
	}
}

func (p *fakePage) evaluatedScripts() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.evaluated...)
}

func (p *fakePage) recorded() (clicks, typed []string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.clicks...), append([]string(nil), p.typed...)
}

func (p *fakePage) closeCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closeCalls
}

// recorder collects emitted events.
type recorder struct {
	mu     sync.Mutex
	events []interface{}
}

func (r *recorder) handle(evt interface{}) {
	r.mu.Lock()
	r.events = append(r.events, evt)
	r.mu.Unlock()
}

func (r *recorder) all() []interface{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]interface{}(nil), r.events...)
}

func quietLogger() *logrus.Entry {
	logger := logrus.New()
	logger.Out = io.Discard
	return logrus.NewEntry(logger)
}

func newTestClient(t *testing.T, page *fakePage, opts Options) (*Client, *recorder) {
	t.Helper()
	opts.Launcher = func(ctx context.Context, cfg browser.Config) (Page, error) {
		return page, nil
	}
	opts.Logger = quietLogger()
	c, err := NewClient(opts)
	require.NoError(t, err)
	rec := &recorder{}
	c.AddEventHandler(rec.handle)
	t.Cleanup(func() {
		_ = c.Destroy(context.Background())
		c.Wait()
	})
	return c, rec
}

const testClientInfo = `{"pushname":"Tester","wid":{"server":"c.us","user":"555000111","_serialized":"555000111@c.us"},"platform":"android"}`

// respond answers the page scripts a logged in session needs, plus any
// command results given in results.
func respond(results map[string]string) func(js string, args []interface{}) (json.RawMessage, error) {
	return func(js string, args []interface{}) (json.RawMessage, error) {
		if out, ok := results[js]; ok {
			return json.RawMessage(out), nil
		}
		if js == jsClientInfo {
			return json.RawMessage(testClientInfo), nil
		}
		return json.RawMessage("null"), nil
	}
}

// newReadyClient initializes a client against a page that is already logged in.
func newReadyClient(t *testing.T, results map[string]string) (*Client, *fakePage, *recorder) {
	t.Helper()
	page := newFakePage()
	page.evaluate = respond(results)
	page.wait = func(ctx context.Context, selector string) error {
		if selector == pairingLandmarkSelector {
			return page.block(ctx, nil)
		}
		return nil
	}
	c, rec := newTestClient(t, page, Options{})
	require.NoError(t, c.Initialize(context.Background()))
	require.Equal(t, SessionReady, c.State())
	return c, page, rec
}
