package whatsapp

import (
	"context"
	"encoding/json"

	"github.com/gdbrns/go-whatsapp-web-bridge/pkg/browser"
)

// Page is the controlled WhatsApp Web tab. *browser.Session implements it.
type Page interface {
	Navigate(ctx context.Context, url, referrer string) error
	AddScriptTag(ctx context.Context, url, content string) error
	EvaluateOnNewDocument(ctx context.Context, js string) error
	Evaluate(ctx context.Context, js string, args ...interface{}) (json.RawMessage, error)
	Expose(ctx context.Context, name string, fn browser.Binding) error
	WaitSelector(ctx context.Context, selector string) error
	WaitFunction(ctx context.Context, js string) error
	Click(ctx context.Context, selector string) error
	ClearAndType(ctx context.Context, selector, text string) error
	SetViewport(ctx context.Context, width, height int) error
	Screenshot(ctx context.Context) ([]byte, error)
	OnNavigated(fn func(url string)) (stop func())
	ServeDocument(url, html string) error
	OnDocument(url string, fn func(html string)) error
	Connected() bool
	Close() error
}

// Launcher opens the page a session runs in.
type Launcher func(ctx context.Context, cfg browser.Config) (Page, error)

func launchBrowser(ctx context.Context, cfg browser.Config) (Page, error) {
	s, err := browser.LaunchOrConnect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return s, nil
}
