package whatsapp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/gdbrns/go-whatsapp-web-bridge/pkg/browser"
)

// AuthNeededResult is the strategy's answer when the page asks for pairing.
type AuthNeededResult struct {
	Failed         bool
	FailureMessage string
	Restart        bool
}

// AuthStrategy decides how a session is restored, persisted and cleaned up.
type AuthStrategy interface {
	Setup(client *Client)
	BeforeBrowserInitialized(ctx context.Context, cfg *browser.Config) error
	AfterBrowserInitialized(ctx context.Context, page Page) error
	OnAuthenticationNeeded(ctx context.Context) (AuthNeededResult, error)
	GetAuthEventPayload(ctx context.Context, page Page) (interface{}, error)
	AfterAuthReady(ctx context.Context) error
	Disconnect(ctx context.Context) error
	Logout(ctx context.Context) error
	Destroy(ctx context.Context) error
}

// BaseAuthStrategy implements every hook as a no-op. Embed it and override what you need.
type BaseAuthStrategy struct {
	Client *Client
}

func (b *BaseAuthStrategy) Setup(client *Client) { b.Client = client }

func (b *BaseAuthStrategy) BeforeBrowserInitialized(context.Context, *browser.Config) error {
	return nil
}

func (b *BaseAuthStrategy) AfterBrowserInitialized(context.Context, Page) error { return nil }

func (b *BaseAuthStrategy) OnAuthenticationNeeded(context.Context) (AuthNeededResult, error) {
	return AuthNeededResult{}, nil
}

func (b *BaseAuthStrategy) GetAuthEventPayload(context.Context, Page) (interface{}, error) {
	return nil, nil
}

func (b *BaseAuthStrategy) AfterAuthReady(context.Context) error { return nil }
func (b *BaseAuthStrategy) Disconnect(context.Context) error     { return nil }
func (b *BaseAuthStrategy) Logout(context.Context) error         { return nil }
func (b *BaseAuthStrategy) Destroy(context.Context) error        { return nil }

// NoAuth keeps nothing between runs: every start pairs again.
type NoAuth struct {
	BaseAuthStrategy
}

const defaultLocalAuthPath = ".wwebjs_auth"

var clientIDPattern = regexp.MustCompile(`^[-_\w]+$`)

// LocalAuth keeps the browser profile in a per-client directory so the
// web app's own storage survives restarts.
type LocalAuth struct {
	BaseAuthStrategy
	ClientID string
	DataPath string

	userDataDir string
}

func (a *LocalAuth) sessionDir() string {
	path := a.DataPath
	if path == "" {
		path = defaultLocalAuthPath
	}
	name := "session"
	if a.ClientID != "" {
		name = "session-" + a.ClientID
	}
	return filepath.Join(path, name)
}

func (a *LocalAuth) BeforeBrowserInitialized(_ context.Context, cfg *browser.Config) error {
	if a.ClientID != "" && !clientIDPattern.MatchString(a.ClientID) {
		return invalidArgument("client id %q may only contain alphanumerics, underscores and hyphens", a.ClientID)
	}
	dir := a.sessionDir()
	if cfg.UserDataDir != "" && cfg.UserDataDir != dir {
		return errors.New("LocalAuth is not compatible with a user-supplied user data dir")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	cfg.UserDataDir = dir
	a.userDataDir = dir
	return nil
}

func (a *LocalAuth) Logout(context.Context) error {
	if a.userDataDir == "" {
		return nil
	}
	return os.RemoveAll(a.userDataDir)
}

// LegacySession holds the tokens the web app keeps in localStorage.
type LegacySession struct {
	WABrowserID    string `json:"WABrowserId"`
	WASecretBundle string `json:"WASecretBundle"`
	WAToken1       string `json:"WAToken1"`
	WAToken2       string `json:"WAToken2"`
}

const legacyAuthFailureMessage = "Unable to log in. Are the session details valid?"

// LegacySessionAuth restores a session from saved localStorage tokens and
// hands fresh tokens to OnSave after every successful login.
type LegacySessionAuth struct {
	BaseAuthStrategy
	Session           *LegacySession
	RestartOnAuthFail bool
	OnSave            func(ctx context.Context, session LegacySession) error
	// OnLogout drops the saved tokens from wherever OnSave put them.
	OnLogout          func(ctx context.Context) error
}

func (a *LegacySessionAuth) AfterBrowserInitialized(ctx context.Context, page Page) error {
	if a.Session == nil {
		return nil
	}
	payload, err := json.Marshal(a.Session)
	if err != nil {
		return err
	}
	return page.EvaluateOnNewDocument(ctx, fmt.Sprintf(jsInjectLegacySession, payload))
}

func (a *LegacySessionAuth) OnAuthenticationNeeded(context.Context) (AuthNeededResult, error) {
	if a.Session == nil {
		return AuthNeededResult{}, nil
	}
	// the saved tokens were rejected; a restart pairs from scratch
	a.Session = nil
	return AuthNeededResult{
		Failed:         true,
		FailureMessage: legacyAuthFailureMessage,
		Restart:        a.RestartOnAuthFail,
	}, nil
}

func (a *LegacySessionAuth) GetAuthEventPayload(ctx context.Context, page Page) (interface{}, error) {
	raw, err := page.Evaluate(ctx, jsReadLegacySession)
	if err != nil {
		return nil, remoteError("read legacy session", err)
	}
	var session LegacySession
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("decode legacy session: %w", err)
	}
	a.Session = &session
	if a.OnSave != nil {
		if err := a.OnSave(ctx, session); err != nil {
			return nil, fmt.Errorf("save legacy session: %w", err)
		}
	}
	return session, nil
}

func (a *LegacySessionAuth) Logout(ctx context.Context) error {
	a.Session = nil
	if a.OnLogout != nil {
		return a.OnLogout(ctx)
	}
	return nil
}
