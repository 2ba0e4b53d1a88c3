package whatsapp

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gdbrns/go-whatsapp-web-bridge/pkg/browser"
)

func TestNormalizeChatID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"+6281234567890", "6281234567890@c.us"},
		{"6281234567890", "6281234567890@c.us"},
		{"6281234567890@s.whatsapp.net", "6281234567890@c.us"},
		{"6281234567890:12@s.whatsapp.net", "6281234567890@c.us"},
		{"6281234567890@c.us", "6281234567890@c.us"},
		{"120363000000@g.us", "120363000000@g.us"},
	}
	for _, tt := range tests {
		got, err := NormalizeChatID(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	for _, bad := range []string{"", "  ", "0812345", "12ab", "@c.us"} {
		_, err := NormalizeChatID(bad)
		assert.ErrorIs(t, err, ErrInvalidArgument, bad)
	}
}

func TestNormalizeUserAndGroupIDs(t *testing.T) {
	_, err := NormalizeUserID("120363000000@g.us")
	assert.ErrorIs(t, err, ErrInvalidArgument)
	id, err := NormalizeUserID("6281234567890")
	require.NoError(t, err)
	assert.Equal(t, "6281234567890@c.us", id)

	_, err = normalizeGroupID("6281234567890")
	assert.ErrorIs(t, err, ErrInvalidArgument)
	id, err = normalizeGroupID("120363000000@g.us")
	require.NoError(t, err)
	assert.Equal(t, "120363000000@g.us", id)

	assert.Equal(t, "6281@s.whatsapp.net", whatsappNetID("6281@c.us"))
	assert.Equal(t, "6281@s.whatsapp.net", whatsappNetID("6281"))
	assert.Equal(t, "6281@s.whatsapp.net", whatsappNetID("6281@s.whatsapp.net"))
}

func TestLocalWebCache(t *testing.T) {
	dir := t.TempDir()
	cache := NewLocalWebCache(filepath.Join(dir, "cache"), false)

	html, err := cache.Resolve("2.3000.1")
	require.NoError(t, err)
	assert.Empty(t, html)

	doc := `<html><link rel="manifest" href="/data/manifest-2.3000.1.json"></html>`
	require.NoError(t, cache.Persist(doc))
	html, err = cache.Resolve("2.3000.1")
	require.NoError(t, err)
	assert.Equal(t, doc, html)

	// an existing version is never overwritten
	require.NoError(t, cache.Persist(doc+"<!-- changed -->"))
	html, _ = cache.Resolve("2.3000.1")
	assert.Equal(t, doc, html)

	require.NoError(t, cache.Persist("<html>no manifest</html>"))
	entries, err := os.ReadDir(cache.Path)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	strict := NewLocalWebCache(filepath.Join(dir, "cache"), true)
	_, err = strict.Resolve("2.9999.9")
	assert.ErrorIs(t, err, ErrVersionResolve)

	assert.Equal(t, defaultWebCachePath, NewLocalWebCache("", false).Path)
}

func TestManifestVersion(t *testing.T) {
	assert.Equal(t, "2.2412.54", ManifestVersion(`href="/manifest-2.2412.54.json"`))
	assert.Empty(t, ManifestVersion("<html></html>"))
}

func TestCompareVersions(t *testing.T) {
	assert.Equal(t, 0, compareVersions("2.3000.1", "2.3000.1"))
	assert.Equal(t, -1, compareVersions("2.3000.1", "2.3000.10"))
	assert.Equal(t, 1, compareVersions("2.3001", "2.3000.99"))
	assert.Equal(t, 0, compareVersions("2.3000", "2.3000.0"))
}

func stubLatestVersion(t *testing.T, fn func(ctx context.Context, httpClient *http.Client) (string, error)) {
	t.Helper()
	orig := fetchLatestVersion
	fetchLatestVersion = fn
	t.Cleanup(func() { fetchLatestVersion = orig })
}

func TestRefreshWWebVersionThrottles(t *testing.T) {
	calls := 0
	stubLatestVersion(t, func(context.Context, *http.Client) (string, error) {
		calls++
		return "2.3000.10", nil
	})

	c, err := NewClient(Options{Logger: quietLogger(), VersionRefreshInterval: time.Hour})
	require.NoError(t, err)

	status, refreshed, err := c.RefreshWWebVersion(context.Background(), false)
	require.NoError(t, err)
	assert.True(t, refreshed)
	assert.Equal(t, "2.3000.10", status.Latest)
	assert.Empty(t, status.Page)
	assert.False(t, status.Outdated)
	require.NotNil(t, status.LastRefreshed)

	_, refreshed, err = c.RefreshWWebVersion(context.Background(), false)
	require.NoError(t, err)
	assert.False(t, refreshed)
	assert.Equal(t, 1, calls)

	_, refreshed, err = c.RefreshWWebVersion(context.Background(), true)
	require.NoError(t, err)
	assert.True(t, refreshed)
	assert.Equal(t, 2, calls)
}

func TestRefreshWWebVersionReportsOutdatedPage(t *testing.T) {
	stubLatestVersion(t, func(context.Context, *http.Client) (string, error) {
		return "2.3000.10", nil
	})

	c, _, _ := newReadyClient(t, map[string]string{jsGetWWebVersion: `"2.3000.2"`})

	status, refreshed, err := c.RefreshWWebVersion(context.Background(), true)
	require.NoError(t, err)
	assert.True(t, refreshed)
	assert.Equal(t, "2.3000.2", status.Page)
	assert.True(t, status.Outdated)
}

func TestRefreshWWebVersionKeepsLastGoodVersion(t *testing.T) {
	fail := false
	stubLatestVersion(t, func(context.Context, *http.Client) (string, error) {
		if fail {
			return "", errors.New("lookup failed")
		}
		return "2.3000.10", nil
	})

	c, err := NewClient(Options{Logger: quietLogger()})
	require.NoError(t, err)

	_, _, err = c.RefreshWWebVersion(context.Background(), true)
	require.NoError(t, err)

	fail = true
	status, _, err := c.RefreshWWebVersion(context.Background(), true)
	assert.EqualError(t, err, "lookup failed")
	assert.Equal(t, "2.3000.10", status.Latest)
	assert.Equal(t, "lookup failed", status.LastError)
}

func TestQRPNG(t *testing.T) {
	img, err := QRPNG("2@abc,def,ghi")
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG\r\n\x1a\n"), img[:8])

	_, err = QRPNG("")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestLocalAuthSessionDir(t *testing.T) {
	dir := t.TempDir()
	auth := &LocalAuth{ClientID: "client-one", DataPath: dir}

	cfg := &browser.Config{}
	require.NoError(t, auth.BeforeBrowserInitialized(context.Background(), cfg))
	assert.Equal(t, filepath.Join(dir, "session-client-one"), cfg.UserDataDir)
	assert.DirExists(t, cfg.UserDataDir)

	require.NoError(t, auth.Logout(context.Background()))
	assert.NoDirExists(t, cfg.UserDataDir)

	assert.Equal(t, filepath.Join(defaultLocalAuthPath, "session"), (&LocalAuth{}).sessionDir())
}

func TestLocalAuthRejectsBadConfig(t *testing.T) {
	dir := t.TempDir()

	err := (&LocalAuth{ClientID: "bad id!", DataPath: dir}).BeforeBrowserInitialized(context.Background(), &browser.Config{})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	err = (&LocalAuth{DataPath: dir}).BeforeBrowserInitialized(context.Background(), &browser.Config{UserDataDir: "/elsewhere"})
	assert.Error(t, err)
}

func TestLegacySessionAuthFailure(t *testing.T) {
	auth := &LegacySessionAuth{
		Session:           &LegacySession{WABrowserID: "id", WAToken1: "t1"},
		RestartOnAuthFail: true,
	}

	res, err := auth.OnAuthenticationNeeded(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Failed)
	assert.True(t, res.Restart)
	assert.Equal(t, "Unable to log in. Are the session details valid?", res.FailureMessage)
	assert.Nil(t, auth.Session)

	res, err = auth.OnAuthenticationNeeded(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Failed)
}

func TestLegacySessionAuthSavesTokens(t *testing.T) {
	page := newFakePage()
	page.evaluate = respond(map[string]string{
		jsReadLegacySession: `{"WABrowserId":"b","WASecretBundle":"s","WAToken1":"t1","WAToken2":"t2"}`,
	})

	var saved LegacySession
	auth := &LegacySessionAuth{OnSave: func(_ context.Context, s LegacySession) error {
		saved = s
		return nil
	}}

	payload, err := auth.GetAuthEventPayload(context.Background(), page)
	require.NoError(t, err)
	assert.Equal(t, LegacySession{WABrowserID: "b", WASecretBundle: "s", WAToken1: "t1", WAToken2: "t2"}, payload)
	assert.Equal(t, "t2", saved.WAToken2)
	require.NotNil(t, auth.Session)

	require.NoError(t, auth.AfterBrowserInitialized(context.Background(), page))
	assert.Len(t, page.newDoc, 1)
}

func TestLegacySessionAuthLogoutDropsTokens(t *testing.T) {
	dropped := false
	auth := &LegacySessionAuth{
		Session: &LegacySession{WAToken1: "t1"},
		OnLogout: func(context.Context) error {
			dropped = true
			return nil
		},
	}

	require.NoError(t, auth.Logout(context.Background()))
	assert.True(t, dropped)
	assert.Nil(t, auth.Session)
}
