package whatsapp

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gdbrns/go-whatsapp-web-bridge/pkg/browser"
	"github.com/gdbrns/go-whatsapp-web-bridge/pkg/env"
)

const (
	WhatsWebURL    = "https://web.whatsapp.com/"
	DefaultWAJSURL = "https://cdn.jsdelivr.net/npm/@wppconnect/wa-js@latest/dist/wppconnect-wa.js"

	whatsappReferrer = "https://whatsapp.com/"

	defaultAuthTimeout        = 60 * time.Second
	defaultLogoutPollInterval = 100 * time.Millisecond
	defaultLogoutPollAttempts = 10

	defaultVersionRefreshInterval = 10 * time.Minute
)

// QRLinking pairs by scanning QR codes. MaxRetries of 0 keeps refreshing forever.
type QRLinking struct {
	MaxRetries int
}

// PhoneLinking pairs by typing Number into the web app and showing a code.
type PhoneLinking struct {
	Number string
}

// LinkingMethod selects how a new device is paired. QR is used unless a
// phone number is set.
type LinkingMethod struct {
	QR    QRLinking
	Phone *PhoneLinking
}

func (l LinkingMethod) IsQR() bool {
	return l.Phone == nil || l.Phone.Number == ""
}

// Options configure a Client. Zero values fall back to DefaultOptions.
type Options struct {
	Browser       browser.Config
	AuthStrategy  AuthStrategy
	LinkingMethod LinkingMethod

	// AuthTimeout bounds the detection of the main or pairing screen.
	AuthTimeout time.Duration

	TakeoverOnConflict bool
	TakeoverTimeout    time.Duration

	MarkOnlineAvailable bool
	JoinBeta            bool

	// LandmarkSelector picks one of the known "main screen" selectors (0-6).
	LandmarkSelector int

	WAJSURL    string
	WebCache   *LocalWebCache
	WebVersion string

	// VersionRefreshInterval throttles non-forced RefreshWWebVersion calls.
	// Zero disables throttling.
	VersionRefreshInterval time.Duration

	// SendRateLimit caps outgoing messages per second. Zero disables limiting.
	SendRateLimit float64
	SendRateBurst int

	StickerDefaults StickerOptions

	LogoutPollInterval time.Duration
	LogoutPollAttempts int

	Launcher Launcher
	Logger   *logrus.Entry
}

func DefaultOptions() Options {
	return Options{
		Browser:             browser.DefaultConfig(),
		AuthTimeout:         defaultAuthTimeout,
		MarkOnlineAvailable: true,
		WAJSURL:             DefaultWAJSURL,
		SendRateBurst:       1,
		LogoutPollInterval:  defaultLogoutPollInterval,
		LogoutPollAttempts:  defaultLogoutPollAttempts,

		VersionRefreshInterval: defaultVersionRefreshInterval,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.AuthStrategy == nil {
		o.AuthStrategy = &NoAuth{}
	}
	if o.AuthTimeout <= 0 {
		o.AuthTimeout = def.AuthTimeout
	}
	if o.WAJSURL == "" {
		o.WAJSURL = def.WAJSURL
	}
	if o.SendRateBurst <= 0 {
		o.SendRateBurst = def.SendRateBurst
	}
	if o.LogoutPollInterval <= 0 {
		o.LogoutPollInterval = def.LogoutPollInterval
	}
	if o.LogoutPollAttempts <= 0 {
		o.LogoutPollAttempts = def.LogoutPollAttempts
	}
	if o.Browser.Viewport.Width <= 0 || o.Browser.Viewport.Height <= 0 {
		o.Browser.Viewport = def.Browser.Viewport
	}
	if o.VersionRefreshInterval < 0 {
		o.VersionRefreshInterval = def.VersionRefreshInterval
	}
	if o.Launcher == nil {
		o.Launcher = launchBrowser
	}
	return o
}

// OptionsFromEnv reads the client configuration from WHATSAPP_* variables.
// Session-store backed strategies are chosen by the caller.
func OptionsFromEnv() Options {
	opts := DefaultOptions()

	opts.Browser.WSEndpoint = env.GetEnvStringOrDefault("WHATSAPP_BROWSER_WS_ENDPOINT", "")
	opts.Browser.Bin = env.GetEnvStringOrDefault("WHATSAPP_BROWSER_BIN", "")
	opts.Browser.Headless = env.GetEnvBoolOrDefault("WHATSAPP_BROWSER_HEADLESS", true)
	opts.Browser.Args = env.GetEnvStringSliceOrDefault("WHATSAPP_BROWSER_ARGS", nil)
	opts.Browser.UserDataDir = env.GetEnvStringOrDefault("WHATSAPP_BROWSER_USER_DATA_DIR", "")
	opts.Browser.UserAgent = env.GetEnvStringOrDefault("WHATSAPP_USER_AGENT", browser.DefaultUserAgent)
	opts.Browser.BypassCSP = env.GetEnvBoolOrDefault("WHATSAPP_BYPASS_CSP", true)
	opts.Browser.Proxy = browser.Proxy{
		Server:   env.GetEnvStringOrDefault("WHATSAPP_PROXY_SERVER", ""),
		Username: env.GetEnvStringOrDefault("WHATSAPP_PROXY_USERNAME", ""),
		Password: env.GetEnvStringOrDefault("WHATSAPP_PROXY_PASSWORD", ""),
	}

	opts.AuthTimeout = env.GetEnvDurationOrDefault("WHATSAPP_AUTH_TIMEOUT", defaultAuthTimeout)
	opts.LinkingMethod.QR.MaxRetries = env.GetEnvIntOrDefault("WHATSAPP_QR_MAX_RETRIES", 0)
	if phone := env.GetEnvStringOrDefault("WHATSAPP_LINKING_PHONE", ""); phone != "" {
		opts.LinkingMethod.Phone = &PhoneLinking{Number: phone}
	}

	opts.TakeoverOnConflict = env.GetEnvBoolOrDefault("WHATSAPP_TAKEOVER_ON_CONFLICT", false)
	opts.TakeoverTimeout = env.GetEnvDurationOrDefault("WHATSAPP_TAKEOVER_TIMEOUT", 0)
	opts.MarkOnlineAvailable = env.GetEnvBoolOrDefault("WHATSAPP_MARK_ONLINE", true)
	opts.JoinBeta = env.GetEnvBoolOrDefault("WHATSAPP_JOIN_BETA", false)
	opts.LandmarkSelector = env.GetEnvIntOrDefault("WHATSAPP_LANDMARK_SELECTOR", 0)
	opts.WAJSURL = env.GetEnvStringOrDefault("WHATSAPP_WAJS_URL", DefaultWAJSURL)

	if dir := env.GetEnvStringOrDefault("WHATSAPP_WEB_CACHE_DIR", ""); dir != "" {
		opts.WebCache = NewLocalWebCache(dir, env.GetEnvBoolOrDefault("WHATSAPP_WEB_CACHE_STRICT", false))
	}
	opts.WebVersion = env.GetEnvStringOrDefault("WHATSAPP_WEB_VERSION", "")
	opts.VersionRefreshInterval = env.GetEnvDurationOrDefault("WHATSAPP_WAVERSION_REFRESH_MIN_INTERVAL", defaultVersionRefreshInterval)

	opts.SendRateLimit = env.GetEnvFloat64OrDefault("WHATSAPP_SEND_RATE_LIMIT", 0)
	opts.SendRateBurst = env.GetEnvIntOrDefault("WHATSAPP_SEND_RATE_BURST", 1)

	opts.StickerDefaults = StickerOptions{
		PackID:      env.GetEnvStringOrDefault("WHATSAPP_STICKER_PACK_ID", ""),
		PackName:    env.GetEnvStringOrDefault("WHATSAPP_STICKER_PACK_NAME", ""),
		PackPublish: env.GetEnvStringOrDefault("WHATSAPP_STICKER_PACK_PUBLISH", ""),
		PackEmail:   env.GetEnvStringOrDefault("WHATSAPP_STICKER_PACK_EMAIL", ""),
		PackWebsite: env.GetEnvStringOrDefault("WHATSAPP_STICKER_PACK_WEBSITE", ""),
		AndroidApp:  env.GetEnvStringOrDefault("WHATSAPP_STICKER_ANDROID_APP", ""),
		IOSApp:      env.GetEnvStringOrDefault("WHATSAPP_STICKER_IOS_APP", ""),
		Categories:  env.GetEnvStringSliceOrDefault("WHATSAPP_STICKER_CATEGORIES", nil),
		IsAvatar:    env.GetEnvBoolOrDefault("WHATSAPP_STICKER_IS_AVATAR", false),
	}

	switch env.GetEnvStringOrDefault("WHATSAPP_AUTH_STRATEGY", "none") {
	case "local":
		opts.AuthStrategy = &LocalAuth{
			ClientID: env.GetEnvStringOrDefault("WHATSAPP_AUTH_CLIENT_ID", ""),
			DataPath: env.GetEnvStringOrDefault("WHATSAPP_AUTH_DATA_PATH", defaultLocalAuthPath),
		}
	default:
		opts.AuthStrategy = &NoAuth{}
	}

	return opts
}

var landmarkSelectors = map[int]string{
	1: "div[role='textbox']",
	2: `[data-icon="chat"],[data-icon="intro-md-beta-logo-dark"],[data-icon="intro-md-beta-logo-light"]`,
	3: "[data-icon='chat']",
	4: "[data-icon*=community],[data-icon*=status],[data-icon*=chat],[data-icon*=back],[data-icon*=search],[data-icon*=filter],[data-icon*=lock-small]",
	5: `[data-testid="intro-md-beta-logo-dark"],[data-testid="intro-md-beta-logo-light"],[data-asset-intro-image-light="true"],[data-asset-intro-image-dark="true"],[data-icon="intro-md-beta-logo-dark"],[data-icon="intro-md-beta-logo-light"]`,
	6: "#side > div._3gYev > div > div._1EUay > div._2vDPL",
}

const defaultLandmarkSelector = "[data-icon='search']"

// LandmarkSelector returns the selector that marks the logged-in main screen.
func LandmarkSelector(variant int) string {
	if s, ok := landmarkSelectors[variant]; ok {
		return s
	}
	return defaultLandmarkSelector
}
