package browser

import (
	"strings"

	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
)

// DefaultUserAgent is sent when no override is configured.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

type Proxy struct {
	Server   string
	Username string
	Password string
}

type Viewport struct {
	Width  int
	Height int
}

// Config describes how a page session is obtained and prepared.
type Config struct {
	// WSEndpoint attaches to an already running browser instead of launching one.
	WSEndpoint  string
	Bin         string
	Headless    bool
	Args        []string
	UserDataDir string
	UserAgent   string
	Proxy       Proxy
	BypassCSP   bool
	Viewport    Viewport
}

func DefaultConfig() Config {
	return Config{
		Headless:  true,
		UserAgent: DefaultUserAgent,
		BypassCSP: true,
		Viewport:  Viewport{Width: 501, Height: 700},
	}
}

// launcherFor converts the config into a rod launcher. Extra args are given
// as "--name=value" or "--name".
func launcherFor(cfg Config) *launcher.Launcher {
	l := launcher.New().Headless(cfg.Headless)
	if cfg.Bin != "" {
		l = l.Bin(cfg.Bin)
	}
	if cfg.UserDataDir != "" {
		l = l.UserDataDir(cfg.UserDataDir)
	}
	if cfg.Proxy.Server != "" {
		l = l.Proxy(cfg.Proxy.Server)
	}
	if cfg.UserAgent != "" {
		l = l.Set(flags.Flag("user-agent"), cfg.UserAgent)
	}
	for _, raw := range cfg.Args {
		name, val, hasVal := strings.Cut(strings.TrimLeft(raw, "-"), "=")
		if name == "" {
			continue
		}
		if hasVal {
			l = l.Set(flags.Flag(name), val)
		} else {
			l = l.Set(flags.Flag(name))
		}
	}
	return l
}
