package router

import (
	"strconv"
	"strings"

	"github.com/gdbrns/go-whatsapp-web-bridge/pkg/env"
)

const defaultBodyLimit = 8 << 20

// Config is the HTTP surface configuration.
type Config struct {
	BaseURL         string // route prefix, "" or "/prefix"
	CORSOrigin      string
	BodyLimit       int // bytes
	GZipLevel       int
	CacheTTLSeconds int
}

// Settings is loaded from the environment at start-up.
var Settings Config

// BaseURL mirrors Settings.BaseURL for route registration.
var BaseURL string

func init() {
	Settings = LoadConfig()
	BaseURL = Settings.BaseURL
}

// LoadConfig reads the HTTP_* variables.
func LoadConfig() Config {
	return Config{
		BaseURL:         normalizeBaseURL(env.GetEnvStringOrDefault("HTTP_BASE_URL", "")),
		CORSOrigin:      env.GetEnvStringOrDefault("HTTP_CORS_ORIGIN", "*"),
		BodyLimit:       parseBodyLimit(env.GetEnvStringOrDefault("HTTP_BODY_LIMIT_SIZE", "8M")),
		GZipLevel:       env.GetEnvIntOrDefault("HTTP_GZIP_LEVEL", 1),
		CacheTTLSeconds: env.GetEnvIntOrDefault("HTTP_CACHE_TTL_SECONDS", 5),
	}
}

func normalizeBaseURL(raw string) string {
	trimmed := strings.Trim(strings.TrimSpace(raw), "/")
	if trimmed == "" {
		return ""
	}
	return "/" + trimmed
}

var sizeUnits = []struct {
	suffix string
	scale  int
}{
	{"G", 1 << 30},
	{"M", 1 << 20},
	{"K", 1 << 10},
}

// parseBodyLimit accepts plain bytes or a K/M/G suffix, with an optional
// trailing "B". Anything unparsable falls back to 8M.
func parseBodyLimit(limit string) int {
	limit = strings.ToUpper(strings.TrimSpace(limit))
	if len(limit) > 1 {
		limit = strings.TrimSuffix(limit, "B")
	}
	scale := 1
	for _, unit := range sizeUnits {
		if strings.HasSuffix(limit, unit.suffix) {
			scale = unit.scale
			limit = strings.TrimSuffix(limit, unit.suffix)
			break
		}
	}
	value, err := strconv.Atoi(strings.TrimSpace(limit))
	if err != nil || value <= 0 {
		return defaultBodyLimit
	}
	return value * scale
}
