package auth

import (
	"crypto/subtle"
	"strings"

	"github.com/gdbrns/go-whatsapp-web-bridge/pkg/env"
)

// AdminSecretKey guards token issuance and the /admin routes. Those routes
// refuse every caller while it is empty.
var AdminSecretKey string

func init() {
	AdminSecretKey = strings.TrimSpace(env.GetEnvStringOrDefault("ADMIN_SECRET_KEY", ""))
}

// AdminKeyValid reports whether key matches the configured admin secret.
func AdminKeyValid(key string) bool {
	if AdminSecretKey == "" || key == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(key), []byte(AdminSecretKey)) == 1
}
