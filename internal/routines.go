package internal

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/gdbrns/go-whatsapp-web-bridge/internal/bridge"
	"github.com/gdbrns/go-whatsapp-web-bridge/pkg/env"
	"github.com/gdbrns/go-whatsapp-web-bridge/pkg/log"
	pkgWhatsApp "github.com/gdbrns/go-whatsapp-web-bridge/pkg/whatsapp"
)

const (
	healthCheckSpec           = "0 */5 * * * *"
	defaultVersionRefreshSpec = "0 0 3 * * *"
)

func Routines(cron *cron.Cron) {
	log.Print(nil).Info("Running Routine Tasks")

	if env.GetEnvBoolOrDefault("WHATSAPP_ENABLE_HEALTH_CHECK_CRON", true) {
		if _, err := cron.AddFunc(healthCheckSpec, healthCheck); err != nil {
			log.Print(nil).WithField("error", err.Error()).Error("Failed to add health check cron job")
		}
	} else {
		log.Print(nil).Info("Health check cron disabled; relying on the connection watchdog")
	}

	if env.GetEnvBoolOrDefault("WHATSAPP_ENABLE_WAVERSION_REFRESH_CRON", false) {
		// robfig/cron with seconds field (6 parts). Default: daily at 03:00:00.
		spec := env.GetEnvStringOrDefault("WHATSAPP_WAVERSION_REFRESH_CRON_SPEC", defaultVersionRefreshSpec)
		// Default: false (respects WHATSAPP_WAVERSION_REFRESH_MIN_INTERVAL throttling).
		force := env.GetEnvBoolOrDefault("WHATSAPP_WAVERSION_REFRESH_CRON_FORCE", false)

		_, err := cron.AddFunc(spec, func() { refreshVersion(force) })
		if err != nil {
			log.Print(nil).WithField("error", err.Error()).Error("Failed to add WA Web version refresh cron job")
		} else {
			log.Print(nil).WithField("spec", spec).WithField("force", force).Info("WA Web version refresh cron enabled")
		}
	}

	cron.Start()
}

func healthCheck() {
	client := bridge.Client()
	if client == nil {
		return
	}

	state := client.State()
	entry := log.Session(string(state)).WithField("auth_state", client.AuthState())
	if state != pkgWhatsApp.SessionReady {
		entry.Warn("Client unhealthy")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	waState, err := client.GetState(ctx)
	if err != nil {
		entry.WithError(err).Warn("Client unhealthy: state check failed")
		return
	}
	entry.WithField("wa_state", waState).Info("Client healthy")
}

func refreshVersion(force bool) {
	client := bridge.Client()
	if client == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	status, refreshed, err := client.RefreshWWebVersion(ctx, force)
	entry := log.Print(nil).WithField("page", status.Page).WithField("latest", status.Latest).WithField("force", force)
	if err != nil {
		entry.Error("WA Web version refresh failed: " + err.Error())
		return
	}
	if status.Outdated {
		entry.Warn("WhatsApp Web page is older than the latest release")
	}
	entry.WithField("refreshed", refreshed).Info("WA Web version refresh completed")
}
