package internal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/gdbrns/go-whatsapp-web-bridge/internal/bridge"
	"github.com/gdbrns/go-whatsapp-web-bridge/internal/datastore"
	"github.com/gdbrns/go-whatsapp-web-bridge/internal/webhook"
	"github.com/gdbrns/go-whatsapp-web-bridge/pkg/env"
	"github.com/gdbrns/go-whatsapp-web-bridge/pkg/log"
	pkgWhatsApp "github.com/gdbrns/go-whatsapp-web-bridge/pkg/whatsapp"
)

const eventBufferSize = 256

// Services are the long-lived components created by Startup.
type Services struct {
	Client   *pkgWhatsApp.Client
	Webhooks *webhook.Engine
	DB       *sql.DB

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// authStrategy picks the auth strategy for the session. The legacy strategy
// keeps its tokens in the datastore.
func authStrategy(ctx context.Context, opts *pkgWhatsApp.Options, db *sql.DB, sessionID string) error {
	if env.GetEnvStringOrDefault("WHATSAPP_AUTH_STRATEGY", "none") != "legacy" {
		return nil
	}
	if db == nil {
		return errors.New("WHATSAPP_AUTH_STRATEGY=legacy requires WHATSAPP_DATASTORE_URI")
	}

	sessions := datastore.NewSessionStore(db)
	saved, err := sessions.Load(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("load saved session: %w", err)
	}
	if saved != nil {
		log.Print(nil).WithField("session_id", sessionID).Info("Restoring saved WhatsApp Web session")
	}

	opts.AuthStrategy = &pkgWhatsApp.LegacySessionAuth{
		Session:           saved,
		RestartOnAuthFail: env.GetEnvBoolOrDefault("WHATSAPP_RESTART_ON_AUTH_FAIL", false),
		OnSave: func(ctx context.Context, session pkgWhatsApp.LegacySession) error {
			return sessions.Save(ctx, sessionID, session)
		},
		OnLogout: func(ctx context.Context) error {
			return sessions.Delete(ctx, sessionID)
		},
	}
	return nil
}

func Startup() (*Services, error) {
	log.Print(nil).Info("Running Startup Tasks")

	ctx := context.Background()
	sessionID := bridge.SessionID()
	svc := &Services{}

	dsCfg := datastore.ConfigFromEnv()
	if dsCfg.Enabled() {
		db, err := datastore.Open(ctx, dsCfg)
		if err != nil {
			return nil, err
		}
		svc.DB = db
	} else {
		log.Print(nil).Warn("No datastore configured; webhooks and saved sessions are disabled")
	}

	opts := pkgWhatsApp.OptionsFromEnv()
	opts.Logger = log.Logger().WithField("session_id", sessionID)
	if err := authStrategy(ctx, &opts, svc.DB, sessionID); err != nil {
		svc.closeDB()
		return nil, err
	}

	client, err := pkgWhatsApp.NewClient(opts)
	if err != nil {
		svc.closeDB()
		return nil, err
	}
	svc.Client = client
	bridge.SetClient(client)

	runCtx, cancel := context.WithCancel(context.Background())
	svc.cancel = cancel

	if svc.DB != nil {
		svc.Webhooks = webhook.NewEngine(webhook.NewStore(svc.DB), webhook.ConfigFromEnv())
		bridge.SetWebhookEngine(svc.Webhooks)

		stream := client.Subscribe(runCtx, eventBufferSize)
		svc.wg.Add(1)
		go func() {
			defer svc.wg.Done()
			svc.Webhooks.Run(runCtx, sessionID, stream)
		}()
	}

	svc.wg.Add(1)
	go func() {
		defer svc.wg.Done()
		if err := client.Initialize(runCtx); err != nil {
			log.Session(string(client.State())).WithError(err).Error("Failed to initialize WhatsApp Web session")
		}
	}()

	return svc, nil
}

// Shutdown destroys the session, drains the webhook workers and closes the
// datastore.
func (s *Services) Shutdown(ctx context.Context) {
	if s.Client != nil {
		if err := s.Client.Destroy(ctx); err != nil {
			log.Print(nil).WithError(err).Warn("Failed to destroy WhatsApp Web session")
		}
	}
	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		log.Print(nil).Warn("Timed out waiting for background tasks")
	}

	if s.Webhooks != nil {
		s.Webhooks.Shutdown()
	}
	s.closeDB()
}

func (s *Services) closeDB() {
	if s.DB == nil {
		return
	}
	if err := s.DB.Close(); err != nil {
		log.Print(nil).WithError(err).Warn("Failed to close datastore")
	}
}
