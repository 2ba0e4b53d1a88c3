package datastore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"

	"github.com/gdbrns/go-whatsapp-web-bridge/pkg/env"
	"github.com/gdbrns/go-whatsapp-web-bridge/pkg/log"
)

// ErrNotConfigured is returned when WHATSAPP_DATASTORE_TYPE or
// WHATSAPP_DATASTORE_URI is unset.
var ErrNotConfigured = errors.New("whatsapp datastore is not configured")

var schema = []string{
	`CREATE TABLE IF NOT EXISTS wa_sessions (
		session_id TEXT PRIMARY KEY,
		data JSONB NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS wa_webhooks (
		id SERIAL PRIMARY KEY,
		session_id TEXT NOT NULL,
		url TEXT NOT NULL,
		secret TEXT NOT NULL,
		events JSONB NOT NULL DEFAULT '["message","ready","disconnected"]'::jsonb,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS wa_webhook_deliveries (
		id BIGSERIAL PRIMARY KEY,
		webhook_id INTEGER NOT NULL REFERENCES wa_webhooks(id) ON DELETE CASCADE,
		event_type TEXT NOT NULL,
		status TEXT NOT NULL,
		attempt_count INTEGER NOT NULL DEFAULT 0,
		last_error TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_wa_webhooks_session ON wa_webhooks(session_id)`,
	`CREATE INDEX IF NOT EXISTS idx_wa_webhook_deliveries_webhook ON wa_webhook_deliveries(webhook_id)`,
}

// Config is the datastore connection read from the environment.
type Config struct {
	Driver string
	DSN    string
}

// ConfigFromEnv reads WHATSAPP_DATASTORE_TYPE and WHATSAPP_DATASTORE_URI.
func ConfigFromEnv() Config {
	driver := normalizeDatastoreDriver(env.GetEnvStringOrDefault("WHATSAPP_DATASTORE_TYPE", ""))
	return Config{
		Driver: driver,
		DSN:    normalizeDatastoreDSN(driver, env.GetEnvStringOrDefault("WHATSAPP_DATASTORE_URI", "")),
	}
}

func (c Config) Enabled() bool {
	return c.Driver != "" && c.DSN != ""
}

// Open connects, pings and applies the schema.
func Open(ctx context.Context, cfg Config) (*sql.DB, error) {
	if !cfg.Enabled() {
		return nil, ErrNotConfigured
	}
	switch cfg.Driver {
	case "pgx", "postgres":
	default:
		return nil, fmt.Errorf("unsupported datastore driver: %s", cfg.Driver)
	}

	log.Print(nil).Info("Initializing WhatsApp datastore with driver=" + cfg.Driver)

	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(10 * time.Minute)
	db.SetConnMaxIdleTime(3 * time.Minute)

	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if err = migrate(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply datastore schema: %w", err)
	}

	log.Print(nil).Info("database is ok")
	return db, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// normalizeDatastoreDriver maps the configured type to a registered
// database/sql driver: pgx for postgres, lib/pq when asked for explicitly.
func normalizeDatastoreDriver(driver string) string {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "postgresql", "postgres", "pgx":
		return "pgx"
	case "pq", "libpq", "lib/pq":
		return "postgres"
	default:
		return strings.ToLower(strings.TrimSpace(driver))
	}
}

func normalizeDatastoreDSN(driver string, dsn string) string {
	if driver != "pgx" || dsn == "" {
		return dsn
	}
	appendParam := func(current string, key string, value string) string {
		if strings.Contains(current, key+"=") {
			return current
		}
		separator := "?"
		if strings.Contains(current, "?") {
			if strings.HasSuffix(current, "?") || strings.HasSuffix(current, "&") {
				separator = ""
			} else {
				separator = "&"
			}
		}
		return current + separator + key + "=" + value
	}
	dsn = appendParam(dsn, "prefer_simple_protocol", "true")
	dsn = appendParam(dsn, "statement_cache_capacity", "0")
	dsn = appendParam(dsn, "default_query_exec_mode", "simple_protocol")
	return dsn
}
