package webhook

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gdbrns/go-whatsapp-web-bridge/pkg/env"
)

// ErrNotFound is returned when a webhook does not exist for the session.
var ErrNotFound = errors.New("webhook not found")

// Repository is the persistence the engine and the HTTP handlers need.
type Repository interface {
	GetAllWebhooks(ctx context.Context, sessionID string) ([]WebhookConfig, error)
	GetActiveWebhooks(ctx context.Context, sessionID string) ([]WebhookConfig, error)
	GetWebhook(ctx context.Context, webhookID int64, sessionID string) (*WebhookConfig, error)
	CreateWebhook(ctx context.Context, sessionID, url, secret string, events []EventType) (int64, error)
	UpdateWebhook(ctx context.Context, webhookID int64, sessionID, url, secret string, events []EventType, active bool) error
	DeleteWebhook(ctx context.Context, webhookID int64, sessionID string) error
	LogDelivery(ctx context.Context, webhookID int64, eventType EventType, status DeliveryStatus, attemptCount int, lastError string) error
	GetDeliveryLogs(ctx context.Context, webhookID int64, limit int) ([]DeliveryLog, error)
}

// Store is the postgres Repository over wa_webhooks and wa_webhook_deliveries.
type Store struct {
	db             *sql.DB
	cacheMu        sync.RWMutex
	activeCache    map[string]activeCacheEntry
	activeCacheTTL time.Duration
}

type activeCacheEntry struct {
	webhooks  []WebhookConfig
	expiresAt time.Time
}

func NewStore(db *sql.DB) *Store {
	ttlSeconds := env.GetEnvIntOrDefault("WEBHOOK_CACHE_TTL_SECONDS", 15)
	if ttlSeconds < 0 {
		ttlSeconds = 0
	}
	return &Store{
		db:             db,
		activeCache:    make(map[string]activeCacheEntry),
		activeCacheTTL: time.Duration(ttlSeconds) * time.Second,
	}
}

func (s *Store) getActiveCache(sessionID string) ([]WebhookConfig, bool) {
	if s.activeCacheTTL <= 0 {
		return nil, false
	}
	s.cacheMu.RLock()
	entry, ok := s.activeCache[sessionID]
	s.cacheMu.RUnlock()
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		s.cacheMu.Lock()
		delete(s.activeCache, sessionID)
		s.cacheMu.Unlock()
		return nil, false
	}
	return entry.webhooks, true
}

func (s *Store) setActiveCache(sessionID string, webhooks []WebhookConfig) {
	if s.activeCacheTTL <= 0 {
		return
	}
	s.cacheMu.Lock()
	s.activeCache[sessionID] = activeCacheEntry{
		webhooks:  webhooks,
		expiresAt: time.Now().Add(s.activeCacheTTL),
	}
	s.cacheMu.Unlock()
}

func (s *Store) invalidateActiveCache(sessionID string) {
	if s.activeCacheTTL <= 0 {
		return
	}
	s.cacheMu.Lock()
	delete(s.activeCache, sessionID)
	s.cacheMu.Unlock()
}

func (s *Store) GetAllWebhooks(ctx context.Context, sessionID string) ([]WebhookConfig, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, url, secret, events, active, created_at, updated_at
		FROM wa_webhooks
		WHERE session_id = $1
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanWebhooks(rows)
}

func scanWebhooks(rows *sql.Rows) ([]WebhookConfig, error) {
	var webhooks []WebhookConfig
	for rows.Next() {
		var w WebhookConfig
		var eventsJSON []byte
		err := rows.Scan(&w.ID, &w.SessionID, &w.URL, &w.Secret, &eventsJSON, &w.Active, &w.CreatedAt, &w.UpdatedAt)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(eventsJSON, &w.Events); err != nil {
			return nil, err
		}
		webhooks = append(webhooks, w)
	}
	return webhooks, rows.Err()
}

func (s *Store) GetActiveWebhooks(ctx context.Context, sessionID string) ([]WebhookConfig, error) {
	if cached, ok := s.getActiveCache(sessionID); ok {
		return cached, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, url, secret, events, active, created_at, updated_at
		FROM wa_webhooks
		WHERE session_id = $1 AND active = TRUE
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	webhooks, err := scanWebhooks(rows)
	if err != nil {
		return nil, err
	}
	s.setActiveCache(sessionID, webhooks)
	return webhooks, nil
}

func (s *Store) GetWebhook(ctx context.Context, webhookID int64, sessionID string) (*WebhookConfig, error) {
	var w WebhookConfig
	var eventsJSON []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT id, session_id, url, secret, events, active, created_at, updated_at
		FROM wa_webhooks
		WHERE id = $1 AND session_id = $2
	`, webhookID, sessionID).Scan(&w.ID, &w.SessionID, &w.URL, &w.Secret, &eventsJSON, &w.Active, &w.CreatedAt, &w.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(eventsJSON, &w.Events); err != nil {
		return nil, err
	}
	return &w, nil
}

func (s *Store) CreateWebhook(ctx context.Context, sessionID, url, secret string, events []EventType) (int64, error) {
	eventsJSON, err := json.Marshal(events)
	if err != nil {
		return 0, err
	}

	var id int64
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO wa_webhooks (session_id, url, secret, events, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4::jsonb, TRUE, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id
	`, sessionID, url, secret, string(eventsJSON)).Scan(&id)
	if err == nil {
		s.invalidateActiveCache(sessionID)
	}
	return id, err
}

func (s *Store) UpdateWebhook(ctx context.Context, webhookID int64, sessionID, url, secret string, events []EventType, active bool) error {
	eventsJSON, err := json.Marshal(events)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		UPDATE wa_webhooks
		SET url = $1, secret = $2, events = $3::jsonb, active = $4, updated_at = CURRENT_TIMESTAMP
		WHERE id = $5 AND session_id = $6
	`, url, secret, string(eventsJSON), active, webhookID, sessionID)
	if err == nil {
		s.invalidateActiveCache(sessionID)
	}
	return err
}

func (s *Store) DeleteWebhook(ctx context.Context, webhookID int64, sessionID string) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM wa_webhooks WHERE id = $1 AND session_id = $2
	`, webhookID, sessionID)
	if err != nil {
		return err
	}
	s.invalidateActiveCache(sessionID)
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) LogDelivery(ctx context.Context, webhookID int64, eventType EventType, status DeliveryStatus, attemptCount int, lastError string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO wa_webhook_deliveries (webhook_id, event_type, status, attempt_count, last_error, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	`, webhookID, eventType, status, attemptCount, lastError)
	return err
}

func (s *Store) GetDeliveryLogs(ctx context.Context, webhookID int64, limit int) ([]DeliveryLog, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, webhook_id, event_type, status, attempt_count, last_error, created_at, updated_at
		FROM wa_webhook_deliveries
		WHERE webhook_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, webhookID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []DeliveryLog
	for rows.Next() {
		var entry DeliveryLog
		var lastError sql.NullString
		err := rows.Scan(&entry.ID, &entry.WebhookID, &entry.EventType, &entry.Status, &entry.AttemptCount, &lastError, &entry.CreatedAt, &entry.UpdatedAt)
		if err != nil {
			return nil, err
		}
		if lastError.Valid {
			entry.LastError = lastError.String
		}
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}
