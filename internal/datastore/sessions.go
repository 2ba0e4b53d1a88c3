package datastore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	pkgWhatsApp "github.com/gdbrns/go-whatsapp-web-bridge/pkg/whatsapp"
)

// SessionStore keeps the localStorage tokens used by LegacySessionAuth.
type SessionStore struct {
	db *sql.DB
}

func NewSessionStore(db *sql.DB) *SessionStore {
	return &SessionStore{db: db}
}

// Load returns nil without error when no row exists for sessionID.
func (s *SessionStore) Load(ctx context.Context, sessionID string) (*pkgWhatsApp.LegacySession, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT data FROM wa_sessions WHERE session_id = $1
	`, sessionID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var session pkgWhatsApp.LegacySession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *SessionStore) Save(ctx context.Context, sessionID string, session pkgWhatsApp.LegacySession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO wa_sessions (session_id, data, created_at, updated_at)
		VALUES ($1, $2::jsonb, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT (session_id) DO UPDATE SET data = EXCLUDED.data, updated_at = CURRENT_TIMESTAMP
	`, sessionID, string(data))
	return err
}

func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM wa_sessions WHERE session_id = $1`, sessionID)
	return err
}
