package webhook

import (
	"time"

	"github.com/gdbrns/go-whatsapp-web-bridge/pkg/whatsapp/events"
)

// EventType is a public client event name (see events.Names) or EventTest.
type EventType string

const EventTest EventType = "test.ping"

// ValidEventType reports whether webhooks can subscribe to t.
func ValidEventType(t EventType) bool {
	return t == EventTest || events.IsKnown(string(t))
}

type DeliveryStatus string

const (
	DeliveryPending  DeliveryStatus = "pending"
	DeliverySuccess  DeliveryStatus = "success"
	DeliveryFailed   DeliveryStatus = "failed"
	DeliveryRetrying DeliveryStatus = "retrying"
)

type WebhookConfig struct {
	ID        int64       `json:"id"`
	SessionID string      `json:"session_id"`
	URL       string      `json:"url"`
	Secret    string      `json:"-"`
	Events    []EventType `json:"events"`
	Active    bool        `json:"active"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

type WebhookEvent struct {
	EventType EventType   `json:"event_type"`
	SessionID string      `json:"session_id"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

type DeliveryLog struct {
	ID           int64          `json:"id"`
	WebhookID    int64          `json:"webhook_id"`
	EventType    EventType      `json:"event_type"`
	Status       DeliveryStatus `json:"status"`
	AttemptCount int            `json:"attempt_count"`
	LastError    string         `json:"last_error,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}
