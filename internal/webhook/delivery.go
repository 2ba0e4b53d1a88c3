package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gdbrns/go-whatsapp-web-bridge/pkg/env"
	"github.com/gdbrns/go-whatsapp-web-bridge/pkg/log"
	"github.com/gdbrns/go-whatsapp-web-bridge/pkg/whatsapp/events"
)

const (
	defaultQueueSize = 1000
	userAgent        = "WhatsApp-Web-Bridge/1.0"
)

// Config tunes the delivery engine.
type Config struct {
	Enabled    bool
	Workers    int
	RetryLimit int
	// Backoff is multiplied by the attempt number between retries.
	Backoff time.Duration
	Timeout time.Duration
	// AllowInsecure accepts plain http and private hosts.
	AllowInsecure bool
}

// ConfigFromEnv reads the WEBHOOK_* variables.
func ConfigFromEnv() Config {
	cfg := Config{
		Enabled:       env.GetEnvBoolOrDefault("WEBHOOKS_ENABLED", true),
		Workers:       env.GetEnvIntOrDefault("WEBHOOK_WORKERS", 4),
		RetryLimit:    env.GetEnvIntOrDefault("WEBHOOK_RETRY_LIMIT", 3),
		Backoff:       env.GetEnvDurationOrDefault("WEBHOOK_RETRY_BACKOFF", 2*time.Second),
		Timeout:       env.GetEnvDurationOrDefault("WEBHOOK_TIMEOUT", 10*time.Second),
		AllowInsecure: env.GetEnvBoolOrDefault("WEBHOOK_ALLOW_INSECURE_URLS", false),
	}
	return cfg.withDefaults()
}

func (c Config) withDefaults() Config {
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if c.RetryLimit <= 0 {
		c.RetryLimit = 3
	}
	if c.Backoff < 0 {
		c.Backoff = 0
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	return c
}

// Engine fans client events out to the session's active webhooks through a
// bounded worker pool.
type Engine struct {
	store      Repository
	httpClient *http.Client
	cfg        Config

	mu     sync.RWMutex
	closed bool
	queue  chan *deliveryTask
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

type deliveryTask struct {
	webhook WebhookConfig
	event   WebhookEvent
}

func NewEngine(store Repository, cfg Config) *Engine {
	cfg = cfg.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())

	engine := &Engine{
		store:      store,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
		queue:      make(chan *deliveryTask, defaultQueueSize),
		ctx:        ctx,
		cancel:     cancel,
	}

	if cfg.Enabled {
		for i := 0; i < cfg.Workers; i++ {
			engine.wg.Add(1)
			go engine.worker()
		}
	}

	return engine
}

func (e *Engine) Store() Repository {
	return e.store
}

// Shutdown stops the workers. Queued deliveries that have not started are dropped.
func (e *Engine) Shutdown() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.cancel()
	close(e.queue)
	e.mu.Unlock()
	e.wg.Wait()
	e.httpClient.CloseIdleConnections()
}

// Run forwards every event from the channel until it closes. It is meant to
// be fed by Client.Subscribe.
func (e *Engine) Run(ctx context.Context, sessionID string, in <-chan interface{}) {
	for evt := range in {
		name := events.Name(evt)
		if name == "" {
			continue
		}
		e.Dispatch(ctx, sessionID, WebhookEvent{
			EventType: EventType(name),
			SessionID: sessionID,
			Timestamp: time.Now(),
			Data:      evt,
		})
	}
}

// Dispatch queues event for every active webhook subscribed to it and
// returns how many deliveries were queued.
func (e *Engine) Dispatch(ctx context.Context, sessionID string, event WebhookEvent) int {
	if !e.cfg.Enabled {
		return 0
	}

	webhooks, err := e.store.GetActiveWebhooks(ctx, sessionID)
	if err != nil {
		log.Webhook(string(event.EventType), 0).WithError(err).Error("Failed to load active webhooks")
		return 0
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return 0
	}

	dispatched := 0
	for _, webhook := range webhooks {
		if !e.shouldDispatch(webhook, event.EventType) {
			continue
		}
		if e.enqueue(webhook, event) {
			dispatched++
		}
	}

	if dispatched > 0 {
		log.Webhook(string(event.EventType), 0).WithField("session_id", sessionID).WithField("webhooks", dispatched).Debug("Webhook event dispatched")
	}
	return dispatched
}

// Deliver queues event for one webhook regardless of its subscriptions or
// active flag. It reports whether the delivery was queued.
func (e *Engine) Deliver(webhook WebhookConfig, event WebhookEvent) bool {
	if !e.cfg.Enabled {
		return false
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return false
	}
	return e.enqueue(webhook, event)
}

// enqueue must be called with e.mu held for reading.
func (e *Engine) enqueue(webhook WebhookConfig, event WebhookEvent) bool {
	select {
	case e.queue <- &deliveryTask{webhook: webhook, event: event}:
		return true
	default:
		log.Webhook(string(event.EventType), webhook.ID).Warn("Webhook queue is full, dropping delivery")
		return false
	}
}

func (e *Engine) shouldDispatch(webhook WebhookConfig, eventType EventType) bool {
	if len(webhook.Events) == 0 || eventType == EventTest {
		return true
	}
	for _, evt := range webhook.Events {
		if evt == eventType {
			return true
		}
	}
	return false
}

func (e *Engine) worker() {
	defer e.wg.Done()
	for {
		select {
		case <-e.ctx.Done():
			return
		case task, ok := <-e.queue:
			if !ok {
				return
			}
			e.deliver(task)
		}
	}
}

func (e *Engine) deliver(task *deliveryTask) {
	entry := log.Webhook(string(task.event.EventType), task.webhook.ID)

	if err := e.validateURL(task.webhook.URL); err != nil {
		entry.WithError(err).Warn("Webhook URL rejected")
		_ = e.store.LogDelivery(context.Background(), task.webhook.ID, task.event.EventType, DeliveryFailed, 0, err.Error())
		return
	}

	payload, err := json.Marshal(task.event)
	if err != nil {
		entry.WithError(err).Error("Failed to encode webhook payload")
		return
	}

	signature := generateSignature(payload, task.webhook.Secret)

	var lastErr error
	for attempt := 1; attempt <= e.cfg.RetryLimit; attempt++ {
		lastErr = e.post(task, payload, signature)
		if lastErr == nil {
			_ = e.store.LogDelivery(context.Background(), task.webhook.ID, task.event.EventType, DeliverySuccess, attempt, "")
			entry.WithField("attempt", attempt).Info("Webhook delivered")
			return
		}
		if attempt < e.cfg.RetryLimit {
			select {
			case <-e.ctx.Done():
				attempt = e.cfg.RetryLimit
			case <-time.After(time.Duration(attempt) * e.cfg.Backoff):
			}
		}
	}

	_ = e.store.LogDelivery(context.Background(), task.webhook.ID, task.event.EventType, DeliveryFailed, e.cfg.RetryLimit, lastErr.Error())
	entry.WithError(lastErr).WithField("attempts", e.cfg.RetryLimit).Warn("Webhook delivery failed")
}

func (e *Engine) post(task *deliveryTask, payload []byte, signature string) error {
	req, err := http.NewRequestWithContext(e.ctx, http.MethodPost, task.webhook.URL, bytes.NewReader(payload))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Webhook-Signature", signature)
	req.Header.Set("X-Hub-Signature-256", signature)
	req.Header.Set("X-Webhook-Event", string(task.event.EventType))
	req.Header.Set("User-Agent", userAgent)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return err
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
}

func generateSignature(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func (e *Engine) validateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	if e.cfg.AllowInsecure {
		if u.Scheme != "https" && u.Scheme != "http" {
			return fmt.Errorf("unsupported URL scheme %q", u.Scheme)
		}
		return nil
	}

	if u.Scheme != "https" {
		return fmt.Errorf("only HTTPS URLs are allowed")
	}

	host := strings.ToLower(u.Hostname())
	if host == "localhost" {
		return fmt.Errorf("private/local network URLs are not allowed")
	}
	if ip := net.ParseIP(host); ip != nil && (ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() || ip.IsLinkLocalUnicast()) {
		return fmt.Errorf("private/local network URLs are not allowed")
	}

	return nil
}
