package whatsapp

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gdbrns/go-whatsapp-web-bridge/pkg/browser"
)

var (
	ErrAuthDetectionTimeout  = errors.New("neither the main screen nor the pairing screen appeared in time")
	ErrAuthenticationFailure = errors.New("authentication failure")
	ErrMaxPairingRetries     = errors.New("max qrcode retries reached")
	ErrBridgeNotReady        = errors.New("whatsapp web bridge is not ready")
	ErrBridgeSealed          = errors.New("whatsapp web bridge is already wired")
	ErrPageClosed            = errors.New("page closed during operation")
	ErrInvalidArgument       = errors.New("invalid argument")
	ErrSessionDestroyed      = errors.New("session destroyed")
	ErrAlreadyInitialized    = errors.New("client already initialized")
	ErrVersionResolve        = errors.New("unable to resolve whatsapp web version")
)

// ErrorCategory classifies a page-side rejection.
type ErrorCategory string

const (
	CategoryNotFound          ErrorCategory = "not_found"
	CategoryPrivacyRestricted ErrorCategory = "privacy_restricted"
	CategoryUnauthorized      ErrorCategory = "unauthorized"
	CategoryBusinessOnly      ErrorCategory = "business_only"
	CategoryUnknown           ErrorCategory = "unknown"
)

// RemoteOperationError wraps an error thrown inside the page by a command.
type RemoteOperationError struct {
	Op       string
	Category ErrorCategory
	Message  string
	Err      error
}

func (e *RemoteOperationError) Error() string {
	return fmt.Sprintf("%s: %s (%s)", e.Op, e.Message, e.Category)
}

func (e *RemoteOperationError) Unwrap() error {
	return e.Err
}

// IsRemoteCategory reports whether err is a RemoteOperationError of the given category.
func IsRemoteCategory(err error, category ErrorCategory) bool {
	var remote *RemoteOperationError
	return errors.As(err, &remote) && remote.Category == category
}

func categorize(message string) ErrorCategory {
	msg := strings.ToLower(message)
	switch {
	case strings.Contains(msg, "only whatsapp business"), strings.Contains(msg, "[lt01]"):
		return CategoryBusinessOnly
	case strings.Contains(msg, "404"), strings.Contains(msg, "not found"), strings.Contains(msg, "notfound"),
		strings.Contains(msg, "item-not-found"):
		return CategoryNotFound
	case strings.Contains(msg, "403"), strings.Contains(msg, "privacy"), strings.Contains(msg, "forbidden"),
		strings.Contains(msg, "not-authorized"):
		return CategoryPrivacyRestricted
	case strings.Contains(msg, "401"), strings.Contains(msg, "unauthorized"):
		return CategoryUnauthorized
	default:
		return CategoryUnknown
	}
}

// remoteError converts a failed page evaluation into the client's error taxonomy.
func remoteError(op string, err error) error {
	if err == nil {
		return nil
	}
	if browser.IsTargetClosed(err) {
		return fmt.Errorf("%s: %w", op, ErrPageClosed)
	}
	message := err.Error()
	if i := strings.Index(message, "evaluate: "); i >= 0 {
		message = message[i+len("evaluate: "):]
	}
	return &RemoteOperationError{
		Op:       op,
		Category: categorize(message),
		Message:  message,
		Err:      err,
	}
}

func invalidArgument(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
