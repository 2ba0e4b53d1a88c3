package browser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-rod/rod/lib/cdp"
)

var (
	ErrBrowserLaunch = errors.New("browser launch failed")
	ErrNavigation    = errors.New("navigation failed")
	ErrTargetClosed  = errors.New("target closed")
)

var closedMarkers = []string{
	"Target closed",
	"Session with given id not found",
	"No target with given id",
	"Cannot find context with specified id",
	"Execution context was destroyed",
	"use of closed network connection",
	"websocket: close",
}

// IsTargetClosed reports whether err means the page or browser went away underneath a call.
func IsTargetClosed(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTargetClosed) {
		return true
	}
	var cdpErr *cdp.Error
	if errors.As(err, &cdpErr) {
		for _, marker := range closedMarkers {
			if strings.Contains(cdpErr.Message, marker) || strings.Contains(cdpErr.Data, marker) {
				return true
			}
		}
	}
	msg := err.Error()
	for _, marker := range closedMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

func wrapPageError(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsTargetClosed(err) {
		return fmt.Errorf("%s: %w: %v", op, ErrTargetClosed, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
