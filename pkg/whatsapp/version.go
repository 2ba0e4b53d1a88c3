package whatsapp

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.mau.fi/whatsmeow"
)

const versionLookupTimeout = 15 * time.Second

// VersionStatus compares the web app build loaded in the page with the
// latest published WhatsApp Web build.
type VersionStatus struct {
	Page          string     `json:"page,omitempty"`
	Latest        string     `json:"latest,omitempty"`
	Outdated      bool       `json:"outdated"`
	LastRefreshed *time.Time `json:"last_refreshed,omitempty"`
	LastError     string     `json:"last_error,omitempty"`
}

type versionStatus struct {
	page        string
	latest      string
	refreshedAt *time.Time
	lastErr     string
}

var fetchLatestVersion = func(ctx context.Context, httpClient *http.Client) (string, error) {
	latest, err := whatsmeow.GetLatestVersion(ctx, httpClient)
	if err != nil {
		return "", err
	}
	if latest == nil {
		return "", errors.New("latest WhatsApp Web version is nil")
	}
	return latest.String(), nil
}

// compareVersions orders dotted numeric versions. Missing parts count as 0.
func compareVersions(a, b string) int {
	as, bs := strings.Split(a, "."), strings.Split(b, ".")
	for i := 0; i < len(as) || i < len(bs); i++ {
		var x, y uint64
		if i < len(as) {
			x, _ = strconv.ParseUint(as[i], 10, 64)
		}
		if i < len(bs) {
			y, _ = strconv.ParseUint(bs[i], 10, 64)
		}
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
	}
	return 0
}

func (c *Client) VersionStatus() VersionStatus {
	c.versionMu.RLock()
	defer c.versionMu.RUnlock()

	status := VersionStatus{
		Page:      c.version.page,
		Latest:    c.version.latest,
		LastError: c.version.lastErr,
	}
	if c.version.refreshedAt != nil {
		t := *c.version.refreshedAt
		status.LastRefreshed = &t
	}
	if status.Page != "" && status.Latest != "" {
		status.Outdated = compareVersions(status.Page, status.Latest) < 0
	}
	return status
}

func (c *Client) recordVersion(latest string, err error) {
	c.versionMu.Lock()
	defer c.versionMu.Unlock()

	now := time.Now()
	c.version.refreshedAt = &now
	if err != nil {
		c.version.lastErr = err.Error()
		return
	}
	c.version.latest = latest
	c.version.lastErr = ""
}

// RefreshWWebVersion looks up the latest WhatsApp Web version and, when the
// bridge is ready, the version running in the page. Unless force is set,
// calls within VersionRefreshInterval of the last lookup return the cached
// status and false.
func (c *Client) RefreshWWebVersion(ctx context.Context, force bool) (VersionStatus, bool, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	if interval := c.opts.VersionRefreshInterval; !force && interval > 0 {
		c.versionMu.RLock()
		last := c.version.refreshedAt
		c.versionMu.RUnlock()
		if last != nil && time.Since(*last) < interval {
			return c.VersionStatus(), false, nil
		}
	}

	_, err, _ := c.versionGroup.Do("refresh", func() (interface{}, error) {
		httpClient := &http.Client{Timeout: versionLookupTimeout}
		latest, err := fetchLatestVersion(ctx, httpClient)
		c.recordVersion(latest, err)
		return latest, err
	})

	if _, rerr := c.readySession(); rerr == nil {
		page, perr := c.GetWWebVersion(ctx)
		if perr != nil {
			c.log.WithError(perr).Debug("Unable to read page web version")
		} else {
			c.versionMu.Lock()
			c.version.page = page
			c.versionMu.Unlock()
		}
	}

	status := c.VersionStatus()
	if status.Outdated {
		c.log.WithField("page", status.Page).WithField("latest", status.Latest).Warn("WhatsApp Web page version is outdated")
	}
	return status, true, err
}
