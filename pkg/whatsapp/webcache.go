package whatsapp

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

const defaultWebCachePath = "./.wwebjs_cache/"

var manifestVersionPattern = regexp.MustCompile(`manifest-([\d\.]+)\.json`)

// LocalWebCache keeps WhatsApp Web documents on disk, one file per version,
// so a session can be pinned to a known web app build.
type LocalWebCache struct {
	Path string
	// Strict makes a missing version an error instead of a live load.
	Strict bool
}

func NewLocalWebCache(path string, strict bool) *LocalWebCache {
	if path == "" {
		path = defaultWebCachePath
	}
	return &LocalWebCache{Path: path, Strict: strict}
}

func (w *LocalWebCache) file(version string) string {
	return filepath.Join(w.Path, version+".html")
}

// Resolve returns the cached document for version, or "" when it is not
// cached and the cache is not strict.
func (w *LocalWebCache) Resolve(version string) (string, error) {
	data, err := os.ReadFile(w.file(version))
	if err != nil {
		if w.Strict {
			return "", fmt.Errorf("%w: couldn't load version %s from the cache: %v", ErrVersionResolve, version, err)
		}
		return "", nil
	}
	return string(data), nil
}

// ManifestVersion extracts the web app version from a served document.
func ManifestVersion(html string) string {
	m := manifestVersionPattern.FindStringSubmatch(html)
	if m == nil {
		return ""
	}
	return m[1]
}

// Persist stores a live document under its manifest version. Documents
// without a manifest reference are ignored.
func (w *LocalWebCache) Persist(html string) error {
	version := ManifestVersion(html)
	if version == "" {
		return nil
	}
	if err := os.MkdirAll(w.Path, 0o755); err != nil {
		return fmt.Errorf("create web cache dir: %w", err)
	}
	target := w.file(version)
	if _, err := os.Stat(target); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return os.WriteFile(target, []byte(html), 0o644)
}
