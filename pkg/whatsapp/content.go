package whatsapp

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gdbrns/go-whatsapp-web-bridge/pkg/whatsapp/types"
)

// ContentKind is how SendMessage interpreted its content argument.
type ContentKind int

const (
	ContentText ContentKind = iota
	ContentBuffer
	ContentBase64
	ContentDataURI
	ContentURL
	ContentFile
	ContentMedia
	ContentLocation
	ContentContactCard
)

func (k ContentKind) String() string {
	switch k {
	case ContentBuffer:
		return "buffer"
	case ContentBase64:
		return "base64"
	case ContentDataURI:
		return "data-uri"
	case ContentURL:
		return "url"
	case ContentFile:
		return "file"
	case ContentMedia:
		return "media"
	case ContentLocation:
		return "location"
	case ContentContactCard:
		return "contact-card"
	default:
		return "text"
	}
}

var (
	base64Pattern  = regexp.MustCompile(`^[a-zA-Z0-9+/]*={0,2}$`)
	dataURIPattern = regexp.MustCompile(`^data:.*?/.*?;base64,`)
	urlPattern     = regexp.MustCompile(`^https?://`)
)

const (
	maxRemoteMediaSize  = 104857600
	remoteMediaTimeout  = 60 * time.Second
	mimeOctetStream     = "application/octet-stream"
	mimeHTML            = "text/html"
	mimePlainTextPrefix = "text/plain"
)

func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}

// classifyContent decides how content is sent. Strings are tried in a fixed
// order: base64, data URI, URL, existing file, then plain text.
func classifyContent(content interface{}, exists func(string) bool) ContentKind {
	switch v := content.(type) {
	case []byte:
		return ContentBuffer
	case *types.MessageMedia, types.MessageMedia:
		return ContentMedia
	case *types.Location, types.Location:
		return ContentLocation
	case *types.ContactCard, types.ContactCard:
		return ContentContactCard
	case string:
		switch {
		case v != "" && base64Pattern.MatchString(v):
			return ContentBase64
		case dataURIPattern.MatchString(v):
			return ContentDataURI
		case urlPattern.MatchString(v):
			return ContentURL
		case v != "" && exists(v):
			return ContentFile
		}
	}
	return ContentText
}

// mediaFromBytes builds an attachment from raw bytes. Content that sniffs as
// plain text or stays unknown is not media, and nil is returned.
func mediaFromBytes(data []byte, mimetype, filename string) *types.MessageMedia {
	if len(data) == 0 {
		return nil
	}
	if mimetype == "" {
		mimetype = http.DetectContentType(data)
	}
	base := strings.TrimSpace(strings.Split(mimetype, ";")[0])
	if base == mimeOctetStream || base == mimeHTML || strings.HasPrefix(base, mimePlainTextPrefix) {
		return nil
	}
	if filename == "" {
		filename = uuid.NewString() + extensionFor(base)
	}
	return &types.MessageMedia{
		Mimetype: base,
		Data:     base64.StdEncoding.EncodeToString(data),
		Filename: filename,
		Filesize: int64(len(data)),
	}
}

func extensionFor(mimetype string) string {
	exts, err := mime.ExtensionsByType(mimetype)
	if err != nil || len(exts) == 0 {
		return ".bin"
	}
	return exts[0]
}

func mediaFromDataURI(uri string) (*types.MessageMedia, error) {
	header, payload, ok := strings.Cut(uri, ",")
	if !ok {
		return nil, invalidArgument("malformed data uri")
	}
	mimetype := strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64")
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, invalidArgument("malformed data uri payload: %v", err)
	}
	return mediaFromBytes(data, mimetype, ""), nil
}

func mediaFromFile(p string) (*types.MessageMedia, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("read media file: %w", err)
	}
	return mediaFromBytes(data, mime.TypeByExtension(filepath.Ext(p)), filepath.Base(p)), nil
}

// mediaFromURL downloads an attachment. Pages (html) and unknown payloads are
// sent as a text link instead.
func mediaFromURL(ctx context.Context, client *http.Client, rawURL string) (*types.MessageMedia, error) {
	ctx, cancel := context.WithTimeout(ctx, remoteMediaTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, invalidArgument("invalid media url: %v", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download media: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("download media: unexpected status %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxRemoteMediaSize+1))
	if err != nil {
		return nil, fmt.Errorf("download media: %w", err)
	}
	if len(data) > maxRemoteMediaSize {
		return nil, invalidArgument("media at %s exceeds %d bytes", rawURL, maxRemoteMediaSize)
	}

	filename := ""
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		filename = params["filename"]
	}
	if filename == "" {
		if base := path.Base(req.URL.Path); base != "/" && base != "." && strings.Contains(base, ".") {
			filename = base
		}
	}
	return mediaFromBytes(data, resp.Header.Get("Content-Type"), filename), nil
}

// resolveContent turns SendMessage content into either a text body or an
// attachment, plus the structured payloads.
// mediaHint carries caller-given attachment details. A mimetype here turns
// raw bytes into media even when sniffing would have read them as text.
type mediaHint struct {
	Mimetype string
	Filename string
}

func (h mediaHint) fromBytes(data []byte) *types.MessageMedia {
	if h.Mimetype == "" || len(data) == 0 {
		return mediaFromBytes(data, "", h.Filename)
	}
	filename := h.Filename
	if filename == "" {
		filename = uuid.NewString() + extensionFor(h.Mimetype)
	}
	return &types.MessageMedia{
		Mimetype: h.Mimetype,
		Data:     base64.StdEncoding.EncodeToString(data),
		Filename: filename,
		Filesize: int64(len(data)),
	}
}

func (c *Client) resolveContent(ctx context.Context, content interface{}, hint mediaHint) (body string, media *types.MessageMedia, location *types.Location, card *types.ContactCard, err error) {
	kind := classifyContent(content, fileExists)
	switch kind {
	case ContentMedia:
		switch v := content.(type) {
		case *types.MessageMedia:
			media = v
		case types.MessageMedia:
			media = &v
		}
		if media == nil || media.Data == "" || media.Mimetype == "" {
			return "", nil, nil, nil, invalidArgument("media needs data and a mimetype")
		}
		return "", media, nil, nil, nil
	case ContentLocation:
		switch v := content.(type) {
		case *types.Location:
			location = v
		case types.Location:
			location = &v
		}
		return "", nil, location, nil, nil
	case ContentContactCard:
		switch v := content.(type) {
		case *types.ContactCard:
			card = v
		case types.ContactCard:
			card = &v
		}
		if card == nil || len(card.IDs) == 0 {
			return "", nil, nil, nil, invalidArgument("contact card needs at least one id")
		}
		return "", nil, nil, card, nil
	case ContentBuffer:
		data := content.([]byte)
		if media = hint.fromBytes(data); media == nil {
			return string(data), nil, nil, nil, nil
		}
		return "", media, nil, nil, nil
	}

	text, ok := content.(string)
	if !ok && content != nil {
		text = fmt.Sprint(content)
	}
	switch kind {
	case ContentBase64:
		if data, derr := base64.StdEncoding.DecodeString(text); derr == nil {
			media = hint.fromBytes(data)
		}
	case ContentDataURI:
		media, err = mediaFromDataURI(text)
	case ContentURL:
		media, err = mediaFromURL(ctx, http.DefaultClient, text)
	case ContentFile:
		media, err = mediaFromFile(text)
	}
	if err != nil {
		return "", nil, nil, nil, err
	}
	if media != nil {
		return "", media, nil, nil, nil
	}
	return text, nil, nil, nil, nil
}
