package whatsapp

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gdbrns/go-whatsapp-web-bridge/pkg/whatsapp/types"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	buf := new(bytes.Buffer)
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

func TestClassifyContentOrder(t *testing.T) {
	exists := func(p string) bool { return p == "/tmp/photo.jpg" }

	tests := []struct {
		name    string
		content interface{}
		want    ContentKind
	}{
		{"bytes", []byte("raw"), ContentBuffer},
		{"media", &types.MessageMedia{Mimetype: "image/png", Data: "AA=="}, ContentMedia},
		{"location", types.Location{Latitude: 1, Longitude: 2}, ContentLocation},
		{"contact card", &types.ContactCard{IDs: []string{"111@c.us"}}, ContentContactCard},
		{"base64", "aGVsbG8gd29ybGQ=", ContentBase64},
		{"data uri", "data:image/png;base64,iVBORw0KGgo=", ContentDataURI},
		{"url", "https://example.com/cat.png", ContentURL},
		{"file", "/tmp/photo.jpg", ContentFile},
		{"text", "hello there", ContentText},
		{"empty", "", ContentText},
		{"other", 42, ContentText},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyContent(tt.content, exists))
		})
	}
}

func TestMediaFromBytes(t *testing.T) {
	media := mediaFromBytes(pngBytes(t, 2, 2), "", "")
	require.NotNil(t, media)
	assert.Equal(t, "image/png", media.Mimetype)
	assert.Equal(t, ".png", filepath.Ext(media.Filename))

	assert.Nil(t, mediaFromBytes([]byte("just some words"), "", ""))
	assert.Nil(t, mediaFromBytes([]byte("<html><body>x</body></html>"), "", ""))
	assert.Nil(t, mediaFromBytes(nil, "", ""))

	named := mediaFromBytes([]byte("%PDF-1.4"), "application/pdf; charset=binary", "doc.pdf")
	require.NotNil(t, named)
	assert.Equal(t, "application/pdf", named.Mimetype)
	assert.Equal(t, "doc.pdf", named.Filename)
}

func TestMediaFromDataURI(t *testing.T) {
	data := pngBytes(t, 2, 2)
	media, err := mediaFromDataURI("data:image/png;base64," + base64.StdEncoding.EncodeToString(data))
	require.NoError(t, err)
	require.NotNil(t, media)
	assert.Equal(t, "image/png", media.Mimetype)

	_, err = mediaFromDataURI("data:image/png;base64,***")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestMediaFromURL(t *testing.T) {
	data := pngBytes(t, 2, 2)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/cat.png":
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(data)
		case "/page":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte("<html></html>"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	media, err := mediaFromURL(context.Background(), srv.Client(), srv.URL+"/cat.png")
	require.NoError(t, err)
	require.NotNil(t, media)
	assert.Equal(t, "cat.png", media.Filename)

	media, err = mediaFromURL(context.Background(), srv.Client(), srv.URL+"/page")
	require.NoError(t, err)
	assert.Nil(t, media)

	_, err = mediaFromURL(context.Background(), srv.Client(), srv.URL+"/missing")
	assert.Error(t, err)
}

func TestResolveContentFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pic.png")
	require.NoError(t, os.WriteFile(path, pngBytes(t, 2, 2), 0o600))

	c, err := NewClient(Options{Logger: quietLogger()})
	require.NoError(t, err)

	body, media, _, _, err := c.resolveContent(context.Background(), path, mediaHint{})
	require.NoError(t, err)
	assert.Empty(t, body)
	require.NotNil(t, media)
	assert.Equal(t, "pic.png", media.Filename)

	body, media, _, _, err = c.resolveContent(context.Background(), []byte("plain words"), mediaHint{})
	require.NoError(t, err)
	assert.Equal(t, "plain words", body)
	assert.Nil(t, media)

	_, _, _, _, err = c.resolveContent(context.Background(), &types.ContactCard{}, mediaHint{})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestStickerDefaults(t *testing.T) {
	def := StickerOptions{PackName: "Pack", PackPublish: "Acme", Categories: []string{"😀"}}

	got := StickerOptions{}.withDefaults(def)
	assert.Equal(t, "Acme", got.Author)
	assert.Equal(t, "Pack", got.Name)
	assert.Equal(t, []string{"😀"}, got.Categories)

	assert.False(t, got.IsAvatar)

	got = StickerOptions{Author: "Me", Categories: []string{"🎉"}, IsAvatar: true}.withDefaults(def)
	assert.Equal(t, "Me", got.Author)
	assert.Equal(t, []string{"🎉"}, got.Categories)
	assert.True(t, got.IsAvatar)
}

func TestStickerPayloadCarriesPackMetadata(t *testing.T) {
	c, err := NewClient(Options{Logger: quietLogger(), StickerDefaults: StickerOptions{
		PackID:      "pack-1",
		PackName:    "Pack",
		PackPublish: "Acme",
		PackEmail:   "stickers@acme.test",
		PackWebsite: "https://acme.test",
		AndroidApp:  "https://play.acme.test",
		IOSApp:      "https://apps.acme.test",
		Categories:  []string{"😀"},
		IsAvatar:    true,
	}})
	require.NoError(t, err)

	payload, err := c.buildSendPayload(context.Background(), &types.MessageMedia{Mimetype: mimeWebP, Data: "AA=="}, &MessageSendOptions{
		SendMediaAsSticker: true,
		Sticker:            &StickerOptions{Author: "Me"},
	})
	require.NoError(t, err)
	assert.Equal(t, "sticker", payload.MediaType)
	assert.Equal(t, &stickerPayload{
		Author:      "Me",
		Name:        "Pack",
		Categories:  []string{"😀"},
		PackID:      "pack-1",
		PackName:    "Pack",
		PackPublish: "Acme",
		PackEmail:   "stickers@acme.test",
		PackWebsite: "https://acme.test",
		AndroidApp:  "https://play.acme.test",
		IOSApp:      "https://apps.acme.test",
		IsAvatar:    true,
	}, payload.Sticker)

	data, err := json.Marshal(payload.Sticker)
	require.NoError(t, err)
	for _, key := range []string{"packId", "packName", "packPublish", "packEmail", "packWebsite", "androidApp", "iOSApp", "isAvatar", "categories"} {
		assert.Contains(t, string(data), `"`+key+`":`, key)
	}
	for _, key := range []string{"packId", "packName", "packPublish", "packEmail", "packWebsite", "androidApp", "iOSApp", "isAvatar", "stickerCategories"} {
		assert.Contains(t, jsSendMessage, key, key)
	}
}

func TestSendOptionsOverrideAttachment(t *testing.T) {
	c, err := NewClient(Options{Logger: quietLogger()})
	require.NoError(t, err)
	ctx := context.Background()

	payload, err := c.buildSendPayload(ctx, []byte("plain words"), nil)
	require.NoError(t, err)
	assert.Equal(t, "plain words", payload.Body)
	assert.Nil(t, payload.Media)

	payload, err = c.buildSendPayload(ctx, []byte("plain words"), &MessageSendOptions{Mimetype: "application/pdf", Filename: "notes.pdf"})
	require.NoError(t, err)
	assert.Empty(t, payload.Body)
	require.NotNil(t, payload.Media)
	assert.Equal(t, "application/pdf", payload.Media.Mimetype)
	assert.Equal(t, "notes.pdf", payload.Media.Filename)
	assert.Equal(t, int64(len("plain words")), payload.Media.Filesize)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("plain words")), payload.Media.Data)

	media := &types.MessageMedia{Mimetype: "image/png", Data: "AA==", Filename: "a.png", Filesize: 1}
	payload, err = c.buildSendPayload(ctx, media, &MessageSendOptions{Filename: "b.png", Filesize: 99})
	require.NoError(t, err)
	require.NotNil(t, payload.Media)
	assert.Equal(t, "image/png", payload.Media.Mimetype)
	assert.Equal(t, "b.png", payload.Media.Filename)
	assert.Equal(t, int64(99), payload.Media.Filesize)
	assert.Equal(t, "a.png", media.Filename)
}

func TestToStickerPassesThrough(t *testing.T) {
	webp := &types.MessageMedia{Mimetype: mimeWebP, Data: "AA=="}
	same, err := toSticker(webp)
	require.NoError(t, err)
	assert.Same(t, webp, same)

	video := &types.MessageMedia{Mimetype: "video/mp4", Data: "AA=="}
	same, err = toSticker(video)
	require.NoError(t, err)
	assert.Same(t, video, same)

	_, err = toSticker(&types.MessageMedia{Mimetype: "image/png", Data: "not base64!"})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestProfilePictureDataURI(t *testing.T) {
	media := &types.MessageMedia{
		Mimetype: "image/png",
		Data:     base64.StdEncoding.EncodeToString(pngBytes(t, 10, 30)),
	}
	uri, err := profilePictureDataURI(media)
	require.NoError(t, err)
	assert.Regexp(t, `^data:image/jpeg;base64,`, uri)

	_, err = profilePictureDataURI(&types.MessageMedia{Mimetype: "audio/ogg", Data: "AA=="})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
