package whatsapp

import (
	"bytes"
	"encoding/base64"
	"errors"
	"strings"

	"github.com/sunshineplan/imgconv"

	"github.com/gdbrns/go-whatsapp-web-bridge/pkg/whatsapp/types"
)

const (
	stickerSize        = 512
	profilePictureSize = 640
	mimeWebP           = "image/webp"
	mimeJPEG           = "image/jpeg"
)

// StickerOptions is the metadata attached to stickers. Empty fields fall
// back to the client defaults.
type StickerOptions struct {
	Author      string
	Name        string
	Categories  []string
	PackID      string
	PackName    string
	PackPublish string
	PackEmail   string
	PackWebsite string
	AndroidApp  string
	IOSApp      string
	IsAvatar    bool
}

func (o StickerOptions) withDefaults(def StickerOptions) StickerOptions {
	pick := func(v, d string) string {
		if v != "" {
			return v
		}
		return d
	}
	out := StickerOptions{
		Author:      pick(o.Author, def.Author),
		Name:        pick(o.Name, def.Name),
		PackID:      pick(o.PackID, def.PackID),
		PackName:    pick(o.PackName, def.PackName),
		PackPublish: pick(o.PackPublish, def.PackPublish),
		PackEmail:   pick(o.PackEmail, def.PackEmail),
		PackWebsite: pick(o.PackWebsite, def.PackWebsite),
		AndroidApp:  pick(o.AndroidApp, def.AndroidApp),
		IOSApp:      pick(o.IOSApp, def.IOSApp),
		Categories:  o.Categories,
		IsAvatar:    o.IsAvatar || def.IsAvatar,
	}
	if len(out.Categories) == 0 {
		out.Categories = def.Categories
	}
	if out.Author == "" {
		out.Author = out.PackPublish
	}
	if out.Name == "" {
		out.Name = out.PackName
	}
	return out
}

// reencodeImage decodes an attachment, fits it into size x size and writes it
// in the requested format.
func reencodeImage(media *types.MessageMedia, size int, format imgconv.Format) ([]byte, error) {
	if !strings.HasPrefix(media.Mimetype, "image/") {
		return nil, invalidArgument("%s is not an image", media.Mimetype)
	}
	data, err := base64.StdEncoding.DecodeString(media.Data)
	if err != nil {
		return nil, invalidArgument("media data is not base64: %v", err)
	}
	img, err := imgconv.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.New("Error While Decoding Image Stream")
	}
	option := &imgconv.ResizeOption{Width: size}
	if b := img.Bounds(); b.Dy() > b.Dx() {
		option = &imgconv.ResizeOption{Height: size}
	}
	out := new(bytes.Buffer)
	if err := imgconv.Write(out, imgconv.Resize(img, option), &imgconv.FormatOption{Format: format}); err != nil {
		return nil, errors.New("Error While Encoding Image Stream")
	}
	return out.Bytes(), nil
}

// toSticker converts an image attachment to a webp sticker. Webp input and
// non-image media are passed through untouched.
func toSticker(media *types.MessageMedia) (*types.MessageMedia, error) {
	if media.Mimetype == mimeWebP || !strings.HasPrefix(media.Mimetype, "image/") {
		return media, nil
	}
	data, err := reencodeImage(media, stickerSize, imgconv.WEBP)
	if err != nil {
		return nil, err
	}
	return &types.MessageMedia{
		Mimetype: mimeWebP,
		Data:     base64.StdEncoding.EncodeToString(data),
		Filename: strings.TrimSuffix(media.Filename, extOf(media.Filename)) + ".webp",
		Filesize: int64(len(data)),
	}, nil
}

// profilePictureDataURI normalizes a picture to a square-bounded jpeg data uri.
func profilePictureDataURI(media *types.MessageMedia) (string, error) {
	data, err := reencodeImage(media, profilePictureSize, imgconv.JPEG)
	if err != nil {
		return "", err
	}
	return "data:" + mimeJPEG + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

func extOf(filename string) string {
	if i := strings.LastIndex(filename, "."); i >= 0 {
		return filename[i:]
	}
	return ""
}
