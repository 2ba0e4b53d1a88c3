package whatsapp

import (
	qrCode "github.com/skip2/go-qrcode"
)

const qrImageSize = 256

// QRPNG renders a pairing token as a PNG image.
func QRPNG(code string) ([]byte, error) {
	if code == "" {
		return nil, invalidArgument("qr code is empty")
	}
	return qrCode.Encode(code, qrCode.Medium, qrImageSize)
}
