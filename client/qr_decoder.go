package client

import (
	"image"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
)

// QRDecoder reads QR code payloads from page images. Roster scans sometimes
// carry the member list in a code next to the printed table.
type QRDecoder struct{}

func NewQRDecoder() *QRDecoder { return &QRDecoder{} }

// Decode returns the payload of the first QR code found in img.
func (d *QRDecoder) Decode(img image.Image) (string, bool) {
	if img == nil {
		return "", false
	}
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", false
	}
	result, err := qrcode.NewQRCodeReader().Decode(bmp, nil)
	if err != nil {
		return "", false
	}
	return result.GetText(), result.GetText() != ""
}
