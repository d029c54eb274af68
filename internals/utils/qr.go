package utils

import (
	"fmt"

	"github.com/skip2/go-qrcode"
)

const qrSize = 256

// QRCodePNG encodes data as a PNG QR image.
func QRCodePNG(data string) ([]byte, error) {
	png, err := qrcode.Encode(data, qrcode.Medium, qrSize)
	if err != nil {
		return nil, fmt.Errorf("failed to encode qr: %w", err)
	}
	return png, nil
}
