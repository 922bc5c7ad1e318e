// Package qrimage turns a public redirect URL into a scannable QR image.
package qrimage

import (
	qrcode "github.com/skip2/go-qrcode"

	customerrors "qrlink/internal/errors"
)

// Encoder produces an image payload for the given content string.
type Encoder interface {
	Encode(content string) ([]byte, error)
}

// PNGEncoder renders QR codes as PNG bytes.
type PNGEncoder struct {
	Size int // pixel width/height of the generated image
}

// NewPNGEncoder returns a PNGEncoder with the default 256px size.
func NewPNGEncoder() *PNGEncoder {
	return &PNGEncoder{Size: 256}
}

// Encode renders content into a PNG QR image. Failures are reported as an
// external service error: the code record itself is already durable by the
// time encoding runs, and the caller may retry encoding independently.
func (e *PNGEncoder) Encode(content string) ([]byte, error) {
	png, err := qrcode.Encode(content, qrcode.Medium, e.Size)
	if err != nil {
		return nil, customerrors.External("qr-encoder", err)
	}
	return png, nil
}
