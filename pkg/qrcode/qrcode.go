package qrcode

import (
	"fmt"

	qr "github.com/skip2/go-qrcode"

	"github.com/impulsa-app/impulsa-backend/pkg/config"
)

// Renderer turns an opaque payload into a scannable PNG image. The payload is
// intentionally just an identifier; wallet apps resolve transaction details
// over the API so no mutable financial data is baked into a static code.
type Renderer interface {
	RenderCode(payload string) ([]byte, error)
}

type renderer struct {
	size int
}

// NewRenderer builds a PNG renderer using the configured module size.
func NewRenderer(cfg config.QRConfig) Renderer {
	size := cfg.Size
	if size <= 0 {
		size = 256
	}
	return &renderer{size: size}
}

func (r *renderer) RenderCode(payload string) ([]byte, error) {
	if payload == "" {
		return nil, fmt.Errorf("qr payload is required")
	}
	png, err := qr.Encode(payload, qr.Medium, r.size)
	if err != nil {
		return nil, fmt.Errorf("encoding qr payload: %w", err)
	}
	return png, nil
}
