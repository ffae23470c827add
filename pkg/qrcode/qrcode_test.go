package qrcode

import (
	"bytes"
	"testing"

	"github.com/impulsa-app/impulsa-backend/pkg/config"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G'}

func TestRenderCodeProducesPNG(t *testing.T) {
	r := NewRenderer(config.QRConfig{Size: 128})
	png, err := r.RenderCode("3f1f2a54-7c01-4c16-8f2e-2b8a4a1a9d10")
	if err != nil {
		t.Fatalf("render code: %v", err)
	}
	if !bytes.HasPrefix(png, pngHeader) {
		t.Fatal("expected PNG magic bytes")
	}
}

func TestRenderCodeRejectsEmptyPayload(t *testing.T) {
	r := NewRenderer(config.QRConfig{})
	if _, err := r.RenderCode(""); err == nil {
		t.Fatal("expected error for empty payload")
	}
}
