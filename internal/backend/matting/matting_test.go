package matting

import (
	"context"
	"image"
	"image/color"
	"testing"
	"time"
)

func TestNewRemover(t *testing.T) {
	tests := []struct {
		name        string
		removerType string
		endpoint    string
		expectError bool
	}{
		{"remote", TypeRemote, "http://localhost:7000/api/remove", false},
		{"remote without endpoint", TypeRemote, "", true},
		{"none", TypeNone, "", false},
		{"unknown", "magic", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remover, err := NewRemover(tt.removerType, tt.endpoint, time.Second)
			if tt.expectError {
				if err == nil {
					t.Error("Expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if remover == nil {
				t.Error("Expected remover, got nil")
			}
		})
	}
}

func TestPassthroughRemover_Remove(t *testing.T) {
	src := image.NewRGBA(image.Rect(5, 5, 8, 7))
	src.Set(6, 6, color.RGBA{10, 20, 30, 255})

	out, err := (&PassthroughRemover{}).Remove(context.Background(), src)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	nrgba, ok := out.(*image.NRGBA)
	if !ok {
		t.Fatalf("Expected *image.NRGBA, got %T", out)
	}
	if nrgba.Bounds() != image.Rect(0, 0, 3, 2) {
		t.Errorf("Expected zero-origin 3x2 bounds, got %v", nrgba.Bounds())
	}
	if got := nrgba.NRGBAAt(1, 1); got != (color.NRGBA{10, 20, 30, 255}) {
		t.Errorf("Expected copied pixel, got %v", got)
	}
	if !nrgba.Opaque() {
		t.Error("Expected every pixel to be foreground")
	}
}
