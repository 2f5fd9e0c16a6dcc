package facedetection

import (
	"context"
	"image"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRemoteLocator_Locate(t *testing.T) {
	tests := []struct {
		name     string
		response string
		expected *Box
	}{
		{
			name:     "first detection wins",
			response: `{"detections":[{"x":10,"y":20,"width":30,"height":40},{"x":1,"y":2,"width":3,"height":4}]}`,
			expected: &Box{X: 10, Y: 20, Width: 30, Height: 40},
		},
		{
			name:     "no detections",
			response: `{"detections":[]}`,
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if _, _, err := r.FormFile("file"); err != nil {
					http.Error(w, "missing file", http.StatusBadRequest)
					return
				}
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(tt.response))
			}))
			defer server.Close()

			locator := NewRemoteLocator(server.URL, 5*time.Second)
			box, err := locator.Locate(context.Background(), image.NewRGBA(image.Rect(0, 0, 8, 8)))
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if tt.expected == nil {
				if box != nil {
					t.Errorf("Expected no face, got %+v", box)
				}
				return
			}
			if box == nil || *box != *tt.expected {
				t.Errorf("Expected %+v, got %+v", tt.expected, box)
			}
		})
	}
}

func TestRemoteLocator_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	locator := NewRemoteLocator(server.URL, 5*time.Second)
	if _, err := locator.Locate(context.Background(), image.NewRGBA(image.Rect(0, 0, 8, 8))); err == nil {
		t.Error("Expected error for non-200 response")
	}
}
