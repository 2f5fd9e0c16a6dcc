package common

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

type sampleRequest struct {
	Filename  string   `json:"filename" validate:"required"`
	Filenames []string `json:"filenames,omitempty" validate:"omitempty,min=1"`
}

func TestGenericEchoValidator_Validate(t *testing.T) {
	v := NewGenericEchoValidator()

	tests := []struct {
		name      string
		input     sampleRequest
		wantErr   bool
		wantField string
	}{
		{name: "valid", input: sampleRequest{Filename: "a.jpg"}},
		{name: "missing filename", input: sampleRequest{}, wantErr: true, wantField: "filename"},
		{name: "valid list", input: sampleRequest{Filename: "a.jpg", Filenames: []string{"b.png"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(&tt.input)
			if !tt.wantErr {
				if err != nil {
					t.Errorf("Expected no error, got %v", err)
				}
				return
			}

			var httpErr *echo.HTTPError
			if !errors.As(err, &httpErr) {
				t.Fatalf("Expected *echo.HTTPError, got %T", err)
			}
			if httpErr.Code != http.StatusBadRequest {
				t.Errorf("Expected status 400, got %d", httpErr.Code)
			}
			msg, _ := httpErr.Message.(string)
			if !strings.Contains(msg, tt.wantField) {
				t.Errorf("Expected message to name %s, got %q", tt.wantField, msg)
			}
		})
	}
}
