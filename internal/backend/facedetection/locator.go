package facedetection

import (
	"context"
	"fmt"
	"image"
	"time"
)

const (
	TypePigo   = "pigo"
	TypeRemote = "remote"
	TypeNone   = "none"
)

// Box is a face bounding box in image pixels
type Box struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Rect converts the box to an image rectangle
func (b Box) Rect() image.Rectangle {
	return image.Rect(b.X, b.Y, b.X+b.Width, b.Y+b.Height)
}

// Locator finds at most one face in an image. A nil box with a nil error means no face was found.
type Locator interface {
	Locate(ctx context.Context, img image.Image) (*Box, error)
}

type Options struct {
	Type        string
	CascadePath string
	Endpoint    string
	MinSize     int
	Timeout     time.Duration
}

// NewLocator creates the locator configured in opts
func NewLocator(opts Options) (Locator, error) {
	switch opts.Type {
	case TypePigo:
		return NewPigoLocator(opts.CascadePath, opts.MinSize)
	case TypeRemote:
		if opts.Endpoint == "" {
			return nil, fmt.Errorf("face detection endpoint must be set for type %s", opts.Type)
		}
		return NewRemoteLocator(opts.Endpoint, opts.Timeout), nil
	case TypeNone:
		return &NoopLocator{}, nil
	default:
		return nil, fmt.Errorf("unsupported face detection type: %s", opts.Type)
	}
}

// NoopLocator never finds a face
type NoopLocator struct{}

func (n *NoopLocator) Locate(_ context.Context, _ image.Image) (*Box, error) {
	return nil, nil
}
