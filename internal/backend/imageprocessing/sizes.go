package imageprocessing

import (
	"errors"
	"fmt"
)

// ErrInvalidSize is returned when a size key is not part of the size table
var ErrInvalidSize = errors.New("invalid size")

// SizeSpec describes a regional passport photo format in pixels at 300 DPI
type SizeSpec struct {
	Name   string `json:"name"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// SizeTable maps size keys (us, eu, india) to their pixel specification
type SizeTable map[string]SizeSpec

// DefaultSizes returns the built-in passport size table
func DefaultSizes() SizeTable {
	return SizeTable{
		"us":    {Name: "US (2x2 inches)", Width: 600, Height: 600},
		"eu":    {Name: "EU/UK/Pakistan (35x45 mm)", Width: 413, Height: 531},
		"india": {Name: "India (51x51 mm)", Width: 602, Height: 602},
	}
}

// Lookup returns the size for key or ErrInvalidSize
func (t SizeTable) Lookup(key string) (SizeSpec, error) {
	spec, ok := t[key]
	if !ok {
		return SizeSpec{}, fmt.Errorf("%w: %q", ErrInvalidSize, key)
	}
	return spec, nil
}
